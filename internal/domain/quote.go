package domain

import (
	"time"

	"github.com/google/uuid"
)

// MaxQuoteThemes caps the theme list stored on a quote.
const MaxQuoteThemes = 3

// Quote is a passage submitted by a user. Category and Themes hold canonical
// category keys assigned by the normalizer at submission time; they change
// only through explicit re-analysis.
type Quote struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	Text      string
	Author    *string
	Source    *string
	Category  string
	Themes    []string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// AuthorKey returns the normalized author used for distinct-author counting.
// Empty when the quote has no author.
func (q Quote) AuthorKey() string {
	if q.Author == nil {
		return ""
	}
	return NormalizeText(*q.Author)
}

// QuoteClassification is the normalizer output persisted on a quote.
type QuoteClassification struct {
	Category string
	Themes   []string
}
