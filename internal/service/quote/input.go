package quote

import (
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/heartmarshall/quotediary-backend/internal/domain"
)

const (
	MaxTextLength     = 2000
	MaxAuthorLength   = 200
	MaxSourceLength   = 300
	MaxCategoryLength = 100
)

// SubmitInput holds a new quote.
type SubmitInput struct {
	Text   string
	Author *string
	Source *string
	// Category is an optional user-supplied category in any form; it is
	// normalized to a canonical key.
	Category *string
}

// Validate checks all fields and collects all errors.
func (i SubmitInput) Validate() error {
	var errs []domain.FieldError

	text := strings.TrimSpace(i.Text)
	if text == "" {
		errs = append(errs, domain.FieldError{Field: "text", Message: "required"})
	}
	if utf8.RuneCountInString(text) > MaxTextLength {
		errs = append(errs, domain.FieldError{Field: "text", Message: "max 2000 characters"})
	}
	errs = appendTooLong(errs, "author", i.Author, MaxAuthorLength)
	errs = appendTooLong(errs, "source", i.Source, MaxSourceLength)
	errs = appendTooLong(errs, "category", i.Category, MaxCategoryLength)

	if len(errs) > 0 {
		return &domain.ValidationError{Errors: errs}
	}
	return nil
}

// ReanalyzeInput requests a new classification of an existing quote.
type ReanalyzeInput struct {
	QuoteID uuid.UUID
	// Category overrides text detection when set.
	Category *string
}

// Validate checks all fields and collects all errors.
func (i ReanalyzeInput) Validate() error {
	var errs []domain.FieldError

	if i.QuoteID == uuid.Nil {
		errs = append(errs, domain.FieldError{Field: "quote_id", Message: "required"})
	}
	errs = appendTooLong(errs, "category", i.Category, MaxCategoryLength)

	if len(errs) > 0 {
		return &domain.ValidationError{Errors: errs}
	}
	return nil
}

func appendTooLong(errs []domain.FieldError, field string, v *string, limit int) []domain.FieldError {
	if v != nil && utf8.RuneCountInString(strings.TrimSpace(*v)) > limit {
		errs = append(errs, domain.FieldError{Field: field, Message: "too long"})
	}
	return errs
}
