package domain

import (
	"slices"
	"time"

	"github.com/google/uuid"
)

// CatalogKind distinguishes recommendable item types.
type CatalogKind string

const (
	CatalogKindBook   CatalogKind = "BOOK"
	CatalogKindCourse CatalogKind = "COURSE"
)

func (k CatalogKind) String() string { return string(k) }

func (k CatalogKind) IsValid() bool {
	return k == CatalogKindBook || k == CatalogKindCourse
}

// CatalogEntry is a recommendable book or course tagged with canonical
// categories. Read-only for the reporting pipeline.
type CatalogEntry struct {
	ID                uuid.UUID
	Slug              string
	Kind              CatalogKind
	Title             string
	Author            *string
	Description       string
	PriceMinor        *int64
	Currency          string
	Categories        []string
	Priority          int
	IsActive          bool
	ReasoningTemplate *string
	CreatedAt         time.Time
}

// HasCategory reports whether the entry is tagged with key.
func (e CatalogEntry) HasCategory(key string) bool {
	return slices.Contains(e.Categories, key)
}
