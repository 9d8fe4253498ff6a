// Package reportapi defines the JSON wire types of the reporting REST API.
// The server encodes them and the client cache decodes them.
package reportapi

import (
	"time"

	"github.com/google/uuid"
)

// Error codes returned in Error.Code.
const (
	CodeValidation         = "validation_error"
	CodeUnauthorized       = "unauthorized"
	CodeForbidden          = "forbidden"
	CodeNotFound           = "not_found"
	CodeReportNotGenerated = "report_not_generated"
	CodeConflict           = "conflict"
	CodeEmptyCatalog       = "empty_catalog"
	CodeRateLimited        = "rate_limited"
	CodeStorageUnavailable = "storage_unavailable"
	CodeInternal           = "internal_error"
)

// Error is the body of every non-2xx response.
type Error struct {
	Code    string       `json:"code"`
	Message string       `json:"message"`
	Fields  []FieldError `json:"fields,omitempty"`
}

// FieldError names one invalid request field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ---------------------------------------------------------------------------
// Quotes
// ---------------------------------------------------------------------------

type SubmitQuoteRequest struct {
	Text     string  `json:"text"`
	Author   *string `json:"author,omitempty"`
	Source   *string `json:"source,omitempty"`
	Category *string `json:"category,omitempty"`
}

type ReanalyzeQuoteRequest struct {
	Category *string `json:"category,omitempty"`
}

type Quote struct {
	ID        uuid.UUID `json:"id"`
	Text      string    `json:"text"`
	Author    *string   `json:"author,omitempty"`
	Source    *string   `json:"source,omitempty"`
	Category  string    `json:"category"`
	Themes    []string  `json:"themes"`
	CreatedAt time.Time `json:"created_at"`
}

// ---------------------------------------------------------------------------
// Reports
// ---------------------------------------------------------------------------

type Metrics struct {
	QuoteCount        int `json:"quote_count"`
	UniqueAuthorCount int `json:"unique_author_count"`
	ActiveDayCount    int `json:"active_day_count"`
	ProgressPct       int `json:"progress_pct"`
}

type CatalogEntry struct {
	ID          uuid.UUID `json:"id"`
	Slug        string    `json:"slug"`
	Kind        string    `json:"kind"`
	Title       string    `json:"title"`
	Author      *string   `json:"author,omitempty"`
	Description string    `json:"description,omitempty"`
	PriceMinor  *int64    `json:"price_minor,omitempty"`
	Currency    string    `json:"currency,omitempty"`
	Categories  []string  `json:"categories"`
}

// Recommendation is a stored report recommendation. Entry is hydrated by
// the server when the catalog entry still exists.
type Recommendation struct {
	CatalogEntryID uuid.UUID     `json:"catalog_entry_id"`
	RelevanceScore int           `json:"relevance_score"`
	Reasoning      string        `json:"reasoning"`
	Fallback       bool          `json:"fallback,omitempty"`
	Entry          *CatalogEntry `json:"entry,omitempty"`
}

type Feedback struct {
	Rating    int       `json:"rating"`
	Comment   *string   `json:"comment,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type Report struct {
	ID              uuid.UUID        `json:"id"`
	PeriodKey       string           `json:"period_key"`
	Metrics         Metrics          `json:"metrics"`
	QuoteIDs        []uuid.UUID      `json:"quote_ids"`
	DominantThemes  []string         `json:"dominant_themes"`
	Recommendations []Recommendation `json:"recommendations"`
	Feedback        *Feedback        `json:"feedback,omitempty"`
	SentAt          time.Time        `json:"sent_at"`
	CreatedAt       time.Time        `json:"created_at"`
}

type Delta struct {
	QuoteCount        int `json:"quote_count"`
	UniqueAuthorCount int `json:"unique_author_count"`
	ActiveDayCount    int `json:"active_day_count"`
}

// ReportView is the body of GET /api/v1/reports/{period}.
type ReportView struct {
	Report      Report `json:"report"`
	Delta       Delta  `json:"delta"`
	HasPrevious bool   `json:"has_previous"`
}

type FeedbackRequest struct {
	Rating  int     `json:"rating"`
	Comment *string `json:"comment,omitempty"`
}

// ---------------------------------------------------------------------------
// Recommendations and taxonomy
// ---------------------------------------------------------------------------

type RecommendationsResponse struct {
	Items    []Recommendation `json:"items"`
	Fallback bool             `json:"fallback"`
}

type Category struct {
	Key              string `json:"key"`
	Slug             string `json:"slug"`
	Priority         int    `json:"priority"`
	ExcludeFromTrend bool   `json:"exclude_from_trend,omitempty"`
	Fallback         bool   `json:"fallback,omitempty"`
}

type TaxonomyResponse struct {
	Version    string     `json:"version"`
	Categories []Category `json:"categories"`
}
