package testhelper

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/heartmarshall/quotediary-backend/internal/domain"
)

// uniqueSuffix returns a short unique string for generating non-conflicting test data.
func uniqueSuffix() string {
	return uuid.New().String()[:8]
}

// SeedQuote inserts a quote for userID created at createdAt. Category
// defaults to "Other" with matching themes; opts may override any field
// except the ID and owner.
func SeedQuote(t *testing.T, pool *pgxpool.Pool, userID uuid.UUID, createdAt time.Time, opts ...func(*domain.Quote)) domain.Quote {
	t.Helper()

	q := domain.Quote{
		ID:        uuid.New(),
		UserID:    userID,
		Text:      "Seeded quote " + uniqueSuffix(),
		Category:  "Other",
		Themes:    []string{"Other"},
		CreatedAt: createdAt.UTC().Truncate(time.Microsecond),
	}
	for _, opt := range opts {
		opt(&q)
	}
	q.UpdatedAt = q.CreatedAt

	_, err := pool.Exec(context.Background(),
		`INSERT INTO quotes (id, user_id, text, author, source, category, themes, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		q.ID, q.UserID, q.Text, q.Author, q.Source, q.Category, q.Themes, q.CreatedAt, q.UpdatedAt,
	)
	if err != nil {
		t.Fatalf("testhelper: SeedQuote: %v", err)
	}
	return q
}

// WithAuthor sets the quote author.
func WithAuthor(author string) func(*domain.Quote) {
	return func(q *domain.Quote) { q.Author = &author }
}

// WithCategory sets the quote category and themes.
func WithCategory(category string, themes ...string) func(*domain.Quote) {
	return func(q *domain.Quote) {
		q.Category = category
		if len(themes) == 0 {
			themes = []string{category}
		}
		q.Themes = themes
	}
}

// SeedCatalogEntry inserts an active catalog entry with a unique slug.
func SeedCatalogEntry(t *testing.T, pool *pgxpool.Pool, opts ...func(*domain.CatalogEntry)) domain.CatalogEntry {
	t.Helper()

	e := domain.CatalogEntry{
		ID:         uuid.New(),
		Slug:       "seed-" + uniqueSuffix(),
		Kind:       domain.CatalogKindBook,
		Title:      "Seeded book",
		Currency:   "USD",
		Categories: []string{"Other"},
		IsActive:   true,
		CreatedAt:  time.Now().UTC().Truncate(time.Microsecond),
	}
	for _, opt := range opts {
		opt(&e)
	}

	_, err := pool.Exec(context.Background(),
		`INSERT INTO catalog_entries (id, slug, kind, title, author, description, price_minor, currency,
		                              categories, priority, is_active, reasoning_template, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		e.ID, e.Slug, string(e.Kind), e.Title, e.Author, e.Description, e.PriceMinor, e.Currency,
		e.Categories, e.Priority, e.IsActive, e.ReasoningTemplate, e.CreatedAt,
	)
	if err != nil {
		t.Fatalf("testhelper: SeedCatalogEntry: %v", err)
	}
	return e
}

// SeedLegacyReport inserts a schema version 1 report (no metrics snapshot)
// referencing quoteIDs.
func SeedLegacyReport(t *testing.T, pool *pgxpool.Pool, userID uuid.UUID, period domain.Period, quoteIDs []uuid.UUID) domain.PeriodReportV1 {
	t.Helper()

	now := time.Now().UTC().Truncate(time.Microsecond)
	r := domain.PeriodReportV1{
		ID:              uuid.New(),
		UserID:          userID,
		Period:          period,
		QuoteIDs:        quoteIDs,
		DominantThemes:  []string{"Other"},
		Recommendations: []domain.ReportRecommendation{},
		SentAt:          now,
		CreatedAt:       now,
	}
	if r.QuoteIDs == nil {
		r.QuoteIDs = []uuid.UUID{}
	}

	_, err := pool.Exec(context.Background(),
		`INSERT INTO period_reports (id, user_id, period_kind, period_key, schema_version, metrics,
		                             quote_ids, dominant_themes, recommendations, sent_at, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, 1, NULL, $5, $6, '[]', $7, $8, $8)`,
		r.ID, r.UserID, string(period.Kind), period.Key(), r.QuoteIDs, r.DominantThemes, r.SentAt, r.CreatedAt,
	)
	if err != nil {
		t.Fatalf("testhelper: SeedLegacyReport: %v", err)
	}
	return r
}
