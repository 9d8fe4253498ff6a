// Package catalog implements the read-only recommendation catalog
// repository using PostgreSQL.
package catalog

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/google/uuid"

	postgres "github.com/heartmarshall/quotediary-backend/internal/adapter/postgres"
	"github.com/heartmarshall/quotediary-backend/internal/domain"
)

var columns = []string{
	"id", "slug", "kind", "title", "author", "description", "price_minor", "currency",
	"categories", "priority", "is_active", "reasoning_template", "created_at",
}

var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

// Repo reads catalog entries. The pipeline never writes the catalog;
// entries are managed through migrations.
type Repo struct {
	db postgres.Querier
}

// New creates a new catalog repository.
func New(db postgres.Querier) *Repo {
	return &Repo{db: db}
}

type entryRow struct {
	ID                uuid.UUID `db:"id"`
	Slug              string    `db:"slug"`
	Kind              string    `db:"kind"`
	Title             string    `db:"title"`
	Author            *string   `db:"author"`
	Description       string    `db:"description"`
	PriceMinor        *int64    `db:"price_minor"`
	Currency          string    `db:"currency"`
	Categories        []string  `db:"categories"`
	Priority          int       `db:"priority"`
	IsActive          bool      `db:"is_active"`
	ReasoningTemplate *string   `db:"reasoning_template"`
	CreatedAt         time.Time `db:"created_at"`
}

func (r entryRow) toDomain() domain.CatalogEntry {
	return domain.CatalogEntry{
		ID:                r.ID,
		Slug:              r.Slug,
		Kind:              domain.CatalogKind(r.Kind),
		Title:             r.Title,
		Author:            r.Author,
		Description:       r.Description,
		PriceMinor:        r.PriceMinor,
		Currency:          r.Currency,
		Categories:        r.Categories,
		Priority:          r.Priority,
		IsActive:          r.IsActive,
		ReasoningTemplate: r.ReasoningTemplate,
		CreatedAt:         r.CreatedAt,
	}
}

// ListActive returns all active entries ordered by priority desc, then
// newest first, then slug.
func (r *Repo) ListActive(ctx context.Context) ([]domain.CatalogEntry, error) {
	return r.selectEntries(ctx, psql.Select(columns...).
		From("catalog_entries").
		Where(squirrel.Eq{"is_active": true}).
		OrderBy("priority DESC", "created_at DESC", "slug ASC"))
}

// GetByIDs returns the entries with the given IDs, active or not, in no
// particular order. Missing IDs are skipped.
func (r *Repo) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]domain.CatalogEntry, error) {
	if len(ids) == 0 {
		return []domain.CatalogEntry{}, nil
	}
	return r.selectEntries(ctx, psql.Select(columns...).
		From("catalog_entries").
		Where("id = ANY(?)", ids))
}

func (r *Repo) selectEntries(ctx context.Context, b squirrel.SelectBuilder) ([]domain.CatalogEntry, error) {
	sql, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build catalog query: %w", err)
	}

	var rows []entryRow
	if err := pgxscan.Select(ctx, postgres.QuerierFromCtx(ctx, r.db), &rows, sql, args...); err != nil {
		return nil, postgres.MapError(err, "catalog_entries", "list")
	}

	out := make([]domain.CatalogEntry, len(rows))
	for i, row := range rows {
		out[i] = row.toDomain()
	}
	return out, nil
}
