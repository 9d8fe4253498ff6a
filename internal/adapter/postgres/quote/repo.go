// Package quote implements the quote repository using PostgreSQL.
package quote

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/google/uuid"

	postgres "github.com/heartmarshall/quotediary-backend/internal/adapter/postgres"
	"github.com/heartmarshall/quotediary-backend/internal/domain"
)

const table = "quotes"

var columns = []string{"id", "user_id", "text", "author", "source", "category", "themes", "created_at", "updated_at"}

var returning = "RETURNING " + strings.Join(columns, ", ")

var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

// Repo provides quote persistence backed by PostgreSQL.
type Repo struct {
	db postgres.Querier
}

// New creates a new quote repository.
func New(db postgres.Querier) *Repo {
	return &Repo{db: db}
}

type quoteRow struct {
	ID        uuid.UUID `db:"id"`
	UserID    uuid.UUID `db:"user_id"`
	Text      string    `db:"text"`
	Author    *string   `db:"author"`
	Source    *string   `db:"source"`
	Category  string    `db:"category"`
	Themes    []string  `db:"themes"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

func (r quoteRow) toDomain() domain.Quote {
	return domain.Quote{
		ID:        r.ID,
		UserID:    r.UserID,
		Text:      r.Text,
		Author:    r.Author,
		Source:    r.Source,
		Category:  r.Category,
		Themes:    r.Themes,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

// ---------------------------------------------------------------------------
// Write operations
// ---------------------------------------------------------------------------

// Create inserts a quote. A zero ID is replaced by a new UUID and a zero
// CreatedAt by the database clock.
func (r *Repo) Create(ctx context.Context, q *domain.Quote) (*domain.Quote, error) {
	id := q.ID
	if id == uuid.Nil {
		id = uuid.New()
	}

	cols := []string{"id", "user_id", "text", "author", "source", "category", "themes"}
	vals := []any{id, q.UserID, q.Text, q.Author, q.Source, q.Category, q.Themes}
	if !q.CreatedAt.IsZero() {
		cols = append(cols, "created_at", "updated_at")
		vals = append(vals, q.CreatedAt, q.CreatedAt)
	}

	sql, args, err := psql.Insert(table).
		Columns(cols...).
		Values(vals...).
		Suffix(returning).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build insert quote: %w", err)
	}

	var row quoteRow
	if err := pgxscan.Get(ctx, postgres.QuerierFromCtx(ctx, r.db), &row, sql, args...); err != nil {
		return nil, postgres.MapError(err, "quote", id)
	}

	out := row.toDomain()
	return &out, nil
}

// UpdateClassification replaces the category and themes of a quote owned by userID.
func (r *Repo) UpdateClassification(ctx context.Context, userID, quoteID uuid.UUID, c domain.QuoteClassification) (*domain.Quote, error) {
	sql, args, err := psql.Update(table).
		Set("category", c.Category).
		Set("themes", c.Themes).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": quoteID, "user_id": userID}).
		Suffix(returning).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build update quote: %w", err)
	}

	var row quoteRow
	if err := pgxscan.Get(ctx, postgres.QuerierFromCtx(ctx, r.db), &row, sql, args...); err != nil {
		return nil, postgres.MapError(err, "quote", quoteID)
	}

	out := row.toDomain()
	return &out, nil
}

// ---------------------------------------------------------------------------
// Read operations
// ---------------------------------------------------------------------------

// GetByID returns a quote owned by userID.
func (r *Repo) GetByID(ctx context.Context, userID, quoteID uuid.UUID) (*domain.Quote, error) {
	sql, args, err := psql.Select(columns...).
		From(table).
		Where(squirrel.Eq{"id": quoteID, "user_id": userID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get quote: %w", err)
	}

	var row quoteRow
	if err := pgxscan.Get(ctx, postgres.QuerierFromCtx(ctx, r.db), &row, sql, args...); err != nil {
		return nil, postgres.MapError(err, "quote", quoteID)
	}

	out := row.toDomain()
	return &out, nil
}

// ListByRange returns the user's quotes with from <= created_at < to,
// oldest first.
func (r *Repo) ListByRange(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]domain.Quote, error) {
	return r.list(ctx, psql.Select(columns...).
		From(table).
		Where(squirrel.Eq{"user_id": userID}).
		Where(squirrel.GtOrEq{"created_at": from}).
		Where(squirrel.Lt{"created_at": to}).
		OrderBy("created_at ASC", "id ASC"), userID)
}

// GetByIDs returns the user's quotes among ids, oldest first. Unknown or
// foreign IDs are skipped.
func (r *Repo) GetByIDs(ctx context.Context, userID uuid.UUID, ids []uuid.UUID) ([]domain.Quote, error) {
	if len(ids) == 0 {
		return []domain.Quote{}, nil
	}
	return r.list(ctx, psql.Select(columns...).
		From(table).
		Where(squirrel.Eq{"user_id": userID}).
		Where("id = ANY(?)", ids).
		OrderBy("created_at ASC", "id ASC"), userID)
}

// ListUserIDsInRange returns every user with at least one quote in
// [from, to). Used by the scheduler to fan out report generation.
func (r *Repo) ListUserIDsInRange(ctx context.Context, from, to time.Time) ([]uuid.UUID, error) {
	sql, args, err := psql.Select("DISTINCT user_id").
		From(table).
		Where(squirrel.GtOrEq{"created_at": from}).
		Where(squirrel.Lt{"created_at": to}).
		OrderBy("user_id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list users: %w", err)
	}

	var ids []uuid.UUID
	if err := pgxscan.Select(ctx, postgres.QuerierFromCtx(ctx, r.db), &ids, sql, args...); err != nil {
		return nil, postgres.MapError(err, "quote", "users in range")
	}
	return ids, nil
}

func (r *Repo) list(ctx context.Context, b squirrel.SelectBuilder, userID uuid.UUID) ([]domain.Quote, error) {
	sql, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list quotes: %w", err)
	}

	var rows []quoteRow
	if err := pgxscan.Select(ctx, postgres.QuerierFromCtx(ctx, r.db), &rows, sql, args...); err != nil {
		return nil, postgres.MapError(err, "quotes of user", userID)
	}

	out := make([]domain.Quote, len(rows))
	for i, row := range rows {
		out[i] = row.toDomain()
	}
	return out, nil
}
