// Package report implements the period report repository using PostgreSQL.
// Rows with schema_version 1 carry no metrics and are returned as
// *domain.PeriodReportV1 for the service to upgrade.
package report

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/goccy/go-json"
	"github.com/google/uuid"

	postgres "github.com/heartmarshall/quotediary-backend/internal/adapter/postgres"
	"github.com/heartmarshall/quotediary-backend/internal/domain"
)

const table = "period_reports"

var columns = []string{
	"id", "user_id", "period_key", "schema_version", "metrics", "quote_ids",
	"dominant_themes", "recommendations", "feedback", "sent_at", "created_at",
}

var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

// Repo provides period report persistence backed by PostgreSQL.
type Repo struct {
	db postgres.Querier
}

// New creates a new report repository.
func New(db postgres.Querier) *Repo {
	return &Repo{db: db}
}

// ---------------------------------------------------------------------------
// Read operations
// ---------------------------------------------------------------------------

// GetByPeriod returns the report of userID for periodKey.
func (r *Repo) GetByPeriod(ctx context.Context, userID uuid.UUID, periodKey string) (domain.StoredReport, error) {
	return r.get(ctx, psql.Select(columns...).
		From(table).
		Where(squirrel.Eq{"user_id": userID, "period_key": periodKey}), periodKey)
}

// GetByID returns a report owned by userID.
func (r *Repo) GetByID(ctx context.Context, userID, id uuid.UUID) (domain.StoredReport, error) {
	return r.get(ctx, psql.Select(columns...).
		From(table).
		Where(squirrel.Eq{"id": id, "user_id": userID}), id)
}

// GetByIDForUpdate is GetByID with a row lock. It must run inside a
// transaction to be meaningful.
func (r *Repo) GetByIDForUpdate(ctx context.Context, userID, id uuid.UUID) (domain.StoredReport, error) {
	return r.get(ctx, psql.Select(columns...).
		From(table).
		Where(squirrel.Eq{"id": id, "user_id": userID}).
		Suffix("FOR UPDATE"), id)
}

func (r *Repo) get(ctx context.Context, b squirrel.SelectBuilder, ref any) (domain.StoredReport, error) {
	sql, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get report: %w", err)
	}

	var row reportRow
	if err := pgxscan.Get(ctx, postgres.QuerierFromCtx(ctx, r.db), &row, sql, args...); err != nil {
		return nil, postgres.MapError(err, "period_report", ref)
	}
	return row.toDomain()
}

// ---------------------------------------------------------------------------
// Write operations
// ---------------------------------------------------------------------------

// Create inserts a current-schema report in a single statement. A second
// report for the same (user, period) fails with domain.ErrAlreadyExists.
func (r *Repo) Create(ctx context.Context, rep *domain.PeriodReport) (*domain.PeriodReport, error) {
	metrics, err := json.Marshal(rep.Metrics)
	if err != nil {
		return nil, fmt.Errorf("period_report %s marshal metrics: %w", rep.ID, err)
	}
	recs := rep.Recommendations
	if recs == nil {
		recs = []domain.ReportRecommendation{}
	}
	recsJSON, err := json.Marshal(recs)
	if err != nil {
		return nil, fmt.Errorf("period_report %s marshal recommendations: %w", rep.ID, err)
	}
	quoteIDs := rep.QuoteIDs
	if quoteIDs == nil {
		quoteIDs = []uuid.UUID{}
	}
	themes := rep.DominantThemes
	if themes == nil {
		themes = []string{}
	}

	sql, args, err := psql.Insert(table).
		Columns("id", "user_id", "period_kind", "period_key", "schema_version", "metrics",
			"quote_ids", "dominant_themes", "recommendations", "sent_at", "created_at", "updated_at").
		Values(rep.ID, rep.UserID, string(rep.Period.Kind), rep.Period.Key(), domain.ReportSchemaV2, string(metrics),
			quoteIDs, themes, string(recsJSON), rep.SentAt, rep.CreatedAt, rep.CreatedAt).
		Suffix("RETURNING " + strings.Join(columns, ", ")).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build insert report: %w", err)
	}

	var row reportRow
	if err := pgxscan.Get(ctx, postgres.QuerierFromCtx(ctx, r.db), &row, sql, args...); err != nil {
		return nil, postgres.MapError(err, "period_report", rep.Period.Key())
	}

	stored, err := row.toDomain()
	if err != nil {
		return nil, err
	}
	created, ok := stored.(*domain.PeriodReport)
	if !ok {
		return nil, fmt.Errorf("period_report %s: created row has schema version %d", row.ID, stored.SchemaVersion())
	}
	return created, nil
}

// SaveMetrics persists the snapshot of an upgraded legacy report. Only rows
// still lacking metrics are touched, so concurrent upgrades write once.
// It reports whether this call wrote the row.
func (r *Repo) SaveMetrics(ctx context.Context, id uuid.UUID, snapshot domain.MetricsSnapshot) (bool, error) {
	metrics, err := json.Marshal(snapshot)
	if err != nil {
		return false, fmt.Errorf("period_report %s marshal metrics: %w", id, err)
	}

	sql, args, err := psql.Update(table).
		Set("metrics", string(metrics)).
		Set("schema_version", domain.ReportSchemaV2).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": id}).
		Where("metrics IS NULL").
		ToSql()
	if err != nil {
		return false, fmt.Errorf("build save metrics: %w", err)
	}

	tag, err := postgres.QuerierFromCtx(ctx, r.db).Exec(ctx, sql, args...)
	if err != nil {
		return false, postgres.MapError(err, "period_report", id)
	}
	return tag.RowsAffected() == 1, nil
}

// SetFeedback attaches feedback to a report that has none. A report that
// already carries feedback, or does not exist, yields domain.ErrConflict.
func (r *Repo) SetFeedback(ctx context.Context, id uuid.UUID, fb domain.ReportFeedback) error {
	payload, err := json.Marshal(fb)
	if err != nil {
		return fmt.Errorf("period_report %s marshal feedback: %w", id, err)
	}

	sql, args, err := psql.Update(table).
		Set("feedback", string(payload)).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": id}).
		Where("feedback IS NULL").
		ToSql()
	if err != nil {
		return fmt.Errorf("build set feedback: %w", err)
	}

	tag, err := postgres.QuerierFromCtx(ctx, r.db).Exec(ctx, sql, args...)
	if err != nil {
		return postgres.MapError(err, "period_report", id)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("period_report %s feedback: %w", id, domain.ErrConflict)
	}
	return nil
}

// ---------------------------------------------------------------------------
// Row mapping
// ---------------------------------------------------------------------------

type reportRow struct {
	ID              uuid.UUID   `db:"id"`
	UserID          uuid.UUID   `db:"user_id"`
	PeriodKey       string      `db:"period_key"`
	SchemaVersion   int         `db:"schema_version"`
	Metrics         []byte      `db:"metrics"`
	QuoteIDs        []uuid.UUID `db:"quote_ids"`
	DominantThemes  []string    `db:"dominant_themes"`
	Recommendations []byte      `db:"recommendations"`
	Feedback        []byte      `db:"feedback"`
	SentAt          time.Time   `db:"sent_at"`
	CreatedAt       time.Time   `db:"created_at"`
}

func (row reportRow) toDomain() (domain.StoredReport, error) {
	period, err := domain.ParsePeriod(row.PeriodKey)
	if err != nil {
		return nil, fmt.Errorf("period_report %s: %w", row.ID, err)
	}

	var recs []domain.ReportRecommendation
	if len(row.Recommendations) > 0 {
		if err := json.Unmarshal(row.Recommendations, &recs); err != nil {
			return nil, fmt.Errorf("period_report %s unmarshal recommendations: %w", row.ID, err)
		}
	}

	var feedback *domain.ReportFeedback
	if len(row.Feedback) > 0 {
		feedback = &domain.ReportFeedback{}
		if err := json.Unmarshal(row.Feedback, feedback); err != nil {
			return nil, fmt.Errorf("period_report %s unmarshal feedback: %w", row.ID, err)
		}
	}

	if row.SchemaVersion == domain.ReportSchemaV1 || len(row.Metrics) == 0 {
		return &domain.PeriodReportV1{
			ID:              row.ID,
			UserID:          row.UserID,
			Period:          period,
			QuoteIDs:        row.QuoteIDs,
			DominantThemes:  row.DominantThemes,
			Recommendations: recs,
			Feedback:        feedback,
			SentAt:          row.SentAt,
			CreatedAt:       row.CreatedAt,
		}, nil
	}

	var metrics domain.MetricsSnapshot
	if err := json.Unmarshal(row.Metrics, &metrics); err != nil {
		return nil, fmt.Errorf("period_report %s unmarshal metrics: %w", row.ID, err)
	}

	return &domain.PeriodReport{
		ID:              row.ID,
		UserID:          row.UserID,
		Period:          period,
		Metrics:         metrics,
		QuoteIDs:        row.QuoteIDs,
		DominantThemes:  row.DominantThemes,
		Recommendations: recs,
		Feedback:        feedback,
		SentAt:          row.SentAt,
		CreatedAt:       row.CreatedAt,
	}, nil
}
