// Package audit implements the Audit repository using PostgreSQL.
// It provides append-only operations for audit log records.
package audit

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/goccy/go-json"
	"github.com/google/uuid"

	postgres "github.com/heartmarshall/quotediary-backend/internal/adapter/postgres"
	"github.com/heartmarshall/quotediary-backend/internal/domain"
)

var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

const returning = "RETURNING id, user_id, entity_type, entity_id, action, changes, created_at"

// Repo provides audit log persistence backed by PostgreSQL.
type Repo struct {
	db postgres.Querier
}

// New creates a new audit repository.
func New(db postgres.Querier) *Repo {
	return &Repo{db: db}
}

// ---------------------------------------------------------------------------
// Write operations
// ---------------------------------------------------------------------------

// Create inserts a new audit record and returns the persisted domain.AuditRecord.
// A zero ID or CreatedAt is filled in.
func (r *Repo) Create(ctx context.Context, record domain.AuditRecord) (domain.AuditRecord, error) {
	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now().UTC()
	}
	changes := record.Changes
	if changes == nil {
		changes = map[string]any{}
	}

	changesJSON, err := json.Marshal(changes)
	if err != nil {
		return domain.AuditRecord{}, fmt.Errorf("audit_record marshal changes: %w", err)
	}

	sql, args, err := psql.Insert("audit_log").
		Columns("id", "user_id", "entity_type", "entity_id", "action", "changes", "created_at").
		Values(record.ID, record.UserID, string(record.EntityType), record.EntityID, string(record.Action),
			string(changesJSON), record.CreatedAt).
		Suffix(returning).
		ToSql()
	if err != nil {
		return domain.AuditRecord{}, fmt.Errorf("build insert audit_record: %w", err)
	}

	var row auditRow
	if err := pgxscan.Get(ctx, postgres.QuerierFromCtx(ctx, r.db), &row, sql, args...); err != nil {
		return domain.AuditRecord{}, postgres.MapError(err, "audit_record", record.ID)
	}

	return row.toDomain()
}

// Log creates an audit record without returning it.
// Satisfies quote.auditLogger and report.auditLogger.
func (r *Repo) Log(ctx context.Context, record domain.AuditRecord) error {
	_, err := r.Create(ctx, record)
	return err
}

// ---------------------------------------------------------------------------
// Read operations
// ---------------------------------------------------------------------------

// GetByEntity returns the change history for a specific entity, newest
// first, limited to limit records.
func (r *Repo) GetByEntity(ctx context.Context, entityType domain.EntityType, entityID uuid.UUID, limit int) ([]domain.AuditRecord, error) {
	sql, args, err := psql.Select("id", "user_id", "entity_type", "entity_id", "action", "changes", "created_at").
		From("audit_log").
		Where(squirrel.Eq{"entity_type": string(entityType), "entity_id": entityID}).
		OrderBy("created_at DESC", "id").
		Limit(uint64(max(limit, 0))).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build audit_records by entity: %w", err)
	}

	var rows []auditRow
	if err := pgxscan.Select(ctx, postgres.QuerierFromCtx(ctx, r.db), &rows, sql, args...); err != nil {
		return nil, postgres.MapError(err, "audit_records of", entityID)
	}

	records := make([]domain.AuditRecord, len(rows))
	for i, row := range rows {
		rec, err := row.toDomain()
		if err != nil {
			return nil, err
		}
		records[i] = rec
	}

	return records, nil
}

// ---------------------------------------------------------------------------
// Mapping helpers
// ---------------------------------------------------------------------------

type auditRow struct {
	ID         uuid.UUID  `db:"id"`
	UserID     uuid.UUID  `db:"user_id"`
	EntityType string     `db:"entity_type"`
	EntityID   *uuid.UUID `db:"entity_id"`
	Action     string     `db:"action"`
	Changes    []byte     `db:"changes"`
	CreatedAt  time.Time  `db:"created_at"`
}

func (row auditRow) toDomain() (domain.AuditRecord, error) {
	record := domain.AuditRecord{
		ID:         row.ID,
		UserID:     row.UserID,
		EntityType: domain.EntityType(row.EntityType),
		EntityID:   row.EntityID,
		Action:     domain.AuditAction(row.Action),
		CreatedAt:  row.CreatedAt,
	}

	// changes: JSONB -> map[string]any
	if len(row.Changes) > 0 {
		changes := make(map[string]any)
		if err := json.Unmarshal(row.Changes, &changes); err != nil {
			return domain.AuditRecord{}, fmt.Errorf("audit_record %s unmarshal changes: %w", row.ID, err)
		}
		record.Changes = changes
	}

	return record, nil
}
