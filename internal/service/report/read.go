package report

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/heartmarshall/quotediary-backend/internal/domain"
	"github.com/heartmarshall/quotediary-backend/internal/metrics"
)

// View is a report together with its change versus the prior period.
type View struct {
	Report *domain.PeriodReport
	Delta  domain.Delta
	// HasPrevious is false when the prior period has no comparable report;
	// Delta is then all zeros.
	HasPrevious bool
}

// Get returns the report for (userID, period). A period that was never
// generated yields domain.ErrReportNotFound.
func (s *Service) Get(ctx context.Context, userID uuid.UUID, period domain.Period) (*domain.PeriodReport, error) {
	if err := period.Validate(); err != nil {
		return nil, err
	}
	return s.read(ctx, userID, period)
}

// GetByID returns a report owned by userID.
func (s *Service) GetByID(ctx context.Context, userID, id uuid.UUID) (*domain.PeriodReport, error) {
	stored, err := s.reports.GetByID(ctx, userID, id)
	if err != nil {
		return nil, notGenerated(err)
	}
	return s.current(ctx, stored)
}

// GetWithDelta returns the report for period and its delta against the
// adjacent prior period. A missing or unreadable prior report yields a zero
// delta rather than an error.
func (s *Service) GetWithDelta(ctx context.Context, userID uuid.UUID, period domain.Period) (View, error) {
	current, err := s.Get(ctx, userID, period)
	if err != nil {
		return View{}, err
	}

	view := View{Report: current}

	prevPeriod := period.Previous()
	previous, err := s.read(ctx, userID, prevPeriod)
	switch {
	case err == nil:
		view.Delta = domain.ComputeDelta(current.Metrics, &previous.Metrics)
		view.HasPrevious = true
	case errors.Is(err, domain.ErrNotFound):
	default:
		s.log.WarnContext(ctx, "prior report unavailable, using zero delta",
			slog.String("user_id", userID.String()),
			slog.String("period", prevPeriod.Key()),
			slog.String("error", err.Error()),
		)
	}

	return view, nil
}

// read loads a report by period and upgrades legacy rows.
func (s *Service) read(ctx context.Context, userID uuid.UUID, period domain.Period) (*domain.PeriodReport, error) {
	stored, err := s.reports.GetByPeriod(ctx, userID, period.Key())
	if err != nil {
		return nil, notGenerated(err)
	}
	return s.current(ctx, stored)
}

func (s *Service) current(ctx context.Context, stored domain.StoredReport) (*domain.PeriodReport, error) {
	switch r := stored.(type) {
	case *domain.PeriodReport:
		return r, nil
	case *domain.PeriodReportV1:
		return s.upgrade(ctx, r)
	default:
		return nil, fmt.Errorf("report %s: unsupported schema version %d", stored.ReportID(), stored.SchemaVersion())
	}
}

// upgrade recomputes the metrics snapshot of a legacy report from its quote
// references with the generation formulas and persists it. A failed write
// still returns the upgraded report; the next read retries the write.
func (s *Service) upgrade(ctx context.Context, legacy *domain.PeriodReportV1) (*domain.PeriodReport, error) {
	quotes, err := s.quotes.GetByIDs(ctx, legacy.UserID, legacy.QuoteIDs)
	if err != nil {
		return nil, fmt.Errorf("upgrade report %s: load quotes: %w", legacy.ID, err)
	}

	snapshot := domain.ComputeSnapshot(quotes, s.cfg.Target(legacy.Period.Kind), s.cfg.Location)
	upgraded := legacy.Upgrade(snapshot)

	saved, err := s.reports.SaveMetrics(ctx, legacy.ID, snapshot)
	if err != nil {
		s.log.WarnContext(ctx, "persist upgraded report metrics",
			slog.String("report_id", legacy.ID.String()),
			slog.String("error", err.Error()),
		)
		metrics.RecordLegacyUpgrade(false)
		return upgraded, nil
	}
	metrics.RecordLegacyUpgrade(saved)

	if saved && s.audit != nil {
		id := legacy.ID
		if err := s.audit.Log(ctx, domain.AuditRecord{
			UserID:     legacy.UserID,
			EntityType: domain.EntityTypeReport,
			EntityID:   &id,
			Action:     domain.AuditActionUpgrade,
			Changes: map[string]any{
				"schema_version": map[string]any{"old": domain.ReportSchemaV1, "new": domain.ReportSchemaV2},
				"quote_count":    snapshot.QuoteCount,
			},
		}); err != nil {
			s.log.WarnContext(ctx, "audit report upgrade", slog.String("error", err.Error()))
		}
	}

	return upgraded, nil
}

func notGenerated(err error) error {
	if errors.Is(err, domain.ErrNotFound) && !errors.Is(err, domain.ErrReportNotFound) {
		return fmt.Errorf("%w: %w", domain.ErrReportNotFound, err)
	}
	return err
}
