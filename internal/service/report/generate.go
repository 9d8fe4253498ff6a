package report

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/heartmarshall/quotediary-backend/internal/domain"
	"github.com/heartmarshall/quotediary-backend/internal/metrics"
)

// GenerateOrGet returns the report for (userID, period), building it on
// first request. Concurrent callers for the same key share one computation
// and observe the same report ID. A uniqueness conflict on insert means
// another process finished first; its row is returned.
//
// Nothing is persisted unless every step succeeds, so a failed call leaves
// the period absent and retryable.
func (s *Service) GenerateOrGet(ctx context.Context, userID uuid.UUID, period domain.Period) (*domain.PeriodReport, error) {
	if userID == uuid.Nil {
		return nil, domain.NewValidationError("user_id", "required")
	}
	if err := period.Validate(); err != nil {
		return nil, err
	}

	key := userID.String() + "|" + period.Key()
	v, err, _ := s.generating.Do(key, func() (any, error) {
		// Detached so one caller's cancellation does not fail the others.
		return s.generateOrGet(context.WithoutCancel(ctx), userID, period)
	})
	if err != nil {
		metrics.RecordReportGeneration(period.Kind, "failed")
		return nil, err
	}
	return v.(*domain.PeriodReport), nil
}

func (s *Service) generateOrGet(ctx context.Context, userID uuid.UUID, period domain.Period) (*domain.PeriodReport, error) {
	existing, err := s.read(ctx, userID, period)
	if err == nil {
		metrics.RecordReportGeneration(period.Kind, "existing")
		return existing, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	started := time.Now()
	report, err := s.build(ctx, userID, period)
	if err != nil {
		return nil, err
	}

	created, err := s.reports.Create(ctx, report)
	if errors.Is(err, domain.ErrAlreadyExists) {
		s.log.InfoContext(ctx, "report generated concurrently, reading winner",
			slog.String("user_id", userID.String()),
			slog.String("period", period.Key()),
		)
		winner, readErr := s.read(ctx, userID, period)
		if readErr != nil {
			return nil, fmt.Errorf("read concurrent report: %w", readErr)
		}
		metrics.RecordReportGeneration(period.Kind, "raced")
		return winner, nil
	}
	if err != nil {
		return nil, fmt.Errorf("create report: %w", err)
	}

	metrics.ObserveReportBuild(period.Kind, time.Since(started))
	metrics.RecordReportGeneration(period.Kind, "created")
	s.log.InfoContext(ctx, "report generated",
		slog.String("user_id", userID.String()),
		slog.String("period", period.Key()),
		slog.String("report_id", created.ID.String()),
		slog.Int("quotes", created.Metrics.QuoteCount),
		slog.Any("themes", created.DominantThemes),
	)
	return created, nil
}

// build computes a new report without persisting it.
func (s *Service) build(ctx context.Context, userID uuid.UUID, period domain.Period) (*domain.PeriodReport, error) {
	from, to := period.Bounds(s.cfg.Location)
	quotes, err := s.quotes.ListByRange(ctx, userID, from, to)
	if err != nil {
		return nil, fmt.Errorf("collect quotes: %w", err)
	}

	snapshot := domain.ComputeSnapshot(quotes, s.cfg.Target(period.Kind), s.cfg.Location)
	themes := s.dominantThemes(quotes)

	rec, err := s.recommender.Recommend(ctx, themes, s.cfg.RecommendationLimit)
	if err != nil {
		return nil, fmt.Errorf("recommend: %w", err)
	}

	recs := make([]domain.ReportRecommendation, len(rec.Items))
	for i, m := range rec.Items {
		recs[i] = domain.ReportRecommendation{
			CatalogEntryID: m.Entry.ID,
			RelevanceScore: m.Score,
			Reasoning:      m.Reasoning,
			Fallback:       m.Fallback,
		}
	}

	ids := make([]uuid.UUID, len(quotes))
	for i, q := range quotes {
		ids[i] = q.ID
	}

	now := s.now().UTC()
	return &domain.PeriodReport{
		ID:              uuid.New(),
		UserID:          userID,
		Period:          period,
		Metrics:         snapshot,
		QuoteIDs:        ids,
		DominantThemes:  themes,
		Recommendations: recs,
		SentAt:          now,
		CreatedAt:       now,
	}, nil
}

// dominantThemes flattens quote themes in quote order and normalizes the
// list, so the first three distinct themes seen win. The most frequent
// quote category seeds the result when no theme survives.
func (s *Service) dominantThemes(quotes []domain.Quote) []string {
	var flat, categories []string
	for _, q := range quotes {
		flat = append(flat, q.Themes...)
		if q.Category != "" {
			categories = append(categories, q.Category)
		}
	}

	best := ""
	if ranked := byFrequency(categories); len(ranked) > 0 {
		best = ranked[0]
	}

	return s.themes.NormalizeThemeList(flat, best)
}

// byFrequency returns distinct values ordered by count desc, then first appearance.
func byFrequency(values []string) []string {
	counts := make(map[string]int, len(values))
	var order []string
	for _, v := range values {
		if counts[v] == 0 {
			order = append(order, v)
		}
		counts[v]++
	}
	slices.SortStableFunc(order, func(a, b string) int { return cmp.Compare(counts[b], counts[a]) })
	return order
}
