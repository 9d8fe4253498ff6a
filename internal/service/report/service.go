// Package report implements the period report lifecycle: idempotent
// generation, legacy upgrade on read, delta against the prior period and
// write-once feedback.
package report

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/heartmarshall/quotediary-backend/internal/domain"
	"github.com/heartmarshall/quotediary-backend/internal/service/recommend"
)

type reportRepo interface {
	GetByPeriod(ctx context.Context, userID uuid.UUID, periodKey string) (domain.StoredReport, error)
	GetByID(ctx context.Context, userID, id uuid.UUID) (domain.StoredReport, error)
	GetByIDForUpdate(ctx context.Context, userID, id uuid.UUID) (domain.StoredReport, error)
	Create(ctx context.Context, r *domain.PeriodReport) (*domain.PeriodReport, error)
	SaveMetrics(ctx context.Context, id uuid.UUID, metrics domain.MetricsSnapshot) (bool, error)
	SetFeedback(ctx context.Context, id uuid.UUID, fb domain.ReportFeedback) error
}

type quoteRepo interface {
	ListByRange(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]domain.Quote, error)
	GetByIDs(ctx context.Context, userID uuid.UUID, ids []uuid.UUID) ([]domain.Quote, error)
}

type recommender interface {
	Recommend(ctx context.Context, themes []string, limit int) (recommend.Result, error)
}

type themeNormalizer interface {
	NormalizeThemeList(raw []string, bestKnown string) []string
}

type txManager interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type auditLogger interface {
	Log(ctx context.Context, record domain.AuditRecord) error
}

// Config holds the report settings shared by generation and legacy upgrade.
type Config struct {
	WeeklyTarget        int
	MonthlyTarget       int
	RecommendationLimit int
	Location            *time.Location
}

// Target returns the quote-count goal for kind.
func (c Config) Target(kind domain.PeriodKind) int {
	if kind == domain.PeriodMonth {
		return c.MonthlyTarget
	}
	return c.WeeklyTarget
}

// Service owns the period report lifecycle.
type Service struct {
	log         *slog.Logger
	reports     reportRepo
	quotes      quoteRepo
	recommender recommender
	themes      themeNormalizer
	tx          txManager
	audit       auditLogger
	cfg         Config
	now         func() time.Time

	// generating models the Generating state within this process; the
	// unique (user_id, period_key) constraint covers other processes.
	generating singleflight.Group
}

// NewService creates a report service.
func NewService(
	logger *slog.Logger,
	reports reportRepo,
	quotes quoteRepo,
	recommender recommender,
	themes themeNormalizer,
	tx txManager,
	audit auditLogger,
	cfg Config,
) *Service {
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	return &Service{
		log:         logger.With("service", "report"),
		reports:     reports,
		quotes:      quotes,
		recommender: recommender,
		themes:      themes,
		tx:          tx,
		audit:       audit,
		cfg:         cfg,
		now:         time.Now,
	}
}

// Location returns the timezone periods are evaluated in.
func (s *Service) Location() *time.Location { return s.cfg.Location }

// CurrentPeriod derives the period of kind containing now.
func (s *Service) CurrentPeriod(kind domain.PeriodKind) domain.Period {
	return domain.PeriodFor(kind, s.now(), s.cfg.Location)
}
