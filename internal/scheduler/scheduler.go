// Package scheduler generates the reports of the period that just ended
// for every user who wrote quotes in it.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	rcron "github.com/robfig/cron/v3"
	"golang.org/x/sync/errgroup"

	"github.com/heartmarshall/quotediary-backend/internal/domain"
	"github.com/heartmarshall/quotediary-backend/internal/metrics"
)

type userLister interface {
	ListUserIDsInRange(ctx context.Context, from, to time.Time) ([]uuid.UUID, error)
}

type reportGenerator interface {
	GenerateOrGet(ctx context.Context, userID uuid.UUID, period domain.Period) (*domain.PeriodReport, error)
}

// Config controls when and how wide generation runs.
type Config struct {
	WeeklySpec  string
	MonthlySpec string
	Concurrency int
	RunTimeout  time.Duration
	// Location is the report timezone; cron specs are evaluated in it.
	Location *time.Location
}

// Summary describes one run.
type Summary struct {
	Period    domain.Period
	Users     int
	Generated int
	Failed    int
}

// Scheduler runs generation on cron schedules.
type Scheduler struct {
	log     *slog.Logger
	users   userLister
	reports reportGenerator
	cfg     Config
	cron    *rcron.Cron
	now     func() time.Time

	mu      sync.Mutex
	baseCtx context.Context
}

// New creates a scheduler and registers the weekly and monthly jobs.
// An empty spec disables that job.
func New(logger *slog.Logger, users userLister, reports reportGenerator, cfg Config) (*Scheduler, error) {
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if cfg.Concurrency < 1 {
		cfg.Concurrency = 1
	}

	log := logger.With("component", "scheduler")
	s := &Scheduler{
		log:     log,
		users:   users,
		reports: reports,
		cfg:     cfg,
		now:     time.Now,
		baseCtx: context.Background(),
	}

	cl := cronLogger{log: log}
	s.cron = rcron.New(
		rcron.WithLocation(cfg.Location),
		rcron.WithLogger(cl),
		rcron.WithChain(rcron.Recover(cl), rcron.SkipIfStillRunning(cl)),
	)

	jobs := []struct {
		spec string
		kind domain.PeriodKind
	}{
		{cfg.WeeklySpec, domain.PeriodWeek},
		{cfg.MonthlySpec, domain.PeriodMonth},
	}
	for _, j := range jobs {
		if j.spec == "" {
			continue
		}
		kind := j.kind
		if _, err := s.cron.AddFunc(j.spec, func() { s.run(kind) }); err != nil {
			return nil, fmt.Errorf("scheduler: %s spec %q: %w", kind, j.spec, err)
		}
	}

	return s, nil
}

// Start begins firing jobs. Runs are cancelled when ctx is.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	s.baseCtx = ctx
	s.mu.Unlock()

	s.cron.Start()
	s.log.InfoContext(ctx, "scheduler started",
		slog.Int("jobs", len(s.cron.Entries())),
		slog.String("timezone", s.cfg.Location.String()),
	)
}

// Stop stops firing jobs and waits for running ones until ctx expires.
func (s *Scheduler) Stop(ctx context.Context) error {
	done := s.cron.Stop().Done()
	select {
	case <-done:
		s.log.InfoContext(ctx, "scheduler stopped")
		return nil
	case <-ctx.Done():
		return fmt.Errorf("scheduler: stop: %w", ctx.Err())
	}
}

func (s *Scheduler) run(kind domain.PeriodKind) {
	s.mu.Lock()
	base := s.baseCtx
	s.mu.Unlock()

	ctx := base
	if s.cfg.RunTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(base, s.cfg.RunTimeout)
		defer cancel()
	}

	sum, err := s.RunOnce(ctx, kind, s.now())
	if err != nil {
		s.log.ErrorContext(ctx, "scheduled generation failed",
			slog.String("kind", kind.String()),
			slog.String("error", err.Error()),
		)
		return
	}
	s.log.InfoContext(ctx, "scheduled generation finished",
		slog.String("period", sum.Period.Key()),
		slog.Int("users", sum.Users),
		slog.Int("generated", sum.Generated),
		slog.Int("failed", sum.Failed),
	)
}

// RunOnce generates the period of kind preceding the one containing now,
// for every user with quotes in it. A failure for one user does not stop
// the others; it is counted in Summary.Failed. The returned error is only
// set when the run as a whole could not proceed.
func (s *Scheduler) RunOnce(ctx context.Context, kind domain.PeriodKind, now time.Time) (Summary, error) {
	period := domain.PeriodFor(kind, now, s.cfg.Location).Previous()
	sum := Summary{Period: period}

	from, to := period.Bounds(s.cfg.Location)
	users, err := s.users.ListUserIDsInRange(ctx, from, to)
	if err != nil {
		return sum, fmt.Errorf("list users for %s: %w", period.Key(), err)
	}
	sum.Users = len(users)

	var generated, failed atomic.Int64
	var g errgroup.Group
	g.SetLimit(s.cfg.Concurrency)

	for _, userID := range users {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			_, err := s.reports.GenerateOrGet(ctx, userID, period)
			metrics.RecordSchedulerReport(kind, err)
			if err != nil {
				failed.Add(1)
				s.log.WarnContext(ctx, "report generation failed",
					slog.String("user_id", userID.String()),
					slog.String("period", period.Key()),
					slog.String("class", metrics.ErrorClass(err)),
					slog.String("error", err.Error()),
				)
				return nil
			}
			generated.Add(1)
			return nil
		})
	}
	_ = g.Wait()

	sum.Generated = int(generated.Load())
	sum.Failed = int(failed.Load())

	if err := ctx.Err(); err != nil {
		return sum, fmt.Errorf("run %s: %w", period.Key(), err)
	}
	return sum, nil
}

// cronLogger routes cron's own logging through slog.
type cronLogger struct {
	log *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.log.Debug("cron: "+msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	if err == nil {
		err = errors.New("unknown")
	}
	l.log.Error("cron: "+msg, append(keysAndValues, "error", err.Error())...)
}
