package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/heartmarshall/quotediary-backend/internal/adapter/postgres"
	"github.com/heartmarshall/quotediary-backend/internal/config"
	"github.com/heartmarshall/quotediary-backend/internal/scheduler"
	"github.com/heartmarshall/quotediary-backend/internal/transport/middleware"
)

const rateLimitCleanup = time.Minute

// Run is the server entry point. It loads configuration, connects to
// PostgreSQL, wires the services, starts the scheduler and serves HTTP
// until ctx is cancelled, then shuts everything down gracefully.
func Run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := NewLogger(cfg.Log)

	logger.Info("starting application",
		slog.String("version", BuildVersion()),
		slog.String("log_level", cfg.Log.Level),
		slog.String("timezone", cfg.Report.Location.String()),
	)

	pool, err := postgres.NewPool(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer pool.Close()

	svc, err := NewServices(logger, pool, cfg.Report)
	if err != nil {
		return err
	}

	logger.Info("taxonomy loaded",
		slog.String("taxonomy_version", svc.Normalizer.Taxonomy().Version()),
		slog.String("universal_category", svc.Recommend.UniversalCategory()),
	)

	// ---------------------------------------------------------------------------
	// HTTP
	// ---------------------------------------------------------------------------

	limiter := middleware.NewRateLimiter(rateLimitCleanup)
	defer limiter.Stop()

	router := NewHTTPHandler(logger, cfg, pool, svc, limiter)

	srv := &http.Server{
		Addr:         net.JoinHostPort(cfg.Server.Host, strconv.Itoa(cfg.Server.Port)),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// ---------------------------------------------------------------------------
	// Scheduler
	// ---------------------------------------------------------------------------

	var sched *scheduler.Scheduler
	if cfg.Scheduler.Enabled {
		sched, err = scheduler.New(logger, svc.Repos.Quotes, svc.Reports, scheduler.Config{
			WeeklySpec:  cfg.Scheduler.WeeklySpec,
			MonthlySpec: cfg.Scheduler.MonthlySpec,
			Concurrency: cfg.Scheduler.Concurrency,
			RunTimeout:  cfg.Scheduler.RunTimeout,
			Location:    cfg.Report.Location,
		})
		if err != nil {
			return fmt.Errorf("create scheduler: %w", err)
		}
		sched.Start(ctx)
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening", slog.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	var serveErr error
	select {
	case err := <-errCh:
		if err != nil {
			serveErr = fmt.Errorf("http server: %w", err)
		}
	case <-ctx.Done():
		logger.Info("shutdown requested")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown", slog.String("error", err.Error()))
	}
	if sched != nil {
		if err := sched.Stop(shutdownCtx); err != nil {
			logger.Error("scheduler shutdown", slog.String("error", err.Error()))
		}
	}

	logger.Info("application stopped")
	return serveErr
}
