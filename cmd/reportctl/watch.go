package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/heartmarshall/quotediary-backend/internal/app"
	"github.com/heartmarshall/quotediary-backend/internal/client/reportcache"
	"github.com/heartmarshall/quotediary-backend/internal/config"
)

type watchFlags struct {
	interval      time.Duration
	invalidate    bool
	setOverride   string
	clearOverride bool
}

func newWatchCmd() *cobra.Command {
	var f watchFlags
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Follow the current period report through the local cache",
		Long: "Resolves the signed-in user from the token file, shows the cached report at once " +
			"and reconciles it with the API. With --interval it reloads until interrupted.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.LoadClient()
			if err != nil {
				return err
			}
			return runWatch(cmd.Context(), cfg, f, cmd.OutOrStdout())
		},
	}
	cmd.Flags().DurationVar(&f.interval, "interval", 0, "Reload period; 0 loads once")
	cmd.Flags().BoolVar(&f.invalidate, "invalidate", false, "Drop the cached slot before loading")
	cmd.Flags().StringVar(&f.setOverride, "as", "", "Persist an identity override for this user ID")
	cmd.Flags().BoolVar(&f.clearOverride, "clear-override", false, "Remove the persisted identity override")
	return cmd
}

func runWatch(ctx context.Context, cfg *config.ClientConfig, f watchFlags, out io.Writer) error {
	logger := app.NewLogger(cfg.Log)

	db, err := reportcache.OpenBadger(cfg.CacheDir)
	if err != nil {
		return err
	}
	defer db.Close()

	overrides := reportcache.NewOverrideStore(db)
	switch {
	case f.clearOverride:
		if err := overrides.Clear(ctx); err != nil {
			return err
		}
	case f.setOverride != "":
		userID, err := uuid.Parse(f.setOverride)
		if err != nil {
			return fmt.Errorf("--as: %w", err)
		}
		if err := overrides.Save(ctx, reportcache.Identity{UserID: userID, Source: reportcache.SourcePersisted}); err != nil {
			return err
		}
	}

	resolver := reportcache.NewIdentityResolver(logger,
		reportcache.NewFileTokenProvider(cfg.Identity.TokenPath),
		reportcache.ResolverConfig{
			Attempts: cfg.Identity.Attempts,
			Backoff:  cfg.Identity.Backoff,
			Timeout:  cfg.Identity.Timeout,
		},
		reportcache.Fallbacks{
			URLOverride: cfg.Identity.UserOverride,
			Persisted:   overrides,
		},
	)

	fetcher := reportcache.NewBreakerFetcher(logger,
		reportcache.NewHTTPFetcher(cfg.API.BaseURL, nil, cfg.API.Timeout),
		reportcache.BreakerConfig{
			Name:             "report-api",
			MaxRequests:      cfg.Breaker.MaxRequests,
			Interval:         cfg.Breaker.Interval,
			Timeout:          cfg.Breaker.Timeout,
			FailureThreshold: cfg.Breaker.FailureThreshold,
		},
	)

	var mu sync.Mutex
	view := func(s reportcache.State) {
		mu.Lock()
		defer mu.Unlock()
		fmt.Fprintln(out, formatState(s))
	}

	consumer := reportcache.NewConsumer(logger, resolver, fetcher, reportcache.NewBadgerSlots(db), view,
		reportcache.ConsumerConfig{Kind: cfg.PeriodKind, Location: cfg.Location})
	defer consumer.Close()

	if f.invalidate {
		// The slot key needs a resolved identity, so load first.
		consumer.Load(ctx)
		consumer.Wait()
		if err := consumer.Invalidate(ctx); err != nil {
			return fmt.Errorf("invalidate cache: %w", err)
		}
	}

	consumer.Load(ctx)
	consumer.Wait()
	if f.interval <= 0 {
		return nil
	}

	ticker := time.NewTicker(f.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			logger.Info("watch stopped")
			return nil
		case <-ticker.C:
			if !consumer.Load(ctx) {
				logger.Debug("previous load still running", slog.Duration("interval", f.interval))
			}
		}
	}
}

func formatState(s reportcache.State) string {
	var b strings.Builder
	b.WriteString(s.Status.String())
	if s.PeriodKey != "" {
		fmt.Fprintf(&b, " period=%s", s.PeriodKey)
	}
	if s.Snapshot != nil {
		m := s.Snapshot.Report.Metrics
		fmt.Fprintf(&b, " quotes=%d authors=%d days=%d progress=%d%%",
			m.QuoteCount, m.UniqueAuthorCount, m.ActiveDayCount, m.ProgressPct)
		if s.Snapshot.HasPrevious {
			fmt.Fprintf(&b, " delta=%+d", s.Snapshot.Delta.QuoteCount)
		}
		if themes := s.Snapshot.Report.DominantThemes; len(themes) > 0 {
			fmt.Fprintf(&b, " themes=%s", strings.Join(themes, ","))
		}
	}
	if s.Stale {
		b.WriteString(" (stale)")
	}
	if s.Err != nil {
		fmt.Fprintf(&b, " error=%q", s.Err.Error())
	}
	return b.String()
}
