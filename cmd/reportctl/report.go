package main

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/heartmarshall/quotediary-backend/internal/config"
	"github.com/heartmarshall/quotediary-backend/internal/scheduler"
	"github.com/heartmarshall/quotediary-backend/pkg/ctxutil"
	"github.com/heartmarshall/quotediary-backend/pkg/reportapi"
)

type reportFlags struct {
	user   string
	kind   string
	period string
}

func (f *reportFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.user, "user", "", "User ID (required)")
	cmd.Flags().StringVar(&f.kind, "kind", "week", "Period kind: week or month")
	cmd.Flags().StringVar(&f.period, "period", "previous", `Period key ("2025-W03", "2025-03"), "current" or "previous"`)
	_ = cmd.MarkFlagRequired("user")
}

func newGenerateCmd() *cobra.Command {
	var f reportFlags
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate (or fetch) the report of one user and period",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			env, err := openServerEnv(ctx)
			if err != nil {
				return err
			}
			defer env.Close()

			userID, err := uuid.Parse(f.user)
			if err != nil {
				return fmt.Errorf("--user: %w", err)
			}
			kind, err := config.ParsePeriodKind(f.kind)
			if err != nil {
				return fmt.Errorf("--kind: %w", err)
			}
			period, err := periodAt(f.period, env.svc.Reports.CurrentPeriod(kind))
			if err != nil {
				return fmt.Errorf("--period: %w", err)
			}

			ctx = ctxutil.WithUserID(ctx, userID)
			rep, err := env.svc.Reports.GenerateOrGet(ctx, userID, period)
			if err != nil {
				return fmt.Errorf("generate %s: %w", period.Key(), err)
			}
			return writeJSON(cmd.OutOrStdout(), reportapi.FromReport(rep))
		},
	}
	f.register(cmd)
	return cmd
}

func newShowCmd() *cobra.Command {
	var f reportFlags
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print a stored report with its change versus the prior period",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			env, err := openServerEnv(ctx)
			if err != nil {
				return err
			}
			defer env.Close()

			userID, err := uuid.Parse(f.user)
			if err != nil {
				return fmt.Errorf("--user: %w", err)
			}
			kind, err := config.ParsePeriodKind(f.kind)
			if err != nil {
				return fmt.Errorf("--kind: %w", err)
			}
			period, err := periodAt(f.period, env.svc.Reports.CurrentPeriod(kind))
			if err != nil {
				return fmt.Errorf("--period: %w", err)
			}

			view, err := env.svc.Reports.GetWithDelta(ctx, userID, period)
			if err != nil {
				return fmt.Errorf("show %s: %w", period.Key(), err)
			}
			return writeJSON(cmd.OutOrStdout(), reportapi.ReportView{
				Report:      reportapi.FromReport(view.Report),
				Delta:       reportapi.FromDelta(view.Delta),
				HasPrevious: view.HasPrevious,
			})
		},
	}
	f.register(cmd)
	return cmd
}

func newScheduleCmd() *cobra.Command {
	var (
		kind string
		at   string
	)
	cmd := &cobra.Command{
		Use:   "schedule-run",
		Short: "Run one scheduled generation pass for every active user",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			env, err := openServerEnv(ctx)
			if err != nil {
				return err
			}
			defer env.Close()

			k, err := config.ParsePeriodKind(kind)
			if err != nil {
				return fmt.Errorf("--kind: %w", err)
			}
			now := time.Now()
			if strings.TrimSpace(at) != "" {
				now, err = time.ParseInLocation(time.DateOnly, at, env.cfg.Report.Location)
				if err != nil {
					return fmt.Errorf("--at: %w", err)
				}
			}

			sched, err := scheduler.New(env.logger, env.svc.Repos.Quotes, env.svc.Reports, scheduler.Config{
				Concurrency: env.cfg.Scheduler.Concurrency,
				RunTimeout:  env.cfg.Scheduler.RunTimeout,
				Location:    env.cfg.Report.Location,
			})
			if err != nil {
				return err
			}

			summary, err := sched.RunOnce(ctx, k, now)
			if err != nil {
				return err
			}
			env.logger.Info("scheduled run finished",
				slog.String("period", summary.Period.Key()),
				slog.Int("users", summary.Users),
				slog.Int("generated", summary.Generated),
				slog.Int("failed", summary.Failed),
			)
			if summary.Failed > 0 {
				return fmt.Errorf("%d of %d reports failed", summary.Failed, summary.Users)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&kind, "kind", "week", "Period kind: week or month")
	cmd.Flags().StringVar(&at, "at", "", "Pretend today is this date (YYYY-MM-DD); the period before it is generated")
	return cmd
}
