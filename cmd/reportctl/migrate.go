package main

import (
	"context"
	"database/sql"
	"fmt"
	"text/tabwriter"

	_ "github.com/jackc/pgx/v5/stdlib" // pgx driver for database/sql
	"github.com/pressly/goose/v3"
	"github.com/spf13/cobra"

	"github.com/heartmarshall/quotediary-backend/internal/config"
	"github.com/heartmarshall/quotediary-backend/migrations"
)

func newMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply or inspect database migrations",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply all pending migrations",
			RunE: func(cmd *cobra.Command, _ []string) error {
				return withProvider(cmd.Context(), func(p *goose.Provider) error {
					results, err := p.Up(cmd.Context())
					for _, r := range results {
						fmt.Fprintf(cmd.OutOrStdout(), "applied %d %s (%s)\n", r.Source.Version, r.Source.Path, r.Duration)
					}
					if err != nil {
						return fmt.Errorf("migrate up: %w", err)
					}
					if len(results) == 0 {
						fmt.Fprintln(cmd.OutOrStdout(), "no pending migrations")
					}
					return nil
				})
			},
		},
		&cobra.Command{
			Use:   "down",
			Short: "Roll back the most recent migration",
			RunE: func(cmd *cobra.Command, _ []string) error {
				return withProvider(cmd.Context(), func(p *goose.Provider) error {
					r, err := p.Down(cmd.Context())
					if err != nil {
						return fmt.Errorf("migrate down: %w", err)
					}
					fmt.Fprintf(cmd.OutOrStdout(), "rolled back %d %s\n", r.Source.Version, r.Source.Path)
					return nil
				})
			},
		},
		&cobra.Command{
			Use:   "status",
			Short: "Show the state of every migration",
			RunE: func(cmd *cobra.Command, _ []string) error {
				return withProvider(cmd.Context(), func(p *goose.Provider) error {
					statuses, err := p.Status(cmd.Context())
					if err != nil {
						return fmt.Errorf("migrate status: %w", err)
					}
					tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
					fmt.Fprintln(tw, "VERSION\tSTATE\tAPPLIED AT\tFILE")
					for _, s := range statuses {
						applied := "-"
						if !s.AppliedAt.IsZero() {
							applied = s.AppliedAt.Format("2006-01-02 15:04:05")
						}
						fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", s.Source.Version, s.State, applied, s.Source.Path)
					}
					return tw.Flush()
				})
			},
		},
	)
	return cmd
}

// withProvider opens a database/sql handle, since goose does not take a
// pgx pool, and runs fn with a provider over the embedded migrations.
func withProvider(ctx context.Context, fn func(p *goose.Provider) error) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	db, err := sql.Open("pgx", cfg.Database.DSN)
	if err != nil {
		return fmt.Errorf("sql.Open: %w", err)
	}
	defer db.Close()

	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("db ping: %w", err)
	}

	provider, err := goose.NewProvider(goose.DialectPostgres, db, migrations.FS)
	if err != nil {
		return fmt.Errorf("goose new provider: %w", err)
	}
	return fn(provider)
}
