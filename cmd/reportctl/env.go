package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/goccy/go-json"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/heartmarshall/quotediary-backend/internal/adapter/postgres"
	"github.com/heartmarshall/quotediary-backend/internal/app"
	"github.com/heartmarshall/quotediary-backend/internal/config"
	"github.com/heartmarshall/quotediary-backend/internal/domain"
)

// serverEnv is what the database-backed commands share.
type serverEnv struct {
	cfg    *config.Config
	logger *slog.Logger
	pool   *pgxpool.Pool
	svc    *app.Services
}

func (e *serverEnv) Close() { e.pool.Close() }

func openServerEnv(ctx context.Context) (*serverEnv, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	logger := app.NewLogger(cfg.Log)

	pool, err := postgres.NewPool(ctx, cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	svc, err := app.NewServices(logger, pool, cfg.Report)
	if err != nil {
		pool.Close()
		return nil, err
	}

	return &serverEnv{cfg: cfg, logger: logger, pool: pool, svc: svc}, nil
}

// periodAt resolves a --period argument. "current" and "previous" are
// relative to current, which carries the kind; anything else is a period key.
func periodAt(raw string, current domain.Period) (domain.Period, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "previous":
		return current.Previous(), nil
	case "current":
		return current, nil
	default:
		return domain.ParsePeriod(raw)
	}
}

func writeJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}
