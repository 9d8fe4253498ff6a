package app

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/heartmarshall/quotediary-backend/internal/config"
	"github.com/heartmarshall/quotediary-backend/pkg/ctxutil"
)

// NewLogger creates the process logger from cfg, writes to os.Stderr and
// installs it as the slog default.
//
// Format "json" produces structured JSON output; anything else produces
// text with source locations. Level is one of debug, info, warn, error
// (case-insensitive); it defaults to info. Records logged with a context
// carry its request_id and user_id.
func NewLogger(cfg config.LogConfig) *slog.Logger {
	logger := newLogger(os.Stderr, cfg)
	slog.SetDefault(logger)
	return logger
}

func newLogger(w io.Writer, cfg config.LogConfig) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level:     parseLevel(cfg.Level),
		AddSource: !strings.EqualFold(cfg.Format, "json"),
	}

	var handler slog.Handler
	if strings.EqualFold(cfg.Format, "json") {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}

	return slog.New(contextHandler{Handler: handler})
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// contextHandler adds the context identifiers to every record that does
// not already carry them.
type contextHandler struct {
	slog.Handler
}

func (h contextHandler) Handle(ctx context.Context, r slog.Record) error {
	attrs := ctxutil.LogAttrs(ctx)
	if len(attrs) == 0 {
		return h.Handler.Handle(ctx, r)
	}

	present := make(map[string]bool, len(attrs))
	r.Attrs(func(a slog.Attr) bool {
		present[a.Key] = true
		return true
	})
	for _, a := range attrs {
		if !present[a.Key] {
			r.AddAttrs(a)
		}
	}
	return h.Handler.Handle(ctx, r)
}

func (h contextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return contextHandler{Handler: h.Handler.WithAttrs(attrs)}
}

func (h contextHandler) WithGroup(name string) slog.Handler {
	return contextHandler{Handler: h.Handler.WithGroup(name)}
}
