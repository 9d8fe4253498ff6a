package reportcache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/heartmarshall/quotediary-backend/internal/domain"
	"github.com/heartmarshall/quotediary-backend/internal/metrics"
)

// IdentityProvider reports the current user. It returns
// domain.ErrIdentityPending while the user is not known yet.
type IdentityProvider interface {
	Current(ctx context.Context) (Identity, error)
}

type overrideLoader interface {
	Load(ctx context.Context) (Identity, bool, error)
}

// ResolverConfig bounds identity polling.
type ResolverConfig struct {
	Attempts int
	Backoff  time.Duration
	Timeout  time.Duration
}

// Fallbacks are consulted in field order once polling is exhausted.
type Fallbacks struct {
	External    *Identity
	URLOverride string
	Persisted   overrideLoader
}

// IdentityResolver polls an IdentityProvider a bounded number of times
// with a fixed backoff under an overall deadline.
type IdentityResolver struct {
	log       *slog.Logger
	provider  IdentityProvider
	cfg       ResolverConfig
	fallbacks Fallbacks
}

// NewIdentityResolver creates a resolver. Non-positive Attempts means one.
func NewIdentityResolver(logger *slog.Logger, provider IdentityProvider, cfg ResolverConfig, fallbacks Fallbacks) *IdentityResolver {
	if cfg.Attempts < 1 {
		cfg.Attempts = 1
	}
	return &IdentityResolver{
		log:       logger.With("component", "identity_resolver"),
		provider:  provider,
		cfg:       cfg,
		fallbacks: fallbacks,
	}
}

// Resolve returns the current identity. When polling is exhausted it
// falls back to the external identity, the URL override and the persisted
// override, in that order, and finally to domain.ErrIdentityTimeout. It
// never invents an identity. Cancellation of ctx is returned as is.
func (r *IdentityResolver) Resolve(ctx context.Context) (Identity, error) {
	pollCtx := ctx
	if r.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		pollCtx, cancel = context.WithTimeout(ctx, r.cfg.Timeout)
		defer cancel()
	}

	id, err := r.poll(pollCtx)
	if err == nil {
		metrics.RecordIdentityResolution(SourceProvider)
		return id, nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return Identity{}, ctxErr
	}

	r.log.WarnContext(ctx, "identity polling exhausted, trying fallbacks", slog.String("error", err.Error()))

	if id, ok := r.fallback(ctx); ok {
		metrics.RecordIdentityResolution(id.Source)
		return id, nil
	}

	metrics.RecordIdentityResolution("timeout")
	return Identity{}, fmt.Errorf("%w: %w", domain.ErrIdentityTimeout, err)
}

func (r *IdentityResolver) poll(ctx context.Context) (Identity, error) {
	var lastErr error
	for attempt := 1; attempt <= r.cfg.Attempts; attempt++ {
		id, err := r.provider.Current(ctx)
		if err == nil {
			if id.Source == "" {
				id.Source = SourceProvider
			}
			return id, nil
		}
		lastErr = err
		if !errors.Is(err, domain.ErrIdentityPending) {
			r.log.DebugContext(ctx, "identity provider failed", slog.Int("attempt", attempt), slog.String("error", err.Error()))
		}
		if attempt == r.cfg.Attempts {
			break
		}

		timer := time.NewTimer(r.cfg.Backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return Identity{}, ctx.Err()
		case <-timer.C:
		}
	}
	return Identity{}, lastErr
}

func (r *IdentityResolver) fallback(ctx context.Context) (Identity, bool) {
	if ext := r.fallbacks.External; ext != nil && ext.UserID != uuid.Nil {
		id := *ext
		id.Source = SourceExternal
		return id, true
	}

	if raw := strings.TrimSpace(r.fallbacks.URLOverride); raw != "" {
		userID, err := uuid.Parse(raw)
		if err == nil && userID != uuid.Nil {
			return Identity{UserID: userID, Source: SourceURL}, true
		}
		r.log.WarnContext(ctx, "ignoring malformed identity override", slog.String("value", raw))
	}

	if r.fallbacks.Persisted != nil {
		id, ok, err := r.fallbacks.Persisted.Load(ctx)
		if err != nil {
			r.log.WarnContext(ctx, "load persisted identity override", slog.String("error", err.Error()))
		} else if ok && id.UserID != uuid.Nil {
			id.Source = SourcePersisted
			return id, true
		}
	}

	return Identity{}, false
}
