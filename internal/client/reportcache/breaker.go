package reportcache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/heartmarshall/quotediary-backend/internal/domain"
)

// BreakerConfig configures BreakerFetcher.
type BreakerConfig struct {
	Name             string
	MaxRequests      uint32
	Interval         time.Duration
	Timeout          time.Duration
	FailureThreshold uint32
}

// BreakerFetcher wraps a Fetcher with a circuit breaker. An open circuit
// surfaces as domain.ErrStorageUnavailable so the consumer keeps serving
// its cache. Not-generated answers are successes for the breaker.
type BreakerFetcher struct {
	next Fetcher
	cb   *gobreaker.CircuitBreaker[*Snapshot]
}

// NewBreakerFetcher wraps next.
func NewBreakerFetcher(logger *slog.Logger, next Fetcher, cfg BreakerConfig) *BreakerFetcher {
	if cfg.FailureThreshold == 0 {
		cfg.FailureThreshold = 5
	}
	settings := gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.FailureThreshold
		},
		IsSuccessful: func(err error) bool {
			return err == nil || !errors.Is(err, domain.ErrStorageUnavailable)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("report fetch circuit changed state",
				slog.String("breaker", name),
				slog.String("from", from.String()),
				slog.String("to", to.String()),
			)
		},
	}
	return &BreakerFetcher{next: next, cb: gobreaker.NewCircuitBreaker[*Snapshot](settings)}
}

// Fetch delegates to the wrapped fetcher unless the circuit is open.
func (b *BreakerFetcher) Fetch(ctx context.Context, id Identity, period domain.Period) (*Snapshot, error) {
	snap, err := b.cb.Execute(func() (*Snapshot, error) {
		return b.next.Fetch(ctx, id, period)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, fmt.Errorf("report %s: %w: %w", period.Key(), domain.ErrStorageUnavailable, err)
	}
	return snap, err
}

// State returns the breaker state name.
func (b *BreakerFetcher) State() string {
	return b.cb.State().String()
}
