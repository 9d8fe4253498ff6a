package reportcache

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/heartmarshall/quotediary-backend/internal/domain"
	"github.com/heartmarshall/quotediary-backend/internal/metrics"
)

// Status is what a consumer currently shows. Each failure mode has its own
// status so that callers can present them differently.
type Status int

const (
	StatusIdle Status = iota
	StatusLoading
	StatusReady
	StatusNotGenerated
	StatusUnavailable
	StatusIdentityTimeout
	StatusNoIdentity
)

func (s Status) String() string {
	switch s {
	case StatusLoading:
		return "loading"
	case StatusReady:
		return "ready"
	case StatusNotGenerated:
		return "not_generated"
	case StatusUnavailable:
		return "unavailable"
	case StatusIdentityTimeout:
		return "identity_timeout"
	case StatusNoIdentity:
		return "no_identity"
	default:
		return "idle"
	}
}

// State is one update delivered to the View.
type State struct {
	Status    Status
	PeriodKey string
	Snapshot  *Snapshot
	FetchedAt time.Time
	// Stale is set when Snapshot is cached data that the latest refresh
	// could not confirm.
	Stale bool
	Err   error
}

// View receives state updates. It runs on the goroutine that produced the
// update and must not call back into the Consumer.
type View func(State)

type identityResolver interface {
	Resolve(ctx context.Context) (Identity, error)
}

// ConsumerConfig selects the period a consumer follows.
type ConsumerConfig struct {
	Kind     domain.PeriodKind
	Location *time.Location
}

// Consumer drives one view of the current period report.
type Consumer struct {
	log      *slog.Logger
	resolver identityResolver
	fetcher  Fetcher
	slots    SlotStore
	view     View
	kind     domain.PeriodKind
	loc      *time.Location
	now      func() time.Time

	mu       sync.Mutex
	inFlight bool
	closed   bool
	identity *Identity
	shown    *CacheEntry

	// emitMu serializes View calls with Close so nothing is delivered
	// after Close returns.
	emitMu sync.Mutex
	bg     sync.WaitGroup
}

// NewConsumer creates a consumer. It shows nothing until Load is called.
func NewConsumer(logger *slog.Logger, resolver identityResolver, fetcher Fetcher, slots SlotStore, view View, cfg ConsumerConfig) *Consumer {
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if cfg.Kind == "" {
		cfg.Kind = domain.PeriodWeek
	}
	return &Consumer{
		log:      logger.With("component", "report_consumer", "kind", string(cfg.Kind)),
		resolver: resolver,
		fetcher:  fetcher,
		slots:    slots,
		view:     view,
		kind:     cfg.Kind,
		loc:      cfg.Location,
		now:      time.Now,
	}
}

// Load shows the report of the current period. It returns false without
// doing anything while a previous Load or its background refresh is still
// running, or after Close.
//
// A cached entry for exactly the current period key is shown at once and
// refreshed in the background. Anything else is a miss: Loading is shown
// and the report is fetched before Load returns.
func (c *Consumer) Load(ctx context.Context) bool {
	c.mu.Lock()
	if c.inFlight || c.closed {
		c.mu.Unlock()
		return false
	}
	c.inFlight = true
	c.mu.Unlock()

	background := false
	defer func() {
		if !background {
			c.finish()
		}
	}()

	id, err := c.resolver.Resolve(ctx)
	switch {
	case errors.Is(err, domain.ErrIdentityTimeout):
		c.emit(State{Status: StatusIdentityTimeout, Err: err})
		return true
	case err != nil:
		c.emit(State{Status: StatusUnavailable, Err: err})
		return true
	case id.Anonymous:
		c.emit(State{Status: StatusNoIdentity})
		return true
	}

	c.mu.Lock()
	if c.identity == nil || c.identity.UserID != id.UserID {
		// Another user's report must not take part in reconciliation.
		c.shown = nil
	}
	c.identity = &id
	c.mu.Unlock()

	period := domain.PeriodFor(c.kind, c.now(), c.loc)
	key := slotKey(id, c.kind)

	cached, err := c.slots.Get(ctx, key)
	if err != nil {
		c.log.WarnContext(ctx, "read cache slot", slog.String("error", err.Error()))
		cached = nil
	}

	switch {
	case cached == nil:
		metrics.RecordCacheLookup("miss")
	case cached.PeriodKey != period.Key():
		metrics.RecordCacheLookup("key_mismatch")
		cached = nil
	default:
		metrics.RecordCacheLookup("hit")
	}

	if cached != nil {
		c.show(*cached, false, nil)
		background = true
		c.bg.Add(1)
		go func() {
			defer c.bg.Done()
			defer c.finish()
			c.refresh(context.WithoutCancel(ctx), id, period, key)
		}()
		return true
	}

	c.emit(State{Status: StatusLoading, PeriodKey: period.Key()})
	c.fetchNow(ctx, id, period, key)
	return true
}

// fetchNow handles a miss: nothing for this period is displayed yet.
func (c *Consumer) fetchNow(ctx context.Context, id Identity, period domain.Period, key string) {
	snap, err := c.fetcher.Fetch(ctx, id, period)
	switch {
	case err == nil:
		entry := CacheEntry{PeriodKey: period.Key(), Snapshot: *snap, FetchedAt: c.now().UTC()}
		c.store(ctx, key, entry)
		c.show(entry, false, nil)
	case errors.Is(err, domain.ErrReportNotFound):
		c.emit(State{Status: StatusNotGenerated, PeriodKey: period.Key(), Err: err})
	default:
		c.emit(State{Status: StatusUnavailable, PeriodKey: period.Key(), Err: err})
	}
}

// refresh revalidates a displayed cache hit.
func (c *Consumer) refresh(ctx context.Context, id Identity, period domain.Period, key string) {
	snap, err := c.fetcher.Fetch(ctx, id, period)
	if err != nil {
		c.mu.Lock()
		shown := c.shown
		c.mu.Unlock()

		if errors.Is(err, domain.ErrStorageUnavailable) && shown != nil {
			metrics.RecordCacheRefresh("stale")
			c.show(*shown, true, err)
			return
		}
		metrics.RecordCacheRefresh("failed")
		c.log.WarnContext(ctx, "background refresh failed", slog.String("period", period.Key()), slog.String("error", err.Error()))
		return
	}

	entry := CacheEntry{PeriodKey: period.Key(), Snapshot: *snap, FetchedAt: c.now().UTC()}

	c.mu.Lock()
	outcome := reconcile(c.shown, entry)
	c.mu.Unlock()

	metrics.RecordCacheRefresh(outcome)
	if outcome != "replaced" {
		return
	}
	c.store(ctx, key, entry)
	c.show(entry, false, nil)
}

// reconcile decides whether fetched should replace shown. Ordering only
// applies within one user and period. A copy with the same report ID and
// sentAt is discarded to avoid flicker; an older copy never replaces a newer
// one regardless of arrival order.
func reconcile(shown *CacheEntry, fetched CacheEntry) string {
	if shown == nil || shown.PeriodKey != fetched.PeriodKey {
		return "replaced"
	}
	cur, next := shown.Snapshot.Report, fetched.Snapshot.Report
	if cur.UserID != next.UserID {
		return "replaced"
	}
	if cur.ID == next.ID && cur.SentAt.Equal(next.SentAt) {
		return "unchanged"
	}
	if next.SentAt.Before(cur.SentAt) {
		return "older"
	}
	return "replaced"
}

// show displays entry unless a newer entry for the same period is already shown.
func (c *Consumer) show(entry CacheEntry, stale bool, err error) {
	c.mu.Lock()
	if c.shown != nil && !stale && reconcile(c.shown, entry) == "older" {
		c.mu.Unlock()
		return
	}
	c.shown = &entry
	c.mu.Unlock()

	snap := entry.Snapshot
	c.emit(State{
		Status:    StatusReady,
		PeriodKey: entry.PeriodKey,
		Snapshot:  &snap,
		FetchedAt: entry.FetchedAt,
		Stale:     stale,
		Err:       err,
	})
}

func (c *Consumer) store(ctx context.Context, key string, entry CacheEntry) {
	if err := c.slots.Put(ctx, key, entry); err != nil {
		c.log.WarnContext(ctx, "write cache slot", slog.String("error", err.Error()))
	}
}

func (c *Consumer) emit(s State) {
	c.emitMu.Lock()
	defer c.emitMu.Unlock()

	c.mu.Lock()
	closed := c.closed
	c.mu.Unlock()
	if closed {
		metrics.RecordCacheRefresh("dropped")
		return
	}
	if c.view != nil {
		c.view(s)
	}
}

func (c *Consumer) finish() {
	c.mu.Lock()
	c.inFlight = false
	c.mu.Unlock()
}

// Close marks the consumer as no longer current. Results that arrive
// later are dropped; no further View calls happen after Close returns.
func (c *Consumer) Close() {
	c.emitMu.Lock()
	defer c.emitMu.Unlock()

	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()
}

// Invalidate discards the cached slot of the last resolved identity.
func (c *Consumer) Invalidate(ctx context.Context) error {
	c.mu.Lock()
	id := c.identity
	c.shown = nil
	c.mu.Unlock()

	if id == nil {
		return nil
	}
	return c.slots.Delete(ctx, slotKey(*id, c.kind))
}

// Wait blocks until background refreshes started by Load have finished.
func (c *Consumer) Wait() {
	c.bg.Wait()
}
