// Package reportcache is the consumer side of the reporting pipeline. It
// caches the latest report per user and period kind, serves it immediately
// and reconciles with a background refresh without flicker or duplicate
// fetches.
package reportcache

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/heartmarshall/quotediary-backend/internal/domain"
)

// Identity is the resolved current user. Anonymous identities never fetch.
type Identity struct {
	UserID    uuid.UUID `json:"user_id"`
	Token     string    `json:"token,omitempty"`
	Source    string    `json:"source"`
	Anonymous bool      `json:"anonymous,omitempty"`
}

// Identity sources, in fallback order after the provider itself.
const (
	SourceProvider  = "provider"
	SourceExternal  = "external"
	SourceURL       = "url_override"
	SourcePersisted = "persisted_override"
)

// Snapshot is one successful fetch of the current period report.
type Snapshot struct {
	Report      domain.PeriodReport
	Delta       domain.Delta
	HasPrevious bool
}

// CacheEntry is a cached snapshot. It is valid only for PeriodKey.
type CacheEntry struct {
	PeriodKey string    `json:"period_key"`
	Snapshot  Snapshot  `json:"snapshot"`
	FetchedAt time.Time `json:"fetched_at"`
}

// Fetcher loads the report of the given period for id. Implementations
// return domain.ErrReportNotFound for a period that was never generated and
// wrap transport failures with domain.ErrStorageUnavailable.
type Fetcher interface {
	Fetch(ctx context.Context, id Identity, period domain.Period) (*Snapshot, error)
}

// SlotStore holds one cache slot per key. Get returns nil, nil on a miss.
type SlotStore interface {
	Get(ctx context.Context, key string) (*CacheEntry, error)
	Put(ctx context.Context, key string, entry CacheEntry) error
	Delete(ctx context.Context, key string) error
}

// slotKey scopes slots per user and period kind so that users never share
// a slot.
func slotKey(id Identity, kind domain.PeriodKind) string {
	return id.UserID.String() + "/" + string(kind)
}
