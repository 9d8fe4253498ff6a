// Package dataloader batches the catalog lookups made while rendering the
// recommendations of one or more reports into a single query per request.
package dataloader

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/graph-gophers/dataloader/v7"

	"github.com/heartmarshall/quotediary-backend/internal/domain"
)

const (
	maxBatch = 100
	wait     = 2 * time.Millisecond
)

type catalogRepo interface {
	GetByIDs(ctx context.Context, ids []uuid.UUID) ([]domain.CatalogEntry, error)
}

// Repos holds the repositories the loaders read from.
type Repos struct {
	Catalog catalogRepo
}

// Loaders are request-scoped. Results are cached for the lifetime of the
// request, so a catalog entry recommended by both the current and the
// previous report is fetched once.
type Loaders struct {
	// CatalogEntryByID yields nil for IDs that no longer exist.
	CatalogEntryByID *dataloader.Loader[uuid.UUID, *domain.CatalogEntry]
}

// NewLoaders creates a fresh set of loaders.
func NewLoaders(repos *Repos) *Loaders {
	return &Loaders{
		CatalogEntryByID: dataloader.NewBatchedLoader(
			catalogBatch(repos.Catalog),
			dataloader.WithWait[uuid.UUID, *domain.CatalogEntry](wait),
			dataloader.WithBatchCapacity[uuid.UUID, *domain.CatalogEntry](maxBatch),
		),
	}
}

// catalogBatch answers keys in order. Missing entries resolve to nil and a
// repository error fails every key of the batch.
func catalogBatch(repo catalogRepo) dataloader.BatchFunc[uuid.UUID, *domain.CatalogEntry] {
	return func(ctx context.Context, keys []uuid.UUID) []*dataloader.Result[*domain.CatalogEntry] {
		results := make([]*dataloader.Result[*domain.CatalogEntry], len(keys))

		entries, err := repo.GetByIDs(ctx, keys)
		if err != nil {
			for i := range results {
				results[i] = &dataloader.Result[*domain.CatalogEntry]{Error: err}
			}
			return results
		}

		byID := make(map[uuid.UUID]*domain.CatalogEntry, len(entries))
		for i := range entries {
			byID[entries[i].ID] = &entries[i]
		}
		for i, id := range keys {
			results[i] = &dataloader.Result[*domain.CatalogEntry]{Data: byID[id]}
		}
		return results
	}
}

// ---------------------------------------------------------------------------
// Request scope
// ---------------------------------------------------------------------------

type loadersKey struct{}

// WithLoaders stores l in ctx.
func WithLoaders(ctx context.Context, l *Loaders) context.Context {
	return context.WithValue(ctx, loadersKey{}, l)
}

// FromContext returns the request's loaders, or nil outside Middleware.
func FromContext(ctx context.Context) *Loaders {
	l, _ := ctx.Value(loadersKey{}).(*Loaders)
	return l
}

// Middleware installs fresh loaders on every request.
func Middleware(repos *Repos) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(WithLoaders(r.Context(), NewLoaders(repos))))
		})
	}
}

// LoadCatalogEntries resolves ids through the request's loaders, falling
// back to a one-off set outside a request. The result is aligned with ids.
func LoadCatalogEntries(ctx context.Context, repos *Repos, ids []uuid.UUID) ([]*domain.CatalogEntry, error) {
	l := FromContext(ctx)
	if l == nil {
		l = NewLoaders(repos)
	}
	entries, errs := l.CatalogEntryByID.LoadMany(ctx, ids)()
	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return entries, nil
}
