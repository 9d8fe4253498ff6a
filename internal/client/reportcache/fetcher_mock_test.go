package reportcache

import (
	"context"
	"sync"

	"github.com/heartmarshall/quotediary-backend/internal/domain"
)

var _ Fetcher = &fetcherMock{}

type fetcherMock struct {
	FetchFunc func(ctx context.Context, id Identity, period domain.Period) (*Snapshot, error)

	calls struct {
		Fetch []struct {
			Ctx    context.Context
			ID     Identity
			Period domain.Period
		}
	}
	lockFetch sync.RWMutex
}

func (mock *fetcherMock) Fetch(ctx context.Context, id Identity, period domain.Period) (*Snapshot, error) {
	if mock.FetchFunc == nil {
		panic("fetcherMock.FetchFunc: method is nil but Fetcher.Fetch was just called")
	}
	callInfo := struct {
		Ctx    context.Context
		ID     Identity
		Period domain.Period
	}{
		Ctx:    ctx,
		ID:     id,
		Period: period,
	}
	mock.lockFetch.Lock()
	mock.calls.Fetch = append(mock.calls.Fetch, callInfo)
	mock.lockFetch.Unlock()
	return mock.FetchFunc(ctx, id, period)
}

func (mock *fetcherMock) FetchCalls() []struct {
	Ctx    context.Context
	ID     Identity
	Period domain.Period
} {
	var calls []struct {
		Ctx    context.Context
		ID     Identity
		Period domain.Period
	}
	mock.lockFetch.RLock()
	calls = mock.calls.Fetch
	mock.lockFetch.RUnlock()
	return calls
}
