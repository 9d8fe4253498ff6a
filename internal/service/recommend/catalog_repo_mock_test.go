package recommend

import (
	"context"
	"sync"

	"github.com/heartmarshall/quotediary-backend/internal/domain"
)

var _ catalogRepo = &catalogRepoMock{}

type catalogRepoMock struct {
	ListActiveFunc func(ctx context.Context) ([]domain.CatalogEntry, error)

	calls struct {
		ListActive []struct {
			Ctx context.Context
		}
	}
	lockListActive sync.RWMutex
}

func (mock *catalogRepoMock) ListActive(ctx context.Context) ([]domain.CatalogEntry, error) {
	if mock.ListActiveFunc == nil {
		panic("catalogRepoMock.ListActiveFunc: method is nil but catalogRepo.ListActive was just called")
	}
	callInfo := struct {
		Ctx context.Context
	}{Ctx: ctx}
	mock.lockListActive.Lock()
	mock.calls.ListActive = append(mock.calls.ListActive, callInfo)
	mock.lockListActive.Unlock()
	return mock.ListActiveFunc(ctx)
}

func (mock *catalogRepoMock) ListActiveCalls() []struct {
	Ctx context.Context
} {
	mock.lockListActive.RLock()
	calls := mock.calls.ListActive
	mock.lockListActive.RUnlock()
	return calls
}
