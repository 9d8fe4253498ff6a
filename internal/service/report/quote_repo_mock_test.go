package report

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/heartmarshall/quotediary-backend/internal/domain"
)

var _ quoteRepo = &quoteRepoMock{}

type quoteRepoMock struct {
	ListByRangeFunc func(ctx context.Context, userID uuid.UUID, from time.Time, to time.Time) ([]domain.Quote, error)
	GetByIDsFunc    func(ctx context.Context, userID uuid.UUID, ids []uuid.UUID) ([]domain.Quote, error)

	calls struct {
		ListByRange []struct {
			Ctx    context.Context
			UserID uuid.UUID
			From   time.Time
			To     time.Time
		}
		GetByIDs []struct {
			Ctx    context.Context
			UserID uuid.UUID
			Ids    []uuid.UUID
		}
	}
	lockListByRange sync.RWMutex
	lockGetByIDs    sync.RWMutex
}

func (mock *quoteRepoMock) ListByRange(ctx context.Context, userID uuid.UUID, from time.Time, to time.Time) ([]domain.Quote, error) {
	if mock.ListByRangeFunc == nil {
		panic("quoteRepoMock.ListByRangeFunc: method is nil but quoteRepo.ListByRange was just called")
	}
	callInfo := struct {
		Ctx    context.Context
		UserID uuid.UUID
		From   time.Time
		To     time.Time
	}{Ctx: ctx, UserID: userID, From: from, To: to}
	mock.lockListByRange.Lock()
	mock.calls.ListByRange = append(mock.calls.ListByRange, callInfo)
	mock.lockListByRange.Unlock()
	return mock.ListByRangeFunc(ctx, userID, from, to)
}

func (mock *quoteRepoMock) ListByRangeCalls() []struct {
		Ctx    context.Context
		UserID uuid.UUID
		From   time.Time
		To     time.Time
} {
	mock.lockListByRange.RLock()
	calls := mock.calls.ListByRange
	mock.lockListByRange.RUnlock()
	return calls
}

func (mock *quoteRepoMock) GetByIDs(ctx context.Context, userID uuid.UUID, ids []uuid.UUID) ([]domain.Quote, error) {
	if mock.GetByIDsFunc == nil {
		panic("quoteRepoMock.GetByIDsFunc: method is nil but quoteRepo.GetByIDs was just called")
	}
	callInfo := struct {
		Ctx    context.Context
		UserID uuid.UUID
		Ids    []uuid.UUID
	}{Ctx: ctx, UserID: userID, Ids: ids}
	mock.lockGetByIDs.Lock()
	mock.calls.GetByIDs = append(mock.calls.GetByIDs, callInfo)
	mock.lockGetByIDs.Unlock()
	return mock.GetByIDsFunc(ctx, userID, ids)
}

func (mock *quoteRepoMock) GetByIDsCalls() []struct {
		Ctx    context.Context
		UserID uuid.UUID
		Ids    []uuid.UUID
} {
	mock.lockGetByIDs.RLock()
	calls := mock.calls.GetByIDs
	mock.lockGetByIDs.RUnlock()
	return calls
}
