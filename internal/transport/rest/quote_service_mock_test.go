package rest

import (
	"context"
	"sync"

	"github.com/heartmarshall/quotediary-backend/internal/domain"
	"github.com/heartmarshall/quotediary-backend/internal/service/quote"
)

var _ quoteService = &quoteServiceMock{}

type quoteServiceMock struct {
	SubmitFunc        func(ctx context.Context, input quote.SubmitInput) (*domain.Quote, error)
	ReanalyzeFunc     func(ctx context.Context, input quote.ReanalyzeInput) (*domain.Quote, error)
	ListForPeriodFunc func(ctx context.Context, period domain.Period) ([]domain.Quote, error)

	calls struct {
		Submit        []quote.SubmitInput
		Reanalyze     []quote.ReanalyzeInput
		ListForPeriod []domain.Period
	}
	lock sync.RWMutex
}

func (mock *quoteServiceMock) Submit(ctx context.Context, input quote.SubmitInput) (*domain.Quote, error) {
	if mock.SubmitFunc == nil {
		panic("quoteServiceMock.SubmitFunc: method is nil but quoteService.Submit was just called")
	}
	mock.lock.Lock()
	mock.calls.Submit = append(mock.calls.Submit, input)
	mock.lock.Unlock()
	return mock.SubmitFunc(ctx, input)
}

func (mock *quoteServiceMock) Reanalyze(ctx context.Context, input quote.ReanalyzeInput) (*domain.Quote, error) {
	if mock.ReanalyzeFunc == nil {
		panic("quoteServiceMock.ReanalyzeFunc: method is nil but quoteService.Reanalyze was just called")
	}
	mock.lock.Lock()
	mock.calls.Reanalyze = append(mock.calls.Reanalyze, input)
	mock.lock.Unlock()
	return mock.ReanalyzeFunc(ctx, input)
}

func (mock *quoteServiceMock) ListForPeriod(ctx context.Context, period domain.Period) ([]domain.Quote, error) {
	if mock.ListForPeriodFunc == nil {
		panic("quoteServiceMock.ListForPeriodFunc: method is nil but quoteService.ListForPeriod was just called")
	}
	mock.lock.Lock()
	mock.calls.ListForPeriod = append(mock.calls.ListForPeriod, period)
	mock.lock.Unlock()
	return mock.ListForPeriodFunc(ctx, period)
}

func (mock *quoteServiceMock) SubmitCalls() []quote.SubmitInput {
	mock.lock.RLock()
	defer mock.lock.RUnlock()
	return mock.calls.Submit
}

func (mock *quoteServiceMock) ReanalyzeCalls() []quote.ReanalyzeInput {
	mock.lock.RLock()
	defer mock.lock.RUnlock()
	return mock.calls.Reanalyze
}

func (mock *quoteServiceMock) ListForPeriodCalls() []domain.Period {
	mock.lock.RLock()
	defer mock.lock.RUnlock()
	return mock.calls.ListForPeriod
}
