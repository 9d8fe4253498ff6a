package rest

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/heartmarshall/quotediary-backend/internal/domain"
	"github.com/heartmarshall/quotediary-backend/internal/service/report"
)

var _ reportService = &reportServiceMock{}

type reportServiceMock struct {
	GenerateOrGetFunc  func(ctx context.Context, userID uuid.UUID, period domain.Period) (*domain.PeriodReport, error)
	GetWithDeltaFunc   func(ctx context.Context, userID uuid.UUID, period domain.Period) (report.View, error)
	AttachFeedbackFunc func(ctx context.Context, userID uuid.UUID, input report.FeedbackInput) (*domain.PeriodReport, error)
	CurrentPeriodFunc  func(kind domain.PeriodKind) domain.Period

	calls struct {
		GenerateOrGet []struct {
			UserID uuid.UUID
			Period domain.Period
		}
		GetWithDelta []struct {
			UserID uuid.UUID
			Period domain.Period
		}
		AttachFeedback []struct {
			UserID uuid.UUID
			Input  report.FeedbackInput
		}
	}
	lock sync.RWMutex
}

func (mock *reportServiceMock) GenerateOrGet(ctx context.Context, userID uuid.UUID, period domain.Period) (*domain.PeriodReport, error) {
	if mock.GenerateOrGetFunc == nil {
		panic("reportServiceMock.GenerateOrGetFunc: method is nil but reportService.GenerateOrGet was just called")
	}
	mock.lock.Lock()
	mock.calls.GenerateOrGet = append(mock.calls.GenerateOrGet, struct {
		UserID uuid.UUID
		Period domain.Period
	}{userID, period})
	mock.lock.Unlock()
	return mock.GenerateOrGetFunc(ctx, userID, period)
}

func (mock *reportServiceMock) GetWithDelta(ctx context.Context, userID uuid.UUID, period domain.Period) (report.View, error) {
	if mock.GetWithDeltaFunc == nil {
		panic("reportServiceMock.GetWithDeltaFunc: method is nil but reportService.GetWithDelta was just called")
	}
	mock.lock.Lock()
	mock.calls.GetWithDelta = append(mock.calls.GetWithDelta, struct {
		UserID uuid.UUID
		Period domain.Period
	}{userID, period})
	mock.lock.Unlock()
	return mock.GetWithDeltaFunc(ctx, userID, period)
}

func (mock *reportServiceMock) AttachFeedback(ctx context.Context, userID uuid.UUID, input report.FeedbackInput) (*domain.PeriodReport, error) {
	if mock.AttachFeedbackFunc == nil {
		panic("reportServiceMock.AttachFeedbackFunc: method is nil but reportService.AttachFeedback was just called")
	}
	mock.lock.Lock()
	mock.calls.AttachFeedback = append(mock.calls.AttachFeedback, struct {
		UserID uuid.UUID
		Input  report.FeedbackInput
	}{userID, input})
	mock.lock.Unlock()
	return mock.AttachFeedbackFunc(ctx, userID, input)
}

func (mock *reportServiceMock) CurrentPeriod(kind domain.PeriodKind) domain.Period {
	if mock.CurrentPeriodFunc == nil {
		panic("reportServiceMock.CurrentPeriodFunc: method is nil but reportService.CurrentPeriod was just called")
	}
	return mock.CurrentPeriodFunc(kind)
}

func (mock *reportServiceMock) GenerateOrGetCalls() []struct {
	UserID uuid.UUID
	Period domain.Period
} {
	mock.lock.RLock()
	defer mock.lock.RUnlock()
	return mock.calls.GenerateOrGet
}

func (mock *reportServiceMock) GetWithDeltaCalls() []struct {
	UserID uuid.UUID
	Period domain.Period
} {
	mock.lock.RLock()
	defer mock.lock.RUnlock()
	return mock.calls.GetWithDelta
}

func (mock *reportServiceMock) AttachFeedbackCalls() []struct {
	UserID uuid.UUID
	Input  report.FeedbackInput
} {
	mock.lock.RLock()
	defer mock.lock.RUnlock()
	return mock.calls.AttachFeedback
}
