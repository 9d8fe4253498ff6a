package report

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/heartmarshall/quotediary-backend/internal/domain"
)

var _ reportRepo = &reportRepoMock{}

type reportRepoMock struct {
	GetByPeriodFunc      func(ctx context.Context, userID uuid.UUID, periodKey string) (domain.StoredReport, error)
	GetByIDFunc          func(ctx context.Context, userID uuid.UUID, id uuid.UUID) (domain.StoredReport, error)
	GetByIDForUpdateFunc func(ctx context.Context, userID uuid.UUID, id uuid.UUID) (domain.StoredReport, error)
	CreateFunc           func(ctx context.Context, r *domain.PeriodReport) (*domain.PeriodReport, error)
	SaveMetricsFunc      func(ctx context.Context, id uuid.UUID, metrics domain.MetricsSnapshot) (bool, error)
	SetFeedbackFunc      func(ctx context.Context, id uuid.UUID, fb domain.ReportFeedback) error

	calls struct {
		GetByPeriod []struct {
			Ctx       context.Context
			UserID    uuid.UUID
			PeriodKey string
		}
		GetByID []struct {
			Ctx    context.Context
			UserID uuid.UUID
			ID     uuid.UUID
		}
		GetByIDForUpdate []struct {
			Ctx    context.Context
			UserID uuid.UUID
			ID     uuid.UUID
		}
		Create []struct {
			Ctx context.Context
			R   *domain.PeriodReport
		}
		SaveMetrics []struct {
			Ctx     context.Context
			ID      uuid.UUID
			Metrics domain.MetricsSnapshot
		}
		SetFeedback []struct {
			Ctx context.Context
			ID  uuid.UUID
			Fb  domain.ReportFeedback
		}
	}
	lockGetByPeriod      sync.RWMutex
	lockGetByID          sync.RWMutex
	lockGetByIDForUpdate sync.RWMutex
	lockCreate           sync.RWMutex
	lockSaveMetrics      sync.RWMutex
	lockSetFeedback      sync.RWMutex
}

func (mock *reportRepoMock) GetByPeriod(ctx context.Context, userID uuid.UUID, periodKey string) (domain.StoredReport, error) {
	if mock.GetByPeriodFunc == nil {
		panic("reportRepoMock.GetByPeriodFunc: method is nil but reportRepo.GetByPeriod was just called")
	}
	callInfo := struct {
		Ctx       context.Context
		UserID    uuid.UUID
		PeriodKey string
	}{Ctx: ctx, UserID: userID, PeriodKey: periodKey}
	mock.lockGetByPeriod.Lock()
	mock.calls.GetByPeriod = append(mock.calls.GetByPeriod, callInfo)
	mock.lockGetByPeriod.Unlock()
	return mock.GetByPeriodFunc(ctx, userID, periodKey)
}

func (mock *reportRepoMock) GetByPeriodCalls() []struct {
		Ctx       context.Context
		UserID    uuid.UUID
		PeriodKey string
} {
	mock.lockGetByPeriod.RLock()
	calls := mock.calls.GetByPeriod
	mock.lockGetByPeriod.RUnlock()
	return calls
}

func (mock *reportRepoMock) GetByID(ctx context.Context, userID uuid.UUID, id uuid.UUID) (domain.StoredReport, error) {
	if mock.GetByIDFunc == nil {
		panic("reportRepoMock.GetByIDFunc: method is nil but reportRepo.GetByID was just called")
	}
	callInfo := struct {
		Ctx    context.Context
		UserID uuid.UUID
		ID     uuid.UUID
	}{Ctx: ctx, UserID: userID, ID: id}
	mock.lockGetByID.Lock()
	mock.calls.GetByID = append(mock.calls.GetByID, callInfo)
	mock.lockGetByID.Unlock()
	return mock.GetByIDFunc(ctx, userID, id)
}

func (mock *reportRepoMock) GetByIDCalls() []struct {
		Ctx    context.Context
		UserID uuid.UUID
		ID     uuid.UUID
} {
	mock.lockGetByID.RLock()
	calls := mock.calls.GetByID
	mock.lockGetByID.RUnlock()
	return calls
}

func (mock *reportRepoMock) GetByIDForUpdate(ctx context.Context, userID uuid.UUID, id uuid.UUID) (domain.StoredReport, error) {
	if mock.GetByIDForUpdateFunc == nil {
		panic("reportRepoMock.GetByIDForUpdateFunc: method is nil but reportRepo.GetByIDForUpdate was just called")
	}
	callInfo := struct {
		Ctx    context.Context
		UserID uuid.UUID
		ID     uuid.UUID
	}{Ctx: ctx, UserID: userID, ID: id}
	mock.lockGetByIDForUpdate.Lock()
	mock.calls.GetByIDForUpdate = append(mock.calls.GetByIDForUpdate, callInfo)
	mock.lockGetByIDForUpdate.Unlock()
	return mock.GetByIDForUpdateFunc(ctx, userID, id)
}

func (mock *reportRepoMock) GetByIDForUpdateCalls() []struct {
		Ctx    context.Context
		UserID uuid.UUID
		ID     uuid.UUID
} {
	mock.lockGetByIDForUpdate.RLock()
	calls := mock.calls.GetByIDForUpdate
	mock.lockGetByIDForUpdate.RUnlock()
	return calls
}

func (mock *reportRepoMock) Create(ctx context.Context, r *domain.PeriodReport) (*domain.PeriodReport, error) {
	if mock.CreateFunc == nil {
		panic("reportRepoMock.CreateFunc: method is nil but reportRepo.Create was just called")
	}
	callInfo := struct {
		Ctx context.Context
		R   *domain.PeriodReport
	}{Ctx: ctx, R: r}
	mock.lockCreate.Lock()
	mock.calls.Create = append(mock.calls.Create, callInfo)
	mock.lockCreate.Unlock()
	return mock.CreateFunc(ctx, r)
}

func (mock *reportRepoMock) CreateCalls() []struct {
		Ctx context.Context
		R   *domain.PeriodReport
} {
	mock.lockCreate.RLock()
	calls := mock.calls.Create
	mock.lockCreate.RUnlock()
	return calls
}

func (mock *reportRepoMock) SaveMetrics(ctx context.Context, id uuid.UUID, metrics domain.MetricsSnapshot) (bool, error) {
	if mock.SaveMetricsFunc == nil {
		panic("reportRepoMock.SaveMetricsFunc: method is nil but reportRepo.SaveMetrics was just called")
	}
	callInfo := struct {
		Ctx     context.Context
		ID      uuid.UUID
		Metrics domain.MetricsSnapshot
	}{Ctx: ctx, ID: id, Metrics: metrics}
	mock.lockSaveMetrics.Lock()
	mock.calls.SaveMetrics = append(mock.calls.SaveMetrics, callInfo)
	mock.lockSaveMetrics.Unlock()
	return mock.SaveMetricsFunc(ctx, id, metrics)
}

func (mock *reportRepoMock) SaveMetricsCalls() []struct {
		Ctx     context.Context
		ID      uuid.UUID
		Metrics domain.MetricsSnapshot
} {
	mock.lockSaveMetrics.RLock()
	calls := mock.calls.SaveMetrics
	mock.lockSaveMetrics.RUnlock()
	return calls
}

func (mock *reportRepoMock) SetFeedback(ctx context.Context, id uuid.UUID, fb domain.ReportFeedback) error {
	if mock.SetFeedbackFunc == nil {
		panic("reportRepoMock.SetFeedbackFunc: method is nil but reportRepo.SetFeedback was just called")
	}
	callInfo := struct {
		Ctx context.Context
		ID  uuid.UUID
		Fb  domain.ReportFeedback
	}{Ctx: ctx, ID: id, Fb: fb}
	mock.lockSetFeedback.Lock()
	mock.calls.SetFeedback = append(mock.calls.SetFeedback, callInfo)
	mock.lockSetFeedback.Unlock()
	return mock.SetFeedbackFunc(ctx, id, fb)
}

func (mock *reportRepoMock) SetFeedbackCalls() []struct {
		Ctx context.Context
		ID  uuid.UUID
		Fb  domain.ReportFeedback
} {
	mock.lockSetFeedback.RLock()
	calls := mock.calls.SetFeedback
	mock.lockSetFeedback.RUnlock()
	return calls
}
