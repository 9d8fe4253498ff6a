package rest

import (
	"context"
	"sync"

	"github.com/heartmarshall/quotediary-backend/internal/service/recommend"
)

var _ recommender = &recommenderMock{}

type recommenderMock struct {
	RecommendFunc func(ctx context.Context, themes []string, limit int) (recommend.Result, error)

	calls struct {
		Recommend []struct {
			Themes []string
			Limit  int
		}
	}
	lock sync.RWMutex
}

func (mock *recommenderMock) Recommend(ctx context.Context, themes []string, limit int) (recommend.Result, error) {
	if mock.RecommendFunc == nil {
		panic("recommenderMock.RecommendFunc: method is nil but recommender.Recommend was just called")
	}
	mock.lock.Lock()
	mock.calls.Recommend = append(mock.calls.Recommend, struct {
		Themes []string
		Limit  int
	}{themes, limit})
	mock.lock.Unlock()
	return mock.RecommendFunc(ctx, themes, limit)
}

func (mock *recommenderMock) RecommendCalls() []struct {
	Themes []string
	Limit  int
} {
	mock.lock.RLock()
	defer mock.lock.RUnlock()
	return mock.calls.Recommend
}
