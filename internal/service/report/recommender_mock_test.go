package report

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
			Ctx    context.Context
			Themes []string
			Limit  int
		}
	}
	lockRecommend sync.RWMutex
}

func (mock *recommenderMock) Recommend(ctx context.Context, themes []string, limit int) (recommend.Result, error) {
	if mock.RecommendFunc == nil {
		panic("recommenderMock.RecommendFunc: method is nil but recommender.Recommend was just called")
	}
	callInfo := struct {
		Ctx    context.Context
		Themes []string
		Limit  int
	}{Ctx: ctx, Themes: themes, Limit: limit}
	mock.lockRecommend.Lock()
	mock.calls.Recommend = append(mock.calls.Recommend, callInfo)
	mock.lockRecommend.Unlock()
	return mock.RecommendFunc(ctx, themes, limit)
}

func (mock *recommenderMock) RecommendCalls() []struct {
		Ctx    context.Context
		Themes []string
		Limit  int
} {
	mock.lockRecommend.RLock()
	calls := mock.calls.Recommend
	mock.lockRecommend.RUnlock()
	return calls
}
