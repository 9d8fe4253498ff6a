package rest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heartmarshall/quotediary-backend/internal/auth"
	"github.com/heartmarshall/quotediary-backend/internal/config"
	"github.com/heartmarshall/quotediary-backend/internal/domain"
	"github.com/heartmarshall/quotediary-backend/internal/service/report"
	"github.com/heartmarshall/quotediary-backend/internal/taxonomy"
	"github.com/heartmarshall/quotediary-backend/internal/transport/middleware"
	"github.com/heartmarshall/quotediary-backend/pkg/reportapi"
)

// ---------------------------------------------------------------------------
// Harness
// ---------------------------------------------------------------------------

var week4 = domain.Period{Kind: domain.PeriodWeek, Year: 2025, Number: 4}

type harness struct {
	quotes  *quoteServiceMock
	reports *reportServiceMock
	rec     *recommenderMock
	entries EntryLoader
	jwt     *auth.JWTManager
	userID  uuid.UUID
	token   string
	handler http.Handler
}

type harnessOpt func(*harness, *config.RateLimitConfig)

func withGenerateLimit(n int) harnessOpt {
	return func(_ *harness, rl *config.RateLimitConfig) { rl.GeneratePerMinute = n }
}

func withEntries(l EntryLoader) harnessOpt {
	return func(h *harness, _ *config.RateLimitConfig) { h.entries = l }
}

func newHarness(t *testing.T, opts ...harnessOpt) *harness {
	t.Helper()

	h := &harness{
		quotes: &quoteServiceMock{},
		reports: &reportServiceMock{
			CurrentPeriodFunc: func(kind domain.PeriodKind) domain.Period {
				return domain.PeriodFor(kind, time.Date(2025, 1, 22, 12, 0, 0, 0, time.UTC), time.UTC)
			},
		},
		rec:    &recommenderMock{},
		jwt:    auth.NewJWTManager("router-test-secret-that-is-32-chars-long", "quotediary", time.Hour),
		userID: uuid.New(),
	}
	rl := config.RateLimitConfig{RequestsPerMinute: 1000, GeneratePerMinute: 1000}
	for _, opt := range opts {
		opt(h, &rl)
	}

	token, err := h.jwt.GenerateAccessToken(h.userID)
	require.NoError(t, err)
	h.token = token

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	limiter := middleware.NewRateLimiter(time.Minute)
	t.Cleanup(limiter.Stop)

	h.handler = NewRouter(RouterDeps{
		Health:      NewHealthHandler(pingerFunc(func(context.Context) error { return nil }), "test", "2025.2"),
		Quotes:      NewQuoteHandler(h.quotes, h.reports, logger),
		Reports:     NewReportHandler(h.reports, h.entries, logger),
		Catalog:     NewCatalogHandler(h.rec, taxonomy.NewNormalizer(taxonomy.Default()), logger),
		Auth:        middleware.Auth(h.jwt),
		RateLimiter: limiter,
		CORS:        config.CORSConfig{AllowedOrigins: "*"},
		RateLimit:   rl,
		Logger:      logger,
	})
	return h
}

// do sends an authenticated request.
func (h *harness) do(method, path, body string) *httptest.ResponseRecorder {
	return h.send(method, path, body, h.token)
}

func (h *harness) send(method, path, body, token string) *httptest.ResponseRecorder {
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.handler.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), "body: %s", rec.Body.String())
	return v
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	return decode[reportapi.Error](t, rec).Code
}

func sampleReport(userID uuid.UUID, recs ...uuid.UUID) *domain.PeriodReport {
	r := &domain.PeriodReport{
		ID:             uuid.New(),
		UserID:         userID,
		Period:         week4,
		Metrics:        domain.MetricsSnapshot{QuoteCount: 5, UniqueAuthorCount: 3, ActiveDayCount: 4, ProgressPct: 71},
		QuoteIDs:       []uuid.UUID{uuid.New()},
		DominantThemes: []string{"Love & Relationships"},
		SentAt:         time.Date(2025, 1, 27, 5, 0, 0, 0, time.UTC),
		CreatedAt:      time.Date(2025, 1, 27, 5, 0, 0, 0, time.UTC),
	}
	for i, id := range recs {
		r.Recommendations = append(r.Recommendations, domain.ReportRecommendation{
			CatalogEntryID: id,
			RelevanceScore: 2 - i,
			Reasoning:      "because",
		})
	}
	return r
}

// ---------------------------------------------------------------------------
// Probes and auth
// ---------------------------------------------------------------------------

func TestRouter_ProbesSkipAuth(t *testing.T) {
	t.Parallel()
	h := newHarness(t)

	for _, path := range []string{"/live", "/ready", "/health", "/metrics"} {
		rec := h.send(http.MethodGet, path, "", "")
		assert.Equal(t, http.StatusOK, rec.Code, path)
	}
}

func TestRouter_RequestIDEchoed(t *testing.T) {
	t.Parallel()
	h := newHarness(t)

	rec := h.send(http.MethodGet, "/live", "", "")
	assert.NotEmpty(t, rec.Header().Get(middleware.RequestIDHeader))
}

func TestRouter_Unauthenticated(t *testing.T) {
	t.Parallel()
	h := newHarness(t)

	rec := h.send(http.MethodGet, "/api/v1/reports/2025-W04", "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, reportapi.CodeUnauthorized, errorCode(t, rec))

	rec = h.send(http.MethodGet, "/api/v1/reports/2025-W04", "", "not-a-jwt")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	anon, err := h.jwt.GenerateAnonymousToken()
	require.NoError(t, err)
	rec = h.send(http.MethodGet, "/api/v1/reports/2025-W04", "", anon)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	assert.Empty(t, h.reports.GetWithDeltaCalls())
}

// ---------------------------------------------------------------------------
// Reports
// ---------------------------------------------------------------------------

func TestReport_Get(t *testing.T) {
	t.Parallel()

	title := "The Art of Loving"
	kept, gone := uuid.New(), uuid.New()
	var loaded []uuid.UUID
	h := newHarness(t, withEntries(func(_ context.Context, ids []uuid.UUID) ([]*domain.CatalogEntry, error) {
		loaded = ids
		return []*domain.CatalogEntry{{ID: kept, Slug: "art-of-loving", Kind: domain.CatalogKindBook, Title: title}, nil}, nil
	}))
	rep := sampleReport(h.userID, kept, gone)
	h.reports.GetWithDeltaFunc = func(_ context.Context, _ uuid.UUID, _ domain.Period) (report.View, error) {
		return report.View{Report: rep, Delta: domain.Delta{QuoteCount: 2, UniqueAuthorCount: -1}, HasPrevious: true}, nil
	}

	rec := h.do(http.MethodGet, "/api/v1/reports/2025-W04", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	view := decode[reportapi.ReportView](t, rec)
	assert.Equal(t, "2025-W04", view.Report.PeriodKey)
	assert.Equal(t, 71, view.Report.Metrics.ProgressPct)
	assert.Equal(t, 2, view.Delta.QuoteCount)
	assert.Equal(t, -1, view.Delta.UniqueAuthorCount)
	assert.True(t, view.HasPrevious)
	require.Len(t, view.Report.Recommendations, 2)
	require.NotNil(t, view.Report.Recommendations[0].Entry)
	assert.Equal(t, title, view.Report.Recommendations[0].Entry.Title)
	assert.Nil(t, view.Report.Recommendations[1].Entry)
	assert.Equal(t, []uuid.UUID{kept, gone}, loaded)

	calls := h.reports.GetWithDeltaCalls()
	require.Len(t, calls, 1)
	assert.Equal(t, h.userID, calls[0].UserID)
	assert.Equal(t, week4, calls[0].Period)
	assert.Empty(t, h.reports.GenerateOrGetCalls())
}

func TestReport_Get_Aliases(t *testing.T) {
	t.Parallel()

	tests := []struct {
		ref  string
		want string
	}{
		{"current-week", "2025-W04"},
		{"CURRENT-MONTH", "2025-01"},
		{"previous-week", "2025-W03"},
		{"previous-month", "2024-12"},
		{"2025-w05", "2025-W05"},
	}

	for _, tt := range tests {
		t.Run(tt.ref, func(t *testing.T) {
			t.Parallel()
			h := newHarness(t)
			h.reports.GetWithDeltaFunc = func(_ context.Context, _ uuid.UUID, p domain.Period) (report.View, error) {
				r := sampleReport(h.userID)
				r.Period = p
				return report.View{Report: r}, nil
			}

			rec := h.do(http.MethodGet, "/api/v1/reports/"+tt.ref, "")
			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
			assert.Equal(t, tt.want, decode[reportapi.ReportView](t, rec).Report.PeriodKey)
		})
	}
}

func TestReport_Get_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		ref        string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"not generated", "2025-W04", fmt.Errorf("report 2025-W04: %w", domain.ErrReportNotFound), http.StatusNotFound, reportapi.CodeReportNotGenerated},
		{"storage", "2025-W04", domain.StorageError("select report", errors.New("conn reset")), http.StatusServiceUnavailable, reportapi.CodeStorageUnavailable},
		{"unexpected", "2025-W04", errors.New("boom"), http.StatusInternalServerError, reportapi.CodeInternal},
		{"bad week", "2025-W99", nil, http.StatusBadRequest, reportapi.CodeValidation},
		{"garbage", "last-tuesday", nil, http.StatusBadRequest, reportapi.CodeValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			h := newHarness(t)
			h.reports.GetWithDeltaFunc = func(context.Context, uuid.UUID, domain.Period) (report.View, error) {
				return report.View{}, tt.err
			}

			rec := h.do(http.MethodGet, "/api/v1/reports/"+tt.ref, "")
			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantCode, errorCode(t, rec))
		})
	}
}

func TestReport_Get_HydrationFailureStillServes(t *testing.T) {
	t.Parallel()

	h := newHarness(t, withEntries(func(context.Context, []uuid.UUID) ([]*domain.CatalogEntry, error) {
		return nil, domain.StorageError("select catalog", errors.New("timeout"))
	}))
	h.reports.GetWithDeltaFunc = func(context.Context, uuid.UUID, domain.Period) (report.View, error) {
		return report.View{Report: sampleReport(h.userID, uuid.New())}, nil
	}

	rec := h.do(http.MethodGet, "/api/v1/reports/2025-W04", "")
	require.Equal(t, http.StatusOK, rec.Code)
	view := decode[reportapi.ReportView](t, rec)
	require.Len(t, view.Report.Recommendations, 1)
	assert.Nil(t, view.Report.Recommendations[0].Entry)
}

func TestReport_Generate(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	rep := sampleReport(h.userID)
	h.reports.GenerateOrGetFunc = func(context.Context, uuid.UUID, domain.Period) (*domain.PeriodReport, error) {
		return rep, nil
	}

	rec := h.do(http.MethodPost, "/api/v1/reports/2025-W04/generate", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, rep.ID, decode[reportapi.Report](t, rec).ID)

	calls := h.reports.GenerateOrGetCalls()
	require.Len(t, calls, 1)
	assert.Equal(t, h.userID, calls[0].UserID)
	assert.Equal(t, week4, calls[0].Period)
}

func TestReport_Generate_EmptyCatalog(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	h.reports.GenerateOrGetFunc = func(context.Context, uuid.UUID, domain.Period) (*domain.PeriodReport, error) {
		return nil, fmt.Errorf("recommend: %w", domain.ErrEmptyCatalog)
	}

	rec := h.do(http.MethodPost, "/api/v1/reports/2025-W04/generate", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, reportapi.CodeEmptyCatalog, errorCode(t, rec))
}

func TestReport_Generate_RateLimited(t *testing.T) {
	t.Parallel()

	h := newHarness(t, withGenerateLimit(1))
	h.reports.GenerateOrGetFunc = func(context.Context, uuid.UUID, domain.Period) (*domain.PeriodReport, error) {
		return sampleReport(h.userID), nil
	}
	h.reports.GetWithDeltaFunc = func(context.Context, uuid.UUID, domain.Period) (report.View, error) {
		return report.View{Report: sampleReport(h.userID)}, nil
	}

	assert.Equal(t, http.StatusOK, h.do(http.MethodPost, "/api/v1/reports/2025-W04/generate", "").Code)

	rec := h.do(http.MethodPost, "/api/v1/reports/2025-W04/generate", "")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, reportapi.CodeRateLimited, errorCode(t, rec))
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))

	// Reads have their own budget.
	assert.Equal(t, http.StatusOK, h.do(http.MethodGet, "/api/v1/reports/2025-W04", "").Code)
	assert.Len(t, h.reports.GenerateOrGetCalls(), 1)
}

func TestReport_Feedback(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	rep := sampleReport(h.userID)
	h.reports.AttachFeedbackFunc = func(_ context.Context, _ uuid.UUID, in report.FeedbackInput) (*domain.PeriodReport, error) {
		out := *rep
		out.Feedback = &domain.ReportFeedback{Rating: in.Rating, Comment: in.Comment, CreatedAt: time.Now()}
		return &out, nil
	}

	rec := h.do(http.MethodPost, "/api/v1/reports/"+rep.ID.String()+"/feedback", `{"rating":4,"comment":"helpful"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	got := decode[reportapi.Report](t, rec)
	require.NotNil(t, got.Feedback)
	assert.Equal(t, 4, got.Feedback.Rating)

	calls := h.reports.AttachFeedbackCalls()
	require.Len(t, calls, 1)
	assert.Equal(t, h.userID, calls[0].UserID)
	assert.Equal(t, rep.ID, calls[0].Input.ReportID)
	require.NotNil(t, calls[0].Input.Comment)
	assert.Equal(t, "helpful", *calls[0].Input.Comment)
}

func TestReport_Feedback_Errors(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	h.reports.AttachFeedbackFunc = func(context.Context, uuid.UUID, report.FeedbackInput) (*domain.PeriodReport, error) {
		return nil, fmt.Errorf("feedback already recorded: %w", domain.ErrConflict)
	}

	rec := h.do(http.MethodPost, "/api/v1/reports/2025-W04/feedback", `{"rating":4}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, reportapi.CodeValidation, errorCode(t, rec))

	rec = h.do(http.MethodPost, "/api/v1/reports/"+uuid.NewString()+"/feedback", `{"rating":`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = h.do(http.MethodPost, "/api/v1/reports/"+uuid.NewString()+"/feedback", `{"rating":4}`)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, reportapi.CodeConflict, errorCode(t, rec))

	assert.Len(t, h.reports.AttachFeedbackCalls(), 1)
}
