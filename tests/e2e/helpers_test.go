//go:build e2e

package e2e_test

import (
	"bytes"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"

	"github.com/heartmarshall/quotediary-backend/internal/adapter/postgres/testhelper"
	"github.com/heartmarshall/quotediary-backend/internal/app"
	"github.com/heartmarshall/quotediary-backend/internal/auth"
	"github.com/heartmarshall/quotediary-backend/internal/config"
	"github.com/heartmarshall/quotediary-backend/internal/transport/middleware"
	"github.com/heartmarshall/quotediary-backend/pkg/reportapi"
)

// ---------------------------------------------------------------------------
// testServer wraps the full-stack HTTP server for E2E tests.
// ---------------------------------------------------------------------------

type testServer struct {
	URL    string
	Client *http.Client
	Pool   *pgxpool.Pool
	jwt    *auth.JWTManager
}

// testLogWriter adapts testing.T to io.Writer for slog.
type testLogWriter struct{ t *testing.T }

func (w testLogWriter) Write(p []byte) (int, error) {
	w.t.Helper()
	w.t.Log(string(p))
	return len(p), nil
}

// setupTestServer bootstraps the application stack the server runs, backed
// by a real PostgreSQL container (shared via testhelper).
func setupTestServer(t *testing.T) *testServer {
	t.Helper()

	pool := testhelper.SetupTestDB(t)
	logger := slog.New(slog.NewTextHandler(testLogWriter{t}, nil))

	cfg := &config.Config{
		Auth: config.AuthConfig{
			JWTSecret:      "test-secret-at-least-32-chars-long!!",
			JWTIssuer:      "test-issuer",
			AccessTokenTTL: 15 * time.Minute,
		},
		CORS: config.CORSConfig{
			AllowedOrigins: "*",
			AllowedMethods: "GET,POST,OPTIONS",
			AllowedHeaders: "Authorization,Content-Type",
			MaxAge:         86400,
		},
		Report: config.ReportConfig{
			WeeklyTarget:        7,
			MonthlyTarget:       30,
			RecommendationLimit: 3,
			Location:            time.UTC,
		},
		RateLimit: config.RateLimitConfig{RequestsPerMinute: 1000, GeneratePerMinute: 100},
	}

	svc, err := app.NewServices(logger, pool, cfg.Report)
	require.NoError(t, err)

	limiter := middleware.NewRateLimiter(time.Minute)
	t.Cleanup(limiter.Stop)

	srv := httptest.NewServer(app.NewHTTPHandler(logger, cfg, pool, svc, limiter))
	t.Cleanup(srv.Close)

	return &testServer{
		URL:    srv.URL,
		Client: srv.Client(),
		Pool:   pool,
		jwt:    auth.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.JWTIssuer, cfg.Auth.AccessTokenTTL),
	}
}

// newUser returns a fresh user ID and an access token for it. Users exist
// only through the tokens they hold.
func (ts *testServer) newUser(t *testing.T) (uuid.UUID, string) {
	t.Helper()
	userID := uuid.New()
	tok, err := ts.jwt.GenerateAccessToken(userID)
	require.NoError(t, err)
	return userID, tok
}

// do sends a JSON request and returns the status and raw body.
func (ts *testServer) do(t *testing.T, method, path, token string, body any) (int, []byte) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, ts.URL+path, reader)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := ts.Client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, raw
}

func decode[T any](t *testing.T, raw []byte) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(raw, &v), "body: %s", raw)
	return v
}

func errorCode(t *testing.T, raw []byte) string {
	t.Helper()
	return decode[reportapi.Error](t, raw).Code
}

func submitQuote(t *testing.T, ts *testServer, token string, req reportapi.SubmitQuoteRequest) reportapi.Quote {
	t.Helper()
	status, raw := ts.do(t, http.MethodPost, "/api/v1/quotes", token, req)
	require.Equal(t, http.StatusCreated, status, "body: %s", raw)
	return decode[reportapi.Quote](t, raw)
}

func ptr[T any](v T) *T { return &v }
