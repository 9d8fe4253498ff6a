package rest

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/heartmarshall/quotediary-backend/internal/config"
	"github.com/heartmarshall/quotediary-backend/internal/transport/middleware"
)

// RouterDeps collects everything the router wires together.
type RouterDeps struct {
	Health  *HealthHandler
	Quotes  *QuoteHandler
	Reports *ReportHandler
	Catalog *CatalogHandler

	// Auth validates bearer tokens.
	Auth middleware.Middleware
	// Loaders installs per-request catalog loaders. Optional.
	Loaders     func(http.Handler) http.Handler
	RateLimiter *middleware.RateLimiter

	CORS      config.CORSConfig
	RateLimit config.RateLimitConfig
	Logger    *slog.Logger
}

// NewRouter builds the HTTP handler. Probes and /metrics sit outside the
// API group and skip auth and rate limiting.
func NewRouter(d RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID())
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Recovery(d.Logger))
	r.Use(middleware.Logger(d.Logger))
	r.Use(middleware.CORS(d.CORS))

	r.Get("/live", d.Health.Live)
	r.Get("/ready", d.Health.Ready)
	r.Get("/health", d.Health.Health)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Chain(
			middleware.Metrics(),
			d.Auth,
			d.RateLimiter.Limit("api", d.RateLimit.RequestsPerMinute),
			middleware.Middleware(d.Loaders),
		))

		r.Route("/quotes", func(r chi.Router) {
			r.Get("/", d.Quotes.List)
			r.Post("/", d.Quotes.Submit)
			r.Post("/{id}/reanalyze", d.Quotes.Reanalyze)
		})

		r.Route("/reports/{ref}", func(r chi.Router) {
			r.Get("/", d.Reports.Get)
			r.With(d.RateLimiter.Limit("generate", d.RateLimit.GeneratePerMinute)).
				Post("/generate", d.Reports.Generate)
			r.Post("/feedback", d.Reports.Feedback)
		})

		r.Get("/recommendations", d.Catalog.Recommendations)
		r.Get("/taxonomy", d.Catalog.Taxonomy)
	})

	return r
}
