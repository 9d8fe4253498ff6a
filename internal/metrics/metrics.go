// Package metrics exposes Prometheus instrumentation for the reporting
// pipeline, the HTTP API and the client report cache.
package metrics

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/heartmarshall/quotediary-backend/internal/domain"
)

var (
	// Report lifecycle
	ReportGenerations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quotediary_report_generations_total",
			Help: "Period report generate-or-get calls by period kind and outcome",
		},
		[]string{"kind", "outcome"}, // created, existing, raced, failed
	)

	ReportGenerationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "quotediary_report_generation_duration_seconds",
			Help:    "Time spent building a new period report",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"kind"},
	)

	ReportLegacyUpgrades = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quotediary_report_legacy_upgrades_total",
			Help: "Schema v1 reports upgraded on read",
		},
		[]string{"persisted"},
	)

	RecommendationFallbacks = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "quotediary_recommendation_fallbacks_total",
			Help: "Recommendation requests answered by the universal fallback",
		},
	)

	// HTTP API
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quotediary_api_requests_total",
			Help: "HTTP requests by method, route and status code",
		},
		[]string{"method", "route", "status"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "quotediary_api_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	APIPanics = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "quotediary_api_panics_total",
			Help: "Handler panics recovered by the HTTP stack",
		},
	)

	// Client cache
	CacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quotediary_client_cache_lookups_total",
			Help: "Client report cache lookups by result",
		},
		[]string{"result"}, // hit, miss, mismatch
	)

	CacheRefreshes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quotediary_client_cache_refreshes_total",
			Help: "Background refresh outcomes",
		},
		[]string{"outcome"}, // replaced, unchanged, discarded, stale, failed
	)

	IdentityResolutions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quotediary_identity_resolutions_total",
			Help: "Client identity resolution by source",
		},
		[]string{"source"},
	)

	SchedulerRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quotediary_scheduler_reports_total",
			Help: "Reports handled by scheduled generation runs",
		},
		[]string{"kind", "result"}, // ok, failed
	)
)

// RecordReportGeneration records one generate-or-get call.
func RecordReportGeneration(kind domain.PeriodKind, outcome string) {
	ReportGenerations.WithLabelValues(kind.String(), outcome).Inc()
}

// ObserveReportBuild records the time spent computing a new report.
func ObserveReportBuild(kind domain.PeriodKind, d time.Duration) {
	ReportGenerationDuration.WithLabelValues(kind.String()).Observe(d.Seconds())
}

// RecordLegacyUpgrade records an on-read schema upgrade.
func RecordLegacyUpgrade(persisted bool) {
	label := "false"
	if persisted {
		label = "true"
	}
	ReportLegacyUpgrades.WithLabelValues(label).Inc()
}

// RecordPanic records a recovered handler panic.
func RecordPanic() {
	APIPanics.Inc()
}

// RecordRecommendationFallback records a universal-fallback answer.
func RecordRecommendationFallback() {
	RecommendationFallbacks.Inc()
}

// RecordAPIRequest records an API request metric.
func RecordAPIRequest(method, route, status string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, route, status).Inc()
	APIRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// RecordCacheLookup records a client cache lookup result.
func RecordCacheLookup(result string) {
	CacheLookups.WithLabelValues(result).Inc()
}

// RecordCacheRefresh records the outcome of a background refresh.
func RecordCacheRefresh(outcome string) {
	CacheRefreshes.WithLabelValues(outcome).Inc()
}

// RecordIdentityResolution records which source produced the identity.
func RecordIdentityResolution(source string) {
	IdentityResolutions.WithLabelValues(source).Inc()
}

// RecordSchedulerReport records one scheduled generation.
func RecordSchedulerReport(kind domain.PeriodKind, err error) {
	result := "ok"
	if err != nil {
		result = "failed"
	}
	SchedulerRuns.WithLabelValues(kind.String(), result).Inc()
}

// ErrorClass buckets an error into a low-cardinality label.
func ErrorClass(err error) string {
	switch {
	case err == nil:
		return "none"
	case errors.Is(err, domain.ErrReportNotFound):
		return "not_generated"
	case errors.Is(err, domain.ErrStorageUnavailable):
		return "storage_unavailable"
	case errors.Is(err, domain.ErrEmptyCatalog):
		return "empty_catalog"
	case errors.Is(err, domain.ErrValidation):
		return "validation"
	case errors.Is(err, domain.ErrIdentityTimeout):
		return "identity_timeout"
	default:
		return "other"
	}
}
