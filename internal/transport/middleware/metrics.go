package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/heartmarshall/quotediary-backend/internal/metrics"
)

// Metrics records request counts and latency labelled by the chi route
// pattern, so path parameters do not explode label cardinality.
func Metrics() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}

			next.ServeHTTP(sw, r)

			route := "unmatched"
			if rctx := chi.RouteContext(r.Context()); rctx != nil {
				if p := rctx.RoutePattern(); p != "" {
					route = p
				}
			}
			metrics.RecordAPIRequest(r.Method, route, strconv.Itoa(sw.status), time.Since(start))
		})
	}
}
