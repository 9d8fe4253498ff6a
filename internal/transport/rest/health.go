package rest

import (
	"context"
	"net/http"
	"time"
)

const pingTimeout = 3 * time.Second

const (
	statusOK   = "ok"
	statusDown = "down"
)

type dbPinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler serves the liveness and readiness endpoints.
type HealthHandler struct {
	db              dbPinger
	version         string
	taxonomyVersion string
	now             func() time.Time
}

// NewHealthHandler creates a HealthHandler. taxonomyVersion is the version
// of the category set used to classify new quotes.
func NewHealthHandler(db dbPinger, version, taxonomyVersion string) *HealthHandler {
	return &HealthHandler{db: db, version: version, taxonomyVersion: taxonomyVersion, now: time.Now}
}

// HealthResponse is the body of every health endpoint.
type HealthResponse struct {
	Status     string                `json:"status"`
	Version    string                `json:"version,omitempty"`
	Components map[string]CompStatus `json:"components,omitempty"`
	Timestamp  time.Time             `json:"timestamp"`
}

// CompStatus describes one dependency.
type CompStatus struct {
	Status  string `json:"status"`
	Latency string `json:"latency,omitempty"`
	Version string `json:"version,omitempty"`
}

// Live reports that the process is serving. It never touches the database.
func (h *HealthHandler) Live(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{Status: statusOK, Timestamp: h.now()})
}

// Ready answers 503 while the database is unreachable.
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	db := h.pingDatabase(r.Context())
	writeJSON(w, httpStatus(db.Status), HealthResponse{Status: db.Status, Timestamp: h.now()})
}

// Health reports the database with its ping latency, the taxonomy in use
// and the build version.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	db := h.pingDatabase(r.Context())
	writeJSON(w, httpStatus(db.Status), HealthResponse{
		Status:  db.Status,
		Version: h.version,
		Components: map[string]CompStatus{
			"database": db,
			"taxonomy": {Status: statusOK, Version: h.taxonomyVersion},
		},
		Timestamp: h.now(),
	})
}

func (h *HealthHandler) pingDatabase(ctx context.Context) CompStatus {
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	start := time.Now()
	if err := h.db.Ping(ctx); err != nil {
		return CompStatus{Status: statusDown}
	}
	return CompStatus{Status: statusOK, Latency: time.Since(start).String()}
}

func httpStatus(status string) int {
	if status == statusOK {
		return http.StatusOK
	}
	return http.StatusServiceUnavailable
}
