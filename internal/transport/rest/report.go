package rest

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/heartmarshall/quotediary-backend/internal/domain"
	"github.com/heartmarshall/quotediary-backend/internal/service/report"
	"github.com/heartmarshall/quotediary-backend/pkg/ctxutil"
	"github.com/heartmarshall/quotediary-backend/pkg/reportapi"
)

type reportService interface {
	GenerateOrGet(ctx context.Context, userID uuid.UUID, period domain.Period) (*domain.PeriodReport, error)
	GetWithDelta(ctx context.Context, userID uuid.UUID, period domain.Period) (report.View, error)
	AttachFeedback(ctx context.Context, userID uuid.UUID, input report.FeedbackInput) (*domain.PeriodReport, error)
	CurrentPeriod(kind domain.PeriodKind) domain.Period
}

// EntryLoader resolves catalog entries by ID; missing entries are nil.
type EntryLoader func(ctx context.Context, ids []uuid.UUID) ([]*domain.CatalogEntry, error)

// ReportHandler serves the period report endpoints. The {ref} URL
// parameter is a period key or alias, except for feedback where it is the
// report ID.
type ReportHandler struct {
	reports reportService
	entries EntryLoader
	log     *slog.Logger
}

// NewReportHandler creates a ReportHandler.
func NewReportHandler(reports reportService, entries EntryLoader, logger *slog.Logger) *ReportHandler {
	return &ReportHandler{reports: reports, entries: entries, log: logger.With("handler", "report")}
}

// Get handles GET /reports/{ref}. It never generates.
func (h *ReportHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, period, ok := h.userAndPeriod(w, r)
	if !ok {
		return
	}

	view, err := h.reports.GetWithDelta(r.Context(), userID, period)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}

	writeJSON(w, http.StatusOK, reportapi.ReportView{
		Report:      h.render(r.Context(), view.Report),
		Delta:       reportapi.FromDelta(view.Delta),
		HasPrevious: view.HasPrevious,
	})
}

// Generate handles POST /reports/{ref}/generate. Generating an existing
// period returns the stored report unchanged.
func (h *ReportHandler) Generate(w http.ResponseWriter, r *http.Request) {
	userID, period, ok := h.userAndPeriod(w, r)
	if !ok {
		return
	}

	rep, err := h.reports.GenerateOrGet(r.Context(), userID, period)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}

	writeJSON(w, http.StatusOK, h.render(r.Context(), rep))
}

// Feedback handles POST /reports/{ref}/feedback with {ref} the report ID.
func (h *ReportHandler) Feedback(w http.ResponseWriter, r *http.Request) {
	userID, ok := ctxutil.UserIDFromCtx(r.Context())
	if !ok {
		writeError(w, r, h.log, domain.ErrUnauthorized)
		return
	}

	reportID, err := uuid.Parse(chi.URLParam(r, "ref"))
	if err != nil {
		writeError(w, r, h.log, invalidParam("report_id", "must be a UUID"))
		return
	}

	var req reportapi.FeedbackRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, h.log, err)
		return
	}

	rep, err := h.reports.AttachFeedback(r.Context(), userID, report.FeedbackInput{
		ReportID: reportID,
		Rating:   req.Rating,
		Comment:  req.Comment,
	})
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}

	writeJSON(w, http.StatusOK, h.render(r.Context(), rep))
}

func (h *ReportHandler) userAndPeriod(w http.ResponseWriter, r *http.Request) (uuid.UUID, domain.Period, bool) {
	userID, ok := ctxutil.UserIDFromCtx(r.Context())
	if !ok {
		writeError(w, r, h.log, domain.ErrUnauthorized)
		return uuid.Nil, domain.Period{}, false
	}

	period, err := resolvePeriod(h.reports, chi.URLParam(r, "ref"))
	if err != nil {
		writeError(w, r, h.log, err)
		return uuid.Nil, domain.Period{}, false
	}
	return userID, period, true
}

// render converts rep and attaches the catalog entries its recommendations
// point at. Entries are decoration: a lookup failure is logged and the
// report is served without them.
func (h *ReportHandler) render(ctx context.Context, rep *domain.PeriodReport) reportapi.Report {
	out := reportapi.FromReport(rep)
	if len(rep.Recommendations) == 0 || h.entries == nil {
		return out
	}

	ids := make([]uuid.UUID, len(rep.Recommendations))
	for i, rec := range rep.Recommendations {
		ids[i] = rec.CatalogEntryID
	}

	entries, err := h.entries(ctx, ids)
	if err != nil {
		h.log.WarnContext(ctx, "catalog hydration failed",
			slog.String("report_id", rep.ID.String()),
			slog.String("error", err.Error()),
		)
		return out
	}

	for i, e := range entries {
		if e != nil && i < len(out.Recommendations) {
			entry := reportapi.FromCatalogEntry(*e)
			out.Recommendations[i].Entry = &entry
		}
	}
	return out
}
