package rest

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/heartmarshall/quotediary-backend/internal/domain"
	"github.com/heartmarshall/quotediary-backend/internal/service/quote"
	"github.com/heartmarshall/quotediary-backend/pkg/reportapi"
)

type quoteService interface {
	Submit(ctx context.Context, input quote.SubmitInput) (*domain.Quote, error)
	Reanalyze(ctx context.Context, input quote.ReanalyzeInput) (*domain.Quote, error)
	ListForPeriod(ctx context.Context, period domain.Period) ([]domain.Quote, error)
}

// QuoteHandler serves the quote endpoints.
type QuoteHandler struct {
	quotes  quoteService
	periods periodResolver
	log     *slog.Logger
}

// NewQuoteHandler creates a QuoteHandler.
func NewQuoteHandler(quotes quoteService, periods periodResolver, logger *slog.Logger) *QuoteHandler {
	return &QuoteHandler{quotes: quotes, periods: periods, log: logger.With("handler", "quote")}
}

// Submit handles POST /quotes.
func (h *QuoteHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req reportapi.SubmitQuoteRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, h.log, err)
		return
	}

	q, err := h.quotes.Submit(r.Context(), quote.SubmitInput{
		Text:     req.Text,
		Author:   req.Author,
		Source:   req.Source,
		Category: req.Category,
	})
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}

	writeJSON(w, http.StatusCreated, reportapi.FromQuote(q))
}

// Reanalyze handles POST /quotes/{id}/reanalyze. The body is optional.
func (h *QuoteHandler) Reanalyze(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, h.log, invalidParam("id", "must be a UUID"))
		return
	}

	var req reportapi.ReanalyzeQuoteRequest
	if r.ContentLength != 0 {
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, r, h.log, err)
			return
		}
	}

	q, err := h.quotes.Reanalyze(r.Context(), quote.ReanalyzeInput{QuoteID: id, Category: req.Category})
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}

	writeJSON(w, http.StatusOK, reportapi.FromQuote(q))
}

// List handles GET /quotes?period=. The period defaults to the current week.
func (h *QuoteHandler) List(w http.ResponseWriter, r *http.Request) {
	ref := r.URL.Query().Get("period")
	if ref == "" {
		ref = refCurrentWeek
	}
	period, err := resolvePeriod(h.periods, ref)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}

	quotes, err := h.quotes.ListForPeriod(r.Context(), period)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}

	out := make([]reportapi.Quote, len(quotes))
	for i := range quotes {
		out[i] = reportapi.FromQuote(&quotes[i])
	}
	writeJSON(w, http.StatusOK, out)
}
