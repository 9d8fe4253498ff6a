package rest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/goccy/go-json"

	"github.com/heartmarshall/quotediary-backend/internal/domain"
	"github.com/heartmarshall/quotediary-backend/pkg/reportapi"
)

// maxBodyBytes caps request bodies.
const maxBodyBytes = 64 << 10

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

// decodeJSON reads a JSON body into dst. Malformed bodies are validation
// errors so they map to 400.
func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return &domain.ValidationError{Errors: []domain.FieldError{{Field: "body", Message: "malformed JSON"}}}
	}
	return nil
}

// errorResponse maps an error to an HTTP status and wire body.
func errorResponse(err error) (int, reportapi.Error) {
	var verr *domain.ValidationError
	switch {
	case errors.As(err, &verr):
		body := reportapi.Error{Code: reportapi.CodeValidation, Message: verr.Error()}
		for _, fe := range verr.Errors {
			body.Fields = append(body.Fields, reportapi.FieldError{Field: fe.Field, Message: fe.Message})
		}
		return http.StatusBadRequest, body
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest, reportapi.Error{Code: reportapi.CodeValidation, Message: err.Error()}
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized, reportapi.Error{Code: reportapi.CodeUnauthorized, Message: "unauthorized"}
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, reportapi.Error{Code: reportapi.CodeForbidden, Message: "forbidden"}
	case errors.Is(err, domain.ErrReportNotFound):
		return http.StatusNotFound, reportapi.Error{Code: reportapi.CodeReportNotGenerated, Message: err.Error()}
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, reportapi.Error{Code: reportapi.CodeNotFound, Message: err.Error()}
	case errors.Is(err, domain.ErrConflict), errors.Is(err, domain.ErrAlreadyExists):
		return http.StatusConflict, reportapi.Error{Code: reportapi.CodeConflict, Message: err.Error()}
	case errors.Is(err, domain.ErrEmptyCatalog):
		return http.StatusServiceUnavailable, reportapi.Error{Code: reportapi.CodeEmptyCatalog, Message: err.Error()}
	case errors.Is(err, domain.ErrStorageUnavailable):
		return http.StatusServiceUnavailable, reportapi.Error{Code: reportapi.CodeStorageUnavailable, Message: "storage unavailable"}
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable, reportapi.Error{Code: reportapi.CodeStorageUnavailable, Message: "timed out"}
	default:
		return http.StatusInternalServerError, reportapi.Error{Code: reportapi.CodeInternal, Message: "internal server error"}
	}
}

// writeError logs server-side failures and writes the mapped error body.
func writeError(w http.ResponseWriter, r *http.Request, log *slog.Logger, err error) {
	status, body := errorResponse(err)
	if status >= http.StatusInternalServerError {
		log.ErrorContext(r.Context(), "request failed",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Int("status", status),
			slog.String("error", err.Error()),
		)
	}
	writeJSON(w, status, body)
}

func invalidParam(field, format string, args ...any) error {
	return &domain.ValidationError{Errors: []domain.FieldError{{Field: field, Message: fmt.Sprintf(format, args...)}}}
}
