package middleware

import (
	"net/http"

	"github.com/goccy/go-json"

	"github.com/heartmarshall/quotediary-backend/pkg/reportapi"
)

// writeError writes a reportapi.Error body. Handlers have their own
// mapping from domain errors; middleware only needs fixed codes.
func writeError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(reportapi.Error{Code: code, Message: message})
}
