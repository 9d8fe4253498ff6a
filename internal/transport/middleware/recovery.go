package middleware

import (
	"errors"
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/heartmarshall/quotediary-backend/internal/metrics"
	"github.com/heartmarshall/quotediary-backend/pkg/ctxutil"
	"github.com/heartmarshall/quotediary-backend/pkg/reportapi"
)

// Recovery turns a handler panic into a 500 response. The panic value and
// stack are logged together with the request identifiers. Aborted handlers
// re-panic so net/http can drop the connection.
func Recovery(logger *slog.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				v := recover()
				if v == nil {
					return
				}
				if err, ok := v.(error); ok && errors.Is(err, http.ErrAbortHandler) {
					panic(v)
				}
				metrics.RecordPanic()

				attrs := append([]slog.Attr{
					slog.Any("panic", v),
					slog.String("method", r.Method),
					slog.String("path", r.URL.Path),
					slog.String("stack", string(debug.Stack())),
				}, ctxutil.LogAttrs(r.Context())...)
				logger.LogAttrs(r.Context(), slog.LevelError, "handler panic", attrs...)

				writeError(w, http.StatusInternalServerError, reportapi.CodeInternal, "internal server error")
			}()
			next.ServeHTTP(w, r)
		})
	}
}
