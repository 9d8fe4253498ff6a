package middleware

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/heartmarshall/quotediary-backend/internal/config"
)

// exposedHeaders are response headers browser clients may read.
const exposedHeaders = RequestIDHeader + ", Retry-After"

// CORS answers preflight requests and marks responses for allowed origins.
// "*" in AllowedOrigins allows any origin; the request origin is echoed
// rather than "*" so that credentials keep working.
func CORS(cfg config.CORSConfig) Middleware {
	allowAny := false
	allowed := make(map[string]bool)
	for _, o := range strings.Split(cfg.AllowedOrigins, ",") {
		o = strings.TrimSpace(o)
		switch o {
		case "":
		case "*":
			allowAny = true
		default:
			allowed[o] = true
		}
	}
	maxAge := strconv.Itoa(cfg.MaxAge)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			if origin == "" {
				next.ServeHTTP(w, r)
				return
			}

			h := w.Header()
			h.Add("Vary", "Origin")
			if allowAny || allowed[origin] {
				h.Set("Access-Control-Allow-Origin", origin)
				h.Set("Access-Control-Expose-Headers", exposedHeaders)
				if cfg.AllowCredentials {
					h.Set("Access-Control-Allow-Credentials", "true")
				}
			}

			if r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != "" {
				h.Set("Access-Control-Allow-Methods", cfg.AllowedMethods)
				h.Set("Access-Control-Allow-Headers", cfg.AllowedHeaders)
				h.Set("Access-Control-Max-Age", maxAge)
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
