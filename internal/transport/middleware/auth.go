package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/heartmarshall/quotediary-backend/internal/domain"
	"github.com/heartmarshall/quotediary-backend/pkg/ctxutil"
	"github.com/heartmarshall/quotediary-backend/pkg/reportapi"
)

type tokenValidator interface {
	ValidateToken(ctx context.Context, token string) (uuid.UUID, error)
}

// Auth puts the user ID of a valid bearer token into the request context.
// Requests without a token pass through anonymously and are rejected by
// the services that need a user; an invalid token is rejected here.
func Auth(validator tokenValidator) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := extractBearerToken(r)
			if token == "" {
				next.ServeHTTP(w, r) // Anonymous
				return
			}
			userID, err := validator.ValidateToken(r.Context(), token)
			if err != nil {
				writeError(w, http.StatusUnauthorized, reportapi.CodeUnauthorized, domain.ErrUnauthorized.Error())
				return
			}
			ctx := ctxutil.WithUserID(r.Context(), userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func extractBearerToken(r *http.Request) string {
	scheme, token, ok := strings.Cut(r.Header.Get("Authorization"), " ")
	if !ok || !strings.EqualFold(scheme, "bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}
