// Package ctxutil carries request-scoped identifiers through context.Context.
package ctxutil

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
)

type (
	userIDKey    struct{}
	requestIDKey struct{}
)

// WithUserID stores the authenticated user ID in the context.
func WithUserID(ctx context.Context, id uuid.UUID) context.Context {
	return context.WithValue(ctx, userIDKey{}, id)
}

// UserIDFromCtx extracts the user ID from the context.
// Returns uuid.Nil and false if the value is missing or the nil UUID.
func UserIDFromCtx(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(userIDKey{}).(uuid.UUID)
	if !ok || id == uuid.Nil {
		return uuid.Nil, false
	}
	return id, true
}

// WithRequestID stores the request ID in the context.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestIDFromCtx extracts the request ID from the context.
// Returns an empty string if absent.
func RequestIDFromCtx(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// LogAttrs returns the identifiers present in ctx as log attributes:
// request_id and user_id, each only when set.
func LogAttrs(ctx context.Context) []slog.Attr {
	var attrs []slog.Attr
	if id := RequestIDFromCtx(ctx); id != "" {
		attrs = append(attrs, slog.String("request_id", id))
	}
	if id, ok := UserIDFromCtx(ctx); ok {
		attrs = append(attrs, slog.String("user_id", id.String()))
	}
	return attrs
}
