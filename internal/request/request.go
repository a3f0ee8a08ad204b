package request

import (
	"context"
	"net/http"
	"strings"

	"github.com/benvon/career-coach/internal/models"
	"github.com/google/uuid"
)

type contextKey string

const (
	userContextKey      contextKey = "user"
	requestIDContextKey contextKey = "request_id"
)

// RequestIDHeader carries the request id in both directions.
const RequestIDHeader = "X-Request-ID"

// UserContextKey returns the context key used for the user. Exposed for tests that inject non-user values.
func UserContextKey() contextKey { return userContextKey }

// ClientIP extracts the client IP from the request, respecting X-Forwarded-For and X-Real-IP.
func ClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		parts := strings.Split(xff, ",")
		if len(parts) > 0 {
			return strings.TrimSpace(parts[0])
		}
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}
	return r.RemoteAddr
}

// WithUser returns a context with the user attached.
func WithUser(ctx context.Context, user *models.User) context.Context {
	return context.WithValue(ctx, userContextKey, user)
}

// UserFromContext returns the user from the request context, or nil if missing or wrong type.
func UserFromContext(r *http.Request) *models.User {
	u, _ := r.Context().Value(userContextKey).(*models.User)
	return u
}

// UserID returns the authenticated user's id, uuid.Nil when there is none.
// Services treat uuid.Nil as not authenticated.
func UserID(r *http.Request) uuid.UUID {
	if u := UserFromContext(r); u != nil {
		return u.ID
	}
	return uuid.Nil
}

// WithRequestID returns a context carrying the request id.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDContextKey, id)
}

// RequestID returns the id stored by WithRequestID, or "".
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDContextKey).(string)
	return id
}
