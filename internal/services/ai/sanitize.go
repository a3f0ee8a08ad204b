package ai

import (
	"context"

	"github.com/benvon/career-coach/internal/logger"
	"github.com/benvon/career-coach/internal/request"
)

type contextKey string

const userIDContextKey contextKey = "user_id"

const (
	// MaxPreviewLength bounds prompt/response previews outside full debug logging.
	MaxPreviewLength = 200
	// RedactedValue replaces sensitive data in logs.
	RedactedValue = "[REDACTED]"
)

// WithUserID stores the acting user for LLM call logging.
func WithUserID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, userIDContextKey, id)
}

// ExtractRequestID returns the id of the HTTP request the call serves.
func ExtractRequestID(ctx context.Context) string {
	return request.RequestID(ctx)
}

// ExtractUserID returns the user id stored by WithUserID.
func ExtractUserID(ctx context.Context) string {
	id, _ := ctx.Value(userIDContextKey).(string)
	return id
}

// SanitizeAPIKey keeps the first and last four characters of a key.
func SanitizeAPIKey(apiKey string) string {
	if apiKey == "" {
		return ""
	}
	if len(apiKey) <= 8 {
		return RedactedValue
	}
	return apiKey[:4] + RedactedValue + apiKey[len(apiKey)-4:]
}

// Preview returns a log-safe excerpt of a prompt or model response.
func Preview(s string, full bool) string {
	if full {
		return logger.SanitizeDebugContent(s)
	}
	return logger.SanitizeString(s, MaxPreviewLength)
}
