package middleware

import (
	"net/http"

	logpkg "github.com/benvon/career-coach/internal/logger"
	"github.com/benvon/career-coach/internal/request"
	"go.uber.org/zap"
)

// auditEvents maps audited response statuses to their log event.
var auditEvents = map[int]string{
	http.StatusUnauthorized:    "security_event",
	http.StatusForbidden:       "security_event",
	http.StatusTooManyRequests: "rate_limit_violation",
	http.StatusPaymentRequired: "ai_quota_exhausted",
}

// Audit logs security and capacity events for monitoring
func Audit(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

			next.ServeHTTP(wrapped, r)

			event, ok := auditEvents[wrapped.statusCode]
			if !ok {
				return
			}
			fields := []zap.Field{
				zap.Int("status_code", wrapped.statusCode),
				zap.String("method", r.Method),
				zap.String("path", logpkg.SanitizePath(r.URL.Path)),
				zap.String("request_id", request.RequestID(r.Context())),
				zap.String("ip", logpkg.SanitizeString(request.ClientIP(r), logpkg.MaxGeneralStringLength)),
			}
			if user := request.UserFromContext(r); user != nil {
				fields = append(fields, zap.String("user_id", user.ID.String()))
			}
			logger.Warn(event, fields...)
		})
	}
}
