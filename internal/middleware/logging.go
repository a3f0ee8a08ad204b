package middleware

import (
	"net/http"
	"time"

	logpkg "github.com/benvon/career-coach/internal/logger"
	"github.com/benvon/career-coach/internal/request"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// Logging creates logging middleware
func Logging(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

			next.ServeHTTP(wrapped, r)

			fields := []zap.Field{
				zap.String("method", r.Method),
				zap.String("path", logpkg.SanitizePath(r.URL.Path)),
				zap.String("request_id", request.RequestID(r.Context())),
				zap.Int("status_code", wrapped.statusCode),
				zap.Int64("duration_ms", time.Since(start).Milliseconds()),
				zap.String("ip", logpkg.SanitizeString(request.ClientIP(r), logpkg.MaxGeneralStringLength)),
			}
			if sc := trace.SpanContextFromContext(r.Context()); sc.HasTraceID() {
				fields = append(fields, zap.String("trace_id", sc.TraceID().String()))
			}
			logger.Info("http_request", fields...)
		})
	}
}

// responseWriter captures the status code. It forwards Flush so streamed
// responses keep working behind the logging and audit middleware.
type responseWriter struct {
	http.ResponseWriter
	statusCode  int
	wroteHeader bool
}

func (rw *responseWriter) WriteHeader(code int) {
	if !rw.wroteHeader {
		rw.statusCode = code
		rw.wroteHeader = true
	}
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	rw.wroteHeader = true
	return rw.ResponseWriter.Write(b)
}

func (rw *responseWriter) Flush() {
	if f, ok := rw.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// Unwrap exposes the underlying writer to http.ResponseController.
func (rw *responseWriter) Unwrap() http.ResponseWriter {
	return rw.ResponseWriter
}
