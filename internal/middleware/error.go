package middleware

import (
	"encoding/json"
	"net/http"
	"runtime/debug"
	"time"

	logpkg "github.com/benvon/career-coach/internal/logger"
	"github.com/benvon/career-coach/internal/request"
	"go.uber.org/zap"
)

// ErrorResponse is the body written when a handler panics.
type ErrorResponse struct {
	Success   bool   `json:"success"`
	Error     string `json:"error"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
	Path      string `json:"path"`
	RequestID string `json:"request_id,omitempty"`
}

// ErrorHandler recovers panics, logs them with the stack and answers 500.
// http.ErrAbortHandler is re-raised so the server can abort the connection.
func ErrorHandler(logger *zap.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				// Panic details stay server-side.
				logger.Error("panic_recovered",
					zap.Any("error", rec),
					zap.String("path", logpkg.SanitizePath(r.URL.Path)),
					zap.String("method", r.Method),
					zap.String("request_id", request.RequestID(r.Context())),
					zap.ByteString("stack", debug.Stack()),
				)
				respondErrorJSON(w, r, http.StatusInternalServerError, "Internal Server Error", "An unexpected error occurred", logger)
			}()

			next.ServeHTTP(w, r)
		})
	}
}

// newErrorResponse builds the {success:false,...} envelope the middleware
// chain answers with.
func newErrorResponse(r *http.Request, errorType, message string) ErrorResponse {
	return ErrorResponse{
		Success:   false,
		Error:     errorType,
		Message:   message,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Path:      r.URL.Path,
		RequestID: request.RequestID(r.Context()),
	}
}

// respondErrorJSON sends an error JSON response. logger may be nil.
func respondErrorJSON(w http.ResponseWriter, r *http.Request, status int, errorType, message string, logger *zap.Logger) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(newErrorResponse(r, errorType, message)); err != nil && logger != nil {
		logger.Error("failed_to_encode_error_response",
			zap.Error(err),
			zap.Int("status_code", status),
			zap.String("path", r.URL.Path),
		)
	}
}
