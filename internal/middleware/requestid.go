package middleware

import (
	"net/http"

	logpkg "github.com/benvon/career-coach/internal/logger"
	"github.com/benvon/career-coach/internal/request"
	"github.com/google/uuid"
)

// RequestID tags every request with an id, reusing the caller's
// X-Request-ID when one is sent, and echoes it on the response.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := logpkg.SanitizeString(r.Header.Get(request.RequestIDHeader), logpkg.MaxRequestIDLength)
		if id == "" || len(id) > logpkg.MaxRequestIDLength {
			id = uuid.NewString()
		}
		w.Header().Set(request.RequestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(request.WithRequestID(r.Context(), id)))
	})
}
