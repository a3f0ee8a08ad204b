package middleware

import (
	"encoding/json"
	"net/http"
	"time"
)

// DefaultRequestTimeout applies when Timeout is given a non-positive duration.
const DefaultRequestTimeout = 30 * time.Second

// Timeout bounds next with http.TimeoutHandler and answers an overrun with
// the JSON error envelope. TimeoutHandler buffers the response, so streaming
// routes must not sit behind it.
func Timeout(timeout time.Duration) func(http.Handler) http.Handler {
	if timeout <= 0 {
		timeout = DefaultRequestTimeout
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// The body is rendered before the handler runs, so it carries the
			// deadline as its timestamp.
			resp := newErrorResponse(r, "Request Timeout", "The request took too long to complete")
			resp.Timestamp = time.Now().Add(timeout).UTC().Format(time.RFC3339)
			body, err := json.Marshal(resp)
			if err != nil {
				body = []byte(`{"success":false,"error":"Request Timeout"}`)
			}

			http.TimeoutHandler(next, timeout, string(body)).ServeHTTP(&timeoutWriter{ResponseWriter: w}, r)
		})
	}
}

// timeoutWriter labels TimeoutHandler's 503 body as JSON; TimeoutHandler
// writes it without a Content-Type.
type timeoutWriter struct {
	http.ResponseWriter
}

func (tw *timeoutWriter) WriteHeader(status int) {
	if status == http.StatusServiceUnavailable && tw.Header().Get("Content-Type") == "" {
		tw.Header().Set("Content-Type", "application/json")
	}
	tw.ResponseWriter.WriteHeader(status)
}
