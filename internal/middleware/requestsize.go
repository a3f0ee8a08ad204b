package middleware

import (
	"net/http"
)

// DefaultMaxRequestSize caps request bodies at 1MB. The largest legitimate
// body is a resume request or a 50-message mentor conversation.
const DefaultMaxRequestSize int64 = 1 << 20

// MaxRequestSize rejects bodies larger than maxBytes. A declared
// Content-Length over the cap is answered with 413 before the handler runs;
// chunked bodies are cut off by http.MaxBytesReader and surface as a decode
// error in the handler.
func MaxRequestSize(maxBytes int64) func(http.Handler) http.Handler {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxRequestSize
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.ContentLength > maxBytes {
				respondErrorJSON(w, r, http.StatusRequestEntityTooLarge, "Request Entity Too Large", "Request body exceeds the size limit", nil)
				return
			}
			if r.Body != nil && r.Body != http.NoBody {
				r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			}

			next.ServeHTTP(w, r)
		})
	}
}
