package middleware

import (
	"mime"
	"net/http"
)

// ContentType rejects request bodies that are not JSON. Bodyless writes such
// as POST /tasks/generate pass through untouched.
func ContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !hasBody(r) {
			next.ServeHTTP(w, r)
			return
		}

		raw := r.Header.Get("Content-Type")
		if raw == "" {
			respondErrorJSON(w, r, http.StatusBadRequest, "Bad Request", "Content-Type header is required", nil)
			return
		}
		mediaType, _, err := mime.ParseMediaType(raw)
		if err != nil || mediaType != "application/json" {
			respondErrorJSON(w, r, http.StatusUnsupportedMediaType, "Unsupported Media Type", "Content-Type must be application/json", nil)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// hasBody reports whether r carries, or may carry, a body. Chunked requests
// report ContentLength -1 and count as having one.
func hasBody(r *http.Request) bool {
	switch r.Method {
	case http.MethodPost, http.MethodPatch, http.MethodPut:
	default:
		return false
	}
	return r.ContentLength != 0 && r.Body != nil && r.Body != http.NoBody
}
