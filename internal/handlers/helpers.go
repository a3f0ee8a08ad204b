package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/benvon/career-coach/internal/database"
	"github.com/benvon/career-coach/internal/services/ai"
	"github.com/benvon/career-coach/internal/services/career"
	"github.com/benvon/career-coach/internal/services/tasks"
	"go.uber.org/zap"
)

// Client-facing messages for upstream AI failures.
const (
	MessageRateLimited   = "Rate limit exceeded, please try again later."
	MessageQuotaExceeded = "AI credits required."
)

// maxBodyBytes caps JSON request bodies read by decodeJSON.
const maxBodyBytes = 1 << 20

// respondJSON sends a JSON response
func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	response := map[string]any{
		"success":   true,
		"data":      data,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}

	if err := json.NewEncoder(w).Encode(response); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

// respondJSONMessage sends a success response carrying a message next to the data.
func respondJSONMessage(w http.ResponseWriter, status int, data any, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	response := map[string]any{
		"success":   true,
		"data":      data,
		"message":   message,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}

	if err := json.NewEncoder(w).Encode(response); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

// sanitizeErrorMessage truncates error messages so internal detail does not leak
func sanitizeErrorMessage(message string) string {
	if len(message) > 200 {
		return message[:200] + "..."
	}
	return message
}

// respondJSONError sends an error JSON response with sanitized error messages
func respondJSONError(w http.ResponseWriter, status int, errorType, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	response := map[string]any{
		"success":   false,
		"error":     errorType,
		"message":   sanitizeErrorMessage(message),
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}

	if err := json.NewEncoder(w).Encode(response); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

// errorStatus maps a service error onto an HTTP status and client message.
func errorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, tasks.ErrNotAuthenticated), errors.Is(err, career.ErrNotAuthenticated):
		return http.StatusUnauthorized, "Not authenticated"
	case errors.Is(err, tasks.ErrNoRoleSelected):
		return http.StatusPreconditionFailed, "Select a target role before generating tasks"
	case errors.Is(err, ai.ErrRateLimited):
		return http.StatusTooManyRequests, MessageRateLimited
	case errors.Is(err, ai.ErrQuotaExceeded):
		return http.StatusPaymentRequired, MessageQuotaExceeded
	case errors.Is(err, ai.ErrMalformedResponse):
		return http.StatusBadGateway, "The AI returned an unusable response"
	case errors.Is(err, database.ErrNotFound):
		return http.StatusNotFound, "Not found"
	case errors.Is(err, tasks.ErrInvalidRange):
		return http.StatusBadRequest, "Invalid date range"
	}
	return http.StatusInternalServerError, "Internal server error"
}

// respondServiceError writes the error envelope for err. Only 5xx failures
// are logged at error level; the rest are expected outcomes.
func respondServiceError(w http.ResponseWriter, logger *zap.Logger, op string, err error) {
	status, message := errorStatus(err)
	if status >= http.StatusInternalServerError {
		logger.Error(op+"_failed", zap.Error(err), zap.Int("status_code", status))
	} else {
		logger.Debug(op+"_rejected", zap.Error(err), zap.Int("status_code", status))
	}
	if status == http.StatusTooManyRequests {
		w.Header().Set("Retry-After", "60")
	}
	respondJSONError(w, status, http.StatusText(status), message)
}

// decodeJSON reads a bounded JSON body into dst. An empty body leaves dst
// untouched when allowEmpty is set.
func decodeJSON(r *http.Request, dst any, allowEmpty bool) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) && allowEmpty {
			return nil
		}
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}
