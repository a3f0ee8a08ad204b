package ai

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/openai/openai-go/v3"
)

var (
	// ErrRateLimited means the upstream asked us to slow down. The caller may
	// try again later.
	ErrRateLimited = errors.New("rate limited")
	// ErrQuotaExceeded means the upstream account is out of credits. Retrying
	// will not help until someone tops it up.
	ErrQuotaExceeded = errors.New("quota exceeded")
	// ErrMalformedResponse means the model answered without the structured
	// payload we asked for.
	ErrMalformedResponse = errors.New("malformed AI response")
)

// APIError carries the upstream failure details after classification.
type APIError struct {
	Message    string
	Type       string
	Code       string
	StatusCode int
	RetryAfter *time.Duration
	// IsPermanent is true for quota exhaustion, false for rate limits.
	IsPermanent bool
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API error (status %d, type %s): %s", e.StatusCode, e.Type, e.Message)
}

// Unwrap maps the error onto the package sentinels so callers can use
// errors.Is(err, ErrRateLimited) and errors.Is(err, ErrQuotaExceeded).
func (e *APIError) Unwrap() error {
	switch {
	case e.IsPermanent:
		return ErrQuotaExceeded
	case e.StatusCode == http.StatusTooManyRequests:
		return ErrRateLimited
	}
	return nil
}

// classifyError turns an SDK error into an *APIError for the statuses we
// treat specially (429 and 402) and returns other errors unchanged.
func classifyError(err error) error {
	if err == nil {
		return nil
	}

	var sdkErr *openai.Error
	if !errors.As(err, &sdkErr) {
		return err
	}

	apiErr := &APIError{
		Message:    sdkErr.Message,
		Type:       sdkErr.Type,
		Code:       sdkErr.Code,
		StatusCode: sdkErr.StatusCode,
	}
	if apiErr.Message == "" {
		apiErr.Message = http.StatusText(sdkErr.StatusCode)
	}

	switch {
	case sdkErr.StatusCode == http.StatusPaymentRequired, sdkErr.Code == "insufficient_quota":
		apiErr.IsPermanent = true
		retry := time.Hour
		apiErr.RetryAfter = &retry
	case sdkErr.StatusCode == http.StatusTooManyRequests:
		retry := 60 * time.Second
		if sdkErr.Response != nil {
			if d, ok := parseRetryAfter(sdkErr.Response.Header.Get("Retry-After")); ok {
				retry = d
			}
		}
		apiErr.RetryAfter = &retry
	default:
		return err
	}
	return apiErr
}

func parseRetryAfter(v string) (time.Duration, bool) {
	v = strings.TrimSpace(v)
	if v == "" {
		return 0, false
	}
	if secs, err := time.ParseDuration(v + "s"); err == nil && secs > 0 {
		return secs, true
	}
	if at, err := http.ParseTime(v); err == nil {
		if d := time.Until(at); d > 0 {
			return d, true
		}
	}
	return 0, false
}

// IsRateLimitError reports whether err is a retryable upstream rate limit.
func IsRateLimitError(err error) bool {
	return errors.Is(err, ErrRateLimited)
}

// IsQuotaError reports whether err is upstream quota exhaustion.
func IsQuotaError(err error) bool {
	return errors.Is(err, ErrQuotaExceeded)
}

// GetRetryDelay returns how long a background job should wait before the
// next attempt. Rate limits back off from 60s (capped at 15m, and never
// shorter than the upstream Retry-After); other failures from 5s (capped at
// 5m). Quota errors are not retried by the worker, the 1h figure only keeps
// the value meaningful.
func GetRetryDelay(err error, attempt int) time.Duration {
	shift := uint(min(max(attempt, 0), 10))

	if IsQuotaError(err) {
		return time.Hour
	}

	if IsRateLimitError(err) {
		delay := min(60*time.Second*time.Duration(1<<shift), 15*time.Minute)
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.RetryAfter != nil && *apiErr.RetryAfter > delay {
			delay = *apiErr.RetryAfter
		}
		return delay
	}

	return min(5*time.Second*time.Duration(1<<shift), 5*time.Minute)
}
