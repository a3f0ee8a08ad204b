package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"
)

// CheckFunc probes one dependency.
type CheckFunc func(ctx context.Context) error

type namedCheck struct {
	name  string
	check CheckFunc
}

// HealthChecker handles health check requests
type HealthChecker struct {
	checks  []namedCheck
	timeout time.Duration
}

// NewHealthChecker creates a new health checker with no dependency checks
func NewHealthChecker() *HealthChecker {
	return &HealthChecker{timeout: 5 * time.Second}
}

// Add registers a dependency check run in extended mode, e.g. "database".
func (h *HealthChecker) Add(name string, check CheckFunc) *HealthChecker {
	if check != nil {
		h.checks = append(h.checks, namedCheck{name: name, check: check})
	}
	return h
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string            `json:"status"`
	Timestamp string            `json:"timestamp"`
	Checks    map[string]string `json:"checks,omitempty"`
}

// HealthCheck handles the /healthz endpoint
func (h *HealthChecker) HealthCheck(w http.ResponseWriter, r *http.Request) {
	response := HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
	statusCode := http.StatusOK

	if r.URL.Query().Get("mode") == "extended" {
		response.Checks = make(map[string]string, len(h.checks))
		for _, c := range h.checks {
			if err := h.run(r.Context(), c.check); err != nil {
				response.Status = "unhealthy"
				response.Checks[c.name] = "unhealthy: " + sanitizeErrorMessage(err.Error())
				continue
			}
			response.Checks[c.name] = "healthy"
		}
		if response.Status == "unhealthy" {
			statusCode = http.StatusServiceUnavailable
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(response)
}

func (h *HealthChecker) run(ctx context.Context, check CheckFunc) error {
	ctx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()
	return check(ctx)
}
