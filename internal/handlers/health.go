package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"
)

// Pinger is anything that can verify liveness of a backing service.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// PingerFunc adapts a function to the Pinger interface.
type PingerFunc func(ctx context.Context) error

// PingContext calls the underlying function.
func (f PingerFunc) PingContext(ctx context.Context) error { return f(ctx) }

// HealthChecker handles health check requests. Checks map backing
// service names to their liveness probes; nil entries are skipped.
type HealthChecker struct {
	checks map[string]Pinger
}

// NewHealthChecker creates a new health checker.
func NewHealthChecker(checks map[string]Pinger) *HealthChecker {
	return &HealthChecker{checks: checks}
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

	if r.URL.Query().Get("mode") == "extended" {
		checks := make(map[string]string, len(h.checks))
		for name, pinger := range h.checks {
			if pinger == nil {
				continue
			}
			if err := h.ping(r.Context(), pinger); err != nil {
				response.Status = "unhealthy"
				checks[name] = "unhealthy: " + err.Error()
			} else {
				checks[name] = "healthy"
			}
		}
		response.Checks = checks

		statusCode := http.StatusOK
		if response.Status == "unhealthy" {
			statusCode = http.StatusServiceUnavailable
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(statusCode)
		_ = json.NewEncoder(w).Encode(response)
		return
	}

	// Basic mode - just return that the server is running
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(response)
}

func (h *HealthChecker) ping(ctx context.Context, pinger Pinger) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return pinger.PingContext(ctx)
}
