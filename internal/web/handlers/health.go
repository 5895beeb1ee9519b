package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"
)

const (
	healthStatusHealthy   = "healthy"
	healthStatusOK        = "ok"
	healthStatusUnhealthy = "unhealthy"
)

// HealthResponse represents the health check response
type HealthResponse struct {
	Status  string            `json:"status"`
	Checks  map[string]string `json:"checks,omitempty"`
	Version string            `json:"version,omitempty"`
}

// healthzHandler handles liveness probes (/healthz)
// Returns 200 if the application is running
func (h *Handler) healthzHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)

	response := HealthResponse{
		Status:  healthStatusOK,
		Version: h.version,
	}

	_ = json.NewEncoder(w).Encode(response) //nolint:errcheck // Best effort response
}

// readyzHandler handles readiness probes (/readyz)
// Checks the session backend; the gallery backend is not checked since a
// down backend degrades pages to toasts rather than failing them
func (h *Handler) readyzHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	checks := make(map[string]string)
	allHealthy := true

	for name, err := range h.container.Health(ctx) {
		if err != nil {
			checks[name] = healthStatusUnhealthy + ": " + err.Error()
			allHealthy = false
			continue
		}
		checks[name] = healthStatusHealthy
	}

	w.Header().Set("Content-Type", "application/json")

	if allHealthy {
		w.WriteHeader(http.StatusOK)
	} else {
		w.WriteHeader(http.StatusServiceUnavailable)
	}

	response := HealthResponse{
		Status:  healthStatusOK,
		Checks:  checks,
		Version: h.version,
	}

	if !allHealthy {
		response.Status = healthStatusUnhealthy
	}

	_ = json.NewEncoder(w).Encode(response) //nolint:errcheck // Best effort response
}
