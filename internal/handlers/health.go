package handlers

import (
	"encoding/json"
	"net/http"
	"time"
)

var startTime = time.Now()

// HealthHandlers answers liveness probes. Readiness is deliberately shallow;
// the lifecycle callbacks surface collaborator outages per request.
type HealthHandlers struct{}

// NewHealthHandlers constructs the health endpoints.
func NewHealthHandlers() *HealthHandlers {
	return &HealthHandlers{}
}

// Healthz responds with a simple status payload for monitoring.
func (h *HealthHandlers) Healthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"status":    "ok",
		"uptime":    time.Since(startTime).String(),
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
