package handlers

import (
	"encoding/json"
	"net/http"
	"time"
)

// HealthHandler serves GET /health. It always reports ok: the gateway holds
// no durable state, so being up is being healthy.
type HealthHandler struct {
	now func() time.Time
}

// NewHealthHandler creates a health handler.
func NewHealthHandler() *HealthHandler {
	return &HealthHandler{now: time.Now}
}

// ServeHTTP implements http.Handler.
func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{
		"status":    "ok",
		"timestamp": h.now().UTC().Format(time.RFC3339),
	})
}
