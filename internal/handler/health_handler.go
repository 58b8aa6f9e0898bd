package handler

import (
	"net/http"

	"gamezone-be/pkg/logger"
)

// HealthHandler serves the liveness endpoint.
type HealthHandler struct {
	log *logger.Logger
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(log *logger.Logger) *HealthHandler {
	return &HealthHandler{log: log}
}

// Check handles GET /health
func (h *HealthHandler) Check(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"}, h.log)
}
