package handlers

import (
	"net/http"

	"github.com/pawspace/pawspace-be/internal/monitoring"
)

// StatusHandler serves the ops status endpoint.
type StatusHandler struct {
	service *monitoring.StatusService
}

// NewStatusHandler creates a new StatusHandler.
func NewStatusHandler(service *monitoring.StatusService) *StatusHandler {
	return &StatusHandler{service: service}
}

// Get returns uptime and host resource usage.
func (h *StatusHandler) Get(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.service.Snapshot())
}
