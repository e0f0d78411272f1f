package handler

import (
	"net/http"

	"github.com/seerscan/seer/internal/scanner"
)

// StatusSource reports the scanner's current state.
type StatusSource interface {
	Status() scanner.Status
}

// StatusHandler serves the scanner status for the dashboard.
type StatusHandler struct {
	source StatusSource
	mode   string
}

// NewStatusHandler creates a StatusHandler with the given status source and
// run mode.
func NewStatusHandler(source StatusSource, mode string) *StatusHandler {
	return &StatusHandler{source: source, mode: mode}
}

// GetStatus responds with the current run mode and scanner state.
// GET /api/status
func (h *StatusHandler) GetStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"mode":    h.mode,
		"scanner": h.source.Status(),
	})
}
