package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/seerscan/seer/internal/domain"
)

// MetricsHandler serves the historical scanner metrics endpoint.
type MetricsHandler struct {
	metrics domain.MetricsStore
	logger  *slog.Logger
}

// NewMetricsHandler creates a MetricsHandler.
func NewMetricsHandler(metrics domain.MetricsStore, logger *slog.Logger) *MetricsHandler {
	return &MetricsHandler{
		metrics: metrics,
		logger:  logHandler(logger, "metrics"),
	}
}

// ListRecent returns the most recent metrics snapshots, newest first.
// GET /api/metrics?limit=24
func (h *MetricsHandler) ListRecent(w http.ResponseWriter, r *http.Request) {
	limit := 24
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}

	snaps, err := h.metrics.ListRecent(r.Context(), limit)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "handler: list metrics failed",
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to list metrics")
		return
	}
	if snaps == nil {
		snaps = []domain.MetricsSnapshot{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"metrics": snaps})
}
