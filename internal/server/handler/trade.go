package handler

import (
	"log/slog"
	"net/http"

	"github.com/seerscan/seer/internal/domain"
)

// TradeHandler serves the paper-trade endpoints.
type TradeHandler struct {
	trades domain.PaperTradeStore
	logger *slog.Logger
}

// NewTradeHandler creates a TradeHandler.
func NewTradeHandler(trades domain.PaperTradeStore, logger *slog.Logger) *TradeHandler {
	return &TradeHandler{
		trades: trades,
		logger: logHandler(logger, "trades"),
	}
}

// listTradesResponse wraps the trade list responses.
type listTradesResponse struct {
	Trades []domain.Position `json:"trades"`
}

// ListOpen returns the currently open paper positions.
// GET /api/trades/open
func (h *TradeHandler) ListOpen(w http.ResponseWriter, r *http.Request) {
	trades, err := h.trades.ListOpen(r.Context())
	if err != nil {
		h.logger.ErrorContext(r.Context(), "handler: list open trades failed",
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to list open trades")
		return
	}

	if trades == nil {
		trades = []domain.Position{}
	}
	writeJSON(w, http.StatusOK, listTradesResponse{Trades: trades})
}

// ListClosed returns resolved paper positions, newest first.
// GET /api/trades/closed?limit=50&offset=0
func (h *TradeHandler) ListClosed(w http.ResponseWriter, r *http.Request) {
	trades, err := h.trades.ListClosed(r.Context(), parseListOpts(r))
	if err != nil {
		h.logger.ErrorContext(r.Context(), "handler: list closed trades failed",
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to list closed trades")
		return
	}

	if trades == nil {
		trades = []domain.Position{}
	}
	writeJSON(w, http.StatusOK, listTradesResponse{Trades: trades})
}

// Performance returns the aggregate paper-trading performance stats.
// GET /api/performance
func (h *TradeHandler) Performance(w http.ResponseWriter, r *http.Request) {
	stats, err := h.trades.PerformanceStats(r.Context())
	if err != nil {
		h.logger.ErrorContext(r.Context(), "handler: performance stats failed",
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to compute performance stats")
		return
	}
	writeJSON(w, http.StatusOK, stats)
}
