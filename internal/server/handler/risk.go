package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/seerscan/seer/internal/domain"
)

// RiskService defines the risk-manager methods the handler requires.
type RiskService interface {
	Metrics(currentBankroll float64, openPositions []domain.Position) domain.RiskMetrics
	ActivateKillSwitch(reason string)
	DeactivateKillSwitch()
	KillSwitchActive() bool
}

// BankrollSource reports the current simulated bankroll.
type BankrollSource interface {
	Bankroll() float64
}

// RiskHandler serves the risk metrics and kill-switch control endpoints.
type RiskHandler struct {
	risk     RiskService
	bankroll BankrollSource
	trades   domain.PaperTradeStore
	events   domain.KillSwitchStore
	logger   *slog.Logger
}

// NewRiskHandler creates a RiskHandler.
func NewRiskHandler(risk RiskService, bankroll BankrollSource, trades domain.PaperTradeStore, events domain.KillSwitchStore, logger *slog.Logger) *RiskHandler {
	return &RiskHandler{
		risk:     risk,
		bankroll: bankroll,
		trades:   trades,
		events:   events,
		logger:   logHandler(logger, "risk"),
	}
}

// GetMetrics returns the current account risk view.
// GET /api/risk
func (h *RiskHandler) GetMetrics(w http.ResponseWriter, r *http.Request) {
	open, err := h.trades.ListOpen(r.Context())
	if err != nil {
		h.logger.ErrorContext(r.Context(), "handler: risk metrics failed",
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to compute risk metrics")
		return
	}
	writeJSON(w, http.StatusOK, h.risk.Metrics(h.bankroll.Bankroll(), open))
}

// ListEvents returns recent kill-switch activations.
// GET /api/risk/events?limit=20
func (h *RiskHandler) ListEvents(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}

	events, err := h.events.ListRecent(r.Context(), limit)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "handler: list kill switch events failed",
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to list kill switch events")
		return
	}
	if events == nil {
		events = []domain.KillSwitchEvent{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"events": events})
}

// activateRequest is the body for a manual kill-switch activation.
type activateRequest struct {
	Reason string `json:"reason"`
}

// ActivateKillSwitch manually halts trading.
// POST /api/risk/killswitch
func (h *RiskHandler) ActivateKillSwitch(w http.ResponseWriter, r *http.Request) {
	var req activateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Reason == "" {
		writeError(w, http.StatusBadRequest, "reason is required")
		return
	}

	h.risk.ActivateKillSwitch(req.Reason)
	h.logger.WarnContext(r.Context(), "handler: kill switch activated manually",
		slog.String("reason", req.Reason),
	)
	writeJSON(w, http.StatusOK, map[string]any{"kill_switch_active": true})
}

// DeactivateKillSwitch resumes trading after a manual review.
// DELETE /api/risk/killswitch
func (h *RiskHandler) DeactivateKillSwitch(w http.ResponseWriter, r *http.Request) {
	h.risk.DeactivateKillSwitch()
	h.logger.InfoContext(r.Context(), "handler: kill switch deactivated")
	writeJSON(w, http.StatusOK, map[string]any{"kill_switch_active": false})
}
