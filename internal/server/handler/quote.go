package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/seerscan/seer/internal/domain"
)

// QuoteHandler serves the latest cached quote for a market.
type QuoteHandler struct {
	quotes domain.QuoteCache
	logger *slog.Logger
}

// NewQuoteHandler creates a QuoteHandler.
func NewQuoteHandler(quotes domain.QuoteCache, logger *slog.Logger) *QuoteHandler {
	return &QuoteHandler{
		quotes: quotes,
		logger: logHandler(logger, "quotes"),
	}
}

// GetQuote returns the most recent quote seen for a market.
// GET /api/quotes/{id}
func (h *QuoteHandler) GetQuote(w http.ResponseWriter, r *http.Request) {
	id := pathParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "market id required")
		return
	}

	quote, err := h.quotes.GetQuote(r.Context(), id)
	if errors.Is(err, domain.ErrNotFound) {
		writeError(w, http.StatusNotFound, "no quote cached for market")
		return
	}
	if err != nil {
		h.logger.ErrorContext(r.Context(), "handler: get quote failed",
			slog.String("market_id", id),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to load quote")
		return
	}
	writeJSON(w, http.StatusOK, quote)
}
