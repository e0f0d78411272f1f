package scanner

import (
	"context"
	"log/slog"
	"strings"

	"github.com/seerscan/seer/internal/domain"
	"github.com/seerscan/seer/internal/notify"
)

// resolvePaperTrades walks the open positions and settles any whose market
// has resolved. Synthetic arb baskets lock in their edge at entry, so they
// settle as wins once the event closes; platform positions are resolved via
// the platform result APIs.
func (s *Scanner) resolvePaperTrades(ctx context.Context) error {
	open, err := s.openPositions(ctx)
	if err != nil {
		return err
	}

	now := s.now()
	for _, pos := range open {
		result, ok := s.lookupResult(ctx, pos)
		if !ok {
			continue
		}

		pos.Settle(result, now.UTC())
		if err := s.trades.UpdateResult(ctx, pos.MarketID, pos); err != nil {
			s.logger.Error("update trade result",
				slog.String("market_id", pos.MarketID),
				slog.String("error", err.Error()),
			)
			continue
		}

		bankroll := s.adjustBankroll(pos.PnL)
		s.logger.Info("paper trade resolved",
			slog.String("market_id", pos.MarketID),
			slog.String("result", result),
			slog.Float64("pnl", pos.PnL),
			slog.Float64("bankroll", bankroll),
		)

		if isArbPosition(pos.MarketID) {
			// Suppress immediate re-entry on the same basket.
			s.setCooldown(ctx, "arb:"+pos.MarketID, s.cfg.ArbCooldown)
		}

		if s.notifier != nil {
			title, msg := notify.FormatTradeResult(pos)
			if err := s.notifier.Notify(ctx, notify.EventResolution, title, msg); err != nil {
				s.logger.Error("resolution alert", slog.String("error", err.Error()))
			}
		}
	}
	return nil
}

func isArbPosition(marketID string) bool {
	return strings.Contains(marketID, "_ARB::")
}

// lookupResult determines whether a position's market has resolved and with
// what outcome ("yes" or "no"). ok is false while the market is still live
// or the platform cannot report a result.
func (s *Scanner) lookupResult(ctx context.Context, pos domain.Position) (string, bool) {
	if isArbPosition(pos.MarketID) {
		// A balanced basket pays out regardless of which outcome wins, so
		// the synthetic position wins by construction once the event closes.
		if !pos.CloseTime.IsZero() && s.now().After(pos.CloseTime) {
			return "yes", true
		}
		return "", false
	}

	switch pos.Platform {
	case "kalshi":
		if s.kalshi == nil {
			return "", false
		}
		result, err := s.kalshi.GetMarketResult(ctx, pos.MarketID)
		if err != nil {
			s.logger.Debug("kalshi result lookup failed",
				slog.String("market_id", pos.MarketID),
				slog.String("error", err.Error()),
			)
			return "", false
		}
		if result != "yes" && result != "no" {
			return "", false
		}
		return result, true

	case "polymarket":
		if s.poly == nil {
			return "", false
		}
		res, err := s.poly.GetMarketResolution(ctx, pos.MarketID)
		if err != nil {
			s.logger.Debug("polymarket resolution lookup failed",
				slog.String("market_id", pos.MarketID),
				slog.String("error", err.Error()),
			)
			return "", false
		}
		if !res.Closed {
			return "", false
		}
		if res.YesWon {
			return "yes", true
		}
		return "no", true
	}

	return "", false
}
