package scanner

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/seerscan/seer/internal/arb"
	"github.com/seerscan/seer/internal/domain"
	"github.com/seerscan/seer/internal/notify"
	"github.com/seerscan/seer/internal/scoring"
)

// inPriceBand reports whether the market trades near an extreme, where the
// base-rate model has something to say.
func (s *Scanner) inPriceBand(price float64) bool {
	return price <= s.cfg.PriceBandLow || price >= s.cfg.PriceBandHigh
}

// closesInWindow reports whether the market resolves between now and the
// configured horizon.
func (s *Scanner) closesInWindow(q domain.MarketQuote) bool {
	if q.CloseTime.IsZero() {
		return false
	}
	days := q.CloseTime.Sub(s.now()).Hours() / 24
	return days >= 0 && days <= float64(s.cfg.MaxDaysToResolution)
}

func hasOpen(positions []domain.Position, marketID string) bool {
	for _, p := range positions {
		if p.MarketID == marketID {
			return true
		}
	}
	return false
}

// processQuote runs the per-market pipeline on one quote: cache it, check
// for single-condition arbitrage, and when evEnabled run the speculative EV
// model. Returns the updated open-position slice (a new EV trade is appended
// so later quotes in the same cycle see it).
func (s *Scanner) processQuote(ctx context.Context, det *arb.Detector, q domain.MarketQuote, open []domain.Position, evEnabled bool) []domain.Position {
	if q.ID == "" || q.Status != domain.MarketStatusOpen {
		return open
	}

	if s.quotes != nil {
		if err := s.quotes.SetQuote(ctx, q); err != nil {
			s.logger.Debug("cache quote", slog.String("market_id", q.ID), slog.String("error", err.Error()))
		}
	}

	if opp := det.CheckSingleCondition(q.ID, q.Title, q); opp != nil {
		s.storeOpportunity(ctx, *opp)
	}

	if !evEnabled {
		return open
	}
	return s.checkEVEdge(ctx, det, q, open)
}

// checkEVEdge runs the expected-value model on one quote and opens a paper
// trade when a qualifying edge survives the correlation check.
func (s *Scanner) checkEVEdge(ctx context.Context, det *arb.Detector, q domain.MarketQuote, open []domain.Position) []domain.Position {
	price := q.YesPrice()
	if price <= 0 || price >= 1 {
		return open
	}
	if !s.inPriceBand(price) || !s.closesInWindow(q) {
		return open
	}

	score := scoring.ScoreMarket(q)
	if score < s.cfg.MinQualityScore {
		return open
	}

	prob := scoring.AdjustedProbability(q.Title, q.Category, price, q.Volume24h, q.Volume7d)

	side := domain.SideYes
	ev := scoring.ExpectedValue(price, prob, domain.SideYes)
	if evNo := scoring.ExpectedValue(price, prob, domain.SideNo); evNo > ev {
		side, ev = domain.SideNo, evNo
	}
	if ev <= s.cfg.MinEV {
		return open
	}

	candidate := domain.Position{
		MarketID:  q.ID,
		Title:     q.Title,
		Category:  q.Category,
		CloseTime: q.CloseTime,
	}
	corr := scoring.CorrelationPenalty(append(append([]domain.Position{}, open...), candidate))
	if corr > s.cfg.MaxCorrelation {
		s.logger.Debug("ev edge rejected by correlation",
			slog.String("market_id", q.ID),
			slog.Float64("correlation", corr),
		)
		return open
	}

	opp := det.NewEVOpportunity(q.ID, q.Title, ev, string(side), price, prob, score, q.Liquidity)
	s.storeOpportunity(ctx, opp)

	return s.openEVTrade(ctx, q, side, score, corr, open)
}

// openEVTrade sizes and records a speculative paper trade. One open trade
// per market at a time.
func (s *Scanner) openEVTrade(ctx context.Context, q domain.MarketQuote, side domain.Side, score, corr float64, open []domain.Position) []domain.Position {
	if s.trades == nil || hasOpen(open, q.ID) {
		return open
	}
	if ok, reason := s.risk.CheckPositionLimits(open); !ok {
		s.logger.Warn("ev trade blocked", slog.String("reason", reason))
		return open
	}

	bankroll := s.Bankroll()
	frac := s.evSizeFraction(score, corr)
	ok, adjusted, reason := s.risk.ValidatePositionSize(frac, bankroll, open)
	if !ok {
		s.logger.Debug("ev trade rejected",
			slog.String("market_id", q.ID),
			slog.String("reason", reason),
		)
		return open
	}

	entry := q.YesAsk
	if side == domain.SideNo {
		entry = q.NoAsk
		if entry == 0 {
			entry = 1 - q.YesPrice()
		}
	}
	if entry <= 0 {
		entry = q.YesPrice()
	}

	pos := domain.Position{
		ID:         uuid.NewString(),
		MarketID:   q.ID,
		Title:      q.Title,
		Platform:   q.Platform,
		Category:   q.Category,
		Side:       side,
		Size:       adjusted * bankroll,
		EntryPrice: entry,
		EntryTime:  s.now().UTC(),
		CloseTime:  q.CloseTime,
		Status:     domain.PositionOpen,
	}
	if err := s.trades.Insert(ctx, pos); err != nil {
		s.logger.Error("insert ev trade",
			slog.String("market_id", q.ID),
			slog.String("error", err.Error()),
		)
		return open
	}

	s.logger.Info("ev paper trade opened",
		slog.String("market_id", q.ID),
		slog.String("side", string(side)),
		slog.Float64("size", pos.Size),
		slog.Float64("entry", pos.EntryPrice),
	)
	if s.notifier != nil {
		title, msg := notify.FormatTradeOpened(pos)
		if err := s.notifier.Notify(ctx, notify.EventTrade, title, msg); err != nil {
			s.logger.Error("trade alert", slog.String("error", err.Error()))
		}
	}
	return append(open, pos)
}
