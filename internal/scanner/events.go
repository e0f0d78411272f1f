package scanner

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strconv"

	"github.com/google/uuid"

	"github.com/seerscan/seer/internal/arb"
	"github.com/seerscan/seer/internal/domain"
	"github.com/seerscan/seer/internal/notify"
	"github.com/seerscan/seer/internal/platform/polymarket"
)

// maxEventsPerCycle bounds the per-event market fetches in one Kalshi scan.
const maxEventsPerCycle = 50

// scanKalshi pulls the open Kalshi markets, runs the per-market pipeline, and
// checks mutually exclusive events for multi-outcome mispricing.
func (s *Scanner) scanKalshi(ctx context.Context) ([]domain.EventArb, error) {
	markets, err := s.kalshi.GetAllMarkets(ctx, "open", 5)
	if err != nil {
		return nil, fmt.Errorf("get markets: %w", err)
	}

	open, err := s.openPositions(ctx)
	if err != nil {
		return nil, err
	}

	det := arb.NewDetector("kalshi")
	for _, m := range markets {
		open = s.processQuote(ctx, det, m.ToQuote(), open, true)
	}

	events, _, err := s.kalshi.GetEvents(ctx, "open", 200, "")
	if err != nil {
		return nil, fmt.Errorf("get events: %w", err)
	}

	var arbs []domain.EventArb
	checked := 0
	for _, ev := range events {
		if !ev.MutuallyExclusive {
			continue
		}
		if checked >= maxEventsPerCycle {
			break
		}
		checked++

		eventMarkets, err := s.kalshi.GetMarketsForEvent(ctx, ev.EventTicker)
		if err != nil {
			s.logger.Warn("kalshi event fetch failed",
				slog.String("event", ev.EventTicker),
				slog.String("error", err.Error()),
			)
			continue
		}

		outcomes := make([]domain.Outcome, 0, len(eventMarkets))
		quotes := make([]domain.MarketQuote, 0, len(eventMarkets))
		for _, m := range eventMarkets {
			outcomes = append(outcomes, m.ToOutcome())
			quotes = append(quotes, m.ToQuote())
		}

		if opp := det.CheckMultiOutcome(ev.EventTicker, ev.Title, outcomes); opp != nil {
			s.storeOpportunity(ctx, *opp)
		}

		if ea, ok := s.eventArbFromQuotes("kalshi", "multi_outcome", ev.EventTicker, ev.Title, quotes, s.cfg.ArbMinProfit); ok {
			arbs = append(arbs, ea)
		}
	}
	return arbs, nil
}

// scanPolymarket pulls the active Gamma markets, runs the per-market
// pipeline, and groups sibling bracket markets by question ID to find
// outcome sets whose YES prices sum away from $1.
func (s *Scanner) scanPolymarket(ctx context.Context) ([]domain.EventArb, error) {
	markets, err := s.poly.GetActiveMarkets(ctx, 500, 0)
	if err != nil {
		return nil, fmt.Errorf("get active markets: %w", err)
	}

	open, err := s.openPositions(ctx)
	if err != nil {
		return nil, err
	}

	det := arb.NewDetector("polymarket")
	for i := range markets {
		open = s.processQuote(ctx, det, markets[i].ToQuote(), open, true)
	}

	return s.groupedEventArbs(markets, "multi_outcome", s.cfg.ArbMinProfit), nil
}

// scanPolymarketCrypto scans the short-lived crypto up/down brackets on
// their own cadence with a looser edge threshold, since they resolve within
// minutes and stale quotes decay fast.
func (s *Scanner) scanPolymarketCrypto(ctx context.Context) ([]domain.EventArb, error) {
	markets, err := s.poly.GetCryptoMarkets(ctx, 200)
	if err != nil {
		return nil, fmt.Errorf("get crypto markets: %w", err)
	}
	return s.groupedEventArbs(markets, "crypto_5min", s.cfg.CryptoMinProfit), nil
}

// groupedEventArbs groups Gamma markets into brackets by EventKey and checks
// each full bracket's YES price sum.
func (s *Scanner) groupedEventArbs(markets []polymarket.APIMarket, kind string, minProfit float64) []domain.EventArb {
	groups := make(map[string][]domain.MarketQuote)
	titles := make(map[string]string)
	for i := range markets {
		key := markets[i].EventKey()
		if key == "" {
			continue
		}
		q := markets[i].ToQuote()
		groups[key] = append(groups[key], q)
		if titles[key] == "" {
			titles[key] = q.Title
		}
	}

	var arbs []domain.EventArb
	for key, quotes := range groups {
		if len(quotes) < 2 {
			continue
		}
		if ea, ok := s.eventArbFromQuotes("polymarket", kind, key, titles[key], quotes, minProfit); ok {
			arbs = append(arbs, ea)
		}
	}
	return arbs
}

// scanPredictIt checks every multi-contract PredictIt market for bracket
// mispricing. Contracts priced below the ignore floor are longshot noise and
// excluded from the sum.
func (s *Scanner) scanPredictIt(ctx context.Context) ([]domain.EventArb, error) {
	markets, err := s.predictit.GetMultiOutcomeMarkets(ctx)
	if err != nil {
		return nil, fmt.Errorf("get markets: %w", err)
	}

	open, err := s.openPositions(ctx)
	if err != nil {
		return nil, err
	}

	// EV trades stay off PredictIt: the API exposes no resolution feed, so
	// speculative positions there would never settle.
	det := arb.NewDetector("predictit")

	var arbs []domain.EventArb
	for _, m := range markets {
		quotes := make([]domain.MarketQuote, 0, len(m.Contracts))
		for _, c := range m.Contracts {
			q := c.ToQuote(m.ID, m.Name)
			open = s.processQuote(ctx, det, q, open, false)
			if c.YesPrice() < s.cfg.ArbIgnoreBelow {
				continue
			}
			quotes = append(quotes, q)
		}
		if len(quotes) < 2 {
			continue
		}
		key := strconv.FormatInt(m.ID, 10)
		if ea, ok := s.eventArbFromQuotes("predictit", "multi_outcome", key, m.Name, quotes, s.cfg.ArbMinProfit); ok {
			arbs = append(arbs, ea)
		}
	}
	return arbs, nil
}

// eventArbFromQuotes sums the YES mid prices across an outcome set and emits
// an event arb when the deviation from $1 clears the threshold. The basket
// must resolve in the future and within the alert horizon.
func (s *Scanner) eventArbFromQuotes(platform, kind, key, title string, quotes []domain.MarketQuote, minProfit float64) (domain.EventArb, bool) {
	var (
		yesSum   float64
		valid    int
		resolves = quotes[0].CloseTime
	)
	for _, q := range quotes {
		p := q.YesPrice()
		if p <= 0 || p >= 1 {
			continue
		}
		yesSum += p
		valid++
		if !q.CloseTime.IsZero() && (resolves.IsZero() || q.CloseTime.Before(resolves)) {
			resolves = q.CloseTime
		}
	}
	if valid < 2 {
		return domain.EventArb{}, false
	}

	deviation := yesSum - 1
	profit := deviation
	if profit < 0 {
		profit = -profit
	}
	if profit < minProfit {
		return domain.EventArb{}, false
	}

	now := s.now()
	if resolves.IsZero() || !resolves.After(now) {
		return domain.EventArb{}, false
	}
	if resolves.Sub(now).Hours()/24 > float64(s.cfg.MaxDaysToResolution) {
		return domain.EventArb{}, false
	}

	strategy := domain.BuyAllYes
	if deviation > 0 {
		strategy = domain.BuyAllNo
	}

	return domain.EventArb{
		Platform:     platform,
		Kind:         kind,
		EventKey:     key,
		Title:        title,
		NumOutcomes:  valid,
		YesSum:       yesSum,
		Deviation:    deviation,
		Strategy:     strategy,
		ProfitPer100: profit * 100,
		CloseTime:    resolves,
	}, true
}

// handleEventArbs alerts on and paper-executes a batch of event arbs, best
// edge first.
func (s *Scanner) handleEventArbs(ctx context.Context, arbs []domain.EventArb) {
	if len(arbs) == 0 {
		return
	}

	sort.Slice(arbs, func(i, j int) bool {
		return arbs[i].ProfitPer100 > arbs[j].ProfitPer100
	})

	open, err := s.openPositions(ctx)
	if err != nil {
		s.logger.Error("event arb execution skipped", slog.String("error", err.Error()))
		open = nil
	}

	for _, ea := range arbs {
		s.alertEventArb(ctx, ea)
		if s.trades != nil && !s.risk.KillSwitchActive() {
			open = s.executeArb(ctx, ea, open)
		}
	}
}

// alertEventArb notifies on an event arb worth a human look, with per-event
// deduplication.
func (s *Scanner) alertEventArb(ctx context.Context, ea domain.EventArb) {
	if s.notifier == nil {
		return
	}

	threshold := s.cfg.AlertMinPer100
	if ea.Kind == "crypto_5min" {
		threshold = s.cfg.CryptoAlertMinPer100
	}
	if ea.ProfitPer100 < threshold {
		return
	}

	key := "alert:event:" + ea.Platform + ":" + ea.EventKey
	if s.onCooldown(ctx, key) {
		return
	}
	title, msg := notify.FormatEventArb(ea, s.now())
	if err := s.notifier.Notify(ctx, notify.EventArbitrage, title, msg); err != nil {
		s.logger.Error("event arb alert", slog.String("error", err.Error()))
		return
	}
	s.setCooldown(ctx, key, s.cfg.AlertCooldown)
}

// executeArb opens a synthetic paper position for an event arb. The whole
// basket is recorded as one position whose entry price encodes the
// guaranteed return. Returns the open slice with the new position appended.
func (s *Scanner) executeArb(ctx context.Context, ea domain.EventArb, open []domain.Position) []domain.Position {
	rate := ea.ProfitRate()
	if rate <= 0 {
		return open
	}

	id := domain.ArbPositionID(ea.Platform, ea.EventKey, string(ea.Strategy))
	if hasOpen(open, id) {
		return open
	}
	if s.onCooldown(ctx, "arb:"+id) {
		return open
	}
	if ok, reason := s.risk.CheckPositionLimits(open); !ok {
		s.logger.Warn("arb execution blocked", slog.String("reason", reason))
		return open
	}

	bankroll := s.Bankroll()
	ok, adjusted, reason := s.risk.ValidatePositionSize(sizeArb(rate), bankroll, open)
	if !ok {
		s.logger.Debug("arb execution rejected",
			slog.String("arb_id", id),
			slog.String("reason", reason),
		)
		return open
	}

	dollars := adjusted * bankroll
	if dollars > s.cfg.MaxTradeUSD {
		dollars = s.cfg.MaxTradeUSD
	}

	pos := domain.Position{
		ID:         uuid.NewString(),
		MarketID:   id,
		Title:      ea.Title,
		Platform:   ea.Platform,
		Category:   "arbitrage",
		Side:       domain.SideYes,
		Size:       dollars,
		EntryPrice: domain.SyntheticEntryPrice(rate),
		EntryTime:  s.now().UTC(),
		CloseTime:  ea.CloseTime,
		Status:     domain.PositionOpen,
	}
	if err := s.trades.Insert(ctx, pos); err != nil {
		s.logger.Error("insert arb trade",
			slog.String("arb_id", id),
			slog.String("error", err.Error()),
		)
		return open
	}
	s.setCooldown(ctx, "arb:"+id, s.cfg.ArbCooldown)

	s.logger.Info("arb paper trade opened",
		slog.String("arb_id", id),
		slog.Float64("size", dollars),
		slog.Float64("profit_per_100", ea.ProfitPer100),
		slog.String("strategy", string(ea.Strategy)),
	)
	if s.notifier != nil {
		title, msg := notify.FormatTradeOpened(pos)
		if err := s.notifier.Notify(ctx, notify.EventTrade, title, msg); err != nil {
			s.logger.Error("trade alert", slog.String("error", err.Error()))
		}
	}
	return append(open, pos)
}
