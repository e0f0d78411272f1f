package scanner

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"testing"
	"time"

	"github.com/seerscan/seer/internal/arb"
	"github.com/seerscan/seer/internal/domain"
	"github.com/seerscan/seer/internal/notify"
	"github.com/seerscan/seer/internal/platform/kalshi"
	"github.com/seerscan/seer/internal/platform/polymarket"
	"github.com/seerscan/seer/internal/platform/predictit"
	"github.com/seerscan/seer/internal/risk"
)

func discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

// ---------------------------------------------------------------------------
// in-memory fakes
// ---------------------------------------------------------------------------

type memTrades struct {
	open   []domain.Position
	closed []domain.Position
}

func (m *memTrades) Insert(_ context.Context, pos domain.Position) error {
	m.open = append(m.open, pos)
	return nil
}

func (m *memTrades) ListOpen(_ context.Context) ([]domain.Position, error) {
	out := make([]domain.Position, len(m.open))
	copy(out, m.open)
	return out, nil
}

func (m *memTrades) ListClosed(_ context.Context, _ domain.ListOpts) ([]domain.Position, error) {
	return m.closed, nil
}

func (m *memTrades) UpdateResult(_ context.Context, marketID string, pos domain.Position) error {
	for i, p := range m.open {
		if p.MarketID == marketID {
			m.open = append(m.open[:i], m.open[i+1:]...)
			m.closed = append(m.closed, pos)
			return nil
		}
	}
	return domain.ErrNotFound
}

func (m *memTrades) PerformanceStats(_ context.Context) (domain.PerformanceStats, error) {
	return domain.PerformanceStats{}, nil
}

func (m *memTrades) ListClosedBefore(_ context.Context, _ time.Time) ([]domain.Position, error) {
	return nil, nil
}

func (m *memTrades) DeleteClosedBefore(_ context.Context, _ time.Time) (int64, error) {
	return 0, nil
}

type memOpps struct {
	inserted []domain.Opportunity
}

func (m *memOpps) Insert(_ context.Context, opp domain.Opportunity) error {
	m.inserted = append(m.inserted, opp)
	return nil
}

func (m *memOpps) ListRecent(_ context.Context, _ domain.ListOpts) ([]domain.Opportunity, error) {
	return m.inserted, nil
}

func (m *memOpps) ListBefore(_ context.Context, _ time.Time) ([]domain.Opportunity, error) {
	return nil, nil
}

func (m *memOpps) DeleteBefore(_ context.Context, _ time.Time) (int64, error) {
	return 0, nil
}

type memCooldowns struct {
	keys map[string]bool
}

func newMemCooldowns() *memCooldowns {
	return &memCooldowns{keys: map[string]bool{}}
}

func (m *memCooldowns) Set(_ context.Context, key string, _ time.Duration) error {
	m.keys[key] = true
	return nil
}

func (m *memCooldowns) Active(_ context.Context, key string) (bool, error) {
	return m.keys[key], nil
}

type memKillEvents struct {
	events []domain.KillSwitchEvent
}

func (m *memKillEvents) Insert(_ context.Context, ev domain.KillSwitchEvent) error {
	m.events = append(m.events, ev)
	return nil
}

func (m *memKillEvents) ListRecent(_ context.Context, _ int) ([]domain.KillSwitchEvent, error) {
	return m.events, nil
}

type countingSender struct {
	sends int
}

func (c *countingSender) Send(_ context.Context, _, _ string) error {
	c.sends++
	return nil
}

func (c *countingSender) Name() string { return "counting" }

type fakeKalshi struct {
	markets      []kalshi.Market
	events       []kalshi.Event
	eventMarkets map[string][]kalshi.Market
	results      map[string]string
	err          error
}

func (f *fakeKalshi) GetAllMarkets(_ context.Context, _ string, _ int) ([]kalshi.Market, error) {
	return f.markets, f.err
}

func (f *fakeKalshi) GetEvents(_ context.Context, _ string, _ int, _ string) ([]kalshi.Event, string, error) {
	return f.events, "", f.err
}

func (f *fakeKalshi) GetMarketsForEvent(_ context.Context, eventTicker string) ([]kalshi.Market, error) {
	return f.eventMarkets[eventTicker], f.err
}

func (f *fakeKalshi) GetMarketResult(_ context.Context, ticker string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return f.results[ticker], nil
}

type fakePolymarket struct {
	active      []polymarket.APIMarket
	crypto      []polymarket.APIMarket
	resolutions map[string]polymarket.MarketResolution
	err         error
}

func (f *fakePolymarket) GetActiveMarkets(_ context.Context, _, _ int) ([]polymarket.APIMarket, error) {
	return f.active, f.err
}

func (f *fakePolymarket) GetCryptoMarkets(_ context.Context, _ int) ([]polymarket.APIMarket, error) {
	return f.crypto, f.err
}

func (f *fakePolymarket) GetMarketResolution(_ context.Context, marketID string) (polymarket.MarketResolution, error) {
	if f.err != nil {
		return polymarket.MarketResolution{}, f.err
	}
	return f.resolutions[marketID], nil
}

type fakePredictIt struct {
	markets []predictit.Market
	err     error
}

func (f *fakePredictIt) GetAllMarkets(_ context.Context) ([]predictit.Market, error) {
	return f.markets, f.err
}

func (f *fakePredictIt) GetMultiOutcomeMarkets(_ context.Context) ([]predictit.Market, error) {
	return f.markets, f.err
}

// ---------------------------------------------------------------------------
// helpers
// ---------------------------------------------------------------------------

type testEnv struct {
	scanner    *Scanner
	trades     *memTrades
	opps       *memOpps
	cooldowns  *memCooldowns
	killEvents *memKillEvents
}

func newTestScanner(cfg Config, d Deps) *testEnv {
	env := &testEnv{
		trades:     &memTrades{},
		opps:       &memOpps{},
		cooldowns:  newMemCooldowns(),
		killEvents: &memKillEvents{},
	}
	d.Opportunities = env.opps
	d.Trades = env.trades
	d.Cooldowns = env.cooldowns
	d.KillEvents = env.killEvents
	if d.Risk == nil {
		d.Risk = risk.NewManager(cfg.InitialBankroll, risk.DefaultLimits(), discard())
	}
	d.Logger = discard()
	env.scanner = New(cfg, d)
	return env
}

func futureQuotes(now time.Time, prices ...float64) []domain.MarketQuote {
	quotes := make([]domain.MarketQuote, 0, len(prices))
	for i, p := range prices {
		quotes = append(quotes, domain.MarketQuote{
			ID:        string(rune('a' + i)),
			YesBid:    p - 0.01,
			YesAsk:    p + 0.01,
			CloseTime: now.Add(5 * 24 * time.Hour),
			Status:    domain.MarketStatusOpen,
		})
	}
	return quotes
}

// ---------------------------------------------------------------------------
// sizing
// ---------------------------------------------------------------------------

func TestSizeArb(t *testing.T) {
	tests := []struct {
		rate float64
		want float64
	}{
		{0.01, 0.02},  // below base edge, multiplier floors at 1
		{0.02, 0.02},  // base
		{0.04, 0.04},  // 2x edge doubles the stake
		{0.10, 0.05},  // capped
		{0.001, 0.02}, // tiny edge still floors the multiplier
	}
	for _, tt := range tests {
		if got := sizeArb(tt.rate); !almostEqual(got, tt.want) {
			t.Errorf("sizeArb(%v) = %v, want %v", tt.rate, got, tt.want)
		}
	}
}

func TestEVSizeFraction(t *testing.T) {
	env := newTestScanner(DefaultConfig(), Deps{})
	s := env.scanner

	tests := []struct {
		score, corr float64
		want        float64
	}{
		{9.5, 0, 0.02},          // full confidence
		{8.5, 0, 0.014},         // mid tier
		{6.5, 0, 0.01},          // low tier
		{9.5, 0.2, 0.01},        // correlation halves it
		{9.5, 0.4, 0.02 * 0.3},  // damp floored at 0.3
		{6.5, 0.38, 0.01 * 0.3}, // floor binds before the tier
	}
	for _, tt := range tests {
		if got := s.evSizeFraction(tt.score, tt.corr); !almostEqual(got, tt.want) {
			t.Errorf("evSizeFraction(%v, %v) = %v, want %v", tt.score, tt.corr, got, tt.want)
		}
	}
}

// ---------------------------------------------------------------------------
// event arb detection
// ---------------------------------------------------------------------------

func TestEventArbFromQuotes(t *testing.T) {
	env := newTestScanner(DefaultConfig(), Deps{})
	s := env.scanner
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }

	quotes := futureQuotes(now, 0.30, 0.55)
	ea, ok := s.eventArbFromQuotes("polymarket", "multi_outcome", "0xabc", "Bracket", quotes, 0.02)
	if !ok {
		t.Fatal("expected event arb")
	}
	if !almostEqual(ea.YesSum, 0.85) {
		t.Errorf("YesSum = %v, want 0.85", ea.YesSum)
	}
	if !almostEqual(ea.Deviation, -0.15) {
		t.Errorf("Deviation = %v, want -0.15", ea.Deviation)
	}
	if ea.Strategy != domain.BuyAllYes {
		t.Errorf("Strategy = %v, want BUY_ALL_YES", ea.Strategy)
	}
	if !almostEqual(ea.ProfitPer100, 15) {
		t.Errorf("ProfitPer100 = %v, want 15", ea.ProfitPer100)
	}
	if ea.NumOutcomes != 2 {
		t.Errorf("NumOutcomes = %d, want 2", ea.NumOutcomes)
	}
}

func TestEventArbFromQuotesOverpriced(t *testing.T) {
	env := newTestScanner(DefaultConfig(), Deps{})
	s := env.scanner
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }

	quotes := futureQuotes(now, 0.60, 0.50)
	ea, ok := s.eventArbFromQuotes("kalshi", "multi_outcome", "EV-1", "Bracket", quotes, 0.02)
	if !ok {
		t.Fatal("expected event arb")
	}
	if ea.Strategy != domain.BuyAllNo {
		t.Errorf("Strategy = %v, want BUY_ALL_NO", ea.Strategy)
	}
	if !almostEqual(ea.ProfitPer100, 10) {
		t.Errorf("ProfitPer100 = %v, want 10", ea.ProfitPer100)
	}
}

func TestEventArbFromQuotesFilters(t *testing.T) {
	env := newTestScanner(DefaultConfig(), Deps{})
	s := env.scanner
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }

	// Balanced bracket: no edge.
	if _, ok := s.eventArbFromQuotes("kalshi", "multi_outcome", "k", "t", futureQuotes(now, 0.50, 0.50), 0.02); ok {
		t.Error("balanced bracket must not emit an arb")
	}

	// Closed in the past.
	past := futureQuotes(now, 0.30, 0.55)
	for i := range past {
		past[i].CloseTime = now.Add(-time.Hour)
	}
	if _, ok := s.eventArbFromQuotes("kalshi", "multi_outcome", "k", "t", past, 0.02); ok {
		t.Error("expired bracket must not emit an arb")
	}

	// Too far out.
	far := futureQuotes(now, 0.30, 0.55)
	for i := range far {
		far[i].CloseTime = now.Add(90 * 24 * time.Hour)
	}
	if _, ok := s.eventArbFromQuotes("kalshi", "multi_outcome", "k", "t", far, 0.02); ok {
		t.Error("bracket beyond the horizon must not emit an arb")
	}

	// Single valid outcome.
	if _, ok := s.eventArbFromQuotes("kalshi", "multi_outcome", "k", "t", futureQuotes(now, 0.30), 0.02); ok {
		t.Error("single-outcome bracket must not emit an arb")
	}
}

// ---------------------------------------------------------------------------
// arb execution
// ---------------------------------------------------------------------------

func TestExecuteArb(t *testing.T) {
	env := newTestScanner(DefaultConfig(), Deps{})
	s := env.scanner
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }

	ea := domain.EventArb{
		Platform:     "polymarket",
		Kind:         "multi_outcome",
		EventKey:     "0xabc",
		Title:        "Bracket",
		Strategy:     domain.BuyAllNo,
		ProfitPer100: 4.0,
		CloseTime:    now.Add(48 * time.Hour),
	}

	open := s.executeArb(context.Background(), ea, nil)
	if len(env.trades.open) != 1 {
		t.Fatalf("open trades = %d, want 1", len(env.trades.open))
	}
	pos := env.trades.open[0]

	wantID := "polymarket_ARB::0xabc::BUY_ALL_NO"
	if pos.MarketID != wantID {
		t.Errorf("MarketID = %q, want %q", pos.MarketID, wantID)
	}
	// 4% edge doubles the 2% base stake: 0.04 * 5000 = 200.
	if !almostEqual(pos.Size, 200) {
		t.Errorf("Size = %v, want 200", pos.Size)
	}
	if !almostEqual(pos.EntryPrice, 1/1.04) {
		t.Errorf("EntryPrice = %v, want %v", pos.EntryPrice, 1/1.04)
	}
	if !env.cooldowns.keys["arb:"+wantID] {
		t.Error("expected arb cooldown to be set")
	}

	// Second execution dedups against the open position.
	s.executeArb(context.Background(), ea, open)
	if len(env.trades.open) != 1 {
		t.Errorf("open trades after dedup = %d, want 1", len(env.trades.open))
	}

	// Cooldown alone also blocks re-entry.
	s.executeArb(context.Background(), ea, nil)
	if len(env.trades.open) != 1 {
		t.Errorf("open trades after cooldown = %d, want 1", len(env.trades.open))
	}
}

func TestExecuteArbDollarCap(t *testing.T) {
	cfg := DefaultConfig()
	cfg.InitialBankroll = 20000
	env := newTestScanner(cfg, Deps{})
	s := env.scanner
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }

	ea := domain.EventArb{
		Platform:     "kalshi",
		EventKey:     "EV-1",
		Strategy:     domain.BuyAllYes,
		ProfitPer100: 10.0,
		CloseTime:    now.Add(24 * time.Hour),
	}
	s.executeArb(context.Background(), ea, nil)
	if len(env.trades.open) != 1 {
		t.Fatalf("open trades = %d, want 1", len(env.trades.open))
	}
	// 5% of 20k would be $1000; the absolute cap binds at $500.
	if !almostEqual(env.trades.open[0].Size, 500) {
		t.Errorf("Size = %v, want 500", env.trades.open[0].Size)
	}
}

func TestExecuteArbRequiresFutureClose(t *testing.T) {
	env := newTestScanner(DefaultConfig(), Deps{})
	s := env.scanner
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }

	// eventArbFromQuotes filters these already; executeArb re-checks via
	// ProfitRate and the caller-provided close time.
	ea := domain.EventArb{
		Platform:     "kalshi",
		EventKey:     "EV-2",
		Strategy:     domain.BuyAllYes,
		ProfitPer100: 0,
		CloseTime:    now.Add(24 * time.Hour),
	}
	s.executeArb(context.Background(), ea, nil)
	if len(env.trades.open) != 0 {
		t.Errorf("open trades = %d, want 0 for zero edge", len(env.trades.open))
	}
}

// ---------------------------------------------------------------------------
// EV path
// ---------------------------------------------------------------------------

func TestCheckEVEdgeOpensTrade(t *testing.T) {
	env := newTestScanner(DefaultConfig(), Deps{})
	s := env.scanner
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }

	q := domain.MarketQuote{
		ID:        "KXCPI-26",
		Title:     "Will CPI exceed 4% in 2026",
		Platform:  "kalshi",
		Category:  "economics",
		YesBid:    0.04,
		YesAsk:    0.06,
		NoBid:     0.94,
		NoAsk:     0.96,
		Volume24h: 50000,
		Volume7d:  700000,
		CloseTime: now.Add(10 * 24 * time.Hour),
		Status:    domain.MarketStatusOpen,
	}

	open := s.processQuote(context.Background(), arb.NewDetector("kalshi"), q, nil, true)
	if len(env.trades.open) != 1 {
		t.Fatalf("open trades = %d, want 1", len(env.trades.open))
	}
	pos := env.trades.open[0]
	if pos.Side != domain.SideYes {
		t.Errorf("Side = %v, want YES", pos.Side)
	}
	// Quality tier 0.5, no correlation: 0.02 * 0.5 * 5000 = 50.
	if !almostEqual(pos.Size, 50) {
		t.Errorf("Size = %v, want 50", pos.Size)
	}
	if !almostEqual(pos.EntryPrice, 0.06) {
		t.Errorf("EntryPrice = %v, want 0.06", pos.EntryPrice)
	}
	if len(open) != 1 {
		t.Errorf("returned open slice len = %d, want 1", len(open))
	}

	foundEV := false
	for _, opp := range env.opps.inserted {
		if opp.Type == domain.EVEdge {
			foundEV = true
		}
	}
	if !foundEV {
		t.Error("expected an EV opportunity to be recorded")
	}

	// Same quote again: the open position dedups the trade.
	s.processQuote(context.Background(), arb.NewDetector("kalshi"), q, open, true)
	if len(env.trades.open) != 1 {
		t.Errorf("open trades after rescan = %d, want 1", len(env.trades.open))
	}
}

func TestCheckEVEdgeSkipsMidRange(t *testing.T) {
	env := newTestScanner(DefaultConfig(), Deps{})
	s := env.scanner
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }

	q := domain.MarketQuote{
		ID:        "MID-1",
		Title:     "Coin flip market",
		Platform:  "kalshi",
		Category:  "economics",
		YesBid:    0.49,
		YesAsk:    0.51,
		Volume24h: 50000,
		CloseTime: now.Add(10 * 24 * time.Hour),
		Status:    domain.MarketStatusOpen,
	}
	s.processQuote(context.Background(), arb.NewDetector("kalshi"), q, nil, true)
	if len(env.trades.open) != 0 {
		t.Errorf("open trades = %d, want 0 for mid-range price", len(env.trades.open))
	}
}

// ---------------------------------------------------------------------------
// resolution
// ---------------------------------------------------------------------------

func TestResolveArbAutoWin(t *testing.T) {
	env := newTestScanner(DefaultConfig(), Deps{})
	s := env.scanner
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }

	env.trades.open = []domain.Position{{
		ID:         "p1",
		MarketID:   "polymarket_ARB::0xabc::BUY_ALL_NO",
		Platform:   "polymarket",
		Side:       domain.SideYes,
		Size:       200,
		EntryPrice: 1 / 1.04,
		CloseTime:  now.Add(-time.Hour),
		Status:     domain.PositionOpen,
	}}

	if err := s.resolvePaperTrades(context.Background()); err != nil {
		t.Fatalf("resolvePaperTrades: %v", err)
	}
	if len(env.trades.closed) != 1 {
		t.Fatalf("closed trades = %d, want 1", len(env.trades.closed))
	}
	pos := env.trades.closed[0]
	if !pos.Win {
		t.Error("arb basket must settle as a win")
	}
	// 200 staked at 1/1.04 pays 208: the locked 4% edge.
	if !almostEqual(pos.PnL, 8) {
		t.Errorf("PnL = %v, want 8", pos.PnL)
	}
	if !almostEqual(s.Bankroll(), 5008) {
		t.Errorf("bankroll = %v, want 5008", s.Bankroll())
	}
}

func TestResolveArbStillOpenBeforeClose(t *testing.T) {
	env := newTestScanner(DefaultConfig(), Deps{})
	s := env.scanner
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }

	env.trades.open = []domain.Position{{
		ID:        "p1",
		MarketID:  "kalshi_ARB::EV-1::BUY_ALL_YES",
		Platform:  "kalshi",
		Side:      domain.SideYes,
		Size:      100,
		CloseTime: now.Add(time.Hour),
		Status:    domain.PositionOpen,
	}}

	if err := s.resolvePaperTrades(context.Background()); err != nil {
		t.Fatalf("resolvePaperTrades: %v", err)
	}
	if len(env.trades.closed) != 0 {
		t.Errorf("closed trades = %d, want 0 before close time", len(env.trades.closed))
	}
}

func TestResolveKalshiLoss(t *testing.T) {
	env := newTestScanner(DefaultConfig(), Deps{
		Kalshi: &fakeKalshi{results: map[string]string{"KXCPI-26": "no"}},
	})
	s := env.scanner
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }

	env.trades.open = []domain.Position{{
		ID:         "p1",
		MarketID:   "KXCPI-26",
		Platform:   "kalshi",
		Side:       domain.SideYes,
		Size:       50,
		EntryPrice: 0.06,
		Status:     domain.PositionOpen,
	}}

	if err := s.resolvePaperTrades(context.Background()); err != nil {
		t.Fatalf("resolvePaperTrades: %v", err)
	}
	if len(env.trades.closed) != 1 {
		t.Fatalf("closed trades = %d, want 1", len(env.trades.closed))
	}
	pos := env.trades.closed[0]
	if pos.Win {
		t.Error("YES position must lose on a no result")
	}
	if !almostEqual(pos.PnL, -50) {
		t.Errorf("PnL = %v, want -50", pos.PnL)
	}
	if !almostEqual(s.Bankroll(), 4950) {
		t.Errorf("bankroll = %v, want 4950", s.Bankroll())
	}
}

func TestResolvePolymarketWin(t *testing.T) {
	env := newTestScanner(DefaultConfig(), Deps{
		Polymarket: &fakePolymarket{resolutions: map[string]polymarket.MarketResolution{
			"0xcond": {Closed: true, YesWon: true},
		}},
	})
	s := env.scanner
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }

	env.trades.open = []domain.Position{{
		ID:         "p1",
		MarketID:   "0xcond",
		Platform:   "polymarket",
		Side:       domain.SideYes,
		Size:       100,
		EntryPrice: 0.25,
		Status:     domain.PositionOpen,
	}}

	if err := s.resolvePaperTrades(context.Background()); err != nil {
		t.Fatalf("resolvePaperTrades: %v", err)
	}
	if len(env.trades.closed) != 1 {
		t.Fatalf("closed trades = %d, want 1", len(env.trades.closed))
	}
	pos := env.trades.closed[0]
	if !pos.Win {
		t.Error("YES position must win when YES resolves")
	}
	// 100 / 0.25 = 400 contracts paying $1 each.
	if !almostEqual(pos.PnL, 300) {
		t.Errorf("PnL = %v, want 300", pos.PnL)
	}
}

// ---------------------------------------------------------------------------
// kill switch
// ---------------------------------------------------------------------------

func TestConsecutiveErrorsTripKillSwitch(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxConsecutiveErrs = 3
	env := newTestScanner(cfg, Deps{
		Kalshi: &fakeKalshi{err: errors.New("api down")},
	})
	s := env.scanner
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }

	for i := 0; i < 3; i++ {
		s.ScanOnce(context.Background())
	}
	if !s.risk.KillSwitchActive() {
		t.Fatal("kill switch must trip after repeated scan failures")
	}
	if len(env.killEvents.events) == 0 {
		t.Fatal("expected a kill switch event to be recorded")
	}
	if env.killEvents.events[0].Reason != "Too many consecutive errors" {
		t.Errorf("reason = %q", env.killEvents.events[0].Reason)
	}

	// While active, no new exposure.
	s.ScanOnce(context.Background())
	if len(env.trades.open) != 0 {
		t.Errorf("open trades = %d, want 0 under kill switch", len(env.trades.open))
	}
}

func TestLatchedKillSwitchRecordsOnce(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxConsecutiveErrs = 2
	sender := &countingSender{}
	env := newTestScanner(cfg, Deps{
		Kalshi:   &fakeKalshi{err: errors.New("api down")},
		Notifier: notify.NewNotifier([]notify.Sender{sender}, nil, discard()),
	})
	s := env.scanner
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }

	s.ScanOnce(context.Background())
	s.ScanOnce(context.Background())
	if !s.risk.KillSwitchActive() {
		t.Fatal("kill switch must trip after repeated scan failures")
	}
	recorded := len(env.killEvents.events)
	alerted := sender.sends

	// Latched cycles stay silent: no fresh event rows, no repeat alerts.
	s.ScanOnce(context.Background())
	s.ScanOnce(context.Background())
	if got := len(env.killEvents.events); got != recorded {
		t.Errorf("kill switch events = %d after latched cycles, want %d", got, recorded)
	}
	if sender.sends != alerted {
		t.Errorf("alerts = %d after latched cycles, want %d", sender.sends, alerted)
	}
}

func TestScanSuccessResetsErrorCount(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxConsecutiveErrs = 3
	fk := &fakeKalshi{err: errors.New("api down")}
	env := newTestScanner(cfg, Deps{Kalshi: fk})
	s := env.scanner
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }

	s.ScanOnce(context.Background())
	s.ScanOnce(context.Background())
	fk.err = nil
	s.ScanOnce(context.Background())
	fk.err = errors.New("api down again")
	s.ScanOnce(context.Background())

	if s.risk.KillSwitchActive() {
		t.Error("kill switch must not trip when a success resets the streak")
	}
}

// ---------------------------------------------------------------------------
// platform scans end to end
// ---------------------------------------------------------------------------

func TestScanKalshiSingleCondition(t *testing.T) {
	fk := &fakeKalshi{
		markets: []kalshi.Market{{
			Ticker:    "UNDER-1",
			Title:     "Underpriced pair",
			Status:    "open",
			YesBid:    44,
			YesAsk:    46,
			NoBid:     47,
			NoAsk:     49,
			Liquidity: 10000,
		}},
	}
	env := newTestScanner(DefaultConfig(), Deps{Kalshi: fk})
	s := env.scanner
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }

	if _, err := s.scanKalshi(context.Background()); err != nil {
		t.Fatalf("scanKalshi: %v", err)
	}

	found := false
	for _, opp := range env.opps.inserted {
		if opp.Type == domain.SingleConditionLong && opp.MarketID == "UNDER-1" {
			found = true
			if !almostEqual(opp.ProfitPerDollar, 0.05) {
				t.Errorf("ProfitPerDollar = %v, want 0.05", opp.ProfitPerDollar)
			}
		}
	}
	if !found {
		t.Error("expected a single-condition opportunity from the 0.95 pair")
	}
}

func TestScanPredictItIgnoresLongshots(t *testing.T) {
	p := func(v float64) *float64 { return &v }
	closeStr := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC).Format(time.RFC3339)

	fp := &fakePredictIt{markets: []predictit.Market{{
		ID:     7021,
		Name:   "Nominee bracket",
		Status: "Open",
		Contracts: []predictit.Contract{
			{ID: 1, Name: "A", Status: "Open", BestBuyYesCost: p(0.55), DateEnd: closeStr},
			{ID: 2, Name: "B", Status: "Open", BestBuyYesCost: p(0.30), DateEnd: closeStr},
			// Longshot below the ignore floor: excluded from the sum.
			{ID: 3, Name: "C", Status: "Open", BestBuyYesCost: p(0.01), DateEnd: closeStr},
		},
	}}}
	env := newTestScanner(DefaultConfig(), Deps{PredictIt: fp})
	s := env.scanner
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }

	arbs, err := s.scanPredictIt(context.Background())
	if err != nil {
		t.Fatalf("scanPredictIt: %v", err)
	}
	if len(arbs) != 1 {
		t.Fatalf("arbs = %d, want 1", len(arbs))
	}
	if arbs[0].NumOutcomes != 2 {
		t.Errorf("NumOutcomes = %d, want 2 (longshot excluded)", arbs[0].NumOutcomes)
	}
	if !almostEqual(arbs[0].YesSum, 0.85) {
		t.Errorf("YesSum = %v, want 0.85", arbs[0].YesSum)
	}
	if arbs[0].Strategy != domain.BuyAllYes {
		t.Errorf("Strategy = %v, want BUY_ALL_YES", arbs[0].Strategy)
	}
}
