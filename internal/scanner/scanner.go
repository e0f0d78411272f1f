// Package scanner runs the periodic scan cycle: pull quotes from every
// configured platform, detect arbitrage and expected-value edges, open and
// resolve paper trades, and push alerts. It is the only component that
// mutates the simulated bankroll.
package scanner

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/seerscan/seer/internal/arb"
	"github.com/seerscan/seer/internal/domain"
	"github.com/seerscan/seer/internal/notify"
	"github.com/seerscan/seer/internal/platform/kalshi"
	"github.com/seerscan/seer/internal/platform/polymarket"
	"github.com/seerscan/seer/internal/platform/predictit"
	"github.com/seerscan/seer/internal/risk"
)

// KalshiAPI is the subset of the Kalshi client the scanner uses.
type KalshiAPI interface {
	GetAllMarkets(ctx context.Context, status string, maxPages int) ([]kalshi.Market, error)
	GetEvents(ctx context.Context, status string, limit int, cursor string) ([]kalshi.Event, string, error)
	GetMarketsForEvent(ctx context.Context, eventTicker string) ([]kalshi.Market, error)
	GetMarketResult(ctx context.Context, ticker string) (string, error)
}

// PolymarketAPI is the subset of the Gamma client the scanner uses.
type PolymarketAPI interface {
	GetActiveMarkets(ctx context.Context, limit, offset int) ([]polymarket.APIMarket, error)
	GetCryptoMarkets(ctx context.Context, limit int) ([]polymarket.APIMarket, error)
	GetMarketResolution(ctx context.Context, marketID string) (polymarket.MarketResolution, error)
}

// PredictItAPI is the subset of the PredictIt client the scanner uses.
type PredictItAPI interface {
	GetAllMarkets(ctx context.Context) ([]predictit.Market, error)
	GetMultiOutcomeMarkets(ctx context.Context) ([]predictit.Market, error)
}

// Config holds the scanner's tunable thresholds. All fractions are per
// dollar; durations govern the three loops (main scan, crypto scan, metrics).
type Config struct {
	ScanInterval    time.Duration
	CryptoInterval  time.Duration
	MetricsInterval time.Duration

	InitialBankroll float64

	// EV path thresholds.
	MinQualityScore float64
	MinEV           float64
	MaxCorrelation  float64

	// Event arb thresholds.
	ArbMinProfit    float64 // minimum |yes_sum - 1| for multi-outcome events
	CryptoMinProfit float64 // looser threshold for 5-minute crypto brackets
	ArbIgnoreBelow  float64 // drop PredictIt contracts priced under this

	// Alerting.
	AlertMinPer100       float64
	CryptoAlertMinPer100 float64
	AlertCooldown        time.Duration
	ArbCooldown          time.Duration

	MaxDaysToResolution int
	MaxTradeUSD         float64
	MaxConsecutiveErrs  int

	// EV candidates must trade near one of the extremes.
	PriceBandLow  float64
	PriceBandHigh float64
}

// DefaultConfig returns the standard scanner thresholds.
func DefaultConfig() Config {
	return Config{
		ScanInterval:         60 * time.Second,
		CryptoInterval:       5 * time.Minute,
		MetricsInterval:      time.Hour,
		InitialBankroll:      5000,
		MinQualityScore:      6.0,
		MinEV:                0.008,
		MaxCorrelation:       0.4,
		ArbMinProfit:         0.02,
		CryptoMinProfit:      0.015,
		ArbIgnoreBelow:       0.02,
		AlertMinPer100:       3.0,
		CryptoAlertMinPer100: 2.0,
		AlertCooldown:        15 * time.Minute,
		ArbCooldown:          time.Hour,
		MaxDaysToResolution:  30,
		MaxTradeUSD:          500,
		MaxConsecutiveErrs:   5,
		PriceBandLow:         0.15,
		PriceBandHigh:        0.85,
	}
}

// Scanner coordinates the platform scans, risk checks, paper trading, and
// alerting. Platform clients may be nil; their scans are skipped.
type Scanner struct {
	cfg Config

	kalshi    KalshiAPI
	poly      PolymarketAPI
	predictit PredictItAPI

	opps       domain.OpportunityStore
	trades     domain.PaperTradeStore
	metrics    domain.MetricsStore
	killEvents domain.KillSwitchStore
	cooldowns  domain.CooldownStore
	quotes     domain.QuoteCache

	risk     *risk.Manager
	notifier *notify.Notifier
	logger   *slog.Logger

	// injectable for tests
	now func() time.Time

	mu          sync.Mutex
	bankroll    float64
	consecErrs  int
	scansDone   int
	lastScanAt  time.Time
	lastScanErr string
}

// Deps bundles the scanner's collaborators.
type Deps struct {
	Kalshi     KalshiAPI
	Polymarket PolymarketAPI
	PredictIt  PredictItAPI

	Opportunities domain.OpportunityStore
	Trades        domain.PaperTradeStore
	Metrics       domain.MetricsStore
	KillEvents    domain.KillSwitchStore
	Cooldowns     domain.CooldownStore
	Quotes        domain.QuoteCache

	Risk     *risk.Manager
	Notifier *notify.Notifier
	Logger   *slog.Logger
}

// New creates a Scanner. The bankroll starts at cfg.InitialBankroll.
func New(cfg Config, d Deps) *Scanner {
	return &Scanner{
		cfg:        cfg,
		kalshi:     d.Kalshi,
		poly:       d.Polymarket,
		predictit:  d.PredictIt,
		opps:       d.Opportunities,
		trades:     d.Trades,
		metrics:    d.Metrics,
		killEvents: d.KillEvents,
		cooldowns:  d.Cooldowns,
		quotes:     d.Quotes,
		risk:       d.Risk,
		notifier:   d.Notifier,
		logger:     d.Logger.With("component", "scanner"),
		now:        time.Now,
		bankroll:   cfg.InitialBankroll,
	}
}

// Bankroll returns the current simulated bankroll.
func (s *Scanner) Bankroll() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.bankroll
}

func (s *Scanner) adjustBankroll(delta float64) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bankroll += delta
	return s.bankroll
}

// Status is a point-in-time view of the scanner for the status endpoint.
type Status struct {
	Bankroll          float64   `json:"bankroll"`
	ScansCompleted    int       `json:"scans_completed"`
	ConsecutiveErrors int       `json:"consecutive_errors"`
	LastScanAt        time.Time `json:"last_scan_at"`
	LastScanError     string    `json:"last_scan_error,omitempty"`
	KillSwitchActive  bool      `json:"kill_switch_active"`
}

// Status reports the scanner's current state.
func (s *Scanner) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Status{
		Bankroll:          s.bankroll,
		ScansCompleted:    s.scansDone,
		ConsecutiveErrors: s.consecErrs,
		LastScanAt:        s.lastScanAt,
		LastScanError:     s.lastScanErr,
		KillSwitchActive:  s.risk.KillSwitchActive(),
	}
}

// Run starts the scan loops and blocks until the context is cancelled or a
// loop fails. The main loop scans all platforms every ScanInterval; the
// crypto loop re-scans Polymarket's short-lived crypto brackets on its own
// faster cadence; the metrics loop snapshots hourly and sends the heartbeat.
func (s *Scanner) Run(ctx context.Context) error {
	s.logger.Info("scanner starting",
		slog.Duration("scan_interval", s.cfg.ScanInterval),
		slog.Duration("crypto_interval", s.cfg.CryptoInterval),
		slog.Float64("bankroll", s.Bankroll()),
	)

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		err := s.runMainLoop(ctx)
		if ctx.Err() != nil {
			return nil // clean shutdown
		}
		return fmt.Errorf("scanner: main loop: %w", err)
	})

	if s.poly != nil {
		g.Go(func() error {
			err := s.runCryptoLoop(ctx)
			if ctx.Err() != nil {
				return nil // clean shutdown
			}
			return fmt.Errorf("scanner: crypto loop: %w", err)
		})
	}

	g.Go(func() error {
		err := s.runMetricsLoop(ctx)
		if ctx.Err() != nil {
			return nil // clean shutdown
		}
		return fmt.Errorf("scanner: metrics loop: %w", err)
	})

	err := g.Wait()
	if err != nil {
		s.logger.Error("scanner stopped with error", slog.String("error", err.Error()))
		return err
	}
	s.logger.Info("scanner stopped cleanly")
	return nil
}

func (s *Scanner) runMainLoop(ctx context.Context) error {
	// Run immediately on start.
	s.ScanOnce(ctx)

	ticker := time.NewTicker(s.cfg.ScanInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.ScanOnce(ctx)
		}
	}
}

func (s *Scanner) runCryptoLoop(ctx context.Context) error {
	ticker := time.NewTicker(s.cfg.CryptoInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if s.risk.KillSwitchActive() {
				continue
			}
			arbs, err := s.scanPolymarketCrypto(ctx)
			if err != nil {
				s.logger.Error("crypto scan failed", slog.String("error", err.Error()))
				continue
			}
			s.handleEventArbs(ctx, arbs)
		}
	}
}

func (s *Scanner) runMetricsLoop(ctx context.Context) error {
	ticker := time.NewTicker(s.cfg.MetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := s.snapshotMetrics(ctx); err != nil {
				s.logger.Error("metrics snapshot failed", slog.String("error", err.Error()))
			}
		}
	}
}

// ScanOnce performs a single full scan cycle: kill-switch checks, platform
// fan-out, event-arb execution, and paper-trade resolution. Scan errors are
// counted; too many in a row trip the kill switch.
func (s *Scanner) ScanOnce(ctx context.Context) {
	start := s.now()
	bankroll := s.Bankroll()

	// While latched the check short-circuits true every cycle; record and
	// alert only when the switch actually trips.
	if !s.risk.KillSwitchActive() {
		if tripped, reason := s.risk.CheckKillSwitch(bankroll); tripped {
			s.recordKillSwitch(ctx, reason, bankroll)
		}
	}

	// Open trades still resolve while the kill switch is active; only new
	// exposure stops.
	if !s.risk.KillSwitchActive() {
		if err := s.scanPlatforms(ctx); err != nil {
			s.noteScanError(ctx, err)
		} else {
			s.noteScanSuccess()
		}
	}

	if err := s.resolvePaperTrades(ctx); err != nil {
		s.logger.Error("trade resolution failed", slog.String("error", err.Error()))
	}

	s.mu.Lock()
	s.scansDone++
	s.lastScanAt = s.now()
	s.mu.Unlock()

	s.logger.Info("scan cycle complete",
		slog.Duration("elapsed", s.now().Sub(start)),
		slog.Float64("bankroll", s.Bankroll()),
	)
}

// scanPlatforms fans the per-platform scans out concurrently and merges the
// event arbs they find.
func (s *Scanner) scanPlatforms(ctx context.Context) error {
	var (
		mu   sync.Mutex
		arbs []domain.EventArb
	)
	collect := func(found []domain.EventArb) {
		mu.Lock()
		arbs = append(arbs, found...)
		mu.Unlock()
	}

	g, ctx := errgroup.WithContext(ctx)

	if s.kalshi != nil {
		g.Go(func() error {
			found, err := s.scanKalshi(ctx)
			if err != nil {
				return fmt.Errorf("kalshi: %w", err)
			}
			collect(found)
			return nil
		})
	}
	if s.poly != nil {
		g.Go(func() error {
			found, err := s.scanPolymarket(ctx)
			if err != nil {
				return fmt.Errorf("polymarket: %w", err)
			}
			collect(found)
			return nil
		})
	}
	if s.predictit != nil {
		g.Go(func() error {
			found, err := s.scanPredictIt(ctx)
			if err != nil {
				return fmt.Errorf("predictit: %w", err)
			}
			collect(found)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}

	s.handleEventArbs(ctx, arbs)
	return nil
}

// noteScanError counts consecutive failures and trips the kill switch when
// the platform APIs look broken rather than transiently flaky.
func (s *Scanner) noteScanError(ctx context.Context, err error) {
	s.mu.Lock()
	s.consecErrs++
	s.lastScanErr = err.Error()
	n := s.consecErrs
	s.mu.Unlock()

	s.logger.Error("platform scan failed",
		slog.String("error", err.Error()),
		slog.Int("consecutive", n),
	)

	if n >= s.cfg.MaxConsecutiveErrs {
		s.risk.ActivateKillSwitch("Too many consecutive errors")
		s.recordKillSwitch(ctx, "Too many consecutive errors", s.Bankroll())
	}
}

func (s *Scanner) noteScanSuccess() {
	s.mu.Lock()
	s.consecErrs = 0
	s.lastScanErr = ""
	s.mu.Unlock()
}

func (s *Scanner) recordKillSwitch(ctx context.Context, reason string, bankroll float64) {
	ev := domain.KillSwitchEvent{
		Timestamp: s.now().UTC(),
		Reason:    reason,
		Bankroll:  bankroll,
	}
	if s.killEvents != nil {
		if err := s.killEvents.Insert(ctx, ev); err != nil {
			s.logger.Error("record kill switch event", slog.String("error", err.Error()))
		}
	}
	if s.notifier != nil {
		title, msg := notify.FormatKillSwitch(ev)
		if err := s.notifier.Notify(ctx, notify.EventKillSwitch, title, msg); err != nil {
			s.logger.Error("kill switch alert", slog.String("error", err.Error()))
		}
	}
}

// snapshotMetrics persists an hourly snapshot and sends the heartbeat.
func (s *Scanner) snapshotMetrics(ctx context.Context) error {
	bankroll := s.Bankroll()

	stats := domain.PerformanceStats{}
	if s.trades != nil {
		var err error
		stats, err = s.trades.PerformanceStats(ctx)
		if err != nil {
			return fmt.Errorf("scanner: performance stats: %w", err)
		}
	}

	open, err := s.openPositions(ctx)
	if err != nil {
		return err
	}
	rm := s.risk.Metrics(bankroll, open)

	snap := domain.MetricsSnapshot{
		Timestamp:     s.now().UTC(),
		Bankroll:      bankroll,
		DailyPnL:      rm.DailyPnL,
		TotalPnL:      rm.TotalPnL,
		OpenPositions: len(open),
		WinRate:       stats.WinRate,
		TotalTrades:   stats.TotalTrades,
	}
	if s.metrics != nil {
		if err := s.metrics.Insert(ctx, snap); err != nil {
			return fmt.Errorf("scanner: insert metrics: %w", err)
		}
	}

	if s.notifier != nil {
		s.mu.Lock()
		scans := s.scansDone
		s.mu.Unlock()
		title, msg := notify.FormatHeartbeat(snap, scans)
		if err := s.notifier.Notify(ctx, notify.EventHeartbeat, title, msg); err != nil {
			s.logger.Error("heartbeat alert", slog.String("error", err.Error()))
		}
	}
	return nil
}

func (s *Scanner) openPositions(ctx context.Context) ([]domain.Position, error) {
	if s.trades == nil {
		return nil, nil
	}
	open, err := s.trades.ListOpen(ctx)
	if err != nil {
		return nil, fmt.Errorf("scanner: list open positions: %w", err)
	}
	return open, nil
}

// storeOpportunity persists a detected opportunity and alerts on it when the
// edge survives the spread. Alerts are deduplicated per market.
func (s *Scanner) storeOpportunity(ctx context.Context, opp domain.Opportunity) {
	if s.opps != nil {
		if err := s.opps.Insert(ctx, opp); err != nil {
			s.logger.Error("insert opportunity",
				slog.String("market_id", opp.MarketID),
				slog.String("error", err.Error()),
			)
		}
	}

	if !opp.ProfitableAfterSpread() {
		return
	}

	if opp.IsRiskFree() {
		plan := arb.ArbPositionSize(opp, s.Bankroll())
		s.logger.Info("risk-free opportunity",
			slog.String("market_id", opp.MarketID),
			slog.String("type", string(opp.Type)),
			slog.Float64("net_profit", opp.NetProfit),
			slog.Float64("plan_total", plan.Total),
			slog.Float64("expected_profit", plan.ExpectedProfit),
			slog.String("method", plan.Method),
		)
	}

	if s.notifier == nil {
		return
	}

	event := notify.EventArbitrage
	if opp.Type == domain.EVEdge {
		event = notify.EventEVSignal
	}

	key := "alert:opp:" + opp.MarketID
	if s.onCooldown(ctx, key) {
		return
	}
	title, msg := notify.FormatOpportunity(opp)
	if err := s.notifier.Notify(ctx, event, title, msg); err != nil {
		s.logger.Error("opportunity alert", slog.String("error", err.Error()))
		return
	}
	s.setCooldown(ctx, key, s.cfg.AlertCooldown)
}

func (s *Scanner) onCooldown(ctx context.Context, key string) bool {
	if s.cooldowns == nil {
		return false
	}
	active, err := s.cooldowns.Active(ctx, key)
	if err != nil {
		s.logger.Error("cooldown check", slog.String("key", key), slog.String("error", err.Error()))
		return false
	}
	return active
}

func (s *Scanner) setCooldown(ctx context.Context, key string, ttl time.Duration) {
	if s.cooldowns == nil {
		return
	}
	if err := s.cooldowns.Set(ctx, key, ttl); err != nil {
		s.logger.Error("cooldown set", slog.String("key", key), slog.String("error", err.Error()))
	}
}

// sizeArb converts an event arb's profit rate into a position size fraction.
// Bigger edges scale the base 2% stake linearly, clamped to [0.5%, 5%].
func sizeArb(profitRate float64) float64 {
	edgeMult := profitRate / 0.02
	if edgeMult < 1 {
		edgeMult = 1
	}
	proposed := 0.02 * edgeMult
	if proposed < 0.005 {
		proposed = 0.005
	}
	if proposed > 0.05 {
		proposed = 0.05
	}
	return proposed
}

// evSizeFraction sizes a speculative EV trade: base 2% scaled by a quality
// tier and damped by portfolio correlation, capped at 5%.
func (s *Scanner) evSizeFraction(score, correlation float64) float64 {
	conf := 0.5
	switch {
	case score >= 9:
		conf = 1.0
	case score >= 8:
		conf = 0.7
	}

	damp := 1 - correlation/s.cfg.MaxCorrelation
	if damp < 0.3 {
		damp = 0.3
	}

	frac := 0.02 * conf * damp
	if frac > 0.05 {
		frac = 0.05
	}
	return frac
}
