package arb

import (
	"math"
	"testing"

	"github.com/seerscan/seer/internal/domain"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestCheckSingleConditionLong(t *testing.T) {
	d := NewDetector("kalshi")
	q := domain.MarketQuote{
		YesBid: 0.44, YesAsk: 0.46,
		NoBid: 0.47, NoAsk: 0.49,
		Liquidity: 10000,
	}

	opp := d.CheckSingleCondition("mkt-1", "Test market", q)
	if opp == nil {
		t.Fatal("expected opportunity, got nil")
	}
	if opp.Type != domain.SingleConditionLong {
		t.Errorf("type = %s, want %s", opp.Type, domain.SingleConditionLong)
	}
	if !almostEqual(opp.ProfitPerDollar, 0.05) {
		t.Errorf("profit per dollar = %v, want 0.05", opp.ProfitPerDollar)
	}
	if !almostEqual(opp.MaxProfit, 500) {
		t.Errorf("max profit = %v, want 500", opp.MaxProfit)
	}
	if opp.RiskLevel != domain.RiskFree {
		t.Errorf("risk level = %s, want %s", opp.RiskLevel, domain.RiskFree)
	}
	if !almostEqual(opp.SpreadCost, 0.02) {
		t.Errorf("spread cost = %v, want 0.02", opp.SpreadCost)
	}
	if !almostEqual(opp.Confidence, 0.5) {
		t.Errorf("confidence = %v, want 0.5", opp.Confidence)
	}
	if opp.Single == nil || !almostEqual(opp.Single.BuyCost, 0.95) {
		t.Errorf("buy cost detail missing or wrong: %+v", opp.Single)
	}
}

func TestCheckSingleConditionShort(t *testing.T) {
	d := NewDetector("polymarket")
	q := domain.MarketQuote{
		YesBid: 0.55, YesAsk: 0.57,
		NoBid: 0.50, NoAsk: 0.52,
		Liquidity: 2000,
	}

	opp := d.CheckSingleCondition("mkt-2", "Overpriced market", q)
	if opp == nil {
		t.Fatal("expected opportunity, got nil")
	}
	if opp.Type != domain.SingleConditionShort {
		t.Errorf("type = %s, want %s", opp.Type, domain.SingleConditionShort)
	}
	if !almostEqual(opp.ProfitPerDollar, 0.05) {
		t.Errorf("profit per dollar = %v, want 0.05", opp.ProfitPerDollar)
	}
	if opp.Single == nil || !almostEqual(opp.Single.SellValue, 1.05) {
		t.Errorf("sell value detail missing or wrong: %+v", opp.Single)
	}
}

func TestCheckSingleConditionNoEdge(t *testing.T) {
	d := NewDetector("kalshi")
	cases := []struct {
		name string
		q    domain.MarketQuote
	}{
		{"fairly priced", domain.MarketQuote{YesBid: 0.49, YesAsk: 0.51, NoBid: 0.49, NoAsk: 0.51}},
		{"buy cost above one", domain.MarketQuote{YesBid: 0.50, YesAsk: 0.52, NoBid: 0.48, NoAsk: 0.50}},
		{"short inside threshold", domain.MarketQuote{YesBid: 0.51, YesAsk: 0.53, NoBid: 0.50, NoAsk: 0.52}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if opp := d.CheckSingleCondition("mkt", "m", tc.q); opp != nil {
				t.Errorf("expected nil, got %+v", opp)
			}
		})
	}
}

func TestCheckSingleConditionCrossedBook(t *testing.T) {
	d := NewDetector("kalshi")
	// Bids above asks: spread cost must floor at zero so the net profit
	// never exceeds the gross edge.
	q := domain.MarketQuote{
		YesBid: 0.50, YesAsk: 0.40,
		NoBid: 0.50, NoAsk: 0.40,
	}

	opp := d.CheckSingleCondition("mkt", "m", q)
	if opp == nil {
		t.Fatal("expected opportunity, got nil")
	}
	if opp.SpreadCost < 0 {
		t.Errorf("spread cost = %v, want >= 0", opp.SpreadCost)
	}
	if !almostEqual(opp.ProfitPerDollar, 0.20) {
		t.Errorf("profit per dollar = %v, want 0.20", opp.ProfitPerDollar)
	}
	if opp.NetProfit > opp.ProfitPerDollar+1e-9 {
		t.Errorf("net profit %v exceeds gross %v", opp.NetProfit, opp.ProfitPerDollar)
	}
}

func TestCheckMultiOutcomeCrossedBook(t *testing.T) {
	d := NewDetector("predictit")
	outcomes := []domain.Outcome{
		{Name: "A", YesBid: 0.50, YesAsk: 0.45, Liquidity: 1000},
		{Name: "B", YesBid: 0.50, YesAsk: 0.45, Liquidity: 1000},
	}

	opp := d.CheckMultiOutcome("evt", "e", outcomes)
	if opp == nil {
		t.Fatal("expected opportunity, got nil")
	}
	if opp.SpreadCost < 0 {
		t.Errorf("spread cost = %v, want >= 0", opp.SpreadCost)
	}
	if !almostEqual(opp.ProfitPerDollar, 0.10) {
		t.Errorf("profit per dollar = %v, want 0.10", opp.ProfitPerDollar)
	}
	if opp.NetProfit > opp.ProfitPerDollar+1e-9 {
		t.Errorf("net profit %v exceeds gross %v", opp.NetProfit, opp.ProfitPerDollar)
	}
}

func TestCheckSingleConditionAskFallback(t *testing.T) {
	d := NewDetector("kalshi")
	// Missing asks default to bids, so buy cost is 0.45 + 0.45 = 0.90.
	q := domain.MarketQuote{YesBid: 0.45, NoBid: 0.45}

	opp := d.CheckSingleCondition("mkt", "m", q)
	if opp == nil {
		t.Fatal("expected opportunity, got nil")
	}
	if !almostEqual(opp.ProfitPerDollar, 0.10) {
		t.Errorf("profit per dollar = %v, want 0.10", opp.ProfitPerDollar)
	}
	// Liquidity unknown, $100 notional fallback.
	if !almostEqual(opp.MaxProfit, 10) {
		t.Errorf("max profit = %v, want 10", opp.MaxProfit)
	}
	if !almostEqual(opp.Confidence, 1.0) {
		t.Errorf("confidence = %v, want 1.0", opp.Confidence)
	}
}

func TestCheckMultiOutcomeLong(t *testing.T) {
	d := NewDetector("kalshi")
	outcomes := []domain.Outcome{
		{Name: "A", YesBid: 0.50, YesAsk: 0.51, Liquidity: 5000},
		{Name: "B", YesBid: 0.42, YesAsk: 0.43, Liquidity: 3000},
		{Name: "C", YesBid: 0.02, YesAsk: 0.03, Liquidity: 8000},
	}

	opp := d.CheckMultiOutcome("evt-1", "Three-way event", outcomes)
	if opp == nil {
		t.Fatal("expected opportunity, got nil")
	}
	if opp.Type != domain.MultiOutcomeLong {
		t.Errorf("type = %s, want %s", opp.Type, domain.MultiOutcomeLong)
	}
	if !almostEqual(opp.ProfitPerDollar, 0.03) {
		t.Errorf("profit per dollar = %v, want 0.03", opp.ProfitPerDollar)
	}
	if opp.Multi == nil {
		t.Fatal("multi details missing")
	}
	if opp.Multi.NumOutcomes != 3 {
		t.Errorf("num outcomes = %d, want 3", opp.Multi.NumOutcomes)
	}
	// Thinnest book binds the basket.
	if !almostEqual(opp.Multi.MinLiquidity, 3000) {
		t.Errorf("min liquidity = %v, want 3000", opp.Multi.MinLiquidity)
	}
	if !almostEqual(opp.MaxProfit, 90) {
		t.Errorf("max profit = %v, want 90", opp.MaxProfit)
	}
}

func TestCheckMultiOutcomeShort(t *testing.T) {
	d := NewDetector("kalshi")
	outcomes := []domain.Outcome{
		{Name: "A", YesBid: 0.55, YesAsk: 0.56, Liquidity: 1000},
		{Name: "B", YesBid: 0.50, YesAsk: 0.51, Liquidity: 1000},
	}

	opp := d.CheckMultiOutcome("evt-2", "Overpriced pair", outcomes)
	if opp == nil {
		t.Fatal("expected opportunity, got nil")
	}
	if opp.Type != domain.MultiOutcomeShort {
		t.Errorf("type = %s, want %s", opp.Type, domain.MultiOutcomeShort)
	}
	if !almostEqual(opp.ProfitPerDollar, 0.05) {
		t.Errorf("profit per dollar = %v, want 0.05", opp.ProfitPerDollar)
	}
}

func TestCheckMultiOutcomeFiltersNegligible(t *testing.T) {
	d := NewDetector("kalshi")
	// Only one outcome above the probability floor, so no check runs even
	// though the sums would otherwise trigger.
	outcomes := []domain.Outcome{
		{Name: "A", YesBid: 0.90, YesAsk: 0.91},
		{Name: "B", YesBid: 0.01, YesAsk: 0.02},
	}
	if opp := d.CheckMultiOutcome("evt", "e", outcomes); opp != nil {
		t.Errorf("expected nil, got %+v", opp)
	}
}

func TestCheckMultiOutcomeTooFew(t *testing.T) {
	d := NewDetector("kalshi")
	if opp := d.CheckMultiOutcome("evt", "e", []domain.Outcome{{Name: "A", YesBid: 0.5}}); opp != nil {
		t.Errorf("expected nil for single outcome, got %+v", opp)
	}
}

func TestNewEVOpportunityRiskTiers(t *testing.T) {
	d := NewDetector("kalshi")
	cases := []struct {
		name    string
		ev      float64
		quality float64
		want    domain.RiskLevel
	}{
		{"high ev high quality", 0.06, 8.5, domain.LowRisk},
		{"moderate ev", 0.03, 6.5, domain.MediumRisk},
		{"thin edge", 0.01, 9.0, domain.HighRisk},
		{"poor quality", 0.06, 5.0, domain.HighRisk},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			opp := d.NewEVOpportunity("mkt", "m", tc.ev, "YES", 0.30, 0.40, tc.quality, 1000)
			if opp.RiskLevel != tc.want {
				t.Errorf("risk level = %s, want %s", opp.RiskLevel, tc.want)
			}
			if opp.SpreadCost != 0 {
				t.Errorf("spread cost = %v, want 0", opp.SpreadCost)
			}
		})
	}
}

func TestNewEVOpportunityConfidence(t *testing.T) {
	d := NewDetector("kalshi")
	opp := d.NewEVOpportunity("mkt", "m", 0.05, "NO", 0.80, 0.70, 7.0, 500)
	if !almostEqual(opp.Confidence, 0.7) {
		t.Errorf("confidence = %v, want 0.7", opp.Confidence)
	}
	if opp.EV == nil || opp.EV.Side != "NO" {
		t.Errorf("ev details missing or wrong: %+v", opp.EV)
	}
}
