package arb

import (
	"testing"

	"github.com/seerscan/seer/internal/domain"
)

func TestKellyFraction(t *testing.T) {
	cases := []struct {
		name     string
		p        float64
		odds     float64
		bankroll float64
		fraction float64
		want     float64
	}{
		// Full Kelly at p=0.6, b=1 is 0.20; quarter Kelly on $1000 is $50.
		{"quarter kelly default", 0.6, 2.0, 1000, 0, 50},
		{"explicit half kelly", 0.6, 2.0, 1000, 0.5, 100},
		{"no edge", 0.5, 2.0, 1000, 0, 0},
		{"negative edge", 0.4, 2.0, 1000, 0, 0},
		{"certain win rejected", 1.0, 2.0, 1000, 0, 0},
		{"certain loss rejected", 0, 2.0, 1000, 0, 0},
		{"degenerate odds", 0.6, 1.0, 1000, 0, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := KellyFraction(tc.p, tc.odds, tc.bankroll, tc.fraction)
			if !almostEqual(got, tc.want) {
				t.Errorf("KellyFraction(%v, %v, %v, %v) = %v, want %v",
					tc.p, tc.odds, tc.bankroll, tc.fraction, got, tc.want)
			}
		})
	}
}

func TestArbPositionSizeRiskFree(t *testing.T) {
	d := NewDetector("kalshi")
	q := domain.MarketQuote{
		YesBid: 0.44, YesAsk: 0.46,
		NoBid: 0.47, NoAsk: 0.49,
		Liquidity: 10000,
	}
	opp := d.CheckSingleCondition("mkt-1", "m", q)
	if opp == nil {
		t.Fatal("expected opportunity")
	}

	plan := ArbPositionSize(*opp, 5000)
	// 20% of bankroll is 1000, liquidity limit is 500/0.05 = 10000, so the
	// bankroll cap binds.
	if !almostEqual(plan.Total, 1000) {
		t.Errorf("total = %v, want 1000", plan.Total)
	}
	if plan.Method != "liquidity_capped" {
		t.Errorf("method = %s, want liquidity_capped", plan.Method)
	}
	if !almostEqual(plan.ExpectedProfit, 50) {
		t.Errorf("expected profit = %v, want 50", plan.ExpectedProfit)
	}
	if len(plan.Legs) != 2 {
		t.Fatalf("legs = %d, want 2", len(plan.Legs))
	}
	// Allocation splits proportional to ask prices: 0.46/0.95 and 0.49/0.95.
	if !almostEqual(plan.Legs[0].Amount, 1000*0.46/0.95) {
		t.Errorf("yes leg = %v, want %v", plan.Legs[0].Amount, 1000*0.46/0.95)
	}
	if !almostEqual(plan.Legs[1].Amount, 1000*0.49/0.95) {
		t.Errorf("no leg = %v, want %v", plan.Legs[1].Amount, 1000*0.49/0.95)
	}
	if !almostEqual(plan.Legs[0].Amount+plan.Legs[1].Amount, 1000) {
		t.Errorf("legs do not sum to total: %v", plan.Legs)
	}
}

func TestArbPositionSizeLiquidityBinds(t *testing.T) {
	d := NewDetector("kalshi")
	q := domain.MarketQuote{
		YesBid: 0.44, YesAsk: 0.46,
		NoBid: 0.47, NoAsk: 0.49,
		Liquidity: 100,
	}
	opp := d.CheckSingleCondition("mkt-1", "m", q)
	if opp == nil {
		t.Fatal("expected opportunity")
	}

	plan := ArbPositionSize(*opp, 5000)
	// Max profit is 0.05*100 = 5, so the books absorb at most 5/0.05 = 100.
	if !almostEqual(plan.Total, 100) {
		t.Errorf("total = %v, want 100", plan.Total)
	}
}

func TestArbPositionSizeMultiLegs(t *testing.T) {
	d := NewDetector("kalshi")
	outcomes := []domain.Outcome{
		{Name: "A", YesBid: 0.50, YesAsk: 0.51, Liquidity: 5000},
		{Name: "B", YesBid: 0.42, YesAsk: 0.43, Liquidity: 5000},
		{Name: "C", YesBid: 0.02, YesAsk: 0.03, Liquidity: 5000},
	}
	opp := d.CheckMultiOutcome("evt-1", "e", outcomes)
	if opp == nil {
		t.Fatal("expected opportunity")
	}

	plan := ArbPositionSize(*opp, 5000)
	if len(plan.Legs) != 3 {
		t.Fatalf("legs = %d, want 3", len(plan.Legs))
	}
	var sum float64
	for _, leg := range plan.Legs {
		sum += leg.Amount
	}
	if !almostEqual(sum, plan.Total) {
		t.Errorf("legs sum %v != total %v", sum, plan.Total)
	}
}

func TestArbPositionSizeEV(t *testing.T) {
	d := NewDetector("kalshi")
	opp := d.NewEVOpportunity("mkt", "m", 0.05, "YES", 0.30, 0.40, 7.0, 1000)

	plan := ArbPositionSize(opp, 5000)
	if plan.Method != "fractional_kelly" {
		t.Errorf("method = %s, want fractional_kelly", plan.Method)
	}
	want := KellyFraction(opp.Confidence, 1+opp.ProfitPerDollar, 5000, 0)
	if !almostEqual(plan.Total, want) {
		t.Errorf("total = %v, want %v", plan.Total, want)
	}
	if plan.Total > 5000*0.20 {
		t.Errorf("total %v exceeds bankroll cap", plan.Total)
	}
}
