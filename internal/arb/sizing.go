package arb

import (
	"github.com/seerscan/seer/internal/domain"
)

// Leg is one order in an arbitrage execution plan.
type Leg struct {
	Market string  `json:"market"`
	Side   string  `json:"side"`
	Price  float64 `json:"price"`
	Amount float64 `json:"amount"`
}

// PositionPlan is a sized execution plan for an opportunity.
type PositionPlan struct {
	Total          float64 `json:"total"`
	Method         string  `json:"method"`
	ExpectedProfit float64 `json:"expected_profit"`
	Legs           []Leg   `json:"legs"`
}

// KellyFraction computes the fractional-Kelly bet size. p is the win
// probability, odds the decimal payout per dollar staked, fraction the
// Kelly multiplier (0.25 when zero). Returns 0 when the edge is negative or
// the inputs are degenerate.
func KellyFraction(p, odds, bankroll, fraction float64) float64 {
	if fraction <= 0 {
		fraction = 0.25
	}
	if p <= 0 || p >= 1 {
		return 0
	}
	b := odds - 1
	if b <= 0 {
		return 0
	}
	q := 1 - p
	kelly := (b*p - q) / b
	if kelly <= 0 {
		return 0
	}
	return kelly * fraction * bankroll
}

// ArbPositionSize sizes an opportunity against the bankroll. Risk-free
// arbitrage gets a flat 20% cap bounded by book liquidity; speculative EV
// edges are sized with fractional Kelly using the confidence as win
// probability. The returned plan includes per-leg allocations for the long
// strategies.
func ArbPositionSize(opp domain.Opportunity, bankroll float64) PositionPlan {
	const maxPositionPct = 0.20

	if opp.Type == domain.EVEdge {
		total := KellyFraction(opp.Confidence, 1+opp.ProfitPerDollar, bankroll, 0)
		if cap := bankroll * maxPositionPct; total > cap {
			total = cap
		}
		return PositionPlan{
			Total:          total,
			Method:         "fractional_kelly",
			ExpectedProfit: total * opp.ProfitPerDollar,
		}
	}

	total := bankroll * maxPositionPct
	if opp.ProfitPerDollar > 0 {
		// MaxProfit already reflects book depth, so invert it back to the
		// largest stake the books can absorb.
		if limit := opp.MaxProfit / opp.ProfitPerDollar; limit < total {
			total = limit
		}
	}

	plan := PositionPlan{
		Total:          total,
		Method:         "liquidity_capped",
		ExpectedProfit: total * opp.ProfitPerDollar,
	}

	switch {
	case opp.Type == domain.SingleConditionLong && opp.Single != nil:
		cost := opp.Single.YesAsk + opp.Single.NoAsk
		if cost > 0 {
			plan.Legs = []Leg{
				{Market: opp.MarketID, Side: "YES", Price: opp.Single.YesAsk, Amount: total * opp.Single.YesAsk / cost},
				{Market: opp.MarketID, Side: "NO", Price: opp.Single.NoAsk, Amount: total * opp.Single.NoAsk / cost},
			}
		}
	case opp.Type == domain.MultiOutcomeLong && opp.Multi != nil:
		if opp.Multi.AskSum > 0 {
			legs := make([]Leg, 0, len(opp.Multi.Outcomes))
			for _, o := range opp.Multi.Outcomes {
				ask := o.YesAsk
				if ask == 0 {
					ask = o.YesBid
				}
				legs = append(legs, Leg{
					Market: o.Name,
					Side:   "YES",
					Price:  ask,
					Amount: total * ask / opp.Multi.AskSum,
				})
			}
			plan.Legs = legs
		}
	}

	return plan
}
