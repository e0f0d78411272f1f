package domain

import (
	"time"

	"github.com/google/uuid"
)

// ArbType classifies a detected opportunity.
type ArbType string

const (
	// SingleConditionLong: YES ask + NO ask < $1, buy both sides.
	SingleConditionLong ArbType = "single_long"
	// SingleConditionShort: YES bid + NO bid > $1, sell both sides.
	SingleConditionShort ArbType = "single_short"
	// MultiOutcomeLong: sum of YES asks < $1, buy YES on every outcome.
	MultiOutcomeLong ArbType = "multi_long"
	// MultiOutcomeShort: sum of YES bids > $1, sell YES on every outcome.
	MultiOutcomeShort ArbType = "multi_short"
	// CrossMarket is reserved for dependency arbitrage between related
	// markets. The detector never emits it.
	CrossMarket ArbType = "cross_market"
	// EVEdge is a speculative expected-value opportunity, not an arbitrage.
	EVEdge ArbType = "ev_edge"
)

// RiskLevel classifies how speculative an opportunity is.
type RiskLevel string

const (
	RiskFree   RiskLevel = "risk_free"
	LowRisk    RiskLevel = "low_risk"
	MediumRisk RiskLevel = "medium_risk"
	HighRisk   RiskLevel = "high_risk"
)

// SingleDetails carries the prices behind a single-condition opportunity.
type SingleDetails struct {
	YesBid    float64 `json:"yes_bid"`
	YesAsk    float64 `json:"yes_ask"`
	NoBid     float64 `json:"no_bid"`
	NoAsk     float64 `json:"no_ask"`
	BuyCost   float64 `json:"buy_cost,omitempty"`
	SellValue float64 `json:"sell_value,omitempty"`
	Action    string  `json:"action"`
	Liquidity float64 `json:"liquidity"`
}

// MultiDetails carries the outcome set behind a multi-outcome opportunity.
type MultiDetails struct {
	Outcomes     []Outcome `json:"outcomes"`
	AskSum       float64   `json:"yes_ask_sum"`
	BidSum       float64   `json:"yes_bid_sum"`
	NumOutcomes  int       `json:"num_outcomes"`
	Action       string    `json:"action"`
	MinLiquidity float64   `json:"min_liquidity"`
}

// EVDetails carries the model inputs behind an EV opportunity.
type EVDetails struct {
	Side         string  `json:"side"`
	MarketPrice  float64 `json:"market_price"`
	TrueProb     float64 `json:"true_prob"`
	QualityScore float64 `json:"quality_score"`
	Action       string  `json:"action"`
	Liquidity    float64 `json:"liquidity"`
}

// Opportunity is a detected arbitrage or EV edge. ProfitPerDollar is the
// gross edge per $1 invested; NetProfit subtracts the spread cost and is
// computed at construction.
type Opportunity struct {
	ID              string
	Type            ArbType
	MarketID        string
	Title           string
	Platform        string
	ProfitPerDollar float64
	SpreadCost      float64
	NetProfit       float64
	MaxProfit       float64
	Confidence      float64
	RiskLevel       RiskLevel

	// Exactly one of these is set, matching Type.
	Single *SingleDetails
	Multi  *MultiDetails
	EV     *EVDetails

	CreatedAt time.Time
}

// NewOpportunity stamps an ID and timestamp and derives NetProfit from the
// gross edge and spread cost.
func NewOpportunity(o Opportunity) Opportunity {
	o.ID = uuid.NewString()
	o.CreatedAt = time.Now().UTC()
	o.NetProfit = o.ProfitPerDollar - o.SpreadCost
	if o.NetProfit < 0 {
		o.NetProfit = 0
	}
	return o
}

// IsRiskFree reports whether the opportunity is a guaranteed-profit
// rebalancing arbitrage.
func (o Opportunity) IsRiskFree() bool {
	return o.RiskLevel == RiskFree
}

// ProfitableAfterSpread reports whether the edge survives the bid-ask spread
// with more than 0.5% remaining.
func (o Opportunity) ProfitableAfterSpread() bool {
	return o.NetProfit > 0.005
}
