package domain

import "time"

// EventStrategy names the basket direction for a multi-outcome event arb.
type EventStrategy string

const (
	BuyAllYes EventStrategy = "BUY_ALL_YES"
	BuyAllNo  EventStrategy = "BUY_ALL_NO"
)

// EventArb is a multi-outcome mispricing found by the per-platform event
// scans: the YES mid prices across an event's outcomes sum away from $1.
// Deviation is (yes_sum - 1); ProfitPer100 the absolute edge per $100.
type EventArb struct {
	Platform     string
	Kind         string // "multi_outcome" or "crypto_5min"
	EventKey     string
	Title        string
	NumOutcomes  int
	YesSum       float64
	Deviation    float64
	Strategy     EventStrategy
	ProfitPer100 float64
	CloseTime    time.Time
}

// ProfitRate is the basket edge as a fraction, floored at zero.
func (e EventArb) ProfitRate() float64 {
	r := e.ProfitPer100 / 100
	if r < 0 {
		return 0
	}
	return r
}
