package domain

import "time"

// MarketStatus represents the lifecycle state of a market.
type MarketStatus string

const (
	MarketStatusOpen    MarketStatus = "open"
	MarketStatusClosed  MarketStatus = "closed"
	MarketStatusSettled MarketStatus = "settled"
)

// MarketQuote is a platform-agnostic snapshot of a binary market's prices at
// scan time. All prices are normalized to the [0,1] range; platforms that
// quote in cents are divided by 100 during conversion. A quote is immutable
// once built.
type MarketQuote struct {
	ID           string
	Title        string
	Platform     string
	Category     string
	EventID      string
	YesBid       float64
	YesAsk       float64
	NoBid        float64
	NoAsk        float64
	Liquidity    float64
	Volume24h    float64
	Volume7d     float64
	TradersCount int
	CloseTime    time.Time
	Status       MarketStatus
}

// Outcome is one leg of a multi-outcome event (e.g. one candidate in an
// election bracket).
type Outcome struct {
	Name      string
	YesBid    float64
	YesAsk    float64
	Liquidity float64
}

// NormalizePrice converts a raw platform price to the [0,1] range. Prices
// above 1 are treated as cents. Returns (0, false) when the price cannot be
// normalized into range.
func NormalizePrice(price float64) (float64, bool) {
	if price > 1 {
		price /= 100
	}
	if price < 0 || price > 1 {
		return 0, false
	}
	return price, true
}

// YesPrice derives a usable YES probability from the quote. It prefers the
// bid/ask midpoint and falls back to whichever side is present.
func (q MarketQuote) YesPrice() float64 {
	if q.YesBid > 0 && q.YesAsk > 0 && q.YesAsk >= q.YesBid {
		return (q.YesBid + q.YesAsk) / 2
	}
	if q.YesBid > 0 {
		return q.YesBid
	}
	return q.YesAsk
}

// Spread is the YES bid-ask spread, floored at zero.
func (q MarketQuote) Spread() float64 {
	s := q.YesAsk - q.YesBid
	if s < 0 {
		return 0
	}
	return s
}

// PriceSum is the cost of buying both sides at the ask.
func (q MarketQuote) PriceSum() float64 {
	return q.YesAsk + q.NoAsk
}
