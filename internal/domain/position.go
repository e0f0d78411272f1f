package domain

import (
	"fmt"
	"time"
)

// Side is the direction of a paper position.
type Side string

const (
	SideYes Side = "YES"
	SideNo  Side = "NO"
)

// PositionStatus is the lifecycle state of a paper trade.
type PositionStatus string

const (
	PositionOpen   PositionStatus = "open"
	PositionClosed PositionStatus = "closed"
)

// Position is a simulated (paper) trade. Arbitrage baskets are recorded as a
// single synthetic position whose entry price encodes the guaranteed return;
// see SyntheticEntryPrice.
type Position struct {
	ID         string
	MarketID   string
	Title      string
	Platform   string
	Category   string
	Side       Side
	Size       float64 // dollars
	EntryPrice float64
	EntryTime  time.Time
	CloseTime  time.Time
	Status     PositionStatus

	// Set on resolution.
	ExitPrice  float64
	PnL        float64
	Win        bool
	ResolvedAt *time.Time
}

// ArbPositionID builds the synthetic market ID used for an arbitrage basket,
// so dedup and cooldown checks treat the whole basket as one market.
func ArbPositionID(platform, eventKey, strategy string) string {
	return fmt.Sprintf("%s_ARB::%s::%s", platform, eventKey, strategy)
}

// SyntheticEntryPrice encodes a guaranteed arb return r as an entry price p
// such that standard binary settlement math (contracts = size/p, payout at
// $1) reproduces the return: r = 1/p - 1 => p = 1/(1+r).
func SyntheticEntryPrice(profitRate float64) float64 {
	if profitRate < 0.001 {
		profitRate = 0.001
	}
	return 1 / (1 + profitRate)
}

// Settle computes the resolution outcome for the position given the market
// result ("yes" or "no"). Winning positions exit at 1.0 and earn
// contracts - size; losing positions forfeit the stake.
func (p *Position) Settle(result string, now time.Time) {
	win := (p.Side == SideYes && result == "yes") || (p.Side == SideNo && result == "no")

	entry := p.EntryPrice
	if entry < 0.01 {
		entry = 0.01
	}
	contracts := p.Size / entry

	if win {
		p.ExitPrice = 1.0
		p.PnL = contracts - p.Size
	} else {
		p.ExitPrice = 0.0
		p.PnL = -p.Size
	}
	p.Win = win
	p.Status = PositionClosed
	p.ResolvedAt = &now
}
