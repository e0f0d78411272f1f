// Package arb implements rebalancing-arbitrage detection and position sizing
// for binary prediction markets. In an efficient market YES + NO = $1 for a
// single condition and the YES prices across a full outcome set sum to $1;
// deviations beyond the spread are risk-free edge.
package arb

import (
	"fmt"

	"github.com/seerscan/seer/internal/domain"
)

// Detector finds rebalancing arbitrage in market quotes. All check methods
// are pure functions of their inputs.
type Detector struct {
	// MinProfitThreshold is the minimum gross deviation from $1 to act on.
	MinProfitThreshold float64
	// MinNetProfit is the minimum gross edge to report at all; below this
	// the opportunity is discarded even when the threshold triggered.
	MinNetProfit float64
	// MinProbability filters out negligible outcomes in multi-outcome checks.
	MinProbability float64
	// Platform is stamped on every emitted opportunity.
	Platform string
}

// NewDetector returns a Detector with the standard thresholds: 2% gross
// deviation, 0.5% minimum edge, 2% outcome floor.
func NewDetector(platform string) *Detector {
	return &Detector{
		MinProfitThreshold: 0.02,
		MinNetProfit:       0.005,
		MinProbability:     0.02,
		Platform:           platform,
	}
}

// spreadCost estimates the transaction cost of crossing both books. Buying
// both sides pays the ask, so the cost over fair value is half the combined
// spread. A crossed book (bid above ask) costs nothing extra, so the result
// floors at zero rather than crediting the deviation twice.
func spreadCost(yesBid, yesAsk, noBid, noAsk float64) float64 {
	c := ((yesAsk - yesBid) + (noAsk - noBid)) / 2
	if c < 0 {
		return 0
	}
	return c
}

// CheckSingleCondition looks for arbitrage in one YES/NO market. Buying uses
// ask prices (what you pay); selling uses bids (what you receive). When asks
// are missing they default to the bids. Returns nil when no opportunity
// clears the thresholds.
func (d *Detector) CheckSingleCondition(marketID, title string, q domain.MarketQuote) *domain.Opportunity {
	yesBid, noBid := q.YesBid, q.NoBid
	yesAsk, noAsk := q.YesAsk, q.NoAsk
	if yesAsk == 0 {
		yesAsk = yesBid
	}
	if noAsk == 0 {
		noAsk = noBid
	}
	// One-sided books are unquotable, not free money.
	if yesAsk <= 0 || noAsk <= 0 {
		return nil
	}

	buyCost := yesAsk + noAsk
	sellValue := yesBid + noBid
	spread := spreadCost(yesBid, yesAsk, noBid, noAsk)

	// LONG: buy both at ask, collect $1 at resolution.
	if buyCost < 1.0-d.MinProfitThreshold {
		gross := 1.0 - buyCost
		if gross < d.MinNetProfit {
			return nil
		}
		opp := domain.NewOpportunity(domain.Opportunity{
			Type:            domain.SingleConditionLong,
			MarketID:        marketID,
			Title:           title,
			Platform:        d.Platform,
			ProfitPerDollar: gross,
			SpreadCost:      spread,
			MaxProfit:       maxProfit(gross, q.Liquidity),
			Confidence:      confidence(gross),
			RiskLevel:       domain.RiskFree,
			Single: &domain.SingleDetails{
				YesBid:    yesBid,
				YesAsk:    yesAsk,
				NoBid:     noBid,
				NoAsk:     noAsk,
				BuyCost:   buyCost,
				Action:    "BUY YES @ ask + BUY NO @ ask",
				Liquidity: q.Liquidity,
			},
		})
		return &opp
	}

	// SHORT: sell both at bid, owe $1 at resolution.
	if sellValue > 1.0+d.MinProfitThreshold {
		gross := sellValue - 1.0
		if gross < d.MinNetProfit {
			return nil
		}
		opp := domain.NewOpportunity(domain.Opportunity{
			Type:            domain.SingleConditionShort,
			MarketID:        marketID,
			Title:           title,
			Platform:        d.Platform,
			ProfitPerDollar: gross,
			SpreadCost:      spread,
			MaxProfit:       maxProfit(gross, q.Liquidity),
			Confidence:      confidence(gross),
			RiskLevel:       domain.RiskFree,
			Single: &domain.SingleDetails{
				YesBid:    yesBid,
				YesAsk:    yesAsk,
				NoBid:     noBid,
				NoAsk:     noAsk,
				SellValue: sellValue,
				Action:    "SELL YES @ bid + SELL NO @ bid",
				Liquidity: q.Liquidity,
			},
		})
		return &opp
	}

	return nil
}

// CheckMultiOutcome looks for arbitrage across a full outcome set. Outcomes
// with a YES bid below MinProbability are ignored; at least two relevant
// outcomes are required. Liquidity is bounded by the thinnest outcome since
// the basket must be filled on every leg.
func (d *Detector) CheckMultiOutcome(marketID, title string, outcomes []domain.Outcome) *domain.Opportunity {
	if len(outcomes) < 2 {
		return nil
	}

	relevant := make([]domain.Outcome, 0, len(outcomes))
	for _, o := range outcomes {
		if o.YesBid >= d.MinProbability {
			relevant = append(relevant, o)
		}
	}
	if len(relevant) < 2 {
		return nil
	}

	var askSum, bidSum float64
	minLiquidity := relevant[0].Liquidity
	for _, o := range relevant {
		ask := o.YesAsk
		if ask == 0 {
			ask = o.YesBid
		}
		askSum += ask
		bidSum += o.YesBid
		if o.Liquidity < minLiquidity {
			minLiquidity = o.Liquidity
		}
	}

	spread := (askSum - bidSum) / 2
	if spread < 0 {
		spread = 0
	}

	// LONG: buy YES on every outcome at ask.
	if askSum < 1.0-d.MinProfitThreshold {
		gross := 1.0 - askSum
		if gross < d.MinNetProfit {
			return nil
		}
		opp := domain.NewOpportunity(domain.Opportunity{
			Type:            domain.MultiOutcomeLong,
			MarketID:        marketID,
			Title:           title,
			Platform:        d.Platform,
			ProfitPerDollar: gross,
			SpreadCost:      spread,
			MaxProfit:       maxProfit(gross, minLiquidity),
			Confidence:      confidence(gross),
			RiskLevel:       domain.RiskFree,
			Multi: &domain.MultiDetails{
				Outcomes:     relevant,
				AskSum:       askSum,
				BidSum:       bidSum,
				NumOutcomes:  len(relevant),
				Action:       "BUY YES on ALL outcomes @ ask",
				MinLiquidity: minLiquidity,
			},
		})
		return &opp
	}

	// SHORT: sell YES on every outcome at bid.
	if bidSum > 1.0+d.MinProfitThreshold {
		gross := bidSum - 1.0
		if gross < d.MinNetProfit {
			return nil
		}
		opp := domain.NewOpportunity(domain.Opportunity{
			Type:            domain.MultiOutcomeShort,
			MarketID:        marketID,
			Title:           title,
			Platform:        d.Platform,
			ProfitPerDollar: gross,
			SpreadCost:      spread,
			MaxProfit:       maxProfit(gross, minLiquidity),
			Confidence:      confidence(gross),
			RiskLevel:       domain.RiskFree,
			Multi: &domain.MultiDetails{
				Outcomes:     relevant,
				AskSum:       askSum,
				BidSum:       bidSum,
				NumOutcomes:  len(relevant),
				Action:       "SELL YES on ALL outcomes @ bid",
				MinLiquidity: minLiquidity,
			},
		})
		return &opp
	}

	return nil
}

// NewEVOpportunity wraps a speculative expected-value signal in the same
// shape as an arbitrage so downstream handling is uniform. The risk tier is
// derived from the EV and the market quality score; spread cost is zero
// because it is already factored into the EV calculation.
func (d *Detector) NewEVOpportunity(marketID, title string, ev float64, side string, marketPrice, trueProb, qualityScore, liquidity float64) domain.Opportunity {
	var risk domain.RiskLevel
	switch {
	case ev >= 0.05 && qualityScore >= 8:
		risk = domain.LowRisk
	case ev >= 0.02 && qualityScore >= 6:
		risk = domain.MediumRisk
	default:
		risk = domain.HighRisk
	}

	conf := qualityScore / 10
	if conf > 1 {
		conf = 1
	}

	return domain.NewOpportunity(domain.Opportunity{
		Type:            domain.EVEdge,
		MarketID:        marketID,
		Title:           title,
		Platform:        d.Platform,
		ProfitPerDollar: ev,
		SpreadCost:      0,
		MaxProfit:       maxProfit(ev, liquidity),
		Confidence:      conf,
		RiskLevel:       risk,
		EV: &domain.EVDetails{
			Side:         side,
			MarketPrice:  marketPrice,
			TrueProb:     trueProb,
			QualityScore: qualityScore,
			Action:       fmt.Sprintf("BUY %s @ %.1f%%", side, marketPrice*100),
			Liquidity:    liquidity,
		},
	})
}

// maxProfit scales the per-dollar edge by available liquidity, with a $100
// notional fallback when liquidity is unknown.
func maxProfit(gross, liquidity float64) float64 {
	if liquidity > 0 {
		return gross * liquidity
	}
	return gross * 100
}

// confidence maps the gross edge onto [0,1]; a 10% deviation is full
// confidence.
func confidence(gross float64) float64 {
	c := gross / 0.10
	if c > 1 {
		return 1
	}
	return c
}
