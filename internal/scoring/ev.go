package scoring

import "github.com/seerscan/seer/internal/domain"

// ExpectedValue computes per-dollar expected value of buying the given side
// at the market price, using the estimated true probability. Inputs are
// clamped to [0,1].
func ExpectedValue(marketPrice, trueProb float64, side domain.Side) float64 {
	marketPrice = clamp01(marketPrice)
	trueProb = clamp01(trueProb)

	if side == domain.SideYes {
		return trueProb - marketPrice
	}
	return (1 - trueProb) - (1 - marketPrice)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
