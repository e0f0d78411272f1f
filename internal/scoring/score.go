// Package scoring rates market quality, estimates true probabilities, and
// computes expected value and portfolio correlation for the speculative side
// of the scanner.
package scoring

import (
	"math"
	"strings"

	"github.com/seerscan/seer/internal/domain"
)

var ambiguousTerms = []string{"might", "could", "possibly", "likely"}

var categoryReliability = map[string]float64{
	"economics": 9.0,
	"weather":   9.5,
	"politics":  7.0,
	"sports":    8.0,
	"elections": 7.5,
}

// ScoreMarket returns a 0-10 quality score for a market, weighted across
// liquidity (25%), spread tightness (25%), resolution clarity (20%), trader
// diversity (15%), and category reliability (15%). Rounded to two decimals.
func ScoreMarket(q domain.MarketQuote) float64 {
	liquidityScore := math.Min(q.Volume24h/10000, 10)

	spreadScore := math.Max(10-q.Spread()*100, 0)

	clarityScore := 10.0
	title := strings.ToLower(q.Title)
	for _, term := range ambiguousTerms {
		if strings.Contains(title, term) {
			clarityScore = 5.0
			break
		}
	}

	diversityScore := math.Min(float64(q.TradersCount)/50, 10)

	historicalScore := CategoryReliability(q.Category)

	total := liquidityScore*0.25 +
		spreadScore*0.25 +
		clarityScore*0.20 +
		diversityScore*0.15 +
		historicalScore*0.15

	return math.Round(total*100) / 100
}

// CategoryReliability returns the historical reliability score for a market
// category; unknown categories get 5.0.
func CategoryReliability(category string) float64 {
	if score, ok := categoryReliability[category]; ok {
		return score
	}
	return 5.0
}
