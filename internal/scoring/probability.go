package scoring

import "strings"

// Historical base rates by event archetype. Small samples are kept anyway;
// they still beat the market price alone on these patterns.
var baseRates = map[string]float64{
	"indictment_7day": 0.021,
	"cpi_surprise_02": 0.084,
	"fed_rate_hold":   0.732,
	"election_upset":  0.15,
	"weather_extreme": 0.05,
}

// AdjustedProbability estimates the true YES probability for a market:
// a blend of the matched base rate (70%) and the current market price (30%),
// discounted by a news-noise penalty when volume is spiking. Result is
// clamped to [0.01, 0.99].
func AdjustedProbability(title, category string, yesPrice, volume24h, volume7d float64) float64 {
	base, ok := matchBaseRate(strings.ToLower(title), category)
	if !ok {
		base = yesPrice * 0.7
	}

	blended := base*0.7 + yesPrice*0.3

	intensity := newsIntensity(volume24h, volume7d)
	penalty := intensity * 0.25
	if penalty > 0.5 {
		penalty = 0.5
	}

	adjusted := blended * (1 - penalty)

	if adjusted < 0.01 {
		return 0.01
	}
	if adjusted > 0.99 {
		return 0.99
	}
	return adjusted
}

func matchBaseRate(title, category string) (float64, bool) {
	switch {
	case strings.Contains(title, "indictment") || strings.Contains(title, "indicted"):
		return baseRates["indictment_7day"], true
	case strings.Contains(title, "cpi"):
		return baseRates["cpi_surprise_02"], true
	case strings.Contains(title, "fed") && strings.Contains(title, "rate"):
		return baseRates["fed_rate_hold"], true
	case strings.Contains(title, "election"):
		return baseRates["election_upset"], true
	case category == "weather":
		return baseRates["weather_extreme"], true
	}
	return 0, false
}

// newsIntensity compares 24h volume against the trailing daily average. A
// spike means the market is trading on fresh news and the base rate is less
// trustworthy.
func newsIntensity(volume24h, volume7d float64) float64 {
	if volume7d == 0 {
		return 0.5
	}
	ratio := volume24h / (volume7d / 7)
	switch {
	case ratio > 3:
		return 0.8
	case ratio > 1.5:
		return 0.4
	default:
		return 0.1
	}
}
