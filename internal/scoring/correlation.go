package scoring

import (
	"sort"
	"strings"
	"time"

	"github.com/seerscan/seer/internal/domain"
)

// CorrelationPenalty estimates how correlated a set of positions is, as a
// 0-1 penalty. It is the maximum of three overlap measures: concentration in
// one category, close times bunched within three days, and title tokens
// shared across every position. A portfolio of zero or one position has no
// correlation.
func CorrelationPenalty(positions []domain.Position) float64 {
	if len(positions) <= 1 {
		return 0
	}

	categoryOverlap := categoryConcentration(positions)
	timeOverlap := closeTimeClustering(positions)
	newsOverlap := sharedTitleTokens(positions)

	penalty := categoryOverlap
	if timeOverlap > penalty {
		penalty = timeOverlap
	}
	if newsOverlap > penalty {
		penalty = newsOverlap
	}
	return penalty
}

func categoryConcentration(positions []domain.Position) float64 {
	counts := make(map[string]int)
	for _, p := range positions {
		cat := p.Category
		if cat == "" {
			cat = "unknown"
		}
		counts[cat]++
	}
	var max int
	for _, n := range counts {
		if n > max {
			max = n
		}
	}
	return float64(max) / float64(len(positions))
}

func closeTimeClustering(positions []domain.Position) float64 {
	times := make([]time.Time, 0, len(positions))
	for _, p := range positions {
		if !p.CloseTime.IsZero() {
			times = append(times, p.CloseTime)
		}
	}
	if len(times) <= 1 {
		return 0
	}
	sort.Slice(times, func(i, j int) bool { return times[i].Before(times[j]) })

	var closePairs int
	for i := 1; i < len(times); i++ {
		if times[i].Sub(times[i-1]) <= 3*24*time.Hour {
			closePairs++
		}
	}
	return float64(closePairs) / float64(len(times))
}

func sharedTitleTokens(positions []domain.Position) float64 {
	var common map[string]bool
	for _, p := range positions {
		title := strings.ToLower(p.Title)
		if title == "" {
			continue
		}
		tokens := make(map[string]bool)
		for _, tok := range strings.Fields(title) {
			tokens[tok] = true
		}
		if common == nil {
			common = tokens
			continue
		}
		for tok := range common {
			if !tokens[tok] {
				delete(common, tok)
			}
		}
	}
	if common == nil {
		return 0
	}
	overlap := float64(len(common)) / 5
	if overlap > 1 {
		return 1
	}
	return overlap
}
