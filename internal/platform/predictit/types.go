package predictit

import (
	"strconv"
	"time"

	"github.com/seerscan/seer/internal/domain"
)

// AllMarketsResponse is the /all endpoint payload.
type AllMarketsResponse struct {
	Markets []Market `json:"markets"`
}

// Market is one PredictIt market, which groups mutually exclusive contracts.
type Market struct {
	ID        int64      `json:"id"`
	Name      string     `json:"name"`
	ShortName string     `json:"shortName"`
	URL       string     `json:"url"`
	Status    string     `json:"status"` // "Open", "Closed"
	Contracts []Contract `json:"contracts"`
}

// Contract is one outcome within a PredictIt market. Prices can arrive as
// dollars (0-1) or cents depending on endpoint version.
type Contract struct {
	ID              int64    `json:"id"`
	Name            string   `json:"name"`
	ShortName       string   `json:"shortName"`
	Status          string   `json:"status"`
	DateEnd         string   `json:"dateEnd"`
	LastTradePrice  *float64 `json:"lastTradePrice"`
	BestBuyYesCost  *float64 `json:"bestBuyYesCost"`
	BestSellYesCost *float64 `json:"bestSellYesCost"`
	BestBuyNoCost   *float64 `json:"bestBuyNoCost"`
	BestSellNoCost  *float64 `json:"bestSellNoCost"`
}

// OpenContracts returns the contracts still trading.
func (m Market) OpenContracts() []Contract {
	var open []Contract
	for _, c := range m.Contracts {
		if c.Status == "Open" {
			open = append(open, c)
		}
	}
	return open
}

func deref(p *float64) float64 {
	if p == nil {
		return 0
	}
	return *p
}

// YesPrice derives a normalized YES price for the contract: last trade
// first, then the best buy cost, cent-normalized. Zero when no usable price
// exists.
func (c Contract) YesPrice() float64 {
	price := deref(c.LastTradePrice)
	if price == 0 {
		price = deref(c.BestBuyYesCost)
	}
	p, ok := domain.NormalizePrice(price)
	if !ok {
		return 0
	}
	return p
}

// CloseTime parses the contract end date; zero time when absent. PredictIt
// sometimes sends "N/A" for open-ended contracts.
func (c Contract) CloseTime() time.Time {
	if c.DateEnd == "" || c.DateEnd == "N/A" {
		return time.Time{}
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05"} {
		if t, err := time.Parse(layout, c.DateEnd); err == nil {
			return t
		}
	}
	return time.Time{}
}

// ToQuote converts a contract into a normalized quote. Markets without a
// two-sided book get a synthetic 2 cent spread around the last trade.
func (c Contract) ToQuote(marketID int64, marketName string) domain.MarketQuote {
	norm := func(p *float64) float64 {
		v, ok := domain.NormalizePrice(deref(p))
		if !ok {
			return 0
		}
		return v
	}

	yesBid := norm(c.BestBuyYesCost)
	yesAsk := norm(c.BestSellYesCost)
	noBid := norm(c.BestBuyNoCost)
	noAsk := norm(c.BestSellNoCost)

	if yesBid == 0 && yesAsk == 0 {
		if last := norm(c.LastTradePrice); last > 0 {
			const spread = 0.02
			yesBid = clamp01(last - spread/2)
			yesAsk = clamp01(last + spread/2)
			noBid = clamp01((1 - last) - spread/2)
			noAsk = clamp01((1 - last) + spread/2)
		}
	}

	status := domain.MarketStatusOpen
	if c.Status != "Open" {
		status = domain.MarketStatusClosed
	}

	name := c.Name
	if name == "" {
		name = c.ShortName
	}

	return domain.MarketQuote{
		ID:        strconv.FormatInt(c.ID, 10),
		Title:     name,
		Platform:  "predictit",
		Category:  "politics",
		EventID:   strconv.FormatInt(marketID, 10),
		YesBid:    yesBid,
		YesAsk:    yesAsk,
		NoBid:     noBid,
		NoAsk:     noAsk,
		CloseTime: c.CloseTime(),
		Status:    status,
	}
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
