package kalshi

import (
	"time"

	"github.com/seerscan/seer/internal/domain"
)

// Market represents a market as returned by the Kalshi REST API. Prices are
// quoted in cents (1-99).
type Market struct {
	Ticker         string  `json:"ticker"`
	EventTicker    string  `json:"event_ticker"`
	Title          string  `json:"title"`
	Subtitle       string  `json:"subtitle"`
	Status         string  `json:"status"` // "open", "closed", "settled"
	YesBid         float64 `json:"yes_bid"`
	YesAsk         float64 `json:"yes_ask"`
	NoBid          float64 `json:"no_bid"`
	NoAsk          float64 `json:"no_ask"`
	LastPrice      float64 `json:"last_price"`
	Volume         int64   `json:"volume"`
	Volume24H      int64   `json:"volume_24h"`
	OpenInterest   int64   `json:"open_interest"`
	Liquidity      float64 `json:"liquidity"`
	Category       string  `json:"category"`
	Result         string  `json:"result"` // "yes", "no", "" (unsettled)
	CanCloseEarly  bool    `json:"can_close_early"`
	OpenTime       string  `json:"open_time"`
	CloseTime      string  `json:"close_time"`
	ExpirationTime string  `json:"expiration_time"`
}

// Event represents a Kalshi event, the grouping of mutually exclusive
// markets the multi-outcome scan runs over.
type Event struct {
	EventTicker  string `json:"event_ticker"`
	SeriesTicker string `json:"series_ticker"`
	Title        string `json:"title"`
	Category     string `json:"category"`
	MutuallyExclusive bool `json:"mutually_exclusive"`
	StrikeDate   string `json:"strike_date"`
}

// ErrorResponse represents a Kalshi API error body.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// parseTime handles the RFC3339 timestamps Kalshi returns; zero time when
// absent or unparseable.
func parseTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

// ToQuote converts the cent-denominated market into a normalized quote.
// Prices that cannot be normalized are left at zero so the detector's
// ask-fallback logic can still run on partial books.
func (m Market) ToQuote() domain.MarketQuote {
	norm := func(cents float64) float64 {
		p, ok := domain.NormalizePrice(cents)
		if !ok {
			return 0
		}
		return p
	}

	status := domain.MarketStatusOpen
	switch m.Status {
	case "closed":
		status = domain.MarketStatusClosed
	case "settled":
		status = domain.MarketStatusSettled
	}

	return domain.MarketQuote{
		ID:        m.Ticker,
		Title:     m.Title,
		Platform:  "kalshi",
		Category:  m.Category,
		EventID:   m.EventTicker,
		YesBid:    norm(m.YesBid),
		YesAsk:    norm(m.YesAsk),
		NoBid:     norm(m.NoBid),
		NoAsk:     norm(m.NoAsk),
		Liquidity: m.Liquidity,
		Volume24h: float64(m.Volume24H),
		Volume7d:  float64(m.Volume),
		CloseTime: parseTime(m.CloseTime),
		Status:    status,
	}
}

// ToOutcome converts one market of a mutually exclusive event into a
// multi-outcome leg.
func (m Market) ToOutcome() domain.Outcome {
	q := m.ToQuote()
	name := m.Subtitle
	if name == "" {
		name = m.Ticker
	}
	return domain.Outcome{
		Name:      name,
		YesBid:    q.YesBid,
		YesAsk:    q.YesAsk,
		Liquidity: m.Liquidity,
	}
}
