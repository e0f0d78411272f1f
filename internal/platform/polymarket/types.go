package polymarket

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/seerscan/seer/internal/domain"
)

// flexBool unmarshals from JSON bool or string ("true"/"false") so Gamma API
// responses work whether "active" is sent as bool or string.
type flexBool bool

func (f *flexBool) UnmarshalJSON(data []byte) error {
	var b bool
	if err := json.Unmarshal(data, &b); err == nil {
		*f = flexBool(b)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*f = flexBool(strings.EqualFold(s, "true") || s == "1")
	return nil
}

// APIMarket represents a market as returned by the Polymarket Gamma API.
// Several numeric fields arrive as strings; Outcomes and OutcomePrices are
// JSON-encoded arrays inside strings.
type APIMarket struct {
	ID             string   `json:"id"`
	Question       string   `json:"question"`
	QuestionID     string   `json:"questionID"`
	ConditionID    string   `json:"conditionId"`
	Slug           string   `json:"slug"`
	GroupItemTitle string   `json:"groupItemTitle"`
	Active         flexBool `json:"active"`
	Closed         bool     `json:"closed"`
	Outcomes       string   `json:"outcomes"`      // e.g. "[\"Yes\",\"No\"]"
	OutcomePrices  string   `json:"outcomePrices"` // e.g. "[\"0.5\",\"0.5\"]"
	ClobTokenIds   string   `json:"clobTokenIds"`  // e.g. "[\"123...\",\"456...\"]"
	BestBid        float64  `json:"bestBid"`
	BestAsk        float64  `json:"bestAsk"`
	Volume         string   `json:"volume"`
	VolumeNum      float64  `json:"volumeNum"`
	Volume24hr     float64  `json:"volume24hr"`
	Liquidity      string   `json:"liquidity"`
	LiquidityNum   float64  `json:"liquidityNum"`
	EndDate        string   `json:"endDate"`
	EndDateISO     string   `json:"end_date_iso"`
	StartDate      string   `json:"startDate"`
	Description    string   `json:"description"`
}

// ErrorResponse represents a Gamma API error body.
type ErrorResponse struct {
	Error string `json:"error"`
}

// EventKey derives the grouping key for multi-outcome brackets. The last two
// hex characters of questionID index the outcome within the bracket, so
// stripping them groups sibling markets. Empty when the ID is too short to
// carry an index.
func (m *APIMarket) EventKey() string {
	if len(m.QuestionID) <= 4 {
		return ""
	}
	return m.QuestionID[:len(m.QuestionID)-2]
}

// TokenIDs decodes the doubly encoded ClobTokenIds field. The first entry is
// the YES token, the second the NO token.
func (m *APIMarket) TokenIDs() []string {
	var raw []string
	if err := json.Unmarshal([]byte(m.ClobTokenIds), &raw); err != nil {
		return nil
	}
	return raw
}

// outcomePrices decodes the doubly encoded OutcomePrices field.
func (m *APIMarket) outcomePrices() []float64 {
	var raw []string
	if err := json.Unmarshal([]byte(m.OutcomePrices), &raw); err != nil {
		return nil
	}
	prices := make([]float64, 0, len(raw))
	for _, s := range raw {
		p, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil
		}
		prices = append(prices, p)
	}
	return prices
}

func (m *APIMarket) volume() float64 {
	if v, err := strconv.ParseFloat(m.Volume, 64); err == nil && v > 0 {
		return v
	}
	return m.VolumeNum
}

func (m *APIMarket) liquidity() float64 {
	if v, err := strconv.ParseFloat(m.Liquidity, 64); err == nil && v > 0 {
		return v
	}
	return m.LiquidityNum
}

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

// ToQuote converts a Gamma market into a normalized quote. Price derivation
// in priority order: outcomePrices midpoints widened by a synthetic 2 cent
// spread, then bestBid/bestAsk with the NO side implied as 1 - YES.
func (m *APIMarket) ToQuote() domain.MarketQuote {
	var yesBid, yesAsk, noBid, noAsk float64

	if prices := m.outcomePrices(); len(prices) >= 2 {
		const spread = 0.02
		yesBid = clamp01(prices[0] - spread/2)
		yesAsk = clamp01(prices[0] + spread/2)
		noBid = clamp01(prices[1] - spread/2)
		noAsk = clamp01(prices[1] + spread/2)
	} else if m.BestBid > 0 || m.BestAsk > 0 {
		yesBid = m.BestBid
		yesAsk = m.BestAsk
		if yesBid > 0 {
			noAsk = 1 - yesBid
		}
		if yesAsk > 0 {
			noBid = 1 - yesAsk
		}
	}

	status := domain.MarketStatusOpen
	if m.Closed {
		status = domain.MarketStatusClosed
	} else if !bool(m.Active) {
		status = domain.MarketStatusSettled
	}

	closeTime := parseTime(m.EndDate)
	if closeTime.IsZero() {
		closeTime = parseTime(m.EndDateISO)
	}

	id := m.ID
	if id == "" {
		id = m.ConditionID
	}

	volume24h := m.Volume24hr
	if volume24h == 0 {
		volume24h = m.volume()
	}

	return domain.MarketQuote{
		ID:        id,
		Title:     m.Question,
		Platform:  "polymarket",
		Category:  m.GroupItemTitle,
		EventID:   m.EventKey(),
		YesBid:    yesBid,
		YesAsk:    yesAsk,
		NoBid:     noBid,
		NoAsk:     noAsk,
		Liquidity: m.liquidity(),
		Volume24h: volume24h,
		Volume7d:  m.volume(),
		CloseTime: closeTime,
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

// cryptoKeywords mark the rapid UP/DOWN crypto markets.
var cryptoKeywords = []string{
	"up or down", "higher or lower",
	"btc", "eth", "sol", "xrp", "bitcoin", "ethereum",
}

// IsCryptoUpDown reports whether the market looks like a short-interval
// crypto UP/DOWN market.
func (m *APIMarket) IsCryptoUpDown() bool {
	q := strings.ToLower(m.Question)
	for _, kw := range cryptoKeywords {
		if strings.Contains(q, kw) {
			return true
		}
	}
	return false
}

// --------------------------------------------------------------------------
// WebSocket DTOs
// --------------------------------------------------------------------------

// WSCommand is the JSON payload sent to the WebSocket to subscribe or
// unsubscribe.
type WSCommand struct {
	Type    string   `json:"type"` // "subscribe" or "unsubscribe"
	Channel string   `json:"channel,omitempty"`
	Assets  []string `json:"assets_ids,omitempty"`
	Markets []string `json:"markets,omitempty"`
}

// WSPriceLevel is a single bid/ask level in the WebSocket orderbook data.
type WSPriceLevel struct {
	Price string `json:"price"`
	Size  string `json:"size"`
}

// BookMessage is a full orderbook snapshot delivered over WebSocket.
type BookMessage struct {
	AssetID   string         `json:"asset_id"`
	Market    string         `json:"market"`
	Bids      []WSPriceLevel `json:"bids"`
	Asks      []WSPriceLevel `json:"asks"`
	Timestamp string         `json:"timestamp"`
}

// PriceMessage is the most recent trade price for an asset.
type PriceMessage struct {
	AssetID   string `json:"asset_id"`
	Market    string `json:"market"`
	Price     string `json:"price"`
	Size      string `json:"size"`
	Timestamp string `json:"timestamp"`
}

// PriceUpdate is the normalized event the WS client emits: the current best
// YES bid/ask for one asset. LastTrade carries the trade price when the
// update came from a trade rather than a book refresh.
type PriceUpdate struct {
	AssetID   string
	MarketID  string
	YesBid    float64
	YesAsk    float64
	LastTrade float64
	Timestamp time.Time
}

// bookToUpdate extracts the best bid/ask from a snapshot.
func bookToUpdate(b *BookMessage) PriceUpdate {
	u := PriceUpdate{
		AssetID:  b.AssetID,
		MarketID: b.Market,
	}
	for _, lvl := range b.Bids {
		if p, err := strconv.ParseFloat(lvl.Price, 64); err == nil && p > u.YesBid {
			u.YesBid = p
		}
	}
	for _, lvl := range b.Asks {
		if p, err := strconv.ParseFloat(lvl.Price, 64); err == nil && (u.YesAsk == 0 || p < u.YesAsk) {
			u.YesAsk = p
		}
	}
	u.Timestamp = wsTimestamp(b.Timestamp)
	return u
}

func wsTimestamp(s string) time.Time {
	if ts, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.Unix(ts, 0)
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t
	}
	return time.Now()
}
