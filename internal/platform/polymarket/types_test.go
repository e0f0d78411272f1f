package polymarket

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/seerscan/seer/internal/domain"
)

func TestEventKey(t *testing.T) {
	m := APIMarket{QuestionID: "0xabcdef01"}
	if got := m.EventKey(); got != "0xabcdef" {
		t.Errorf("event key = %q, want 0xabcdef", got)
	}

	short := APIMarket{QuestionID: "0x1"}
	if got := short.EventKey(); got != "" {
		t.Errorf("short id should have no key, got %q", got)
	}
}

func TestToQuoteFromOutcomePrices(t *testing.T) {
	m := APIMarket{
		ID:            "123",
		Question:      "Will X happen?",
		Active:        true,
		Outcomes:      `["Yes","No"]`,
		OutcomePrices: `["0.40","0.60"]`,
		Volume24hr:    5000,
		LiquidityNum:  1200,
		EndDate:       "2026-10-01T00:00:00Z",
	}

	q := m.ToQuote()
	// 2 cent synthetic spread around each outcome price.
	if math.Abs(q.YesBid-0.39) > 1e-9 || math.Abs(q.YesAsk-0.41) > 1e-9 {
		t.Errorf("yes prices = %v/%v, want 0.39/0.41", q.YesBid, q.YesAsk)
	}
	if math.Abs(q.NoBid-0.59) > 1e-9 || math.Abs(q.NoAsk-0.61) > 1e-9 {
		t.Errorf("no prices = %v/%v, want 0.59/0.61", q.NoBid, q.NoAsk)
	}
	if q.Status != domain.MarketStatusOpen {
		t.Errorf("status = %s", q.Status)
	}
	if q.Liquidity != 1200 || q.Volume24h != 5000 {
		t.Errorf("liquidity/volume = %v/%v", q.Liquidity, q.Volume24h)
	}
}

func TestToQuoteFromBestBidAsk(t *testing.T) {
	m := APIMarket{
		ID:      "456",
		Active:  true,
		BestBid: 0.30,
		BestAsk: 0.34,
	}

	q := m.ToQuote()
	if q.YesBid != 0.30 || q.YesAsk != 0.34 {
		t.Errorf("yes prices = %v/%v", q.YesBid, q.YesAsk)
	}
	// NO side implied from the YES book.
	if math.Abs(q.NoAsk-0.70) > 1e-9 || math.Abs(q.NoBid-0.66) > 1e-9 {
		t.Errorf("no prices = %v/%v, want 0.66/0.70", q.NoBid, q.NoAsk)
	}
}

func TestFlexBool(t *testing.T) {
	var m APIMarket
	for _, raw := range []string{`{"active": true}`, `{"active": "true"}`, `{"active": "1"}`} {
		m.Active = false
		if err := json.Unmarshal([]byte(raw), &m); err != nil {
			t.Fatalf("unmarshal %s: %v", raw, err)
		}
		if !bool(m.Active) {
			t.Errorf("%s should decode active=true", raw)
		}
	}
}

func TestIsCryptoUpDown(t *testing.T) {
	yes := APIMarket{Question: "Bitcoin Up or Down - 5min"}
	no := APIMarket{Question: "Will it rain in NYC tomorrow?"}
	if !yes.IsCryptoUpDown() {
		t.Error("crypto market not detected")
	}
	if no.IsCryptoUpDown() {
		t.Error("weather market misdetected as crypto")
	}
}

func TestBookToUpdate(t *testing.T) {
	b := BookMessage{
		AssetID: "tok1",
		Market:  "m1",
		Bids: []WSPriceLevel{
			{Price: "0.48", Size: "100"},
			{Price: "0.50", Size: "50"},
		},
		Asks: []WSPriceLevel{
			{Price: "0.53", Size: "80"},
			{Price: "0.52", Size: "20"},
		},
		Timestamp: "1760000000",
	}

	u := bookToUpdate(&b)
	if u.YesBid != 0.50 {
		t.Errorf("best bid = %v, want 0.50", u.YesBid)
	}
	if u.YesAsk != 0.52 {
		t.Errorf("best ask = %v, want 0.52", u.YesAsk)
	}
	if u.Timestamp.IsZero() {
		t.Error("timestamp not parsed")
	}
}
