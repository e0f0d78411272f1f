package kalshi

import (
	"testing"

	"github.com/seerscan/seer/internal/domain"
)

func TestMarketToQuote(t *testing.T) {
	m := Market{
		Ticker:      "FED-24DEC",
		EventTicker: "FED-24",
		Title:       "Will the Fed hold rates?",
		Subtitle:    "Hold",
		Status:      "open",
		YesBid:      44,
		YesAsk:      46,
		NoBid:       52,
		NoAsk:       54,
		Volume24H:   12000,
		Liquidity:   5000,
		Category:    "economics",
		CloseTime:   "2026-12-18T21:00:00Z",
	}

	q := m.ToQuote()
	if q.Platform != "kalshi" || q.ID != "FED-24DEC" {
		t.Errorf("identity fields wrong: %+v", q)
	}
	if q.YesBid != 0.44 || q.YesAsk != 0.46 || q.NoBid != 0.52 || q.NoAsk != 0.54 {
		t.Errorf("cent prices not normalized: %+v", q)
	}
	if q.Status != domain.MarketStatusOpen {
		t.Errorf("status = %s", q.Status)
	}
	if q.CloseTime.IsZero() {
		t.Error("close time not parsed")
	}
	if q.Volume24h != 12000 {
		t.Errorf("volume = %v", q.Volume24h)
	}
}

func TestMarketToQuoteBadPrices(t *testing.T) {
	m := Market{Ticker: "X", YesBid: -5, YesAsk: 150, NoBid: 50}
	q := m.ToQuote()
	if q.YesBid != 0 {
		t.Errorf("negative price should normalize to 0, got %v", q.YesBid)
	}
	// 150 cents is 1.5 after division, still out of range.
	if q.YesAsk != 0 {
		t.Errorf("out-of-range ask should normalize to 0, got %v", q.YesAsk)
	}
	if q.NoBid != 0.50 {
		t.Errorf("no bid = %v, want 0.50", q.NoBid)
	}
}

func TestMarketToOutcome(t *testing.T) {
	m := Market{Ticker: "GOP-NOM-T", Subtitle: "Candidate T", YesBid: 30, YesAsk: 32, Liquidity: 900}
	o := m.ToOutcome()
	if o.Name != "Candidate T" {
		t.Errorf("name = %s", o.Name)
	}
	if o.YesBid != 0.30 || o.YesAsk != 0.32 {
		t.Errorf("prices = %v/%v", o.YesBid, o.YesAsk)
	}
	if o.Liquidity != 900 {
		t.Errorf("liquidity = %v", o.Liquidity)
	}

	// Falls back to the ticker without a subtitle.
	m.Subtitle = ""
	if got := m.ToOutcome().Name; got != "GOP-NOM-T" {
		t.Errorf("fallback name = %s", got)
	}
}
