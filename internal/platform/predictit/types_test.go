package predictit

import (
	"math"
	"testing"
)

func fp(v float64) *float64 { return &v }

func TestContractYesPrice(t *testing.T) {
	// Cents normalize to dollars.
	c := Contract{LastTradePrice: fp(37)}
	if got := c.YesPrice(); math.Abs(got-0.37) > 1e-9 {
		t.Errorf("yes price = %v, want 0.37", got)
	}

	// Already in dollars.
	c = Contract{LastTradePrice: fp(0.37)}
	if got := c.YesPrice(); math.Abs(got-0.37) > 1e-9 {
		t.Errorf("yes price = %v, want 0.37", got)
	}

	// Falls back to best buy cost.
	c = Contract{BestBuyYesCost: fp(0.42)}
	if got := c.YesPrice(); math.Abs(got-0.42) > 1e-9 {
		t.Errorf("yes price = %v, want 0.42", got)
	}

	// No price at all.
	c = Contract{}
	if got := c.YesPrice(); got != 0 {
		t.Errorf("yes price = %v, want 0", got)
	}
}

func TestContractToQuoteSyntheticSpread(t *testing.T) {
	c := Contract{
		ID:             9,
		Name:           "Candidate A",
		Status:         "Open",
		LastTradePrice: fp(0.40),
		DateEnd:        "2026-11-03T00:00:00",
	}

	q := c.ToQuote(77, "Who wins?")
	if math.Abs(q.YesBid-0.39) > 1e-9 || math.Abs(q.YesAsk-0.41) > 1e-9 {
		t.Errorf("yes prices = %v/%v, want 0.39/0.41", q.YesBid, q.YesAsk)
	}
	if math.Abs(q.NoBid-0.59) > 1e-9 || math.Abs(q.NoAsk-0.61) > 1e-9 {
		t.Errorf("no prices = %v/%v, want 0.59/0.61", q.NoBid, q.NoAsk)
	}
	if q.EventID != "77" || q.ID != "9" {
		t.Errorf("ids = %s/%s", q.EventID, q.ID)
	}
	if q.CloseTime.IsZero() {
		t.Error("close time not parsed")
	}
}

func TestOpenContracts(t *testing.T) {
	m := Market{Contracts: []Contract{
		{ID: 1, Status: "Open"},
		{ID: 2, Status: "Closed"},
		{ID: 3, Status: "Open"},
	}}
	open := m.OpenContracts()
	if len(open) != 2 {
		t.Fatalf("open contracts = %d, want 2", len(open))
	}
	if open[0].ID != 1 || open[1].ID != 3 {
		t.Errorf("wrong contracts kept: %+v", open)
	}
}
