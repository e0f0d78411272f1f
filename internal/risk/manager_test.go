package risk

import (
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/seerscan/seer/internal/domain"
)

func discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func TestCheckKillSwitchTrips(t *testing.T) {
	m := NewManager(1000, DefaultLimits(), discard())

	halt, reason := m.CheckKillSwitch(940)
	if !halt {
		t.Fatal("expected kill switch to trip at 6% daily loss")
	}
	if !strings.Contains(reason, "6.0%") || !strings.Contains(reason, "5.0%") {
		t.Errorf("reason = %q, want loss and limit percentages", reason)
	}
	if !m.KillSwitchActive() {
		t.Error("kill switch should latch")
	}
}

func TestCheckKillSwitchWithinLimit(t *testing.T) {
	m := NewManager(1000, DefaultLimits(), discard())

	halt, _ := m.CheckKillSwitch(960)
	if halt {
		t.Error("4% loss should not trip the switch")
	}
	// Gains never trip it.
	halt, _ = m.CheckKillSwitch(1200)
	if halt {
		t.Error("gain should not trip the switch")
	}
}

func TestCheckKillSwitchLatches(t *testing.T) {
	m := NewManager(1000, DefaultLimits(), discard())

	if halt, _ := m.CheckKillSwitch(900); !halt {
		t.Fatal("expected trip")
	}
	// Recovery does not clear the latch.
	halt, reason := m.CheckKillSwitch(1000)
	if !halt {
		t.Error("kill switch should stay latched after recovery")
	}
	if reason == "" {
		t.Error("latched check should return the original reason")
	}

	m.DeactivateKillSwitch()
	if halt, _ := m.CheckKillSwitch(1000); halt {
		t.Error("deactivated switch should allow trading")
	}
}

func TestCheckKillSwitchDailyReset(t *testing.T) {
	m := NewManager(1000, DefaultLimits(), discard())
	day := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return day }
	m.dailyResetDate = truncateToDay(day)

	// Down 4% today: fine.
	if halt, _ := m.CheckKillSwitch(960); halt {
		t.Fatal("4% loss should pass")
	}

	// Next day the baseline resets to the current bankroll, so a further 4%
	// drop from 960 does not trip even though it is 7.8% from 1000.
	day = day.Add(24 * time.Hour)
	if halt, _ := m.CheckKillSwitch(922); halt {
		t.Error("loss measured from new daily baseline should pass")
	}

	// But 6% below the new baseline trips.
	if halt, _ := m.CheckKillSwitch(922 * 0.94); !halt {
		t.Error("6% below the reset baseline should trip")
	}
}

func TestValidatePositionSize(t *testing.T) {
	m := NewManager(5000, DefaultLimits(), discard())

	t.Run("too small", func(t *testing.T) {
		ok, adjusted, reason := m.ValidatePositionSize(0.001, 5000, nil)
		if ok || adjusted != 0 {
			t.Errorf("got ok=%v adjusted=%v, want rejection", ok, adjusted)
		}
		if !strings.Contains(reason, "too small") {
			t.Errorf("reason = %q", reason)
		}
	})

	t.Run("capped at max", func(t *testing.T) {
		ok, adjusted, reason := m.ValidatePositionSize(0.30, 5000, nil)
		if !ok {
			t.Fatal("oversized position should be accepted after capping")
		}
		if adjusted != 0.05 {
			t.Errorf("adjusted = %v, want 0.05", adjusted)
		}
		if !strings.Contains(reason, "capped") {
			t.Errorf("reason = %q", reason)
		}
	})

	t.Run("within limits", func(t *testing.T) {
		ok, adjusted, reason := m.ValidatePositionSize(0.02, 5000, nil)
		if !ok || adjusted != 0.02 || reason != "OK" {
			t.Errorf("got ok=%v adjusted=%v reason=%q", ok, adjusted, reason)
		}
	})

	t.Run("reduced for exposure headroom", func(t *testing.T) {
		// 18% already deployed; a 4% ask leaves only 2% headroom.
		open := []domain.Position{{Size: 900}}
		ok, adjusted, reason := m.ValidatePositionSize(0.04, 5000, open)
		if !ok {
			t.Fatal("position should be accepted reduced")
		}
		if adjusted <= 0.019 || adjusted >= 0.021 {
			t.Errorf("adjusted = %v, want ~0.02", adjusted)
		}
		if !strings.Contains(reason, "reduced") {
			t.Errorf("reason = %q", reason)
		}
	})

	t.Run("exposure exhausted", func(t *testing.T) {
		// 19.8% deployed; remaining 0.2% is under the minimum.
		open := []domain.Position{{Size: 990}}
		ok, adjusted, _ := m.ValidatePositionSize(0.04, 5000, open)
		if ok || adjusted != 0 {
			t.Errorf("got ok=%v adjusted=%v, want rejection", ok, adjusted)
		}
	})
}

func TestCheckPositionLimits(t *testing.T) {
	limits := DefaultLimits()
	limits.MaxOpenPositions = 2
	m := NewManager(5000, limits, discard())

	ok, _ := m.CheckPositionLimits([]domain.Position{{}, {}})
	if ok {
		t.Error("at the limit should reject")
	}
	ok, reason := m.CheckPositionLimits([]domain.Position{{}})
	if !ok || reason != "" {
		t.Errorf("below the limit should pass, got %v %q", ok, reason)
	}
}

func TestMetrics(t *testing.T) {
	m := NewManager(1000, DefaultLimits(), discard())
	open := []domain.Position{{Size: 50}, {Size: 150}}

	got := m.Metrics(1100, open)
	if got.DailyPnL != 100 || got.TotalPnL != 100 {
		t.Errorf("pnl = %v/%v, want 100/100", got.DailyPnL, got.TotalPnL)
	}
	if got.TotalExposure != 200 {
		t.Errorf("exposure = %v, want 200", got.TotalExposure)
	}
	if got.OpenPositions != 2 {
		t.Errorf("open positions = %d, want 2", got.OpenPositions)
	}
	if got.ExposurePct < 18.1 || got.ExposurePct > 18.2 {
		t.Errorf("exposure pct = %v, want ~18.18", got.ExposurePct)
	}
	if got.KillSwitchActive {
		t.Error("kill switch should be inactive")
	}
}
