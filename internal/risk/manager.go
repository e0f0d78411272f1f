// Package risk enforces account-level safety controls: the daily-loss kill
// switch, per-position size limits, and total exposure caps.
package risk

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/seerscan/seer/internal/domain"
)

// Limits are the risk parameters the manager enforces. All size fields are
// fractions of bankroll.
type Limits struct {
	DailyLossLimit   float64
	MinPositionSize  float64
	MaxPositionSize  float64
	MaxPositionValue float64
	MaxOpenPositions int
}

// DefaultLimits returns the standard limits: 5% daily loss, 0.5%-5% per
// position, 20% total exposure, 50 open positions.
func DefaultLimits() Limits {
	return Limits{
		DailyLossLimit:   0.05,
		MinPositionSize:  0.005,
		MaxPositionSize:  0.05,
		MaxPositionValue: 0.20,
		MaxOpenPositions: 50,
	}
}

// Manager tracks daily P&L against the bankroll and latches a kill switch
// when the loss limit is breached. The switch stays active until manually
// deactivated. Safe for concurrent use.
type Manager struct {
	mu sync.Mutex

	limits Limits
	logger *slog.Logger
	now    func() time.Time

	startingBankroll   float64
	dailyStartBankroll float64
	dailyResetDate     time.Time

	killSwitchActive bool
	killSwitchReason string
}

// NewManager returns a Manager seeded with the initial bankroll.
func NewManager(initialBankroll float64, limits Limits, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	m := &Manager{
		limits:             limits,
		logger:             logger.With("component", "risk"),
		now:                time.Now,
		startingBankroll:   initialBankroll,
		dailyStartBankroll: initialBankroll,
	}
	m.dailyResetDate = truncateToDay(m.now())
	return m
}

func truncateToDay(t time.Time) time.Time {
	y, mo, d := t.Date()
	return time.Date(y, mo, d, 0, 0, 0, 0, t.Location())
}

// CheckKillSwitch evaluates the daily loss against the limit and reports
// whether trading must halt. Crossing midnight resets the daily baseline to
// the current bankroll. Once tripped the switch stays tripped.
func (m *Manager) CheckKillSwitch(currentBankroll float64) (bool, string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.killSwitchActive {
		return true, m.killSwitchReason
	}

	now := m.now()
	if truncateToDay(now).After(m.dailyResetDate) {
		m.dailyStartBankroll = currentBankroll
		m.dailyResetDate = truncateToDay(now)
		m.logger.Info("daily reset", "starting_balance", currentBankroll)
	}

	dailyPnL := currentBankroll - m.dailyStartBankroll
	var dailyLossPct float64
	if dailyPnL < 0 && m.dailyStartBankroll != 0 {
		dailyLossPct = -dailyPnL / m.dailyStartBankroll
	}

	if dailyLossPct > m.limits.DailyLossLimit {
		reason := fmt.Sprintf("Daily loss limit exceeded: %.1f%% (limit: %.1f%%)",
			dailyLossPct*100, m.limits.DailyLossLimit*100)
		m.activateLocked(reason)
		return true, reason
	}

	return false, ""
}

// ActivateKillSwitch trips the switch with the given reason.
func (m *Manager) ActivateKillSwitch(reason string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.activateLocked(reason)
}

func (m *Manager) activateLocked(reason string) {
	m.killSwitchActive = true
	m.killSwitchReason = reason
	m.logger.Error("kill switch activated", "reason", reason)
}

// DeactivateKillSwitch clears the switch. Manual operation only.
func (m *Manager) DeactivateKillSwitch() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.killSwitchActive = false
	m.killSwitchReason = ""
	m.logger.Info("kill switch deactivated")
}

// KillSwitchActive reports the latch state without re-evaluating limits.
func (m *Manager) KillSwitchActive() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.killSwitchActive
}

// ValidatePositionSize checks a proposed size (fraction of bankroll) against
// the per-position and total-exposure limits. Returns whether the position
// may be opened, the possibly adjusted size, and a human-readable reason.
func (m *Manager) ValidatePositionSize(size, bankroll float64, openPositions []domain.Position) (bool, float64, string) {
	if size < m.limits.MinPositionSize {
		return false, 0, fmt.Sprintf("Position too small: %.2f%% < %.2f%%",
			size*100, m.limits.MinPositionSize*100)
	}

	if size > m.limits.MaxPositionSize {
		return true, m.limits.MaxPositionSize,
			fmt.Sprintf("Position capped at %.1f%%", m.limits.MaxPositionSize*100)
	}

	var totalDollars float64
	for _, p := range openPositions {
		totalDollars += p.Size
	}
	totalExposure := 0.0
	if bankroll > 0 {
		totalExposure = totalDollars / bankroll
	}

	if totalExposure+size > m.limits.MaxPositionValue {
		remaining := m.limits.MaxPositionValue - totalExposure
		if remaining < 0 {
			remaining = 0
		}
		if remaining < m.limits.MinPositionSize {
			return false, 0, fmt.Sprintf("Max total exposure reached: %.1f%%", totalExposure*100)
		}
		return true, remaining,
			fmt.Sprintf("Position reduced to stay under %.1f%% total exposure",
				m.limits.MaxPositionValue*100)
	}

	return true, size, "OK"
}

// CheckPositionLimits reports whether a new position may be opened given the
// open-position count.
func (m *Manager) CheckPositionLimits(openPositions []domain.Position) (bool, string) {
	count := len(openPositions)
	if count >= m.limits.MaxOpenPositions {
		return false, fmt.Sprintf("Max positions reached: %d/%d", count, m.limits.MaxOpenPositions)
	}
	return true, ""
}

// Metrics returns the point-in-time risk view for logging and the API.
func (m *Manager) Metrics(currentBankroll float64, openPositions []domain.Position) domain.RiskMetrics {
	m.mu.Lock()
	defer m.mu.Unlock()

	dailyPnL := currentBankroll - m.dailyStartBankroll
	totalPnL := currentBankroll - m.startingBankroll

	var totalExposure float64
	for _, p := range openPositions {
		totalExposure += p.Size
	}
	var exposurePct float64
	if currentBankroll > 0 {
		exposurePct = totalExposure / currentBankroll * 100
	}

	return domain.RiskMetrics{
		CurrentBankroll:  currentBankroll,
		DailyPnL:         dailyPnL,
		DailyReturnPct:   dailyPnL / m.dailyStartBankroll * 100,
		TotalPnL:         totalPnL,
		TotalReturnPct:   totalPnL / m.startingBankroll * 100,
		OpenPositions:    len(openPositions),
		TotalExposure:    totalExposure,
		ExposurePct:      exposurePct,
		KillSwitchActive: m.killSwitchActive,
	}
}
