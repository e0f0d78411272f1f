package notify

import (
	"fmt"
	"strings"
	"time"

	"github.com/seerscan/seer/internal/domain"
)

// Event types used with Notifier filtering.
const (
	EventArbitrage  = "arbitrage"
	EventEVSignal   = "ev_signal"
	EventTrade      = "trade"
	EventResolution = "resolution"
	EventKillSwitch = "kill_switch"
	EventHeartbeat  = "heartbeat"
)

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

func daysUntil(t time.Time, now time.Time) string {
	if t.IsZero() {
		return "?"
	}
	return fmt.Sprintf("%d", int(t.Sub(now).Hours()/24))
}

// FormatEventArb renders a multi-outcome or crypto bracket arbitrage alert.
func FormatEventArb(arb domain.EventArb, now time.Time) (title, message string) {
	title = "SEER ARBITRAGE ALERT"

	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", truncate(arb.Title, 50))
	fmt.Fprintf(&b, "Platform: %s\n", strings.ToUpper(arb.Platform))
	fmt.Fprintf(&b, "Outcomes: %d\n", arb.NumOutcomes)
	fmt.Fprintf(&b, "YES Sum: %.1f%% (%+.1f%%)\n", arb.YesSum*100, arb.Deviation*100)
	fmt.Fprintf(&b, "Strategy: %s\n", arb.Strategy)
	fmt.Fprintf(&b, "Edge: $%.2f per $100\n", arb.ProfitPer100)
	fmt.Fprintf(&b, "Resolves: %s days", daysUntil(arb.CloseTime, now))

	return title, b.String()
}

// FormatOpportunity renders a single-market opportunity alert.
func FormatOpportunity(opp domain.Opportunity) (title, message string) {
	title = "SEER OPPORTUNITY"

	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", truncate(opp.Title, 50))
	fmt.Fprintf(&b, "Platform: %s\n", strings.ToUpper(opp.Platform))
	fmt.Fprintf(&b, "Type: %s (%s)\n", opp.Type, opp.RiskLevel)
	fmt.Fprintf(&b, "Edge: %.2f%% per dollar\n", opp.ProfitPerDollar*100)
	fmt.Fprintf(&b, "Max profit: $%.2f\n", opp.MaxProfit)
	fmt.Fprintf(&b, "Confidence: %.0f%%", opp.Confidence*100)
	if opp.EV != nil {
		fmt.Fprintf(&b, "\nAction: %s", opp.EV.Action)
	}

	return title, b.String()
}

// FormatTradeOpened renders a paper trade entry notification.
func FormatTradeOpened(pos domain.Position) (title, message string) {
	title = "PAPER TRADE OPENED"

	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", truncate(pos.Title, 50))
	fmt.Fprintf(&b, "Platform: %s\n", strings.ToUpper(pos.Platform))
	fmt.Fprintf(&b, "Side: %s\n", pos.Side)
	fmt.Fprintf(&b, "Size: $%.2f @ %.3f", pos.Size, pos.EntryPrice)

	return title, b.String()
}

// FormatTradeResult renders a resolution notification.
func FormatTradeResult(pos domain.Position) (title, message string) {
	if pos.Win {
		title = "PAPER TRADE WON"
	} else {
		title = "PAPER TRADE LOST"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", truncate(pos.Title, 50))
	fmt.Fprintf(&b, "P&L: %+.2f\n", pos.PnL)
	fmt.Fprintf(&b, "Size: $%.2f, entry %.3f, exit %.3f", pos.Size, pos.EntryPrice, pos.ExitPrice)

	return title, b.String()
}

// FormatKillSwitch renders a kill-switch activation alert.
func FormatKillSwitch(ev domain.KillSwitchEvent) (title, message string) {
	title = "KILL SWITCH ACTIVATED"

	var b strings.Builder
	fmt.Fprintf(&b, "Reason: %s\n", ev.Reason)
	fmt.Fprintf(&b, "Bankroll: $%.2f", ev.Bankroll)
	if ev.DailyLossPct > 0 {
		fmt.Fprintf(&b, "\nDaily loss: %.1f%%", ev.DailyLossPct*100)
	}

	return title, b.String()
}

// FormatHeartbeat renders the periodic still-alive summary.
func FormatHeartbeat(snap domain.MetricsSnapshot, scans int) (title, message string) {
	title = "SEER HEARTBEAT"

	var b strings.Builder
	fmt.Fprintf(&b, "Bankroll: $%.2f\n", snap.Bankroll)
	fmt.Fprintf(&b, "Daily P&L: %+.2f\n", snap.DailyPnL)
	fmt.Fprintf(&b, "Open positions: %d\n", snap.OpenPositions)
	fmt.Fprintf(&b, "Win rate: %.1f%%\n", snap.WinRate*100)
	fmt.Fprintf(&b, "Scans completed: %d", scans)

	return title, b.String()
}
