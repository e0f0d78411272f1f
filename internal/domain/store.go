package domain

import (
	"context"
	"time"
)

// ListOpts carries standard pagination parameters.
type ListOpts struct {
	Limit  int
	Offset int
}

// OpportunityStore persists detected opportunities.
type OpportunityStore interface {
	Insert(ctx context.Context, opp Opportunity) error
	ListRecent(ctx context.Context, opts ListOpts) ([]Opportunity, error)
	// ListBefore returns opportunities detected strictly before the cutoff,
	// for archival.
	ListBefore(ctx context.Context, before time.Time) ([]Opportunity, error)
	DeleteBefore(ctx context.Context, before time.Time) (int64, error)
}

// PaperTradeStore persists simulated positions.
type PaperTradeStore interface {
	Insert(ctx context.Context, pos Position) error
	ListOpen(ctx context.Context) ([]Position, error)
	ListClosed(ctx context.Context, opts ListOpts) ([]Position, error)
	// UpdateResult closes the most recent open trade for the market and
	// records exit price, P&L, and win flag. Returns ErrNotFound when no open
	// trade exists.
	UpdateResult(ctx context.Context, marketID string, pos Position) error
	PerformanceStats(ctx context.Context) (PerformanceStats, error)
	// ListClosedBefore returns closed trades resolved strictly before the
	// cutoff, for archival.
	ListClosedBefore(ctx context.Context, before time.Time) ([]Position, error)
	DeleteClosedBefore(ctx context.Context, before time.Time) (int64, error)
}

// MetricsStore persists periodic scanner snapshots.
type MetricsStore interface {
	Insert(ctx context.Context, snap MetricsSnapshot) error
	ListRecent(ctx context.Context, limit int) ([]MetricsSnapshot, error)
}

// KillSwitchStore records kill-switch activations.
type KillSwitchStore interface {
	Insert(ctx context.Context, ev KillSwitchEvent) error
	ListRecent(ctx context.Context, limit int) ([]KillSwitchEvent, error)
}
