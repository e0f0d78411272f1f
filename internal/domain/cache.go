package domain

import (
	"context"
	"time"
)

// CooldownStore tracks keys that must not be acted on again until a TTL
// expires. Used for arb re-entry suppression after resolution and for alert
// deduplication.
type CooldownStore interface {
	// Set marks the key as on cooldown for the given duration.
	Set(ctx context.Context, key string, ttl time.Duration) error
	// Active reports whether the key is currently on cooldown.
	Active(ctx context.Context, key string) (bool, error)
}

// QuoteCache holds the latest quote per market for the dashboard and for
// re-scoring between full scans.
type QuoteCache interface {
	SetQuote(ctx context.Context, quote MarketQuote) error
	// GetQuote returns ErrNotFound when no quote is cached for the market.
	GetQuote(ctx context.Context, marketID string) (MarketQuote, error)
}
