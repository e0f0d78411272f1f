package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/seerscan/seer/internal/domain"
)

// QuoteCache implements domain.QuoteCache using Redis. Each quote is stored
// as JSON at key "quote:{marketID}" with a TTL so stale quotes expire
// between scan cycles.
type QuoteCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewQuoteCache creates a QuoteCache backed by the given Client. ttl bounds
// quote staleness; zero means 5 minutes.
func NewQuoteCache(c *Client, ttl time.Duration) *QuoteCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &QuoteCache{rdb: c.Underlying(), ttl: ttl}
}

func quoteKey(marketID string) string {
	return "quote:" + marketID
}

// SetQuote stores the latest quote for a market.
func (qc *QuoteCache) SetQuote(ctx context.Context, quote domain.MarketQuote) error {
	data, err := json.Marshal(quote)
	if err != nil {
		return fmt.Errorf("redis: marshal quote %s: %w", quote.ID, err)
	}
	if err := qc.rdb.Set(ctx, quoteKey(quote.ID), data, qc.ttl).Err(); err != nil {
		return fmt.Errorf("redis: set quote %s: %w", quote.ID, err)
	}
	return nil
}

// GetQuote retrieves the cached quote for a market. It returns
// domain.ErrNotFound when no quote is cached.
func (qc *QuoteCache) GetQuote(ctx context.Context, marketID string) (domain.MarketQuote, error) {
	data, err := qc.rdb.Get(ctx, quoteKey(marketID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.MarketQuote{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.MarketQuote{}, fmt.Errorf("redis: get quote %s: %w", marketID, err)
	}

	var quote domain.MarketQuote
	if err := json.Unmarshal(data, &quote); err != nil {
		return domain.MarketQuote{}, fmt.Errorf("redis: unmarshal quote %s: %w", marketID, err)
	}
	return quote, nil
}

// Compile-time interface check.
var _ domain.QuoteCache = (*QuoteCache)(nil)
