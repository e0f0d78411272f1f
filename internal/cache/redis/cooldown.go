package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/seerscan/seer/internal/domain"
)

// CooldownStore implements domain.CooldownStore using Redis keys with TTLs.
// Arb re-entry suppression and alert deduplication both ride on it: the key
// exists while the cooldown is active and expires on its own.
type CooldownStore struct {
	rdb *redis.Client
}

// NewCooldownStore creates a CooldownStore backed by the given Client.
func NewCooldownStore(c *Client) *CooldownStore {
	return &CooldownStore{rdb: c.Underlying()}
}

func cooldownKey(key string) string {
	return "cooldown:" + key
}

// Set marks the key as on cooldown for the given duration.
func (cs *CooldownStore) Set(ctx context.Context, key string, ttl time.Duration) error {
	if err := cs.rdb.Set(ctx, cooldownKey(key), "1", ttl).Err(); err != nil {
		return fmt.Errorf("redis: set cooldown %s: %w", key, err)
	}
	return nil
}

// Active reports whether the key is currently on cooldown.
func (cs *CooldownStore) Active(ctx context.Context, key string) (bool, error) {
	n, err := cs.rdb.Exists(ctx, cooldownKey(key)).Result()
	if err != nil {
		return false, fmt.Errorf("redis: check cooldown %s: %w", key, err)
	}
	return n > 0, nil
}

// Compile-time interface check.
var _ domain.CooldownStore = (*CooldownStore)(nil)
