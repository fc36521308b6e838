package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"zold-node/internal/core/domain"

	goredis "github.com/redis/go-redis/v9"
)

// BalanceCache implements ports.BalanceCache using Redis. Balances are
// stored as zents.
type BalanceCache struct {
	client *goredis.Client
	prefix string
}

// NewBalanceCache creates a new Redis-backed balance snapshot cache.
func NewBalanceCache(client *goredis.Client) *BalanceCache {
	return &BalanceCache{
		client: client,
		prefix: keyPrefix + "balance:",
	}
}

// Get returns the cached balance. ok is false when there is no snapshot.
func (c *BalanceCache) Get(ctx context.Context, id domain.Id) (domain.Amount, bool, error) {
	zents, err := c.client.Get(ctx, c.prefix+id.String()).Int64()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return domain.Zero, false, nil
		}
		return domain.Zero, false, fmt.Errorf("redis balance get: %w", err)
	}
	return domain.NewAmount(zents), true, nil
}

// Set stores a balance snapshot with TTL.
func (c *BalanceCache) Set(ctx context.Context, id domain.Id, balance domain.Amount, ttl time.Duration) error {
	err := c.client.Set(ctx, c.prefix+id.String(), balance.Zents(), ttl).Err()
	if err != nil {
		return fmt.Errorf("redis balance set: %w", err)
	}
	return nil
}
