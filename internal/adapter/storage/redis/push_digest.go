package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"zold-node/internal/core/domain"

	goredis "github.com/redis/go-redis/v9"
)

// PushDigestCache implements ports.PushDigestCache. Each wallet keeps a set
// of body digests that were already merged.
type PushDigestCache struct {
	client *goredis.Client
	prefix string
}

// NewPushDigestCache creates a new Redis-backed push digest cache.
func NewPushDigestCache(client *goredis.Client) *PushDigestCache {
	return &PushDigestCache{
		client: client,
		prefix: keyPrefix + "digest:",
	}
}

// Seen reports whether digest was remembered for the wallet.
func (c *PushDigestCache) Seen(ctx context.Context, id domain.Id, digest string) (bool, error) {
	err := c.client.Get(ctx, c.key(id, digest)).Err()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return false, nil
		}
		return false, fmt.Errorf("redis digest check: %w", err)
	}
	return true, nil
}

// Remember records digest for the wallet until ttl passes.
func (c *PushDigestCache) Remember(ctx context.Context, id domain.Id, digest string, ttl time.Duration) error {
	_, err := c.client.SetArgs(ctx, c.key(id, digest), 1, goredis.SetArgs{
		Mode: "NX",
		TTL:  ttl,
	}).Result()
	if err != nil && !errors.Is(err, goredis.Nil) {
		return fmt.Errorf("redis digest remember: %w", err)
	}
	return nil
}

func (c *PushDigestCache) key(id domain.Id, digest string) string {
	return c.prefix + id.String() + ":" + digest
}
