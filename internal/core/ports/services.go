package ports

import (
	"context"
	"time"

	"zold-node/internal/core/domain"
)

// BalanceCache keeps balance snapshots for lock-free reads.
type BalanceCache interface {
	// Get returns the cached balance and whether it was present.
	Get(ctx context.Context, id domain.Id) (domain.Amount, bool, error)
	Set(ctx context.Context, id domain.Id, balance domain.Amount, ttl time.Duration) error
}

// PushDigestCache remembers digests of wallet bodies that were already merged.
type PushDigestCache interface {
	Seen(ctx context.Context, id domain.Id, digest string) (bool, error)
	Remember(ctx context.Context, id domain.Id, digest string, ttl time.Duration) error
}

// RateLimiter counts events per key inside a fixed window.
type RateLimiter interface {
	Allow(ctx context.Context, key string, limit int64, window time.Duration) (*RateLimitResult, error)
}

// RateLimitResult holds the outcome of a rate limit check.
type RateLimitResult struct {
	Allowed   bool
	Limit     int64
	Remaining int64
	ResetAt   int64 // Unix timestamp
}

// --- Service Ports (Business Logic) ---

// LedgerService is the node's wallet API: pull, push and balance.
type LedgerService interface {
	Pull(ctx context.Context, id domain.Id) (*domain.Wallet, error)
	Push(ctx context.Context, id domain.Id, body []byte) (*PushResult, error)
	Balance(ctx context.Context, id domain.Id) (domain.Amount, error)
}

// PushResult describes what a push did to the stored wallet.
type PushResult struct {
	Wallet    *domain.Wallet
	Accepted  int
	Rejected  int
	Unchanged bool
}

// AuditService records audited actions.
type AuditService interface {
	Log(ctx context.Context, entry *domain.AuditLog)
}
