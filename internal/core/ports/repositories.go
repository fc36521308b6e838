package ports

import (
	"context"

	"zold-node/internal/core/domain"
)

// UpdateFunc receives the stored wallet (nil when absent) and returns the
// wallet to persist. Returning a nil wallet leaves storage untouched; an
// error aborts the update.
type UpdateFunc func(current *domain.Wallet) (*domain.Wallet, error)

// WalletRepository persists serialized wallets keyed by Id.
type WalletRepository interface {
	// Get returns the stored wallet, or nil and no error when it is unknown.
	Get(ctx context.Context, id domain.Id) (*domain.Wallet, error)
	// Update runs fn against the stored wallet and persists the result
	// atomically. It returns the wallet as stored after the call.
	Update(ctx context.Context, id domain.Id, fn UpdateFunc) (*domain.Wallet, error)
}

// AuditRepository stores audit entries.
type AuditRepository interface {
	Create(ctx context.Context, log *domain.AuditLog) error
}
