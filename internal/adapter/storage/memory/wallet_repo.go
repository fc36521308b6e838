package memory

import (
	"context"
	"fmt"
	"sync"

	"zold-node/internal/core/domain"
	"zold-node/internal/core/ports"
)

// maxUpdateAttempts bounds optimistic retries when the same wallet is
// written concurrently.
const maxUpdateAttempts = 16

type record struct {
	data    []byte
	version uint64
}

// WalletRepo implements ports.WalletRepository in process memory. Wallets
// are kept in serialized form so callers never share state with storage.
type WalletRepo struct {
	mu      sync.RWMutex
	wallets map[domain.Id]record
}

// NewWalletRepo creates an empty in-memory repository.
func NewWalletRepo() *WalletRepo {
	return &WalletRepo{wallets: make(map[domain.Id]record)}
}

// Get returns a fresh copy of the stored wallet, or nil when unknown.
func (r *WalletRepo) Get(ctx context.Context, id domain.Id) (*domain.Wallet, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	rec, ok := r.load(id)
	if !ok {
		return nil, nil
	}
	w, err := domain.ParseWallet(rec.data)
	if err != nil {
		return nil, fmt.Errorf("decode stored wallet %s: %w", id, err)
	}
	return w, nil
}

// Update runs fn outside the repository lock and commits the result only if
// nobody else wrote the wallet in the meantime; otherwise fn is retried.
func (r *WalletRepo) Update(ctx context.Context, id domain.Id, fn ports.UpdateFunc) (*domain.Wallet, error) {
	for attempt := 0; attempt < maxUpdateAttempts; attempt++ {
		rec, exists := r.load(id)
		var current *domain.Wallet
		if exists {
			w, err := domain.ParseWallet(rec.data)
			if err != nil {
				return nil, fmt.Errorf("decode stored wallet %s: %w", id, err)
			}
			current = w
		}

		next, err := fn(current)
		if err != nil {
			return nil, err
		}
		if next == nil {
			return current, nil
		}
		data, err := next.Serialize()
		if err != nil {
			return nil, fmt.Errorf("encode wallet %s: %w", id, err)
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		r.mu.Lock()
		latest, ok := r.wallets[id]
		if ok != exists || latest.version != rec.version {
			r.mu.Unlock()
			continue
		}
		r.wallets[id] = record{data: data, version: rec.version + 1}
		r.mu.Unlock()
		return next, nil
	}
	return nil, fmt.Errorf("update wallet %s: too much write contention", id)
}

// Len returns the number of stored wallets.
func (r *WalletRepo) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.wallets)
}

func (r *WalletRepo) load(id domain.Id) (record, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rec, ok := r.wallets[id]
	return rec, ok
}
