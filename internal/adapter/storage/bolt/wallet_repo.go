package bolt

import (
	"bytes"
	"context"
	"fmt"

	"zold-node/internal/core/domain"
	"zold-node/internal/core/ports"

	bbolt "go.etcd.io/bbolt"
)

// WalletRepo implements ports.WalletRepository on a bbolt file. Each wallet
// is one key in the wallets bucket holding its serialized document.
type WalletRepo struct {
	db *bbolt.DB
}

// NewWalletRepo creates a new WalletRepo.
func NewWalletRepo(db *bbolt.DB) *WalletRepo {
	return &WalletRepo{db: db}
}

// Get returns the stored wallet, or nil when unknown.
func (r *WalletRepo) Get(ctx context.Context, id domain.Id) (*domain.Wallet, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var data []byte
	err := r.db.View(func(tx *bbolt.Tx) error {
		// Values are only valid inside the transaction.
		data = bytes.Clone(tx.Bucket(walletsBucket).Get(walletKey(id)))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("get wallet %s: %w", id, err)
	}
	if data == nil {
		return nil, nil
	}
	w, err := domain.ParseWallet(data)
	if err != nil {
		return nil, fmt.Errorf("decode stored wallet %s: %w", id, err)
	}
	return w, nil
}

// Update runs fn inside a bolt write transaction. The transaction is rolled
// back when fn fails or ctx is done before commit.
func (r *WalletRepo) Update(ctx context.Context, id domain.Id, fn ports.UpdateFunc) (*domain.Wallet, error) {
	var result *domain.Wallet
	err := r.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(walletsBucket)
		key := walletKey(id)

		var current *domain.Wallet
		if data := b.Get(key); data != nil {
			w, err := domain.ParseWallet(data)
			if err != nil {
				return fmt.Errorf("decode stored wallet %s: %w", id, err)
			}
			current = w
		}

		next, err := fn(current)
		if err != nil {
			return err
		}
		if next == nil {
			result = current
			return nil
		}
		data, err := next.Serialize()
		if err != nil {
			return fmt.Errorf("encode wallet %s: %w", id, err)
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := b.Put(key, data); err != nil {
			return fmt.Errorf("put wallet %s: %w", id, err)
		}
		result = next
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Count returns the number of stored wallets.
func (r *WalletRepo) Count() (int, error) {
	var n int
	err := r.db.View(func(tx *bbolt.Tx) error {
		n = tx.Bucket(walletsBucket).Stats().KeyN
		return nil
	})
	return n, err
}

func walletKey(id domain.Id) []byte {
	return []byte(id.String())
}
