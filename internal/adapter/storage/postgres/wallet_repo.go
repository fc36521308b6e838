package postgres

import (
	"context"
	"errors"
	"fmt"

	"zold-node/internal/core/domain"
	"zold-node/internal/core/ports"

	"github.com/jackc/pgx/v5"
)

// WalletRepo implements ports.WalletRepository.
type WalletRepo struct {
	pool Pool
}

// NewWalletRepo creates a new WalletRepo.
func NewWalletRepo(pool Pool) *WalletRepo {
	return &WalletRepo{pool: pool}
}

// Get fetches a wallet by id (without locking).
func (r *WalletRepo) Get(ctx context.Context, id domain.Id) (*domain.Wallet, error) {
	query := `SELECT body FROM wallets WHERE id = $1`

	var body []byte
	err := r.pool.QueryRow(ctx, query, id.String()).Scan(&body)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get wallet: %w", err)
	}
	w, err := domain.ParseWallet(body)
	if err != nil {
		return nil, fmt.Errorf("decode stored wallet %s: %w", id, err)
	}
	return w, nil
}

// Update takes a transaction-scoped advisory lock on the wallet id, locks the
// row with SELECT ... FOR UPDATE, runs fn and upserts the result in the same
// transaction. The advisory lock also covers wallets that have no row yet, so
// two nodes creating the same wallet serialize instead of overwriting each
// other.
func (r *WalletRepo) Update(ctx context.Context, id domain.Id, fn ports.UpdateFunc) (*domain.Wallet, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}

	current, next, err := r.update(ctx, tx, id, fn)
	if err != nil || next == nil {
		_ = tx.Rollback(context.WithoutCancel(ctx))
		if err != nil {
			return nil, err
		}
		return current, nil
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit wallet %s: %w", id, err)
	}
	return next, nil
}

func (r *WalletRepo) update(ctx context.Context, tx pgx.Tx, id domain.Id, fn ports.UpdateFunc) (current, next *domain.Wallet, err error) {
	if _, err := tx.Exec(ctx, lockWalletQuery, advisoryKey(id)); err != nil {
		return nil, nil, fmt.Errorf("lock wallet %s: %w", id, err)
	}
	current, err = r.getForUpdate(ctx, tx, id)
	if err != nil {
		return nil, nil, err
	}

	next, err = fn(current)
	if err != nil || next == nil {
		return current, nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	body, err := next.Serialize()
	if err != nil {
		return nil, nil, fmt.Errorf("encode wallet %s: %w", id, err)
	}
	key, err := next.Key().MarshalPublic()
	if err != nil {
		return nil, nil, fmt.Errorf("encode key of %s: %w", id, err)
	}

	query := `INSERT INTO wallets (id, public_key, body, balance, txn_count, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		ON CONFLICT (id) DO UPDATE
		SET body = EXCLUDED.body, balance = EXCLUDED.balance,
		    txn_count = EXCLUDED.txn_count, updated_at = NOW()`

	if _, err := tx.Exec(ctx, query, id.String(), key, body, next.Balance().Zents(), next.Len()); err != nil {
		return nil, nil, fmt.Errorf("upsert wallet: %w", err)
	}
	return current, next, nil
}

const lockWalletQuery = `SELECT pg_advisory_xact_lock($1)`

// advisoryKey maps a wallet id onto the bigint advisory lock space.
func advisoryKey(id domain.Id) int64 {
	return int64(id)
}

// getForUpdate fetches a wallet with pessimistic locking.
// This MUST be called within a transaction.
func (r *WalletRepo) getForUpdate(ctx context.Context, tx pgx.Tx, id domain.Id) (*domain.Wallet, error) {
	query := `SELECT body FROM wallets WHERE id = $1 FOR UPDATE`

	var body []byte
	err := tx.QueryRow(ctx, query, id.String()).Scan(&body)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get wallet for update: %w", err)
	}
	w, err := domain.ParseWallet(body)
	if err != nil {
		return nil, fmt.Errorf("decode stored wallet %s: %w", id, err)
	}
	return w, nil
}
