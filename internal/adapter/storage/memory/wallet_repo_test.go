package memory

import (
	"context"
	"errors"
	"sync"
	"testing"

	"zold-node/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newWallet(t *testing.T, id domain.Id) (*domain.Wallet, *domain.Key) {
	t.Helper()
	key, err := domain.GenerateKey()
	require.NoError(t, err)
	w := domain.NewWallet()
	require.NoError(t, w.Init(id, key))
	return w, key
}

func TestWalletRepo_GetUnknown(t *testing.T) {
	repo := NewWalletRepo()

	w, err := repo.Get(context.Background(), domain.MustParseId("ffffeeeeddddcccc"))
	require.NoError(t, err)
	assert.Nil(t, w)
}

func TestWalletRepo_UpdateCreatesAndReturnsCopies(t *testing.T) {
	repo := NewWalletRepo()
	ctx := context.Background()
	w, key := newWallet(t, domain.Root)

	stored, err := repo.Update(ctx, domain.Root, func(current *domain.Wallet) (*domain.Wallet, error) {
		assert.Nil(t, current)
		return w, nil
	})
	require.NoError(t, err)
	assert.Equal(t, domain.Root, stored.ID())
	assert.Equal(t, 1, repo.Len())

	got, err := repo.Get(ctx, domain.Root)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.True(t, got.Key().Equal(key))

	// Mutating the returned copy does not touch storage.
	b, _ := newWallet(t, domain.NewId())
	_, err = got.Debit(domain.MustParseZLD("1"), b.Invoice(), key, "")
	require.NoError(t, err)

	again, err := repo.Get(ctx, domain.Root)
	require.NoError(t, err)
	assert.Equal(t, 0, again.Len())
}

func TestWalletRepo_UpdateNilLeavesStorage(t *testing.T) {
	repo := NewWalletRepo()
	ctx := context.Background()
	w, _ := newWallet(t, domain.NewId())

	_, err := repo.Update(ctx, w.ID(), func(*domain.Wallet) (*domain.Wallet, error) { return nil, nil })
	require.NoError(t, err)
	assert.Equal(t, 0, repo.Len())

	_, err = repo.Update(ctx, w.ID(), func(*domain.Wallet) (*domain.Wallet, error) { return w, nil })
	require.NoError(t, err)

	current, err := repo.Update(ctx, w.ID(), func(*domain.Wallet) (*domain.Wallet, error) { return nil, nil })
	require.NoError(t, err)
	require.NotNil(t, current)
	assert.Equal(t, w.ID(), current.ID())
}

func TestWalletRepo_UpdateErrorAborts(t *testing.T) {
	repo := NewWalletRepo()
	boom := errors.New("boom")
	w, _ := newWallet(t, domain.NewId())

	_, err := repo.Update(context.Background(), w.ID(), func(*domain.Wallet) (*domain.Wallet, error) {
		return w, boom
	})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 0, repo.Len())
}

func TestWalletRepo_CanceledContextDoesNotCommit(t *testing.T) {
	repo := NewWalletRepo()
	w, _ := newWallet(t, domain.NewId())

	ctx, cancel := context.WithCancel(context.Background())
	_, err := repo.Update(ctx, w.ID(), func(*domain.Wallet) (*domain.Wallet, error) {
		cancel()
		return w, nil
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, repo.Len())
}

func TestWalletRepo_ConcurrentUpdatesAreNotLost(t *testing.T) {
	repo := NewWalletRepo()
	ctx := context.Background()
	root, rootKey := newWallet(t, domain.Root)
	_, err := repo.Update(ctx, domain.Root, func(*domain.Wallet) (*domain.Wallet, error) { return root, nil })
	require.NoError(t, err)

	b, _ := newWallet(t, domain.NewId())
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := repo.Update(ctx, domain.Root, func(current *domain.Wallet) (*domain.Wallet, error) {
				if _, err := current.Debit(domain.MustParseZLD("1"), b.Invoice(), rootKey, ""); err != nil {
					return nil, err
				}
				return current, nil
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	got, err := repo.Get(ctx, domain.Root)
	require.NoError(t, err)
	assert.Equal(t, 8, got.Len())
	assert.Equal(t, uint64(8), got.MaxDebitSeq())
	assert.Equal(t, domain.MustParseZLD("-8"), got.Balance())
}
