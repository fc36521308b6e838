package client

import (
	"context"
	"net/http/httptest"
	"testing"

	"zold-node/internal/adapter/http/handler"
	"zold-node/internal/adapter/storage/memory"
	"zold-node/internal/core/domain"
	"zold-node/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_AgainstNode(t *testing.T) {
	gin.SetMode(gin.TestMode)
	ledger := service.NewLedgerService(memory.NewWalletRepo(), nil, nil, nil, service.LedgerConfig{}, zerolog.Nop())
	server := httptest.NewServer(handler.SetupRouter(handler.RouterDeps{
		Ledger:  ledger,
		Version: "9.9.9",
		Logger:  zerolog.Nop(),
	}))
	defer server.Close()

	ctx := context.Background()
	client := NewClient(server.URL, server.Client(), zerolog.Nop())

	version, err := client.Version(ctx)
	require.NoError(t, err)
	assert.Equal(t, "9.9.9", version)

	rootKey, err := domain.GenerateKey()
	require.NoError(t, err)
	root := domain.NewWallet()
	require.NoError(t, root.Init(domain.Root, rootKey))
	payee := testWallet(t, "000000000000cafe")

	_, err = client.Pull(ctx, payee.ID())
	assert.ErrorIs(t, err, ErrNotFound)

	debit, err := root.Debit(domain.MustParseZLD("3"), payee.Invoice(), rootKey, "")
	require.NoError(t, err)
	_, err = client.Push(ctx, root)
	require.NoError(t, err)

	require.NoError(t, payee.Append(debit.Mirror(root.ID()), domain.Ledgers{root.ID(): root}))
	result, err := client.Push(ctx, payee)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Accepted)

	balance, err := client.Balance(ctx, payee.ID())
	require.NoError(t, err)
	assert.Equal(t, domain.MustParseZLD("3"), balance)

	pulled, err := client.Pull(ctx, root.ID())
	require.NoError(t, err)
	assert.Equal(t, domain.MustParseZLD("-3"), pulled.Balance())
}
