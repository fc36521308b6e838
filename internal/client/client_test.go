package client

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"zold-node/internal/adapter/http/dto"
	"zold-node/internal/core/domain"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testWallet(t *testing.T, id string) *domain.Wallet {
	t.Helper()
	key, err := domain.GenerateKey()
	require.NoError(t, err)
	w := domain.NewWallet()
	require.NoError(t, w.Init(domain.MustParseId(id), key))
	return w
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(dto.ErrorBody{ErrorCode: code, Message: message})
}

func TestPull_Success(t *testing.T) {
	wallet := testWallet(t, "00000000000000aa")
	data, err := wallet.Serialize()
	require.NoError(t, err)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/wallets/00000000000000aa", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write(data)
	}))
	defer server.Close()

	client := NewClient(server.URL+"/", nil, zerolog.Nop())
	got, err := client.Pull(context.Background(), wallet.ID())

	require.NoError(t, err)
	assert.Equal(t, wallet.ID(), got.ID())
	assert.True(t, got.Key().Equal(wallet.Key()))
}

func TestPull_NotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "WAL_001", "wallet ffffeeeeddddcccc not found")
	}))
	defer server.Close()

	client := NewClient(server.URL, nil, zerolog.Nop())
	_, err := client.Pull(context.Background(), domain.MustParseId("ffffeeeeddddcccc"))

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestPull_WrongWallet(t *testing.T) {
	other := testWallet(t, "00000000000000bb")
	data, err := other.Serialize()
	require.NoError(t, err)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(data)
	}))
	defer server.Close()

	client := NewClient(server.URL, nil, zerolog.Nop())
	_, err = client.Pull(context.Background(), domain.MustParseId("00000000000000aa"))

	assert.ErrorIs(t, err, domain.ErrIdentityMismatch)
}

func TestPush_Success(t *testing.T) {
	wallet := testWallet(t, "00000000000000aa")

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/wallets/00000000000000aa", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		data, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		pushed, err := domain.ParseWallet(data)
		require.NoError(t, err)
		assert.Equal(t, wallet.ID(), pushed.ID())

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(dto.Envelope[dto.PushResponse]{
			Data: dto.PushResponse{ID: "00000000000000aa", Accepted: 2, Transactions: 2, Balance: 42},
		})
	}))
	defer server.Close()

	client := NewClient(server.URL, nil, zerolog.Nop())
	result, err := client.Push(context.Background(), wallet)

	require.NoError(t, err)
	assert.Equal(t, 2, result.Accepted)
	assert.Equal(t, int64(42), result.Balance)
}

func TestPush_Conflict(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusConflict, "WAL_003", "Wallet identity does not match")
	}))
	defer server.Close()

	client := NewClient(server.URL, nil, zerolog.Nop())
	_, err := client.Push(context.Background(), testWallet(t, "00000000000000aa"))

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusConflict, apiErr.StatusCode)
	assert.Equal(t, "WAL_003", apiErr.Code)
}

func TestPush_PlainTextError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad gateway", http.StatusBadGateway)
	}))
	defer server.Close()

	client := NewClient(server.URL, nil, zerolog.Nop())
	_, err := client.Push(context.Background(), testWallet(t, "00000000000000aa"))

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadGateway, apiErr.StatusCode)
	assert.Contains(t, apiErr.Error(), "bad gateway")
}

func TestBalance_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/wallets/00000000000000aa/balance", r.URL.Path)
		json.NewEncoder(w).Encode(dto.Envelope[dto.BalanceResponse]{
			Data: dto.BalanceResponse{ID: "00000000000000aa", Balance: 1 << 24, ZLD: "1.00"},
		})
	}))
	defer server.Close()

	client := NewClient(server.URL, nil, zerolog.Nop())
	balance, err := client.Balance(context.Background(), domain.MustParseId("00000000000000aa"))

	require.NoError(t, err)
	assert.Equal(t, domain.MustParseZLD("1"), balance)
}

func TestVersion(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/version", r.URL.Path)
		w.Write([]byte("0.1.0\n"))
	}))
	defer server.Close()

	client := NewClient(server.URL, nil, zerolog.Nop())
	version, err := client.Version(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "0.1.0", version)
}
