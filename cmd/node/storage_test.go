package main

import (
	"context"
	"path/filepath"
	"testing"

	"zold-node/config"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenStorage_Memory(t *testing.T) {
	cfg := &config.Config{Storage: config.StorageConfig{Driver: config.DriverMemory}}

	store, err := openStorage(context.Background(), cfg, zerolog.Nop())
	require.NoError(t, err)
	defer store.close()

	assert.NotNil(t, store.wallets)
	assert.Nil(t, store.audit)
	assert.Empty(t, store.health)
}

func TestOpenStorage_Bolt(t *testing.T) {
	cfg := &config.Config{Storage: config.StorageConfig{
		Driver:   config.DriverBolt,
		BoltPath: filepath.Join(t.TempDir(), "wallets.db"),
	}}

	store, err := openStorage(context.Background(), cfg, zerolog.Nop())
	require.NoError(t, err)
	defer store.close()

	assert.NotNil(t, store.wallets)
	assert.NotNil(t, store.audit)
	require.Len(t, store.health, 1)
	assert.Equal(t, "bolt", store.health[0].Name())
	assert.NoError(t, store.health[0].Ping(context.Background()))
}

func TestOpenStorage_UnknownDriver(t *testing.T) {
	cfg := &config.Config{Storage: config.StorageConfig{Driver: "floppy"}}

	_, err := openStorage(context.Background(), cfg, zerolog.Nop())
	assert.Error(t, err)
}
