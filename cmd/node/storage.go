package main

import (
	"context"
	"fmt"

	"zold-node/config"
	boltStorage "zold-node/internal/adapter/storage/bolt"
	"zold-node/internal/adapter/storage/memory"
	pgStorage "zold-node/internal/adapter/storage/postgres"
	"zold-node/internal/core/ports"

	"github.com/rs/zerolog"
)

// storage is the wallet store selected by storage.driver, with whatever
// else the driver provides.
type storage struct {
	wallets ports.WalletRepository
	audit   ports.AuditRepository // nil for the memory driver
	health  []ports.HealthChecker
	close   func()
}

func openStorage(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*storage, error) {
	switch cfg.Storage.Driver {
	case config.DriverMemory:
		log.Warn().Msg("Using in-memory storage, wallets are lost on restart")
		return &storage{wallets: memory.NewWalletRepo(), close: func() {}}, nil

	case config.DriverBolt:
		db, err := boltStorage.Open(cfg.Storage.BoltPath, log)
		if err != nil {
			return nil, err
		}
		return &storage{
			wallets: boltStorage.NewWalletRepo(db),
			audit:   boltStorage.NewAuditRepository(db),
			health:  []ports.HealthChecker{boltStorage.NewHealthCheck(db)},
			close: func() {
				if err := db.Close(); err != nil {
					log.Error().Err(err).Msg("Failed to close bolt database")
				}
			},
		}, nil

	case config.DriverPostgres:
		pool, err := pgStorage.NewPool(ctx, cfg.Database, log)
		if err != nil {
			return nil, err
		}
		return &storage{
			wallets: pgStorage.NewWalletRepo(pool),
			audit:   pgStorage.NewAuditRepository(pool),
			health:  []ports.HealthChecker{pgStorage.NewHealthCheck(pool)},
			close:   pool.Close,
		}, nil
	}
	return nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
}
