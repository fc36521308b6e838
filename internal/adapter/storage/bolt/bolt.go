package bolt

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	bbolt "go.etcd.io/bbolt"
)

var (
	walletsBucket = []byte("wallets")
	auditBucket   = []byte("audit_logs")
)

// Open opens (or creates) the wallet database file and makes sure the
// buckets exist.
func Open(path string, log zerolog.Logger) (*bbolt.DB, error) {
	db, err := bbolt.Open(path, 0o600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("opening bolt database %s: %w", path, err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		for _, name := range [][]byte{walletsBucket, auditBucket} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return fmt.Errorf("creating bucket %s: %w", name, err)
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	log.Info().Str("path", path).Msg("Bolt wallet store opened")
	return db, nil
}

// HealthCheck implements ports.HealthChecker for the bolt store.
type HealthCheck struct {
	db *bbolt.DB
}

// NewHealthCheck creates a bolt health checker.
func NewHealthCheck(db *bbolt.DB) *HealthCheck {
	return &HealthCheck{db: db}
}

// Ping checks that the database is open and readable.
func (h *HealthCheck) Ping(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return h.db.View(func(tx *bbolt.Tx) error {
		if tx.Bucket(walletsBucket) == nil {
			return fmt.Errorf("bucket %s is missing", walletsBucket)
		}
		return nil
	})
}

// Name returns the dependency name.
func (h *HealthCheck) Name() string {
	return "bolt"
}
