package bolt

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"zold-node/internal/core/domain"
	"zold-node/internal/core/ports"

	bbolt "go.etcd.io/bbolt"
)

type auditRepo struct {
	db *bbolt.DB
}

// NewAuditRepository creates a bolt-backed AuditRepository. Entries are
// keyed by creation time so a cursor walks them in order.
func NewAuditRepository(db *bbolt.DB) ports.AuditRepository {
	return &auditRepo{db: db}
}

func (r *auditRepo) Create(ctx context.Context, log *domain.AuditLog) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := json.Marshal(log)
	if err != nil {
		return fmt.Errorf("encode audit log: %w", err)
	}
	key := []byte(log.CreatedAt.UTC().Format(time.RFC3339Nano) + "/" + log.ID.String())
	return r.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(auditBucket).Put(key, data)
	})
}
