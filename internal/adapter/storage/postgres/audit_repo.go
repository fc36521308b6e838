package postgres

import (
	"context"

	"zold-node/internal/core/domain"
	"zold-node/internal/core/ports"
)

type auditRepo struct {
	pool Pool
}

// NewAuditRepository creates a PostgreSQL-backed AuditRepository.
func NewAuditRepository(pool Pool) ports.AuditRepository {
	return &auditRepo{pool: pool}
}

func (r *auditRepo) Create(ctx context.Context, log *domain.AuditLog) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO audit_logs (id, wallet_id, action, details, ip_address, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		log.ID, log.WalletID, string(log.Action), log.Details, log.IPAddress, log.CreatedAt,
	)
	return err
}
