package domain

import (
	"time"

	"github.com/google/uuid"
)

// AuditAction represents the type of audited action.
type AuditAction string

const (
	AuditActionPush AuditAction = "PUSH"
	AuditActionPull AuditAction = "PULL"
)

// AuditLog records a single audited request against a wallet.
type AuditLog struct {
	ID        uuid.UUID   `json:"id"`
	WalletID  string      `json:"wallet_id"`
	Action    AuditAction `json:"action"`
	Details   string      `json:"details,omitempty"` // JSON string
	IPAddress string      `json:"ip_address"`
	CreatedAt time.Time   `json:"created_at"`
}
