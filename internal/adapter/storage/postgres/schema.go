package postgres

import (
	"context"
	"fmt"
)

const schema = `
CREATE TABLE IF NOT EXISTS wallets (
	id          CHAR(16)    PRIMARY KEY,
	public_key  TEXT        NOT NULL,
	body        BYTEA       NOT NULL,
	balance     BIGINT      NOT NULL,
	txn_count   INTEGER     NOT NULL,
	created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS audit_logs (
	id          UUID        PRIMARY KEY,
	wallet_id   CHAR(16)    NOT NULL,
	action      TEXT        NOT NULL,
	details     TEXT        NOT NULL DEFAULT '',
	ip_address  TEXT        NOT NULL,
	created_at  TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS audit_logs_wallet_id_idx ON audit_logs (wallet_id, created_at);
`

// Migrate creates the tables the node needs if they do not exist yet.
func Migrate(ctx context.Context, pool Pool) error {
	if _, err := pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("applying schema: %w", err)
	}
	return nil
}
