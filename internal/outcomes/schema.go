package outcomes

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Schema holds the DDL for the outcome log. Append-only; rows carry the
// decision timestamp separately from entry/exit times so queries can
// window on when the signal fired.
const Schema = `
CREATE TABLE IF NOT EXISTS trading_outcomes (
	id BIGSERIAL PRIMARY KEY,
	symbol TEXT NOT NULL,
	side TEXT NOT NULL,
	entry_price DOUBLE PRECISION NOT NULL,
	exit_price DOUBLE PRECISION NOT NULL,
	entry_time TIMESTAMPTZ NOT NULL,
	exit_time TIMESTAMPTZ NOT NULL,
	mode TEXT NOT NULL,
	outcome TEXT NOT NULL,
	features JSONB NOT NULL DEFAULT '{}',
	score DOUBLE PRECISION NOT NULL DEFAULT 0,
	decided_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_trading_outcomes_mode_decided
	ON trading_outcomes (mode, decided_at);
`

// EnsureSchema creates the outcome table and index if they do not exist.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, Schema)
	return err
}
