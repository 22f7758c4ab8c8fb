package promotion

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Schema holds the DDL for model metrics and versions. At most one row
// per mode carries is_active = TRUE in each table; Activate flips the
// flag transactionally.
const Schema = `
CREATE TABLE IF NOT EXISTS model_metrics (
	id BIGSERIAL PRIMARY KEY,
	model_id TEXT NOT NULL,
	mode TEXT NOT NULL,
	auc DOUBLE PRECISION NOT NULL,
	precision_at_3 DOUBLE PRECISION NOT NULL,
	hit_rate DOUBLE PRECISION NOT NULL,
	avg_daily_return DOUBLE PRECISION NOT NULL,
	sharpe_ratio DOUBLE PRECISION NOT NULL,
	max_drawdown DOUBLE PRECISION NOT NULL,
	training_samples INTEGER NOT NULL,
	validation_samples INTEGER NOT NULL,
	created_at TIMESTAMPTZ NOT NULL,
	is_active BOOLEAN NOT NULL DEFAULT FALSE,
	UNIQUE (mode, model_id)
);

CREATE INDEX IF NOT EXISTS idx_model_metrics_active
	ON model_metrics (mode) WHERE is_active;

CREATE TABLE IF NOT EXISTS model_versions (
	id BIGSERIAL PRIMARY KEY,
	model_id TEXT NOT NULL,
	mode TEXT NOT NULL,
	artifact_path TEXT NOT NULL,
	format TEXT NOT NULL,
	feature_names JSONB NOT NULL DEFAULT '[]',
	created_at TIMESTAMPTZ NOT NULL,
	is_active BOOLEAN NOT NULL DEFAULT FALSE,
	UNIQUE (mode, model_id)
);

CREATE INDEX IF NOT EXISTS idx_model_versions_active
	ON model_versions (mode) WHERE is_active;
`

// EnsureSchema creates the model tables and indexes if they do not exist.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, Schema)
	return err
}
