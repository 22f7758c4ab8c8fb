package promotion

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/quantops/modellab/internal/contracts"
)

// Repository implements contracts.ModelRepository on PostgreSQL. Metrics
// and version rows are insert-only except for the is_active flag, which
// Activate flips inside a single transaction.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new model repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// SaveMetrics records candidate metrics. Rows are never deleted.
func (r *Repository) SaveMetrics(ctx context.Context, m *contracts.ModelMetrics) error {
	query := `
		INSERT INTO model_metrics
			(model_id, mode, auc, precision_at_3, hit_rate, avg_daily_return,
			 sharpe_ratio, max_drawdown, training_samples, validation_samples,
			 created_at, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, FALSE)
	`
	_, err := r.pool.Exec(ctx, query,
		m.ModelID, string(m.Mode), m.AUC, m.PrecisionAt3, m.HitRate,
		m.AvgDailyReturn, m.SharpeRatio, m.MaxDrawdown,
		m.TrainingSamples, m.ValidationSamples, m.CreatedAt,
	)
	return err
}

// SaveVersion records where an artifact lives.
func (r *Repository) SaveVersion(ctx context.Context, v *contracts.ModelVersion) error {
	featuresJSON, err := json.Marshal(v.FeatureNames)
	if err != nil {
		return fmt.Errorf("marshal feature names: %w", err)
	}

	query := `
		INSERT INTO model_versions
			(model_id, mode, artifact_path, format, feature_names, created_at, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, FALSE)
	`
	_, err = r.pool.Exec(ctx, query,
		v.ModelID, string(v.Mode), v.ArtifactPath, v.Format, featuresJSON, v.CreatedAt,
	)
	return err
}

// ActiveMetrics returns the metrics of the active model for a mode, or
// (nil, nil) when no model is active.
func (r *Repository) ActiveMetrics(ctx context.Context, mode contracts.Mode) (*contracts.ModelMetrics, error) {
	query := `
		SELECT model_id, mode, auc, precision_at_3, hit_rate, avg_daily_return,
		       sharpe_ratio, max_drawdown, training_samples, validation_samples,
		       created_at, is_active
		FROM model_metrics
		WHERE mode = $1 AND is_active = TRUE
	`

	var m contracts.ModelMetrics
	var modeStr string
	err := r.pool.QueryRow(ctx, query, string(mode)).Scan(
		&m.ModelID, &modeStr, &m.AUC, &m.PrecisionAt3, &m.HitRate,
		&m.AvgDailyReturn, &m.SharpeRatio, &m.MaxDrawdown,
		&m.TrainingSamples, &m.ValidationSamples, &m.CreatedAt, &m.IsActive,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	m.Mode = contracts.Mode(modeStr)
	return &m, nil
}

// ActiveVersion returns the active version for a mode, or (nil, nil).
func (r *Repository) ActiveVersion(ctx context.Context, mode contracts.Mode) (*contracts.ModelVersion, error) {
	query := `
		SELECT model_id, mode, artifact_path, format, feature_names, created_at, is_active
		FROM model_versions
		WHERE mode = $1 AND is_active = TRUE
	`

	var v contracts.ModelVersion
	var modeStr string
	var featuresJSON []byte
	err := r.pool.QueryRow(ctx, query, string(mode)).Scan(
		&v.ModelID, &modeStr, &v.ArtifactPath, &v.Format, &featuresJSON, &v.CreatedAt, &v.IsActive,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	v.Mode = contracts.Mode(modeStr)
	if err := json.Unmarshal(featuresJSON, &v.FeatureNames); err != nil {
		return nil, fmt.Errorf("unmarshal feature names: %w", err)
	}
	return &v, nil
}

// Activate deactivates the current active rows for the mode and marks the
// given model active, in one transaction across both tables. A concurrent
// reader sees either the old model active or the new one, never zero or
// two.
func (r *Repository) Activate(ctx context.Context, mode contracts.Mode, modelID string) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin activation tx: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, table := range []string{"model_metrics", "model_versions"} {
		if _, err := tx.Exec(ctx,
			fmt.Sprintf(`UPDATE %s SET is_active = FALSE WHERE mode = $1 AND is_active = TRUE`, table),
			string(mode),
		); err != nil {
			return fmt.Errorf("deactivate %s: %w", table, err)
		}

		tag, err := tx.Exec(ctx,
			fmt.Sprintf(`UPDATE %s SET is_active = TRUE WHERE mode = $1 AND model_id = $2`, table),
			string(mode), modelID,
		)
		if err != nil {
			return fmt.Errorf("activate %s: %w", table, err)
		}
		if tag.RowsAffected() == 0 {
			return fmt.Errorf("model %s not found in %s", modelID, table)
		}
	}

	return tx.Commit(ctx)
}
