package contracts

import (
	"context"
	"time"
)

// OutcomeRepository is the append-only store of realized trade outcomes.
// Append never mutates a prior record.
type OutcomeRepository interface {
	Append(ctx context.Context, outcome *TradingOutcome) error
	// Query returns outcomes for a mode since the given time, ascending
	// by decision timestamp.
	Query(ctx context.Context, mode Mode, since time.Time) ([]*TradingOutcome, error)
	Count(ctx context.Context) (int64, error)
	CountSince(ctx context.Context, mode Mode, since time.Time) (int64, error)
}

// ModelRepository backs the metrics and versions tables. Rows are never
// deleted; past candidates remain as an audit trail.
type ModelRepository interface {
	SaveMetrics(ctx context.Context, m *ModelMetrics) error
	SaveVersion(ctx context.Context, v *ModelVersion) error
	// ActiveMetrics returns the metrics of the active model for a mode,
	// or (nil, nil) when no model is active.
	ActiveMetrics(ctx context.Context, mode Mode) (*ModelMetrics, error)
	// ActiveVersion returns the active version for a mode, or (nil, nil).
	ActiveVersion(ctx context.Context, mode Mode) (*ModelVersion, error)
	// Activate deactivates the current active rows for the mode and
	// activates the given model in one transactional step.
	Activate(ctx context.Context, mode Mode, modelID string) error
}
