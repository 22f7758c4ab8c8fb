package contracts

import "time"

// ModelMetrics holds performance metrics for a trained candidate.
// One row per trained model; kept forever as an audit trail.
type ModelMetrics struct {
	ModelID           string    `json:"model_id"`
	Mode              Mode      `json:"mode"`
	AUC               float64   `json:"auc"`
	PrecisionAt3      float64   `json:"precision_at_3"`
	HitRate           float64   `json:"hit_rate"`
	AvgDailyReturn    float64   `json:"avg_daily_return"`
	SharpeRatio       float64   `json:"sharpe_ratio"`
	MaxDrawdown       float64   `json:"max_drawdown"`
	TrainingSamples   int       `json:"training_samples"`
	ValidationSamples int       `json:"validation_samples"`
	CreatedAt         time.Time `json:"created_at"`
	IsActive          bool      `json:"is_active"`
}

// ModelVersion records where a trained artifact lives and the feature
// schema it was trained on. At most one active version per mode.
type ModelVersion struct {
	ModelID      string    `json:"model_id"`
	Mode         Mode      `json:"mode"`
	ArtifactPath string    `json:"artifact_path"`
	Format       string    `json:"format"` // gob or json
	FeatureNames []string  `json:"feature_names"`
	CreatedAt    time.Time `json:"created_at"`
	IsActive     bool      `json:"is_active"`
}

// TrainStatus classifies the outcome of a training attempt.
type TrainStatus string

const (
	// TrainStatusTrained means a candidate was trained and its metrics
	// recorded.
	TrainStatusTrained TrainStatus = "trained"

	// TrainStatusInsufficientData means there were not enough samples.
	// A normal "no result", not an error.
	TrainStatusInsufficientData TrainStatus = "insufficient_data"

	// TrainStatusBackendUnavailable means the scorer backend is not
	// available; training short-circuited.
	TrainStatusBackendUnavailable TrainStatus = "backend_unavailable"

	// TrainStatusFailed means training hit an internal error. Logged at
	// the operation boundary, never propagated further.
	TrainStatusFailed TrainStatus = "failed"

	// TrainStatusSkipped means retrain conditions were not met.
	TrainStatusSkipped TrainStatus = "skipped"
)

// TrainResult is the typed outcome of a training run.
type TrainResult struct {
	Status   TrainStatus   `json:"status"`
	Metrics  *ModelMetrics `json:"metrics,omitempty"`
	Promoted bool          `json:"promoted"`
	Reason   string        `json:"reason,omitempty"`
}

// Trained wraps metrics into a successful result.
func Trained(m *ModelMetrics) TrainResult {
	return TrainResult{Status: TrainStatusTrained, Metrics: m}
}

// InsufficientData builds the no-result outcome for thin samples.
func InsufficientData(reason string) TrainResult {
	return TrainResult{Status: TrainStatusInsufficientData, Reason: reason}
}

// BackendUnavailable builds the short-circuit outcome.
func BackendUnavailable() TrainResult {
	return TrainResult{Status: TrainStatusBackendUnavailable, Reason: "scorer backend unavailable"}
}
