package training

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/quantops/modellab/internal/contracts"
	"github.com/quantops/modellab/internal/features"
	"github.com/quantops/modellab/internal/outcomes"
	"github.com/quantops/modellab/internal/policy"
)

// Trainer runs the full candidate-training protocol: chronological split,
// fit, calibration, validation metrics, artifact export. It never
// activates a model; that is the promotion gate's job.
type Trainer struct {
	store     *outcomes.Store
	builder   *features.Builder
	models    contracts.ModelRepository
	artifacts *ArtifactStore
	pol       *policy.Policy
	newScorer func() Scorer
	available bool
	log       zerolog.Logger
	now       func() time.Time
}

// NewTrainer wires a trainer. newScorer may be nil, which marks the
// scorer backend unavailable: every Train call then short-circuits and
// serving continues on the last-known active model.
func NewTrainer(
	store *outcomes.Store,
	builder *features.Builder,
	models contracts.ModelRepository,
	artifacts *ArtifactStore,
	pol *policy.Policy,
	newScorer func() Scorer,
	log zerolog.Logger,
) *Trainer {
	return &Trainer{
		store:     store,
		builder:   builder,
		models:    models,
		artifacts: artifacts,
		pol:       pol,
		newScorer: newScorer,
		available: newScorer != nil,
		log:       log.With().Str("component", "training.trainer").Logger(),
		now:       time.Now,
	}
}

// Available reports the scorer-backend capability flag, resolved once at
// construction.
func (t *Trainer) Available() bool {
	return t.available
}

// SetClock overrides the trainer's clock. Used by tests.
func (t *Trainer) SetClock(now func() time.Time) {
	t.now = now
}

// ChronologicalSplit splits a frame by time order: the first (1-ratio)
// fraction of rows is training, the rest validation. Never shuffled, so
// every training timestamp precedes every validation timestamp.
func ChronologicalSplit(frame *features.Frame, ratio float64) (train, val []features.Row) {
	splitIdx := int(float64(frame.Len()) * (1 - ratio))
	return frame.Rows[:splitIdx], frame.Rows[splitIdx:]
}

// Train builds a candidate model for the mode. All failures are caught at
// this boundary and converted into a typed result; nothing propagates to
// the ingestion or scoring paths.
func (t *Trainer) Train(ctx context.Context, mode contracts.Mode) (result contracts.TrainResult) {
	defer func() {
		if r := recover(); r != nil {
			t.log.Error().Interface("panic", r).Str("mode", string(mode)).Msg("training panicked")
			result = contracts.TrainResult{
				Status: contracts.TrainStatusFailed,
				Reason: fmt.Sprintf("panic: %v", r),
			}
		}
	}()

	if !t.available {
		t.log.Warn().Str("mode", string(mode)).Msg("scorer backend unavailable, skipping training")
		return contracts.BackendUnavailable()
	}

	since := t.now().AddDate(0, 0, -t.pol.Training.LookbackDays)
	rows, err := t.store.Query(ctx, mode, since)
	if err != nil {
		t.log.Error().Err(err).Str("mode", string(mode)).Msg("outcome query failed")
		return contracts.TrainResult{Status: contracts.TrainStatusFailed, Reason: err.Error()}
	}

	frame := t.builder.Build(mode, rows)
	if frame.Len() < t.pol.Training.MinSamples {
		t.log.Info().
			Str("mode", string(mode)).
			Int("samples", frame.Len()).
			Int("required", t.pol.Training.MinSamples).
			Msg("insufficient training data")
		return contracts.InsufficientData(
			fmt.Sprintf("%d samples, need %d", frame.Len(), t.pol.Training.MinSamples))
	}

	trainRows, valRows := ChronologicalSplit(frame, t.pol.Training.ValidationRatio)

	trainX, trainY := matrix(trainRows)
	valX, valY := matrix(valRows)

	scorer := t.newScorer()
	if err := scorer.Fit(trainX, trainY); err != nil {
		t.log.Error().Err(err).Str("mode", string(mode)).Msg("scorer fit failed")
		return contracts.TrainResult{Status: contracts.TrainStatusFailed, Reason: err.Error()}
	}

	// Calibrate raw probabilities on the training split.
	cal := FitPlatt(scorer.PredictProba(trainX), trainY)
	valProbs := cal.CalibrateAll(scorer.PredictProba(valX))

	valDates := make([]string, len(valRows))
	valReturns := make([]float64, len(valRows))
	for i, r := range valRows {
		valDates[i] = r.Date
		valReturns[i] = r.SignedReturn
	}

	dailyReturns := DailyTopKReturns(valDates, valProbs, valReturns, 3)

	modelID := fmt.Sprintf("%s_%s", strings.ToLower(string(mode)), t.now().UTC().Format("20060102_150405"))

	metrics := &contracts.ModelMetrics{
		ModelID:           modelID,
		Mode:              mode,
		AUC:               AUC(valProbs, valY),
		PrecisionAt3:      PrecisionAtKByDay(valDates, valProbs, valY, 3),
		HitRate:           HitRate(valY),
		AvgDailyReturn:    Mean(dailyReturns),
		SharpeRatio:       Sharpe(dailyReturns),
		MaxDrawdown:       MaxDrawdown(dailyReturns),
		TrainingSamples:   len(trainRows),
		ValidationSamples: len(valRows),
		CreatedAt:         t.now().UTC(),
	}

	featureNames := frame.Schema.Names()
	artifactPath, format, err := t.artifacts.Save(modelID, string(mode), scorer, cal, featureNames)
	if err != nil {
		t.log.Error().Err(err).Str("model_id", modelID).Msg("artifact export failed")
		return contracts.TrainResult{Status: contracts.TrainStatusFailed, Reason: err.Error()}
	}

	version := &contracts.ModelVersion{
		ModelID:      modelID,
		Mode:         mode,
		ArtifactPath: artifactPath,
		Format:       format,
		FeatureNames: featureNames,
		CreatedAt:    metrics.CreatedAt,
	}
	if err := t.models.SaveVersion(ctx, version); err != nil {
		t.log.Error().Err(err).Str("model_id", modelID).Msg("save version failed")
		return contracts.TrainResult{Status: contracts.TrainStatusFailed, Reason: err.Error()}
	}
	if err := t.models.SaveMetrics(ctx, metrics); err != nil {
		t.log.Error().Err(err).Str("model_id", modelID).Msg("save metrics failed")
		return contracts.TrainResult{Status: contracts.TrainStatusFailed, Reason: err.Error()}
	}

	t.log.Info().
		Str("model_id", modelID).
		Float64("auc", metrics.AUC).
		Float64("precision_at_3", metrics.PrecisionAt3).
		Float64("hit_rate", metrics.HitRate).
		Int("train_samples", metrics.TrainingSamples).
		Int("val_samples", metrics.ValidationSamples).
		Msg("candidate trained")

	return contracts.Trained(metrics)
}

func matrix(rows []features.Row) ([][]float64, []int) {
	X := make([][]float64, len(rows))
	y := make([]int, len(rows))
	for i, r := range rows {
		X[i] = r.Vector
		y[i] = r.Label
	}
	return X, y
}
