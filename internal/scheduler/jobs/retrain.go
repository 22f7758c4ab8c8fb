package jobs

import (
	"context"

	"github.com/quantops/modellab/internal/contracts"
	"github.com/quantops/modellab/internal/lifecycle"
	"github.com/quantops/modellab/pkg/logger"
)

// RetrainJob periodically runs train-if-needed across every mode. The
// coordinator's own cooldown and sample gating decide whether anything
// actually trains, so a tight schedule is safe.
type RetrainJob struct {
	coordinator *lifecycle.Coordinator
	schedule    string
	logger      *logger.Logger
}

// NewRetrainJob creates a new retrain job.
func NewRetrainJob(coordinator *lifecycle.Coordinator, schedule string, log *logger.Logger) *RetrainJob {
	return &RetrainJob{
		coordinator: coordinator,
		schedule:    schedule,
		logger:      log,
	}
}

// Name returns the job name.
func (j *RetrainJob) Name() string {
	return "model_retrain"
}

// Schedule returns the cron schedule.
func (j *RetrainJob) Schedule() string {
	return j.schedule
}

// Run executes train-if-needed and logs per-mode results. Training
// failures are typed results, not errors, so the job itself only fails
// on something unexpected.
func (j *RetrainJob) Run(ctx context.Context) error {
	results := j.coordinator.TrainIfNeeded(ctx)

	for mode, result := range results {
		event := j.logger.WithFields(map[string]interface{}{
			"mode":   string(mode),
			"status": string(result.Status),
		})

		switch result.Status {
		case contracts.TrainStatusTrained:
			event.WithFields(map[string]interface{}{
				"model_id": result.Metrics.ModelID,
				"promoted": result.Promoted,
			}).Info("Retrain completed")
		case contracts.TrainStatusFailed:
			event.WithField("reason", result.Reason).Error("Retrain failed")
		default:
			event.Debug("Retrain skipped")
		}
	}

	return nil
}
