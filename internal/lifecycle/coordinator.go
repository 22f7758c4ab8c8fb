package lifecycle

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/quantops/modellab/internal/bandit"
	"github.com/quantops/modellab/internal/contracts"
	"github.com/quantops/modellab/internal/outcomes"
	"github.com/quantops/modellab/internal/policy"
	"github.com/quantops/modellab/internal/promotion"
	"github.com/quantops/modellab/internal/training"
)

// Coordinator ties the lifecycle together: it decides when each mode
// retrains, runs training and promotion, and exposes a diagnostic view.
// Training is a synchronous batch operation meant for a background worker
// or scheduled job, never the live scoring path.
type Coordinator struct {
	store   *outcomes.Store
	trainer *training.Trainer
	gate    *promotion.Gate
	bandit  *bandit.Bandit
	pol     *policy.Policy
	log     zerolog.Logger
	now     func() time.Time

	mu          sync.Mutex
	lastTrained map[contracts.Mode]time.Time
}

// NewCoordinator wires a coordinator.
func NewCoordinator(
	store *outcomes.Store,
	trainer *training.Trainer,
	gate *promotion.Gate,
	b *bandit.Bandit,
	pol *policy.Policy,
	log zerolog.Logger,
) *Coordinator {
	return &Coordinator{
		store:       store,
		trainer:     trainer,
		gate:        gate,
		bandit:      b,
		pol:         pol,
		log:         log.With().Str("component", "lifecycle.coordinator").Logger(),
		now:         time.Now,
		lastTrained: make(map[contracts.Mode]time.Time),
	}
}

// SetClock overrides the coordinator's clock. Used by tests.
func (c *Coordinator) SetClock(now func() time.Time) {
	c.now = now
}

// ShouldRetrain reports whether a mode is due for retraining: the
// cooldown since the last successful training must have elapsed and
// enough new samples must have arrived in the trailing window.
func (c *Coordinator) ShouldRetrain(ctx context.Context, mode contracts.Mode) bool {
	c.mu.Lock()
	last, ok := c.lastTrained[mode]
	c.mu.Unlock()

	if ok && c.now().Sub(last) < c.pol.Retrain.Cooldown() {
		return false
	}

	windowStart := c.now().AddDate(0, 0, -c.pol.Retrain.WindowDays)
	count, err := c.store.CountSince(ctx, mode, windowStart)
	if err != nil {
		c.log.Error().Err(err).Str("mode", string(mode)).Msg("recent sample count failed")
		return false
	}
	return count >= int64(c.pol.Retrain.MinNewSamples)
}

// TrainIfNeeded walks every mode, trains the ones that are due, and runs
// the promotion gate on successful candidates. The last-trained timestamp
// advances whether or not the candidate was promoted, so a guardrail
// rejection never blocks future attempts.
func (c *Coordinator) TrainIfNeeded(ctx context.Context) map[contracts.Mode]contracts.TrainResult {
	results := make(map[contracts.Mode]contracts.TrainResult, len(contracts.AllModes))

	for _, mode := range contracts.AllModes {
		if !c.ShouldRetrain(ctx, mode) {
			results[mode] = contracts.TrainResult{Status: contracts.TrainStatusSkipped}
			continue
		}

		c.log.Info().Str("mode", string(mode)).Msg("training candidate")
		result := c.trainer.Train(ctx, mode)

		if result.Status == contracts.TrainStatusTrained {
			result.Promoted = c.gate.PromoteIfBetter(ctx, mode, result.Metrics)

			c.mu.Lock()
			c.lastTrained[mode] = c.now()
			c.mu.Unlock()
		}

		results[mode] = result
	}

	return results
}

// Status is the read-only diagnostic view of the lifecycle.
type Status struct {
	TotalOutcomes    int64                   `json:"total_outcomes"`
	RecentOutcomes   map[string]int64        `json:"recent_outcomes"` // trailing 7 days per mode
	ActiveModels     map[string]string       `json:"active_models"`
	Bandit           []contracts.ArmSnapshot `json:"bandit"`
	LastTrained      map[string]time.Time    `json:"last_trained"`
	BackendAvailable bool                    `json:"backend_available"`
	PolicyID         string                  `json:"policy_id"`
}

// Status assembles the diagnostic view. Lookup failures degrade to empty
// fields rather than erroring; the view must stay readable even when the
// system is degraded.
func (c *Coordinator) Status(ctx context.Context) *Status {
	status := &Status{
		RecentOutcomes:   make(map[string]int64, len(contracts.AllModes)),
		ActiveModels:     make(map[string]string, len(contracts.AllModes)),
		LastTrained:      make(map[string]time.Time),
		BackendAvailable: c.trainer.Available(),
		PolicyID:         c.pol.Meta.PolicyID,
	}

	if total, err := c.store.Count(ctx); err == nil {
		status.TotalOutcomes = total
	} else {
		c.log.Error().Err(err).Msg("total outcome count failed")
	}

	weekAgo := c.now().AddDate(0, 0, -7)
	for _, mode := range contracts.AllModes {
		if count, err := c.store.CountSince(ctx, mode, weekAgo); err == nil {
			status.RecentOutcomes[string(mode)] = count
		}

		if id, err := c.gate.BestModelID(ctx, mode); err == nil && id != "" {
			status.ActiveModels[string(mode)] = id
		}
	}

	if c.bandit != nil {
		status.Bandit = c.bandit.Snapshot()
	}

	c.mu.Lock()
	for mode, at := range c.lastTrained {
		status.LastTrained[string(mode)] = at
	}
	c.mu.Unlock()

	return status
}

// LastTrained returns the last successful training time for a mode.
func (c *Coordinator) LastTrained(mode contracts.Mode) (time.Time, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	at, ok := c.lastTrained[mode]
	return at, ok
}

// MarkTrained records a successful training time. Used by tests to set
// up cooldown scenarios.
func (c *Coordinator) MarkTrained(mode contracts.Mode, at time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lastTrained[mode] = at
}
