package promotion

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantops/modellab/internal/contracts"
	"github.com/quantops/modellab/internal/policy"
	"github.com/quantops/modellab/pkg/logger"
)

func newTestGate(t *testing.T) (*Gate, *MemoryRepository) {
	t.Helper()
	repo := NewMemoryRepository()
	gate := NewGate(repo, policy.Default().Promotion, logger.NewNop().Zerolog())
	return gate, repo
}

func candidate(id string, auc, p3, sharpe float64) *contracts.ModelMetrics {
	return &contracts.ModelMetrics{
		ModelID:           id,
		Mode:              contracts.ModeSafe,
		AUC:               auc,
		PrecisionAt3:      p3,
		SharpeRatio:       sharpe,
		TrainingSamples:   200,
		ValidationSamples: 50,
		CreatedAt:         time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC),
	}
}

// saveCandidate persists both the metrics and version rows Activate needs.
func saveCandidate(t *testing.T, repo *MemoryRepository, m *contracts.ModelMetrics) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, repo.SaveMetrics(ctx, m))
	require.NoError(t, repo.SaveVersion(ctx, &contracts.ModelVersion{
		ModelID:      m.ModelID,
		Mode:         m.Mode,
		ArtifactPath: "models/" + m.ModelID + ".gob",
		Format:       "gob",
		FeatureNames: []string{"momentum_15m"},
		CreatedAt:    m.CreatedAt,
	}))
}

func TestGate_PromotesFirstModel(t *testing.T) {
	gate, repo := newTestGate(t)
	ctx := context.Background()

	m := candidate("safe_1", 0.62, 0.50, 1.2)
	saveCandidate(t, repo, m)

	assert.True(t, gate.PromoteIfBetter(ctx, contracts.ModeSafe, m))

	active, err := repo.ActiveMetrics(ctx, contracts.ModeSafe)
	require.NoError(t, err)
	require.NotNil(t, active)
	assert.Equal(t, "safe_1", active.ModelID)

	id, err := gate.BestModelID(ctx, contracts.ModeSafe)
	require.NoError(t, err)
	assert.Equal(t, "safe_1", id)
}

func TestGate_GuardrailsRejectRegardlessOfIncumbent(t *testing.T) {
	gate, repo := newTestGate(t)
	ctx := context.Background()

	tests := []struct {
		name string
		m    *contracts.ModelMetrics
	}{
		{"auc below floor", candidate("bad_auc", 0.50, 0.90, 5.0)},
		{"precision below floor", candidate("bad_p3", 0.90, 0.40, 5.0)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			saveCandidate(t, repo, tt.m)
			// No incumbent exists, yet the guardrail still rejects.
			assert.False(t, gate.PromoteIfBetter(ctx, contracts.ModeSafe, tt.m))

			active, err := repo.ActiveMetrics(ctx, contracts.ModeSafe)
			require.NoError(t, err)
			assert.Nil(t, active)
		})
	}
}

func TestGate_IdenticalMetricsNeverPromote(t *testing.T) {
	gate, repo := newTestGate(t)
	ctx := context.Background()

	first := candidate("safe_1", 0.62, 0.50, 1.2)
	saveCandidate(t, repo, first)
	require.True(t, gate.PromoteIfBetter(ctx, contracts.ModeSafe, first))

	// Same numbers, different id: composite ties go to the incumbent.
	twin := candidate("safe_2", 0.62, 0.50, 1.2)
	saveCandidate(t, repo, twin)
	assert.False(t, gate.PromoteIfBetter(ctx, contracts.ModeSafe, twin))

	active, err := repo.ActiveMetrics(ctx, contracts.ModeSafe)
	require.NoError(t, err)
	assert.Equal(t, "safe_1", active.ModelID)
}

func TestGate_SequentialPromotions(t *testing.T) {
	gate, repo := newTestGate(t)
	ctx := context.Background()

	first := candidate("safe_1", 0.58, 0.48, 0.8)
	saveCandidate(t, repo, first)
	require.True(t, gate.PromoteIfBetter(ctx, contracts.ModeSafe, first))

	// Dominates the incumbent on every component.
	second := candidate("safe_2", 0.65, 0.55, 1.5)
	saveCandidate(t, repo, second)
	assert.True(t, gate.PromoteIfBetter(ctx, contracts.ModeSafe, second))

	active, err := repo.ActiveMetrics(ctx, contracts.ModeSafe)
	require.NoError(t, err)
	assert.Equal(t, "safe_2", active.ModelID)
	assert.True(t, active.IsActive)

	version, err := repo.ActiveVersion(ctx, contracts.ModeSafe)
	require.NoError(t, err)
	require.NotNil(t, version)
	assert.Equal(t, "safe_2", version.ModelID)

	// Exactly one active row remains in the history.
	activeCount := 0
	for _, m := range repo.MetricsHistory(contracts.ModeSafe) {
		if m.IsActive {
			activeCount++
		}
	}
	assert.Equal(t, 1, activeCount)
}

func TestGate_ModesAreIndependent(t *testing.T) {
	gate, repo := newTestGate(t)
	ctx := context.Background()

	safe := candidate("safe_1", 0.62, 0.50, 1.2)
	saveCandidate(t, repo, safe)
	require.True(t, gate.PromoteIfBetter(ctx, contracts.ModeSafe, safe))

	agg := candidate("agg_1", 0.60, 0.47, 0.9)
	agg.Mode = contracts.ModeAggressive
	saveCandidate(t, repo, agg)
	require.True(t, gate.PromoteIfBetter(ctx, contracts.ModeAggressive, agg))

	safeActive, err := repo.ActiveMetrics(ctx, contracts.ModeSafe)
	require.NoError(t, err)
	assert.Equal(t, "safe_1", safeActive.ModelID)

	aggActive, err := repo.ActiveMetrics(ctx, contracts.ModeAggressive)
	require.NoError(t, err)
	assert.Equal(t, "agg_1", aggActive.ModelID)
}

func TestGate_NilCandidate(t *testing.T) {
	gate, _ := newTestGate(t)
	assert.False(t, gate.PromoteIfBetter(context.Background(), contracts.ModeSafe, nil))
}

func TestGate_Composite(t *testing.T) {
	gate, _ := newTestGate(t)
	m := candidate("c", 0.6, 0.5, 2.0)
	// Default weights: 0.5*AUC + 0.4*P@3 + 0.1*Sharpe.
	assert.InDelta(t, 0.5*0.6+0.4*0.5+0.1*2.0, gate.Composite(m), 1e-9)
}
