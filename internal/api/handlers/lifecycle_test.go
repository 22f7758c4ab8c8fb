package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantops/modellab/internal/bandit"
	"github.com/quantops/modellab/internal/contracts"
	"github.com/quantops/modellab/internal/features"
	"github.com/quantops/modellab/internal/lifecycle"
	"github.com/quantops/modellab/internal/metrics"
	"github.com/quantops/modellab/internal/outcomes"
	"github.com/quantops/modellab/internal/policy"
	"github.com/quantops/modellab/internal/promotion"
	"github.com/quantops/modellab/internal/training"
	"github.com/quantops/modellab/pkg/logger"
)

func newLifecycleHandler(t *testing.T) *LifecycleHandler {
	t.Helper()

	pol := policy.Default()
	log := logger.NewNop()

	store := outcomes.NewStore(outcomes.NewMemoryRepository(), log.Zerolog())
	schema := features.NewSchema(pol.Features.Schema)
	builder := features.NewBuilder(schema, map[contracts.Mode]float64{
		contracts.ModeSafe:       pol.Labels.SafeThreshold,
		contracts.ModeAggressive: pol.Labels.AggressiveThreshold,
	})

	models := promotion.NewMemoryRepository()
	artifacts, err := training.NewArtifactStore(t.TempDir(), log.Zerolog())
	require.NoError(t, err)

	trainer := training.NewTrainer(store, builder, models, artifacts, pol,
		func() training.Scorer { return training.NewLogisticScorer() }, log.Zerolog())
	gate := promotion.NewGate(models, pol.Promotion, log.Zerolog())
	b := bandit.New(pol.Bandit.Strategies, nil, log.Zerolog())
	coordinator := lifecycle.NewCoordinator(store, trainer, gate, b, pol, log.Zerolog())

	return NewLifecycleHandler(coordinator, gate, metrics.NewRegistry(), nil, log)
}

func TestLifecycleHandler_BestModelUnknownMode(t *testing.T) {
	h := newLifecycleHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/api/models/TURBO", nil)
	req = mux.SetURLVars(req, map[string]string{"mode": "TURBO"})
	rec := httptest.NewRecorder()
	h.BestModel(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLifecycleHandler_BestModelNoneActive(t *testing.T) {
	h := newLifecycleHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/api/models/SAFE", nil)
	req = mux.SetURLVars(req, map[string]string{"mode": "SAFE"})
	rec := httptest.NewRecorder()
	h.BestModel(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Nil(t, resp["model_id"])
}

func TestLifecycleHandler_Status(t *testing.T) {
	h := newLifecycleHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/api/status", nil)
	rec := httptest.NewRecorder()
	h.Status(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var status lifecycle.Status
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	assert.True(t, status.BackendAvailable)
	assert.Equal(t, "daytrade_scoring_v1", status.PolicyID)
	assert.Len(t, status.Bandit, 4)
}

func TestLifecycleHandler_TrainSkipsWithoutData(t *testing.T) {
	h := newLifecycleHandler(t)

	req := httptest.NewRequest(http.MethodPost, "/api/train", nil)
	rec := httptest.NewRecorder()
	h.Train(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var results map[string]contracts.TrainResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &results))
	require.Len(t, results, 2)
	for _, result := range results {
		assert.Equal(t, contracts.TrainStatusSkipped, result.Status)
	}
}
