package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantops/modellab/internal/bandit"
	"github.com/quantops/modellab/internal/contracts"
	"github.com/quantops/modellab/internal/drift"
	"github.com/quantops/modellab/internal/features"
	"github.com/quantops/modellab/internal/metrics"
	"github.com/quantops/modellab/internal/policy"
	"github.com/quantops/modellab/pkg/logger"
)

func newSignalHandler() *SignalHandler {
	log := logger.NewNop()
	pol := policy.Default()

	b := bandit.New(pol.Bandit.Strategies, nil, log.Zerolog())
	schema := features.NewSchema([]string{"momentum_15m", "rvol_10m"})
	d := drift.NewDetector(schema, pol.Drift, log.Zerolog())

	return NewSignalHandler(b, d, metrics.NewRegistry(), log)
}

func TestSignalHandler_SelectStrategy(t *testing.T) {
	h := newSignalHandler()

	req := httptest.NewRequest(http.MethodPost, "/api/bandit/select", nil)
	rec := httptest.NewRecorder()
	h.SelectStrategy(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Contains(t, policy.Default().Bandit.Strategies, resp["strategy"])
}

func TestSignalHandler_Reward(t *testing.T) {
	h := newSignalHandler()

	body, _ := json.Marshal(rewardRequest{Strategy: "breakout", Reward: 0.015})
	req := httptest.NewRequest(http.MethodPost, "/api/bandit/reward", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	h.Reward(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var snapshot []contracts.ArmSnapshot
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snapshot))

	found := false
	for _, arm := range snapshot {
		if arm.Strategy == "breakout" {
			found = true
			assert.Equal(t, 2.0, arm.Alpha)
		}
	}
	assert.True(t, found)
}

func TestSignalHandler_RewardRequiresStrategy(t *testing.T) {
	h := newSignalHandler()

	body, _ := json.Marshal(rewardRequest{Reward: 0.01})
	req := httptest.NewRequest(http.MethodPost, "/api/bandit/reward", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	h.Reward(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func driftMatrix(n int, shift float64) [][]float64 {
	data := make([][]float64, n)
	for i := range data {
		data[i] = []float64{float64(i%10)/10 + shift, float64(i % 5)}
	}
	return data
}

func TestSignalHandler_CheckDrift(t *testing.T) {
	h := newSignalHandler()

	post := func(data [][]float64) *httptest.ResponseRecorder {
		body, _ := json.Marshal(driftRequest{Data: data})
		req := httptest.NewRequest(http.MethodPost, "/api/drift", bytes.NewReader(body))
		rec := httptest.NewRecorder()
		h.CheckDrift(rec, req)
		return rec
	}

	// First call captures the reference.
	rec := post(driftMatrix(500, 0))
	require.Equal(t, http.StatusOK, rec.Code)

	// A shifted matrix against the frozen reference reports drift.
	rec = post(driftMatrix(500, 3))
	require.Equal(t, http.StatusOK, rec.Code)

	var report contracts.DriftReport
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	assert.True(t, report.DriftDetected)
	assert.Equal(t, "momentum_15m", report.MaxFeature)

	// Wrong width is rejected at the boundary.
	rec = post([][]float64{{1, 2, 3}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSignalHandler_ResetDriftReference(t *testing.T) {
	h := newSignalHandler()

	body, _ := json.Marshal(driftRequest{Data: driftMatrix(100, 0)})
	req := httptest.NewRequest(http.MethodPost, "/api/drift", bytes.NewReader(body))
	h.CheckDrift(httptest.NewRecorder(), req)

	rec := httptest.NewRecorder()
	h.ResetDriftReference(rec, httptest.NewRequest(http.MethodPost, "/api/drift/reset", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}
