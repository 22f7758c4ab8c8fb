package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/quantops/modellab/internal/bandit"
	"github.com/quantops/modellab/internal/drift"
	"github.com/quantops/modellab/internal/metrics"
	"github.com/quantops/modellab/pkg/logger"
)

// SignalHandler serves the cheap live-path companions: strategy selection
// via the bandit and on-demand drift checks.
type SignalHandler struct {
	bandit   *bandit.Bandit
	detector *drift.Detector
	metrics  *metrics.Registry
	logger   *logger.Logger
}

// NewSignalHandler creates a new signal handler.
func NewSignalHandler(b *bandit.Bandit, d *drift.Detector, m *metrics.Registry, log *logger.Logger) *SignalHandler {
	return &SignalHandler{
		bandit:   b,
		detector: d,
		metrics:  m,
		logger:   log,
	}
}

// SelectStrategy draws a strategy with Thompson sampling.
// POST /api/bandit/select
func (h *SignalHandler) SelectStrategy(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"strategy": h.bandit.Select()})
}

// rewardRequest carries an observed strategy reward.
type rewardRequest struct {
	Strategy string  `json:"strategy"`
	Reward   float64 `json:"reward"`
}

// Reward applies an observed reward to an arm.
// POST /api/bandit/reward
func (h *SignalHandler) Reward(w http.ResponseWriter, r *http.Request) {
	var req rewardRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Strategy == "" {
		respondError(w, http.StatusBadRequest, "strategy is required")
		return
	}

	h.bandit.Update(r.Context(), req.Strategy, req.Reward)
	h.metrics.BanditRewards.WithLabelValues(req.Strategy).Inc()
	respondJSON(w, http.StatusOK, h.bandit.Snapshot())
}

// Arms returns the bandit snapshot.
// GET /api/bandit
func (h *SignalHandler) Arms(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.bandit.Snapshot())
}

// driftRequest carries a feature matrix to check against the frozen
// reference.
type driftRequest struct {
	Data [][]float64 `json:"data"`
}

// CheckDrift runs PSI drift detection on the supplied matrix.
// POST /api/drift
func (h *SignalHandler) CheckDrift(w http.ResponseWriter, r *http.Request) {
	var req driftRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	report, err := h.detector.Detect(req.Data)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	verdict := "stable"
	if report.DriftDetected {
		verdict = "drift"
	}
	h.metrics.DriftChecks.WithLabelValues(verdict).Inc()

	respondJSON(w, http.StatusOK, report)
}

// ResetDriftReference clears the frozen reference snapshot so the next
// detection captures a fresh one.
// POST /api/drift/reset
func (h *SignalHandler) ResetDriftReference(w http.ResponseWriter, r *http.Request) {
	h.detector.Reset()
	respondJSON(w, http.StatusOK, map[string]string{"status": "reset"})
}
