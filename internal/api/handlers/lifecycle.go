package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/quantops/modellab/internal/contracts"
	"github.com/quantops/modellab/internal/lifecycle"
	"github.com/quantops/modellab/internal/metrics"
	"github.com/quantops/modellab/internal/promotion"
	"github.com/quantops/modellab/pkg/logger"
	"github.com/quantops/modellab/pkg/redis"
)

// LifecycleHandler exposes training, model lookup, and the diagnostic
// status view.
type LifecycleHandler struct {
	coordinator *lifecycle.Coordinator
	gate        *promotion.Gate
	metrics     *metrics.Registry
	cache       *redis.Cache
	logger      *logger.Logger
}

// NewLifecycleHandler creates a new lifecycle handler. cache may be nil;
// the status view is then computed on every request.
func NewLifecycleHandler(c *lifecycle.Coordinator, g *promotion.Gate, m *metrics.Registry, cache *redis.Cache, log *logger.Logger) *LifecycleHandler {
	return &LifecycleHandler{
		coordinator: c,
		gate:        g,
		metrics:     m,
		cache:       cache,
		logger:      log,
	}
}

// Train runs train-if-needed across every mode. Training is synchronous
// and CPU-bound; this endpoint is meant for schedulers and operators,
// never the live scoring path.
// POST /api/train
func (h *LifecycleHandler) Train(w http.ResponseWriter, r *http.Request) {
	results := h.coordinator.TrainIfNeeded(r.Context())

	for mode, result := range results {
		h.metrics.TrainingRuns.WithLabelValues(string(mode), string(result.Status)).Inc()
		if result.Status == contracts.TrainStatusTrained {
			verdict := "rejected"
			if result.Promoted {
				verdict = "promoted"
			}
			h.metrics.Promotions.WithLabelValues(string(mode), verdict).Inc()
		}
	}

	respondJSON(w, http.StatusOK, results)
}

// BestModel returns the active model id for a mode.
// GET /api/models/{mode}
func (h *LifecycleHandler) BestModel(w http.ResponseWriter, r *http.Request) {
	mode := contracts.Mode(mux.Vars(r)["mode"])
	if !mode.Valid() {
		respondError(w, http.StatusBadRequest, "unknown mode")
		return
	}

	id, err := h.gate.BestModelID(r.Context(), mode)
	if err != nil {
		h.logger.WithError(err).Error("active model lookup failed")
		respondError(w, http.StatusInternalServerError, "model lookup failed")
		return
	}
	if id == "" {
		respondJSON(w, http.StatusNotFound, map[string]interface{}{"mode": mode, "model_id": nil})
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{"mode": mode, "model_id": id})
}

// statusCacheTTL bounds how stale the status view may be. The view is
// diagnostic, so a few seconds of staleness is fine.
const statusCacheTTL = 10 * time.Second

// Status returns the read-only diagnostic view.
// GET /api/status
func (h *LifecycleHandler) Status(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if h.cache != nil {
		var cached lifecycle.Status
		if hit, err := h.cache.Get(ctx, "status", &cached); err == nil && hit {
			respondJSON(w, http.StatusOK, &cached)
			return
		}
	}

	status := h.coordinator.Status(ctx)

	if h.cache != nil {
		if err := h.cache.Set(ctx, "status", status, statusCacheTTL); err != nil {
			h.logger.WithError(err).Warn("status cache write failed")
		}
	}

	respondJSON(w, http.StatusOK, status)
}

// respondJSON writes a JSON response.
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// respondError writes a JSON error response.
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
