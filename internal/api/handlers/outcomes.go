package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/quantops/modellab/internal/contracts"
	"github.com/quantops/modellab/internal/metrics"
	"github.com/quantops/modellab/internal/outcomes"
	"github.com/quantops/modellab/pkg/logger"
)

// OutcomeHandler handles outcome ingestion from the execution system.
type OutcomeHandler struct {
	store   *outcomes.Store
	limiter *rate.Limiter
	metrics *metrics.Registry
	logger  *logger.Logger
}

// NewOutcomeHandler creates a new outcome handler.
func NewOutcomeHandler(store *outcomes.Store, limiter *rate.Limiter, m *metrics.Registry, log *logger.Logger) *OutcomeHandler {
	return &OutcomeHandler{
		store:   store,
		limiter: limiter,
		metrics: m,
		logger:  log,
	}
}

// outcomeRequest mirrors the ingestion contract of the execution system.
// Timestamps arrive as ISO-8601 strings.
type outcomeRequest struct {
	Symbol     string             `json:"symbol"`
	Side       string             `json:"side"`
	EntryPrice float64            `json:"entry_price"`
	ExitPrice  float64            `json:"exit_price"`
	EntryTime  string             `json:"entry_time"`
	ExitTime   string             `json:"exit_time"`
	Mode       string             `json:"mode"`
	Outcome    string             `json:"outcome"`
	Features   map[string]float64 `json:"features"`
	Score      float64            `json:"score"`
	Timestamp  string             `json:"timestamp"`
}

// Log ingests one realized trade outcome.
// POST /api/outcomes
func (h *OutcomeHandler) Log(w http.ResponseWriter, r *http.Request) {
	if !h.limiter.Allow() {
		respondError(w, http.StatusTooManyRequests, "ingestion rate limit exceeded")
		return
	}

	var req outcomeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	outcome, err := req.toOutcome()
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if !h.store.Append(r.Context(), outcome) {
		h.metrics.OutcomesDropped.Inc()
		respondJSON(w, http.StatusServiceUnavailable, map[string]bool{"logged": false})
		return
	}

	h.metrics.OutcomesLogged.WithLabelValues(string(outcome.Mode)).Inc()
	respondJSON(w, http.StatusAccepted, map[string]bool{"logged": true})
}

func (r *outcomeRequest) toOutcome() (*contracts.TradingOutcome, error) {
	entryTime, err := time.Parse(time.RFC3339, r.EntryTime)
	if err != nil {
		return nil, errInvalidField("entry_time")
	}
	exitTime, err := time.Parse(time.RFC3339, r.ExitTime)
	if err != nil {
		return nil, errInvalidField("exit_time")
	}
	ts, err := time.Parse(time.RFC3339, r.Timestamp)
	if err != nil {
		return nil, errInvalidField("timestamp")
	}

	o := &contracts.TradingOutcome{
		Symbol:     r.Symbol,
		Side:       contracts.Side(r.Side),
		EntryPrice: r.EntryPrice,
		ExitPrice:  r.ExitPrice,
		EntryTime:  entryTime,
		ExitTime:   exitTime,
		Mode:       contracts.Mode(r.Mode),
		Outcome:    r.Outcome,
		Features:   r.Features,
		Score:      r.Score,
		Timestamp:  ts,
	}
	if !o.Side.Valid() {
		return nil, errInvalidField("side")
	}
	if !o.Mode.Valid() {
		return nil, errInvalidField("mode")
	}
	return o, nil
}

type fieldError string

func (e fieldError) Error() string { return "invalid " + string(e) }

func errInvalidField(name string) error { return fieldError(name) }
