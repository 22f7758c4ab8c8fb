package promotion

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/quantops/modellab/internal/contracts"
	"github.com/quantops/modellab/internal/policy"
)

// Gate decides whether a trained candidate replaces the active model.
// Absolute guardrails run first; only then is the candidate compared to
// the incumbent on a weighted composite score. Promotion per mode is
// serialized so two concurrent trainers cannot both swap.
type Gate struct {
	models contracts.ModelRepository
	pol    policy.PromotionPolicy
	log    zerolog.Logger

	promoteMu map[contracts.Mode]*sync.Mutex
}

// NewGate creates a promotion gate.
func NewGate(models contracts.ModelRepository, pol policy.PromotionPolicy, log zerolog.Logger) *Gate {
	promoteMu := make(map[contracts.Mode]*sync.Mutex, len(contracts.AllModes))
	for _, mode := range contracts.AllModes {
		promoteMu[mode] = &sync.Mutex{}
	}
	return &Gate{
		models:    models,
		pol:       pol,
		log:       log.With().Str("component", "promotion.gate").Logger(),
		promoteMu: promoteMu,
	}
}

// PromoteIfBetter activates the candidate when it clears the guardrails
// and strictly beats the active model's composite score. Returns whether
// the candidate was promoted. Failures are logged and count as a
// rejection; the last-known-good model keeps serving.
func (g *Gate) PromoteIfBetter(ctx context.Context, mode contracts.Mode, candidate *contracts.ModelMetrics) bool {
	if candidate == nil {
		return false
	}

	// Guardrails are non-negotiable: failing either one rejects the
	// candidate regardless of how the incumbent looks.
	if candidate.AUC < g.pol.MinAUC || candidate.PrecisionAt3 < g.pol.MinPrecisionAt3 {
		g.log.Info().
			Str("model_id", candidate.ModelID).
			Float64("auc", candidate.AUC).
			Float64("precision_at_3", candidate.PrecisionAt3).
			Msg("candidate rejected by guardrails")
		return false
	}

	mu := g.promoteMu[mode]
	mu.Lock()
	defer mu.Unlock()

	active, err := g.models.ActiveMetrics(ctx, mode)
	if err != nil {
		g.log.Error().Err(err).Str("mode", string(mode)).Msg("active metrics lookup failed")
		return false
	}

	if active != nil {
		candScore := g.Composite(candidate)
		activeScore := g.Composite(active)
		if candScore <= activeScore {
			g.log.Info().
				Str("model_id", candidate.ModelID).
				Str("active_id", active.ModelID).
				Float64("candidate_score", candScore).
				Float64("active_score", activeScore).
				Msg("candidate did not beat active model")
			return false
		}
	}

	if err := g.models.Activate(ctx, mode, candidate.ModelID); err != nil {
		g.log.Error().Err(err).Str("model_id", candidate.ModelID).Msg("activation failed")
		return false
	}

	g.log.Info().
		Str("model_id", candidate.ModelID).
		Str("mode", string(mode)).
		Msg("model promoted")
	return true
}

// Composite is the weighted promotion score.
func (g *Gate) Composite(m *contracts.ModelMetrics) float64 {
	w := g.pol.Weights
	return w.AUC*m.AUC + w.PrecisionAt3*m.PrecisionAt3 + w.Sharpe*m.SharpeRatio
}

// BestModelID returns the active model id for a mode, or "" when no
// model is active.
func (g *Gate) BestModelID(ctx context.Context, mode contracts.Mode) (string, error) {
	active, err := g.models.ActiveVersion(ctx, mode)
	if err != nil {
		return "", err
	}
	if active == nil {
		return "", nil
	}
	return active.ModelID, nil
}
