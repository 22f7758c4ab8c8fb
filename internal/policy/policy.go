package policy

import (
	"fmt"
	"time"
)

// Policy holds every tunable constant of the model lifecycle. Values are
// operator policy, not algorithmic outputs, so they live in one YAML file
// loaded at startup.
type Policy struct {
	Meta      Meta            `yaml:"meta" json:"meta"`
	Features  FeaturePolicy   `yaml:"features" json:"features"`
	Labels    LabelPolicy     `yaml:"labels" json:"labels"`
	Training  TrainingPolicy  `yaml:"training" json:"training"`
	Promotion PromotionPolicy `yaml:"promotion" json:"promotion"`
	Retrain   RetrainPolicy   `yaml:"retrain" json:"retrain"`
	Drift     DriftPolicy     `yaml:"drift" json:"drift"`
	Bandit    BanditPolicy    `yaml:"bandit" json:"bandit"`
}

// Meta identifies the policy document.
type Meta struct {
	PolicyID string `yaml:"policy_id" json:"policy_id"`
	Version  string `yaml:"version" json:"version"`
}

// FeaturePolicy fixes the canonical ordered feature schema. Every vector
// built anywhere in the system has exactly this width and order.
type FeaturePolicy struct {
	Schema []string `yaml:"schema" json:"schema"`
}

// LabelPolicy sets the per-mode signed-return thresholds for the binary
// label.
type LabelPolicy struct {
	SafeThreshold       float64 `yaml:"safe_threshold" json:"safe_threshold"`
	AggressiveThreshold float64 `yaml:"aggressive_threshold" json:"aggressive_threshold"`
}

// TrainingPolicy controls the training protocol.
type TrainingPolicy struct {
	MinSamples      int     `yaml:"min_samples" json:"min_samples"`
	ValidationRatio float64 `yaml:"validation_ratio" json:"validation_ratio"`
	LookbackDays    int     `yaml:"lookback_days" json:"lookback_days"`
}

// PromotionPolicy holds the absolute guardrails and the composite-score
// weights used to compare a candidate against the active model.
type PromotionPolicy struct {
	MinAUC          float64          `yaml:"min_auc" json:"min_auc"`
	MinPrecisionAt3 float64          `yaml:"min_precision_at_3" json:"min_precision_at_3"`
	Weights         CompositeWeights `yaml:"weights" json:"weights"`
}

// CompositeWeights weight the composite promotion score.
type CompositeWeights struct {
	AUC          float64 `yaml:"auc" json:"auc"`
	PrecisionAt3 float64 `yaml:"precision_at_3" json:"precision_at_3"`
	Sharpe       float64 `yaml:"sharpe" json:"sharpe"`
}

// RetrainPolicy gates how often retraining may run.
type RetrainPolicy struct {
	CooldownHours int `yaml:"cooldown_hours" json:"cooldown_hours"`
	MinNewSamples int `yaml:"min_new_samples" json:"min_new_samples"`
	WindowDays    int `yaml:"window_days" json:"window_days"`
}

// Cooldown returns the retrain cooldown as a duration.
func (r RetrainPolicy) Cooldown() time.Duration {
	return time.Duration(r.CooldownHours) * time.Hour
}

// DriftPolicy configures the PSI drift detector.
type DriftPolicy struct {
	Bins      int     `yaml:"bins" json:"bins"`
	Threshold float64 `yaml:"threshold" json:"threshold"`
}

// BanditPolicy fixes the set of strategy arms.
type BanditPolicy struct {
	Strategies []string `yaml:"strategies" json:"strategies"`
}

// LabelThreshold returns the signed-return threshold for a mode string.
func (p *Policy) LabelThreshold(mode string) float64 {
	if mode == "AGGRESSIVE" {
		return p.Labels.AggressiveThreshold
	}
	return p.Labels.SafeThreshold
}

// Default returns the built-in policy used when no YAML file is supplied.
func Default() *Policy {
	return &Policy{
		Meta: Meta{
			PolicyID: "daytrade_scoring_v1",
			Version:  "1",
		},
		Features: FeaturePolicy{
			Schema: []string{
				"momentum_15m",
				"rvol_10m",
				"vwap_dist",
				"breakout_pct",
				"spread_bps",
				"catalyst_score",
			},
		},
		Labels: LabelPolicy{
			SafeThreshold:       0.005,
			AggressiveThreshold: 0.012,
		},
		Training: TrainingPolicy{
			MinSamples:      200,
			ValidationRatio: 0.2,
			LookbackDays:    60,
		},
		Promotion: PromotionPolicy{
			MinAUC:          0.55,
			MinPrecisionAt3: 0.45,
			Weights: CompositeWeights{
				AUC:          0.5,
				PrecisionAt3: 0.4,
				Sharpe:       0.1,
			},
		},
		Retrain: RetrainPolicy{
			CooldownHours: 6,
			MinNewSamples: 50,
			WindowDays:    7,
		},
		Drift: DriftPolicy{
			Bins:      10,
			Threshold: 0.1,
		},
		Bandit: BanditPolicy{
			Strategies: []string{"breakout", "mean_reversion", "momentum", "etf_rotation"},
		},
	}
}

// Validate checks internal consistency of the policy.
func Validate(p *Policy) error {
	if len(p.Features.Schema) == 0 {
		return fmt.Errorf("features.schema must not be empty")
	}
	seen := make(map[string]bool, len(p.Features.Schema))
	for _, name := range p.Features.Schema {
		if name == "" {
			return fmt.Errorf("features.schema contains an empty name")
		}
		if seen[name] {
			return fmt.Errorf("features.schema contains duplicate %q", name)
		}
		seen[name] = true
	}

	if p.Training.ValidationRatio <= 0 || p.Training.ValidationRatio >= 1 {
		return fmt.Errorf("training.validation_ratio must be in (0, 1), got %v", p.Training.ValidationRatio)
	}
	if p.Training.MinSamples <= 0 {
		return fmt.Errorf("training.min_samples must be positive")
	}

	if p.Promotion.MinAUC < 0 || p.Promotion.MinAUC > 1 {
		return fmt.Errorf("promotion.min_auc must be in [0, 1]")
	}
	if p.Promotion.MinPrecisionAt3 < 0 || p.Promotion.MinPrecisionAt3 > 1 {
		return fmt.Errorf("promotion.min_precision_at_3 must be in [0, 1]")
	}

	if p.Drift.Bins < 2 {
		return fmt.Errorf("drift.bins must be at least 2")
	}
	if p.Drift.Threshold <= 0 {
		return fmt.Errorf("drift.threshold must be positive")
	}

	if len(p.Bandit.Strategies) == 0 {
		return fmt.Errorf("bandit.strategies must not be empty")
	}

	return nil
}
