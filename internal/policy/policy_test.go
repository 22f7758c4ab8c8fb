package policy

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault_IsValid(t *testing.T) {
	require.NoError(t, Validate(Default()))
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Policy)
	}{
		{"empty schema", func(p *Policy) { p.Features.Schema = nil }},
		{"empty feature name", func(p *Policy) { p.Features.Schema = []string{"a", ""} }},
		{"duplicate feature name", func(p *Policy) { p.Features.Schema = []string{"a", "a"} }},
		{"validation ratio zero", func(p *Policy) { p.Training.ValidationRatio = 0 }},
		{"validation ratio one", func(p *Policy) { p.Training.ValidationRatio = 1 }},
		{"min samples zero", func(p *Policy) { p.Training.MinSamples = 0 }},
		{"auc floor above one", func(p *Policy) { p.Promotion.MinAUC = 1.5 }},
		{"negative precision floor", func(p *Policy) { p.Promotion.MinPrecisionAt3 = -0.1 }},
		{"one drift bin", func(p *Policy) { p.Drift.Bins = 1 }},
		{"zero drift threshold", func(p *Policy) { p.Drift.Threshold = 0 }},
		{"no strategies", func(p *Policy) { p.Bandit.Strategies = nil }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Default()
			tt.mutate(p)
			assert.Error(t, Validate(p))
		})
	}
}

func TestLabelThreshold(t *testing.T) {
	p := Default()
	assert.Equal(t, 0.005, p.LabelThreshold("SAFE"))
	assert.Equal(t, 0.012, p.LabelThreshold("AGGRESSIVE"))
}

func writePolicy(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "policy.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const validYAML = `
meta:
  policy_id: test_policy
  version: "2"
features:
  schema: [momentum_15m, rvol_10m]
labels:
  safe_threshold: 0.004
  aggressive_threshold: 0.010
training:
  min_samples: 100
  validation_ratio: 0.25
  lookback_days: 30
promotion:
  min_auc: 0.55
  min_precision_at_3: 0.45
  weights:
    auc: 0.5
    precision_at_3: 0.4
    sharpe: 0.1
retrain:
  cooldown_hours: 4
  min_new_samples: 20
  window_days: 7
drift:
  bins: 10
  threshold: 0.1
bandit:
  strategies: [breakout, momentum]
`

func TestLoad(t *testing.T) {
	path := writePolicy(t, validYAML)

	p, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "test_policy", p.Meta.PolicyID)
	assert.Equal(t, []string{"momentum_15m", "rvol_10m"}, p.Features.Schema)
	assert.Equal(t, 0.25, p.Training.ValidationRatio)
	assert.Equal(t, 4, p.Retrain.CooldownHours)
}

func TestLoad_RejectsUnknownFields(t *testing.T) {
	path := writePolicy(t, validYAML+"\nsurprise_knob: 42\n")
	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoad_RejectsInvalidPolicy(t *testing.T) {
	path := writePolicy(t, `
features:
  schema: []
`)
	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadOrDefault(t *testing.T) {
	p, err := LoadOrDefault("")
	require.NoError(t, err)
	assert.Equal(t, Default().Meta.PolicyID, p.Meta.PolicyID)

	p, err = LoadOrDefault("/nonexistent/policy.yaml")
	require.NoError(t, err)
	assert.Equal(t, Default().Meta.PolicyID, p.Meta.PolicyID)

	path := writePolicy(t, validYAML)
	p, err = LoadOrDefault(path)
	require.NoError(t, err)
	assert.Equal(t, "test_policy", p.Meta.PolicyID)
}

func TestHash_Deterministic(t *testing.T) {
	h1, err := Hash(Default())
	require.NoError(t, err)
	h2, err := Hash(Default())
	require.NoError(t, err)
	assert.Equal(t, h1, h2)
	assert.Len(t, h1, 64)

	changed := Default()
	changed.Training.MinSamples = 300
	h3, err := Hash(changed)
	require.NoError(t, err)
	assert.NotEqual(t, h1, h3)
}

func TestRetrainPolicy_Cooldown(t *testing.T) {
	p := Default()
	assert.Equal(t, float64(p.Retrain.CooldownHours), p.Retrain.Cooldown().Hours())
}
