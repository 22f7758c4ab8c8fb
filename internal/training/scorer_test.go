package training

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogisticScorer_FitValidation(t *testing.T) {
	s := NewLogisticScorer()
	assert.Error(t, s.Fit(nil, nil))
	assert.Error(t, s.Fit([][]float64{{1, 2}}, []int{1, 0}))
}

func TestLogisticScorer_LearnsSeparableData(t *testing.T) {
	rng := rand.New(rand.NewSource(7))

	var X [][]float64
	var y []int
	for i := 0; i < 200; i++ {
		if i%2 == 0 {
			X = append(X, []float64{rng.NormFloat64() + 2, rng.NormFloat64()})
			y = append(y, 1)
		} else {
			X = append(X, []float64{rng.NormFloat64() - 2, rng.NormFloat64()})
			y = append(y, 0)
		}
	}

	s := NewLogisticScorer()
	require.NoError(t, s.Fit(X, y))

	probs := s.PredictProba(X)
	correct := 0
	for i, p := range probs {
		require.GreaterOrEqual(t, p, 0.0)
		require.LessOrEqual(t, p, 1.0)
		if (p >= 0.5) == (y[i] == 1) {
			correct++
		}
	}
	// Means 4 sigma apart should be nearly perfectly separable.
	assert.Greater(t, float64(correct)/float64(len(y)), 0.95)
}

func TestLogisticScorer_GobRoundtrip(t *testing.T) {
	X := [][]float64{{1, 0}, {0, 1}, {2, 1}, {-1, -2}}
	y := []int{1, 0, 1, 0}

	s := NewLogisticScorer()
	require.NoError(t, s.Fit(X, y))

	data, err := s.MarshalBinary()
	require.NoError(t, err)

	restored := NewLogisticScorer()
	require.NoError(t, restored.UnmarshalBinary(data))

	assert.Equal(t, s.PredictProba(X), restored.PredictProba(X))
}

func TestNewScorerOfType(t *testing.T) {
	s, err := NewScorerOfType("logistic")
	require.NoError(t, err)
	assert.Equal(t, "logistic", s.Type())

	_, err = NewScorerOfType("xgboost")
	assert.Error(t, err)
}
