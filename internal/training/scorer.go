package training

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"math"
)

// Scorer is the pluggable binary classifier contract. Implementations fit
// on a feature matrix with binary labels and emit probabilities in [0,1].
// The marshal methods let the artifact store persist a scorer without
// knowing its internals.
type Scorer interface {
	Fit(X [][]float64, y []int) error
	PredictProba(X [][]float64) []float64
	Type() string
	MarshalBinary() ([]byte, error)
	UnmarshalBinary(data []byte) error
}

// scorerFactories maps a scorer type name to its constructor, used when
// loading persisted artifacts.
var scorerFactories = map[string]func() Scorer{
	"logistic": func() Scorer { return NewLogisticScorer() },
}

// NewScorerOfType returns a fresh scorer for a persisted type name.
func NewScorerOfType(name string) (Scorer, error) {
	factory, ok := scorerFactories[name]
	if !ok {
		return nil, fmt.Errorf("unknown scorer type %q", name)
	}
	return factory(), nil
}

// LogisticScorer is the default in-process scorer: full-batch gradient
// descent logistic regression over standardized features. Fields are
// exported for serialization.
type LogisticScorer struct {
	Weights []float64
	Bias    float64

	// Standardization parameters captured during Fit.
	Means []float64
	Stds  []float64

	Epochs       int
	LearningRate float64
	L2           float64
}

// NewLogisticScorer creates a scorer with default hyperparameters.
func NewLogisticScorer() *LogisticScorer {
	return &LogisticScorer{
		Epochs:       300,
		LearningRate: 0.1,
		L2:           0.001,
	}
}

// Type identifies the scorer for artifact manifests.
func (s *LogisticScorer) Type() string { return "logistic" }

// Fit trains the model. X rows must all share one width.
func (s *LogisticScorer) Fit(X [][]float64, y []int) error {
	if len(X) == 0 {
		return fmt.Errorf("empty training matrix")
	}
	if len(X) != len(y) {
		return fmt.Errorf("matrix/label length mismatch: %d vs %d", len(X), len(y))
	}

	dims := len(X[0])
	s.standardizeParams(X, dims)
	xs := s.standardize(X)

	s.Weights = make([]float64, dims)
	s.Bias = 0

	n := float64(len(xs))
	for epoch := 0; epoch < s.Epochs; epoch++ {
		gradW := make([]float64, dims)
		gradB := 0.0

		for i, row := range xs {
			p := sigmoid(dot(s.Weights, row) + s.Bias)
			diff := p - float64(y[i])
			for j, v := range row {
				gradW[j] += diff * v
			}
			gradB += diff
		}

		for j := range s.Weights {
			s.Weights[j] -= s.LearningRate * (gradW[j]/n + s.L2*s.Weights[j])
		}
		s.Bias -= s.LearningRate * gradB / n
	}

	return nil
}

// PredictProba returns one probability per row.
func (s *LogisticScorer) PredictProba(X [][]float64) []float64 {
	xs := s.standardize(X)
	probs := make([]float64, len(xs))
	for i, row := range xs {
		probs[i] = sigmoid(dot(s.Weights, row) + s.Bias)
	}
	return probs
}

// plainLogisticScorer has the same fields as LogisticScorer but none of
// its methods, so gob encodes the struct fields directly instead of
// re-entering MarshalBinary/UnmarshalBinary on itself.
type plainLogisticScorer LogisticScorer

// MarshalBinary encodes the scorer with gob.
func (s *LogisticScorer) MarshalBinary() ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode((*plainLogisticScorer)(s)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// UnmarshalBinary decodes a gob-encoded scorer.
func (s *LogisticScorer) UnmarshalBinary(data []byte) error {
	return gob.NewDecoder(bytes.NewReader(data)).Decode((*plainLogisticScorer)(s))
}

func (s *LogisticScorer) standardizeParams(X [][]float64, dims int) {
	s.Means = make([]float64, dims)
	s.Stds = make([]float64, dims)

	n := float64(len(X))
	for _, row := range X {
		for j, v := range row {
			s.Means[j] += v
		}
	}
	for j := range s.Means {
		s.Means[j] /= n
	}
	for _, row := range X {
		for j, v := range row {
			d := v - s.Means[j]
			s.Stds[j] += d * d
		}
	}
	for j := range s.Stds {
		s.Stds[j] = math.Sqrt(s.Stds[j] / n)
		if s.Stds[j] == 0 {
			s.Stds[j] = 1
		}
	}
}

func (s *LogisticScorer) standardize(X [][]float64) [][]float64 {
	out := make([][]float64, len(X))
	for i, row := range X {
		std := make([]float64, len(row))
		for j, v := range row {
			if j < len(s.Means) {
				std[j] = (v - s.Means[j]) / s.Stds[j]
			}
		}
		out[i] = std
	}
	return out
}

func sigmoid(z float64) float64 {
	return 1.0 / (1.0 + math.Exp(-z))
}

func dot(a, b []float64) float64 {
	var sum float64
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}
