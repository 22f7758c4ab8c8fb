package training

import "math"

// CalibrationParams are the fitted Platt sigmoid coefficients. The
// calibrated probability of a raw score s is 1/(1+exp(A*s+B)).
type CalibrationParams struct {
	A float64 `json:"a"`
	B float64 `json:"b"`
}

// FitPlatt fits sigmoid calibration on raw scores versus true labels via
// gradient descent. Degenerate inputs yield the identity-ish default
// (A=-1, B=0), which leaves score ordering untouched.
func FitPlatt(scores []float64, y []int) CalibrationParams {
	params := CalibrationParams{A: -1, B: 0}
	if len(scores) < 2 || len(scores) != len(y) {
		return params
	}

	pos, neg := 0, 0
	for _, label := range y {
		if label == 1 {
			pos++
		} else {
			neg++
		}
	}
	if pos == 0 || neg == 0 {
		return params
	}

	// Platt's target smoothing keeps the fit away from hard 0/1 targets.
	tPos := (float64(pos) + 1) / (float64(pos) + 2)
	tNeg := 1 / (float64(neg) + 2)

	a, b := -1.0, 0.0
	lr := 0.01
	n := float64(len(scores))

	for iter := 0; iter < 500; iter++ {
		gradA, gradB := 0.0, 0.0
		for i, s := range scores {
			t := tNeg
			if y[i] == 1 {
				t = tPos
			}
			p := 1.0 / (1.0 + math.Exp(a*s+b))
			// dNLL/d(a*s+b) = t - p for this parameterization
			diff := t - p
			gradA += diff * s
			gradB += diff
		}
		a -= lr * gradA / n
		b -= lr * gradB / n
	}

	params.A = a
	params.B = b
	return params
}

// Calibrate maps a raw score through the fitted sigmoid.
func (p CalibrationParams) Calibrate(score float64) float64 {
	return 1.0 / (1.0 + math.Exp(p.A*score+p.B))
}

// CalibrateAll maps a slice of raw scores.
func (p CalibrationParams) CalibrateAll(scores []float64) []float64 {
	out := make([]float64, len(scores))
	for i, s := range scores {
		out[i] = p.Calibrate(s)
	}
	return out
}
