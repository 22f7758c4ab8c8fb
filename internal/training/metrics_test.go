package training

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAUC(t *testing.T) {
	tests := []struct {
		name   string
		probs  []float64
		labels []int
		want   float64
	}{
		{
			name:   "perfect separation",
			probs:  []float64{0.9, 0.8, 0.2, 0.1},
			labels: []int{1, 1, 0, 0},
			want:   1.0,
		},
		{
			name:   "perfectly inverted",
			probs:  []float64{0.1, 0.2, 0.8, 0.9},
			labels: []int{1, 1, 0, 0},
			want:   0.0,
		},
		{
			name:   "all positive labels",
			probs:  []float64{0.3, 0.7},
			labels: []int{1, 1},
			want:   0.5,
		},
		{
			name:   "all negative labels",
			probs:  []float64{0.3, 0.7},
			labels: []int{0, 0},
			want:   0.5,
		},
		{
			name:   "all probabilities tied",
			probs:  []float64{0.5, 0.5, 0.5, 0.5},
			labels: []int{1, 0, 1, 0},
			want:   0.5,
		},
		{
			name:   "one discordant pair",
			probs:  []float64{0.9, 0.4, 0.6, 0.1},
			labels: []int{1, 1, 0, 0},
			want:   0.75,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, AUC(tt.probs, tt.labels), 1e-9)
		})
	}
}

func TestPrecisionAtKByDay(t *testing.T) {
	dates := []string{
		"2026-03-01", "2026-03-01", "2026-03-01", "2026-03-01",
		"2026-03-02", "2026-03-02",
	}
	probs := []float64{0.9, 0.8, 0.7, 0.1, 0.6, 0.4}
	labels := []int{1, 1, 0, 1, 1, 0}

	// Day 1 top-3: labels 1,1,0 -> 2/3. Day 2 has only 2 rows, uses
	// both: 1,0 -> 1/2. Mean = (2/3 + 1/2) / 2.
	want := (2.0/3.0 + 0.5) / 2
	assert.InDelta(t, want, PrecisionAtKByDay(dates, probs, labels, 3), 1e-9)
}

func TestPrecisionAtKByDay_Empty(t *testing.T) {
	assert.Equal(t, 0.0, PrecisionAtKByDay(nil, nil, nil, 3))
}

func TestDailyTopKReturns(t *testing.T) {
	dates := []string{"2026-03-02", "2026-03-02", "2026-03-01", "2026-03-01", "2026-03-01"}
	probs := []float64{0.9, 0.1, 0.8, 0.7, 0.2}
	returns := []float64{0.02, -0.05, 0.01, 0.03, -0.10}

	series := DailyTopKReturns(dates, probs, returns, 2)
	// Day 2026-03-01 top-2 by prob: returns 0.01, 0.03 -> 0.02.
	// Day 2026-03-02 top-2 is both rows: (0.02 - 0.05)/2 = -0.015.
	// Series is date-ordered.
	assert.Len(t, series, 2)
	assert.InDelta(t, 0.02, series[0], 1e-9)
	assert.InDelta(t, -0.015, series[1], 1e-9)
}

func TestHitRate(t *testing.T) {
	assert.Equal(t, 0.0, HitRate(nil))
	assert.InDelta(t, 0.75, HitRate([]int{1, 1, 1, 0}), 1e-9)
}

func TestSharpe(t *testing.T) {
	assert.Equal(t, 0.0, Sharpe(nil))
	assert.Equal(t, 0.0, Sharpe([]float64{0.01}))
	// Zero variance must not divide by zero.
	assert.Equal(t, 0.0, Sharpe([]float64{0.01, 0.01, 0.01}))

	// Alternating series: mean 0.005, population std 0.005.
	got := Sharpe([]float64{0.01, 0.0, 0.01, 0.0})
	assert.InDelta(t, 1.0*math.Sqrt(252), got, 1e-9)
}

func TestMaxDrawdown(t *testing.T) {
	assert.Equal(t, 0.0, MaxDrawdown(nil))

	// Monotonic gains never draw down.
	assert.Equal(t, 0.0, MaxDrawdown([]float64{0.01, 0.02, 0.005}))

	// 1.0 -> 1.1 -> 0.88: drawdown from the 1.1 peak is -20%.
	got := MaxDrawdown([]float64{0.10, -0.20})
	assert.InDelta(t, -0.20, got, 1e-9)

	// Recovery after the trough does not shrink the reported drawdown.
	got = MaxDrawdown([]float64{0.10, -0.20, 0.50})
	assert.InDelta(t, -0.20, got, 1e-9)
}
