package drift

import (
	"fmt"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/quantops/modellab/internal/contracts"
	"github.com/quantops/modellab/internal/features"
	"github.com/quantops/modellab/internal/policy"
)

const epsilon = 1e-8

// Detector compares current feature data against a frozen reference
// snapshot using the population stability index. The reference is
// captured once and stays stable until an explicit Reset.
type Detector struct {
	mu        sync.RWMutex
	schema    *features.Schema
	bins      int
	threshold float64
	log       zerolog.Logger

	// Per-feature quantile bin edges derived from the reference, and the
	// reference proportions per bin. Frozen together with the snapshot.
	edges       [][]float64
	expectedPct [][]float64
}

// NewDetector creates a drift detector for the canonical schema.
func NewDetector(schema *features.Schema, pol policy.DriftPolicy, log zerolog.Logger) *Detector {
	return &Detector{
		schema:    schema,
		bins:      pol.Bins,
		threshold: pol.Threshold,
		log:       log.With().Str("component", "drift.detector").Logger(),
	}
}

// UpdateReference captures the reference snapshot. Subsequent calls are
// no-ops until Reset; returns whether the snapshot was captured.
func (d *Detector) UpdateReference(data [][]float64) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.edges != nil {
		return false
	}
	if len(data) == 0 {
		return false
	}

	width := d.schema.Len()
	d.edges = make([][]float64, width)
	d.expectedPct = make([][]float64, width)

	for j := 0; j < width; j++ {
		col := column(data, j)
		edges := quantileEdges(col, d.bins)
		d.edges[j] = edges
		d.expectedPct[j] = binProportions(col, edges)
	}

	d.log.Info().Int("rows", len(data)).Msg("drift reference captured")
	return true
}

// HasReference reports whether a snapshot is frozen.
func (d *Detector) HasReference() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.edges != nil
}

// Reset clears the frozen reference so the next UpdateReference call
// captures a fresh snapshot.
func (d *Detector) Reset() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.edges = nil
	d.expectedPct = nil
	d.log.Info().Msg("drift reference reset")
}

// Detect computes per-feature PSI of the current data against the frozen
// reference. When no reference exists yet the current data becomes the
// reference and the report is a clean no-drift verdict.
func (d *Detector) Detect(current [][]float64) (*contracts.DriftReport, error) {
	if len(current) == 0 {
		return nil, fmt.Errorf("empty current data")
	}
	for i, row := range current {
		if len(row) != d.schema.Len() {
			return nil, fmt.Errorf("row %d has width %d, schema wants %d", i, len(row), d.schema.Len())
		}
	}

	if !d.HasReference() {
		d.UpdateReference(current)
		return &contracts.DriftReport{
			Scores:    map[string]float64{},
			Threshold: d.threshold,
			CheckedAt: time.Now().UTC(),
		}, nil
	}

	d.mu.RLock()
	defer d.mu.RUnlock()

	report := &contracts.DriftReport{
		Scores:    make(map[string]float64, d.schema.Len()),
		Threshold: d.threshold,
		CheckedAt: time.Now().UTC(),
	}

	names := d.schema.Names()
	for j, name := range names {
		actualPct := binProportions(column(current, j), d.edges[j])
		score := psi(d.expectedPct[j], actualPct)
		report.Scores[name] = score
		if score > report.MaxScore || report.MaxFeature == "" {
			report.MaxScore = score
			report.MaxFeature = name
		}
	}

	report.DriftDetected = report.MaxScore > d.threshold
	if report.DriftDetected {
		d.log.Warn().
			Str("feature", report.MaxFeature).
			Float64("psi", report.MaxScore).
			Float64("threshold", d.threshold).
			Msg("feature drift detected")
	}
	return report, nil
}

// quantileEdges derives interior bin edges from the sorted reference
// column. The outer bins are open-ended, so bins-1 edges describe bins
// buckets. Duplicate edges from constant stretches are collapsed.
func quantileEdges(col []float64, bins int) []float64 {
	sorted := make([]float64, len(col))
	copy(sorted, col)
	sort.Float64s(sorted)

	edges := make([]float64, 0, bins-1)
	for i := 1; i < bins; i++ {
		idx := i * len(sorted) / bins
		if idx >= len(sorted) {
			idx = len(sorted) - 1
		}
		edge := sorted[idx]
		if len(edges) == 0 || edge > edges[len(edges)-1] {
			edges = append(edges, edge)
		}
	}
	return edges
}

// binProportions counts values per bin against the given edges and
// normalizes to proportions. A value lands in the first bin whose edge
// exceeds it; values past the last edge land in the open top bin.
func binProportions(col []float64, edges []float64) []float64 {
	counts := make([]float64, len(edges)+1)
	for _, v := range col {
		idx := sort.SearchFloat64s(edges, v)
		// SearchFloat64s returns the first edge >= v; values equal to an
		// edge belong to the bin above it.
		if idx < len(edges) && edges[idx] == v {
			idx++
		}
		if idx > len(edges) {
			idx = len(edges)
		}
		counts[idx]++
	}

	total := float64(len(col))
	for i := range counts {
		counts[i] /= total
	}
	return counts
}

// psi is the population stability index between expected and actual bin
// proportions, with epsilon smoothing against empty bins.
func psi(expected, actual []float64) float64 {
	var sum float64
	for i := range expected {
		e := expected[i] + epsilon
		a := epsilon
		if i < len(actual) {
			a = actual[i] + epsilon
		}
		sum += (a - e) * math.Log(a/e)
	}
	return sum
}

func column(data [][]float64, j int) []float64 {
	col := make([]float64, len(data))
	for i, row := range data {
		if j < len(row) {
			col[i] = row[j]
		}
	}
	return col
}
