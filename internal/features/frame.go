package features

import (
	"time"

	"github.com/quantops/modellab/internal/contracts"
)

// Row is one training sample derived from a realized outcome.
type Row struct {
	Vector       []float64
	SignedReturn float64
	Label        int
	Date         string // calendar date of the decision timestamp
	Timestamp    time.Time
}

// Frame is a time-window of outcomes for one mode turned into numeric
// training data. Built fresh per training run, never persisted.
type Frame struct {
	Mode   contracts.Mode
	Schema *Schema
	Rows   []Row
}

// Len returns the number of rows.
func (f *Frame) Len() int {
	return len(f.Rows)
}

// Builder turns raw outcomes into training frames against a fixed schema.
type Builder struct {
	schema     *Schema
	thresholds map[contracts.Mode]float64
}

// NewBuilder creates a frame builder. Thresholds map a mode to the
// minimum signed return that counts as a positive label.
func NewBuilder(schema *Schema, thresholds map[contracts.Mode]float64) *Builder {
	return &Builder{
		schema:     schema,
		thresholds: thresholds,
	}
}

// Schema returns the builder's canonical schema.
func (b *Builder) Schema() *Schema {
	return b.schema
}

// Build converts outcomes into a frame for the given mode. Rows keep the
// order of the input, which the store returns ascending by timestamp.
func (b *Builder) Build(mode contracts.Mode, outcomes []*contracts.TradingOutcome) *Frame {
	frame := &Frame{
		Mode:   mode,
		Schema: b.schema,
		Rows:   make([]Row, 0, len(outcomes)),
	}

	threshold := b.thresholds[mode]

	for _, o := range outcomes {
		if o.EntryPrice == 0 {
			continue
		}

		ret := SignedReturn(o)

		label := 0
		if ret >= threshold {
			label = 1
		}

		frame.Rows = append(frame.Rows, Row{
			Vector:       b.schema.Vector(o.Features),
			SignedReturn: ret,
			Label:        label,
			Date:         o.Timestamp.UTC().Format("2006-01-02"),
			Timestamp:    o.Timestamp,
		})
	}

	return frame
}

// SignedReturn computes the direction-adjusted return of an outcome:
// (exit-entry)/entry for longs, negated for shorts.
func SignedReturn(o *contracts.TradingOutcome) float64 {
	ret := (o.ExitPrice - o.EntryPrice) / o.EntryPrice
	if o.Side == contracts.SideShort {
		ret = -ret
	}
	return ret
}
