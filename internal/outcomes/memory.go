package outcomes

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/quantops/modellab/internal/contracts"
)

// MemoryRepository is an in-memory contracts.OutcomeRepository for tests
// and standalone runs without a database.
type MemoryRepository struct {
	mu   sync.RWMutex
	rows []*contracts.TradingOutcome
}

// NewMemoryRepository creates an empty in-memory repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{}
}

// Append stores a copy of the outcome.
func (r *MemoryRepository) Append(ctx context.Context, o *contracts.TradingOutcome) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	clone := *o
	if o.Features != nil {
		clone.Features = make(map[string]float64, len(o.Features))
		for k, v := range o.Features {
			clone.Features[k] = v
		}
	}
	r.rows = append(r.rows, &clone)
	return nil
}

// Query returns outcomes for a mode since the given time, ascending by
// decision timestamp.
func (r *MemoryRepository) Query(ctx context.Context, mode contracts.Mode, since time.Time) ([]*contracts.TradingOutcome, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []*contracts.TradingOutcome
	for _, o := range r.rows {
		if o.Mode == mode && !o.Timestamp.Before(since) {
			result = append(result, o)
		}
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Timestamp.Before(result[j].Timestamp)
	})
	return result, nil
}

// Count returns the total number of outcomes.
func (r *MemoryRepository) Count(ctx context.Context) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return int64(len(r.rows)), nil
}

// CountSince returns the number of outcomes for a mode since the given
// time.
func (r *MemoryRepository) CountSince(ctx context.Context, mode contracts.Mode, since time.Time) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var count int64
	for _, o := range r.rows {
		if o.Mode == mode && !o.Timestamp.Before(since) {
			count++
		}
	}
	return count, nil
}
