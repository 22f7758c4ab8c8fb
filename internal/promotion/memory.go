package promotion

import (
	"context"
	"fmt"
	"sync"

	"github.com/quantops/modellab/internal/contracts"
)

// MemoryRepository is an in-memory contracts.ModelRepository for tests
// and standalone runs without a database.
type MemoryRepository struct {
	mu       sync.RWMutex
	metrics  []*contracts.ModelMetrics
	versions []*contracts.ModelVersion
}

// NewMemoryRepository creates an empty in-memory repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{}
}

// SaveMetrics records candidate metrics.
func (r *MemoryRepository) SaveMetrics(ctx context.Context, m *contracts.ModelMetrics) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := *m
	r.metrics = append(r.metrics, &clone)
	return nil
}

// SaveVersion records where an artifact lives.
func (r *MemoryRepository) SaveVersion(ctx context.Context, v *contracts.ModelVersion) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := *v
	r.versions = append(r.versions, &clone)
	return nil
}

// ActiveMetrics returns the active metrics for a mode, or (nil, nil).
func (r *MemoryRepository) ActiveMetrics(ctx context.Context, mode contracts.Mode) (*contracts.ModelMetrics, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, m := range r.metrics {
		if m.Mode == mode && m.IsActive {
			clone := *m
			return &clone, nil
		}
	}
	return nil, nil
}

// ActiveVersion returns the active version for a mode, or (nil, nil).
func (r *MemoryRepository) ActiveVersion(ctx context.Context, mode contracts.Mode) (*contracts.ModelVersion, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, v := range r.versions {
		if v.Mode == mode && v.IsActive {
			clone := *v
			return &clone, nil
		}
	}
	return nil, nil
}

// Activate swaps the active flag to the given model for both metrics and
// versions under one lock.
func (r *MemoryRepository) Activate(ctx context.Context, mode contracts.Mode, modelID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var foundMetrics, foundVersion bool
	for _, m := range r.metrics {
		if m.Mode == mode && m.ModelID == modelID {
			foundMetrics = true
		}
	}
	for _, v := range r.versions {
		if v.Mode == mode && v.ModelID == modelID {
			foundVersion = true
		}
	}
	if !foundMetrics {
		return fmt.Errorf("model %s not found in metrics", modelID)
	}
	if !foundVersion {
		return fmt.Errorf("model %s not found in versions", modelID)
	}

	for _, m := range r.metrics {
		if m.Mode == mode {
			m.IsActive = m.ModelID == modelID
		}
	}
	for _, v := range r.versions {
		if v.Mode == mode {
			v.IsActive = v.ModelID == modelID
		}
	}
	return nil
}

// MetricsHistory returns every recorded candidate for a mode, in insert
// order. Used by tests and the status view.
func (r *MemoryRepository) MetricsHistory(mode contracts.Mode) []*contracts.ModelMetrics {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*contracts.ModelMetrics
	for _, m := range r.metrics {
		if m.Mode == mode {
			clone := *m
			out = append(out, &clone)
		}
	}
	return out
}
