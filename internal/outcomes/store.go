package outcomes

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/quantops/modellab/internal/contracts"
)

// Store is the append-only log of realized trade outcomes. Writes are
// serialized per mode; reads go straight to the repository and are never
// blocked by a writer.
type Store struct {
	repo contracts.OutcomeRepository
	log  zerolog.Logger

	writeMu map[contracts.Mode]*sync.Mutex
}

// NewStore creates a store over the given repository.
func NewStore(repo contracts.OutcomeRepository, log zerolog.Logger) *Store {
	writeMu := make(map[contracts.Mode]*sync.Mutex, len(contracts.AllModes))
	for _, mode := range contracts.AllModes {
		writeMu[mode] = &sync.Mutex{}
	}
	return &Store{
		repo:    repo,
		log:     log.With().Str("component", "outcomes.store").Logger(),
		writeMu: writeMu,
	}
}

// Append durably writes one outcome. Returns false on storage failure or
// invalid input; it never panics or propagates an error to the caller,
// who may simply retry.
func (s *Store) Append(ctx context.Context, o *contracts.TradingOutcome) bool {
	if o == nil || !o.Mode.Valid() || !o.Side.Valid() {
		s.log.Warn().Msg("rejected malformed outcome")
		return false
	}

	mu := s.writeMu[o.Mode]
	mu.Lock()
	defer mu.Unlock()

	if err := s.repo.Append(ctx, o); err != nil {
		s.log.Error().Err(err).
			Str("symbol", o.Symbol).
			Str("mode", string(o.Mode)).
			Msg("outcome append failed")
		return false
	}

	s.log.Debug().
		Str("symbol", o.Symbol).
		Str("side", string(o.Side)).
		Str("outcome", o.Outcome).
		Msg("outcome logged")
	return true
}

// Query returns outcomes for a mode since the given time, ascending by
// decision timestamp.
func (s *Store) Query(ctx context.Context, mode contracts.Mode, since time.Time) ([]*contracts.TradingOutcome, error) {
	return s.repo.Query(ctx, mode, since)
}

// Count returns the total number of logged outcomes.
func (s *Store) Count(ctx context.Context) (int64, error) {
	return s.repo.Count(ctx)
}

// CountSince returns the number of outcomes for a mode since the given
// time.
func (s *Store) CountSince(ctx context.Context, mode contracts.Mode, since time.Time) (int64, error) {
	return s.repo.CountSince(ctx, mode, since)
}
