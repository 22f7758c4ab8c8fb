package bandit

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantops/modellab/pkg/logger"
)

var testStrategies = []string{"breakout", "mean_reversion", "momentum"}

func newTestBandit(store ArmStore) *Bandit {
	return New(testStrategies, store, logger.NewNop().Zerolog())
}

func TestBandit_StartsAtUniformPrior(t *testing.T) {
	b := newTestBandit(nil)

	snapshot := b.Snapshot()
	require.Len(t, snapshot, 3)
	for _, arm := range snapshot {
		assert.Equal(t, 1.0, arm.Alpha)
		assert.Equal(t, 1.0, arm.Beta)
		assert.Equal(t, 0.5, arm.WinRate)
		assert.Equal(t, 2.0, arm.Confidence)
	}
}

func TestBandit_SelectReturnsKnownStrategy(t *testing.T) {
	b := newTestBandit(nil)
	for i := 0; i < 100; i++ {
		assert.Contains(t, testStrategies, b.Select())
	}
}

func TestBandit_UpdateMovesPosterior(t *testing.T) {
	b := newTestBandit(nil)
	ctx := context.Background()

	b.Update(ctx, "breakout", 0.02)
	b.Update(ctx, "breakout", 0.01)
	b.Update(ctx, "breakout", -0.01)

	for _, arm := range b.Snapshot() {
		if arm.Strategy == "breakout" {
			assert.Equal(t, 3.0, arm.Alpha)
			assert.Equal(t, 2.0, arm.Beta)
			assert.InDelta(t, 0.6, arm.WinRate, 1e-9)
			assert.Equal(t, 5.0, arm.Confidence)
		} else {
			assert.Equal(t, 1.0, arm.Alpha)
			assert.Equal(t, 1.0, arm.Beta)
		}
	}
}

func TestBandit_ZeroRewardCountsAsLoss(t *testing.T) {
	b := newTestBandit(nil)
	b.Update(context.Background(), "momentum", 0)

	for _, arm := range b.Snapshot() {
		if arm.Strategy == "momentum" {
			assert.Equal(t, 1.0, arm.Alpha)
			assert.Equal(t, 2.0, arm.Beta)
		}
	}
}

func TestBandit_IgnoresUnknownStrategy(t *testing.T) {
	b := newTestBandit(nil)
	b.Update(context.Background(), "hodl", 1.0)

	for _, arm := range b.Snapshot() {
		assert.Equal(t, 1.0, arm.Alpha)
		assert.Equal(t, 1.0, arm.Beta)
	}
}

func TestBandit_ConvergesToRewardedArm(t *testing.T) {
	b := newTestBandit(nil)
	ctx := context.Background()

	// Feed one arm wins and the rest losses.
	for i := 0; i < 1000; i++ {
		b.Update(ctx, "momentum", 0.01)
		b.Update(ctx, "breakout", -0.01)
		b.Update(ctx, "mean_reversion", -0.01)
	}

	picks := make(map[string]int)
	for i := 0; i < 1000; i++ {
		picks[b.Select()]++
	}
	assert.Greater(t, picks["momentum"], 950, "picks: %v", picks)
}

type memoryArmStore struct {
	states  map[string]ArmState
	loadErr error
}

func (s *memoryArmStore) Load(ctx context.Context) (map[string]ArmState, error) {
	if s.loadErr != nil {
		return nil, s.loadErr
	}
	return s.states, nil
}

func (s *memoryArmStore) Save(ctx context.Context, strategy string, state ArmState) error {
	if s.states == nil {
		s.states = make(map[string]ArmState)
	}
	s.states[strategy] = state
	return nil
}

func TestBandit_RestoresPersistedState(t *testing.T) {
	store := &memoryArmStore{states: map[string]ArmState{
		"momentum": {Alpha: 40, Beta: 10},
		"unknown":  {Alpha: 99, Beta: 1},  // dropped: not a configured arm
		"breakout": {Alpha: 0.5, Beta: 1}, // dropped: below the (1,1) prior
	}}

	b := newTestBandit(store)
	for _, arm := range b.Snapshot() {
		switch arm.Strategy {
		case "momentum":
			assert.Equal(t, 40.0, arm.Alpha)
			assert.Equal(t, 10.0, arm.Beta)
		default:
			assert.Equal(t, 1.0, arm.Alpha)
			assert.Equal(t, 1.0, arm.Beta)
		}
	}
}

func TestBandit_RestoreFailureFallsBackToPriors(t *testing.T) {
	store := &memoryArmStore{loadErr: errors.New("redis down")}

	b := newTestBandit(store)
	for _, arm := range b.Snapshot() {
		assert.Equal(t, 1.0, arm.Alpha)
		assert.Equal(t, 1.0, arm.Beta)
	}
}

func TestBandit_UpdatePersists(t *testing.T) {
	store := &memoryArmStore{}
	b := newTestBandit(store)

	b.Update(context.Background(), "breakout", 1)

	require.Contains(t, store.states, "breakout")
	assert.Equal(t, ArmState{Alpha: 2, Beta: 1}, store.states["breakout"])
}
