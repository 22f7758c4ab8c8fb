package bandit

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/quantops/modellab/pkg/redis"
)

const redisKeyPrefix = "modellab:bandit:"

// RedisStore persists arm state in Redis so strategy selection survives
// restarts. When Redis is disabled every call is a no-op.
type RedisStore struct {
	client     *redis.Client
	strategies []string
}

// NewRedisStore creates a store for the given strategy set.
func NewRedisStore(client *redis.Client, strategies []string) *RedisStore {
	return &RedisStore{client: client, strategies: strategies}
}

// Load reads the persisted state of every known strategy. Missing keys
// are skipped.
func (s *RedisStore) Load(ctx context.Context) (map[string]ArmState, error) {
	out := make(map[string]ArmState)
	if !s.client.Enabled() {
		return out, nil
	}

	for _, strategy := range s.strategies {
		data, err := s.client.Redis().Get(ctx, redisKeyPrefix+strategy).Bytes()
		if err != nil {
			continue
		}
		var state ArmState
		if err := json.Unmarshal(data, &state); err != nil {
			return nil, fmt.Errorf("decode arm state for %s: %w", strategy, err)
		}
		out[strategy] = state
	}
	return out, nil
}

// Save writes one arm's state.
func (s *RedisStore) Save(ctx context.Context, strategy string, state ArmState) error {
	if !s.client.Enabled() {
		return nil
	}

	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("encode arm state: %w", err)
	}
	return s.client.Redis().Set(ctx, redisKeyPrefix+strategy, data, 0).Err()
}
