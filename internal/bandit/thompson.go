package bandit

import (
	"context"
	"math"
	"math/rand"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/quantops/modellab/internal/contracts"
)

// ArmStore persists arm parameters across restarts. Persistence is
// best-effort; selection never blocks on it.
type ArmStore interface {
	Load(ctx context.Context) (map[string]ArmState, error)
	Save(ctx context.Context, strategy string, state ArmState) error
}

// ArmState is the Beta posterior of one arm.
type ArmState struct {
	Alpha float64 `json:"alpha"`
	Beta  float64 `json:"beta"`
}

// Bandit selects among named trading strategies with Thompson sampling.
// Each arm carries Beta(alpha, beta) parameters starting at (1,1), updated
// only by observed rewards. Exploration shrinks automatically as evidence
// accumulates.
type Bandit struct {
	mu    sync.Mutex
	arms  map[string]*ArmState
	order []string
	rng   *rand.Rand
	store ArmStore
	log   zerolog.Logger
}

// New creates a bandit over the given strategies. store may be nil.
func New(strategies []string, store ArmStore, log zerolog.Logger) *Bandit {
	arms := make(map[string]*ArmState, len(strategies))
	order := make([]string, 0, len(strategies))
	for _, s := range strategies {
		arms[s] = &ArmState{Alpha: 1, Beta: 1}
		order = append(order, s)
	}

	b := &Bandit{
		arms:  arms,
		order: order,
		rng:   rand.New(rand.NewSource(time.Now().UnixNano())),
		store: store,
		log:   log.With().Str("component", "bandit").Logger(),
	}
	b.restore()
	return b
}

// restore loads persisted arm state for known strategies.
func (b *Bandit) restore() {
	if b.store == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	saved, err := b.store.Load(ctx)
	if err != nil {
		b.log.Warn().Err(err).Msg("bandit state restore failed, starting from priors")
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	for strategy, state := range saved {
		if arm, ok := b.arms[strategy]; ok && state.Alpha >= 1 && state.Beta >= 1 {
			arm.Alpha = state.Alpha
			arm.Beta = state.Beta
		}
	}
}

// Select draws one sample per arm from its Beta posterior and returns the
// strategy with the highest sample.
func (b *Bandit) Select() string {
	b.mu.Lock()
	defer b.mu.Unlock()

	best := ""
	bestSample := math.Inf(-1)
	for _, strategy := range b.order {
		arm := b.arms[strategy]
		sample := b.sampleBeta(arm.Alpha, arm.Beta)
		if sample > bestSample {
			bestSample = sample
			best = strategy
		}
	}
	return best
}

// Update applies an observed reward: reward > 0 increments alpha,
// otherwise beta. Unknown strategies are ignored.
func (b *Bandit) Update(ctx context.Context, strategy string, reward float64) {
	b.mu.Lock()
	arm, ok := b.arms[strategy]
	if !ok {
		b.mu.Unlock()
		b.log.Warn().Str("strategy", strategy).Msg("reward for unknown strategy ignored")
		return
	}

	if reward > 0 {
		arm.Alpha++
	} else {
		arm.Beta++
	}
	state := *arm
	b.mu.Unlock()

	if b.store != nil {
		if err := b.store.Save(ctx, strategy, state); err != nil {
			b.log.Warn().Err(err).Str("strategy", strategy).Msg("bandit state save failed")
		}
	}
}

// Snapshot returns a read-only view of every arm, sorted by strategy.
func (b *Bandit) Snapshot() []contracts.ArmSnapshot {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make([]contracts.ArmSnapshot, 0, len(b.order))
	for _, strategy := range b.order {
		arm := b.arms[strategy]
		total := arm.Alpha + arm.Beta
		out = append(out, contracts.ArmSnapshot{
			Strategy:   strategy,
			Alpha:      arm.Alpha,
			Beta:       arm.Beta,
			WinRate:    arm.Alpha / total,
			Confidence: total,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Strategy < out[j].Strategy })
	return out
}

// sampleBeta draws from Beta(a, b) via two Gamma draws. Callers hold the
// mutex, which also guards the rng.
func (b *Bandit) sampleBeta(a, bb float64) float64 {
	ga := b.sampleGamma(a)
	gb := b.sampleGamma(bb)
	if ga+gb == 0 {
		return 0.5
	}
	return ga / (ga + gb)
}

// sampleGamma draws from Gamma(shape, 1) with the Marsaglia-Tsang method.
// Arm parameters only grow from 1, so shape >= 1 always holds.
func (b *Bandit) sampleGamma(shape float64) float64 {
	d := shape - 1.0/3.0
	c := 1.0 / math.Sqrt(9.0*d)
	for {
		x := b.rng.NormFloat64()
		v := 1.0 + c*x
		if v <= 0 {
			continue
		}
		v = v * v * v
		u := b.rng.Float64()
		if u < 1.0-0.0331*x*x*x*x {
			return d * v
		}
		if math.Log(u) < 0.5*x*x+d*(1.0-v+math.Log(v)) {
			return d * v
		}
	}
}
