package commands

import (
	"context"
	"fmt"

	"github.com/quantops/modellab/internal/bandit"
	"github.com/quantops/modellab/internal/contracts"
	"github.com/quantops/modellab/internal/drift"
	"github.com/quantops/modellab/internal/features"
	"github.com/quantops/modellab/internal/lifecycle"
	"github.com/quantops/modellab/internal/metrics"
	"github.com/quantops/modellab/internal/outcomes"
	"github.com/quantops/modellab/internal/policy"
	"github.com/quantops/modellab/internal/promotion"
	"github.com/quantops/modellab/internal/training"
	"github.com/quantops/modellab/pkg/config"
	"github.com/quantops/modellab/pkg/database"
	"github.com/quantops/modellab/pkg/logger"
	"github.com/quantops/modellab/pkg/redis"
)

// app holds every wired component a command may need.
// SSOT: component construction order lives in buildApp only.
type app struct {
	cfg         *config.Config
	log         *logger.Logger
	db          *database.DB
	redis       *redis.Client
	pol         *policy.Policy
	schema      *features.Schema
	store       *outcomes.Store
	trainer     *training.Trainer
	gate        *promotion.Gate
	bandit      *bandit.Bandit
	detector    *drift.Detector
	coordinator *lifecycle.Coordinator
	metrics     *metrics.Registry
}

// buildApp loads config and wires the full component graph.
func buildApp() (*app, error) {
	// 1. Load config
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if policyFile != "" {
		cfg.Lifecycle.PolicyPath = policyFile
	}

	// 2. Initialize logger
	log := logger.New(cfg)

	// 3. Connect to database
	db, err := database.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	// 4. Connect to Redis (optional; bandit state falls back to in-memory)
	rdb, err := redis.New(cfg)
	if err != nil {
		log.WithError(err).Warn("Redis unavailable, bandit state will not persist")
		rdb = redis.Disabled()
	}

	// 5. Load policy
	pol, err := policy.LoadOrDefault(cfg.Lifecycle.PolicyPath)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("load policy: %w", err)
	}

	// 6. Feature schema and frame builder
	schema := features.NewSchema(pol.Features.Schema)
	builder := features.NewBuilder(schema, map[contracts.Mode]float64{
		contracts.ModeSafe:       pol.Labels.SafeThreshold,
		contracts.ModeAggressive: pol.Labels.AggressiveThreshold,
	})

	// 7. Repositories
	ctx := context.Background()
	if err := outcomes.EnsureSchema(ctx, db.Pool); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensure outcome schema: %w", err)
	}
	if err := promotion.EnsureSchema(ctx, db.Pool); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensure model schema: %w", err)
	}
	outcomeRepo := outcomes.NewRepository(db.Pool)
	modelRepo := promotion.NewRepository(db.Pool)

	// 8. Core components
	store := outcomes.NewStore(outcomeRepo, log.Zerolog())

	artifacts, err := training.NewArtifactStore(cfg.Lifecycle.ModelsDir, log.Zerolog())
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("create artifact store: %w", err)
	}

	trainer := training.NewTrainer(
		store, builder, modelRepo, artifacts, pol,
		func() training.Scorer { return training.NewLogisticScorer() },
		log.Zerolog(),
	)

	gate := promotion.NewGate(modelRepo, pol.Promotion, log.Zerolog())

	armStore := bandit.NewRedisStore(rdb, pol.Bandit.Strategies)
	b := bandit.New(pol.Bandit.Strategies, armStore, log.Zerolog())

	detector := drift.NewDetector(schema, pol.Drift, log.Zerolog())

	coordinator := lifecycle.NewCoordinator(store, trainer, gate, b, pol, log.Zerolog())

	return &app{
		cfg:         cfg,
		log:         log,
		db:          db,
		redis:       rdb,
		pol:         pol,
		schema:      schema,
		store:       store,
		trainer:     trainer,
		gate:        gate,
		bandit:      b,
		detector:    detector,
		coordinator: coordinator,
		metrics:     metrics.NewRegistry(),
	}, nil
}

// Close releases database and Redis connections.
func (a *app) Close() {
	if a.redis != nil {
		_ = a.redis.Close()
	}
	if a.db != nil {
		a.db.Close()
	}
}
