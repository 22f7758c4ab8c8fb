package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/time/rate"

	"github.com/quantops/modellab/internal/api"
	"github.com/quantops/modellab/internal/api/handlers"
	"github.com/quantops/modellab/internal/scheduler"
	"github.com/quantops/modellab/internal/scheduler/jobs"
	"github.com/quantops/modellab/pkg/redis"
)

// apiCmd represents the api command
var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "Start the API server",
	Long: `Starts the REST API server together with the retrain scheduler.

This command:
- Serves outcome ingestion and lifecycle endpoints
- Runs the periodic retrain job in the background
- Shuts down gracefully on SIGINT/SIGTERM

Endpoints:
  GET  /health               - Health check
  GET  /metrics              - Prometheus metrics
  POST /api/outcomes         - Log a trading outcome
  POST /api/train            - Trigger training for all modes
  GET  /api/models/{mode}    - Active model for a mode
  GET  /api/status           - Lifecycle status
  GET  /api/bandit           - Bandit arm snapshot
  POST /api/bandit/select    - Select a strategy
  POST /api/bandit/reward    - Record a strategy reward
  POST /api/drift            - Run a drift check
  POST /api/drift/reset      - Reset the drift reference

Example:
  go run ./cmd/modellab api
  go run ./cmd/modellab api --port 8080`,
	RunE: runAPIServer,
}

var (
	apiPort     string
	noScheduler bool
)

func init() {
	rootCmd.AddCommand(apiCmd)

	// Flags
	apiCmd.Flags().StringVar(&apiPort, "port", "", "API server port (overrides PORT)")
	apiCmd.Flags().BoolVar(&noScheduler, "no-scheduler", false, "disable the background retrain job")
}

func runAPIServer(cmd *cobra.Command, args []string) error {
	fmt.Println("=== ModelLab API Server ===")

	a, err := buildApp()
	if err != nil {
		return err
	}
	defer a.Close()

	// Override port if flag is set
	if apiPort != "" {
		a.cfg.Port = apiPort
	}

	log := a.log
	log.WithFields(map[string]interface{}{
		"port": a.cfg.Port,
		"env":  a.cfg.Env,
	}).Info("Initializing API server")

	// Handlers
	limiter := rate.NewLimiter(rate.Limit(a.cfg.Lifecycle.IngestRPS), a.cfg.Lifecycle.IngestBurst)
	outcomeHandler := handlers.NewOutcomeHandler(a.store, limiter, a.metrics, log)
	statusCache := redis.NewCache(a.redis, "modellab")
	lifecycleHandler := handlers.NewLifecycleHandler(a.coordinator, a.gate, a.metrics, statusCache, log)
	signalHandler := handlers.NewSignalHandler(a.bandit, a.detector, a.metrics, log)

	// Router and server
	router := api.NewRouter(outcomeHandler, lifecycleHandler, signalHandler, a.metrics, log)
	server := api.New(a.cfg, log, router)

	// Background retrain scheduler
	var sched *scheduler.Scheduler
	if !noScheduler {
		sched = scheduler.New(log)
		retrainJob := jobs.NewRetrainJob(a.coordinator, a.cfg.Lifecycle.RetrainSchedule, log)
		if err := sched.AddJob(retrainJob); err != nil {
			return fmt.Errorf("register retrain job: %w", err)
		}
		sched.Start()
		defer sched.Stop()
	}

	// Start server with graceful shutdown
	go func() {
		if err := server.Start(); err != nil {
			log.WithError(err).Fatal("Failed to start server")
		}
	}()

	log.Info("API server started successfully")
	fmt.Printf("\nServer running on http://localhost:%s\n", a.cfg.Port)
	fmt.Println("Press Ctrl+C to stop")

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	log.Info("Server stopped")
	return nil
}
