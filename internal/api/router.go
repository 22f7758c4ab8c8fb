package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/quantops/modellab/internal/api/handlers"
	"github.com/quantops/modellab/internal/metrics"
	"github.com/quantops/modellab/pkg/logger"
)

// NewRouter creates and configures the HTTP router.
// SSOT: route wiring happens in this function only.
func NewRouter(
	outcomeHandler *handlers.OutcomeHandler,
	lifecycleHandler *handlers.LifecycleHandler,
	signalHandler *handlers.SignalHandler,
	m *metrics.Registry,
	log *logger.Logger,
) http.Handler {
	r := mux.NewRouter()

	// Health check
	r.HandleFunc("/health", healthCheckHandler).Methods("GET")
	r.Handle("/metrics", m.Handler()).Methods("GET")

	// API v1
	api := r.PathPrefix("/api").Subrouter()

	// Outcome ingestion
	api.HandleFunc("/outcomes", outcomeHandler.Log).Methods("POST")

	// Lifecycle
	api.HandleFunc("/train", lifecycleHandler.Train).Methods("POST")
	api.HandleFunc("/models/{mode}", lifecycleHandler.BestModel).Methods("GET")
	api.HandleFunc("/status", lifecycleHandler.Status).Methods("GET")

	// Bandit and drift
	api.HandleFunc("/bandit", signalHandler.Arms).Methods("GET")
	api.HandleFunc("/bandit/select", signalHandler.SelectStrategy).Methods("POST")
	api.HandleFunc("/bandit/reward", signalHandler.Reward).Methods("POST")
	api.HandleFunc("/drift", signalHandler.CheckDrift).Methods("POST")
	api.HandleFunc("/drift/reset", signalHandler.ResetDriftReference).Methods("POST")

	// Apply middleware
	r.Use(loggingMiddleware(log))
	r.Use(recoveryMiddleware(log))

	return r
}

// healthCheckHandler returns server health status.
func healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status":  "ok",
		"service": "modellab-api",
	})
}

// loggingMiddleware logs HTTP requests.
func loggingMiddleware(log *logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			next.ServeHTTP(w, r)

			log.WithFields(map[string]interface{}{
				"method":   r.Method,
				"path":     r.URL.Path,
				"duration": time.Since(start),
			}).Debug("HTTP request")
		})
	}
}

// recoveryMiddleware recovers from panics.
func recoveryMiddleware(log *logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					log.WithFields(map[string]interface{}{
						"error": err,
						"path":  r.URL.Path,
					}).Error("Panic recovered")

					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					json.NewEncoder(w).Encode(map[string]string{
						"error": "Internal server error",
					})
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
