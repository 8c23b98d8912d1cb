package routes

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"f3-nation/regionsync/internal/api"
	"f3-nation/regionsync/internal/logging"
	"f3-nation/regionsync/internal/middleware"
)

// RegisterRoutes builds the chi router for the health check, the ingest
// trigger and the last-run status. /metrics is mounted beside it.
func RegisterRoutes(deps *api.Dependencies, upSince time.Time) http.Handler {
	r := chi.NewRouter()

	// global middleware
	r.Use(middleware.RequestIDMiddleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://localhost:3000"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	handlers := api.NewHandlers(deps)
	limiter := middleware.NewIPRateLimiter(1, 5)

	r.Get("/healthCheck", handlers.HealthCheck(upSince))

	r.Route("/api/ingest", func(ingest chi.Router) {
		ingest.Use(middleware.MetricsMiddleware(deps.Metrics))
		ingest.Use(limiter.Middleware)
		ingest.Use(middleware.CronSecretMiddleware(deps.Config.HTTP.CronSecret))

		ingest.Post("/", handlers.TriggerIngest())
		ingest.Get("/status", handlers.IngestStatus())
	})

	logging.Info("Router initialized", "routes", []string{"/healthCheck", "/api/ingest", "/api/ingest/status"})
	return r
}
