package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"f3-nation/regionsync/internal/api"
	"f3-nation/regionsync/internal/config"
	"f3-nation/regionsync/internal/db"
	"f3-nation/regionsync/internal/logging"
	"f3-nation/regionsync/internal/metrics"
	"f3-nation/regionsync/internal/routes"
)

func main() {
	log.SetOutput(os.Stdout)
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ Failed to load configuration: %v", err)
	}
	if err := cfg.RequireCronSecret(); err != nil {
		log.Fatalf("❌ %v", err)
	}

	if err := logging.Init(cfg.AppEnv); err != nil {
		log.Fatalf("❌ Failed to initialize logger: %v", err)
	}
	defer logging.Close()

	logging.Info("Region sync starting up",
		"environment", cfg.AppEnv,
		"serving_driver", cfg.Serving.Driver,
		"warehouse_driver", cfg.Warehouse.Driver,
		"timestamp", time.Now().Format(time.RFC3339),
	)

	metricsReg := metrics.NewMetricsRegistry(prometheus.DefaultRegisterer)

	deps, err := api.InitDependencies(cfg, metricsReg)
	if err != nil {
		logging.Fatal("Failed to initialize dependencies", "error", err)
	}
	defer deps.Close()

	if err := db.Migrate(deps.ServingDB); err != nil {
		logging.Fatal("Failed to migrate serving store", "error", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.HTTP.ScheduleInterval > 0 {
		go deps.Services.Orchestrator.RunScheduled(ctx, cfg.HTTP.ScheduleInterval)
	}

	upSince := time.Now()
	router := routes.RegisterRoutes(deps, upSince)

	// Setup metrics endpoint outside of Chi router
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/", router)
	logging.Info("Prometheus metrics endpoint registered at /metrics")

	// A triggered run holds the request open for its whole duration
	server := &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      cfg.Seed.RunTimeout + 30*time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logging.Error("Server shutdown failed", "error", err)
		}
	}()

	logging.Info("Server starting", "addr", cfg.HTTP.Addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logging.Fatal("Server failed", "error", err)
	}
	logging.Info("Server stopped")
}
