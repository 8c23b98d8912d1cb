package jobs

import (
	"context"
	"time"

	"gorm.io/gorm"

	"f3-nation/regionsync/internal/config"
	"f3-nation/regionsync/internal/db/repositories"
	"f3-nation/regionsync/internal/logging"
	"f3-nation/regionsync/internal/metrics"
	"f3-nation/regionsync/internal/providers"
)

// InitializeJobs builds the orchestrator and every stage it runs
func InitializeJobs(
	cfg *config.Config,
	db *gorm.DB,
	warehouse providers.WarehouseProvider,
	notifier Notifier,
	statusStore StatusStore,
	metricsReg *metrics.MetricsRegistry,
) *Orchestrator {
	regionRepo := repositories.NewRegionRepo(db)
	workoutRepo := repositories.NewWorkoutRepo(db)
	seedRunRepo := repositories.NewSeedRunRepo(db)

	return NewOrchestrator(
		cfg.Seed,
		NewFreshnessTracker(seedRunRepo, cfg.Seed.DailyGuardWindow),
		NewPruneJob(warehouse, regionRepo, workoutRepo, metricsReg),
		NewRegionSeedJob(warehouse, regionRepo, metricsReg),
		NewWorkoutSeedJob(warehouse, regionRepo, workoutRepo, metricsReg),
		NewEnrichJob(regionRepo, workoutRepo),
		notifier,
		statusStore,
		metricsReg,
	)
}

// RunScheduled runs the orchestrator on a ticker until ctx is done. The
// daily guard turns ticks inside the window into no-ops.
func (o *Orchestrator) RunScheduled(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	logging.Info("Starting scheduled ingest", "interval", interval.String())

	if _, err := o.Run(ctx, RunOptions{}); err != nil {
		logging.Error("Initial scheduled ingest failed", "error", err)
	}

	for {
		select {
		case <-ticker.C:
			if _, err := o.Run(ctx, RunOptions{}); err != nil {
				logging.Error("Scheduled ingest failed", "error", err)
			}
		case <-ctx.Done():
			logging.Info("Shutting down scheduled ingest")
			return
		}
	}
}
