package api

import (
	"fmt"

	"gorm.io/gorm"

	"f3-nation/regionsync/internal/common"
	"f3-nation/regionsync/internal/config"
	"f3-nation/regionsync/internal/db"
	"f3-nation/regionsync/internal/jobs"
	"f3-nation/regionsync/internal/metrics"
	"f3-nation/regionsync/internal/providers"
)

type Services struct {
	Cache        common.CacheInterface
	RunStatus    *common.RunStatusStore
	Notifier     *common.SlackNotifier
	Warehouse    providers.WarehouseProvider
	Orchestrator *jobs.Orchestrator
}

type Dependencies struct {
	Config    *config.Config
	ServingDB *gorm.DB
	Metrics   *metrics.MetricsRegistry
	Services  *Services
}

// InitDependencies opens the serving store and builds every service the
// HTTP host and the CLI share. The warehouse connects on first query.
func InitDependencies(cfg *config.Config, metricsReg *metrics.MetricsRegistry) (*Dependencies, error) {
	servingDB, err := db.InitServingStore(cfg.Serving)
	if err != nil {
		return nil, err
	}

	warehouse, err := providers.NewWarehouseProvider(cfg.Warehouse)
	if err != nil {
		return nil, fmt.Errorf("failed to create warehouse provider: %w", err)
	}

	cache := common.NewCache(cfg.Redis)
	runStatus := common.NewRunStatusStore(cache)
	notifier := common.NewSlackNotifier(cfg.Slack)

	orchestrator := jobs.InitializeJobs(cfg, servingDB, warehouse, notifier, runStatus, metricsReg)

	return &Dependencies{
		Config:    cfg,
		ServingDB: servingDB,
		Metrics:   metricsReg,
		Services: &Services{
			Cache:        cache,
			RunStatus:    runStatus,
			Notifier:     notifier,
			Warehouse:    warehouse,
			Orchestrator: orchestrator,
		},
	}, nil
}

// Close releases the warehouse, the cache and the serving store
func (d *Dependencies) Close() error {
	var firstErr error
	if err := d.Services.Warehouse.Close(); err != nil {
		firstErr = err
	}
	if err := d.Services.Cache.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	if sqlDB, err := d.ServingDB.DB(); err == nil {
		if err := sqlDB.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
