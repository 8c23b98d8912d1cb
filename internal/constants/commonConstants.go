package constants

import "time"

const (
	DefaultRegionBatchSize   = 1000
	DefaultWorkoutBatchSize  = 1000
	DefaultUpsertConcurrency = 8

	DefaultEntityFreshWindow = 48 * time.Hour
	DefaultDailyGuardWindow  = 20 * time.Hour
	DefaultRunTimeout        = 5 * time.Minute

	DefaultBigQueryDataset  = "f3_data_warehouse"
	DefaultBigQueryLocation = "US"

	// Names listed in summaries and notifications before "and N more"
	SummaryNameLimit = 10

	// Enrichment fallback: continental US centroid
	DefaultRegionLatitude  = 39.8283
	DefaultRegionLongitude = -98.5795
	DefaultRegionZoom      = 4
	MinRegionZoom          = 4
	MaxRegionZoom          = 13

	RunStatusCacheKey = "ingest:last_run"
)
