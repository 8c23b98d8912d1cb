package constants

// Keys in the seed_runs table
const (
	SyncKeyDailyIngest = "daily-ingest"
)

// Warehouse organization types
const (
	OrgTypeRegion = "region"
	OrgTypeAO     = "ao"
)

// Entities reported in run summaries and metrics
const (
	EntityRegion  = "region"
	EntityWorkout = "workout"
)

// SkipReason explains why a warehouse row was not written to the serving store
type SkipReason string

const (
	SkipNone            SkipReason = ""
	SkipFresh           SkipReason = "fresh"
	SkipMissingType     SkipReason = "missingType"
	SkipMissingAO       SkipReason = "missingAo"
	SkipMissingRegion   SkipReason = "missingRegion"
	SkipMissingGroup    SkipReason = "missingGroup"
	SkipMissingLocation SkipReason = "missingLocation"
)

// PruneReason explains why a serving-store row was removed
type PruneReason string

const (
	PruneInactive      PruneReason = "notActiveInWarehouse"
	PruneMissingRegion PruneReason = "regionMissing"
)
