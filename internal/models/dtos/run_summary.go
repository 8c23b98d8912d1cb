package dtos

import "time"

// RunStatus is the terminal state reported for one orchestrator run
type RunStatus string

const (
	RunStatusSuccess RunStatus = "success"
	RunStatusSkipped RunStatus = "skipped"
	RunStatusError   RunStatus = "error"
)

// RunSummary carries the counters of one pipeline run
type RunSummary struct {
	DurationSeconds     float64        `json:"durationSeconds"`
	RegionsPruned       int            `json:"regionsPruned"`
	RegionsSeeded       int            `json:"regionsSeeded"`
	RegionsSkippedFresh int            `json:"regionsSkippedFresh"`
	RegionBatches       int            `json:"regionBatches"`
	WorkoutsPruned      int            `json:"workoutsPruned"`
	WorkoutsSeeded      int            `json:"workoutsSeeded"`
	WorkoutsSkipped     int            `json:"workoutsSkipped"`
	WorkoutSkipReasons  map[string]int `json:"workoutSkipReasons,omitempty"`
	WorkoutBatches      int            `json:"workoutBatches"`
	RegionsEnriched     int            `json:"regionsEnriched"`

	PrunedRegionNames      []string `json:"prunedRegionNames,omitempty"`
	PrunedRegionNamesMore  int      `json:"prunedRegionNamesMore,omitempty"`
	PrunedWorkoutNames     []string `json:"prunedWorkoutNames,omitempty"`
	PrunedWorkoutNamesMore int      `json:"prunedWorkoutNamesMore,omitempty"`
}

// RunResult is what the orchestrator hands back to the trigger endpoint,
// the CLI and the run-status store.
type RunResult struct {
	RunID          string      `json:"runId"`
	Status         RunStatus   `json:"status"`
	Message        string      `json:"message"`
	Stage          string      `json:"stage,omitempty"`
	StartedAt      time.Time   `json:"startedAt"`
	CompletedAt    *time.Time  `json:"completedAt,omitempty"`
	LastIngestedAt *time.Time  `json:"lastIngestedAt,omitempty"`
	Stats          *RunSummary `json:"stats,omitempty"`
}
