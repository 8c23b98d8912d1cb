package jobs

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"f3-nation/regionsync/internal/common"
	"f3-nation/regionsync/internal/config"
	"f3-nation/regionsync/internal/constants"
	runctx "f3-nation/regionsync/internal/context"
	"f3-nation/regionsync/internal/metrics"
	"f3-nation/regionsync/internal/models/dtos"
	"f3-nation/regionsync/internal/services"
)

// Orchestrator stages
const (
	StageIdle            = "idle"
	StagePruning         = "pruning"
	StageSeedingRegions  = "seeding-regions"
	StageSeedingWorkouts = "seeding-workouts"
	StageEnriching       = "enriching"
	StageDone            = "done"
	StageSkipped         = "skipped"
	StageFailed          = "error"
)

// StageError is a failure inside one orchestrator stage
type StageError struct {
	Stage string
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// Notifier delivers a chat message. Implementations may fail; the
// orchestrator only logs those failures.
type Notifier interface {
	Notify(ctx context.Context, message string) error
}

// StatusStore keeps the last run result for the status endpoint
type StatusStore interface {
	Save(result dtos.RunResult) error
}

// RunOptions tunes one orchestrator run
type RunOptions struct {
	Force     bool // ignore entity freshness
	SkipGuard bool // ignore the daily guard
}

// Orchestrator runs prune, seed-regions, seed-workouts and enrich in order,
// guarded by the daily freshness key.
type Orchestrator struct {
	seedCfg     config.SeedConfig
	freshness   *FreshnessTracker
	pruneJob    *PruneJob
	regionJob   *RegionSeedJob
	workoutJob  *WorkoutSeedJob
	enrichJob   *EnrichJob
	notifier    Notifier
	statusStore StatusStore
	metrics     *metrics.MetricsRegistry
	now         func() time.Time
}

// NewOrchestrator wires the pipeline stages together. notifier and
// statusStore may be nil.
func NewOrchestrator(
	seedCfg config.SeedConfig,
	freshness *FreshnessTracker,
	pruneJob *PruneJob,
	regionJob *RegionSeedJob,
	workoutJob *WorkoutSeedJob,
	enrichJob *EnrichJob,
	notifier Notifier,
	statusStore StatusStore,
	metricsReg *metrics.MetricsRegistry,
) *Orchestrator {
	return &Orchestrator{
		seedCfg:     seedCfg,
		freshness:   freshness,
		pruneJob:    pruneJob,
		regionJob:   regionJob,
		workoutJob:  workoutJob,
		enrichJob:   enrichJob,
		notifier:    notifier,
		statusStore: statusStore,
		metrics:     metricsReg,
		now:         time.Now,
	}
}

// Run executes one pipeline run. The returned result is always non-nil; the
// error is a *StageError when a stage failed.
func (o *Orchestrator) Run(ctx context.Context, opts RunOptions) (*dtos.RunResult, error) {
	runID := uuid.NewString()
	ctx = runctx.WithRun(ctx, runID, StageIdle)
	log := runctx.Logger(ctx)

	timeout := o.seedCfg.RunTimeout
	if timeout <= 0 {
		timeout = constants.DefaultRunTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	started := o.now()
	result := &dtos.RunResult{
		RunID:     runID,
		StartedAt: started.UTC(),
	}

	summary, err := o.run(ctx, opts, started, result)
	switch {
	case err != nil:
		result.Status = dtos.RunStatusError
		result.Message = err.Error()
		result.Stage = StageFailed
		var stageErr *StageError
		if errors.As(err, &stageErr) {
			result.Stage = stageErr.Stage
		}
		log.Errorw("Ingest failed", "stage", result.Stage, "error", err)
		o.notify(ctx, common.FormatFailureMessage(err))

	case result.Status == dtos.RunStatusSkipped:
		log.Infow("Ingest skipped", "last_ingested_at", result.LastIngestedAt)

	default:
		completed := o.now().UTC()
		result.Status = dtos.RunStatusSuccess
		result.Message = constants.MsgIngestCompleted
		result.CompletedAt = &completed
		result.Stats = summary
		log.Infow("Ingest completed",
			"duration_seconds", summary.DurationSeconds,
			"regions_seeded", summary.RegionsSeeded,
			"workouts_seeded", summary.WorkoutsSeeded,
			"workouts_skipped", summary.WorkoutsSkipped,
		)
		o.notify(ctx, common.FormatSuccessMessage(services.FormatInstant(completed), summary))
	}

	o.metrics.IncRuns(string(result.Status))
	o.saveStatus(ctx, *result)
	return result, err
}

func (o *Orchestrator) run(ctx context.Context, opts RunOptions, started time.Time, result *dtos.RunResult) (*dtos.RunSummary, error) {
	log := runctx.Logger(ctx)

	if !opts.SkipGuard {
		fresh, last, err := o.freshness.IsFresh(ctx, constants.SyncKeyDailyIngest, started)
		if err != nil {
			return nil, &StageError{Stage: StageIdle, Err: err}
		}
		if fresh {
			result.Status = dtos.RunStatusSkipped
			result.Message = constants.MsgAlreadyIngested
			result.Stage = StageSkipped
			result.LastIngestedAt = last
			return nil, nil
		}
	}

	force := opts.Force || o.seedCfg.Force
	log.Infow("Starting ingest", "force", force, "skip_guard", opts.SkipGuard)

	summary := &dtos.RunSummary{}

	var regionPrune RegionPruneResult
	var workoutPrune WorkoutPruneResult
	if err := o.stage(ctx, StagePruning, func(ctx context.Context) error {
		var err error
		if regionPrune, err = o.pruneJob.PruneRegions(ctx); err != nil {
			return err
		}
		workoutPrune, err = o.pruneJob.PruneWorkouts(ctx)
		return err
	}); err != nil {
		return nil, err
	}
	summary.RegionsPruned = len(regionPrune.Names)
	summary.WorkoutsPruned = len(workoutPrune.Removed)
	summary.PrunedRegionNames, summary.PrunedRegionNamesMore = common.CapNames(regionPrune.Names, constants.SummaryNameLimit)
	summary.PrunedWorkoutNames, summary.PrunedWorkoutNamesMore = common.CapNames(workoutPrune.Names(), constants.SummaryNameLimit)

	if err := o.stage(ctx, StageSeedingRegions, func(ctx context.Context) error {
		regionOpts := RegionSeedOptions(o.seedCfg)
		regionOpts.Force = force
		res, err := o.regionJob.Run(ctx, regionOpts)
		summary.RegionsSeeded = res.Seeded
		summary.RegionsSkippedFresh = res.SkippedFresh
		summary.RegionBatches = res.Batches
		return err
	}); err != nil {
		return nil, err
	}

	if err := o.stage(ctx, StageSeedingWorkouts, func(ctx context.Context) error {
		workoutOpts := WorkoutSeedOptions(o.seedCfg)
		workoutOpts.Force = force
		res, err := o.workoutJob.Run(ctx, workoutOpts)
		summary.WorkoutsSeeded = res.Seeded
		summary.WorkoutsSkipped = res.Skipped.Total()
		summary.WorkoutSkipReasons = res.Skipped.Strings()
		summary.WorkoutBatches = res.Batches
		return err
	}); err != nil {
		return nil, err
	}

	if err := o.stage(ctx, StageEnriching, func(ctx context.Context) error {
		n, err := o.enrichJob.Run(ctx)
		summary.RegionsEnriched = n
		return err
	}); err != nil {
		return nil, err
	}

	if err := o.freshness.Record(ctx, constants.SyncKeyDailyIngest, o.now()); err != nil {
		return nil, &StageError{Stage: StageDone, Err: err}
	}

	summary.DurationSeconds = o.now().Sub(started).Seconds()
	return summary, nil
}

// stage runs fn with a stage-scoped logger and records its duration
func (o *Orchestrator) stage(ctx context.Context, name string, fn func(ctx context.Context) error) error {
	ctx = runctx.WithStage(ctx, name)
	start := time.Now()
	err := fn(ctx)
	o.metrics.ObserveStage(name, time.Since(start).Seconds())
	if err != nil {
		return &StageError{Stage: name, Err: err}
	}
	return nil
}

// notify is best effort; a failed delivery never changes the run outcome
func (o *Orchestrator) notify(ctx context.Context, message string) {
	if o.notifier == nil {
		return
	}
	// the run context may already be past its deadline
	notifyCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 15*time.Second)
	defer cancel()
	if err := o.notifier.Notify(notifyCtx, message); err != nil {
		runctx.Logger(ctx).Warnw("Failed to send notification", "error", err)
	}
}

func (o *Orchestrator) saveStatus(ctx context.Context, result dtos.RunResult) {
	if o.statusStore == nil {
		return
	}
	if err := o.statusStore.Save(result); err != nil {
		runctx.Logger(ctx).Warnw("Failed to save run status", "error", err)
	}
}

// RunPrune runs only the prune stage
func (o *Orchestrator) RunPrune(ctx context.Context) (RegionPruneResult, WorkoutPruneResult, error) {
	ctx = runctx.WithRun(ctx, uuid.NewString(), StagePruning)
	regions, err := o.pruneJob.PruneRegions(ctx)
	if err != nil {
		return regions, WorkoutPruneResult{}, &StageError{Stage: StagePruning, Err: err}
	}
	workouts, err := o.pruneJob.PruneWorkouts(ctx)
	if err != nil {
		return regions, workouts, &StageError{Stage: StagePruning, Err: err}
	}
	return regions, workouts, nil
}

// RunRegionSeed runs only the region seed stage
func (o *Orchestrator) RunRegionSeed(ctx context.Context, force bool) (RegionSeedResult, error) {
	ctx = runctx.WithRun(ctx, uuid.NewString(), StageSeedingRegions)
	opts := RegionSeedOptions(o.seedCfg)
	opts.Force = force || o.seedCfg.Force
	res, err := o.regionJob.Run(ctx, opts)
	if err != nil {
		return res, &StageError{Stage: StageSeedingRegions, Err: err}
	}
	return res, nil
}

// RunWorkoutSeed runs only the workout seed stage
func (o *Orchestrator) RunWorkoutSeed(ctx context.Context, force bool) (WorkoutSeedResult, error) {
	ctx = runctx.WithRun(ctx, uuid.NewString(), StageSeedingWorkouts)
	opts := WorkoutSeedOptions(o.seedCfg)
	opts.Force = force || o.seedCfg.Force
	res, err := o.workoutJob.Run(ctx, opts)
	if err != nil {
		return res, &StageError{Stage: StageSeedingWorkouts, Err: err}
	}
	return res, nil
}

// RunEnrich runs only the enrichment stage
func (o *Orchestrator) RunEnrich(ctx context.Context) (int, error) {
	ctx = runctx.WithRun(ctx, uuid.NewString(), StageEnriching)
	n, err := o.enrichJob.Run(ctx)
	if err != nil {
		return n, &StageError{Stage: StageEnriching, Err: err}
	}
	return n, nil
}

// LastIngestedAt returns when the daily ingest last completed
func (o *Orchestrator) LastIngestedAt(ctx context.Context) (*time.Time, error) {
	return o.freshness.LastRun(ctx, constants.SyncKeyDailyIngest)
}
