package context

import (
	"context"

	"go.uber.org/zap"

	"f3-nation/regionsync/internal/logging"
)

type contextKey string

var (
	runIDKey     contextKey = "run_id"
	runLoggerKey contextKey = "run_logger"
)

// WithRun tags ctx with a run id and a logger scoped to it
func WithRun(ctx context.Context, runID string, stage string) context.Context {
	ctx = context.WithValue(ctx, runIDKey, runID)
	return context.WithValue(ctx, runLoggerKey, logging.WithRun(runID, stage))
}

// WithStage swaps the run logger for one tagged with stage
func WithStage(ctx context.Context, stage string) context.Context {
	return context.WithValue(ctx, runLoggerKey, logging.WithRun(GetRunID(ctx), stage))
}

func GetRunID(ctx context.Context) string {
	if id, ok := ctx.Value(runIDKey).(string); ok {
		return id
	}
	return ""
}

// Logger returns the run logger, or the global logger outside a run
func Logger(ctx context.Context) *zap.SugaredLogger {
	if l, ok := ctx.Value(runLoggerKey).(*zap.SugaredLogger); ok {
		return l
	}
	return logging.GetLogger()
}
