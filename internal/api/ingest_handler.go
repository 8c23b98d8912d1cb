package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"f3-nation/regionsync/internal/constants"
	"f3-nation/regionsync/internal/jobs"
	"f3-nation/regionsync/internal/logging"
	"f3-nation/regionsync/internal/models/dtos"
	"f3-nation/regionsync/internal/models/dtos/requests"
	"f3-nation/regionsync/internal/models/dtos/responses"
)

// IngestRunner runs the full pipeline
type IngestRunner interface {
	Run(ctx context.Context, opts jobs.RunOptions) (*dtos.RunResult, error)
}

// RunStatusReader returns the last recorded run, nil if none
type RunStatusReader interface {
	Last() (*dtos.RunResult, error)
}

// IngestHandler handles POST /api/ingest. The body is optional; the bearer
// check happens in middleware before this runs.
func IngestHandler(runner IngestRunner) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req requests.IngestRequest
		if r.Body != nil {
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
				respondWithError(w, http.StatusBadRequest, constants.ErrMsgInvalidBody)
				return
			}
		}

		// A cron caller hanging up must not cancel a half-written run; the
		// orchestrator applies its own timeout.
		ctx := context.WithoutCancel(r.Context())

		logging.Info("Ingest triggered", "force", req.Force, "skip_guard", req.SkipGuard)
		result, err := runner.Run(ctx, jobs.RunOptions{Force: req.Force, SkipGuard: req.SkipGuard})
		if result == nil {
			msg := "ingest returned no result"
			if err != nil {
				msg = err.Error()
			}
			respondWithError(w, http.StatusInternalServerError, msg)
			return
		}

		status := http.StatusOK
		if err != nil || result.Status == dtos.RunStatusError {
			status = http.StatusInternalServerError
		}
		respondWithJSON(w, status, responses.FromRunResult(result))
	}
}

// IngestStatusHandler handles GET /api/ingest/status
func IngestStatusHandler(store RunStatusReader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		last, err := store.Last()
		if err != nil {
			logging.Error("Failed to read run status", "error", err)
			respondWithError(w, http.StatusInternalServerError, err.Error())
			return
		}
		if last == nil {
			respondWithError(w, http.StatusNotFound, constants.ErrMsgNoRunRecorded)
			return
		}
		respondWithSuccess(w, http.StatusOK, last)
	}
}
