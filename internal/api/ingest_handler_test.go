package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"f3-nation/regionsync/internal/constants"
	"f3-nation/regionsync/internal/jobs"
	"f3-nation/regionsync/internal/models/dtos"
	"f3-nation/regionsync/internal/models/dtos/responses"
)

// Mock orchestrator
type mockIngestRunner struct {
	runFunc func(ctx context.Context, opts jobs.RunOptions) (*dtos.RunResult, error)
}

func (m *mockIngestRunner) Run(ctx context.Context, opts jobs.RunOptions) (*dtos.RunResult, error) {
	return m.runFunc(ctx, opts)
}

type mockStatusReader struct {
	lastFunc func() (*dtos.RunResult, error)
}

func (m *mockStatusReader) Last() (*dtos.RunResult, error) {
	return m.lastFunc()
}

func decodeIngestResponse(t *testing.T, rr *httptest.ResponseRecorder) responses.IngestResponse {
	var resp responses.IngestResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	return resp
}

func TestIngestHandler_Success(t *testing.T) {
	var got jobs.RunOptions
	completed := time.Date(2026, 10, 15, 6, 5, 0, 0, time.UTC)
	runner := &mockIngestRunner{
		runFunc: func(ctx context.Context, opts jobs.RunOptions) (*dtos.RunResult, error) {
			got = opts
			return &dtos.RunResult{
				RunID:       "run-1",
				Status:      dtos.RunStatusSuccess,
				Message:     constants.MsgIngestCompleted,
				CompletedAt: &completed,
				Stats:       &dtos.RunSummary{RegionsSeeded: 3, WorkoutsSeeded: 12},
			}, nil
		},
	}

	req := httptest.NewRequest("POST", "/api/ingest", strings.NewReader(`{"force":true,"skipGuard":true}`))
	rr := httptest.NewRecorder()
	IngestHandler(runner).ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rr.Code)
	}
	if !got.Force || !got.SkipGuard {
		t.Errorf("Expected force and skipGuard to be passed through, got %+v", got)
	}

	resp := decodeIngestResponse(t, rr)
	if resp.Status != dtos.RunStatusSuccess || resp.Message != constants.MsgIngestCompleted {
		t.Errorf("Expected success/%q, got %s/%q", constants.MsgIngestCompleted, resp.Status, resp.Message)
	}
	if resp.Stats == nil || resp.Stats.WorkoutsSeeded != 12 {
		t.Errorf("Expected stats with 12 workouts, got %+v", resp.Stats)
	}
	if resp.CompletedAt == nil || !resp.CompletedAt.Equal(completed) {
		t.Errorf("Expected completedAt %v, got %v", completed, resp.CompletedAt)
	}
}

func TestIngestHandler_EmptyBodySkipped(t *testing.T) {
	last := time.Date(2026, 10, 15, 1, 0, 0, 0, time.UTC)
	runner := &mockIngestRunner{
		runFunc: func(ctx context.Context, opts jobs.RunOptions) (*dtos.RunResult, error) {
			if opts.Force || opts.SkipGuard {
				t.Errorf("Expected default options, got %+v", opts)
			}
			return &dtos.RunResult{
				Status:         dtos.RunStatusSkipped,
				Message:        constants.MsgAlreadyIngested,
				LastIngestedAt: &last,
			}, nil
		},
	}

	req := httptest.NewRequest("POST", "/api/ingest", nil)
	rr := httptest.NewRecorder()
	IngestHandler(runner).ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rr.Code)
	}
	resp := decodeIngestResponse(t, rr)
	if resp.Status != dtos.RunStatusSkipped || resp.Message != "Already ingested today" {
		t.Errorf("Expected skipped/Already ingested today, got %s/%q", resp.Status, resp.Message)
	}
	if resp.LastIngestedAt == nil || !resp.LastIngestedAt.Equal(last) {
		t.Errorf("Expected lastIngestedAt %v, got %v", last, resp.LastIngestedAt)
	}
}

func TestIngestHandler_StageError(t *testing.T) {
	runner := &mockIngestRunner{
		runFunc: func(ctx context.Context, opts jobs.RunOptions) (*dtos.RunResult, error) {
			err := &jobs.StageError{Stage: jobs.StagePruning, Err: errors.New("connection refused")}
			return &dtos.RunResult{
				Status:  dtos.RunStatusError,
				Message: err.Error(),
				Stage:   jobs.StagePruning,
			}, err
		},
	}

	req := httptest.NewRequest("POST", "/api/ingest", nil)
	rr := httptest.NewRecorder()
	IngestHandler(runner).ServeHTTP(rr, req)

	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("Expected status 500, got %d", rr.Code)
	}
	resp := decodeIngestResponse(t, rr)
	if resp.Status != dtos.RunStatusError || resp.Stage != jobs.StagePruning {
		t.Errorf("Expected error in pruning, got %s in %q", resp.Status, resp.Stage)
	}
	if !strings.Contains(resp.Message, "connection refused") {
		t.Errorf("Expected message to carry the cause, got %q", resp.Message)
	}
}

func TestIngestHandler_InvalidBody(t *testing.T) {
	runner := &mockIngestRunner{
		runFunc: func(ctx context.Context, opts jobs.RunOptions) (*dtos.RunResult, error) {
			t.Error("Expected runner not to be called")
			return nil, nil
		},
	}

	req := httptest.NewRequest("POST", "/api/ingest", strings.NewReader(`{"force":`))
	rr := httptest.NewRecorder()
	IngestHandler(runner).ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", rr.Code)
	}
}

func TestIngestStatusHandler(t *testing.T) {
	t.Run("no run recorded", func(t *testing.T) {
		store := &mockStatusReader{lastFunc: func() (*dtos.RunResult, error) { return nil, nil }}
		rr := httptest.NewRecorder()
		IngestStatusHandler(store).ServeHTTP(rr, httptest.NewRequest("GET", "/api/ingest/status", nil))

		if rr.Code != http.StatusNotFound {
			t.Errorf("Expected status 404, got %d", rr.Code)
		}
	})

	t.Run("last run", func(t *testing.T) {
		store := &mockStatusReader{lastFunc: func() (*dtos.RunResult, error) {
			return &dtos.RunResult{RunID: "run-9", Status: dtos.RunStatusSuccess}, nil
		}}
		rr := httptest.NewRecorder()
		IngestStatusHandler(store).ServeHTTP(rr, httptest.NewRequest("GET", "/api/ingest/status", nil))

		if rr.Code != http.StatusOK {
			t.Fatalf("Expected status 200, got %d", rr.Code)
		}
		var resp responses.APIResponse[dtos.RunResult]
		if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
			t.Fatalf("Failed to decode response: %v", err)
		}
		if resp.Data == nil || resp.Data.RunID != "run-9" {
			t.Errorf("Expected run-9, got %+v", resp.Data)
		}
	})
}
