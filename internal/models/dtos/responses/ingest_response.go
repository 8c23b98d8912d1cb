package responses

import (
	"time"

	"f3-nation/regionsync/internal/models/dtos"
)

// IngestResponse is the body returned by the trigger endpoint
type IngestResponse struct {
	Status         dtos.RunStatus   `json:"status"`
	Message        string           `json:"message"`
	RunID          string           `json:"runId,omitempty"`
	Stage          string           `json:"stage,omitempty"`
	LastIngestedAt *time.Time       `json:"lastIngestedAt,omitempty"`
	CompletedAt    *time.Time       `json:"completedAt,omitempty"`
	Stats          *dtos.RunSummary `json:"stats,omitempty"`
}

// FromRunResult maps an orchestrator result onto the response body
func FromRunResult(r *dtos.RunResult) IngestResponse {
	return IngestResponse{
		Status:         r.Status,
		Message:        r.Message,
		RunID:          r.RunID,
		Stage:          r.Stage,
		LastIngestedAt: r.LastIngestedAt,
		CompletedAt:    r.CompletedAt,
		Stats:          r.Stats,
	}
}
