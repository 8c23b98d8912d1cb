package api

import (
	"net/http"
	"time"
)

type Handlers struct {
	deps *Dependencies
}

// NewHandlers creates a new handlers instance with injected dependencies
func NewHandlers(deps *Dependencies) *Handlers {
	return &Handlers{
		deps: deps,
	}
}

func (h *Handlers) TriggerIngest() http.HandlerFunc {
	return IngestHandler(h.deps.Services.Orchestrator)
}

func (h *Handlers) IngestStatus() http.HandlerFunc {
	return IngestStatusHandler(h.deps.Services.RunStatus)
}

func (h *Handlers) HealthCheck(upSince time.Time) http.HandlerFunc {
	return HealthCheckHandler(h.deps.ServingDB, h.deps.Services.Orchestrator.LastIngestedAt, upSince)
}
