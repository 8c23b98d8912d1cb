package requests

// IngestRequest is the optional JSON body of POST /api/ingest
type IngestRequest struct {
	Force     bool `json:"force"`
	SkipGuard bool `json:"skipGuard"`
}
