package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// MetricsRegistry holds all Prometheus metrics for the region sync service
type MetricsRegistry struct {
	// HTTP Metrics
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight *prometheus.GaugeVec

	// Pipeline Metrics
	RowsTotal     *prometheus.CounterVec
	BatchesTotal  *prometheus.CounterVec
	StageDuration *prometheus.HistogramVec
	RunsTotal     *prometheus.CounterVec
}

// NewMetricsRegistry registers every metric on reg. Pass
// prometheus.DefaultRegisterer in the server and a fresh registry in tests.
func NewMetricsRegistry(reg prometheus.Registerer) *MetricsRegistry {
	factory := promauto.With(reg)

	return &MetricsRegistry{
		// HTTP Metrics
		HTTPRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "regionsync_http_requests_total",
				Help: "Total HTTP requests processed by endpoint, method, and status code",
			},
			[]string{"endpoint", "method", "status_code"},
		),
		HTTPRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "regionsync_http_request_duration_seconds",
				Help:    "HTTP request latency distribution in seconds",
				Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 60, 300},
			},
			[]string{"endpoint", "method"},
		),
		HTTPRequestsInFlight: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "regionsync_http_requests_in_flight",
				Help: "Number of HTTP requests currently being processed",
			},
			[]string{"endpoint"},
		),

		// Pipeline Metrics
		RowsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "regionsync_rows_total",
				Help: "Rows handled by the sync pipeline by entity and outcome",
			},
			[]string{"entity", "outcome"},
		),
		BatchesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "regionsync_batches_total",
				Help: "Warehouse batches processed by entity",
			},
			[]string{"entity"},
		),
		StageDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "regionsync_stage_duration_seconds",
				Help:    "Pipeline stage execution time in seconds",
				Buckets: []float64{0.5, 1, 5, 10, 30, 60, 120, 300, 600},
			},
			[]string{"stage"},
		),
		RunsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "regionsync_runs_total",
				Help: "Orchestrator runs by terminal status",
			},
			[]string{"status"},
		),
	}
}

// AddRows is safe on a nil registry so jobs can run without metrics
func (m *MetricsRegistry) AddRows(entity, outcome string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.RowsTotal.WithLabelValues(entity, outcome).Add(float64(n))
}

func (m *MetricsRegistry) IncBatches(entity string) {
	if m == nil {
		return
	}
	m.BatchesTotal.WithLabelValues(entity).Inc()
}

func (m *MetricsRegistry) ObserveStage(stage string, seconds float64) {
	if m == nil {
		return
	}
	m.StageDuration.WithLabelValues(stage).Observe(seconds)
}

func (m *MetricsRegistry) IncRuns(status string) {
	if m == nil {
		return
	}
	m.RunsTotal.WithLabelValues(status).Inc()
}
