// Package metrics exposes Prometheus collectors for drawing ingestion.
package metrics

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry holds all metrics for the application
type Registry struct {
	// Pipeline metrics
	DrawingsTotal      *prometheus.CounterVec
	PointsTotal        *prometheus.CounterVec
	ExtractionDuration *prometheus.HistogramVec
	UpstreamErrors     *prometheus.CounterVec
	RejectedTotal      *prometheus.CounterVec

	// Transport metrics
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec

	registry *prometheus.Registry
}

var (
	defaultRegistry *Registry
	once            sync.Once
)

// DefaultRegistry returns the process-wide registry.
func DefaultRegistry() *Registry {
	once.Do(func() {
		defaultRegistry = NewRegistry()
	})
	return defaultRegistry
}

// NewRegistry creates a new metrics registry with all metrics initialized
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	r := &Registry{registry: reg}
	r.initPipelineMetrics()
	r.initTransportMetrics()
	return r
}

func (r *Registry) initPipelineMetrics() {
	r.DrawingsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "levels_drawings_parsed_total",
			Help: "Drawings processed, by ingestion source and outcome",
		},
		[]string{"source", "outcome"},
	)

	r.PointsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "levels_points_total",
			Help: "Classified points produced, by kind",
		},
		[]string{"kind"},
	)

	r.ExtractionDuration = promauto.With(r.registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "levels_extraction_duration_seconds",
			Help:    "Time spent turning one upload into a parsed drawing",
			Buckets: []float64{0.005, 0.025, 0.1, 0.5, 1, 2.5, 5, 10, 30, 60},
		},
		[]string{"source"},
	)

	r.UpstreamErrors = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "levels_upstream_errors_total",
			Help: "Failed document model calls, by kind",
		},
		[]string{"kind"}, // RATE_LIMITED, QUOTA_EXHAUSTED, FAILED
	)

	r.RejectedTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "levels_rejected_uploads_total",
			Help: "Uploads refused before parsing, by format",
		},
		[]string{"format"},
	)
}

func (r *Registry) initTransportMetrics() {
	r.RequestsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "levels_requests_total",
			Help: "Requests served, by transport, route and status",
		},
		[]string{"transport", "route", "status"},
	)

	r.RequestDuration = promauto.With(r.registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "levels_request_duration_seconds",
			Help:    "Request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"transport", "route"},
	)
}

// RecordDrawing records one processed upload.
func (r *Registry) RecordDrawing(source, outcome string, duration time.Duration, ngl, design, unknown int) {
	r.DrawingsTotal.WithLabelValues(source, outcome).Inc()
	r.ExtractionDuration.WithLabelValues(source).Observe(duration.Seconds())
	r.PointsTotal.WithLabelValues("NGL").Add(float64(ngl))
	r.PointsTotal.WithLabelValues("Design").Add(float64(design))
	r.PointsTotal.WithLabelValues("Unknown").Add(float64(unknown))
}

// RecordUpstreamError counts a failed model call.
func (r *Registry) RecordUpstreamError(kind string) {
	r.UpstreamErrors.WithLabelValues(kind).Inc()
}

// RecordRejected counts an upload refused before parsing.
func (r *Registry) RecordRejected(format string) {
	r.RejectedTotal.WithLabelValues(format).Inc()
}

// RecordRequest records a served request with its duration
func (r *Registry) RecordRequest(transport, route, status string, duration time.Duration) {
	r.RequestsTotal.WithLabelValues(transport, route, status).Inc()
	r.RequestDuration.WithLabelValues(transport, route).Observe(duration.Seconds())
}

// Handler serves the registry in the Prometheus text format.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}

// GetPrometheusRegistry returns the underlying Prometheus registry
func (r *Registry) GetPrometheusRegistry() *prometheus.Registry {
	return r.registry
}
