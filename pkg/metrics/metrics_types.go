package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry holds all metrics for a layout host
type Registry struct {
	// Simulation Metrics
	StepsTotal    prometheus.Counter
	StepDuration  prometheus.Histogram
	KineticEnergy prometheus.Gauge
	RunsTotal     *prometheus.CounterVec
	RunIterations *prometheus.HistogramVec
	LayoutPhase   *prometheus.GaugeVec

	// Model Metrics
	LoadsTotal        *prometheus.CounterVec
	ModelNodes        prometheus.Gauge
	ModelEdges        prometheus.Gauge
	DroppedEdgesTotal prometheus.Counter

	// Animation Metrics
	AnimationsTotal           *prometheus.CounterVec
	AnimationsSupersededTotal *prometheus.CounterVec

	// System Metrics
	UptimeSeconds    prometheus.Gauge
	GoRoutines       prometheus.Gauge
	MemoryAllocBytes prometheus.Gauge

	registry *prometheus.Registry
	mu       sync.Mutex
}

// Phase labels exported on LayoutPhase
var phaseLabels = []string{"idle", "seeding", "simulating", "animating", "converged"}

var (
	defaultRegistry *Registry
	once            sync.Once
)

// DefaultRegistry returns the global metrics registry
func DefaultRegistry() *Registry {
	once.Do(func() {
		defaultRegistry = NewRegistry()
	})
	return defaultRegistry
}

// NewRegistry creates a new metrics registry with all metrics initialized
func NewRegistry() *Registry {
	r := &Registry{
		registry: prometheus.NewRegistry(),
	}

	r.initSimulationMetrics()
	r.initModelMetrics()
	r.initAnimationMetrics()
	r.initSystemMetrics()

	return r
}

// GetPrometheusRegistry returns the underlying Prometheus registry
func (r *Registry) GetPrometheusRegistry() *prometheus.Registry {
	return r.registry
}

// Handler serves the registry in the Prometheus exposition format
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}
