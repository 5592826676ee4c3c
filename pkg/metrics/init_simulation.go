package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initSimulationMetrics() {
	r.StepsTotal = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "forcegraph_simulation_steps_total",
			Help: "Total number of force simulation steps executed",
		},
	)

	r.StepDuration = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "forcegraph_simulation_step_duration_seconds",
			Help:    "Wall time of a single simulation step",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1},
		},
	)

	r.KineticEnergy = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "forcegraph_kinetic_energy",
			Help: "Kinetic energy after the most recent step",
		},
	)

	r.RunsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "forcegraph_layout_runs_total",
			Help: "Layout runs that stopped, by outcome",
		},
		[]string{"outcome"},
	)

	r.RunIterations = promauto.With(r.registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "forcegraph_layout_run_iterations",
			Help:    "Iterations taken by a layout run before it stopped",
			Buckets: []float64{10, 25, 50, 100, 200, 300, 500},
		},
		[]string{"outcome"},
	)

	r.LayoutPhase = promauto.With(r.registry).NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "forcegraph_layout_phase",
			Help: "Current layout phase (1 for the active phase)",
		},
		[]string{"phase"},
	)
}
