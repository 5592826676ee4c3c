package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initAnimationMetrics() {
	r.AnimationsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "forcegraph_animations_started_total",
			Help: "Animations started, by kind (positions or camera)",
		},
		[]string{"kind"},
	)

	r.AnimationsSupersededTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "forcegraph_animations_superseded_total",
			Help: "Animations replaced before completing, by kind",
		},
		[]string{"kind"},
	)
}
