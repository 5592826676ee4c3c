package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initModelMetrics() {
	r.LoadsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "forcegraph_model_loads_total",
			Help: "Graph loads, by kind (fresh or update)",
		},
		[]string{"kind"},
	)

	r.ModelNodes = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "forcegraph_model_nodes",
			Help: "Nodes held by the graph model",
		},
	)

	r.ModelEdges = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "forcegraph_model_edges",
			Help: "Edges held by the graph model",
		},
	)

	r.DroppedEdgesTotal = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "forcegraph_model_dropped_edges_total",
			Help: "Edges dropped because an endpoint was missing",
		},
	)
}
