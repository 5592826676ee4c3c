package metrics

import (
	"math"
	"runtime"
	"time"
)

// RecordStep records one simulation step
func (r *Registry) RecordStep(duration time.Duration, kineticEnergy float64) {
	r.StepsTotal.Inc()
	r.StepDuration.Observe(duration.Seconds())
	if !math.IsNaN(kineticEnergy) && !math.IsInf(kineticEnergy, 0) {
		r.KineticEnergy.Set(kineticEnergy)
	}
}

// RecordRun records a layout run that stopped, either converged or capped
func (r *Registry) RecordRun(converged bool, iterations int, kineticEnergy float64) {
	outcome := "capped"
	if converged {
		outcome = "converged"
	}
	r.RunsTotal.WithLabelValues(outcome).Inc()
	r.RunIterations.WithLabelValues(outcome).Observe(float64(iterations))
	if !math.IsNaN(kineticEnergy) && !math.IsInf(kineticEnergy, 0) {
		r.KineticEnergy.Set(kineticEnergy)
	}
}

// RecordLoad records a graph load and the resulting model size
func (r *Registry) RecordLoad(fresh bool, nodes, edges, droppedEdges int) {
	kind := "update"
	if fresh {
		kind = "fresh"
	}
	r.LoadsTotal.WithLabelValues(kind).Inc()
	r.ModelNodes.Set(float64(nodes))
	r.ModelEdges.Set(float64(edges))
	if droppedEdges > 0 {
		r.DroppedEdgesTotal.Add(float64(droppedEdges))
	}
}

// RecordAnimation records an animation start
func (r *Registry) RecordAnimation(kind string, superseded bool) {
	r.AnimationsTotal.WithLabelValues(kind).Inc()
	if superseded {
		r.AnimationsSupersededTotal.WithLabelValues(kind).Inc()
	}
}

// RecordPhase marks phase as the active layout phase
func (r *Registry) RecordPhase(phase string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, p := range phaseLabels {
		r.LayoutPhase.WithLabelValues(p).Set(0)
	}
	r.LayoutPhase.WithLabelValues(phase).Set(1)
}

// UpdateSystemMetrics refreshes process gauges
func (r *Registry) UpdateSystemMetrics(startTime time.Time) {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	r.UptimeSeconds.Set(time.Since(startTime).Seconds())
	r.GoRoutines.Set(float64(runtime.NumGoroutine()))
	r.MemoryAllocBytes.Set(float64(m.Alloc))
}
