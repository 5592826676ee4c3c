package health

import (
	"context"
	"runtime"
	"time"
)

// LayoutCheck reports on the layout session. A session without nodes or
// one that hit its iteration cap is degraded, never unhealthy.
func LayoutCheck(getStatus func() LayoutStatus) CheckFunc {
	return func() Check {
		st := getStatus()
		check := Check{
			Name:    "layout",
			Status:  StatusHealthy,
			Details: layoutDetails(st),
		}

		switch {
		case st.Nodes == 0:
			check.Status = StatusDegraded
			check.Message = "No graph loaded"
		case st.Stopped && !st.Converged:
			check.Status = StatusDegraded
			check.Message = "Layout stopped at iteration cap"
		case st.Stopped:
			check.Message = "Layout settled"
		default:
			check.Message = "Layout settling"
		}

		return check
	}
}

// LayoutSettledCheck is healthy once a run has stopped, which is when a
// host's output is ready to read
func LayoutSettledCheck(getStatus func() LayoutStatus) CheckFunc {
	return func() Check {
		st := getStatus()
		check := Check{
			Name:    "layout_settled",
			Details: layoutDetails(st),
		}
		if st.Stopped {
			check.Status = StatusHealthy
			check.Message = "Layout settled"
		} else {
			check.Status = StatusUnhealthy
			check.Message = "Layout not settled"
		}
		return check
	}
}

func layoutDetails(st LayoutStatus) map[string]any {
	return map[string]any{
		"phase":      st.Phase,
		"nodes":      st.Nodes,
		"iterations": st.Iterations,
		"converged":  st.Converged,
	}
}

// StoreCheck probes a snapshot store, typically with its List method
func StoreCheck(name string, timeout time.Duration, probe func(ctx context.Context) error) CheckFunc {
	return func() Check {
		check := Check{Name: name}

		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		if err := probe(ctx); err != nil {
			check.Status = StatusUnhealthy
			check.Message = err.Error()
		} else {
			check.Status = StatusHealthy
			check.Message = "Reachable"
		}

		return check
	}
}

// MemoryCheck creates a health check for memory usage
func MemoryCheck(getUsage func() (alloc, sys uint64)) CheckFunc {
	return func() Check {
		check := Check{
			Name:    "memory",
			Details: make(map[string]any),
		}

		alloc, sys := getUsage()

		check.Details["alloc_bytes"] = alloc
		check.Details["sys_bytes"] = sys

		var usagePercent float64
		if sys > 0 {
			usagePercent = float64(alloc) / float64(sys) * 100
		}

		if usagePercent > 90 {
			check.Status = StatusDegraded
			check.Message = "High memory usage"
		} else {
			check.Status = StatusHealthy
			check.Message = "Memory usage normal"
		}

		return check
	}
}

// RuntimeMemory reads heap usage from the Go runtime for MemoryCheck
func RuntimeMemory() (alloc, sys uint64) {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	return m.Alloc, m.Sys
}
