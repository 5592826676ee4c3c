package main

import (
	"context"
	"sync"
	"time"

	"github.com/dd0wney/cluso-forcegraph/pkg/health"
	"github.com/dd0wney/cluso-forcegraph/pkg/pubsub"
	"github.com/dd0wney/cluso-forcegraph/pkg/snapshot"
	"github.com/dd0wney/cluso-forcegraph/pkg/visualization"
)

const storeCheckTimeout = 3 * time.Second

// layoutTracker holds the last known layout status. The session itself is
// not safe for concurrent use, so health handlers read this instead.
type layoutTracker struct {
	mu     sync.RWMutex
	status health.LayoutStatus
}

func (t *layoutTracker) Status() health.LayoutStatus {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.status
}

// observe records a stop published on the event bus
func (t *layoutTracker) observe(ev pubsub.Event) {
	p, ok := ev.Payload.(visualization.LayoutConverged)
	if !ok {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.status.Stopped = true
	t.status.Converged = p.Converged
	t.status.Iterations = p.Iterations
}

// update copies the session state. Call it from the goroutine driving the
// session.
func (t *layoutTracker) update(st visualization.LayoutState) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.status = health.LayoutStatus{
		Phase:      st.Phase.String(),
		Nodes:      len(st.Nodes),
		Iterations: st.Iteration,
		Stopped:    st.Phase == visualization.PhaseConverged,
		Converged:  st.Converged,
	}
}

func newHealthChecker(tracker *layoutTracker) *health.HealthChecker {
	hc := health.NewHealthChecker()
	hc.RegisterCheck("layout", health.LayoutCheck(tracker.Status))
	hc.RegisterReadinessCheck("layout_settled", health.LayoutSettledCheck(tracker.Status))
	hc.RegisterLivenessCheck("memory", health.MemoryCheck(health.RuntimeMemory))
	return hc
}

func registerStoreCheck(hc *health.HealthChecker, store snapshot.Store) {
	hc.RegisterCheck("snapshot_store", health.StoreCheck("snapshot_store", storeCheckTimeout,
		func(ctx context.Context) error {
			_, err := store.List(ctx)
			return err
		}))
}
