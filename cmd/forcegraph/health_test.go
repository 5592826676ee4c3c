package main

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dd0wney/cluso-forcegraph/pkg/health"
	"github.com/dd0wney/cluso-forcegraph/pkg/logging"
	"github.com/dd0wney/cluso-forcegraph/pkg/pubsub"
	"github.com/dd0wney/cluso-forcegraph/pkg/snapshot"
	"github.com/dd0wney/cluso-forcegraph/pkg/visualization"
)

type failingStore struct {
	snapshot.Store
}

func (failingStore) List(context.Context) ([]string, error) {
	return nil, errors.New("bucket unreachable")
}

func get(t *testing.T, h http.HandlerFunc) int {
	t.Helper()
	rec := httptest.NewRecorder()
	h(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	return rec.Code
}

func TestLayoutTrackerFollowsSession(t *testing.T) {
	tracker := &layoutTracker{}
	checker := newHealthChecker(tracker)

	assert.Equal(t, health.StatusDegraded, checker.Check().Status, "no graph yet")
	assert.Equal(t, http.StatusServiceUnavailable, get(t, checker.ReadinessHandler()))
	assert.Equal(t, http.StatusOK, get(t, checker.LivenessHandler()))

	session, err := visualization.NewSession(visualization.Config{RandomSeed: 1},
		visualization.WithLogger(logging.NewNopLogger()))
	require.NoError(t, err)
	_, err = session.Load(&visualization.GraphData{
		Nodes: []visualization.NodeData{{ID: "a"}, {ID: "b"}},
		Edges: []visualization.EdgeData{{ID: "ab", Source: "a", Target: "b"}},
	})
	require.NoError(t, err)
	tracker.update(session.State())

	st := tracker.Status()
	assert.Equal(t, 2, st.Nodes)
	assert.False(t, st.Stopped)
	assert.Equal(t, http.StatusServiceUnavailable, get(t, checker.ReadinessHandler()))

	_, err = session.Run(0)
	require.NoError(t, err)
	tracker.update(session.State())

	assert.True(t, tracker.Status().Stopped)
	assert.Equal(t, http.StatusOK, get(t, checker.ReadinessHandler()))
}

func TestLayoutTrackerObservesEvents(t *testing.T) {
	tracker := &layoutTracker{}
	tracker.observe(pubsub.Event{Topic: visualization.TopicNodeActivated,
		Payload: visualization.NodeActivated{NodeID: "a"}})
	assert.False(t, tracker.Status().Stopped, "only stops are tracked")

	tracker.observe(pubsub.Event{Topic: visualization.TopicLayoutConverged,
		Payload: visualization.LayoutConverged{Iterations: 300}})
	st := tracker.Status()
	assert.True(t, st.Stopped)
	assert.False(t, st.Converged)
	assert.Equal(t, 300, st.Iterations)
}

func TestStoreCheckRegistration(t *testing.T) {
	tracker := &layoutTracker{}
	tracker.update(visualization.LayoutState{
		Phase:     visualization.PhaseConverged,
		Converged: true,
		Nodes:     []visualization.NodeState{{}},
	})

	checker := newHealthChecker(tracker)
	store, err := snapshot.NewFileStore(t.TempDir())
	require.NoError(t, err)
	registerStoreCheck(checker, store)
	resp := checker.Check()
	assert.Equal(t, health.StatusHealthy, resp.Status)
	assert.Equal(t, "Reachable", resp.Checks["snapshot_store"].Message)

	checker = newHealthChecker(tracker)
	registerStoreCheck(checker, failingStore{})
	resp = checker.Check()
	assert.Equal(t, health.StatusUnhealthy, resp.Status)
	assert.Equal(t, http.StatusServiceUnavailable, get(t, checker.HTTPHandler()))
}

func TestCappedRunIsDegraded(t *testing.T) {
	tracker := &layoutTracker{}
	tracker.update(visualization.LayoutState{
		Phase:     visualization.PhaseConverged,
		Iteration: 300,
		Nodes:     []visualization.NodeState{{}, {}},
	})
	checker := newHealthChecker(tracker)
	registerStoreCheck(checker, failingStore{})

	resp := newHealthChecker(tracker).Check()
	assert.Equal(t, health.StatusDegraded, resp.Status)
	assert.Equal(t, "Layout stopped at iteration cap", resp.Checks["layout"].Message)
	assert.Equal(t, http.StatusOK, get(t, newHealthChecker(tracker).HTTPHandler()), "degraded still answers 200")
	assert.Equal(t, http.StatusOK, get(t, newHealthChecker(tracker).ReadinessHandler()), "a capped run has stopped")

	assert.Equal(t, health.StatusUnhealthy, checker.Check().Status, "an unreachable store outranks a capped run")
}
