package visualization

import (
	"errors"
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dd0wney/cluso-forcegraph/pkg/logging"
	"github.com/dd0wney/cluso-forcegraph/pkg/viewport"
)

type published struct {
	topic   string
	message any
}

type recordingSink struct {
	events []published
}

func (r *recordingSink) Publish(topic string, message any) {
	r.events = append(r.events, published{topic: topic, message: message})
}

func (r *recordingSink) byTopic(topic string) []any {
	var out []any
	for _, e := range r.events {
		if e.topic == topic {
			out = append(out, e.message)
		}
	}
	return out
}

type countingRecorder struct {
	steps      int
	runs       []bool
	loads      []bool
	dropped    int
	animations map[string]int
	superseded int
	phases     []string
}

func newCountingRecorder() *countingRecorder {
	return &countingRecorder{animations: make(map[string]int)}
}

func (c *countingRecorder) RecordStep(time.Duration, float64) { c.steps++ }
func (c *countingRecorder) RecordRun(converged bool, _ int, _ float64) {
	c.runs = append(c.runs, converged)
}
func (c *countingRecorder) RecordLoad(fresh bool, _, _, dropped int) {
	c.loads = append(c.loads, fresh)
	c.dropped += dropped
}
func (c *countingRecorder) RecordAnimation(kind string, superseded bool) {
	c.animations[kind]++
	if superseded {
		c.superseded++
	}
}
func (c *countingRecorder) RecordPhase(phase string) { c.phases = append(c.phases, phase) }

func newTestSession(t *testing.T, cfg Config, opts ...Option) *Session {
	t.Helper()
	if cfg.RandomSeed == 0 {
		cfg.RandomSeed = 42
	}
	opts = append([]Option{WithLogger(logging.NewNopLogger())}, opts...)
	s, err := NewSession(cfg, opts...)
	require.NoError(t, err)
	return s
}

func pairwise(s *Session, ids ...string) []float64 {
	pos := s.Positions()
	var out []float64
	for i := 0; i < len(ids); i++ {
		for j := i + 1; j < len(ids); j++ {
			out = append(out, dist(pos[ids[i]], pos[ids[j]]))
		}
	}
	return out
}

func TestNewSessionRejectsBadConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Seeder = "spiral"
	_, err := NewSession(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Seeder")
}

func TestSessionStartsIdle(t *testing.T) {
	s := newTestSession(t, Config{})
	assert.Equal(t, PhaseIdle, s.Phase())

	_, err := s.Step()
	assert.ErrorIs(t, err, ErrEmptyGraph)
	assert.ErrorIs(t, s.SetFocusNode("x"), ErrEmptyGraph)
	assert.False(t, s.FitToView(false))
}

func TestSessionFreshLoadSeedsAndSimulates(t *testing.T) {
	rec := newCountingRecorder()
	s := newTestSession(t, Config{}, WithRecorder(rec))

	res, err := s.Load(threeNodeData())
	require.NoError(t, err)
	assert.True(t, res.Fresh)
	assert.Equal(t, PhaseSimulating, s.Phase())
	assert.Equal(t, []string{"seeding", "simulating"}, rec.phases)

	for _, n := range s.State().Nodes {
		assert.NotEqual(t, Position{}, n.Position, "node %s should be seeded", n.ID)
		assert.NotEqual(t, Position{}, n.Velocity, "node %s should have a seed velocity", n.ID)
	}
}

func TestBoundedSeparationEquilibrium(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{"default parameters", Config{}},
		{"weak centering", Config{Force: ForceConfig{CenterForce: 0.005, MaxIterations: 1000}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checkBoundedSeparation(t, tt.cfg)
		})
	}
}

func checkBoundedSeparation(t *testing.T, cfg Config) {
	t.Helper()
	sink := &recordingSink{}
	s := newTestSession(t, cfg, WithEventSink(sink))

	dims := map[string]float64{"a": 0.5}
	_, err := s.Load(&GraphData{Nodes: []NodeData{
		{ID: "p", X: f64(400), Y: f64(300), Dimensions: dims},
		{ID: "q", X: f64(400), Y: f64(300), Dimensions: dims},
	}})
	require.NoError(t, err)

	st, err := s.Run(0)
	require.NoError(t, err)
	require.True(t, st.Stopped)
	require.True(t, st.Converged, "pair should settle, stopped at %d with energy %v", st.Iteration, st.KineticEnergy)
	assert.LessOrEqual(t, st.Iteration, s.Config().Force.MaxIterations)

	sep := pairwise(s, "p", "q")[0]
	assert.GreaterOrEqual(t, sep, DefaultMinDistance)
	assert.LessOrEqual(t, sep, DefaultMaxDistance)

	events := sink.byTopic(TopicLayoutConverged)
	require.Len(t, events, 1)
	ev := events[0].(LayoutConverged)
	assert.True(t, ev.Converged)
	assert.Equal(t, st.Iteration, ev.Iterations)
	assert.Equal(t, s.ID(), ev.SessionID)
}

func TestSymmetricTriangle(t *testing.T) {
	for seed := int64(1); seed <= 5; seed++ {
		t.Run(fmt.Sprintf("seed-%d", seed), func(t *testing.T) {
			s := newTestSession(t, Config{RandomSeed: seed})
			dims := map[string]float64{"a": 0.3, "b": 0.7}
			_, err := s.Load(&GraphData{
				Nodes: []NodeData{
					{ID: "x", Dimensions: dims},
					{ID: "y", Dimensions: dims},
					{ID: "z", Dimensions: dims},
				},
				Edges: []EdgeData{
					{Source: "x", Target: "y", Strength: f64(1)},
					{Source: "y", Target: "z", Strength: f64(1)},
					{Source: "x", Target: "z", Strength: f64(1)},
				},
			})
			require.NoError(t, err)

			st, err := s.Run(0)
			require.NoError(t, err)
			require.True(t, st.Converged)
			assert.LessOrEqual(t, st.Iteration, DefaultMaxIterations)

			d := pairwise(s, "x", "y", "z")
			mean := (d[0] + d[1] + d[2]) / 3
			for _, v := range d {
				assert.InEpsilon(t, mean, v, 0.05, "pairwise distances %v", d)
			}
		})
	}
}

func TestIterationCapReportsNotConverged(t *testing.T) {
	sink := &recordingSink{}
	rec := newCountingRecorder()
	s := newTestSession(t, Config{Force: ForceConfig{MaxIterations: 3}}, WithEventSink(sink), WithRecorder(rec))
	_, err := s.Load(threeNodeData())
	require.NoError(t, err)

	st, err := s.Run(0)
	require.NoError(t, err)
	assert.True(t, st.Stopped)
	assert.False(t, st.Converged)
	assert.Equal(t, 3, st.Iteration)
	assert.Equal(t, PhaseConverged, s.Phase())
	assert.False(t, s.State().Converged)
	assert.Equal(t, []bool{false}, rec.runs)
	assert.Equal(t, 3, rec.steps)

	ev := sink.byTopic(TopicLayoutConverged)
	require.Len(t, ev, 1)
	assert.False(t, ev[0].(LayoutConverged).Converged)

	// Stepping a stopped layout is a no-op
	again, err := s.Step()
	require.NoError(t, err)
	assert.Equal(t, st, again)
}

func TestRunMaxSteps(t *testing.T) {
	s := newTestSession(t, Config{})
	_, err := s.Load(threeNodeData())
	require.NoError(t, err)

	st, err := s.Run(2)
	require.NoError(t, err)
	assert.Equal(t, 2, st.Iteration)
	assert.Equal(t, PhaseSimulating, s.Phase())
}

func TestUpdatePreservesPosition(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 30
	properties := gopter.NewProperties(parameters)

	properties.Property("merge leaves positions and velocities untouched", prop.ForAll(
		func(values []float64, steps int) bool {
			s, err := NewSession(Config{RandomSeed: 9}, WithLogger(logging.NewNopLogger()))
			if err != nil {
				return false
			}
			data := &GraphData{}
			for i, v := range values {
				data.Nodes = append(data.Nodes, NodeData{ID: fmt.Sprintf("n%d", i), Dimensions: map[string]float64{"v": v}})
			}
			if _, err := s.Load(data); err != nil {
				return false
			}
			if _, err := s.Run(steps); err != nil {
				return false
			}
			before := s.State().Nodes

			for i := range data.Nodes {
				data.Nodes[i].Dimensions = map[string]float64{"v": 1 - values[i], "w": values[i]}
				data.Nodes[i].Label = "changed"
			}
			res, err := s.Load(data)
			if err != nil || res.Fresh {
				return false
			}
			after := s.State().Nodes
			for i := range before {
				if before[i].Position != after[i].Position || before[i].Velocity != after[i].Velocity {
					return false
				}
			}
			return true
		},
		gen.SliceOfN(6, gen.Float64Range(0, 1)),
		gen.IntRange(1, 40),
	))

	properties.TestingRun(t)
}

func TestUpdateReheatsSettledLayout(t *testing.T) {
	rec := newCountingRecorder()
	s := newTestSession(t, Config{ReheatIterations: 7}, WithRecorder(rec))
	_, err := s.Load(threeNodeData())
	require.NoError(t, err)
	_, err = s.Run(0)
	require.NoError(t, err)
	require.Equal(t, PhaseConverged, s.Phase())

	data := threeNodeData()
	data.Nodes = append(data.Nodes, NodeData{ID: "d"})
	res, err := s.Load(data)
	require.NoError(t, err)
	assert.False(t, res.Fresh)
	assert.Equal(t, []string{"d"}, res.Added)
	assert.Equal(t, PhaseSimulating, s.Phase())
	assert.Equal(t, []bool{true, false}, rec.loads)

	d := s.Positions()["d"]
	assert.NotEqual(t, Position{}, d, "a node added by an update is seeded")

	st, err := s.Run(0)
	require.NoError(t, err)
	assert.LessOrEqual(t, st.Iteration, 7)
}

func TestDroppedEdgesAreLogged(t *testing.T) {
	logger := logging.NewMemoryLogger()
	rec := newCountingRecorder()
	s := newTestSession(t, Config{}, WithRecorder(rec))
	WithLogger(logger)(s)

	data := threeNodeData()
	data.Edges = append(data.Edges, EdgeData{ID: "dangling", Source: "a", Target: "missing"})
	res, err := s.Load(data)
	require.NoError(t, err)
	require.Len(t, res.DroppedEdges, 1)
	assert.Equal(t, 1, rec.dropped)

	assert.Equal(t, 1, logger.Count(logging.WarnLevel))
	var found bool
	for _, e := range logger.Entries() {
		if e.Level == logging.WarnLevel {
			found = true
			assert.Equal(t, "dangling", e.Fields["edge_id"])
			assert.Equal(t, "missing", e.Fields["target"])
		}
	}
	assert.True(t, found)
}

func TestLoadRejectsInvalidData(t *testing.T) {
	s := newTestSession(t, Config{})
	_, err := s.Load(&GraphData{Nodes: []NodeData{{ID: "a"}, {ID: "a"}}})
	assert.ErrorIs(t, err, ErrInvalidGraph)
	assert.Equal(t, 0, s.model.NodeCount(), "rejected data must not be merged")

	_, err = s.Load(nil)
	assert.ErrorIs(t, err, ErrInvalidGraph)
}

func TestLoadEmptyReturnsToIdle(t *testing.T) {
	s := newTestSession(t, Config{})
	_, err := s.Load(threeNodeData())
	require.NoError(t, err)

	res, err := s.Load(&GraphData{})
	require.NoError(t, err)
	assert.Len(t, res.Removed, 3)
	assert.Equal(t, PhaseIdle, s.Phase())
}

func focusData() *GraphData {
	return &GraphData{Nodes: []NodeData{
		{ID: "f", Dimensions: map[string]float64{"x": 0.9, "y": 0.9}},
		{ID: "near", Dimensions: map[string]float64{"x": 0.8, "y": 0.85}},
		{ID: "far", Dimensions: map[string]float64{"x": 0.1, "y": 0.2}},
		{ID: "mid", Dimensions: map[string]float64{"x": 0.5, "y": 0.6}},
	}}
}

func TestFocusRelayoutOrdering(t *testing.T) {
	rec := newCountingRecorder()
	s := newTestSession(t, Config{}, WithRecorder(rec))
	_, err := s.Load(focusData())
	require.NoError(t, err)
	_, err = s.Run(5)
	require.NoError(t, err)

	require.NoError(t, s.SetFocusNode("f"))
	assert.Equal(t, PhaseAnimating, s.Phase())
	assert.Empty(t, s.FocusNodeID(), "focus takes effect when the tween completes")
	assert.True(t, s.CameraAnimating())

	_, err = s.Step()
	assert.ErrorIs(t, err, ErrPositionsAnimating)

	// Halfway through, nodes are between snapshot and target
	assert.Equal(t, PhaseAnimating, s.Tick(750*time.Millisecond))
	assert.InDelta(t, 0.5, s.AnimationProgress(), 1e-9)

	assert.Equal(t, PhaseSimulating, s.Tick(time.Second))
	assert.Equal(t, "f", s.FocusNodeID())

	center := canvas.Center()
	pos := s.Positions()
	assert.InDelta(t, center.X, pos["f"].X, 1e-9)
	assert.InDelta(t, center.Y, pos["f"].Y, 1e-9)

	rNear := dist(pos["near"], center)
	rMid := dist(pos["mid"], center)
	rFar := dist(pos["far"], center)
	assert.Less(t, rNear, rMid)
	assert.Less(t, rMid, rFar)

	// Camera finished its shorter tween and centers the focus node
	assert.False(t, s.CameraAnimating())
	screen := s.Camera().Apply(pos["f"])
	assert.InDelta(t, s.Viewport().Center().X, screen.X, 1e-9)
	assert.InDelta(t, s.Viewport().Center().Y, screen.Y, 1e-9)

	assert.Equal(t, 1, rec.animations[AnimationPositions])
	assert.Equal(t, 1, rec.animations[AnimationCamera])
}

func TestFocusSupersedesInFlightTween(t *testing.T) {
	rec := newCountingRecorder()
	s := newTestSession(t, Config{}, WithRecorder(rec))
	_, err := s.Load(focusData())
	require.NoError(t, err)

	require.NoError(t, s.SetFocusNode("f"))
	s.Tick(200 * time.Millisecond)
	require.NoError(t, s.SetFocusNode("far"))
	assert.Equal(t, 2, rec.superseded, "both the position and camera tweens were replaced")

	s.Tick(2 * time.Second)
	assert.Equal(t, "far", s.FocusNodeID())
	pos := s.Positions()
	assert.InDelta(t, canvas.Center().X, pos["far"].X, 1e-9)
}

func TestSetFocusUnknownNode(t *testing.T) {
	s := newTestSession(t, Config{})
	_, err := s.Load(focusData())
	require.NoError(t, err)
	err = s.SetFocusNode("ghost")
	assert.True(t, errors.Is(err, ErrNodeNotFound))
	assert.Equal(t, PhaseSimulating, s.Phase())
}

func TestClearFocus(t *testing.T) {
	s := newTestSession(t, Config{})
	_, err := s.Load(focusData())
	require.NoError(t, err)

	require.NoError(t, s.SetFocusNode("f"))
	s.Tick(200 * time.Millisecond)
	require.NoError(t, s.ClearFocus())
	assert.Equal(t, PhaseSimulating, s.Phase(), "clearing mid-tween hands positions back to the simulator")
	assert.Empty(t, s.FocusNodeID())

	require.NoError(t, s.SetFocusNode("f"))
	s.Tick(2 * time.Second)
	require.Equal(t, "f", s.FocusNodeID())
	_, err = s.Run(0)
	require.NoError(t, err)
	require.Equal(t, PhaseConverged, s.Phase())

	require.NoError(t, s.ClearFocus())
	assert.Empty(t, s.FocusNodeID())
	assert.Equal(t, PhaseSimulating, s.Phase(), "a settled layout restarts without focus")
}

func TestPinAndUnpin(t *testing.T) {
	s := newTestSession(t, Config{})
	_, err := s.Load(threeNodeData())
	require.NoError(t, err)

	require.NoError(t, s.PinNode("a", Position{X: -100, Y: 250}))
	_, err = s.Run(20)
	require.NoError(t, err)
	assert.Equal(t, Position{X: DefaultPadding, Y: 250}, s.Positions()["a"], "pin is clamped and held")

	_, err = s.Run(0)
	require.NoError(t, err)
	require.Equal(t, PhaseConverged, s.Phase())
	require.NoError(t, s.UnpinNode("a"))
	assert.Equal(t, PhaseSimulating, s.Phase(), "unpinning reheats a settled layout")

	assert.ErrorIs(t, s.PinNode("zz", Position{}), ErrNodeNotFound)
	assert.ErrorIs(t, s.UnpinNode("zz"), ErrNodeNotFound)
	assert.Error(t, s.PinNode("a", Position{X: math.NaN()}))
}

func TestResizeClampsNodes(t *testing.T) {
	s := newTestSession(t, Config{})
	_, err := s.Load(focusData())
	require.NoError(t, err)
	_, err = s.Run(10)
	require.NoError(t, err)

	require.NoError(t, s.Resize(200, 150))
	for id, p := range s.Positions() {
		assert.True(t, p.X >= DefaultPadding && p.X <= 200-DefaultPadding, "node %s x=%v", id, p.X)
		assert.True(t, p.Y >= DefaultPadding && p.Y <= 150-DefaultPadding, "node %s y=%v", id, p.Y)
	}
	assert.Equal(t, viewport.Size{Width: 200, Height: 150}, s.Viewport())
	assert.Error(t, s.Resize(0, 100))
}

func TestActivateEvents(t *testing.T) {
	sink := &recordingSink{}
	s := newTestSession(t, Config{}, WithEventSink(sink), WithSessionID("sess-1"))
	_, err := s.Load(threeNodeData())
	require.NoError(t, err)

	require.NoError(t, s.ActivateNode("b"))
	require.NoError(t, s.ActivateEdge("ab"))
	assert.ErrorIs(t, s.ActivateNode("nope"), ErrNodeNotFound)
	assert.ErrorIs(t, s.ActivateEdge("nope"), ErrEdgeNotFound)

	assert.Equal(t, []any{NodeActivated{SessionID: "sess-1", NodeID: "b"}}, sink.byTopic(TopicNodeActivated))
	assert.Equal(t, []any{EdgeActivated{SessionID: "sess-1", EdgeID: "ab"}}, sink.byTopic(TopicEdgeActivated))
}

func TestTickDrivesSimulation(t *testing.T) {
	s := newTestSession(t, Config{})
	_, err := s.Load(threeNodeData())
	require.NoError(t, err)

	for i := 0; i < 4; i++ {
		s.Tick(16 * time.Millisecond)
	}
	assert.Equal(t, 4, s.State().Iteration)
}

func TestPositionsIsACopy(t *testing.T) {
	s := newTestSession(t, Config{})
	_, err := s.Load(threeNodeData())
	require.NoError(t, err)

	pos := s.Positions()
	original := pos["a"]
	pos["a"] = Position{X: 1, Y: 1}
	assert.Equal(t, original, s.Positions()["a"])

	state := s.State()
	state.Nodes[0].Position = Position{X: 2, Y: 2}
	assert.Equal(t, original, s.Positions()["a"])
}

func TestStateEdgesAndNodeAreCopies(t *testing.T) {
	s := newTestSession(t, Config{})
	_, err := s.Load(threeNodeData())
	require.NoError(t, err)
	assert.Equal(t, 3, s.NodeCount())

	state := s.State()
	require.Len(t, state.Edges, 2)
	assert.Equal(t, EdgeState{ID: "ab", SourceID: "a", TargetID: "b", Strength: 0.5}, state.Edges[0])
	assert.Equal(t, "b", state.Edges[1].SourceID)
	assert.Equal(t, DefaultEdgeStrength, state.Edges[1].Strength)

	state.Edges[0].Strength = 0.9
	state.Edges[0].TargetID = "c"
	again := s.State()
	assert.Equal(t, 0.5, again.Edges[0].Strength)
	assert.Equal(t, "b", again.Edges[0].TargetID)

	node, ok := s.Node("a")
	require.True(t, ok)
	assert.Equal(t, "Alpha", node.Label)
	original := node.Position
	node.Position = Position{X: 3, Y: 3}
	node.Pinned = true
	fresh, _ := s.Node("a")
	assert.Equal(t, original, fresh.Position)
	assert.False(t, fresh.Pinned)

	_, ok = s.Node("missing")
	assert.False(t, ok)
}

func TestZeroConfigUsesDimensionDefaults(t *testing.T) {
	data := threeNodeData()
	data.Edges[0].Dimensions = map[string]float64{"bandwidth": 1}
	data.Edges[1].ID = "bc"

	s := newTestSession(t, Config{})
	_, err := s.Load(data)
	require.NoError(t, err)

	dm := s.model.Metrics()
	bc, ok := s.model.Edge("bc")
	require.True(t, ok)
	assert.InDelta(t, 1.25, dm.EdgeWeight(bc), 1e-9, "missing edge dimension reads 0.5")

	c, _ := s.model.Node("c")
	assert.InDelta(t, DefaultDimensionValue, dm.NodeValue(c, "risk"), 1e-9)

	zero := newTestSession(t, Config{EdgeDimensionDefault: f64(0)})
	_, err = zero.Load(data)
	require.NoError(t, err)
	bc, _ = zero.model.Edge("bc")
	assert.InDelta(t, 1.0, zero.model.Metrics().EdgeWeight(bc), 1e-9, "an explicit zero default is kept")
}

func TestHostPinSurvivesDataRefresh(t *testing.T) {
	s := newTestSession(t, Config{})
	data := &GraphData{Nodes: []NodeData{
		{ID: "a", X: f64(100), Y: f64(100), Pinned: true},
		{ID: "b", X: f64(300), Y: f64(200)},
	}}
	_, err := s.Load(data)
	require.NoError(t, err)
	require.NoError(t, s.PinNode("b", Position{X: 250, Y: 250}))

	refresh := &GraphData{Nodes: []NodeData{
		{ID: "a", X: f64(100), Y: f64(100)},
		{ID: "b", X: f64(300), Y: f64(200)},
	}}
	_, err = s.Load(refresh)
	require.NoError(t, err)

	a, _ := s.Node("a")
	assert.False(t, a.Pinned, "the data no longer pins a")
	b, _ := s.Node("b")
	assert.True(t, b.Pinned, "a pin made by the host is not data's to withdraw")
	assert.Equal(t, Position{X: 250, Y: 250}, b.Position)
}
