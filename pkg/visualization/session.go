package visualization

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"github.com/dd0wney/cluso-forcegraph/pkg/animation"
	"github.com/dd0wney/cluso-forcegraph/pkg/logging"
	"github.com/dd0wney/cluso-forcegraph/pkg/viewport"
)

// Animation kinds
const (
	AnimationPositions = "positions"
	AnimationCamera    = "camera"
)

// Session owns a graph model and drives its layout. It is not safe for
// concurrent use; a host calls it from one loop.
type Session struct {
	id       string
	config   Config
	logger   logging.Logger
	recorder Recorder
	sink     EventSink
	seeder   Seeder
	rng      *rand.Rand

	model *GraphModel
	sim   *ForceSimulator

	phase     Phase
	focusID   string
	iteration int
	budget    int
	energy    float64
	calmSteps int
	converged bool

	positions    *animation.Controller[map[string]Position]
	pendingFocus string

	camera     viewport.Camera
	cameraAnim *animation.Controller[viewport.Camera]
	viewport   viewport.Size
}

// Option configures a Session
type Option func(*Session)

// WithLogger sets the session logger
func WithLogger(logger logging.Logger) Option {
	return func(s *Session) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithRecorder sets where layout measurements go
func WithRecorder(r Recorder) Option {
	return func(s *Session) {
		if r != nil {
			s.recorder = r
		}
	}
}

// WithEventSink sets where events are published
func WithEventSink(sink EventSink) Option {
	return func(s *Session) {
		if sink != nil {
			s.sink = sink
		}
	}
}

// WithSeeder overrides the configured seeding strategy
func WithSeeder(seeder Seeder) Option {
	return func(s *Session) {
		if seeder != nil {
			s.seeder = seeder
		}
	}
}

// WithSessionID sets the id reported in events and logs
func WithSessionID(id string) Option {
	return func(s *Session) {
		if id != "" {
			s.id = id
		}
	}
}

// RunStatus reports where the current run stands
type RunStatus struct {
	Iteration     int
	KineticEnergy float64
	Stopped       bool
	Converged     bool
}

// NodeState is a read-only view of one node
type NodeState struct {
	ID       string   `json:"id"`
	Label    string   `json:"label,omitempty"`
	Position Position `json:"position"`
	Velocity Position `json:"velocity"`
	Pinned   bool     `json:"pinned,omitempty"`
}

// EdgeState is the read-only view of an edge
type EdgeState struct {
	ID       string  `json:"id"`
	SourceID string  `json:"source"`
	TargetID string  `json:"target"`
	Strength float64 `json:"strength"`
}

// LayoutState is a read-only copy of the session state
type LayoutState struct {
	SessionID     string          `json:"session_id"`
	Phase         Phase           `json:"phase"`
	Iteration     int             `json:"iteration"`
	KineticEnergy float64         `json:"kinetic_energy"`
	Converged     bool            `json:"converged"`
	FocusNodeID   string          `json:"focus_node_id,omitempty"`
	Camera        viewport.Camera `json:"camera"`
	Nodes         []NodeState     `json:"nodes"`
	Edges         []EdgeState     `json:"edges"`
}

// NewSession creates a session. Zero tunables in config take defaults.
func NewSession(config Config, opts ...Option) (*Session, error) {
	config = config.WithDefaults()
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid session config: %w", err)
	}

	seeder, err := NewSeeder(config.Seeder, config.Force.Padding)
	if err != nil {
		return nil, err
	}

	seed := config.RandomSeed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	s := &Session{
		id:         uuid.New().String(),
		config:     config,
		logger:     logging.DefaultLogger(),
		recorder:   nopRecorder{},
		sink:       nopSink{},
		seeder:     seeder,
		rng:        rand.New(rand.NewSource(seed)),
		model:      NewGraphModel(NewDimensionalMetrics(config.Dimensions())),
		sim:        NewForceSimulator(config.Force),
		phase:      PhaseIdle,
		positions:  animation.NewController[map[string]Position](AnimationPositions),
		camera:     viewport.Identity(),
		cameraAnim: animation.NewController[viewport.Camera](AnimationCamera),
		viewport:   config.Size(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With(logging.Component("layout"), logging.SessionID(s.id))
	return s, nil
}

// ID returns the session id
func (s *Session) ID() string { return s.id }

// Config returns the effective configuration
func (s *Session) Config() Config { return s.config }

// Phase returns the current phase
func (s *Session) Phase() Phase { return s.phase }

// FocusNodeID returns the focus node, or "" when none is set
func (s *Session) FocusNodeID() string { return s.focusID }

// NodeCount returns the number of nodes in the model
func (s *Session) NodeCount() int { return s.model.NodeCount() }

// Node returns a copy of one node's state
func (s *Session) Node(id string) (NodeState, bool) {
	node, ok := s.model.Node(id)
	if !ok {
		return NodeState{}, false
	}
	return nodeState(node), true
}

func (s *Session) transition(to Phase) error {
	from := s.phase
	if !CanTransition(from, to) {
		s.logger.Error("Illegal phase transition",
			logging.String("from", from.String()), logging.String("to", to.String()))
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
	}
	if from != to {
		s.phase = to
		s.recorder.RecordPhase(to.String())
		s.logger.Debug("Phase changed", logging.String("from", from.String()), logging.Phase(to.String()))
	}
	return nil
}

// Load merges graph data into the model. A fresh load seeds every node and
// starts a full run. An update keeps existing positions, seeds only new
// nodes and, if the layout had settled, reheats it for a bounded number of
// iterations.
func (s *Session) Load(data *GraphData) (LoadResult, error) {
	if data == nil {
		return LoadResult{}, fmt.Errorf("%w: nil graph data", ErrInvalidGraph)
	}
	if err := data.Validate(); err != nil {
		return LoadResult{}, err
	}

	timer := logging.StartTimer(s.logger, "Graph loaded")
	res := s.model.Load(data)
	for _, ed := range res.DroppedEdges {
		s.logger.Warn("Dropping edge with missing endpoint",
			logging.EdgeID(ed.ID),
			logging.String("source", ed.Source),
			logging.String("target", ed.Target))
	}
	s.recorder.RecordLoad(res.Fresh, s.model.NodeCount(), s.model.EdgeCount(), len(res.DroppedEdges))

	if s.focusID != "" {
		if _, ok := s.model.Node(s.focusID); !ok {
			s.focusID = ""
		}
	}
	if s.pendingFocus != "" {
		if _, ok := s.model.Node(s.pendingFocus); !ok {
			s.pendingFocus = ""
		}
	}

	defer timer.End(
		logging.Bool("fresh", res.Fresh),
		logging.Count(s.model.NodeCount()),
		logging.Int("added", len(res.Added)),
		logging.Int("removed", len(res.Removed)),
		logging.Int("dropped_edges", len(res.DroppedEdges)))

	if s.model.NodeCount() == 0 {
		s.positions.Cancel()
		s.focusID, s.pendingFocus = "", ""
		return res, s.transition(PhaseIdle)
	}

	if res.Fresh {
		s.positions.Cancel()
		s.pendingFocus = ""
		if err := s.transition(PhaseSeeding); err != nil {
			return res, err
		}
		s.seedAll()
		return res, s.startRun(s.config.Force.MaxIterations)
	}

	s.seedAdded(res.Added)
	switch s.phase {
	case PhaseIdle:
		return res, s.startRun(s.config.Force.MaxIterations)
	case PhaseConverged:
		s.logger.Debug("Reheating layout after update", logging.Int("budget", s.config.ReheatIterations))
		return res, s.startRun(s.config.ReheatIterations)
	}
	return res, nil
}

// seedAll places every node that did not arrive with coordinates
func (s *Session) seedAll() {
	positions := s.seeder.Seed(s.model, s.config.Size(), s.rng)
	for _, node := range s.model.Nodes() {
		if node.explicit || node.IsPinned() {
			continue
		}
		p, ok := positions[node.ID]
		if !ok {
			continue
		}
		node.Position = s.sim.Clamp(p, s.config.Size())
		node.Velocity = seedVelocityFor(s.rng)
	}
}

// seedAdded places nodes new to an update using the golden rule at their index
func (s *Session) seedAdded(ids []string) {
	if len(ids) == 0 {
		return
	}
	center := s.config.Size().Center()
	for _, id := range ids {
		node, ok := s.model.Node(id)
		if !ok || node.explicit || node.IsPinned() {
			continue
		}
		p := GoldenPosition(s.model.index[id], center, s.rng)
		node.Position = s.sim.Clamp(p, s.config.Size())
		node.Velocity = seedVelocityFor(s.rng)
	}
}

func (s *Session) startRun(budget int) error {
	s.iteration = 0
	s.calmSteps = 0
	s.budget = budget
	s.converged = false
	return s.transition(PhaseSimulating)
}

func (s *Session) status() RunStatus {
	return RunStatus{
		Iteration:     s.iteration,
		KineticEnergy: s.energy,
		Stopped:       s.phase == PhaseConverged,
		Converged:     s.converged,
	}
}

// Step performs one simulation step. It fails while a position tween owns
// the nodes; once the run has stopped it returns the final status.
func (s *Session) Step() (RunStatus, error) {
	switch s.phase {
	case PhaseAnimating:
		return s.status(), ErrPositionsAnimating
	case PhaseIdle, PhaseSeeding:
		return s.status(), ErrEmptyGraph
	case PhaseConverged:
		return s.status(), nil
	}

	var focus *Node
	if s.focusID != "" {
		focus, _ = s.model.Node(s.focusID)
	}

	start := time.Now()
	res := s.sim.Step(s.model, focus, s.config.Size())
	s.iteration++
	s.energy = res.KineticEnergy
	s.recorder.RecordStep(time.Since(start), res.KineticEnergy)

	if res.KineticEnergy < s.config.Force.ConvergenceThreshold {
		s.calmSteps++
	} else {
		s.calmSteps = 0
	}

	var err error
	switch {
	case s.calmSteps >= s.config.ConvergenceWindow:
		err = s.stop(true)
	case s.iteration >= s.budget:
		err = s.stop(false)
	}
	return s.status(), err
}

func (s *Session) stop(converged bool) error {
	s.converged = converged
	if err := s.transition(PhaseConverged); err != nil {
		return err
	}
	s.recorder.RecordRun(converged, s.iteration, s.energy)

	fields := []logging.Field{logging.Iteration(s.iteration), logging.Energy(s.energy)}
	if converged {
		s.logger.Info("Layout converged", fields...)
	} else {
		s.logger.Info("Layout stopped at iteration cap", fields...)
	}
	s.sink.Publish(TopicLayoutConverged, LayoutConverged{
		SessionID:     s.id,
		Iterations:    s.iteration,
		KineticEnergy: s.energy,
		Converged:     converged,
	})
	return nil
}

// Run steps until the run stops or maxSteps steps have been taken. A
// maxSteps of zero or less means no limit beyond the iteration budget.
func (s *Session) Run(maxSteps int) (RunStatus, error) {
	st := s.status()
	for i := 0; maxSteps <= 0 || i < maxSteps; i++ {
		var err error
		st, err = s.Step()
		if err != nil || st.Stopped {
			return st, err
		}
	}
	return st, nil
}

// Tick advances the session by one host frame: the camera tween, then
// either the position tween or exactly one simulation step.
func (s *Session) Tick(dt time.Duration) Phase {
	if cam, active, _ := s.cameraAnim.Advance(dt); active {
		s.camera = cam
	}

	switch s.phase {
	case PhaseAnimating:
		s.advancePositions(dt)
	case PhaseSimulating:
		_, _ = s.Step()
	}
	return s.phase
}

// PinNode fixes a node at p, clamped into bounds, as when the host drags it
func (s *Session) PinNode(id string, p Position) error {
	node, ok := s.model.Node(id)
	if !ok {
		return fmt.Errorf("%w: %s", ErrNodeNotFound, id)
	}
	if !finite(p) {
		return fmt.Errorf("pin position for %s must be finite", id)
	}
	p = s.sim.Clamp(p, s.config.Size())
	node.Pinned = &p
	node.dataPinned = false
	node.Position = p
	node.Velocity = Position{}
	return s.reheat()
}

// UnpinNode releases a pinned node back into the simulation
func (s *Session) UnpinNode(id string) error {
	node, ok := s.model.Node(id)
	if !ok {
		return fmt.Errorf("%w: %s", ErrNodeNotFound, id)
	}
	if node.Pinned == nil {
		return nil
	}
	node.Pinned = nil
	node.dataPinned = false
	return s.reheat()
}

// reheat restarts a settled layout with the reheat budget
func (s *Session) reheat() error {
	if s.phase != PhaseConverged {
		return nil
	}
	return s.startRun(s.config.ReheatIterations)
}

// Resize changes the simulation bounds and pulls every node back inside
func (s *Session) Resize(width, height float64) error {
	if !(width > 0) || !(height > 0) {
		return fmt.Errorf("canvas size must be positive, got %vx%v", width, height)
	}
	resizeViewport := s.viewport == s.config.Size()
	s.config.Width, s.config.Height = width, height
	if resizeViewport {
		s.viewport = s.config.Size()
	}

	for _, node := range s.model.Nodes() {
		node.Position = s.sim.Clamp(node.Position, s.config.Size())
		if node.Pinned != nil {
			pin := s.sim.Clamp(*node.Pinned, s.config.Size())
			node.Pinned = &pin
		}
	}
	s.logger.Debug("Canvas resized", logging.Float64("width", width), logging.Float64("height", height))
	return s.reheat()
}

// ActivateNode publishes NodeActivated for id
func (s *Session) ActivateNode(id string) error {
	if _, ok := s.model.Node(id); !ok {
		return fmt.Errorf("%w: %s", ErrNodeNotFound, id)
	}
	s.sink.Publish(TopicNodeActivated, NodeActivated{SessionID: s.id, NodeID: id})
	s.logger.Debug("Node activated", logging.NodeID(id))
	return nil
}

// ActivateEdge publishes EdgeActivated for id
func (s *Session) ActivateEdge(id string) error {
	if _, ok := s.model.Edge(id); !ok {
		return fmt.Errorf("%w: %s", ErrEdgeNotFound, id)
	}
	s.sink.Publish(TopicEdgeActivated, EdgeActivated{SessionID: s.id, EdgeID: id})
	s.logger.Debug("Edge activated", logging.EdgeID(id))
	return nil
}

// Positions returns a fresh map of node positions
func (s *Session) Positions() map[string]Position {
	out := make(map[string]Position, s.model.NodeCount())
	for _, node := range s.model.Nodes() {
		out[node.ID] = node.Position
	}
	return out
}

// State returns a copy of the layout state
func (s *Session) State() LayoutState {
	nodes := make([]NodeState, 0, s.model.NodeCount())
	for _, node := range s.model.Nodes() {
		nodes = append(nodes, nodeState(node))
	}
	edges := make([]EdgeState, 0, len(s.model.Edges()))
	for _, e := range s.model.Edges() {
		edges = append(edges, EdgeState{
			ID:       e.ID,
			SourceID: e.SourceID,
			TargetID: e.TargetID,
			Strength: e.Strength,
		})
	}
	return LayoutState{
		SessionID:     s.id,
		Phase:         s.phase,
		Iteration:     s.iteration,
		KineticEnergy: s.energy,
		Converged:     s.converged,
		FocusNodeID:   s.focusID,
		Camera:        s.camera,
		Nodes:         nodes,
		Edges:         edges,
	}
}

func nodeState(node *Node) NodeState {
	return NodeState{
		ID:       node.ID,
		Label:    node.Label,
		Position: node.Position,
		Velocity: node.Velocity,
		Pinned:   node.IsPinned(),
	}
}
