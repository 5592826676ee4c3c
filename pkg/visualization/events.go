package visualization

import "time"

// Event topics
const (
	TopicNodeActivated   = "node.activated"
	TopicEdgeActivated   = "edge.activated"
	TopicLayoutConverged = "layout.converged"
)

// NodeActivated is published when the host activates a node
type NodeActivated struct {
	SessionID string `json:"session_id"`
	NodeID    string `json:"node_id"`
}

// EdgeActivated is published when the host activates an edge
type EdgeActivated struct {
	SessionID string `json:"session_id"`
	EdgeID    string `json:"edge_id"`
}

// LayoutConverged is published whenever a run stops. Converged is false
// when the iteration budget ran out first.
type LayoutConverged struct {
	SessionID     string  `json:"session_id"`
	Iterations    int     `json:"iterations"`
	KineticEnergy float64 `json:"kinetic_energy"`
	Converged     bool    `json:"converged"`
}

// EventSink receives session events
type EventSink interface {
	Publish(topic string, message any)
}

// Recorder receives layout measurements
type Recorder interface {
	RecordStep(duration time.Duration, kineticEnergy float64)
	RecordRun(converged bool, iterations int, kineticEnergy float64)
	RecordLoad(fresh bool, nodes, edges, droppedEdges int)
	RecordAnimation(kind string, superseded bool)
	RecordPhase(phase string)
}

type nopSink struct{}

func (nopSink) Publish(string, any) {}

type nopRecorder struct{}

func (nopRecorder) RecordStep(time.Duration, float64) {}
func (nopRecorder) RecordRun(bool, int, float64)      {}
func (nopRecorder) RecordLoad(bool, int, int, int)    {}
func (nopRecorder) RecordAnimation(string, bool)      {}
func (nopRecorder) RecordPhase(string)                {}
