package visualization

import (
	"errors"
	"time"

	"github.com/dd0wney/cluso-forcegraph/pkg/logging"
	"github.com/dd0wney/cluso-forcegraph/pkg/snapshot"
)

// Snapshot captures positions, velocities, pins, camera and focus
func (s *Session) Snapshot() *snapshot.Snapshot {
	nodes := make([]snapshot.NodeState, 0, s.model.NodeCount())
	for _, node := range s.model.Nodes() {
		nodes = append(nodes, snapshot.NodeState{
			ID:     node.ID,
			X:      node.Position.X,
			Y:      node.Position.Y,
			VX:     node.Velocity.X,
			VY:     node.Velocity.Y,
			Pinned: node.IsPinned(),
		})
	}
	return &snapshot.Snapshot{
		Version:       snapshot.Version,
		SessionID:     s.id,
		TakenAt:       time.Now().UTC(),
		Width:         s.config.Width,
		Height:        s.config.Height,
		Camera:        s.camera,
		FocusNodeID:   s.focusID,
		Iteration:     s.iteration,
		KineticEnergy: s.energy,
		Converged:     s.converged,
		Nodes:         nodes,
	}
}

// Restore applies a snapshot. Nodes the model does not hold yet are added
// as bare records so that the next Load of the same ids is an update and
// keeps the restored positions. The session ends up settled.
func (s *Session) Restore(snap *snapshot.Snapshot) error {
	if snap == nil {
		return errors.New("snapshot cannot be nil")
	}
	if s.phase == PhaseAnimating {
		s.positions.Cancel()
		s.pendingFocus = ""
	}
	if snap.Width > 0 && snap.Height > 0 {
		s.config.Width, s.config.Height = snap.Width, snap.Height
	}

	size := s.config.Size()
	for _, ns := range snap.Nodes {
		node, ok := s.model.Node(ns.ID)
		if !ok {
			node = s.model.addPlaceholder(ns.ID)
		}
		p := Position{X: ns.X, Y: ns.Y}
		if !finite(p) {
			continue
		}
		p = s.sim.Clamp(p, size)
		node.Position = p
		node.Velocity = Position{X: ns.VX, Y: ns.VY}
		if !finite(node.Velocity) {
			node.Velocity = Position{}
		}
		node.Pinned = nil
		node.dataPinned = false
		if ns.Pinned {
			pin := p
			node.Pinned = &pin
		}
	}
	s.model.metrics.Rebuild(s.model.nodes, s.model.edges)

	if snap.Camera.Scale > 0 {
		s.cameraAnim.Cancel()
		s.camera = snap.Camera
	}
	s.focusID = ""
	if _, ok := s.model.Node(snap.FocusNodeID); ok {
		s.focusID = snap.FocusNodeID
	}
	s.iteration = snap.Iteration
	s.energy = snap.KineticEnergy
	s.converged = snap.Converged

	s.logger.Info("Snapshot restored",
		logging.Count(len(snap.Nodes)),
		logging.String("snapshot_session", snap.SessionID))

	if s.model.NodeCount() == 0 {
		return s.transition(PhaseIdle)
	}
	return s.transition(PhaseConverged)
}
