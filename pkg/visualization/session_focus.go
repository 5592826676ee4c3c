package visualization

import (
	"fmt"
	"time"

	"github.com/dd0wney/cluso-forcegraph/pkg/animation"
	"github.com/dd0wney/cluso-forcegraph/pkg/logging"
)

// lerpPositions interpolates every node present in to. Nodes with no start
// position jump straight to their target.
func lerpPositions(from, to map[string]Position, t float64) map[string]Position {
	out := make(map[string]Position, len(to))
	for id, target := range to {
		start, ok := from[id]
		if !ok {
			out[id] = target
			continue
		}
		out[id] = Position{
			X: animation.Lerp(start.X, target.X, t),
			Y: animation.Lerp(start.Y, target.Y, t),
		}
	}
	return out
}

// FocusTargets computes where every free node goes when id becomes the
// focus: the focus node to the canvas center, the rest around it by
// similarity. Pinned nodes are left out.
func (s *Session) FocusTargets(id string) (map[string]Position, error) {
	focus, ok := s.model.Node(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNodeNotFound, id)
	}
	size := s.config.Size()
	center := size.Center()

	targets := make(map[string]Position, s.model.NodeCount())
	for _, node := range s.model.Nodes() {
		if node.IsPinned() {
			continue
		}
		targets[node.ID] = s.sim.Clamp(s.sim.FocusTarget(s.model, node, focus, center), size)
	}
	return targets, nil
}

// SetFocusNode tweens every node from its current position to its focus
// target, then resumes simulation with id as the focus. The camera is
// centered on the focus node's target at the same time. Calling it again
// while a tween is in flight replaces that tween.
func (s *Session) SetFocusNode(id string) error {
	if s.model.NodeCount() == 0 {
		return ErrEmptyGraph
	}
	targets, err := s.FocusTargets(id)
	if err != nil {
		return err
	}

	from := make(map[string]Position, len(targets))
	for nid := range targets {
		node, _ := s.model.Node(nid)
		from[nid] = node.Position
	}

	if err := s.transition(PhaseAnimating); err != nil {
		return err
	}
	tw := animation.NewTween(from, targets, s.config.FocusDuration, animation.CubicInOut, lerpPositions)
	s.startPositionTween(tw)
	s.pendingFocus = id

	focus, _ := s.model.Node(id)
	anchor, ok := targets[id]
	if !ok {
		anchor = focus.Position
	}
	s.setCamera(s.camera.CenterOn(anchor, s.viewport), true)

	s.logger.Info("Focus node set", logging.NodeID(id), logging.Duration("duration", s.config.FocusDuration))
	return nil
}

func (s *Session) startPositionTween(tw *animation.Tween[map[string]Position]) {
	replaced := s.positions.Start(tw)
	s.recorder.RecordAnimation(AnimationPositions, replaced)
	if replaced {
		s.logger.Debug("Position animation superseded")
	}
}

// ClearFocus drops the focus node and resumes plain centering. An
// in-flight focus tween is cancelled where it stands.
func (s *Session) ClearFocus() error {
	if s.phase == PhaseAnimating {
		s.positions.Cancel()
		s.pendingFocus = ""
		s.focusID = ""
		s.logger.Info("Focus cleared during animation")
		return s.startRun(s.config.Force.MaxIterations)
	}
	if s.focusID == "" {
		return nil
	}
	s.focusID = ""
	s.logger.Info("Focus cleared")
	if s.phase == PhaseConverged {
		return s.startRun(s.config.Force.MaxIterations)
	}
	return nil
}

// advancePositions applies the position tween for one tick. Nodes are
// held still while it runs; on completion the pending focus takes effect
// and a new run starts from the tweened shape.
func (s *Session) advancePositions(dt time.Duration) {
	value, active, finished := s.positions.Advance(dt)
	if !active {
		_ = s.startRun(s.config.Force.MaxIterations)
		return
	}
	for id, p := range value {
		node, ok := s.model.Node(id)
		if !ok || node.IsPinned() {
			continue
		}
		node.Position = p
		node.Velocity = Position{}
	}
	if !finished {
		return
	}

	s.focusID = s.pendingFocus
	s.pendingFocus = ""
	s.logger.Debug("Focus animation finished", logging.NodeID(s.focusID))
	_ = s.startRun(s.config.Force.MaxIterations)
}

// AnimationProgress returns the position tween's progress, or 1 when none is running
func (s *Session) AnimationProgress() float64 {
	tw := s.positions.Current()
	if tw == nil {
		return 1
	}
	return tw.Progress()
}
