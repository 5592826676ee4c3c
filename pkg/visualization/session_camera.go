package visualization

import (
	"fmt"

	"github.com/dd0wney/cluso-forcegraph/pkg/animation"
	"github.com/dd0wney/cluso-forcegraph/pkg/logging"
	"github.com/dd0wney/cluso-forcegraph/pkg/viewport"
)

// Camera returns the current camera
func (s *Session) Camera() viewport.Camera { return s.camera }

// Viewport returns the screen area the camera renders into
func (s *Session) Viewport() viewport.Size { return s.viewport }

// CameraAnimating reports whether a camera tween is in flight
func (s *Session) CameraAnimating() bool { return s.cameraAnim.Active() }

// SetViewport sets the screen area. It defaults to the canvas size.
func (s *Session) SetViewport(size viewport.Size) error {
	if !(size.Width > 0) || !(size.Height > 0) {
		return fmt.Errorf("viewport size must be positive, got %vx%v", size.Width, size.Height)
	}
	s.viewport = size
	return nil
}

// setCamera moves the camera to target, through a tween when animate is
// set and a camera duration is configured
func (s *Session) setCamera(target viewport.Camera, animate bool) {
	if !animate || s.config.CameraDuration <= 0 {
		s.cameraAnim.Cancel()
		s.camera = target
		return
	}
	tw := animation.NewTween(s.camera, target, s.config.CameraDuration, animation.CubicInOut, viewport.LerpCamera)
	replaced := s.cameraAnim.Start(tw)
	s.recorder.RecordAnimation(AnimationCamera, replaced)
	if replaced {
		s.logger.Debug("Camera animation superseded")
	}
}

// FitToView frames every node in the viewport. It returns false, leaving
// the camera alone, when there are no nodes or their box has no area.
func (s *Session) FitToView(animate bool) bool {
	points := make([]viewport.Point, 0, s.model.NodeCount())
	for _, node := range s.model.Nodes() {
		points = append(points, node.Position)
	}
	cam, ok := viewport.FitToView(points, s.viewport, s.config.FitPadding, s.config.FitMaxScale)
	if !ok {
		s.logger.Debug("Fit to view skipped", logging.Count(len(points)))
		return false
	}
	s.setCamera(cam, animate)
	return true
}

// CenterOnNode zooms in slightly and centers the node on screen
func (s *Session) CenterOnNode(id string, animate bool) error {
	node, ok := s.model.Node(id)
	if !ok {
		return fmt.Errorf("%w: %s", ErrNodeNotFound, id)
	}
	s.setCamera(s.camera.CenterOn(node.Position, s.viewport), animate)
	return nil
}

// ZoomAtCursor zooms by factor keeping the point under cursor fixed. Any
// camera tween is cancelled so the gesture wins.
func (s *Session) ZoomAtCursor(cursor viewport.Point, factor float64) {
	s.cameraAnim.Cancel()
	s.camera = s.camera.ZoomAtCursor(cursor, factor, s.config.ScaleLimits)
}

// Pan shifts the camera by a screen-space delta
func (s *Session) Pan(dx, dy float64) {
	s.cameraAnim.Cancel()
	s.camera = s.camera.Pan(dx, dy)
}

// ResetCamera returns to the identity camera
func (s *Session) ResetCamera() {
	s.cameraAnim.Cancel()
	s.camera = viewport.Identity()
}

// ScreenToWorld maps a screen point through the current camera
func (s *Session) ScreenToWorld(p viewport.Point) viewport.Point {
	return s.camera.Invert(p)
}
