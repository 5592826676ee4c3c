// Package viewport holds the camera geometry used to present a layout.
//
// A [Camera] maps world coordinates (simulation space) to screen
// coordinates as screen = world*Scale + Translate. All operations are pure:
// they take a camera and return a new one, leaving ownership of the current
// camera to the caller.
//
//	cam, ok := viewport.FitToView(points, viewport.Size{Width: 800, Height: 600}, 40, 2)
//	cam = cam.ZoomAtCursor(viewport.Point{X: 120, Y: 80}, 1.1, viewport.DefaultScaleLimits())
//	cam = cam.Pan(10, -4)
//
// Degenerate inputs (no points, zero-area bounds, non-positive factors)
// leave the camera unchanged instead of failing.
package viewport
