package viewport

import "math"

// Point is a 2D coordinate in either world or screen space
type Point struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

// Size is the extent of the screen area the camera renders into
type Size struct {
	Width  float64 `json:"width" yaml:"width"`
	Height float64 `json:"height" yaml:"height"`
}

// Center returns the midpoint of the area
func (s Size) Center() Point {
	return Point{X: s.Width / 2, Y: s.Height / 2}
}

// ScaleLimits bounds interactive zoom
type ScaleLimits struct {
	Min float64 `json:"min" yaml:"min"`
	Max float64 `json:"max" yaml:"max"`
}

// Default camera constants
const (
	DefaultMinScale     = 0.1
	DefaultMaxScale     = 4.0
	DefaultFitMaxScale  = 2.0
	DefaultFocusScale   = 1.5
	DefaultFocusZoomMul = 1.2
)

// DefaultScaleLimits returns the interactive zoom range
func DefaultScaleLimits() ScaleLimits {
	return ScaleLimits{Min: DefaultMinScale, Max: DefaultMaxScale}
}

// Clamp restricts scale into the limits. Inverted limits are treated as
// unbounded on the broken side.
func (l ScaleLimits) Clamp(scale float64) float64 {
	if l.Min > 0 && scale < l.Min {
		scale = l.Min
	}
	if l.Max > 0 && l.Max >= l.Min && scale > l.Max {
		scale = l.Max
	}
	return scale
}

// Camera is the pan/zoom transform: screen = world*Scale + Translate
type Camera struct {
	TranslateX float64 `json:"translate_x" yaml:"translate_x"`
	TranslateY float64 `json:"translate_y" yaml:"translate_y"`
	Scale      float64 `json:"scale" yaml:"scale"`
}

// Identity returns the camera that maps world to screen unchanged
func Identity() Camera {
	return Camera{Scale: 1}
}

// Apply maps a world point to screen space
func (c Camera) Apply(p Point) Point {
	return Point{X: p.X*c.Scale + c.TranslateX, Y: p.Y*c.Scale + c.TranslateY}
}

// Invert maps a screen point back to world space. A zero-scale camera
// returns the point unchanged.
func (c Camera) Invert(p Point) Point {
	if c.Scale == 0 {
		return p
	}
	return Point{X: (p.X - c.TranslateX) / c.Scale, Y: (p.Y - c.TranslateY) / c.Scale}
}

// Pan shifts the translation by a screen-space delta
func (c Camera) Pan(dx, dy float64) Camera {
	c.TranslateX += dx
	c.TranslateY += dy
	return c
}

// CenterOn zooms in slightly (capped at DefaultFocusScale) and places the
// world point at the center of vp.
func (c Camera) CenterOn(p Point, vp Size) Camera {
	scale := math.Min(DefaultFocusScale, c.Scale*DefaultFocusZoomMul)
	if scale <= 0 {
		scale = DefaultFocusScale
	}
	center := vp.Center()
	return Camera{
		TranslateX: center.X - p.X*scale,
		TranslateY: center.Y - p.Y*scale,
		Scale:      scale,
	}
}

// ZoomAtCursor multiplies the scale by factor, clamped into limits, while
// keeping the world point under cursor stationary on screen.
func (c Camera) ZoomAtCursor(cursor Point, factor float64, limits ScaleLimits) Camera {
	if factor <= 0 || c.Scale <= 0 || math.IsNaN(factor) || math.IsInf(factor, 0) {
		return c
	}
	newScale := limits.Clamp(c.Scale * factor)
	ratio := newScale / c.Scale
	return Camera{
		TranslateX: cursor.X - (cursor.X-c.TranslateX)*ratio,
		TranslateY: cursor.Y - (cursor.Y-c.TranslateY)*ratio,
		Scale:      newScale,
	}
}

// LerpCamera interpolates each component linearly. It is the interpolator
// used for camera tweens.
func LerpCamera(from, to Camera, t float64) Camera {
	return Camera{
		TranslateX: from.TranslateX + (to.TranslateX-from.TranslateX)*t,
		TranslateY: from.TranslateY + (to.TranslateY-from.TranslateY)*t,
		Scale:      from.Scale + (to.Scale-from.Scale)*t,
	}
}
