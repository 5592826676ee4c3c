package viewport

import "math"

// Rect is an axis-aligned bounding box in world space
type Rect struct {
	MinX, MinY, MaxX, MaxY float64
}

// Width returns the horizontal extent
func (r Rect) Width() float64 { return r.MaxX - r.MinX }

// Height returns the vertical extent
func (r Rect) Height() float64 { return r.MaxY - r.MinY }

// Center returns the midpoint of the box
func (r Rect) Center() Point {
	return Point{X: (r.MinX + r.MaxX) / 2, Y: (r.MinY + r.MaxY) / 2}
}

// Bounds computes the bounding box of points. ok is false for an empty set.
func Bounds(points []Point) (r Rect, ok bool) {
	if len(points) == 0 {
		return Rect{}, false
	}
	r = Rect{
		MinX: math.MaxFloat64, MinY: math.MaxFloat64,
		MaxX: -math.MaxFloat64, MaxY: -math.MaxFloat64,
	}
	for _, p := range points {
		r.MinX = math.Min(r.MinX, p.X)
		r.MaxX = math.Max(r.MaxX, p.X)
		r.MinY = math.Min(r.MinY, p.Y)
		r.MaxY = math.Max(r.MaxY, p.Y)
	}
	return r, true
}

// FitToView returns the camera that frames every point inside vp with the
// given screen padding, never zooming past maxScale. ok is false, and the
// returned camera is the zero value, when there is nothing sensible to fit:
// no points, a zero-width or zero-height bounding box, or a viewport too
// small for its padding.
func FitToView(points []Point, vp Size, padding, maxScale float64) (Camera, bool) {
	box, ok := Bounds(points)
	if !ok {
		return Camera{}, false
	}
	bw, bh := box.Width(), box.Height()
	if bw <= 0 || bh <= 0 {
		return Camera{}, false
	}
	availW := vp.Width - 2*padding
	availH := vp.Height - 2*padding
	if availW <= 0 || availH <= 0 {
		return Camera{}, false
	}
	if maxScale <= 0 {
		maxScale = DefaultFitMaxScale
	}

	scale := math.Min(math.Min(availW/bw, availH/bh), maxScale)
	vc := vp.Center()
	bc := box.Center()
	return Camera{
		TranslateX: vc.X - bc.X*scale,
		TranslateY: vc.Y - bc.Y*scale,
		Scale:      scale,
	}, true
}
