package viewport

import (
	"math"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const geomEps = 1e-9

func TestFitToViewFramesPoints(t *testing.T) {
	points := []Point{{X: 100, Y: 100}, {X: 300, Y: 200}}
	vp := Size{Width: 800, Height: 600}

	cam, ok := FitToView(points, vp, 40, 2)
	require.True(t, ok)

	// width-limited: (800-80)/200 = 3.6, height: (600-80)/100 = 5.2, capped at 2
	assert.InDelta(t, 2.0, cam.Scale, geomEps)
	c := cam.Apply(Point{X: 200, Y: 150})
	assert.InDelta(t, 400, c.X, geomEps)
	assert.InDelta(t, 300, c.Y, geomEps)
}

func TestFitToViewUsesTighterAxis(t *testing.T) {
	points := []Point{{X: 0, Y: 0}, {X: 1000, Y: 100}}
	cam, ok := FitToView(points, Size{Width: 500, Height: 500}, 50, 2)
	require.True(t, ok)
	assert.InDelta(t, 0.4, cam.Scale, geomEps)
}

func TestFitToViewDegenerate(t *testing.T) {
	vp := Size{Width: 800, Height: 600}
	tests := []struct {
		name   string
		points []Point
		vp     Size
	}{
		{"no points", nil, vp},
		{"single point", []Point{{X: 3, Y: 4}}, vp},
		{"vertical line", []Point{{X: 5, Y: 0}, {X: 5, Y: 10}}, vp},
		{"horizontal line", []Point{{X: 0, Y: 7}, {X: 10, Y: 7}}, vp},
		{"padding eats viewport", []Point{{X: 0, Y: 0}, {X: 1, Y: 1}}, Size{Width: 60, Height: 60}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ok := FitToView(tt.points, tt.vp, 40, 2)
			assert.False(t, ok)
		})
	}
}

func TestCenterOnExactness(t *testing.T) {
	vp := Size{Width: 1024, Height: 768}
	cam := Camera{TranslateX: 13, TranslateY: -40, Scale: 0.8}
	node := Point{X: 371.25, Y: 92.5}

	centered := cam.CenterOn(node, vp)
	assert.InDelta(t, 0.96, centered.Scale, geomEps)

	got := centered.Apply(node)
	assert.InDelta(t, vp.Width/2, got.X, geomEps)
	assert.InDelta(t, vp.Height/2, got.Y, geomEps)
}

func TestCenterOnCapsScale(t *testing.T) {
	cam := Camera{Scale: 1.4}
	centered := cam.CenterOn(Point{X: 10, Y: 10}, Size{Width: 100, Height: 100})
	assert.Equal(t, DefaultFocusScale, centered.Scale)
}

func TestZoomAtCursorKeepsPointStationary(t *testing.T) {
	cam := Camera{TranslateX: 20, TranslateY: 30, Scale: 1}
	cursor := Point{X: 250, Y: 175}
	before := cam.Invert(cursor)

	zoomed := cam.ZoomAtCursor(cursor, 1.5, DefaultScaleLimits())
	assert.InDelta(t, 1.5, zoomed.Scale, geomEps)

	after := zoomed.Apply(before)
	assert.InDelta(t, cursor.X, after.X, geomEps)
	assert.InDelta(t, cursor.Y, after.Y, geomEps)
}

func TestZoomAtCursorClamps(t *testing.T) {
	cam := Identity()
	limits := ScaleLimits{Min: 0.5, Max: 3}

	assert.Equal(t, 3.0, cam.ZoomAtCursor(Point{}, 10, limits).Scale)
	assert.Equal(t, 0.5, cam.ZoomAtCursor(Point{}, 0.01, limits).Scale)
	assert.Equal(t, cam, cam.ZoomAtCursor(Point{}, 0, limits))
	assert.Equal(t, cam, cam.ZoomAtCursor(Point{}, math.NaN(), limits))
}

func TestPanAndInvert(t *testing.T) {
	cam := Identity().Pan(15, -5).Pan(5, 5)
	assert.Equal(t, Camera{TranslateX: 20, TranslateY: 0, Scale: 1}, cam)

	p := Point{X: 42, Y: -7}
	back := cam.Invert(cam.Apply(p))
	assert.InDelta(t, p.X, back.X, geomEps)
	assert.InDelta(t, p.Y, back.Y, geomEps)
}

func TestLerpCamera(t *testing.T) {
	from := Camera{TranslateX: 0, TranslateY: 10, Scale: 1}
	to := Camera{TranslateX: 100, TranslateY: -10, Scale: 2}
	mid := LerpCamera(from, to, 0.5)
	assert.Equal(t, Camera{TranslateX: 50, TranslateY: 0, Scale: 1.5}, mid)
	assert.Equal(t, from, LerpCamera(from, to, 0))
}

func TestFitToViewContainmentProperty(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	const padding = 30.0
	const maxScale = 2.0

	properties.Property("fitted points stay inside padded viewport", prop.ForAll(
		func(xs, ys []float64, w, h float64) bool {
			n := len(xs)
			if len(ys) < n {
				n = len(ys)
			}
			points := make([]Point, n)
			for i := 0; i < n; i++ {
				points[i] = Point{X: xs[i], Y: ys[i]}
			}
			vp := Size{Width: w, Height: h}

			cam, ok := FitToView(points, vp, padding, maxScale)
			if !ok {
				box, has := Bounds(points)
				// only degenerate inputs may be refused
				return !has || box.Width() == 0 || box.Height() == 0
			}
			if cam.Scale > maxScale {
				return false
			}
			const tol = 1e-6
			for _, p := range points {
				s := cam.Apply(p)
				if s.X < padding-tol || s.X > w-padding+tol {
					return false
				}
				if s.Y < padding-tol || s.Y > h-padding+tol {
					return false
				}
			}
			return true
		},
		gen.SliceOfN(12, gen.Float64Range(-5000, 5000)),
		gen.SliceOfN(12, gen.Float64Range(-5000, 5000)),
		gen.Float64Range(100, 2000),
		gen.Float64Range(100, 2000),
	))

	properties.TestingRun(t)
}
