package visualization

import (
	"math"

	"github.com/dd0wney/cluso-forcegraph/pkg/viewport"
)

// goldenAngle is 2*pi/phi, the angular step of golden-angle seeding. It
// also picks the push direction for exactly coincident pairs.
var goldenAngle = 2 * math.Pi / math.Phi

// focusRadius places a node around the focus: more similar is closer
const (
	focusBaseRadius   = 100.0
	focusSpreadRadius = 180.0
)

// StepResult reports the outcome of one simulation step
type StepResult struct {
	KineticEnergy float64
}

// ForceSimulator computes one step of the layout
type ForceSimulator struct {
	config ForceConfig
	fx, fy []float64
}

// NewForceSimulator creates a simulator; zero parameters take defaults
func NewForceSimulator(config ForceConfig) *ForceSimulator {
	return &ForceSimulator{config: config.WithDefaults()}
}

// Config returns the parameters in use
func (fs *ForceSimulator) Config() ForceConfig {
	return fs.config
}

// RepulsionForce is the magnitude pushing two nodes apart at distance d
func (fs *ForceSimulator) RepulsionForce(d, similarity float64) float64 {
	return fs.config.RepulsionStrength * (1 + 0.5*similarity) / (d*d + 10)
}

// FocusTarget returns where node settles relative to focus: the canvas
// center pushed out along the placement angle, by a radius that grows as
// similarity falls.
func (fs *ForceSimulator) FocusTarget(model *GraphModel, node, focus *Node, center Position) Position {
	if node == focus {
		return center
	}
	dm := model.Metrics()
	sim := dm.Similarity(node, focus)
	angle := dm.PlacementAngle(node, focus)
	r := focusBaseRadius + (1-sim)*focusSpreadRadius
	return Position{
		X: center.X + r*math.Cos(angle),
		Y: center.Y + r*math.Sin(angle),
	}
}

// Clamp keeps p inside the bounds minus padding. A canvas smaller than
// twice the padding collapses to its center line.
func (fs *ForceSimulator) Clamp(p Position, bounds viewport.Size) Position {
	p.X, _ = clampAxis(p.X, fs.config.Padding, bounds.Width)
	p.Y, _ = clampAxis(p.Y, fs.config.Padding, bounds.Height)
	return p
}

func clampAxis(v, pad, extent float64) (float64, bool) {
	lo, hi := pad, extent-pad
	if hi < lo {
		lo, hi = extent/2, extent/2
	}
	switch {
	case v < lo:
		return lo, true
	case v > hi:
		return hi, true
	default:
		return v, false
	}
}

// Step applies repulsion, attraction and centering (or focus) forces to
// every node, integrates velocities and clamps positions into bounds.
// focus may be nil.
func (fs *ForceSimulator) Step(model *GraphModel, focus *Node, bounds viewport.Size) StepResult {
	nodes := model.Nodes()
	n := len(nodes)
	if n == 0 {
		return StepResult{}
	}
	fs.resetForces(n)

	fs.applyRepulsion(model)
	fs.applyAttraction(model)
	fs.applyCentering(model, focus, bounds.Center())

	return StepResult{KineticEnergy: fs.integrate(nodes, bounds)}
}

func (fs *ForceSimulator) resetForces(n int) {
	if cap(fs.fx) < n {
		fs.fx = make([]float64, n)
		fs.fy = make([]float64, n)
		return
	}
	fs.fx = fs.fx[:n]
	fs.fy = fs.fy[:n]
	for i := range fs.fx {
		fs.fx[i] = 0
		fs.fy[i] = 0
	}
}

// applyRepulsion pushes every pair within MaxDistance apart
func (fs *ForceSimulator) applyRepulsion(model *GraphModel) {
	nodes := model.Nodes()
	dm := model.Metrics()
	eps := fs.config.Epsilon

	for i := 0; i < len(nodes); i++ {
		a := nodes[i]
		for j := i + 1; j < len(nodes); j++ {
			b := nodes[j]
			dx := a.Position.X - b.Position.X
			dy := a.Position.Y - b.Position.Y
			raw := math.Hypot(dx, dy)
			if raw > fs.config.MaxDistance {
				continue
			}

			var ux, uy float64
			if raw < eps {
				// Coincident: push along a direction unique to the pair
				angle := goldenAngle * float64(i+j+1)
				ux, uy = math.Cos(angle), math.Sin(angle)
				raw = 0
			} else {
				ux, uy = dx/raw, dy/raw
			}

			d := raw + eps
			f := fs.RepulsionForce(d, dm.Similarity(a, b))
			fs.fx[i] += ux * f
			fs.fy[i] += uy * f
			fs.fx[j] -= ux * f
			fs.fy[j] -= uy * f
		}
	}
}

// applyAttraction pulls edge endpoints toward their ideal separation
func (fs *ForceSimulator) applyAttraction(model *GraphModel) {
	nodes := model.Nodes()
	dm := model.Metrics()

	for _, e := range model.Edges() {
		a, b := nodes[e.source], nodes[e.target]
		dx := b.Position.X - a.Position.X
		dy := b.Position.Y - a.Position.Y
		dist := math.Hypot(dx, dy)
		if dist <= fs.config.MinDistance {
			continue
		}

		ideal := fs.config.MinDistance + e.Strength*50
		f := fs.config.AttractionStrength * e.Strength * dm.EdgeWeight(e) * (dist - ideal) / dist
		fs.fx[e.source] += dx * f
		fs.fy[e.source] += dy * f
		fs.fx[e.target] -= dx * f
		fs.fy[e.target] -= dy * f
	}
}

// applyCentering pulls toward the canvas center, or into the focus shape
func (fs *ForceSimulator) applyCentering(model *GraphModel, focus *Node, center Position) {
	for i, node := range model.Nodes() {
		target := center
		k := fs.config.CenterForce
		switch {
		case focus == nil:
		case node == focus:
			k = 3 * fs.config.FocusForce
		default:
			target = fs.FocusTarget(model, node, focus, center)
			k = 1.5 * fs.config.FocusForce
		}
		fs.fx[i] += (target.X - node.Position.X) * k
		fs.fy[i] += (target.Y - node.Position.Y) * k
	}
}

// integrate advances velocities and positions and returns kinetic energy
func (fs *ForceSimulator) integrate(nodes []*Node, bounds viewport.Size) float64 {
	cfg := fs.config
	var energy float64

	for i, node := range nodes {
		if node.Pinned != nil {
			node.Position = *node.Pinned
			node.Velocity = Position{}
			continue
		}

		vx := (node.Velocity.X + fs.fx[i]) * cfg.Damping
		vy := (node.Velocity.Y + fs.fy[i]) * cfg.Damping
		if !finite(Position{X: vx, Y: vy}) {
			vx, vy = 0, 0
		}

		speed := math.Hypot(vx, vy)
		if speed > cfg.MaxVelocity {
			vx *= cfg.MaxVelocity / speed
			vy *= cfg.MaxVelocity / speed
			speed = cfg.MaxVelocity
		}
		if speed > 0 {
			reduced := math.Max(0, speed-cfg.VelocityDecay)
			vx *= reduced / speed
			vy *= reduced / speed
		}

		x, hitX := clampAxis(node.Position.X+vx, cfg.Padding, bounds.Width)
		y, hitY := clampAxis(node.Position.Y+vy, cfg.Padding, bounds.Height)
		if hitX {
			vx = 0
		}
		if hitY {
			vy = 0
		}

		node.Position = Position{X: x, Y: y}
		node.Velocity = Position{X: vx, Y: vy}
		energy += vx*vx + vy*vy
	}
	return energy
}
