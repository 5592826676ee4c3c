package visualization

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/dd0wney/cluso-forcegraph/pkg/viewport"
)

// Seeding strategy names
const (
	SeederGolden       = "golden"
	SeederCircular     = "circular"
	SeederHierarchical = "hierarchical"
)

// SeederNames lists the strategies NewSeeder accepts
var SeederNames = []string{SeederGolden, SeederCircular, SeederHierarchical}

const (
	goldenRadiusStep = 40.0
	goldenJitter     = 5.0
	seedVelocity     = 0.1
)

// Seeder computes initial positions for a fresh load
type Seeder interface {
	Seed(model *GraphModel, bounds viewport.Size, rng *rand.Rand) map[string]Position
}

// NewSeeder returns the seeding strategy with the given name
func NewSeeder(name string, padding float64) (Seeder, error) {
	switch name {
	case SeederGolden, "":
		return GoldenSeeder{}, nil
	case SeederCircular:
		return CircularSeeder{Padding: padding}, nil
	case SeederHierarchical:
		return HierarchicalSeeder{Padding: padding}, nil
	default:
		return nil, fmt.Errorf("unknown seeder %q", name)
	}
}

// GoldenSeeder places node i at center + polar(i*goldenAngle, sqrt(i+1)*40 + jitter)
type GoldenSeeder struct{}

// Seed implements Seeder
func (GoldenSeeder) Seed(model *GraphModel, bounds viewport.Size, rng *rand.Rand) map[string]Position {
	positions := make(map[string]Position, model.NodeCount())
	center := bounds.Center()
	for i, node := range model.Nodes() {
		positions[node.ID] = GoldenPosition(i, center, rng)
	}
	return positions
}

// GoldenPosition is the golden-angle seed for index i. The jitter is a
// bounded random offset of the radius.
func GoldenPosition(i int, center Position, rng *rand.Rand) Position {
	r := math.Sqrt(float64(i+1))*goldenRadiusStep + (rng.Float64()*2-1)*goldenJitter
	angle := float64(i) * goldenAngle
	return Position{
		X: center.X + r*math.Cos(angle),
		Y: center.Y + r*math.Sin(angle),
	}
}

// seedVelocityFor returns a small random velocity that is never zero
func seedVelocityFor(rng *rand.Rand) Position {
	for {
		v := Position{
			X: (rng.Float64()*2 - 1) * seedVelocity,
			Y: (rng.Float64()*2 - 1) * seedVelocity,
		}
		if v.X != 0 || v.Y != 0 {
			return v
		}
	}
}

// CircularSeeder arranges nodes in a circle
type CircularSeeder struct {
	Padding float64
}

// Seed implements Seeder
func (cs CircularSeeder) Seed(model *GraphModel, bounds viewport.Size, _ *rand.Rand) map[string]Position {
	positions := make(map[string]Position, model.NodeCount())
	nodes := model.Nodes()
	if len(nodes) == 0 {
		return positions
	}

	center := bounds.Center()
	radius := math.Max(math.Min(center.X, center.Y)-cs.Padding, 0)
	angleStep := 2 * math.Pi / float64(len(nodes))

	for i, node := range nodes {
		angle := float64(i) * angleStep
		positions[node.ID] = Position{
			X: center.X + radius*math.Cos(angle),
			Y: center.Y + radius*math.Sin(angle),
		}
	}
	return positions
}

// HierarchicalSeeder arranges nodes in BFS layers starting from nodes with
// no incoming edges
type HierarchicalSeeder struct {
	Padding float64
}

// Seed implements Seeder
func (hs HierarchicalSeeder) Seed(model *GraphModel, bounds viewport.Size, _ *rand.Rand) map[string]Position {
	positions := make(map[string]Position, model.NodeCount())
	nodes := model.Nodes()
	if len(nodes) == 0 {
		return positions
	}

	incoming := make([]int, len(nodes))
	outgoing := make([][]int, len(nodes))
	for _, e := range model.Edges() {
		if e.source == e.target {
			continue
		}
		incoming[e.target]++
		outgoing[e.source] = append(outgoing[e.source], e.target)
	}

	roots := make([]int, 0)
	for i := range nodes {
		if incoming[i] == 0 {
			roots = append(roots, i)
		}
	}
	if len(roots) == 0 {
		// No clear root, use first node
		roots = []int{0}
	}

	levels := make([][]int, 0)
	visited := make([]bool, len(nodes))
	for _, r := range roots {
		visited[r] = true
	}
	current := roots
	for len(current) > 0 {
		levels = append(levels, current)
		next := make([]int, 0)
		for _, i := range current {
			for _, j := range outgoing[i] {
				if !visited[j] {
					visited[j] = true
					next = append(next, j)
				}
			}
		}
		current = next
	}

	// Nodes only reachable through cycles go on the last level
	for i := range nodes {
		if !visited[i] {
			levels[len(levels)-1] = append(levels[len(levels)-1], i)
		}
	}

	levelHeight := (bounds.Height - 2*hs.Padding) / float64(len(levels))
	levelWidth := bounds.Width - 2*hs.Padding
	for levelIdx, level := range levels {
		y := hs.Padding + float64(levelIdx)*levelHeight + levelHeight/2
		spacing := levelWidth / float64(len(level)+1)
		for k, i := range level {
			positions[nodes[i].ID] = Position{
				X: hs.Padding + spacing*float64(k+1),
				Y: y,
			}
		}
	}
	return positions
}
