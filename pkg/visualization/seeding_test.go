package visualization

import (
	"fmt"
	"math"
	"math/rand"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func modelWithNodes(n int) *GraphModel {
	data := &GraphData{}
	for i := 0; i < n; i++ {
		data.Nodes = append(data.Nodes, NodeData{ID: fmt.Sprintf("n%d", i)})
	}
	m := NewGraphModel(nil)
	m.Load(data)
	return m
}

func TestGoldenSeedingNoCollision(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 50
	properties := gopter.NewProperties(parameters)

	properties.Property("no two seeds closer than epsilon", prop.ForAll(
		func(n int, seed int64) bool {
			m := modelWithNodes(n)
			positions := GoldenSeeder{}.Seed(m, canvas, rand.New(rand.NewSource(seed)))
			if len(positions) != n {
				return false
			}
			pts := make([]Position, 0, n)
			for _, p := range positions {
				pts = append(pts, p)
			}
			for i := 0; i < len(pts); i++ {
				for j := i + 1; j < len(pts); j++ {
					if dist(pts[i], pts[j]) < 1.0 {
						return false
					}
				}
			}
			return true
		},
		gen.IntRange(2, 200),
		gen.Int64(),
	))

	properties.TestingRun(t)
}

func TestGoldenPositionRadius(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	center := Position{X: 400, Y: 300}
	for i := 0; i < 100; i++ {
		p := GoldenPosition(i, center, rng)
		r := dist(p, center)
		base := math.Sqrt(float64(i+1)) * goldenRadiusStep
		if math.Abs(r-base) > goldenJitter+1e-9 {
			t.Errorf("seed %d radius %v, want %v +/- %v", i, r, base, goldenJitter)
		}
	}
}

func TestSeedVelocityNonZeroAndSmall(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	for i := 0; i < 1000; i++ {
		v := seedVelocityFor(rng)
		if v.X == 0 && v.Y == 0 {
			t.Fatal("seed velocity must not be zero")
		}
		if math.Abs(v.X) > seedVelocity || math.Abs(v.Y) > seedVelocity {
			t.Fatalf("seed velocity %v exceeds %v", v, seedVelocity)
		}
	}
}

func TestCircularSeeder(t *testing.T) {
	m := modelWithNodes(8)
	positions := CircularSeeder{Padding: 50}.Seed(m, canvas, nil)
	if len(positions) != 8 {
		t.Fatalf("Expected 8 positions, got %d", len(positions))
	}

	// Radius is min(cx, cy) - padding
	center := canvas.Center()
	for id, p := range positions {
		if r := dist(p, center); math.Abs(r-250) > 1e-9 {
			t.Errorf("Node %s radius %v, want 250", id, r)
		}
	}

	if got := (CircularSeeder{}).Seed(NewGraphModel(nil), canvas, nil); len(got) != 0 {
		t.Errorf("Expected no positions for empty model, got %d", len(got))
	}
}

func TestHierarchicalSeeder(t *testing.T) {
	m := NewGraphModel(nil)
	m.Load(&GraphData{
		Nodes: []NodeData{{ID: "root"}, {ID: "left"}, {ID: "right"}, {ID: "leaf"}, {ID: "island"}},
		Edges: []EdgeData{
			{Source: "root", Target: "left"},
			{Source: "root", Target: "right"},
			{Source: "left", Target: "leaf"},
		},
	})

	positions := HierarchicalSeeder{Padding: 50}.Seed(m, canvas, nil)
	if len(positions) != 5 {
		t.Fatalf("Expected 5 positions, got %d", len(positions))
	}

	// root and island have no incoming edges and share the top level
	if positions["root"].Y != positions["island"].Y {
		t.Errorf("Roots should share a level: %v vs %v", positions["root"], positions["island"])
	}
	if !(positions["root"].Y < positions["left"].Y && positions["left"].Y < positions["leaf"].Y) {
		t.Errorf("Levels should descend: root=%v left=%v leaf=%v", positions["root"], positions["left"], positions["leaf"])
	}
	if positions["left"].Y != positions["right"].Y {
		t.Error("Siblings should share a level")
	}
	for id, p := range positions {
		if p.X < 50 || p.X > canvas.Width-50 || p.Y < 50 || p.Y > canvas.Height-50 {
			t.Errorf("Node %s at %v is outside the padded canvas", id, p)
		}
	}
}

func TestHierarchicalSeederCycle(t *testing.T) {
	m := NewGraphModel(nil)
	m.Load(&GraphData{
		Nodes: []NodeData{{ID: "a"}, {ID: "b"}, {ID: "c"}},
		Edges: []EdgeData{
			{Source: "a", Target: "b"},
			{Source: "b", Target: "c"},
			{Source: "c", Target: "a"},
		},
	})

	positions := HierarchicalSeeder{Padding: 20}.Seed(m, canvas, nil)
	if len(positions) != 3 {
		t.Fatalf("Expected every node placed despite the cycle, got %d", len(positions))
	}
}

func TestNewSeeder(t *testing.T) {
	for _, name := range append([]string{""}, SeederNames...) {
		if _, err := NewSeeder(name, 20); err != nil {
			t.Errorf("NewSeeder(%q) unexpected error: %v", name, err)
		}
	}
	if _, err := NewSeeder("spiral", 20); err == nil {
		t.Error("Expected error for unknown seeder")
	}
}
