package visualization

import (
	"math"
	"sort"
)

// DimensionalMetrics holds the dimension name registries of a model and
// computes similarity, placement angle and edge weight from them. Names
// are iterated in sorted order so every result is reproducible.
type DimensionalMetrics struct {
	nodeDims    []string
	edgeDims    []string
	nodeDefault float64
	edgeDefault float64
}

// NewDimensionalMetrics creates metrics with the defaults used for missing
// node and edge dimensions
func NewDimensionalMetrics(nodeDefault, edgeDefault float64) *DimensionalMetrics {
	return &DimensionalMetrics{
		nodeDefault: clampUnit(nodeDefault, 0),
		edgeDefault: clampUnit(edgeDefault, 0),
	}
}

// Rebuild recomputes both registries as the sorted union of names found
// on nodes and edges
func (dm *DimensionalMetrics) Rebuild(nodes []*Node, edges []*Edge) {
	nodeSet := make(map[string]struct{})
	for _, n := range nodes {
		for name := range n.Dimensions {
			nodeSet[name] = struct{}{}
		}
	}
	edgeSet := make(map[string]struct{})
	for _, e := range edges {
		for name := range e.Dimensions {
			edgeSet[name] = struct{}{}
		}
	}
	dm.nodeDims = sortedKeys(nodeSet)
	dm.edgeDims = sortedKeys(edgeSet)
}

// NodeDimensions returns the sorted node dimension names
func (dm *DimensionalMetrics) NodeDimensions() []string {
	return append([]string(nil), dm.nodeDims...)
}

// EdgeDimensions returns the sorted edge dimension names
func (dm *DimensionalMetrics) EdgeDimensions() []string {
	return append([]string(nil), dm.edgeDims...)
}

// NodeValue reads a node dimension, clamped into [0,1]
func (dm *DimensionalMetrics) NodeValue(n *Node, name string) float64 {
	v, ok := n.Dimensions[name]
	if !ok {
		return dm.nodeDefault
	}
	return clampUnit(v, dm.nodeDefault)
}

// EdgeValue reads an edge dimension, clamped into [0,1]
func (dm *DimensionalMetrics) EdgeValue(e *Edge, name string) float64 {
	v, ok := e.Dimensions[name]
	if !ok {
		return dm.edgeDefault
	}
	return clampUnit(v, dm.edgeDefault)
}

// Similarity is the mean of 1-|a[d]-b[d]| over the registered node
// dimensions. It is 0 when the model has no dimensions at all.
func (dm *DimensionalMetrics) Similarity(a, b *Node) float64 {
	if len(dm.nodeDims) == 0 {
		return 0
	}
	var sum float64
	for _, name := range dm.nodeDims {
		sum += 1 - math.Abs(dm.NodeValue(a, name)-dm.NodeValue(b, name))
	}
	return sum / float64(len(dm.nodeDims))
}

// PlacementAngle maps the dimension differences between node and focus to
// an angle: sum of (node[d_i]-focus[d_i]) * (i+1) * pi/2.
func (dm *DimensionalMetrics) PlacementAngle(node, focus *Node) float64 {
	var angle float64
	for i, name := range dm.nodeDims {
		diff := dm.NodeValue(node, name) - dm.NodeValue(focus, name)
		angle += diff * float64(i+1) * (math.Pi / 2)
	}
	return angle
}

// EdgeWeight is 1 + 0.5 * the sum of the edge's dimension values
func (dm *DimensionalMetrics) EdgeWeight(e *Edge) float64 {
	var sum float64
	for _, name := range dm.edgeDims {
		sum += dm.EdgeValue(e, name)
	}
	return 1 + 0.5*sum
}

// clampUnit clamps v into [0,1]; NaN reads as def
func clampUnit(v, def float64) float64 {
	switch {
	case math.IsNaN(v):
		return def
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
