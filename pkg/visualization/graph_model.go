package visualization

import (
	"math"

	"github.com/google/uuid"
)

// GraphModel is the arena of node and edge records, indexed by id. Node
// order is insertion order and is stable across updates.
type GraphModel struct {
	nodes   []*Node
	index   map[string]int
	edges   []*Edge
	edgeIdx map[string]int
	metrics *DimensionalMetrics
}

// LoadResult describes how a load was merged into the model
type LoadResult struct {
	Fresh        bool
	Added        []string
	Updated      int
	Removed      []string
	DroppedEdges []EdgeData
}

// NewGraphModel creates an empty model
func NewGraphModel(metrics *DimensionalMetrics) *GraphModel {
	if metrics == nil {
		metrics = NewDimensionalMetrics(DefaultDimensionValue, DefaultEdgeDimensionValue)
	}
	return &GraphModel{
		index:   make(map[string]int),
		edgeIdx: make(map[string]int),
		metrics: metrics,
	}
}

// Load merges data into the model. Existing nodes keep their position and
// velocity and have label and dimensions overwritten in place. New nodes
// start at the origin unless data gives coordinates. Nodes absent from
// data are removed and edges are rebuilt; edges whose endpoints are
// missing are returned in DroppedEdges.
func (m *GraphModel) Load(data *GraphData) LoadResult {
	result := LoadResult{Fresh: m.isUnpositioned()}

	keep := make(map[string]struct{}, len(data.Nodes))
	for i := range data.Nodes {
		nd := &data.Nodes[i]
		keep[nd.ID] = struct{}{}

		node, exists := m.Node(nd.ID)
		if !exists {
			node = &Node{ID: nd.ID}
			m.index[nd.ID] = len(m.nodes)
			m.nodes = append(m.nodes, node)
			result.Added = append(result.Added, nd.ID)
		} else {
			result.Updated++
		}

		node.Label = nd.Label
		node.Dimensions = copyDimensions(nd.Dimensions)
		node.explicit = nd.X != nil && nd.Y != nil
		if node.explicit && (!exists || result.Fresh) {
			node.Position = Position{X: *nd.X, Y: *nd.Y}
			node.Velocity = Position{}
		}
		switch {
		case nd.Pinned && node.explicit:
			pin := Position{X: *nd.X, Y: *nd.Y}
			node.Pinned = &pin
			node.dataPinned = true
			node.Position = pin
			node.Velocity = Position{}
		case node.dataPinned:
			node.Pinned = nil
			node.dataPinned = false
		}
	}

	if len(keep) != len(m.nodes) {
		result.Removed = m.retain(keep)
	}

	result.DroppedEdges = m.rebuildEdges(data.Edges)
	m.metrics.Rebuild(m.nodes, m.edges)
	return result
}

// isUnpositioned reports whether the model is empty or every node is at
// the origin, the never-positioned sentinel
func (m *GraphModel) isUnpositioned() bool {
	for _, n := range m.nodes {
		if n.Position.X != 0 || n.Position.Y != 0 {
			return false
		}
	}
	return true
}

// retain drops every node whose id is not in keep, preserving order
func (m *GraphModel) retain(keep map[string]struct{}) []string {
	var removed []string
	kept := m.nodes[:0]
	for _, n := range m.nodes {
		if _, ok := keep[n.ID]; ok {
			kept = append(kept, n)
			continue
		}
		removed = append(removed, n.ID)
	}
	for i := len(kept); i < len(m.nodes); i++ {
		m.nodes[i] = nil
	}
	m.nodes = kept

	m.index = make(map[string]int, len(m.nodes))
	for i, n := range m.nodes {
		m.index[n.ID] = i
	}
	return removed
}

func (m *GraphModel) rebuildEdges(input []EdgeData) []EdgeData {
	var dropped []EdgeData
	m.edges = m.edges[:0]
	m.edgeIdx = make(map[string]int, len(input))

	for _, ed := range input {
		src, okSrc := m.index[ed.Source]
		tgt, okTgt := m.index[ed.Target]
		if !okSrc || !okTgt {
			dropped = append(dropped, ed)
			continue
		}

		id := ed.ID
		if id == "" {
			id = uuid.New().String()
		}
		strength := DefaultEdgeStrength
		if ed.Strength != nil {
			strength = clampUnit(*ed.Strength, DefaultEdgeStrength)
		}

		m.edgeIdx[id] = len(m.edges)
		m.edges = append(m.edges, &Edge{
			ID:         id,
			SourceID:   ed.Source,
			TargetID:   ed.Target,
			Strength:   strength,
			Dimensions: copyDimensions(ed.Dimensions),
			source:     src,
			target:     tgt,
		})
	}
	return dropped
}

// Node looks up a node by id
func (m *GraphModel) Node(id string) (*Node, bool) {
	i, ok := m.index[id]
	if !ok {
		return nil, false
	}
	return m.nodes[i], true
}

// Edge looks up an edge by id
func (m *GraphModel) Edge(id string) (*Edge, bool) {
	i, ok := m.edgeIdx[id]
	if !ok {
		return nil, false
	}
	return m.edges[i], true
}

// Nodes returns the node records in insertion order. Callers outside the
// package receive them only through Session snapshots.
func (m *GraphModel) Nodes() []*Node {
	return m.nodes
}

// Edges returns the resolved edge records
func (m *GraphModel) Edges() []*Edge {
	return m.edges
}

// NodeCount returns the number of nodes
func (m *GraphModel) NodeCount() int {
	return len(m.nodes)
}

// EdgeCount returns the number of edges
func (m *GraphModel) EdgeCount() int {
	return len(m.edges)
}

// Metrics returns the dimensional metrics bound to this model
func (m *GraphModel) Metrics() *DimensionalMetrics {
	return m.metrics
}

// addPlaceholder inserts a bare node record, used when restoring positions
// before any data has been loaded
func (m *GraphModel) addPlaceholder(id string) *Node {
	node := &Node{ID: id}
	m.index[id] = len(m.nodes)
	m.nodes = append(m.nodes, node)
	return node
}

func copyDimensions(in map[string]float64) map[string]float64 {
	if len(in) == 0 {
		return nil
	}
	out := make(map[string]float64, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

func finite(p Position) bool {
	return !math.IsNaN(p.X) && !math.IsNaN(p.Y) && !math.IsInf(p.X, 0) && !math.IsInf(p.Y, 0)
}
