package visualization

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/dd0wney/cluso-forcegraph/pkg/validation"
	"github.com/dd0wney/cluso-forcegraph/pkg/viewport"
)

// Position represents a 2D coordinate. Velocities use the same type.
type Position = viewport.Point

// DefaultEdgeStrength applies to edges that do not state a strength
const DefaultEdgeStrength = 1.0

// Node is a simulation-owned node record
type Node struct {
	ID         string
	Label      string
	Position   Position
	Velocity   Position
	Pinned     *Position
	Dimensions map[string]float64

	// explicit is set when the last load supplied coordinates for the node
	explicit bool
	// dataPinned is set when Pinned came from loaded data rather than
	// from PinNode or a snapshot. Only such pins follow the data.
	dataPinned bool
}

// IsPinned reports whether the node skips integration
func (n *Node) IsPinned() bool {
	return n.Pinned != nil
}

// Edge is a simulation-owned edge record with resolved endpoint indices
type Edge struct {
	ID         string
	SourceID   string
	TargetID   string
	Strength   float64
	Dimensions map[string]float64

	source int
	target int
}

// NodeData is the input shape of a node
type NodeData struct {
	ID         string             `json:"id" yaml:"id" validate:"required,max=256"`
	Label      string             `json:"label,omitempty" yaml:"label,omitempty" validate:"max=1024"`
	Dimensions map[string]float64 `json:"dimensions,omitempty" yaml:"dimensions,omitempty"`
	X          *float64           `json:"x,omitempty" yaml:"x,omitempty" validate:"omitempty,finite"`
	Y          *float64           `json:"y,omitempty" yaml:"y,omitempty" validate:"omitempty,finite"`
	Pinned     bool               `json:"pinned,omitempty" yaml:"pinned,omitempty"`
}

// EdgeData is the input shape of an edge. A nil Strength means DefaultEdgeStrength.
type EdgeData struct {
	ID         string             `json:"id,omitempty" yaml:"id,omitempty" validate:"max=256"`
	Source     string             `json:"source" yaml:"source" validate:"required,max=256"`
	Target     string             `json:"target" yaml:"target" validate:"required,max=256"`
	Strength   *float64           `json:"strength,omitempty" yaml:"strength,omitempty" validate:"omitempty,finite"`
	Dimensions map[string]float64 `json:"dimensions,omitempty" yaml:"dimensions,omitempty"`
}

// GraphData is what a data source hands to Session.Load
type GraphData struct {
	Nodes []NodeData `json:"nodes" yaml:"nodes" validate:"dive"`
	Edges []EdgeData `json:"edges" yaml:"edges" validate:"dive"`
}

// Validate rejects input that would break model invariants: missing or
// duplicate ids, non-finite numbers, malformed dimension names.
// Edges pointing at unknown nodes are not an error here; Load drops them.
func (g *GraphData) Validate() error {
	if err := validation.Struct(g); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidGraph, err)
	}

	seen := make(map[string]struct{}, len(g.Nodes))
	for i := range g.Nodes {
		nd := &g.Nodes[i]
		if _, dup := seen[nd.ID]; dup {
			return fmt.Errorf("%w: duplicate node id %q", ErrInvalidGraph, nd.ID)
		}
		seen[nd.ID] = struct{}{}
		if (nd.X == nil) != (nd.Y == nil) {
			return fmt.Errorf("%w: node %q must set both x and y or neither", ErrInvalidGraph, nd.ID)
		}
		if nd.Pinned && nd.X == nil {
			return fmt.Errorf("%w: pinned node %q needs x and y", ErrInvalidGraph, nd.ID)
		}
		if err := validation.ValidateDimensions("node "+nd.ID, nd.Dimensions); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidGraph, err)
		}
	}

	edgeIDs := make(map[string]struct{}, len(g.Edges))
	for i := range g.Edges {
		ed := &g.Edges[i]
		if ed.ID != "" {
			if _, dup := edgeIDs[ed.ID]; dup {
				return fmt.Errorf("%w: duplicate edge id %q", ErrInvalidGraph, ed.ID)
			}
			edgeIDs[ed.ID] = struct{}{}
		}
		if err := validation.ValidateDimensions("edge "+ed.Source+"->"+ed.Target, ed.Dimensions); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidGraph, err)
		}
	}
	return nil
}

// Graph input formats
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// FormatFromPath picks the input format from a file extension, defaulting to JSON
func FormatFromPath(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// ReadGraphData decodes graph input in the given format
func ReadGraphData(r io.Reader, format string) (*GraphData, error) {
	var data GraphData
	switch format {
	case FormatYAML:
		if err := yaml.NewDecoder(r).Decode(&data); err != nil && err != io.EOF {
			return nil, fmt.Errorf("failed to decode yaml graph: %w", err)
		}
	case FormatJSON, "":
		dec := json.NewDecoder(r)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&data); err != nil {
			return nil, fmt.Errorf("failed to decode json graph: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported graph format %q", format)
	}
	return &data, nil
}
