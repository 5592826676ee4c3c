package visualization

import "errors"

var (
	// ErrNodeNotFound is returned when an operation names an id the model does not hold
	ErrNodeNotFound = errors.New("node not found")

	// ErrEdgeNotFound is returned when an operation names an unknown edge id
	ErrEdgeNotFound = errors.New("edge not found")

	// ErrPositionsAnimating is returned by Step while a position tween owns the nodes
	ErrPositionsAnimating = errors.New("positions are being animated")

	// ErrEmptyGraph is returned when an operation needs at least one node
	ErrEmptyGraph = errors.New("graph has no nodes")

	// ErrInvalidTransition is returned for a phase change the state machine forbids
	ErrInvalidTransition = errors.New("invalid phase transition")

	// ErrInvalidGraph wraps input that would break model invariants
	ErrInvalidGraph = errors.New("invalid graph data")
)
