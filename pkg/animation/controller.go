package animation

import "time"

// Controller owns at most one tween of a given kind. Starting a new tween
// replaces the in-flight one; nothing is queued.
type Controller[T any] struct {
	kind       string
	active     *Tween[T]
	superseded int
	completed  int
}

// NewController creates a controller for the named kind ("positions", "camera")
func NewController[T any](kind string) *Controller[T] {
	return &Controller[T]{kind: kind}
}

// Kind returns the controller's kind label
func (c *Controller[T]) Kind() string { return c.kind }

// Start installs tw, returning true if it replaced an unfinished tween
func (c *Controller[T]) Start(tw *Tween[T]) (replaced bool) {
	if c.active != nil && !c.active.Done() {
		replaced = true
		c.superseded++
	}
	c.active = tw
	return replaced
}

// Advance steps the active tween. active is false when nothing is in
// flight; finished is true exactly once, on the tick that completes it.
func (c *Controller[T]) Advance(dt time.Duration) (value T, active, finished bool) {
	if c.active == nil {
		return value, false, false
	}
	value, finished = c.active.Advance(dt)
	if finished {
		c.active = nil
		c.completed++
	}
	return value, true, finished
}

// Active reports whether a tween is in flight
func (c *Controller[T]) Active() bool {
	return c.active != nil
}

// Current returns the in-flight tween, or nil
func (c *Controller[T]) Current() *Tween[T] {
	return c.active
}

// Cancel drops the in-flight tween without completing it
func (c *Controller[T]) Cancel() bool {
	if c.active == nil {
		return false
	}
	c.active = nil
	return true
}

// Superseded returns how many tweens were replaced before finishing
func (c *Controller[T]) Superseded() int { return c.superseded }

// Completed returns how many tweens ran to completion
func (c *Controller[T]) Completed() int { return c.completed }
