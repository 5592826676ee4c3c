package animation

import (
	"time"

	"golang.org/x/exp/constraints"
)

// Interpolator blends from toward to by eased progress t
type Interpolator[T any] func(from, to T, t float64) T

// Lerp interpolates between two floating point values
func Lerp[F constraints.Float](a, b F, t float64) F {
	return a + (b-a)*F(t)
}

// Tween is a time-bounded eased interpolation between two values
type Tween[T any] struct {
	from     T
	to       T
	duration time.Duration
	elapsed  time.Duration
	ease     EaseFunc
	lerp     Interpolator[T]
	value    T
	done     bool
}

// NewTween creates a tween. A nil ease defaults to CubicInOut.
func NewTween[T any](from, to T, duration time.Duration, ease EaseFunc, lerp Interpolator[T]) *Tween[T] {
	if ease == nil {
		ease = CubicInOut
	}
	return &Tween[T]{
		from:     from,
		to:       to,
		duration: duration,
		ease:     ease,
		lerp:     lerp,
		value:    from,
	}
}

// Advance moves the tween forward by dt and returns the current value.
// Once progress reaches 1 the exact target is returned and done is true.
func (tw *Tween[T]) Advance(dt time.Duration) (value T, done bool) {
	if tw.done {
		return tw.to, true
	}
	if dt > 0 {
		tw.elapsed += dt
	}
	p := tw.Progress()
	if p >= 1 {
		tw.done = true
		tw.value = tw.to
		return tw.to, true
	}
	tw.value = tw.lerp(tw.from, tw.to, tw.ease(p))
	return tw.value, false
}

// Progress returns linear progress in [0,1]
func (tw *Tween[T]) Progress() float64 {
	if tw.duration <= 0 {
		return 1
	}
	p := float64(tw.elapsed) / float64(tw.duration)
	if p > 1 {
		return 1
	}
	return p
}

// Value returns the most recently computed value
func (tw *Tween[T]) Value() T { return tw.value }

// From returns the start value
func (tw *Tween[T]) From() T { return tw.from }

// To returns the target value
func (tw *Tween[T]) To() T { return tw.to }

// Done reports whether the tween has reached its target
func (tw *Tween[T]) Done() bool { return tw.done }
