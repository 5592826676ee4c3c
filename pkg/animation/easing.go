package animation

import "math"

// EaseFunc maps linear progress in [0,1] to eased progress
type EaseFunc func(t float64) float64

// Linear is the identity curve
func Linear(t float64) float64 {
	return clamp01(t)
}

// CubicInOut accelerates for the first half and decelerates for the second
func CubicInOut(t float64) float64 {
	t = clamp01(t)
	if t < 0.5 {
		return 4 * t * t * t
	}
	return 1 - math.Pow(-2*t+2, 3)/2
}

// CubicOut decelerates to a stop
func CubicOut(t float64) float64 {
	t = clamp01(t)
	return 1 - math.Pow(1-t, 3)
}

// EaseByName resolves a configured easing name, falling back to CubicInOut
func EaseByName(name string) EaseFunc {
	switch name {
	case "linear":
		return Linear
	case "cubic-out":
		return CubicOut
	default:
		return CubicInOut
	}
}

func clamp01(t float64) float64 {
	if t < 0 || math.IsNaN(t) {
		return 0
	}
	if t > 1 {
		return 1
	}
	return t
}
