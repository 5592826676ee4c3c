package logging

import (
	"math"
	"time"
)

// Common field constructors
func String(key, value string) Field {
	return Field{Key: key, Value: value}
}

func Int(key string, value int) Field {
	return Field{Key: key, Value: value}
}

func Float64(key string, value float64) Field {
	return Field{Key: key, Value: value}
}

func Bool(key string, value bool) Field {
	return Field{Key: key, Value: value}
}

func Duration(key string, value time.Duration) Field {
	return Field{Key: key, Value: value.String()}
}

func Error(err error) Field {
	if err == nil {
		return Field{Key: "error", Value: nil}
	}
	return Field{Key: "error", Value: err.Error()}
}

func Any(key string, value any) Field {
	return Field{Key: key, Value: value}
}

// Layout field helpers
func Component(name string) Field {
	return String("component", name)
}

func SessionID(id string) Field {
	return String("session_id", id)
}

func NodeID(id string) Field {
	return String("node_id", id)
}

func EdgeID(id string) Field {
	return String("edge_id", id)
}

func Iteration(n int) Field {
	return Int("iteration", n)
}

// Energy records kinetic energy. Non-finite values are stringified so the
// entry still marshals.
func Energy(e float64) Field {
	if math.IsNaN(e) || math.IsInf(e, 0) {
		return Field{Key: "kinetic_energy", Value: "non-finite"}
	}
	return Float64("kinetic_energy", e)
}

func Phase(p string) Field {
	return String("phase", p)
}

func Count(n int) Field {
	return Int("count", n)
}
