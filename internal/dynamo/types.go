package dynamo

import "math"

// State is a stacked (configuration, velocity) vector.
type State []float64

func (s State) Clone() State {
	c := make(State, len(s))
	copy(c, s)
	return c
}

// IsValid reports whether every entry is finite.
func (s State) IsValid() bool {
	for _, v := range s {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func (s State) Sub(other State) State {
	result := make(State, len(s))
	for i := range s {
		if i < len(other) {
			result[i] = s[i] - other[i]
		} else {
			result[i] = s[i]
		}
	}
	return result
}

// Stack concatenates a configuration and a velocity into one State.
func Stack(q, v []float64) State {
	s := make(State, 0, len(q)+len(v))
	s = append(s, q...)
	return append(s, v...)
}

// Control is a generalized force vector, one entry per velocity coordinate.
type Control []float64

func (u Control) Clone() Control {
	c := make(Control, len(u))
	copy(c, u)
	return c
}
