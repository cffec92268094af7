package control

import (
	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/contactlqr/internal/dynamo"
)

// LQR is the linear feedback u = Input − K(x − Target).
type LQR struct {
	K      *mat.Dense
	Target dynamo.State
	Input  dynamo.Control
}

// NewLQR returns a feedback law around the operating point (target, input).
// A nil input means zero feedforward.
func NewLQR(k *mat.Dense, target dynamo.State, input dynamo.Control) *LQR {
	rows, _ := k.Dims()
	if input == nil {
		input = make(dynamo.Control, rows)
	}
	return &LQR{K: k, Target: target.Clone(), Input: input.Clone()}
}

func (l *LQR) Compute(x dynamo.State) dynamo.Control {
	rows, cols := l.K.Dims()
	u := make(dynamo.Control, rows)
	copy(u, l.Input)
	for i := range u {
		for j := 0; j < cols && j < len(x); j++ {
			target := 0.0
			if j < len(l.Target) {
				target = l.Target[j]
			}
			u[i] -= l.K.At(i, j) * (x[j] - target)
		}
	}
	return u
}

// Saturate clips u into the box [lower, upper] entrywise.
func Saturate(u dynamo.Control, lower, upper []float64) dynamo.Control {
	out := u.Clone()
	for i := range out {
		if i < len(lower) && out[i] < lower[i] {
			out[i] = lower[i]
		}
		if i < len(upper) && out[i] > upper[i] {
			out[i] = upper[i]
		}
	}
	return out
}
