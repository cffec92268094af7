package dual

import (
	"fmt"
	"math"
)

// Dual is a primal value with partial derivatives along a tangent basis.
type Dual struct {
	Re  float64
	Eps []float64
}

// Const returns a Dual with no partials.
func Const(x float64) Dual {
	return Dual{Re: x}
}

// Variable returns a Dual whose partial vector is the unit vector e_index of
// length width.
func Variable(x float64, index, width int) Dual {
	eps := make([]float64, width)
	eps[index] = 1
	return Dual{Re: x, Eps: eps}
}

// Value returns the primal value.
func (a Dual) Value() float64 { return a.Re }

// Width returns the length of the partial vector.
func (a Dual) Width() int { return len(a.Eps) }

// Partial returns the partial derivative along direction i; directions past
// the stored width are zero.
func (a Dual) Partial(i int) float64 {
	if i < len(a.Eps) {
		return a.Eps[i]
	}
	return 0
}

// WithValue returns a copy of a with primal x and the same partials.
func (a Dual) WithValue(x float64) Dual {
	return Dual{Re: x, Eps: cloneEps(a.Eps)}
}

func (a Dual) String() string {
	return fmt.Sprintf("%g%+v", a.Re, a.Eps)
}

func (a Dual) Add(b Dual) Dual {
	return Dual{Re: a.Re + b.Re, Eps: combine(1, a.Eps, 1, b.Eps)}
}

func (a Dual) Sub(b Dual) Dual {
	return Dual{Re: a.Re - b.Re, Eps: combine(1, a.Eps, -1, b.Eps)}
}

func (a Dual) Mul(b Dual) Dual {
	return Dual{Re: a.Re * b.Re, Eps: combine(b.Re, a.Eps, a.Re, b.Eps)}
}

func (a Dual) Div(b Dual) Dual {
	inv := 1 / b.Re
	return Dual{Re: a.Re * inv, Eps: combine(inv, a.Eps, -a.Re*inv*inv, b.Eps)}
}

func (a Dual) Neg() Dual {
	return a.Scale(-1)
}

// Scale multiplies a by the constant k.
func (a Dual) Scale(k float64) Dual {
	return Dual{Re: a.Re * k, Eps: combine(k, a.Eps, 0, nil)}
}

// Shift adds the constant k to a.
func (a Dual) Shift(k float64) Dual {
	return Dual{Re: a.Re + k, Eps: cloneEps(a.Eps)}
}

func (a Dual) Sin() Dual {
	s, c := math.Sincos(a.Re)
	return Dual{Re: s, Eps: combine(c, a.Eps, 0, nil)}
}

func (a Dual) Cos() Dual {
	s, c := math.Sincos(a.Re)
	return Dual{Re: c, Eps: combine(-s, a.Eps, 0, nil)}
}

func (a Dual) Sqrt() Dual {
	r := math.Sqrt(a.Re)
	return Dual{Re: r, Eps: combine(0.5/r, a.Eps, 0, nil)}
}

// Square returns a*a.
func (a Dual) Square() Dual {
	return Dual{Re: a.Re * a.Re, Eps: combine(2*a.Re, a.Eps, 0, nil)}
}

// combine returns ka*ea + kb*eb, padding the shorter vector with zeros.
func combine(ka float64, ea []float64, kb float64, eb []float64) []float64 {
	n := max(len(ea), len(eb))
	if n == 0 {
		return nil
	}
	out := make([]float64, n)
	for i, v := range ea {
		out[i] = ka * v
	}
	if kb != 0 {
		for i, v := range eb {
			out[i] += kb * v
		}
	}
	return out
}

func cloneEps(e []float64) []float64 {
	if e == nil {
		return nil
	}
	c := make([]float64, len(e))
	copy(c, e)
	return c
}
