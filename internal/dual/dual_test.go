package dual

import (
	"errors"
	"math"
	"testing"
)

func near(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestArithmeticPartials(t *testing.T) {
	x := Seed([]float64{0.3, 1.2}, 2)

	tests := []struct {
		name   string
		f      func() Dual
		value  float64
		dx, dy float64
	}{
		{"add", func() Dual { return x[0].Add(x[1]) }, 1.5, 1, 1},
		{"sub", func() Dual { return x[0].Sub(x[1]) }, -0.9, 1, -1},
		{"mul", func() Dual { return x[0].Mul(x[1]) }, 0.36, 1.2, 0.3},
		{"div", func() Dual { return x[0].Div(x[1]) }, 0.25, 1 / 1.2, -0.3 / (1.2 * 1.2)},
		{"sin*y", func() Dual { return x[0].Sin().Mul(x[1]) }, math.Sin(0.3) * 1.2, math.Cos(0.3) * 1.2, math.Sin(0.3)},
		{"cos", func() Dual { return x[0].Cos() }, math.Cos(0.3), -math.Sin(0.3), 0},
		{"sqrt", func() Dual { return x[1].Sqrt() }, math.Sqrt(1.2), 0, 0.5 / math.Sqrt(1.2)},
		{"square", func() Dual { return x[1].Square() }, 1.44, 0, 2.4},
		{"scale+shift", func() Dual { return x[0].Scale(3).Shift(2) }, 2.9, 3, 0},
		{"neg", func() Dual { return x[1].Neg() }, -1.2, 0, -1},
	}

	for _, tt := range tests {
		got := tt.f()
		if !near(got.Value(), tt.value) {
			t.Errorf("%s: value %f, want %f", tt.name, got.Value(), tt.value)
		}
		if !near(got.Partial(0), tt.dx) || !near(got.Partial(1), tt.dy) {
			t.Errorf("%s: partials (%f, %f), want (%f, %f)", tt.name, got.Partial(0), got.Partial(1), tt.dx, tt.dy)
		}
	}
}

func TestConstantsMixWithSeeded(t *testing.T) {
	x := Variable(2, 1, 3)
	y := Const(5).Mul(x).Add(Const(1))

	if y.Value() != 11 {
		t.Errorf("expected 11, got %f", y.Value())
	}
	if y.Width() != 3 || y.Partial(1) != 5 || y.Partial(0) != 0 {
		t.Errorf("unexpected partials %v", y.Eps)
	}
	if Const(4).Partial(7) != 0 {
		t.Error("constant should have zero partials")
	}
}

func TestWithValueKeepsPartials(t *testing.T) {
	x := Variable(1, 0, 2)
	y := x.WithValue(3)
	y.Eps[1] = 9

	if y.Value() != 3 || y.Partial(0) != 1 {
		t.Errorf("unexpected re-centered dual %v", y)
	}
	if x.Partial(1) != 0 {
		t.Error("WithValue must not alias the original partials")
	}
}

func TestSolve(t *testing.T) {
	// d/dp of the solution of [[p, 1], [1, 2]] x = [1, 0] at p = 3.
	p := Variable(3, 0, 1)
	a := [][]Dual{{p, Const(1)}, {Const(1), Const(2)}}
	b := []Dual{Const(1), Const(0)}

	x, err := SolveVec(a, b)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// x0 = 2/(2p-1), x1 = -1/(2p-1)
	den := 2*3.0 - 1
	if !near(x[0].Value(), 2/den) || !near(x[1].Value(), -1/den) {
		t.Errorf("unexpected solution %v", Values(x))
	}
	if !near(x[0].Partial(0), -4/(den*den)) {
		t.Errorf("dx0/dp = %f, want %f", x[0].Partial(0), -4/(den*den))
	}
	if !near(x[1].Partial(0), 2/(den*den)) {
		t.Errorf("dx1/dp = %f, want %f", x[1].Partial(0), 2/(den*den))
	}
}

func TestSolveSingular(t *testing.T) {
	a := [][]Dual{{Const(1), Const(2)}, {Const(2), Const(4)}}
	_, err := SolveVec(a, []Dual{Const(1), Const(1)})
	if !errors.Is(err, ErrSingular) {
		t.Errorf("expected ErrSingular, got %v", err)
	}
}

func TestMatVec(t *testing.T) {
	x := Seed([]float64{1, 2}, 2)
	y := ConstMatVec([][]float64{{1, 1}, {0, 3}}, x)
	if y[0].Value() != 3 || y[1].Value() != 6 {
		t.Errorf("unexpected product %v", Values(y))
	}
	if y[1].Partial(1) != 3 || y[1].Partial(0) != 0 {
		t.Errorf("unexpected partials %v", y[1].Eps)
	}

	z := MatVec([][]Dual{{x[0], x[1]}}, x)
	if z[0].Value() != 5 || z[0].Partial(0) != 2 || z[0].Partial(1) != 4 {
		t.Errorf("unexpected quadratic form %v", z[0])
	}
}
