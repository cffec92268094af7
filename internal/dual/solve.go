package dual

import (
	"errors"
	"math"
)

// ErrSingular is returned by Solve when a pivot vanishes.
var ErrSingular = errors.New("dual: singular matrix")

// pivotTolerance is relative to the largest primal entry of the matrix.
const pivotTolerance = 1e-12

// Solve solves a*x = b for every column of b using Gaussian elimination with
// partial pivoting on the primal values. a is n×n, b is n×k; neither is
// modified. Partials of the result follow from those of a and b.
func Solve(a [][]Dual, b [][]Dual) ([][]Dual, error) {
	n := len(a)
	if n == 0 {
		return nil, nil
	}
	k := len(b[0])

	lu := make([][]Dual, n)
	x := make([][]Dual, n)
	scale := 0.0
	for i := range a {
		lu[i] = append([]Dual(nil), a[i]...)
		x[i] = append([]Dual(nil), b[i]...)
		for _, v := range a[i] {
			scale = math.Max(scale, math.Abs(v.Re))
		}
	}
	if scale == 0 {
		return nil, ErrSingular
	}

	for col := 0; col < n; col++ {
		p := col
		for r := col + 1; r < n; r++ {
			if math.Abs(lu[r][col].Re) > math.Abs(lu[p][col].Re) {
				p = r
			}
		}
		if math.Abs(lu[p][col].Re) <= pivotTolerance*scale {
			return nil, ErrSingular
		}
		lu[col], lu[p] = lu[p], lu[col]
		x[col], x[p] = x[p], x[col]

		for r := col + 1; r < n; r++ {
			f := lu[r][col].Div(lu[col][col])
			for c := col; c < n; c++ {
				lu[r][c] = lu[r][c].Sub(f.Mul(lu[col][c]))
			}
			for c := 0; c < k; c++ {
				x[r][c] = x[r][c].Sub(f.Mul(x[col][c]))
			}
		}
	}

	for c := 0; c < k; c++ {
		for r := n - 1; r >= 0; r-- {
			sum := x[r][c]
			for j := r + 1; j < n; j++ {
				sum = sum.Sub(lu[r][j].Mul(x[j][c]))
			}
			x[r][c] = sum.Div(lu[r][r])
		}
	}
	return x, nil
}

// SolveVec solves a*x = b for a single right-hand side.
func SolveVec(a [][]Dual, b []Dual) ([]Dual, error) {
	cols := make([][]Dual, len(b))
	for i, v := range b {
		cols[i] = []Dual{v}
	}
	x, err := Solve(a, cols)
	if err != nil {
		return nil, err
	}
	out := make([]Dual, len(x))
	for i := range x {
		out[i] = x[i][0]
	}
	return out, nil
}
