// Package linalg extends gonum with the dense routines the synthesis pipeline
// needs: identity and block-diagonal builders, SVD nullspace bases and an
// ordered real Schur decomposition.
package linalg

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// Eye returns the n×n identity; n = 0 yields an empty matrix.
func Eye(n int) *mat.Dense {
	if n == 0 {
		return &mat.Dense{}
	}
	m := mat.NewDense(n, n, nil)
	for i := 0; i < n; i++ {
		m.Set(i, i, 1)
	}
	return m
}

// Diag returns a dense diagonal matrix with entries d.
func Diag(d []float64) *mat.Dense {
	m := mat.NewDense(len(d), len(d), nil)
	for i, v := range d {
		m.Set(i, i, v)
	}
	return m
}

// BlockDiag returns [[a, 0], [0, b]].
func BlockDiag(a, b mat.Matrix) *mat.Dense {
	ra, ca := a.Dims()
	rb, cb := b.Dims()
	out := mat.NewDense(ra+rb, ca+cb, nil)
	if ra > 0 && ca > 0 {
		out.Slice(0, ra, 0, ca).(*mat.Dense).Copy(a)
	}
	if rb > 0 && cb > 0 {
		out.Slice(ra, ra+rb, ca, ca+cb).(*mat.Dense).Copy(b)
	}
	return out
}

// FromRows builds a dense matrix from row slices of equal length.
func FromRows(rows [][]float64) *mat.Dense {
	if len(rows) == 0 {
		return &mat.Dense{}
	}
	m := mat.NewDense(len(rows), len(rows[0]), nil)
	for i, r := range rows {
		m.SetRow(i, r)
	}
	return m
}

// Rows returns the rows of m as slices.
func Rows(m mat.Matrix) [][]float64 {
	r, c := m.Dims()
	out := make([][]float64, r)
	for i := range out {
		out[i] = make([]float64, c)
		for j := range out[i] {
			out[i][j] = m.At(i, j)
		}
	}
	return out
}

// IsEmpty reports whether m has no rows or no columns.
func IsEmpty(m mat.Matrix) bool {
	r, c := m.Dims()
	return r == 0 || c == 0
}

// NaNOrInf checks if there are any NaN or Inf entries in m.
func NaNOrInf(m mat.Matrix) bool {
	r, c := m.Dims()
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			v := m.At(i, j)
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return true
			}
		}
	}
	return false
}

// MaxAbs returns the largest absolute entry of m.
func MaxAbs(m mat.Matrix) float64 {
	r, c := m.Dims()
	best := 0.0
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			best = math.Max(best, math.Abs(m.At(i, j)))
		}
	}
	return best
}

// Symmetrize returns (m + mᵀ)/2.
func Symmetrize(m mat.Matrix) *mat.Dense {
	var out mat.Dense
	out.Add(m, m.T())
	out.Scale(0.5, &out)
	return &out
}

// Project returns nᵀ*m*n.
func Project(m, n mat.Matrix) *mat.Dense {
	var tmp, out mat.Dense
	tmp.Mul(m, n)
	out.Mul(n.T(), &tmp)
	return &out
}
