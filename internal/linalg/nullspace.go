package linalg

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/mat"
)

// ErrFactorization is returned when a gonum factorization does not converge.
var ErrFactorization = errors.New("linalg: factorization failed")

// Rank returns the numerical rank of a. tol <= 0 selects
// max(r, c)*σmax*ε.
func Rank(a mat.Matrix, tol float64) (int, error) {
	if IsEmpty(a) {
		return 0, nil
	}
	var svd mat.SVD
	if !svd.Factorize(a, mat.SVDNone) {
		return 0, ErrFactorization
	}
	values := svd.Values(nil)
	tol = rankTolerance(a, values, tol)
	rank := 0
	for _, s := range values {
		if s > tol {
			rank++
		}
	}
	return rank, nil
}

// Nullspace returns an orthonormal basis of {x : a*x = 0} as the columns of
// an n×k matrix, where n is the column count of a. A matrix without rows
// yields the n×n identity; a trivial nullspace yields an empty matrix.
// tol <= 0 selects max(r, c)*σmax*ε.
func Nullspace(a mat.Matrix, tol float64) (*mat.Dense, error) {
	r, c := a.Dims()
	switch {
	case c == 0:
		return &mat.Dense{}, nil
	case r == 0:
		return Eye(c), nil
	}

	var svd mat.SVD
	if !svd.Factorize(a, mat.SVDFull) {
		return nil, ErrFactorization
	}
	values := svd.Values(nil)
	tol = rankTolerance(a, values, tol)
	rank := 0
	for _, s := range values {
		if s > tol {
			rank++
		}
	}

	var v mat.Dense
	svd.VTo(&v)
	if rank == c {
		return &mat.Dense{}, nil
	}
	basis := mat.DenseCopyOf(v.Slice(0, c, rank, c))
	return basis, nil
}

func rankTolerance(a mat.Matrix, values []float64, tol float64) float64 {
	if tol > 0 {
		return tol
	}
	if len(values) == 0 {
		return 0
	}
	r, c := a.Dims()
	return float64(max(r, c)) * values[0] * eps
}

// eps is the float64 machine epsilon.
var eps = math.Nextafter(1, 2) - 1
