package linalg

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/lapack"
	lapackgonum "gonum.org/v1/gonum/lapack/gonum"
	"gonum.org/v1/gonum/mat"
)

// Schur is a real Schur decomposition A = Z*T*Zᵀ with T quasi-upper
// triangular (1×1 and standardized 2×2 diagonal blocks) and Z orthogonal.
type Schur struct {
	T *mat.Dense
	Z *mat.Dense
}

// Eigenvalues returns the eigenvalues in diagonal order.
func (s *Schur) Eigenvalues() []complex128 {
	n, _ := s.T.Dims()
	out := make([]complex128, 0, n)
	for i := 0; i < n; {
		re, im, size := s.block(i)
		if size == 2 {
			out = append(out, complex(re, im), complex(re, -im))
		} else {
			out = append(out, complex(re, 0))
		}
		i += size
	}
	return out
}

// block returns the eigenvalue and size of the diagonal block at row i.
func (s *Schur) block(i int) (re, im float64, size int) {
	n, _ := s.T.Dims()
	if i < n-1 && s.T.At(i+1, i) != 0 {
		a, b, c, d := s.T.At(i, i), s.T.At(i, i+1), s.T.At(i+1, i), s.T.At(i+1, i+1)
		return (a + d) / 2, math.Sqrt(math.Abs(b)) * math.Sqrt(math.Abs(c)), 2
	}
	return s.T.At(i, i), 0, 1
}

// OrderedSchur computes the real Schur form of the square matrix a and
// reorders it so that the eigenvalues accepted by keep occupy the leading
// diagonal blocks. Complex pairs are tested once with im > 0. It returns the
// number of leading eigenvalues accepted by keep.
func OrderedSchur(a mat.Matrix, keep func(re, im float64) bool) (*Schur, int, error) {
	n, c := a.Dims()
	if n != c {
		return nil, 0, fmt.Errorf("linalg: schur of non-square %d×%d matrix", n, c)
	}
	if n == 0 {
		return &Schur{T: &mat.Dense{}, Z: &mat.Dense{}}, 0, nil
	}

	impl := lapackgonum.Implementation{}
	t := mat.DenseCopyOf(a)
	traw := t.RawMatrix()

	// Hessenberg reduction.
	tau := make([]float64, max(n-1, 1))
	work := make([]float64, 1)
	impl.Dgehrd(n, 0, n-1, traw.Data, traw.Stride, tau, work, -1)
	work = make([]float64, max(int(work[0]), n))
	impl.Dgehrd(n, 0, n-1, traw.Data, traw.Stride, tau, work, len(work))

	// Accumulate the orthogonal factor of the reduction.
	z := mat.DenseCopyOf(t)
	zraw := z.RawMatrix()
	impl.Dorghr(n, 0, n-1, zraw.Data, zraw.Stride, tau, work, -1)
	work = make([]float64, max(int(work[0]), n))
	impl.Dorghr(n, 0, n-1, zraw.Data, zraw.Stride, tau, work, len(work))

	for i := 2; i < n; i++ {
		for j := 0; j < i-1; j++ {
			traw.Data[i*traw.Stride+j] = 0
		}
	}

	wr := make([]float64, n)
	wi := make([]float64, n)
	impl.Dhseqr(lapack.EigenvaluesAndSchur, lapack.SchurOrig, n, 0, n-1, traw.Data, traw.Stride, wr, wi, zraw.Data, zraw.Stride, work, -1)
	work = make([]float64, max(int(work[0]), n))
	if unconverged := impl.Dhseqr(lapack.EigenvaluesAndSchur, lapack.SchurOrig, n, 0, n-1, traw.Data, traw.Stride, wr, wi, zraw.Data, zraw.Stride, work, len(work)); unconverged > 0 {
		return nil, 0, fmt.Errorf("%w: %d eigenvalues did not converge", ErrFactorization, unconverged)
	}

	s := &Schur{T: t, Z: z}
	kept := 0
	work = make([]float64, n)
	for i := 0; i < n; {
		re, im, size := s.block(i)
		if keep(re, im) {
			if i != kept {
				_, ilst, ok := impl.Dtrexc(lapack.UpdateSchur, n, traw.Data, traw.Stride, zraw.Data, zraw.Stride, i, kept, work)
				if !ok {
					return nil, 0, fmt.Errorf("%w: schur reordering rejected an ill-conditioned swap", ErrFactorization)
				}
				kept = ilst
			}
			kept += size
		}
		i += size
	}
	return s, kept, nil
}
