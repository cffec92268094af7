package metrics

import (
	"errors"
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"
)

// ErrEigen is returned when the closed-loop spectrum cannot be computed.
var ErrEigen = errors.New("metrics: eigenvalue decomposition failed")

// Stability tracks the spectrum of a closed-loop matrix. A design is stable
// when its spectral abscissa is below -threshold.
type Stability struct {
	name        string
	threshold   float64
	eigenvalues []complex128
	abscissa    float64
	samples     int
}

func NewStability(threshold float64) *Stability {
	return &Stability{
		name:      "stability",
		threshold: threshold,
		abscissa:  math.Inf(-1),
	}
}

func (s *Stability) Name() string {
	return s.name
}

// Observe records the eigenvalues of the square matrix a.
func (s *Stability) Observe(a mat.Matrix) error {
	var eig mat.Eigen
	if !eig.Factorize(a, mat.EigenNone) {
		return ErrEigen
	}
	values := eig.Values(nil)
	sort.Slice(values, func(i, j int) bool {
		if real(values[i]) != real(values[j]) {
			return real(values[i]) > real(values[j])
		}
		return imag(values[i]) > imag(values[j])
	})

	s.eigenvalues = values
	s.abscissa = math.Inf(-1)
	if len(values) > 0 {
		s.abscissa = real(values[0])
	}
	s.samples++
	return nil
}

// Value returns the spectral abscissa, the largest real part.
func (s *Stability) Value() float64 {
	return s.abscissa
}

// Eigenvalues returns the last observed spectrum, largest real part first.
func (s *Stability) Eigenvalues() []complex128 {
	return s.eigenvalues
}

func (s *Stability) Stable() bool {
	return s.samples > 0 && s.abscissa < -s.threshold
}

func (s *Stability) Reset() {
	s.eigenvalues = nil
	s.abscissa = math.Inf(-1)
	s.samples = 0
}
