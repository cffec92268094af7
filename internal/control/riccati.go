package control

import (
	"errors"
	"fmt"
	"log/slog"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/contactlqr/internal/dynamo"
	"github.com/san-kum/contactlqr/internal/linalg"
	"github.com/san-kum/contactlqr/internal/logging"
)

// Option configures a Riccati solve.
type Option func(*options)

type options struct {
	logger *slog.Logger
}

// WithLogger sets the logger used for debug events.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

func newOptions(opts []Option) options {
	o := options{logger: logging.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// SolveRiccati returns the stabilizing solution X of
// AᵀX + XA − XBR⁻¹BᵀX + Q = 0.
func SolveRiccati(a, b, q, r mat.Matrix, opts ...Option) (*mat.Dense, error) {
	o := newOptions(opts)
	n, m, err := checkDims(a, b, q, r)
	if err != nil {
		return nil, err
	}

	var rinv mat.Dense
	if err := rinv.Inverse(r); err != nil {
		return nil, &dynamo.SingularMatrixError{Op: "riccati", Matrix: "R"}
	}

	// Hamiltonian [[A, −BR⁻¹Bᵀ], [−Q, −Aᵀ]].
	var brinv, g mat.Dense
	brinv.Mul(b, &rinv)
	g.Mul(&brinv, b.T())
	z := mat.NewDense(2*n, 2*n, nil)
	z.Slice(0, n, 0, n).(*mat.Dense).Copy(a)
	z.Slice(0, n, n, 2*n).(*mat.Dense).Scale(-1, &g)
	z.Slice(n, 2*n, 0, n).(*mat.Dense).Scale(-1, q)
	z.Slice(n, 2*n, n, 2*n).(*mat.Dense).Scale(-1, a.T())

	schur, stable, err := linalg.OrderedSchur(z, func(re, _ float64) bool { return re < 0 })
	if err != nil {
		return nil, fmt.Errorf("%w: %v", dynamo.ErrNoStabilizingSolution, err)
	}
	if stable != n {
		return nil, fmt.Errorf("%w: hamiltonian has %d stable eigenvalues, want %d", dynamo.ErrNoStabilizingSolution, stable, n)
	}

	// X = U21·U11⁻¹, solved as U11ᵀXᵀ = U21ᵀ.
	u11 := schur.Z.Slice(0, n, 0, n)
	u21 := schur.Z.Slice(n, 2*n, 0, n)
	var xt mat.Dense
	if err := xt.Solve(u11.T(), u21.T()); err != nil {
		var cond mat.Condition
		if !errors.As(err, &cond) || math.IsInf(float64(cond), 1) {
			return nil, &dynamo.SingularMatrixError{Op: "riccati", Matrix: "U11"}
		}
		o.logger.Warn("ill-conditioned schur basis", "condition", float64(cond))
	}
	x := linalg.Symmetrize(xt.T())
	if linalg.NaNOrInf(x) {
		return nil, &dynamo.SingularMatrixError{Op: "riccati", Matrix: "U11"}
	}

	o.logger.Debug("riccati solved",
		"states", n,
		"inputs", m,
		"residual", Residual(a, b, q, r, x))
	return x, nil
}

// Gain returns the LQR gain K = R⁻¹BᵀX together with the Riccati solution X.
func Gain(a, b, q, r mat.Matrix, opts ...Option) (k, x *mat.Dense, err error) {
	x, err = SolveRiccati(a, b, q, r, opts...)
	if err != nil {
		return nil, nil, err
	}
	var bx mat.Dense
	bx.Mul(b.T(), x)
	k = new(mat.Dense)
	if err := k.Solve(r, &bx); err != nil {
		var cond mat.Condition
		if !errors.As(err, &cond) || math.IsInf(float64(cond), 1) {
			return nil, nil, &dynamo.SingularMatrixError{Op: "lqr gain", Matrix: "R"}
		}
	}
	return k, x, nil
}

// Residual returns the largest entry magnitude of AᵀX + XA − XBR⁻¹BᵀX + Q.
func Residual(a, b, q, r, x mat.Matrix) float64 {
	var rinv mat.Dense
	if err := rinv.Inverse(r); err != nil {
		return math.NaN()
	}
	var res, xa, xb, xbr, quad mat.Dense
	xa.Mul(x, a)
	res.Mul(a.T(), x)
	res.Add(&res, &xa)
	xb.Mul(x, b)
	xbr.Mul(&xb, &rinv)
	quad.Mul(&xbr, xb.T())
	res.Sub(&res, &quad)
	res.Add(&res, q)
	return linalg.MaxAbs(&res)
}

func checkDims(a, b, q, r mat.Matrix) (n, m int, err error) {
	n, c := a.Dims()
	if err := dynamo.CheckLen("A columns", n, c); err != nil {
		return 0, 0, err
	}
	br, m := b.Dims()
	if err := dynamo.CheckLen("B rows", n, br); err != nil {
		return 0, 0, err
	}
	if qr, qc := q.Dims(); qr != n || qc != n {
		return 0, 0, &dynamo.DimensionError{What: "Q", Want: n, Got: max(qr, qc)}
	}
	if rr, rc := r.Dims(); rr != m || rc != m {
		return 0, 0, &dynamo.DimensionError{What: "R", Want: m, Got: max(rr, rc)}
	}
	return n, m, nil
}
