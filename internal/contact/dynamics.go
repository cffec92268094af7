package contact

import (
	"errors"

	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/contactlqr/internal/dual"
	"github.com/san-kum/contactlqr/internal/dynamo"
	"github.com/san-kum/contactlqr/internal/linalg"
	"github.com/san-kum/contactlqr/internal/linearize"
	"github.com/san-kum/contactlqr/internal/multibody"
)

// Linearization is ẋ ≈ A·(x − x0) + B·(u − u0) + C about a static posture.
type Linearization struct {
	A *mat.Dense // 2nv×2nv
	B *mat.Dense // 2nv×nv
	C []float64  // ẋ at (x0, u0)
}

// ConstrainedDynamics returns [v; v̇] with v̇ = Φ·S·input − Φ·h, the
// acceleration that keeps Jc·v̇ = 0. An empty jc leaves the dynamics
// unconstrained.
func ConstrainedDynamics(state *multibody.State, input []float64, jc mat.Matrix) ([]float64, error) {
	m := state.Mechanism()
	if err := dynamo.CheckLen("input", m.Dims.NV, len(input)); err != nil {
		return nil, err
	}
	if err := checkJacobian(m, jc); err != nil {
		return nil, err
	}

	s := multibody.NewState(m)
	if err := s.SetConfiguration(state.Configuration()); err != nil {
		return nil, err
	}
	if err := s.SetVelocity(state.Velocity()); err != nil {
		return nil, err
	}
	vdot, err := accelerate(s, dual.Consts(input), jc)
	if err != nil {
		return nil, err
	}
	return dynamo.Stack(state.Velocity(), dual.Values(vdot)), nil
}

// Linearize differentiates the constrained dynamics with respect to the
// stacked state [q; v] and the input at (state0, input0). state0 must be
// static.
func Linearize(state0 *multibody.State, input0 []float64, jc mat.Matrix) (*Linearization, error) {
	if !state0.IsStatic() {
		return nil, &dynamo.PreconditionError{Op: "linearize constrained", Reason: "reference velocity is not zero"}
	}
	m := state0.Mechanism()
	d := m.Dims
	if d.NQ != d.NV {
		return nil, &dynamo.DimensionError{What: "configuration (must equal velocity count)", Want: d.NV, Got: d.NQ}
	}
	if err := dynamo.CheckLen("input", d.NV, len(input0)); err != nil {
		return nil, err
	}
	if err := checkJacobian(m, jc); err != nil {
		return nil, err
	}

	nx := d.Tangent()
	width := nx + d.NV
	s := multibody.NewState(m)
	if err := s.SetConfiguration(state0.Configuration()); err != nil {
		return nil, err
	}
	if err := s.SeedTangent(width); err != nil {
		return nil, err
	}
	u := dual.SeedAt(input0, nx, width)

	vdot, err := accelerate(s, u, jc)
	if err != nil {
		return nil, err
	}
	xdot := append(append([]dual.Dual(nil), s.DualVelocity()...), vdot...)
	c, jac := linearize.Differentiate(xdot, width)

	return &Linearization{
		A: mat.DenseCopyOf(jac.Slice(0, nx, 0, nx)),
		B: mat.DenseCopyOf(jac.Slice(0, nx, nx, width)),
		C: c,
	}, nil
}

// accelerate evaluates Φ·(S·u − h) on s. The contact Jacobian is held
// constant.
func accelerate(s *multibody.State, u []dual.Dual, jc mat.Matrix) ([]dual.Dual, error) {
	m := s.Mechanism()
	mass := s.MassMatrix()
	h := s.BiasForce()

	su := dual.ConstMatVec(linalg.Rows(Selection(m)), u)
	rhs := make([]dual.Dual, len(h))
	for i := range h {
		rhs[i] = su[i].Sub(h[i])
	}

	// One factorization for M⁻¹(Su − h) and M⁻¹Jcᵀ.
	var jcRows [][]float64
	if jc != nil {
		jcRows = linalg.Rows(jc)
	}
	k := len(jcRows)
	b := make([][]dual.Dual, len(rhs))
	for i := range rhs {
		b[i] = make([]dual.Dual, k+1)
		b[i][0] = rhs[i]
		for r := 0; r < k; r++ {
			b[i][r+1] = dual.Const(jcRows[r][i])
		}
	}
	x, err := dual.Solve(mass, b)
	if err != nil {
		return nil, singular(err, "M")
	}
	w := make([]dual.Dual, len(x))
	for i := range x {
		w[i] = x[i][0]
	}
	if k == 0 {
		return w, nil
	}

	// λ = (JcM⁻¹Jcᵀ)⁻¹·Jc·w, v̇ = w − M⁻¹Jcᵀ·λ.
	y := make([][]dual.Dual, k)
	for r := range y {
		y[r] = make([]dual.Dual, k)
	}
	for c := 0; c < k; c++ {
		col := make([]dual.Dual, len(x))
		for i := range x {
			col[i] = x[i][c+1]
		}
		for r, v := range dual.ConstMatVec(jcRows, col) {
			y[r][c] = v
		}
	}
	lambda, err := dual.SolveVec(y, dual.ConstMatVec(jcRows, w))
	if err != nil {
		return nil, singular(err, "JcM⁻¹Jcᵀ")
	}

	vdot := make([]dual.Dual, len(w))
	for i := range w {
		acc := w[i]
		for r := 0; r < k; r++ {
			acc = acc.Sub(x[i][r+1].Mul(lambda[r]))
		}
		vdot[i] = acc
	}
	return vdot, nil
}

func singular(err error, name string) error {
	if errors.Is(err, dual.ErrSingular) {
		return &dynamo.SingularMatrixError{Op: "constrained dynamics", Matrix: name}
	}
	return err
}

func checkJacobian(m *multibody.Mechanism, jc mat.Matrix) error {
	if jc == nil || linalg.IsEmpty(jc) {
		return nil
	}
	_, c := jc.Dims()
	return dynamo.CheckLen("contact jacobian columns", m.Dims.NV, c)
}
