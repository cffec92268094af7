package linearize

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/contactlqr/internal/dynamo"
	"github.com/san-kum/contactlqr/internal/multibody"
	"github.com/san-kum/contactlqr/internal/symbolic"
)

// Evaluate returns the first-order approximation of f at the operating
// point, v0 + J*(x_current - x_linear), with f's metadata.
func Evaluate(ls *LinearizedState[float64], f Functional) (multibody.Quantity[float64], error) {
	out, v0, jac, err := ls.expand(f)
	if err != nil {
		return multibody.Quantity[float64]{}, err
	}
	if len(v0) == 0 {
		return multibody.WithData(out, v0), nil
	}

	dx := dynamo.State(ls.current.Tangent()).Sub(ls.point())
	var step mat.VecDense
	step.MulVec(jac, mat.NewVecDense(len(dx), dx))
	for i := range v0 {
		v0[i] += step.AtVec(i)
	}
	return multibody.WithData(out, v0), nil
}

// Jacobian returns the output×(NQ+NV) Jacobian of f at the linearization
// point.
func Jacobian[T any](ls *LinearizedState[T], f Functional) (*mat.Dense, error) {
	_, _, jac, err := ls.expand(f)
	if err != nil {
		return nil, err
	}
	return jac, nil
}

// EvaluateSymbolic returns, per output row, the affine first-order model of
// f over the operating-point variables. Coefficients with magnitude below
// minCoefficient are omitted; the constant is v0[i] - J[i,:]*x_linear over
// the full row.
func EvaluateSymbolic(ls *LinearizedState[*symbolic.Variable], f Functional, minCoefficient float64) (multibody.Quantity[symbolic.Affine], error) {
	out, v0, jac, err := ls.expand(f)
	if err != nil {
		return multibody.Quantity[symbolic.Affine]{}, err
	}

	vars := ls.current.Tangent()
	x0 := ls.point()
	exprs := make([]symbolic.Affine, len(v0))
	dropped := 0
	for i := range v0 {
		constant := v0[i]
		terms := make([]symbolic.Term, 0, len(vars))
		for j, v := range vars {
			c := jac.At(i, j)
			constant -= c * x0[j]
			if math.Abs(c) < minCoefficient {
				if c != 0 {
					dropped++
				}
				continue
			}
			terms = append(terms, symbolic.Term{Var: v, Coef: c})
		}
		exprs[i] = symbolic.NewAffine(constant, terms...)
	}
	if dropped > 0 {
		ls.logger.Debug("sparsified affine model", "dropped_terms", dropped, "min_coefficient", minCoefficient)
	}
	return multibody.WithData(out, exprs), nil
}
