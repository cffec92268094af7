// Package dual implements forward-mode automatic differentiation with dual
// numbers.
//
// A [Dual] carries a primal value and a vector of partial derivatives. The
// arithmetic methods propagate partials with the chain rule, so evaluating
// any expression built from them on seeded inputs yields exact first
// derivatives alongside the value.
//
// A Dual with an empty partial vector is an ordinary constant; mechanisms
// evaluate plain numbers and seeded numbers through the same code path.
//
//	x := dual.Seed([]float64{0.3, 1.2}, 2) // x[i] has partial e_i
//	y := x[0].Sin().Mul(x[1])
//	y.Value()      // sin(0.3)*1.2
//	y.Partial(0)   // cos(0.3)*1.2
package dual
