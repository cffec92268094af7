// Package control solves continuous-time LQR problems and applies the
// resulting linear feedback.
//
// [SolveRiccati] returns the stabilizing solution of the continuous
// algebraic Riccati equation
//
//	AᵀX + XA − XBR⁻¹BᵀX + Q = 0
//
// from the ordered real Schur form of the Hamiltonian matrix. [Gain] turns
// it into K = R⁻¹BᵀX, and [LQR] applies u = u0 − K(x − x0).
//
// # Usage
//
//	k, _, err := control.Gain(a, b, q, r)
//	ctrl := control.NewLQR(k, x0, u0)
//	u := ctrl.Compute(x)
package control
