// Package contact synthesizes LQR gains for mechanisms held by rigid
// contacts.
//
// The pipeline is:
//
//  1. [Jacobian] stacks the velocity Jacobians of the contact points and
//     drops rows no contact constrains.
//  2. [ConstrainedDynamics] eliminates the contact forces with the
//     projector Φ = (I − Jc̄·Jc)M⁻¹, Jc̄ = M⁻¹Jcᵀ(JcM⁻¹Jcᵀ)⁻¹.
//  3. [Linearize] differentiates the projected dynamics about a static
//     posture in one dual pass over [q; v; u].
//  4. [Synthesize] restricts the linear model to the nullspace of
//     diag(Jc, Jc), solves the reduced Riccati equation and expands the
//     gain back to the full state.
package contact
