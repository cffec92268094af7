// Package models provides closed-form mechanisms for the linearization and
// contact synthesis pipelines.
//
// Every model evaluates its mass matrix, bias force and body kinematics on
// dual scalars, so the same code yields values and exact derivatives:
//
//   - [Pendulum]: one revolute joint with viscous damping
//   - [CartPole]: motorized cart with an unmotorized pole
//   - [DoublePendulum]: two revolute joints in absolute angles
//   - [PlanarBody]: floating body in the x-z plane (x, z, pitch)
//
// Use a [Registry] to look mechanisms up by name.
package models
