// Package linearize keeps an operating point and a linearization point for
// a mechanism and evaluates dynamics functionals as first-order Taylor
// models around the latter.
//
// The operating point is a StateBuffer of plain numbers (numeric mode) or of
// decision variables (symbolic mode). The linearization point is held twice:
// as a plain dynamics state and as a shadow state whose configuration and
// velocity carry the unit basis of the NQ+NV tangent space, so a single
// evaluation of a functional on the shadow yields both its value and its
// Jacobian.
//
// A LinearizedState is not safe for concurrent use.
package linearize
