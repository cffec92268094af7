// Package symbolic provides decision variables and sparse affine expressions
// for embedding linearized dynamics in an external mathematical program.
//
// A [Program] allocates [Variable] values with stable ids. An [Affine] is a
// constant plus terms over those variables, kept sorted by variable id so its
// string form and term order are deterministic.
package symbolic
