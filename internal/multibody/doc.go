// Package multibody describes articulated mechanisms and their dynamics state.
//
// A [Mechanism] carries dimensions, joint metadata and a [Model] that
// evaluates the mass matrix, bias force and body kinematics on dual scalars.
// A [State] stores configuration and velocity as duals and answers derived
// queries (mass matrix, bias force, point velocity, frame transforms),
// caching what it computes until the next setter call.
//
// [StateBuffer] is the flat (configuration, velocity, additional) record with
// aliasing sub-views used as the operating point of a linearization.
//
// # Frames
//
// Frame 0 is the world. Body i owns frame i+1 ([BodyFrame]). Rotations use
// the planar convention of the shipped models: pitch is a rotation about +y.
package multibody
