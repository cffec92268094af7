// Package dynamo provides the shared primitives of the contact control stack.
//
// It defines the error taxonomy used by every layer and the stacked vector
// types exchanged with an external control loop:
//
//   - [State]: stacked (configuration, velocity) vector
//   - [Control]: generalized force vector
//   - [DimensionError], [UnresolvedValueError], [PreconditionError],
//     [SingularMatrixError]: typed errors that unwrap to the package sentinels
//
// # Error handling
//
// Errors are raised at the call that detects them and are never retried
// internally. Callers match them with errors.Is:
//
//	if errors.Is(err, dynamo.ErrSingularMatrix) {
//		// fall back to an unconstrained gain
//	}
package dynamo
