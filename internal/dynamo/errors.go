package dynamo

import (
	"errors"
	"fmt"
)

// Domain errors for linearization and synthesis.
var (
	// ErrDimension indicates a buffer, view or matrix with the wrong length.
	ErrDimension = errors.New("dynamo: dimension mismatch")

	// ErrUnresolvedValue indicates a decision variable without an assigned value.
	ErrUnresolvedValue = errors.New("dynamo: unresolved variable value")

	// ErrPrecondition indicates a reference posture that is not static.
	ErrPrecondition = errors.New("dynamo: precondition violated")

	// ErrSingularMatrix indicates a matrix that had to be inverted but is singular.
	ErrSingularMatrix = errors.New("dynamo: singular matrix")

	// ErrNoStabilizingSolution indicates the Riccati equation has no stabilizing solution.
	ErrNoStabilizingSolution = errors.New("dynamo: no stabilizing riccati solution")

	// ErrUnknownMechanism indicates a mechanism name missing from the registry.
	ErrUnknownMechanism = errors.New("dynamo: unknown mechanism")
)

// DimensionError reports a length mismatch.
type DimensionError struct {
	What string
	Want int
	Got  int
}

func (e *DimensionError) Error() string {
	return fmt.Sprintf("dynamo: %s: want length %d, got %d", e.What, e.Want, e.Got)
}

func (e *DimensionError) Unwrap() error {
	return ErrDimension
}

// CheckLen returns a *DimensionError when got != want.
func CheckLen(what string, want, got int) error {
	if want != got {
		return &DimensionError{What: what, Want: want, Got: got}
	}
	return nil
}

// UnresolvedValueError names the variable that has no value.
type UnresolvedValueError struct {
	Variable string
}

func (e *UnresolvedValueError) Error() string {
	return fmt.Sprintf("dynamo: variable %q has no assigned value", e.Variable)
}

func (e *UnresolvedValueError) Unwrap() error {
	return ErrUnresolvedValue
}

// PreconditionError wraps an operation whose inputs violate its contract.
type PreconditionError struct {
	Op     string
	Reason string
}

func (e *PreconditionError) Error() string {
	return fmt.Sprintf("dynamo: %s: %s", e.Op, e.Reason)
}

func (e *PreconditionError) Unwrap() error {
	return ErrPrecondition
}

// SingularMatrixError names the matrix that could not be inverted.
type SingularMatrixError struct {
	Op     string
	Matrix string
}

func (e *SingularMatrixError) Error() string {
	return fmt.Sprintf("dynamo: %s: %s is singular", e.Op, e.Matrix)
}

func (e *SingularMatrixError) Unwrap() error {
	return ErrSingularMatrix
}
