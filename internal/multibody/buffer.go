package multibody

import "github.com/san-kum/contactlqr/internal/dynamo"

// StateBuffer is a flat record of NQ+NV+NA scalars with three aliasing
// sub-views. Writes through a view mutate the flat storage. The buffer is
// never resized.
type StateBuffer[T any] struct {
	data []T
	dims Dims
}

// NewStateBuffer wraps data, which must hold exactly NQ+NV+NA entries. The
// buffer aliases data.
func NewStateBuffer[T any](m *Mechanism, data []T) (*StateBuffer[T], error) {
	if err := dynamo.CheckLen("state buffer", m.Dims.Len(), len(data)); err != nil {
		return nil, err
	}
	return &StateBuffer[T]{data: data, dims: m.Dims}, nil
}

// MakeStateBuffer allocates a zeroed buffer for m.
func MakeStateBuffer[T any](m *Mechanism) *StateBuffer[T] {
	return &StateBuffer[T]{data: make([]T, m.Dims.Len()), dims: m.Dims}
}

func (b *StateBuffer[T]) Dims() Dims { return b.dims }

// Data returns the flat storage.
func (b *StateBuffer[T]) Data() []T { return b.data }

// Configuration returns the first NQ entries.
func (b *StateBuffer[T]) Configuration() []T {
	return b.view(0, b.dims.NQ)
}

// Velocity returns the NV entries after the configuration.
func (b *StateBuffer[T]) Velocity() []T {
	return b.view(b.dims.NQ, b.dims.NV)
}

// Additional returns the trailing NA entries; empty when NA is zero.
func (b *StateBuffer[T]) Additional() []T {
	return b.view(b.dims.NQ+b.dims.NV, b.dims.NA)
}

// Tangent returns the stacked configuration and velocity entries.
func (b *StateBuffer[T]) Tangent() []T {
	return b.view(0, b.dims.Tangent())
}

// view caps the capacity so appends cannot spill into a neighbouring view.
func (b *StateBuffer[T]) view(offset, n int) []T {
	return b.data[offset : offset+n : offset+n]
}

// CopyToState writes the buffer values into s.
func CopyToState(b *StateBuffer[float64], s *State) error {
	if err := s.SetConfiguration(b.Configuration()); err != nil {
		return err
	}
	if err := s.SetVelocity(b.Velocity()); err != nil {
		return err
	}
	return s.SetAdditional(b.Additional())
}

// CopyFromState overwrites the buffer with the primal values of s.
func CopyFromState(b *StateBuffer[float64], s *State) error {
	if err := dynamo.CheckLen("state buffer", s.mech.Dims.Len(), len(b.data)); err != nil {
		return err
	}
	copy(b.Configuration(), s.Configuration())
	copy(b.Velocity(), s.Velocity())
	copy(b.Additional(), s.Additional())
	return nil
}
