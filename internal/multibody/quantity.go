package multibody

import (
	"fmt"

	"github.com/san-kum/contactlqr/internal/dual"
)

// Kind tells how the data of a Quantity is interpreted.
type Kind int

const (
	// KindVector is a plain coordinate vector without frame information.
	KindVector Kind = iota
	// KindPoint is a location expressed in Frame, attached to Body.
	KindPoint
	// KindFreeVector is a direction or velocity expressed in Frame.
	KindFreeVector
	// KindTransform maps coordinates in Frame to coordinates in To. Data is
	// the row-major 3×3 rotation followed by the translation.
	KindTransform
)

func (k Kind) String() string {
	switch k {
	case KindVector:
		return "vector"
	case KindPoint:
		return "point"
	case KindFreeVector:
		return "free_vector"
	case KindTransform:
		return "transform"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Quantity is a dynamics-derived value together with its frame metadata.
type Quantity[T any] struct {
	Kind  Kind
	Frame FrameID
	To    FrameID
	Body  int
	Data  []T
}

// Len returns the number of coefficients.
func (q Quantity[T]) Len() int {
	return len(q.Data)
}

// WithData returns q's metadata with new coefficients.
func WithData[T, U any](q Quantity[T], data []U) Quantity[U] {
	return Quantity[U]{Kind: q.Kind, Frame: q.Frame, To: q.To, Body: q.Body, Data: data}
}

// VectorQuantity wraps plain coefficients.
func VectorQuantity(data []dual.Dual) Quantity[dual.Dual] {
	return Quantity[dual.Dual]{Kind: KindVector, Data: data}
}

// Coords returns the first three coefficients of a point or free vector.
func (q Quantity[T]) Coords() [3]T {
	return [3]T{q.Data[0], q.Data[1], q.Data[2]}
}

// Rotation returns the rotation block of a transform.
func (q Quantity[T]) Rotation() [3][3]T {
	var r [3][3]T
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			r[i][j] = q.Data[3*i+j]
		}
	}
	return r
}

// Translation returns the translation of a transform.
func (q Quantity[T]) Translation() [3]T {
	return [3]T{q.Data[9], q.Data[10], q.Data[11]}
}

func transformQuantity(from, to FrameID, rot mat3, pos vec3) Quantity[dual.Dual] {
	data := make([]dual.Dual, 0, 12)
	for i := 0; i < 3; i++ {
		data = append(data, rot[i][:]...)
	}
	data = append(data, pos[:]...)
	return Quantity[dual.Dual]{Kind: KindTransform, Frame: from, To: to, Data: data}
}
