package linearize

import (
	"fmt"

	"gonum.org/v1/gonum/floats"

	"github.com/san-kum/contactlqr/internal/dual"
	"github.com/san-kum/contactlqr/internal/dynamo"
	"github.com/san-kum/contactlqr/internal/multibody"
)

// SweepPoint is the linearization error at one operating-point offset.
type SweepPoint struct {
	Offset float64
	Error  float64
}

// Sweep moves the operating point along one configuration coordinate over
// [-span, span] in steps samples and records the Euclidean distance between
// the first-order model of f and f itself. The operating point is restored
// afterwards.
func Sweep(ls *LinearizedState[float64], f Functional, coordinate int, span float64, steps int) ([]SweepPoint, error) {
	d := ls.Mechanism().Dims
	if coordinate < 0 || coordinate >= d.NQ {
		return nil, &dynamo.PreconditionError{
			Op:     "sweep",
			Reason: fmt.Sprintf("coordinate %d outside [0, %d)", coordinate, d.NQ),
		}
	}
	if steps < 2 {
		return nil, &dynamo.PreconditionError{Op: "sweep", Reason: "need at least two samples"}
	}

	saved := dynamo.State(ls.current.Configuration()).Clone()
	defer func() { copy(ls.current.Configuration(), saved) }()

	base := ls.reference.Configuration()
	exact := ls.reference.Clone()
	offsets := make([]float64, steps)
	floats.Span(offsets, -span, span)

	out := make([]SweepPoint, 0, steps)
	for _, off := range offsets {
		q := dynamo.State(base).Clone()
		q[coordinate] += off
		if err := ls.SetCurrent(q, nil); err != nil {
			return nil, err
		}
		approx, err := Evaluate(ls, f)
		if err != nil {
			return nil, err
		}

		if err := exact.SetConfiguration(q); err != nil {
			return nil, err
		}
		if err := exact.SetVelocity(ls.current.Velocity()); err != nil {
			return nil, err
		}
		truth, err := f(exact)
		if err != nil {
			return nil, err
		}
		want := dual.Values(truth.Data)
		if len(want) != len(approx.Data) {
			return nil, &dynamo.DimensionError{What: "sweep output", Want: len(approx.Data), Got: len(want)}
		}
		out = append(out, SweepPoint{Offset: off, Error: floats.Distance(approx.Data, want, 2)})
	}
	ls.logger.Debug("linearization sweep",
		"mechanism", ls.Mechanism().Name,
		"coordinate", coordinate,
		"samples", steps)
	return out, nil
}

// PositionFunctional returns the world position of p.
func PositionFunctional(p multibody.Point) Functional {
	return func(s *multibody.State) (multibody.Quantity[dual.Dual], error) {
		return s.PointPosition(p)
	}
}

// BiasFunctional returns the bias force h(q, v).
func BiasFunctional(s *multibody.State) (multibody.Quantity[dual.Dual], error) {
	return multibody.VectorQuantity(s.BiasForce()), nil
}
