package linearize

import (
	"log/slog"

	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/contactlqr/internal/dual"
	"github.com/san-kum/contactlqr/internal/dynamo"
	"github.com/san-kum/contactlqr/internal/logging"
	"github.com/san-kum/contactlqr/internal/multibody"
	"github.com/san-kum/contactlqr/internal/symbolic"
)

// Functional is a dynamics-derived quantity evaluated on a state.
type Functional func(s *multibody.State) (multibody.Quantity[dual.Dual], error)

// Option configures a LinearizedState.
type Option func(*options)

type options struct {
	logger *slog.Logger
}

// WithLogger sets the logger used for debug events.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// LinearizedState couples an operating point of scalar type T with a
// linearization point and its derivative-seeded shadow.
type LinearizedState[T any] struct {
	current   *multibody.StateBuffer[T]
	reference *multibody.State
	shadow    *multibody.State
	logger    *slog.Logger
}

// New returns a numeric LinearizedState whose operating point and
// linearization point are both the primal values of ref.
func New(ref *multibody.State, opts ...Option) (*LinearizedState[float64], error) {
	m := ref.Mechanism()
	current := multibody.MakeStateBuffer[float64](m)
	if err := multibody.CopyFromState(current, ref); err != nil {
		return nil, err
	}
	return build(m, current, current.Data(), opts)
}

// NewSymbolic returns a LinearizedState whose operating point is the
// decision variables in vars. The linearization point is their assigned
// values; every variable must have one.
func NewSymbolic(m *multibody.Mechanism, vars *multibody.StateBuffer[*symbolic.Variable], opts ...Option) (*LinearizedState[*symbolic.Variable], error) {
	if err := dynamo.CheckLen("variable buffer", m.Dims.Len(), len(vars.Data())); err != nil {
		return nil, err
	}
	values, err := symbolic.Resolve(vars.Data())
	if err != nil {
		return nil, err
	}
	return build(m, vars, values, opts)
}

func build[T any](m *multibody.Mechanism, current *multibody.StateBuffer[T], values []float64, opts []Option) (*LinearizedState[T], error) {
	o := options{logger: logging.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}

	buf, err := multibody.NewStateBuffer(m, append([]float64(nil), values...))
	if err != nil {
		return nil, err
	}
	reference := multibody.NewState(m)
	if err := multibody.CopyToState(buf, reference); err != nil {
		return nil, err
	}
	shadow := reference.Clone()
	if err := shadow.SeedTangent(m.Dims.Tangent()); err != nil {
		return nil, err
	}
	return &LinearizedState[T]{
		current:   current,
		reference: reference,
		shadow:    shadow,
		logger:    o.logger,
	}, nil
}

// Mechanism returns the mechanism being linearized.
func (ls *LinearizedState[T]) Mechanism() *multibody.Mechanism {
	return ls.reference.Mechanism()
}

// Current returns the operating point. Writes through its views move the
// operating point.
func (ls *LinearizedState[T]) Current() *multibody.StateBuffer[T] {
	return ls.current
}

// Reference returns the linearization point.
func (ls *LinearizedState[T]) Reference() *multibody.State {
	return ls.reference
}

// Width returns the number of tangent directions, NQ+NV.
func (ls *LinearizedState[T]) Width() int {
	return ls.Mechanism().Dims.Tangent()
}

// SetCurrent moves the operating point. A nil part is left unchanged. The
// linearization point is not touched.
func (ls *LinearizedState[T]) SetCurrent(q, v []T) error {
	d := ls.Mechanism().Dims
	if q != nil {
		if err := dynamo.CheckLen("configuration", d.NQ, len(q)); err != nil {
			return err
		}
	}
	if v != nil {
		if err := dynamo.CheckLen("velocity", d.NV, len(v)); err != nil {
			return err
		}
	}
	if q != nil {
		copy(ls.current.Configuration(), q)
	}
	if v != nil {
		copy(ls.current.Velocity(), v)
	}
	return nil
}

// SetLinearization re-centers the linearization point. A nil part is left
// unchanged. The shadow primals follow the reference; its tangent seeding is
// kept and its cached quantities are dropped. The operating point is not
// touched.
func (ls *LinearizedState[T]) SetLinearization(q, v []float64) error {
	d := ls.Mechanism().Dims
	if q != nil {
		if err := dynamo.CheckLen("configuration", d.NQ, len(q)); err != nil {
			return err
		}
	}
	if v != nil {
		if err := dynamo.CheckLen("velocity", d.NV, len(v)); err != nil {
			return err
		}
	}
	for _, s := range []*multibody.State{ls.reference, ls.shadow} {
		if q != nil {
			if err := s.SetConfiguration(q); err != nil {
				return err
			}
		}
		if v != nil {
			if err := s.SetVelocity(v); err != nil {
				return err
			}
		}
	}
	ls.logger.Debug("linearization re-centered",
		"mechanism", ls.Mechanism().Name,
		"q", ls.reference.Configuration(),
		"v", ls.reference.Velocity())
	return nil
}

// point returns the stacked configuration and velocity of the linearization
// point.
func (ls *LinearizedState[T]) point() []float64 {
	return dynamo.Stack(ls.reference.Configuration(), ls.reference.Velocity())
}

// expand evaluates f on the shadow state and splits the result into its
// value and Jacobian.
func (ls *LinearizedState[T]) expand(f Functional) (multibody.Quantity[dual.Dual], []float64, *mat.Dense, error) {
	out, err := f(ls.shadow)
	if err != nil {
		return multibody.Quantity[dual.Dual]{}, nil, nil, err
	}
	v0, jac := Differentiate(out.Data, ls.Width())
	ls.logger.Debug("jacobian extracted",
		"mechanism", ls.Mechanism().Name,
		"kind", out.Kind,
		"rows", len(v0),
		"cols", ls.Width())
	return out, v0, jac, nil
}

// Differentiate splits duals into primal values and the len(values)×width
// matrix of their partials.
func Differentiate(values []dual.Dual, width int) ([]float64, *mat.Dense) {
	v0 := dual.Values(values)
	if len(values) == 0 || width == 0 {
		return v0, &mat.Dense{}
	}
	jac := mat.NewDense(len(values), width, nil)
	for i, x := range values {
		for j := 0; j < width; j++ {
			jac.Set(i, j, x.Partial(j))
		}
	}
	return v0, jac
}
