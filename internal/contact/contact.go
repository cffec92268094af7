package contact

import (
	"fmt"
	"log/slog"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/contactlqr/internal/dual"
	"github.com/san-kum/contactlqr/internal/dynamo"
	"github.com/san-kum/contactlqr/internal/linalg"
	"github.com/san-kum/contactlqr/internal/linearize"
	"github.com/san-kum/contactlqr/internal/multibody"
)

// ZeroRowTolerance is the largest entry magnitude of a Jacobian row that is
// treated as unconstrained.
const ZeroRowTolerance = 1e-12

// Mode selects which velocity components a contact fixes.
type Mode int

const (
	// NoSlip fixes every world velocity component of the point.
	NoSlip Mode = iota
	// Frictionless fixes only the component along Normal.
	Frictionless
)

func (m Mode) String() string {
	switch m {
	case NoSlip:
		return "no_slip"
	case Frictionless:
		return "frictionless"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// ParseMode is the inverse of Mode.String.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "", "no_slip":
		return NoSlip, nil
	case "frictionless":
		return Frictionless, nil
	default:
		return 0, fmt.Errorf("contact: unknown mode %q", s)
	}
}

// Contact is a body-fixed point held by the environment.
type Contact struct {
	Point  multibody.Point
	Mode   Mode
	Normal [3]float64 // world frame, used by Frictionless
}

// velocity returns the functional whose Jacobian is the contact block.
func (c Contact) velocity() (linearize.Functional, error) {
	if c.Mode == NoSlip {
		return func(s *multibody.State) (multibody.Quantity[dual.Dual], error) {
			return s.PointVelocity(c.Point, multibody.World)
		}, nil
	}
	norm := floats.Norm(c.Normal[:], 2)
	if norm == 0 {
		return nil, &dynamo.PreconditionError{Op: "contact jacobian", Reason: "frictionless contact without a normal"}
	}
	var n [3]float64
	floats.ScaleTo(n[:], 1/norm, c.Normal[:])
	return func(s *multibody.State) (multibody.Quantity[dual.Dual], error) {
		vel, err := s.PointVelocity(c.Point, multibody.World)
		if err != nil {
			return multibody.Quantity[dual.Dual]{}, err
		}
		return multibody.VectorQuantity([]dual.Dual{dual.ConstMatVec([][]float64{n[:]}, vel.Data)[0]}), nil
	}, nil
}

// Jacobian returns the stacked contact Jacobian at state, one nv-column
// block per contact, without the rows that are identically zero. No
// contacts, or contacts that constrain nothing, yield an empty matrix.
func Jacobian(state *multibody.State, contacts []Contact, opts ...Option) (*mat.Dense, error) {
	o := newOptions(opts)
	d := state.Mechanism().Dims

	ls, err := linearize.New(state, linearize.WithLogger(o.logger))
	if err != nil {
		return nil, err
	}

	var rows [][]float64
	dropped := 0
	for i, c := range contacts {
		f, err := c.velocity()
		if err != nil {
			return nil, fmt.Errorf("contact %d: %w", i, err)
		}
		jac, err := linearize.Jacobian(ls, f)
		if err != nil {
			return nil, fmt.Errorf("contact %d: %w", i, err)
		}
		r, _ := jac.Dims()
		for k := 0; k < r; k++ {
			row := mat.Row(nil, k, jac)[d.NQ : d.NQ+d.NV]
			if isZero(row) {
				dropped++
				continue
			}
			rows = append(rows, row)
		}
	}

	o.logger.Debug("contact jacobian",
		"mechanism", state.Mechanism().Name,
		"contacts", len(contacts),
		"rows", len(rows),
		"dropped", dropped)
	return linalg.FromRows(rows), nil
}

func isZero(row []float64) bool {
	for _, x := range row {
		if math.Abs(x) > ZeroRowTolerance {
			return false
		}
	}
	return true
}

// Selection returns the nv×nv actuation selection: identity on the
// velocity coordinates of motorized joints, zero elsewhere.
func Selection(m *multibody.Mechanism) *mat.Dense {
	d := make([]float64, m.Dims.NV)
	for _, j := range m.Joints {
		if j.Motorized() {
			d[j.Index] = 1
		}
	}
	return linalg.Diag(d)
}

// GravityCompensation returns S·h(q, 0), the generalized force that holds
// the configuration of state still when no contact force is needed.
func GravityCompensation(state *multibody.State) ([]float64, error) {
	m := state.Mechanism()
	s := multibody.NewState(m)
	if err := s.SetConfiguration(state.Configuration()); err != nil {
		return nil, err
	}
	h := s.BiasForceVec()
	var u mat.VecDense
	u.MulVec(Selection(m), h)
	return u.RawVector().Data, nil
}

// Option configures the contact pipeline.
type Option func(*options)

type options struct {
	logger   *slog.Logger
	rankTol  float64
	recorder Recorder
}

// Recorder observes synthesis outcomes.
type Recorder interface {
	ObserveSynthesis(mechanism string, seconds float64, err error)
}

// WithLogger sets the logger used for debug events.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// WithRankTolerance sets the singular value cutoff of the nullspace
// computation. Zero selects the default, max(r, c)·σmax·ε.
func WithRankTolerance(tol float64) Option {
	return func(o *options) {
		o.rankTol = tol
	}
}

// WithRecorder reports every synthesis to r.
func WithRecorder(r Recorder) Option {
	return func(o *options) {
		o.recorder = r
	}
}
