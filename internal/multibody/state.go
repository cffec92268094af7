package multibody

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/contactlqr/internal/dual"
	"github.com/san-kum/contactlqr/internal/dynamo"
)

// State is the dynamics state of a mechanism. Entries are duals: a plain
// state has empty partials, a seeded state carries tangent directions that
// every derived query propagates.
//
// State is not safe for concurrent use.
type State struct {
	mech *Mechanism
	q    []dual.Dual
	v    []dual.Dual
	a    []dual.Dual

	mass [][]dual.Dual
	bias []dual.Dual
}

// NewState returns a state at the zero configuration and velocity.
func NewState(m *Mechanism) *State {
	return &State{
		mech: m,
		q:    dual.Consts(make([]float64, m.Dims.NQ)),
		v:    dual.Consts(make([]float64, m.Dims.NV)),
		a:    dual.Consts(make([]float64, m.Dims.NA)),
	}
}

func (s *State) Mechanism() *Mechanism { return s.mech }

// Clone returns an independent copy of s, partials included.
func (s *State) Clone() *State {
	c := &State{mech: s.mech}
	c.q = cloneDuals(s.q)
	c.v = cloneDuals(s.v)
	c.a = cloneDuals(s.a)
	return c
}

// SetConfiguration replaces the primal configuration values; partials are
// kept.
func (s *State) SetConfiguration(q []float64) error {
	if err := dynamo.CheckLen("configuration", s.mech.Dims.NQ, len(q)); err != nil {
		return err
	}
	setPrimals(s.q, q)
	s.Invalidate()
	return nil
}

// SetVelocity replaces the primal velocity values; partials are kept.
func (s *State) SetVelocity(v []float64) error {
	if err := dynamo.CheckLen("velocity", s.mech.Dims.NV, len(v)); err != nil {
		return err
	}
	setPrimals(s.v, v)
	s.Invalidate()
	return nil
}

// SetAdditional replaces the additional state values.
func (s *State) SetAdditional(a []float64) error {
	if err := dynamo.CheckLen("additional", s.mech.Dims.NA, len(a)); err != nil {
		return err
	}
	setPrimals(s.a, a)
	s.Invalidate()
	return nil
}

// SeedTangent sets the partials of configuration entry i to e_i and of
// velocity entry j to e_{NQ+j} in a width-dimensional tangent space.
// Additional entries carry no partials.
func (s *State) SeedTangent(width int) error {
	d := s.mech.Dims
	if width < d.Tangent() {
		return &dynamo.DimensionError{What: "tangent width", Want: d.Tangent(), Got: width}
	}
	s.q = dual.SeedAt(dual.Values(s.q), 0, width)
	s.v = dual.SeedAt(dual.Values(s.v), d.NQ, width)
	s.Invalidate()
	return nil
}

// Invalidate drops cached derived quantities.
func (s *State) Invalidate() {
	s.mass = nil
	s.bias = nil
}

func (s *State) Configuration() []float64 { return dual.Values(s.q) }
func (s *State) Velocity() []float64      { return dual.Values(s.v) }
func (s *State) Additional() []float64    { return dual.Values(s.a) }

// DualConfiguration returns the configuration entries. The slice is shared
// with s and must not be modified.
func (s *State) DualConfiguration() []dual.Dual { return s.q }

// DualVelocity returns the velocity entries. The slice is shared with s and
// must not be modified.
func (s *State) DualVelocity() []dual.Dual { return s.v }

// IsStatic reports whether every velocity entry is zero.
func (s *State) IsStatic() bool {
	for _, x := range s.v {
		if x.Re != 0 {
			return false
		}
	}
	return true
}

// MassMatrix returns the joint-space inertia matrix M(q).
func (s *State) MassMatrix() [][]dual.Dual {
	if s.mass == nil {
		s.mass = s.mech.Model.MassMatrix(s.q)
	}
	return s.mass
}

// BiasForce returns h(q, v), the Coriolis, centrifugal and gravity terms.
func (s *State) BiasForce() []dual.Dual {
	if s.bias == nil {
		s.bias = s.mech.Model.BiasForce(s.q, s.v)
	}
	return s.bias
}

// MassMatrixDense returns the primal values of M(q).
func (s *State) MassMatrixDense() *mat.Dense {
	m := s.MassMatrix()
	n := len(m)
	out := mat.NewDense(n, n, nil)
	for i := range m {
		out.SetRow(i, dual.Values(m[i]))
	}
	return out
}

// BiasForceVec returns the primal values of h(q, v).
func (s *State) BiasForceVec() *mat.VecDense {
	return mat.NewVecDense(s.mech.Dims.NV, dual.Values(s.BiasForce()))
}

// Pose returns the world pose of frame f.
func (s *State) Pose(f FrameID) (Pose, error) {
	if f == World {
		return Pose{Rot: Identity(), Pos: Vec([3]float64{})}, nil
	}
	body := int(f) - 1
	if body < 0 || body >= len(s.mech.Bodies) {
		return Pose{}, fmt.Errorf("multibody: unknown frame %d", f)
	}
	return s.mech.Model.BodyPose(s.q, body), nil
}

// PointPosition returns the world location of p.
func (s *State) PointPosition(p Point) (Quantity[dual.Dual], error) {
	pose, err := s.Pose(BodyFrame(p.Body))
	if err != nil {
		return Quantity[dual.Dual]{}, err
	}
	x := pose.Apply(Vec(p.Offset))
	return Quantity[dual.Dual]{Kind: KindPoint, Frame: World, Body: p.Body, Data: x[:]}, nil
}

// PointVelocity returns the world velocity of p expressed in frame.
func (s *State) PointVelocity(p Point, frame FrameID) (Quantity[dual.Dual], error) {
	pose, err := s.Pose(BodyFrame(p.Body))
	if err != nil {
		return Quantity[dual.Dual]{}, err
	}
	twist := s.mech.Model.BodyTwist(s.q, s.v, p.Body)
	vel := twist.PointVelocity(Rotate(pose.Rot, Vec(p.Offset)))

	if frame != World {
		fp, err := s.Pose(frame)
		if err != nil {
			return Quantity[dual.Dual]{}, err
		}
		vel = Rotate(transpose(fp.Rot), vel)
	}
	return Quantity[dual.Dual]{Kind: KindFreeVector, Frame: frame, Body: p.Body, Data: vel[:]}, nil
}

// Transform returns the transform mapping coordinates in from to coordinates
// in to.
func (s *State) Transform(from, to FrameID) (Quantity[dual.Dual], error) {
	pf, err := s.Pose(from)
	if err != nil {
		return Quantity[dual.Dual]{}, err
	}
	pt, err := s.Pose(to)
	if err != nil {
		return Quantity[dual.Dual]{}, err
	}
	rt := transpose(pt.Rot)
	rot := mulMat(rt, pf.Rot)
	pos := Rotate(rt, SubVec(pf.Pos, pt.Pos))
	return transformQuantity(from, to, rot, pos), nil
}

func setPrimals(dst []dual.Dual, values []float64) {
	for i, x := range values {
		dst[i] = dst[i].WithValue(x)
	}
}

func cloneDuals(xs []dual.Dual) []dual.Dual {
	out := make([]dual.Dual, len(xs))
	for i, x := range xs {
		out[i] = x.WithValue(x.Re)
	}
	return out
}
