package multibody

import (
	"fmt"

	"github.com/san-kum/contactlqr/internal/dual"
	"github.com/san-kum/contactlqr/internal/dynamo"
)

// Dims are the state dimensions of a mechanism.
type Dims struct {
	NQ int // configuration coordinates
	NV int // velocity coordinates
	NA int // additional scalar states
}

// Len returns NQ+NV+NA.
func (d Dims) Len() int { return d.NQ + d.NV + d.NA }

// Tangent returns NQ+NV, the number of linearization directions.
func (d Dims) Tangent() int { return d.NQ + d.NV }

type JointKind int

const (
	Revolute JointKind = iota
	Prismatic
)

func (k JointKind) String() string {
	switch k {
	case Revolute:
		return "revolute"
	case Prismatic:
		return "prismatic"
	default:
		return fmt.Sprintf("JointKind(%d)", int(k))
	}
}

// Joint is one single-degree-of-freedom joint.
type Joint struct {
	Name        string
	Kind        JointKind
	Index       int // velocity coordinate driven by the joint
	EffortLower float64
	EffortUpper float64
}

// Motorized reports whether the joint accepts any generalized force.
func (j Joint) Motorized() bool {
	return j.EffortLower != 0 || j.EffortUpper != 0
}

type Body struct {
	Name string
}

// Pose maps body coordinates to world coordinates: x_world = Rot*x + Pos.
type Pose struct {
	Rot [3][3]dual.Dual
	Pos [3]dual.Dual
}

// Twist is the world-frame velocity of a body origin and its angular
// velocity.
type Twist struct {
	Linear  [3]dual.Dual
	Angular [3]dual.Dual
}

// Model evaluates the dynamics of a mechanism. Implementations must build
// every output from the dual inputs so partials propagate.
type Model interface {
	MassMatrix(q []dual.Dual) [][]dual.Dual
	// BiasForce returns Coriolis, centrifugal and gravity terms.
	BiasForce(q, v []dual.Dual) []dual.Dual
	BodyPose(q []dual.Dual, body int) Pose
	BodyTwist(q, v []dual.Dual, body int) Twist
}

// Mechanism is an articulated multibody system.
type Mechanism struct {
	Name   string
	Dims   Dims
	Joints []Joint
	Bodies []Body
	Model  Model
}

// EffortBounds returns the actuation limits of joint i.
func (m *Mechanism) EffortBounds(joint int) (lower, upper float64) {
	j := m.Joints[joint]
	return j.EffortLower, j.EffortUpper
}

// BodyIndex looks a body up by name.
func (m *Mechanism) BodyIndex(name string) (int, bool) {
	for i, b := range m.Bodies {
		if b.Name == name {
			return i, true
		}
	}
	return 0, false
}

// Validate checks that joints address distinct velocity coordinates.
func (m *Mechanism) Validate() error {
	if m.Model == nil {
		return fmt.Errorf("multibody: mechanism %q has no model", m.Name)
	}
	seen := make(map[int]bool, len(m.Joints))
	for _, j := range m.Joints {
		if j.Index < 0 || j.Index >= m.Dims.NV {
			return &dynamo.DimensionError{What: "joint " + j.Name + " velocity index", Want: m.Dims.NV, Got: j.Index}
		}
		if seen[j.Index] {
			return fmt.Errorf("multibody: joint %q reuses velocity index %d", j.Name, j.Index)
		}
		seen[j.Index] = true
	}
	return nil
}

// FrameID identifies a coordinate frame. Frame 0 is the world.
type FrameID int

const World FrameID = 0

// BodyFrame returns the frame attached to body i.
func BodyFrame(body int) FrameID {
	return FrameID(body + 1)
}

// Point is a point fixed in a body.
type Point struct {
	Body   int
	Offset [3]float64
}
