package models

import (
	"github.com/san-kum/contactlqr/internal/dual"
	"github.com/san-kum/contactlqr/internal/multibody"
)

const (
	DefaultMass    = 1.0
	DefaultLength  = 1.0
	DefaultGravity = 9.81
	DefaultEffort  = 50.0
)

// Pendulum hangs from the world origin; theta = 0 is straight down.
type Pendulum struct {
	Mass    float64
	Length  float64
	Damping float64
	Gravity float64
	Effort  float64
}

func NewPendulum() *Pendulum {
	return &Pendulum{
		Mass:    DefaultMass,
		Length:  DefaultLength,
		Damping: 0.1,
		Gravity: DefaultGravity,
		Effort:  DefaultEffort,
	}
}

// Mechanism describes the pendulum as a one-joint multibody system.
func (p *Pendulum) Mechanism() *multibody.Mechanism {
	return &multibody.Mechanism{
		Name: "pendulum",
		Dims: multibody.Dims{NQ: 1, NV: 1},
		Joints: []multibody.Joint{
			{Name: "hinge", Kind: multibody.Revolute, Index: 0, EffortLower: -p.Effort, EffortUpper: p.Effort},
		},
		Bodies: []multibody.Body{{Name: "bob"}},
		Model:  p,
	}
}

// Tip returns the bob as a body point.
func (p *Pendulum) Tip() multibody.Point {
	return multibody.Point{Body: 0, Offset: [3]float64{0, 0, -p.Length}}
}

func (p *Pendulum) MassMatrix(q []dual.Dual) [][]dual.Dual {
	return [][]dual.Dual{{dual.Const(p.Mass * p.Length * p.Length)}}
}

func (p *Pendulum) BiasForce(q, v []dual.Dual) []dual.Dual {
	gravity := q[0].Sin().Scale(p.Mass * p.Gravity * p.Length)
	return []dual.Dual{v[0].Scale(p.Damping).Add(gravity)}
}

func (p *Pendulum) BodyPose(q []dual.Dual, body int) multibody.Pose {
	return multibody.Pose{Rot: multibody.RotY(q[0]), Pos: multibody.Vec([3]float64{})}
}

func (p *Pendulum) BodyTwist(q, v []dual.Dual, body int) multibody.Twist {
	zero := dual.Const(0)
	return multibody.Twist{
		Linear:  multibody.Vec([3]float64{}),
		Angular: [3]dual.Dual{zero, v[0], zero},
	}
}
