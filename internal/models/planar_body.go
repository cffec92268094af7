package models

import (
	"github.com/san-kum/contactlqr/internal/dual"
	"github.com/san-kum/contactlqr/internal/multibody"
)

// PlanarBody is a rigid body moving in the x-z plane with configuration
// (x, z, pitch). Every coordinate is motorized.
type PlanarBody struct {
	Mass    float64
	Inertia float64
	Gravity float64
	Effort  float64
}

func NewPlanarBody() *PlanarBody {
	return &PlanarBody{
		Mass:    DefaultMass,
		Inertia: 0.1,
		Gravity: DefaultGravity,
		Effort:  100.0,
	}
}

func (b *PlanarBody) Mechanism() *multibody.Mechanism {
	return &multibody.Mechanism{
		Name: "planar_body",
		Dims: multibody.Dims{NQ: 3, NV: 3},
		Joints: []multibody.Joint{
			{Name: "x", Kind: multibody.Prismatic, Index: 0, EffortLower: -b.Effort, EffortUpper: b.Effort},
			{Name: "z", Kind: multibody.Prismatic, Index: 1, EffortLower: -b.Effort, EffortUpper: b.Effort},
			{Name: "pitch", Kind: multibody.Revolute, Index: 2, EffortLower: -b.Effort, EffortUpper: b.Effort},
		},
		Bodies: []multibody.Body{{Name: "body"}},
		Model:  b,
	}
}

func (b *PlanarBody) MassMatrix(q []dual.Dual) [][]dual.Dual {
	zero := dual.Const(0)
	return [][]dual.Dual{
		{dual.Const(b.Mass), zero, zero},
		{zero, dual.Const(b.Mass), zero},
		{zero, zero, dual.Const(b.Inertia)},
	}
}

func (b *PlanarBody) BiasForce(q, v []dual.Dual) []dual.Dual {
	return []dual.Dual{dual.Const(0), dual.Const(b.Mass * b.Gravity), dual.Const(0)}
}

func (b *PlanarBody) BodyPose(q []dual.Dual, body int) multibody.Pose {
	return multibody.Pose{
		Rot: multibody.RotY(q[2]),
		Pos: [3]dual.Dual{q[0], dual.Const(0), q[1]},
	}
}

func (b *PlanarBody) BodyTwist(q, v []dual.Dual, body int) multibody.Twist {
	zero := dual.Const(0)
	return multibody.Twist{
		Linear:  [3]dual.Dual{v[0], zero, v[1]},
		Angular: [3]dual.Dual{zero, v[2], zero},
	}
}
