package models

import (
	"github.com/san-kum/contactlqr/internal/dual"
	"github.com/san-kum/contactlqr/internal/multibody"
)

// DoublePendulum has point masses at the link ends. Both angles are measured
// from the downward vertical in the world frame.
type DoublePendulum struct {
	M1, M2  float64
	L1, L2  float64
	Gravity float64
	Effort  float64
}

func NewDoublePendulum() *DoublePendulum {
	return &DoublePendulum{
		M1: DefaultMass, M2: DefaultMass,
		L1: DefaultLength, L2: DefaultLength,
		Gravity: DefaultGravity,
		Effort:  DefaultEffort,
	}
}

func (d *DoublePendulum) Mechanism() *multibody.Mechanism {
	return &multibody.Mechanism{
		Name: "double_pendulum",
		Dims: multibody.Dims{NQ: 2, NV: 2},
		Joints: []multibody.Joint{
			{Name: "shoulder", Kind: multibody.Revolute, Index: 0, EffortLower: -d.Effort, EffortUpper: d.Effort},
			{Name: "elbow", Kind: multibody.Revolute, Index: 1, EffortLower: -d.Effort, EffortUpper: d.Effort},
		},
		Bodies: []multibody.Body{{Name: "upper"}, {Name: "lower"}},
		Model:  d,
	}
}

// Tip returns the second point mass.
func (d *DoublePendulum) Tip() multibody.Point {
	return multibody.Point{Body: 1, Offset: [3]float64{0, 0, -d.L2}}
}

func (d *DoublePendulum) MassMatrix(q []dual.Dual) [][]dual.Dual {
	m1, m2, l1, l2 := d.M1, d.M2, d.L1, d.L2
	coupling := q[0].Sub(q[1]).Cos().Scale(m2 * l1 * l2)
	return [][]dual.Dual{
		{dual.Const((m1 + m2) * l1 * l1), coupling},
		{coupling, dual.Const(m2 * l2 * l2)},
	}
}

func (d *DoublePendulum) BiasForce(q, v []dual.Dual) []dual.Dual {
	m1, m2, l1, l2, g := d.M1, d.M2, d.L1, d.L2, d.Gravity
	sinD := q[0].Sub(q[1]).Sin()

	h1 := sinD.Mul(v[1].Square()).Scale(m2 * l1 * l2).
		Add(q[0].Sin().Scale((m1 + m2) * g * l1))
	h2 := sinD.Mul(v[0].Square()).Scale(-m2 * l1 * l2).
		Add(q[1].Sin().Scale(m2 * g * l2))
	return []dual.Dual{h1, h2}
}

func (d *DoublePendulum) elbow(q []dual.Dual) [3]dual.Dual {
	return multibody.Rotate(multibody.RotY(q[0]), multibody.Vec([3]float64{0, 0, -d.L1}))
}

func (d *DoublePendulum) BodyPose(q []dual.Dual, body int) multibody.Pose {
	if body == 0 {
		return multibody.Pose{Rot: multibody.RotY(q[0]), Pos: multibody.Vec([3]float64{})}
	}
	return multibody.Pose{Rot: multibody.RotY(q[1]), Pos: d.elbow(q)}
}

func (d *DoublePendulum) BodyTwist(q, v []dual.Dual, body int) multibody.Twist {
	zero := dual.Const(0)
	upper := multibody.Twist{
		Linear:  multibody.Vec([3]float64{}),
		Angular: [3]dual.Dual{zero, v[0], zero},
	}
	if body == 0 {
		return upper
	}
	return multibody.Twist{
		Linear:  upper.PointVelocity(d.elbow(q)),
		Angular: [3]dual.Dual{zero, v[1], zero},
	}
}
