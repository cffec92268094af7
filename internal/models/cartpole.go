package models

import (
	"github.com/san-kum/contactlqr/internal/dual"
	"github.com/san-kum/contactlqr/internal/multibody"
)

// CartPole is a cart on a rail carrying a uniform pole; theta = 0 is
// upright. Only the cart is motorized.
type CartPole struct {
	CartMass   float64
	PoleMass   float64
	PoleLength float64 // pivot to pole center of mass
	Gravity    float64
	Effort     float64
}

func NewCartPole() *CartPole {
	return &CartPole{
		CartMass:   1.0,
		PoleMass:   0.1,
		PoleLength: 1.0,
		Gravity:    DefaultGravity,
		Effort:     20.0,
	}
}

func (c *CartPole) Mechanism() *multibody.Mechanism {
	return &multibody.Mechanism{
		Name: "cartpole",
		Dims: multibody.Dims{NQ: 2, NV: 2},
		Joints: []multibody.Joint{
			{Name: "rail", Kind: multibody.Prismatic, Index: 0, EffortLower: -c.Effort, EffortUpper: c.Effort},
			{Name: "pivot", Kind: multibody.Revolute, Index: 1},
		},
		Bodies: []multibody.Body{{Name: "cart"}, {Name: "pole"}},
		Model:  c,
	}
}

// PoleTip returns the free end of the pole.
func (c *CartPole) PoleTip() multibody.Point {
	return multibody.Point{Body: 1, Offset: [3]float64{0, 0, 2 * c.PoleLength}}
}

func (c *CartPole) MassMatrix(q []dual.Dual) [][]dual.Dual {
	mp, l := c.PoleMass, c.PoleLength
	coupling := q[1].Cos().Scale(mp * l)
	return [][]dual.Dual{
		{dual.Const(c.CartMass + mp), coupling},
		{coupling, dual.Const(4.0 / 3.0 * mp * l * l)},
	}
}

func (c *CartPole) BiasForce(q, v []dual.Dual) []dual.Dual {
	mp, l := c.PoleMass, c.PoleLength
	sint := q[1].Sin()
	return []dual.Dual{
		sint.Mul(v[1].Square()).Scale(-mp * l),
		sint.Scale(-mp * c.Gravity * l),
	}
}

func (c *CartPole) BodyPose(q []dual.Dual, body int) multibody.Pose {
	zero := dual.Const(0)
	pos := [3]dual.Dual{q[0], zero, zero}
	if body == 0 {
		return multibody.Pose{Rot: multibody.Identity(), Pos: pos}
	}
	return multibody.Pose{Rot: multibody.RotY(q[1]), Pos: pos}
}

func (c *CartPole) BodyTwist(q, v []dual.Dual, body int) multibody.Twist {
	zero := dual.Const(0)
	linear := [3]dual.Dual{v[0], zero, zero}
	if body == 0 {
		return multibody.Twist{Linear: linear, Angular: multibody.Vec([3]float64{})}
	}
	return multibody.Twist{Linear: linear, Angular: [3]dual.Dual{zero, v[1], zero}}
}
