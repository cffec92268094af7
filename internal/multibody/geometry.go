package multibody

import "github.com/san-kum/contactlqr/internal/dual"

type (
	vec3 = [3]dual.Dual
	mat3 = [3][3]dual.Dual
)

// Identity returns the identity rotation.
func Identity() [3][3]dual.Dual {
	var r mat3
	for i := range r {
		for j := range r[i] {
			r[i][j] = dual.Const(0)
		}
		r[i][i] = dual.Const(1)
	}
	return r
}

// RotY returns the rotation by angle about +y.
func RotY(angle dual.Dual) [3][3]dual.Dual {
	s, c := angle.Sin(), angle.Cos()
	zero, one := dual.Const(0), dual.Const(1)
	return mat3{
		{c, zero, s},
		{zero, one, zero},
		{s.Neg(), zero, c},
	}
}

// Vec lifts a constant vector.
func Vec(x [3]float64) [3]dual.Dual {
	return vec3{dual.Const(x[0]), dual.Const(x[1]), dual.Const(x[2])}
}

func mulMat(a, b mat3) mat3 {
	var out mat3
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			out[i][j] = a[i][0].Mul(b[0][j]).Add(a[i][1].Mul(b[1][j])).Add(a[i][2].Mul(b[2][j]))
		}
	}
	return out
}

func transpose(a mat3) mat3 {
	var out mat3
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			out[i][j] = a[j][i]
		}
	}
	return out
}

// Rotate returns r*x.
func Rotate(r [3][3]dual.Dual, x [3]dual.Dual) [3]dual.Dual {
	var out vec3
	for i := 0; i < 3; i++ {
		out[i] = r[i][0].Mul(x[0]).Add(r[i][1].Mul(x[1])).Add(r[i][2].Mul(x[2]))
	}
	return out
}

// AddVec returns a+b.
func AddVec(a, b [3]dual.Dual) [3]dual.Dual {
	return vec3{a[0].Add(b[0]), a[1].Add(b[1]), a[2].Add(b[2])}
}

// SubVec returns a-b.
func SubVec(a, b [3]dual.Dual) [3]dual.Dual {
	return vec3{a[0].Sub(b[0]), a[1].Sub(b[1]), a[2].Sub(b[2])}
}

// Cross returns a×b.
func Cross(a, b [3]dual.Dual) [3]dual.Dual {
	return vec3{
		a[1].Mul(b[2]).Sub(a[2].Mul(b[1])),
		a[2].Mul(b[0]).Sub(a[0].Mul(b[2])),
		a[0].Mul(b[1]).Sub(a[1].Mul(b[0])),
	}
}

// Apply maps body coordinates x to world coordinates.
func (p Pose) Apply(x [3]dual.Dual) [3]dual.Dual {
	return AddVec(Rotate(p.Rot, x), p.Pos)
}

// PointVelocity returns the world velocity of the body point at world-frame
// lever arm r from the body origin.
func (t Twist) PointVelocity(r [3]dual.Dual) [3]dual.Dual {
	return AddVec(t.Linear, Cross(t.Angular, r))
}
