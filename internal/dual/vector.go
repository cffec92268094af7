package dual

// Seed returns duals with primals values and partials equal to the first
// len(values) unit vectors of a width-dimensional tangent space.
func Seed(values []float64, width int) []Dual {
	return SeedAt(values, 0, width)
}

// SeedAt is like Seed but places the unit vectors starting at direction offset.
func SeedAt(values []float64, offset, width int) []Dual {
	out := make([]Dual, len(values))
	for i, v := range values {
		out[i] = Variable(v, offset+i, width)
	}
	return out
}

// Consts lifts plain numbers to duals without partials.
func Consts(values []float64) []Dual {
	out := make([]Dual, len(values))
	for i, v := range values {
		out[i] = Const(v)
	}
	return out
}

// Values extracts the primal values of xs.
func Values(xs []Dual) []float64 {
	out := make([]float64, len(xs))
	for i, x := range xs {
		out[i] = x.Re
	}
	return out
}

// Dot returns sum(a[i]*b[i]).
func Dot(a, b []Dual) Dual {
	var sum Dual
	for i := range a {
		sum = sum.Add(a[i].Mul(b[i]))
	}
	return sum
}

// MatVec returns m*x for a row-major matrix m.
func MatVec(m [][]Dual, x []Dual) []Dual {
	out := make([]Dual, len(m))
	for i, row := range m {
		out[i] = Dot(row, x)
	}
	return out
}

// ConstMatVec returns m*x for a constant matrix m.
func ConstMatVec(m [][]float64, x []Dual) []Dual {
	out := make([]Dual, len(m))
	for i, row := range m {
		var sum Dual
		for j, k := range row {
			if k != 0 {
				sum = sum.Add(x[j].Scale(k))
			}
		}
		out[i] = sum
	}
	return out
}
