package symbolic

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Term is coefficient*variable.
type Term struct {
	Var  *Variable
	Coef float64
}

// Affine is Constant + sum(Terms). Terms are sorted by variable id and hold
// at most one entry per variable.
type Affine struct {
	Terms    []Term
	Constant float64
}

// NewAffine builds an expression, merging repeated variables and dropping
// zero coefficients.
func NewAffine(constant float64, terms ...Term) Affine {
	byID := make(map[int]Term, len(terms))
	for _, t := range terms {
		if cur, ok := byID[t.Var.id]; ok {
			cur.Coef += t.Coef
			byID[t.Var.id] = cur
			continue
		}
		byID[t.Var.id] = t
	}
	out := Affine{Constant: constant}
	for _, t := range byID {
		if t.Coef != 0 {
			out.Terms = append(out.Terms, t)
		}
	}
	sort.Slice(out.Terms, func(i, j int) bool {
		return out.Terms[i].Var.id < out.Terms[j].Var.id
	})
	return out
}

// Len returns the number of terms.
func (a Affine) Len() int {
	return len(a.Terms)
}

// Coefficient returns the coefficient of v, zero when v does not appear.
func (a Affine) Coefficient(v *Variable) float64 {
	i := sort.Search(len(a.Terms), func(i int) bool { return a.Terms[i].Var.id >= v.id })
	if i < len(a.Terms) && a.Terms[i].Var == v {
		return a.Terms[i].Coef
	}
	return 0
}

// Eval evaluates a at the variables' assigned values.
func (a Affine) Eval() (float64, error) {
	sum := a.Constant
	for _, t := range a.Terms {
		x, err := t.Var.Resolve()
		if err != nil {
			return 0, err
		}
		sum += t.Coef * x
	}
	return sum, nil
}

// EvalAt evaluates a with values looked up by variable id; variables missing
// from values fall back to their assigned values.
func (a Affine) EvalAt(values map[int]float64) (float64, error) {
	sum := a.Constant
	for _, t := range a.Terms {
		x, ok := values[t.Var.id]
		if !ok {
			var err error
			if x, err = t.Var.Resolve(); err != nil {
				return 0, err
			}
		}
		sum += t.Coef * x
	}
	return sum, nil
}

func (a Affine) String() string {
	var b strings.Builder
	for i, t := range a.Terms {
		coef := t.Coef
		switch {
		case i == 0 && coef < 0:
			b.WriteString("-")
			coef = -coef
		case i > 0 && coef < 0:
			b.WriteString(" - ")
			coef = -coef
		case i > 0:
			b.WriteString(" + ")
		}
		if coef != 1 {
			b.WriteString(strconv.FormatFloat(coef, 'g', 6, 64))
			b.WriteString("*")
		}
		b.WriteString(t.Var.name)
	}
	switch {
	case len(a.Terms) == 0:
		b.WriteString(strconv.FormatFloat(a.Constant, 'g', 6, 64))
	case a.Constant < 0:
		fmt.Fprintf(&b, " - %s", strconv.FormatFloat(-a.Constant, 'g', 6, 64))
	case a.Constant > 0:
		fmt.Fprintf(&b, " + %s", strconv.FormatFloat(a.Constant, 'g', 6, 64))
	}
	return b.String()
}
