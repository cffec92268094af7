package symbolic

import (
	"fmt"

	"github.com/san-kum/contactlqr/internal/dynamo"
)

// Variable is an optimization decision variable. It may carry a current
// numeric value, assigned by the caller or by a solver.
type Variable struct {
	id       int
	name     string
	value    float64
	assigned bool
}

func (v *Variable) ID() int      { return v.id }
func (v *Variable) Name() string { return v.name }

// Value returns the assigned value and whether one exists.
func (v *Variable) Value() (float64, bool) {
	return v.value, v.assigned
}

// Resolve returns the assigned value or an *dynamo.UnresolvedValueError.
func (v *Variable) Resolve() (float64, error) {
	if !v.assigned {
		return 0, &dynamo.UnresolvedValueError{Variable: v.name}
	}
	return v.value, nil
}

// Assign fixes the current value of v.
func (v *Variable) Assign(x float64) {
	v.value = x
	v.assigned = true
}

// Unassign clears the current value of v.
func (v *Variable) Unassign() {
	v.value = 0
	v.assigned = false
}

func (v *Variable) String() string {
	return v.name
}

// Program owns a set of variables.
type Program struct {
	vars []*Variable
}

func NewProgram() *Program {
	return &Program{}
}

// NewVariable allocates an unassigned variable.
func (p *Program) NewVariable(name string) *Variable {
	v := &Variable{id: len(p.vars), name: name}
	p.vars = append(p.vars, v)
	return v
}

// NewVariables allocates n unassigned variables named prefix[0..n).
func (p *Program) NewVariables(prefix string, n int) []*Variable {
	out := make([]*Variable, n)
	for i := range out {
		out[i] = p.NewVariable(fmt.Sprintf("%s[%d]", prefix, i))
	}
	return out
}

// Variables returns every variable in allocation order.
func (p *Program) Variables() []*Variable {
	return p.vars
}

// Assign sets the values of vars from xs.
func Assign(vars []*Variable, xs []float64) error {
	if err := dynamo.CheckLen("assignment", len(vars), len(xs)); err != nil {
		return err
	}
	for i, v := range vars {
		v.Assign(xs[i])
	}
	return nil
}

// Resolve returns the assigned values of vars, failing on the first
// unassigned one.
func Resolve(vars []*Variable) ([]float64, error) {
	out := make([]float64, len(vars))
	for i, v := range vars {
		x, err := v.Resolve()
		if err != nil {
			return nil, err
		}
		out[i] = x
	}
	return out, nil
}
