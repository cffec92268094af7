package storage

import (
	"time"

	"github.com/san-kum/contactlqr/internal/contact"
	"github.com/san-kum/contactlqr/internal/control"
	"github.com/san-kum/contactlqr/internal/metrics"
)

// Report summarizes one contact LQR synthesis.
type Report struct {
	ID             string       `json:"id"`
	Model          string       `json:"model"`
	Preset         string       `json:"preset,omitempty"`
	Timestamp      time.Time    `json:"timestamp"`
	Configuration  []float64    `json:"configuration"`
	Input          []float64    `json:"input"`
	Contacts       int          `json:"contacts"`
	ConstraintRows int          `json:"constraint_rows"`
	ReducedStates  int          `json:"reduced_states"`
	Residual       float64      `json:"riccati_residual"`
	Abscissa       float64      `json:"spectral_abscissa"`
	Stable         bool         `json:"stable"`
	Eigenvalues    []Eigenvalue `json:"eigenvalues"`
	GainRows       int          `json:"gain_rows"`
	GainCols       int          `json:"gain_cols"`
}

type Eigenvalue struct {
	Re float64 `json:"re"`
	Im float64 `json:"im"`
}

// NewReport summarizes syn. stab must have observed syn.ClosedLoop().
func NewReport(model string, configuration, input []float64, contacts int, syn *contact.Synthesis, stab *metrics.Stability) *Report {
	r := &Report{
		Model:         model,
		Configuration: configuration,
		Input:         input,
		Contacts:      contacts,
		Abscissa:      stab.Value(),
		Stable:        stab.Stable(),
	}
	r.ConstraintRows, _ = syn.Jc.Dims()
	_, r.ReducedStates = syn.Nullspace.Dims()
	red := syn.Reduced
	r.Residual = control.Residual(red.A, red.B, red.Q, red.R, red.X)
	for _, v := range stab.Eigenvalues() {
		r.Eigenvalues = append(r.Eigenvalues, Eigenvalue{Re: real(v), Im: imag(v)})
	}
	return r
}
