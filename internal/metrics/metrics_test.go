package metrics

import (
	"fmt"
	"math"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/contactlqr/internal/dynamo"
)

func TestStability(t *testing.T) {
	s := NewStability(0)
	if s.Stable() {
		t.Error("no observation should not count as stable")
	}

	// Damped oscillator, eigenvalues -0.5 ± i·√0.75.
	if err := s.Observe(mat.NewDense(2, 2, []float64{0, 1, -1, -1})); err != nil {
		t.Fatal(err)
	}
	if math.Abs(s.Value()+0.5) > 1e-12 {
		t.Errorf("expected abscissa -0.5, got %f", s.Value())
	}
	if !s.Stable() {
		t.Error("damped oscillator should be stable")
	}
	if len(s.Eigenvalues()) != 2 {
		t.Errorf("expected 2 eigenvalues, got %d", len(s.Eigenvalues()))
	}

	if err := s.Observe(mat.NewDense(2, 2, []float64{0, 1, 1, 0})); err != nil {
		t.Fatal(err)
	}
	if s.Stable() {
		t.Error("saddle should be unstable")
	}

	s.Reset()
	if s.Stable() || s.Eigenvalues() != nil {
		t.Error("reset should clear the spectrum")
	}
}

func TestStabilityThreshold(t *testing.T) {
	s := NewStability(1)
	if err := s.Observe(mat.NewDense(1, 1, []float64{-0.5})); err != nil {
		t.Fatal(err)
	}
	if s.Stable() {
		t.Error("abscissa -0.5 should fail a margin of 1")
	}
}

func TestOutcome(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{nil, "ok"},
		{&dynamo.PreconditionError{Op: "x", Reason: "y"}, "precondition"},
		{&dynamo.DimensionError{What: "Q"}, "dimension"},
		{fmt.Errorf("wrapped: %w", &dynamo.SingularMatrixError{Matrix: "R"}), "singular"},
		{dynamo.ErrNoStabilizingSolution, "no_solution"},
		{fmt.Errorf("boom"), "error"},
	}
	for _, tt := range tests {
		if got := Outcome(tt.err); got != tt.want {
			t.Errorf("Outcome(%v) = %q, want %q", tt.err, got, tt.want)
		}
	}
}

func TestCollector(t *testing.T) {
	c := NewCollector()
	reg := prometheus.NewRegistry()
	if err := c.Register(reg); err != nil {
		t.Fatal(err)
	}

	c.ObserveSynthesis("planar_body", 0.01, nil)
	c.ObserveSynthesis("planar_body", 0.02, nil)
	c.ObserveSynthesis("cartpole", 0.01, dynamo.ErrPrecondition)

	if got := testutil.ToFloat64(c.syntheses.WithLabelValues("planar_body", "ok")); got != 2 {
		t.Errorf("expected 2 successful syntheses, got %f", got)
	}
	if got := testutil.ToFloat64(c.syntheses.WithLabelValues("cartpole", "precondition")); got != 1 {
		t.Errorf("expected 1 failed synthesis, got %f", got)
	}
	if n := testutil.CollectAndCount(c.duration); n != 2 {
		t.Errorf("expected 2 duration series, got %d", n)
	}

	if err := c.Register(reg); err == nil {
		t.Error("registering twice should fail")
	}
}
