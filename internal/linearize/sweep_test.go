package linearize_test

import (
	"errors"
	"math"
	"testing"

	"github.com/san-kum/contactlqr/internal/dynamo"
	"github.com/san-kum/contactlqr/internal/linearize"
	"github.com/san-kum/contactlqr/internal/models"
)

func TestSweepAffineHasNoError(t *testing.T) {
	m := models.NewDoublePendulum().Mechanism()
	ls, err := linearize.New(stateAt(t, m, []float64{0.2, -0.4}, []float64{0.1, 0.3}))
	if err != nil {
		t.Fatal(err)
	}
	points, err := linearize.Sweep(ls, affine, 1, 0.5, 11)
	if err != nil {
		t.Fatal(err)
	}
	if len(points) != 11 {
		t.Fatalf("expected 11 samples, got %d", len(points))
	}
	if points[0].Offset != -0.5 || points[10].Offset != 0.5 {
		t.Errorf("unexpected offset range [%f, %f]", points[0].Offset, points[10].Offset)
	}
	for _, p := range points {
		if p.Error > tol {
			t.Errorf("offset %f: expected exact model, got error %g", p.Offset, p.Error)
		}
	}
}

func TestSweepPendulumTipIsQuadratic(t *testing.T) {
	p := models.NewPendulum()
	m := p.Mechanism()
	ls, err := linearize.New(stateAt(t, m, []float64{0.3}, []float64{0}))
	if err != nil {
		t.Fatal(err)
	}
	points, err := linearize.Sweep(ls, linearize.PositionFunctional(p.Tip()), 0, 0.1, 5)
	if err != nil {
		t.Fatal(err)
	}

	mid := points[2]
	if mid.Offset != 0 || mid.Error > tol {
		t.Errorf("expected zero error at the reference, got %+v", mid)
	}
	for _, pt := range []linearize.SweepPoint{points[0], points[4]} {
		// A chord of the tip circle: |exact - linear| = L*sqrt(2(1-cos d) - 2 d sin d + d^2).
		d := pt.Offset
		want := p.Length * math.Sqrt(2*(1-math.Cos(d))-2*d*math.Sin(d)+d*d)
		if math.Abs(pt.Error-want) > 1e-9 {
			t.Errorf("offset %f: expected error %g, got %g", d, want, pt.Error)
		}
	}
	if points[1].Error >= points[0].Error {
		t.Errorf("error should grow with the offset: %g then %g", points[1].Error, points[0].Error)
	}

	// The operating point is restored.
	if got := ls.Current().Configuration()[0]; got != 0.3 {
		t.Errorf("operating point moved to %f", got)
	}
}

func TestSweepRejectsBadCoordinate(t *testing.T) {
	m := models.NewPendulum().Mechanism()
	ls, err := linearize.New(stateAt(t, m, []float64{0}, []float64{0}))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := linearize.Sweep(ls, linearize.BiasFunctional, 3, 0.1, 5); !errors.Is(err, dynamo.ErrPrecondition) {
		t.Errorf("expected precondition error, got %v", err)
	}
	if _, err := linearize.Sweep(ls, linearize.BiasFunctional, 0, 0.1, 1); !errors.Is(err, dynamo.ErrPrecondition) {
		t.Errorf("expected precondition error, got %v", err)
	}
}
