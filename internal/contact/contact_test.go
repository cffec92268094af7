package contact_test

import (
	"errors"
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/contactlqr/internal/contact"
	"github.com/san-kum/contactlqr/internal/dual"
	"github.com/san-kum/contactlqr/internal/dynamo"
	"github.com/san-kum/contactlqr/internal/linalg"
	"github.com/san-kum/contactlqr/internal/models"
	"github.com/san-kum/contactlqr/internal/multibody"
)

// countingModel records how often the dynamics are evaluated.
type countingModel struct {
	multibody.Model
	calls int
}

func (c *countingModel) MassMatrix(q []dual.Dual) [][]dual.Dual {
	c.calls++
	return c.Model.MassMatrix(q)
}

func (c *countingModel) BiasForce(q, v []dual.Dual) []dual.Dual {
	c.calls++
	return c.Model.BiasForce(q, v)
}

type recorded struct {
	mechanism string
	err       error
}

type fakeRecorder struct {
	seen []recorded
}

func (f *fakeRecorder) ObserveSynthesis(mechanism string, seconds float64, err error) {
	f.seen = append(f.seen, recorded{mechanism: mechanism, err: err})
}

func staticState(m *multibody.Mechanism, q ...float64) *multibody.State {
	s := multibody.NewState(m)
	Expect(s.SetConfiguration(q)).To(Succeed())
	return s
}

func maxRealEig(a mat.Matrix) float64 {
	var eig mat.Eigen
	Expect(eig.Factorize(a, mat.EigenNone)).To(BeTrue())
	worst := math.Inf(-1)
	for _, v := range eig.Values(nil) {
		worst = math.Max(worst, real(v))
	}
	return worst
}

var _ = Describe("planar body on a floor", func() {
	var (
		mech  *multibody.Mechanism
		state *multibody.State
		foot  contact.Contact
	)

	BeforeEach(func() {
		mech = models.NewPlanarBody().Mechanism()
		state = staticState(mech, 0, 0.1, 0)
		foot = contact.Contact{
			Point:  multibody.Point{Body: 0, Offset: [3]float64{0, 0, -0.1}},
			Mode:   contact.Frictionless,
			Normal: [3]float64{0, 0, 1},
		}
	})

	Describe("Jacobian", func() {
		It("returns one row for a single frictionless contact", func() {
			jc, err := contact.Jacobian(state, []contact.Contact{foot})
			Expect(err).NotTo(HaveOccurred())

			r, c := jc.Dims()
			Expect(r).To(Equal(1))
			Expect(c).To(Equal(3))
			Expect(mat.Row(nil, 0, jc)).To(Equal([]float64{0, 1, 0}))
		})

		It("drops the unconstrained out-of-plane row of a no-slip contact", func() {
			foot.Mode = contact.NoSlip
			foot.Point.Offset = [3]float64{0.2, 0, -0.1}

			jc, err := contact.Jacobian(state, []contact.Contact{foot})
			Expect(err).NotTo(HaveOccurred())

			Expect(mat.EqualApprox(jc, mat.NewDense(2, 3, []float64{
				1, 0, -0.1,
				0, 1, -0.2,
			}), 1e-12)).To(BeTrue())
		})

		It("annihilates admissible velocities", func() {
			foot.Point.Offset = [3]float64{0.2, 0, -0.1}
			jc, err := contact.Jacobian(state, []contact.Contact{foot})
			Expect(err).NotTo(HaveOccurred())

			var out mat.VecDense
			out.MulVec(jc, mat.NewVecDense(3, []float64{0.5, 0.2, 1}))
			Expect(out.AtVec(0)).To(BeNumerically("~", 0, 1e-12))

			out.MulVec(jc, mat.NewVecDense(3, []float64{0, 1, 0}))
			Expect(out.AtVec(0)).NotTo(BeNumerically("~", 0, 1e-6))
		})

		It("returns an empty matrix without contacts", func() {
			jc, err := contact.Jacobian(state, nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(linalg.IsEmpty(jc)).To(BeTrue())
		})

		It("rejects a frictionless contact without a normal", func() {
			foot.Normal = [3]float64{}
			_, err := contact.Jacobian(state, []contact.Contact{foot})
			Expect(errors.Is(err, dynamo.ErrPrecondition)).To(BeTrue())
		})
	})

	Describe("ConstrainedDynamics", func() {
		It("is at rest under gravity compensation", func() {
			jc, err := contact.Jacobian(state, []contact.Contact{foot})
			Expect(err).NotTo(HaveOccurred())

			u0, err := contact.GravityCompensation(state)
			Expect(err).NotTo(HaveOccurred())
			xdot, err := contact.ConstrainedDynamics(state, u0, jc)
			Expect(err).NotTo(HaveOccurred())
			for _, x := range xdot {
				Expect(x).To(BeNumerically("~", 0, 1e-12))
			}
		})

		It("lets the floor carry the weight", func() {
			jc, err := contact.Jacobian(state, []contact.Contact{foot})
			Expect(err).NotTo(HaveOccurred())

			xdot, err := contact.ConstrainedDynamics(state, []float64{1, 0, 0}, jc)
			Expect(err).NotTo(HaveOccurred())
			Expect(xdot[3]).To(BeNumerically("~", 1, 1e-12))
			Expect(xdot[4]).To(BeNumerically("~", 0, 1e-12))
			Expect(xdot[5]).To(BeNumerically("~", 0, 1e-12))
		})

		It("falls freely without contacts", func() {
			xdot, err := contact.ConstrainedDynamics(state, []float64{0, 0, 0}, &mat.Dense{})
			Expect(err).NotTo(HaveOccurred())
			Expect(xdot[4]).To(BeNumerically("~", -models.DefaultGravity, 1e-12))
		})

		It("fails on redundant contacts", func() {
			jc, err := contact.Jacobian(state, []contact.Contact{foot, foot})
			Expect(err).NotTo(HaveOccurred())

			_, err = contact.ConstrainedDynamics(state, []float64{0, 0, 0}, jc)
			var sing *dynamo.SingularMatrixError
			Expect(errors.As(err, &sing)).To(BeTrue())
			Expect(sing.Matrix).To(Equal("JcM⁻¹Jcᵀ"))
		})
	})

	Describe("Linearize", func() {
		It("rejects a moving reference without evaluating the dynamics", func() {
			counter := &countingModel{Model: mech.Model}
			mech.Model = counter
			moving := staticState(mech, 0, 0.1, 0)
			Expect(moving.SetVelocity([]float64{0, 0, 0.5})).To(Succeed())
			counter.calls = 0

			_, err := contact.Linearize(moving, []float64{0, 0, 0}, &mat.Dense{})
			var pre *dynamo.PreconditionError
			Expect(errors.As(err, &pre)).To(BeTrue())
			Expect(counter.calls).To(BeZero())
		})

		It("has an integrator block and an equilibrium drift of zero", func() {
			jc, err := contact.Jacobian(state, []contact.Contact{foot})
			Expect(err).NotTo(HaveOccurred())

			u0, err := contact.GravityCompensation(state)
			Expect(err).NotTo(HaveOccurred())
			lin, err := contact.Linearize(state, u0, jc)
			Expect(err).NotTo(HaveOccurred())

			Expect(mat.Equal(lin.A.Slice(0, 3, 3, 6), linalg.Eye(3))).To(BeTrue())
			Expect(linalg.MaxAbs(lin.A.Slice(0, 3, 0, 3))).To(BeZero())
			for _, c := range lin.C {
				Expect(c).To(BeNumerically("~", 0, 1e-12))
			}
			// The vertical input is absorbed by the floor.
			Expect(mat.Col(nil, 1, lin.B)).To(HaveEach(BeNumerically("~", 0, 1e-12)))
		})
	})

	Describe("Synthesize", func() {
		It("produces a 3×6 gain over a 6×4 nullspace", func() {
			rec := &fakeRecorder{}
			syn, err := contact.Synthesize(state, nil, linalg.Eye(6), linalg.Eye(3),
				[]contact.Contact{foot}, contact.WithRecorder(rec))
			Expect(err).NotTo(HaveOccurred())

			r, c := syn.Jc.Dims()
			Expect([]int{r, c}).To(Equal([]int{1, 3}))
			r, c = syn.Nullspace.Dims()
			Expect([]int{r, c}).To(Equal([]int{6, 4}))
			r, c = syn.K.Dims()
			Expect([]int{r, c}).To(Equal([]int{3, 6}))

			Expect(rec.seen).To(HaveLen(1))
			Expect(rec.seen[0].mechanism).To(Equal("planar_body"))
			Expect(rec.seen[0].err).NotTo(HaveOccurred())
		})

		It("stabilizes the posture inside the constraint nullspace", func() {
			syn, err := contact.Synthesize(state, nil, linalg.Eye(6), linalg.Eye(3), []contact.Contact{foot})
			Expect(err).NotTo(HaveOccurred())
			Expect(maxRealEig(syn.ClosedLoop())).To(BeNumerically("<", 0))
		})

		It("does not command the constrained direction", func() {
			k, err := contact.LQR(state, nil, linalg.Eye(6), linalg.Eye(3), []contact.Contact{foot})
			Expect(err).NotTo(HaveOccurred())

			var du mat.VecDense
			du.MulVec(k, mat.NewVecDense(6, []float64{0, 1, 0, 0, 1, 0}))
			Expect(du.RawVector().Data).To(HaveEach(BeNumerically("~", 0, 1e-9)))
		})

		It("rejects mismatched weights", func() {
			_, err := contact.LQR(state, nil, linalg.Eye(4), linalg.Eye(3), []contact.Contact{foot})
			Expect(errors.Is(err, dynamo.ErrDimension)).To(BeTrue())
		})

		It("reports failures to the recorder", func() {
			rec := &fakeRecorder{}
			Expect(state.SetVelocity([]float64{1, 0, 0})).To(Succeed())
			_, err := contact.Synthesize(state, nil, linalg.Eye(6), linalg.Eye(3), nil, contact.WithRecorder(rec))
			Expect(errors.Is(err, dynamo.ErrPrecondition)).To(BeTrue())
			Expect(rec.seen).To(HaveLen(1))
			Expect(rec.seen[0].err).To(MatchError(dynamo.ErrPrecondition))
		})
	})
})

var _ = Describe("cart-pole without contacts", func() {
	It("never drives the unmotorized pivot", func() {
		mech := models.NewCartPole().Mechanism()
		state := staticState(mech, 0, 0)

		Expect(mat.Equal(contact.Selection(mech), linalg.Diag([]float64{1, 0}))).To(BeTrue())

		syn, err := contact.Synthesize(state, nil, linalg.Eye(4), linalg.Eye(2), nil)
		Expect(err).NotTo(HaveOccurred())

		Expect(mat.Col(nil, 1, syn.Linearization.B)).To(HaveEach(BeZero()))
		Expect(mat.Row(nil, 1, syn.K)).To(HaveEach(BeNumerically("~", 0, 1e-12)))
		Expect(maxRealEig(syn.ClosedLoop())).To(BeNumerically("<", 0))
	})
})

var _ = Describe("double pendulum with its tip on a wall", func() {
	const step = 1e-6

	var (
		dp    *models.DoublePendulum
		mech  *multibody.Mechanism
		state *multibody.State
		tip   contact.Contact
		jc    *mat.Dense
		u0    []float64
	)

	BeforeEach(func() {
		dp = models.NewDoublePendulum()
		mech = dp.Mechanism()
		state = staticState(mech, 0.3, -0.4)
		tip = contact.Contact{Point: dp.Tip(), Mode: contact.Frictionless, Normal: [3]float64{1, 0, 0}}

		var err error
		jc, err = contact.Jacobian(state, []contact.Contact{tip})
		Expect(err).NotTo(HaveOccurred())
		r, c := jc.Dims()
		Expect([]int{r, c}).To(Equal([]int{1, 2}))

		u0, err = contact.GravityCompensation(state)
		Expect(err).NotTo(HaveOccurred())
	})

	// xdot evaluates the constrained dynamics at (q, v, u) with jc frozen.
	xdot := func(x, u []float64) []float64 {
		s := multibody.NewState(mech)
		Expect(s.SetConfiguration(x[:2])).To(Succeed())
		Expect(s.SetVelocity(x[2:])).To(Succeed())
		out, err := contact.ConstrainedDynamics(s, u, jc)
		Expect(err).NotTo(HaveOccurred())
		return out
	}

	central := func(f func(delta float64) []float64) []float64 {
		plus, minus := f(step), f(-step)
		d := make([]float64, len(plus))
		for i := range plus {
			d[i] = (plus[i] - minus[i]) / (2 * step)
		}
		return d
	}

	It("matches central differences of the constrained dynamics", func() {
		lin, err := contact.Linearize(state, u0, jc)
		Expect(err).NotTo(HaveOccurred())
		Expect(lin.C).To(HaveEach(BeNumerically("~", 0, 1e-12)))

		x0 := []float64{0.3, -0.4, 0, 0}
		for j := 0; j < 4; j++ {
			col := central(func(delta float64) []float64 {
				x := append([]float64(nil), x0...)
				x[j] += delta
				return xdot(x, u0)
			})
			for i, want := range col {
				Expect(lin.A.At(i, j)).To(BeNumerically("~", want, 1e-6), "A[%d,%d]", i, j)
			}
		}
		for j := 0; j < 2; j++ {
			col := central(func(delta float64) []float64 {
				u := append([]float64(nil), u0...)
				u[j] += delta
				return xdot(x0, u)
			})
			for i, want := range col {
				Expect(lin.B.At(i, j)).To(BeNumerically("~", want, 1e-6), "B[%d,%d]", i, j)
			}
		}
	})

	It("carries configuration dependence into A", func() {
		lin, err := contact.Linearize(state, u0, jc)
		Expect(err).NotTo(HaveOccurred())
		Expect(linalg.MaxAbs(lin.A.Slice(2, 4, 0, 2))).To(BeNumerically(">", 1e-3))
	})

	It("stabilizes the posture along the wall", func() {
		syn, err := contact.Synthesize(state, nil, linalg.Eye(4), linalg.Eye(2), []contact.Contact{tip})
		Expect(err).NotTo(HaveOccurred())
		r, c := syn.Nullspace.Dims()
		Expect([]int{r, c}).To(Equal([]int{4, 2}))
		Expect(maxRealEig(syn.ClosedLoop())).To(BeNumerically("<", 0))
	})
})
