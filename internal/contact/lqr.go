package contact

import (
	"time"

	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/contactlqr/internal/control"
	"github.com/san-kum/contactlqr/internal/dynamo"
	"github.com/san-kum/contactlqr/internal/linalg"
	"github.com/san-kum/contactlqr/internal/logging"
	"github.com/san-kum/contactlqr/internal/multibody"
)

// Reduced is the LQR problem restricted to the contact nullspace.
type Reduced struct {
	A, B, Q, R *mat.Dense
	K          *mat.Dense // reduced gain
	X          *mat.Dense // Riccati solution
}

// Synthesis is a contact-constrained LQR design and its intermediates.
type Synthesis struct {
	K             *mat.Dense // nv×2nv
	Jc            *mat.Dense
	Linearization *Linearization
	Nullspace     *mat.Dense // orthonormal basis of ker diag(Jc, Jc)
	Reduced       Reduced
}

func newOptions(opts []Option) options {
	o := options{logger: logging.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// LQR returns the gain K such that u = input − K(x − x0) regulates the
// static posture state while the contacts stay active.
func LQR(state *multibody.State, input []float64, q, r mat.Matrix, contacts []Contact, opts ...Option) (*mat.Dense, error) {
	syn, err := Synthesize(state, input, q, r, contacts, opts...)
	if err != nil {
		return nil, err
	}
	return syn.K, nil
}

// Synthesize runs the contact LQR pipeline and returns every intermediate.
// A nil input selects GravityCompensation(state).
func Synthesize(state *multibody.State, input []float64, q, r mat.Matrix, contacts []Contact, opts ...Option) (syn *Synthesis, err error) {
	o := newOptions(opts)
	m := state.Mechanism()
	if o.recorder != nil {
		start := time.Now()
		defer func() {
			o.recorder.ObserveSynthesis(m.Name, time.Since(start).Seconds(), err)
		}()
	}

	if !state.IsStatic() {
		return nil, &dynamo.PreconditionError{Op: "contact lqr", Reason: "reference velocity is not zero"}
	}
	nx := 2 * m.Dims.NV
	if rq, cq := q.Dims(); rq != nx || cq != nx {
		return nil, &dynamo.DimensionError{What: "Q", Want: nx, Got: max(rq, cq)}
	}
	if rr, cr := r.Dims(); rr != m.Dims.NV || cr != m.Dims.NV {
		return nil, &dynamo.DimensionError{What: "R", Want: m.Dims.NV, Got: max(rr, cr)}
	}
	if input == nil {
		if input, err = GravityCompensation(state); err != nil {
			return nil, err
		}
	}

	jc, err := Jacobian(state, contacts, opts...)
	if err != nil {
		return nil, err
	}
	lin, err := Linearize(state, input, jc)
	if err != nil {
		return nil, err
	}

	var basis *mat.Dense
	if linalg.IsEmpty(jc) {
		basis = linalg.Eye(nx)
	} else {
		basis, err = linalg.Nullspace(linalg.BlockDiag(jc, jc), o.rankTol)
		if err != nil {
			return nil, err
		}
	}
	if linalg.IsEmpty(basis) {
		return nil, &dynamo.PreconditionError{Op: "contact lqr", Reason: "contacts constrain every state direction"}
	}
	_, reduced := basis.Dims()

	am := linalg.Project(lin.A, basis)
	var bm mat.Dense
	bm.Mul(basis.T(), lin.B)
	qm := linalg.Symmetrize(linalg.Project(q, basis))
	rm := mat.DenseCopyOf(r)

	km, x, err := control.Gain(am, &bm, qm, rm, control.WithLogger(o.logger))
	if err != nil {
		return nil, err
	}
	var k mat.Dense
	k.Mul(km, basis.T())

	jcRows, _ := jc.Dims()
	o.logger.Debug("contact lqr synthesized",
		"mechanism", m.Name,
		"contacts", len(contacts),
		"constraint_rows", jcRows,
		"reduced_states", reduced)

	return &Synthesis{
		K:             &k,
		Jc:            jc,
		Linearization: lin,
		Nullspace:     basis,
		Reduced:       Reduced{A: am, B: &bm, Q: qm, R: rm, K: km, X: x},
	}, nil
}

// ClosedLoop returns Nᵀ(A − BK)N, the closed-loop matrix in nullspace
// coordinates.
func (s *Synthesis) ClosedLoop() *mat.Dense {
	var bk, acl mat.Dense
	bk.Mul(s.Linearization.B, s.K)
	acl.Sub(s.Linearization.A, &bk)
	return linalg.Project(&acl, s.Nullspace)
}
