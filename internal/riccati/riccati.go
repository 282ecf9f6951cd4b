// Package riccati implements the backward/forward Riccati recursion of
// §4.4: a serial sweep that turns the per-stage block-banded KKT system
// into a feedback/feedforward pair (K, k) at every stage, then a forward
// pass that produces the Newton direction in (q, v, u) from those gains.
// Grounded on the recursion structure of spec.md §4.4; no single
// original_source file is ported (robotoc spreads this across
// ocp/riccati_recursion.hpp and several backward/forward "factorizer"
// classes not individually ported here), so the recursion is
// reimplemented directly from the stagewise LQR equations spec.md gives.
package riccati

import (
	"errors"

	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/hocp/internal/kkt"
)

// ErrIndefiniteKKT is returned when Q_uu's regularized Cholesky
// factorization still fails after delta has been doubled past DeltaMax,
// §4.4 "regularization failure → report 'indefinite KKT'".
var ErrIndefiniteKKT = errors.New("riccati: indefinite KKT after regularization")

const (
	deltaInit = 1e-8
	deltaMax  = 1e8 // × deltaInit, per SPEC_FULL.md §4.4
)

// Factorization is the cost-to-go data at one stage: P, s in
// V(dx) = ½dxᵀPdx − sᵀdx, and the feedback/feedforward gains (K, k) in
// du = K·dx + k. K, k are nil at the terminal stage, which carries no
// control.
type Factorization struct {
	P  *mat.Dense
	S  *mat.VecDense
	K  *mat.Dense
	K0 *mat.VecDense
}

func newFactorization(nx, nu int) *Factorization {
	f := &Factorization{P: mat.NewDense(nx, nx, nil), S: mat.NewVecDense(nx, nil)}
	if nu > 0 {
		f.K = mat.NewDense(nu, nx, nil)
		f.K0 = mat.NewVecDense(nu, nil)
	}
	return f
}

// buildB embeds a stage's nv x nu Fvu block into the full 2nv x nu
// state/control coupling matrix (top nv rows, the ∂Fq/∂u block, are zero
// since this module's state equation never depends on u through q).
func buildB(fvu *mat.Dense, nv int) *mat.Dense {
	_, nu := fvu.Dims()
	b := mat.NewDense(2*nv, nu, nil)
	b.Slice(nv, 2*nv, 0, nu).(*mat.Dense).Copy(fvu)
	return b
}

// Recursion holds the per-stage factorizations produced by Backward and
// consumed by Forward.
type Recursion struct {
	stages []*Factorization
	nv, nu int
}

// Backward runs the serial backward sweep from stage N down to 0,
// §4.4. matrices/residuals are indexed 0..N (N = terminal); terminal
// carries no control (Quu/Qxu/Fvu are ignored there).
func Backward(matrices []*kkt.SplitKKTMatrix, residuals []*kkt.SplitKKTResidual, nv, nu int) (*Recursion, error) {
	n := len(matrices)
	stages := make([]*Factorization, n)

	terminal := matrices[n-1]
	termRes := residuals[n-1]
	fN := newFactorization(2*nv, 0)
	fN.P.Copy(terminal.Qxx)
	for i := 0; i < 2*nv; i++ {
		fN.S.SetVec(i, -termRes.Lx.AtVec(i))
	}
	stages[n-1] = fN

	for i := n - 2; i >= 0; i-- {
		f, err := backwardStep(matrices[i], residuals[i], stages[i+1], nv, nu)
		if err != nil {
			return nil, err
		}
		stages[i] = f
	}
	return &Recursion{stages: stages, nv: nv, nu: nu}, nil
}

func backwardStep(matrix *kkt.SplitKKTMatrix, residual *kkt.SplitKKTResidual, next *Factorization, nv, nu int) (*Factorization, error) {
	a := matrix.Fxx
	b := buildB(matrix.Fvu, nv)

	var pa, ab mat.Dense
	pa.Mul(next.P, a)
	ab.Mul(next.P, b)

	var qxxBar, qxuBar, quuBar mat.Dense
	qxxBar.Mul(a.T(), &pa)
	qxxBar.Add(&qxxBar, matrix.Qxx)

	qxuBar.Mul(a.T(), &ab)
	qxuBar.Add(&qxuBar, matrix.Qxu)

	quuBar.Mul(b.T(), &ab)
	quuBar.Add(&quuBar, matrix.Quu)
	regularize(&quuBar)

	pe := mat.NewVecDense(2*nv, nil)
	pe.MulVec(next.P, residual.Fx)
	pe.SubVec(pe, next.S)

	var lxBar, luBar mat.VecDense
	lxBar.MulVec(a.T(), pe)
	lxBar.AddVec(&lxBar, residual.Lx)
	luBar.MulVec(b.T(), pe)
	luBar.AddVec(&luBar, residual.Lu)

	var quuInv mat.Dense
	if err := quuInv.Inverse(&quuBar); err != nil {
		return nil, ErrIndefiniteKKT
	}

	f := newFactorization(2*nv, nu)
	f.K.Mul(&quuInv, qxuBar.T())
	f.K.Scale(-1, f.K)
	f.K0.MulVec(&quuInv, &luBar)
	f.K0.ScaleVec(-1, f.K0)

	var qxuK mat.Dense
	qxuK.Mul(&qxuBar, f.K)
	f.P.Add(&qxxBar, &qxuK)

	var qxuk mat.VecDense
	qxuk.MulVec(&qxuBar, f.K0)
	qxuk.AddVec(&qxuk, &lxBar)
	f.S.ScaleVec(-1, &qxuk)

	return f, nil
}

// regularize adds δ·I to m, doubling δ from deltaInit until a Cholesky
// factorization succeeds or δ exceeds deltaMax·deltaInit, §4.4.
func regularize(m *mat.Dense) {
	var chol mat.Cholesky
	if chol.Factorize(mat.NewSymDense(m.RawMatrix().Rows, flatten(m))) {
		return
	}
	n, _ := m.Dims()
	delta := deltaInit
	for delta <= deltaMax*deltaInit {
		trial := mat.DenseCopyOf(m)
		for i := 0; i < n; i++ {
			trial.Set(i, i, trial.At(i, i)+delta)
		}
		if chol.Factorize(mat.NewSymDense(n, flatten(trial))) {
			m.Copy(trial)
			return
		}
		delta *= 2
	}
	// Regularization exhausted: zero m so the caller's Inverse() reports
	// it as singular, which backwardStep returns as ErrIndefiniteKKT.
	m.Zero()
}

func flatten(m *mat.Dense) []float64 {
	n, _ := m.Dims()
	out := make([]float64, n*n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			out[i*n+j] = m.At(i, j)
		}
	}
	return out
}

// NumStages returns the number of stages this recursion was built over.
func (r *Recursion) NumStages() int { return len(r.stages) }

// Gain returns the feedback gain K at stage i (nil at the terminal
// stage), §6 "getStateFeedbackGain(stage)".
func (r *Recursion) Gain(i int) *mat.Dense { return r.stages[i].K }

// Feedforward returns the feedforward term k0 at stage i (nil at the
// terminal stage): du = K·dx + k0 is the full Newton control direction
// the backward sweep produces, of which Gain exposes only the K half.
func (r *Recursion) Feedforward(i int) *mat.VecDense { return r.stages[i].K0 }

// Forward runs the serial forward sweep of §4.4: dx[0]=0, du[i]=K·dx[i]+k,
// dx[i+1]=A·dx[i]+B·du[i]+e. It returns, per stage, the tangent-space
// direction (dq, dv) and the control direction du; the costate direction
// dlmd = P·dx−s is folded into directions[i].Dlmd/Dgmm.
func (r *Recursion) Forward(matrices []*kkt.SplitKKTMatrix, residuals []*kkt.SplitKKTResidual) []*kkt.SplitDirection {
	n := len(r.stages)
	directions := make([]*kkt.SplitDirection, n)
	dx := mat.NewVecDense(2*r.nv, nil)

	for i := 0; i < n; i++ {
		d := kkt.NewSplitDirection(r.nv, r.nu)
		f := r.stages[i]

		costate := mat.NewVecDense(2*r.nv, nil)
		costate.MulVec(f.P, dx)
		costate.SubVec(costate, f.S)
		for k := 0; k < r.nv; k++ {
			d.Dlmd[k] = costate.AtVec(k)
			d.Dgmm[k] = costate.AtVec(r.nv + k)
			d.Dq[k] = dx.AtVec(k)
			d.Dv[k] = dx.AtVec(r.nv + k)
		}

		if i == n-1 || f.K == nil {
			directions[i] = d
			break
		}

		du := mat.NewVecDense(r.nu, nil)
		du.MulVec(f.K, dx)
		du.AddVec(du, f.K0)
		for k := 0; k < r.nu; k++ {
			d.Du[k] = du.AtVec(k)
		}
		directions[i] = d

		a := matrices[i].Fxx
		b := buildB(matrices[i].Fvu, r.nv)
		next := mat.NewVecDense(2*r.nv, nil)
		next.MulVec(a, dx)
		var bdu mat.VecDense
		bdu.MulVec(b, du)
		next.AddVec(next, &bdu)
		next.AddVec(next, residuals[i].Fx)
		dx = next
	}
	return directions
}
