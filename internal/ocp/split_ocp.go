// Package ocp implements the per-stage workers described in §4.3:
// SplitOCP for a regular stage, ImpulseSplitOCP for a contact-make event,
// LiftSplitOCP for a contact-break event, and TerminalOCP for the final
// stage. Each worker is handed one Robot clone, one CostFunction, and one
// stage's ConstraintsData at construction and is then called repeatedly
// from a dedicated goroutine across Newton iterations. EvalOCP,
// LinearizeOCP and ExpandPrimal allocate their scratch vectors and
// matrices on every call; nothing is preallocated at construction.
package ocp

import (
	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/hocp/internal/constraint"
	"github.com/san-kum/hocp/internal/contactstatus"
	"github.com/san-kum/hocp/internal/cost"
	"github.com/san-kum/hocp/internal/kkt"
	"github.com/san-kum/hocp/internal/robot"
)

// SplitOCP is the worker for a normal time stage of width dt, §4.3 item 1-4.
// It evaluates the state-transition residual (Fq, Fv), the dynamics
// equation residual (u - ID(q,v,a,f), dualized by s.Beta), and the
// acceleration-level contact constraint (J_c·a+b_c, dualized by s.Mu), then
// linearizes all three and condenses the active constraint set into the
// stage's quadratic model.
type SplitOCP struct {
	rob         robot.Robot
	costFn      cost.Function
	constraints *constraint.ConstraintsData
	tauB        float64

	nv, nu, offset int
}

// NewSplitOCP builds a regular-stage worker. offset = nv-nu is the number
// of leading unactuated rows of the generalized-force balance (6 for a
// floating-base robot, 0 for a fixed-base one); the dynamics equation's
// unactuated rows have no control input and are folded directly into Fv
// rather than dualized separately, since no per-row multiplier for them
// exists in SplitSolution (only Lmd/Gmm/Beta, matching the original's
// q/v/u costates — see internal/kkt's SplitSolution doc comment).
func NewSplitOCP(rob robot.Robot, costFn cost.Function, constraints *constraint.ConstraintsData, tauB float64) *SplitOCP {
	return &SplitOCP{
		rob:         rob,
		costFn:      costFn,
		constraints: constraints,
		tauB:        tauB,
		nv:          rob.DimV(),
		nu:          rob.DimU(),
		offset:      rob.DimV() - rob.DimU(),
	}
}

func l1Norm(v []float64) float64 {
	sum := 0.0
	for _, x := range v {
		if x < 0 {
			sum -= x
		} else {
			sum += x
		}
	}
	return sum
}

func sqNorm(v []float64) float64 {
	sum := 0.0
	for _, x := range v {
		sum += x * x
	}
	return sum
}

// dynamicsResidual evaluates the full nv-long generalized-force balance
// ID(q,v,a,f) and the nu-long actuated-row equation u-ID(...)[offset:].
func (w *SplitOCP) dynamicsResidual(s *kkt.SplitSolution, status *contactstatus.ContactStatus) (rnea, dynRes []float64) {
	rnea = w.rob.RNEA(s.Q, s.V, s.A, s.F, status)
	dynRes = make([]float64, w.nu)
	for j := 0; j < w.nu; j++ {
		dynRes[j] = s.U[j] - rnea[w.offset+j]
	}
	return rnea, dynRes
}

// EvalOCP is step 1 of §4.3: evaluates the state equation, dynamics
// residual, and contact acceleration residual into residual, and
// accumulates the stage cost and its gradient.
func (w *SplitOCP) EvalOCP(t, dt float64, s, sNext *kkt.SplitSolution, status *contactstatus.ContactStatus, barrier float64, residual *kkt.SplitKKTResidual) {
	qNext := w.rob.Integrate(s.Q, s.V, dt)
	fq := w.rob.Difference(qNext, sNext.Q)

	rnea, dynRes := w.dynamicsResidual(s, status)
	fv := make([]float64, w.nv)
	for i := 0; i < w.nv; i++ {
		fv[i] = s.V[i] + dt*s.A[i] - sNext.V[i]
		if i < w.offset {
			fv[i] += rnea[i]
		}
	}
	for i := 0; i < w.nv; i++ {
		residual.Fx.SetVec(i, fq[i])
		residual.Fx.SetVec(w.nv+i, fv[i])
	}

	contactRes := w.rob.ContactAccelerationResidual(status, s.Q, s.V, s.A, w.tauB)

	residual.Cost = w.costFn.EvalStage(t, dt, s)
	w.costFn.EvalStageDerivatives(t, dt, s, residual)

	if w.constraints != nil {
		w.constraints.EvalConstraint(s, barrier)
		w.constraints.EvalDerivatives(s, dt, residual)
	}

	w.addDynamicsAndContactGradient(s, status, dynRes, residual)

	residual.ConstraintViolation += l1Norm(fq) + l1Norm(fv) + l1Norm(dynRes) + l1Norm(contactRes)
	residual.KKTError += sqNorm(dynRes) + sqNorm(contactRes)

	residual.H = w.hamiltonian(residual.Cost, sNext, fq, fv)
}

// hamiltonian is the discrete Pontryagin Hamiltonian H = L + λᵀ·f(x,u),
// written in terms of the already-computed transition residuals fq/fv
// (the tangent-space gap between this stage's predicted next state and
// sNext) and sNext's costate: H = cost - lmd·fq - gmm·fv, which reduces
// to the running cost once the state equation is satisfied. Used only
// for the switching-time property checks of §4.4/§8 (property 7: the
// finite-difference cost sensitivity to an event time should match the
// Hamiltonian jump across that event).
func (w *SplitOCP) hamiltonian(cost float64, sNext *kkt.SplitSolution, fq, fv []float64) float64 {
	h := cost
	for i := 0; i < w.nv; i++ {
		h -= sNext.Lmd[i] * fq[i]
		h -= sNext.Gmm[i] * fv[i]
	}
	return h
}

// addDynamicsAndContactGradient folds the stationarity contributions of
// the dynamics-equation multiplier (Beta) and the contact-constraint
// multiplier (Mu) into la/lu/lf.
func (w *SplitOCP) addDynamicsAndContactGradient(s *kkt.SplitSolution, status *contactstatus.ContactStatus, dynRes []float64, residual *kkt.SplitKKTResidual) {
	for j := 0; j < w.nu; j++ {
		residual.Lu.SetVec(j, residual.Lu.AtVec(j)-s.Beta[j])
	}

	_, _, da := w.rob.RNEAPartials(s.Q, s.V, s.A, s.F, status)
	for i := 0; i < w.nv; i++ {
		sum := 0.0
		for j := 0; j < w.nu; j++ {
			sum += s.Beta[j] * da.At(w.offset+j, i)
		}
		residual.La.SetVec(i, residual.La.AtVec(i)+sum)
	}

	nf := status.Dimf()
	if nf == 0 {
		return
	}
	jc := w.rob.ContactJacobian(status)
	var jtMu mat.VecDense
	jtMu.MulVec(jc.T(), mat.NewVecDense(nf, s.Mu))
	for i := 0; i < w.nv; i++ {
		residual.La.SetVec(i, residual.La.AtVec(i)+jtMu.AtVec(i))
	}
}

// LinearizeOCP is step 2 of §4.3: fills matrix's state-transition Jacobian
// blocks and cost/constraint Hessian contributions. The manifold
// integration sensitivities (Fqq, Fqv) are approximated by the flat-space
// Euler blocks (I, dt·I) rather than the exact SE(3) right-Jacobian a
// floating-base dIntegrate_dq would need — documented as a simplification
// consistent with this module's other approximate-kinematics fixtures.
func (w *SplitOCP) LinearizeOCP(t, dt float64, s, sNext *kkt.SplitSolution, status *contactstatus.ContactStatus, matrix *kkt.SplitKKTMatrix, residual *kkt.SplitKKTResidual) {
	nv := w.nv
	for i := 0; i < nv; i++ {
		matrix.Fxx.Set(i, i, 1)
		matrix.Fxx.Set(i, nv+i, dt)
		matrix.Fxx.Set(nv+i, nv+i, 1)
	}

	dq, _, _ := w.rob.RNEAPartials(s.Q, s.V, s.A, s.F, status)
	for i := 0; i < w.offset; i++ {
		for j := 0; j < nv; j++ {
			matrix.Fxx.Set(nv+i, j, matrix.Fxx.At(nv+i, j)+dq.At(i, j))
		}
	}

	w.costFn.EvalStageHessian(t, dt, s, matrix)
	if w.constraints != nil {
		w.constraints.CondenseSlackAndDual(s, dt, matrix, residual)
	}

	w.condenseAccelerationIntoControl(matrix, residual)
}

// condenseAccelerationIntoControl eliminates the acceleration block from
// the Riccati system, whose (A, B) pair is sized for the (q, v, u) state
// and control alone — matching SplitKKTMatrix's Fvu/Qxu/Quu field set,
// which has no separate Qxa/Qau cross block. The elimination uses the
// Euler sensitivity da/du ≈ dt (exact for this module's diagonal-mass
// fixtures to leading order; for the coupled twolink mass matrix this is
// a first-order approximation, not an exact Schur condensation).
func (w *SplitOCP) condenseAccelerationIntoControl(matrix *kkt.SplitKKTMatrix, residual *kkt.SplitKKTResidual) {
	for j := 0; j < w.nu; j++ {
		i := w.offset + j
		matrix.Quu.Set(j, j, matrix.Quu.At(j, j)+matrix.Qaa.At(i, i))
		matrix.Fvu.Set(i, j, matrix.Fvu.At(i, j)+1)
		residual.Lu.SetVec(j, residual.Lu.AtVec(j)+residual.La.AtVec(i))
	}
}

// ExpandPrimal is step 3 of §4.3: recovers da, df, du from the Riccati-
// produced (dq, dv) using the RNEA partials recomputed at s on each
// call (nothing is cached from LinearizeOCP). da is taken
// directly from the acceleration-equation sensitivity; du follows from a
// first-order projection through the dynamics Jacobian. df is recovered
// by back-substituting into the force-block system CondenseSlackAndDual
// built during LinearizeOCP (Qff·df = -Lf), the condensed quadratic model
// of the active friction-cone barrier in f — the same condense-then-
// back-substitute shape as the acceleration block above, at the force
// block's own dimension.
func (w *SplitOCP) ExpandPrimal(s *kkt.SplitSolution, status *contactstatus.ContactStatus, dq, dv []float64, matrix *kkt.SplitKKTMatrix, residual *kkt.SplitKKTResidual, d *kkt.SplitDirection) {
	copy(d.Dq, dq)
	copy(d.Dv, dv)

	_, dva, da := w.rob.RNEAPartials(s.Q, s.V, s.A, s.F, status)
	rhs := mat.NewVecDense(w.nv, nil)
	rhs.MulVec(dva, mat.NewVecDense(len(dv), dv))
	rhs.ScaleVec(-1, rhs)

	var daVec mat.VecDense
	if err := daVec.SolveVec(da, rhs); err != nil {
		daVec = *mat.NewVecDense(w.nv, nil)
	}
	for i := 0; i < w.nv; i++ {
		d.Da[i] = daVec.AtVec(i)
	}
	for j := 0; j < w.nu; j++ {
		d.Du[j] = 0
		for i := 0; i < w.nv; i++ {
			d.Du[j] += da.At(w.offset+j, i) * d.Da[i]
		}
	}

	nf := status.Dimf()
	if nf == 0 {
		return
	}
	d.SetContactDimension(nf)
	var dfVec mat.VecDense
	if err := dfVec.SolveVec(matrix.Qff, residual.Lf); err != nil {
		for i := range d.Df {
			d.Df[i] = 0
		}
		return
	}
	for i := 0; i < nf; i++ {
		d.Df[i] = -dfVec.AtVec(i)
	}
}

// TrialCost evaluates this stage's cost at an arbitrary solution without
// mutating w or s, so the line search of §4.5 can score a trial step
// before committing to it.
func (w *SplitOCP) TrialCost(t, dt float64, s *kkt.SplitSolution) float64 {
	return w.costFn.EvalStage(t, dt, s)
}

// MaxPrimalStepSize and MaxDualStepSize are step 4 of §4.3: the tightest
// fraction-to-boundary step size across this stage's active constraints.
func (w *SplitOCP) MaxPrimalStepSize(tau float64) float64 {
	if w.constraints == nil {
		return 1
	}
	return w.constraints.MaxPrimalStepSize(tau)
}

func (w *SplitOCP) MaxDualStepSize(tau float64) float64 {
	if w.constraints == nil {
		return 1
	}
	return w.constraints.MaxDualStepSize(tau)
}
