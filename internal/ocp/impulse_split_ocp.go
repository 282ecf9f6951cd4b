package ocp

import (
	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/hocp/internal/constraint"
	"github.com/san-kum/hocp/internal/contactstatus"
	"github.com/san-kum/hocp/internal/cost"
	"github.com/san-kum/hocp/internal/kkt"
	"github.com/san-kum/hocp/internal/manifold"
	"github.com/san-kum/hocp/internal/robot"
)

// ImpulseSplitOCP is the worker for a contact-make event, §4.3 "Impulse
// stages": positions are continuous across the impulse, velocity jumps
// according to
//
//	[ M   Jc^T ] [ dv     ]   [ 0        ]
//	[ Jc  0    ] [ -f_imp ] = [ -Jc·v⁻   ]
//
// solved here via the Schur complement of M rather than inverting the
// full stacked block (the same result as the spec's MJtJinv =
// [M Jc^T; Jc 0]^-1, computed without forming the block matrix).
type ImpulseSplitOCP struct {
	rob         robot.Robot
	costFn      cost.Function
	constraints *constraint.ConstraintsData
}

func NewImpulseSplitOCP(rob robot.Robot, costFn cost.Function, constraints *constraint.ConstraintsData) *ImpulseSplitOCP {
	return &ImpulseSplitOCP{rob: rob, costFn: costFn, constraints: constraints}
}

// massMatrix reads off M = ∂ID/∂a at the given configuration; every
// Robot fixture in this module is affine in a, so the acceleration used
// to evaluate RNEAPartials does not matter.
func (w *ImpulseSplitOCP) massMatrix(q manifold.Config, v manifold.Vector, status *contactstatus.ContactStatus) *mat.Dense {
	nv := w.rob.DimV()
	zeroA := make(manifold.Vector, nv)
	zeroF := make([]float64, status.Dimf())
	_, _, da := w.rob.RNEAPartials(q, v, zeroA, zeroF, status)
	return da
}

// velocityJump is the shared Schur-complement computation behind both
// ResolveVelocityJump (the exact v⁺/f_imp solve) and
// LinearizeImpulseTransition (its linear sensitivity to v⁻, frozen at
// the current q like every other linearization in this package). With
// M and Jc evaluated at the current (q, v⁻), v⁺ = projector·v⁻ is
// already the linear map this Newton step uses, so the "Jacobian" is
// exactly the projector itself, §4.3/§4.4.
func (w *ImpulseSplitOCP) velocityJump(q manifold.Config, vMinus manifold.Vector, status *contactstatus.ContactStatus) (vPlus manifold.Vector, fImp []float64, projector *mat.Dense) {
	nv := w.rob.DimV()
	nf := status.Dimf()
	if nf == 0 {
		proj := mat.NewDense(nv, nv, nil)
		for i := 0; i < nv; i++ {
			proj.Set(i, i, 1)
		}
		return append(manifold.Vector{}, vMinus...), nil, proj
	}

	m := w.massMatrix(q, vMinus, status)
	jc := w.rob.ContactJacobian(status)

	minvJcT := mat.NewDense(nv, nf, nil)
	for col := 0; col < nf; col++ {
		jcCol := mat.Col(nil, col, jc.T())
		rhs := mat.NewVecDense(nv, jcCol)
		var x mat.VecDense
		if err := x.SolveVec(m, rhs); err != nil {
			continue
		}
		minvJcT.SetCol(col, x.RawVector().Data)
	}

	var s mat.Dense
	s.Mul(jc, minvJcT)

	sInvJc := mat.NewDense(nf, nv, nil)
	for col := 0; col < nv; col++ {
		jCol := mat.Col(nil, col, jc)
		rhs := mat.NewVecDense(nf, jCol)
		var x mat.VecDense
		if err := x.SolveVec(&s, rhs); err != nil {
			continue
		}
		sInvJc.SetCol(col, x.RawVector().Data)
	}

	var mjsj mat.Dense
	mjsj.Mul(minvJcT, sInvJc)

	proj := mat.NewDense(nv, nv, nil)
	for i := 0; i < nv; i++ {
		for j := 0; j < nv; j++ {
			v := -mjsj.At(i, j)
			if i == j {
				v += 1
			}
			proj.Set(i, j, v)
		}
	}

	vPlusVec := mat.NewVecDense(nv, nil)
	vPlusVec.MulVec(proj, mat.NewVecDense(nv, vMinus))
	vPlus = make(manifold.Vector, nv)
	for i := 0; i < nv; i++ {
		vPlus[i] = vPlusVec.AtVec(i)
	}

	jcv := mat.NewVecDense(nf, nil)
	jcv.MulVec(jc, mat.NewVecDense(nv, vMinus))
	var fImpVec mat.VecDense
	if err := fImpVec.SolveVec(&s, jcv); err != nil {
		fImpVec = *mat.NewVecDense(nf, nil)
	}
	fImp = make([]float64, nf)
	for i := 0; i < nf; i++ {
		fImp[i] = fImpVec.AtVec(i)
	}

	return vPlus, fImp, proj
}

// ResolveVelocityJump computes v⁺ and the impulse force f_imp given the
// pre-impulse velocity v⁻ and the newly active contact status.
func (w *ImpulseSplitOCP) ResolveVelocityJump(q manifold.Config, vMinus manifold.Vector, status *contactstatus.ContactStatus) (vPlus manifold.Vector, fImp []float64) {
	vPlus, fImp, _ = w.velocityJump(q, vMinus, status)
	return vPlus, fImp
}

// EvalImpulse evaluates the impulse-stage cost and its derivatives; the
// velocity-jump residual itself is resolved exactly by ResolveVelocityJump
// rather than carried as a Newton primal/dual pair.
func (w *ImpulseSplitOCP) EvalImpulse(t float64, s *kkt.SplitSolution, barrier float64, residual *kkt.SplitKKTResidual) {
	residual.Cost = w.costFn.EvalImpulse(t, s)
	w.costFn.EvalImpulseDerivatives(t, s, residual)
	if w.constraints != nil {
		w.constraints.EvalConstraint(s, barrier)
		w.constraints.EvalDerivatives(s, 1, residual)
	}
}

func (w *ImpulseSplitOCP) LinearizeImpulse(t float64, s *kkt.SplitSolution, matrix *kkt.SplitKKTMatrix, residual *kkt.SplitKKTResidual) {
	w.costFn.EvalImpulseHessian(t, s, matrix)
	if w.constraints != nil {
		w.constraints.CondenseSlackAndDual(s, 1, matrix, residual)
	}
}

// LinearizeImpulseTransition folds the contact-make velocity jump into
// the driver's uniform Riccati chain as an ordinary state transition
// from the impulse stage (holding v⁻) to the following aux stage
// (holding v⁺): Fq is position continuity (Fqq=I, no dt to integrate
// over), Fv is the Schur-complement projector mapping v⁻ to v⁺, §4.3
// "Impulse stages" / §4.4 "Event stages insert impulse and aux
// recursions before and after". f_imp is returned so the driver can
// record it on the impulse stage's solution for cost/constraint terms
// that read contact force (it is not itself a Newton primal variable
// here, see EvalImpulse's doc comment).
func (w *ImpulseSplitOCP) LinearizeImpulseTransition(s, sNext *kkt.SplitSolution, status *contactstatus.ContactStatus, matrix *kkt.SplitKKTMatrix, residual *kkt.SplitKKTResidual) (fImp []float64) {
	nv := w.rob.DimV()
	vPlus, fImp, proj := w.velocityJump(s.Q, s.V, status)

	for i := 0; i < nv; i++ {
		matrix.Fxx.Set(i, i, 1)
		for j := 0; j < nv; j++ {
			matrix.Fxx.Set(nv+i, nv+j, proj.At(i, j))
		}
	}

	fq := w.rob.Difference(s.Q, sNext.Q)
	for i := 0; i < nv; i++ {
		residual.Fx.SetVec(i, fq[i])
		residual.Fx.SetVec(nv+i, vPlus[i]-sNext.V[i])
	}
	residual.ConstraintViolation += l1Norm(fq)
	return fImp
}
