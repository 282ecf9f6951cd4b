package constraint

import (
	"github.com/san-kum/hocp/internal/kkt"
)

const defaultFractionToBoundary = 0.995

// Component is the primal-dual interior-point contract every constraint
// implements, §4.2:
//
//	setSlack(s): initialize slack <- -g(s) (or project to >= barrier);
//	             initialize dual <- barrier/slack.
//	evalConstraint(s): residual <- g(s)+slack, cmpl <- slack*dual-barrier.
//	evalDerivatives(s,dt): add dg/dx * dual * dt to the KKT gradient.
//	condenseSlackAndDual(s,dt): add dg^T*diag(dual/slack)*dg*dt to the
//	             Hessian and a scaled residual to the gradient.
//	expandSlackAndDual(s,d): recover dslack/ddual from the primal step.
type Component interface {
	// Dimc returns the constraint's dimension.
	Dimc() int

	// SetSlack initializes data.Slack/data.Dual from the current solution.
	SetSlack(data *ComponentData, s *kkt.SplitSolution, barrier float64)

	// EvalConstraint fills data.Residual and data.Cmpl.
	EvalConstraint(data *ComponentData, s *kkt.SplitSolution, barrier float64)

	// EvalDerivatives accumulates dg/dx * dual * dt into residual's
	// gradient blocks.
	EvalDerivatives(data *ComponentData, s *kkt.SplitSolution, dt float64, residual *kkt.SplitKKTResidual)

	// CondenseSlackAndDual accumulates the Schur-complement term into
	// matrix and residual.
	CondenseSlackAndDual(data *ComponentData, s *kkt.SplitSolution, dt float64, matrix *kkt.SplitKKTMatrix, residual *kkt.SplitKKTResidual)

	// ExpandSlackAndDual recovers data.Dslack/data.Ddual from the primal
	// direction d.
	ExpandSlackAndDual(data *ComponentData, s *kkt.SplitSolution, d *kkt.SplitDirection)
}

// MaxSlackStepSize returns the largest alpha in (0,1] such that
// slack + alpha*dslack >= (1-tau)*slack componentwise, the
// fraction-to-boundary rule of §4.2/§4.6 invariant 5.
func MaxSlackStepSize(data *ComponentData, tau float64) float64 {
	return maxFractionToBoundary(data.Slack, data.Dslack, tau)
}

// MaxDualStepSize is MaxSlackStepSize's dual counterpart.
func MaxDualStepSize(data *ComponentData, tau float64) float64 {
	return maxFractionToBoundary(data.Dual, data.Ddual, tau)
}

func maxFractionToBoundary(x, dx []float64, tau float64) float64 {
	alpha := 1.0
	for i := range x {
		if dx[i] < 0 {
			limit := -tau * x[i] / dx[i]
			if limit < alpha {
				alpha = limit
			}
		}
	}
	return alpha
}
