// Package cost implements the CostFunction collaborator interface (§6)
// plus a quadratic tracking term library (§1, "quadratic configuration
// tracking, contact-force tracking, task-space tracking"). Grounded on
// the aggregate-metric shape of the teacher's internal/metrics package
// (Name/Observe/Value/Reset) generalized from a per-timestep running
// average into a per-stage cost-and-derivative evaluator.
package cost

import "github.com/san-kum/hocp/internal/kkt"

// Function is the polymorphic cost interface the solver core calls,
// §6 ("CostFunction: eval_stage(t,dt,s) -> R, eval_stage_derivatives(...)
// -> KKTResidual+=, eval_stage_hessian(...) -> KKTMatrix+=, analogous
// terminal and impulse variants").
type Function interface {
	EvalStage(t, dt float64, s *kkt.SplitSolution) float64
	EvalStageDerivatives(t, dt float64, s *kkt.SplitSolution, residual *kkt.SplitKKTResidual)
	EvalStageHessian(t, dt float64, s *kkt.SplitSolution, matrix *kkt.SplitKKTMatrix)

	EvalTerminal(t float64, s *kkt.SplitSolution) float64
	EvalTerminalDerivatives(t float64, s *kkt.SplitSolution, residual *kkt.SplitKKTResidual)
	EvalTerminalHessian(t float64, s *kkt.SplitSolution, matrix *kkt.SplitKKTMatrix)

	EvalImpulse(t float64, s *kkt.SplitSolution) float64
	EvalImpulseDerivatives(t float64, s *kkt.SplitSolution, residual *kkt.SplitKKTResidual)
	EvalImpulseHessian(t float64, s *kkt.SplitSolution, matrix *kkt.SplitKKTMatrix)
}

// Term is one additive component of a Function, following the same
// eval/derivatives/hessian triad; a Composite sums an arbitrary number of
// Terms into a single Function, the cost-side analog of
// internal/constraint's Component list.
type Term interface {
	EvalStage(t, dt float64, s *kkt.SplitSolution) float64
	EvalStageDerivatives(t, dt float64, s *kkt.SplitSolution, residual *kkt.SplitKKTResidual)
	EvalStageHessian(t, dt float64, s *kkt.SplitSolution, matrix *kkt.SplitKKTMatrix)
}

// Composite sums a list of Terms and reuses the same stage evaluator for
// the terminal and impulse variants (dt=1 for terminal/impulse, no
// Hessian scaling by interval width).
type Composite struct {
	Terms []Term
}

// NewComposite builds a Function from the given additive terms.
func NewComposite(terms ...Term) *Composite {
	return &Composite{Terms: terms}
}

func (c *Composite) EvalStage(t, dt float64, s *kkt.SplitSolution) float64 {
	sum := 0.0
	for _, term := range c.Terms {
		sum += term.EvalStage(t, dt, s)
	}
	return sum
}

func (c *Composite) EvalStageDerivatives(t, dt float64, s *kkt.SplitSolution, residual *kkt.SplitKKTResidual) {
	for _, term := range c.Terms {
		term.EvalStageDerivatives(t, dt, s, residual)
	}
}

func (c *Composite) EvalStageHessian(t, dt float64, s *kkt.SplitSolution, matrix *kkt.SplitKKTMatrix) {
	for _, term := range c.Terms {
		term.EvalStageHessian(t, dt, s, matrix)
	}
}

func (c *Composite) EvalTerminal(t float64, s *kkt.SplitSolution) float64 {
	return c.EvalStage(t, 1, s)
}

func (c *Composite) EvalTerminalDerivatives(t float64, s *kkt.SplitSolution, residual *kkt.SplitKKTResidual) {
	c.EvalStageDerivatives(t, 1, s, residual)
}

func (c *Composite) EvalTerminalHessian(t float64, s *kkt.SplitSolution, matrix *kkt.SplitKKTMatrix) {
	c.EvalStageHessian(t, 1, s, matrix)
}

func (c *Composite) EvalImpulse(t float64, s *kkt.SplitSolution) float64 {
	return c.EvalStage(t, 1, s)
}

func (c *Composite) EvalImpulseDerivatives(t float64, s *kkt.SplitSolution, residual *kkt.SplitKKTResidual) {
	c.EvalStageDerivatives(t, 1, s, residual)
}

func (c *Composite) EvalImpulseHessian(t float64, s *kkt.SplitSolution, matrix *kkt.SplitKKTMatrix) {
	c.EvalStageHessian(t, 1, s, matrix)
}
