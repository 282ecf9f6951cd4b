package ocp

import (
	"github.com/san-kum/hocp/internal/cost"
	"github.com/san-kum/hocp/internal/kkt"
	"github.com/san-kum/hocp/internal/robot"
)

// TerminalOCP is the worker for the final stage N: only the terminal cost
// and its derivatives are evaluated, with no state-transition, dynamics,
// or contact residual (there is no stage N+1 to transition into), §4.3.
type TerminalOCP struct {
	rob    robot.Robot
	costFn cost.Function
}

func NewTerminalOCP(rob robot.Robot, costFn cost.Function) *TerminalOCP {
	return &TerminalOCP{rob: rob, costFn: costFn}
}

func (w *TerminalOCP) EvalTerminal(t float64, s *kkt.SplitSolution, residual *kkt.SplitKKTResidual) {
	residual.Cost = w.costFn.EvalTerminal(t, s)
	w.costFn.EvalTerminalDerivatives(t, s, residual)
}

func (w *TerminalOCP) LinearizeTerminal(t float64, s *kkt.SplitSolution, matrix *kkt.SplitKKTMatrix) {
	w.costFn.EvalTerminalHessian(t, s, matrix)
	nv := w.rob.DimV()
	for i := 0; i < nv; i++ {
		matrix.Fxx.Set(i, i, 1)
		matrix.Fxx.Set(nv+i, nv+i, 1)
	}
}
