package ocp

import (
	"math"
	"testing"

	"github.com/san-kum/hocp/internal/contactstatus"
	"github.com/san-kum/hocp/internal/cost"
	"github.com/san-kum/hocp/internal/kkt"
	"github.com/san-kum/hocp/internal/manifold"
	"github.com/san-kum/hocp/internal/robot"
)

func pendulumCost() cost.Function {
	return cost.NewComposite(&cost.ConfigurationTracking{
		QRef:    manifold.Config{0},
		VRef:    manifold.Vector{0},
		ARef:    manifold.Vector{0},
		URef:    manifold.Vector{0},
		WeightQ: []float64{1},
		WeightV: []float64{1},
		WeightU: []float64{0.1},
	})
}

func TestSplitOCPEvalOCPZeroResidualAtConsistentTrajectory(t *testing.T) {
	rob := robot.NewPointMassPendulum()
	w := NewSplitOCP(rob, pendulumCost(), nil, 0.01)

	const dt = 0.01
	s := kkt.NewSplitSolution(1, 1, 1)
	s.Q[0], s.V[0], s.A[0] = 0.3, 0.2, 0.05
	s.U[0] = rob.RNEA(s.Q, s.V, s.A, nil, emptyStatus())[0]

	sNext := kkt.NewSplitSolution(1, 1, 1)
	sNext.Q = rob.Integrate(s.Q, s.V, dt)
	sNext.V[0] = s.V[0] + dt*s.A[0]

	residual := kkt.NewSplitKKTResidual(1, 1)
	w.EvalOCP(0, dt, s, sNext, emptyStatus(), 1e-3, residual)

	if got := residual.Fx.AtVec(0); math.Abs(got) > 1e-9 {
		t.Errorf("Fq = %f, want ~0", got)
	}
	if got := residual.Fx.AtVec(1); math.Abs(got) > 1e-9 {
		t.Errorf("Fv = %f, want ~0", got)
	}
	if residual.ConstraintViolation > 1e-6 {
		t.Errorf("constraint violation = %f, want ~0 at a dynamically consistent trajectory", residual.ConstraintViolation)
	}
}

func TestSplitOCPLinearizeOCPProducesIdentityStateBlocks(t *testing.T) {
	rob := robot.NewPointMassPendulum()
	w := NewSplitOCP(rob, pendulumCost(), nil, 0.01)

	s := kkt.NewSplitSolution(1, 1, 1)
	sNext := kkt.NewSplitSolution(1, 1, 1)
	matrix := kkt.NewSplitKKTMatrix(1, 1, 1)
	residual := kkt.NewSplitKKTResidual(1, 1)
	w.LinearizeOCP(0, 0.01, s, sNext, emptyStatus(), matrix, residual)

	if got := matrix.Fxx.At(0, 0); got != 1 {
		t.Errorf("Fqq = %f, want 1", got)
	}
	if got := matrix.Fxx.At(0, 1); got != 0.01 {
		t.Errorf("Fqv = %f, want dt", got)
	}
}

func TestImpulseSplitOCPConservesMomentumWithNoActiveContacts(t *testing.T) {
	rob := robot.NewPointMassPendulum()
	w := NewImpulseSplitOCP(rob, pendulumCost(), nil)

	vPlus, fImp := w.ResolveVelocityJump(manifold.Config{0.1}, manifold.Vector{0.5}, emptyStatus())
	if vPlus[0] != 0.5 {
		t.Errorf("expected velocity unchanged with no active contacts, got %f", vPlus[0])
	}
	if fImp != nil {
		t.Errorf("expected no impulse force with no active contacts, got %v", fImp)
	}
}

func TestTerminalOCPEvaluatesCostOnly(t *testing.T) {
	rob := robot.NewPointMassPendulum()
	w := NewTerminalOCP(rob, pendulumCost())

	s := kkt.NewSplitSolution(1, 1, 1)
	s.Q[0] = 1.0
	residual := kkt.NewSplitKKTResidual(1, 1)
	w.EvalTerminal(0, s, residual)

	want := 0.5 * 1.0 * 1.0
	if math.Abs(residual.Cost-want) > 1e-9 {
		t.Errorf("terminal cost = %f, want %f", residual.Cost, want)
	}
}

func TestLiftSplitOCPMatchesSplitOCPOnThePostLiftStatus(t *testing.T) {
	rob := robot.NewPointMassPendulum()
	lift := NewLiftSplitOCP(rob, pendulumCost(), nil, 0.01)
	plain := NewSplitOCP(rob, pendulumCost(), nil, 0.01)

	const dt = 0.01
	s := kkt.NewSplitSolution(1, 1, 1)
	s.Q[0], s.V[0], s.A[0] = 0.3, 0.2, 0.05
	s.U[0] = rob.RNEA(s.Q, s.V, s.A, nil, emptyStatus())[0]

	sNext := kkt.NewSplitSolution(1, 1, 1)
	sNext.Q = rob.Integrate(s.Q, s.V, dt)
	sNext.V[0] = s.V[0] + dt*s.A[0]

	liftRes := kkt.NewSplitKKTResidual(1, 1)
	lift.EvalOCP(0, dt, s, sNext, emptyStatus(), 1e-3, liftRes)

	plainRes := kkt.NewSplitKKTResidual(1, 1)
	plain.EvalOCP(0, dt, s, sNext, emptyStatus(), 1e-3, plainRes)

	if liftRes.Cost != plainRes.Cost {
		t.Errorf("LiftSplitOCP.EvalOCP cost = %f, want %f (identical to SplitOCP once the post-lift status is selected)", liftRes.Cost, plainRes.Cost)
	}
	if got := lift.TrialCost(0, dt, s); got != plain.TrialCost(0, dt, s) {
		t.Errorf("LiftSplitOCP.TrialCost = %f, want %f", got, plain.TrialCost(0, dt, s))
	}
}

func emptyStatus() *contactstatus.ContactStatus {
	return contactstatus.New(nil, nil)
}
