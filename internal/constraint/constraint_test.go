package constraint

import (
	"math"
	"testing"

	"github.com/san-kum/hocp/internal/kkt"
)

func TestJointPositionUpperLimitFeasibleRoundTrip(t *testing.T) {
	s := kkt.NewSplitSolution(1, 1, 1)
	s.Q[0] = 0.2
	comps := NewJointPositionUpperLimit([]int{0}, []int{0}, []float64{1.0})
	c := comps[0]
	data := NewComponentData(c.Dimc())

	const barrier = 1e-3
	c.SetSlack(data, s, barrier)
	c.EvalConstraint(data, s, barrier)

	if !data.IsFeasible() {
		t.Fatal("expected feasible slack/dual at construction")
	}
	if data.Residual[0] > 1e-9 {
		t.Fatalf("expected near-zero residual at a consistent slack, got %f", data.Residual[0])
	}
}

func TestJointPositionLowerLimitDetectsViolation(t *testing.T) {
	s := kkt.NewSplitSolution(1, 1, 1)
	s.Q[0] = -0.5 // below the lower limit of -0.2
	comps := NewJointPositionLowerLimit([]int{0}, []int{0}, []float64{-0.2})
	c := comps[0]
	data := NewComponentData(c.Dimc())

	const barrier = 1e-3
	c.SetSlack(data, s, barrier)
	c.EvalConstraint(data, s, barrier)

	if data.ConstraintViolation() <= 0 {
		t.Fatal("expected a positive constraint violation below the lower limit")
	}
}

func TestFrictionConeFeasibleInsideCone(t *testing.T) {
	s := kkt.NewSplitSolution(1, 1, 1)
	s.F = []float64{1, 1, 20} // small fx,fy, large fz: well inside a mu=0.7 cone
	fc := NewFrictionCone(0, 0.7)
	data := NewComponentData(fc.Dimc())

	const barrier = 1e-3
	fc.SetSlack(data, s, barrier)
	fc.EvalConstraint(data, s, barrier)

	if !data.IsFeasible() {
		t.Fatal("expected feasible cone constraint")
	}
	for i, r := range data.Residual {
		if math.Abs(r) > 1e-9 {
			t.Errorf("row %d: expected near-zero residual, got %f", i, r)
		}
	}
}

func TestFractionToBoundaryCapsStepSize(t *testing.T) {
	data := NewComponentData(1)
	data.Slack[0] = 0.1
	data.Dslack[0] = -0.5 // would drive slack negative without capping

	alpha := MaxSlackStepSize(data, 0.995)
	newSlack := data.Slack[0] + alpha*data.Dslack[0]
	if newSlack < (1-0.995)*data.Slack[0]-1e-9 {
		t.Fatalf("fraction-to-boundary violated: new slack %f", newSlack)
	}
}
