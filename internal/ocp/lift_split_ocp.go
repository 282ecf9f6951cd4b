package ocp

import (
	"github.com/san-kum/hocp/internal/constraint"
	"github.com/san-kum/hocp/internal/cost"
	"github.com/san-kum/hocp/internal/robot"
)

// LiftSplitOCP is the worker for a contact-break event, §4.3 "Lift
// stages": the decision variables lose the lifting-off contact's force
// but the state equation is otherwise a normal stage of width dt_post.
// It is a thin wrapper over SplitOCP rather than a parallel
// implementation — the caller passes the post-lift ContactStatus (with
// the broken contact deactivated) to every SplitOCP method, so the only
// thing specific to a lift event is which ContactStatus the driver
// selects for this stage, not the per-stage math. solver.New constructs
// one for every PreLift/PostLift grid point instead of a plain SplitOCP,
// so a lift stage's worker is identifiably this type even though its
// behavior is inherited wholesale.
type LiftSplitOCP struct {
	*SplitOCP
}

func NewLiftSplitOCP(rob robot.Robot, costFn cost.Function, constraints *constraint.ConstraintsData, tauB float64) *LiftSplitOCP {
	return &LiftSplitOCP{SplitOCP: NewSplitOCP(rob, costFn, constraints, tauB)}
}
