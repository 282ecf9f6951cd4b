package ocp

import (
	"github.com/san-kum/hocp/internal/kkt"
	"github.com/san-kum/hocp/internal/robot"
)

// SwitchingConstraint evaluates the §4.3 switching constraint at an
// STO-enabled event: the contact frame that the event activates or
// deactivates must sit exactly on the ground at t_e, expressed without
// re-splitting the interval by extrapolating the pre-event stage's
// (q, v, a) across the full, undivided interval width
// q[i] ⊕ (dt_pre+dt_post)·v[i] ⊕ (dt_pre·dt_post)·a[i] and reading off
// that frame's world height. Grounded on the same Integrate-twice shape
// LinearizeImpulseTransition already uses to fold the velocity jump into
// the driver's Riccati chain.
type SwitchingConstraint struct {
	rob     robot.Robot
	frameID int
}

// NewSwitchingConstraint builds the constraint evaluator for the given
// contact frame, using a Robot clone dedicated to this computation so it
// never races the stage worker that owns rob's kinematics cache.
func NewSwitchingConstraint(rob robot.Robot, frameID int) *SwitchingConstraint {
	return &SwitchingConstraint{rob: rob, frameID: frameID}
}

// height extrapolates s's (q, v, a) by dtProd beyond the full dtSum step
// and returns the contact frame's world z-height there.
func (c *SwitchingConstraint) height(s *kkt.SplitSolution, dtSum, dtProd float64) float64 {
	q1 := c.rob.Integrate(s.Q, s.V, dtSum)
	qExtrap := c.rob.Integrate(q1, s.A, dtProd)
	c.rob.UpdateKinematics(qExtrap, s.V)
	pos := c.rob.FramePosition(c.frameID)
	return pos[2]
}

// Eval returns the switching-constraint residual φ_c at the current
// dtPre/dtPost split and its partial derivative with respect to the
// scalar switching-time variable dts (a unit increase in dtPre matched
// by a unit decrease in dtPost, since the two halves must keep summing
// to the fixed ideal-interval width). The partial is taken by a central
// difference on dtProd = dtPre·dtPost, since φ_c's dependence on it runs
// through a second manifold integration with no closed-form derivative
// in this module's Robot contract.
func (c *SwitchingConstraint) Eval(s *kkt.SplitSolution, dtPre, dtPost float64) (phi, dphiDts float64) {
	dtSum := dtPre + dtPost
	dtProd := dtPre * dtPost
	phi = c.height(s, dtSum, dtProd)

	const h = 1e-6
	slope := dtPost - dtPre // d(dtProd)/d(dts)
	plus := c.height(s, dtSum, dtProd+h*slope)
	minus := c.height(s, dtSum, dtProd-h*slope)
	dphiDts = (plus - minus) / (2 * h)
	return phi, dphiDts
}
