package constraint

import (
	"math"

	"github.com/san-kum/hocp/internal/kkt"
)

// entry pairs one constraint component with its per-stage interior-point
// data.
type entry struct {
	component Component
	data      *ComponentData
}

// ConstraintsData is the full set of active constraint components at one
// time stage together with their interior-point state, §4.2. Grounded on
// original_source/include/robotoc/constraints/constraints_data.hpp; the
// original splits components into position/velocity/acceleration/impulse
// "levels" for its multibody-derivative bookkeeping — this module's
// Robot fixtures don't need that split (every component here reads
// either q or u or f directly), so ConstraintsData keeps one flat list
// instead.
type ConstraintsData struct {
	entries []entry
}

// NewConstraintsData builds a ConstraintsData from the stage's active
// components, allocating fresh interior-point state for each.
func NewConstraintsData(components []Component) *ConstraintsData {
	d := &ConstraintsData{entries: make([]entry, len(components))}
	for i, c := range components {
		d.entries[i] = entry{component: c, data: NewComponentData(c.Dimc())}
	}
	return d
}

// SetSlack initializes every component's slack/dual from s.
func (d *ConstraintsData) SetSlack(s *kkt.SplitSolution, barrier float64) {
	for _, e := range d.entries {
		e.component.SetSlack(e.data, s, barrier)
	}
}

// EvalConstraint evaluates every component's residual/cmpl from s.
func (d *ConstraintsData) EvalConstraint(s *kkt.SplitSolution, barrier float64) {
	for _, e := range d.entries {
		e.component.EvalConstraint(e.data, s, barrier)
	}
}

// EvalDerivatives accumulates every component's gradient contribution
// into residual.
func (d *ConstraintsData) EvalDerivatives(s *kkt.SplitSolution, dt float64, residual *kkt.SplitKKTResidual) {
	for _, e := range d.entries {
		e.component.EvalDerivatives(e.data, s, dt, residual)
	}
}

// CondenseSlackAndDual accumulates every component's Schur-complement
// term into matrix and residual.
func (d *ConstraintsData) CondenseSlackAndDual(s *kkt.SplitSolution, dt float64, matrix *kkt.SplitKKTMatrix, residual *kkt.SplitKKTResidual) {
	for _, e := range d.entries {
		e.component.CondenseSlackAndDual(e.data, s, dt, matrix, residual)
	}
}

// ExpandSlackAndDual recovers every component's dslack/ddual from the
// primal direction d.
func (d *ConstraintsData) ExpandSlackAndDual(s *kkt.SplitSolution, d2 *kkt.SplitDirection) {
	for _, e := range d.entries {
		e.component.ExpandSlackAndDual(e.data, s, d2)
	}
}

// MaxPrimalStepSize returns the tightest fraction-to-boundary slack step
// size across every component.
func (d *ConstraintsData) MaxPrimalStepSize(tau float64) float64 {
	alpha := 1.0
	for _, e := range d.entries {
		if a := MaxSlackStepSize(e.data, tau); a < alpha {
			alpha = a
		}
	}
	return alpha
}

// MaxDualStepSize returns the tightest fraction-to-boundary dual step
// size across every component.
func (d *ConstraintsData) MaxDualStepSize(tau float64) float64 {
	alpha := 1.0
	for _, e := range d.entries {
		if a := MaxDualStepSize(e.data, tau); a < alpha {
			alpha = a
		}
	}
	return alpha
}

// ApplyStep scales and applies dslack/ddual by their respective
// step sizes, §4.6 step 6.
func (d *ConstraintsData) ApplyStep(alphaPrimal, alphaDual float64) {
	for _, e := range d.entries {
		for i := range e.data.Slack {
			e.data.Slack[i] += alphaPrimal * e.data.Dslack[i]
			e.data.Dual[i] += alphaDual * e.data.Ddual[i]
		}
	}
}

// KKTError sums every component's KKT-error contribution.
func (d *ConstraintsData) KKTError() float64 {
	e := 0.0
	for _, en := range d.entries {
		e += en.data.KKTError()
	}
	return e
}

// ConstraintViolation sums every component's constraint violation.
func (d *ConstraintsData) ConstraintViolation() float64 {
	v := 0.0
	for _, en := range d.entries {
		v += en.data.ConstraintViolation()
	}
	return v
}

// LogBarrier sums every component's log-barrier value, used by the line
// search's merit function (merit = cost - mu*sum(log(slack))).
func (d *ConstraintsData) LogBarrier() float64 {
	s := 0.0
	for _, e := range d.entries {
		s += e.data.LogBarrier
	}
	return s
}

// LogBarrierAt returns the log-barrier sum at trial step size alpha,
// evaluating each component's slack along the already-computed Newton
// direction (slack + alpha·dslack) rather than re-evaluating the
// constraint at a mutated solution — the same linear trial model the
// line search already uses for constraint violation, §4.5.
func (d *ConstraintsData) LogBarrierAt(alpha float64) float64 {
	sum := 0.0
	for _, e := range d.entries {
		for i, slack := range e.data.Slack {
			sum += math.Log(slack + alpha*e.data.Dslack[i])
		}
	}
	return sum
}

// IsFeasible reports whether every component's slack/dual are strictly
// positive.
func (d *ConstraintsData) IsFeasible() bool {
	for _, e := range d.entries {
		if !e.data.IsFeasible() {
			return false
		}
	}
	return true
}

// RestoreFeasibility runs every component's feasibility-restoration step.
func (d *ConstraintsData) RestoreFeasibility(barrier float64) {
	for _, e := range d.entries {
		e.data.RestoreFeasibility(barrier)
	}
}
