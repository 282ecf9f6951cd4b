// Package constraint implements the primal-dual interior-point
// bookkeeping per constraint component (§4.2) plus a handful of concrete
// components (joint position/torque bounds, a friction cone) so the
// solver has something runnable to enforce. Grounded on
// original_source/include/robotoc/constraints/{constraint_component_data,
// constraints_data}.hpp.
package constraint

import "math"

// ComponentData is the per-stage, per-component interior-point state:
// slack, dual, primal residual, complementarity residual, and their
// Newton directions, §4.2. Grounded field-for-field on
// constraint_component_data.hpp (`slack`, `dual`, `residual`, `cmpl`,
// `dslack`, `ddual`, `log_barrier`); the original's extra `r`/`J` scratch
// vectors are owned by each component's own working buffers instead.
type ComponentData struct {
	Slack    []float64
	Dual     []float64
	Residual []float64
	Cmpl     []float64
	Dslack   []float64
	Ddual    []float64

	LogBarrier float64
}

// NewComponentData allocates zeroed interior-point state for a
// constraint of dimension dimc.
func NewComponentData(dimc int) *ComponentData {
	return &ComponentData{
		Slack:    make([]float64, dimc),
		Dual:     make([]float64, dimc),
		Residual: make([]float64, dimc),
		Cmpl:     make([]float64, dimc),
		Dslack:   make([]float64, dimc),
		Ddual:    make([]float64, dimc),
	}
}

// Dimc returns the constraint dimension.
func (d *ComponentData) Dimc() int { return len(d.Slack) }

// KKTError returns ‖residual‖²+‖cmpl‖², this component's contribution to
// the global KKT-error convergence check.
func (d *ComponentData) KKTError() float64 {
	e := 0.0
	for i := range d.Residual {
		e += d.Residual[i]*d.Residual[i] + d.Cmpl[i]*d.Cmpl[i]
	}
	return e
}

// ConstraintViolation returns the l1 norm of the primal residual,
// clipped to its infeasible (positive) part — g(s) <= 0 is the feasible
// region, so only g(s) > 0 counts as violation.
func (d *ComponentData) ConstraintViolation() float64 {
	v := 0.0
	for _, r := range d.Residual {
		if r > 0 {
			v += r
		}
	}
	return v
}

// IsFeasible reports whether every slack and dual entry is strictly
// positive, the interior-point feasibility condition (§7,
// "isCurrentSolutionFeasible").
func (d *ComponentData) IsFeasible() bool {
	for i := range d.Slack {
		if d.Slack[i] <= 0 || d.Dual[i] <= 0 {
			return false
		}
	}
	return true
}

// CopySlackAndDual copies slack/dual (but not residual/cmpl, which are
// recomputed every iteration) from other into d.
func (d *ComponentData) CopySlackAndDual(other *ComponentData) {
	copy(d.Slack, other.Slack)
	copy(d.Dual, other.Dual)
}

// RestoreFeasibility enlarges every nonpositive slack to the barrier
// value and resets the matching dual, the restoration step named in §7
// ("the solver still attempts a feasibility-restoration iteration by
// enlarging slacks").
func (d *ComponentData) RestoreFeasibility(barrier float64) {
	for i := range d.Slack {
		if d.Slack[i] <= 0 {
			d.Slack[i] = barrier
		}
		d.Dual[i] = barrier / d.Slack[i]
	}
}

func logBarrierSum(slack []float64) float64 {
	s := 0.0
	for _, v := range slack {
		s += math.Log(v)
	}
	return s
}
