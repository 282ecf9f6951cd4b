package stats

import "math"

// ControlEffort accumulates the control-effort cost ∫‖u‖²dt over a
// solved trajectory, one Observe call per stage. Grounded on the
// teacher's internal/metrics/control_effort.go Observe/Value/Reset
// shape, generalized from a per-simulation-step ‖u‖ running average to a
// per-stage ‖u‖² integral (the quantity §8's control-effort testable
// property actually compares across solves).
type ControlEffort struct {
	total   float64
	samples int
}

func NewControlEffort() *ControlEffort { return &ControlEffort{} }

// Observe folds in one stage's control vector and its stage width dt.
func (c *ControlEffort) Observe(u []float64, dt float64) {
	sumSq := 0.0
	for _, v := range u {
		sumSq += v * v
	}
	c.total += sumSq * dt
	c.samples++
}

func (c *ControlEffort) Value() float64 { return c.total }

func (c *ControlEffort) Reset() {
	c.total = 0
	c.samples = 0
}

// DynamicsViolationDrift tracks how far a solved trajectory's per-stage
// constraint violation (the dynamics/contact residual norm §4's KKT
// conditions drive to zero) strays from its first observed value, as the
// largest absolute difference |violation - first|. Grounded on the
// teacher's internal/metrics/energy.go EnergyDrift, which tracks the same
// kind of "should stay near a fixed reference" quantity for a conserved
// energy; here the reference is feasibility (near zero) rather than a
// conserved total, so Value is an absolute bound, not a relative one.
type DynamicsViolationDrift struct {
	first    float64
	have     bool
	maxDrift float64
}

func NewDynamicsViolationDrift() *DynamicsViolationDrift {
	return &DynamicsViolationDrift{}
}

func (d *DynamicsViolationDrift) Observe(violation float64) {
	if !d.have {
		d.first = violation
		d.have = true
	}
	drift := math.Abs(violation - d.first)
	if drift > d.maxDrift {
		d.maxDrift = drift
	}
}

func (d *DynamicsViolationDrift) Value() float64 { return d.maxDrift }

func (d *DynamicsViolationDrift) Reset() {
	d.first = 0
	d.have = false
	d.maxDrift = 0
}

// TrajectorySummary is the terminal report over a solved stage array,
// §8's control-effort and feasibility-drift testable properties.
type TrajectorySummary struct {
	ControlEffort          float64
	MaxConstraintViolation float64
	ViolationDrift         float64
}

// SummarizeTrajectory folds per-stage controls, dynamics-equation
// residual norms, and stage widths into one TrajectorySummary.
func SummarizeTrajectory(controls [][]float64, violations []float64, dts []float64) TrajectorySummary {
	effort := NewControlEffort()
	drift := NewDynamicsViolationDrift()
	maxViolation := 0.0
	for i, u := range controls {
		dt := 0.0
		if i < len(dts) {
			dt = dts[i]
		}
		effort.Observe(u, dt)
		if i < len(violations) {
			drift.Observe(violations[i])
			if violations[i] > maxViolation {
				maxViolation = violations[i]
			}
		}
	}
	return TrajectorySummary{
		ControlEffort:          effort.Value(),
		MaxConstraintViolation: maxViolation,
		ViolationDrift:         drift.Value(),
	}
}
