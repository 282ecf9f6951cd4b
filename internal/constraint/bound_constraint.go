package constraint

import (
	"math"

	"github.com/san-kum/hocp/internal/kkt"
)

// Target selects which decision-variable block a BoundConstraint reads
// and writes: the configuration q (via its tangent-space index) or the
// actuated torque u.
type Target int

const (
	TargetJointPosition Target = iota
	TargetJointTorque
)

// BoundConstraint is a one-sided linear inequality on a single
// coordinate of q or u, g(x) = sign*(x-bound) <= 0, covering both upper
// (sign=+1) and lower (sign=-1, bound enters as g=bound-x) limits with
// one implementation, §4.2. `qIndex`/`tangentIndex` lets position
// constraints read the coordinate from q directly while writing
// gradients/Hessians into the tangent-space Lq/Qqq blocks (identical
// indices for a revolute joint with no floating base ahead of it).
type BoundConstraint struct {
	target       Target
	qIndex       int // valid only when target == TargetJointPosition
	tangentIndex int
	bound        float64
	sign         float64
}

// NewJointPositionUpperLimit builds dimc 1-at-a-time bound constraints
// for the given (q index, tangent index) pairs and upper limits,
// grounded on constraints/joint_position_upper_limit.hpp's per-joint
// inequality g = q - q_upper.
func NewJointPositionUpperLimit(qIndices, tangentIndices []int, upper []float64) []Component {
	return buildBounds(TargetJointPosition, qIndices, tangentIndices, upper, 1)
}

// NewJointPositionLowerLimit mirrors NewJointPositionUpperLimit for
// lower limits, g = q_lower - q.
func NewJointPositionLowerLimit(qIndices, tangentIndices []int, lower []float64) []Component {
	return buildBounds(TargetJointPosition, qIndices, tangentIndices, lower, -1)
}

// NewJointTorquesUpperLimit mirrors the position case for u, grounded on
// constraints/joint_torques_upper_limit.hpp.
func NewJointTorquesUpperLimit(tangentIndices []int, upper []float64) []Component {
	return buildBounds(TargetJointTorque, nil, tangentIndices, upper, 1)
}

// NewJointTorquesLowerLimit mirrors the torque case for lower limits.
func NewJointTorquesLowerLimit(tangentIndices []int, lower []float64) []Component {
	return buildBounds(TargetJointTorque, nil, tangentIndices, lower, -1)
}

func buildBounds(target Target, qIndices, tangentIndices []int, bounds []float64, sign float64) []Component {
	out := make([]Component, len(tangentIndices))
	for i, ti := range tangentIndices {
		qi := 0
		if qIndices != nil {
			qi = qIndices[i]
		}
		out[i] = &BoundConstraint{target: target, qIndex: qi, tangentIndex: ti, bound: bounds[i], sign: sign}
	}
	return out
}

func (c *BoundConstraint) Dimc() int { return 1 }

func (c *BoundConstraint) coordinate(s *kkt.SplitSolution) float64 {
	if c.target == TargetJointPosition {
		return s.Q[c.qIndex]
	}
	return s.U[c.tangentIndex]
}

func (c *BoundConstraint) g(s *kkt.SplitSolution) float64 {
	return c.sign * (c.coordinate(s) - c.bound)
}

func (c *BoundConstraint) SetSlack(data *ComponentData, s *kkt.SplitSolution, barrier float64) {
	g := c.g(s)
	slack := -g
	if slack < barrier {
		slack = barrier
	}
	data.Slack[0] = slack
	data.Dual[0] = barrier / slack
}

func (c *BoundConstraint) EvalConstraint(data *ComponentData, s *kkt.SplitSolution, barrier float64) {
	data.Residual[0] = c.g(s) + data.Slack[0]
	data.Cmpl[0] = data.Slack[0]*data.Dual[0] - barrier
	data.LogBarrier = math.Log(data.Slack[0])
}

func (c *BoundConstraint) EvalDerivatives(data *ComponentData, s *kkt.SplitSolution, dt float64, residual *kkt.SplitKKTResidual) {
	delta := c.sign * data.Dual[0] * dt
	if c.target == TargetJointPosition {
		residual.Lx.SetVec(c.tangentIndex, residual.Lx.AtVec(c.tangentIndex)+delta)
	} else {
		residual.Lu.SetVec(c.tangentIndex, residual.Lu.AtVec(c.tangentIndex)+delta)
	}
}

func (c *BoundConstraint) CondenseSlackAndDual(data *ComponentData, s *kkt.SplitSolution, dt float64, matrix *kkt.SplitKKTMatrix, residual *kkt.SplitKKTResidual) {
	coef := dt * data.Dual[0] / data.Slack[0]
	gradCorrection := c.sign * dt * (data.Dual[0]*data.Residual[0] - data.Cmpl[0]) / data.Slack[0]

	if c.target == TargetJointPosition {
		idx := c.tangentIndex
		matrix.Qxx.Set(idx, idx, matrix.Qxx.At(idx, idx)+coef)
		residual.Lx.SetVec(idx, residual.Lx.AtVec(idx)+gradCorrection)
	} else {
		idx := c.tangentIndex
		matrix.Quu.Set(idx, idx, matrix.Quu.At(idx, idx)+coef)
		residual.Lu.SetVec(idx, residual.Lu.AtVec(idx)+gradCorrection)
	}
}

func (c *BoundConstraint) ExpandSlackAndDual(data *ComponentData, s *kkt.SplitSolution, d *kkt.SplitDirection) {
	var dx float64
	if c.target == TargetJointPosition {
		dx = d.Dq[c.tangentIndex]
	} else {
		dx = d.Du[c.tangentIndex]
	}
	dg := c.sign * dx
	data.Dslack[0] = -dg - data.Residual[0]
	data.Ddual[0] = -(data.Dual[0]/data.Slack[0])*data.Dslack[0] - data.Cmpl[0]/data.Slack[0]
}
