package constraint

import (
	"math"

	"github.com/san-kum/hocp/internal/kkt"
)

// FrictionCone is the linearized (pyramidal) friction-cone inequality for
// one active point contact: fz >= 0 and |fx|,|fy| <= mu*fz, reimplemented
// from the linearized form in spec.md §2 item 3 — no original_source file
// is copied, only the naming convention of
// test/constraints/friction_cone_test.cpp is followed. `offset` is this
// contact's position within the stage's stacked active-force vector.
type FrictionCone struct {
	offset int
	mu     float64
}

// NewFrictionCone builds a 5-row pyramidal friction-cone constraint for
// the contact occupying s.F[offset:offset+3].
func NewFrictionCone(offset int, mu float64) *FrictionCone {
	return &FrictionCone{offset: offset, mu: mu}
}

func (c *FrictionCone) Dimc() int { return 5 }

func (c *FrictionCone) force(s *kkt.SplitSolution) (fx, fy, fz float64) {
	return s.F[c.offset], s.F[c.offset+1], s.F[c.offset+2]
}

// g returns the 5 linearized inequalities: [-fz, fx-mu*fz, -fx-mu*fz,
// fy-mu*fz, -fy-mu*fz], each required <= 0.
func (c *FrictionCone) g(s *kkt.SplitSolution) [5]float64 {
	fx, fy, fz := c.force(s)
	return [5]float64{
		-fz,
		fx - c.mu*fz,
		-fx - c.mu*fz,
		fy - c.mu*fz,
		-fy - c.mu*fz,
	}
}

// jacobianRow returns dg_row/d(fx,fy,fz) for row in [0,5).
func jacobianRow(row int, mu float64) [3]float64 {
	switch row {
	case 0:
		return [3]float64{0, 0, -1}
	case 1:
		return [3]float64{1, 0, -mu}
	case 2:
		return [3]float64{-1, 0, -mu}
	case 3:
		return [3]float64{0, 1, -mu}
	default:
		return [3]float64{0, -1, -mu}
	}
}

func (c *FrictionCone) SetSlack(data *ComponentData, s *kkt.SplitSolution, barrier float64) {
	g := c.g(s)
	for i := 0; i < 5; i++ {
		slack := -g[i]
		if slack < barrier {
			slack = barrier
		}
		data.Slack[i] = slack
		data.Dual[i] = barrier / slack
	}
}

func (c *FrictionCone) EvalConstraint(data *ComponentData, s *kkt.SplitSolution, barrier float64) {
	g := c.g(s)
	lb := 0.0
	for i := 0; i < 5; i++ {
		data.Residual[i] = g[i] + data.Slack[i]
		data.Cmpl[i] = data.Slack[i]*data.Dual[i] - barrier
		lb += math.Log(data.Slack[i])
	}
	data.LogBarrier = lb
}

func (c *FrictionCone) EvalDerivatives(data *ComponentData, s *kkt.SplitSolution, dt float64, residual *kkt.SplitKKTResidual) {
	for row := 0; row < 5; row++ {
		jac := jacobianRow(row, c.mu)
		delta := data.Dual[row] * dt
		for k := 0; k < 3; k++ {
			idx := c.offset + k
			residual.Lf.SetVec(idx, residual.Lf.AtVec(idx)+jac[k]*delta)
		}
	}
}

func (c *FrictionCone) CondenseSlackAndDual(data *ComponentData, s *kkt.SplitSolution, dt float64, matrix *kkt.SplitKKTMatrix, residual *kkt.SplitKKTResidual) {
	for row := 0; row < 5; row++ {
		jac := jacobianRow(row, c.mu)
		coef := dt * data.Dual[row] / data.Slack[row]
		gradCoef := dt * (data.Dual[row]*data.Residual[row] - data.Cmpl[row]) / data.Slack[row]
		for k := 0; k < 3; k++ {
			idxK := c.offset + k
			for l := 0; l < 3; l++ {
				idxL := c.offset + l
				matrix.Qff.Set(idxK, idxL, matrix.Qff.At(idxK, idxL)+coef*jac[k]*jac[l])
			}
			residual.Lf.SetVec(idxK, residual.Lf.AtVec(idxK)+gradCoef*jac[k])
		}
	}
}

func (c *FrictionCone) ExpandSlackAndDual(data *ComponentData, s *kkt.SplitSolution, d *kkt.SplitDirection) {
	for row := 0; row < 5; row++ {
		jac := jacobianRow(row, c.mu)
		dg := 0.0
		for k := 0; k < 3; k++ {
			dg += jac[k] * d.Df[c.offset+k]
		}
		data.Dslack[row] = -dg - data.Residual[row]
		data.Ddual[row] = -(data.Dual[row]/data.Slack[row])*data.Dslack[row] - data.Cmpl[row]/data.Slack[row]
	}
}
