package cost

import (
	"github.com/san-kum/hocp/internal/kkt"
	"github.com/san-kum/hocp/internal/manifold"
)

// ConfigurationTracking is the quadratic configuration/velocity/
// acceleration/torque tracking term named in §1 item 1 ("quadratic
// configuration tracking"): 0.5*dt*[ (q⊖qRef)^T Wq (q⊖qRef)
// + (v-vRef)^T Wv (v-vRef) + (a-aRef)^T Wa (a-aRef) + (u-uRef)^T Wu (u-uRef) ].
// Weights are diagonal, following the teacher's per-state-dimension
// weighting idiom in internal/config's gain presets.
type ConfigurationTracking struct {
	QRef manifold.Config
	VRef manifold.Vector
	ARef manifold.Vector
	URef manifold.Vector

	WeightQ []float64
	WeightV []float64
	WeightA []float64
	WeightU []float64

	HasFloatingBase bool
}

func (c *ConfigurationTracking) dq(s *kkt.SplitSolution) manifold.Vector {
	return manifold.Difference(s.Q, c.QRef, c.HasFloatingBase)
}

func quadraticCost(weight []float64, delta []float64) float64 {
	if weight == nil {
		return 0
	}
	sum := 0.0
	for i, w := range weight {
		sum += w * delta[i] * delta[i]
	}
	return sum
}

func diffVec(a, b []float64) []float64 {
	out := make([]float64, len(a))
	for i := range a {
		out[i] = a[i] - b[i]
	}
	return out
}

func (c *ConfigurationTracking) EvalStage(t, dt float64, s *kkt.SplitSolution) float64 {
	dq := c.dq(s)
	dv := diffVec(s.V, c.VRef)
	da := diffVec(s.A, c.ARef)
	du := diffVec(s.U, c.URef)
	return 0.5 * dt * (quadraticCost(c.WeightQ, dq) + quadraticCost(c.WeightV, dv) + quadraticCost(c.WeightA, da) + quadraticCost(c.WeightU, du))
}

func (c *ConfigurationTracking) EvalStageDerivatives(t, dt float64, s *kkt.SplitSolution, residual *kkt.SplitKKTResidual) {
	nv := len(s.V)
	dq := c.dq(s)
	dv := diffVec(s.V, c.VRef)
	da := diffVec(s.A, c.ARef)
	du := diffVec(s.U, c.URef)

	for i := 0; i < nv; i++ {
		if c.WeightQ != nil {
			residual.Lx.SetVec(i, residual.Lx.AtVec(i)+dt*c.WeightQ[i]*dq[i])
		}
		if c.WeightV != nil {
			residual.Lx.SetVec(nv+i, residual.Lx.AtVec(nv+i)+dt*c.WeightV[i]*dv[i])
		}
		if c.WeightA != nil {
			residual.La.SetVec(i, residual.La.AtVec(i)+dt*c.WeightA[i]*da[i])
		}
	}
	for i := range du {
		if c.WeightU != nil {
			residual.Lu.SetVec(i, residual.Lu.AtVec(i)+dt*c.WeightU[i]*du[i])
		}
	}
}

func (c *ConfigurationTracking) EvalStageHessian(t, dt float64, s *kkt.SplitSolution, matrix *kkt.SplitKKTMatrix) {
	nv := len(s.V)
	for i := 0; i < nv; i++ {
		if c.WeightQ != nil {
			matrix.Qxx.Set(i, i, matrix.Qxx.At(i, i)+dt*c.WeightQ[i])
		}
		if c.WeightV != nil {
			matrix.Qxx.Set(nv+i, nv+i, matrix.Qxx.At(nv+i, nv+i)+dt*c.WeightV[i])
		}
		if c.WeightA != nil {
			matrix.Qaa.Set(i, i, matrix.Qaa.At(i, i)+dt*c.WeightA[i])
		}
	}
	if c.WeightU != nil {
		for i, w := range c.WeightU {
			matrix.Quu.Set(i, i, matrix.Quu.At(i, i)+dt*w)
		}
	}
}
