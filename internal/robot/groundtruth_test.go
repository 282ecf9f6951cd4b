package robot

import (
	"math"
	"testing"

	"github.com/san-kum/hocp/internal/manifold"
)

// TestGroundTruthRK4MatchesClosedFormPendulum checks property 2 (state
// equation reproducibility): integrating the pendulum forward under zero
// torque should trade potential for kinetic energy, never gaining energy.
func TestGroundTruthRK4MatchesClosedFormPendulum(t *testing.T) {
	p := NewPointMassPendulum()
	p.Damping = 0
	rk4 := NewGroundTruthRK4()

	q := manifold.Config{0.8}
	v := manifold.Vector{0}
	energy0 := energyPendulum(p, q, v)

	dt := 0.01
	for i := 0; i < 200; i++ {
		q, v = rk4.Step(p, q, v, []float64{0}, float64(i)*dt, dt)
	}

	energy1 := energyPendulum(p, q, v)
	if math.Abs(energy1-energy0) > 1e-3 {
		t.Errorf("expected energy conservation under zero damping, got %f -> %f", energy0, energy1)
	}
}

func energyPendulum(p *PointMassPendulum, q manifold.Config, v manifold.Vector) float64 {
	ke := 0.5 * p.Mass * p.Length * p.Length * v[0] * v[0]
	pe := p.Mass * p.Gravity * p.Length * (1 - math.Cos(q[0]))
	return ke + pe
}
