package robot

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/hocp/internal/contactstatus"
	"github.com/san-kum/hocp/internal/manifold"
)

// PointMassPendulum is the unconstrained (UnOCP) single-joint pendulum
// fixture named in §6, closed-form dynamics adapted from the teacher's
// internal/physics/pendulum.go — RNEA here is the closed-form inverse
// dynamics of that same system rather than a generic rigid-body recursion.
type PointMassPendulum struct {
	Mass    float64
	Length  float64
	Damping float64
	Gravity float64

	q0, v0 float64 // cached by UpdateKinematics
}

// NewPointMassPendulum builds a pendulum with the teacher's default
// physical parameters.
func NewPointMassPendulum() *PointMassPendulum {
	return &PointMassPendulum{
		Mass:    1.0,
		Length:  1.0,
		Damping: 0.1,
		Gravity: 9.81,
	}
}

func (p *PointMassPendulum) DimQ() int                   { return 1 }
func (p *PointMassPendulum) DimV() int                   { return 1 }
func (p *PointMassPendulum) DimU() int                   { return 1 }
func (p *PointMassPendulum) HasFloatingBase() bool       { return false }
func (p *PointMassPendulum) MaxContacts() int            { return 0 }
func (p *PointMassPendulum) ContactFrameNames() []string { return nil }

func (p *PointMassPendulum) Integrate(q manifold.Config, delta manifold.Vector, alpha float64) manifold.Config {
	return manifold.Integrate(q, delta, alpha, false)
}

func (p *PointMassPendulum) Difference(q1, q2 manifold.Config) manifold.Vector {
	return manifold.Difference(q1, q2, false)
}

func (p *PointMassPendulum) UpdateKinematics(q manifold.Config, v manifold.Vector) {
	p.q0, p.v0 = q[0], v[0]
}

func (p *PointMassPendulum) FramePosition(id int) [3]float64 {
	return [3]float64{p.Length * math.Sin(p.q0), -p.Length * math.Cos(p.q0), 0}
}

func (p *PointMassPendulum) ContactJacobian(status *contactstatus.ContactStatus) *mat.Dense {
	return &mat.Dense{}
}

// RNEA returns the joint torque that produces acceleration a at (q,v):
// ID(q,v,a) = m·L²·a + damping·v + m·g·L·sin(q), the inverse of the
// teacher's forward dynamics in internal/physics/pendulum.go.
func (p *PointMassPendulum) RNEA(q manifold.Config, v, a manifold.Vector, f []float64, status *contactstatus.ContactStatus) []float64 {
	theta, omega, alpha := q[0], v[0], a[0]
	torque := p.Mass*p.Length*p.Length*alpha + p.Damping*omega + p.Mass*p.Gravity*p.Length*math.Sin(theta)
	return []float64{torque}
}

func (p *PointMassPendulum) RNEAPartials(q manifold.Config, v, a manifold.Vector, f []float64, status *contactstatus.ContactStatus) (dq, dv, da *mat.Dense) {
	theta := q[0]
	dq = mat.NewDense(1, 1, []float64{p.Mass * p.Gravity * p.Length * math.Cos(theta)})
	dv = mat.NewDense(1, 1, []float64{p.Damping})
	da = mat.NewDense(1, 1, []float64{p.Mass * p.Length * p.Length})
	return dq, dv, da
}

func (p *PointMassPendulum) ContactAccelerationResidual(status *contactstatus.ContactStatus, q manifold.Config, v, a manifold.Vector, tauB float64) []float64 {
	return nil
}

func (p *PointMassPendulum) Clone() Robot {
	cp := *p
	return &cp
}
