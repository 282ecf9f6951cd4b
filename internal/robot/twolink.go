package robot

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/hocp/internal/contactstatus"
	"github.com/san-kum/hocp/internal/manifold"
)

// TwoLinkManipulator is the second UnOCP fixture named in §6: a planar
// 2-link arm, closed-form dynamics adapted
// from the teacher's internal/models/double_pendulum.go. dim(u)=2 so both
// joints can be driven (the teacher's Derivative only actuated the first
// joint; this fixture actuates both, one torque per joint).
type TwoLinkManipulator struct {
	M1, M2  float64
	L1, L2  float64
	Gravity float64

	q0 [2]float64
	v0 [2]float64
}

// NewTwoLinkManipulator builds an arm with the teacher's default masses,
// lengths, and gravity.
func NewTwoLinkManipulator() *TwoLinkManipulator {
	return &TwoLinkManipulator{
		M1: 1.0, M2: 1.0,
		L1: 1.0, L2: 1.0,
		Gravity: 9.81,
	}
}

func (d *TwoLinkManipulator) DimQ() int                   { return 2 }
func (d *TwoLinkManipulator) DimV() int                   { return 2 }
func (d *TwoLinkManipulator) DimU() int                   { return 2 }
func (d *TwoLinkManipulator) HasFloatingBase() bool       { return false }
func (d *TwoLinkManipulator) MaxContacts() int            { return 0 }
func (d *TwoLinkManipulator) ContactFrameNames() []string { return nil }

func (d *TwoLinkManipulator) Integrate(q manifold.Config, delta manifold.Vector, alpha float64) manifold.Config {
	return manifold.Integrate(q, delta, alpha, false)
}

func (d *TwoLinkManipulator) Difference(q1, q2 manifold.Config) manifold.Vector {
	return manifold.Difference(q1, q2, false)
}

func (d *TwoLinkManipulator) UpdateKinematics(q manifold.Config, v manifold.Vector) {
	d.q0[0], d.q0[1] = q[0], q[1]
	d.v0[0], d.v0[1] = v[0], v[1]
}

func (d *TwoLinkManipulator) FramePosition(id int) [3]float64 {
	theta1, theta2 := d.q0[0], d.q0[1]
	x1, y1 := d.L1*math.Sin(theta1), -d.L1*math.Cos(theta1)
	if id == 0 {
		return [3]float64{x1, y1, 0}
	}
	x2 := x1 + d.L2*math.Sin(theta2)
	y2 := y1 - d.L2*math.Cos(theta2)
	return [3]float64{x2, y2, 0}
}

func (d *TwoLinkManipulator) ContactJacobian(status *contactstatus.ContactStatus) *mat.Dense {
	return &mat.Dense{}
}

// massMatrix returns the 2x2 joint-space inertia matrix at (theta1,
// theta2), both link angles measured from the vertical (theta2 is not
// relative to the first link), so the coupling term depends on
// theta1-theta2; it follows the coupled terms of the teacher's Derivative
// equations of motion.
func (d *TwoLinkManipulator) massMatrix(theta1, theta2 float64) *mat.Dense {
	m1, m2, l1, l2 := d.M1, d.M2, d.L1, d.L2
	c := math.Cos(theta1 - theta2)
	m11 := (m1 + m2) * l1 * l1
	m12 := m2 * l1 * l2 * c
	m22 := m2 * l2 * l2
	return mat.NewDense(2, 2, []float64{m11, m12, m12, m22})
}

// RNEA returns the joint torques that produce acceleration a at (q,v),
// the closed-form inverse of the teacher's forward dynamics.
func (d *TwoLinkManipulator) RNEA(q manifold.Config, v, a manifold.Vector, f []float64, status *contactstatus.ContactStatus) []float64 {
	theta1, theta2 := q[0], q[1]
	omega1, omega2 := v[0], v[1]
	m1, m2, l1, l2, g := d.M1, d.M2, d.L1, d.L2, d.Gravity

	delta := theta2 - theta1
	sinD := math.Sin(delta)

	M := d.massMatrix(theta1, theta2)
	var Ma mat.VecDense
	Ma.MulVec(M, mat.NewVecDense(2, []float64{a[0], a[1]}))

	c1 := -m2*l1*l2*sinD*omega2*omega2 + (m1+m2)*g*l1*math.Sin(theta1)
	c2 := m2*l1*l2*sinD*omega1*omega1 + m2*g*l2*math.Sin(theta2)

	return []float64{Ma.AtVec(0) + c1, Ma.AtVec(1) + c2}
}

func (d *TwoLinkManipulator) RNEAPartials(q manifold.Config, v, a manifold.Vector, f []float64, status *contactstatus.ContactStatus) (dq, dv, da *mat.Dense) {
	const eps = 1e-6
	base := d.RNEA(q, v, a, f, status)
	nu := d.DimU()
	nv := d.DimV()

	dq = mat.NewDense(nu, nv, nil)
	for j := 0; j < nv; j++ {
		qp := append(manifold.Config{}, q...)
		qp[j] += eps
		pert := d.RNEA(qp, v, a, f, status)
		for i := 0; i < nu; i++ {
			dq.Set(i, j, (pert[i]-base[i])/eps)
		}
	}

	dv = mat.NewDense(nu, nv, nil)
	for j := 0; j < nv; j++ {
		vp := append(manifold.Vector{}, v...)
		vp[j] += eps
		pert := d.RNEA(q, vp, a, f, status)
		for i := 0; i < nu; i++ {
			dv.Set(i, j, (pert[i]-base[i])/eps)
		}
	}

	da = d.massMatrix(q[0], q[1])
	return dq, dv, da
}

func (d *TwoLinkManipulator) ContactAccelerationResidual(status *contactstatus.ContactStatus, q manifold.Config, v, a manifold.Vector, tauB float64) []float64 {
	return nil
}

func (d *TwoLinkManipulator) Clone() Robot {
	cp := *d
	return &cp
}
