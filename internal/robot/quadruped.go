package robot

import (
	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/hocp/internal/contactstatus"
	"github.com/san-kum/hocp/internal/manifold"
)

// FloatingBaseQuadruped is the §6-NEW floating-base test fixture: a
// 6-dof floating base plus 4 legs of 3 joints each (dim(q)=19, dim(v)=18,
// dim(u)=12), with 4 point-foot contacts. No teacher file provides
// floating-base rigid-body dynamics, so this is built fresh against
// SPEC_FULL.md §6 with a diagonal approximate mass matrix and unit-gain
// leg Jacobians rather than a full recursive kinematic chain — explicitly
// a test fixture for exercising the floating-base/contact-switching code
// paths (S2-S4), not a physically exact quadruped model.
type FloatingBaseQuadruped struct {
	BaseMass    float64
	BaseInertia [3]float64 // diagonal Ixx, Iyy, Izz
	LegInertia  float64    // per-joint diagonal inertia, same for all 12 joints
	LegOffset   [4][2]float64
	Gravity     float64

	q0 manifold.Config
	v0 manifold.Vector
}

const quadrupedNumLegs = 4
const quadrupedJointsPerLeg = 3

// NewFloatingBaseQuadruped builds a quadruped with representative small-
// robot mass/inertia values.
func NewFloatingBaseQuadruped() *FloatingBaseQuadruped {
	return &FloatingBaseQuadruped{
		BaseMass:    10.0,
		BaseInertia: [3]float64{0.5, 0.8, 0.6},
		LegInertia:  0.05,
		LegOffset: [4][2]float64{
			{0.3, 0.2}, {0.3, -0.2}, {-0.3, 0.2}, {-0.3, -0.2},
		},
		Gravity: 9.81,
	}
}

func (q *FloatingBaseQuadruped) DimQ() int             { return 7 + quadrupedNumLegs*quadrupedJointsPerLeg }
func (q *FloatingBaseQuadruped) DimV() int             { return 6 + quadrupedNumLegs*quadrupedJointsPerLeg }
func (q *FloatingBaseQuadruped) DimU() int             { return quadrupedNumLegs * quadrupedJointsPerLeg }
func (q *FloatingBaseQuadruped) HasFloatingBase() bool { return true }
func (q *FloatingBaseQuadruped) MaxContacts() int      { return quadrupedNumLegs }

func (q *FloatingBaseQuadruped) ContactFrameNames() []string {
	return []string{"FL_foot", "FR_foot", "RL_foot", "RR_foot"}
}

func (q *FloatingBaseQuadruped) Integrate(cfg manifold.Config, delta manifold.Vector, alpha float64) manifold.Config {
	return manifold.Integrate(cfg, delta, alpha, true)
}

func (q *FloatingBaseQuadruped) Difference(q1, q2 manifold.Config) manifold.Vector {
	return manifold.Difference(q1, q2, true)
}

func (q *FloatingBaseQuadruped) UpdateKinematics(cfg manifold.Config, v manifold.Vector) {
	q.q0 = append(manifold.Config{}, cfg...)
	q.v0 = append(manifold.Vector{}, v...)
}

// FramePosition approximates a foot's world position as the base position
// plus its fixed planar stance offset, lowered by the leg's joint angles —
// a stand-in for a true kinematic chain, adequate for the contact-phase
// bookkeeping this fixture exercises.
func (q *FloatingBaseQuadruped) FramePosition(id int) [3]float64 {
	base := [3]float64{q.q0[0], q.q0[1], q.q0[2]}
	off := q.LegOffset[id]
	jointBase := 7 + id*quadrupedJointsPerLeg
	sag := 0.0
	for j := 0; j < quadrupedJointsPerLeg; j++ {
		sag += q.q0[jointBase+j]
	}
	return [3]float64{base[0] + off[0], base[1] + off[1], base[2] - 0.4 + 0.1*sag}
}

// ContactJacobian returns, for each active foot, a 3×dim(v) row block that
// is identity on the base-translation columns and identity on that leg's
// own joint-velocity columns (rotational coupling and true lever arms are
// dropped, see FloatingBaseQuadruped's doc comment).
func (q *FloatingBaseQuadruped) ContactJacobian(status *contactstatus.ContactStatus) *mat.Dense {
	active := status.ActiveIndices()
	J := mat.NewDense(3*len(active), q.DimV(), nil)
	for row, leg := range active {
		for i := 0; i < 3; i++ {
			J.Set(3*row+i, i, 1)
		}
		jointBase := 6 + leg*quadrupedJointsPerLeg
		for i := 0; i < quadrupedJointsPerLeg; i++ {
			J.Set(3*row+i, jointBase+i, 1)
		}
	}
	return J
}

func (q *FloatingBaseQuadruped) massMatrixDiag() []float64 {
	m := make([]float64, q.DimV())
	m[0], m[1], m[2] = q.BaseMass, q.BaseMass, q.BaseMass
	m[3], m[4], m[5] = q.BaseInertia[0], q.BaseInertia[1], q.BaseInertia[2]
	for i := 6; i < q.DimV(); i++ {
		m[i] = q.LegInertia
	}
	return m
}

// RNEA returns the full dim(v)-length generalized-force vector
// M(q)·a + h(q,v) - J_c(status)ᵗ·f, diagonal M and gravity-only bias,
// §4's Fv dynamics residual before the actuated-torque selection.
func (r *FloatingBaseQuadruped) RNEA(q manifold.Config, v, a manifold.Vector, f []float64, status *contactstatus.ContactStatus) []float64 {
	diag := r.massMatrixDiag()
	out := make([]float64, r.DimV())
	for i := range out {
		out[i] = diag[i] * a[i]
	}
	out[2] += r.BaseMass * r.Gravity

	if status != nil && status.Dimf() > 0 {
		r2 := *r
		r2.UpdateKinematics(q, v)
		J := r2.ContactJacobian(status)
		var Jtf mat.VecDense
		Jtf.MulVec(J.T(), mat.NewVecDense(len(f), f))
		for i := range out {
			out[i] -= Jtf.AtVec(i)
		}
	}
	return out
}

func (r *FloatingBaseQuadruped) RNEAPartials(q manifold.Config, v, a manifold.Vector, f []float64, status *contactstatus.ContactStatus) (dq, dv, da *mat.Dense) {
	nv := r.DimV()
	dq = mat.NewDense(nv, nv, nil)
	dv = mat.NewDense(nv, nv, nil)
	da = mat.NewDense(nv, nv, nil)
	diag := r.massMatrixDiag()
	for i := 0; i < nv; i++ {
		da.Set(i, i, diag[i])
	}
	return dq, dv, da
}

// ContactAccelerationResidual evaluates the Baumgarte-stabilized
// acceleration-level constraint b_c = J_c·a (position/velocity drift
// terms are taken as zero in this fixture, tauB is accepted for interface
// compatibility but unused since no φ_c/position-drift model is tracked).
func (r *FloatingBaseQuadruped) ContactAccelerationResidual(status *contactstatus.ContactStatus, q manifold.Config, v, a manifold.Vector, tauB float64) []float64 {
	active := status.ActiveIndices()
	if len(active) == 0 {
		return nil
	}
	r2 := *r
	r2.UpdateKinematics(q, v)
	J := r2.ContactJacobian(status)
	var bc mat.VecDense
	bc.MulVec(J, mat.NewVecDense(len(a), a))
	out := make([]float64, bc.Len())
	for i := range out {
		out[i] = bc.AtVec(i)
	}
	return out
}

func (q *FloatingBaseQuadruped) Clone() Robot {
	cp := *q
	cp.q0 = append(manifold.Config{}, q.q0...)
	cp.v0 = append(manifold.Vector{}, q.v0...)
	return &cp
}
