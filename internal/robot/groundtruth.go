package robot

import (
	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/hocp/internal/manifold"
)

// GroundTruthRK4 is an independent RK4 ODE integrator used only to produce
// reference trajectories in robot package tests (state-equation
// reproducibility, "property 2"); the solver itself never integrates an
// ODE, it solves a multiple-shooting transcription. Adapted from the
// teacher's internal/integrators/rk4.go — same k1..k4/scratch shape,
// generalized to step the Lie-group pair (q, v) instead of a flat state.
type GroundTruthRK4 struct {
	k1v, k2v, k3v, k4v manifold.Vector
	k1a, k2a, k3a, k4a manifold.Vector
	scratch            manifold.Vector
}

// NewGroundTruthRK4 returns an integrator with no pre-allocated scratch;
// buffers are sized on first Step.
func NewGroundTruthRK4() *GroundTruthRK4 {
	return &GroundTruthRK4{}
}

func (r *GroundTruthRK4) ensureScratch(n int) {
	if len(r.k1v) == n {
		return
	}
	r.k1v, r.k2v, r.k3v, r.k4v = make(manifold.Vector, n), make(manifold.Vector, n), make(manifold.Vector, n), make(manifold.Vector, n)
	r.k1a, r.k2a, r.k3a, r.k4a = make(manifold.Vector, n), make(manifold.Vector, n), make(manifold.Vector, n), make(manifold.Vector, n)
	r.scratch = make(manifold.Vector, n)
}

// Step advances (q, v) by dt under constant control u, returning the new
// (q, v) pair.
func (r *GroundTruthRK4) Step(rob Robot, q manifold.Config, v manifold.Vector, u []float64, t, dt float64) (manifold.Config, manifold.Vector) {
	nv := rob.DimV()
	r.ensureScratch(nv)

	copy(r.k1v, v)
	copy(r.k1a, acceleration(rob, q, v, u))

	q1 := rob.Integrate(q, r.k1v, dt*0.5)
	for i := 0; i < nv; i++ {
		r.scratch[i] = v[i] + dt*0.5*r.k1a[i]
	}
	copy(r.k2v, r.scratch)
	copy(r.k2a, acceleration(rob, q1, r.k2v, u))

	q2 := rob.Integrate(q, r.k2v, dt*0.5)
	for i := 0; i < nv; i++ {
		r.scratch[i] = v[i] + dt*0.5*r.k2a[i]
	}
	copy(r.k3v, r.scratch)
	copy(r.k3a, acceleration(rob, q2, r.k3v, u))

	q3 := rob.Integrate(q, r.k3v, dt)
	for i := 0; i < nv; i++ {
		r.scratch[i] = v[i] + dt*r.k3a[i]
	}
	copy(r.k4v, r.scratch)
	copy(r.k4a, acceleration(rob, q3, r.k4v, u))

	avgV := make(manifold.Vector, nv)
	avgA := make(manifold.Vector, nv)
	for i := 0; i < nv; i++ {
		avgV[i] = (r.k1v[i] + 2*r.k2v[i] + 2*r.k3v[i] + r.k4v[i]) / 6.0
		avgA[i] = (r.k1a[i] + 2*r.k2a[i] + 2*r.k3a[i] + r.k4a[i]) / 6.0
	}

	qNext := rob.Integrate(q, avgV, dt)
	vNext := make(manifold.Vector, nv)
	for i := 0; i < nv; i++ {
		vNext[i] = v[i] + dt*avgA[i]
	}
	return qNext, vNext
}

// acceleration solves M(q)·a = B·u - h(q,v) for a, where h is the
// zero-acceleration, zero-contact-force bias term from RNEA and B pads u
// with zeros on the leading unactuated (floating-base) rows.
func acceleration(rob Robot, q manifold.Config, v manifold.Vector, u []float64) manifold.Vector {
	nv := rob.DimV()
	zeroA := make(manifold.Vector, nv)
	h := rob.RNEA(q, v, zeroA, nil, nil)
	_, _, M := rob.RNEAPartials(q, v, zeroA, nil, nil)

	rhs := make([]float64, nv)
	offset := nv - len(u)
	for i := 0; i < nv; i++ {
		uFull := 0.0
		if i >= offset {
			uFull = u[i-offset]
		}
		rhs[i] = uFull - h[i]
	}

	var a mat.VecDense
	if err := a.SolveVec(M, mat.NewVecDense(nv, rhs)); err != nil {
		return make(manifold.Vector, nv)
	}
	out := make(manifold.Vector, nv)
	for i := 0; i < nv; i++ {
		out[i] = a.AtVec(i)
	}
	return out
}
