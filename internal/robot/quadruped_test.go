package robot

import (
	"testing"

	"github.com/san-kum/hocp/internal/contactstatus"
	"github.com/san-kum/hocp/internal/manifold"
)

func quadrupedContactStatus() *contactstatus.ContactStatus {
	types := make([]contactstatus.ContactType, quadrupedNumLegs)
	for i := range types {
		types[i] = contactstatus.PointContact
	}
	return contactstatus.New([]string{"FL_foot", "FR_foot", "RL_foot", "RR_foot"}, types)
}

func TestQuadrupedDims(t *testing.T) {
	r := NewFloatingBaseQuadruped()
	if r.DimQ() != 19 || r.DimV() != 18 || r.DimU() != 12 {
		t.Fatalf("unexpected dims q=%d v=%d u=%d", r.DimQ(), r.DimV(), r.DimU())
	}
	if !r.HasFloatingBase() {
		t.Fatal("expected floating base")
	}
}

func TestQuadrupedContactJacobianShape(t *testing.T) {
	r := NewFloatingBaseQuadruped()
	status := quadrupedContactStatus()
	status.SetActive(0, true)
	status.SetActive(2, true)

	J := r.ContactJacobian(status)
	rows, cols := J.Dims()
	if rows != 6 || cols != r.DimV() {
		t.Fatalf("expected 6x%d, got %dx%d", r.DimV(), rows, cols)
	}
}

func TestQuadrupedRNEAWithContactForces(t *testing.T) {
	r := NewFloatingBaseQuadruped()
	status := quadrupedContactStatus()
	for i := 0; i < quadrupedNumLegs; i++ {
		status.SetActive(i, true)
	}

	q := make(manifold.Config, r.DimQ())
	q[6] = 1 // identity quaternion w component
	v := make(manifold.Vector, r.DimV())
	a := make(manifold.Vector, r.DimV())

	f := make([]float64, status.Dimf())
	for i := range f {
		f[i] = 0
	}
	// standing still: vertical contact forces should offset gravity.
	for leg := 0; leg < quadrupedNumLegs; leg++ {
		f[3*leg+2] = r.BaseMass * r.Gravity / float64(quadrupedNumLegs)
	}

	residual := r.RNEA(q, v, a, f, status)
	if abs(residual[2]) > 1e-9 {
		t.Errorf("expected near-zero vertical residual at static equilibrium, got %f", residual[2])
	}
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}
