package manifold

import (
	"math"
	"testing"
)

func TestIntegrateDifferenceRoundTripNoFloatingBase(t *testing.T) {
	q := Config{0.1, -0.2, 0.3}
	delta := Vector{0.05, 0.02, -0.01}

	q2 := Integrate(q, delta, 1.0, false)
	back := Difference(q2, q, false)

	for i := range delta {
		if math.Abs(back[i]-delta[i]) > 1e-12 {
			t.Errorf("component %d: expected %f, got %f", i, delta[i], back[i])
		}
	}
}

func TestIntegrateDifferenceRoundTripFloatingBase(t *testing.T) {
	q := Config{0, 0, 0, 0, 0, 0, 1, 0.2, -0.1}
	delta := Vector{0.1, 0, 0, 0, 0, 0.3, 0.05, -0.02}

	q2 := Integrate(q, delta, 1.0, true)
	back := Difference(q2, q, true)

	for i := range delta {
		if math.Abs(back[i]-delta[i]) > 1e-9 {
			t.Errorf("component %d: expected %f, got %f", i, delta[i], back[i])
		}
	}
}

func TestIntegrateZeroIsIdentity(t *testing.T) {
	q := Config{0, 0, 0, 0, 0, 0, 1, 0.5}
	delta := make(Vector, 7)
	q2 := Integrate(q, delta, 1.0, true)
	for i := range q {
		if math.Abs(q2[i]-q[i]) > 1e-12 {
			t.Errorf("component %d: expected unchanged %f, got %f", i, q[i], q2[i])
		}
	}
}

func TestQuaternionStaysUnit(t *testing.T) {
	q := Config{0, 0, 0, 0, 0, 0, 1, 0}
	delta := Vector{0, 0, 0, 1.3, -0.7, 0.4, 0}
	q2 := Integrate(q, delta, 1.0, true)
	n := math.Sqrt(q2[3]*q2[3] + q2[4]*q2[4] + q2[5]*q2[5] + q2[6]*q2[6])
	if math.Abs(n-1) > 1e-9 {
		t.Errorf("expected unit quaternion, got norm %f", n)
	}
}

func TestVectorNormInf(t *testing.T) {
	v := Vector{1, -5, 3}
	if got := v.NormInf(); got != 5 {
		t.Errorf("expected 5, got %f", got)
	}
}
