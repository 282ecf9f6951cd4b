package robot

import (
	"math"
	"testing"

	"github.com/san-kum/hocp/internal/manifold"
)

func TestPendulumRNEARoundTrip(t *testing.T) {
	p := NewPointMassPendulum()
	q := manifold.Config{0.4}
	v := manifold.Vector{-0.2}
	a := manifold.Vector{1.5}

	u := p.RNEA(q, v, a, nil, nil)
	aBack := acceleration(p, q, v, u)

	if math.Abs(aBack[0]-a[0]) > 1e-9 {
		t.Errorf("expected acceleration %f, got %f", a[0], aBack[0])
	}
}

func TestPendulumCloneIsIndependent(t *testing.T) {
	p := NewPointMassPendulum()
	clone := p.Clone().(*PointMassPendulum)
	clone.Mass = 99

	if p.Mass == clone.Mass {
		t.Fatal("expected clone mutation not to affect original")
	}
}

func TestPendulumNoContacts(t *testing.T) {
	p := NewPointMassPendulum()
	if p.MaxContacts() != 0 {
		t.Fatalf("expected no candidate contacts, got %d", p.MaxContacts())
	}
	J := p.ContactJacobian(nil)
	r, _ := J.Dims()
	if r != 0 {
		t.Fatalf("expected empty contact jacobian, got %d rows", r)
	}
}
