package robot

import (
	"math"
	"testing"

	"github.com/san-kum/hocp/internal/manifold"
)

func TestTwoLinkRNEARoundTrip(t *testing.T) {
	d := NewTwoLinkManipulator()
	q := manifold.Config{0.3, -0.6}
	v := manifold.Vector{0.1, 0.2}
	a := manifold.Vector{0.5, -0.3}

	u := d.RNEA(q, v, a, nil, nil)
	aBack := acceleration(d, q, v, u)

	for i := range a {
		if math.Abs(aBack[i]-a[i]) > 1e-7 {
			t.Errorf("component %d: expected %f, got %f", i, a[i], aBack[i])
		}
	}
}

func TestTwoLinkRNEAPartialsFiniteDifference(t *testing.T) {
	d := NewTwoLinkManipulator()
	q := manifold.Config{0.2, 0.5}
	v := manifold.Vector{0.1, -0.1}
	a := manifold.Vector{0.2, 0.3}

	dq, _, _ := d.RNEAPartials(q, v, a, nil, nil)
	base := d.RNEA(q, v, a, nil, nil)

	const eps = 1e-6
	qp := manifold.Config{q[0] + eps, q[1]}
	pert := d.RNEA(qp, v, a, nil, nil)
	for i := range base {
		fd := (pert[i] - base[i]) / eps
		if math.Abs(fd-dq.At(i, 0)) > 1e-3 {
			t.Errorf("row %d: analytic %f, fd %f", i, dq.At(i, 0), fd)
		}
	}
}
