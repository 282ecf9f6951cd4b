package kkt

import "github.com/san-kum/hocp/internal/manifold"

// SplitDirection is the Newton step at one time stage, the quantity the
// Riccati expansion phase recovers from (dq, dv), §4.4 ("expandPrimal
// recovers da, df, du, dλ ... expandDual back-substitutes costates").
type SplitDirection struct {
	Dq manifold.Vector // tangent-space step, dim(v)
	Dv manifold.Vector
	Da manifold.Vector
	Du manifold.Vector
	Df []float64

	Dlmd  manifold.Vector
	Dgmm  manifold.Vector
	Dbeta manifold.Vector
	Dmu   []float64

	Dts float64 // switching-time step, valid only on an STO-enabled event stage
}

// NewSplitDirection allocates a zeroed direction for the given
// dimensions with no active contacts.
func NewSplitDirection(nv, nu int) *SplitDirection {
	return &SplitDirection{
		Dq: make(manifold.Vector, nv),
		Dv: make(manifold.Vector, nv),
		Da: make(manifold.Vector, nv),
		Du: make(manifold.Vector, nu),

		Dlmd:  make(manifold.Vector, nv),
		Dgmm:  make(manifold.Vector, nv),
		Dbeta: make(manifold.Vector, nu),
	}
}

// SetContactDimension resizes Df/Dmu to nf.
func (d *SplitDirection) SetContactDimension(nf int) {
	if len(d.Df) == nf {
		return
	}
	d.Df = make([]float64, nf)
	d.Dmu = make([]float64, nf)
}

// MaxNorm returns the infinity norm over every primal block, used by the
// fraction-to-boundary step-size search (§4.5).
func (d *SplitDirection) MaxNorm() float64 {
	m := 0.0
	upd := func(v []float64) {
		for _, x := range v {
			if a := absf(x); a > m {
				m = a
			}
		}
	}
	upd(d.Dq)
	upd(d.Dv)
	upd(d.Da)
	upd(d.Du)
	upd(d.Df)
	return m
}

func absf(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}
