package kkt

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/hocp/internal/contactstatus"
)

// SplitKKTResidual is the first-order data of one time stage's KKT
// subproblem: the state-equation residual Fx, the cost gradient lx/la/lu,
// the force-cost gradient lf, and the switching-time partial h, §2/§4.3.
type SplitKKTResidual struct {
	nv, nu, nf int

	Fx *mat.VecDense // 2nv: [Fq; Fv]
	Lx *mat.VecDense // 2nv: [lq; lv]
	La *mat.VecDense // nv
	Lu *mat.VecDense // nu
	Lf *mat.VecDense // nf (empty when nf == 0)

	H                   float64 // Hamiltonian value, used by STO gradient checks
	KKTError            float64
	Cost                float64
	ConstraintViolation float64
}

// NewSplitKKTResidual allocates a zeroed residual for an unconstrained
// stage of the given dimensions.
func NewSplitKKTResidual(nv, nu int) *SplitKKTResidual {
	r := &SplitKKTResidual{nv: nv, nu: nu}
	r.allocate(0)
	return r
}

func (r *SplitKKTResidual) allocate(nf int) {
	r.nf = nf
	r.Fx = mat.NewVecDense(2*r.nv, nil)
	r.Lx = mat.NewVecDense(2*r.nv, nil)
	r.La = mat.NewVecDense(r.nv, nil)
	r.Lu = mat.NewVecDense(r.nu, nil)
	if nf > 0 {
		r.Lf = mat.NewVecDense(nf, nil)
	} else {
		r.Lf = &mat.VecDense{}
	}
}

// SetContactStatus resizes Lf to the active contact dimension.
func (r *SplitKKTResidual) SetContactStatus(status *contactstatus.ContactStatus) {
	nf := status.Dimf()
	if nf == r.nf {
		return
	}
	r.nf = nf
	if nf > 0 {
		r.Lf = mat.NewVecDense(nf, nil)
	} else {
		r.Lf = &mat.VecDense{}
	}
}

// Fq, Fv are the two nv-long halves of Fx.
func (r *SplitKKTResidual) Fq() mat.Vector { return r.Fx.SliceVec(0, r.nv) }
func (r *SplitKKTResidual) Fv() mat.Vector { return r.Fx.SliceVec(r.nv, 2*r.nv) }

// Lq, Lv are the two nv-long halves of Lx.
func (r *SplitKKTResidual) Lq() mat.Vector { return r.Lx.SliceVec(0, r.nv) }
func (r *SplitKKTResidual) Lv() mat.Vector { return r.Lx.SliceVec(r.nv, 2*r.nv) }

// Dimf returns the active force dimension this residual is sized for.
func (r *SplitKKTResidual) Dimf() int { return r.nf }

// SetZero zeroes every block and scalar.
func (r *SplitKKTResidual) SetZero() {
	r.Fx.Zero()
	r.Lx.Zero()
	r.La.Zero()
	r.Lu.Zero()
	r.Lf.Zero()
	r.H, r.KKTError, r.Cost, r.ConstraintViolation = 0, 0, 0, 0
}

// KKTErrorNorm computes ‖Fx‖²+‖lx‖²+‖la‖²+‖lu‖²+‖lf‖², the per-stage
// contribution to the solver's global KKT-error convergence check (§4.6).
func (r *SplitKKTResidual) KKTErrorNorm() float64 {
	sq := func(v *mat.VecDense) float64 {
		if v.Len() == 0 {
			return 0
		}
		return mat.Dot(v, v)
	}
	return sq(r.Fx) + sq(r.Lx) + sq(r.La) + sq(r.Lu) + sq(r.Lf)
}

// HasNaN reports whether any block contains a NaN.
func (r *SplitKKTResidual) HasNaN() bool {
	for _, v := range []*mat.VecDense{r.Fx, r.Lx, r.La, r.Lu, r.Lf} {
		for i := 0; i < v.Len(); i++ {
			if math.IsNaN(v.AtVec(i)) {
				return true
			}
		}
	}
	return math.IsNaN(r.H)
}
