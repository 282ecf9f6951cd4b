// Package kkt holds the per-stage block-banded KKT data (StageData in
// §2): the quadratic-approximation matrix, the residual/gradient vector,
// the primal-dual solution, and the Newton direction, one instance per
// time stage. Grounded on
// original_source/include/robotoc/ocp/{split_kkt_matrix,
// split_kkt_residual,split_solution,split_direction}.hpp, with Eigen
// fixed/dynamic matrices replaced by gonum.org/v1/gonum/mat.Dense/VecDense
// sized per stage from dim(q)/dim(v)/dim(u)/dim(f).
package kkt

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/hocp/internal/contactstatus"
)

// SplitKKTMatrix is the quadratic-approximation data of one time stage's
// KKT subproblem: the state-equation Jacobian blocks (Fxx, Fvu,
// FqqPrev), the cost Hessian blocks (Qxx, Qaa, Qxu, Quu, Qff, Qqf), and
// the switching-time second derivative Qtt/QttPrev, §2/§4.4.
type SplitKKTMatrix struct {
	nq, nv, nu, nf int

	Fxx     *mat.Dense // 2nv x 2nv: [[Fqq,Fqv],[Fvq,Fvv]]
	Fvu     *mat.Dense // nv x nu
	FqqPrev *mat.Dense // nv x nv, populated only in the leading 6x6 floating-base block

	Qxx *mat.Dense // 2nv x 2nv: [[Qqq,Qqv],[Qvq,Qvv]]
	Qaa *mat.Dense // nv x nv
	Qxu *mat.Dense // 2nv x nu: [[Qqu],[Qvu]]
	Quu *mat.Dense // nu x nu
	Qff *mat.Dense // nf x nf (empty when nf == 0)
	Qqf *mat.Dense // nv x nf (empty when nf == 0)

	Qtt     float64
	QttPrev float64
}

// NewSplitKKTMatrix allocates a zeroed KKT matrix sized for an unconstrained
// (no active contacts) stage of the given dimensions.
func NewSplitKKTMatrix(nq, nv, nu int) *SplitKKTMatrix {
	m := &SplitKKTMatrix{nq: nq, nv: nv, nu: nu}
	m.allocate(0)
	return m
}

func (m *SplitKKTMatrix) allocate(nf int) {
	m.nf = nf
	nv := m.nv
	m.Fxx = mat.NewDense(2*nv, 2*nv, nil)
	m.Fvu = mat.NewDense(nv, m.nu, nil)
	m.FqqPrev = mat.NewDense(nv, nv, nil)
	m.Qxx = mat.NewDense(2*nv, 2*nv, nil)
	m.Qaa = mat.NewDense(nv, nv, nil)
	m.Qxu = mat.NewDense(2*nv, m.nu, nil)
	m.Quu = mat.NewDense(m.nu, m.nu, nil)
	if nf > 0 {
		m.Qff = mat.NewDense(nf, nf, nil)
		m.Qqf = mat.NewDense(nv, nf, nil)
	} else {
		m.Qff, m.Qqf = &mat.Dense{}, &mat.Dense{}
	}
}

// SetContactStatus resizes the force-dependent blocks (Qff, Qqf) to the
// active contact dimension; called once per Newton iteration before
// linearization, mirroring the original's setContactStatus.
func (m *SplitKKTMatrix) SetContactStatus(status *contactstatus.ContactStatus) {
	nf := status.Dimf()
	if nf == m.nf {
		return
	}
	m.nf = nf
	if nf > 0 {
		m.Qff = mat.NewDense(nf, nf, nil)
		m.Qqf = mat.NewDense(m.nv, nf, nil)
	} else {
		m.Qff, m.Qqf = &mat.Dense{}, &mat.Dense{}
	}
}

// Fqq, Fqv, Fvq, Fvv are views into Fxx's four nv x nv quadrants.
func (m *SplitKKTMatrix) Fqq() mat.Matrix { return m.Fxx.Slice(0, m.nv, 0, m.nv) }
func (m *SplitKKTMatrix) Fqv() mat.Matrix { return m.Fxx.Slice(0, m.nv, m.nv, 2*m.nv) }
func (m *SplitKKTMatrix) Fvq() mat.Matrix { return m.Fxx.Slice(m.nv, 2*m.nv, 0, m.nv) }
func (m *SplitKKTMatrix) Fvv() mat.Matrix { return m.Fxx.Slice(m.nv, 2*m.nv, m.nv, 2*m.nv) }

// Qqq, Qqv, Qvq, Qvv are views into Qxx's four nv x nv quadrants.
func (m *SplitKKTMatrix) Qqq() mat.Matrix { return m.Qxx.Slice(0, m.nv, 0, m.nv) }
func (m *SplitKKTMatrix) Qqv() mat.Matrix { return m.Qxx.Slice(0, m.nv, m.nv, 2*m.nv) }
func (m *SplitKKTMatrix) Qvq() mat.Matrix { return m.Qxx.Slice(m.nv, 2*m.nv, 0, m.nv) }
func (m *SplitKKTMatrix) Qvv() mat.Matrix { return m.Qxx.Slice(m.nv, 2*m.nv, m.nv, 2*m.nv) }

// Qqu, Qvu are views into Qxu's two nv x nu halves.
func (m *SplitKKTMatrix) Qqu() mat.Matrix { return m.Qxu.Slice(0, m.nv, 0, m.nu) }
func (m *SplitKKTMatrix) Qvu() mat.Matrix { return m.Qxu.Slice(m.nv, 2*m.nv, 0, m.nu) }

// Dimf returns the active force dimension this matrix is sized for.
func (m *SplitKKTMatrix) Dimf() int { return m.nf }

// SetZero zeroes every block; called at the start of each linearization.
func (m *SplitKKTMatrix) SetZero() {
	m.Fxx.Zero()
	m.Fvu.Zero()
	m.FqqPrev.Zero()
	m.Qxx.Zero()
	m.Qaa.Zero()
	m.Qxu.Zero()
	m.Quu.Zero()
	m.Qff.Zero()
	m.Qqf.Zero()
	m.Qtt, m.QttPrev = 0, 0
}

// HasNaN reports whether any block contains a NaN, used for fast
// breakdown detection before a Cholesky factorization is attempted.
func (m *SplitKKTMatrix) HasNaN() bool {
	for _, d := range []*mat.Dense{m.Fxx, m.Fvu, m.FqqPrev, m.Qxx, m.Qaa, m.Qxu, m.Quu, m.Qff, m.Qqf} {
		r, c := d.Dims()
		for i := 0; i < r; i++ {
			for j := 0; j < c; j++ {
				if math.IsNaN(d.At(i, j)) {
					return true
				}
			}
		}
	}
	return math.IsNaN(m.Qtt) || math.IsNaN(m.QttPrev)
}
