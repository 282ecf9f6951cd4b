package kkt

import (
	"github.com/san-kum/hocp/internal/contactstatus"
	"github.com/san-kum/hocp/internal/manifold"
)

// SplitSolution is the primal-dual iterate at one time stage: q/v/a/u/f
// plus costates (lmd, gmm, beta) and the contact-constraint multiplier
// mu, §2/§3. Grounded on
// original_source/include/robotoc/ocp/split_solution.hpp; the original's
// nu_passive (underactuated-joint multiplier) has no actuated/passive
// split in this module's Robot fixtures and is dropped.
type SplitSolution struct {
	Q manifold.Config
	V manifold.Vector
	A manifold.Vector
	U manifold.Vector
	F []float64 // stacked per status.ActiveIndices(), status.Dimf() long

	Lmd  manifold.Vector // costate dual to the q state equation
	Gmm  manifold.Vector // costate dual to the v state equation
	Beta manifold.Vector // costate dual to the dynamics (u) equation
	Mu   []float64       // multiplier dual to the contact acceleration constraint, same layout as F
}

// NewSplitSolution allocates a zeroed solution for the given dimensions
// with no active contacts.
func NewSplitSolution(nq, nv, nu int) *SplitSolution {
	return &SplitSolution{
		Q: make(manifold.Config, nq),
		V: make(manifold.Vector, nv),
		A: make(manifold.Vector, nv),
		U: make(manifold.Vector, nu),

		Lmd:  make(manifold.Vector, nv),
		Gmm:  make(manifold.Vector, nv),
		Beta: make(manifold.Vector, nu),
	}
}

// SetContactStatus resizes F and Mu to the active contact dimension,
// preserving existing entries where possible (a warm start across a
// contact-status change keeps the overlapping force components).
func (s *SplitSolution) SetContactStatus(status *contactstatus.ContactStatus) {
	nf := status.Dimf()
	if len(s.F) == nf {
		return
	}
	newF := make([]float64, nf)
	newMu := make([]float64, nf)
	copy(newF, s.F)
	copy(newMu, s.Mu)
	s.F, s.Mu = newF, newMu
}

// Dimf returns the active force dimension.
func (s *SplitSolution) Dimf() int { return len(s.F) }

// HasActiveContacts reports whether any contact force is currently
// carried.
func (s *SplitSolution) HasActiveContacts() bool { return len(s.F) > 0 }

// Clone returns a deep copy.
func (s *SplitSolution) Clone() *SplitSolution {
	return &SplitSolution{
		Q:    append(manifold.Config{}, s.Q...),
		V:    append(manifold.Vector{}, s.V...),
		A:    append(manifold.Vector{}, s.A...),
		U:    append(manifold.Vector{}, s.U...),
		F:    append([]float64{}, s.F...),
		Lmd:  append(manifold.Vector{}, s.Lmd...),
		Gmm:  append(manifold.Vector{}, s.Gmm...),
		Beta: append(manifold.Vector{}, s.Beta...),
		Mu:   append([]float64{}, s.Mu...),
	}
}

// CopyPrimal copies q/v/a/u/f from other into s.
func (s *SplitSolution) CopyPrimal(other *SplitSolution) {
	copy(s.Q, other.Q)
	copy(s.V, other.V)
	copy(s.A, other.A)
	copy(s.U, other.U)
	s.F = append(s.F[:0], other.F...)
}

// CopyDual copies lmd/gmm/beta/mu from other into s.
func (s *SplitSolution) CopyDual(other *SplitSolution) {
	copy(s.Lmd, other.Lmd)
	copy(s.Gmm, other.Gmm)
	copy(s.Beta, other.Beta)
	s.Mu = append(s.Mu[:0], other.Mu...)
}
