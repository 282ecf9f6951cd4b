// Package robot defines the kinematics/dynamics collaborator contract the
// solver core depends on (§6, "Robot (read-only per-thread clone)") and
// ships a handful of reference implementations so the rest of this module
// is runnable and testable without an external robotics library.
package robot

import (
	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/hocp/internal/contactstatus"
	"github.com/san-kum/hocp/internal/manifold"
)

// Robot is the read-only-per-thread-clone collaborator described in §6:
// forward/inverse dynamics, contact Jacobians, and the Lie-group
// integrate/difference pair on the configuration manifold. A solver
// worker goroutine is handed exactly one Robot instance, created once at
// construction time via Clone and never reallocated (§5).
type Robot interface {
	// DimQ, DimV, DimU are dim(q), dim(v)=dim(a), dim(u).
	DimQ() int
	DimV() int
	DimU() int

	// HasFloatingBase reports whether q's leading 7 entries are a
	// [position;quaternion_xyzw] floating-base block.
	HasFloatingBase() bool

	// MaxContacts is the number of candidate contact frames; zero for an
	// unconstrained (UnOCP) robot.
	MaxContacts() int
	ContactFrameNames() []string

	// Integrate and Difference delegate to internal/manifold using this
	// robot's floating-base flag.
	Integrate(q manifold.Config, delta manifold.Vector, alpha float64) manifold.Config
	Difference(q1, q2 manifold.Config) manifold.Vector

	// UpdateKinematics recomputes cached frame placements/Jacobians for
	// (q, v); later FramePosition/ContactJacobian calls read the cache.
	UpdateKinematics(q manifold.Config, v manifold.Vector)

	// FramePosition returns the world-frame position of contact frame id,
	// valid after the most recent UpdateKinematics.
	FramePosition(id int) [3]float64

	// ContactJacobian returns the stacked 3n×dim(v) (or 6n×dim(v) for
	// surface contacts) Jacobian of the active contacts in status, in the
	// same ordering as status.ActiveIndices(); an empty matrix when no
	// contact is active.
	ContactJacobian(status *contactstatus.ContactStatus) *mat.Dense

	// RNEA evaluates the recursive Newton-Euler inverse dynamics
	// ID(q,v,a,f), the dim(v)-long generalized force, for the active
	// contact forces f (stacked per status.ActiveIndices(), status.Dimf()
	// long). The dynamics residual is u minus the last dim(u) entries of
	// RNEA(...), computed by the caller.
	RNEA(q manifold.Config, v, a manifold.Vector, f []float64, status *contactstatus.ContactStatus) []float64

	// RNEAPartials returns ∂ID/∂q, ∂ID/∂v, ∂ID/∂a, each dim(v)×dim(v).
	RNEAPartials(q manifold.Config, v, a manifold.Vector, f []float64, status *contactstatus.ContactStatus) (dq, dv, da *mat.Dense)

	// ContactAccelerationResidual evaluates the Baumgarte-stabilized
	// acceleration-level contact constraint b_c = J_c·a + bias and returns
	// it stacked per status.ActiveIndices(), §4 ("Fv" equation).
	ContactAccelerationResidual(status *contactstatus.ContactStatus, q manifold.Config, v, a manifold.Vector, tauB float64) []float64

	// Clone returns an independent Robot with its own mutable kinematics
	// cache, for use by a dedicated worker goroutine.
	Clone() Robot
}
