package riccati

// stoRegEps floors the switching-time curvature the same way backwardStep
// floors Quu with deltaInit, so a near-zero constraint Jacobian (the
// contact frame momentarily not moving through the ground plane) doesn't
// produce an unbounded step.
const stoRegEps = 1e-8

// STOPolicy is the scalar switching-time direction at one STO-enabled
// event, §4.4's "STOPolicy that maps costate into dts direction": the
// event's Hamiltonian jump and the switching constraint's own Newton
// curvature are both already costate-dependent quantities (residual.H
// folds in sNext's Lmd/Gmm; Qtt/QttPrev come from the constraint
// linearized at the current primal-dual iterate), so Dts is a genuine
// function of the current solution rather than a fixed outer-loop guess.
type STOPolicy struct {
	Phi     float64 // switching-constraint residual at the current split
	DPhiDts float64 // its Jacobian w.r.t. the switching-time variable
	HJump   float64 // H(t_e⁻) - H(t_e⁺), property 7's Hamiltonian jump
	Dts     float64 // the resulting scalar Newton step
}

// SolveSTOStep runs one regularized scalar Newton step on the switching
// constraint phi(dts)=0, using preQtt+postQttPrev (each stage's half of
// the Gauss-Newton curvature dPhiDts², §4.4) as the step's denominator:
// Dts = -phi·dPhiDts / (preQtt+postQttPrev+eps), which reduces to exact
// Newton (-phi/dPhiDts) as the regularization floor vanishes.
func SolveSTOStep(phi, dPhiDts, hJump, preQtt, postQttPrev float64) STOPolicy {
	denom := preQtt + postQttPrev + stoRegEps
	return STOPolicy{
		Phi:     phi,
		DPhiDts: dPhiDts,
		HJump:   hJump,
		Dts:     -phi * dPhiDts / denom,
	}
}
