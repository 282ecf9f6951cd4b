// Package feedback wraps the solver's per-stage Riccati gains into a
// runtime policy a controller loop can query, §6
// "getStateFeedbackGain(stage)". Grounded on the teacher's
// internal/control package: the Compute(x, t) shape of LQR/PID/None/
// ManualController is kept, with LQR's hand-tuned constant gain
// replaced by the solver's per-stage, per-solve (K, k0).
package feedback

import "gonum.org/v1/gonum/mat"

// Policy computes a control input from a state deviation at time t.
type Policy interface {
	Compute(dx []float64, t float64) []float64
}

// RiccatiPolicy is the closed-loop policy u = K·dx + k0 read off one
// stage of the solver's last backward sweep (solver.Solver.
// GetStateFeedbackGain / GetFeedforwardInput), grounded on the
// teacher's internal/control/lqr.go LQR.Compute (u = -K·(x-target)).
type RiccatiPolicy struct {
	K  *mat.Dense
	K0 *mat.VecDense
}

// NewRiccatiPolicy wraps the gain/feedforward pair at one stage. A nil
// gain (the terminal stage carries no control) makes Compute return nil;
// a nil feedforward term with a non-nil gain makes Compute return K·dx
// alone.
func NewRiccatiPolicy(k *mat.Dense, k0 *mat.VecDense) *RiccatiPolicy {
	return &RiccatiPolicy{K: k, K0: k0}
}

func (p *RiccatiPolicy) Compute(dx []float64, t float64) []float64 {
	if p.K == nil {
		return nil
	}
	nu, nx := p.K.Dims()
	x := mat.NewVecDense(nx, dx)
	var du mat.VecDense
	du.MulVec(p.K, x)
	if p.K0 != nil {
		du.AddVec(&du, p.K0)
	}
	u := make([]float64, nu)
	for i := range u {
		u[i] = du.AtVec(i)
	}
	return u
}

// None is the zero-input fallback used before any solve has produced
// gains, grounded on the teacher's internal/control/none.go.
type None struct{ dim int }

func NewNone(dim int) *None { return &None{dim: dim} }

func (n *None) Compute(dx []float64, t float64) []float64 { return make([]float64, n.dim) }

// Manual replays a fixed control vector set by the caller, grounded on
// the teacher's internal/control/manual.go "Hand of God" controller —
// here repurposed to splice a manually authored control segment into
// an otherwise closed-loop replay for debugging.
type Manual struct {
	u []float64
}

func NewManual(dim int) *Manual { return &Manual{u: make([]float64, dim)} }

// SetControl overwrites the replayed control vector; len(u) must equal
// the dimension Manual was constructed with.
func (m *Manual) SetControl(u []float64) {
	if len(u) != len(m.u) {
		return
	}
	copy(m.u, u)
}

func (m *Manual) Compute(dx []float64, t float64) []float64 {
	return append([]float64{}, m.u...)
}

// PID is a scalar proportional-integral-derivative fallback, used on a
// single-input robot when no solved gain is available at all (e.g.
// before the first InitInteriorPoint/Solve call). Grounded on the
// teacher's internal/control/pid.go.
type PID struct {
	Kp, Ki, Kd float64
	integral   float64
	prevErr    float64
	prevT      float64
	first      bool
}

func NewPID(kp, ki, kd float64) *PID {
	return &PID{Kp: kp, Ki: ki, Kd: kd, first: true}
}

func (p *PID) Compute(dx []float64, t float64) []float64 {
	if len(dx) == 0 {
		return []float64{0}
	}
	err := -dx[0]
	if p.first {
		p.prevErr, p.prevT, p.first = err, t, false
		return []float64{p.Kp * err}
	}
	dt := t - p.prevT
	if dt <= 0 {
		return []float64{p.Kp * err}
	}
	p.integral += err * dt
	derivative := (err - p.prevErr) / dt
	p.prevErr, p.prevT = err, t
	return []float64{p.Kp*err + p.Ki*p.integral + p.Kd*derivative}
}

// Reset clears integral and derivative state.
func (p *PID) Reset() {
	p.integral = 0
	p.prevErr = 0
	p.first = true
}
