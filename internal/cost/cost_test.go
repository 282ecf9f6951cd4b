package cost

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/hocp/internal/contactstatus"
	"github.com/san-kum/hocp/internal/kkt"
	"github.com/san-kum/hocp/internal/manifold"
	"github.com/san-kum/hocp/internal/robot"
)

func TestConfigurationTrackingGradientAtKnownDeviation(t *testing.T) {
	s := kkt.NewSplitSolution(2, 2, 2)
	s.Q[0], s.Q[1] = 1.0, 0.5
	s.V[0], s.V[1] = 0.1, -0.2
	s.A[0], s.A[1] = 0.0, 0.0
	s.U[0], s.U[1] = 2.0, -1.0

	term := &ConfigurationTracking{
		QRef:    manifold.Config{0, 0},
		VRef:    manifold.Vector{0, 0},
		ARef:    manifold.Vector{0, 0},
		URef:    manifold.Vector{0, 0},
		WeightQ: []float64{1, 1},
		WeightV: []float64{2, 2},
		WeightU: []float64{0.5, 0.5},
	}

	const dt = 0.1
	cost := term.EvalStage(0, dt, s)
	wantCost := 0.5 * dt * (1*1.0*1.0 + 1*0.5*0.5 + 2*0.1*0.1 + 2*0.2*0.2 + 0.5*4 + 0.5*1)
	if math.Abs(cost-wantCost) > 1e-9 {
		t.Fatalf("cost = %f, want %f", cost, wantCost)
	}

	residual := kkt.NewSplitKKTResidual(2, 2)
	term.EvalStageDerivatives(0, dt, s, residual)
	if got := residual.Lx.AtVec(0); math.Abs(got-dt*1*1.0) > 1e-9 {
		t.Errorf("Lq[0] = %f, want %f", got, dt*1*1.0)
	}
	if got := residual.Lu.AtVec(0); math.Abs(got-dt*0.5*2.0) > 1e-9 {
		t.Errorf("Lu[0] = %f, want %f", got, dt*0.5*2.0)
	}

	matrix := kkt.NewSplitKKTMatrix(2, 2, 2)
	term.EvalStageHessian(0, dt, s, matrix)
	if got := matrix.Qxx.At(0, 0); math.Abs(got-dt*1) > 1e-9 {
		t.Errorf("Qqq[0,0] = %f, want %f", got, dt*1)
	}
	if got := matrix.Quu.At(0, 0); math.Abs(got-dt*0.5) > 1e-9 {
		t.Errorf("Quu[0,0] = %f, want %f", got, dt*0.5)
	}
}

func TestForceTrackingZeroAtReference(t *testing.T) {
	status := contactstatus.New([]string{"foot"}, []contactstatus.ContactType{contactstatus.PointContact})
	status.Activate("foot")

	s := kkt.NewSplitSolution(1, 1, 1)
	s.SetContactStatus(status)
	s.F[0], s.F[1], s.F[2] = 1, 2, 9.81

	term := &ForceTracking{Ref: []float64{1, 2, 9.81}, Weight: []float64{1, 1, 1}}
	if c := term.EvalStage(0, 0.1, s); c != 0 {
		t.Fatalf("expected zero cost at reference, got %f", c)
	}

	residual := kkt.NewSplitKKTResidual(1, 1)
	residual.SetContactStatus(status)
	term.EvalStageDerivatives(0, 0.1, s, residual)
	for i := 0; i < 3; i++ {
		if got := residual.Lf.AtVec(i); got != 0 {
			t.Errorf("Lf[%d] = %f, want 0", i, got)
		}
	}
}

func TestTaskSpaceTrackingPendulumTipHeight(t *testing.T) {
	rob := &stubRobot{dimQ: 1, dimV: 1, q: manifold.Config{0}}
	term := &TaskSpaceTracking{
		Rob:     rob,
		FrameID: 0,
		Ref:     [3]float64{0, 0, 1},
		Weight:  [3]float64{0, 0, 1},
	}
	s := kkt.NewSplitSolution(1, 1, 1)
	s.Q[0] = 0

	cost := term.EvalStage(0, 1, s)
	if cost != 0 {
		t.Fatalf("expected zero cost at the reference height, got %f", cost)
	}

	residual := kkt.NewSplitKKTResidual(1, 1)
	term.EvalStageDerivatives(0, 1, s, residual)
	if got := residual.Lx.AtVec(0); math.Abs(got) > 1e-6 {
		t.Errorf("expected near-zero gradient at the reference, got %f", got)
	}
}

// stubRobot is a minimal Robot fixture for TaskSpaceTracking's tests: its
// single frame's height tracks q[0]+1 directly, independent of any real
// kinematic chain.
type stubRobot struct {
	dimQ, dimV int
	q          manifold.Config
}

func (r *stubRobot) DimQ() int                   { return r.dimQ }
func (r *stubRobot) DimV() int                   { return r.dimV }
func (r *stubRobot) DimU() int                   { return r.dimV }
func (r *stubRobot) HasFloatingBase() bool       { return false }
func (r *stubRobot) MaxContacts() int            { return 0 }
func (r *stubRobot) ContactFrameNames() []string { return nil }

func (r *stubRobot) Integrate(q manifold.Config, delta manifold.Vector, alpha float64) manifold.Config {
	return manifold.Integrate(q, delta, alpha, false)
}
func (r *stubRobot) Difference(q1, q2 manifold.Config) manifold.Vector {
	return manifold.Difference(q1, q2, false)
}
func (r *stubRobot) UpdateKinematics(q manifold.Config, v manifold.Vector) { r.q = q }
func (r *stubRobot) FramePosition(id int) [3]float64                       { return [3]float64{0, 0, r.q[0] + 1} }
func (r *stubRobot) ContactJacobian(status *contactstatus.ContactStatus) *mat.Dense {
	return mat.NewDense(0, r.dimV, nil)
}
func (r *stubRobot) RNEA(q manifold.Config, v, a manifold.Vector, f []float64, status *contactstatus.ContactStatus) []float64 {
	return make([]float64, r.dimV)
}
func (r *stubRobot) RNEAPartials(q manifold.Config, v, a manifold.Vector, f []float64, status *contactstatus.ContactStatus) (dq, dv, da *mat.Dense) {
	z := mat.NewDense(r.dimV, r.dimV, nil)
	return z, z, z
}
func (r *stubRobot) ContactAccelerationResidual(status *contactstatus.ContactStatus, q manifold.Config, v, a manifold.Vector, tauB float64) []float64 {
	return nil
}
func (r *stubRobot) Clone() robot.Robot { return &stubRobot{dimQ: r.dimQ, dimV: r.dimV, q: r.q} }
