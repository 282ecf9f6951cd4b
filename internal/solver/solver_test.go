package solver

import (
	"math"
	"testing"

	"github.com/san-kum/hocp/internal/config"
	"github.com/san-kum/hocp/internal/contactstatus"
	"github.com/san-kum/hocp/internal/cost"
	"github.com/san-kum/hocp/internal/hybrid"
	"github.com/san-kum/hocp/internal/manifold"
	"github.com/san-kum/hocp/internal/robot"
	"github.com/san-kum/hocp/internal/stats"
)

func pendulumSwingCost() cost.Function {
	return cost.NewComposite(&cost.ConfigurationTracking{
		QRef:    manifold.Config{0},
		VRef:    manifold.Vector{0},
		ARef:    manifold.Vector{0},
		URef:    manifold.Vector{0},
		WeightQ: []float64{10},
		WeightV: []float64{1},
		WeightU: []float64{0.1},
	})
}

// newPendulumSolver builds scenario S1: a single free pendulum swinging
// from rest at 2 rad toward the hanging equilibrium over a one-second
// horizon, no contacts anywhere on the grid.
func newPendulumSolver(t *testing.T, n int, horizon float64) *Solver {
	t.Helper()
	rob := robot.NewPointMassPendulum()
	status := contactstatus.New(nil, nil)
	cs := hybrid.NewContactSequence(status)
	disc := hybrid.New(horizon, n)
	if err := disc.Discretize(cs, 0); err != nil {
		t.Fatalf("Discretize: %v", err)
	}

	opts := config.DefaultOptions()
	opts.N, opts.T = n, horizon
	opts.NThreads = 2
	opts.MaxIter = 30

	s, err := New(opts, disc, cs, rob, pendulumSwingCost(), nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return s
}

func TestSolverRunsFreePendulumSwingToCompletion(t *testing.T) {
	s := newPendulumSolver(t, 20, 1.0)
	s.InitInteriorPoint()

	result := s.Solve(manifold.Config{2.0}, manifold.Vector{0.0})

	if result.ExitReason != stats.ExitConverged {
		t.Fatalf("expected convergence, got exit reason %q (final KKT error %g after %d iterations)",
			result.ExitReason, result.FinalKKTError(), result.NumIter())
	}
	if result.NumIter() == 0 || result.NumIter() > 15 {
		t.Fatalf("expected convergence within 15 Newton iterations, took %d", result.NumIter())
	}
	if result.FinalKKTError() >= 1e-6 {
		t.Fatalf("expected final KKT error below 1e-6, got %g", result.FinalKKTError())
	}

	terminal := s.GetSolution(s.N() - 1)
	if !allFinite(terminal.Q) || !terminal.V.IsValid() {
		t.Fatalf("terminal state is not finite: q=%v v=%v", terminal.Q, terminal.V)
	}
	if math.Abs(terminal.Q[0]) > 0.2 {
		t.Errorf("expected the pendulum to have swung near the hanging equilibrium, terminal q=%v", terminal.Q)
	}
}

func allFinite(v []float64) bool {
	for _, x := range v {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return false
		}
	}
	return true
}

func TestSolverStateFeedbackGainAvailableAfterSolve(t *testing.T) {
	s := newPendulumSolver(t, 10, 1.0)
	s.InitInteriorPoint()

	if g := s.GetStateFeedbackGain(0); g != nil {
		t.Errorf("expected nil feedback gain before any Solve call, got %v", g)
	}

	s.Solve(manifold.Config{1.0}, manifold.Vector{0.0})

	if g := s.GetStateFeedbackGain(0); g == nil {
		t.Error("expected a non-nil feedback gain at stage 0 after Solve")
	}
	if g := s.GetStateFeedbackGain(s.N() - 1); g != nil {
		t.Errorf("expected a nil feedback gain at the terminal stage, got %v", g)
	}
}

func TestSolverReportsInvalidArgumentOnBadHorizon(t *testing.T) {
	rob := robot.NewPointMassPendulum()
	status := contactstatus.New(nil, nil)
	cs := hybrid.NewContactSequence(status)
	disc := hybrid.New(0, 0)

	opts := config.DefaultOptions()
	opts.N, opts.T = 0, 0

	if _, err := New(opts, disc, cs, rob, pendulumSwingCost(), nil); err == nil {
		t.Fatal("expected New to reject a zero-length horizon")
	}
}

// quadrupedStandingCost is a minimal standing-balance cost, enough to
// keep the Newton iteration well posed without pulling in
// internal/scenario's unexported cost builder.
func quadrupedStandingCost(rob robot.Robot) cost.Function {
	q := rob.(*robot.FloatingBaseQuadruped)
	nq, nv, nu := q.DimQ(), q.DimV(), q.DimU()
	qRef := make(manifold.Config, nq)
	qRef[6] = 1
	weight := make([]float64, nv)
	for i := range weight {
		weight[i] = 10
	}
	return cost.NewComposite(&cost.ConfigurationTracking{
		QRef: qRef, VRef: make(manifold.Vector, nv), ARef: make(manifold.Vector, nv), URef: make(manifold.Vector, nu),
		WeightQ: weight, WeightV: weight, WeightU: make([]float64, nu),
		HasFloatingBase: true,
	})
}

// TestSolverDispatchesLiftKindStagesToLiftSplitOCP exercises a contact
// break: all four feet start active, one lifts off mid-horizon. New
// must route the PreLift/PostLift grid points to ocp.LiftSplitOCP
// (solver.go's switch), and Solve must run through that path without
// producing a NaN trajectory.
func TestSolverDispatchesLiftKindStagesToLiftSplitOCP(t *testing.T) {
	rob := robot.NewFloatingBaseQuadruped()
	feet := rob.ContactFrameNames()

	initial := contactstatus.New(feet, []contactstatus.ContactType{
		contactstatus.PointContact, contactstatus.PointContact,
		contactstatus.PointContact, contactstatus.PointContact,
	})
	if err := initial.Activate(feet...); err != nil {
		t.Fatalf("Activate: %v", err)
	}
	cs := hybrid.NewContactSequence(initial)

	afterLift := initial.Clone()
	if err := afterLift.SetActive(0, false); err != nil {
		t.Fatalf("SetActive: %v", err)
	}
	if err := cs.Push(hybrid.LiftEvent, 0.3, afterLift); err != nil {
		t.Fatalf("Push: %v", err)
	}

	disc := hybrid.New(0.6, 12)
	if err := disc.Discretize(cs, 0); err != nil {
		t.Fatalf("Discretize: %v", err)
	}

	sawLiftStage := false
	for i := 0; i < disc.NumGrids(); i++ {
		if k := disc.Grid(i).Kind; k == hybrid.PreLift || k == hybrid.PostLift {
			sawLiftStage = true
		}
	}
	if !sawLiftStage {
		t.Fatal("expected the discretization to contain a PreLift/PostLift grid point")
	}

	opts := config.DefaultOptions()
	opts.N, opts.T = 12, 0.6
	opts.NThreads = 2
	opts.MaxIter = 20

	s, err := New(opts, disc, cs, rob, quadrupedStandingCost(rob), nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	q0 := make(manifold.Config, rob.DimQ())
	q0[6] = 1
	v0 := make(manifold.Vector, rob.DimV())

	s.InitInteriorPoint()
	result := s.Solve(q0, v0)

	if result.NumIter() == 0 {
		t.Fatal("expected at least one logged Newton iteration")
	}
	for i := 0; i < s.N(); i++ {
		sol := s.GetSolution(i)
		if !allFinite(sol.Q) || !sol.V.IsValid() {
			t.Fatalf("stage %d solution is not finite: q=%v v=%v", i, sol.Q, sol.V)
		}
	}
}

func TestSolverSetSolutionBroadcastsWarmStart(t *testing.T) {
	s := newPendulumSolver(t, 5, 1.0)
	if err := s.SetSolution("q", []float64{1.5}); err != nil {
		t.Fatalf("SetSolution: %v", err)
	}
	for i := 0; i < s.N(); i++ {
		if got := s.GetSolution(i).Q[0]; got != 1.5 {
			t.Errorf("stage %d: Q[0] = %f, want 1.5", i, got)
		}
	}
	if err := s.SetSolution("bogus", []float64{0}); err == nil {
		t.Error("expected an error for an unknown solution field name")
	}
}
