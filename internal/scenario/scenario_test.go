package scenario

import (
	"math"
	"testing"
)

func TestRegistryListsAllSixScenarios(t *testing.T) {
	r := NewRegistry()
	names := r.Names()
	if len(names) != 6 {
		t.Fatalf("expected 6 registered scenarios, got %d: %v", len(names), names)
	}
}

func TestRegistryGetUnknownNameErrors(t *testing.T) {
	r := NewRegistry()
	if _, err := r.Get("does_not_exist"); err == nil {
		t.Fatal("expected an error for an unregistered scenario name")
	}
}

func TestPendulumSwingBuilds(t *testing.T) {
	r := NewRegistry()
	sc, err := r.Get("s1_pendulum_swing")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}

	s, disc, cs, rob, err := sc.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if s.N() != disc.NumGrids() {
		t.Errorf("solver stage count %d != discretization grid count %d", s.N(), disc.NumGrids())
	}
	if rob.DimQ() != 1 {
		t.Errorf("expected a 1-dof pendulum, got dim(q)=%d", rob.DimQ())
	}
	if cs.NumEvents() != 0 {
		t.Errorf("expected no contact events, got %d", cs.NumEvents())
	}

	q0, v0 := sc.InitState()
	if len(q0) != 1 || q0[0] != 2.0 {
		t.Errorf("expected q0=[2], got %v", q0)
	}
	if len(v0) != 1 || v0[0] != 0.0 {
		t.Errorf("expected v0=[0], got %v", v0)
	}
}

func TestQuadrupedStandingBuildsWithAllFeetActiveThroughout(t *testing.T) {
	r := NewRegistry()
	sc, err := r.Get("s2_quadruped_standing")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}

	_, _, cs, rob, err := sc.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if rob.MaxContacts() != 4 {
		t.Fatalf("expected 4 candidate contacts, got %d", rob.MaxContacts())
	}
	if cs.InitialStatus().NumActive() != 4 {
		t.Errorf("expected all 4 feet active from t0, got %d", cs.InitialStatus().NumActive())
	}
	if cs.InitialStatus().Dimf() != 12 {
		t.Errorf("expected dim(f)=12 for 4 point contacts, got %d", cs.InitialStatus().Dimf())
	}
}

func TestSingleImpulseBuildsWithOneEvent(t *testing.T) {
	r := NewRegistry()
	sc, err := r.Get("s3_single_impulse")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}

	_, _, cs, _, err := sc.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if cs.NumEvents() != 1 {
		t.Fatalf("expected 1 event, got %d", cs.NumEvents())
	}
	if cs.InitialStatus().NumActive() != 0 {
		t.Errorf("expected no contacts active before the impulse, got %d", cs.InitialStatus().NumActive())
	}
	if got := cs.Event(0).Status.NumActive(); got != 1 {
		t.Errorf("expected 1 contact active after the impulse, got %d", got)
	}
}

func TestSTORefinementStartsFarFromS3EventTime(t *testing.T) {
	r := NewRegistry()
	sto, err := r.Get("s4_sto_refinement")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	base, err := r.Get("s3_single_impulse")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if sto.Events[0].Time == base.Events[0].Time {
		t.Error("expected S4's initial event time to differ from S3's")
	}
	if !sto.EnableSTO {
		t.Error("expected S4 to enable switching-time optimization")
	}
}

// TestSTORefinementMovesEventTimeDuringSolve exercises §8 S4: with STO
// enabled and the impulse seeded far from its optimum (t_e=0.1 instead
// of S3's 0.25), the solver's per-iteration switching-time Newton step
// should move the event time toward the optimum rather than leaving it
// pinned at its initial guess.
func TestSTORefinementMovesEventTimeDuringSolve(t *testing.T) {
	r := NewRegistry()
	sc, err := r.Get("s4_sto_refinement")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}

	s, _, cs, _, err := sc.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	initialEventTime := cs.Event(0).Time
	if initialEventTime != 0.1 {
		t.Fatalf("expected S4's seeded event time to be 0.1, got %f", initialEventTime)
	}

	q0, v0 := sc.InitState()
	s.InitInteriorPoint()
	result := s.Solve(q0, v0)

	if len(result.Iterations) == 0 {
		t.Fatal("expected at least one logged Newton iteration")
	}

	finalEventTime := cs.Event(0).Time
	if math.Abs(finalEventTime-initialEventTime) < 1e-6 {
		t.Errorf("expected the switching-time Newton step to move the event time away from its seeded value 0.1, got %f", finalEventTime)
	}
	if finalEventTime <= 0 || finalEventTime >= sc.Options.T {
		t.Errorf("expected the refined event time to stay within the horizon (0, %f), got %f", sc.Options.T, finalEventTime)
	}
}

func TestInfeasibleStartSeedsAPositiveConstraintViolation(t *testing.T) {
	r := NewRegistry()
	sc, err := r.Get("s5_infeasible_start")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}

	s, _, _, _, err := sc.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	q0, v0 := sc.InitState()
	s.InitInteriorPoint()
	result := s.Solve(q0, v0)
	if !result.Feasible {
		t.Fatal("expected feasibility restoration to succeed rather than abort the solve")
	}
	if len(result.Iterations) == 0 {
		t.Fatal("expected at least one logged Newton iteration")
	}
	if result.Iterations[0].ConstraintViolation <= 0 {
		t.Error("expected the seeded out-of-bound joint to register a nonzero constraint violation on the first iteration")
	}
}
