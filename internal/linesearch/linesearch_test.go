package linesearch

import (
	"math"
	"testing"
)

func TestFilterAcceptsStrictImprovement(t *testing.T) {
	f := NewFilter()
	f.Add(Point{Violation: 1.0, Merit: 1.0})

	if !f.Acceptable(Point{Violation: 0.5, Merit: 1.0}) {
		t.Error("expected strictly lower violation to be acceptable")
	}
	if !f.Acceptable(Point{Violation: 1.0, Merit: 0.5}) {
		t.Error("expected strictly lower merit to be acceptable")
	}
}

func TestFilterRejectsDominatedPoint(t *testing.T) {
	f := NewFilter()
	f.Add(Point{Violation: 1.0, Merit: 1.0})

	if f.Acceptable(Point{Violation: 1.0, Merit: 1.0}) {
		t.Error("expected a point equal on both coordinates to be rejected")
	}
	if f.Acceptable(Point{Violation: 1.5, Merit: 1.5}) {
		t.Error("expected a strictly worse point to be rejected")
	}
}

func TestFilterAddPrunesDominatedEntries(t *testing.T) {
	f := NewFilter()
	f.Add(Point{Violation: 1.0, Merit: 1.0})
	f.Add(Point{Violation: 0.1, Merit: 0.1})

	if len(f.points) != 1 {
		t.Fatalf("expected the dominated entry to be pruned, got %d entries", len(f.points))
	}
	if f.points[0].Violation != 0.1 {
		t.Errorf("expected the surviving entry to be the dominating one, got %+v", f.points[0])
	}
}

func TestSearchAcceptsFullStepWhenImproving(t *testing.T) {
	filter := NewFilter()
	filter.Add(Point{Violation: 10, Merit: 10})

	eval := func(alpha float64) Point {
		return Point{Violation: 10 - 9*alpha, Merit: 10 - 9*alpha}
	}

	alpha, trial, ok := Search(1.0, eval, filter)
	if !ok {
		t.Fatal("expected search to accept a step")
	}
	if alpha != 1.0 {
		t.Errorf("alpha = %f, want 1.0", alpha)
	}
	if trial.Violation != 1 {
		t.Errorf("trial violation = %f, want 1", trial.Violation)
	}
}

func TestSearchBacktracksUntilAcceptable(t *testing.T) {
	filter := NewFilter()
	filter.Add(Point{Violation: 1.0, Merit: 1.0})

	// Only a small step improves; anything past alpha=0.25 makes things worse.
	eval := func(alpha float64) Point {
		if alpha > 0.25 {
			return Point{Violation: 5, Merit: 5}
		}
		return Point{Violation: 0.5, Merit: 0.5}
	}

	alpha, _, ok := Search(1.0, eval, filter)
	if !ok {
		t.Fatal("expected search to eventually accept a backtracked step")
	}
	if alpha > 0.25 {
		t.Errorf("alpha = %f, want <= 0.25", alpha)
	}
}

func TestSearchFailsWhenNoStepIsAcceptable(t *testing.T) {
	filter := NewFilter()
	filter.Add(Point{Violation: 0, Merit: 0})

	eval := func(alpha float64) Point {
		return Point{Violation: 1, Merit: 1}
	}

	if _, _, ok := Search(1.0, eval, filter); ok {
		t.Error("expected search to fail when every trial is dominated")
	}
}

func TestSearchSkipsNaNTrial(t *testing.T) {
	filter := NewFilter()
	filter.Add(Point{Violation: 1.0, Merit: 1.0})

	eval := func(alpha float64) Point {
		if alpha == 1.0 {
			return Point{Violation: math.NaN(), Merit: math.NaN()}
		}
		return Point{Violation: 0.1, Merit: 0.1}
	}

	alpha, _, ok := Search(1.0, eval, filter)
	if !ok {
		t.Fatal("expected search to recover after skipping a NaN trial")
	}
	if alpha == 1.0 {
		t.Errorf("expected the NaN full step to be skipped, got alpha=%f", alpha)
	}
}

func TestMeritFormula(t *testing.T) {
	got := Merit(2.0, 0.5, 4.0, 0.1)
	want := 2.0 + 0.5 - 0.1*4.0
	if math.Abs(got-want) > 1e-12 {
		t.Errorf("Merit = %f, want %f", got, want)
	}
}
