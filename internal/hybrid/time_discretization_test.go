package hybrid

import (
	"testing"

	"github.com/san-kum/hocp/internal/contactstatus"
)

func footStatus() *contactstatus.ContactStatus {
	return contactstatus.New([]string{"left", "right"}, []contactstatus.ContactType{contactstatus.PointContact, contactstatus.PointContact})
}

func TestDiscretizeNoEvents(t *testing.T) {
	cs := NewContactSequence(footStatus())
	td := New(1.0, 10)
	if err := td.Discretize(cs, 0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if td.N() != 10 {
		t.Fatalf("expected 10 normal stages, got %d", td.N())
	}
	if td.NumGrids() != 11 {
		t.Fatalf("expected 11 grids including terminal, got %d", td.NumGrids())
	}
	if !td.IsFormulationTractable() {
		t.Fatal("expected tractable discretization")
	}
}

func TestDiscretizeWithImpulseAndLift(t *testing.T) {
	cs := NewContactSequence(footStatus())
	afterLift := footStatus()
	afterLift.SetActive(0, true)
	cs.Push(LiftEvent, 0.35, afterLift)

	afterImpulse := footStatus()
	afterImpulse.SetActive(0, true)
	afterImpulse.SetActive(1, true)
	cs.Push(ImpulseEvent, 0.72, afterImpulse)

	td := New(1.0, 10)
	if err := td.Discretize(cs, 0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if td.NImpulse() != 1 {
		t.Fatalf("expected 1 impulse event, got %d", td.NImpulse())
	}
	if td.NLift() != 1 {
		t.Fatalf("expected 1 lift event, got %d", td.NLift())
	}
	if !td.IsFormulationTractable() {
		t.Fatal("expected tractable discretization")
	}

	foundPreImpulse, foundPostLift := false, false
	for i := 0; i < td.NumGrids(); i++ {
		g := td.Grid(i)
		if g.Kind == PreImpulse {
			foundPreImpulse = true
		}
		if g.Kind == PostLift {
			foundPostLift = true
		}
	}
	if !foundPreImpulse || !foundPostLift {
		t.Fatal("expected both a pre-impulse and a post-lift stage in the grid")
	}
}

func TestDiscretizeRejectsEventTooCloseToBoundary(t *testing.T) {
	cs := NewContactSequence(footStatus())
	cs.Push(ImpulseEvent, 1e-12, footStatus())

	td := New(1.0, 10)
	if err := td.Discretize(cs, 0); err == nil {
		t.Fatal("expected an error for an event colliding with a grid boundary")
	}
}
