package hybrid

import (
	"testing"

	"github.com/san-kum/hocp/internal/contactstatus"
)

func twoFootStatus() *contactstatus.ContactStatus {
	types := []contactstatus.ContactType{contactstatus.PointContact, contactstatus.PointContact}
	return contactstatus.New([]string{"left", "right"}, types)
}

func TestContactSequencePushOrdering(t *testing.T) {
	initial := twoFootStatus()
	cs := NewContactSequence(initial)

	afterLift := twoFootStatus()
	afterLift.SetActive(1, true)
	if err := cs.Push(LiftEvent, 0.3, afterLift); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	afterImpulse := twoFootStatus()
	afterImpulse.SetActive(0, true)
	afterImpulse.SetActive(1, true)
	if err := cs.Push(ImpulseEvent, 0.6, afterImpulse); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := cs.Push(LiftEvent, 0.1, twoFootStatus()); err == nil {
		t.Fatal("expected error pushing an out-of-order event")
	}

	if cs.NumEvents() != 2 {
		t.Fatalf("expected 2 events, got %d", cs.NumEvents())
	}
	if cs.NumContactPhases() != 3 {
		t.Fatalf("expected 3 contact phases, got %d", cs.NumContactPhases())
	}
}

func TestContactSequenceSetEventTimeValidatesOrdering(t *testing.T) {
	cs := NewContactSequence(twoFootStatus())
	cs.Push(LiftEvent, 0.3, twoFootStatus())
	cs.Push(ImpulseEvent, 0.6, twoFootStatus())

	if err := cs.SetEventTime(0, 0.7); err == nil {
		t.Fatal("expected error moving event 0 past event 1")
	}
	if err := cs.SetEventTime(0, 0.2); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
