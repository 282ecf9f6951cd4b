// Package hybrid builds the time-discretized grid of a hybrid optimal
// control problem from a finite horizon plus a sequence of discrete
// contact events, §4.1, grounded on
// original_source/include/robotoc/hybrid/time_discretization.hpp (the
// only header from that directory carried into this pack's pruned
// original_source/ copy; ContactSequence and GridInfo below are this
// package's own reconstruction of the types that header's call sites
// imply, not a port of a contact_sequence.hpp/grid_info.hpp this pack
// does not have).
package hybrid

import (
	"fmt"
	"sort"

	"github.com/san-kum/hocp/internal/contactstatus"
)

// EventKind distinguishes a contact impulse (velocity jump, new contact
// made) from a lift event (contact broken, no velocity jump).
type EventKind int

const (
	ImpulseEvent EventKind = iota
	LiftEvent
)

func (k EventKind) String() string {
	if k == LiftEvent {
		return "lift"
	}
	return "impulse"
}

// Event is one discrete contact-switch on the horizon: at Time, the
// active contact set changes to Status.
type Event struct {
	Kind   EventKind
	Time   float64
	Status *contactstatus.ContactStatus
}

// ContactSequence is the ordered list of discrete contact events over a
// horizon, §4.1 ("ContactSequence / TimeDiscretization").
type ContactSequence struct {
	initial *contactstatus.ContactStatus
	events  []Event
}

// NewContactSequence builds a ContactSequence starting from the given
// initial contact activation (active from t0 until the first event).
func NewContactSequence(initial *contactstatus.ContactStatus) *ContactSequence {
	return &ContactSequence{initial: initial.Clone()}
}

// InitialStatus returns the contact activation in force before the first
// event.
func (cs *ContactSequence) InitialStatus() *contactstatus.ContactStatus {
	return cs.initial
}

// Push appends a discrete event; events must be pushed in nondecreasing
// time order (the usual construction order for a planned gait).
func (cs *ContactSequence) Push(kind EventKind, t float64, status *contactstatus.ContactStatus) error {
	if len(cs.events) > 0 && t < cs.events[len(cs.events)-1].Time {
		return fmt.Errorf("hybrid: event at t=%f precedes last event at t=%f", t, cs.events[len(cs.events)-1].Time)
	}
	cs.events = append(cs.events, Event{Kind: kind, Time: t, Status: status.Clone()})
	return nil
}

// SetEventTime updates the time of event i, re-validating ordering; used
// by switching-time optimization (STO) to move an event within the
// solver's Newton iteration.
func (cs *ContactSequence) SetEventTime(i int, t float64) error {
	if i < 0 || i >= len(cs.events) {
		return fmt.Errorf("hybrid: event index %d out of range [0,%d)", i, len(cs.events))
	}
	if i > 0 && t < cs.events[i-1].Time {
		return fmt.Errorf("hybrid: event %d time %f precedes previous event at %f", i, t, cs.events[i-1].Time)
	}
	if i < len(cs.events)-1 && t > cs.events[i+1].Time {
		return fmt.Errorf("hybrid: event %d time %f exceeds next event at %f", i, t, cs.events[i+1].Time)
	}
	cs.events[i].Time = t
	return nil
}

// NumEvents returns the total number of discrete events (impulse + lift).
func (cs *ContactSequence) NumEvents() int { return len(cs.events) }

// NumImpulseEvents returns E_imp.
func (cs *ContactSequence) NumImpulseEvents() int {
	n := 0
	for _, e := range cs.events {
		if e.Kind == ImpulseEvent {
			n++
		}
	}
	return n
}

// NumLiftEvents returns E_lift.
func (cs *ContactSequence) NumLiftEvents() int {
	n := 0
	for _, e := range cs.events {
		if e.Kind == LiftEvent {
			n++
		}
	}
	return n
}

// Event returns the i-th event in time order.
func (cs *ContactSequence) Event(i int) Event { return cs.events[i] }

// Events returns all events in time order; callers must not mutate the
// returned slice.
func (cs *ContactSequence) Events() []Event { return cs.events }

// StatusAtPhase returns the contact activation in force during contact
// phase i (phase 0 runs from t0 to the first event, phase k runs between
// events k-1 and k, ...).
func (cs *ContactSequence) StatusAtPhase(phase int) *contactstatus.ContactStatus {
	if phase <= 0 || phase > len(cs.events) {
		return cs.initial
	}
	return cs.events[phase-1].Status
}

// NumContactPhases returns the number of contiguous contact phases,
// numDiscreteEvents()+1.
func (cs *ContactSequence) NumContactPhases() int { return len(cs.events) + 1 }

// IsSorted reports whether events are in nondecreasing time order — an
// invariant Push/SetEventTime maintain but that a caller constructing a
// ContactSequence some other way should still be able to check.
func (cs *ContactSequence) IsSorted() bool {
	return sort.SliceIsSorted(cs.events, func(i, j int) bool { return cs.events[i].Time < cs.events[j].Time })
}
