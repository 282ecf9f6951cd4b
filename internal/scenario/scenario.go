// Package scenario bundles a named OCP problem setup — robot model,
// cost, constraints, contact-event schedule, and solver options — into
// one value a registry can look up and run, §8's S1-S6 testable
// scenarios. Grounded on the teacher's internal/automation.Scenario
// (YAML-scripted simulation steps) merged with
// internal/experiment.Config (model/integrator/controller/init-state
// bundle): the integrator/controller selection those carried is
// replaced here by a ComponentsBuilder and a discrete contact-event
// list, since this repo transcribes an OCP rather than steps an ODE.
package scenario

import (
	"fmt"

	"github.com/san-kum/hocp/internal/config"
	"github.com/san-kum/hocp/internal/constraint"
	"github.com/san-kum/hocp/internal/contactstatus"
	"github.com/san-kum/hocp/internal/cost"
	"github.com/san-kum/hocp/internal/hybrid"
	"github.com/san-kum/hocp/internal/manifold"
	"github.com/san-kum/hocp/internal/robot"
	"github.com/san-kum/hocp/internal/solver"
)

// Event is one discrete contact switch on a scenario's horizon, mirrored
// into a hybrid.ContactSequence at Build time.
type Event struct {
	Kind     hybrid.EventKind
	Time     float64
	Activate []string // contact frame names active after this event
}

// Scenario is one named, runnable OCP problem setup.
type Scenario struct {
	Name        string
	Description string

	NewRobot   func() robot.Robot
	NewCost    func(rob robot.Robot) cost.Function
	Components solver.ComponentsBuilder // may be nil for an unconstrained problem

	// InitialContacts names the contacts active from t0 until the first
	// event (e.g. all four feet for a standing scenario with no events
	// at all).
	InitialContacts []string
	Events          []Event

	// EnableSTO marks every event in Events as switching-time-optimization
	// enabled, §4.4/§6: the solver treats that event's time as a Newton
	// decision variable rather than a fixed grid point.
	EnableSTO bool

	Options *config.Options
}

// Build assembles the ContactSequence, TimeDiscretization, Robot, and
// Solver this scenario describes, ready for InitInteriorPoint+Solve.
func (sc *Scenario) Build() (*solver.Solver, *hybrid.TimeDiscretization, *hybrid.ContactSequence, robot.Robot, error) {
	rob := sc.NewRobot()

	initial := contactstatus.New(rob.ContactFrameNames(), contactTypes(rob))
	if len(sc.InitialContacts) > 0 {
		if err := initial.Activate(sc.InitialContacts...); err != nil {
			return nil, nil, nil, nil, fmt.Errorf("scenario %s: %w", sc.Name, err)
		}
	}
	cs := hybrid.NewContactSequence(initial)
	for _, ev := range sc.Events {
		status := initial.Clone()
		if err := status.Activate(ev.Activate...); err != nil {
			return nil, nil, nil, nil, fmt.Errorf("scenario %s: %w", sc.Name, err)
		}
		if err := cs.Push(ev.Kind, ev.Time, status); err != nil {
			return nil, nil, nil, nil, fmt.Errorf("scenario %s: %w", sc.Name, err)
		}
	}

	disc := hybrid.New(sc.Options.T, sc.Options.N)
	disc.EnableSTO(sc.EnableSTO)
	if err := disc.Discretize(cs, 0); err != nil {
		return nil, nil, nil, nil, fmt.Errorf("scenario %s: discretize: %w", sc.Name, err)
	}

	s, err := solver.New(sc.Options, disc, cs, rob, sc.NewCost(rob), sc.Components)
	if err != nil {
		return nil, nil, nil, nil, fmt.Errorf("scenario %s: %w", sc.Name, err)
	}
	return s, disc, cs, rob, nil
}

func contactTypes(rob robot.Robot) []contactstatus.ContactType {
	types := make([]contactstatus.ContactType, rob.MaxContacts())
	for i := range types {
		types[i] = contactstatus.PointContact
	}
	return types
}

// InitState returns the scenario's seed configuration/velocity, §6
// "solve(t, q, v)".
func (sc *Scenario) InitState() (manifold.Config, manifold.Vector) {
	q := manifold.Config(append([]float64{}, sc.Options.InitState.Q...))
	v := manifold.Vector(append([]float64{}, sc.Options.InitState.V...))
	return q, v
}

// Component is the constraint-component list builder most scenarios
// share: constraint.Component is already the type ComponentsBuilder
// returns, re-exported here only so callers constructing a Scenario
// literal don't need to import internal/constraint directly.
type Component = constraint.Component
