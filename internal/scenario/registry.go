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
)

// Registry looks scenarios up by name, grounded on the teacher's
// internal/experiment.Registry (named model/integrator/controller
// factories) collapsed to a single named-Scenario map, since this
// repo's "integrator" and "controller" are both folded into the
// OCPSolver itself.
type Registry struct {
	scenarios map[string]func() *Scenario
}

// NewRegistry builds the registry of scenarios S1-S6, §8.
func NewRegistry() *Registry {
	r := &Registry{scenarios: map[string]func() *Scenario{
		"s1_pendulum_swing":     s1PendulumSwing,
		"s2_quadruped_standing": s2QuadrupedStanding,
		"s3_single_impulse":     s3SingleImpulse,
		"s4_sto_refinement":     s4STORefinement,
		"s5_infeasible_start":   s5InfeasibleStart,
		"s6_parallel_determinism": func() *Scenario {
			sc := s1PendulumSwing()
			sc.Name = "s6_parallel_determinism"
			return sc
		},
	}}
	return r
}

// Get builds a named scenario, or an error if the name is unknown.
func (r *Registry) Get(name string) (*Scenario, error) {
	fn, ok := r.scenarios[name]
	if !ok {
		return nil, fmt.Errorf("scenario: unknown scenario %q", name)
	}
	return fn(), nil
}

// Names lists every registered scenario name.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.scenarios))
	for name := range r.scenarios {
		names = append(names, name)
	}
	return names
}

// clonedPreset deep-copies a named preset so a scenario can freely
// mutate its own Options without aliasing the shared config.Presets map
// entry (s5 seeds a perturbed init state, s6 varies NThreads per run).
func clonedPreset(model, name string) *config.Options {
	src := config.GetPreset(model, name)
	cp := *src
	cp.InitState.Q = append([]float64{}, src.InitState.Q...)
	cp.InitState.V = append([]float64{}, src.InitState.V...)
	return &cp
}

func s1PendulumSwing() *Scenario {
	opts := clonedPreset("pendulum", "s1")
	return &Scenario{
		Name:        "s1_pendulum_swing",
		Description: "free-flying 1-dof pendulum, no contacts, torque-limited swing to the hanging equilibrium",
		NewRobot:    func() robot.Robot { return robot.NewPointMassPendulum() },
		NewCost: func(rob robot.Robot) cost.Function {
			return cost.NewComposite(&cost.ConfigurationTracking{
				QRef:    manifold.Config{0},
				VRef:    manifold.Vector{0},
				ARef:    manifold.Vector{0},
				URef:    manifold.Vector{0},
				WeightQ: []float64{10},
				WeightV: []float64{1},
				WeightU: []float64{0.1},
			})
		},
		Components: func(status *contactstatus.ContactStatus) []constraint.Component {
			comps := constraint.NewJointTorquesUpperLimit([]int{0}, []float64{5})
			comps = append(comps, constraint.NewJointTorquesLowerLimit([]int{0}, []float64{-5})...)
			return comps
		},
		Options: opts,
	}
}

// quadrupedFrictionCones builds one FrictionCone per active foot, in
// status.ActiveIndices() order, offset by that foot's position in the
// stacked 3-wide force vector.
func quadrupedFrictionCones(mu float64) func(status *contactstatus.ContactStatus) []constraint.Component {
	return func(status *contactstatus.ContactStatus) []constraint.Component {
		active := status.ActiveIndices()
		comps := make([]constraint.Component, len(active))
		for i := range active {
			comps[i] = constraint.NewFrictionCone(3*i, mu)
		}
		return comps
	}
}

func standingQuadrupedCost(rob robot.Robot) cost.Function {
	q := rob.(*robot.FloatingBaseQuadruped)
	nq, nv, nu := q.DimQ(), q.DimV(), q.DimU()

	qRef := make(manifold.Config, nq)
	qRef[6] = 1 // quaternion_xyzw identity
	weightQ := make([]float64, nv)
	for i := range weightQ {
		weightQ[i] = 10
	}

	weightForce := make([]float64, 12)
	forceRef := make([]float64, 12)
	for i := 0; i < 4; i++ {
		forceRef[3*i+2] = q.BaseMass * q.Gravity / 4
		weightForce[3*i+2] = 1
	}

	return cost.NewComposite(
		&cost.ConfigurationTracking{
			QRef: qRef, VRef: make(manifold.Vector, nv), ARef: make(manifold.Vector, nv), URef: make(manifold.Vector, nu),
			WeightQ: weightQ, WeightV: weightQ, WeightU: make([]float64, nu),
			HasFloatingBase: true,
		},
		&cost.ForceTracking{Ref: forceRef, Weight: weightForce},
	)
}

func s2QuadrupedStanding() *Scenario {
	opts := clonedPreset("quadruped", "s2_standing")
	opts.InitState.Q = make([]float64, 19)
	opts.InitState.Q[6] = 1 // quaternion_xyzw identity
	opts.InitState.V = make([]float64, 18)
	feet := robot.NewFloatingBaseQuadruped().ContactFrameNames()
	return &Scenario{
		Name:            "s2_quadruped_standing",
		Description:     "four-legged standing balance, all feet in contact for the full horizon",
		NewRobot:        func() robot.Robot { return robot.NewFloatingBaseQuadruped() },
		NewCost:         standingQuadrupedCost,
		Components:      quadrupedFrictionCones(0.7),
		InitialContacts: feet,
		Options:         opts,
	}
}

func s3SingleImpulse() *Scenario {
	opts := clonedPreset("impulse", "s3_single_impulse")
	opts.InitState.Q = make([]float64, 19)
	opts.InitState.Q[6] = 1 // quaternion_xyzw identity
	opts.InitState.V = make([]float64, 18)
	return &Scenario{
		Name:        "s3_single_impulse",
		Description: "one impulse event at t_e=0.25 bringing the front-left foot into contact",
		NewRobot:    func() robot.Robot { return robot.NewFloatingBaseQuadruped() },
		NewCost:     standingQuadrupedCost,
		Components:  quadrupedFrictionCones(0.7),
		Events: []Event{
			{Kind: hybrid.ImpulseEvent, Time: 0.25, Activate: []string{"FL_foot"}},
		},
		Options: opts,
	}
}

// s4STORefinement is S3 with switching-time optimization enabled on the
// single impulse and its initial guess moved far from the optimum, §8
// ("Same as S3 but STO enabled ... initial t_e=0.1"). The impulse's time
// is a Newton decision variable here (solver.Solver adjusts it each
// iteration from the backward sweep's STOPolicy, §4.4), not an outer
// grid search over re-built scenarios.
func s4STORefinement() *Scenario {
	sc := s3SingleImpulse()
	sc.Name = "s4_sto_refinement"
	sc.Description = "S3's single impulse with its event time initialized far from optimum, refined in-solve by switching-time optimization"
	sc.Events[0].Time = 0.1
	sc.EnableSTO = true
	return sc
}

// s5InfeasibleStart seeds one quadruped leg joint 10% past the ±1.2rad
// bound this scenario enforces, exercising §7's feasibility-restoration
// path, §8 S5.
func s5InfeasibleStart() *Scenario {
	sc := s2QuadrupedStanding()
	sc.Name = "s5_infeasible_start"
	sc.Description = "standing quadruped seeded with one leg joint 10% past its position limit"

	jointLimit := 1.2
	sc.Components = func(status *contactstatus.ContactStatus) []constraint.Component {
		comps := quadrupedFrictionCones(0.7)(status)
		for leg := 0; leg < 4; leg++ {
			for j := 0; j < 3; j++ {
				qIdx, tIdx := 7+leg*3+j, 6+leg*3+j
				comps = append(comps, constraint.NewJointPositionUpperLimit([]int{qIdx}, []int{tIdx}, []float64{jointLimit})...)
				comps = append(comps, constraint.NewJointPositionLowerLimit([]int{qIdx}, []int{tIdx}, []float64{-jointLimit})...)
			}
		}
		return comps
	}

	opts := *sc.Options
	opts.InitState.Q = make([]float64, 19)
	opts.InitState.Q[6] = 1
	opts.InitState.Q[7] = jointLimit * 1.1
	opts.InitState.V = make([]float64, 18)
	sc.Options = &opts
	return sc
}
