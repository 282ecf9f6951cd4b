// Package solver implements the OCPSolver driver of §4.6: it owns the
// stage arrays, orchestrates one Newton iteration (linearize → backward
// Riccati → forward Riccati → expand slack/dual & step sizes → line
// search → apply), and reports §7's error taxonomy through
// stats.SolverStatistics rather than panicking. Grounded on spec.md
// §4.6's seven-step iteration and §5's concurrency model; no single
// original_source file is ported (robotoc spreads the driver across
// ocp/ocp_solver.hpp plus several riccati/line-search helper classes not
// individually carried into this pack), so the loop is assembled
// directly from the already-built internal/{kkt,ocp,riccati,linesearch,
// constraint,parallel} packages.
package solver

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/hocp/internal/config"
	"github.com/san-kum/hocp/internal/constraint"
	"github.com/san-kum/hocp/internal/contactstatus"
	"github.com/san-kum/hocp/internal/cost"
	"github.com/san-kum/hocp/internal/hybrid"
	"github.com/san-kum/hocp/internal/kkt"
	"github.com/san-kum/hocp/internal/linesearch"
	"github.com/san-kum/hocp/internal/manifold"
	"github.com/san-kum/hocp/internal/ocp"
	"github.com/san-kum/hocp/internal/parallel"
	"github.com/san-kum/hocp/internal/riccati"
	"github.com/san-kum/hocp/internal/robot"
	"github.com/san-kum/hocp/internal/stats"
)

// ComponentsBuilder builds the constraint-component list active at a
// stage whose contact activation is status; called once per stage at
// construction time, §4.2/§5 ("constraint component objects are
// immutable; their per-stage data is private to that stage"). A nil
// builder means "no constraints" everywhere.
type ComponentsBuilder func(status *contactstatus.ContactStatus) []constraint.Component

// splitWorker is the method set Solve drives a regular (non-impulse,
// non-terminal) stage through; both *ocp.SplitOCP and *ocp.LiftSplitOCP
// satisfy it, so a lift-kind stage's worker is a genuine LiftSplitOCP
// rather than a plain SplitOCP reached through its embedded pointer.
type splitWorker interface {
	EvalOCP(t, dt float64, s, sNext *kkt.SplitSolution, status *contactstatus.ContactStatus, barrier float64, residual *kkt.SplitKKTResidual)
	LinearizeOCP(t, dt float64, s, sNext *kkt.SplitSolution, status *contactstatus.ContactStatus, matrix *kkt.SplitKKTMatrix, residual *kkt.SplitKKTResidual)
	ExpandPrimal(s *kkt.SplitSolution, status *contactstatus.ContactStatus, dq, dv []float64, matrix *kkt.SplitKKTMatrix, residual *kkt.SplitKKTResidual, d *kkt.SplitDirection)
	TrialCost(t, dt float64, s *kkt.SplitSolution) float64
}

// stage bundles one grid point's worker, contact status, and timing, so
// Solve's per-iteration phases can dispatch on kind without recomputing
// any of this from the discretization each time.
type stage struct {
	kind        hybrid.StageKind
	status      *contactstatus.ContactStatus
	t, dt       float64
	split       splitWorker
	impulse     *ocp.ImpulseSplitOCP
	terminal    *ocp.TerminalOCP
	constraints *constraint.ConstraintsData

	eventIndex int  // index among events of this stage's kind (impulse or lift), -1 if not event-adjacent
	stoEnabled bool // switching-time optimization is active on this stage, §4.4
}

// stoEvent pairs the pre- and post-event stage indices of one STO-enabled
// discrete event with the contact frame that event switches, §4.3's
// switching constraint.
type stoEvent struct {
	eventIndex      int
	preIdx, postIdx int
	frameID         int
}

// Solver is the OCPSolver driver of §4.6. Stage arrays (Solution,
// matrices, residuals, directions) are allocated once at New and sized
// to the discretization's combined stage count; per-iteration work
// writes into the same slots (§3 "Ownership: stage arrays are owned by
// the solver driver").
type Solver struct {
	opts *config.Options
	disc *hybrid.TimeDiscretization
	cs   *hybrid.ContactSequence

	robots []robot.Robot
	stages []stage

	Solution   []*kkt.SplitSolution
	matrices   []*kkt.SplitKKTMatrix
	residuals  []*kkt.SplitKKTResidual
	directions []*kkt.SplitDirection

	nv, nu        int
	barrier       float64
	filter        *linesearch.Filter
	lastRecursion *riccati.Recursion

	stoEvents []stoEvent
}

// New constructs a Solver over the given discretized horizon, contact
// sequence, robot model, cost functional, and constraint-component
// builder, §4.6/§6. It clones rob once per worker thread (§5, "Robot is
// replicated P times"). Returns a wrapped stats.ErrInvalidArgument when
// opts fails Validate or the discretization is empty, and a wrapped
// stats.ErrBadDiscretization when a stage is too narrow (§7); the
// dimensions of rob, costFn and opts are not cross-checked.
func New(opts *config.Options, disc *hybrid.TimeDiscretization, cs *hybrid.ContactSequence, rob robot.Robot, costFn cost.Function, build ComponentsBuilder) (*Solver, error) {
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", stats.ErrInvalidArgument, err)
	}
	n := disc.NumGrids()
	if n == 0 {
		return nil, fmt.Errorf("%w: empty discretization", stats.ErrInvalidArgument)
	}
	if !disc.IsFormulationTractable() {
		return nil, fmt.Errorf("%w: discretization has a sub-epsilon stage width", stats.ErrBadDiscretization)
	}

	nq, nv, nu := rob.DimQ(), rob.DimV(), rob.DimU()
	robots := make([]robot.Robot, opts.NThreads)
	for i := range robots {
		robots[i] = rob.Clone()
	}
	if build == nil {
		build = func(*contactstatus.ContactStatus) []constraint.Component { return nil }
	}

	s := &Solver{
		opts: opts, disc: disc, cs: cs, robots: robots,
		nv: nv, nu: nu,
		barrier: opts.BarrierInit,
		filter:  linesearch.NewFilter(),
	}

	s.Solution = make([]*kkt.SplitSolution, n)
	s.matrices = make([]*kkt.SplitKKTMatrix, n)
	s.residuals = make([]*kkt.SplitKKTResidual, n)
	s.directions = make([]*kkt.SplitDirection, n)
	s.stages = make([]stage, n)

	for i := 0; i < n; i++ {
		g := disc.Grid(i)
		status := cs.StatusAtPhase(g.Phase)
		if g.Kind == hybrid.Impulse {
			status = cs.StatusAtPhase(g.Phase + 1)
		}

		sol := kkt.NewSplitSolution(nq, nv, nu)
		sol.SetContactStatus(status)
		m := kkt.NewSplitKKTMatrix(nq, nv, nu)
		m.SetContactStatus(status)
		res := kkt.NewSplitKKTResidual(nv, nu)
		res.SetContactStatus(status)
		dir := kkt.NewSplitDirection(nv, nu)
		dir.SetContactDimension(status.Dimf())

		s.Solution[i], s.matrices[i], s.residuals[i], s.directions[i] = sol, m, res, dir

		worker := robots[parallel.WorkerOf(i, n, opts.NThreads)]
		st := stage{kind: g.Kind, status: status, t: g.T, dt: g.Dt, eventIndex: g.EventIndex, stoEnabled: g.IsSTOEnabled}
		switch g.Kind {
		case hybrid.Terminal:
			st.terminal = ocp.NewTerminalOCP(worker, costFn)
		case hybrid.Impulse:
			st.constraints = constraint.NewConstraintsData(build(status))
			st.impulse = ocp.NewImpulseSplitOCP(worker, costFn, st.constraints)
		case hybrid.PreLift, hybrid.PostLift:
			st.constraints = constraint.NewConstraintsData(build(status))
			st.split = ocp.NewLiftSplitOCP(worker, costFn, st.constraints, opts.TauB)
		default:
			st.constraints = constraint.NewConstraintsData(build(status))
			st.split = ocp.NewSplitOCP(worker, costFn, st.constraints, opts.TauB)
		}
		s.stages[i] = st
	}
	s.stoEvents = buildSTOEvents(s.stages)
	return s, nil
}

// buildSTOEvents pairs each STO-enabled event's pre/post stage indices
// and identifies the contact frame it switches (the single index whose
// activation differs between the two stages' contact status), §4.3.
func buildSTOEvents(stages []stage) []stoEvent {
	pre := map[int]int{}
	var events []stoEvent
	for i, st := range stages {
		if !st.stoEnabled || st.eventIndex < 0 {
			continue
		}
		switch st.kind {
		case hybrid.PreImpulse, hybrid.PreLift:
			pre[st.eventIndex] = i
		case hybrid.PostImpulse, hybrid.PostLift:
			preIdx, ok := pre[st.eventIndex]
			if !ok {
				continue
			}
			frameID := diffActiveContact(stages[preIdx].status, st.status)
			if frameID < 0 {
				continue
			}
			events = append(events, stoEvent{eventIndex: st.eventIndex, preIdx: preIdx, postIdx: i, frameID: frameID})
		}
	}
	return events
}

// diffActiveContact returns the index of the one contact whose
// activation differs between a and b, or -1 if none (or more than one)
// does.
func diffActiveContact(a, b *contactstatus.ContactStatus) int {
	found := -1
	for i := 0; i < a.MaxContacts(); i++ {
		if a.IsActive(i) != b.IsActive(i) {
			if found >= 0 {
				return -1
			}
			found = i
		}
	}
	return found
}

// N returns the combined stage count (N + 2*E_imp + E_lift + 1), the
// loop bound for every parallel phase (§5).
func (s *Solver) N() int { return len(s.stages) }

// SetSolution broadcasts value across every stage's named field, §6
// ("setSolution(name, value)"), used for warm starts.
func (s *Solver) SetSolution(name string, value []float64) error {
	for _, sol := range s.Solution {
		switch name {
		case "q":
			copy(sol.Q, value)
		case "v":
			copy(sol.V, value)
		case "a":
			copy(sol.A, value)
		case "u":
			copy(sol.U, value)
		case "f":
			n := len(sol.F)
			if n > len(value) {
				n = len(value)
			}
			copy(sol.F, value[:n])
		case "lmd":
			copy(sol.Lmd, value)
		case "gmm":
			copy(sol.Gmm, value)
		default:
			return fmt.Errorf("%w: unknown solution field %q", stats.ErrInvalidArgument, name)
		}
	}
	return nil
}

// GetSolution returns the solution at stage i.
func (s *Solver) GetSolution(stage int) *kkt.SplitSolution { return s.Solution[stage] }

// GetStateFeedbackGain returns the closed-loop feedback gain K at stage
// i produced by the most recent Solve call's final backward sweep, nil
// if Solve has not converged far enough to run a backward sweep or
// stage i is terminal, §6 ("getStateFeedbackGain(stage)").
func (s *Solver) GetStateFeedbackGain(stage int) *mat.Dense {
	if s.lastRecursion == nil {
		return nil
	}
	return s.lastRecursion.Gain(stage)
}

// GetFeedforwardInput returns the feedforward term k0 at stage i
// companion to GetStateFeedbackGain: du = K·dx + k0 is the full control
// direction the last backward sweep produced at that stage.
func (s *Solver) GetFeedforwardInput(stage int) *mat.VecDense {
	if s.lastRecursion == nil {
		return nil
	}
	return s.lastRecursion.Feedforward(stage)
}

// IsCurrentSolutionFeasible reports whether every stage's interior-point
// slack/dual are strictly positive, §7 "Infeasible Initialization".
func (s *Solver) IsCurrentSolutionFeasible() bool {
	for _, st := range s.stages {
		if st.constraints != nil && !st.constraints.IsFeasible() {
			return false
		}
	}
	return true
}

// InitInteriorPoint initializes slack/dual at every constrained stage
// from the current solution, §4.2 "setSlack", and resets the barrier
// parameter and line-search filter — call once before the first Solve
// after seeding q(0)/v(0) or a warm-started solution via SetSolution.
func (s *Solver) InitInteriorPoint() {
	s.barrier = s.opts.BarrierInit
	s.filter.Reset()
	for i, st := range s.stages {
		if st.constraints != nil {
			st.constraints.SetSlack(s.Solution[i], s.barrier)
		}
	}
}

// trialSolution returns stage i's primal state advanced by alpha along
// its Newton direction, without mutating s.Solution[i] — used by the
// line search to score a trial step before it's accepted.
func (s *Solver) trialSolution(i int, alpha float64) *kkt.SplitSolution {
	sol := s.Solution[i]
	dir := s.directions[i]
	rob := s.robots[parallel.WorkerOf(i, len(s.stages), s.opts.NThreads)]

	trial := sol.Clone()
	trial.Q = rob.Integrate(sol.Q, dir.Dq, alpha)
	manifold.AxpyInPlace(trial.V, alpha, dir.Dv)
	manifold.AxpyInPlace(trial.A, alpha, dir.Da)
	manifold.AxpyInPlace(trial.U, alpha, dir.Du)
	for k := range trial.F {
		if k < len(dir.Df) {
			trial.F[k] += alpha * dir.Df[k]
		}
	}
	return trial
}

// solveSTOSteps runs SolveSTOStep at every registered STO event and
// records the result on both the pre- and post-event stage's direction
// (the scalar decision variable is shared by both halves of the split
// interval) and on the matching matrix blocks (Qtt/QttPrev), §4.4.
func (s *Solver) solveSTOSteps(directions []*kkt.SplitDirection) {
	for _, ev := range s.stoEvents {
		preStg, postStg := s.stages[ev.preIdx], s.stages[ev.postIdx]
		rob := s.robots[parallel.WorkerOf(ev.preIdx, len(s.stages), s.opts.NThreads)]

		sc := ocp.NewSwitchingConstraint(rob, ev.frameID)
		phi, dphiDts := sc.Eval(s.Solution[ev.preIdx], preStg.dt, postStg.dt)
		hJump := s.residuals[ev.preIdx].H - s.residuals[ev.postIdx].H

		curvature := 0.5 * dphiDts * dphiDts
		s.matrices[ev.preIdx].Qtt = curvature
		s.matrices[ev.postIdx].QttPrev = curvature

		policy := riccati.SolveSTOStep(phi, dphiDts, hJump, curvature, curvature)
		directions[ev.preIdx].Dts = policy.Dts
		directions[ev.postIdx].Dts = policy.Dts
	}
}

// applySTOSteps advances every STO event's time by alpha·Dts, reshaping
// the pre/post stage widths in lockstep (dtPre+dtPost is invariant) and
// keeping the underlying ContactSequence's bookkeeping in sync, §4.6 step
// 6 ("update switching times"). Clamped so each side keeps at least
// minWidth (1e-6) of the fixed interval width and never collapses to zero.
func (s *Solver) applySTOSteps(directions []*kkt.SplitDirection, alpha float64) {
	const minWidth = 1e-6
	for _, ev := range s.stoEvents {
		preStg, postStg := &s.stages[ev.preIdx], &s.stages[ev.postIdx]
		dtSum := preStg.dt + postStg.dt

		dts := alpha * directions[ev.preIdx].Dts
		newDtPre := preStg.dt + dts
		if newDtPre < minWidth {
			newDtPre = minWidth
		}
		if newDtPre > dtSum-minWidth {
			newDtPre = dtSum - minWidth
		}

		preStg.dt = newDtPre
		postStg.dt = dtSum - newDtPre
		postStg.t = preStg.t + newDtPre
		// ev.eventIndex counts events of one kind only; find that event's
		// position in the full ContactSequence.
		kind := hybrid.ImpulseEvent
		if preStg.kind == hybrid.PreLift {
			kind = hybrid.LiftEvent
		}
		for k, seen := 0, 0; k < s.cs.NumEvents(); k++ {
			if s.cs.Event(k).Kind != kind {
				continue
			}
			if seen == ev.eventIndex {
				_ = s.cs.SetEventTime(k, postStg.t)
				break
			}
			seen++
		}
	}
}

// globalStats sums the per-stage KKT-error, cost, constraint-violation,
// and log-barrier contributions of every stage, §4.6's convergence
// check and §4.5's merit function.
func (s *Solver) globalStats() (kktErr, cost, violation, logBarrierSum float64) {
	for i, res := range s.residuals {
		kktErr += res.KKTErrorNorm()
		cost += res.Cost
		violation += res.ConstraintViolation
		if c := s.stages[i].constraints; c != nil {
			kktErr += c.KKTError()
			violation += c.ConstraintViolation()
			logBarrierSum += c.LogBarrier()
		}
	}
	return
}

// Solve runs the Newton iteration of §4.6 from the given initial state,
// returning a SolverStatistics that reports §7's exit taxonomy instead
// of panicking. Call InitInteriorPoint beforehand (or rely on a prior
// Solve's state for a re-solve).
func (s *Solver) Solve(q0 manifold.Config, v0 manifold.Vector) *stats.SolverStatistics {
	st := &stats.SolverStatistics{}
	n := len(s.stages)
	copy(s.Solution[0].Q, q0)
	copy(s.Solution[0].V, v0)

	if !s.IsCurrentSolutionFeasible() {
		for _, stg := range s.stages {
			if stg.constraints != nil {
				stg.constraints.RestoreFeasibility(s.barrier)
			}
		}
		if !s.IsCurrentSolutionFeasible() {
			st.ExitReason = stats.ExitInfeasibleStart
			st.Feasible = false
			return st
		}
	}
	st.Feasible = true

	tau := s.opts.FractionToBoundary

	for iter := 0; iter < s.opts.MaxIter; iter++ {
		// Step 1: parallel linearize every non-terminal stage.
		parallel.For(n-1, s.opts.NThreads, func(i int) {
			stg := s.stages[i]
			sol := s.Solution[i]
			sNext := s.Solution[i+1]
			m := s.matrices[i]
			res := s.residuals[i]
			m.SetZero()
			res.SetZero()
			if stg.impulse != nil {
				stg.impulse.EvalImpulse(stg.t, sol, s.barrier, res)
				stg.impulse.LinearizeImpulse(stg.t, sol, m, res)
				fImp := stg.impulse.LinearizeImpulseTransition(sol, sNext, stg.status, m, res)
				copy(sol.F, fImp)
				return
			}
			stg.split.EvalOCP(stg.t, stg.dt, sol, sNext, stg.status, s.barrier, res)
			stg.split.LinearizeOCP(stg.t, stg.dt, sol, sNext, stg.status, m, res)
		})

		termStg := s.stages[n-1]
		termSol := s.Solution[n-1]
		termRes := s.residuals[n-1]
		termMat := s.matrices[n-1]
		termMat.SetZero()
		termRes.SetZero()
		termStg.terminal.EvalTerminal(termStg.t, termSol, termRes)
		termStg.terminal.LinearizeTerminal(termStg.t, termSol, termMat)

		kktErrSq, costVal, violation, _ := s.globalStats()
		kktErr := math.Sqrt(kktErrSq)
		log := stats.IterationLog{Iter: iter, KKTError: kktErr, Cost: costVal, ConstraintViolation: violation, Barrier: s.barrier}

		if kktErr < s.opts.KKTTol {
			st.Iterations = append(st.Iterations, log)
			st.ExitReason = stats.ExitConverged
			return st
		}

		// Step 2: serial backward Riccati sweep.
		recursion, err := riccati.Backward(s.matrices, s.residuals, s.nv, s.nu)
		if err != nil {
			st.Iterations = append(st.Iterations, log)
			st.ExitReason = stats.ExitNumericalBreakdown
			return st
		}
		s.lastRecursion = recursion

		// Step 3: serial forward Riccati sweep.
		directions := recursion.Forward(s.matrices, s.residuals)
		s.directions = directions

		// Step 4: parallel expand of acceleration/control/force primal and
		// slack/dual, then the fraction-to-boundary step sizes.
		parallel.For(n-1, s.opts.NThreads, func(i int) {
			stg := s.stages[i]
			sol := s.Solution[i]
			dir := directions[i]
			if stg.split != nil {
				stg.split.ExpandPrimal(sol, stg.status, dir.Dq, dir.Dv, s.matrices[i], s.residuals[i], dir)
			}
			if stg.constraints != nil {
				stg.constraints.ExpandSlackAndDual(sol, dir)
			}
		})

		// Step 4b: for every STO-enabled event, run one scalar Newton
		// step on the switching constraint and record it as the event's
		// Dts direction, §4.3/§4.4. Serial and cheap (one per event, not
		// one per stage), so it runs outside parallel.For.
		s.solveSTOSteps(directions)

		alphaPrimal, alphaDual := 1.0, 1.0
		for i := 0; i < n-1; i++ {
			c := s.stages[i].constraints
			if c == nil {
				continue
			}
			if a := c.MaxPrimalStepSize(tau); a < alphaPrimal {
				alphaPrimal = a
			}
			if a := c.MaxDualStepSize(tau); a < alphaDual {
				alphaDual = a
			}
		}

		// Step 5: filter line search on the primal step size. Violation
		// uses a first-order model (a linear shrink of the current
		// violation along the Newton direction, exact at alpha=1 since
		// that's where the linearized residual was driven to zero);
		// merit is re-evaluated at the trial iterate itself (cost via
		// each stage's own, non-mutating TrialCost, barrier via each
		// component's slack advanced by alpha·dslack) rather than held
		// fixed, so the two-criterion filter test of §4.5 is genuinely
		// two-dimensional.
		alpha := alphaPrimal
		if s.opts.LineSearchEnabled {
			mu := s.barrier
			eval := func(a float64) linesearch.Point {
				trialCost := termRes.Cost
				trialBarrier := 0.0
				for i := 0; i < n-1; i++ {
					stg := s.stages[i]
					if stg.split != nil {
						trialCost += stg.split.TrialCost(stg.t, stg.dt, s.trialSolution(i, a))
					}
					if stg.constraints != nil {
						trialBarrier += stg.constraints.LogBarrierAt(a)
					}
				}
				return linesearch.Point{
					Violation: (1 - a) * violation,
					Merit:     linesearch.Merit(trialCost, 0, trialBarrier, mu),
				}
			}
			a, _, ok := linesearch.Search(alphaPrimal, eval, s.filter)
			if !ok {
				st.Iterations = append(st.Iterations, log)
				st.ExitReason = stats.ExitLineSearchStalled
				return st
			}
			alpha = a
		}
		log.Alpha, log.AlphaDual = alpha, alphaDual
		st.Iterations = append(st.Iterations, log)

		// Step 6: apply the step to primal, costate, and interior-point
		// slack/dual variables.
		for i := 0; i < n-1; i++ {
			stg := s.stages[i]
			sol := s.Solution[i]
			dir := directions[i]
			rob := s.robots[parallel.WorkerOf(i, n, s.opts.NThreads)]

			sol.Q = rob.Integrate(sol.Q, dir.Dq, alpha)
			manifold.AxpyInPlace(sol.V, alpha, dir.Dv)
			manifold.AxpyInPlace(sol.A, alpha, dir.Da)
			manifold.AxpyInPlace(sol.U, alpha, dir.Du)
			for k := range sol.F {
				if k < len(dir.Df) {
					sol.F[k] += alpha * dir.Df[k]
				}
			}
			manifold.AxpyInPlace(sol.Lmd, alphaDual, dir.Dlmd)
			manifold.AxpyInPlace(sol.Gmm, alphaDual, dir.Dgmm)
			manifold.AxpyInPlace(sol.Beta, alphaDual, dir.Dbeta)
			for k := range sol.Mu {
				if k < len(dir.Dmu) {
					sol.Mu[k] += alphaDual * dir.Dmu[k]
				}
			}
			if stg.constraints != nil {
				stg.constraints.ApplyStep(alpha, alphaDual)
			}
		}

		// Step 6b: advance every STO-enabled event's time by the same
		// primal step size, §4.3/§4.6.
		s.applySTOSteps(directions, alpha)

		termDir := directions[n-1]
		manifold.AxpyInPlace(termSol.Lmd, alphaDual, termDir.Dlmd)
		manifold.AxpyInPlace(termSol.Gmm, alphaDual, termDir.Dgmm)

		// Step 7: barrier decay once the iterate is comfortably inside the
		// current barrier's neighborhood, §4.6.
		if kktErr < 10*s.barrier {
			s.barrier = math.Max(s.barrier*s.opts.BarrierDecay, 1e-10)
		}
	}

	st.ExitReason = stats.ExitMaxIterations
	return st
}
