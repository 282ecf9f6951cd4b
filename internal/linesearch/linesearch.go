// Package linesearch implements the two-dimensional filter line search of
// §4.5: a trial step size is accepted when it strictly improves either
// constraint violation or merit (relative to every point already in the
// filter, within a margin), and the filter is then updated with the new
// point while dominated entries are pruned. Grounded structurally on the
// teacher's internal/metrics.Stability accumulator (a small stateful type
// that observes samples against a threshold and reports a pass/fail
// summary) generalized from a single scalar threshold to a Pareto filter
// of (violation, merit) pairs.
package linesearch

import "math"

// Gamma is the margin by which a trial point must improve a filter entry
// to be considered non-dominated, §4.5.
const Gamma = 1e-5

// Beta is the backtracking factor tried between trial step sizes.
const Beta = 0.5

// MinStepSize is the smallest step size the search will try before giving
// up and reporting failure.
const MinStepSize = 1e-10

// Point is one (constraint_violation, merit) pair held in the filter.
type Point struct {
	Violation float64
	Merit     float64
}

// Filter holds the accepted (violation, merit) pairs of every outer
// iteration so far, §4.5.
type Filter struct {
	points []Point
}

// NewFilter returns an empty filter.
func NewFilter() *Filter {
	return &Filter{}
}

// dominates reports whether p dominates q: p is at least as good as q on
// both coordinates, and strictly better on at least one, so q can never be
// accepted once p is in the filter.
func dominates(p, q Point) bool {
	betterOrEqual := p.Violation <= q.Violation && p.Merit <= q.Merit
	strictlyBetter := p.Violation < q.Violation || p.Merit < q.Merit
	return betterOrEqual && strictlyBetter
}

// Acceptable reports whether trial is not dominated by any filter entry,
// within the margin Gamma on each coordinate — §4.5 "accept if either
// coordinate strictly improves over all filter entries within a margin γ".
func (f *Filter) Acceptable(trial Point) bool {
	for _, p := range f.points {
		if trial.Violation >= p.Violation-Gamma && trial.Merit >= p.Merit-Gamma {
			return false
		}
	}
	return true
}

// Add inserts trial into the filter and prunes every existing entry that
// trial now dominates, §4.5 "stale dominated entries are pruned".
func (f *Filter) Add(trial Point) {
	kept := f.points[:0]
	for _, p := range f.points {
		if !dominates(trial, p) {
			kept = append(kept, p)
		}
	}
	f.points = append(kept, trial)
}

// Reset empties the filter, used at the start of a new solve.
func (f *Filter) Reset() {
	f.points = nil
}

// Merit computes the log-barrier merit function of §4.5:
// merit = cost + barrier − μ·Σlog(slack).
func Merit(cost, barrier, logBarrierSum, mu float64) float64 {
	return cost + barrier - mu*logBarrierSum
}

// TrialEvaluator computes the (violation, merit) pair at step size alpha,
// without mutating any solver state — the caller evaluates a trial point
// along the Newton direction at a scaled-down step.
type TrialEvaluator func(alpha float64) Point

// Search performs the backtracking filter search of §4.5: trying
// alpha ∈ {1, β, β², ...}, accepting the first alpha whose trial point is
// filter-acceptable. maxAlpha caps the very first trial (the fraction-to-
// boundary primal step size computed independently of this search). It
// returns the accepted step size and point, or ok=false if no step size
// down to MinStepSize was accepted.
func Search(maxAlpha float64, eval TrialEvaluator, filter *Filter) (alpha float64, accepted Point, ok bool) {
	alpha = maxAlpha
	for alpha >= MinStepSize {
		trial := eval(alpha)
		if math.IsNaN(trial.Violation) || math.IsNaN(trial.Merit) {
			alpha *= Beta
			continue
		}
		if filter.Acceptable(trial) {
			filter.Add(trial)
			return alpha, trial, true
		}
		alpha *= Beta
	}
	return 0, Point{}, false
}
