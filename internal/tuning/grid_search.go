// Package tuning runs a brute-force parameter sweep over solver/scenario
// settings, scoring each trial and keeping the best, grounded on the
// teacher's internal/optim.GridSearch. This is an outer-loop alternative
// to internal/solver's in-solve switching-time Newton step (Scenario.
// EnableSTO) for cases that want to compare a handful of fixed event
// times rather than let the solver refine one continuously; cmd/hocp's
// tune subcommand uses it to sweep the first event time t_e.
package tuning

import (
	"context"
	"errors"
	"math"

	"github.com/san-kum/hocp/internal/scenario"
)

// ErrNoFeasibleTrial is returned by Search when every point in the grid
// failed to build or solve.
var ErrNoFeasibleTrial = errors.New("tuning: no trial in the grid evaluated successfully")

// Evaluate scores one point in the grid; lower is better. An error means
// the trial could not be built or solved and is dropped from
// consideration rather than aborting the whole search.
type Evaluate func(ctx context.Context, params map[string]float64) (float64, error)

// GridSearch enumerates the cartesian product of paramNames x ranges,
// grounded on the teacher's GridSearch (same paramNames/ranges split and
// recursive depth-first enumeration), generalized from one hardcoded
// experiment.Metrics lookup to a caller-supplied Evaluate.
type GridSearch struct {
	paramNames []string
	ranges     [][]float64
}

// NewGridSearch builds a search over paramNames, each varying across the
// values in the matching entry of ranges.
func NewGridSearch(paramNames []string, ranges [][]float64) *GridSearch {
	return &GridSearch{paramNames: paramNames, ranges: ranges}
}

// Search enumerates every point in the grid, scores it with eval, and
// returns the lowest-scoring point's parameters and score.
func (g *GridSearch) Search(ctx context.Context, eval Evaluate) (map[string]float64, float64, error) {
	best := math.Inf(1)
	var bestParams map[string]float64

	g.searchRecursive(ctx, 0, make(map[string]float64), eval, &best, &bestParams)

	if bestParams == nil {
		return nil, 0, ErrNoFeasibleTrial
	}
	return bestParams, best, nil
}

func (g *GridSearch) searchRecursive(
	ctx context.Context,
	depth int,
	current map[string]float64,
	eval Evaluate,
	best *float64,
	bestParams *map[string]float64,
) {
	if ctx.Err() != nil {
		return
	}

	if depth == len(g.paramNames) {
		val, err := eval(ctx, current)
		if err != nil {
			return
		}
		if val < *best {
			*best = val
			*bestParams = make(map[string]float64, len(current))
			for k, v := range current {
				(*bestParams)[k] = v
			}
		}
		return
	}

	paramName := g.paramNames[depth]
	for _, val := range g.ranges[depth] {
		newParams := make(map[string]float64, len(current)+1)
		for k, v := range current {
			newParams[k] = v
		}
		newParams[paramName] = val
		g.searchRecursive(ctx, depth+1, newParams, eval, best, bestParams)
	}
}

// SwitchingTimeEvaluator scores one candidate event time for a freshly
// built scenario's first contact event by the number of Newton
// iterations its solve takes to converge. Useful for comparing a small,
// fixed set of candidate event times outside of EnableSTO's continuous
// in-solve refinement. base must return a fresh *scenario.Scenario each
// call since Build mutates nothing but Events[0].Time is set in place
// here before Build runs. A solve that fails to converge scores +Inf,
// so the search never prefers it.
func SwitchingTimeEvaluator(base func() *scenario.Scenario) Evaluate {
	return func(ctx context.Context, params map[string]float64) (float64, error) {
		te, ok := params["t_e"]
		if !ok {
			return 0, errors.New("tuning: missing t_e parameter")
		}

		sc := base()
		if len(sc.Events) == 0 {
			return 0, errors.New("tuning: scenario has no contact event to refine")
		}
		sc.Events[0].Time = te

		s, _, _, _, err := sc.Build()
		if err != nil {
			return 0, err
		}

		q0, v0 := sc.InitState()
		s.InitInteriorPoint()
		result := s.Solve(q0, v0)
		if !result.Converged() {
			return math.Inf(1), nil
		}
		return float64(result.NumIter()), nil
	}
}
