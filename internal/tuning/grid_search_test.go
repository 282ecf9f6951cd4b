package tuning

import (
	"context"
	"errors"
	"testing"

	"github.com/san-kum/hocp/internal/scenario"
)

func TestGridSearchFindsMinimum(t *testing.T) {
	g := NewGridSearch([]string{"x", "y"}, [][]float64{{0, 1, 2}, {0, 1, 2}})

	eval := func(ctx context.Context, params map[string]float64) (float64, error) {
		x, y := params["x"], params["y"]
		return (x-1)*(x-1) + (y-2)*(y-2), nil
	}

	best, score, err := g.Search(context.Background(), eval)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if best["x"] != 1 || best["y"] != 2 {
		t.Errorf("expected minimum at x=1,y=2, got %v", best)
	}
	if score != 0 {
		t.Errorf("expected score 0 at the minimum, got %f", score)
	}
}

func TestGridSearchSkipsFailedTrials(t *testing.T) {
	g := NewGridSearch([]string{"x"}, [][]float64{{0, 1, 2}})

	eval := func(ctx context.Context, params map[string]float64) (float64, error) {
		if params["x"] == 0 {
			return 0, errors.New("trial failed")
		}
		return params["x"], nil
	}

	best, _, err := g.Search(context.Background(), eval)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if best["x"] != 1 {
		t.Errorf("expected the lowest surviving trial x=1, got %v", best)
	}
}

func TestGridSearchNoFeasibleTrial(t *testing.T) {
	g := NewGridSearch([]string{"x"}, [][]float64{{0, 1}})

	eval := func(ctx context.Context, params map[string]float64) (float64, error) {
		return 0, errors.New("always fails")
	}

	_, _, err := g.Search(context.Background(), eval)
	if !errors.Is(err, ErrNoFeasibleTrial) {
		t.Errorf("expected ErrNoFeasibleTrial, got %v", err)
	}
}

func TestGridSearchRespectsContextCancellation(t *testing.T) {
	g := NewGridSearch([]string{"x"}, [][]float64{{0, 1, 2}})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	eval := func(ctx context.Context, params map[string]float64) (float64, error) {
		calls++
		return params["x"], nil
	}

	_, _, err := g.Search(ctx, eval)
	if !errors.Is(err, ErrNoFeasibleTrial) {
		t.Errorf("expected ErrNoFeasibleTrial after cancellation, got %v", err)
	}
	if calls != 0 {
		t.Errorf("expected no trials to run after cancellation, got %d calls", calls)
	}
}

func TestSwitchingTimeEvaluatorRequiresTParam(t *testing.T) {
	eval := SwitchingTimeEvaluator(func() *scenario.Scenario { return nil })
	if _, err := eval(context.Background(), map[string]float64{}); err == nil {
		t.Error("expected an error when t_e is missing from the trial params")
	}
}
