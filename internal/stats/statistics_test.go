package stats

import (
	"math"
	"testing"
)

func TestSolverStatisticsConverged(t *testing.T) {
	s := &SolverStatistics{ExitReason: ExitConverged}
	if !s.Converged() {
		t.Error("expected Converged() true for ExitConverged")
	}

	s.ExitReason = ExitMaxIterations
	if s.Converged() {
		t.Error("expected Converged() false for ExitMaxIterations")
	}
}

func TestFinalKKTErrorEmpty(t *testing.T) {
	s := &SolverStatistics{}
	if !math.IsInf(s.FinalKKTError(), 1) {
		t.Errorf("FinalKKTError() = %f, want +Inf for no iterations", s.FinalKKTError())
	}
}

func TestFinalKKTErrorReturnsLastIteration(t *testing.T) {
	s := &SolverStatistics{Iterations: []IterationLog{
		{Iter: 0, KKTError: 1.0},
		{Iter: 1, KKTError: 0.01},
	}}
	if got := s.FinalKKTError(); got != 0.01 {
		t.Errorf("FinalKKTError() = %f, want 0.01", got)
	}
	if s.NumIter() != 2 {
		t.Errorf("NumIter() = %d, want 2", s.NumIter())
	}
}

func TestSolveErrorUnwrap(t *testing.T) {
	e := &SolveError{Iter: 3, Wrapped: ErrNumericalBreakdown}
	if e.Error() != ErrNumericalBreakdown.Error() {
		t.Errorf("Error() = %q, want %q", e.Error(), ErrNumericalBreakdown.Error())
	}
	if e.Unwrap() != ErrNumericalBreakdown {
		t.Error("expected Unwrap() to return the wrapped sentinel")
	}
}
