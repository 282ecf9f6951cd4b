package stats

import "math"

// IterationLog records one Newton iteration's diagnostics, §4.6/§8 —
// printed by the CLI as a convergence plot and checked by the testable
// properties' convergence-count assertions.
type IterationLog struct {
	Iter                int
	KKTError            float64
	Cost                float64
	ConstraintViolation float64
	Barrier             float64
	Alpha               float64
	AlphaDual           float64
}

// SolverStatistics is the full record of one Solve call, surfaced to the
// caller in place of a panic for every failure mode in §7.
type SolverStatistics struct {
	ExitReason ExitReason
	Iterations []IterationLog
	Feasible   bool
}

// Converged reports whether the solve ended with the KKT tolerance
// satisfied.
func (s *SolverStatistics) Converged() bool {
	return s.ExitReason == ExitConverged
}

// NumIter returns the number of completed Newton iterations.
func (s *SolverStatistics) NumIter() int {
	return len(s.Iterations)
}

// FinalKKTError returns the KKT error of the last logged iteration, or
// +Inf if no iteration ran.
func (s *SolverStatistics) FinalKKTError() float64 {
	if len(s.Iterations) == 0 {
		return math.Inf(1)
	}
	return s.Iterations[len(s.Iterations)-1].KKTError
}
