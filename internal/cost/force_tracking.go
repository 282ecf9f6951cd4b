package cost

import "github.com/san-kum/hocp/internal/kkt"

// ForceTracking is the contact-force tracking term named in §1 item 1
// ("contact-force tracking"): 0.5*dt*(f-fRef)^T Wf (f-fRef), a per-contact
// reference typically set to the standing-balance share of body weight
// (mg/n_contacts per foot). Ref and Weight must be laid out the same way
// as s.F, i.e. stacked per the stage's active-contact status.
type ForceTracking struct {
	Ref    []float64
	Weight []float64
}

func (f *ForceTracking) df(s *kkt.SplitSolution) []float64 {
	n := len(s.F)
	if n == 0 {
		return nil
	}
	return diffVec(s.F, f.Ref[:n])
}

func (f *ForceTracking) EvalStage(t, dt float64, s *kkt.SplitSolution) float64 {
	if len(s.F) == 0 {
		return 0
	}
	df := f.df(s)
	return 0.5 * dt * quadraticCost(f.Weight[:len(df)], df)
}

func (f *ForceTracking) EvalStageDerivatives(t, dt float64, s *kkt.SplitSolution, residual *kkt.SplitKKTResidual) {
	if len(s.F) == 0 {
		return
	}
	df := f.df(s)
	for i := range df {
		residual.Lf.SetVec(i, residual.Lf.AtVec(i)+dt*f.Weight[i]*df[i])
	}
}

func (f *ForceTracking) EvalStageHessian(t, dt float64, s *kkt.SplitSolution, matrix *kkt.SplitKKTMatrix) {
	if len(s.F) == 0 {
		return
	}
	for i := range s.F {
		matrix.Qff.Set(i, i, matrix.Qff.At(i, i)+dt*f.Weight[i])
	}
}
