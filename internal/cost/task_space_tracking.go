package cost

import (
	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/hocp/internal/kkt"
	"github.com/san-kum/hocp/internal/manifold"
	"github.com/san-kum/hocp/internal/robot"
)

const taskSpaceFDEps = 1e-6

// TaskSpaceTracking is the task-space tracking term named in §1 item 1
// ("task-space tracking"): 0.5*dt*(p(q)-pRef)^T W (p(q)-pRef) on a single
// contact frame's world position, following the same finite-difference
// Jacobian pattern used by internal/robot's coupled-inertia partials
// (eps=1e-6, central difference in each tangent direction) since Robot
// exposes frame positions but not their analytic Jacobian.
type TaskSpaceTracking struct {
	Rob             robot.Robot
	FrameID         int
	Ref             [3]float64
	Weight          [3]float64
	HasFloatingBase bool
}

// positionAndJacobian evaluates the current frame position and its
// 3 x nv Jacobian d(p)/d(q) by central finite difference in the
// tangent space, using Robot.Integrate to perturb q and Robot.FramePosition
// to read back the resulting frame placement.
func (ts *TaskSpaceTracking) positionAndJacobian(s *kkt.SplitSolution) ([3]float64, *mat.Dense) {
	ts.Rob.UpdateKinematics(s.Q, s.V)
	p0 := ts.Rob.FramePosition(ts.FrameID)

	nv := len(s.V)
	jac := mat.NewDense(3, nv, nil)
	delta := make(manifold.Vector, nv)
	for i := 0; i < nv; i++ {
		delta[i] = taskSpaceFDEps
		qPlus := ts.Rob.Integrate(s.Q, delta, 1)
		ts.Rob.UpdateKinematics(qPlus, s.V)
		pPlus := ts.Rob.FramePosition(ts.FrameID)

		delta[i] = -taskSpaceFDEps
		qMinus := ts.Rob.Integrate(s.Q, delta, 1)
		ts.Rob.UpdateKinematics(qMinus, s.V)
		pMinus := ts.Rob.FramePosition(ts.FrameID)

		delta[i] = 0
		for k := 0; k < 3; k++ {
			jac.Set(k, i, (pPlus[k]-pMinus[k])/(2*taskSpaceFDEps))
		}
	}
	ts.Rob.UpdateKinematics(s.Q, s.V)
	return p0, jac
}

func (ts *TaskSpaceTracking) residual(p [3]float64) [3]float64 {
	return [3]float64{p[0] - ts.Ref[0], p[1] - ts.Ref[1], p[2] - ts.Ref[2]}
}

func (ts *TaskSpaceTracking) EvalStage(t, dt float64, s *kkt.SplitSolution) float64 {
	ts.Rob.UpdateKinematics(s.Q, s.V)
	e := ts.residual(ts.Rob.FramePosition(ts.FrameID))
	sum := 0.0
	for k := 0; k < 3; k++ {
		sum += ts.Weight[k] * e[k] * e[k]
	}
	return 0.5 * dt * sum
}

func (ts *TaskSpaceTracking) EvalStageDerivatives(t, dt float64, s *kkt.SplitSolution, residual *kkt.SplitKKTResidual) {
	p, jac := ts.positionAndJacobian(s)
	e := ts.residual(p)
	nv := len(s.V)
	for i := 0; i < nv; i++ {
		grad := 0.0
		for k := 0; k < 3; k++ {
			grad += jac.At(k, i) * ts.Weight[k] * e[k]
		}
		residual.Lx.SetVec(i, residual.Lx.AtVec(i)+dt*grad)
	}
}

func (ts *TaskSpaceTracking) EvalStageHessian(t, dt float64, s *kkt.SplitSolution, matrix *kkt.SplitKKTMatrix) {
	_, jac := ts.positionAndJacobian(s)
	nv := len(s.V)
	for i := 0; i < nv; i++ {
		for j := 0; j < nv; j++ {
			h := 0.0
			for k := 0; k < 3; k++ {
				h += jac.At(k, i) * ts.Weight[k] * jac.At(k, j)
			}
			matrix.Qxx.Set(i, j, matrix.Qxx.At(i, j)+dt*h)
		}
	}
}
