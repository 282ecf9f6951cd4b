package riccati

import (
	"math"
	"testing"

	"github.com/san-kum/hocp/internal/kkt"
)

func buildTwoStageProblem(nv, nu int, dt float64) ([]*kkt.SplitKKTMatrix, []*kkt.SplitKKTResidual) {
	m0 := kkt.NewSplitKKTMatrix(nv, nv, nu)
	for i := 0; i < nv; i++ {
		m0.Fxx.Set(i, i, 1)
		m0.Fxx.Set(i, nv+i, dt)
		m0.Fxx.Set(nv+i, nv+i, 1)
		m0.Qxx.Set(i, i, 1)
		m0.Qxx.Set(nv+i, nv+i, 1)
	}
	for j := 0; j < nu; j++ {
		m0.Fvu.Set(j, j, dt)
		m0.Quu.Set(j, j, 1)
	}

	mN := kkt.NewSplitKKTMatrix(nv, nv, nu)
	for i := 0; i < nv; i++ {
		mN.Qxx.Set(i, i, 1)
		mN.Qxx.Set(nv+i, nv+i, 1)
	}

	r0 := kkt.NewSplitKKTResidual(nv, nu)
	rN := kkt.NewSplitKKTResidual(nv, nu)
	return []*kkt.SplitKKTMatrix{m0, mN}, []*kkt.SplitKKTResidual{r0, rN}
}

func TestBackwardForwardZeroResidualGivesZeroDirection(t *testing.T) {
	matrices, residuals := buildTwoStageProblem(1, 1, 0.1)

	rec, err := Backward(matrices, residuals, 1, 1)
	if err != nil {
		t.Fatalf("Backward: %v", err)
	}
	directions := rec.Forward(matrices, residuals)

	if len(directions) != 2 {
		t.Fatalf("expected 2 stage directions, got %d", len(directions))
	}
	for i, d := range directions {
		for _, v := range d.Dq {
			if math.Abs(v) > 1e-12 {
				t.Errorf("stage %d: dq = %v, want 0", i, v)
			}
		}
		for _, v := range d.Dv {
			if math.Abs(v) > 1e-12 {
				t.Errorf("stage %d: dv = %v, want 0", i, v)
			}
		}
	}
}

func TestBackwardRegularizesSingularQuu(t *testing.T) {
	matrices, residuals := buildTwoStageProblem(1, 1, 0.1)
	matrices[0].Quu.Set(0, 0, 0)
	matrices[0].Fvu.Set(0, 0, 0)

	if _, err := Backward(matrices, residuals, 1, 1); err != nil {
		t.Fatalf("expected regularization to recover from a singular Quu, got %v", err)
	}
}

func TestFactorizationPIsSymmetric(t *testing.T) {
	matrices, residuals := buildTwoStageProblem(2, 2, 0.05)
	rec, err := Backward(matrices, residuals, 2, 2)
	if err != nil {
		t.Fatalf("Backward: %v", err)
	}
	p := rec.stages[0].P
	n, _ := p.Dims()
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			if math.Abs(p.At(i, j)-p.At(j, i)) > 1e-9 {
				t.Errorf("P[%d,%d]=%f, P[%d,%d]=%f: expected symmetric cost-to-go", i, j, p.At(i, j), j, i, p.At(j, i))
			}
		}
	}
}
