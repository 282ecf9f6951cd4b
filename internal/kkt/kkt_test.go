package kkt

import (
	"testing"

	"github.com/san-kum/hocp/internal/contactstatus"
)

func activeFootStatus() *contactstatus.ContactStatus {
	cs := contactstatus.New([]string{"left", "right"}, []contactstatus.ContactType{contactstatus.PointContact, contactstatus.PointContact})
	cs.SetActive(0, true)
	return cs
}

func TestSplitKKTMatrixContactResize(t *testing.T) {
	m := NewSplitKKTMatrix(7, 6, 4)
	status := activeFootStatus()
	m.SetContactStatus(status)

	if m.Dimf() != 3 {
		t.Fatalf("expected dimf 3, got %d", m.Dimf())
	}
	r, c := m.Qff.Dims()
	if r != 3 || c != 3 {
		t.Fatalf("expected Qff 3x3, got %dx%d", r, c)
	}
}

func TestSplitKKTMatrixSetZero(t *testing.T) {
	m := NewSplitKKTMatrix(7, 6, 4)
	m.Qaa.Set(0, 0, 5)
	m.SetZero()
	if m.Qaa.At(0, 0) != 0 {
		t.Fatal("expected SetZero to clear Qaa")
	}
}

func TestSplitSolutionContactResizePreservesOverlap(t *testing.T) {
	s := NewSplitSolution(7, 6, 4)
	status := activeFootStatus()
	s.SetContactStatus(status)
	if len(s.F) != 3 {
		t.Fatalf("expected F length 3, got %d", len(s.F))
	}
	s.F[0] = 1.5

	status.SetActive(1, true)
	s.SetContactStatus(status)
	if len(s.F) != 6 {
		t.Fatalf("expected F length 6 after activating second contact, got %d", len(s.F))
	}
	if s.F[0] != 1.5 {
		t.Fatalf("expected overlapping force component preserved, got %f", s.F[0])
	}
}

func TestSplitDirectionMaxNorm(t *testing.T) {
	d := NewSplitDirection(2, 2)
	d.Dq[0] = 0.1
	d.Dv[1] = -0.7
	if got := d.MaxNorm(); got != 0.7 {
		t.Fatalf("expected max norm 0.7, got %f", got)
	}
}
