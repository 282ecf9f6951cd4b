package parallel

import (
	"sync/atomic"
	"testing"
)

func TestForVisitsEveryIndexExactlyOnce(t *testing.T) {
	const n = 37
	var counts [n]int32
	For(n, 4, func(i int) {
		atomic.AddInt32(&counts[i], 1)
	})
	for i, c := range counts {
		if c != 1 {
			t.Errorf("index %d visited %d times, want 1", i, c)
		}
	}
}

func TestForSingleWorkerRunsInline(t *testing.T) {
	sum := 0
	For(10, 1, func(i int) { sum += i })
	if sum != 45 {
		t.Errorf("sum = %d, want 45", sum)
	}
}

func TestForMoreWorkersThanItems(t *testing.T) {
	var count int32
	For(2, 8, func(i int) { atomic.AddInt32(&count, 1) })
	if count != 2 {
		t.Errorf("count = %d, want 2", count)
	}
}

func TestForZeroItemsIsNoop(t *testing.T) {
	called := false
	For(0, 4, func(i int) { called = true })
	if called {
		t.Error("expected fn not to be called for n=0")
	}
}

func TestWorkerOfStaysWithinRange(t *testing.T) {
	const n, workers = 21, 4
	for i := 0; i < n; i++ {
		w := WorkerOf(i, n, workers)
		if w < 0 || w >= workers {
			t.Errorf("WorkerOf(%d) = %d, want in [0,%d)", i, w, workers)
		}
	}
}
