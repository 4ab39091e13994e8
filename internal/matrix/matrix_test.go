package matrix

import (
	"math"
	"sync"
	"testing"
)

func TestMatrix_DefaultsToZero(t *testing.T) {
	m := New([]string{"a", "b", "c"})
	for _, o := range m.Zones() {
		for _, d := range m.Zones() {
			if v := m.Get(o, d); v != 0 {
				t.Errorf("Get(%s,%s) = %f, want 0 at creation", o, d, v)
			}
		}
	}
}

func TestMatrix_SetAddMultiply(t *testing.T) {
	m := New([]int{1, 2})

	m.Set(1, 2, 10)
	if got := m.Get(1, 2); got != 10 {
		t.Errorf("after Set: Get(1,2) = %f, want 10", got)
	}

	if got := m.Add(1, 2, 5); got != 15 {
		t.Errorf("Add(1,2,5) = %f, want 15", got)
	}

	if got := m.Multiply(1, 2, 2); got != 30 {
		t.Errorf("Multiply(1,2,2) = %f, want 30", got)
	}

	// No implicit symmetry: the mirror cell stays untouched.
	if got := m.Get(2, 1); got != 0 {
		t.Errorf("Get(2,1) = %f, want 0", got)
	}
}

func TestMatrix_Diagonal(t *testing.T) {
	m := New([]string{"z"})
	m.Add("z", "z", 7)
	if got := m.Get("z", "z"); got != 7 {
		t.Errorf("Get(z,z) = %f, want 7", got)
	}
}

func TestMatrix_InfinityArithmetic(t *testing.T) {
	m := New([]string{"a", "b"})
	inf := float32(math.Inf(1))

	m.Set("a", "b", inf)
	// Accumulating into a poisoned cell keeps it poisoned.
	if got := m.Add("a", "b", 123); !math.IsInf(float64(got), 1) {
		t.Errorf("Add on +Inf cell = %f, want +Inf", got)
	}
	if got := m.Multiply("a", "b", inf); !math.IsInf(float64(got), 1) {
		t.Errorf("Multiply(+Inf, +Inf) = %f, want +Inf", got)
	}
}

func TestMatrix_UnknownZonePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("Get with unknown zone should panic")
		}
	}()
	m := New([]string{"a"})
	m.Get("a", "nope")
}

// Disjoint-row concurrent writes must be safe without locking; this is
// the write discipline the skim orchestrator relies on. Run with -race.
func TestMatrix_ConcurrentDisjointRows(t *testing.T) {
	zones := make([]int, 32)
	for i := range zones {
		zones[i] = i
	}
	m := New(zones)

	var wg sync.WaitGroup
	for _, o := range zones {
		wg.Add(1)
		go func(origin int) {
			defer wg.Done()
			for _, d := range zones {
				m.Add(origin, d, float32(origin*100+d))
			}
		}(o)
	}
	wg.Wait()

	for _, o := range zones {
		for _, d := range zones {
			want := float32(o*100 + d)
			if got := m.Get(o, d); got != want {
				t.Fatalf("Get(%d,%d) = %f, want %f", o, d, got, want)
			}
		}
	}
}
