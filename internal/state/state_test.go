package state

import (
	"errors"
	"sync"
	"testing"
)

func TestNewDefaults(t *testing.T) {
	s, err := New(DefaultPeriodMs)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	snap := s.Snapshot()
	want := Snapshot{PeriodMs: DefaultPeriodMs}
	if snap != want {
		t.Errorf("snapshot: got %+v, want %+v", snap, want)
	}
}

func TestNewRejectsOutOfRangePeriod(t *testing.T) {
	for _, ms := range []int{0, -1, MaxPeriodMs + 1} {
		if _, err := New(ms); !errors.Is(err, ErrPeriodOutOfRange) {
			t.Errorf("New(%d): got %v, want ErrPeriodOutOfRange", ms, err)
		}
	}
}

func TestSetPeriodBoundaries(t *testing.T) {
	s, _ := New(DefaultPeriodMs)

	for _, ms := range []int{MinPeriodMs, MaxPeriodMs} {
		if err := s.SetPeriod(ms); err != nil {
			t.Errorf("SetPeriod(%d): unexpected error %v", ms, err)
		}
		if got := s.PeriodMs(); got != uint32(ms) {
			t.Errorf("PeriodMs: got %d, want %d", got, ms)
		}
	}
}

func TestSetPeriodRejectKeepsOldValue(t *testing.T) {
	s, _ := New(250)

	err := s.SetPeriod(10001)
	if !errors.Is(err, ErrPeriodOutOfRange) {
		t.Fatalf("SetPeriod(10001): got %v, want ErrPeriodOutOfRange", err)
	}
	if got := s.PeriodMs(); got != 250 {
		t.Errorf("PeriodMs after rejected update: got %d, want 250", got)
	}
}

func TestClaimWriterOnce(t *testing.T) {
	s, _ := New(DefaultPeriodMs)

	w, err := s.ClaimWriter()
	if err != nil {
		t.Fatalf("first ClaimWriter: %v", err)
	}
	if w.Shared() != s {
		t.Error("writer bound to a different state")
	}

	if _, err := s.ClaimWriter(); !errors.Is(err, ErrWriterClaimed) {
		t.Errorf("second ClaimWriter: got %v, want ErrWriterClaimed", err)
	}
}

func TestWriterUpdates(t *testing.T) {
	s, _ := New(DefaultPeriodMs)
	w, _ := s.ClaimWriter()

	w.SetPrimary(true)
	if !s.PrimaryActive() {
		t.Error("PrimaryActive: got false, want true")
	}

	w.SetSecondary(true)
	if !s.SecondaryActive() {
		t.Error("SecondaryActive: got false, want true")
	}
	w.SetSecondary(false)
	if s.SecondaryActive() {
		t.Error("SecondaryActive: got true, want false")
	}

	if got := w.CountTransition(); got != 1 {
		t.Errorf("CountTransition: got %d, want 1", got)
	}
	if got := w.Advance(500); got != 500 {
		t.Errorf("Advance: got %d, want 500", got)
	}
	if got := w.Advance(250); got != 750 {
		t.Errorf("Advance: got %d, want 750", got)
	}
}

func TestSnapshotIdempotentWithoutWrites(t *testing.T) {
	s, _ := New(DefaultPeriodMs)
	w, _ := s.ClaimWriter()
	w.SetPrimary(true)
	w.CountTransition()
	w.Advance(42)

	a := s.Snapshot()
	b := s.Snapshot()
	if a != b {
		t.Errorf("snapshots differ with no writes in between: %+v vs %+v", a, b)
	}
}

// TestConcurrentReadersSeeMonotonicCounters runs one writer against several
// readers. Run with -race.
func TestConcurrentReadersSeeMonotonicCounters(t *testing.T) {
	s, _ := New(DefaultPeriodMs)
	w, _ := s.ClaimWriter()

	const cycles = 10000
	done := make(chan struct{})
	var wg sync.WaitGroup

	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			var lastElapsed, lastCount uint64
			for {
				select {
				case <-done:
					return
				default:
				}
				e := s.ElapsedMs()
				c := s.TransitionCount()
				if e < lastElapsed {
					t.Errorf("elapsed went backwards: %d -> %d", lastElapsed, e)
					return
				}
				if c < lastCount {
					t.Errorf("count went backwards: %d -> %d", lastCount, c)
					return
				}
				lastElapsed, lastCount = e, c
			}
		}()
	}

	for i := 0; i < cycles; i++ {
		w.CountTransition()
		w.Advance(1)
	}
	close(done)
	wg.Wait()

	if got := s.TransitionCount(); got != cycles {
		t.Errorf("TransitionCount: got %d, want %d", got, cycles)
	}
}
