// Package state holds the block of values shared between the toggler, the
// reporter and the status surfaces.
//
// Every field is its own atomic. There is no lock and no guarantee that a
// reader sees two fields from the same toggler cycle. Each field has exactly
// one writer: the holder of the Writer returned by ClaimWriter, except for the
// period, which is written through the validated SetPeriod.
package state

import (
	"errors"
	"fmt"
	"sync/atomic"
)

// Period bounds in milliseconds.
const (
	MinPeriodMs     = 1
	MaxPeriodMs     = 10000
	DefaultPeriodMs = 500
)

var (
	// ErrPeriodOutOfRange is returned when a period outside
	// [MinPeriodMs, MaxPeriodMs] is offered. The stored period is unchanged.
	ErrPeriodOutOfRange = errors.New("period out of range")

	// ErrWriterClaimed is returned by ClaimWriter after the first call.
	ErrWriterClaimed = errors.New("state writer already claimed")
)

// Shared is the process-wide state. The zero value is not usable; call New.
type Shared struct {
	periodMs        atomic.Uint32
	primaryActive   atomic.Bool
	secondaryActive atomic.Bool
	transitionCount atomic.Uint64
	elapsedMs       atomic.Uint64

	claimed atomic.Bool
}

// Snapshot is a field-by-field read of Shared. Fields are read one at a
// time, so a snapshot can straddle a toggler cycle.
type Snapshot struct {
	PeriodMs        uint32
	PrimaryActive   bool
	SecondaryActive bool
	TransitionCount uint64
	ElapsedMs       uint64
}

// New returns a Shared with both actuators inactive, counters at zero and
// the given period.
func New(periodMs int) (*Shared, error) {
	s := &Shared{}
	if err := s.SetPeriod(periodMs); err != nil {
		return nil, err
	}
	return s, nil
}

// ValidatePeriod reports whether ms is an acceptable toggle period.
func ValidatePeriod(ms int) error {
	if ms < MinPeriodMs || ms > MaxPeriodMs {
		return fmt.Errorf("%w: %d ms (want %d..%d)", ErrPeriodOutOfRange, ms, MinPeriodMs, MaxPeriodMs)
	}
	return nil
}

// SetPeriod replaces the toggle period. Out-of-range values are rejected and
// the previous period stays in effect. The toggler picks the new value up at
// the start of its next cycle.
func (s *Shared) SetPeriod(ms int) error {
	if err := ValidatePeriod(ms); err != nil {
		return err
	}
	s.periodMs.Store(uint32(ms))
	return nil
}

// PeriodMs returns the current toggle period.
func (s *Shared) PeriodMs() uint32 { return s.periodMs.Load() }

// PrimaryActive returns the logical state of actuator A.
func (s *Shared) PrimaryActive() bool { return s.primaryActive.Load() }

// SecondaryActive returns the logical state of actuator B.
func (s *Shared) SecondaryActive() bool { return s.secondaryActive.Load() }

// TransitionCount returns the number of A-active to A-inactive transitions.
func (s *Shared) TransitionCount() uint64 { return s.transitionCount.Load() }

// ElapsedMs returns the logical clock advanced by completed toggler cycles.
func (s *Shared) ElapsedMs() uint64 { return s.elapsedMs.Load() }

// Snapshot reads every field once.
func (s *Shared) Snapshot() Snapshot {
	return Snapshot{
		ElapsedMs:       s.elapsedMs.Load(),
		PeriodMs:        s.periodMs.Load(),
		PrimaryActive:   s.primaryActive.Load(),
		SecondaryActive: s.secondaryActive.Load(),
		TransitionCount: s.transitionCount.Load(),
	}
}

// ClaimWriter hands out the only Writer for s. Later calls fail.
func (s *Shared) ClaimWriter() (*Writer, error) {
	if !s.claimed.CompareAndSwap(false, true) {
		return nil, ErrWriterClaimed
	}
	return &Writer{s: s}, nil
}

// Writer is the single writer of the actuator, counter and clock fields.
// It is not safe for concurrent use; exactly one goroutine should own it.
type Writer struct {
	s *Shared
}

// SetPrimary records actuator A's logical state.
func (w *Writer) SetPrimary(active bool) { w.s.primaryActive.Store(active) }

// SetSecondary records actuator B's logical state.
func (w *Writer) SetSecondary(active bool) { w.s.secondaryActive.Store(active) }

// CountTransition increments the transition counter and returns the new count.
func (w *Writer) CountTransition() uint64 { return w.s.transitionCount.Add(1) }

// Advance moves the logical clock forward by ms and returns the new value.
func (w *Writer) Advance(ms uint32) uint64 { return w.s.elapsedMs.Add(uint64(ms)) }

// Shared returns the state this writer belongs to.
func (w *Writer) Shared() *Shared { return w.s }
