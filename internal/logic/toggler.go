package logic

import (
	"context"
	"fmt"
	"time"

	"github.com/sweeney/pin-blinker/internal/gpio"
	"github.com/sweeney/pin-blinker/internal/state"
)

// Toggler flips actuator A every period and toggles actuator B on each
// falling edge of A. It owns the state.Writer.
type Toggler struct {
	w     *state.Writer
	a, b  gpio.Output
	edges chan Edge
}

// NewToggler creates a toggler driving a and b. Both lines are expected to
// be inactive already, matching the zero values in state.
func NewToggler(w *state.Writer, a, b gpio.Output) *Toggler {
	return &Toggler{
		w:     w,
		a:     a,
		b:     b,
		edges: make(chan Edge, 1),
	}
}

// Edges delivers falling edges of A. The channel holds one edge; if the
// consumer is slower than the toggler, newer edges are dropped and the
// transition count in state stays authoritative.
func (t *Toggler) Edges() <-chan Edge {
	return t.edges
}

// Step runs one half-cycle: it reads the period, moves A to its other state
// with that state's side effects, and advances the logical clock by the
// period. It returns the period read so the caller can sleep for it.
// Any error from an output is fatal; state is left as it was at the failure.
func (t *Toggler) Step() (uint32, error) {
	s := t.w.Shared()
	period := s.PeriodMs()

	if !s.PrimaryActive() {
		if err := t.a.DriveActive(); err != nil {
			return period, fmt.Errorf("drive A active: %w", err)
		}
		t.w.SetPrimary(true)
	} else {
		if err := t.a.DriveInactive(); err != nil {
			return period, fmt.Errorf("drive A inactive: %w", err)
		}
		t.w.SetPrimary(false)

		// B and the count move together, and only once the line is driven.
		b := !s.SecondaryActive()
		if err := gpio.Drive(t.b, b); err != nil {
			return period, fmt.Errorf("drive B %s: %w", StateOf(b), err)
		}
		t.w.SetSecondary(b)
		count := t.w.CountTransition()

		select {
		case t.edges <- Edge{Count: count, ElapsedMs: s.ElapsedMs(), SecondaryActive: b}:
		default:
		}
	}

	t.w.Advance(period)
	return period, nil
}

// Run steps forever, sleeping for the period read at the start of each
// cycle. It returns nil when ctx is cancelled and the output error otherwise.
func (t *Toggler) Run(ctx context.Context, sleep Sleeper) error {
	for {
		period, err := t.Step()
		if err != nil {
			return err
		}
		if err := sleep(ctx, time.Duration(period)*time.Millisecond); err != nil {
			return nil
		}
	}
}
