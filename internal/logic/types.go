// Package logic contains the toggler and reporter loops.
// This package has NO hardware or network dependencies: outputs come in as
// gpio.Output and time comes in through a Sleeper, so both loops can be
// stepped by hand in tests.
package logic

import (
	"context"
	"fmt"
	"time"
)

// State is the two-state label used in reports.
type State string

const (
	StateOn  State = "ON"
	StateOff State = "OFF"
)

// StateOf maps a logical level to its label.
func StateOf(active bool) State {
	if active {
		return StateOn
	}
	return StateOff
}

// Edge describes one A-active to A-inactive transition.
type Edge struct {
	Count           uint64 // transition count including this one
	ElapsedMs       uint64 // logical clock before the cycle advanced it
	SecondaryActive bool   // B's level after the toggle
}

// Report is one status line's worth of data.
type Report struct {
	ElapsedMs       uint64
	PrimaryActive   bool
	SecondaryActive bool
	Transitions     uint64 // cumulative
	Window          uint64 // transitions since the previous report
}

// String formats the report as a single status line.
func (r Report) String() string {
	return fmt.Sprintf("[+%5d ms] A: %-3s | B: %-3s | transitions: %d (+%d)",
		r.ElapsedMs, StateOf(r.PrimaryActive), StateOf(r.SecondaryActive), r.Transitions, r.Window)
}

// Sleeper suspends for d or until ctx is done, returning ctx.Err() in the
// latter case.
type Sleeper func(ctx context.Context, d time.Duration) error

// Sleep is the wall-clock Sleeper.
func Sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
