package logic

import (
	"context"
	"time"

	"github.com/sweeney/pin-blinker/internal/state"
)

// Default reporter timing.
const (
	DefaultPollInterval = 100 * time.Millisecond
	DefaultThresholdMs  = 500
)

// Reporter emits a Report whenever the logical clock has moved at least
// threshold milliseconds past the last reported value. It only reads state.
//
// Detection latency is bounded by the poll interval of Run; the emitted
// cadence is quantized by both that interval and the toggle period.
type Reporter struct {
	s           *state.Shared
	thresholdMs uint64

	lastElapsed uint64
	lastCount   uint64
}

// NewReporter creates a reporter with the report baseline at zero.
// A zero thresholdMs is raised to 1 so that a report always needs progress.
func NewReporter(s *state.Shared, thresholdMs uint64) *Reporter {
	if thresholdMs == 0 {
		thresholdMs = 1
	}
	return &Reporter{s: s, thresholdMs: thresholdMs}
}

// Poll checks the logical clock once and returns a report if one is due.
func (r *Reporter) Poll() (Report, bool) {
	elapsed := r.s.ElapsedMs()
	if elapsed-r.lastElapsed < r.thresholdMs {
		return Report{}, false
	}

	count := r.s.TransitionCount()
	rep := Report{
		ElapsedMs:       elapsed,
		PrimaryActive:   r.s.PrimaryActive(),
		SecondaryActive: r.s.SecondaryActive(),
		Transitions:     count,
		Window:          count - r.lastCount,
	}
	r.lastElapsed = elapsed
	r.lastCount = count
	return rep, true
}

// Baseline returns the elapsed value recorded at the last report.
func (r *Reporter) Baseline() uint64 {
	return r.lastElapsed
}

// Run polls every interval until ctx is cancelled, passing due reports to
// emit. Emission is best-effort; emit has no error path.
func (r *Reporter) Run(ctx context.Context, interval time.Duration, sleep Sleeper, emit func(Report)) error {
	for {
		if err := sleep(ctx, interval); err != nil {
			return nil
		}
		if rep, ok := r.Poll(); ok {
			emit(rep)
		}
	}
}
