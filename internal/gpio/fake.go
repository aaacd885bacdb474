package gpio

import (
	"fmt"
	"sync"
)

// FakeChip is a test double that hands out FakeOutputs.
type FakeChip struct {
	mu sync.Mutex

	// Outputs holds every line requested so far, keyed by offset.
	Outputs map[int]*FakeOutput

	// RequestErrors makes RequestOutput fail for the given offsets.
	RequestErrors map[int]error

	// Closed tracks if Close was called.
	Closed bool
}

// NewFakeChip creates an empty FakeChip.
func NewFakeChip() *FakeChip {
	return &FakeChip{
		Outputs:       make(map[int]*FakeOutput),
		RequestErrors: make(map[int]error),
	}
}

// RequestOutput returns a new FakeOutput for offset, or the scripted error.
func (c *FakeChip) RequestOutput(offset int) (Output, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.RequestErrors[offset]; err != nil {
		return nil, err
	}
	if _, ok := c.Outputs[offset]; ok {
		return nil, fmt.Errorf("pin %d already requested", offset)
	}

	out := NewFakeOutput()
	c.Outputs[offset] = out
	return out, nil
}

// Output returns the line requested at offset, or nil.
func (c *FakeChip) Output(offset int) *FakeOutput {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.Outputs[offset]
}

// Close marks the chip as closed.
func (c *FakeChip) Close() error {
	c.mu.Lock()
	c.Closed = true
	c.mu.Unlock()
	return nil
}

// FakeOutput records every level driven onto it.
// Safe for concurrent use so tests can inspect it while a loop runs.
type FakeOutput struct {
	mu sync.Mutex

	history   []bool
	driveErr  error
	failAfter int
	closed    bool
}

// NewFakeOutput creates an inactive, never-driven FakeOutput.
func NewFakeOutput() *FakeOutput {
	return &FakeOutput{failAfter: -1}
}

// DriveActive records an active level.
func (f *FakeOutput) DriveActive() error { return f.record(true) }

// DriveInactive records an inactive level.
func (f *FakeOutput) DriveInactive() error { return f.record(false) }

func (f *FakeOutput) record(active bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.driveErr != nil && (f.failAfter < 0 || len(f.history) >= f.failAfter) {
		return f.driveErr
	}
	f.history = append(f.history, active)
	return nil
}

// FailWith makes every drive fail with err once n drives have succeeded.
// n < 0 fails immediately.
func (f *FakeOutput) FailWith(err error, n int) {
	f.mu.Lock()
	f.driveErr = err
	f.failAfter = n
	f.mu.Unlock()
}

// History returns a copy of every level driven, oldest first.
func (f *FakeOutput) History() []bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]bool(nil), f.history...)
}

// Active reports the last level driven. A never-driven line is inactive.
func (f *FakeOutput) Active() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.history) == 0 {
		return false
	}
	return f.history[len(f.history)-1]
}

// Closed reports whether Close was called.
func (f *FakeOutput) Closed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

// Close marks the line as closed.
func (f *FakeOutput) Close() error {
	f.mu.Lock()
	f.closed = true
	f.mu.Unlock()
	return nil
}
