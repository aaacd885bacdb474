package mqtt

import (
	"sync"
	"time"

	"github.com/sweeney/pin-blinker/internal/logic"
)

// FakePublisher records published messages for test assertions.
// Safe for concurrent use.
type FakePublisher struct {
	mu sync.Mutex

	// Reports contains every status report published.
	Reports []logic.Report

	// Edges contains every transition published.
	Edges []logic.Edge

	// SystemEvents contains every system event published.
	SystemEvents []SystemEvent

	// Payloads contains the JSON of every message, in publish order.
	Payloads [][]byte

	// PublishError, if set, is returned by PublishReport and PublishEdge.
	PublishError error

	// PublishSystemError, if set, is returned by PublishSystem.
	PublishSystemError error

	// Closed tracks if Close was called.
	Closed bool

	// Connected controls the return value of IsConnected.
	Connected bool

	now func() time.Time
}

// NewFakePublisher creates a FakePublisher with a fixed clock.
func NewFakePublisher() *FakePublisher {
	t := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	return &FakePublisher{now: func() time.Time { return t }}
}

// PublishReport records the report.
func (f *FakePublisher) PublishReport(r logic.Report) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.PublishError != nil {
		return f.PublishError
	}
	payload, err := FormatReport(r, f.now())
	if err != nil {
		return err
	}
	f.Reports = append(f.Reports, r)
	f.Payloads = append(f.Payloads, payload)
	return nil
}

// PublishEdge records the transition.
func (f *FakePublisher) PublishEdge(e logic.Edge) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.PublishError != nil {
		return f.PublishError
	}
	payload, err := FormatEdge(e, f.now())
	if err != nil {
		return err
	}
	f.Edges = append(f.Edges, e)
	f.Payloads = append(f.Payloads, payload)
	return nil
}

// PublishSystem records the system event.
func (f *FakePublisher) PublishSystem(event SystemEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.PublishSystemError != nil {
		return f.PublishSystemError
	}
	payload, err := FormatSystemPayload(event)
	if err != nil {
		return err
	}
	f.SystemEvents = append(f.SystemEvents, event)
	f.Payloads = append(f.Payloads, payload)
	return nil
}

// Close marks the publisher as closed.
func (f *FakePublisher) Close() error {
	f.mu.Lock()
	f.Closed = true
	f.mu.Unlock()
	return nil
}

// IsConnected reports whether the fake publisher is "connected".
func (f *FakePublisher) IsConnected() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.Connected
}

// Counts returns how many reports, edges and system events were recorded.
func (f *FakePublisher) Counts() (reports, edges, system int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.Reports), len(f.Edges), len(f.SystemEvents)
}

// SystemEventNames returns the Event field of every recorded system event.
func (f *FakePublisher) SystemEventNames() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	names := make([]string, len(f.SystemEvents))
	for i, e := range f.SystemEvents {
		names[i] = e.Event
	}
	return names
}

// Reset clears recorded messages and scripted errors.
func (f *FakePublisher) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Reports = nil
	f.Edges = nil
	f.SystemEvents = nil
	f.Payloads = nil
	f.Closed = false
	f.PublishError = nil
	f.PublishSystemError = nil
	f.Connected = false
}
