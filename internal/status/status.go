// Package status provides a read-only view of the daemon for the HTTP
// server and MQTT lifecycle events. Control values come straight from the
// lock-free shared state; only daemon metadata sits behind the mutex.
package status

import (
	"sync"
	"time"

	"github.com/sweeney/pin-blinker/internal/state"
)

// Config contains daemon configuration for display.
type Config struct {
	Chip        string
	PinA        int
	PinB        int
	PollMs      int64
	ThresholdMs int64
	Broker      string
	HTTPAddr    string
}

// Snapshot is a point-in-time view of daemon state.
type Snapshot struct {
	State         state.Snapshot
	StartTime     time.Time
	Now           time.Time
	MQTTConnected bool
	Config        Config
}

// Uptime returns the duration since the daemon started.
func (s Snapshot) Uptime() time.Duration {
	return s.Now.Sub(s.StartTime)
}

// Tracker combines the shared state with daemon metadata.
type Tracker struct {
	shared *state.Shared
	now    func() time.Time

	mu            sync.RWMutex
	startTime     time.Time
	config        Config
	mqttConnected bool
}

// NewTracker creates a Tracker reading from shared.
func NewTracker(shared *state.Shared, startTime time.Time, cfg Config) *Tracker {
	return &Tracker{
		shared:    shared,
		now:       time.Now,
		startTime: startTime,
		config:    cfg,
	}
}

// Shared returns the state the tracker reads from.
func (t *Tracker) Shared() *state.Shared {
	return t.shared
}

// SetMQTTConnected sets the MQTT connection status.
func (t *Tracker) SetMQTTConnected(connected bool) {
	t.mu.Lock()
	t.mqttConnected = connected
	t.mu.Unlock()
}

// Snapshot returns a copy of the current view. Now is the time of the call.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.RLock()
	s := Snapshot{
		StartTime:     t.startTime,
		MQTTConnected: t.mqttConnected,
		Config:        t.config,
	}
	t.mu.RUnlock()

	s.State = t.shared.Snapshot()
	s.Now = t.now()
	return s
}
