// Package mqtt publishes status reports, transition events and lifecycle
// events to an MQTT broker, with an abstraction for testing.
package mqtt

import (
	"encoding/json"
	"time"

	"github.com/sweeney/pin-blinker/internal/logic"
)

// Topics.
const (
	TopicStatus = "pin-blinker/status"
	TopicEvents = "pin-blinker/events"
	TopicSystem = "pin-blinker/system"
)

// Publisher publishes to MQTT. Failures are returned to the caller, which
// logs them; they must never stop the control loops.
type Publisher interface {
	// PublishReport sends one status report.
	PublishReport(r logic.Report) error

	// PublishEdge sends one A-active to A-inactive transition.
	PublishEdge(e logic.Edge) error

	// PublishSystem sends a lifecycle event.
	PublishSystem(event SystemEvent) error

	// Close disconnects from the broker.
	Close() error
}

// ConnectionStatus reports whether the MQTT connection is active.
type ConnectionStatus interface {
	IsConnected() bool
}

// SystemEvent is a lifecycle event (STARTUP, SHUTDOWN, ONLINE, OFFLINE).
type SystemEvent struct {
	Timestamp  time.Time
	Event      string
	Reason     string // e.g. "SIGTERM", "FATAL"
	RawPayload []byte // pre-formatted payload; if set, FormatSystemPayload returns it directly
	Retained   bool
}

// ReportPayload is the JSON envelope on TopicStatus.
type ReportPayload struct {
	Report ReportInner `json:"report"`
}

// ReportInner carries one status report.
type ReportInner struct {
	Timestamp   string `json:"timestamp"`
	ElapsedMs   uint64 `json:"elapsed_ms"`
	A           string `json:"a"`
	B           string `json:"b"`
	Transitions uint64 `json:"transitions"`
	Window      uint64 `json:"window"`
}

// EdgePayload is the JSON envelope on TopicEvents.
type EdgePayload struct {
	Transition EdgeInner `json:"transition"`
}

// EdgeInner carries one transition.
type EdgeInner struct {
	Timestamp string `json:"timestamp"`
	Count     uint64 `json:"count"`
	ElapsedMs uint64 `json:"elapsed_ms"`
	B         string `json:"b"`
}

// SystemPayload is the JSON envelope on TopicSystem for events without a
// status snapshot.
type SystemPayload struct {
	System SystemPayloadInner `json:"system"`
}

// SystemPayloadInner contains the system event details.
type SystemPayloadInner struct {
	Timestamp string `json:"timestamp"`
	Event     string `json:"event"`
	Reason    string `json:"reason,omitempty"`
}

// FormatReport creates the JSON payload for a status report.
func FormatReport(r logic.Report, now time.Time) ([]byte, error) {
	return json.Marshal(ReportPayload{
		Report: ReportInner{
			Timestamp:   now.UTC().Format(time.RFC3339),
			ElapsedMs:   r.ElapsedMs,
			A:           string(logic.StateOf(r.PrimaryActive)),
			B:           string(logic.StateOf(r.SecondaryActive)),
			Transitions: r.Transitions,
			Window:      r.Window,
		},
	})
}

// FormatEdge creates the JSON payload for a transition.
func FormatEdge(e logic.Edge, now time.Time) ([]byte, error) {
	return json.Marshal(EdgePayload{
		Transition: EdgeInner{
			Timestamp: now.UTC().Format(time.RFC3339),
			Count:     e.Count,
			ElapsedMs: e.ElapsedMs,
			B:         string(logic.StateOf(e.SecondaryActive)),
		},
	})
}

// FormatSystemPayload creates the JSON payload for a system event.
// If event.RawPayload is set, it is returned directly.
func FormatSystemPayload(event SystemEvent) ([]byte, error) {
	if event.RawPayload != nil {
		return event.RawPayload, nil
	}

	return json.Marshal(SystemPayload{
		System: SystemPayloadInner{
			Timestamp: event.Timestamp.UTC().Format(time.RFC3339),
			Event:     event.Event,
			Reason:    event.Reason,
		},
	})
}
