package status

import (
	"encoding/json"
	"time"

	"github.com/sweeney/pin-blinker/internal/logic"
)

// StatusJSON is the top-level JSON envelope for status output.
type StatusJSON struct {
	Status StatusInner `json:"status"`
}

// StatusInner contains the status details.
type StatusInner struct {
	Event         string     `json:"event,omitempty"`
	Reason        string     `json:"reason,omitempty"`
	A             string     `json:"a"`
	B             string     `json:"b"`
	Transitions   uint64     `json:"transitions"`
	ElapsedMs     uint64     `json:"elapsed_ms"`
	PeriodMs      uint32     `json:"period_ms"`
	UptimeSeconds int64      `json:"uptime_seconds"`
	StartTime     string     `json:"start_time"`
	Timestamp     string     `json:"timestamp"`
	MQTT          MQTTStatus `json:"mqtt"`
	Config        ConfigJSON `json:"config"`
}

// MQTTStatus reports MQTT connection state.
type MQTTStatus struct {
	Connected bool   `json:"connected"`
	Broker    string `json:"broker,omitempty"`
}

// ConfigJSON is the JSON representation of daemon config.
type ConfigJSON struct {
	Chip        string `json:"chip"`
	PinA        int    `json:"pin_a"`
	PinB        int    `json:"pin_b"`
	PollMs      int64  `json:"poll_ms"`
	ThresholdMs int64  `json:"report_threshold_ms"`
	HTTPAddr    string `json:"http_addr,omitempty"`
}

func buildInner(snap Snapshot) StatusInner {
	return StatusInner{
		A:             string(logic.StateOf(snap.State.PrimaryActive)),
		B:             string(logic.StateOf(snap.State.SecondaryActive)),
		Transitions:   snap.State.TransitionCount,
		ElapsedMs:     snap.State.ElapsedMs,
		PeriodMs:      snap.State.PeriodMs,
		UptimeSeconds: int64(snap.Uptime().Truncate(time.Second).Seconds()),
		StartTime:     snap.StartTime.UTC().Format(time.RFC3339),
		Timestamp:     snap.Now.UTC().Format(time.RFC3339),
		MQTT:          MQTTStatus{Connected: snap.MQTTConnected, Broker: snap.Config.Broker},
		Config: ConfigJSON{
			Chip:        snap.Config.Chip,
			PinA:        snap.Config.PinA,
			PinB:        snap.Config.PinB,
			PollMs:      snap.Config.PollMs,
			ThresholdMs: snap.Config.ThresholdMs,
			HTTPAddr:    snap.Config.HTTPAddr,
		},
	}
}

// FormatJSON returns the JSON status for the web endpoint (no event/reason).
func FormatJSON(snap Snapshot) []byte {
	data, _ := json.MarshalIndent(StatusJSON{Status: buildInner(snap)}, "", "  ")
	return data
}

// FormatStatusEvent returns the JSON status for an MQTT system event.
func FormatStatusEvent(snap Snapshot, event, reason string) []byte {
	inner := buildInner(snap)
	inner.Event = event
	inner.Reason = reason

	data, _ := json.Marshal(StatusJSON{Status: inner})
	return data
}
