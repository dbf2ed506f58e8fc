// Package monitor polls wifi and internet state, detects transitions
// between consecutive snapshots, and dispatches events to sinks.
package monitor

import (
	"encoding/json"
	"time"
)

// Kind identifies what changed between two consecutive snapshots.
type Kind string

const (
	KindMonitoringStarted   Kind = "monitoring-started"
	KindRadioOn             Kind = "radio-on"
	KindRadioOff            Kind = "radio-off"
	KindConnected           Kind = "connected"
	KindDisconnected        Kind = "disconnected"
	KindInternetAvailable   Kind = "internet-available"
	KindInternetUnavailable Kind = "internet-unavailable"
)

// Snapshot is one immutable observation. InternetAvailable is true iff both
// the TCP and DNS checks succeeded.
type Snapshot struct {
	RadioOn           bool
	Network           string // "" when not associated
	TCPReachable      bool
	DNSResolves       bool
	InternetAvailable bool
	Time              time.Time
}

// Event describes one detected transition. Events are created only when a
// monitored field changed; identical consecutive snapshots produce none.
type Event struct {
	Kind     Kind
	Time     time.Time
	Details  string
	Previous *Snapshot // nil for the synthetic first event
	Current  Snapshot
}

// stateJSON is the hook schema's state object.
type stateJSON struct {
	RadioOn  bool    `json:"radio_on"`
	Network  *string `json:"network"`
	Internet bool    `json:"internet"`
}

func snapshotState(s Snapshot) stateJSON {
	st := stateJSON{RadioOn: s.RadioOn, Internet: s.InternetAvailable}
	if s.Network != "" {
		st.Network = &s.Network
	}
	return st
}

// MarshalJSON serializes the event in the hook schema: one JSON object with
// type, ISO-8601 timestamp, details, and previous/current state objects.
func (e Event) MarshalJSON() ([]byte, error) {
	prev := e.Current
	if e.Previous != nil {
		prev = *e.Previous
	}
	return json.Marshal(struct {
		Type      string    `json:"type"`
		Timestamp string    `json:"timestamp"`
		Details   string    `json:"details"`
		Previous  stateJSON `json:"previous_state"`
		Current   stateJSON `json:"current_state"`
	}{
		Type:      string(e.Kind),
		Timestamp: e.Time.Format(time.RFC3339),
		Details:   e.Details,
		Previous:  snapshotState(prev),
		Current:   snapshotState(e.Current),
	})
}
