package monitor

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/keithrbennett/wifiwand-sub000/probe"
)

// StatusSource provides the adapter facts a snapshot needs. wifi.Adapter
// satisfies it.
type StatusSource interface {
	RadioOn(ctx context.Context) (bool, error)
	ConnectedNetwork(ctx context.Context) (string, error)
}

// Prober provides the internet-availability verdict for a snapshot.
type Prober interface {
	Probe(ctx context.Context) probe.Result
}

// Monitor takes periodic snapshots, diffs them against the previous one,
// and delivers the resulting events to every configured sink. The poll loop
// is sequential. Hook execution blocks the next tick, so a slow hook
// throttles polling instead of piling up concurrent hook processes.
type Monitor struct {
	source StatusSource
	prober Prober
	sinks  []Sink
	logger *slog.Logger

	prev *Snapshot
}

// New creates a Monitor. A nil logger uses slog.Default.
func New(source StatusSource, prober Prober, logger *slog.Logger, sinks ...Sink) *Monitor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Monitor{source: source, prober: prober, sinks: sinks, logger: logger}
}

// Run polls at the given interval until ctx is cancelled. Cancellation is
// honored between ticks only; a tick in progress always completes, so a
// connect or disconnect observed mid-tick is never left half-processed.
// The first tick runs immediately.
func (m *Monitor) Run(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		interval = 5 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		if _, err := m.Tick(ctx); err != nil {
			return err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// Tick takes one snapshot, emits events for every changed field, stores the
// snapshot as the new baseline, and returns the emitted events. Snapshot
// failures propagate and stop monitoring; sink failures other than file
// write errors are isolated inside the sinks themselves.
func (m *Monitor) Tick(ctx context.Context) ([]Event, error) {
	snap, err := m.snapshot(ctx)
	if err != nil {
		return nil, err
	}

	events := diff(m.prev, snap)
	m.prev = &snap

	for _, e := range events {
		for _, s := range m.sinks {
			if err := s.Emit(ctx, e); err != nil {
				return events, fmt.Errorf("emitting %s event: %w", e.Kind, err)
			}
		}
	}
	return events, nil
}

func (m *Monitor) snapshot(ctx context.Context) (Snapshot, error) {
	snap := Snapshot{Time: time.Now()}

	on, err := m.source.RadioOn(ctx)
	if err != nil {
		return snap, fmt.Errorf("querying radio state: %w", err)
	}
	snap.RadioOn = on
	if on {
		if snap.Network, err = m.source.ConnectedNetwork(ctx); err != nil {
			return snap, fmt.Errorf("querying connected network: %w", err)
		}
	}

	res := m.prober.Probe(ctx)
	snap.TCPReachable = res.TCPReachable
	snap.DNSResolves = res.DNSResolves
	snap.InternetAvailable = res.InternetAvailable
	return snap, nil
}

// diff emits events strictly for changed fields, in a fixed order: radio,
// network (disconnect-from-old before connect-to-new), internet. With no
// previous snapshot it produces the single synthetic monitoring-started
// event instead.
func diff(prev *Snapshot, cur Snapshot) []Event {
	if prev == nil {
		return []Event{{
			Kind:    KindMonitoringStarted,
			Time:    cur.Time,
			Details: "monitoring started: " + describe(cur),
			Current: cur,
		}}
	}

	var events []Event
	emit := func(kind Kind, details string) {
		events = append(events, Event{Kind: kind, Time: cur.Time, Details: details, Previous: prev, Current: cur})
	}

	if prev.RadioOn != cur.RadioOn {
		if cur.RadioOn {
			emit(KindRadioOn, "wifi radio turned on")
		} else {
			emit(KindRadioOff, "wifi radio turned off")
		}
	}

	if prev.Network != cur.Network {
		if prev.Network != "" {
			emit(KindDisconnected, fmt.Sprintf("disconnected from %q", prev.Network))
		}
		if cur.Network != "" {
			emit(KindConnected, fmt.Sprintf("connected to %q", cur.Network))
		}
	}

	if prev.InternetAvailable != cur.InternetAvailable {
		if cur.InternetAvailable {
			emit(KindInternetAvailable, "internet connection available")
		} else {
			emit(KindInternetUnavailable, "internet connection lost")
		}
	}

	return events
}

func describe(s Snapshot) string {
	var parts []string
	if s.RadioOn {
		parts = append(parts, "radio on")
	} else {
		parts = append(parts, "radio off")
	}
	if s.Network != "" {
		parts = append(parts, fmt.Sprintf("connected to %q", s.Network))
	} else {
		parts = append(parts, "not connected")
	}
	if s.InternetAvailable {
		parts = append(parts, "internet available")
	} else {
		parts = append(parts, "internet unavailable")
	}
	return strings.Join(parts, ", ")
}
