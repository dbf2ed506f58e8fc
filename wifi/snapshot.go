package wifi

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// StateSnapshot is a point-in-time capture of network configuration, taken
// immediately before a disruptive operation so it can be reversed. It is
// consumed once by Restore and then discarded; it is not a persistent format.
type StateSnapshot struct {
	RadioOn    bool
	Network    string // "" when not associated
	DNSServers []string
	CapturedAt time.Time
}

// SnapshotManager captures and restores network state around disruptive
// operations, primarily for automated testing.
type SnapshotManager struct {
	adapter Adapter
	orch    *Orchestrator
	logger  *slog.Logger
}

// NewSnapshotManager creates a SnapshotManager. A nil logger uses
// slog.Default.
func NewSnapshotManager(adapter Adapter, logger *slog.Logger) *SnapshotManager {
	if logger == nil {
		logger = slog.Default()
	}
	return &SnapshotManager{
		adapter: adapter,
		orch:    NewOrchestrator(adapter, logger),
		logger:  logger,
	}
}

// Capture reads the current radio state, connected network, and DNS
// configuration.
func (m *SnapshotManager) Capture(ctx context.Context) (*StateSnapshot, error) {
	on, err := m.adapter.RadioOn(ctx)
	if err != nil {
		return nil, fmt.Errorf("capturing radio state: %w", err)
	}
	snap := &StateSnapshot{RadioOn: on, CapturedAt: time.Now()}
	if on {
		if snap.Network, err = m.adapter.ConnectedNetwork(ctx); err != nil {
			return nil, fmt.Errorf("capturing connected network: %w", err)
		}
	}
	if snap.DNSServers, err = m.adapter.DNSServers(ctx); err != nil {
		return nil, fmt.Errorf("capturing dns servers: %w", err)
	}
	return snap, nil
}

// Restore re-applies a snapshot. Restoration is best-effort and per-field
// independent: a failed reconnect (for example, because credential retrieval
// was denied) is logged as a warning, and DNS and radio state are still
// restored. All failures are joined and returned after every field has been
// attempted.
func (m *SnapshotManager) Restore(ctx context.Context, snap *StateSnapshot) error {
	var errs []error

	if err := m.adapter.SetRadio(ctx, snap.RadioOn); err != nil {
		m.logger.Warn("restore: radio state", "on", snap.RadioOn, "error", err)
		errs = append(errs, fmt.Errorf("restoring radio state: %w", err))
	}

	if snap.RadioOn && snap.Network != "" {
		if err := m.reconnect(ctx, snap.Network); err != nil {
			m.logger.Warn("restore: reconnect", "network", snap.Network, "error", err)
			errs = append(errs, fmt.Errorf("reconnecting to %q: %w", snap.Network, err))
		}
	}

	servers := snap.DNSServers
	if len(servers) == 0 {
		servers = nil // restore automatic DNS
	}
	if err := m.adapter.SetDNSServers(ctx, servers); err != nil {
		m.logger.Warn("restore: dns servers", "error", err)
		errs = append(errs, fmt.Errorf("restoring dns servers: %w", err))
	}

	return errors.Join(errs...)
}

// reconnect rejoins the snapshot's network, resolving a credential from the
// saved profile when one exists. On some platforms this prompts for keychain
// access.
func (m *SnapshotManager) reconnect(ctx context.Context, network string) error {
	password := ""
	profiles, err := m.adapter.SavedProfiles(ctx)
	if err == nil {
		if profile := BestProfile(profiles, network); profile != nil {
			if password, err = m.adapter.ProfilePassword(ctx, profile.Name); err != nil {
				m.logger.Warn("restore: credential lookup failed, reconnecting without password",
					"profile", profile.Name, "error", err)
				password = ""
			}
		}
	}
	_, err = m.orch.Connect(ctx, network, password)
	return err
}
