package wifi

import (
	"context"
	"time"
)

// SecurityType represents the security protocol of a network.
type SecurityType int

const (
	SecurityUnknown SecurityType = iota
	SecurityOpen
	SecurityWEP
	SecurityPSK
	SecurityEnterprise
)

func (s SecurityType) String() string {
	switch s {
	case SecurityOpen:
		return "open"
	case SecurityWEP:
		return "wep"
	case SecurityPSK:
		return "psk"
	case SecurityEnterprise:
		return "enterprise"
	}
	return "unknown"
}

// Supported reports whether the orchestrator can store a credential for
// networks of this security kind. Enterprise (802.1X/EAP) networks need
// per-user identities we do not manage.
func (s SecurityType) Supported() bool {
	return s == SecurityOpen || s == SecurityWEP || s == SecurityPSK
}

// NetworkProfile is a saved configuration entry in the OS network store.
// The profile name may differ from the SSID it is associated with, and
// multiple profiles may share an SSID; uniqueness is per name only.
type NetworkProfile struct {
	Name     string
	SSID     string
	LastUsed *time.Time
	Security SecurityType
}

// ScanResult is one visible network as reported by a scan.
type ScanResult struct {
	SSID     string
	Strength uint8 // 0-100
	Security SecurityType
}

// ConnectStrategy is one mechanism for associating with a network. Adapters
// that have more than one (e.g. a D-Bus API and a legacy command-line tool)
// return them in preference order; the orchestrator tries them in sequence.
type ConnectStrategy struct {
	Name string
	Join func(ctx context.Context, ssid, password string, security SecurityType) error
}

// Adapter is the per-OS capability surface. Implementations shell out to
// native tools (or speak their native API) and parse the results into
// primitive facts; they never cache network state across calls.
type Adapter interface {
	// RadioOn reports whether the wireless radio is powered.
	RadioOn(ctx context.Context) (bool, error)
	// SetRadio powers the radio on or off and verifies the resulting state
	// by re-querying with a bounded wait before returning.
	SetRadio(ctx context.Context, on bool) error

	// Scan lists visible networks, deduplicated by SSID and ordered by
	// descending signal strength. Returns an empty list when the radio is off.
	Scan(ctx context.Context) ([]ScanResult, error)
	// ConnectedNetwork returns the currently associated SSID, or "" if none.
	ConnectedNetwork(ctx context.Context) (string, error)
	// ConnectStrategies returns the raw OS-level connect mechanisms in
	// preference order. Retry and failure classification happen in the
	// Orchestrator, not here.
	ConnectStrategies() []ConnectStrategy
	// Disconnect tears down the current association without powering off the
	// radio. Already being disconnected is success, not an error.
	Disconnect(ctx context.Context) error

	// SavedProfiles lists the OS-persisted network profiles.
	SavedProfiles(ctx context.Context) ([]NetworkProfile, error)
	// ActivateProfile connects using a saved profile's stored credentials.
	ActivateProfile(ctx context.Context, name string) error
	// RemoveProfile deletes a saved profile. A missing profile is success.
	RemoveProfile(ctx context.Context, name string) error
	// ProfilePassword returns the stored credential for a profile, or "" if
	// the store has no entry for it.
	ProfilePassword(ctx context.Context, name string) (string, error)
	// UpdateProfilePassword replaces the stored credential in place.
	UpdateProfilePassword(ctx context.Context, name, password string, security SecurityType) error

	// DNSServers returns the currently configured DNS servers.
	DNSServers(ctx context.Context) ([]string, error)
	// SetDNSServers applies an explicit server list, disabling automatic
	// (DHCP/RA) DNS. A nil list restores automatic DNS. Every entry must be a
	// valid IPv4 or IPv6 literal; on any invalid entry the whole call fails
	// before any OS command is issued.
	SetDNSServers(ctx context.Context, servers []string) error

	MACAddress(ctx context.Context) (string, error)
	IPAddress(ctx context.Context) (string, error)
	DefaultRouteInterface(ctx context.Context) (string, error)
}
