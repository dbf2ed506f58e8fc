//go:build darwin

// Package darwin implements wifi.Adapter for macOS on top of networksetup,
// system_profiler, security, route, and ipconfig.
package darwin

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/keithrbennett/wifiwand-sub000/wifi"
)

const (
	radioVerifyAttempts = 10
	radioVerifyBackoff  = 300 * time.Millisecond

	// The airport utility is deprecated but remains the only way to drop an
	// association without powering off the radio.
	airportPath = "/System/Library/PrivateFrameworks/Apple80211.framework/Versions/Current/Resources/airport"
)

// Adapter implements wifi.Adapter for macOS. The interface name (e.g. en0)
// and network service name (e.g. Wi-Fi) are resolved once at construction
// and stored immutably, so tests can construct adapters with different
// resolved facts.
type Adapter struct {
	iface   string
	service string
	run     wifi.Runner
	logger  *slog.Logger
}

// New creates a macOS adapter, verifying required utilities and resolving
// the Wi-Fi hardware port.
func New(logger *slog.Logger) (*Adapter, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := wifi.RequireCommands("these ship with macOS; check that /usr/sbin is in PATH",
		"networksetup", "system_profiler", "security"); err != nil {
		return nil, err
	}

	a := &Adapter{run: wifi.Run, logger: logger}
	out, err := a.run(context.Background(), "networksetup", "-listallhardwareports")
	if err != nil {
		return nil, fmt.Errorf("listing hardware ports: %w", err)
	}
	iface, service, err := findWifiPort(out)
	if err != nil {
		return nil, err
	}
	a.iface = iface
	a.service = service
	return a, nil
}

func (a *Adapter) RadioOn(ctx context.Context) (bool, error) {
	out, err := a.run(ctx, "networksetup", "-getairportpower", a.iface)
	if err != nil {
		return false, err
	}
	return strings.Contains(out, ": On"), nil
}

func (a *Adapter) SetRadio(ctx context.Context, on bool) error {
	state := "off"
	if on {
		state = "on"
	}
	if _, err := a.run(ctx, "networksetup", "-setairportpower", a.iface, state); err != nil {
		return err
	}
	err := wifi.WaitFor(ctx, "wifi radio "+state, radioVerifyAttempts, radioVerifyBackoff,
		func(ctx context.Context) (bool, error) {
			got, err := a.RadioOn(ctx)
			return got == on, err
		})
	var timeout *wifi.WaitTimeoutError
	if errors.As(err, &timeout) {
		return &wifi.RadioToggleError{On: on}
	}
	return err
}

func (a *Adapter) Scan(ctx context.Context) ([]wifi.ScanResult, error) {
	on, err := a.RadioOn(ctx)
	if err != nil {
		return nil, err
	}
	if !on {
		return nil, nil
	}
	out, err := a.run(ctx, "system_profiler", "SPAirPortDataType")
	if err != nil {
		return nil, fmt.Errorf("scanning for networks: %w", err)
	}
	results := parseAirPortData(out)
	results = wifi.DedupeScanResults(results)
	wifi.SortScanResults(results)
	return results, nil
}

func (a *Adapter) ConnectedNetwork(ctx context.Context) (string, error) {
	out, err := a.run(ctx, "networksetup", "-getairportnetwork", a.iface)
	if err != nil {
		if strings.Contains(wifi.CommandOutput(err), "not associated") {
			return "", nil
		}
		return "", err
	}
	return parseCurrentNetwork(out), nil
}

func (a *Adapter) ConnectStrategies() []wifi.ConnectStrategy {
	return []wifi.ConnectStrategy{{Name: "networksetup", Join: a.joinNetwork}}
}

func (a *Adapter) joinNetwork(ctx context.Context, ssid, password string, _ wifi.SecurityType) error {
	args := []string{"-setairportnetwork", a.iface, ssid}
	if password != "" {
		args = append(args, password)
	}
	out, err := a.run(ctx, "networksetup", args...)
	if err != nil {
		return err
	}
	// networksetup exits 0 even when the join fails; failure is reported on
	// stdout instead.
	if msg := joinFailure(out); msg != "" {
		return &wifi.CommandError{Command: "networksetup -setairportnetwork", Output: msg}
	}
	return nil
}

func (a *Adapter) Disconnect(ctx context.Context) error {
	current, err := a.ConnectedNetwork(ctx)
	if err != nil {
		return err
	}
	if current == "" {
		return nil
	}
	_, err = a.run(ctx, airportPath, "-z")
	return err
}

func (a *Adapter) SavedProfiles(ctx context.Context) ([]wifi.NetworkProfile, error) {
	out, err := a.run(ctx, "networksetup", "-listpreferredwirelessnetworks", a.iface)
	if err != nil {
		return nil, err
	}
	// macOS records no last-used timestamp for preferred networks, and the
	// profile name is the SSID itself.
	var profiles []wifi.NetworkProfile
	for _, name := range parsePreferredNetworks(out) {
		profiles = append(profiles, wifi.NetworkProfile{Name: name, SSID: name})
	}
	return profiles, nil
}

func (a *Adapter) ActivateProfile(ctx context.Context, name string) error {
	// For preferred networks, networksetup pulls the stored credential from
	// the keychain itself.
	return a.joinNetwork(ctx, name, "", wifi.SecurityUnknown)
}

func (a *Adapter) RemoveProfile(ctx context.Context, name string) error {
	_, err := a.run(ctx, "networksetup", "-removepreferredwirelessnetwork", a.iface, name)
	if err != nil {
		// A missing profile is success.
		if strings.Contains(strings.ToLower(wifi.CommandOutput(err)), "not found") {
			return nil
		}
		return err
	}
	return nil
}

// Keychain exit codes for the security utility.
const (
	keychainItemNotFound   = 44
	keychainAccessDenied   = 45
	keychainUserCancelled  = 51
	keychainNonInteractive = 128
)

func (a *Adapter) ProfilePassword(ctx context.Context, name string) (string, error) {
	out, err := a.run(ctx, "security", "find-generic-password", "-D", "AirPort network password", "-wa", name)
	if err != nil {
		switch wifi.ExitCode(err) {
		case keychainItemNotFound:
			return "", nil // no entry is an empty result, not an error
		case keychainAccessDenied:
			return "", &wifi.KeychainError{Kind: wifi.KeychainAccessDenied, Detail: name}
		case keychainUserCancelled:
			return "", &wifi.KeychainError{Kind: wifi.KeychainUserCancelled, Detail: name}
		case keychainNonInteractive:
			return "", &wifi.KeychainError{Kind: wifi.KeychainNonInteractive, Detail: name}
		default:
			return "", &wifi.KeychainError{Kind: wifi.KeychainFailure, Detail: err.Error()}
		}
	}
	return strings.TrimSpace(out), nil
}

func (a *Adapter) UpdateProfilePassword(ctx context.Context, name, password string, _ wifi.SecurityType) error {
	// Delete-then-add is more reliable than add -U across keychain versions.
	_, _ = a.run(ctx, "security", "delete-generic-password", "-a", name, "-s", name)
	_, err := a.run(ctx, "security", "add-generic-password",
		"-a", name, "-s", name, "-D", "AirPort network password", "-w", password)
	return err
}

func (a *Adapter) DNSServers(ctx context.Context) ([]string, error) {
	out, err := a.run(ctx, "networksetup", "-getdnsservers", a.service)
	if err != nil {
		return nil, err
	}
	return parseDNSServers(out), nil
}

func (a *Adapter) SetDNSServers(ctx context.Context, servers []string) error {
	if err := wifi.ValidateIPAddresses(servers); err != nil {
		return err
	}
	args := []string{"-setdnsservers", a.service}
	if servers == nil {
		args = append(args, "Empty")
	} else {
		args = append(args, servers...)
	}
	_, err := a.run(ctx, "networksetup", args...)
	return err
}

func (a *Adapter) MACAddress(ctx context.Context) (string, error) {
	out, err := a.run(ctx, "networksetup", "-getmacaddress", a.iface)
	if err != nil {
		return "", err
	}
	return parseMACAddress(out), nil
}

func (a *Adapter) IPAddress(ctx context.Context) (string, error) {
	out, err := a.run(ctx, "ipconfig", "getifaddr", a.iface)
	// ipconfig exits 1 when the interface has no address.
	if err := wifi.Tolerate(err, 1); err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

func (a *Adapter) DefaultRouteInterface(ctx context.Context) (string, error) {
	out, err := a.run(ctx, "route", "-n", "get", "default")
	if err != nil {
		return "", err
	}
	return parseRouteInterface(out), nil
}
