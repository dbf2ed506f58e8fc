//go:build linux

package networkmanager

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Wifx/gonetworkmanager/v3"
	"github.com/google/uuid"

	"github.com/keithrbennett/wifiwand-sub000/wifi"
)

const (
	activationTimeout   = 30 * time.Second
	radioVerifyAttempts = 10
	radioVerifyBackoff  = 300 * time.Millisecond
)

// Adapter implements wifi.Adapter for Linux via NetworkManager. When the
// D-Bus connection is unavailable (no system bus, restrictive polkit), every
// operation degrades to nmcli.
type Adapter struct {
	nm       gonetworkmanager.NetworkManager // nil when D-Bus is unavailable
	settings gonetworkmanager.Settings
	device   gonetworkmanager.Device
	wireless gonetworkmanager.DeviceWireless
	iface    string
	run      wifi.Runner
	logger   *slog.Logger
}

// New creates a Linux adapter. nmcli is a hard requirement; the D-Bus API is
// preferred but optional.
func New(logger *slog.Logger) (*Adapter, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := wifi.RequireCommands("install NetworkManager, e.g. `apt install network-manager` or `dnf install NetworkManager`",
		"nmcli"); err != nil {
		return nil, err
	}

	a := &Adapter{run: wifi.Run, logger: logger}
	if err := a.initDBus(); err != nil {
		logger.Warn("NetworkManager D-Bus unavailable, using nmcli only", "error", err)
	}

	iface, err := a.resolveInterface()
	if err != nil {
		return nil, err
	}
	a.iface = iface
	return a, nil
}

func (a *Adapter) initDBus() error {
	nm, err := gonetworkmanager.NewNetworkManager()
	if err != nil {
		return fmt.Errorf("connecting to NetworkManager: %w", err)
	}
	settings, err := gonetworkmanager.NewSettings()
	if err != nil {
		return fmt.Errorf("getting settings: %w", err)
	}

	devices, err := nm.GetDevices()
	if err != nil {
		return fmt.Errorf("listing devices: %w", err)
	}
	for _, dev := range devices {
		devType, err := dev.GetPropertyDeviceType()
		if err != nil {
			continue
		}
		if devType == gonetworkmanager.NmDeviceTypeWifi {
			wireless, err := gonetworkmanager.NewDeviceWireless(dev.GetPath())
			if err != nil {
				continue
			}
			a.nm = nm
			a.settings = settings
			a.device = dev
			a.wireless = wireless
			return nil
		}
	}
	return &wifi.InterfaceError{Detail: "no wireless device registered with NetworkManager"}
}

// resolveInterface determines the wifi interface name once, at construction.
func (a *Adapter) resolveInterface() (string, error) {
	if a.device != nil {
		if iface, err := a.device.GetPropertyInterface(); err == nil && iface != "" {
			return iface, nil
		}
	}
	out, err := a.run(context.Background(), "nmcli", "-t", "-f", "DEVICE,TYPE", "device", "status")
	if err != nil {
		return "", err
	}
	if iface := parseWifiDevice(out); iface != "" {
		return iface, nil
	}
	return "", &wifi.InterfaceError{Detail: "no wifi device found"}
}

func (a *Adapter) RadioOn(ctx context.Context) (bool, error) {
	if a.nm != nil {
		return a.nm.GetPropertyWirelessEnabled()
	}
	out, err := a.run(ctx, "nmcli", "radio", "wifi")
	if err != nil {
		return false, err
	}
	return containsWord(out, "enabled"), nil
}

func (a *Adapter) SetRadio(ctx context.Context, on bool) error {
	if a.nm != nil {
		if err := a.nm.SetPropertyWirelessEnabled(on); err != nil {
			return err
		}
	} else {
		state := "off"
		if on {
			state = "on"
		}
		if _, err := a.run(ctx, "nmcli", "radio", "wifi", state); err != nil {
			return err
		}
	}
	err := wifi.WaitFor(ctx, "wifi radio toggle", radioVerifyAttempts, radioVerifyBackoff,
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

	var results []wifi.ScanResult
	if a.wireless != nil {
		results, err = a.dbusScan()
		if err != nil {
			a.logger.Warn("D-Bus scan failed, falling back to nmcli", "error", err)
		}
	}
	if results == nil {
		out, err := a.run(ctx, "nmcli", "-t", "-f", "SSID,SIGNAL,SECURITY", "device", "wifi", "list", "--rescan", "yes")
		if err != nil {
			return nil, err
		}
		results = parseWifiList(out)
	}
	results = wifi.DedupeScanResults(results)
	wifi.SortScanResults(results)
	return results, nil
}

func (a *Adapter) dbusScan() ([]wifi.ScanResult, error) {
	if err := a.wireless.RequestScan(); err != nil {
		return nil, err
	}
	aps, err := a.wireless.GetAccessPoints()
	if err != nil {
		return nil, err
	}
	var results []wifi.ScanResult
	for _, ap := range aps {
		ssid, err := ap.GetPropertySSID()
		if err != nil || ssid == "" {
			continue
		}
		strength, _ := ap.GetPropertyStrength()
		flags, _ := ap.GetPropertyFlags()
		wpaFlags, _ := ap.GetPropertyWPAFlags()
		rsnFlags, _ := ap.GetPropertyRSNFlags()
		results = append(results, wifi.ScanResult{
			SSID:     ssid,
			Strength: strength,
			Security: apSecurity(uint32(flags), uint32(wpaFlags), uint32(rsnFlags)),
		})
	}
	return results, nil
}

func apSecurity(flags, wpaFlags, rsnFlags uint32) wifi.SecurityType {
	all := wpaFlags | rsnFlags
	switch {
	case all&uint32(gonetworkmanager.Nm80211APSecKeyMgmt8021X) != 0:
		return wifi.SecurityEnterprise
	case all != 0:
		return wifi.SecurityPSK
	case flags&uint32(gonetworkmanager.Nm80211APFlagsPrivacy) != 0:
		return wifi.SecurityWEP
	}
	return wifi.SecurityOpen
}

func (a *Adapter) ConnectedNetwork(ctx context.Context) (string, error) {
	out, err := a.run(ctx, "nmcli", "-t", "-f", "ACTIVE,SSID", "device", "wifi")
	if err != nil {
		return "", err
	}
	return parseActiveSSID(out), nil
}

// ConnectStrategies returns the D-Bus mechanism first, then the legacy nmcli
// command path. Without a D-Bus connection only nmcli remains.
func (a *Adapter) ConnectStrategies() []wifi.ConnectStrategy {
	var strategies []wifi.ConnectStrategy
	if a.nm != nil {
		strategies = append(strategies, wifi.ConnectStrategy{Name: "networkmanager-dbus", Join: a.dbusJoin})
	}
	strategies = append(strategies, wifi.ConnectStrategy{Name: "nmcli", Join: a.nmcliJoin})
	return strategies
}

func (a *Adapter) dbusJoin(ctx context.Context, ssid, password string, security wifi.SecurityType) error {
	if security == wifi.SecurityEnterprise {
		return fmt.Errorf("enterprise network %q requires 802.1X configuration: %w", ssid, wifi.ErrNotSupported)
	}

	connection := map[string]map[string]interface{}{
		"connection": {
			"id":             ssid,
			"uuid":           uuid.New().String(),
			"type":           "802-11-wireless",
			"interface-name": a.iface,
			"autoconnect":    true,
		},
		"802-11-wireless": {
			"mode": "infrastructure",
			"ssid": []byte(ssid),
		},
		"ipv4": {"method": "auto"},
		"ipv6": {"method": "auto"},
	}
	if password != "" {
		connection["802-11-wireless"]["security"] = "802-11-wireless-security"
		if security == wifi.SecurityWEP {
			connection["802-11-wireless-security"] = map[string]interface{}{
				"key-mgmt": "none",
				"wep-key0": password,
			}
		} else {
			connection["802-11-wireless-security"] = map[string]interface{}{
				"key-mgmt": "wpa-psk",
				"psk":      password,
			}
		}
	}

	var active gonetworkmanager.ActiveConnection
	var err error
	if ap := a.findAccessPoint(ssid); ap != nil {
		active, err = a.nm.AddAndActivateWirelessConnection(connection, a.device, ap)
	} else {
		// Not visible in the AP list; treat as hidden.
		connection["802-11-wireless"]["hidden"] = true
		active, err = a.nm.AddAndActivateConnection(connection, a.device)
	}
	if err != nil {
		return err
	}
	return a.waitActivated(ctx, active, ssid)
}

func (a *Adapter) nmcliJoin(ctx context.Context, ssid, password string, _ wifi.SecurityType) error {
	args := []string{"device", "wifi", "connect", ssid}
	if password != "" {
		args = append(args, "password", password)
	}
	args = append(args, "ifname", a.iface)
	_, err := a.run(ctx, "nmcli", args...)
	return err
}

func (a *Adapter) findAccessPoint(ssid string) gonetworkmanager.AccessPoint {
	if a.wireless == nil {
		return nil
	}
	aps, err := a.wireless.GetAccessPoints()
	if err != nil {
		return nil
	}
	var best gonetworkmanager.AccessPoint
	var bestStrength uint8
	for _, ap := range aps {
		s, err := ap.GetPropertySSID()
		if err != nil || s != ssid {
			continue
		}
		strength, _ := ap.GetPropertyStrength()
		if best == nil || strength > bestStrength {
			best = ap
			bestStrength = strength
		}
	}
	return best
}

// waitActivated blocks until the connection is fully activated, translating
// a deactivation into the device's state reason so failures classify
// correctly upstream.
func (a *Adapter) waitActivated(ctx context.Context, active gonetworkmanager.ActiveConnection, ssid string) error {
	stateChanges := make(chan gonetworkmanager.StateChange, 1)
	done := make(chan struct{})
	defer close(done)
	if err := active.SubscribeState(stateChanges, done); err != nil {
		return err
	}

	initial, err := active.GetPropertyState()
	if err != nil {
		return err
	}
	if initial == gonetworkmanager.NmActiveConnectionStateActivated {
		return nil
	}

	for {
		select {
		case change := <-stateChanges:
			if change.State == gonetworkmanager.NmActiveConnectionStateActivated {
				return nil
			}
			if change.State == gonetworkmanager.NmActiveConnectionStateDeactivated {
				return a.activationFailure(ssid)
			}
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(activationTimeout):
			return &wifi.WaitTimeoutError{What: fmt.Sprintf("activation of %q", ssid)}
		}
	}
}

func (a *Adapter) Disconnect(ctx context.Context) error {
	current, err := a.ConnectedNetwork(ctx)
	if err != nil {
		return err
	}
	if current == "" {
		return nil
	}
	_, err = a.run(ctx, "nmcli", "device", "disconnect", a.iface)
	// nmcli exits 10 when the device is not active: already disconnected.
	return wifi.Tolerate(err, 10)
}

func (a *Adapter) SavedProfiles(ctx context.Context) ([]wifi.NetworkProfile, error) {
	if a.settings != nil {
		profiles, err := a.dbusProfiles()
		if err == nil {
			return profiles, nil
		}
		a.logger.Warn("D-Bus profile listing failed, falling back to nmcli", "error", err)
	}
	return a.nmcliProfiles(ctx)
}

func (a *Adapter) dbusProfiles() ([]wifi.NetworkProfile, error) {
	conns, err := a.settings.ListConnections()
	if err != nil {
		return nil, err
	}
	var profiles []wifi.NetworkProfile
	for _, conn := range conns {
		s, err := conn.GetSettings()
		if err != nil {
			continue
		}
		profile, ok := profileFromSettings(s)
		if ok {
			profiles = append(profiles, profile)
		}
	}
	return profiles, nil
}

// profileFromSettings converts a NetworkManager connection settings map into
// a NetworkProfile; ok is false for non-wifi connections.
func profileFromSettings(s map[string]map[string]interface{}) (wifi.NetworkProfile, bool) {
	var profile wifi.NetworkProfile

	connSection, ok := s["connection"]
	if !ok {
		return profile, false
	}
	if t, _ := connSection["type"].(string); t != "802-11-wireless" {
		return profile, false
	}
	profile.Name, _ = connSection["id"].(string)
	if ts, ok := connSection["timestamp"].(uint64); ok && ts > 0 {
		t := time.Unix(int64(ts), 0)
		profile.LastUsed = &t
	}
	if wireless, ok := s["802-11-wireless"]; ok {
		if ssidBytes, ok := wireless["ssid"].([]byte); ok {
			profile.SSID = string(ssidBytes)
		}
	}
	keyMgmt := ""
	if sec, ok := s["802-11-wireless-security"]; ok {
		keyMgmt, _ = sec["key-mgmt"].(string)
		if keyMgmt == "" {
			keyMgmt = "wpa-psk"
		}
	}
	profile.Security = keyMgmtSecurity(keyMgmt)
	return profile, profile.Name != ""
}

func (a *Adapter) nmcliProfiles(ctx context.Context) ([]wifi.NetworkProfile, error) {
	out, err := a.run(ctx, "nmcli", "-t", "-f", "NAME,TYPE,TIMESTAMP", "connection", "show")
	if err != nil {
		return nil, err
	}
	var profiles []wifi.NetworkProfile
	for _, row := range parseConnectionList(out) {
		if row.connType != "802-11-wireless" {
			continue
		}
		profile := wifi.NetworkProfile{Name: row.name, SSID: row.name, LastUsed: row.lastUsed}
		if ssidOut, err := a.run(ctx, "nmcli", "-t", "-g", "802-11-wireless.ssid", "connection", "show", row.name); err == nil {
			if ssid := parseFirstValue(ssidOut); ssid != "" {
				profile.SSID = ssid
			}
		}
		profiles = append(profiles, profile)
	}
	return profiles, nil
}

func (a *Adapter) ActivateProfile(ctx context.Context, name string) error {
	if a.nm != nil {
		if err := a.dbusActivate(ctx, name); err == nil {
			return nil
		} else {
			a.logger.Warn("D-Bus activation failed, falling back to nmcli", "profile", name, "error", err)
		}
	}
	_, err := a.run(ctx, "nmcli", "connection", "up", "id", name)
	return err
}

func (a *Adapter) dbusActivate(ctx context.Context, name string) error {
	conn, s, err := a.findConnection(name)
	if err != nil {
		return err
	}
	ssid := ""
	if wireless, ok := s["802-11-wireless"]; ok {
		if ssidBytes, ok := wireless["ssid"].([]byte); ok {
			ssid = string(ssidBytes)
		}
	}
	ap := a.findAccessPoint(ssid)
	if ap == nil {
		return fmt.Errorf("no visible access point for %q: %w", ssid, wifi.ErrNotAvailable)
	}
	active, err := a.nm.ActivateWirelessConnection(conn, a.device, ap)
	if err != nil {
		return err
	}
	return a.waitActivated(ctx, active, ssid)
}

func (a *Adapter) RemoveProfile(ctx context.Context, name string) error {
	if a.settings != nil {
		conn, _, err := a.findConnection(name)
		if err == nil {
			return conn.Delete()
		}
		if !errors.Is(err, wifi.ErrNotFound) {
			return err
		}
		// Fall through to nmcli in case the connection is only visible there.
	}
	_, err := a.run(ctx, "nmcli", "connection", "delete", "id", name)
	// nmcli exits 10 for an unknown connection: already absent.
	return wifi.Tolerate(err, 10)
}

func (a *Adapter) ProfilePassword(ctx context.Context, name string) (string, error) {
	if a.settings != nil {
		password, err := a.dbusSecret(name)
		if err == nil {
			return password, nil
		}
		if !errors.Is(err, wifi.ErrNotFound) {
			a.logger.Warn("D-Bus secret lookup failed, falling back to nmcli", "profile", name, "error", err)
		}
	}
	out, err := a.run(ctx, "nmcli", "-s", "-t", "-g", "802-11-wireless-security.psk", "connection", "show", name)
	if err != nil {
		// nmcli exits 10 for an unknown connection, printing the error on
		// combined output. No entry is an empty result, never parsed text.
		if wifi.ExitCode(err) == 10 {
			return "", nil
		}
		return "", err
	}
	return parseFirstValue(out), nil
}

func (a *Adapter) dbusSecret(name string) (string, error) {
	conn, s, err := a.findConnection(name)
	if err != nil {
		return "", err
	}
	if _, ok := s["802-11-wireless-security"]; !ok {
		return "", nil
	}
	secrets, err := conn.GetSecrets("802-11-wireless-security")
	if err != nil {
		return "", fmt.Errorf("getting secrets: %w", err)
	}
	if sec, ok := secrets["802-11-wireless-security"]; ok {
		if psk, ok := sec["psk"].(string); ok {
			return psk, nil
		}
		if wepKey, ok := sec["wep-key0"].(string); ok {
			return wepKey, nil
		}
	}
	return "", nil
}

func (a *Adapter) UpdateProfilePassword(ctx context.Context, name, password string, security wifi.SecurityType) error {
	if a.settings != nil {
		if err := a.dbusUpdateSecret(name, password, security); err == nil {
			return nil
		} else {
			a.logger.Warn("D-Bus secret update failed, falling back to nmcli", "profile", name, "error", err)
		}
	}
	field := "802-11-wireless-security.psk"
	if security == wifi.SecurityWEP {
		field = "802-11-wireless-security.wep-key0"
	}
	_, err := a.run(ctx, "nmcli", "connection", "modify", name, field, password)
	return err
}

func (a *Adapter) dbusUpdateSecret(name, password string, security wifi.SecurityType) error {
	conn, settings, err := a.findConnection(name)
	if err != nil {
		return err
	}
	if _, ok := settings["802-11-wireless-security"]; !ok {
		settings["802-11-wireless-security"] = make(map[string]interface{})
	}
	if security == wifi.SecurityWEP {
		settings["802-11-wireless-security"]["key-mgmt"] = "none"
		settings["802-11-wireless-security"]["wep-key0"] = password
	} else {
		settings["802-11-wireless-security"]["key-mgmt"] = "wpa-psk"
		settings["802-11-wireless-security"]["psk"] = password
	}
	applyUpdateWorkaround(settings)
	return conn.Update(settings)
}

// findConnection locates a saved connection by its profile name (id).
func (a *Adapter) findConnection(name string) (gonetworkmanager.Connection, map[string]map[string]interface{}, error) {
	conns, err := a.settings.ListConnections()
	if err != nil {
		return nil, nil, err
	}
	for _, conn := range conns {
		s, err := conn.GetSettings()
		if err != nil {
			continue
		}
		if connSection, ok := s["connection"]; ok {
			if id, _ := connSection["id"].(string); id == name {
				return conn, s, nil
			}
		}
	}
	return nil, nil, fmt.Errorf("profile %q: %w", name, wifi.ErrNotFound)
}

// applyUpdateWorkaround strips ipv6 addresses/routes before an Update call.
// NetworkManager returns them as 'aav' over D-Bus but expects structured
// types back, which breaks round-tripped settings. Dropping them is safe
// here because updates only touch the security section.
//
// See: https://github.com/Wifx/gonetworkmanager/issues/13
func applyUpdateWorkaround(settings map[string]map[string]interface{}) {
	if ipv6Settings, ok := settings["ipv6"]; ok {
		delete(ipv6Settings, "addresses")
		delete(ipv6Settings, "routes")
	}
}

func (a *Adapter) DNSServers(ctx context.Context) ([]string, error) {
	out, err := a.run(ctx, "nmcli", "-t", "-f", "IP4.DNS,IP6.DNS", "device", "show", a.iface)
	if err != nil {
		return nil, err
	}
	return parseDeviceShowDNS(out), nil
}

func (a *Adapter) SetDNSServers(ctx context.Context, servers []string) error {
	if err := wifi.ValidateIPAddresses(servers); err != nil {
		return err
	}

	out, err := a.run(ctx, "nmcli", "-t", "-f", "GENERAL.CONNECTION", "device", "show", a.iface)
	if err != nil {
		return err
	}
	profile := parseDeviceShowValue(out)
	if profile == "" {
		return fmt.Errorf("no active connection to configure DNS on: %w", wifi.ErrNotAvailable)
	}

	var args []string
	if servers == nil {
		args = []string{"connection", "modify", profile,
			"ipv4.ignore-auto-dns", "no", "ipv6.ignore-auto-dns", "no",
			"ipv4.dns", "", "ipv6.dns", ""}
	} else {
		v4, v6 := splitByFamily(servers)
		args = []string{"connection", "modify", profile,
			"ipv4.ignore-auto-dns", "yes", "ipv6.ignore-auto-dns", "yes",
			"ipv4.dns", joinComma(v4), "ipv6.dns", joinComma(v6)}
	}
	if _, err := a.run(ctx, "nmcli", args...); err != nil {
		return err
	}
	_, err = a.run(ctx, "nmcli", "device", "reapply", a.iface)
	return err
}
