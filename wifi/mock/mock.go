// Package mock provides an in-memory Adapter for tests and for running the
// CLI on machines without a supported wifi stack (build tag "mock").
package mock

import (
	"context"
	"fmt"
	"time"

	"github.com/keithrbennett/wifiwand-sub000/wifi"
)

var DefaultActionSleep = 200 * time.Millisecond

// Adapter is a scriptable implementation of wifi.Adapter. Zero-value error
// fields mean success; set one to make the corresponding call fail.
// Mutations records every state-changing operation, so tests can assert
// that an idempotent call issued none.
type Adapter struct {
	RadioEnabled   bool
	CurrentNetwork string
	Visible        []wifi.ScanResult
	Profiles       []wifi.NetworkProfile
	Passwords      map[string]string
	DNS            []string
	AutomaticDNS   bool

	RadioErr         error
	SetRadioErr      error
	ScanErr          error
	ConnectedErr     error
	DisconnectErr    error
	ProfilesErr      error
	ActivateErr      error
	PasswordErr      error
	UpdateErr        error
	SetDNSErr        error
	JoinErrs         map[string]error // keyed by strategy name
	RadioToggleStuck bool             // SetRadio succeeds but state never changes

	Mutations []string

	// ActionSleep emulates real-adapter latency; tests set it to 0.
	ActionSleep time.Duration
}

func ago(d time.Duration) *time.Time {
	t := time.Now().Add(-d)
	return &t
}

// New creates a mock adapter with a small population of networks, including
// a duplicate-profile SSID for selection tests.
func New() *Adapter {
	return &Adapter{
		RadioEnabled: true,
		Visible: []wifi.ScanResult{
			{SSID: "TacoBoutAGoodSignal", Strength: 99, Security: wifi.SecurityPSK},
			{SSID: "Password is password", Strength: 87, Security: wifi.SecurityPSK},
			{SSID: "I See Dead Packets", Strength: 62, Security: wifi.SecurityWEP},
			{SSID: "Unencrypted_Honeypot", Strength: 55, Security: wifi.SecurityOpen},
			{SSID: "CorpNet", Strength: 43, Security: wifi.SecurityEnterprise},
		},
		Profiles: []wifi.NetworkProfile{
			{Name: "Password is password", SSID: "Password is password", LastUsed: ago(2 * time.Hour), Security: wifi.SecurityPSK},
			{Name: "TacoBoutAGoodSignal", SSID: "TacoBoutAGoodSignal", LastUsed: ago(400 * time.Hour), Security: wifi.SecurityPSK},
		},
		Passwords: map[string]string{
			"Password is password": "password",
			"TacoBoutAGoodSignal":  "salsa",
		},
		AutomaticDNS: true,
		ActionSleep:  DefaultActionSleep,
	}
}

func (a *Adapter) sleep() {
	if a.ActionSleep > 0 {
		time.Sleep(a.ActionSleep)
	}
}

func (a *Adapter) record(format string, args ...any) {
	a.Mutations = append(a.Mutations, fmt.Sprintf(format, args...))
}

func (a *Adapter) RadioOn(context.Context) (bool, error) {
	a.sleep()
	return a.RadioEnabled, a.RadioErr
}

func (a *Adapter) SetRadio(_ context.Context, on bool) error {
	a.sleep()
	if a.SetRadioErr != nil {
		return a.SetRadioErr
	}
	a.record("set-radio %t", on)
	if a.RadioToggleStuck {
		return &wifi.RadioToggleError{On: on}
	}
	a.RadioEnabled = on
	if !on {
		a.CurrentNetwork = ""
	}
	return nil
}

func (a *Adapter) Scan(context.Context) ([]wifi.ScanResult, error) {
	a.sleep()
	if a.ScanErr != nil {
		return nil, a.ScanErr
	}
	if !a.RadioEnabled {
		return nil, nil
	}
	results := wifi.DedupeScanResults(append([]wifi.ScanResult(nil), a.Visible...))
	wifi.SortScanResults(results)
	return results, nil
}

func (a *Adapter) ConnectedNetwork(context.Context) (string, error) {
	a.sleep()
	return a.CurrentNetwork, a.ConnectedErr
}

func (a *Adapter) ConnectStrategies() []wifi.ConnectStrategy {
	return []wifi.ConnectStrategy{
		{Name: "primary", Join: a.join("primary")},
		{Name: "legacy", Join: a.join("legacy")},
	}
}

func (a *Adapter) join(name string) func(context.Context, string, string, wifi.SecurityType) error {
	return func(_ context.Context, ssid, password string, security wifi.SecurityType) error {
		a.sleep()
		a.record("join[%s] %s", name, ssid)
		if err := a.JoinErrs[name]; err != nil {
			return err
		}
		a.CurrentNetwork = ssid
		a.upsertProfile(ssid, password, security)
		return nil
	}
}

func (a *Adapter) upsertProfile(ssid, password string, security wifi.SecurityType) {
	now := time.Now()
	if a.Passwords == nil {
		a.Passwords = make(map[string]string)
	}
	a.Passwords[ssid] = password
	for i := range a.Profiles {
		if a.Profiles[i].Name == ssid {
			a.Profiles[i].LastUsed = &now
			a.Profiles[i].Security = security
			return
		}
	}
	a.Profiles = append(a.Profiles, wifi.NetworkProfile{Name: ssid, SSID: ssid, LastUsed: &now, Security: security})
}

func (a *Adapter) Disconnect(context.Context) error {
	a.sleep()
	if a.DisconnectErr != nil {
		return a.DisconnectErr
	}
	// Already disconnected is success.
	if a.CurrentNetwork != "" {
		a.record("disconnect %s", a.CurrentNetwork)
		a.CurrentNetwork = ""
	}
	return nil
}

func (a *Adapter) SavedProfiles(context.Context) ([]wifi.NetworkProfile, error) {
	a.sleep()
	if a.ProfilesErr != nil {
		return nil, a.ProfilesErr
	}
	return append([]wifi.NetworkProfile(nil), a.Profiles...), nil
}

func (a *Adapter) ActivateProfile(_ context.Context, name string) error {
	a.sleep()
	a.record("activate %s", name)
	if a.ActivateErr != nil {
		return a.ActivateErr
	}
	for i := range a.Profiles {
		if a.Profiles[i].Name == name {
			now := time.Now()
			a.Profiles[i].LastUsed = &now
			a.CurrentNetwork = a.Profiles[i].SSID
			return nil
		}
	}
	return fmt.Errorf("profile %q: %w", name, wifi.ErrNotFound)
}

func (a *Adapter) RemoveProfile(_ context.Context, name string) error {
	a.sleep()
	for i := range a.Profiles {
		if a.Profiles[i].Name == name {
			a.record("remove-profile %s", name)
			a.Profiles = append(a.Profiles[:i], a.Profiles[i+1:]...)
			delete(a.Passwords, name)
			return nil
		}
	}
	// A missing profile is success, not an error.
	return nil
}

func (a *Adapter) ProfilePassword(_ context.Context, name string) (string, error) {
	a.sleep()
	if a.PasswordErr != nil {
		return "", a.PasswordErr
	}
	return a.Passwords[name], nil
}

func (a *Adapter) UpdateProfilePassword(_ context.Context, name, password string, _ wifi.SecurityType) error {
	a.sleep()
	if a.UpdateErr != nil {
		return a.UpdateErr
	}
	a.record("update-password %s", name)
	if a.Passwords == nil {
		a.Passwords = make(map[string]string)
	}
	a.Passwords[name] = password
	return nil
}

func (a *Adapter) DNSServers(context.Context) ([]string, error) {
	a.sleep()
	return append([]string(nil), a.DNS...), nil
}

func (a *Adapter) SetDNSServers(_ context.Context, servers []string) error {
	a.sleep()
	if err := wifi.ValidateIPAddresses(servers); err != nil {
		return err
	}
	if a.SetDNSErr != nil {
		return a.SetDNSErr
	}
	if servers == nil {
		a.record("set-dns automatic")
		a.DNS = nil
		a.AutomaticDNS = true
		return nil
	}
	a.record("set-dns %v", servers)
	a.DNS = append([]string(nil), servers...)
	a.AutomaticDNS = false
	return nil
}

func (a *Adapter) MACAddress(context.Context) (string, error) {
	a.sleep()
	return "00:11:22:33:44:55", nil
}

func (a *Adapter) IPAddress(context.Context) (string, error) {
	a.sleep()
	if a.CurrentNetwork == "" {
		return "", nil
	}
	return "192.168.1.23", nil
}

func (a *Adapter) DefaultRouteInterface(context.Context) (string, error) {
	a.sleep()
	return "wlan0", nil
}
