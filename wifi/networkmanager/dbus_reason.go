//go:build linux

package networkmanager

import (
	"fmt"

	"github.com/godbus/dbus/v5"

	"github.com/keithrbennett/wifiwand-sub000/wifi"
)

// NM_DEVICE_STATE_REASON values relevant to failed activations.
const (
	reasonNoSecrets           = 6
	reasonSupplicantDisconn   = 7
	reasonSupplicantConfigBad = 8
	reasonSSIDNotFound        = 10
	reasonSupplicantTimeout   = 24
	reasonSecondaryConnFailed = 25
)

// activationFailure queries the wifi device's StateReason property and turns
// the reason code into an error whose text matches the wording NetworkManager
// uses on the command line, so the same failure classification applies to
// both connect paths.
func (a *Adapter) activationFailure(ssid string) error {
	reason, err := a.deviceStateReason()
	if err != nil {
		a.logger.Warn("could not read device state reason", "error", err)
		return &wifi.CommandError{Command: "NetworkManager activation", Output: "connection deactivated"}
	}

	var output string
	switch reason {
	case reasonNoSecrets, reasonSupplicantDisconn, reasonSupplicantConfigBad:
		output = "Secrets were required, but not provided"
	case reasonSSIDNotFound:
		output = fmt.Sprintf("No network with SSID %q found", ssid)
	case reasonSupplicantTimeout:
		output = "Association request to the supplicant timed out"
	case reasonSecondaryConnFailed:
		output = "A dependency of the connection failed"
	default:
		output = fmt.Sprintf("connection deactivated (device state reason %d)", reason)
	}
	return &wifi.CommandError{Command: "NetworkManager activation", Output: output}
}

// deviceStateReason reads org.freedesktop.NetworkManager.Device.StateReason,
// a (state, reason) pair, directly over the system bus.
func (a *Adapter) deviceStateReason() (uint32, error) {
	conn, err := dbus.SystemBus()
	if err != nil {
		return 0, fmt.Errorf("connecting to system bus: %w", err)
	}
	obj := conn.Object("org.freedesktop.NetworkManager", a.device.GetPath())
	variant, err := obj.GetProperty("org.freedesktop.NetworkManager.Device.StateReason")
	if err != nil {
		return 0, fmt.Errorf("reading StateReason: %w", err)
	}
	pair, ok := variant.Value().([]interface{})
	if !ok || len(pair) != 2 {
		return 0, fmt.Errorf("unexpected StateReason shape %T", variant.Value())
	}
	reason, ok := pair[1].(uint32)
	if !ok {
		return 0, fmt.Errorf("unexpected reason type %T", pair[1])
	}
	return reason, nil
}
