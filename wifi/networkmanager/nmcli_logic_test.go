package networkmanager

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keithrbennett/wifiwand-sub000/wifi"
)

func TestSplitTerseHonorsEscapes(t *testing.T) {
	assert.Equal(t, []string{"yes", "Cafe: Downstairs"}, splitTerse(`yes:Cafe\: Downstairs`, 2))
	assert.Equal(t, []string{"a", "b", "c:d"}, splitTerse("a:b:c:d", 3))
	assert.Equal(t, []string{`back\slash`, "x"}, splitTerse(`back\\slash:x`, 2))
}

func TestParseWifiList(t *testing.T) {
	output := `CasaDelInternet:87:WPA2
:52:WPA2
CorpNet:61:WPA2 802.1X
FreeCoffee:45:
OldRouter:30:WEP
`
	results := parseWifiList(output)
	require.Len(t, results, 4) // hidden (empty SSID) row skipped

	assert.Equal(t, wifi.ScanResult{SSID: "CasaDelInternet", Strength: 87, Security: wifi.SecurityPSK}, results[0])
	assert.Equal(t, wifi.SecurityEnterprise, results[1].Security)
	assert.Equal(t, wifi.SecurityOpen, results[2].Security)
	assert.Equal(t, wifi.SecurityWEP, results[3].Security)
}

func TestParseActiveSSID(t *testing.T) {
	output := "no:CasaDelInternet\nyes:Cafe\\: Downstairs\nno:CorpNet\n"
	assert.Equal(t, "Cafe: Downstairs", parseActiveSSID(output))

	assert.Equal(t, "", parseActiveSSID("no:CasaDelInternet\nno:CorpNet\n"))
}

func TestParseConnectionList(t *testing.T) {
	output := `CasaDelInternet:802-11-wireless:1755900000
Wired connection 1:802-3-ethernet:1755910000
NeverUsed:802-11-wireless:0
`
	rows := parseConnectionList(output)
	require.Len(t, rows, 3)

	assert.Equal(t, "CasaDelInternet", rows[0].name)
	assert.Equal(t, "802-11-wireless", rows[0].connType)
	require.NotNil(t, rows[0].lastUsed)
	assert.Equal(t, time.Unix(1755900000, 0), *rows[0].lastUsed)

	assert.Equal(t, "802-3-ethernet", rows[1].connType)
	assert.Nil(t, rows[2].lastUsed)
}

func TestParseDeviceShowDNS(t *testing.T) {
	output := `IP4.DNS[1]:192.168.1.1
IP4.DNS[2]:9.9.9.9
IP6.DNS[1]:fd00::1
`
	assert.Equal(t, []string{"192.168.1.1", "9.9.9.9", "fd00::1"}, parseDeviceShowDNS(output))
	assert.Empty(t, parseDeviceShowDNS(""))
}

func TestParseDeviceShowValue(t *testing.T) {
	assert.Equal(t, "CasaDelInternet", parseDeviceShowValue("GENERAL.CONNECTION:CasaDelInternet\n"))
	assert.Equal(t, "", parseDeviceShowValue("GENERAL.CONNECTION:--\n"))
	assert.Equal(t, "", parseDeviceShowValue(""))
}

func TestParseWifiDevice(t *testing.T) {
	output := `lo:loopback
enp3s0:ethernet
wlp2s0:wifi
p2p-dev-wlp2s0:wifi-p2p
`
	assert.Equal(t, "wlp2s0", parseWifiDevice(output))
	assert.Equal(t, "", parseWifiDevice("lo:loopback\n"))
}

func TestParseSecurityWord(t *testing.T) {
	cases := map[string]wifi.SecurityType{
		"WPA2":         wifi.SecurityPSK,
		"WPA1 WPA2":    wifi.SecurityPSK,
		"WPA3":         wifi.SecurityPSK,
		"WPA2 802.1X":  wifi.SecurityEnterprise,
		"WEP":          wifi.SecurityWEP,
		"":             wifi.SecurityOpen,
		"--":           wifi.SecurityOpen,
		"OWE":          wifi.SecurityUnknown,
	}
	for input, want := range cases {
		assert.Equal(t, want, parseSecurityWord(input), "input %q", input)
	}
}

func TestKeyMgmtSecurity(t *testing.T) {
	cases := map[string]wifi.SecurityType{
		"":             wifi.SecurityOpen,
		"none":         wifi.SecurityWEP,
		"wpa-psk":      wifi.SecurityPSK,
		"sae":          wifi.SecurityPSK,
		"wpa-eap":      wifi.SecurityEnterprise,
		"ieee8021x":    wifi.SecurityEnterprise,
		"future-mgmt":  wifi.SecurityUnknown,
	}
	for input, want := range cases {
		assert.Equal(t, want, keyMgmtSecurity(input), "input %q", input)
	}
}

func TestSplitByFamily(t *testing.T) {
	v4, v6 := splitByFamily([]string{"1.1.1.1", "2606:4700:4700::1111", "9.9.9.9"})
	assert.Equal(t, []string{"1.1.1.1", "9.9.9.9"}, v4)
	assert.Equal(t, []string{"2606:4700:4700::1111"}, v6)
}

func TestParseFirstValue(t *testing.T) {
	assert.Equal(t, "s3cret", parseFirstValue("\ns3cret\n"))
	assert.Equal(t, "", parseFirstValue("\n\n"))
}

func TestContainsWord(t *testing.T) {
	assert.True(t, containsWord("enabled\n", "enabled"))
	assert.False(t, containsWord("disabled\n", "enabled"))
}
