package darwin

import (
	"testing"

	"github.com/keithrbennett/wifiwand-sub000/wifi"
)

func TestFindWifiPort(t *testing.T) {
	mockedOutput := `Hardware Port: Wi-Fi
Device: en0
Ethernet Address: a1:b2:c3:d4:e5:f6

Hardware Port: Bluetooth PAN
Device: en8
Ethernet Address: a1:b2:c3:d4:e5:f7

Hardware Port: Thunderbolt Bridge
Device: bridge0
Ethernet Address: a1:b2:c3:d4:e5:f8`

	device, service, err := findWifiPort(mockedOutput)
	if err != nil {
		t.Fatalf("findWifiPort returned an error: %v", err)
	}
	if device != "en0" {
		t.Fatalf(`findWifiPort device = %q, want "en0"`, device)
	}
	if service != "Wi-Fi" {
		t.Fatalf(`findWifiPort service = %q, want "Wi-Fi"`, service)
	}
}

func TestFindWifiPortMissing(t *testing.T) {
	mockedOutput := `Hardware Port: Ethernet
Device: en1`

	_, _, err := findWifiPort(mockedOutput)
	if err == nil {
		t.Fatal("findWifiPort should fail with no Wi-Fi port")
	}
}

func TestParseCurrentNetwork(t *testing.T) {
	output := "Current Wi-Fi Network: MyHomeNetwork\n"
	if got := parseCurrentNetwork(output); got != "MyHomeNetwork" {
		t.Errorf("parseCurrentNetwork = %q, want MyHomeNetwork", got)
	}

	output = "You are not associated with an AirPort network.\n"
	if got := parseCurrentNetwork(output); got != "" {
		t.Errorf("parseCurrentNetwork = %q, want empty", got)
	}
}

func TestJoinFailure(t *testing.T) {
	if msg := joinFailure("Failed to join network MyHomeNetwork.\n"); msg == "" {
		t.Error("joinFailure should detect a failed join")
	}
	if msg := joinFailure("Could not find network Ghost.\n"); msg == "" {
		t.Error("joinFailure should detect a missing network")
	}
	if msg := joinFailure(""); msg != "" {
		t.Errorf("joinFailure on success output = %q, want empty", msg)
	}
}

func TestParsePreferredNetworks(t *testing.T) {
	output := `Preferred networks on en0:
	MyHomeNetwork
	Coffee Shop
	Work Wi-Fi
`
	names := parsePreferredNetworks(output)
	want := []string{"MyHomeNetwork", "Coffee Shop", "Work Wi-Fi"}
	if len(names) != len(want) {
		t.Fatalf("parsePreferredNetworks returned %d names, want %d", len(names), len(want))
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("names[%d] = %q, want %q", i, names[i], want[i])
		}
	}
}

func TestParseDNSServers(t *testing.T) {
	output := "9.9.9.9\n149.112.112.112\n"
	servers := parseDNSServers(output)
	if len(servers) != 2 || servers[0] != "9.9.9.9" {
		t.Errorf("parseDNSServers = %v", servers)
	}

	output = "There aren't any DNS Servers set on Wi-Fi.\n"
	if servers := parseDNSServers(output); len(servers) != 0 {
		t.Errorf("parseDNSServers on automatic DNS = %v, want empty", servers)
	}
}

func TestParseMACAddress(t *testing.T) {
	output := "Address: A1:B2:C3:D4:E5:F6 \n(Device: en0)\n"
	if got := parseMACAddress(output); got != "a1:b2:c3:d4:e5:f6" {
		t.Errorf("parseMACAddress = %q", got)
	}
}

func TestParseRouteInterface(t *testing.T) {
	output := `   route to: default
destination: default
       mask: default
    gateway: 192.168.1.1
  interface: en0
      flags: <UP,GATEWAY,DONE,STATIC,PRCLONING,GLOBAL>
`
	if got := parseRouteInterface(output); got != "en0" {
		t.Errorf("parseRouteInterface = %q, want en0", got)
	}
}

func TestParseAirPortData(t *testing.T) {
	mockedOutput := `Wi-Fi:

      Software Versions:
          CoreWLAN: 16.0 (1657)
      Interfaces:
        en0:
          Card Type: Wi-Fi
          Status: Connected
          Current Network Information:
            MyHomeNetwork:
              PHY Mode: 802.11ac
              Channel: 36 (5GHz, 80MHz)
              Network Type: Infrastructure
              Security: WPA2 Personal
              Signal / Noise: -55 dBm / -95 dBm
              Transmit Rate: 866
          Other Local Wi-Fi Networks:
            NeighborWiFi:
              PHY Mode: 802.11n
              Channel: 6 (2GHz, 20MHz)
              Network Type: Infrastructure
              Security: WPA2 Personal
              Signal / Noise: -75 dBm / -90 dBm
            OpenCafe:
              PHY Mode: 802.11g
              Channel: 11 (2GHz, 20MHz)
              Network Type: Infrastructure
              Security: Open
        awdl0:
          MAC Address: 00:11:22:33:44:55`

	networks := parseAirPortData(mockedOutput)
	if len(networks) != 3 {
		t.Fatalf("expected 3 networks, got %d: %v", len(networks), networks)
	}

	byName := make(map[string]wifi.ScanResult)
	for _, n := range networks {
		byName[n.SSID] = n
	}

	home, ok := byName["MyHomeNetwork"]
	if !ok {
		t.Fatal("MyHomeNetwork not found in parsed networks")
	}
	if home.Strength != 90 {
		t.Errorf("MyHomeNetwork strength = %d, want 90", home.Strength)
	}
	if home.Security != wifi.SecurityPSK {
		t.Errorf("MyHomeNetwork security = %v, want PSK", home.Security)
	}

	neighbor, ok := byName["NeighborWiFi"]
	if !ok {
		t.Fatal("NeighborWiFi not found in parsed networks")
	}
	if neighbor.Strength != 50 {
		t.Errorf("NeighborWiFi strength = %d, want 50", neighbor.Strength)
	}

	cafe, ok := byName["OpenCafe"]
	if !ok {
		t.Fatal("OpenCafe not found in parsed networks")
	}
	if cafe.Security != wifi.SecurityOpen {
		t.Errorf("OpenCafe security = %v, want Open", cafe.Security)
	}
}

func TestParseSecurityType(t *testing.T) {
	cases := map[string]wifi.SecurityType{
		"WPA2 Personal":       wifi.SecurityPSK,
		"WPA3 Personal":       wifi.SecurityPSK,
		"WPA2/WPA3 Personal":  wifi.SecurityPSK,
		"WPA2 Enterprise":     wifi.SecurityEnterprise,
		"802.1X":              wifi.SecurityEnterprise,
		"WEP":                 wifi.SecurityWEP,
		"Open":                wifi.SecurityOpen,
		"None":                wifi.SecurityOpen,
		"Some Future Thing":   wifi.SecurityUnknown,
	}
	for input, want := range cases {
		if got := parseSecurityType(input); got != want {
			t.Errorf("parseSecurityType(%q) = %v, want %v", input, got, want)
		}
	}
}

func TestRssiToStrength(t *testing.T) {
	cases := map[int]uint8{
		-30:  100,
		-55:  90,
		-75:  50,
		-100: 0,
		-120: 0,
		0:    0,
	}
	for rssi, want := range cases {
		if got := rssiToStrength(rssi); got != want {
			t.Errorf("rssiToStrength(%d) = %d, want %d", rssi, got, want)
		}
	}
}
