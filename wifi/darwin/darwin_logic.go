package darwin

import (
	"bufio"
	"regexp"
	"strconv"
	"strings"

	"github.com/keithrbennett/wifiwand-sub000/wifi"
)

var (
	currentNetworkRe = regexp.MustCompile(`Current Wi-Fi Network: (.+)`)
	signalRe         = regexp.MustCompile(`Signal / Noise:\s*(-?\d+)\s*dBm`)
	securityRe       = regexp.MustCompile(`Security:\s*(.+)`)
	macRe            = regexp.MustCompile(`(?i)Address:\s*([0-9a-f:]{17})`)
)

// findWifiPort parses `networksetup -listallhardwareports` output into the
// Wi-Fi device (e.g. en0) and hardware port name (e.g. Wi-Fi). The output is
// a series of stanzas separated by blank lines.
func findWifiPort(output string) (device, service string, err error) {
	for _, stanza := range strings.Split(output, "\n\n") {
		var port, dev string
		for _, line := range strings.Split(stanza, "\n") {
			if strings.HasPrefix(line, "Hardware Port: ") {
				port = strings.TrimPrefix(line, "Hardware Port: ")
			}
			if strings.HasPrefix(line, "Device: ") {
				dev = strings.TrimPrefix(line, "Device: ")
			}
		}
		if dev != "" && (strings.Contains(port, "Wi-Fi") || strings.Contains(port, "AirPort")) {
			return dev, port, nil
		}
	}
	return "", "", &wifi.InterfaceError{Detail: "no Wi-Fi hardware port found"}
}

// parseCurrentNetwork extracts the SSID from `networksetup -getairportnetwork`.
func parseCurrentNetwork(output string) string {
	if m := currentNetworkRe.FindStringSubmatch(output); len(m) > 1 {
		return strings.TrimSpace(m[1])
	}
	return ""
}

// joinFailure returns the failure message networksetup printed on stdout for
// a failed -setairportnetwork, or "" on success. networksetup exits 0 either
// way.
func joinFailure(output string) string {
	for _, line := range strings.Split(output, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "Failed to join network") ||
			strings.HasPrefix(trimmed, "Could not find network") ||
			strings.HasPrefix(trimmed, "Error") {
			return trimmed
		}
	}
	return ""
}

// parsePreferredNetworks lists the saved network names from
// `networksetup -listpreferredwirelessnetworks`, skipping the header line.
func parsePreferredNetworks(output string) []string {
	var names []string
	scanner := bufio.NewScanner(strings.NewReader(output))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line != "" && !strings.HasPrefix(line, "Preferred networks") {
			names = append(names, line)
		}
	}
	return names
}

// parseDNSServers extracts server addresses from
// `networksetup -getdnsservers`. When automatic DNS is active the command
// prints a sentence instead of addresses.
func parseDNSServers(output string) []string {
	var servers []string
	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.Contains(line, "DNS Servers") {
			continue
		}
		servers = append(servers, line)
	}
	return servers
}

func parseMACAddress(output string) string {
	if m := macRe.FindStringSubmatch(output); len(m) > 1 {
		return strings.ToLower(m[1])
	}
	return ""
}

// parseRouteInterface extracts the interface name from
// `route -n get default`.
func parseRouteInterface(output string) string {
	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimSpace(line)
		if after, ok := strings.CutPrefix(line, "interface:"); ok {
			return strings.TrimSpace(after)
		}
	}
	return ""
}

// parseAirPortData extracts visible networks from
// `system_profiler SPAirPortDataType` output. Network names appear as
// 12-space-indented lines ending in ":" under the current/other network
// sections; their properties follow at deeper indentation.
func parseAirPortData(output string) []wifi.ScanResult {
	var results []wifi.ScanResult
	var current *wifi.ScanResult

	flush := func() {
		if current != nil && current.SSID != "" {
			results = append(results, *current)
		}
		current = nil
	}

	inNetworks := false
	scanner := bufio.NewScanner(strings.NewReader(output))
	for scanner.Scan() {
		line := scanner.Text()

		if strings.Contains(line, "Current Network Information:") ||
			strings.Contains(line, "Other Local Wi-Fi Networks:") {
			inNetworks = true
			continue
		}
		// Stop at the next interface section (e.g. awdl0).
		if strings.HasPrefix(strings.TrimSpace(line), "awdl") {
			flush()
			break
		}
		if !inNetworks {
			continue
		}

		trimmed := strings.TrimSpace(line)
		leadingSpaces := len(line) - len(strings.TrimLeft(line, " "))
		if leadingSpaces == 12 && strings.HasSuffix(trimmed, ":") && !strings.Contains(trimmed, ": ") {
			flush()
			current = &wifi.ScanResult{SSID: strings.TrimSuffix(trimmed, ":"), Security: wifi.SecurityOpen}
			continue
		}

		if current == nil {
			continue
		}
		if m := signalRe.FindStringSubmatch(line); len(m) > 1 {
			rssi, _ := strconv.Atoi(m[1])
			current.Strength = rssiToStrength(rssi)
		}
		if m := securityRe.FindStringSubmatch(line); len(m) > 1 {
			current.Security = parseSecurityType(strings.TrimSpace(m[1]))
		}
	}
	flush()
	return results
}

func parseSecurityType(s string) wifi.SecurityType {
	s = strings.ToLower(s)
	switch {
	case strings.Contains(s, "enterprise") || strings.Contains(s, "802.1x") || strings.Contains(s, "eap"):
		return wifi.SecurityEnterprise
	case strings.Contains(s, "wpa") || strings.Contains(s, "personal") || strings.Contains(s, "sae"):
		return wifi.SecurityPSK
	case strings.Contains(s, "wep"):
		return wifi.SecurityWEP
	case strings.Contains(s, "none") || strings.Contains(s, "open"):
		return wifi.SecurityOpen
	}
	return wifi.SecurityUnknown
}

func rssiToStrength(rssi int) uint8 {
	if rssi >= 0 || rssi <= -100 {
		return 0
	}
	strength := 2 * (rssi + 100)
	if strength > 100 {
		strength = 100
	}
	return uint8(strength)
}
