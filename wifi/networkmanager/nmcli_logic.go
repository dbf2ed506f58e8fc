// Package networkmanager implements wifi.Adapter for Linux systems running
// NetworkManager. The preferred mechanism is the D-Bus API; every operation
// falls back to the nmcli command-line tool, which also serves as the legacy
// connect path.
package networkmanager

import (
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/keithrbennett/wifiwand-sub000/wifi"
)

// splitTerse splits one line of `nmcli --terse` output into at most n
// fields, honoring nmcli's escaping of ':' and '\' inside values.
func splitTerse(line string, n int) []string {
	var fields []string
	var b strings.Builder
	escaped := false
	for _, r := range line {
		switch {
		case escaped:
			b.WriteRune(r)
			escaped = false
		case r == '\\':
			escaped = true
		case r == ':' && len(fields) < n-1:
			fields = append(fields, b.String())
			b.Reset()
		default:
			b.WriteRune(r)
		}
	}
	fields = append(fields, b.String())
	return fields
}

// parseSecurityWord maps an nmcli SECURITY column value onto a security
// kind. nmcli prints flags like "WPA2", "WPA1 WPA2", "WPA2 802.1X", "WEP",
// or "--" for open networks.
func parseSecurityWord(s string) wifi.SecurityType {
	s = strings.ToUpper(strings.TrimSpace(s))
	switch {
	case strings.Contains(s, "802.1X") || strings.Contains(s, "EAP"):
		return wifi.SecurityEnterprise
	case strings.Contains(s, "WPA") || strings.Contains(s, "SAE"):
		return wifi.SecurityPSK
	case strings.Contains(s, "WEP"):
		return wifi.SecurityWEP
	case s == "" || s == "--":
		return wifi.SecurityOpen
	}
	return wifi.SecurityUnknown
}

// keyMgmtSecurity maps a profile's 802-11-wireless-security.key-mgmt value
// onto a security kind. An absent key-mgmt means an open network; "none" is
// NetworkManager's spelling for static WEP.
func keyMgmtSecurity(keyMgmt string) wifi.SecurityType {
	switch strings.ToLower(strings.TrimSpace(keyMgmt)) {
	case "":
		return wifi.SecurityOpen
	case "none":
		return wifi.SecurityWEP
	case "wpa-psk", "sae", "wpa-psk-sha256":
		return wifi.SecurityPSK
	case "wpa-eap", "ieee8021x", "wpa-eap-suite-b-192":
		return wifi.SecurityEnterprise
	}
	return wifi.SecurityUnknown
}

// parseWifiList parses `nmcli -t -f SSID,SIGNAL,SECURITY device wifi list`.
// Hidden networks show up with an empty SSID and are skipped.
func parseWifiList(output string) []wifi.ScanResult {
	var results []wifi.ScanResult
	for _, line := range strings.Split(output, "\n") {
		if line = strings.TrimSpace(line); line == "" {
			continue
		}
		fields := splitTerse(line, 3)
		if len(fields) != 3 || fields[0] == "" {
			continue
		}
		signal, _ := strconv.Atoi(fields[1])
		if signal < 0 {
			signal = 0
		} else if signal > 100 {
			signal = 100
		}
		results = append(results, wifi.ScanResult{
			SSID:     fields[0],
			Strength: uint8(signal),
			Security: parseSecurityWord(fields[2]),
		})
	}
	return results
}

// parseActiveSSID parses `nmcli -t -f ACTIVE,SSID device wifi` and returns
// the SSID of the active entry, or "".
func parseActiveSSID(output string) string {
	for _, line := range strings.Split(output, "\n") {
		fields := splitTerse(strings.TrimSpace(line), 2)
		if len(fields) == 2 && strings.EqualFold(fields[0], "yes") {
			return fields[1]
		}
	}
	return ""
}

// profileRow is one line of `nmcli -t -f NAME,TYPE,TIMESTAMP connection show`.
type profileRow struct {
	name     string
	connType string
	lastUsed *time.Time
}

func parseConnectionList(output string) []profileRow {
	var rows []profileRow
	for _, line := range strings.Split(output, "\n") {
		if line = strings.TrimSpace(line); line == "" {
			continue
		}
		fields := splitTerse(line, 3)
		if len(fields) != 3 {
			continue
		}
		row := profileRow{name: fields[0], connType: fields[1]}
		if ts, err := strconv.ParseInt(fields[2], 10, 64); err == nil && ts > 0 {
			t := time.Unix(ts, 0)
			row.lastUsed = &t
		}
		rows = append(rows, row)
	}
	return rows
}

// parseDeviceShowDNS extracts DNS servers from `nmcli -t -f IP4.DNS,IP6.DNS
// device show`, whose lines look like "IP4.DNS[1]:192.0.2.1".
func parseDeviceShowDNS(output string) []string {
	var servers []string
	for _, line := range strings.Split(output, "\n") {
		fields := splitTerse(strings.TrimSpace(line), 2)
		if len(fields) == 2 && strings.Contains(fields[0], ".DNS") && fields[1] != "" {
			servers = append(servers, fields[1])
		}
	}
	return servers
}

// parseDeviceShowValue returns the value of the single requested terse field
// from `nmcli -t -f <field> device show`, e.g. the active connection name
// from GENERAL.CONNECTION.
func parseDeviceShowValue(output string) string {
	for _, line := range strings.Split(output, "\n") {
		fields := splitTerse(strings.TrimSpace(line), 2)
		if len(fields) == 2 && fields[1] != "" && fields[1] != "--" {
			return fields[1]
		}
	}
	return ""
}

// parseWifiDevice finds the first wifi entry in
// `nmcli -t -f DEVICE,TYPE device status`.
func parseWifiDevice(output string) string {
	for _, line := range strings.Split(output, "\n") {
		fields := splitTerse(strings.TrimSpace(line), 2)
		if len(fields) == 2 && fields[1] == "wifi" {
			return fields[0]
		}
	}
	return ""
}

// parseFirstValue returns the first non-empty line, for single-value `-g`
// queries.
func parseFirstValue(output string) string {
	for _, line := range strings.Split(output, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			return line
		}
	}
	return ""
}

func containsWord(output, word string) bool {
	for _, f := range strings.Fields(output) {
		if strings.EqualFold(f, word) {
			return true
		}
	}
	return false
}

// splitByFamily partitions validated IP literals into IPv4 and IPv6 groups,
// preserving order within each.
func splitByFamily(servers []string) (v4, v6 []string) {
	for _, s := range servers {
		if ip := net.ParseIP(s); ip != nil && ip.To4() == nil {
			v6 = append(v6, s)
		} else {
			v4 = append(v4, s)
		}
	}
	return v4, v6
}

func joinComma(values []string) string {
	return strings.Join(values, ",")
}
