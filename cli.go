package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/keithrbennett/wifiwand-sub000/monitor"
	"github.com/keithrbennett/wifiwand-sub000/wifi"
)

type outputFormat int

const (
	formatText outputFormat = iota
	formatJSON
	formatYAML
)

func pickFormat(jsonOut, yamlOut bool) (outputFormat, error) {
	switch {
	case jsonOut && yamlOut:
		return formatText, fmt.Errorf("-json and -yaml are mutually exclusive")
	case jsonOut:
		return formatJSON, nil
	case yamlOut:
		return formatYAML, nil
	}
	return formatText, nil
}

func encode(w io.Writer, format outputFormat, v any) error {
	switch format {
	case formatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case formatYAML:
		enc := yaml.NewEncoder(w)
		defer enc.Close()
		return enc.Encode(v)
	}
	return nil
}

type statusReport struct {
	RadioOn           bool     `json:"radio_on" yaml:"radio_on"`
	Network           string   `json:"network,omitempty" yaml:"network,omitempty"`
	IPAddress         string   `json:"ip_address,omitempty" yaml:"ip_address,omitempty"`
	MACAddress        string   `json:"mac_address,omitempty" yaml:"mac_address,omitempty"`
	DefaultInterface  string   `json:"default_interface,omitempty" yaml:"default_interface,omitempty"`
	DNSServers        []string `json:"dns_servers,omitempty" yaml:"dns_servers,omitempty"`
	TCPReachable      bool     `json:"tcp_reachable" yaml:"tcp_reachable"`
	DNSResolves       bool     `json:"dns_resolves" yaml:"dns_resolves"`
	InternetAvailable bool     `json:"internet_available" yaml:"internet_available"`
}

func runStatus(ctx context.Context, w io.Writer, format outputFormat, adapter wifi.Adapter, prober monitor.Prober) error {
	var report statusReport
	var err error

	if report.RadioOn, err = adapter.RadioOn(ctx); err != nil {
		return fmt.Errorf("querying radio state: %w", err)
	}
	if report.RadioOn {
		if report.Network, err = adapter.ConnectedNetwork(ctx); err != nil {
			return fmt.Errorf("querying connected network: %w", err)
		}
	}
	if report.IPAddress, err = adapter.IPAddress(ctx); err != nil {
		return fmt.Errorf("querying ip address: %w", err)
	}
	if report.MACAddress, err = adapter.MACAddress(ctx); err != nil {
		return fmt.Errorf("querying mac address: %w", err)
	}
	if report.DefaultInterface, err = adapter.DefaultRouteInterface(ctx); err != nil {
		// A machine without a default route still has a useful status.
		report.DefaultInterface = ""
	}
	if report.DNSServers, err = adapter.DNSServers(ctx); err != nil {
		return fmt.Errorf("querying dns servers: %w", err)
	}

	res := prober.Probe(ctx)
	report.TCPReachable = res.TCPReachable
	report.DNSResolves = res.DNSResolves
	report.InternetAvailable = res.InternetAvailable

	if format != formatText {
		return encode(w, format, report)
	}

	radio := "off"
	if report.RadioOn {
		radio = "on"
	}
	fmt.Fprintf(w, "Radio:     %s\n", radio)
	if report.Network != "" {
		fmt.Fprintf(w, "Network:   %s\n", report.Network)
	} else {
		fmt.Fprintf(w, "Network:   (not connected)\n")
	}
	if report.IPAddress != "" {
		fmt.Fprintf(w, "IP:        %s\n", report.IPAddress)
	}
	if report.MACAddress != "" {
		fmt.Fprintf(w, "MAC:       %s\n", report.MACAddress)
	}
	if report.DefaultInterface != "" {
		fmt.Fprintf(w, "Route via: %s\n", report.DefaultInterface)
	}
	if len(report.DNSServers) > 0 {
		fmt.Fprintf(w, "DNS:       %s\n", strings.Join(report.DNSServers, ", "))
	} else {
		fmt.Fprintf(w, "DNS:       (automatic)\n")
	}
	fmt.Fprintf(w, "Internet:  %s (tcp: %t, dns: %t)\n",
		availability(report.InternetAvailable), report.TCPReachable, report.DNSResolves)
	return nil
}

func availability(ok bool) string {
	if ok {
		return "available"
	}
	return "unavailable"
}

type networkEntry struct {
	SSID     string `json:"ssid" yaml:"ssid"`
	Strength uint8  `json:"strength" yaml:"strength"`
	Security string `json:"security" yaml:"security"`
}

func runNetworks(ctx context.Context, w io.Writer, format outputFormat, adapter wifi.Adapter) error {
	results, err := adapter.Scan(ctx)
	if err != nil {
		return fmt.Errorf("scanning for networks: %w", err)
	}
	entries := make([]networkEntry, 0, len(results))
	for _, r := range results {
		entries = append(entries, networkEntry{SSID: r.SSID, Strength: r.Strength, Security: r.Security.String()})
	}
	if format != formatText {
		return encode(w, format, entries)
	}
	for _, e := range entries {
		fmt.Fprintf(w, "%s\t%d%%\t%s\n", e.SSID, e.Strength, e.Security)
	}
	return nil
}

type profileEntry struct {
	Name     string     `json:"name" yaml:"name"`
	SSID     string     `json:"ssid" yaml:"ssid"`
	Security string     `json:"security" yaml:"security"`
	LastUsed *time.Time `json:"last_used,omitempty" yaml:"last_used,omitempty"`
}

func runProfiles(ctx context.Context, w io.Writer, format outputFormat, adapter wifi.Adapter) error {
	profiles, err := adapter.SavedProfiles(ctx)
	if err != nil {
		return fmt.Errorf("listing saved profiles: %w", err)
	}
	entries := make([]profileEntry, 0, len(profiles))
	for _, p := range profiles {
		entries = append(entries, profileEntry{Name: p.Name, SSID: p.SSID, Security: p.Security.String(), LastUsed: p.LastUsed})
	}
	if format != formatText {
		return encode(w, format, entries)
	}
	for _, e := range entries {
		lastUsed := "never used"
		if e.LastUsed != nil {
			lastUsed = lastUsedLabel(*e.LastUsed)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\n", e.Name, e.Security, lastUsed)
	}
	return nil
}

// lastUsedLabel renders how long ago a profile was last active.
func lastUsedLabel(t time.Time) string {
	d := time.Since(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%d minutes ago", int(d.Minutes()))
	case d < 48*time.Hour:
		return fmt.Sprintf("%.1f hours ago", d.Hours())
	default:
		return fmt.Sprintf("%.0f days ago", d.Hours()/24)
	}
}

func runRadio(ctx context.Context, w io.Writer, adapter wifi.Adapter, on bool) error {
	if err := adapter.SetRadio(ctx, on); err != nil {
		return err
	}
	state := "off"
	if on {
		state = "on"
	}
	fmt.Fprintf(w, "wifi radio is %s\n", state)
	return nil
}

func runConnect(ctx context.Context, w io.Writer, orch *wifi.Orchestrator, ssid, password string) error {
	connected, err := orch.Connect(ctx, ssid, password)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "connected to %q\n", connected)
	return nil
}

func runDisconnect(ctx context.Context, w io.Writer, orch *wifi.Orchestrator) error {
	if err := orch.Disconnect(ctx); err != nil {
		return err
	}
	fmt.Fprintln(w, "disconnected")
	return nil
}

func runForget(ctx context.Context, w io.Writer, adapter wifi.Adapter, names []string) error {
	for _, name := range names {
		if err := adapter.RemoveProfile(ctx, name); err != nil {
			return fmt.Errorf("removing profile %q: %w", name, err)
		}
		fmt.Fprintf(w, "removed profile %q\n", name)
	}
	return nil
}

func runPassword(ctx context.Context, w io.Writer, format outputFormat, adapter wifi.Adapter, name string) error {
	password, err := adapter.ProfilePassword(ctx, name)
	if err != nil {
		return err
	}
	if format != formatText {
		return encode(w, format, map[string]string{"name": name, "password": password})
	}
	if password == "" {
		fmt.Fprintf(w, "no stored password for %q\n", name)
		return nil
	}
	fmt.Fprintln(w, password)
	return nil
}

// runDNS shows the current DNS servers with no arguments, restores automatic
// DNS with "clear", and otherwise sets the given servers.
func runDNS(ctx context.Context, w io.Writer, format outputFormat, adapter wifi.Adapter, args []string) error {
	if len(args) == 0 {
		servers, err := adapter.DNSServers(ctx)
		if err != nil {
			return fmt.Errorf("querying dns servers: %w", err)
		}
		if format != formatText {
			return encode(w, format, servers)
		}
		if len(servers) == 0 {
			fmt.Fprintln(w, "(automatic)")
			return nil
		}
		for _, s := range servers {
			fmt.Fprintln(w, s)
		}
		return nil
	}

	if len(args) == 1 && args[0] == "clear" {
		if err := adapter.SetDNSServers(ctx, nil); err != nil {
			return err
		}
		fmt.Fprintln(w, "dns restored to automatic")
		return nil
	}

	if err := adapter.SetDNSServers(ctx, args); err != nil {
		return err
	}
	fmt.Fprintf(w, "dns set to %s\n", strings.Join(args, ", "))
	return nil
}

// runCycle power-cycles the radio and then restores the captured state,
// including the network association and DNS configuration.
func runCycle(ctx context.Context, w io.Writer, adapter wifi.Adapter, logger *slog.Logger) error {
	mgr := wifi.NewSnapshotManager(adapter, logger)
	snap, err := mgr.Capture(ctx)
	if err != nil {
		return fmt.Errorf("capturing network state: %w", err)
	}
	if err := adapter.SetRadio(ctx, false); err != nil {
		return err
	}
	if err := adapter.SetRadio(ctx, true); err != nil {
		return err
	}
	if err := mgr.Restore(ctx, snap); err != nil {
		return fmt.Errorf("restoring network state: %w", err)
	}
	fmt.Fprintln(w, "network cycled")
	return nil
}

func runMonitor(ctx context.Context, w io.Writer, adapter wifi.Adapter, prober monitor.Prober, logger *slog.Logger,
	interval time.Duration, logFile, hookCommand string, hookTimeout time.Duration) error {
	sinks := []monitor.Sink{monitor.ConsoleSink{W: w}}
	if logFile != "" {
		fileSink, err := monitor.NewFileSink(logFile)
		if err != nil {
			return err
		}
		defer fileSink.Close()
		sinks = append(sinks, fileSink)
	}
	if hookCommand != "" {
		sinks = append(sinks, monitor.HookSink{Command: hookCommand, Timeout: hookTimeout, Logger: logger})
	}

	m := monitor.New(adapter, prober, logger, sinks...)
	err := m.Run(ctx, interval)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
