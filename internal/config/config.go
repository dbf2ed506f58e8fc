// Package config loads the optional TOML configuration file. Settings follow
// a defaults-then-overlay model: Default() provides every value, and a config
// file only overrides the keys it names.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/keithrbennett/wifiwand-sub000/probe"
)

// Config holds user-tunable settings for monitoring and connectivity probes.
type Config struct {
	Monitor MonitorConfig `toml:"monitor"`
	Probe   ProbeConfig   `toml:"probe"`
}

type MonitorConfig struct {
	PollInterval duration `toml:"poll_interval"`
	EventLogFile string   `toml:"event_log_file"`
	HookCommand  string   `toml:"hook_command"`
	// HookTimeout of zero disables the timeout entirely.
	HookTimeout duration `toml:"hook_timeout"`
}

type ProbeConfig struct {
	TCPAddress   string   `toml:"tcp_address"`
	DNSHost      string   `toml:"dns_host"`
	CheckTimeout duration `toml:"check_timeout"`
	Ceiling      duration `toml:"ceiling"`
}

// duration parses TOML strings like "5s" or "2m".
type duration struct {
	time.Duration
}

func (d *duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = parsed
	return nil
}

func Default() Config {
	return Config{
		Monitor: MonitorConfig{
			PollInterval: duration{2 * time.Second},
			HookTimeout:  duration{30 * time.Second},
		},
		Probe: ProbeConfig{
			TCPAddress:   probe.DefaultTCPAddress,
			DNSHost:      probe.DefaultDNSHost,
			CheckTimeout: duration{probe.DefaultCheckTimeout},
			Ceiling:      duration{probe.DefaultCeiling},
		},
	}
}

// DefaultPath returns the conventional config file location, or "" when the
// user's config directory cannot be determined.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "wifiwand", "config.toml")
}

// Load reads the config file at path, overlaying it onto the defaults. A
// missing file is not an error; a malformed one is.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("loading config %s: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return cfg, fmt.Errorf("unknown config key %q in %s", undecoded[0].String(), path)
	}
	return cfg, nil
}

// Prober builds a connectivity prober from the probe settings.
func (c Config) Prober() *probe.Prober {
	p := probe.New()
	p.TCPAddress = c.Probe.TCPAddress
	p.DNSHost = c.Probe.DNSHost
	p.CheckTimeout = c.Probe.CheckTimeout.Duration
	p.Ceiling = c.Probe.Ceiling.Duration
	return p
}
