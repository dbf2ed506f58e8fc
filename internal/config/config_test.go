package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keithrbennett/wifiwand-sub000/probe"
)

func TestDefaults(t *testing.T) {
	cfg := Default()
	assert.Equal(t, 2*time.Second, cfg.Monitor.PollInterval.Duration)
	assert.Equal(t, 30*time.Second, cfg.Monitor.HookTimeout.Duration)
	assert.Equal(t, probe.DefaultTCPAddress, cfg.Probe.TCPAddress)
	assert.Equal(t, probe.DefaultDNSHost, cfg.Probe.DNSHost)
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadOverlaysOntoDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[monitor]
poll_interval = "10s"
hook_command = "notify-send wifi"

[probe]
tcp_address = "9.9.9.9:53"
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 10*time.Second, cfg.Monitor.PollInterval.Duration)
	assert.Equal(t, "notify-send wifi", cfg.Monitor.HookCommand)
	assert.Equal(t, "9.9.9.9:53", cfg.Probe.TCPAddress)
	// Keys the file did not name keep their defaults.
	assert.Equal(t, probe.DefaultDNSHost, cfg.Probe.DNSHost)
	assert.Equal(t, 30*time.Second, cfg.Monitor.HookTimeout.Duration)
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[monitor]
pol_interval = "10s"
`), 0o644))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "pol_interval")
}

func TestLoadRejectsBadDuration(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[monitor]
poll_interval = "ten seconds"
`), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestProberCarriesSettings(t *testing.T) {
	cfg := Default()
	cfg.Probe.TCPAddress = "9.9.9.9:53"
	cfg.Probe.Ceiling.Duration = 3 * time.Second

	p := cfg.Prober()
	assert.Equal(t, "9.9.9.9:53", p.TCPAddress)
	assert.Equal(t, 3*time.Second, p.Ceiling)
}
