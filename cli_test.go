package main

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/keithrbennett/wifiwand-sub000/probe"
	"github.com/keithrbennett/wifiwand-sub000/wifi"
	"github.com/keithrbennett/wifiwand-sub000/wifi/mock"
)

func newTestAdapter() *mock.Adapter {
	a := mock.New()
	a.ActionSleep = 0
	return a
}

type stubProber struct {
	res probe.Result
}

func (p stubProber) Probe(context.Context) probe.Result { return p.res }

func TestPickFormat(t *testing.T) {
	format, err := pickFormat(false, false)
	require.NoError(t, err)
	assert.Equal(t, formatText, format)

	_, err = pickFormat(true, true)
	assert.Error(t, err)
}

func TestRunNetworksText(t *testing.T) {
	a := newTestAdapter()
	var buf bytes.Buffer

	require.NoError(t, runNetworks(context.Background(), &buf, formatText, a))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 5)
	assert.Equal(t, "TacoBoutAGoodSignal\t99%\tpsk", lines[0])
	assert.Equal(t, "CorpNet\t43%\tenterprise", lines[4])
}

func TestRunNetworksJSON(t *testing.T) {
	a := newTestAdapter()
	var buf bytes.Buffer

	require.NoError(t, runNetworks(context.Background(), &buf, formatJSON, a))

	var entries []networkEntry
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entries))
	require.Len(t, entries, 5)
	assert.Equal(t, "TacoBoutAGoodSignal", entries[0].SSID)
	assert.Equal(t, uint8(99), entries[0].Strength)
}

func TestRunProfilesYAML(t *testing.T) {
	a := newTestAdapter()
	var buf bytes.Buffer

	require.NoError(t, runProfiles(context.Background(), &buf, formatYAML, a))

	var entries []profileEntry
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &entries))
	require.Len(t, entries, 2)
	assert.Equal(t, "Password is password", entries[0].Name)
}

func TestRunStatusJSON(t *testing.T) {
	a := newTestAdapter()
	a.CurrentNetwork = "TacoBoutAGoodSignal"
	var buf bytes.Buffer

	prober := stubProber{res: probe.Result{TCPReachable: true, DNSResolves: true, InternetAvailable: true}}
	require.NoError(t, runStatus(context.Background(), &buf, formatJSON, a, prober))

	var report statusReport
	require.NoError(t, json.Unmarshal(buf.Bytes(), &report))
	assert.True(t, report.RadioOn)
	assert.Equal(t, "TacoBoutAGoodSignal", report.Network)
	assert.Equal(t, "192.168.1.23", report.IPAddress)
	assert.True(t, report.InternetAvailable)
}

func TestRunStatusTextRadioOff(t *testing.T) {
	a := newTestAdapter()
	a.RadioEnabled = false
	var buf bytes.Buffer

	require.NoError(t, runStatus(context.Background(), &buf, formatText, a, stubProber{}))
	assert.Contains(t, buf.String(), "Radio:     off")
	assert.Contains(t, buf.String(), "(not connected)")
}

func TestRunConnect(t *testing.T) {
	a := newTestAdapter()
	orch := wifi.NewOrchestrator(a, nil)
	var buf bytes.Buffer

	require.NoError(t, runConnect(context.Background(), &buf, orch, "I See Dead Packets", "boo"))
	assert.Equal(t, "connected to \"I See Dead Packets\"\n", buf.String())
	assert.Equal(t, "I See Dead Packets", a.CurrentNetwork)
}

func TestRunForget(t *testing.T) {
	a := newTestAdapter()
	var buf bytes.Buffer

	require.NoError(t, runForget(context.Background(), &buf, a, []string{"TacoBoutAGoodSignal", "NoSuchProfile"}))
	assert.Len(t, a.Profiles, 1)
	assert.Contains(t, buf.String(), `removed profile "TacoBoutAGoodSignal"`)
}

func TestRunPassword(t *testing.T) {
	a := newTestAdapter()
	var buf bytes.Buffer

	require.NoError(t, runPassword(context.Background(), &buf, formatText, a, "TacoBoutAGoodSignal"))
	assert.Equal(t, "salsa\n", buf.String())

	buf.Reset()
	require.NoError(t, runPassword(context.Background(), &buf, formatText, a, "NoSuchProfile"))
	assert.Contains(t, buf.String(), "no stored password")
}

func TestRunDNS(t *testing.T) {
	ctx := context.Background()
	a := newTestAdapter()
	var buf bytes.Buffer

	require.NoError(t, runDNS(ctx, &buf, formatText, a, []string{"9.9.9.9", "149.112.112.112"}))
	assert.Equal(t, []string{"9.9.9.9", "149.112.112.112"}, a.DNS)

	buf.Reset()
	require.NoError(t, runDNS(ctx, &buf, formatText, a, nil))
	assert.Equal(t, "9.9.9.9\n149.112.112.112\n", buf.String())

	buf.Reset()
	require.NoError(t, runDNS(ctx, &buf, formatText, a, []string{"clear"}))
	assert.True(t, a.AutomaticDNS)
}

func TestRunDNSRejectsInvalidServers(t *testing.T) {
	a := newTestAdapter()
	var buf bytes.Buffer

	err := runDNS(context.Background(), &buf, formatText, a, []string{"1.1.1.1", "not-an-ip"})
	require.Error(t, err)
	// Nothing was applied.
	assert.Empty(t, a.DNS)
	assert.Empty(t, a.Mutations)
}

func TestRunCycleRestoresState(t *testing.T) {
	a := newTestAdapter()
	a.CurrentNetwork = "Password is password"
	var buf bytes.Buffer

	require.NoError(t, runCycle(context.Background(), &buf, a, nil))
	assert.Contains(t, buf.String(), "network cycled")
	assert.True(t, a.RadioEnabled)
	assert.Equal(t, "Password is password", a.CurrentNetwork)
	assert.Contains(t, a.Mutations, "set-radio false")
}

func TestLastUsedLabel(t *testing.T) {
	cases := []struct {
		age  time.Duration
		want string
	}{
		{30 * time.Second, "just now"},
		{12 * time.Minute, "12 minutes ago"},
		{90 * time.Minute, "1.5 hours ago"},
		{72 * time.Hour, "3 days ago"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, lastUsedLabel(time.Now().Add(-tc.age)))
	}
}
