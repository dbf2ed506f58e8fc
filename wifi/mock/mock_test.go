package mock

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keithrbennett/wifiwand-sub000/wifi"
)

func newAdapter() *Adapter {
	a := New()
	a.ActionSleep = 0
	return a
}

func TestScanReturnsNothingWhenRadioOff(t *testing.T) {
	a := newAdapter()
	a.RadioEnabled = false

	results, err := a.Scan(context.Background())
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestScanIsOrderedByStrength(t *testing.T) {
	a := newAdapter()

	results, err := a.Scan(context.Background())
	require.NoError(t, err)
	require.NotEmpty(t, results)
	for i := 1; i < len(results); i++ {
		assert.GreaterOrEqual(t, results[i-1].Strength, results[i].Strength)
	}
}

func TestRemoveMissingProfileIsSuccess(t *testing.T) {
	a := newAdapter()
	before := len(a.Profiles)

	require.NoError(t, a.RemoveProfile(context.Background(), "NoSuchProfile"))
	assert.Len(t, a.Profiles, before)
	assert.Empty(t, a.Mutations)
}

func TestRemoveProfileDeletesCredential(t *testing.T) {
	a := newAdapter()

	require.NoError(t, a.RemoveProfile(context.Background(), "TacoBoutAGoodSignal"))
	password, err := a.ProfilePassword(context.Background(), "TacoBoutAGoodSignal")
	require.NoError(t, err)
	assert.Equal(t, "", password)
}

func TestRadioOffClearsAssociation(t *testing.T) {
	a := newAdapter()
	a.CurrentNetwork = "TacoBoutAGoodSignal"

	require.NoError(t, a.SetRadio(context.Background(), false))
	assert.Equal(t, "", a.CurrentNetwork)
}

func TestJoinRecordsProfile(t *testing.T) {
	a := newAdapter()
	join := a.ConnectStrategies()[0].Join

	require.NoError(t, join(context.Background(), "BrandNew", "pw", wifi.SecurityPSK))
	assert.Equal(t, "BrandNew", a.CurrentNetwork)

	profiles, err := a.SavedProfiles(context.Background())
	require.NoError(t, err)
	found := false
	for _, p := range profiles {
		if p.Name == "BrandNew" {
			found = true
			assert.NotNil(t, p.LastUsed)
		}
	}
	assert.True(t, found)
}

func TestSetDNSValidatesBeforeMutating(t *testing.T) {
	a := newAdapter()

	err := a.SetDNSServers(context.Background(), []string{"1.1.1.1", "not-an-ip"})
	assert.Error(t, err)
	assert.Empty(t, a.Mutations)
	assert.True(t, a.AutomaticDNS)
}
