package wifi

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateIPAddressesAccepted(t *testing.T) {
	assert.NoError(t, ValidateIPAddresses(nil))
	assert.NoError(t, ValidateIPAddresses([]string{"1.1.1.1", "8.8.8.8", "2606:4700:4700::1111"}))
}

func TestValidateIPAddressesListsEveryOffender(t *testing.T) {
	err := ValidateIPAddresses([]string{"1.1.1.1", "bad.ip", "8.8.8.8", "999.999.1.1"})
	require.Error(t, err)

	var invalid *InvalidIPAddressesError
	require.True(t, errors.As(err, &invalid))
	assert.Equal(t, []string{"bad.ip", "999.999.1.1"}, invalid.Addresses)
	assert.Contains(t, err.Error(), "bad.ip")
	assert.Contains(t, err.Error(), "999.999.1.1")
}
