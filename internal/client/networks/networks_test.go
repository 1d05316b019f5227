package networks

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGet_KnownNetworks(t *testing.T) {
	for _, n := range Supported() {
		c, err := Get(n)
		require.NoError(t, err)
		assert.Equal(t, n, c.Key)
		assert.NotEmpty(t, c.RPCURL)
		assert.NotEmpty(t, c.BundlerURL)
		assert.Equal(t, registryAddress, c.Registry)
	}
}

func TestGet_Unknown(t *testing.T) {
	_, err := Get("goerli")
	assert.Error(t, err)
}

func TestByChainID(t *testing.T) {
	n, ok := ByChainID(11155111)
	require.True(t, ok)
	assert.Equal(t, Sepolia, n)

	_, ok = ByChainID(42)
	assert.False(t, ok)
}
