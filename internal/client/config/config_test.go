package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	var c Config
	c.LoadDefaults()

	assert.Equal(t, "sepolia", c.Network)
	assert.Equal(t, int64(5), c.BufferPercent)
	assert.Equal(t, 30*time.Second, c.RequestTimeout)
	assert.Equal(t, 5*time.Minute, c.ConfirmationTimeout)
	assert.Equal(t, "permalink.db", c.JournalPath)
}

func TestLoadConfig_FillsEndpointsFromNetwork(t *testing.T) {
	cfg, err := LoadConfig([]string{"-n", "mainnet"})
	require.NoError(t, err)

	assert.Equal(t, "mainnet", cfg.Network)
	assert.Equal(t, "https://uploader.irys.xyz", cfg.BundlerURL)
	assert.NotEmpty(t, cfg.RPCURL)
}

func TestLoadConfig_FlagOverridesEnv(t *testing.T) {
	t.Setenv("PERMALINK_RPC_URL", "http://env:8545")
	t.Setenv("PERMALINK_BUFFER_PERCENT", "10")

	cfg, err := LoadConfig([]string{"-r", "http://flag:8545"})
	require.NoError(t, err)

	assert.Equal(t, "http://flag:8545", cfg.RPCURL)
	assert.Equal(t, int64(10), cfg.BufferPercent)
}

func TestLoadConfig_RejectsUnknownNetwork(t *testing.T) {
	_, err := LoadConfig([]string{"-n", "goerli"})
	require.Error(t, err)
}

func TestLoadConfig_RejectsBadBuffer(t *testing.T) {
	t.Setenv("PERMALINK_BUFFER_PERCENT", "500")

	_, err := LoadConfig(nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid config")
}

func TestNetworkConfig_AppliesOverrides(t *testing.T) {
	c := &Config{Network: "sepolia", BundlerURL: "http://localhost:9000"}

	nc, err := c.NetworkConfig()
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:9000", nc.BundlerURL)
	assert.Equal(t, int64(11155111), nc.ChainID)
}
