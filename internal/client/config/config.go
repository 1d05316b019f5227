package config

import (
	"fmt"
	"time"

	"github.com/dmitrijs2005/permalink/internal/client/networks"
)

// Config holds runtime settings for the permalink CLI.
//
// Units: all intervals are time.Duration. BufferPercent is the safety margin
// added on top of the storage price quote when funding.
type Config struct {
	Network             string        `validate:"required,oneof=mainnet sepolia"`
	RPCURL              string        `validate:"omitempty,url"`
	BundlerURL          string        `validate:"omitempty,url"`
	SubgraphURL         string        `validate:"omitempty,url"`
	KeyFile             string
	JournalPath         string        `validate:"required"`
	BufferPercent       int64         `validate:"min=0,max=100"`
	RequestTimeout      time.Duration `validate:"gt=0"`
	ConfirmationTimeout time.Duration `validate:"gt=0"`
	PollInterval        time.Duration `validate:"gt=0"`
	LogLevel            string        `validate:"omitempty,oneof=debug info warn error"`
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.Network = string(networks.Sepolia)
	c.JournalPath = "permalink.db"
	c.BufferPercent = 5
	c.RequestTimeout = 30 * time.Second
	c.ConfirmationTimeout = 5 * time.Minute
	c.PollInterval = 2 * time.Second
	c.LogLevel = "info"
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present), the environment and command-line flags. Later sources
// take precedence over earlier ones. Empty endpoints are filled from the
// selected network before validation.
func LoadConfig(args []string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	if err := parseJson(cfg, args); err != nil {
		return nil, fmt.Errorf("json config: %w", err)
	}
	if err := parseEnv(cfg); err != nil {
		return nil, fmt.Errorf("env config: %w", err)
	}
	if err := parseFlags(cfg, args); err != nil {
		return nil, fmt.Errorf("flags: %w", err)
	}
	if err := cfg.applyNetwork(); err != nil {
		return nil, err
	}
	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// NetworkConfig returns the network table entry with endpoint overrides
// from c applied.
func (c *Config) NetworkConfig() (networks.Config, error) {
	nc, err := networks.Get(networks.Network(c.Network))
	if err != nil {
		return networks.Config{}, err
	}
	if c.RPCURL != "" {
		nc.RPCURL = c.RPCURL
	}
	if c.BundlerURL != "" {
		nc.BundlerURL = c.BundlerURL
	}
	if c.SubgraphURL != "" {
		nc.SubgraphURL = c.SubgraphURL
	}
	return nc, nil
}

func (c *Config) applyNetwork() error {
	nc, err := c.NetworkConfig()
	if err != nil {
		return err
	}
	c.RPCURL = nc.RPCURL
	c.BundlerURL = nc.BundlerURL
	c.SubgraphURL = nc.SubgraphURL
	return nil
}
