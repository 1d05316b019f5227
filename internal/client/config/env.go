package config

import (
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

const envPrefix = "PERMALINK"

// envConfig mirrors the overridable settings. Unset variables leave the
// corresponding fields nil.
type envConfig struct {
	Network             *string        `envconfig:"NETWORK"`
	RPCURL              *string        `envconfig:"RPC_URL"`
	BundlerURL          *string        `envconfig:"BUNDLER_URL"`
	SubgraphURL         *string        `envconfig:"SUBGRAPH_URL"`
	KeyFile             *string        `envconfig:"KEY_FILE"`
	JournalPath         *string        `envconfig:"JOURNAL_PATH"`
	BufferPercent       *int64         `envconfig:"BUFFER_PERCENT"`
	RequestTimeout      *time.Duration `envconfig:"REQUEST_TIMEOUT"`
	ConfirmationTimeout *time.Duration `envconfig:"CONFIRMATION_TIMEOUT"`
	PollInterval        *time.Duration `envconfig:"POLL_INTERVAL"`
	LogLevel            *string        `envconfig:"LOG_LEVEL"`
}

// parseEnv overlays cfg with PERMALINK_* variables. A missing .env file is
// not an error.
func parseEnv(cfg *Config) error {
	_ = godotenv.Load()

	var ec envConfig
	if err := envconfig.Process(envPrefix, &ec); err != nil {
		return err
	}

	setIf(&cfg.Network, ec.Network)
	setIf(&cfg.RPCURL, ec.RPCURL)
	setIf(&cfg.BundlerURL, ec.BundlerURL)
	setIf(&cfg.SubgraphURL, ec.SubgraphURL)
	setIf(&cfg.KeyFile, ec.KeyFile)
	setIf(&cfg.JournalPath, ec.JournalPath)
	setIf(&cfg.BufferPercent, ec.BufferPercent)
	setIf(&cfg.RequestTimeout, ec.RequestTimeout)
	setIf(&cfg.ConfirmationTimeout, ec.ConfirmationTimeout)
	setIf(&cfg.PollInterval, ec.PollInterval)
	setIf(&cfg.LogLevel, ec.LogLevel)

	return nil
}
