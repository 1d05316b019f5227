package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/permalink/internal/flagx"
	"github.com/dmitrijs2005/permalink/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. Pointer
// fields distinguish "absent" from zero so a partial file only overrides
// what it names.
type JsonConfig struct {
	Network             *string         `json:"network"`
	RPCURL              *string         `json:"rpc_url"`
	BundlerURL          *string         `json:"bundler_url"`
	SubgraphURL         *string         `json:"subgraph_url"`
	KeyFile             *string         `json:"key_file"`
	JournalPath         *string         `json:"journal_path"`
	BufferPercent       *int64          `json:"buffer_percent"`
	RequestTimeout      *timex.Duration `json:"request_timeout"`
	ConfirmationTimeout *timex.Duration `json:"confirmation_timeout"`
	PollInterval        *timex.Duration `json:"poll_interval"`
	LogLevel            *string         `json:"log_level"`
}

// parseJson overlays cfg with values from the JSON file named by -c/-config.
// Without the flag nothing is loaded.
func parseJson(cfg *Config, args []string) error {
	path := flagx.JSONConfigPath(args)
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		return err
	}

	setIf(&cfg.Network, jc.Network)
	setIf(&cfg.RPCURL, jc.RPCURL)
	setIf(&cfg.BundlerURL, jc.BundlerURL)
	setIf(&cfg.SubgraphURL, jc.SubgraphURL)
	setIf(&cfg.KeyFile, jc.KeyFile)
	setIf(&cfg.JournalPath, jc.JournalPath)
	setIf(&cfg.BufferPercent, jc.BufferPercent)
	setIf(&cfg.LogLevel, jc.LogLevel)
	if jc.RequestTimeout != nil {
		cfg.RequestTimeout = jc.RequestTimeout.Duration
	}
	if jc.ConfirmationTimeout != nil {
		cfg.ConfirmationTimeout = jc.ConfirmationTimeout.Duration
	}
	if jc.PollInterval != nil {
		cfg.PollInterval = jc.PollInterval.Duration
	}

	return nil
}

func setIf[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}
