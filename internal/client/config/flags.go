package config

import (
	"flag"
	"io"

	"github.com/dmitrijs2005/permalink/internal/flagx"
)

var ownFlags = []string{"-n", "-r", "-b", "-g", "-k", "-d", "-l"}

// parseFlags populates selected Config fields from command-line flags.
//
// Only the flags listed in ownFlags are considered (see flagx.FilterArgs),
// so -c and unknown flags never cause a parse error here.
func parseFlags(cfg *Config, args []string) error {
	fs := flag.NewFlagSet("permalink", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&cfg.Network, "n", cfg.Network, "network: mainnet or sepolia")
	fs.StringVar(&cfg.RPCURL, "r", cfg.RPCURL, "JSON-RPC endpoint")
	fs.StringVar(&cfg.BundlerURL, "b", cfg.BundlerURL, "storage bundler node URL")
	fs.StringVar(&cfg.SubgraphURL, "g", cfg.SubgraphURL, "name index (subgraph) URL")
	fs.StringVar(&cfg.KeyFile, "k", cfg.KeyFile, "private key file")
	fs.StringVar(&cfg.JournalPath, "d", cfg.JournalPath, "journal database path")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level")

	return fs.Parse(flagx.FilterArgs(args, ownFlags))
}
