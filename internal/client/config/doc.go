// Package config loads runtime configuration for the permalink CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file (see parseJson) selected via flags: -c or -config.
//  3. Environment variables prefixed with PERMALINK_ (a .env file in the
//     working directory is loaded first when present).
//  4. Command-line flags (see parseFlags), which override earlier values.
//
// Supported flags
//
//	-n string   network: mainnet or sepolia
//	-r string   JSON-RPC endpoint of the chain
//	-b string   storage bundler node URL
//	-g string   name index (subgraph) URL
//	-k string   private key file
//	-d string   local journal database path
//	-l string   log level
//
// # JSON schema
//
// Intervals use timex.Duration, so values can be either strings like "30s"
// or integer nanoseconds:
//
//	{
//	  "network": "sepolia",
//	  "rpc_url": "http://127.0.0.1:8545",
//	  "buffer_percent": 5,
//	  "confirmation_timeout": "5m"
//	}
//
// Endpoints left empty are taken from package networks for the selected
// network. The final Config is checked with go-playground/validator.
package config
