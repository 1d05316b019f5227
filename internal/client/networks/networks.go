// Package networks lists the chains the client can fund, upload and link on.
package networks

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
)

type Network string

const (
	Mainnet Network = "mainnet"
	Sepolia Network = "sepolia"
)

// Config describes the per-network endpoints and naming contracts.
type Config struct {
	Key           Network
	Label         string
	ChainID       int64
	RPCURL        string
	BundlerURL    string
	SubgraphURL   string
	Registry      common.Address
	NameWrapper   common.Address
	ExplorerTxURL string
}

var registryAddress = common.HexToAddress("0x00000000000C2E074eC69A0dFb2997BA6C7d2e1e")

var configs = map[Network]Config{
	Mainnet: {
		Key:           Mainnet,
		Label:         "Ethereum Mainnet",
		ChainID:       1,
		RPCURL:        "https://rpc.ankr.com/eth",
		BundlerURL:    "https://uploader.irys.xyz",
		Registry:      registryAddress,
		NameWrapper:   common.HexToAddress("0xD4416b13d2b3a9abae7AcD5D6C2BbDBE25686401"),
		ExplorerTxURL: "https://etherscan.io/tx/",
	},
	Sepolia: {
		Key:           Sepolia,
		Label:         "Sepolia",
		ChainID:       11155111,
		RPCURL:        "https://rpc.sepolia.org",
		BundlerURL:    "https://devnet.irys.xyz",
		Registry:      registryAddress,
		NameWrapper:   common.HexToAddress("0x0635513f179D50A207757E05759CbD106d7dFcE8"),
		ExplorerTxURL: "https://sepolia.etherscan.io/tx/",
	},
}

// Supported returns the known networks in display order.
func Supported() []Network {
	return []Network{Mainnet, Sepolia}
}

// Get returns the configuration for n.
func Get(n Network) (Config, error) {
	c, ok := configs[n]
	if !ok {
		return Config{}, fmt.Errorf("unsupported network %q", n)
	}
	return c, nil
}

// ByChainID maps a chain id back to a supported network.
func ByChainID(chainID int64) (Network, bool) {
	for _, n := range Supported() {
		if configs[n].ChainID == chainID {
			return n, true
		}
	}
	return "", false
}
