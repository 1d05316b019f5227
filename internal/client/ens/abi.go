package ens

import (
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

const registryJSON = `[
	{"type":"function","name":"owner","stateMutability":"view",
	 "inputs":[{"name":"node","type":"bytes32"}],"outputs":[{"name":"","type":"address"}]},
	{"type":"function","name":"resolver","stateMutability":"view",
	 "inputs":[{"name":"node","type":"bytes32"}],"outputs":[{"name":"","type":"address"}]},
	{"type":"function","name":"setSubnodeRecord","stateMutability":"nonpayable",
	 "inputs":[{"name":"node","type":"bytes32"},{"name":"label","type":"bytes32"},{"name":"owner","type":"address"},
	           {"name":"resolver","type":"address"},{"name":"ttl","type":"uint64"}],"outputs":[]}
]`

const wrapperJSON = `[
	{"type":"function","name":"getData","stateMutability":"view",
	 "inputs":[{"name":"id","type":"uint256"}],
	 "outputs":[{"name":"owner","type":"address"},{"name":"fuses","type":"uint32"},{"name":"expiry","type":"uint64"}]},
	{"type":"function","name":"setSubnodeRecord","stateMutability":"nonpayable",
	 "inputs":[{"name":"parentNode","type":"bytes32"},{"name":"label","type":"string"},{"name":"owner","type":"address"},
	           {"name":"resolver","type":"address"},{"name":"ttl","type":"uint64"},{"name":"fuses","type":"uint32"},
	           {"name":"expiry","type":"uint64"}],
	 "outputs":[{"name":"node","type":"bytes32"}]}
]`

const resolverJSON = `[
	{"type":"function","name":"setContenthash","stateMutability":"nonpayable",
	 "inputs":[{"name":"node","type":"bytes32"},{"name":"hash","type":"bytes"}],"outputs":[]},
	{"type":"function","name":"contenthash","stateMutability":"view",
	 "inputs":[{"name":"node","type":"bytes32"}],"outputs":[{"name":"","type":"bytes"}]},
	{"type":"function","name":"name","stateMutability":"view",
	 "inputs":[{"name":"node","type":"bytes32"}],"outputs":[{"name":"","type":"string"}]},
	{"type":"function","name":"addr","stateMutability":"view",
	 "inputs":[{"name":"node","type":"bytes32"}],"outputs":[{"name":"","type":"address"}]}
]`

var (
	registryABI = mustABI(registryJSON)
	wrapperABI  = mustABI(wrapperJSON)
	resolverABI = mustABI(resolverJSON)
)

func mustABI(def string) abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(def))
	if err != nil {
		panic(err)
	}
	return parsed
}
