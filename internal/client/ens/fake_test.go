package ens

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"github.com/dmitrijs2005/permalink/internal/client/chain"
	"github.com/dmitrijs2005/permalink/internal/client/networks"
)

type sentTx struct {
	to     common.Address
	method string
	args   []any
}

// fakeChain is an in-memory registry, name wrapper and resolver that
// decodes calldata with the same ABIs the client packs with.
type fakeChain struct {
	chain.Signer

	mu       sync.Mutex
	net      networks.Config
	account  common.Address
	resolver common.Address

	owners        map[common.Hash]common.Address
	resolvers     map[common.Hash]common.Address
	names         map[common.Hash]string
	addrs         map[common.Hash]common.Address
	contenthashes map[common.Hash][]byte
	expiries      map[common.Hash]uint64

	failProbe   map[common.Hash]bool
	batchErr    error
	readErr     map[string]error
	simulateErr map[common.Address]error
	revertedTx  map[int]bool
	batches     int
	simulated   []sentTx
	sent        []sentTx
}

func newFakeChain() *fakeChain {
	net, _ := networks.Get(networks.Sepolia)
	return &fakeChain{
		net:           net,
		account:       common.HexToAddress("0x00000000000000000000000000000000000a11ce"),
		resolver:      common.HexToAddress("0x8FADE66B79cC9f707aB26799354482EB93a5B7dD"),
		owners:        map[common.Hash]common.Address{},
		resolvers:     map[common.Hash]common.Address{},
		names:         map[common.Hash]string{},
		addrs:         map[common.Hash]common.Address{},
		contenthashes: map[common.Hash][]byte{},
		expiries:      map[common.Hash]uint64{},
		failProbe:     map[common.Hash]bool{},
		readErr:       map[string]error{},
		simulateErr:   map[common.Address]error{},
		revertedTx:    map[int]bool{},
	}
}

func (f *fakeChain) session() *chain.Session {
	return &chain.Session{Address: f.account, Signer: f, Reader: f}
}

func (f *fakeChain) contract(to common.Address) abi.ABI {
	switch to {
	case f.net.Registry:
		return registryABI
	case f.net.NameWrapper:
		return wrapperABI
	default:
		return resolverABI
	}
}

func (f *fakeChain) decode(to common.Address, data []byte) (*abi.Method, []any, error) {
	c := f.contract(to)
	m, err := c.MethodById(data[:4])
	if err != nil {
		return nil, nil, err
	}
	args, err := m.Inputs.Unpack(data[4:])
	if err != nil {
		return nil, nil, err
	}
	return m, args, nil
}

func hashArg(v any) common.Hash {
	return common.Hash(v.([32]byte))
}

func (f *fakeChain) ChainID(context.Context) (*big.Int, error) {
	return big.NewInt(f.net.ChainID), nil
}

func (f *fakeChain) CallContract(_ context.Context, msg ethereum.CallMsg) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	m, args, err := f.decode(*msg.To, msg.Data)
	if err != nil {
		return nil, err
	}

	if !m.IsConstant() {
		f.simulated = append(f.simulated, sentTx{to: *msg.To, method: m.Name, args: args})
		return nil, f.simulateErr[*msg.To]
	}
	if err := f.readErr[m.Name]; err != nil {
		return nil, err
	}
	return f.read(*msg.To, m, args)
}

func (f *fakeChain) read(to common.Address, m *abi.Method, args []any) ([]byte, error) {
	switch {
	case to == f.net.Registry && m.Name == "owner":
		return m.Outputs.Pack(f.owners[hashArg(args[0])])
	case to == f.net.Registry && m.Name == "resolver":
		return m.Outputs.Pack(f.resolvers[hashArg(args[0])])
	case to == f.net.NameWrapper && m.Name == "getData":
		id := common.BigToHash(args[0].(*big.Int))
		return m.Outputs.Pack(f.owners[id], uint32(0), f.expiries[id])
	case m.Name == "name":
		return m.Outputs.Pack(f.names[hashArg(args[0])])
	case m.Name == "addr":
		return m.Outputs.Pack(f.addrs[hashArg(args[0])])
	case m.Name == "contenthash":
		return m.Outputs.Pack(f.contenthashes[hashArg(args[0])])
	}
	return nil, fmt.Errorf("unexpected read %s", m.Name)
}

func (f *fakeChain) BatchCall(ctx context.Context, calls []chain.Call) ([]chain.CallResult, error) {
	f.mu.Lock()
	f.batches++
	batchErr := f.batchErr
	f.mu.Unlock()
	if batchErr != nil {
		return nil, batchErr
	}

	out := make([]chain.CallResult, len(calls))
	for i, c := range calls {
		_, args, err := f.decode(c.To, c.Data)
		if err == nil && f.failProbe[hashArg(args[0])] {
			err = errors.New("execution reverted")
		}
		if err != nil {
			out[i] = chain.CallResult{Err: err}
			continue
		}
		data, err := f.CallContract(ctx, ethereum.CallMsg{To: &c.To, Data: c.Data})
		out[i] = chain.CallResult{Data: data, Err: err}
	}
	return out, nil
}

func (f *fakeChain) WaitForReceipt(_ context.Context, hash common.Hash) (*types.Receipt, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	status := types.ReceiptStatusSuccessful
	if f.revertedTx[int(hash.Big().Int64())] {
		status = types.ReceiptStatusFailed
	}
	return &types.Receipt{Status: status, TxHash: hash}, nil
}

func (f *fakeChain) Address() common.Address {
	return f.account
}

func (f *fakeChain) SendTransaction(_ context.Context, req chain.TxRequest) (common.Hash, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	m, args, err := f.decode(req.To, req.Data)
	if err != nil {
		return common.Hash{}, err
	}
	f.sent = append(f.sent, sentTx{to: req.To, method: m.Name, args: args})
	n := len(f.sent)

	if !f.revertedTx[n] {
		f.apply(req.To, m.Name, args)
	}
	return common.BigToHash(big.NewInt(int64(n))), nil
}

func (f *fakeChain) apply(to common.Address, method string, args []any) {
	switch {
	case to == f.net.Registry && method == "setSubnodeRecord":
		label := hashArg(args[1])
		node := keccak(hashArg(args[0]).Bytes(), label.Bytes())
		f.owners[node] = args[2].(common.Address)
		f.resolvers[node] = args[3].(common.Address)
	case to == f.net.NameWrapper && method == "setSubnodeRecord":
		label := LabelHash(args[1].(string))
		node := keccak(hashArg(args[0]).Bytes(), label.Bytes())
		f.owners[node] = f.net.NameWrapper
		f.resolvers[node] = args[3].(common.Address)
	case method == "setContenthash":
		f.contenthashes[hashArg(args[0])] = args[1].([]byte)
	}
}

// ownVersions marks v1..vN under parent as owned.
func (f *fakeChain) ownVersions(parent string, n int) {
	for i := 1; i <= n; i++ {
		f.owners[NameHash(VersionLabel(i)+"."+parent)] = f.account
	}
}
