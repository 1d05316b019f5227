// Package ens reads and writes the naming records that bind an uploaded
// manifest to a versioned subname such as v3.demo.eth.
package ens

import (
	"context"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"

	"github.com/dmitrijs2005/permalink/internal/client/chain"
	"github.com/dmitrijs2005/permalink/internal/client/networks"
	"github.com/dmitrijs2005/permalink/internal/logging"
	"github.com/dmitrijs2005/permalink/internal/netx"
)

// Client talks to the registry, name wrapper and resolver contracts of one
// network, plus the optional index service.
type Client struct {
	registry common.Address
	wrapper  common.Address
	subgraph *netx.Client
	log      logging.Logger
	now      func() time.Time
}

// NewClient builds a Client for net. An empty subgraph URL disables the
// index-service discovery channel.
func NewClient(net networks.Config, subgraphURL string, timeout time.Duration, log logging.Logger) *Client {
	if log == nil {
		log = logging.Nop()
	}

	c := &Client{
		registry: net.Registry,
		wrapper:  net.NameWrapper,
		log:      log,
		now:      time.Now,
	}
	if subgraphURL != "" {
		c.subgraph = netx.NewClient(subgraphURL, timeout)
	}
	return c
}

// call packs method, runs it as a read-only call and unpacks the outputs.
func call(ctx context.Context, r chain.Reader, to common.Address, contract abi.ABI, method string, args ...any) ([]any, error) {
	data, err := contract.Pack(method, args...)
	if err != nil {
		return nil, fmt.Errorf("pack %s: %w", method, err)
	}

	out, err := r.CallContract(ctx, ethereum.CallMsg{To: &to, Data: data})
	if err != nil {
		return nil, fmt.Errorf("call %s: %w", method, err)
	}

	values, err := contract.Unpack(method, out)
	if err != nil {
		return nil, fmt.Errorf("unpack %s: %w", method, err)
	}
	return values, nil
}

func callAddress(ctx context.Context, r chain.Reader, to common.Address, contract abi.ABI, method string, node common.Hash) (common.Address, error) {
	values, err := call(ctx, r, to, contract, method, node)
	if err != nil {
		return common.Address{}, err
	}
	addr, ok := values[0].(common.Address)
	if !ok {
		return common.Address{}, fmt.Errorf("%s: unexpected output %T", method, values[0])
	}
	return addr, nil
}

// Resolver returns the resolver configured for node, or the zero address.
func (c *Client) Resolver(ctx context.Context, r chain.Reader, node common.Hash) (common.Address, error) {
	return callAddress(ctx, r, c.registry, registryABI, "resolver", node)
}

// Contenthash reads the contenthash record of name from its resolver.
func (c *Client) Contenthash(ctx context.Context, r chain.Reader, name string) ([]byte, error) {
	node := NameHash(Normalize(name))
	resolver, err := c.Resolver(ctx, r, node)
	if err != nil {
		return nil, err
	}
	if resolver == (common.Address{}) {
		return nil, nil
	}

	values, err := call(ctx, r, resolver, resolverABI, "contenthash", node)
	if err != nil {
		return nil, err
	}
	b, _ := values[0].([]byte)
	return b, nil
}
