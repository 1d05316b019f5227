package chain

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"
)

const defaultPollInterval = 2 * time.Second

// RPCReader is a Reader over a JSON-RPC endpoint.
type RPCReader struct {
	rpc            *rpc.Client
	eth            *ethclient.Client
	pollInterval   time.Duration
	confirmTimeout time.Duration
}

// Dial connects to url. A zero confirmTimeout waits for receipts until ctx
// is done.
func Dial(ctx context.Context, url string, pollInterval, confirmTimeout time.Duration) (*RPCReader, error) {
	rc, err := rpc.DialContext(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", url, err)
	}
	return NewRPCReader(rc, pollInterval, confirmTimeout), nil
}

func NewRPCReader(rc *rpc.Client, pollInterval, confirmTimeout time.Duration) *RPCReader {
	if pollInterval <= 0 {
		pollInterval = defaultPollInterval
	}
	return &RPCReader{
		rpc:            rc,
		eth:            ethclient.NewClient(rc),
		pollInterval:   pollInterval,
		confirmTimeout: confirmTimeout,
	}
}

// Backend exposes the typed client, which also satisfies TxBackend.
func (r *RPCReader) Backend() *ethclient.Client {
	return r.eth
}

func (r *RPCReader) Close() {
	r.rpc.Close()
}

func (r *RPCReader) ChainID(ctx context.Context) (*big.Int, error) {
	id, err := r.eth.ChainID(ctx)
	if err != nil {
		return nil, fmt.Errorf("chain id: %w", err)
	}
	return id, nil
}

func (r *RPCReader) CallContract(ctx context.Context, msg ethereum.CallMsg) ([]byte, error) {
	return r.eth.CallContract(ctx, msg, nil)
}

type callArg struct {
	To   common.Address `json:"to"`
	Data hexutil.Bytes  `json:"data"`
}

func (r *RPCReader) BatchCall(ctx context.Context, calls []Call) ([]CallResult, error) {
	if len(calls) == 0 {
		return nil, nil
	}

	raw := make([]hexutil.Bytes, len(calls))
	elems := make([]rpc.BatchElem, len(calls))
	for i, c := range calls {
		elems[i] = rpc.BatchElem{
			Method: "eth_call",
			Args:   []any{callArg{To: c.To, Data: c.Data}, "latest"},
			Result: &raw[i],
		}
	}

	if err := r.rpc.BatchCallContext(ctx, elems); err != nil {
		return nil, fmt.Errorf("batch call: %w", err)
	}

	out := make([]CallResult, len(calls))
	for i, e := range elems {
		out[i] = CallResult{Data: raw[i], Err: e.Error}
	}
	return out, nil
}

// WaitForReceipt polls until hash is mined.
func (r *RPCReader) WaitForReceipt(ctx context.Context, hash common.Hash) (*types.Receipt, error) {
	if r.confirmTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.confirmTimeout)
		defer cancel()
	}

	ticker := time.NewTicker(r.pollInterval)
	defer ticker.Stop()

	for {
		receipt, err := r.eth.TransactionReceipt(ctx, hash)
		if err == nil {
			return receipt, nil
		}
		if !errors.Is(err, ethereum.NotFound) {
			return nil, err
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}
