package chain

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// Call is a read-only contract call.
type Call struct {
	To   common.Address
	Data []byte
}

// CallResult is the outcome of one entry of a batched call.
type CallResult struct {
	Data []byte
	Err  error
}

// Reader is the read side of the chain connection.
type Reader interface {
	ChainID(ctx context.Context) (*big.Int, error)
	CallContract(ctx context.Context, msg ethereum.CallMsg) ([]byte, error)
	// BatchCall sends calls in one round trip. The returned slice is
	// parallel to calls; a failed entry carries Err and does not fail the
	// batch.
	BatchCall(ctx context.Context, calls []Call) ([]CallResult, error)
	WaitForReceipt(ctx context.Context, hash common.Hash) (*types.Receipt, error)
}

// TxRequest describes a state-changing transaction.
type TxRequest struct {
	To    common.Address
	Value *big.Int
	Data  []byte
}

// Signer owns the account key.
type Signer interface {
	Address() common.Address
	// PublicKey returns the 65-byte uncompressed secp256k1 key.
	PublicKey() []byte
	// SignMessage returns an EIP-191 personal signature with v in {27, 28}.
	SignMessage(msg []byte) ([]byte, error)
	SendTransaction(ctx context.Context, req TxRequest) (common.Hash, error)
}

// Session is the connected account context every flow operation requires.
type Session struct {
	Address common.Address
	Signer  Signer
	Reader  Reader
}

// Ready reports whether an address, a signer and a reader are all present.
func (s *Session) Ready() bool {
	return s != nil && s.Address != (common.Address{}) && s.Signer != nil && s.Reader != nil
}
