package chain

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum"
	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"github.com/dmitrijs2005/permalink/internal/common"
)

// Transactor runs writes for a session.
type Transactor struct {
	session *Session
}

func NewTransactor(s *Session) *Transactor {
	return &Transactor{session: s}
}

// Submit simulates req against the latest state and broadcasts it only if
// the simulation succeeds. A zero hash with an error means nothing was sent.
func (t *Transactor) Submit(ctx context.Context, req TxRequest) (ethcommon.Hash, error) {
	if !t.session.Ready() {
		return ethcommon.Hash{}, common.ErrNoSession
	}

	to := req.To
	msg := ethereum.CallMsg{
		From:  t.session.Address,
		To:    &to,
		Value: req.Value,
		Data:  req.Data,
	}
	if _, err := t.session.Reader.CallContract(ctx, msg); err != nil {
		return ethcommon.Hash{}, fmt.Errorf("simulate transaction: %w", err)
	}

	hash, err := t.session.Signer.SendTransaction(ctx, req)
	if err != nil {
		return ethcommon.Hash{}, fmt.Errorf("send transaction: %w", err)
	}
	return hash, nil
}

// Confirm waits for hash to be mined and checks its status.
func (t *Transactor) Confirm(ctx context.Context, hash ethcommon.Hash) (*types.Receipt, error) {
	receipt, err := t.session.Reader.WaitForReceipt(ctx, hash)
	if err != nil {
		return nil, fmt.Errorf("wait for %s: %w", hash.Hex(), err)
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		return receipt, fmt.Errorf("%w: %s", common.ErrTxReverted, hash.Hex())
	}
	return receipt, nil
}

// Execute submits req and waits for it to be confirmed.
func (t *Transactor) Execute(ctx context.Context, req TxRequest) (*types.Receipt, error) {
	hash, err := t.Submit(ctx, req)
	if err != nil {
		return nil, err
	}
	return t.Confirm(ctx, hash)
}

// Transfer sends value wei with no calldata.
func (t *Transactor) Transfer(ctx context.Context, to ethcommon.Address, value *big.Int) (*types.Receipt, error) {
	return t.Execute(ctx, TxRequest{To: to, Value: value})
}
