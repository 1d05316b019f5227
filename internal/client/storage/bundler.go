package storage

import (
	"context"
	"math/big"

	"github.com/dmitrijs2005/permalink/internal/client/models"
)

// FundReceipt describes a confirmed funding transfer.
type FundReceipt struct {
	TxHash string
	Amount *big.Int
}

// Bundler is the storage network as seen by one connected account.
type Bundler interface {
	// Price quotes the atomic cost of storing n bytes.
	Price(ctx context.Context, n int64) (*big.Int, error)
	// Fund transfers amount to the node and waits for it to be credited.
	// Every call spends funds.
	Fund(ctx context.Context, amount *big.Int) (FundReceipt, error)
	UploadFile(ctx context.Context, f models.File) (string, error)
	UploadBytes(ctx context.Context, payload []byte, tags []Tag) (string, error)
}
