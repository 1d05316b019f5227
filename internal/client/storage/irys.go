package storage

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"mime"
	"net/http"
	"path/filepath"
	"strconv"
	"time"

	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/gabriel-vasile/mimetype"

	"github.com/dmitrijs2005/permalink/internal/client/chain"
	"github.com/dmitrijs2005/permalink/internal/client/models"
	"github.com/dmitrijs2005/permalink/internal/netx"
)

// currency is the payment token path segment used by the node API.
const currency = "ethereum"

// ErrInsufficientBalance is returned when the node rejects an upload for
// lack of funds.
var ErrInsufficientBalance = errors.New("bundler balance is insufficient for upload")

// IrysClient talks to an Irys bundler node on behalf of a session.
type IrysClient struct {
	api      *netx.Client
	session  *chain.Session
	transact *chain.Transactor
}

func NewIrysClient(nodeURL string, timeout time.Duration, session *chain.Session) *IrysClient {
	return &IrysClient{
		api:      netx.NewClient(nodeURL, timeout),
		session:  session,
		transact: chain.NewTransactor(session),
	}
}

func (c *IrysClient) Price(ctx context.Context, n int64) (*big.Int, error) {
	body, err := c.api.GetText(ctx, "/price/"+currency+"/"+strconv.FormatInt(n, 10))
	if err != nil {
		return nil, fmt.Errorf("price quote: %w", err)
	}

	price, ok := new(big.Int).SetString(body, 10)
	if !ok || price.Sign() < 0 {
		return nil, fmt.Errorf("price quote: unexpected body %q", body)
	}
	return price, nil
}

type nodeInfo struct {
	Addresses map[string]string `json:"addresses"`
}

func (c *IrysClient) depositAddress(ctx context.Context) (ethcommon.Address, error) {
	var info nodeInfo
	if err := c.api.GetJSON(ctx, "/info", &info); err != nil {
		return ethcommon.Address{}, fmt.Errorf("node info: %w", err)
	}

	addr := info.Addresses[currency]
	if !ethcommon.IsHexAddress(addr) {
		return ethcommon.Address{}, fmt.Errorf("node info: no %s deposit address", currency)
	}
	return ethcommon.HexToAddress(addr), nil
}

func (c *IrysClient) Fund(ctx context.Context, amount *big.Int) (FundReceipt, error) {
	to, err := c.depositAddress(ctx)
	if err != nil {
		return FundReceipt{}, err
	}

	receipt, err := c.transact.Transfer(ctx, to, amount)
	if err != nil {
		return FundReceipt{}, fmt.Errorf("funding transfer: %w", err)
	}

	txID := receipt.TxHash.Hex()
	if err := c.api.PostJSON(ctx, "/account/balance/"+currency, map[string]string{"tx_id": txID}, nil); err != nil {
		return FundReceipt{}, fmt.Errorf("register funding tx %s: %w", txID, err)
	}

	return FundReceipt{TxHash: txID, Amount: new(big.Int).Set(amount)}, nil
}

func (c *IrysClient) UploadFile(ctx context.Context, f models.File) (string, error) {
	tags := []Tag{{Name: "Content-Type", Value: contentType(f)}}
	if f.Name != "" {
		tags = append(tags, Tag{Name: "File-Name", Value: f.Name})
	}

	id, err := c.UploadBytes(ctx, f.Content, tags)
	if err != nil {
		return "", fmt.Errorf("upload %s: %w", f.Name, err)
	}
	return id, nil
}

type uploadResponse struct {
	ID string `json:"id"`
}

func (c *IrysClient) UploadBytes(ctx context.Context, payload []byte, tags []Tag) (string, error) {
	item := NewDataItem(payload, tags)
	if err := item.Sign(c.session.Signer); err != nil {
		return "", err
	}

	raw, err := item.Bytes()
	if err != nil {
		return "", err
	}

	var resp uploadResponse
	err = c.api.PostBytes(ctx, "/tx/"+currency, "application/octet-stream", raw, &resp)
	var se *netx.StatusError
	if errors.As(err, &se) && se.Code == http.StatusPaymentRequired {
		return "", fmt.Errorf("%w: %s", ErrInsufficientBalance, se.Body)
	}
	if err != nil {
		return "", err
	}

	if resp.ID == "" {
		resp.ID = item.ID()
	}
	return resp.ID, nil
}

// contentType prefers the extension mapping and falls back to sniffing.
func contentType(f models.File) string {
	if ct := mime.TypeByExtension(filepath.Ext(f.Name)); ct != "" {
		return ct
	}
	return mimetype.Detect(f.Content).String()
}
