package storage

import (
	"context"
	"crypto/ecdsa"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts"
	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/permalink/internal/client/chain"
)

type keySigner struct {
	chain.Signer
	key  *ecdsa.PrivateKey
	sent []chain.TxRequest
}

func newKeySigner(t *testing.T) *keySigner {
	t.Helper()
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	return &keySigner{key: key}
}

func (k *keySigner) Address() ethcommon.Address {
	return crypto.PubkeyToAddress(k.key.PublicKey)
}

func (k *keySigner) PublicKey() []byte {
	return crypto.FromECDSAPub(&k.key.PublicKey)
}

func (k *keySigner) SignMessage(msg []byte) ([]byte, error) {
	sig, err := crypto.Sign(accounts.TextHash(msg), k.key)
	if err != nil {
		return nil, err
	}
	sig[64] += 27
	return sig, nil
}

func (k *keySigner) SendTransaction(_ context.Context, req chain.TxRequest) (ethcommon.Hash, error) {
	k.sent = append(k.sent, req)
	return ethcommon.BigToHash(big.NewInt(int64(len(k.sent)))), nil
}

type okReader struct {
	chain.Reader
}

func (okReader) CallContract(context.Context, ethereum.CallMsg) ([]byte, error) {
	return nil, nil
}

func (okReader) WaitForReceipt(_ context.Context, hash ethcommon.Hash) (*types.Receipt, error) {
	return &types.Receipt{Status: types.ReceiptStatusSuccessful, TxHash: hash}, nil
}

func testSession(t *testing.T) (*chain.Session, *keySigner) {
	t.Helper()
	s := newKeySigner(t)
	return &chain.Session{Address: s.Address(), Signer: s, Reader: okReader{}}, s
}
