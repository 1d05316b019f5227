package ens

import (
	"context"
	"fmt"
	"math/big"

	ethcommon "github.com/ethereum/go-ethereum/common"

	"github.com/dmitrijs2005/permalink/internal/client/chain"
	"github.com/dmitrijs2005/permalink/internal/client/models"
	"github.com/dmitrijs2005/permalink/internal/common"
)

// LinkManifest creates the next free vN subname under the parent and points
// its contenthash at the manifest. The subnode and contenthash writes are
// separate transactions; if the second fails the subnode stays in place.
func (c *Client) LinkManifest(ctx context.Context, session *chain.Session, req models.EnsLinkRequest) (*models.EnsLinkResult, error) {
	if !session.Ready() {
		return nil, common.ErrNoSession
	}

	parent := Normalize(req.ParentName)
	if !IsSupported(parent) {
		return nil, fmt.Errorf("%w: only .eth parent names are supported", common.ErrInvalidName)
	}

	// The content id is checked before the resolver lookup.
	contenthash, err := EncodeArweaveContenthash(req.ManifestID)
	if err != nil {
		return nil, err
	}

	owner := req.Owner
	if owner == (ethcommon.Address{}) {
		owner = session.Address
	}

	parentNode := NameHash(parent)
	resolver, err := c.Resolver(ctx, session.Reader, parentNode)
	if err != nil {
		return nil, fmt.Errorf("read parent resolver: %w", err)
	}
	if resolver == (ethcommon.Address{}) {
		return nil, fmt.Errorf("%w: %s", common.ErrNoResolver, parent)
	}

	suggestion, err := c.FindNextVersion(ctx, session, parent)
	if err != nil {
		return nil, err
	}

	tx := chain.NewTransactor(session)
	subnodeTx, wrapped, err := c.createSubnode(ctx, session, tx, parentNode, suggestion.Label, owner, resolver)
	if err != nil {
		return nil, err
	}
	c.log.Info(ctx, "subnode created", "subdomain", suggestion.Subdomain, "tx", subnodeTx.Hex(), "wrapper", wrapped)

	data, err := resolverABI.Pack("setContenthash", suggestion.Node, contenthash)
	if err != nil {
		return nil, fmt.Errorf("pack setContenthash: %w", err)
	}
	receipt, err := tx.Execute(ctx, chain.TxRequest{To: resolver, Data: data})
	if err != nil {
		return nil, fmt.Errorf("set contenthash on %s (subnode tx %s): %w", suggestion.Subdomain, subnodeTx.Hex(), err)
	}

	return &models.EnsLinkResult{
		Subdomain:       suggestion.Subdomain,
		Node:            suggestion.Node,
		TxHash:          subnodeTx,
		ContenthashTx:   receipt.TxHash,
		UsedNameWrapper: wrapped,
	}, nil
}

// createSubnode tries the name wrapper first. The registry path is taken
// only when the wrapper transaction was never broadcast; once a wrapper
// transaction exists its outcome is final.
func (c *Client) createSubnode(ctx context.Context, session *chain.Session, tx *chain.Transactor,
	parentNode ethcommon.Hash, label string, owner, resolver ethcommon.Address) (ethcommon.Hash, bool, error) {
	expiry := c.parentExpiry(ctx, session, parentNode)

	data, err := wrapperABI.Pack("setSubnodeRecord", parentNode, label, owner, resolver, uint64(0), uint32(0), expiry)
	if err != nil {
		return ethcommon.Hash{}, false, fmt.Errorf("pack wrapper setSubnodeRecord: %w", err)
	}

	hash, err := tx.Submit(ctx, chain.TxRequest{To: c.wrapper, Data: data})
	if err == nil {
		if _, err := tx.Confirm(ctx, hash); err != nil {
			return hash, true, fmt.Errorf("wrapper subnode tx: %w", err)
		}
		return hash, true, nil
	}
	c.log.Warn(ctx, "name wrapper subnode path failed, falling back to registry", "error", err)

	data, err = registryABI.Pack("setSubnodeRecord", parentNode, LabelHash(label), owner, resolver, uint64(0))
	if err != nil {
		return ethcommon.Hash{}, false, fmt.Errorf("pack registry setSubnodeRecord: %w", err)
	}

	receipt, err := tx.Execute(ctx, chain.TxRequest{To: c.registry, Data: data})
	if err != nil {
		return ethcommon.Hash{}, false, fmt.Errorf("registry subnode tx: %w", err)
	}
	return receipt.TxHash, false, nil
}

// parentExpiry reads the wrapped parent's expiry, defaulting to one year
// from now when it is unreadable or unset.
func (c *Client) parentExpiry(ctx context.Context, session *chain.Session, parentNode ethcommon.Hash) uint64 {
	fallback := uint64(c.now().Unix()) + common.SecondsPerYear

	values, err := call(ctx, session.Reader, c.wrapper, wrapperABI, "getData", new(big.Int).SetBytes(parentNode[:]))
	if err != nil {
		c.log.Debug(ctx, "wrapper getData failed, using default expiry", "error", err)
		return fallback
	}

	expiry, ok := values[2].(uint64)
	if !ok || expiry == 0 {
		return fallback
	}
	return expiry
}
