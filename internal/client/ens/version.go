package ens

import (
	"context"
	"fmt"

	ethcommon "github.com/ethereum/go-ethereum/common"

	"github.com/dmitrijs2005/permalink/internal/client/chain"
	"github.com/dmitrijs2005/permalink/internal/client/models"
	"github.com/dmitrijs2005/permalink/internal/common"
)

// MaxVersion is the highest vN label probed. The range is fixed.
const MaxVersion = 100

func VersionLabel(n int) string {
	return fmt.Sprintf("v%d", n)
}

// FindNextVersion returns the lowest vN under parent whose node has no
// owner. All probes go out in one batch; a probe that fails is counted as
// owned so an unreadable label is never suggested.
func (c *Client) FindNextVersion(ctx context.Context, session *chain.Session, parent string) (*models.EnsVersionSuggestion, error) {
	if !session.Ready() {
		return nil, common.ErrNoSession
	}

	parent = Normalize(parent)
	if !IsSupported(parent) {
		return nil, fmt.Errorf("%w: %q must be a valid .eth name", common.ErrInvalidName, parent)
	}

	suggestions := make([]models.EnsVersionSuggestion, MaxVersion)
	calls := make([]chain.Call, MaxVersion)
	for i := range calls {
		label := VersionLabel(i + 1)
		sub := label + "." + parent
		node := NameHash(sub)

		data, err := registryABI.Pack("owner", node)
		if err != nil {
			return nil, fmt.Errorf("pack owner: %w", err)
		}

		suggestions[i] = models.EnsVersionSuggestion{Label: label, Index: i + 1, Subdomain: sub, Node: node}
		calls[i] = chain.Call{To: c.registry, Data: data}
	}

	results, err := session.Reader.BatchCall(ctx, calls)
	if err != nil {
		return nil, fmt.Errorf("probe version owners: %w", err)
	}
	if len(results) != len(calls) {
		return nil, fmt.Errorf("probe version owners: got %d results for %d calls", len(results), len(calls))
	}

	for i, res := range results {
		if res.Err != nil {
			c.log.Debug(ctx, "version probe failed, treating as owned", "label", suggestions[i].Label, "error", res.Err)
			continue
		}

		owned, err := hasOwner(res.Data)
		if err != nil {
			c.log.Debug(ctx, "version probe unreadable, treating as owned", "label", suggestions[i].Label, "error", err)
			continue
		}
		if !owned {
			s := suggestions[i]
			return &s, nil
		}
	}

	return nil, common.ErrVersionsExhausted
}

// hasOwner decodes an owner(node) result. Empty return data means no owner.
func hasOwner(data []byte) (bool, error) {
	if len(data) == 0 {
		return false, nil
	}

	values, err := registryABI.Unpack("owner", data)
	if err != nil {
		return false, err
	}
	owner, ok := values[0].(ethcommon.Address)
	if !ok {
		return false, fmt.Errorf("unexpected owner type %T", values[0])
	}
	return owner != (ethcommon.Address{}), nil
}
