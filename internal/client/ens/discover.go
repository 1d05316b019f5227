package ens

import (
	"context"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"

	"github.com/dmitrijs2005/permalink/internal/client/chain"
	"github.com/dmitrijs2005/permalink/internal/client/models"
)

const subgraphQuery = `query AccountNames($id: ID!) {
  account(id: $id) {
    domains(first: 50) { name }
    registrations(first: 50) { domain { name } }
  }
}`

// DiscoverNames collects parent names the owner may link under from the
// reverse record and the index service. The channels run concurrently and
// a failing channel only loses its own names. The reverse record wins on
// duplicates.
func (c *Client) DiscoverNames(ctx context.Context, session *chain.Session, owner common.Address) []models.EnsNameCandidate {
	var reverse, indexed []models.EnsNameCandidate

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		name, err := c.ReverseName(gctx, session.Reader, owner)
		if err != nil {
			c.log.Warn(gctx, "reverse name lookup failed", "address", owner.Hex(), "error", err)
			return nil
		}
		if name != "" {
			reverse = []models.EnsNameCandidate{{Name: name, Source: models.SourceReverse}}
		}
		return nil
	})
	g.Go(func() error {
		if c.subgraph == nil {
			return nil
		}
		names, err := c.subgraphNames(gctx, owner)
		if err != nil {
			c.log.Warn(gctx, "subgraph name lookup failed", "address", owner.Hex(), "error", err)
			return nil
		}
		indexed = lo.Map(names, func(n string, _ int) models.EnsNameCandidate {
			return models.EnsNameCandidate{Name: n, Source: models.SourceSubgraph}
		})
		return nil
	})
	_ = g.Wait()

	return lo.UniqBy(append(reverse, indexed...), func(c models.EnsNameCandidate) string { return c.Name })
}

// ReverseName returns the primary name of addr if it resolves back to addr.
func (c *Client) ReverseName(ctx context.Context, r chain.Reader, addr common.Address) (string, error) {
	node := NameHash(strings.ToLower(addr.Hex()[2:]) + ".addr.reverse")

	resolver, err := c.Resolver(ctx, r, node)
	if err != nil {
		return "", err
	}
	if resolver == (common.Address{}) {
		return "", nil
	}

	values, err := call(ctx, r, resolver, resolverABI, "name", node)
	if err != nil {
		return "", err
	}
	name, _ := values[0].(string)
	name = Normalize(name)
	if !IsSupported(name) {
		return "", nil
	}

	// forward check: the claimed name must resolve to addr
	forwardNode := NameHash(name)
	forwardResolver, err := c.Resolver(ctx, r, forwardNode)
	if err != nil {
		return "", err
	}
	if forwardResolver == (common.Address{}) {
		return "", nil
	}
	resolved, err := callAddress(ctx, r, forwardResolver, resolverABI, "addr", forwardNode)
	if err != nil {
		return "", err
	}
	if resolved != addr {
		return "", nil
	}
	return name, nil
}

type subgraphRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables"`
}

type subgraphResponse struct {
	Data struct {
		Account *struct {
			Domains []struct {
				Name string `json:"name"`
			} `json:"domains"`
			Registrations []struct {
				Domain *struct {
					Name string `json:"name"`
				} `json:"domain"`
			} `json:"registrations"`
		} `json:"account"`
	} `json:"data"`
	Errors []graphError `json:"errors"`
}

type graphError struct {
	Message string `json:"message"`
}

func (c *Client) subgraphNames(ctx context.Context, owner common.Address) ([]string, error) {
	req := subgraphRequest{
		Query:     subgraphQuery,
		Variables: map[string]any{"id": strings.ToLower(owner.Hex())},
	}

	var resp subgraphResponse
	if err := c.subgraph.PostJSON(ctx, "", req, &resp); err != nil {
		return nil, err
	}
	if len(resp.Errors) > 0 {
		msgs := lo.Map(resp.Errors, func(e graphError, _ int) string { return e.Message })
		return nil, fmt.Errorf("subgraph: %s", strings.Join(msgs, "; "))
	}

	account := resp.Data.Account
	if account == nil {
		return nil, nil
	}

	var raw []string
	for _, d := range account.Domains {
		raw = append(raw, d.Name)
	}
	for _, reg := range account.Registrations {
		if reg.Domain != nil {
			raw = append(raw, reg.Domain.Name)
		}
	}

	supported := lo.Filter(raw, func(n string, _ int) bool { return IsSupported(n) })
	return lo.Uniq(lo.Map(supported, func(n string, _ int) string { return Normalize(n) })), nil
}
