package ens

import (
	"context"
	"errors"
	"testing"

	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/permalink/internal/client/models"
	"github.com/dmitrijs2005/permalink/internal/common"
)

func linkFixture() (*fakeChain, models.EnsLinkRequest) {
	f := newFakeChain()
	f.resolvers[NameHash("demo.eth")] = f.resolver
	f.ownVersions("demo.eth", 2)
	return f, models.EnsLinkRequest{ParentName: "demo.eth", ManifestID: validID(), Owner: f.account}
}

func methods(txs []sentTx) []string {
	out := make([]string, 0, len(txs))
	for _, tx := range txs {
		out = append(out, tx.method)
	}
	return out
}

func TestLinkManifest_WrapperPath(t *testing.T) {
	f, req := linkFixture()
	f.expiries[NameHash("demo.eth")] = 1_900_000_000

	res, err := newTestClient(f).LinkManifest(context.Background(), f.session(), req)
	require.NoError(t, err)

	assert.Equal(t, "v3.demo.eth", res.Subdomain)
	assert.Equal(t, NameHash("v3.demo.eth"), res.Node)
	assert.True(t, res.UsedNameWrapper)
	assert.Equal(t, ethcommon.BigToHash(ethcommon.Big1), res.TxHash)
	assert.Equal(t, ethcommon.BigToHash(ethcommon.Big2), res.ContenthashTx)

	require.Len(t, f.sent, 2)
	wrap := f.sent[0]
	assert.Equal(t, f.net.NameWrapper, wrap.to)
	assert.Equal(t, "setSubnodeRecord", wrap.method)
	assert.Equal(t, NameHash("demo.eth"), hashArg(wrap.args[0]))
	assert.Equal(t, "v3", wrap.args[1])
	assert.Equal(t, f.account, wrap.args[2])
	assert.Equal(t, f.resolver, wrap.args[3])
	assert.Equal(t, uint64(0), wrap.args[4])
	assert.Equal(t, uint32(0), wrap.args[5])
	assert.Equal(t, uint64(1_900_000_000), wrap.args[6])

	set := f.sent[1]
	assert.Equal(t, f.resolver, set.to)
	assert.Equal(t, "setContenthash", set.method)
	assert.Equal(t, NameHash("v3.demo.eth"), hashArg(set.args[0]))

	stored, err := newTestClient(f).Contenthash(context.Background(), f, "v3.demo.eth")
	require.NoError(t, err)
	id, err := DecodeArweaveContenthash(stored)
	require.NoError(t, err)
	assert.Equal(t, req.ManifestID, id)

	// every write was simulated before it was sent
	assert.Equal(t, []string{"setSubnodeRecord", "setContenthash"}, methods(f.simulated))
}

func TestLinkManifest_DefaultExpiry(t *testing.T) {
	f, req := linkFixture()

	_, err := newTestClient(f).LinkManifest(context.Background(), f.session(), req)
	require.NoError(t, err)

	require.NotEmpty(t, f.sent)
	assert.Equal(t, uint64(1_700_000_000+common.SecondsPerYear), f.sent[0].args[6])
}

func TestLinkManifest_FallsBackWhenWrapperSimulationFails(t *testing.T) {
	f, req := linkFixture()
	f.simulateErr[f.net.NameWrapper] = errors.New("execution reverted: Unauthorised")

	res, err := newTestClient(f).LinkManifest(context.Background(), f.session(), req)
	require.NoError(t, err)
	assert.False(t, res.UsedNameWrapper)

	require.Len(t, f.sent, 2)
	reg := f.sent[0]
	assert.Equal(t, f.net.Registry, reg.to)
	assert.Equal(t, "setSubnodeRecord", reg.method)
	assert.Equal(t, LabelHash("v3"), hashArg(reg.args[1]))
	assert.Equal(t, uint64(0), reg.args[4])
	assert.Equal(t, f.account, f.owners[NameHash("v3.demo.eth")])
}

func TestLinkManifest_NoFallbackAfterWrapperBroadcast(t *testing.T) {
	f, req := linkFixture()
	f.revertedTx[1] = true

	_, err := newTestClient(f).LinkManifest(context.Background(), f.session(), req)
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrTxReverted))

	require.Len(t, f.sent, 1)
	assert.Equal(t, f.net.NameWrapper, f.sent[0].to)
}

func TestLinkManifest_ContenthashFailureLeavesSubnode(t *testing.T) {
	f, req := linkFixture()
	f.simulateErr[f.resolver] = errors.New("execution reverted: not authorised")

	_, err := newTestClient(f).LinkManifest(context.Background(), f.session(), req)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "v3.demo.eth")

	assert.Equal(t, []string{"setSubnodeRecord"}, methods(f.sent))
	assert.Equal(t, f.net.NameWrapper, f.owners[NameHash("v3.demo.eth")])
}

func TestLinkManifest_NoResolver(t *testing.T) {
	f, req := linkFixture()
	delete(f.resolvers, NameHash("demo.eth"))

	_, err := newTestClient(f).LinkManifest(context.Background(), f.session(), req)
	assert.True(t, errors.Is(err, common.ErrNoResolver))
	assert.Empty(t, f.sent)
	assert.Zero(t, f.batches)
}

func TestLinkManifest_Preconditions(t *testing.T) {
	f, req := linkFixture()

	bad := req
	bad.ParentName = "demo.com"
	_, err := newTestClient(f).LinkManifest(context.Background(), f.session(), bad)
	assert.True(t, errors.Is(err, common.ErrInvalidName))

	bad = req
	bad.ManifestID = "tx-1"
	_, err = newTestClient(f).LinkManifest(context.Background(), f.session(), bad)
	assert.True(t, errors.Is(err, common.ErrInvalidContentID))

	assert.Empty(t, f.sent)
}

func TestLinkManifest_VersionsRecomputedEachCall(t *testing.T) {
	f, req := linkFixture()
	c := newTestClient(f)

	first, err := c.LinkManifest(context.Background(), f.session(), req)
	require.NoError(t, err)
	second, err := c.LinkManifest(context.Background(), f.session(), req)
	require.NoError(t, err)

	assert.Equal(t, "v3.demo.eth", first.Subdomain)
	assert.Equal(t, "v4.demo.eth", second.Subdomain)
}
