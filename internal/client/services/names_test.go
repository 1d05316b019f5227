package services

import (
	"bytes"
	"context"
	"encoding/base64"
	"testing"

	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/permalink/internal/client/chain"
	"github.com/dmitrijs2005/permalink/internal/client/ens"
	"github.com/dmitrijs2005/permalink/internal/client/models"
	"github.com/dmitrijs2005/permalink/internal/common"
)

type fakeFinder struct {
	record  []byte
	names   []models.EnsNameCandidate
	owners  []ethcommon.Address
	parents []string
}

func (f *fakeFinder) DiscoverNames(_ context.Context, _ *chain.Session, owner ethcommon.Address) []models.EnsNameCandidate {
	f.owners = append(f.owners, owner)
	return f.names
}

func (f *fakeFinder) FindNextVersion(_ context.Context, _ *chain.Session, parent string) (*models.EnsVersionSuggestion, error) {
	f.parents = append(f.parents, parent)
	return &models.EnsVersionSuggestion{Label: "v1", Index: 1, Subdomain: "v1." + parent}, nil
}

func (f *fakeFinder) Contenthash(context.Context, chain.Reader, string) ([]byte, error) {
	return f.record, nil
}

func TestNameService_Refresh(t *testing.T) {
	finder := &fakeFinder{names: []models.EnsNameCandidate{
		{Name: "alice.eth", Source: models.SourceReverse},
		{Name: "demo.eth", Source: models.SourceSubgraph},
	}}
	svc := NewNameService(finder)

	got := svc.Refresh(context.Background(), readySession())
	require.Len(t, got, 2)
	assert.Equal(t, got, svc.Names())
	assert.Equal(t, []ethcommon.Address{owner}, finder.owners)
	assert.False(t, svc.Loading())
}

func TestNameService_RefreshWithoutSessionClears(t *testing.T) {
	finder := &fakeFinder{names: []models.EnsNameCandidate{{Name: "alice.eth"}}}
	svc := NewNameService(finder)

	svc.Refresh(context.Background(), readySession())
	require.Len(t, svc.Names(), 1)

	assert.Empty(t, svc.Refresh(context.Background(), nil))
	assert.Empty(t, svc.Names())
	assert.Len(t, finder.owners, 1)
}

func TestNameService_NextVersionIsNotCached(t *testing.T) {
	finder := &fakeFinder{}
	svc := NewNameService(finder)

	for range 2 {
		s, err := svc.NextVersion(context.Background(), readySession(), "demo.eth")
		require.NoError(t, err)
		assert.Equal(t, "v1.demo.eth", s.Subdomain)
	}
	assert.Equal(t, []string{"demo.eth", "demo.eth"}, finder.parents)
}

func TestNameService_Resolve(t *testing.T) {
	id := base64.RawURLEncoding.EncodeToString(bytes.Repeat([]byte{7}, 32))
	record, err := ens.EncodeArweaveContenthash(id)
	require.NoError(t, err)

	svc := NewNameService(&fakeFinder{record: record})
	got, err := svc.Resolve(context.Background(), readySession(), "v1.demo.eth")
	require.NoError(t, err)
	assert.Equal(t, id, got)

	got, err = NewNameService(&fakeFinder{}).Resolve(context.Background(), readySession(), "v1.demo.eth")
	require.NoError(t, err)
	assert.Empty(t, got)

	_, err = svc.Resolve(context.Background(), readySession(), "demo.com")
	require.ErrorIs(t, err, common.ErrInvalidName)

	_, err = svc.Resolve(context.Background(), nil, "v1.demo.eth")
	require.ErrorIs(t, err, common.ErrNoSession)
}
