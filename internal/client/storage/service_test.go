package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/permalink/internal/client/chain"
	"github.com/dmitrijs2005/permalink/internal/client/manifest"
	"github.com/dmitrijs2005/permalink/internal/client/models"
	"github.com/dmitrijs2005/permalink/internal/common"
)

type fakeBundler struct {
	price      *big.Int
	priceErr   error
	fundErr    error
	failOnFile string

	events   []string
	funded   []*big.Int
	manifest []byte
	tags     []Tag
}

func (f *fakeBundler) Price(_ context.Context, n int64) (*big.Int, error) {
	f.events = append(f.events, fmt.Sprintf("price:%d", n))
	return f.price, f.priceErr
}

func (f *fakeBundler) Fund(_ context.Context, amount *big.Int) (FundReceipt, error) {
	f.events = append(f.events, "fund:"+amount.String())
	if f.fundErr != nil {
		return FundReceipt{}, f.fundErr
	}
	f.funded = append(f.funded, amount)
	return FundReceipt{TxHash: "0xfund", Amount: amount}, nil
}

func (f *fakeBundler) UploadFile(_ context.Context, file models.File) (string, error) {
	f.events = append(f.events, "file:"+file.Name)
	if file.Name == f.failOnFile {
		return "", errors.New("connection reset")
	}
	return "id-" + file.Name, nil
}

func (f *fakeBundler) UploadBytes(_ context.Context, payload []byte, tags []Tag) (string, error) {
	f.events = append(f.events, "bytes")
	f.manifest = payload
	f.tags = tags
	return "manifest-id", nil
}

func newTestService(t *testing.T, b *fakeBundler) (*Service, *chain.Session) {
	t.Helper()
	session, _ := testSession(t)
	svc := NewService(func(*chain.Session) Bundler { return b }, 5, nil)
	svc.now = func() time.Time { return time.Unix(1_700_000_000, 0) }
	return svc, session
}

func twoFiles() []models.File {
	return []models.File{
		models.NewFile("index.html", []byte("<html></html>")),
		models.NewFile("app.js", []byte("console.log(1)")),
	}
}

func TestService_EstimateUploadCost(t *testing.T) {
	b := &fakeBundler{price: big.NewInt(2_000_000_000_000_000)}
	svc, session := newTestService(t, b)

	est, err := svc.EstimateUploadCost(context.Background(), session, twoFiles())
	require.NoError(t, err)

	assert.Equal(t, int64(27), est.TotalBytes)
	assert.Equal(t, "2000000000000000", est.PriceAtomic.String())
	assert.Equal(t, "2100000000000000", est.Buffered.String())
	assert.Equal(t, "0.002", est.Price)
	assert.Equal(t, []string{"price:27"}, b.events)
}

func TestService_UploadBatchSequence(t *testing.T) {
	b := &fakeBundler{price: big.NewInt(100)}
	svc, session := newTestService(t, b)

	var progress []models.UploadProgress
	res, err := svc.UploadBatch(context.Background(), session, twoFiles(), func(p models.UploadProgress) {
		progress = append(progress, p)
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"price:27", "fund:105", "file:index.html", "file:app.js", "bytes"}, b.events)

	wantProgress := []models.UploadProgress{
		{Stage: models.StageFunding, Current: 0, Total: 2},
		{Stage: models.StageUploading, Current: 1, Total: 2, FileName: "index.html"},
		{Stage: models.StageUploading, Current: 2, Total: 2, FileName: "app.js"},
		{Stage: models.StageManifest, Current: 2, Total: 2},
	}
	if diff := cmp.Diff(wantProgress, progress); diff != "" {
		t.Errorf("progress mismatch (-want +got):\n%s", diff)
	}

	assert.Equal(t, []string{"id-index.html", "id-app.js"}, res.FileIDs)
	assert.Equal(t, "manifest-id", res.ManifestID)
	assert.Equal(t, int64(27), res.TotalBytes)
	assert.Equal(t, int64(105), res.FundedWei.Int64())
	assert.Equal(t, "0xfund", res.FundingTx)
	assert.Equal(t, time.Unix(1_700_000_000, 0), res.CompletedAt)

	assert.Equal(t, []Tag{{Name: "Content-Type", Value: manifest.ContentType}}, b.tags)
	var m manifest.Manifest
	require.NoError(t, json.Unmarshal(b.manifest, &m))
	assert.Equal(t, []string{"001-index.html", "002-app.js"}, m.Paths.Keys())
	entry, _ := m.Paths.Get("002-app.js")
	assert.Equal(t, "id-app.js", entry.ID)
}

func TestService_UploadFailureStopsWithoutManifest(t *testing.T) {
	b := &fakeBundler{price: big.NewInt(100), failOnFile: "app.js"}
	svc, session := newTestService(t, b)

	_, err := svc.UploadBatch(context.Background(), session, twoFiles(), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection reset")
	assert.Equal(t, []string{"price:27", "fund:105", "file:index.html", "file:app.js"}, b.events)
	assert.Len(t, b.funded, 1)
}

func TestService_FundFailureUploadsNothing(t *testing.T) {
	b := &fakeBundler{price: big.NewInt(100), fundErr: errors.New("user rejected")}
	svc, session := newTestService(t, b)

	_, err := svc.UploadBatch(context.Background(), session, twoFiles(), nil)
	require.Error(t, err)
	assert.Equal(t, []string{"price:27", "fund:105"}, b.events)
}

func TestService_Preconditions(t *testing.T) {
	b := &fakeBundler{price: big.NewInt(1)}
	svc, session := newTestService(t, b)

	_, err := svc.UploadBatch(context.Background(), &chain.Session{}, twoFiles(), nil)
	assert.True(t, errors.Is(err, common.ErrNoSession))

	_, err = svc.EstimateUploadCost(context.Background(), nil, twoFiles())
	assert.True(t, errors.Is(err, common.ErrNoSession))

	_, err = svc.UploadBatch(context.Background(), session, nil, nil)
	assert.True(t, errors.Is(err, common.ErrEmptyBatch))

	assert.Empty(t, b.events)
}
