// Package storage uploads a file batch and its path manifest to an Irys
// bundler node, funding the node from the connected wallet first.
package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/permalink/internal/client/batch"
	"github.com/dmitrijs2005/permalink/internal/client/chain"
	"github.com/dmitrijs2005/permalink/internal/client/manifest"
	"github.com/dmitrijs2005/permalink/internal/client/models"
	"github.com/dmitrijs2005/permalink/internal/common"
	"github.com/dmitrijs2005/permalink/internal/logging"
)

// BundlerFactory binds a Bundler to a session.
type BundlerFactory func(s *chain.Session) Bundler

// ProgressFunc receives progress events. It is called synchronously.
type ProgressFunc func(models.UploadProgress)

type Service struct {
	newBundler    BundlerFactory
	bufferPercent int64
	log           logging.Logger
	now           func() time.Time
}

func NewService(newBundler BundlerFactory, bufferPercent int64, log logging.Logger) *Service {
	if log == nil {
		log = logging.Nop()
	}
	return &Service{
		newBundler:    newBundler,
		bufferPercent: bufferPercent,
		log:           log,
		now:           time.Now,
	}
}

// NewIrysService builds a Service backed by the Irys node at nodeURL.
func NewIrysService(nodeURL string, timeout time.Duration, bufferPercent int64, log logging.Logger) *Service {
	return NewService(func(s *chain.Session) Bundler {
		return NewIrysClient(nodeURL, timeout, s)
	}, bufferPercent, log)
}

// EstimateUploadCost quotes the batch and applies the funding buffer.
func (s *Service) EstimateUploadCost(ctx context.Context, session *chain.Session, files []models.File) (*models.CostEstimate, error) {
	if !session.Ready() {
		return nil, common.ErrNoSession
	}

	total := batch.TotalBytes(files)
	price, err := s.newBundler(session).Price(ctx, total)
	if err != nil {
		return nil, err
	}

	buffered, err := batch.BufferedFunding(price, s.bufferPercent)
	if err != nil {
		return nil, err
	}

	return &models.CostEstimate{
		PriceAtomic: price,
		Buffered:    buffered,
		TotalBytes:  total,
		Price:       batch.FormatEther(price),
	}, nil
}

// UploadBatch re-quotes, funds once, uploads files one at a time in order
// and finally uploads the manifest. Nothing is rolled back on failure.
func (s *Service) UploadBatch(ctx context.Context, session *chain.Session, files []models.File, progress ProgressFunc) (*models.UploadBatchResult, error) {
	if !session.Ready() {
		return nil, common.ErrNoSession
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("%w: no files selected for upload", common.ErrEmptyBatch)
	}
	if progress == nil {
		progress = func(models.UploadProgress) {}
	}

	b := s.newBundler(session)
	total := batch.TotalBytes(files)

	progress(models.UploadProgress{Stage: models.StageFunding, Current: 0, Total: len(files)})

	price, err := b.Price(ctx, total)
	if err != nil {
		return nil, err
	}
	amount, err := batch.BufferedFunding(price, s.bufferPercent)
	if err != nil {
		return nil, err
	}

	fund, err := b.Fund(ctx, amount)
	if err != nil {
		return nil, err
	}
	s.log.Info(ctx, "bundler funded", "tx", fund.TxHash, "wei", amount.String())

	ids := make([]string, 0, len(files))
	for i, f := range files {
		progress(models.UploadProgress{Stage: models.StageUploading, Current: i + 1, Total: len(files), FileName: f.Name})

		id, err := b.UploadFile(ctx, f)
		if err != nil {
			return nil, err
		}
		s.log.Debug(ctx, "file uploaded", "name", f.Name, "id", id)
		ids = append(ids, id)
	}

	progress(models.UploadProgress{Stage: models.StageManifest, Current: len(files), Total: len(files)})

	m, err := manifest.Build(files, ids)
	if err != nil {
		return nil, err
	}
	payload, err := m.Encode()
	if err != nil {
		return nil, err
	}

	manifestID, err := b.UploadBytes(ctx, payload, []Tag{{Name: "Content-Type", Value: manifest.ContentType}})
	if err != nil {
		return nil, fmt.Errorf("upload manifest: %w", err)
	}

	return &models.UploadBatchResult{
		FileIDs:     ids,
		ManifestID:  manifestID,
		TotalBytes:  total,
		FundedWei:   amount,
		FundingTx:   fund.TxHash,
		CompletedAt: s.now(),
	}, nil
}
