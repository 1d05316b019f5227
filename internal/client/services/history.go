package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/dmitrijs2005/permalink/internal/client/models"
	"github.com/dmitrijs2005/permalink/internal/client/repositories/journal"
)

// HistoryService records completed uploads and links in the local journal
// and lists them back for display. Nothing in the upload path reads it.
type HistoryService interface {
	// RecordUpload stores result and returns the generated journal id.
	RecordUpload(ctx context.Context, result *models.UploadBatchResult, files []models.File) (string, error)
	RecordLink(ctx context.Context, uploadID string, result *models.EnsLinkResult) error
	Uploads(ctx context.Context, limit int) ([]models.UploadRecord, error)
	Links(ctx context.Context, uploadID string) ([]models.LinkRecord, error)
}

type historyService struct {
	repo    journal.Repository
	network string
	now     func() time.Time
}

// NewHistoryService returns a HistoryService that tags records with network.
func NewHistoryService(repo journal.Repository, network string) HistoryService {
	return &historyService{repo: repo, network: network, now: time.Now}
}

func (h *historyService) RecordUpload(ctx context.Context, result *models.UploadBatchResult, files []models.File) (string, error) {
	if result == nil {
		return "", fmt.Errorf("record upload: nil result")
	}
	if len(files) != len(result.FileIDs) {
		return "", fmt.Errorf("record upload: %d files for %d ids", len(files), len(result.FileIDs))
	}

	rec := models.UploadRecord{
		ID:         uuid.NewString(),
		Network:    h.network,
		ManifestID: result.ManifestID,
		TotalBytes: result.TotalBytes,
		FundingTx:  result.FundingTx,
		CreatedAt:  result.CompletedAt,
		Files: lo.Map(files, func(f models.File, i int) models.FileRecord {
			return models.FileRecord{Position: i, Name: f.Name, ContentID: result.FileIDs[i]}
		}),
	}
	if result.FundedWei != nil {
		rec.FundedWei = result.FundedWei.String()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = h.now()
	}

	if err := h.repo.SaveUpload(ctx, rec); err != nil {
		return "", fmt.Errorf("record upload: %w", err)
	}
	return rec.ID, nil
}

func (h *historyService) RecordLink(ctx context.Context, uploadID string, result *models.EnsLinkResult) error {
	if result == nil {
		return fmt.Errorf("record link: nil result")
	}
	rec := models.LinkRecord{
		ID:            uuid.NewString(),
		UploadID:      uploadID,
		Subdomain:     result.Subdomain,
		Node:          result.Node.Hex(),
		SubnodeTx:     result.TxHash.Hex(),
		ContenthashTx: result.ContenthashTx.Hex(),
		NameWrapper:   result.UsedNameWrapper,
		CreatedAt:     h.now(),
	}
	if err := h.repo.SaveLink(ctx, rec); err != nil {
		return fmt.Errorf("record link: %w", err)
	}
	return nil
}

func (h *historyService) Uploads(ctx context.Context, limit int) ([]models.UploadRecord, error) {
	return h.repo.ListUploads(ctx, limit)
}

func (h *historyService) Links(ctx context.Context, uploadID string) ([]models.LinkRecord, error) {
	return h.repo.ListLinks(ctx, uploadID)
}
