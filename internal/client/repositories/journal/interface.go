package journal

import (
	"context"

	"github.com/dmitrijs2005/permalink/internal/client/models"
)

type Repository interface {
	SaveUpload(ctx context.Context, rec models.UploadRecord) error
	SaveLink(ctx context.Context, rec models.LinkRecord) error
	// ListUploads returns the newest uploads first, each with its files.
	ListUploads(ctx context.Context, limit int) ([]models.UploadRecord, error)
	ListLinks(ctx context.Context, uploadID string) ([]models.LinkRecord, error)
}
