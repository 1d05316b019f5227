package journal

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/dmitrijs2005/permalink/internal/client/models"
	"github.com/dmitrijs2005/permalink/internal/dbx"
)

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) SaveUpload(ctx context.Context, rec models.UploadRecord) error {
	return dbx.WithTx(ctx, r.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO uploads (id, network, manifest_id, total_bytes, funded_wei, funding_tx, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`, rec.ID, rec.Network, rec.ManifestID, rec.TotalBytes, rec.FundedWei, rec.FundingTx, rec.CreatedAt.UnixMilli())
		if err != nil {
			return fmt.Errorf("failed to insert upload %s: %w", rec.ID, err)
		}

		for _, f := range rec.Files {
			_, err := tx.ExecContext(ctx, `
				INSERT INTO upload_files (upload_id, position, name, content_id) VALUES (?, ?, ?, ?)
			`, rec.ID, f.Position, f.Name, f.ContentID)
			if err != nil {
				return fmt.Errorf("failed to insert upload file %d: %w", f.Position, err)
			}
		}
		return nil
	})
}

func (r *SQLiteRepository) SaveLink(ctx context.Context, rec models.LinkRecord) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO links (id, upload_id, subdomain, node, subnode_tx, contenthash_tx, name_wrapper, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, rec.ID, rec.UploadID, rec.Subdomain, rec.Node, rec.SubnodeTx, rec.ContenthashTx, rec.NameWrapper, rec.CreatedAt.UnixMilli())
	if err != nil {
		return fmt.Errorf("failed to insert link %s: %w", rec.Subdomain, err)
	}
	return nil
}

func (r *SQLiteRepository) ListUploads(ctx context.Context, limit int) ([]models.UploadRecord, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, network, manifest_id, total_bytes, funded_wei, funding_tx, created_at
		FROM uploads ORDER BY created_at DESC, id LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list uploads: %w", err)
	}
	defer rows.Close()

	var out []models.UploadRecord
	for rows.Next() {
		var rec models.UploadRecord
		var created int64
		if err := rows.Scan(&rec.ID, &rec.Network, &rec.ManifestID, &rec.TotalBytes, &rec.FundedWei, &rec.FundingTx, &created); err != nil {
			return nil, fmt.Errorf("failed to scan upload row: %w", err)
		}
		rec.CreatedAt = time.UnixMilli(created)
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate upload rows: %w", err)
	}

	for i := range out {
		files, err := r.files(ctx, out[i].ID)
		if err != nil {
			return nil, err
		}
		out[i].Files = files
	}
	return out, nil
}

func (r *SQLiteRepository) files(ctx context.Context, uploadID string) ([]models.FileRecord, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT position, name, content_id FROM upload_files WHERE upload_id = ? ORDER BY position
	`, uploadID)
	if err != nil {
		return nil, fmt.Errorf("failed to list files of %s: %w", uploadID, err)
	}
	defer rows.Close()

	var out []models.FileRecord
	for rows.Next() {
		var f models.FileRecord
		if err := rows.Scan(&f.Position, &f.Name, &f.ContentID); err != nil {
			return nil, fmt.Errorf("failed to scan file row: %w", err)
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) ListLinks(ctx context.Context, uploadID string) ([]models.LinkRecord, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, upload_id, subdomain, node, subnode_tx, contenthash_tx, name_wrapper, created_at
		FROM links WHERE upload_id = ? ORDER BY created_at, id
	`, uploadID)
	if err != nil {
		return nil, fmt.Errorf("failed to list links: %w", err)
	}
	defer rows.Close()

	var out []models.LinkRecord
	for rows.Next() {
		var rec models.LinkRecord
		var created int64
		if err := rows.Scan(&rec.ID, &rec.UploadID, &rec.Subdomain, &rec.Node, &rec.SubnodeTx, &rec.ContenthashTx, &rec.NameWrapper, &created); err != nil {
			return nil, fmt.Errorf("failed to scan link row: %w", err)
		}
		rec.CreatedAt = time.UnixMilli(created)
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate link rows: %w", err)
	}
	return out, nil
}
