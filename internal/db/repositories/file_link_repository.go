// file_link_repository.go implements FileLinkRepository for bait file links: the CRUD
// surface used by the admin API plus the read-only samples the simulator attributes
// download events to.
package repositories

import (
	"context"
	"database/sql"
	"time"

	"github.com/decoydrop/decoydrop/internal/db/models"
	"github.com/google/uuid"
)

// FileLinkRepository handles file link database operations
type FileLinkRepository struct {
	db *sql.DB
}

// NewFileLinkRepository creates a new FileLinkRepository
func NewFileLinkRepository(db *sql.DB) *FileLinkRepository {
	return &FileLinkRepository{db: db}
}

const fileLinkColumns = `id, owner_id, file_name, size_bytes, checksum, token, expires_at, created_at, updated_at`

func scanFileLink(scanner interface{ Scan(...interface{}) error }) (*models.FileLink, error) {
	link := &models.FileLink{}
	err := scanner.Scan(
		&link.ID,
		&link.OwnerID,
		&link.FileName,
		&link.SizeBytes,
		&link.Checksum,
		&link.Token,
		&link.ExpiresAt,
		&link.CreatedAt,
		&link.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return link, nil
}

// CreateFileLink creates a new bait file link
func (r *FileLinkRepository) CreateFileLink(ctx context.Context, link *models.FileLink) error {
	if link.ID == "" {
		link.ID = uuid.New().String()
	}
	link.CreatedAt = time.Now()
	link.UpdatedAt = time.Now()

	query := `
		INSERT INTO file_links (id, owner_id, file_name, size_bytes, checksum, token, expires_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.db.ExecContext(ctx, query,
		link.ID,
		link.OwnerID,
		link.FileName,
		link.SizeBytes,
		link.Checksum,
		link.Token,
		link.ExpiresAt,
		link.CreatedAt,
		link.UpdatedAt,
	)

	return err
}

// GetFileLinkByID retrieves a file link by ID; a nil result means not found.
func (r *FileLinkRepository) GetFileLinkByID(ctx context.Context, linkID string) (*models.FileLink, error) {
	query := `SELECT ` + fileLinkColumns + ` FROM file_links WHERE id = $1`

	link, err := scanFileLink(r.db.QueryRowContext(ctx, query, linkID))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return link, nil
}

// GetFileLinkByToken retrieves a file link by its download token.
func (r *FileLinkRepository) GetFileLinkByToken(ctx context.Context, token string) (*models.FileLink, error) {
	query := `SELECT ` + fileLinkColumns + ` FROM file_links WHERE token = $1`

	link, err := scanFileLink(r.db.QueryRowContext(ctx, query, token))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return link, nil
}

// ListFileLinks retrieves file links newest first with pagination.
func (r *FileLinkRepository) ListFileLinks(ctx context.Context, limit, offset int) ([]*models.FileLink, int, error) {
	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM file_links`).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + fileLinkColumns + ` FROM file_links ORDER BY created_at DESC LIMIT $1 OFFSET $2`

	rows, err := r.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	links := make([]*models.FileLink, 0)
	for rows.Next() {
		link, err := scanFileLink(rows)
		if err != nil {
			return nil, 0, err
		}
		links = append(links, link)
	}

	return links, total, rows.Err()
}

// RecentFileLinks returns up to limit links, newest first. This is the
// simulator's reference-data sample.
func (r *FileLinkRepository) RecentFileLinks(ctx context.Context, limit int) ([]*models.FileLink, error) {
	query := `SELECT ` + fileLinkColumns + ` FROM file_links ORDER BY created_at DESC LIMIT $1`

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	links := make([]*models.FileLink, 0, limit)
	for rows.Next() {
		link, err := scanFileLink(rows)
		if err != nil {
			return nil, err
		}
		links = append(links, link)
	}

	return links, rows.Err()
}

// AllFileLinks returns every file link, used by attack injection to target the
// full bait set.
func (r *FileLinkRepository) AllFileLinks(ctx context.Context) ([]*models.FileLink, error) {
	query := `SELECT ` + fileLinkColumns + ` FROM file_links ORDER BY created_at`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	links := make([]*models.FileLink, 0)
	for rows.Next() {
		link, err := scanFileLink(rows)
		if err != nil {
			return nil, err
		}
		links = append(links, link)
	}

	return links, rows.Err()
}

// UpdateFileLink updates a link's name, size, and expiry.
func (r *FileLinkRepository) UpdateFileLink(ctx context.Context, link *models.FileLink) error {
	link.UpdatedAt = time.Now()

	query := `
		UPDATE file_links
		SET file_name = $2, size_bytes = $3, expires_at = $4, updated_at = $5
		WHERE id = $1
	`

	_, err := r.db.ExecContext(ctx, query, link.ID, link.FileName, link.SizeBytes, link.ExpiresAt, link.UpdatedAt)
	return err
}

// DeleteFileLink removes a link.
func (r *FileLinkRepository) DeleteFileLink(ctx context.Context, linkID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM file_links WHERE id = $1`, linkID)
	return err
}

// CountFileLinks returns the total number of bait file links.
func (r *FileLinkRepository) CountFileLinks(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM file_links`).Scan(&count)
	return count, err
}
