// filelinks.go implements handlers for bait file link CRUD. File links are
// the lures: shareable download URLs advertising documents that do not exist.
// The simulator generates download traffic against them, and the attack
// endpoint sweeps all of them in one scripted burst.
package admin

import (
	"database/sql"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/decoydrop/decoydrop/internal/db/models"
	"github.com/decoydrop/decoydrop/internal/db/repositories"
	"github.com/decoydrop/decoydrop/pkg/checksum"
)

// FileLinkHandlers handles bait file link management endpoints
type FileLinkHandlers struct {
	fileRepo *repositories.FileLinkRepository
}

// NewFileLinkHandlers creates a new FileLinkHandlers instance
func NewFileLinkHandlers(db *sql.DB) *FileLinkHandlers {
	return &FileLinkHandlers{
		fileRepo: repositories.NewFileLinkRepository(db),
	}
}

// @Summary      List bait file links
// @Tags         FileLinks
// @Security     Bearer
// @Produce      json
// @Param        page      query  int  false  "Page number (default 1)"
// @Param        per_page  query  int  false  "Items per page, max 100 (default 20)"
// @Success      200  {object}  map[string]interface{}  "file_links: []models.FileLink, pagination: map"
// @Router       /api/v1/file-links [get]
// ListFileLinksHandler lists bait file links with pagination
// GET /api/v1/file-links?page=1&per_page=20
func (h *FileLinkHandlers) ListFileLinksHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		page, perPage, offset := parsePagination(c)

		links, total, err := h.fileRepo.ListFileLinks(c.Request.Context(), perPage, offset)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Failed to list file links",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"file_links": links,
			"pagination": gin.H{
				"page":     page,
				"per_page": perPage,
				"total":    total,
			},
		})
	}
}

// @Summary      Get bait file link
// @Tags         FileLinks
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "File link ID"
// @Success      200  {object}  map[string]interface{}  "file_link: models.FileLink"
// @Failure      404  {object}  map[string]interface{}  "File link not found"
// @Router       /api/v1/file-links/{id} [get]
// GetFileLinkHandler retrieves a specific bait file link by ID
// GET /api/v1/file-links/:id
func (h *FileLinkHandlers) GetFileLinkHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		linkID := c.Param("id")

		link, err := h.fileRepo.GetFileLinkByID(c.Request.Context(), linkID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Failed to retrieve file link",
			})
			return
		}

		if link == nil {
			c.JSON(http.StatusNotFound, gin.H{
				"error": "File link not found",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{"file_link": link})
	}
}

// CreateFileLinkRequest represents the request to create a bait file link
type CreateFileLinkRequest struct {
	FileName  string     `json:"file_name" binding:"required"`
	SizeBytes int64      `json:"size_bytes" binding:"omitempty,min=1"`
	OwnerID   *string    `json:"owner_id"`
	ExpiresAt *time.Time `json:"expires_at"`
}

// @Summary      Create bait file link
// @Description  Create a new lure. The share token and checksum are fabricated server-side so the link looks like it came from a real upload pipeline.
// @Tags         FileLinks
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  CreateFileLinkRequest  true  "File link creation request"
// @Success      201  {object}  map[string]interface{}  "file_link: models.FileLink"
// @Failure      400  {object}  map[string]interface{}  "Invalid request"
// @Router       /api/v1/file-links [post]
// CreateFileLinkHandler creates a new bait file link
// POST /api/v1/file-links
func (h *FileLinkHandlers) CreateFileLinkHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CreateFileLinkRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Invalid request: " + err.Error(),
			})
			return
		}

		token := uuid.New().String()

		// The checksum covers the link's own identity, not file content —
		// there is no file. It just has to look plausible.
		sum, err := checksum.CalculateSHA256(strings.NewReader(req.FileName + ":" + token))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Failed to create file link",
			})
			return
		}

		sizeBytes := req.SizeBytes
		if sizeBytes == 0 {
			sizeBytes = 4096
		}
		expiresAt := time.Now().AddDate(0, 0, 30)
		if req.ExpiresAt != nil {
			expiresAt = *req.ExpiresAt
		}

		link := &models.FileLink{
			OwnerID:   req.OwnerID,
			FileName:  req.FileName,
			SizeBytes: sizeBytes,
			Checksum:  sum,
			Token:     token,
			ExpiresAt: expiresAt,
		}

		if err := h.fileRepo.CreateFileLink(c.Request.Context(), link); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Failed to create file link",
			})
			return
		}

		c.JSON(http.StatusCreated, gin.H{"file_link": link})
	}
}

// UpdateFileLinkRequest represents the request to update a bait file link.
// Owner and token are immutable after creation.
type UpdateFileLinkRequest struct {
	FileName  string     `json:"file_name" binding:"required"`
	SizeBytes int64      `json:"size_bytes" binding:"omitempty,min=1"`
	ExpiresAt *time.Time `json:"expires_at"`
}

// @Summary      Update bait file link
// @Tags         FileLinks
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                 true  "File link ID"
// @Param        body  body  UpdateFileLinkRequest  true  "File link update request"
// @Success      200  {object}  map[string]interface{}  "file_link: models.FileLink"
// @Failure      404  {object}  map[string]interface{}  "File link not found"
// @Router       /api/v1/file-links/{id} [put]
// UpdateFileLinkHandler updates a bait file link's metadata. The share token
// is immutable; rotating it would invalidate synthetic events already pointing
// at the link.
// PUT /api/v1/file-links/:id
func (h *FileLinkHandlers) UpdateFileLinkHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		linkID := c.Param("id")

		var req UpdateFileLinkRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Invalid request: " + err.Error(),
			})
			return
		}

		link, err := h.fileRepo.GetFileLinkByID(c.Request.Context(), linkID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Failed to retrieve file link",
			})
			return
		}
		if link == nil {
			c.JSON(http.StatusNotFound, gin.H{
				"error": "File link not found",
			})
			return
		}

		link.FileName = req.FileName
		if req.SizeBytes > 0 {
			link.SizeBytes = req.SizeBytes
		}
		if req.ExpiresAt != nil {
			link.ExpiresAt = *req.ExpiresAt
		}

		if err := h.fileRepo.UpdateFileLink(c.Request.Context(), link); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Failed to update file link",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{"file_link": link})
	}
}

// @Summary      Delete bait file link
// @Tags         FileLinks
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "File link ID"
// @Success      204  "Deleted"
// @Router       /api/v1/file-links/{id} [delete]
// DeleteFileLinkHandler removes a bait file link
// DELETE /api/v1/file-links/:id
func (h *FileLinkHandlers) DeleteFileLinkHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		linkID := c.Param("id")

		if err := h.fileRepo.DeleteFileLink(c.Request.Context(), linkID); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Failed to delete file link",
			})
			return
		}

		c.Status(http.StatusNoContent)
	}
}
