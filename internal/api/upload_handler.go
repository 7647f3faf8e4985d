package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/featherpress/featherpress/internal/services"
)

// UploadHandler handles file uploads and downloads
type UploadHandler struct {
	uploads *services.UploadService
}

// NewUploadHandler creates a new upload handler
func NewUploadHandler(uploads *services.UploadService) *UploadHandler {
	return &UploadHandler{uploads: uploads}
}

// Upload handles POST /upload (multipart form, field "file")
func (h *UploadHandler) Upload(c *gin.Context) {
	header, err := c.FormFile("file")
	if err != nil {
		badRequest(c, "missing file field")
		return
	}

	input := services.UploadInput{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
	}
	if desc := c.PostForm("description"); desc != "" {
		input.Description = &desc
	}
	if raw := c.PostForm("post_id"); raw != "" {
		postID, err := uuid.Parse(raw)
		if err != nil {
			badRequest(c, "invalid post_id")
			return
		}
		input.PostID = &postID
	}

	f, err := header.Open()
	if err != nil {
		respondError(c, err)
		return
	}
	defer f.Close()
	input.Body = f

	file, err := h.uploads.Upload(c.Request.Context(), callerIdentity(c), input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, file)
}

// List handles GET /upload
func (h *UploadHandler) List(c *gin.Context) {
	var postID *uuid.UUID
	if raw := c.Query("post_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			badRequest(c, "invalid post_id")
			return
		}
		postID = &id
	}

	files, err := h.uploads.List(c.Request.Context(), postID, intQuery(c, "offset", 0), intQuery(c, "limit", 0))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"files": files, "count": len(files)})
}

// Get handles GET /upload/:id
func (h *UploadHandler) Get(c *gin.Context) {
	fileID, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	file, err := h.uploads.Get(c.Request.Context(), fileID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, file)
}

// Download handles GET /upload/:id/download
func (h *UploadHandler) Download(c *gin.Context) {
	fileID, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	file, f, err := h.uploads.Open(c.Request.Context(), fileID)
	if err != nil {
		respondError(c, err)
		return
	}
	defer f.Close()

	contentType := "application/octet-stream"
	if file.FileType.Valid {
		contentType = file.FileType.String
	}
	c.Header("Content-Disposition", `attachment; filename="`+file.Filename+`"`)
	c.DataFromReader(http.StatusOK, file.FileSize.Int64, contentType, f, nil)
}

// Delete handles DELETE /upload/:id
func (h *UploadHandler) Delete(c *gin.Context) {
	fileID, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	if err := h.uploads.Delete(c.Request.Context(), callerIdentity(c), fileID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
