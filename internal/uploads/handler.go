// Package uploads accepts admin image uploads and stores them in object
// storage.
package uploads

import (
	"context"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/shareshine/backend/internal/middleware"
	"github.com/shareshine/backend/pkg/response"
	"github.com/shareshine/backend/pkg/storage"
)

// Uploader stores an object and hands back its public URL.
type Uploader interface {
	Upload(ctx context.Context, key, contentType string, body io.Reader, size int64) (string, error)
	PresignUpload(ctx context.Context, key, contentType string) (uploadURL, fileURL string, err error)
}

// PresignRequest is the body for a direct-upload URL.
type PresignRequest struct {
	Filename    string `json:"filename" binding:"required"`
	ContentType string `json:"content_type"`
	FileSize    int64  `json:"file_size"`
}

// Handler handles /api/integrations/upload.
type Handler struct {
	uploader Uploader
	logger   *zap.Logger
}

// NewHandler creates an upload handler. A nil uploader makes every upload
// answer 503.
func NewHandler(uploader Uploader, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{uploader: uploader, logger: logger}
}

// Register mounts the upload routes under rg.
func (h *Handler) Register(rg *gin.RouterGroup, admin ...gin.HandlerFunc) {
	g := rg.Group("/integrations/upload", admin...)
	g.POST("", h.Upload)
	g.POST("/presign", h.Presign)
}

// Upload handles POST /api/integrations/upload (multipart field "file").
func (h *Handler) Upload(c *gin.Context) {
	if h.uploader == nil {
		fail(c, http.StatusServiceUnavailable, "File uploads are not configured", nil)
		return
	}
	file, err := c.FormFile("file")
	if err != nil {
		fail(c, http.StatusBadRequest, "Missing required field: file", err)
		return
	}
	if file.Size > storage.MaxImageSize {
		fail(c, http.StatusBadRequest, "file size exceeds 10MB limit", nil)
		return
	}
	contentType, ext, ok := storage.ImageContentType(file.Header.Get("Content-Type"), file.Filename)
	if !ok {
		fail(c, http.StatusBadRequest, "invalid file type: only jpg, png, webp and gif images allowed", nil)
		return
	}

	f, err := file.Open()
	if err != nil {
		fail(c, http.StatusBadRequest, "could not read uploaded file", err)
		return
	}
	defer f.Close()

	key := storage.UploadKey(ext)
	url, err := h.uploader.Upload(c.Request.Context(), key, contentType, f, file.Size)
	if err != nil {
		h.logger.Error("upload failed", zap.Error(err), zap.String("key", key))
		fail(c, http.StatusInternalServerError, "Failed to upload file", err)
		return
	}
	h.logger.Info("file uploaded", zap.String("key", key), zap.Int64("size", file.Size))
	response.OK(c, gin.H{"file_url": url})
}

// Presign handles POST /api/integrations/upload/presign and returns a URL
// the browser can PUT the image to directly.
func (h *Handler) Presign(c *gin.Context) {
	if h.uploader == nil {
		fail(c, http.StatusServiceUnavailable, "File uploads are not configured", nil)
		return
	}
	var req PresignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "Missing required field: filename", err)
		return
	}
	if req.FileSize > storage.MaxImageSize {
		fail(c, http.StatusBadRequest, "file size exceeds 10MB limit", nil)
		return
	}
	contentType, ext, ok := storage.ImageContentType(req.ContentType, req.Filename)
	if !ok {
		fail(c, http.StatusBadRequest, "invalid file type: only jpg, png, webp and gif images allowed", nil)
		return
	}

	key := storage.UploadKey(ext)
	uploadURL, fileURL, err := h.uploader.PresignUpload(c.Request.Context(), key, contentType)
	if err != nil {
		h.logger.Error("presign upload failed", zap.Error(err), zap.String("key", key))
		fail(c, http.StatusInternalServerError, "Failed to prepare upload", err)
		return
	}
	response.OK(c, gin.H{
		"upload_url":   uploadURL,
		"file_url":     fileURL,
		"content_type": contentType,
	})
}

func fail(c *gin.Context, status int, msg string, err error) {
	c.Status(status)
	_ = c.Error(&middleware.HTTPError{Status: status, Message: msg, Err: err})
}
