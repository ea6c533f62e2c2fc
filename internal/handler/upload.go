package handler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/makkenzo/content-cms-api/internal/handler/dto"
	"github.com/makkenzo/content-cms-api/internal/ierr"
	"go.uber.org/zap"
)

const (
	uploadFormField = "file"
	// multipartOverhead leaves room for part headers and boundaries around the file itself.
	multipartOverhead = 64 << 10
)

// Uploader stores an object and returns the URL it is served from.
type Uploader interface {
	Upload(ctx context.Context, path string, data []byte, contentType string) (string, error)
}

type UploadHandler struct {
	store    Uploader
	maxBytes int64
	logger   *zap.Logger
}

func NewUploadHandler(store Uploader, maxBytes int64, logger *zap.Logger) *UploadHandler {
	return &UploadHandler{
		store:    store,
		maxBytes: maxBytes,
		logger:   logger.Named("UploadHandler"),
	}
}

// Upload accepts a single image in the multipart field "file" and stores it under the caller's
// prefix. The declared content type is ignored; the bytes decide.
func (h *UploadHandler) Upload(c *gin.Context) {
	p, err := principal(c)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxBytes+multipartOverhead)
	fh, err := c.FormFile(uploadFormField)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			_ = c.Error(fmt.Errorf("%w: file exceeds %d bytes", ierr.ErrValidation, h.maxBytes))
			return
		}
		_ = c.Error(fmt.Errorf("%w: multipart field %q is required", ierr.ErrValidation, uploadFormField))
		return
	}
	if fh.Size > h.maxBytes {
		_ = c.Error(fmt.Errorf("%w: file exceeds %d bytes", ierr.ErrValidation, h.maxBytes))
		return
	}

	f, err := fh.Open()
	if err != nil {
		_ = c.Error(fmt.Errorf("opening upload: %w", err))
		return
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, h.maxBytes+1))
	if err != nil {
		_ = c.Error(fmt.Errorf("reading upload: %w", err))
		return
	}
	if int64(len(data)) > h.maxBytes {
		_ = c.Error(fmt.Errorf("%w: file exceeds %d bytes", ierr.ErrValidation, h.maxBytes))
		return
	}

	mt := mimetype.Detect(data)
	if !strings.HasPrefix(mt.String(), "image/") {
		h.logger.Info("Rejected non-image upload", zap.String("detected", mt.String()))
		_ = c.Error(fmt.Errorf("%w: file must be an image", ierr.ErrValidation))
		return
	}

	path := fmt.Sprintf("%s/%s%s", p.OwnerID, uuid.New(), mt.Extension())
	url, err := h.store.Upload(c.Request.Context(), path, data, mt.String())
	if err != nil {
		_ = c.Error(err)
		return
	}

	h.logger.Info("Image uploaded", zap.String("path", path), zap.Int("bytes", len(data)))
	c.JSON(http.StatusOK, dto.UploadResponse{URL: url, Path: path})
}
