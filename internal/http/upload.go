package http

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gin-gonic/gin"

	"blog-api/internal/storage"
)

// saveUploadedImage stores the multipart file in field under the temp dir and
// returns its path and sniffed content type. A missing file yields an empty path.
func (h *Handler) saveUploadedImage(c *gin.Context, field string) (string, string, error) {
	header, err := c.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return "", "", nil
		}
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return "", "", ErrPayloadTooLarge
		}
		return "", "", &APIError{Status: http.StatusBadRequest, Message: ErrMalformedBody.Error(), Err: err}
	}
	if h.opts.MaxUploadSize > 0 && header.Size > h.opts.MaxUploadSize {
		return "", "", ErrPayloadTooLarge
	}

	if err := os.MkdirAll(h.opts.UploadDir, 0o755); err != nil {
		return "", "", fmt.Errorf("create upload dir: %w", err)
	}
	path := filepath.Join(h.opts.UploadDir, storage.NewStorageID()+strings.ToLower(filepath.Ext(header.Filename)))
	if err := c.SaveUploadedFile(header, path); err != nil {
		return "", "", fmt.Errorf("save upload: %w", err)
	}

	mtype, err := mimetype.DetectFile(path)
	if err != nil {
		os.Remove(path)
		return "", "", fmt.Errorf("detect upload type: %w", err)
	}
	if !strings.HasPrefix(mtype.String(), "image/") {
		os.Remove(path)
		return "", "", ErrNotAnImage
	}
	return path, mtype.String(), nil
}
