package storage

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
)

// ErrEmptyStorageID is returned when an upload or delete names no object.
var ErrEmptyStorageID = errors.New("storage id is required")

// UploadOptions conveys upload destination metadata.
type UploadOptions struct {
	StorageID   string
	ContentType string
}

// Asset is a stored media object.
type Asset struct {
	URL       string
	StorageID string
}

// Service stores and removes image blobs on the media host.
type Service interface {
	Upload(ctx context.Context, localPath string, opts UploadOptions) (*Asset, error)
	Delete(ctx context.Context, storageID string) error
}

// NewStorageID returns a fresh opaque identifier for a media object.
func NewStorageID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}
