package service

import (
	"context"
	"os"

	"github.com/mdobak/go-xerrors"

	"blog-api/internal/storage"
)

// uploadLocalImage pushes the file at localPath to the media host under a
// fresh storage id. The local file is removed before returning, whatever the outcome.
func uploadLocalImage(ctx context.Context, media storage.Service, localPath, contentType string) (*storage.Asset, error) {
	defer removeLocalFile(localPath)

	asset, err := media.Upload(ctx, localPath, storage.UploadOptions{
		StorageID:   storage.NewStorageID(),
		ContentType: contentType,
	})
	if err != nil {
		return nil, xerrors.Newf("%w: %v", ErrUploadFailed, err)
	}
	if asset == nil || asset.URL == "" {
		return nil, xerrors.New(ErrUploadFailed)
	}
	return asset, nil
}

func removeLocalFile(path string) {
	if path != "" {
		_ = os.Remove(path)
	}
}
