// Package storagetest provides an in-process media service for tests.
package storagetest

import (
	"context"
	"errors"
	"os"
	"sync"

	"blog-api/internal/storage"
)

// Fake records uploads and deletions instead of talking to a media host.
type Fake struct {
	mu        sync.Mutex
	objects   map[string][]byte
	deleted   []string
	UploadErr error
	DeleteErr error
	// EmptyURL makes uploads succeed without returning a URL.
	EmptyURL bool
}

func NewFake() *Fake {
	return &Fake{objects: make(map[string][]byte)}
}

var _ storage.Service = (*Fake)(nil)

func (f *Fake) Upload(ctx context.Context, localPath string, opts storage.UploadOptions) (*storage.Asset, error) {
	if f.UploadErr != nil {
		return nil, f.UploadErr
	}
	if opts.StorageID == "" {
		return nil, storage.ErrEmptyStorageID
	}
	data, err := os.ReadFile(localPath)
	if err != nil {
		return nil, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[opts.StorageID] = data
	if f.EmptyURL {
		return &storage.Asset{StorageID: opts.StorageID}, nil
	}
	return &storage.Asset{
		URL:       "https://media.test/" + opts.StorageID,
		StorageID: opts.StorageID,
	}, nil
}

func (f *Fake) Delete(ctx context.Context, storageID string) error {
	if f.DeleteErr != nil {
		return f.DeleteErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.objects[storageID]; !ok {
		return errors.New("object not found")
	}
	delete(f.objects, storageID)
	f.deleted = append(f.deleted, storageID)
	return nil
}

// Has reports whether storageID is currently stored.
func (f *Fake) Has(storageID string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.objects[storageID]
	return ok
}

// Count returns the number of stored objects.
func (f *Fake) Count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.objects)
}

// Deleted returns the ids removed so far, in order.
func (f *Fake) Deleted() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.deleted...)
}
