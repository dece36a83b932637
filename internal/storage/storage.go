package storage

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/DaniilDDDDD/Cloud-File-Storage/internal/config"
)

// ErrNotFound is returned by Get when no blob exists at the given path.
var ErrNotFound = errors.New("blob not found")

// Storage defines the interface for blob storage operations.
// Paths are opaque storage keys generated at upload time, never
// user-supplied filenames.
type Storage interface {
	// Put stores the blob bytes at the given path
	Put(ctx context.Context, path string, content io.Reader) error

	// Get returns a reader for the blob, or ErrNotFound
	Get(ctx context.Context, path string) (io.ReadCloser, error)

	// Delete removes the blob. A missing blob is not an error.
	Delete(ctx context.Context, path string) error
}

// New selects a storage backend from app config.
func New(cfg *config.Config) (Storage, error) {
	switch cfg.StorageDriver {
	case "s3":
		return NewS3Storage(S3Config{
			Region:    cfg.S3Region,
			Bucket:    cfg.S3Bucket,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
			Endpoint:  cfg.S3Endpoint,
			Timeout:   cfg.S3Timeout,
		})
	case "local":
		return NewLocalStorage(cfg.MediaDir), nil
	}
	return nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
}
