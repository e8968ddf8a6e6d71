// Package storage holds the blob stores backing file uploads.
package storage

import (
	"context"
	"fmt"
	"io"

	"github.com/nnptud/lms-backend/internal/config"
	"github.com/rs/zerolog"
)

// BlobStore persists uploaded objects and returns the URL clients fetch them from.
type BlobStore interface {
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) (string, error)
}

// New builds the store selected by STORAGE_DRIVER.
func New(cfg *config.Config, log zerolog.Logger) (BlobStore, error) {
	switch cfg.StorageDriver {
	case config.StorageDriverLocal, "":
		return NewLocalStore(cfg.UploadDir, "/uploads"), nil
	case config.StorageDriverMinIO:
		return NewMinIOStore(MinIOOptions{
			Endpoint:  cfg.MinIOEndpoint,
			AccessKey: cfg.MinIOAccessKey,
			SecretKey: cfg.MinIOSecretKey,
			Bucket:    cfg.MinIOBucket,
			UseSSL:    cfg.MinIOUseSSL,
			PublicURL: cfg.MinIOPublicURL,
		}, log)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
	}
}
