package config

import (
	"context"

	"task-marketplace.com/task-marketplace/internal/storage"
)

func NewStorage(ctx context.Context, cfg StorageConfig) (storage.Storage, error) {
	if cfg.StorageType == "s3" {
		return storage.NewS3Storage(ctx, cfg.S3Bucket, cfg.S3Prefix, cfg.S3Region)
	}
	return storage.NewLocalStorage(cfg.StorageBaseDir, cfg.StoragePublicURL)
}
