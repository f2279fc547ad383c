package storage

import (
	"context"
	"fmt"

	"github.com/jonathan/talenttrek/internal/config"
)

// New builds the Store selected by the uploads configuration.
func New(ctx context.Context, cfg config.UploadsConfig) (Store, error) {
	switch cfg.Backend {
	case config.UploadBackendLocal, "":
		return NewLocalStore(cfg.Dir, cfg.PublicPrefix, cfg.MaxBytes)
	case config.UploadBackendS3:
		return NewS3Store(ctx, S3Options{
			Bucket:    cfg.S3Bucket,
			Region:    cfg.S3Region,
			Endpoint:  cfg.S3Endpoint,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
			PublicURL: cfg.S3PublicURL,
			MaxBytes:  cfg.MaxBytes,
		})
	default:
		return nil, fmt.Errorf("unknown upload backend %q", cfg.Backend)
	}
}
