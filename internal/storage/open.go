package storage

import (
	"fmt"

	"github.com/andresuchdata/wenku/backend-go/internal/config"
)

const (
	DriverS3    = "s3"
	DriverLocal = "local"
)

// Open builds the object store selected by cfg.Driver.
func Open(cfg config.StorageConfig) (ObjectStore, error) {
	switch cfg.Driver {
	case DriverS3, "r2", "minio", "":
		store, err := NewS3Store(S3Config{
			Endpoint:  cfg.Endpoint,
			AccessKey: cfg.AccessKey,
			SecretKey: cfg.SecretKey,
			Bucket:    cfg.Bucket,
			Region:    cfg.Region,
			UseSSL:    cfg.UseSSL,
		})
		if err != nil {
			return nil, err
		}
		return store, nil
	case DriverLocal:
		store, err := NewLocalStore(cfg.LocalRoot, cfg.Bucket)
		if err != nil {
			return nil, err
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}
