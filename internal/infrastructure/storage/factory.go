package storage

import (
	"context"
	"fmt"

	appprinting "github.com/printshop/backend/internal/application/printing"
	"github.com/printshop/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// Driver names accepted in StorageConfig.Driver
const (
	DriverS3       = "s3"
	DriverSupabase = "supabase"
	DriverLocal    = "local"
	DriverMemory   = "memory"
)

// New builds the configured object store, wrapped in a circuit breaker when
// enabled. With CreateBucket set a missing s3 bucket is created first.
func New(ctx context.Context, cfg *config.StorageConfig, logger *zap.Logger) (appprinting.ObjectStore, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	var (
		store appprinting.ObjectStore
		err   error
	)
	switch cfg.Driver {
	case DriverS3:
		var s3Store *S3ObjectStorage
		s3Store, err = NewS3ObjectStorage(cfg, WithLogger(logger))
		if err == nil && cfg.CreateBucket {
			err = s3Store.EnsureBucket(ctx)
		}
		store = s3Store
	case DriverSupabase:
		store, err = NewSupabaseObjectStorage(cfg.SupabaseURL, cfg.SupabaseKey, cfg.Bucket, logger)
	case DriverLocal, "":
		store, err = NewLocalObjectStorage(cfg.LocalPath, logger)
	case DriverMemory:
		store = NewMemoryObjectStorage()
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create %s storage: %w", cfg.Driver, err)
	}

	logger.Info("Object storage initialized",
		zap.String("driver", cfg.Driver),
		zap.String("bucket", cfg.Bucket),
		zap.Bool("breaker", cfg.BreakerEnabled),
	)

	if !cfg.BreakerEnabled {
		return store, nil
	}
	settings := DefaultBreakerSettings()
	settings.Name = "object-store-" + cfg.Driver
	if cfg.BreakerTimeout > 0 {
		settings.Timeout = cfg.BreakerTimeout
	}
	return NewBreakerObjectStorage(store, settings, logger), nil
}
