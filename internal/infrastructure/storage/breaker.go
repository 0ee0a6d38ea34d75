package storage

import (
	"context"
	"errors"
	"time"

	appprinting "github.com/printshop/backend/internal/application/printing"
	"github.com/printshop/backend/internal/domain/shared"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

// Ensure BreakerObjectStorage implements ObjectStore
var _ appprinting.ObjectStore = (*BreakerObjectStorage)(nil)

// BreakerObjectStorage guards an ObjectStore with a circuit breaker.
// While the breaker is open calls fail fast with a storage error, which the
// work coordinator treats as retryable.
type BreakerObjectStorage struct {
	next appprinting.ObjectStore
	cb   *gobreaker.CircuitBreaker
}

// BreakerSettings tunes the breaker
type BreakerSettings struct {
	Name string
	// Timeout is how long the breaker stays open before probing again
	Timeout time.Duration
	// Interval is the closed-state window after which counts reset
	Interval time.Duration
	// MinRequests is the number of calls in a window before the ratio is considered
	MinRequests uint32
	// FailureRatio trips the breaker once reached
	FailureRatio float64
}

// DefaultBreakerSettings returns the object store breaker defaults
func DefaultBreakerSettings() BreakerSettings {
	return BreakerSettings{
		Name:         "object-store",
		Timeout:      30 * time.Second,
		Interval:     time.Minute,
		MinRequests:  5,
		FailureRatio: 0.6,
	}
}

// NewBreakerObjectStorage wraps next
func NewBreakerObjectStorage(next appprinting.ObjectStore, settings BreakerSettings, logger *zap.Logger) *BreakerObjectStorage {
	if logger == nil {
		logger = zap.NewNop()
	}
	def := DefaultBreakerSettings()
	if settings.Name == "" {
		settings.Name = def.Name
	}
	if settings.Timeout <= 0 {
		settings.Timeout = def.Timeout
	}
	if settings.MinRequests == 0 {
		settings.MinRequests = def.MinRequests
	}
	if settings.FailureRatio <= 0 {
		settings.FailureRatio = def.FailureRatio
	}

	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        settings.Name,
		MaxRequests: 1,
		Interval:    settings.Interval,
		Timeout:     settings.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= settings.MinRequests && failureRatio >= settings.FailureRatio
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("Object store circuit breaker changed state",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
		IsSuccessful: isBackendHealthy,
	})
	return &BreakerObjectStorage{next: next, cb: cb}
}

// isBackendHealthy keeps caller mistakes and missing objects from tripping the breaker
func isBackendHealthy(err error) bool {
	if err == nil {
		return true
	}
	return errors.Is(err, shared.ErrValidation) || errors.Is(err, ErrObjectNotFound)
}

// State returns the breaker state
func (b *BreakerObjectStorage) State() gobreaker.State {
	return b.cb.State()
}

// Upload implements ObjectStore
func (b *BreakerObjectStorage) Upload(ctx context.Context, path string, data []byte, contentType string) error {
	_, err := b.cb.Execute(func() (interface{}, error) {
		return nil, b.next.Upload(ctx, path, data, contentType)
	})
	return b.wrap("upload", path, err)
}

// Download implements ObjectStore
func (b *BreakerObjectStorage) Download(ctx context.Context, path string) ([]byte, error) {
	out, err := b.cb.Execute(func() (interface{}, error) {
		return b.next.Download(ctx, path)
	})
	if err != nil {
		return nil, b.wrap("download", path, err)
	}
	return out.([]byte), nil
}

// Delete implements ObjectStore
func (b *BreakerObjectStorage) Delete(ctx context.Context, path string) error {
	_, err := b.cb.Execute(func() (interface{}, error) {
		return nil, b.next.Delete(ctx, path)
	})
	return b.wrap("delete", path, err)
}

func (b *BreakerObjectStorage) wrap(op, path string, err error) error {
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return shared.NewStorageError(op, path, err)
	}
	return err
}
