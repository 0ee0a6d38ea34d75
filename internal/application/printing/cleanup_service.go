package printing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/printshop/backend/internal/domain/printing"
	"github.com/printshop/backend/internal/domain/shared"
	"github.com/printshop/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// CleanupService removes receipts past their retention horizon together with
// their print jobs, file records and final documents
type CleanupService struct {
	receipts printing.ReceiptRepository
	txScope  TransactionScope
	store    ObjectStore
	settings Settings
	metrics  *telemetry.WorkMetrics
	logger   *zap.Logger
	now      func() time.Time
}

// NewCleanupService creates a new CleanupService
func NewCleanupService(receipts printing.ReceiptRepository, txScope TransactionScope, store ObjectStore, settings Settings, logger *zap.Logger) *CleanupService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CleanupService{
		receipts: receipts,
		txScope:  txScope,
		store:    store,
		settings: settings.withDefaults(),
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// SetMetrics sets the metrics recorder
func (s *CleanupService) SetMetrics(m *telemetry.WorkMetrics) {
	s.metrics = m
}

// RunOnce removes one batch of expired receipts and returns how many were removed
func (s *CleanupService) RunOnce(ctx context.Context) (int, error) {
	expired, err := s.receipts.FindExpired(ctx, s.now(), s.settings.CleanupBatchSize)
	if err != nil {
		return 0, fmt.Errorf("failed to find expired receipts: %w", err)
	}

	removed := 0
	var errs []error
	for i := range expired {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		if err := s.remove(ctx, &expired[i]); err != nil {
			s.logger.Error("Failed to remove expired receipt",
				zap.String("receipt_id", expired[i].ID.String()),
				zap.Error(err),
			)
			errs = append(errs, err)
			continue
		}
		removed++
	}

	s.metrics.RecordReceiptsExpired(ctx, removed)
	s.logger.Info("Cleanup completed",
		zap.Int("found", len(expired)),
		zap.Int("removed", removed),
	)
	return removed, errors.Join(errs...)
}

// Run sweeps immediately and then on every tick until ctx is done
func (s *CleanupService) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		if _, err := s.RunOnce(ctx); err != nil && ctx.Err() == nil {
			s.logger.Warn("Cleanup sweep finished with errors", zap.Error(err))
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (s *CleanupService) remove(ctx context.Context, receipt *printing.Receipt) error {
	var finalRef string
	err := s.txScope.Execute(ctx, func(repos TxRepositories) error {
		job, err := repos.PrintJobs().FindByID(ctx, receipt.PrintJobID)
		switch {
		case errors.Is(err, shared.ErrNotFound):
			job = nil
		case err != nil:
			return err
		}

		if err := repos.Receipts().Delete(ctx, receipt.ID); err != nil {
			return fmt.Errorf("failed to delete receipt: %w", err)
		}
		if job == nil {
			return nil
		}
		if job.FinalFileID != nil {
			if err := repos.Files().Delete(ctx, *job.FinalFileID); err != nil && !errors.Is(err, shared.ErrNotFound) {
				return fmt.Errorf("failed to delete file record: %w", err)
			}
		}
		if err := repos.PrintJobs().Delete(ctx, job.ID); err != nil {
			return fmt.Errorf("failed to delete print job: %w", err)
		}
		if job.FinalFileRef != nil {
			finalRef = *job.FinalFileRef
		}
		return nil
	})
	if err != nil {
		return err
	}

	// The rows are gone; a leftover object is only wasted space
	if finalRef != "" {
		if err := s.store.Delete(ctx, finalRef); err != nil && !errors.Is(err, shared.ErrNotFound) {
			s.logger.Warn("Failed to delete final document", zap.String("path", finalRef), zap.Error(err))
		}
	}
	return nil
}
