package printing

import (
	"context"
	"errors"
	"fmt"

	"github.com/printshop/backend/internal/domain/printing"
	"github.com/printshop/backend/internal/domain/queue"
	"github.com/printshop/backend/internal/domain/shared"
	"github.com/printshop/backend/internal/infrastructure/logger"
	"github.com/printshop/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// FinalizeHandler consumes finalize-print-job work items. It turns a paid
// job into an immutable queued job in one transaction: the final file copy,
// the file record, the job update, the receipt and the draft freeze commit
// together or not at all.
type FinalizeHandler struct {
	eventSource
	txScope  TransactionScope
	store    ObjectStore
	settings Settings
	metrics  *telemetry.WorkMetrics
}

// NewFinalizeHandler creates a new FinalizeHandler
func NewFinalizeHandler(txScope TransactionScope, store ObjectStore, settings Settings, log *zap.Logger) *FinalizeHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &FinalizeHandler{
		eventSource: eventSource{logger: log},
		txScope:     txScope,
		store:       store,
		settings:    settings.withDefaults(),
	}
}

// SetMetrics sets the metrics recorder
func (h *FinalizeHandler) SetMetrics(m *telemetry.WorkMetrics) {
	h.metrics = m
}

// Handle implements the work item handler contract
func (h *FinalizeHandler) Handle(ctx context.Context, _ *queue.WorkItem, task queue.Task) error {
	t, ok := task.(queue.FinalizePrintJob)
	if !ok {
		return shared.NewValidationError(fmt.Sprintf("finalize handler received %s", task.Kind()))
	}
	_, err := h.Finalize(ctx, t)
	return err
}

// Finalize runs the finalize transaction for one job. Calling it again for
// a job that is already paid returns the committed result unchanged.
func (h *FinalizeHandler) Finalize(ctx context.Context, t queue.FinalizePrintJob) (*FinalizeResult, error) {
	log := logger.Enrich(ctx, h.logger).With(zap.String("print_job_id", t.PrintJobID.String()))

	var (
		result    *FinalizeResult
		job       *printing.PrintJob
		draft     *printing.Draft
		receipt   *printing.Receipt
		finalPath string
	)
	err := h.txScope.Execute(ctx, func(repos TxRepositories) error {
		var err error
		job, err = repos.PrintJobs().FindByIDForUpdate(ctx, t.PrintJobID)
		if err != nil {
			return err
		}
		if job.IsPaid() {
			result, err = h.existing(ctx, repos, job)
			return err
		}
		if err := job.CheckFinalizable(); err != nil {
			return err
		}

		draft, err = repos.Drafts().FindByIDForUpdate(ctx, job.DraftID)
		if err != nil {
			return err
		}
		if draft.IsFrozen() {
			return shared.NewForbiddenError("draft was already finalized into another print job")
		}
		if draft.ConvertedFileRef == "" {
			return shared.NewValidationError("draft has no converted document")
		}
		data, err := h.store.Download(ctx, draft.ConvertedFileRef)
		if err != nil {
			return fmt.Errorf("failed to load draft document: %w", err)
		}

		// A fresh path decouples the order from any later activity on the draft
		finalPath = h.settings.finalPath(job)
		if err := h.store.Upload(ctx, finalPath, data, pdfContentType); err != nil {
			return fmt.Errorf("failed to store final document: %w", err)
		}

		file := printing.NewFileRecord(job.UserID, draft.OriginalFileName, finalPath, draft.PageCount)
		if err := repos.Files().Create(ctx, file); err != nil {
			return fmt.Errorf("failed to create file record: %w", err)
		}
		if err := job.MarkPaidAndQueued(finalPath, file.ID); err != nil {
			return err
		}
		if err := repos.PrintJobs().Save(ctx, job); err != nil {
			return fmt.Errorf("failed to save print job: %w", err)
		}

		receipt = printing.NewReceipt(job, t.PaymentRef, h.settings.ReceiptTTL)
		if err := repos.Receipts().Create(ctx, receipt); err != nil {
			return fmt.Errorf("failed to create receipt: %w", err)
		}

		if err := draft.Freeze(); err != nil {
			return err
		}
		if err := repos.Drafts().Save(ctx, draft); err != nil {
			return fmt.Errorf("failed to freeze draft: %w", err)
		}

		result = &FinalizeResult{
			PrintJobID:   job.ID,
			ReceiptID:    receipt.ID,
			FinalFileRef: finalPath,
			ExpiresAt:    receipt.ExpiresAt,
		}
		return nil
	})
	if err != nil {
		if finalPath != "" {
			h.discard(ctx, log, finalPath)
		}
		log.Warn("Finalize attempt rolled back", zap.Error(err))
		return nil, err
	}

	if result.AlreadyFinalized {
		log.Info("Print job already finalized", zap.String("receipt_id", result.ReceiptID.String()))
		return result, nil
	}

	log.Info("Print job finalized",
		zap.String("receipt_id", receipt.ID.String()),
		zap.String("final_file_ref", finalPath),
		zap.Int("queue_number", job.QueueNumber),
	)
	h.metrics.RecordFinalized(ctx)
	h.publish(ctx, job, draft)
	h.publishEvents(ctx, printing.NewPrintJobFinalizedEvent(job, receipt))
	return result, nil
}

// existing rebuilds the result of an earlier successful finalize
func (h *FinalizeHandler) existing(ctx context.Context, repos TxRepositories, job *printing.PrintJob) (*FinalizeResult, error) {
	receipt, err := repos.Receipts().FindByPrintJob(ctx, job.ID)
	if err != nil {
		return nil, fmt.Errorf("paid print job has no receipt: %w", err)
	}
	result := &FinalizeResult{
		PrintJobID:       job.ID,
		ReceiptID:        receipt.ID,
		ExpiresAt:        receipt.ExpiresAt,
		AlreadyFinalized: true,
	}
	if job.FinalFileRef != nil {
		result.FinalFileRef = *job.FinalFileRef
	}
	return result, nil
}

// discard removes a final copy whose transaction did not commit
func (h *FinalizeHandler) discard(ctx context.Context, log *zap.Logger, path string) {
	if err := h.store.Delete(context.WithoutCancel(ctx), path); err != nil && !errors.Is(err, shared.ErrNotFound) {
		log.Warn("Failed to remove uncommitted final document", zap.String("path", path), zap.Error(err))
	}
}
