package printing

import (
	"context"

	"github.com/printshop/backend/internal/domain/printing"
	"github.com/printshop/backend/internal/domain/queue"
	"github.com/printshop/backend/internal/domain/shared"
	"github.com/printshop/backend/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// WorkFailureHandler runs when a work item exhausts its attempts. It makes
// sure the owning draft is not left mid-transition and raises
// WorkItemFailedEvent. Print jobs stay in their pre-finalize state so they
// can be reconciled: the payment confirmation key is released and the next
// ConfirmPayment schedules a new finalize item.
type WorkFailureHandler struct {
	eventSource
	drafts      printing.DraftRepository
	idempotency shared.IdempotencyStore
}

// NewWorkFailureHandler creates a new WorkFailureHandler
func NewWorkFailureHandler(drafts printing.DraftRepository, log *zap.Logger) *WorkFailureHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &WorkFailureHandler{eventSource: eventSource{logger: log}, drafts: drafts}
}

// SetIdempotencyStore sets the store holding payment confirmation keys
func (h *WorkFailureHandler) SetIdempotencyStore(store shared.IdempotencyStore) {
	h.idempotency = store
}

// OnExhausted matches the coordinator's exhausted hook signature
func (h *WorkFailureHandler) OnExhausted(ctx context.Context, item *queue.WorkItem, cause error) {
	log := logger.Enrich(ctx, h.logger).With(
		zap.String("work_item_id", item.ID.String()),
		zap.String("kind", string(item.Kind)),
	)

	task, err := item.Task()
	if err != nil {
		log.Error("Cannot decode failed work item", zap.Error(err))
		return
	}
	userID, subjectID := task.Owner()

	switch t := task.(type) {
	case queue.ProcessDraft:
		h.failDraft(ctx, log, t)
	case queue.FinalizePrintJob:
		h.releaseConfirmation(ctx, log, t)
	}

	errMsg := item.LastError
	if cause != nil {
		errMsg = cause.Error()
	}
	h.publishEvents(ctx, printing.NewWorkItemFailedEvent(item.ID, string(item.Kind), item.Attempts, errMsg, userID, subjectID))
}

func (h *WorkFailureHandler) releaseConfirmation(ctx context.Context, log *zap.Logger, t queue.FinalizePrintJob) {
	if h.idempotency == nil || t.PaymentRef == "" {
		return
	}
	if err := h.idempotency.Release(ctx, confirmationKeyPrefix+t.PaymentRef); err != nil {
		log.Warn("Failed to release payment confirmation key", zap.Error(err))
	}
}

func (h *WorkFailureHandler) failDraft(ctx context.Context, log *zap.Logger, t queue.ProcessDraft) {
	draft, err := h.drafts.FindByID(ctx, t.DraftID)
	if err != nil {
		log.Warn("Failed draft could not be loaded", zap.Error(err))
		return
	}
	switch draft.Status {
	case printing.DraftStatusFailed, printing.DraftStatusConversionFailed, printing.DraftStatusPrinted:
		return
	}
	if err := draft.MarkFailed(); err != nil {
		log.Error("Failed to mark draft as failed", zap.Error(err))
		return
	}
	if err := h.drafts.Save(ctx, draft); err != nil {
		log.Error("Failed to save failed draft", zap.Error(err))
		return
	}
	h.publish(ctx, draft)
}
