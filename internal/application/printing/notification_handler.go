package printing

import (
	"context"
	"errors"

	"github.com/printshop/backend/internal/domain/printing"
	"github.com/printshop/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// Notification event names delivered to clients
const (
	NotifyPrintJobFinalized     = "print_job.finalized"
	NotifyPrintJobCreated       = "print_job.created"
	NotifyPrintJobPaid          = "print_job.paid"
	NotifyPrintJobStatusUpdated = "print_job.status_updated"
	NotifyDraftStatusUpdated    = "draft.status_updated"
	NotifyWorkItemFailed        = "work_item.failed"
)

// NotificationHandler relays domain events to users and shops.
// Delivery is best effort and never affects the operation that raised the event.
type NotificationHandler struct {
	notifier Notifier
	logger   *zap.Logger
}

// NewNotificationHandler creates a new NotificationHandler
func NewNotificationHandler(notifier Notifier, logger *zap.Logger) *NotificationHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationHandler{notifier: notifier, logger: logger}
}

// EventTypes returns the event types this handler is interested in
func (h *NotificationHandler) EventTypes() []string {
	return []string{
		printing.EventTypePrintJobFinalized,
		printing.EventTypePrintJobStatusChanged,
		printing.EventTypeDraftStatusChanged,
		printing.EventTypeWorkItemFailed,
	}
}

// Handle handles a domain event
func (h *NotificationHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	switch e := event.(type) {
	case *printing.PrintJobFinalizedEvent:
		return errors.Join(
			h.emit(ctx, UserAudience(e.UserID), NotifyPrintJobFinalized, e),
			h.emit(ctx, ShopAudience(e.ShopID), NotifyPrintJobCreated, e),
		)

	case *printing.PrintJobStatusChangedEvent:
		if e.NewStatus == printing.JobStatusProcessingPayment {
			return h.emit(ctx, UserAudience(e.UserID), NotifyPrintJobPaid, e)
		}
		return errors.Join(
			h.emit(ctx, UserAudience(e.UserID), NotifyPrintJobStatusUpdated, e),
			h.emit(ctx, ShopAudience(e.ShopID), NotifyPrintJobStatusUpdated, e),
		)

	case *printing.DraftStatusChangedEvent:
		switch e.NewStatus {
		case printing.DraftStatusReadyForPreview, printing.DraftStatusConversionFailed, printing.DraftStatusFailed:
			return h.emit(ctx, UserAudience(e.UserID), NotifyDraftStatusUpdated, e)
		}
		return nil

	case *printing.WorkItemFailedEvent:
		return h.emit(ctx, UserAudience(e.UserID), NotifyWorkItemFailed, e)

	default:
		h.logger.Debug("Ignoring event", zap.String("event_type", event.EventType()))
		return nil
	}
}

func (h *NotificationHandler) emit(ctx context.Context, audience Audience, name string, payload any) error {
	if err := h.notifier.Emit(ctx, audience, name, payload); err != nil {
		h.logger.Warn("Notification not delivered",
			zap.String("audience", audience.String()),
			zap.String("event", name),
			zap.Error(err),
		)
		return err
	}
	return nil
}
