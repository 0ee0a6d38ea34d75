package printing

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/printshop/backend/internal/domain/printing"
	"github.com/printshop/backend/internal/domain/queue"
	"github.com/printshop/backend/internal/domain/shared"
	"github.com/printshop/backend/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// confirmationKeyPrefix namespaces payment confirmation ids in the idempotency store
const confirmationKeyPrefix = "payment:"

// shopQueueStatuses are the statuses shown in a shop's working queue
var shopQueueStatuses = []printing.JobStatus{printing.JobStatusQueued, printing.JobStatusPrinting}

// PrintJobService handles ordering, payment and shop-side status of print jobs
type PrintJobService struct {
	eventSource
	jobs        printing.PrintJobRepository
	receipts    printing.ReceiptRepository
	shops       printing.ShopRepository
	txScope     TransactionScope
	enqueuer    Enqueuer
	idempotency shared.IdempotencyStore
	settings    Settings
	now         func() time.Time

	receiptRenderer ReceiptRenderer
}

// NewPrintJobService creates a new PrintJobService. idempotency may be nil,
// in which case duplicate confirmations are only caught by the job state.
func NewPrintJobService(
	jobs printing.PrintJobRepository,
	receipts printing.ReceiptRepository,
	shops printing.ShopRepository,
	txScope TransactionScope,
	enqueuer Enqueuer,
	idempotency shared.IdempotencyStore,
	settings Settings,
	log *zap.Logger,
) *PrintJobService {
	if log == nil {
		log = zap.NewNop()
	}
	return &PrintJobService{
		eventSource: eventSource{logger: log},
		jobs:        jobs,
		receipts:    receipts,
		shops:       shops,
		txScope:     txScope,
		enqueuer:    enqueuer,
		idempotency: idempotency,
		settings:    settings.withDefaults(),
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// SetReceiptRenderer enables ReceiptPDF
func (s *PrintJobService) SetReceiptRenderer(r ReceiptRenderer) {
	s.receiptRenderer = r
}

// =============================================================================
// Ordering
// =============================================================================

// Create prices a ready draft at a shop and creates a job awaiting payment.
// The draft moves to ready_for_print in the same transaction.
func (s *PrintJobService) Create(ctx context.Context, userID uuid.UUID, req CreatePrintJobRequest) (*PrintJobResponse, error) {
	if req.ShopID == uuid.Nil || req.DraftID == uuid.Nil {
		return nil, shared.NewValidationError("missing required fields: shop_id, draft_id")
	}
	options := req.PrintOptions.Normalized()
	if !options.Color.IsValid() {
		return nil, shared.NewValidationError(fmt.Sprintf("invalid color mode %q", options.Color))
	}

	var (
		job   *printing.PrintJob
		draft *printing.Draft
	)
	err := s.txScope.Execute(ctx, func(repos TxRepositories) error {
		var err error
		draft, err = repos.Drafts().FindByIDForUpdate(ctx, req.DraftID)
		if err != nil {
			return err
		}
		if !draft.IsOwnedBy(userID) {
			return shared.NewNotFoundError("draft", req.DraftID)
		}
		if err := draft.EnsurePurchasable(); err != nil {
			return err
		}

		shop, err := repos.Shops().FindByID(ctx, req.ShopID)
		if err != nil {
			return err
		}
		if err := shop.EnsureAcceptingJobs(); err != nil {
			return err
		}

		today, err := repos.PrintJobs().CountForShopSince(ctx, shop.ID, printing.QueueDay(s.now()))
		if err != nil {
			return fmt.Errorf("failed to compute queue number: %w", err)
		}
		amount := shop.WithFallbackPrices(s.settings.DefaultPriceBW, s.settings.DefaultPriceColor).
			Quote(draft.PageCount, options)

		job, err = printing.NewPrintJob(userID, shop.ID, draft, options, amount, int(today)+1)
		if err != nil {
			return err
		}
		if err := repos.PrintJobs().Save(ctx, job); err != nil {
			return fmt.Errorf("failed to save print job: %w", err)
		}
		if err := draft.MarkReadyForPrint(); err != nil {
			return err
		}
		return repos.Drafts().Save(ctx, draft)
	})
	if err != nil {
		return nil, err
	}

	logger.Enrich(ctx, s.logger).Info("Print job created",
		zap.String("print_job_id", job.ID.String()),
		zap.String("shop_id", job.ShopID.String()),
		zap.String("amount", job.Amount.String()),
		zap.Int("queue_number", job.QueueNumber),
	)
	s.publish(ctx, job, draft)

	resp := ToPrintJobResponse(job)
	return &resp, nil
}

// =============================================================================
// Payment
// =============================================================================

// ConfirmPayment records an upstream payment confirmation and schedules
// finalization. Repeated confirmations for a paid job, or repeated
// deliveries of the same confirmation id, succeed without side effects.
// A job left in PROCESSING_PAYMENT after its finalize item failed for good
// gets a fresh finalize item.
func (s *PrintJobService) ConfirmPayment(ctx context.Context, userID uuid.UUID, req ConfirmPaymentRequest) (*ConfirmPaymentResponse, error) {
	if req.PrintJobID == uuid.Nil || req.PaymentID == "" {
		return nil, shared.NewValidationError("missing printJobId or paymentId")
	}
	log := logger.Enrich(ctx, s.logger).With(
		zap.String("print_job_id", req.PrintJobID.String()),
		zap.String("payment_id", req.PaymentID),
	)

	job, err := s.findOwned(ctx, userID, req.PrintJobID)
	if err != nil {
		return nil, err
	}
	if job.IsPaid() {
		return &ConfirmPaymentResponse{PrintJob: ToPrintJobResponse(job), AlreadyPaid: true, Message: "Already paid"}, nil
	}
	if err := printing.CheckPaymentTransition(job.PaymentStatus, printing.PaymentStatusPaid); err != nil {
		return nil, err
	}

	key := confirmationKeyPrefix + req.PaymentID
	if s.idempotency != nil {
		fresh, err := s.idempotency.MarkProcessed(ctx, key, s.settings.ConfirmationTTL)
		if err != nil {
			// Degrade to the state checks below rather than reject a real payment
			log.Warn("Idempotency store unavailable", zap.Error(err))
		} else if !fresh {
			log.Info("Duplicate payment confirmation ignored")
			return &ConfirmPaymentResponse{PrintJob: ToPrintJobResponse(job), Duplicate: true, Message: "Payment confirmation already received"}, nil
		}
	}

	var (
		item        *queue.WorkItem
		alreadyPaid bool
		rescheduled bool
	)
	err = s.txScope.Execute(ctx, func(repos TxRepositories) error {
		current, err := repos.PrintJobs().FindByIDForUpdate(ctx, req.PrintJobID)
		if err != nil {
			return err
		}
		job = current
		if current.IsPaid() {
			alreadyPaid = true
			return nil
		}
		if current.Status == printing.JobStatusProcessingPayment {
			active, err := repos.WorkItems().HasActive(ctx, queue.KindFinalizePrintJob, current.ID)
			if err != nil {
				return fmt.Errorf("failed to look up finalization: %w", err)
			}
			if active {
				return nil
			}
			// The previous finalize item ran out of attempts
			rescheduled = true
		} else {
			if err := current.BeginPaymentProcessing(); err != nil {
				return err
			}
			if err := repos.PrintJobs().Save(ctx, current); err != nil {
				return fmt.Errorf("failed to save print job: %w", err)
			}
		}
		item, err = s.enqueuer.EnqueueWith(ctx, repos.WorkItems(), queue.FinalizePrintJob{
			PrintJobID: current.ID,
			UserID:     current.UserID,
			DraftID:    current.DraftID,
			PaymentRef: req.PaymentID,
		})
		return err
	})
	if err != nil {
		if s.idempotency != nil {
			if relErr := s.idempotency.Release(context.WithoutCancel(ctx), key); relErr != nil {
				log.Warn("Failed to release payment confirmation key", zap.Error(relErr))
			}
		}
		return nil, err
	}

	resp := &ConfirmPaymentResponse{PrintJob: ToPrintJobResponse(job), AlreadyPaid: alreadyPaid}
	switch {
	case alreadyPaid:
		resp.Message = "Already paid"
	case item == nil:
		resp.Message = "Payment already being finalized"
	case rescheduled:
		resp.WorkItemID = &item.ID
		resp.Message = "Payment finalization rescheduled"
		log.Info("Finalization rescheduled after failed attempts", zap.String("work_item_id", item.ID.String()))
	default:
		resp.WorkItemID = &item.ID
		resp.Message = "Payment successful. Finalizing job..."
		log.Info("Payment confirmed, finalization scheduled", zap.String("work_item_id", item.ID.String()))
	}
	s.publish(ctx, job)
	return resp, nil
}

// =============================================================================
// Queries
// =============================================================================

// Get returns a print job owned by userID
func (s *PrintJobService) Get(ctx context.Context, userID, jobID uuid.UUID) (*PrintJobResponse, error) {
	job, err := s.findOwned(ctx, userID, jobID)
	if err != nil {
		return nil, err
	}
	resp := ToPrintJobResponse(job)
	return &resp, nil
}

// ListByUser returns a user's print history, newest first
func (s *PrintJobService) ListByUser(ctx context.Context, userID uuid.UUID, filter shared.Filter) ([]PrintJobResponse, error) {
	jobs, err := s.jobs.FindByUser(ctx, userID, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list print jobs: %w", err)
	}
	return ToPrintJobResponses(jobs), nil
}

// GetReceipt returns the receipt of a finalized job owned by userID.
// Receipts past their retention horizon are reported as gone even before
// the cleanup sweep removes them.
func (s *PrintJobService) GetReceipt(ctx context.Context, userID, jobID uuid.UUID) (*ReceiptResponse, error) {
	_, receipt, err := s.findReceipt(ctx, userID, jobID)
	if err != nil {
		return nil, err
	}
	resp := ToReceiptResponse(receipt)
	return &resp, nil
}

// ReceiptPDF renders the receipt of a finalized job owned by userID
func (s *PrintJobService) ReceiptPDF(ctx context.Context, userID, jobID uuid.UUID) ([]byte, error) {
	if s.receiptRenderer == nil {
		return nil, fmt.Errorf("receipt renderer is not configured")
	}
	job, receipt, err := s.findReceipt(ctx, userID, jobID)
	if err != nil {
		return nil, err
	}
	shop, err := s.shops.FindByID(ctx, job.ShopID)
	if err != nil {
		return nil, err
	}
	doc := ReceiptDocument{
		Receipt:  ToReceiptResponse(receipt),
		Job:      ToPrintJobResponse(job),
		ShopName: shop.Name,
		Location: shop.Location,
	}
	data, err := s.receiptRenderer.RenderReceipt(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("failed to render receipt: %w", err)
	}
	return data, nil
}

func (s *PrintJobService) findReceipt(ctx context.Context, userID, jobID uuid.UUID) (*printing.PrintJob, *printing.Receipt, error) {
	job, err := s.findOwned(ctx, userID, jobID)
	if err != nil {
		return nil, nil, err
	}
	receipt, err := s.receipts.FindByPrintJob(ctx, jobID)
	if err != nil {
		return nil, nil, err
	}
	if receipt.IsExpired(s.now()) {
		return nil, nil, shared.NewGoneError(fmt.Sprintf("receipt expired on %s", receipt.ExpiresAt.Format(time.DateOnly)))
	}
	return job, receipt, nil
}

// ListShops returns the shops currently accepting jobs with the prices
// Create would charge
func (s *PrintJobService) ListShops(ctx context.Context) ([]ShopResponse, error) {
	shops, err := s.shops.FindOpen(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list shops: %w", err)
	}
	out := make([]ShopResponse, len(shops))
	for i := range shops {
		out[i] = ToShopResponse(shops[i].WithFallbackPrices(s.settings.DefaultPriceBW, s.settings.DefaultPriceColor))
	}
	return out, nil
}

// =============================================================================
// Shop side
// =============================================================================

// ShopQueue lists a shop's queued and printing jobs in queue order
func (s *PrintJobService) ShopQueue(ctx context.Context, shopID uuid.UUID) ([]PrintJobResponse, error) {
	jobs, err := s.jobs.FindShopQueue(ctx, shopID, shopQueueStatuses)
	if err != nil {
		return nil, fmt.Errorf("failed to load shop queue: %w", err)
	}
	return ToPrintJobResponses(jobs), nil
}

// UpdateStatus applies a shop-side status change validated by the print table.
// Statuses owned by the payment flow cannot be set here.
func (s *PrintJobService) UpdateStatus(ctx context.Context, shopID, jobID uuid.UUID, req UpdatePrintJobStatusRequest) (*PrintJobResponse, error) {
	next := printing.JobStatus(req.Status)
	if !next.IsValid() {
		return nil, shared.NewValidationError(fmt.Sprintf("invalid status %q", req.Status))
	}
	switch next {
	case printing.JobStatusPrinting, printing.JobStatusCompleted, printing.JobStatusCancelled:
	default:
		return nil, shared.NewForbiddenError(fmt.Sprintf("status %s is set by the payment flow", next))
	}

	var job *printing.PrintJob
	err := s.txScope.Execute(ctx, func(repos TxRepositories) error {
		current, err := repos.PrintJobs().FindByIDForUpdate(ctx, jobID)
		if err != nil {
			return err
		}
		if current.ShopID != shopID {
			return shared.NewNotFoundError("print job", jobID)
		}
		if err := current.TransitionStatus(next); err != nil {
			return err
		}
		if err := repos.PrintJobs().Save(ctx, current); err != nil {
			return fmt.Errorf("failed to save print job: %w", err)
		}
		job = current
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Enrich(ctx, s.logger).Info("Print job status updated",
		zap.String("print_job_id", jobID.String()),
		zap.String("status", next.String()),
	)
	s.publish(ctx, job)
	resp := ToPrintJobResponse(job)
	return &resp, nil
}

func (s *PrintJobService) findOwned(ctx context.Context, userID, jobID uuid.UUID) (*printing.PrintJob, error) {
	job, err := s.jobs.FindByID(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if job.UserID != userID {
		return nil, shared.NewNotFoundError("print job", jobID)
	}
	return job, nil
}
