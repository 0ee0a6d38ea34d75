package printing

import (
	"time"

	"github.com/google/uuid"
	"github.com/printshop/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// PrintOptions describes how the shop should print the job
type PrintOptions struct {
	Color  ColorMode `json:"color" validate:"omitempty,oneof=bw color"`
	Copies int       `json:"copies" validate:"omitempty,min=1,max=100"`
	Layout string    `json:"layout,omitempty" validate:"max=64"`
}

// Normalized fills defaults for missing options
func (o PrintOptions) Normalized() PrintOptions {
	if o.Color == "" {
		o.Color = ColorModeBW
	}
	if o.Copies < 1 {
		o.Copies = 1
	}
	return o
}

// PrintJob is an order referencing a draft snapshot, priced and tracked
// through payment and print fulfilment.
type PrintJob struct {
	shared.BaseAggregateRoot
	UserID        uuid.UUID
	ShopID        uuid.UUID
	DraftID       uuid.UUID
	Options       PrintOptions
	Amount        decimal.Decimal
	PaymentStatus PaymentStatus
	Status        JobStatus
	FinalFileRef  *string
	FinalFileID   *uuid.UUID
	QueueNumber   int
}

// NewPrintJob creates a job in CREATED and moves it to PENDING_PAYMENT,
// where it waits for the payment signal.
func NewPrintJob(userID, shopID uuid.UUID, draft *Draft, options PrintOptions, amount decimal.Decimal, queueNumber int) (*PrintJob, error) {
	if userID == uuid.Nil {
		return nil, shared.NewValidationError("user id cannot be empty")
	}
	if shopID == uuid.Nil {
		return nil, shared.NewValidationError("shop id cannot be empty")
	}
	if draft == nil {
		return nil, shared.NewValidationError("draft is required")
	}
	if amount.IsNegative() {
		return nil, shared.NewValidationError("amount cannot be negative")
	}

	job := &PrintJob{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		UserID:            userID,
		ShopID:            shopID,
		DraftID:           draft.ID,
		Options:           options.Normalized(),
		Amount:            amount,
		PaymentStatus:     PaymentStatusPendingPayment,
		Status:            JobStatusCreated,
		QueueNumber:       queueNumber,
	}
	if err := job.TransitionStatus(JobStatusPendingPayment); err != nil {
		return nil, err
	}
	job.TakeDomainEvents()
	job.AddDomainEvent(NewPrintJobCreatedEvent(job))
	return job, nil
}

// IsPaid reports whether payment has been recorded
func (j *PrintJob) IsPaid() bool {
	return j.PaymentStatus == PaymentStatusPaid
}

// TransitionStatus moves the print status through the print table
func (j *PrintJob) TransitionStatus(next JobStatus) error {
	if err := CheckPrintTransition(j.Status, next); err != nil {
		return err
	}
	old := j.Status
	j.Status = next
	j.RecordChange(NewPrintJobStatusChangedEvent(j, old, next))
	return nil
}

// BeginPaymentProcessing records that a payment confirmation arrived and
// finalization has been scheduled.
func (j *PrintJob) BeginPaymentProcessing() error {
	if j.IsPaid() {
		return shared.NewConflictError("print job is already paid")
	}
	if err := CheckPaymentTransition(j.PaymentStatus, PaymentStatusPaid); err != nil {
		return err
	}
	if j.Status == JobStatusProcessingPayment {
		return nil
	}
	return j.TransitionStatus(JobStatusProcessingPayment)
}

// CheckFinalizable validates both transitions required by finalization
// without mutating the job.
func (j *PrintJob) CheckFinalizable() error {
	if err := CheckPaymentTransition(j.PaymentStatus, PaymentStatusPaid); err != nil {
		return err
	}
	return CheckPrintTransition(j.Status, JobStatusQueued)
}

// MarkPaidAndQueued records payment and queues the job for the shop
func (j *PrintJob) MarkPaidAndQueued(finalFileRef string, finalFileID uuid.UUID) error {
	if err := j.CheckFinalizable(); err != nil {
		return err
	}
	if finalFileRef == "" {
		return shared.NewValidationError("final file reference cannot be empty")
	}
	oldStatus := j.Status
	j.PaymentStatus = PaymentStatusPaid
	j.Status = JobStatusQueued
	j.FinalFileRef = &finalFileRef
	j.FinalFileID = &finalFileID
	j.RecordChange(NewPrintJobStatusChangedEvent(j, oldStatus, JobStatusQueued))
	return nil
}

// Receipt is the payment record created exactly once at finalization
type Receipt struct {
	shared.BaseEntity
	PrintJobID uuid.UUID
	UserID     uuid.UUID
	ShopID     uuid.UUID
	Amount     decimal.Decimal
	PaymentRef string
	ExpiresAt  time.Time
}

// NewReceipt creates a receipt for a finalized job expiring after ttl
func NewReceipt(job *PrintJob, paymentRef string, ttl time.Duration) *Receipt {
	r := &Receipt{
		BaseEntity: shared.NewBaseEntity(),
		PrintJobID: job.ID,
		UserID:     job.UserID,
		ShopID:     job.ShopID,
		Amount:     job.Amount,
		PaymentRef: paymentRef,
	}
	r.ExpiresAt = r.CreatedAt.Add(ttl)
	return r
}

// IsExpired reports whether the receipt is past its retention horizon
func (r *Receipt) IsExpired(now time.Time) bool {
	return now.After(r.ExpiresAt)
}

// FileRecord references an immutable file in object storage
type FileRecord struct {
	shared.BaseEntity
	UserID     uuid.UUID
	FileName   string
	StorageRef string
	PageCount  int
	FileType   string
}

// NewFileRecord creates a PDF file record
func NewFileRecord(userID uuid.UUID, fileName, storageRef string, pageCount int) *FileRecord {
	return &FileRecord{
		BaseEntity: shared.NewBaseEntity(),
		UserID:     userID,
		FileName:   fileName,
		StorageRef: storageRef,
		PageCount:  pageCount,
		FileType:   "pdf",
	}
}
