package printing

import (
	"github.com/google/uuid"
	"github.com/printshop/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Aggregate type constants
const (
	AggregateTypeDraft    = "Draft"
	AggregateTypePrintJob = "PrintJob"
)

// Event type constants
const (
	EventTypeDraftCreated          = "DraftCreated"
	EventTypeDraftStatusChanged    = "DraftStatusChanged"
	EventTypePrintJobCreated       = "PrintJobCreated"
	EventTypePrintJobStatusChanged = "PrintJobStatusChanged"
	EventTypePrintJobFinalized     = "PrintJobFinalized"
	EventTypeWorkItemFailed        = "WorkItemFailed"
)

// DraftCreatedEvent is published when a draft is uploaded
type DraftCreatedEvent struct {
	shared.BaseDomainEvent
	DraftID uuid.UUID   `json:"draft_id"`
	UserID  uuid.UUID   `json:"user_id"`
	Source  DraftSource `json:"source"`
}

// NewDraftCreatedEvent creates a new DraftCreatedEvent
func NewDraftCreatedEvent(d *Draft) *DraftCreatedEvent {
	return &DraftCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeDraftCreated, AggregateTypeDraft, d.ID),
		DraftID:         d.ID,
		UserID:          d.UserID,
		Source:          d.Source,
	}
}

// DraftStatusChangedEvent is published on every draft status change
type DraftStatusChangedEvent struct {
	shared.BaseDomainEvent
	DraftID   uuid.UUID   `json:"draft_id"`
	UserID    uuid.UUID   `json:"user_id"`
	OldStatus DraftStatus `json:"old_status"`
	NewStatus DraftStatus `json:"new_status"`
	PageCount int         `json:"page_count"`
}

// NewDraftStatusChangedEvent creates a new DraftStatusChangedEvent
func NewDraftStatusChangedEvent(d *Draft, oldStatus, newStatus DraftStatus) *DraftStatusChangedEvent {
	return &DraftStatusChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeDraftStatusChanged, AggregateTypeDraft, d.ID),
		DraftID:         d.ID,
		UserID:          d.UserID,
		OldStatus:       oldStatus,
		NewStatus:       newStatus,
		PageCount:       d.PageCount,
	}
}

// PrintJobCreatedEvent is published when a job is priced and awaiting payment
type PrintJobCreatedEvent struct {
	shared.BaseDomainEvent
	JobID       uuid.UUID       `json:"job_id"`
	UserID      uuid.UUID       `json:"user_id"`
	ShopID      uuid.UUID       `json:"shop_id"`
	DraftID     uuid.UUID       `json:"draft_id"`
	Amount      decimal.Decimal `json:"amount"`
	QueueNumber int             `json:"queue_number"`
}

// NewPrintJobCreatedEvent creates a new PrintJobCreatedEvent
func NewPrintJobCreatedEvent(job *PrintJob) *PrintJobCreatedEvent {
	return &PrintJobCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePrintJobCreated, AggregateTypePrintJob, job.ID),
		JobID:           job.ID,
		UserID:          job.UserID,
		ShopID:          job.ShopID,
		DraftID:         job.DraftID,
		Amount:          job.Amount,
		QueueNumber:     job.QueueNumber,
	}
}

// PrintJobStatusChangedEvent is published when a job's print status changes
type PrintJobStatusChangedEvent struct {
	shared.BaseDomainEvent
	JobID         uuid.UUID     `json:"job_id"`
	UserID        uuid.UUID     `json:"user_id"`
	ShopID        uuid.UUID     `json:"shop_id"`
	OldStatus     JobStatus     `json:"old_status"`
	NewStatus     JobStatus     `json:"new_status"`
	PaymentStatus PaymentStatus `json:"payment_status"`
}

// NewPrintJobStatusChangedEvent creates a new PrintJobStatusChangedEvent
func NewPrintJobStatusChangedEvent(job *PrintJob, oldStatus, newStatus JobStatus) *PrintJobStatusChangedEvent {
	return &PrintJobStatusChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePrintJobStatusChanged, AggregateTypePrintJob, job.ID),
		JobID:           job.ID,
		UserID:          job.UserID,
		ShopID:          job.ShopID,
		OldStatus:       oldStatus,
		NewStatus:       newStatus,
		PaymentStatus:   job.PaymentStatus,
	}
}

// PrintJobFinalizedEvent is published after the finalize transaction commits
type PrintJobFinalizedEvent struct {
	shared.BaseDomainEvent
	JobID        uuid.UUID       `json:"job_id"`
	UserID       uuid.UUID       `json:"user_id"`
	ShopID       uuid.UUID       `json:"shop_id"`
	DraftID      uuid.UUID       `json:"draft_id"`
	ReceiptID    uuid.UUID       `json:"receipt_id"`
	FinalFileRef string          `json:"final_file_ref"`
	Amount       decimal.Decimal `json:"amount"`
	QueueNumber  int             `json:"queue_number"`
}

// NewPrintJobFinalizedEvent creates a new PrintJobFinalizedEvent
func NewPrintJobFinalizedEvent(job *PrintJob, receipt *Receipt) *PrintJobFinalizedEvent {
	e := &PrintJobFinalizedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePrintJobFinalized, AggregateTypePrintJob, job.ID),
		JobID:           job.ID,
		UserID:          job.UserID,
		ShopID:          job.ShopID,
		DraftID:         job.DraftID,
		ReceiptID:       receipt.ID,
		Amount:          job.Amount,
		QueueNumber:     job.QueueNumber,
	}
	if job.FinalFileRef != nil {
		e.FinalFileRef = *job.FinalFileRef
	}
	return e
}

// WorkItemFailedEvent is published when a background item exhausts its retries
type WorkItemFailedEvent struct {
	shared.BaseDomainEvent
	WorkItemID uuid.UUID `json:"work_item_id"`
	Kind       string    `json:"kind"`
	Attempts   int       `json:"attempts"`
	Error      string    `json:"error"`
	UserID     uuid.UUID `json:"user_id"`
	SubjectID  uuid.UUID `json:"subject_id"`
}

// NewWorkItemFailedEvent creates a new WorkItemFailedEvent keyed by the work item id
func NewWorkItemFailedEvent(workItemID uuid.UUID, kind string, attempts int, errMsg string, userID, subjectID uuid.UUID) *WorkItemFailedEvent {
	return &WorkItemFailedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeWorkItemFailed, "WorkItem", workItemID),
		WorkItemID:      workItemID,
		Kind:            kind,
		Attempts:        attempts,
		Error:           errMsg,
		UserID:          userID,
		SubjectID:       subjectID,
	}
}
