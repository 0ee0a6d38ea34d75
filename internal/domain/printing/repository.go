package printing

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/printshop/backend/internal/domain/shared"
)

// DraftRepository defines the interface for draft persistence
type DraftRepository interface {
	// FindByID finds a draft by ID, returning shared.ErrNotFound when missing
	FindByID(ctx context.Context, id uuid.UUID) (*Draft, error)

	// FindByIDForUpdate finds a draft and locks its row for the current transaction
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*Draft, error)

	// FindByUser lists a user's drafts, newest first
	FindByUser(ctx context.Context, userID uuid.UUID, filter shared.Filter) ([]Draft, error)

	// Save saves a draft (insert or update)
	Save(ctx context.Context, draft *Draft) error

	// Delete deletes a draft by ID
	Delete(ctx context.Context, id uuid.UUID) error
}

// PrintJobRepository defines the interface for print job persistence
type PrintJobRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*PrintJob, error)

	// FindByIDForUpdate finds a job and locks its row for the current transaction
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*PrintJob, error)

	// FindByUser lists a user's jobs, newest first
	FindByUser(ctx context.Context, userID uuid.UUID, filter shared.Filter) ([]PrintJob, error)

	// FindShopQueue lists a shop's jobs in the given statuses ordered by queue number
	FindShopQueue(ctx context.Context, shopID uuid.UUID, statuses []JobStatus) ([]PrintJob, error)

	// CountForShopSince counts a shop's jobs created at or after since
	CountForShopSince(ctx context.Context, shopID uuid.UUID, since time.Time) (int64, error)

	Save(ctx context.Context, job *PrintJob) error

	Delete(ctx context.Context, id uuid.UUID) error
}

// ReceiptRepository defines the interface for receipt persistence
type ReceiptRepository interface {
	// FindByPrintJob returns the receipt of a finalized job
	FindByPrintJob(ctx context.Context, jobID uuid.UUID) (*Receipt, error)

	// FindExpired lists receipts whose expiry is before now
	FindExpired(ctx context.Context, now time.Time, limit int) ([]Receipt, error)

	// CountByPrintJob counts receipts for a job
	CountByPrintJob(ctx context.Context, jobID uuid.UUID) (int64, error)

	Create(ctx context.Context, receipt *Receipt) error

	Delete(ctx context.Context, id uuid.UUID) error
}

// FileRecordRepository defines the interface for file record persistence
type FileRecordRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*FileRecord, error)
	Create(ctx context.Context, file *FileRecord) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// ShopRepository defines the interface for shop persistence
type ShopRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Shop, error)
	FindOpen(ctx context.Context) ([]Shop, error)
	Save(ctx context.Context, shop *Shop) error
}
