package queue

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrLeaseLost is returned by Store.Update when the lease has been reclaimed
// by another worker since the item was claimed
var ErrLeaseLost = errors.New("work item lease lost")

// Store is the durable backing of the work queue
type Store interface {
	// Enqueue persists a new pending item
	Enqueue(ctx context.Context, item *WorkItem) error

	// Claim leases up to limit due items to workerID until now+lease.
	// An item is due when it is pending with RunAt <= now, or running with an expired lease.
	// Each returned item has already had its Attempts incremented.
	Claim(ctx context.Context, workerID string, kinds []Kind, limit int, lease time.Duration) ([]*WorkItem, error)

	// Heartbeat extends the lease of items still held by workerID
	Heartbeat(ctx context.Context, workerID string, ids []uuid.UUID, lease time.Duration) error

	// Update writes back an item after an attempt (completed, rescheduled or failed).
	// It only succeeds while workerID still owns the lease.
	Update(ctx context.Context, workerID string, item *WorkItem) error

	// ReapExpired returns running items whose lease lapsed to pending
	ReapExpired(ctx context.Context, now time.Time) (int64, error)

	FindByID(ctx context.Context, id uuid.UUID) (*WorkItem, error)

	// HasActive reports whether a pending or running item of kind exists for subjectID
	HasActive(ctx context.Context, kind Kind, subjectID uuid.UUID) (bool, error)

	// FindFailed lists permanently failed items, newest first
	FindFailed(ctx context.Context, limit int) ([]*WorkItem, error)

	// Requeue resets a permanently failed item for another round of attempts
	Requeue(ctx context.Context, id uuid.UUID) error

	// CountByStatus returns the number of items in each status
	CountByStatus(ctx context.Context) (map[Status]int64, error)
}
