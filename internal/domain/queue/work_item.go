package queue

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/printshop/backend/internal/domain/shared"
)

// Status represents the lifecycle of a work item
type Status string

const (
	StatusPending   Status = "pending"
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// IsValid checks if the Status is a valid value
func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusRunning, StatusCompleted, StatusFailed:
		return true
	}
	return false
}

// String returns the string representation of Status
func (s Status) String() string {
	return string(s)
}

// IsTerminal returns true for completed and permanently failed items
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// DefaultMaxAttempts is used when an item is enqueued without an explicit limit
const DefaultMaxAttempts = 3

// WorkItem is a unit of asynchronous background work.
type WorkItem struct {
	ID          uuid.UUID
	Kind        Kind
	SubjectID   uuid.UUID // the draft or print job the task operates on
	Payload     []byte
	Status      Status
	Attempts    int
	MaxAttempts int
	RunAt       time.Time
	LockedBy    string
	LockedUntil *time.Time
	HeartbeatAt *time.Time
	LastError   string
	CompletedAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NewWorkItem creates a pending work item for task
func NewWorkItem(task Task, maxAttempts int) (*WorkItem, error) {
	if task == nil {
		return nil, shared.NewValidationError("task is required")
	}
	kind := task.Kind()
	if !kind.IsValid() {
		return nil, shared.NewValidationError(fmt.Sprintf("unknown work item kind %q", kind))
	}
	payload, err := json.Marshal(task)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s payload: %w", kind, err)
	}
	if maxAttempts < 1 {
		maxAttempts = DefaultMaxAttempts
	}
	_, subjectID := task.Owner()
	now := time.Now().UTC()
	return &WorkItem{
		ID:          uuid.New(),
		Kind:        kind,
		SubjectID:   subjectID,
		Payload:     payload,
		Status:      StatusPending,
		MaxAttempts: maxAttempts,
		RunAt:       now,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// Task decodes the payload into the task type selected by Kind
func (w *WorkItem) Task() (Task, error) {
	return DecodeTask(w.Kind, w.Payload)
}

// CanRetry returns true if another attempt is allowed
func (w *WorkItem) CanRetry() bool {
	return w.Attempts < w.MaxAttempts
}

// MarkCompleted marks the item as done
func (w *WorkItem) MarkCompleted() {
	now := time.Now().UTC()
	w.Status = StatusCompleted
	w.CompletedAt = &now
	w.LockedBy = ""
	w.LockedUntil = nil
	w.LastError = ""
	w.UpdatedAt = now
}

// MarkFailed records a failed attempt. If attempts remain and the error is
// retryable the item goes back to pending with RunAt pushed out by delay;
// otherwise it is permanently failed. Returns true when permanently failed.
func (w *WorkItem) MarkFailed(errMsg string, retryable bool, delay time.Duration) bool {
	now := time.Now().UTC()
	w.LastError = errMsg
	w.LockedBy = ""
	w.LockedUntil = nil
	w.UpdatedAt = now

	if !retryable || !w.CanRetry() {
		w.Status = StatusFailed
		return true
	}
	w.Status = StatusPending
	w.RunAt = now.Add(delay)
	return false
}

// ResetForRetry puts a permanently failed item back in the queue with a fresh attempt budget
func (w *WorkItem) ResetForRetry() error {
	if w.Status != StatusFailed {
		return errors.New("can only retry permanently failed work items")
	}
	now := time.Now().UTC()
	w.Status = StatusPending
	w.Attempts = 0
	w.LastError = ""
	w.RunAt = now
	w.UpdatedAt = now
	return nil
}

// IsActive reports whether the item is waiting for or holding a worker
func (w *WorkItem) IsActive() bool {
	return w.Status == StatusPending || w.Status == StatusRunning
}

// IsLeaseExpired reports whether a running item's lease has lapsed
func (w *WorkItem) IsLeaseExpired(now time.Time) bool {
	return w.Status == StatusRunning && w.LockedUntil != nil && now.After(*w.LockedUntil)
}
