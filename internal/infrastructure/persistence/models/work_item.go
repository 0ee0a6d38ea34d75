package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/printshop/backend/internal/domain/queue"
)

// WorkItemModel is the GORM model for the work_items table
type WorkItemModel struct {
	ID          uuid.UUID  `gorm:"type:uuid;primary_key"`
	Kind        string     `gorm:"type:varchar(50);not null;index:idx_work_items_due,priority:2"`
	SubjectID   *uuid.UUID `gorm:"column:subject_id;type:uuid;index:idx_work_items_subject"`
	Payload     string     `gorm:"type:text;not null"`
	Status      string     `gorm:"type:varchar(20);not null;index:idx_work_items_due,priority:1"`
	Attempts    int        `gorm:"not null;default:0"`
	MaxAttempts int        `gorm:"column:max_attempts;not null;default:3"`
	RunAt       time.Time  `gorm:"column:run_at;not null;index:idx_work_items_due,priority:3"`
	LockedBy    string     `gorm:"column:locked_by;type:varchar(100)"`
	LockedUntil *time.Time `gorm:"column:locked_until"`
	HeartbeatAt *time.Time `gorm:"column:heartbeat_at"`
	LastError   string     `gorm:"column:last_error;type:text"`
	CompletedAt *time.Time `gorm:"column:completed_at"`
	CreatedAt   time.Time  `gorm:"not null"`
	UpdatedAt   time.Time  `gorm:"not null"`
}

// TableName returns the table name for WorkItemModel
func (WorkItemModel) TableName() string {
	return "work_items"
}

// ToDomain converts WorkItemModel to domain WorkItem
func (m *WorkItemModel) ToDomain() *queue.WorkItem {
	return &queue.WorkItem{
		ID:          m.ID,
		Kind:        queue.Kind(m.Kind),
		SubjectID:   derefUUID(m.SubjectID),
		Payload:     []byte(m.Payload),
		Status:      queue.Status(m.Status),
		Attempts:    m.Attempts,
		MaxAttempts: m.MaxAttempts,
		RunAt:       m.RunAt.UTC(),
		LockedBy:    m.LockedBy,
		LockedUntil: utcPtr(m.LockedUntil),
		HeartbeatAt: utcPtr(m.HeartbeatAt),
		LastError:   m.LastError,
		CompletedAt: utcPtr(m.CompletedAt),
		CreatedAt:   m.CreatedAt.UTC(),
		UpdatedAt:   m.UpdatedAt.UTC(),
	}
}

// WorkItemModelFromDomain creates a WorkItemModel from domain WorkItem
func WorkItemModelFromDomain(w *queue.WorkItem) *WorkItemModel {
	return &WorkItemModel{
		ID:          w.ID,
		Kind:        string(w.Kind),
		SubjectID:   uuidPtr(w.SubjectID),
		Payload:     string(w.Payload),
		Status:      string(w.Status),
		Attempts:    w.Attempts,
		MaxAttempts: w.MaxAttempts,
		RunAt:       w.RunAt,
		LockedBy:    w.LockedBy,
		LockedUntil: w.LockedUntil,
		HeartbeatAt: w.HeartbeatAt,
		LastError:   w.LastError,
		CompletedAt: w.CompletedAt,
		CreatedAt:   w.CreatedAt,
		UpdatedAt:   w.UpdatedAt,
	}
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}

func uuidPtr(id uuid.UUID) *uuid.UUID {
	if id == uuid.Nil {
		return nil
	}
	return &id
}

func derefUUID(id *uuid.UUID) uuid.UUID {
	if id == nil {
		return uuid.Nil
	}
	return *id
}
