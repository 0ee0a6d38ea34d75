package queue

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/printshop/backend/internal/domain/shared"
)

// Kind tags the task carried by a work item
type Kind string

const (
	KindProcessDraft     Kind = "process-draft"
	KindFinalizePrintJob Kind = "finalize-print-job"
)

// IsValid checks if the Kind is a valid value
func (k Kind) IsValid() bool {
	switch k {
	case KindProcessDraft, KindFinalizePrintJob:
		return true
	}
	return false
}

// String returns the string representation of Kind
func (k Kind) String() string {
	return string(k)
}

// AllKinds returns every kind a worker must be able to handle
func AllKinds() []Kind {
	return []Kind{KindProcessDraft, KindFinalizePrintJob}
}

// Task is the closed set of payloads a work item may carry.
// Consumers dispatch with a type switch over the concrete types below.
type Task interface {
	Kind() Kind
	// Owner returns the user the task acts for and the entity it operates on
	Owner() (userID uuid.UUID, subjectID uuid.UUID)
	sealed()
}

// ProcessDraft converts a draft's upload and/or applies edit actions to it.
// Actions holds the raw JSON action list accepted by the document engine.
// InputFileRef is the file the task reads: the original upload for a
// conversion, the converted PDF current at enqueue time for an edit.
type ProcessDraft struct {
	DraftID      uuid.UUID       `json:"draft_id"`
	UserID       uuid.UUID       `json:"user_id"`
	InputFileRef string          `json:"input_file_ref,omitempty"`
	Actions      json.RawMessage `json:"actions,omitempty"`
}

// Kind implements Task
func (ProcessDraft) Kind() Kind { return KindProcessDraft }

// Owner implements Task
func (t ProcessDraft) Owner() (uuid.UUID, uuid.UUID) { return t.UserID, t.DraftID }

func (ProcessDraft) sealed() {}

// FinalizePrintJob turns a paid job into an immutable queued job
type FinalizePrintJob struct {
	PrintJobID uuid.UUID `json:"print_job_id"`
	UserID     uuid.UUID `json:"user_id"`
	DraftID    uuid.UUID `json:"draft_id"`
	PaymentRef string    `json:"payment_ref"`
}

// Kind implements Task
func (FinalizePrintJob) Kind() Kind { return KindFinalizePrintJob }

// Owner implements Task
func (t FinalizePrintJob) Owner() (uuid.UUID, uuid.UUID) { return t.UserID, t.PrintJobID }

func (FinalizePrintJob) sealed() {}

// DecodeTask decodes a payload for the given kind
func DecodeTask(kind Kind, payload []byte) (Task, error) {
	switch kind {
	case KindProcessDraft:
		var t ProcessDraft
		if err := json.Unmarshal(payload, &t); err != nil {
			return nil, shared.WrapDomainError(shared.CodeValidation, "malformed process-draft payload", err)
		}
		return t, nil
	case KindFinalizePrintJob:
		var t FinalizePrintJob
		if err := json.Unmarshal(payload, &t); err != nil {
			return nil, shared.WrapDomainError(shared.CodeValidation, "malformed finalize-print-job payload", err)
		}
		return t, nil
	default:
		return nil, shared.NewValidationError(fmt.Sprintf("unknown work item kind %q", kind))
	}
}
