package printing

import (
	"github.com/google/uuid"
	"github.com/printshop/backend/internal/domain/shared"
)

// Draft is a user's editable working document before it is paid for.
// Once Status reaches printed the draft is frozen and rejects every mutation.
type Draft struct {
	shared.BaseAggregateRoot
	UserID              uuid.UUID
	Source              DraftSource
	Status              DraftStatus
	OriginalFileName    string
	OriginalContentType string
	OriginalFileRef     string
	ConvertedFileRef    string
	PageCount           int
}

// NewDraft creates a draft in uploaded status
func NewDraft(userID uuid.UUID, source DraftSource, fileName, contentType, fileRef string) (*Draft, error) {
	if userID == uuid.Nil {
		return nil, shared.NewValidationError("user id cannot be empty")
	}
	if !source.IsValid() {
		return nil, shared.NewValidationError("invalid or missing source ('shop' or 'editor' required)")
	}
	if fileRef == "" {
		return nil, shared.NewValidationError("original file reference cannot be empty")
	}

	d := &Draft{
		BaseAggregateRoot:   shared.NewBaseAggregateRoot(),
		UserID:              userID,
		Source:              source,
		Status:              DraftStatusUploaded,
		OriginalFileName:    fileName,
		OriginalContentType: contentType,
		OriginalFileRef:     fileRef,
	}
	d.AddDomainEvent(NewDraftCreatedEvent(d))
	return d, nil
}

// IsOwnedBy reports whether the draft belongs to userID
func (d *Draft) IsOwnedBy(userID uuid.UUID) bool {
	return d.UserID == userID
}

// IsFrozen reports whether the draft has been finalized
func (d *Draft) IsFrozen() bool {
	return d.Status.IsFrozen()
}

func (d *Draft) transition(target DraftStatus) error {
	if d.IsFrozen() {
		return shared.NewForbiddenError("draft is frozen and can no longer change")
	}
	if !d.Status.CanTransitionTo(target) {
		return shared.NewInvalidTransitionError("draft", string(d.Status), string(target))
	}
	old := d.Status
	d.Status = target
	d.RecordChange(NewDraftStatusChangedEvent(d, old, target))
	return nil
}

// MarkConverting moves the draft into conversion
func (d *Draft) MarkConverting() error {
	return d.transition(DraftStatusConverting)
}

// MarkReady records the converted (or edited) file and makes the draft previewable
func (d *Draft) MarkReady(fileRef string, pageCount int) error {
	if fileRef == "" {
		return shared.NewValidationError("converted file reference cannot be empty")
	}
	if pageCount < 1 {
		return shared.NewValidationError("page count must be at least 1")
	}
	if err := d.transition(DraftStatusReadyForPreview); err != nil {
		return err
	}
	d.ConvertedFileRef = fileRef
	d.PageCount = pageCount
	return nil
}

// MarkConversionFailed records a converter failure
func (d *Draft) MarkConversionFailed() error {
	return d.transition(DraftStatusConversionFailed)
}

// MarkFailed records a processing failure
func (d *Draft) MarkFailed() error {
	if d.Status == DraftStatusFailed {
		return nil
	}
	return d.transition(DraftStatusFailed)
}

// MarkProcessing moves a previewable draft into background editing
func (d *Draft) MarkProcessing() error {
	return d.transition(DraftStatusProcessing)
}

// EnsureEditable returns ForbiddenError unless the draft accepts edits
func (d *Draft) EnsureEditable() error {
	if d.IsFrozen() {
		return shared.NewForbiddenError("draft is frozen and can no longer be edited")
	}
	if d.Status != DraftStatusReadyForPreview {
		return shared.NewForbiddenError("draft can only be edited in ready_for_preview, current status is " + d.Status.String())
	}
	return nil
}

// ApplyEditResult stores the output of an edit without changing status
func (d *Draft) ApplyEditResult(fileRef string, pageCount int) error {
	if err := d.EnsureEditable(); err != nil {
		return err
	}
	if fileRef == "" {
		return shared.NewValidationError("edited file reference cannot be empty")
	}
	d.ConvertedFileRef = fileRef
	d.PageCount = pageCount
	d.RecordChange(nil)
	return nil
}

// AdvanceToCheckout moves the draft from preview to checkout
func (d *Draft) AdvanceToCheckout() error {
	if d.IsFrozen() {
		return shared.NewForbiddenError("draft is frozen and can no longer change")
	}
	if d.Status != DraftStatusReadyForPreview {
		return shared.NewForbiddenError("draft must be in ready_for_preview to advance to checkout, current status is " + d.Status.String())
	}
	return d.transition(DraftStatusReadyForCheckout)
}

// MarkReadyForPrint is applied when a print job is created from the draft
func (d *Draft) MarkReadyForPrint() error {
	if d.Status == DraftStatusReadyForPrint {
		return nil
	}
	return d.transition(DraftStatusReadyForPrint)
}

// Freeze marks the draft printed. Freezing a frozen draft is a no-op.
func (d *Draft) Freeze() error {
	if d.IsFrozen() {
		return nil
	}
	if !d.Status.CanTransitionTo(DraftStatusPrinted) {
		return shared.NewForbiddenError("draft in status " + d.Status.String() + " cannot be frozen")
	}
	old := d.Status
	d.Status = DraftStatusPrinted
	d.RecordChange(NewDraftStatusChangedEvent(d, old, DraftStatusPrinted))
	return nil
}

// EnsureDeletable returns ForbiddenError once the draft is frozen
func (d *Draft) EnsureDeletable() error {
	if d.IsFrozen() {
		return shared.NewForbiddenError("printed drafts cannot be deleted")
	}
	return nil
}

// EnsurePurchasable checks a print job may be created from this draft
func (d *Draft) EnsurePurchasable() error {
	if d.IsFrozen() {
		return shared.NewForbiddenError("draft has already been printed")
	}
	if d.Status != DraftStatusReadyForCheckout && d.Status != DraftStatusReadyForPrint {
		return shared.NewForbiddenError("draft is not ready, please review it first")
	}
	if d.ConvertedFileRef == "" || d.PageCount < 1 {
		return shared.NewValidationError("draft has no converted document")
	}
	return nil
}

// NeedsConversion reports whether the draft has no converted PDF yet
func (d *Draft) NeedsConversion() bool {
	return d.ConvertedFileRef == ""
}
