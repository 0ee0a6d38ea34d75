package printing

// DraftSource identifies where a draft was uploaded from
type DraftSource string

const (
	DraftSourceShop   DraftSource = "shop"
	DraftSourceEditor DraftSource = "editor"
)

// IsValid checks if the DraftSource is a valid value
func (s DraftSource) IsValid() bool {
	return s == DraftSourceShop || s == DraftSourceEditor
}

// String returns the string representation of DraftSource
func (s DraftSource) String() string {
	return string(s)
}

// DraftStatus represents the lifecycle status of a draft
type DraftStatus string

const (
	DraftStatusUploaded         DraftStatus = "uploaded"
	DraftStatusConverting       DraftStatus = "converting"
	DraftStatusReadyForPreview  DraftStatus = "ready_for_preview"
	DraftStatusReadyForCheckout DraftStatus = "ready_for_checkout"
	DraftStatusReadyForPrint    DraftStatus = "ready_for_print"
	DraftStatusProcessing       DraftStatus = "processing"
	DraftStatusPrinted          DraftStatus = "printed"
	DraftStatusConversionFailed DraftStatus = "conversion_failed"
	DraftStatusFailed           DraftStatus = "failed"
)

// IsValid checks if the DraftStatus is a valid value
func (s DraftStatus) IsValid() bool {
	switch s {
	case DraftStatusUploaded, DraftStatusConverting, DraftStatusReadyForPreview,
		DraftStatusReadyForCheckout, DraftStatusReadyForPrint, DraftStatusProcessing,
		DraftStatusPrinted, DraftStatusConversionFailed, DraftStatusFailed:
		return true
	}
	return false
}

// String returns the string representation of DraftStatus
func (s DraftStatus) String() string {
	return string(s)
}

// IsFrozen returns true once the draft has been finalized into a paid job
func (s DraftStatus) IsFrozen() bool {
	return s == DraftStatusPrinted
}

// CanTransitionTo checks if the draft status can move to the target status
func (s DraftStatus) CanTransitionTo(target DraftStatus) bool {
	switch s {
	case DraftStatusUploaded:
		return target == DraftStatusConverting || target == DraftStatusConversionFailed || target == DraftStatusFailed
	case DraftStatusConverting:
		return target == DraftStatusReadyForPreview || target == DraftStatusConversionFailed || target == DraftStatusFailed
	case DraftStatusConversionFailed:
		return target == DraftStatusConverting || target == DraftStatusFailed
	case DraftStatusReadyForPreview:
		return target == DraftStatusProcessing || target == DraftStatusReadyForCheckout || target == DraftStatusFailed
	case DraftStatusProcessing:
		return target == DraftStatusReadyForPreview || target == DraftStatusFailed
	case DraftStatusFailed:
		return target == DraftStatusConverting || target == DraftStatusProcessing
	case DraftStatusReadyForCheckout:
		return target == DraftStatusReadyForPrint || target == DraftStatusPrinted
	case DraftStatusReadyForPrint:
		return target == DraftStatusPrinted
	case DraftStatusPrinted:
		return false
	}
	return false
}

// PaymentStatus represents the payment state of a print job
type PaymentStatus string

const (
	PaymentStatusPendingPayment PaymentStatus = "PENDING_PAYMENT"
	PaymentStatusPaid           PaymentStatus = "PAID"
	PaymentStatusFailed         PaymentStatus = "FAILED"
	PaymentStatusCancelled      PaymentStatus = "CANCELLED"
)

// IsValid checks if the PaymentStatus is a valid value
func (s PaymentStatus) IsValid() bool {
	switch s {
	case PaymentStatusPendingPayment, PaymentStatusPaid, PaymentStatusFailed, PaymentStatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of PaymentStatus
func (s PaymentStatus) String() string {
	return string(s)
}

// IsTerminal returns true if no further payment transitions are possible
func (s PaymentStatus) IsTerminal() bool {
	return len(PaymentTransitions[s]) == 0
}

// CanTransitionTo checks the payment table
func (s PaymentStatus) CanTransitionTo(target PaymentStatus) bool {
	return IsValidTransition(s, target, PaymentTransitions)
}

// JobStatus represents the fulfilment status of a print job
type JobStatus string

const (
	JobStatusCreated           JobStatus = "CREATED"
	JobStatusPendingPayment    JobStatus = "PENDING_PAYMENT"
	JobStatusProcessingPayment JobStatus = "PROCESSING_PAYMENT"
	JobStatusQueued            JobStatus = "QUEUED"
	JobStatusPrinting          JobStatus = "PRINTING"
	JobStatusCompleted         JobStatus = "COMPLETED"
	JobStatusCancelled         JobStatus = "CANCELLED"
)

// IsValid checks if the JobStatus is a valid value
func (s JobStatus) IsValid() bool {
	switch s {
	case JobStatusCreated, JobStatusPendingPayment, JobStatusProcessingPayment,
		JobStatusQueued, JobStatusPrinting, JobStatusCompleted, JobStatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of JobStatus
func (s JobStatus) String() string {
	return string(s)
}

// IsTerminal returns true if this is a terminal status (no further transitions)
func (s JobStatus) IsTerminal() bool {
	return len(PrintTransitions[s]) == 0
}

// CanTransitionTo checks the print-status table
func (s JobStatus) CanTransitionTo(target JobStatus) bool {
	return IsValidTransition(s, target, PrintTransitions)
}

// ColorMode selects black-and-white or color printing
type ColorMode string

const (
	ColorModeBW    ColorMode = "bw"
	ColorModeColor ColorMode = "color"
)

// IsValid checks if the ColorMode is a valid value
func (c ColorMode) IsValid() bool {
	return c == ColorModeBW || c == ColorModeColor
}

// String returns the string representation of ColorMode
func (c ColorMode) String() string {
	return string(c)
}
