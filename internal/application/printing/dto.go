package printing

import (
	"time"

	"github.com/google/uuid"
	"github.com/printshop/backend/internal/domain/document"
	"github.com/printshop/backend/internal/domain/printing"
	"github.com/shopspring/decimal"
)

// =============================================================================
// Draft DTOs
// =============================================================================

// CreateDraftRequest carries an uploaded file. Multipart parsing happens in
// the HTTP layer; the service only sees the bytes.
type CreateDraftRequest struct {
	Source      string
	FileName    string
	ContentType string
	Data        []byte
}

// EditDraftRequest represents a list of editor instructions for a draft
type EditDraftRequest struct {
	Instructions []document.Action `json:"instructions" binding:"required,dive"`
	// Advance moves the draft to ready_for_checkout once the edit is stored
	Advance bool `json:"advance"`
	// Async hands the edit to a background worker instead of applying it inline
	Async bool `json:"async"`
}

// DraftResponse represents a draft response
type DraftResponse struct {
	ID               uuid.UUID `json:"id"`
	UserID           uuid.UUID `json:"user_id"`
	Source           string    `json:"source"`
	Status           string    `json:"status"`
	OriginalFileName string    `json:"original_file_name"`
	OriginalFileType string    `json:"original_file_type"`
	ConvertedFileRef string    `json:"converted_pdf_url,omitempty"`
	PageCount        int       `json:"page_count"`
	Version          int       `json:"version"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// EditDraftResponse reports the outcome of an edit
type EditDraftResponse struct {
	Draft        DraftResponse            `json:"draft"`
	Queued       bool                     `json:"queued"`
	WorkItemID   *uuid.UUID               `json:"work_item_id,omitempty"`
	Applied      int                      `json:"applied"`
	Replacements int                      `json:"replacements"`
	Skipped      []document.SkippedAction `json:"skipped,omitempty"`
}

// ToDraftResponse converts a domain Draft to DraftResponse
func ToDraftResponse(d *printing.Draft) DraftResponse {
	return DraftResponse{
		ID:               d.ID,
		UserID:           d.UserID,
		Source:           d.Source.String(),
		Status:           d.Status.String(),
		OriginalFileName: d.OriginalFileName,
		OriginalFileType: d.OriginalContentType,
		ConvertedFileRef: d.ConvertedFileRef,
		PageCount:        d.PageCount,
		Version:          d.Version,
		CreatedAt:        d.CreatedAt,
		UpdatedAt:        d.UpdatedAt,
	}
}

// ToDraftResponses converts a slice of drafts
func ToDraftResponses(drafts []printing.Draft) []DraftResponse {
	out := make([]DraftResponse, len(drafts))
	for i := range drafts {
		out[i] = ToDraftResponse(&drafts[i])
	}
	return out
}

// =============================================================================
// Print Job DTOs
// =============================================================================

// CreatePrintJobRequest represents a request to order prints of a draft
type CreatePrintJobRequest struct {
	ShopID       uuid.UUID             `json:"shop_id" binding:"required"`
	DraftID      uuid.UUID             `json:"draft_id" binding:"required"`
	PrintOptions printing.PrintOptions `json:"print_options"`
}

// ConfirmPaymentRequest is the payment signal delivered by the gateway layer
type ConfirmPaymentRequest struct {
	PrintJobID uuid.UUID `json:"printJobId" binding:"required"`
	PaymentID  string    `json:"paymentId" binding:"required,max=255"`
}

// UpdatePrintJobStatusRequest is a shop-side status change
type UpdatePrintJobStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// PrintJobResponse represents a print job response
type PrintJobResponse struct {
	ID            uuid.UUID             `json:"id"`
	UserID        uuid.UUID             `json:"user_id"`
	ShopID        uuid.UUID             `json:"shop_id"`
	DraftID       uuid.UUID             `json:"draft_id"`
	PrintOptions  printing.PrintOptions `json:"print_options"`
	Amount        decimal.Decimal       `json:"amount"`
	PaymentStatus string                `json:"payment_status"`
	Status        string                `json:"status"`
	FinalFileRef  *string               `json:"final_pdf_url,omitempty"`
	FinalFileID   *uuid.UUID            `json:"file_id,omitempty"`
	QueueNumber   int                   `json:"queue_number"`
	CreatedAt     time.Time             `json:"created_at"`
	UpdatedAt     time.Time             `json:"updated_at"`
}

// ConfirmPaymentResponse reports how a payment signal was handled
type ConfirmPaymentResponse struct {
	PrintJob   PrintJobResponse `json:"printJob"`
	WorkItemID *uuid.UUID       `json:"work_item_id,omitempty"`
	// AlreadyPaid is set when the job was finalized by an earlier signal
	AlreadyPaid bool `json:"already_paid"`
	// Duplicate is set when this confirmation id was seen before
	Duplicate bool   `json:"duplicate"`
	Message   string `json:"message"`
}

// ToPrintJobResponse converts a domain PrintJob to PrintJobResponse
func ToPrintJobResponse(j *printing.PrintJob) PrintJobResponse {
	return PrintJobResponse{
		ID:            j.ID,
		UserID:        j.UserID,
		ShopID:        j.ShopID,
		DraftID:       j.DraftID,
		PrintOptions:  j.Options,
		Amount:        j.Amount,
		PaymentStatus: j.PaymentStatus.String(),
		Status:        j.Status.String(),
		FinalFileRef:  j.FinalFileRef,
		FinalFileID:   j.FinalFileID,
		QueueNumber:   j.QueueNumber,
		CreatedAt:     j.CreatedAt,
		UpdatedAt:     j.UpdatedAt,
	}
}

// ToPrintJobResponses converts a slice of print jobs
func ToPrintJobResponses(jobs []printing.PrintJob) []PrintJobResponse {
	out := make([]PrintJobResponse, len(jobs))
	for i := range jobs {
		out[i] = ToPrintJobResponse(&jobs[i])
	}
	return out
}

// =============================================================================
// Receipt and Shop DTOs
// =============================================================================

// ReceiptResponse represents a payment receipt
type ReceiptResponse struct {
	ID         uuid.UUID       `json:"id"`
	PrintJobID uuid.UUID       `json:"print_job_id"`
	UserID     uuid.UUID       `json:"user_id"`
	ShopID     uuid.UUID       `json:"shop_id"`
	Amount     decimal.Decimal `json:"amount"`
	PaymentRef string          `json:"payment_id"`
	ExpiresAt  time.Time       `json:"expires_at"`
	CreatedAt  time.Time       `json:"created_at"`
}

// ToReceiptResponse converts a domain Receipt to ReceiptResponse
func ToReceiptResponse(r *printing.Receipt) ReceiptResponse {
	return ReceiptResponse{
		ID:         r.ID,
		PrintJobID: r.PrintJobID,
		UserID:     r.UserID,
		ShopID:     r.ShopID,
		Amount:     r.Amount,
		PaymentRef: r.PaymentRef,
		ExpiresAt:  r.ExpiresAt,
		CreatedAt:  r.CreatedAt,
	}
}

// ShopResponse represents a shop and its prices
type ShopResponse struct {
	ID         uuid.UUID       `json:"id"`
	Name       string          `json:"name"`
	Location   string          `json:"location"`
	IsOpen     bool            `json:"is_open"`
	PriceBW    decimal.Decimal `json:"price_bw_a4"`
	PriceColor decimal.Decimal `json:"price_color_a4"`
}

// UpdateShopStatusRequest opens or closes a shop
type UpdateShopStatusRequest struct {
	IsOpen *bool `json:"is_open" binding:"required"`
}

// UpdateShopPricingRequest changes per-page prices. Omitted prices are kept.
type UpdateShopPricingRequest struct {
	PriceBW    *decimal.Decimal `json:"price_bw_a4"`
	PriceColor *decimal.Decimal `json:"price_color_a4"`
}

// ReceiptDocument is everything printed on a receipt PDF
type ReceiptDocument struct {
	Receipt  ReceiptResponse
	Job      PrintJobResponse
	ShopName string
	Location string
}

// ToShopResponse converts a domain Shop to ShopResponse
func ToShopResponse(s *printing.Shop) ShopResponse {
	return ShopResponse{
		ID:         s.ID,
		Name:       s.Name,
		Location:   s.Location,
		IsOpen:     s.IsOpen,
		PriceBW:    s.PriceBW,
		PriceColor: s.PriceColor,
	}
}

// FinalizeResult describes a finalized print job
type FinalizeResult struct {
	PrintJobID   uuid.UUID
	ReceiptID    uuid.UUID
	FinalFileRef string
	ExpiresAt    time.Time
	// AlreadyFinalized is set when an earlier attempt had already committed
	AlreadyFinalized bool
}
