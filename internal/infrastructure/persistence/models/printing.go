package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/printshop/backend/internal/domain/printing"
	"github.com/shopspring/decimal"
)

// DraftModel is the GORM model for the drafts table
type DraftModel struct {
	AggregateModel
	UserID              uuid.UUID `gorm:"type:uuid;not null;index"`
	Source              string    `gorm:"type:varchar(20);not null"`
	Status              string    `gorm:"type:varchar(30);not null;index"`
	OriginalFileName    string    `gorm:"type:varchar(255)"`
	OriginalContentType string    `gorm:"type:varchar(255)"`
	OriginalFileRef     string    `gorm:"type:text;not null"`
	ConvertedFileRef    string    `gorm:"type:text"`
	PageCount           int       `gorm:"not null;default:0"`
}

// TableName returns the table name for DraftModel
func (DraftModel) TableName() string {
	return "drafts"
}

// ToDomain converts DraftModel to domain Draft
func (m *DraftModel) ToDomain() *printing.Draft {
	return &printing.Draft{
		BaseAggregateRoot:   m.ToDomainAggregateRoot(),
		UserID:              m.UserID,
		Source:              printing.DraftSource(m.Source),
		Status:              printing.DraftStatus(m.Status),
		OriginalFileName:    m.OriginalFileName,
		OriginalContentType: m.OriginalContentType,
		OriginalFileRef:     m.OriginalFileRef,
		ConvertedFileRef:    m.ConvertedFileRef,
		PageCount:           m.PageCount,
	}
}

// DraftModelFromDomain creates a DraftModel from domain Draft
func DraftModelFromDomain(d *printing.Draft) *DraftModel {
	m := &DraftModel{
		UserID:              d.UserID,
		Source:              string(d.Source),
		Status:              string(d.Status),
		OriginalFileName:    d.OriginalFileName,
		OriginalContentType: d.OriginalContentType,
		OriginalFileRef:     d.OriginalFileRef,
		ConvertedFileRef:    d.ConvertedFileRef,
		PageCount:           d.PageCount,
	}
	m.FromDomainAggregateRoot(d.BaseAggregateRoot)
	return m
}

// PrintJobModel is the GORM model for the print_jobs table
type PrintJobModel struct {
	AggregateModel
	UserID        uuid.UUID       `gorm:"type:uuid;not null;index"`
	ShopID        uuid.UUID       `gorm:"type:uuid;not null;index:idx_print_jobs_shop_created"`
	DraftID       uuid.UUID       `gorm:"type:uuid;not null;index"`
	ColorMode     string          `gorm:"column:color_mode;type:varchar(10);not null;default:'bw'"`
	Copies        int             `gorm:"not null;default:1"`
	Layout        string          `gorm:"type:varchar(64)"`
	Amount        decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	PaymentStatus string          `gorm:"column:payment_status;type:varchar(30);not null"`
	Status        string          `gorm:"type:varchar(30);not null;index"`
	FinalFileRef  *string         `gorm:"column:final_file_ref;type:text"`
	FinalFileID   *uuid.UUID      `gorm:"column:final_file_id;type:uuid"`
	QueueNumber   int             `gorm:"column:queue_number;not null;default:0"`
}

// TableName returns the table name for PrintJobModel
func (PrintJobModel) TableName() string {
	return "print_jobs"
}

// ToDomain converts PrintJobModel to domain PrintJob
func (m *PrintJobModel) ToDomain() *printing.PrintJob {
	return &printing.PrintJob{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		UserID:            m.UserID,
		ShopID:            m.ShopID,
		DraftID:           m.DraftID,
		Options: printing.PrintOptions{
			Color:  printing.ColorMode(m.ColorMode),
			Copies: m.Copies,
			Layout: m.Layout,
		},
		Amount:        m.Amount,
		PaymentStatus: printing.PaymentStatus(m.PaymentStatus),
		Status:        printing.JobStatus(m.Status),
		FinalFileRef:  m.FinalFileRef,
		FinalFileID:   m.FinalFileID,
		QueueNumber:   m.QueueNumber,
	}
}

// PrintJobModelFromDomain creates a PrintJobModel from domain PrintJob
func PrintJobModelFromDomain(j *printing.PrintJob) *PrintJobModel {
	m := &PrintJobModel{
		UserID:        j.UserID,
		ShopID:        j.ShopID,
		DraftID:       j.DraftID,
		ColorMode:     string(j.Options.Color),
		Copies:        j.Options.Copies,
		Layout:        j.Options.Layout,
		Amount:        j.Amount,
		PaymentStatus: string(j.PaymentStatus),
		Status:        string(j.Status),
		FinalFileRef:  j.FinalFileRef,
		FinalFileID:   j.FinalFileID,
		QueueNumber:   j.QueueNumber,
	}
	m.FromDomainAggregateRoot(j.BaseAggregateRoot)
	return m
}

// ReceiptModel is the GORM model for the receipts table.
// print_job_id is unique so a job can never hold two receipts.
type ReceiptModel struct {
	BaseModel
	PrintJobID uuid.UUID       `gorm:"column:print_job_id;type:uuid;not null;uniqueIndex"`
	UserID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	ShopID     uuid.UUID       `gorm:"type:uuid;not null"`
	Amount     decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	PaymentRef string          `gorm:"column:payment_ref;type:varchar(255)"`
	ExpiresAt  time.Time       `gorm:"column:expires_at;not null;index"`
}

// TableName returns the table name for ReceiptModel
func (ReceiptModel) TableName() string {
	return "receipts"
}

// ToDomain converts ReceiptModel to domain Receipt
func (m *ReceiptModel) ToDomain() *printing.Receipt {
	return &printing.Receipt{
		BaseEntity: m.BaseModel.ToDomain(),
		PrintJobID: m.PrintJobID,
		UserID:     m.UserID,
		ShopID:     m.ShopID,
		Amount:     m.Amount,
		PaymentRef: m.PaymentRef,
		ExpiresAt:  m.ExpiresAt.UTC(),
	}
}

// ReceiptModelFromDomain creates a ReceiptModel from domain Receipt
func ReceiptModelFromDomain(r *printing.Receipt) *ReceiptModel {
	m := &ReceiptModel{
		PrintJobID: r.PrintJobID,
		UserID:     r.UserID,
		ShopID:     r.ShopID,
		Amount:     r.Amount,
		PaymentRef: r.PaymentRef,
		ExpiresAt:  r.ExpiresAt,
	}
	m.FromDomainBaseEntity(r.BaseEntity)
	return m
}

// FileModel is the GORM model for the files table
type FileModel struct {
	BaseModel
	UserID     uuid.UUID `gorm:"type:uuid;not null;index"`
	FileName   string    `gorm:"column:file_name;type:varchar(255);not null"`
	StorageRef string    `gorm:"column:storage_ref;type:text;not null"`
	PageCount  int       `gorm:"column:page_count;not null;default:0"`
	FileType   string    `gorm:"column:file_type;type:varchar(20);not null;default:'pdf'"`
}

// TableName returns the table name for FileModel
func (FileModel) TableName() string {
	return "files"
}

// ToDomain converts FileModel to domain FileRecord
func (m *FileModel) ToDomain() *printing.FileRecord {
	return &printing.FileRecord{
		BaseEntity: m.BaseModel.ToDomain(),
		UserID:     m.UserID,
		FileName:   m.FileName,
		StorageRef: m.StorageRef,
		PageCount:  m.PageCount,
		FileType:   m.FileType,
	}
}

// FileModelFromDomain creates a FileModel from domain FileRecord
func FileModelFromDomain(f *printing.FileRecord) *FileModel {
	m := &FileModel{
		UserID:     f.UserID,
		FileName:   f.FileName,
		StorageRef: f.StorageRef,
		PageCount:  f.PageCount,
		FileType:   f.FileType,
	}
	m.FromDomainBaseEntity(f.BaseEntity)
	return m
}

// ShopModel is the GORM model for the shops table
type ShopModel struct {
	BaseModel
	Name       string          `gorm:"type:varchar(200);not null"`
	Location   string          `gorm:"type:varchar(255)"`
	IsOpen     bool            `gorm:"column:is_open;not null"`
	PriceBW    decimal.Decimal `gorm:"column:price_bw;type:decimal(12,2);not null;default:0"`
	PriceColor decimal.Decimal `gorm:"column:price_color;type:decimal(12,2);not null;default:0"`
}

// TableName returns the table name for ShopModel
func (ShopModel) TableName() string {
	return "shops"
}

// ToDomain converts ShopModel to domain Shop
func (m *ShopModel) ToDomain() *printing.Shop {
	return &printing.Shop{
		BaseEntity: m.BaseModel.ToDomain(),
		Name:       m.Name,
		Location:   m.Location,
		IsOpen:     m.IsOpen,
		PriceBW:    m.PriceBW,
		PriceColor: m.PriceColor,
	}
}

// ShopModelFromDomain creates a ShopModel from domain Shop
func ShopModelFromDomain(s *printing.Shop) *ShopModel {
	m := &ShopModel{
		Name:       s.Name,
		Location:   s.Location,
		IsOpen:     s.IsOpen,
		PriceBW:    s.PriceBW,
		PriceColor: s.PriceColor,
	}
	m.FromDomainBaseEntity(s.BaseEntity)
	return m
}
