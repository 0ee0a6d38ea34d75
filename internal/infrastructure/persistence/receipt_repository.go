package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/printshop/backend/internal/domain/printing"
	"github.com/printshop/backend/internal/domain/shared"
	"github.com/printshop/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormReceiptRepository implements ReceiptRepository using GORM
type GormReceiptRepository struct {
	db *gorm.DB
}

// NewGormReceiptRepository creates a new GormReceiptRepository
func NewGormReceiptRepository(db *gorm.DB) *GormReceiptRepository {
	return &GormReceiptRepository{db: db}
}

// FindByPrintJob returns the receipt of a finalized job
func (r *GormReceiptRepository) FindByPrintJob(ctx context.Context, jobID uuid.UUID) (*printing.Receipt, error) {
	var model models.ReceiptModel
	if err := r.db.WithContext(ctx).First(&model, "print_job_id = ?", jobID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NewNotFoundError("receipt", jobID.String())
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindExpired lists receipts that expired before now, oldest first
func (r *GormReceiptRepository) FindExpired(ctx context.Context, now time.Time, limit int) ([]printing.Receipt, error) {
	var receiptModels []models.ReceiptModel
	query := r.db.WithContext(ctx).Where("expires_at < ?", now.UTC()).Order("expires_at ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&receiptModels).Error; err != nil {
		return nil, err
	}

	receipts := make([]printing.Receipt, len(receiptModels))
	for i, model := range receiptModels {
		receipts[i] = *model.ToDomain()
	}
	return receipts, nil
}

// CountByPrintJob counts receipts for a job
func (r *GormReceiptRepository) CountByPrintJob(ctx context.Context, jobID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.ReceiptModel{}).
		Where("print_job_id = ?", jobID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Create inserts a receipt. A second receipt for the same job violates the
// unique index and is reported as a conflict.
func (r *GormReceiptRepository) Create(ctx context.Context, receipt *printing.Receipt) error {
	if err := r.db.WithContext(ctx).Create(models.ReceiptModelFromDomain(receipt)).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return shared.NewConflictError("a receipt already exists for this print job")
		}
		return err
	}
	return nil
}

// Delete deletes a receipt by ID
func (r *GormReceiptRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.ReceiptModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.NewNotFoundError("receipt", id.String())
	}
	return nil
}

var _ printing.ReceiptRepository = (*GormReceiptRepository)(nil)
