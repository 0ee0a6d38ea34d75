package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/printshop/backend/internal/domain/printing"
	"github.com/printshop/backend/internal/domain/shared"
	"github.com/printshop/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormFileRecordRepository implements FileRecordRepository using GORM
type GormFileRecordRepository struct {
	db *gorm.DB
}

// NewGormFileRecordRepository creates a new GormFileRecordRepository
func NewGormFileRecordRepository(db *gorm.DB) *GormFileRecordRepository {
	return &GormFileRecordRepository{db: db}
}

// FindByID finds a file record by ID
func (r *GormFileRecordRepository) FindByID(ctx context.Context, id uuid.UUID) (*printing.FileRecord, error) {
	var model models.FileModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NewNotFoundError("file", id.String())
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// Create inserts a file record
func (r *GormFileRecordRepository) Create(ctx context.Context, file *printing.FileRecord) error {
	return r.db.WithContext(ctx).Create(models.FileModelFromDomain(file)).Error
}

// Delete deletes a file record by ID
func (r *GormFileRecordRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.FileModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.NewNotFoundError("file", id.String())
	}
	return nil
}

var _ printing.FileRecordRepository = (*GormFileRecordRepository)(nil)
