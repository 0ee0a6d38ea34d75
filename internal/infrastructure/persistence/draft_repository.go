package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/printshop/backend/internal/domain/printing"
	"github.com/printshop/backend/internal/domain/shared"
	"github.com/printshop/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormDraftRepository implements DraftRepository using GORM
type GormDraftRepository struct {
	db *gorm.DB
}

// NewGormDraftRepository creates a new GormDraftRepository
func NewGormDraftRepository(db *gorm.DB) *GormDraftRepository {
	return &GormDraftRepository{db: db}
}

// FindByID finds a draft by ID
func (r *GormDraftRepository) FindByID(ctx context.Context, id uuid.UUID) (*printing.Draft, error) {
	return r.find(r.db.WithContext(ctx), id)
}

// FindByIDForUpdate finds a draft and takes a row lock
func (r *GormDraftRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*printing.Draft, error) {
	return r.find(r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}), id)
}

func (r *GormDraftRepository) find(db *gorm.DB, id uuid.UUID) (*printing.Draft, error) {
	var model models.DraftModel
	if err := db.First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NewNotFoundError("draft", id.String())
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByUser lists a user's drafts, newest first
func (r *GormDraftRepository) FindByUser(ctx context.Context, userID uuid.UUID, filter shared.Filter) ([]printing.Draft, error) {
	var draftModels []models.DraftModel
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Offset(filter.Offset()).
		Limit(filter.Limit()).
		Find(&draftModels).Error; err != nil {
		return nil, err
	}

	drafts := make([]printing.Draft, len(draftModels))
	for i, model := range draftModels {
		drafts[i] = *model.ToDomain()
	}
	return drafts, nil
}

// Save saves a draft (insert or update)
func (r *GormDraftRepository) Save(ctx context.Context, draft *printing.Draft) error {
	return r.db.WithContext(ctx).Save(models.DraftModelFromDomain(draft)).Error
}

// Delete deletes a draft by ID
func (r *GormDraftRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.DraftModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.NewNotFoundError("draft", id.String())
	}
	return nil
}

var _ printing.DraftRepository = (*GormDraftRepository)(nil)
