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

// GormShopRepository implements ShopRepository using GORM
type GormShopRepository struct {
	db *gorm.DB
}

// NewGormShopRepository creates a new GormShopRepository
func NewGormShopRepository(db *gorm.DB) *GormShopRepository {
	return &GormShopRepository{db: db}
}

// FindByID finds a shop by ID
func (r *GormShopRepository) FindByID(ctx context.Context, id uuid.UUID) (*printing.Shop, error) {
	var model models.ShopModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NewNotFoundError("shop", id.String())
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindOpen lists shops currently accepting jobs
func (r *GormShopRepository) FindOpen(ctx context.Context) ([]printing.Shop, error) {
	var shopModels []models.ShopModel
	if err := r.db.WithContext(ctx).Where("is_open = ?", true).Order("name ASC").Find(&shopModels).Error; err != nil {
		return nil, err
	}
	shops := make([]printing.Shop, len(shopModels))
	for i, model := range shopModels {
		shops[i] = *model.ToDomain()
	}
	return shops, nil
}

// Save saves a shop (insert or update)
func (r *GormShopRepository) Save(ctx context.Context, shop *printing.Shop) error {
	return r.db.WithContext(ctx).Save(models.ShopModelFromDomain(shop)).Error
}

var _ printing.ShopRepository = (*GormShopRepository)(nil)
