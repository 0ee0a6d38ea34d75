package printing

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/printshop/backend/internal/domain/printing"
	"github.com/printshop/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// ShopService lets a shop manage its own listing: opening hours and prices
type ShopService struct {
	shops    printing.ShopRepository
	settings Settings
	logger   *zap.Logger
}

// NewShopService creates a new ShopService
func NewShopService(shops printing.ShopRepository, settings Settings, logger *zap.Logger) *ShopService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ShopService{shops: shops, settings: settings.withDefaults(), logger: logger}
}

// Get returns a shop with the prices customers would be charged
func (s *ShopService) Get(ctx context.Context, shopID uuid.UUID) (*ShopResponse, error) {
	shop, err := s.shops.FindByID(ctx, shopID)
	if err != nil {
		return nil, err
	}
	return s.response(shop), nil
}

// UpdateStatus opens or closes the caller's shop
func (s *ShopService) UpdateStatus(ctx context.Context, callerShopID, shopID uuid.UUID, req UpdateShopStatusRequest) (*ShopResponse, error) {
	if req.IsOpen == nil {
		return nil, shared.NewValidationError("missing required field: is_open")
	}
	shop, err := s.owned(ctx, callerShopID, shopID)
	if err != nil {
		return nil, err
	}
	shop.SetOpen(*req.IsOpen)
	if err := s.shops.Save(ctx, shop); err != nil {
		return nil, fmt.Errorf("failed to save shop: %w", err)
	}
	s.logger.Info("Shop status updated", zap.String("shop_id", shopID.String()), zap.Bool("is_open", shop.IsOpen))
	return s.response(shop), nil
}

// UpdatePricing changes the per-page prices of the caller's shop. Jobs
// already priced keep their amount.
func (s *ShopService) UpdatePricing(ctx context.Context, callerShopID, shopID uuid.UUID, req UpdateShopPricingRequest) (*ShopResponse, error) {
	shop, err := s.owned(ctx, callerShopID, shopID)
	if err != nil {
		return nil, err
	}
	if err := shop.UpdatePrices(req.PriceBW, req.PriceColor); err != nil {
		return nil, err
	}
	if err := s.shops.Save(ctx, shop); err != nil {
		return nil, fmt.Errorf("failed to save shop: %w", err)
	}
	s.logger.Info("Shop pricing updated",
		zap.String("shop_id", shopID.String()),
		zap.String("price_bw", shop.PriceBW.String()),
		zap.String("price_color", shop.PriceColor.String()),
	)
	return s.response(shop), nil
}

func (s *ShopService) owned(ctx context.Context, callerShopID, shopID uuid.UUID) (*printing.Shop, error) {
	if callerShopID != shopID {
		return nil, shared.NewForbiddenError("shops can only manage their own listing")
	}
	return s.shops.FindByID(ctx, shopID)
}

func (s *ShopService) response(shop *printing.Shop) *ShopResponse {
	resp := ToShopResponse(shop.WithFallbackPrices(s.settings.DefaultPriceBW, s.settings.DefaultPriceColor))
	return &resp
}
