package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	appprinting "github.com/printshop/backend/internal/application/printing"
	"github.com/printshop/backend/internal/interfaces/http/middleware"
)

// ShopHandler handles shop listing endpoints
type ShopHandler struct {
	BaseHandler
	shops *appprinting.ShopService
}

// NewShopHandler creates a new ShopHandler
func NewShopHandler(shops *appprinting.ShopService) *ShopHandler {
	return &ShopHandler{shops: shops}
}

// Get godoc
//
//	@ID				getShop
//
//	@Summary		Get a shop
//	@Description	Shop details with the per-page prices that will be charged
//	@Tags			shop
//	@Produce		json
//	@Param			id	path		string	true	"Shop ID"	format(uuid)
//	@Success		200	{object}	APIResponse[appprinting.ShopResponse]
//	@Failure		400	{object}	ErrorResponse
//	@Failure		404	{object}	ErrorResponse
//	@Router			/shops/{id} [get]
func (h *ShopHandler) Get(c *gin.Context) {
	shopID, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}

	resp, err := h.shops.Get(c.Request.Context(), shopID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// UpdateStatus godoc
//
//	@ID				updateShopStatus
//
//	@Summary		Open or close the shop
//	@Description	Closed shops are hidden from customers and reject new orders
//	@Tags			shop
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string								true	"Shop ID"	format(uuid)
//	@Param			request	body		appprinting.UpdateShopStatusRequest	true	"Shop status"
//	@Success		200		{object}	APIResponse[appprinting.ShopResponse]
//	@Failure		400		{object}	ErrorResponse
//	@Failure		401		{object}	ErrorResponse
//	@Failure		403		{object}	ErrorResponse
//	@Failure		404		{object}	ErrorResponse
//	@Security		ShopAuth
//	@Router			/shops/{id}/status [patch]
func (h *ShopHandler) UpdateStatus(c *gin.Context) {
	callerID, shopID, ok := h.ownShop(c)
	if !ok {
		return
	}

	var req appprinting.UpdateShopStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	resp, err := h.shops.UpdateStatus(c.Request.Context(), callerID, shopID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// UpdatePricing godoc
//
//	@ID				updateShopPricing
//
//	@Summary		Change per-page prices
//	@Description	Omitted prices are kept. Zero falls back to the default price.
//	@Tags			shop
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string									true	"Shop ID"	format(uuid)
//	@Param			request	body		appprinting.UpdateShopPricingRequest	true	"Prices"
//	@Success		200		{object}	APIResponse[appprinting.ShopResponse]
//	@Failure		400		{object}	ErrorResponse
//	@Failure		401		{object}	ErrorResponse
//	@Failure		403		{object}	ErrorResponse
//	@Failure		404		{object}	ErrorResponse
//	@Security		ShopAuth
//	@Router			/shops/{id}/pricing [patch]
func (h *ShopHandler) UpdatePricing(c *gin.Context) {
	callerID, shopID, ok := h.ownShop(c)
	if !ok {
		return
	}

	var req appprinting.UpdateShopPricingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	resp, err := h.shops.UpdatePricing(c.Request.Context(), callerID, shopID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// ownShop returns the authenticated shop and the shop named in the path
func (h *ShopHandler) ownShop(c *gin.Context) (uuid.UUID, uuid.UUID, bool) {
	callerID, ok := h.currentShop(c)
	if !ok {
		return uuid.Nil, uuid.Nil, false
	}
	shopID, ok := h.pathUUID(c, "id")
	if !ok {
		return uuid.Nil, uuid.Nil, false
	}
	return callerID, shopID, true
}
