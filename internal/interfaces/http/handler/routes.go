package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/printshop/backend/internal/interfaces/http/router"
)

// DraftRoutes creates the route group for draft endpoints
func DraftRoutes(handler *DraftHandler, requireUser gin.HandlerFunc) *router.DomainGroup {
	group := router.NewDomainGroup("drafts", "/drafts")
	group.Use(requireUser)

	group.Handle(http.MethodPost, "/upload", "upload a document and start conversion", handler.Upload)
	group.Handle(http.MethodGet, "", "list the caller's drafts", handler.List)
	group.Handle(http.MethodGet, "/:draftId", "draft details", handler.Get)
	group.Handle(http.MethodGet, "/:draftId/status", "poll draft status", handler.Status)
	group.Handle(http.MethodPatch, "/:draftId/status", "continue to checkout", handler.UpdateStatus)
	group.Handle(http.MethodPost, "/:draftId/process", "apply editor instructions", handler.Process)
	group.Handle(http.MethodDelete, "/:draftId", "delete a draft and its files", handler.Delete)

	return group
}

// PrintJobRoutes creates the customer route group for print jobs
func PrintJobRoutes(handler *PrintJobHandler, requireUser gin.HandlerFunc) *router.DomainGroup {
	group := router.NewDomainGroup("print-jobs", "/print-jobs")
	group.Use(requireUser)

	group.Handle(http.MethodGet, "/shops", "list open shops with prices", handler.ListShops)
	group.Handle(http.MethodPost, "/create", "order prints of a draft", handler.Create)
	group.Handle(http.MethodPost, "/verify-payment", "confirm payment and schedule finalization", handler.VerifyPayment)
	group.Handle(http.MethodGet, "/history", "the caller's print jobs", handler.History)
	group.Handle(http.MethodGet, "/:id", "print job details", handler.Get)
	group.Handle(http.MethodGet, "/:id/receipt", "receipt of a finalized job", handler.Receipt)
	group.Handle(http.MethodGet, "/:id/receipt/pdf", "printable receipt", handler.ReceiptPDF)

	return group
}

// ShopRoutes creates the shopkeeper route group. It shares the print job
// prefix but authenticates the shop instead of the customer.
func ShopRoutes(handler *PrintJobHandler, requireShop gin.HandlerFunc) *router.DomainGroup {
	group := router.NewDomainGroup("shop", "/print-jobs")
	group.Use(requireShop)

	group.Handle(http.MethodGet, "/shop", "the shop's print queue", handler.ShopQueue)
	group.Handle(http.MethodPatch, "/:id/status", "advance a job through printing", handler.UpdateStatus)

	return group
}

// ShopAdminRoutes creates the route group for shop listings. Reading a
// shop is public; changing it requires the shop's own identity.
func ShopAdminRoutes(handler *ShopHandler, requireShop gin.HandlerFunc) *router.DomainGroup {
	group := router.NewDomainGroup("shops", "/shops")

	group.Handle(http.MethodGet, "/:id", "shop details and prices", handler.Get)
	group.Handle(http.MethodPatch, "/:id/status", "open or close the shop", requireShop, handler.UpdateStatus)
	group.Handle(http.MethodPatch, "/:id/pricing", "change per-page prices", requireShop, handler.UpdatePricing)

	return group
}

// HealthRoutes creates the route group for the health endpoint
func HealthRoutes(handler *HealthHandler) *router.DomainGroup {
	group := router.NewDomainGroup("system", "")
	group.Handle(http.MethodGet, "/health", "service health", handler.Health)
	return group
}
