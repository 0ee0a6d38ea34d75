package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	appprinting "github.com/printshop/backend/internal/application/printing"
	"github.com/printshop/backend/internal/interfaces/http/dto"
	"github.com/printshop/backend/internal/interfaces/http/middleware"
)

// PrintJobHandler handles ordering, payment and shop queue endpoints
type PrintJobHandler struct {
	BaseHandler
	jobs *appprinting.PrintJobService
}

// NewPrintJobHandler creates a new PrintJobHandler
func NewPrintJobHandler(jobs *appprinting.PrintJobService) *PrintJobHandler {
	return &PrintJobHandler{jobs: jobs}
}

// =============================================================================
// Customer Endpoints
// =============================================================================

// ListShops godoc
//
//	@ID				listShops
//
//	@Summary		List open shops
//	@Description	Shops accepting jobs, with the per-page prices that will be charged
//	@Tags			print-jobs
//	@Produce		json
//	@Success		200	{object}	APIResponse[[]appprinting.ShopResponse]
//	@Failure		401	{object}	ErrorResponse
//	@Security		UserAuth
//	@Router			/print-jobs/shops [get]
func (h *PrintJobHandler) ListShops(c *gin.Context) {
	shops, err := h.jobs.ListShops(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, shops)
}

// Create godoc
//
//	@ID				createPrintJob
//
//	@Summary		Order prints of a draft
//	@Description	Price a ready_for_checkout draft at a shop and create a job awaiting payment
//	@Tags			print-jobs
//	@Accept			json
//	@Produce		json
//	@Param			request	body		appprinting.CreatePrintJobRequest	true	"Order"
//	@Success		201		{object}	APIResponse[appprinting.PrintJobResponse]
//	@Failure		400		{object}	ErrorResponse
//	@Failure		401		{object}	ErrorResponse
//	@Failure		403		{object}	ErrorResponse
//	@Failure		404		{object}	ErrorResponse
//	@Security		UserAuth
//	@Router			/print-jobs/create [post]
func (h *PrintJobHandler) Create(c *gin.Context) {
	userID, ok := h.currentUser(c)
	if !ok {
		return
	}

	var req appprinting.CreatePrintJobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	resp, err := h.jobs.Create(c.Request.Context(), userID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// VerifyPayment godoc
//
//	@ID				verifyPayment
//
//	@Summary		Confirm payment
//	@Description	Record an upstream payment confirmation and schedule finalization.
//	@Description	Repeating a confirmation is safe and reports already_paid or duplicate.
//	@Tags			print-jobs
//	@Accept			json
//	@Produce		json
//	@Param			request	body		appprinting.ConfirmPaymentRequest	true	"Payment signal"
//	@Success		200		{object}	APIResponse[appprinting.ConfirmPaymentResponse]
//	@Failure		400		{object}	ErrorResponse
//	@Failure		401		{object}	ErrorResponse
//	@Failure		404		{object}	ErrorResponse
//	@Failure		409		{object}	ErrorResponse
//	@Security		UserAuth
//	@Router			/print-jobs/verify-payment [post]
func (h *PrintJobHandler) VerifyPayment(c *gin.Context) {
	userID, ok := h.currentUser(c)
	if !ok {
		return
	}

	var req appprinting.ConfirmPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	resp, err := h.jobs.ConfirmPayment(c.Request.Context(), userID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// History godoc
//
//	@ID				printHistory
//
//	@Summary		Print history
//	@Description	The caller's print jobs, newest first
//	@Tags			print-jobs
//	@Produce		json
//	@Param			page		query		int	false	"Page number"	default(1)
//	@Param			page_size	query		int	false	"Page size"		default(20)
//	@Success		200			{object}	APIResponse[[]appprinting.PrintJobResponse]
//	@Failure		400			{object}	ErrorResponse
//	@Failure		401			{object}	ErrorResponse
//	@Security		UserAuth
//	@Router			/print-jobs/history [get]
func (h *PrintJobHandler) History(c *gin.Context) {
	userID, ok := h.currentUser(c)
	if !ok {
		return
	}

	req := dto.DefaultListRequest()
	if err := c.ShouldBindQuery(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	jobs, err := h.jobs.ListByUser(c.Request.Context(), userID, req.Filter())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, jobs, len(jobs), req)
}

// Get godoc
//
//	@ID				getPrintJob
//
//	@Summary		Get a print job
//	@Tags			print-jobs
//	@Produce		json
//	@Param			id	path		string	true	"Print job ID"	format(uuid)
//	@Success		200	{object}	APIResponse[appprinting.PrintJobResponse]
//	@Failure		400	{object}	ErrorResponse
//	@Failure		401	{object}	ErrorResponse
//	@Failure		404	{object}	ErrorResponse
//	@Security		UserAuth
//	@Router			/print-jobs/{id} [get]
func (h *PrintJobHandler) Get(c *gin.Context) {
	userID, ok := h.currentUser(c)
	if !ok {
		return
	}
	jobID, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}

	resp, err := h.jobs.Get(c.Request.Context(), userID, jobID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Receipt godoc
//
//	@ID				getPrintJobReceipt
//
//	@Summary		Get the receipt of a finalized job
//	@Tags			print-jobs
//	@Produce		json
//	@Param			id	path		string	true	"Print job ID"	format(uuid)
//	@Success		200	{object}	APIResponse[appprinting.ReceiptResponse]
//	@Failure		400	{object}	ErrorResponse
//	@Failure		401	{object}	ErrorResponse
//	@Failure		404	{object}	ErrorResponse
//	@Failure		410	{object}	ErrorResponse
//	@Security		UserAuth
//	@Router			/print-jobs/{id}/receipt [get]
func (h *PrintJobHandler) Receipt(c *gin.Context) {
	userID, ok := h.currentUser(c)
	if !ok {
		return
	}
	jobID, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}

	resp, err := h.jobs.GetReceipt(c.Request.Context(), userID, jobID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// ReceiptPDF godoc
//
//	@ID				getPrintJobReceiptPDF
//
//	@Summary		Download the receipt as PDF
//	@Tags			print-jobs
//	@Produce		application/pdf
//	@Param			id	path		string	true	"Print job ID"	format(uuid)
//	@Success		200	{file}		binary
//	@Failure		400	{object}	ErrorResponse
//	@Failure		401	{object}	ErrorResponse
//	@Failure		404	{object}	ErrorResponse
//	@Failure		410	{object}	ErrorResponse
//	@Security		UserAuth
//	@Router			/print-jobs/{id}/receipt/pdf [get]
func (h *PrintJobHandler) ReceiptPDF(c *gin.Context) {
	userID, ok := h.currentUser(c)
	if !ok {
		return
	}
	jobID, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}

	data, err := h.jobs.ReceiptPDF(c.Request.Context(), userID, jobID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`inline; filename="receipt-%s.pdf"`, jobID.String()[:8]))
	c.Data(http.StatusOK, "application/pdf", data)
}

// =============================================================================
// Shop Endpoints
// =============================================================================

// ShopQueue godoc
//
//	@ID				shopPrintQueue
//
//	@Summary		Shop print queue
//	@Description	Queued and printing jobs of the caller's shop in queue order
//	@Tags			shop
//	@Produce		json
//	@Success		200	{object}	APIResponse[[]appprinting.PrintJobResponse]
//	@Failure		401	{object}	ErrorResponse
//	@Security		ShopAuth
//	@Router			/print-jobs/shop [get]
func (h *PrintJobHandler) ShopQueue(c *gin.Context) {
	shopID, ok := h.currentShop(c)
	if !ok {
		return
	}

	jobs, err := h.jobs.ShopQueue(c.Request.Context(), shopID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, jobs)
}

// UpdateStatus godoc
//
//	@ID				updatePrintJobStatus
//
//	@Summary		Update job status
//	@Description	Move a job of the caller's shop to PRINTING, COMPLETED or CANCELLED
//	@Tags			shop
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string									true	"Print job ID"	format(uuid)
//	@Param			request	body		appprinting.UpdatePrintJobStatusRequest	true	"Target status"
//	@Success		200		{object}	APIResponse[appprinting.PrintJobResponse]
//	@Failure		400		{object}	ErrorResponse
//	@Failure		401		{object}	ErrorResponse
//	@Failure		403		{object}	ErrorResponse
//	@Failure		404		{object}	ErrorResponse
//	@Failure		409		{object}	ErrorResponse
//	@Security		ShopAuth
//	@Router			/print-jobs/{id}/status [patch]
func (h *PrintJobHandler) UpdateStatus(c *gin.Context) {
	shopID, ok := h.currentShop(c)
	if !ok {
		return
	}
	jobID, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}

	var req appprinting.UpdatePrintJobStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	resp, err := h.jobs.UpdateStatus(c.Request.Context(), shopID, jobID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}
