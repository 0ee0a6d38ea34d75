package handler

import (
	"io"

	"github.com/gin-gonic/gin"
	appprinting "github.com/printshop/backend/internal/application/printing"
	"github.com/printshop/backend/internal/domain/printing"
	"github.com/printshop/backend/internal/interfaces/http/dto"
	"github.com/printshop/backend/internal/interfaces/http/middleware"
)

// DraftHandler handles draft upload and editing endpoints
type DraftHandler struct {
	BaseHandler
	drafts *appprinting.DraftService
}

// NewDraftHandler creates a new DraftHandler
func NewDraftHandler(drafts *appprinting.DraftService) *DraftHandler {
	return &DraftHandler{drafts: drafts}
}

// =============================================================================
// Request Types
// =============================================================================

// UpdateDraftStatusRequest moves a draft on to checkout
//
//	@Description	Request body for continuing a draft to shop selection
type UpdateDraftStatusRequest struct {
	Status string `json:"status" binding:"required" example:"ready_for_checkout"`
}

// =============================================================================
// Upload
// =============================================================================

// Upload godoc
//
//	@ID				uploadDraft
//
//	@Summary		Upload a document
//	@Description	Store the original file and start converting it to PDF
//	@Tags			drafts
//	@Accept			multipart/form-data
//	@Produce		json
//	@Param			file	formData	file	true	"Document to print"
//	@Param			source	formData	string	true	"Where the upload started (shop or editor)"
//	@Success		201		{object}	APIResponse[appprinting.DraftResponse]
//	@Failure		400		{object}	ErrorResponse
//	@Failure		401		{object}	ErrorResponse
//	@Failure		413		{object}	ErrorResponse
//	@Failure		502		{object}	ErrorResponse
//	@Security		UserAuth
//	@Router			/drafts/upload [post]
func (h *DraftHandler) Upload(c *gin.Context) {
	userID, ok := h.currentUser(c)
	if !ok {
		return
	}

	fh, err := c.FormFile("file")
	if err != nil {
		h.BadRequest(c, "No file uploaded")
		return
	}
	f, err := fh.Open()
	if err != nil {
		h.BadRequest(c, "Unreadable file")
		return
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		h.BadRequest(c, "Unreadable file")
		return
	}

	resp, err := h.drafts.Create(c.Request.Context(), userID, appprinting.CreateDraftRequest{
		Source:      c.PostForm("source"),
		FileName:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Data:        data,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// =============================================================================
// Queries
// =============================================================================

// List godoc
//
//	@ID				listDrafts
//
//	@Summary		List drafts
//	@Description	List the caller's drafts, newest first
//	@Tags			drafts
//	@Produce		json
//	@Param			page		query		int	false	"Page number"	default(1)
//	@Param			page_size	query		int	false	"Page size"		default(20)
//	@Success		200			{object}	APIResponse[[]appprinting.DraftResponse]
//	@Failure		400			{object}	ErrorResponse
//	@Failure		401			{object}	ErrorResponse
//	@Security		UserAuth
//	@Router			/drafts [get]
func (h *DraftHandler) List(c *gin.Context) {
	userID, ok := h.currentUser(c)
	if !ok {
		return
	}

	req := dto.DefaultListRequest()
	if err := c.ShouldBindQuery(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	drafts, err := h.drafts.ListByUser(c.Request.Context(), userID, req.Filter())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, drafts, len(drafts), req)
}

// Get godoc
//
//	@ID				getDraft
//
//	@Summary		Get a draft
//	@Tags			drafts
//	@Produce		json
//	@Param			draftId	path		string	true	"Draft ID"	format(uuid)
//	@Success		200		{object}	APIResponse[appprinting.DraftResponse]
//	@Failure		400		{object}	ErrorResponse
//	@Failure		401		{object}	ErrorResponse
//	@Failure		404		{object}	ErrorResponse
//	@Security		UserAuth
//	@Router			/drafts/{draftId} [get]
func (h *DraftHandler) Get(c *gin.Context) {
	userID, ok := h.currentUser(c)
	if !ok {
		return
	}
	draftID, ok := h.pathUUID(c, "draftId")
	if !ok {
		return
	}

	resp, err := h.drafts.Get(c.Request.Context(), userID, draftID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Status godoc
//
//	@ID				getDraftStatus
//
//	@Summary		Poll draft status
//	@Description	Lightweight status for clients waiting on conversion or edits
//	@Tags			drafts
//	@Produce		json
//	@Param			draftId	path		string	true	"Draft ID"	format(uuid)
//	@Success		200		{object}	APIResponse[DraftStatusData]
//	@Failure		400		{object}	ErrorResponse
//	@Failure		401		{object}	ErrorResponse
//	@Failure		404		{object}	ErrorResponse
//	@Security		UserAuth
//	@Router			/drafts/{draftId}/status [get]
func (h *DraftHandler) Status(c *gin.Context) {
	userID, ok := h.currentUser(c)
	if !ok {
		return
	}
	draftID, ok := h.pathUUID(c, "draftId")
	if !ok {
		return
	}

	resp, err := h.drafts.Get(c.Request.Context(), userID, draftID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, DraftStatusData{
		ID:        resp.ID.String(),
		Status:    resp.Status,
		PageCount: resp.PageCount,
		Version:   resp.Version,
	})
}

// =============================================================================
// Commands
// =============================================================================

// UpdateStatus godoc
//
//	@ID				updateDraftStatus
//
//	@Summary		Continue to checkout
//	@Description	Move a ready_for_preview draft to ready_for_checkout. No other target status is accepted.
//	@Tags			drafts
//	@Accept			json
//	@Produce		json
//	@Param			draftId	path		string						true	"Draft ID"	format(uuid)
//	@Param			request	body		UpdateDraftStatusRequest	true	"Target status"
//	@Success		200		{object}	APIResponse[appprinting.DraftResponse]
//	@Failure		400		{object}	ErrorResponse
//	@Failure		401		{object}	ErrorResponse
//	@Failure		404		{object}	ErrorResponse
//	@Failure		409		{object}	ErrorResponse
//	@Security		UserAuth
//	@Router			/drafts/{draftId}/status [patch]
func (h *DraftHandler) UpdateStatus(c *gin.Context) {
	userID, ok := h.currentUser(c)
	if !ok {
		return
	}
	draftID, ok := h.pathUUID(c, "draftId")
	if !ok {
		return
	}

	var req UpdateDraftStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}
	if req.Status != string(printing.DraftStatusReadyForCheckout) {
		h.BadRequest(c, "Invalid status update")
		return
	}

	resp, err := h.drafts.AdvanceToCheckout(c.Request.Context(), userID, draftID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Process godoc
//
//	@ID				processDraftEdits
//
//	@Summary		Apply editor instructions
//	@Description	Apply rotate, delete, reorder and text instructions to the draft PDF.
//	@Description	With async set the edit is queued and the response is 202.
//	@Tags			drafts
//	@Accept			json
//	@Produce		json
//	@Param			draftId	path		string							true	"Draft ID"	format(uuid)
//	@Param			request	body		appprinting.EditDraftRequest	true	"Instructions"
//	@Success		200		{object}	APIResponse[appprinting.EditDraftResponse]
//	@Success		202		{object}	APIResponse[appprinting.EditDraftResponse]
//	@Failure		400		{object}	ErrorResponse
//	@Failure		401		{object}	ErrorResponse
//	@Failure		404		{object}	ErrorResponse
//	@Failure		409		{object}	ErrorResponse
//	@Security		UserAuth
//	@Router			/drafts/{draftId}/process [post]
func (h *DraftHandler) Process(c *gin.Context) {
	userID, ok := h.currentUser(c)
	if !ok {
		return
	}
	draftID, ok := h.pathUUID(c, "draftId")
	if !ok {
		return
	}

	var req appprinting.EditDraftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	resp, err := h.drafts.ApplyEdits(c.Request.Context(), userID, draftID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if resp.Queued {
		h.Accepted(c, resp)
		return
	}
	h.Success(c, resp)
}

// Delete godoc
//
//	@ID				deleteDraft
//
//	@Summary		Delete a draft
//	@Description	Remove the draft and its stored files so the user can upload a replacement
//	@Tags			drafts
//	@Param			draftId	path	string	true	"Draft ID"	format(uuid)
//	@Success		204
//	@Failure		400	{object}	ErrorResponse
//	@Failure		401	{object}	ErrorResponse
//	@Failure		404	{object}	ErrorResponse
//	@Failure		409	{object}	ErrorResponse
//	@Security		UserAuth
//	@Router			/drafts/{draftId} [delete]
func (h *DraftHandler) Delete(c *gin.Context) {
	userID, ok := h.currentUser(c)
	if !ok {
		return
	}
	draftID, ok := h.pathUUID(c, "draftId")
	if !ok {
		return
	}

	if err := h.drafts.Delete(c.Request.Context(), userID, draftID); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
