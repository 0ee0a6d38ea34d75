package printing_test

import (
	"testing"

	"github.com/google/uuid"
	appprinting "github.com/printshop/backend/internal/application/printing"
	"github.com/printshop/backend/internal/domain/document"
	"github.com/printshop/backend/internal/domain/printing"
	domainqueue "github.com/printshop/backend/internal/domain/queue"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProcessDraftHandler_RedeliveredConversionKeepsQueuedEdit(t *testing.T) {
	h := newHarness(t)
	userID := uuid.New()
	created := h.uploadPDF(userID, "A", "B", "C")
	converted := h.draft(created.ID)
	require.Equal(t, printing.DraftStatusReadyForPreview, converted.Status)

	_, err := h.draftService.ApplyEdits(h.ctx(), userID, created.ID, appprinting.EditDraftRequest{
		Instructions: []document.Action{document.DeletePage(0)},
		Async:        true,
	})
	require.NoError(t, err)

	// the conversion item comes back after its lease lapsed
	err = h.processHandler.Process(h.ctx(), domainqueue.ProcessDraft{
		DraftID:      created.ID,
		UserID:       userID,
		InputFileRef: converted.OriginalFileRef,
	})
	require.NoError(t, err)

	pending := h.draft(created.ID)
	assert.Equal(t, printing.DraftStatusProcessing, pending.Status)
	assert.Equal(t, converted.ConvertedFileRef, pending.ConvertedFileRef)

	h.drain()

	edited := h.draft(created.ID)
	assert.Equal(t, printing.DraftStatusReadyForPreview, edited.Status)
	assert.Equal(t, 2, edited.PageCount)
	assert.NotEqual(t, converted.ConvertedFileRef, edited.ConvertedFileRef)
	assert.Equal(t, 2, h.pdfPages(edited.ConvertedFileRef))
}

func TestProcessDraftHandler_RedeliveredEditIsSkipped(t *testing.T) {
	h := newHarness(t)
	userID := uuid.New()
	created := h.uploadPDF(userID, "A", "B", "C")
	before := h.draft(created.ID)

	raw, err := document.MarshalActions([]document.Action{document.DeletePage(0)})
	require.NoError(t, err)
	task := domainqueue.ProcessDraft{
		DraftID:      created.ID,
		UserID:       userID,
		InputFileRef: before.ConvertedFileRef,
		Actions:      raw,
	}

	require.NoError(t, h.processHandler.Process(h.ctx(), task))
	once := h.draft(created.ID)
	assert.Equal(t, 2, once.PageCount)

	require.NoError(t, h.processHandler.Process(h.ctx(), task))
	twice := h.draft(created.ID)
	assert.Equal(t, once.ConvertedFileRef, twice.ConvertedFileRef)
	assert.Equal(t, 2, twice.PageCount, "a second delivery does not delete another page")
}
