package printing_test

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	appprinting "github.com/printshop/backend/internal/application/printing"
	"github.com/printshop/backend/internal/domain/printing"
	"github.com/printshop/backend/internal/domain/shared"
	"github.com/printshop/backend/internal/infrastructure/cache"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (h *harness) createJob(userID, shopID uuid.UUID, labels ...string) *appprinting.PrintJobResponse {
	h.t.Helper()
	draft := h.checkoutDraft(userID, labels...)
	job, err := h.jobService.Create(h.ctx(), userID, appprinting.CreatePrintJobRequest{
		ShopID:  shopID,
		DraftID: draft.ID,
	})
	require.NoError(h.t, err)
	return job
}

func TestPrintJobService_Create(t *testing.T) {
	h := newHarness(t)
	userID := uuid.New()
	shop := h.openShop()
	draft := h.checkoutDraft(userID, "1", "2", "3", "4", "5")

	job, err := h.jobService.Create(h.ctx(), userID, appprinting.CreatePrintJobRequest{
		ShopID:  shop.ID,
		DraftID: draft.ID,
	})
	require.NoError(t, err)

	assert.True(t, decimal.NewFromInt(10).Equal(job.Amount), "5 pages at the default bw price")
	assert.Equal(t, "PENDING_PAYMENT", job.Status)
	assert.Equal(t, "PENDING_PAYMENT", job.PaymentStatus)
	assert.Equal(t, 1, job.QueueNumber)
	assert.Equal(t, "bw", string(job.PrintOptions.Color))
	assert.Equal(t, 1, job.PrintOptions.Copies)
	assert.Nil(t, job.FinalFileRef)
	assert.Equal(t, printing.DraftStatusReadyForPrint, h.draft(draft.ID).Status)

	second := h.createJob(userID, shop.ID, "A")
	assert.Equal(t, 2, second.QueueNumber)
}

func TestPrintJobService_Create_ShopPricing(t *testing.T) {
	h := newHarness(t)
	userID := uuid.New()
	shop := printing.NewShop("Color Corner", "Main St", decimal.NewFromInt(1), decimal.RequireFromString("2.5"))
	require.NoError(t, h.shops.Save(h.ctx(), shop))
	draft := h.checkoutDraft(userID, "1", "2")

	job, err := h.jobService.Create(h.ctx(), userID, appprinting.CreatePrintJobRequest{
		ShopID:       shop.ID,
		DraftID:      draft.ID,
		PrintOptions: printing.PrintOptions{Color: printing.ColorModeColor, Copies: 3},
	})
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(15).Equal(job.Amount))
}

func TestPrintJobService_Create_Rejections(t *testing.T) {
	h := newHarness(t)
	userID := uuid.New()
	shop := h.openShop()

	t.Run("draft not ready", func(t *testing.T) {
		created := h.uploadPDF(userID, "A")
		_, err := h.jobService.Create(h.ctx(), userID, appprinting.CreatePrintJobRequest{ShopID: shop.ID, DraftID: created.ID})
		assert.True(t, errors.Is(err, shared.ErrForbidden))
	})

	t.Run("closed shop", func(t *testing.T) {
		closed := printing.NewShop("Closed", "Nowhere", decimal.Zero, decimal.Zero)
		closed.IsOpen = false
		require.NoError(t, h.shops.Save(h.ctx(), closed))
		draft := h.checkoutDraft(userID, "A")
		_, err := h.jobService.Create(h.ctx(), userID, appprinting.CreatePrintJobRequest{ShopID: closed.ID, DraftID: draft.ID})
		assert.True(t, errors.Is(err, shared.ErrForbidden))
		assert.Equal(t, printing.DraftStatusReadyForCheckout, h.draft(draft.ID).Status)
	})

	t.Run("someone else's draft", func(t *testing.T) {
		draft := h.checkoutDraft(userID, "A")
		_, err := h.jobService.Create(h.ctx(), uuid.New(), appprinting.CreatePrintJobRequest{ShopID: shop.ID, DraftID: draft.ID})
		assert.True(t, errors.Is(err, shared.ErrNotFound))
	})

	t.Run("missing ids", func(t *testing.T) {
		_, err := h.jobService.Create(h.ctx(), userID, appprinting.CreatePrintJobRequest{})
		assert.True(t, errors.Is(err, shared.ErrValidation))
	})
}

func TestPrintJobService_ConfirmPayment(t *testing.T) {
	h := newHarness(t)
	userID := uuid.New()
	shop := h.openShop()
	job := h.createJob(userID, shop.ID, "A", "B")

	resp, err := h.jobService.ConfirmPayment(h.ctx(), userID, appprinting.ConfirmPaymentRequest{
		PrintJobID: job.ID,
		PaymentID:  "pay_1",
	})
	require.NoError(t, err)
	require.NotNil(t, resp.WorkItemID)
	assert.Equal(t, "PROCESSING_PAYMENT", resp.PrintJob.Status)
	assert.Equal(t, "PENDING_PAYMENT", resp.PrintJob.PaymentStatus)
	assert.False(t, resp.AlreadyPaid)

	// a second confirmation while finalization is pending schedules nothing new
	again, err := h.jobService.ConfirmPayment(h.ctx(), userID, appprinting.ConfirmPaymentRequest{
		PrintJobID: job.ID,
		PaymentID:  "pay_2",
	})
	require.NoError(t, err)
	assert.Nil(t, again.WorkItemID)

	h.drain()

	paid := h.job(job.ID)
	assert.Equal(t, printing.PaymentStatusPaid, paid.PaymentStatus)
	assert.Equal(t, printing.JobStatusQueued, paid.Status)
	assert.Equal(t, int64(1), h.receiptCount(job.ID))

	done, err := h.jobService.ConfirmPayment(h.ctx(), userID, appprinting.ConfirmPaymentRequest{
		PrintJobID: job.ID,
		PaymentID:  "pay_1",
	})
	require.NoError(t, err)
	assert.True(t, done.AlreadyPaid)
	assert.Nil(t, done.WorkItemID)
	assert.Equal(t, int64(1), h.receiptCount(job.ID))
}

func TestPrintJobService_ConfirmPayment_DuplicateDelivery(t *testing.T) {
	h := newHarness(t)
	idem := cache.NewInMemoryIdempotencyStore()
	t.Cleanup(func() { _ = idem.Close() })
	h.jobService = appprinting.NewPrintJobService(h.jobs, h.receipts, h.shops, h.scope, h.coordinator, idem, h.settings, nil)

	userID := uuid.New()
	shop := h.openShop()
	job := h.createJob(userID, shop.ID, "A")

	req := appprinting.ConfirmPaymentRequest{PrintJobID: job.ID, PaymentID: "pay_dup"}
	first, err := h.jobService.ConfirmPayment(h.ctx(), userID, req)
	require.NoError(t, err)
	require.NotNil(t, first.WorkItemID)

	second, err := h.jobService.ConfirmPayment(h.ctx(), userID, req)
	require.NoError(t, err)
	assert.True(t, second.Duplicate)
	assert.Nil(t, second.WorkItemID)
}

func TestPrintJobService_ConfirmPayment_RetriesExhaustedFinalize(t *testing.T) {
	h := newHarness(t)
	idem := cache.NewInMemoryIdempotencyStore()
	t.Cleanup(func() { _ = idem.Close() })
	h.jobService = appprinting.NewPrintJobService(h.jobs, h.receipts, h.shops, h.scope, h.coordinator, idem, h.settings, nil)
	h.failures.SetIdempotencyStore(idem)

	userID := uuid.New()
	shop := h.openShop()
	job := h.createJob(userID, shop.ID, "A", "B")
	req := appprinting.ConfirmPaymentRequest{PrintJobID: job.ID, PaymentID: "pay_retry"}

	first, err := h.jobService.ConfirmPayment(h.ctx(), userID, req)
	require.NoError(t, err)
	require.NotNil(t, first.WorkItemID)

	// losing the converted file makes every finalize attempt fail
	converted := h.draft(job.DraftID).ConvertedFileRef
	data, err := h.store.Download(h.ctx(), converted)
	require.NoError(t, err)
	require.NoError(t, h.store.Delete(h.ctx(), converted))
	h.drain()

	stuck := h.job(job.ID)
	require.Equal(t, printing.JobStatusProcessingPayment, stuck.Status)
	require.Equal(t, printing.PaymentStatusPendingPayment, stuck.PaymentStatus)
	require.Equal(t, int64(0), h.receiptCount(job.ID))

	require.NoError(t, h.store.Upload(h.ctx(), converted, data, "application/pdf"))

	retry, err := h.jobService.ConfirmPayment(h.ctx(), userID, req)
	require.NoError(t, err)
	assert.False(t, retry.Duplicate)
	require.NotNil(t, retry.WorkItemID)
	assert.NotEqual(t, *first.WorkItemID, *retry.WorkItemID)
	assert.Equal(t, "Payment finalization rescheduled", retry.Message)

	// while the new item is pending nothing else is scheduled
	pending, err := h.jobService.ConfirmPayment(h.ctx(), userID, appprinting.ConfirmPaymentRequest{PrintJobID: job.ID, PaymentID: "pay_other"})
	require.NoError(t, err)
	assert.Nil(t, pending.WorkItemID)

	h.drain()

	paid := h.job(job.ID)
	assert.Equal(t, printing.PaymentStatusPaid, paid.PaymentStatus)
	assert.Equal(t, printing.JobStatusQueued, paid.Status)
	assert.Equal(t, int64(1), h.receiptCount(job.ID))
}

func TestPrintJobService_ConfirmPayment_NotOwner(t *testing.T) {
	h := newHarness(t)
	userID := uuid.New()
	shop := h.openShop()
	job := h.createJob(userID, shop.ID, "A")

	_, err := h.jobService.ConfirmPayment(h.ctx(), uuid.New(), appprinting.ConfirmPaymentRequest{
		PrintJobID: job.ID,
		PaymentID:  "pay_1",
	})
	assert.True(t, errors.Is(err, shared.ErrNotFound))
	assert.Equal(t, printing.JobStatusPendingPayment, h.job(job.ID).Status)
}

func TestPrintJobService_UpdateStatus(t *testing.T) {
	h := newHarness(t)
	userID := uuid.New()
	shop := h.openShop()
	job := h.createJob(userID, shop.ID, "A")

	_, err := h.jobService.UpdateStatus(h.ctx(), shop.ID, job.ID, appprinting.UpdatePrintJobStatusRequest{Status: "PRINTING"})
	assert.True(t, errors.Is(err, shared.ErrInvalidTransition), "unpaid jobs cannot be printed")

	_, err = h.jobService.ConfirmPayment(h.ctx(), userID, appprinting.ConfirmPaymentRequest{PrintJobID: job.ID, PaymentID: "pay"})
	require.NoError(t, err)
	h.drain()

	_, err = h.jobService.UpdateStatus(h.ctx(), shop.ID, job.ID, appprinting.UpdatePrintJobStatusRequest{Status: "QUEUED"})
	assert.True(t, errors.Is(err, shared.ErrForbidden))

	_, err = h.jobService.UpdateStatus(h.ctx(), shop.ID, job.ID, appprinting.UpdatePrintJobStatusRequest{Status: "SHREDDED"})
	assert.True(t, errors.Is(err, shared.ErrValidation))

	_, err = h.jobService.UpdateStatus(h.ctx(), uuid.New(), job.ID, appprinting.UpdatePrintJobStatusRequest{Status: "PRINTING"})
	assert.True(t, errors.Is(err, shared.ErrNotFound))

	queue, err := h.jobService.ShopQueue(h.ctx(), shop.ID)
	require.NoError(t, err)
	require.Len(t, queue, 1)

	printingResp, err := h.jobService.UpdateStatus(h.ctx(), shop.ID, job.ID, appprinting.UpdatePrintJobStatusRequest{Status: "PRINTING"})
	require.NoError(t, err)
	assert.Equal(t, "PRINTING", printingResp.Status)

	completed, err := h.jobService.UpdateStatus(h.ctx(), shop.ID, job.ID, appprinting.UpdatePrintJobStatusRequest{Status: "COMPLETED"})
	require.NoError(t, err)
	assert.Equal(t, "COMPLETED", completed.Status)

	_, err = h.jobService.UpdateStatus(h.ctx(), shop.ID, job.ID, appprinting.UpdatePrintJobStatusRequest{Status: "CANCELLED"})
	assert.True(t, errors.Is(err, shared.ErrInvalidTransition))

	queue, err = h.jobService.ShopQueue(h.ctx(), shop.ID)
	require.NoError(t, err)
	assert.Empty(t, queue)

	var updates int
	for _, n := range h.notifier.events() {
		if n.Event == appprinting.NotifyPrintJobStatusUpdated && n.Audience == appprinting.ShopAudience(shop.ID) {
			updates++
		}
	}
	assert.Equal(t, 2, updates)
}

func TestPrintJobService_Queries(t *testing.T) {
	h := newHarness(t)
	userID := uuid.New()
	shop := h.openShop()
	job := h.createJob(userID, shop.ID, "A")

	_, err := h.jobService.GetReceipt(h.ctx(), userID, job.ID)
	assert.True(t, errors.Is(err, shared.ErrNotFound))

	_, err = h.jobService.ConfirmPayment(h.ctx(), userID, appprinting.ConfirmPaymentRequest{PrintJobID: job.ID, PaymentID: "pay_q"})
	require.NoError(t, err)
	h.drain()

	receipt, err := h.jobService.GetReceipt(h.ctx(), userID, job.ID)
	require.NoError(t, err)
	assert.Equal(t, "pay_q", receipt.PaymentRef)
	assert.True(t, job.Amount.Equal(receipt.Amount))

	got, err := h.jobService.Get(h.ctx(), userID, job.ID)
	require.NoError(t, err)
	require.NotNil(t, got.FinalFileRef)

	_, err = h.jobService.Get(h.ctx(), uuid.New(), job.ID)
	assert.True(t, errors.Is(err, shared.ErrNotFound))

	list, err := h.jobService.ListByUser(h.ctx(), userID, shared.Filter{})
	require.NoError(t, err)
	assert.Len(t, list, 1)

	shops, err := h.jobService.ListShops(h.ctx())
	require.NoError(t, err)
	require.Len(t, shops, 1)
	assert.True(t, printing.DefaultPriceBW.Equal(shops[0].PriceBW))
}
