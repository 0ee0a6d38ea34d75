package printing_test

import (
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	appprinting "github.com/printshop/backend/internal/application/printing"
	"github.com/printshop/backend/internal/domain/printing"
	domainqueue "github.com/printshop/backend/internal/domain/queue"
	"github.com/printshop/backend/internal/domain/shared"
	"github.com/printshop/backend/internal/infrastructure/persistence"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// paidTask creates a job, confirms its payment and returns the finalize task
// without running it
func (h *harness) paidTask(labels ...string) (domainqueue.FinalizePrintJob, *appprinting.PrintJobResponse) {
	h.t.Helper()
	userID := uuid.New()
	shop := h.openShop()
	job := h.createJob(userID, shop.ID, labels...)
	_, err := h.jobService.ConfirmPayment(h.ctx(), userID, appprinting.ConfirmPaymentRequest{
		PrintJobID: job.ID,
		PaymentID:  "pay_" + job.ID.String()[:8],
	})
	require.NoError(h.t, err)
	return domainqueue.FinalizePrintJob{
		PrintJobID: job.ID,
		UserID:     userID,
		DraftID:    job.DraftID,
		PaymentRef: "pay_" + job.ID.String()[:8],
	}, job
}

func (h *harness) finalObjects() []string {
	var out []string
	for _, p := range h.store.Paths() {
		if strings.HasPrefix(p, h.settings.FinalPathPrefix+"/") {
			out = append(out, p)
		}
	}
	return out
}

func TestFinalizeHandler_EndToEnd(t *testing.T) {
	h := newHarness(t)
	task, job := h.paidTask("A", "B", "C")

	h.drain()

	paid := h.job(job.ID)
	assert.Equal(t, printing.PaymentStatusPaid, paid.PaymentStatus)
	assert.Equal(t, printing.JobStatusQueued, paid.Status)
	require.NotNil(t, paid.FinalFileRef)
	require.NotNil(t, paid.FinalFileID)
	assert.True(t, strings.HasPrefix(*paid.FinalFileRef, "final_invoices/final_"+job.ID.String()+"_"))
	assert.True(t, h.store.Exists(*paid.FinalFileRef))
	assert.Equal(t, 3, h.pdfPages(*paid.FinalFileRef))

	draft := h.draft(job.DraftID)
	assert.Equal(t, printing.DraftStatusPrinted, draft.Status)
	assert.NotEqual(t, draft.ConvertedFileRef, *paid.FinalFileRef)

	receipt, err := h.receipts.FindByPrintJob(h.ctx(), job.ID)
	require.NoError(t, err)
	assert.Equal(t, task.PaymentRef, receipt.PaymentRef)
	assert.True(t, paid.Amount.Equal(receipt.Amount))
	assert.WithinDuration(t, receipt.CreatedAt.Add(15*24*time.Hour), receipt.ExpiresAt, 2*time.Second)

	file, err := persistence.NewGormFileRecordRepository(h.db).FindByID(h.ctx(), *paid.FinalFileID)
	require.NoError(t, err)
	assert.Equal(t, *paid.FinalFileRef, file.StorageRef)
	assert.Equal(t, 3, file.PageCount)

	var user, shop int
	for _, n := range h.notifier.events() {
		switch {
		case n.Event == appprinting.NotifyPrintJobFinalized && n.Audience == appprinting.UserAudience(job.UserID):
			user++
		case n.Event == appprinting.NotifyPrintJobCreated && n.Audience == appprinting.ShopAudience(job.ShopID):
			shop++
		}
	}
	assert.Equal(t, 1, user)
	assert.Equal(t, 1, shop)
}

func TestFinalizeHandler_RepeatReturnsCommittedResult(t *testing.T) {
	h := newHarness(t)
	task, job := h.paidTask("A")

	first, err := h.finalizer.Finalize(h.ctx(), task)
	require.NoError(t, err)
	assert.False(t, first.AlreadyFinalized)

	second, err := h.finalizer.Finalize(h.ctx(), task)
	require.NoError(t, err)
	assert.True(t, second.AlreadyFinalized)
	assert.Equal(t, first.ReceiptID, second.ReceiptID)
	assert.Equal(t, first.FinalFileRef, second.FinalFileRef)

	// the queued delivery also sees a finalized job
	h.drain()
	assert.Equal(t, int64(1), h.receiptCount(job.ID))
	assert.Len(t, h.finalObjects(), 1)
}

func TestFinalizeHandler_ConcurrentDeliveries(t *testing.T) {
	h := newHarness(t)
	task, job := h.paidTask("A", "B")

	var wg sync.WaitGroup
	results := make([]*appprinting.FinalizeResult, 4)
	errs := make([]error, 4)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = h.finalizer.Finalize(h.ctx(), task)
		}(i)
	}
	wg.Wait()

	fresh := 0
	for i := range results {
		require.NoError(t, errs[i])
		assert.Equal(t, results[0].ReceiptID, results[i].ReceiptID)
		if !results[i].AlreadyFinalized {
			fresh++
		}
	}
	assert.Equal(t, 1, fresh)
	assert.Equal(t, int64(1), h.receiptCount(job.ID))
	assert.Len(t, h.finalObjects(), 1)
}

func TestFinalizeHandler_FailureRollsBackEverything(t *testing.T) {
	h := newHarness(t)
	task, job := h.paidTask("A", "B")
	draftBefore := h.draft(job.DraftID)

	broken := appprinting.NewFinalizeHandler(&failingScope{inner: h.scope, err: errInduced}, h.store, h.settings, zap.NewNop())
	_, err := broken.Finalize(h.ctx(), task)
	require.ErrorIs(t, err, errInduced)

	after := h.job(job.ID)
	assert.Equal(t, printing.PaymentStatusPendingPayment, after.PaymentStatus)
	assert.Equal(t, printing.JobStatusProcessingPayment, after.Status)
	assert.Nil(t, after.FinalFileRef)
	assert.Nil(t, after.FinalFileID)
	assert.Equal(t, int64(0), h.receiptCount(job.ID))
	assert.Empty(t, h.finalObjects())

	draftAfter := h.draft(job.DraftID)
	assert.Equal(t, printing.DraftStatusReadyForPrint, draftAfter.Status)
	assert.Equal(t, draftBefore.Version, draftAfter.Version)

	// the queued item still finalizes once the fault is gone
	h.drain()
	assert.Equal(t, printing.PaymentStatusPaid, h.job(job.ID).PaymentStatus)
	assert.Equal(t, int64(1), h.receiptCount(job.ID))
}

func TestFinalizeHandler_RejectsUnconfirmedJob(t *testing.T) {
	h := newHarness(t)
	userID := uuid.New()
	shop := h.openShop()
	job := h.createJob(userID, shop.ID, "A")

	// a cancelled payment can never become paid
	cancelled := h.job(job.ID)
	cancelled.PaymentStatus = printing.PaymentStatusCancelled
	require.NoError(t, h.jobs.Save(h.ctx(), cancelled))

	_, err := h.finalizer.Finalize(h.ctx(), domainqueue.FinalizePrintJob{PrintJobID: job.ID, UserID: userID, PaymentRef: "p"})
	assert.True(t, errors.Is(err, shared.ErrInvalidTransition))
	assert.Equal(t, int64(0), h.receiptCount(job.ID))
}

func TestFinalizeHandler_ExhaustedLeavesJobForReconciliation(t *testing.T) {
	h := newHarness(t)
	_, job := h.paidTask("A")

	draft := h.draft(job.DraftID)
	require.NoError(t, h.store.Delete(h.ctx(), draft.ConvertedFileRef))

	h.drain()

	after := h.job(job.ID)
	assert.Equal(t, printing.JobStatusProcessingPayment, after.Status)
	assert.Equal(t, int64(0), h.receiptCount(job.ID))
	assert.Equal(t, printing.DraftStatusReadyForPrint, h.draft(job.DraftID).Status)

	var failed int
	for _, n := range h.notifier.events() {
		if n.Event == appprinting.NotifyWorkItemFailed {
			failed++
			assert.Equal(t, appprinting.UserAudience(job.UserID), n.Audience)
		}
	}
	assert.Equal(t, 1, failed)
}
