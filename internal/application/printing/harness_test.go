package printing_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	appprinting "github.com/printshop/backend/internal/application/printing"
	"github.com/printshop/backend/internal/domain/document"
	"github.com/printshop/backend/internal/domain/printing"
	domainqueue "github.com/printshop/backend/internal/domain/queue"
	"github.com/printshop/backend/internal/domain/shared"
	"github.com/printshop/backend/internal/infrastructure/config"
	"github.com/printshop/backend/internal/infrastructure/event"
	"github.com/printshop/backend/internal/infrastructure/pdf"
	"github.com/printshop/backend/internal/infrastructure/persistence"
	"github.com/printshop/backend/internal/infrastructure/queue"
	"github.com/printshop/backend/internal/infrastructure/storage"
	"github.com/printshop/backend/internal/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// fakeConverter passes PDFs through and fails for every other type unless
// an output is configured
type fakeConverter struct {
	mu     sync.Mutex
	output []byte
	err    error
	calls  []string
}

func (c *fakeConverter) Convert(_ context.Context, src []byte, sourceType string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls = append(c.calls, sourceType)
	if c.err != nil {
		return nil, c.err
	}
	if c.output != nil {
		return c.output, nil
	}
	if strings.Contains(sourceType, "pdf") {
		return src, nil
	}
	return nil, shared.NewValidationError("unsupported file type " + sourceType)
}

// recordingNotifier captures emitted notifications
type recordingNotifier struct {
	mu   sync.Mutex
	sent []sentNotification
}

type sentNotification struct {
	Audience appprinting.Audience
	Event    string
}

func (n *recordingNotifier) Emit(_ context.Context, audience appprinting.Audience, name string, _ any) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, sentNotification{Audience: audience, Event: name})
	return nil
}

func (n *recordingNotifier) events() []sentNotification {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]sentNotification(nil), n.sent...)
}

// harness wires the print services over in-memory SQLite and object storage
type harness struct {
	t           *testing.T
	db          *gorm.DB
	store       *storage.MemoryObjectStorage
	converter   *fakeConverter
	notifier    *recordingNotifier
	bus         *event.InMemoryEventBus
	coordinator *queue.Coordinator
	scope       appprinting.TransactionScope
	settings    appprinting.Settings

	drafts   *persistence.GormDraftRepository
	jobs     *persistence.GormPrintJobRepository
	receipts *persistence.GormReceiptRepository
	shops    *persistence.GormShopRepository

	draftService   *appprinting.DraftService
	jobService     *appprinting.PrintJobService
	processHandler *appprinting.ProcessDraftHandler
	finalizer      *appprinting.FinalizeHandler
	failures       *appprinting.WorkFailureHandler
	cleanup        *appprinting.CleanupService
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	database, err := persistence.NewDatabase(&config.DatabaseConfig{Driver: "sqlite", Path: ":memory:"})
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate())
	t.Cleanup(func() { _ = database.Close() })
	db := database.DB

	h := &harness{
		t:         t,
		db:        db,
		store:     storage.NewMemoryObjectStorage(),
		converter: &fakeConverter{},
		notifier:  &recordingNotifier{},
		bus:       event.NewInMemoryEventBus(zap.NewNop()),
		scope:     persistence.NewGormTransactionScope(db),
		settings:  appprinting.DefaultSettings(),
		drafts:    persistence.NewGormDraftRepository(db),
		jobs:      persistence.NewGormPrintJobRepository(db),
		receipts:  persistence.NewGormReceiptRepository(db),
		shops:     persistence.NewGormShopRepository(db),
	}

	h.coordinator = queue.NewCoordinator(persistence.NewGormWorkItemStore(db), queue.Config{
		MaxAttempts: 2,
		Backoff:     domainqueue.ConstantBackoff{Interval: 0},
	}, zap.NewNop())

	loader := pdf.NewLoader(zap.NewNop())
	engine := document.NewEngine(zap.NewNop())

	h.draftService = appprinting.NewDraftService(h.drafts, h.scope, h.store, loader, engine, h.coordinator, h.settings, zap.NewNop())
	h.jobService = appprinting.NewPrintJobService(h.jobs, h.receipts, h.shops, h.scope, h.coordinator, nil, h.settings, zap.NewNop())
	h.processHandler = appprinting.NewProcessDraftHandler(h.drafts, h.store, h.converter, loader, engine, h.settings, zap.NewNop())
	h.finalizer = appprinting.NewFinalizeHandler(h.scope, h.store, h.settings, zap.NewNop())
	h.failures = appprinting.NewWorkFailureHandler(h.drafts, zap.NewNop())
	h.cleanup = appprinting.NewCleanupService(h.receipts, h.scope, h.store, h.settings, zap.NewNop())

	for _, svc := range []interface {
		SetEventPublisher(shared.EventPublisher)
	}{h.draftService, h.jobService, h.processHandler, h.finalizer, h.failures} {
		svc.SetEventPublisher(h.bus)
	}
	h.bus.Subscribe(appprinting.NewNotificationHandler(h.notifier, zap.NewNop()))

	h.coordinator.Register(domainqueue.KindProcessDraft, h.processHandler)
	h.coordinator.Register(domainqueue.KindFinalizePrintJob, h.finalizer)
	h.coordinator.OnExhausted(h.failures.OnExhausted)
	return h
}

func (h *harness) ctx() context.Context {
	return testutil.ContextWithTimeout(h.t, 30*time.Second)
}

// drain processes due work items until none are left
func (h *harness) drain() {
	h.t.Helper()
	for i := 0; i < 10; i++ {
		n, err := h.coordinator.RunOnce(h.ctx(), 10)
		require.NoError(h.t, err)
		if n == 0 {
			return
		}
	}
}

func (h *harness) openShop() *printing.Shop {
	h.t.Helper()
	shop := printing.NewShop("Campus Print", "Library", decimal.Zero, decimal.Zero)
	require.NoError(h.t, h.shops.Save(h.ctx(), shop))
	return shop
}

// uploadPDF uploads a PDF with the given page labels and runs its conversion
func (h *harness) uploadPDF(userID uuid.UUID, labels ...string) *appprinting.DraftResponse {
	h.t.Helper()
	resp, err := h.draftService.Create(h.ctx(), userID, appprinting.CreateDraftRequest{
		Source:      "editor",
		FileName:    "thesis.pdf",
		ContentType: "application/pdf",
		Data:        testutil.SamplePDF(labels...),
	})
	require.NoError(h.t, err)
	h.drain()
	return resp
}

// checkoutDraft uploads a PDF and advances it to ready_for_checkout
func (h *harness) checkoutDraft(userID uuid.UUID, labels ...string) *printing.Draft {
	h.t.Helper()
	created := h.uploadPDF(userID, labels...)
	_, err := h.draftService.AdvanceToCheckout(h.ctx(), userID, created.ID)
	require.NoError(h.t, err)
	return h.draft(created.ID)
}

func (h *harness) draft(id uuid.UUID) *printing.Draft {
	h.t.Helper()
	d, err := h.drafts.FindByID(h.ctx(), id)
	require.NoError(h.t, err)
	return d
}

func (h *harness) job(id uuid.UUID) *printing.PrintJob {
	h.t.Helper()
	j, err := h.jobs.FindByID(h.ctx(), id)
	require.NoError(h.t, err)
	return j
}

func (h *harness) receiptCount(jobID uuid.UUID) int64 {
	h.t.Helper()
	n, err := h.receipts.CountByPrintJob(h.ctx(), jobID)
	require.NoError(h.t, err)
	return n
}

// pdfPages loads a stored PDF and returns its page count
func (h *harness) pdfPages(path string) int {
	h.t.Helper()
	data, err := h.store.Download(h.ctx(), path)
	require.NoError(h.t, err)
	doc, err := pdf.NewLoader(nil).Load(h.ctx(), data)
	require.NoError(h.t, err)
	return doc.PageCount()
}

// failingScope wraps a scope and makes receipt creation fail inside the transaction
type failingScope struct {
	inner appprinting.TransactionScope
	err   error
}

func (s *failingScope) Execute(ctx context.Context, fn func(appprinting.TxRepositories) error) error {
	return s.inner.Execute(ctx, func(repos appprinting.TxRepositories) error {
		return fn(&failingRepos{TxRepositories: repos, err: s.err})
	})
}

type failingRepos struct {
	appprinting.TxRepositories
	err error
}

func (r *failingRepos) Receipts() printing.ReceiptRepository {
	return &failingReceipts{ReceiptRepository: r.TxRepositories.Receipts(), err: r.err}
}

type failingReceipts struct {
	printing.ReceiptRepository
	err error
}

func (r *failingReceipts) Create(context.Context, *printing.Receipt) error {
	return r.err
}

var errInduced = errors.New("induced failure")
