package persistence

import (
	"context"

	appprinting "github.com/printshop/backend/internal/application/printing"
	"github.com/printshop/backend/internal/domain/printing"
	"github.com/printshop/backend/internal/domain/queue"
	"gorm.io/gorm"
)

// GormTransactionScope implements TransactionScope using GORM transactions.
type GormTransactionScope struct {
	db *gorm.DB
}

// NewGormTransactionScope creates a new GormTransactionScope
func NewGormTransactionScope(db *gorm.DB) *GormTransactionScope {
	return &GormTransactionScope{db: db}
}

// Execute runs fn within a database transaction.
// If fn returns an error, the transaction is rolled back.
// If fn succeeds, the transaction is committed.
func (s *GormTransactionScope) Execute(ctx context.Context, fn func(repos appprinting.TxRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormTxRepositories{tx: tx})
	})
}

// gormTxRepositories hands out repositories bound to one transaction
type gormTxRepositories struct {
	tx *gorm.DB
}

func (r *gormTxRepositories) Drafts() printing.DraftRepository {
	return NewGormDraftRepository(r.tx)
}

func (r *gormTxRepositories) PrintJobs() printing.PrintJobRepository {
	return NewGormPrintJobRepository(r.tx)
}

func (r *gormTxRepositories) Receipts() printing.ReceiptRepository {
	return NewGormReceiptRepository(r.tx)
}

func (r *gormTxRepositories) Files() printing.FileRecordRepository {
	return NewGormFileRecordRepository(r.tx)
}

func (r *gormTxRepositories) Shops() printing.ShopRepository {
	return NewGormShopRepository(r.tx)
}

func (r *gormTxRepositories) WorkItems() queue.Store {
	return NewGormWorkItemStore(r.tx)
}

// Ensure GormTransactionScope implements TransactionScope
var _ appprinting.TransactionScope = (*GormTransactionScope)(nil)

// Ensure gormTxRepositories implements TxRepositories
var _ appprinting.TxRepositories = (*gormTxRepositories)(nil)
