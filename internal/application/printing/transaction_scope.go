package printing

import (
	"context"

	"github.com/printshop/backend/internal/domain/printing"
	"github.com/printshop/backend/internal/domain/queue"
)

// TransactionScope provides transactional access to the print repositories.
// All repository operations run inside fn are committed or rolled back together.
type TransactionScope interface {
	// Execute runs fn within a database transaction.
	// If fn returns an error, the transaction is rolled back.
	Execute(ctx context.Context, fn func(repos TxRepositories) error) error
}

// TxRepositories provides access to all repositories within a transaction.
// All repositories returned share the same underlying database transaction.
type TxRepositories interface {
	Drafts() printing.DraftRepository
	PrintJobs() printing.PrintJobRepository
	Receipts() printing.ReceiptRepository
	Files() printing.FileRecordRepository
	Shops() printing.ShopRepository
	// WorkItems lets a state change and the work it triggers commit together
	WorkItems() queue.Store
}
