package persistence

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	appprinting "github.com/printshop/backend/internal/application/printing"
	"github.com/printshop/backend/internal/domain/printing"
	"github.com/printshop/backend/internal/domain/shared"
	"github.com/printshop/backend/internal/infrastructure/config"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func TestGormTransactionScope(t *testing.T) {
	ctx := context.Background()

	t.Run("commits all writes", func(t *testing.T) {
		db := setupTestDB(t)
		scope := NewGormTransactionScope(db)
		draft := newReadyDraft(t, uuid.New())

		err := scope.Execute(ctx, func(repos appprinting.TxRepositories) error {
			if err := repos.Drafts().Save(ctx, draft); err != nil {
				return err
			}
			return repos.Files().Create(ctx, printing.NewFileRecord(draft.UserID, "a.pdf", "final/a.pdf", 1))
		})
		require.NoError(t, err)

		_, err = NewGormDraftRepository(db).FindByID(ctx, draft.ID)
		assert.NoError(t, err)
	})

	t.Run("rolls back every write on error", func(t *testing.T) {
		db := setupTestDB(t)
		scope := NewGormTransactionScope(db)
		shop := printing.NewShop("Campus Copy", "Library", decimal.Zero, decimal.Zero)
		draft := newReadyDraft(t, uuid.New())
		job := newPendingJob(t, shop, draft, 1)
		induced := errors.New("induced failure")

		err := scope.Execute(ctx, func(repos appprinting.TxRepositories) error {
			require.NoError(t, repos.Drafts().Save(ctx, draft))
			require.NoError(t, repos.PrintJobs().Save(ctx, job))
			require.NoError(t, repos.Receipts().Create(ctx, printing.NewReceipt(job, "pay", time.Hour)))
			return induced
		})
		assert.ErrorIs(t, err, induced)

		_, err = NewGormDraftRepository(db).FindByID(ctx, draft.ID)
		assert.ErrorIs(t, err, shared.ErrNotFound)
		_, err = NewGormPrintJobRepository(db).FindByID(ctx, job.ID)
		assert.ErrorIs(t, err, shared.ErrNotFound)
		n, err := NewGormReceiptRepository(db).CountByPrintJob(ctx, job.ID)
		require.NoError(t, err)
		assert.Zero(t, n)
	})
}

func newMockPostgres(t *testing.T) (*gorm.DB, sqlmock.Sqlmock, *sql.DB) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	dialector := postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	})
	gormDB, err := gorm.Open(dialector, &gorm.Config{SkipDefaultTransaction: true})
	require.NoError(t, err)
	return gormDB, mock, mockDB
}

func TestGormPrintJobRepository_FindByIDForUpdate_LocksRow(t *testing.T) {
	db, mock, mockDB := newMockPostgres(t)
	defer mockDB.Close()

	jobID := uuid.New()
	rows := sqlmock.NewRows([]string{"id", "user_id", "shop_id", "draft_id", "amount", "payment_status", "status", "queue_number", "copies", "color_mode"}).
		AddRow(jobID, uuid.New(), uuid.New(), uuid.New(), "16.00", "PENDING_PAYMENT", "PROCESSING_PAYMENT", 4, 1, "bw")

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "print_jobs" WHERE id = $1`)+`.*FOR UPDATE`).
		WithArgs(jobID, 1).
		WillReturnRows(rows)

	job, err := NewGormPrintJobRepository(db).FindByIDForUpdate(context.Background(), jobID)
	require.NoError(t, err)
	assert.Equal(t, jobID, job.ID)
	assert.Equal(t, printing.JobStatusProcessingPayment, job.Status)
	assert.True(t, decimal.NewFromInt(16).Equal(job.Amount))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormWorkItemStore_Claim_UsesCompareAndSwap(t *testing.T) {
	db, mock, mockDB := newMockPostgres(t)
	defer mockDB.Close()

	id := uuid.New()
	mock.ExpectQuery(`SELECT "id" FROM "work_items" WHERE .*status = \$1 AND run_at <= \$2.*`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(id))
	mock.ExpectExec(`UPDATE "work_items" SET .* WHERE id = \$\d+ AND .*status = \$\d+ AND run_at <= .*`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	claimed, err := NewGormWorkItemStore(db).Claim(context.Background(), "worker-a", nil, 5, time.Minute)
	require.NoError(t, err)
	assert.Empty(t, claimed, "a row updated by someone else first is skipped")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNewDatabase_Sqlite(t *testing.T) {
	database, err := NewDatabase(&config.DatabaseConfig{Driver: "sqlite", Path: ":memory:"})
	require.NoError(t, err)
	defer database.Close()

	require.NoError(t, database.Ping())
	require.NoError(t, database.AutoMigrate())

	stats, err := database.Stats()
	require.NoError(t, err)
	assert.Equal(t, 1, stats.MaxOpenConnections)
	assert.True(t, database.DB.Migrator().HasTable("work_items"))
	assert.True(t, database.DB.Migrator().HasTable("receipts"))
}
