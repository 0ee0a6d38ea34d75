package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/printshop/backend/internal/domain/queue"
	"github.com/printshop/backend/internal/domain/shared"
	"github.com/printshop/backend/internal/infrastructure/persistence/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func enqueueFinalize(t *testing.T, store *GormWorkItemStore) *queue.WorkItem {
	t.Helper()
	item, err := queue.NewWorkItem(queue.FinalizePrintJob{
		PrintJobID: uuid.New(),
		UserID:     uuid.New(),
		DraftID:    uuid.New(),
		PaymentRef: "pay_1",
	}, 3)
	require.NoError(t, err)
	require.NoError(t, store.Enqueue(context.Background(), item))
	return item
}

func TestGormWorkItemStore_Claim(t *testing.T) {
	ctx := context.Background()

	t.Run("claims due item once", func(t *testing.T) {
		store := NewGormWorkItemStore(setupTestDB(t))
		item := enqueueFinalize(t, store)

		claimed, err := store.Claim(ctx, "worker-a", queue.AllKinds(), 10, time.Minute)
		require.NoError(t, err)
		require.Len(t, claimed, 1)
		assert.Equal(t, item.ID, claimed[0].ID)
		assert.Equal(t, queue.StatusRunning, claimed[0].Status)
		assert.Equal(t, 1, claimed[0].Attempts)
		assert.Equal(t, "worker-a", claimed[0].LockedBy)
		require.NotNil(t, claimed[0].LockedUntil)

		task, err := claimed[0].Task()
		require.NoError(t, err)
		assert.Equal(t, "pay_1", task.(queue.FinalizePrintJob).PaymentRef)

		again, err := store.Claim(ctx, "worker-b", queue.AllKinds(), 10, time.Minute)
		require.NoError(t, err)
		assert.Empty(t, again, "a leased item must not be handed to a second worker")
	})

	t.Run("filters by kind", func(t *testing.T) {
		store := NewGormWorkItemStore(setupTestDB(t))
		enqueueFinalize(t, store)

		claimed, err := store.Claim(ctx, "worker-a", []queue.Kind{queue.KindProcessDraft}, 10, time.Minute)
		require.NoError(t, err)
		assert.Empty(t, claimed)
	})

	t.Run("skips items scheduled in the future", func(t *testing.T) {
		store := NewGormWorkItemStore(setupTestDB(t))
		item, err := queue.NewWorkItem(queue.ProcessDraft{DraftID: uuid.New(), UserID: uuid.New()}, 3)
		require.NoError(t, err)
		item.RunAt = time.Now().UTC().Add(time.Hour)
		require.NoError(t, store.Enqueue(ctx, item))

		claimed, err := store.Claim(ctx, "worker-a", nil, 10, time.Minute)
		require.NoError(t, err)
		assert.Empty(t, claimed)
	})

	t.Run("expired lease is reclaimable", func(t *testing.T) {
		db := setupTestDB(t)
		store := NewGormWorkItemStore(db)
		item := enqueueFinalize(t, store)

		_, err := store.Claim(ctx, "worker-a", nil, 1, time.Minute)
		require.NoError(t, err)

		past := time.Now().UTC().Add(-time.Second)
		require.NoError(t, db.Model(&models.WorkItemModel{}).
			Where("id = ?", item.ID).
			Update("locked_until", past).Error)

		claimed, err := store.Claim(ctx, "worker-b", nil, 1, time.Minute)
		require.NoError(t, err)
		require.Len(t, claimed, 1)
		assert.Equal(t, "worker-b", claimed[0].LockedBy)
		assert.Equal(t, 2, claimed[0].Attempts)
	})

	t.Run("respects limit", func(t *testing.T) {
		store := NewGormWorkItemStore(setupTestDB(t))
		for i := 0; i < 3; i++ {
			enqueueFinalize(t, store)
		}

		claimed, err := store.Claim(ctx, "worker-a", nil, 2, time.Minute)
		require.NoError(t, err)
		assert.Len(t, claimed, 2)
	})
}

func TestGormWorkItemStore_Update(t *testing.T) {
	ctx := context.Background()
	store := NewGormWorkItemStore(setupTestDB(t))
	enqueueFinalize(t, store)

	claimed, err := store.Claim(ctx, "worker-a", nil, 1, time.Minute)
	require.NoError(t, err)
	require.Len(t, claimed, 1)
	item := claimed[0]

	t.Run("foreign worker cannot write back", func(t *testing.T) {
		item.MarkCompleted()
		assert.ErrorIs(t, store.Update(ctx, "worker-b", item), queue.ErrLeaseLost)
	})

	t.Run("owner writes back", func(t *testing.T) {
		require.NoError(t, store.Update(ctx, "worker-a", item))

		found, err := store.FindByID(ctx, item.ID)
		require.NoError(t, err)
		assert.Equal(t, queue.StatusCompleted, found.Status)
		assert.NotNil(t, found.CompletedAt)
		assert.Empty(t, found.LockedBy)
	})

	t.Run("completed item is not claimable", func(t *testing.T) {
		again, err := store.Claim(ctx, "worker-a", nil, 1, time.Minute)
		require.NoError(t, err)
		assert.Empty(t, again)
	})
}

func TestGormWorkItemStore_Heartbeat(t *testing.T) {
	ctx := context.Background()
	store := NewGormWorkItemStore(setupTestDB(t))
	enqueueFinalize(t, store)

	claimed, err := store.Claim(ctx, "worker-a", nil, 1, time.Second)
	require.NoError(t, err)
	require.Len(t, claimed, 1)
	before := *claimed[0].LockedUntil

	require.NoError(t, store.Heartbeat(ctx, "worker-a", []uuid.UUID{claimed[0].ID}, time.Hour))
	found, err := store.FindByID(ctx, claimed[0].ID)
	require.NoError(t, err)
	assert.True(t, found.LockedUntil.After(before.Add(30*time.Minute)))

	require.NoError(t, store.Heartbeat(ctx, "worker-b", []uuid.UUID{claimed[0].ID}, 24*time.Hour))
	unchanged, err := store.FindByID(ctx, claimed[0].ID)
	require.NoError(t, err)
	assert.True(t, unchanged.LockedUntil.Equal(*found.LockedUntil), "heartbeat from a non-owner is ignored")
}

func TestGormWorkItemStore_ReapAndRequeue(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	store := NewGormWorkItemStore(db)
	item := enqueueFinalize(t, store)

	_, err := store.Claim(ctx, "worker-a", nil, 1, time.Millisecond)
	require.NoError(t, err)
	time.Sleep(10 * time.Millisecond)

	reaped, err := store.ReapExpired(ctx, time.Now())
	require.NoError(t, err)
	assert.Equal(t, int64(1), reaped)

	found, err := store.FindByID(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, queue.StatusPending, found.Status)
	assert.Nil(t, found.LockedUntil)

	claimed, err := store.Claim(ctx, "worker-a", nil, 1, time.Minute)
	require.NoError(t, err)
	require.Len(t, claimed, 1)
	failedNow := claimed[0].MarkFailed("boom", false, 0)
	require.True(t, failedNow)
	require.NoError(t, store.Update(ctx, "worker-a", claimed[0]))

	failed, err := store.FindFailed(ctx, 10)
	require.NoError(t, err)
	require.Len(t, failed, 1)
	assert.Equal(t, "boom", failed[0].LastError)

	counts, err := store.CountByStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), counts[queue.StatusFailed])

	require.NoError(t, store.Requeue(ctx, item.ID))
	requeued, err := store.FindByID(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, queue.StatusPending, requeued.Status)
	assert.Zero(t, requeued.Attempts)

	assert.ErrorIs(t, store.Requeue(ctx, item.ID), shared.ErrConflict, "only failed items can be requeued")
	assert.ErrorIs(t, store.Requeue(ctx, uuid.New()), shared.ErrNotFound)
}

func TestGormWorkItemStore_HasActive(t *testing.T) {
	ctx := context.Background()
	store := NewGormWorkItemStore(setupTestDB(t))
	item := enqueueFinalize(t, store)

	found, err := store.FindByID(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, item.SubjectID, found.SubjectID)

	active, err := store.HasActive(ctx, queue.KindFinalizePrintJob, item.SubjectID)
	require.NoError(t, err)
	assert.True(t, active, "pending items are active")

	active, err = store.HasActive(ctx, queue.KindProcessDraft, item.SubjectID)
	require.NoError(t, err)
	assert.False(t, active, "kind must match")

	claimed, err := store.Claim(ctx, "worker-a", nil, 1, time.Minute)
	require.NoError(t, err)
	require.Len(t, claimed, 1)
	active, err = store.HasActive(ctx, queue.KindFinalizePrintJob, item.SubjectID)
	require.NoError(t, err)
	assert.True(t, active, "running items are active")

	claimed[0].MarkFailed("boom", false, 0)
	require.NoError(t, store.Update(ctx, "worker-a", claimed[0]))
	active, err = store.HasActive(ctx, queue.KindFinalizePrintJob, item.SubjectID)
	require.NoError(t, err)
	assert.False(t, active, "failed items are not")
}
