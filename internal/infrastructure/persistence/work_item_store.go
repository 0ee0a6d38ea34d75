package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/printshop/backend/internal/domain/queue"
	"github.com/printshop/backend/internal/domain/shared"
	"github.com/printshop/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormWorkItemStore implements queue.Store on the work_items table.
//
// Claiming is a compare-and-swap per candidate row: the UPDATE repeats the
// "due" predicate, so two workers racing for the same row cannot both see
// RowsAffected == 1. This works the same on PostgreSQL and SQLite.
type GormWorkItemStore struct {
	db *gorm.DB
}

// NewGormWorkItemStore creates a new GormWorkItemStore
func NewGormWorkItemStore(db *gorm.DB) *GormWorkItemStore {
	return &GormWorkItemStore{db: db}
}

// Enqueue persists a new pending item
func (s *GormWorkItemStore) Enqueue(ctx context.Context, item *queue.WorkItem) error {
	return s.db.WithContext(ctx).Create(models.WorkItemModelFromDomain(item)).Error
}

const dueClause = "(status = ? AND run_at <= ?) OR (status = ? AND locked_until < ?)"

// Claim leases up to limit due items to workerID
func (s *GormWorkItemStore) Claim(ctx context.Context, workerID string, kinds []queue.Kind, limit int, lease time.Duration) ([]*queue.WorkItem, error) {
	if limit <= 0 {
		return nil, nil
	}
	now := time.Now().UTC()
	db := s.db.WithContext(ctx)

	query := db.Model(&models.WorkItemModel{}).
		Where(dueClause, string(queue.StatusPending), now, string(queue.StatusRunning), now)
	if len(kinds) > 0 {
		values := make([]string, len(kinds))
		for i, k := range kinds {
			values[i] = string(k)
		}
		query = query.Where("kind IN ?", values)
	}

	var candidates []uuid.UUID
	if err := query.Order("run_at ASC").Limit(limit).Pluck("id", &candidates).Error; err != nil {
		return nil, err
	}

	until := now.Add(lease)
	claimed := make([]*queue.WorkItem, 0, len(candidates))
	for _, id := range candidates {
		result := db.Model(&models.WorkItemModel{}).
			Where("id = ?", id).
			Where(dueClause, string(queue.StatusPending), now, string(queue.StatusRunning), now).
			Updates(map[string]any{
				"status":       string(queue.StatusRunning),
				"locked_by":    workerID,
				"locked_until": until,
				"heartbeat_at": now,
				"attempts":     gorm.Expr("attempts + 1"),
				"updated_at":   now,
			})
		if result.Error != nil {
			return claimed, result.Error
		}
		if result.RowsAffected != 1 {
			continue
		}

		item, err := s.FindByID(ctx, id)
		if err != nil {
			return claimed, err
		}
		claimed = append(claimed, item)
	}
	return claimed, nil
}

// Heartbeat extends the lease of items still held by workerID
func (s *GormWorkItemStore) Heartbeat(ctx context.Context, workerID string, ids []uuid.UUID, lease time.Duration) error {
	if len(ids) == 0 {
		return nil
	}
	now := time.Now().UTC()
	return s.db.WithContext(ctx).
		Model(&models.WorkItemModel{}).
		Where("id IN ? AND locked_by = ? AND status = ?", ids, workerID, string(queue.StatusRunning)).
		Updates(map[string]any{
			"locked_until": now.Add(lease),
			"heartbeat_at": now,
			"updated_at":   now,
		}).Error
}

// Update writes back an item after an attempt. Returns queue.ErrLeaseLost when the
// lease has been reclaimed by another worker in the meantime.
func (s *GormWorkItemStore) Update(ctx context.Context, workerID string, item *queue.WorkItem) error {
	result := s.db.WithContext(ctx).
		Model(&models.WorkItemModel{}).
		Where("id = ? AND locked_by = ? AND status = ?", item.ID, workerID, string(queue.StatusRunning)).
		Updates(map[string]any{
			"status":       string(item.Status),
			"attempts":     item.Attempts,
			"run_at":       item.RunAt,
			"locked_by":    item.LockedBy,
			"locked_until": item.LockedUntil,
			"last_error":   item.LastError,
			"completed_at": item.CompletedAt,
			"updated_at":   time.Now().UTC(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return queue.ErrLeaseLost
	}
	return nil
}

// ReapExpired returns running items whose lease lapsed to pending
func (s *GormWorkItemStore) ReapExpired(ctx context.Context, now time.Time) (int64, error) {
	now = now.UTC()
	result := s.db.WithContext(ctx).
		Model(&models.WorkItemModel{}).
		Where("status = ? AND locked_until < ?", string(queue.StatusRunning), now).
		Updates(map[string]any{
			"status":       string(queue.StatusPending),
			"locked_by":    "",
			"locked_until": nil,
			"run_at":       now,
			"updated_at":   now,
		})
	return result.RowsAffected, result.Error
}

// FindByID finds a work item by ID
func (s *GormWorkItemStore) FindByID(ctx context.Context, id uuid.UUID) (*queue.WorkItem, error) {
	var model models.WorkItemModel
	if err := s.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NewNotFoundError("work item", id.String())
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// HasActive reports whether a pending or running item of kind exists for subjectID
func (s *GormWorkItemStore) HasActive(ctx context.Context, kind queue.Kind, subjectID uuid.UUID) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).
		Model(&models.WorkItemModel{}).
		Where("kind = ? AND subject_id = ? AND status IN ?", string(kind), subjectID,
			[]string{string(queue.StatusPending), string(queue.StatusRunning)}).
		Count(&count).Error
	return count > 0, err
}

// FindFailed lists permanently failed items, newest first
func (s *GormWorkItemStore) FindFailed(ctx context.Context, limit int) ([]*queue.WorkItem, error) {
	var itemModels []models.WorkItemModel
	query := s.db.WithContext(ctx).Where("status = ?", string(queue.StatusFailed)).Order("updated_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&itemModels).Error; err != nil {
		return nil, err
	}
	items := make([]*queue.WorkItem, len(itemModels))
	for i := range itemModels {
		items[i] = itemModels[i].ToDomain()
	}
	return items, nil
}

// Requeue resets a permanently failed item for another round of attempts
func (s *GormWorkItemStore) Requeue(ctx context.Context, id uuid.UUID) error {
	item, err := s.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := item.ResetForRetry(); err != nil {
		return shared.WrapDomainError(shared.CodeConflict, err.Error(), err)
	}
	return s.db.WithContext(ctx).
		Model(&models.WorkItemModel{}).
		Where("id = ? AND status = ?", id, string(queue.StatusFailed)).
		Updates(map[string]any{
			"status":     string(item.Status),
			"attempts":   0,
			"last_error": "",
			"run_at":     item.RunAt,
			"updated_at": item.UpdatedAt,
		}).Error
}

// CountByStatus returns the number of items in each status
func (s *GormWorkItemStore) CountByStatus(ctx context.Context) (map[queue.Status]int64, error) {
	var rows []struct {
		Status string
		Count  int64
	}
	if err := s.db.WithContext(ctx).
		Model(&models.WorkItemModel{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	counts := make(map[queue.Status]int64, len(rows))
	for _, row := range rows {
		counts[queue.Status(row.Status)] = row.Count
	}
	return counts, nil
}

var _ queue.Store = (*GormWorkItemStore)(nil)
