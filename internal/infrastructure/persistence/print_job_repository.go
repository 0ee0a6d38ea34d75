package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/printshop/backend/internal/domain/printing"
	"github.com/printshop/backend/internal/domain/shared"
	"github.com/printshop/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormPrintJobRepository implements PrintJobRepository using GORM
type GormPrintJobRepository struct {
	db *gorm.DB
}

// NewGormPrintJobRepository creates a new GormPrintJobRepository
func NewGormPrintJobRepository(db *gorm.DB) *GormPrintJobRepository {
	return &GormPrintJobRepository{db: db}
}

// FindByID finds a job by ID
func (r *GormPrintJobRepository) FindByID(ctx context.Context, id uuid.UUID) (*printing.PrintJob, error) {
	return r.find(r.db.WithContext(ctx), id)
}

// FindByIDForUpdate finds a job and takes a row lock, serializing
// concurrent finalization and status updates of the same job
func (r *GormPrintJobRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*printing.PrintJob, error) {
	return r.find(r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}), id)
}

func (r *GormPrintJobRepository) find(db *gorm.DB, id uuid.UUID) (*printing.PrintJob, error) {
	var model models.PrintJobModel
	if err := db.First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NewNotFoundError("print job", id.String())
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByUser lists a user's jobs, newest first
func (r *GormPrintJobRepository) FindByUser(ctx context.Context, userID uuid.UUID, filter shared.Filter) ([]printing.PrintJob, error) {
	var jobModels []models.PrintJobModel
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Offset(filter.Offset()).
		Limit(filter.Limit()).
		Find(&jobModels).Error; err != nil {
		return nil, err
	}
	return toPrintJobs(jobModels), nil
}

// FindShopQueue lists a shop's jobs in the given statuses, oldest queue number first
func (r *GormPrintJobRepository) FindShopQueue(ctx context.Context, shopID uuid.UUID, statuses []printing.JobStatus) ([]printing.PrintJob, error) {
	query := r.db.WithContext(ctx).Where("shop_id = ?", shopID)
	if len(statuses) > 0 {
		values := make([]string, len(statuses))
		for i, s := range statuses {
			values[i] = string(s)
		}
		query = query.Where("status IN ?", values)
	}

	var jobModels []models.PrintJobModel
	if err := query.Order("created_at ASC").Order("queue_number ASC").Find(&jobModels).Error; err != nil {
		return nil, err
	}
	return toPrintJobs(jobModels), nil
}

// CountForShopSince counts a shop's jobs created at or after since
func (r *GormPrintJobRepository) CountForShopSince(ctx context.Context, shopID uuid.UUID, since time.Time) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.PrintJobModel{}).
		Where("shop_id = ? AND created_at >= ?", shopID, since.UTC()).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Save saves a job (insert or update)
func (r *GormPrintJobRepository) Save(ctx context.Context, job *printing.PrintJob) error {
	return r.db.WithContext(ctx).Save(models.PrintJobModelFromDomain(job)).Error
}

// Delete deletes a job by ID
func (r *GormPrintJobRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.PrintJobModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.NewNotFoundError("print job", id.String())
	}
	return nil
}

func toPrintJobs(jobModels []models.PrintJobModel) []printing.PrintJob {
	jobs := make([]printing.PrintJob, len(jobModels))
	for i, model := range jobModels {
		jobs[i] = *model.ToDomain()
	}
	return jobs
}

var _ printing.PrintJobRepository = (*GormPrintJobRepository)(nil)
