package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/papermill/portal/internal/domain/printing"
	"github.com/papermill/portal/internal/domain/shared"
	"github.com/papermill/portal/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormPrintJobRepository implements printing.PrintJobRepository using GORM
type GormPrintJobRepository struct {
	db *gorm.DB
}

// NewGormPrintJobRepository creates a new GormPrintJobRepository
func NewGormPrintJobRepository(db *gorm.DB) *GormPrintJobRepository {
	return &GormPrintJobRepository{db: db}
}

// Save inserts the job or overwrites the stored row with the same ID
func (r *GormPrintJobRepository) Save(ctx context.Context, job *printing.PrintJob) error {
	model := models.PrintJobModelFromDomain(job)
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			UpdateAll: true,
		}).
		Create(model).Error
	if err != nil {
		return fmt.Errorf("save print job %s: %w", job.ID, err)
	}
	return nil
}

// FindByID finds a job by ID
func (r *GormPrintJobRepository) FindByID(ctx context.Context, id uuid.UUID) (*printing.PrintJob, error) {
	var model models.PrintJobModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// List returns one page of jobs matching the filter and the total match count
func (r *GormPrintJobRepository) List(ctx context.Context, filter printing.JobFilter) ([]printing.PrintJob, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.PrintJobModel{})
	if filter.DocumentType != "" {
		query = query.Where("document_type = ?", string(filter.DocumentType))
	}
	if filter.ReferenceID != "" {
		query = query.Where("reference_id = ?", filter.ReferenceID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", string(filter.Status))
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	paging := shared.Filter{Page: filter.Page, PageSize: filter.PageSize}.Normalize()
	var jobModels []models.PrintJobModel
	err := query.
		Order(orderClause(filter.OrderBy, filter.OrderDir)).
		Offset((paging.Page - 1) * paging.PageSize).
		Limit(paging.PageSize).
		Find(&jobModels).Error
	if err != nil {
		return nil, 0, err
	}

	return toDomainJobs(jobModels), total, nil
}

// FindLatestCompleted returns the most recently completed job for a document
func (r *GormPrintJobRepository) FindLatestCompleted(ctx context.Context, docType printing.DocType, referenceID string) (*printing.PrintJob, error) {
	var model models.PrintJobModel
	err := r.db.WithContext(ctx).
		Where("document_type = ? AND reference_id = ? AND status = ?",
			string(docType), referenceID, string(printing.JobStatusCompleted)).
		Order("completed_at DESC").
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// DeleteOlderThan removes jobs created before the cutoff and returns them so
// the caller can remove their stored files.
func (r *GormPrintJobRepository) DeleteOlderThan(ctx context.Context, before time.Time) ([]printing.PrintJob, error) {
	var jobModels []models.PrintJobModel
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("created_at < ?", before).Find(&jobModels).Error; err != nil {
			return err
		}
		if len(jobModels) == 0 {
			return nil
		}
		ids := make([]uuid.UUID, len(jobModels))
		for i, m := range jobModels {
			ids[i] = m.ID
		}
		return tx.Where("id IN ?", ids).Delete(&models.PrintJobModel{}).Error
	})
	if err != nil {
		return nil, fmt.Errorf("delete print jobs before %s: %w", before.Format(time.RFC3339), err)
	}
	return toDomainJobs(jobModels), nil
}

func toDomainJobs(in []models.PrintJobModel) []printing.PrintJob {
	jobs := make([]printing.PrintJob, len(in))
	for i := range in {
		jobs[i] = *in[i].ToDomain()
	}
	return jobs
}

// Ensure GormPrintJobRepository implements printing.PrintJobRepository
var _ printing.PrintJobRepository = (*GormPrintJobRepository)(nil)
