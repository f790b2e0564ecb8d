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

// ── 申请模块业务错误 ──

var (
	ErrApplicationNotFound  = errors.New("申请不存在")
	ErrDuplicateApplication = errors.New("已投递过该职位，不能重复申请")
	ErrInvalidTransition    = errors.New("非法的状态流转")
	ErrProfileIncomplete    = errors.New("简历档案未完善，无法投递")
	ErrJobNotOpen           = errors.New("职位未发布或已关闭")
)

// Actor 当前操作者（由认证中间件注入的身份三元组）
type Actor struct {
	UserID    string
	Role      model.Role
	CompanyID string
}

// Notifier 状态流转通知接口
// 以注入接口代替全局单例，通知失败不阻塞、不回滚主流程；测试可替换为 no-op
type Notifier interface {
	ApplicationStatusChanged(app *model.Application, oldStatus, newStatus model.ApplicationStatus, feedback string)
}

// transitionTable 状态机规则表：当前状态 -> 目标状态 -> 要求的触发角色
// 表中未出现的 (当前, 目标) 组合一律非法；admin 可触发任意合法目标
var transitionTable = map[model.ApplicationStatus]map[model.ApplicationStatus]model.Role{
	model.StatusPendingHR: {
		model.StatusForwardedToCompany: model.RoleHR,
		model.StatusHRRejected:         model.RoleHR,
	},
	model.StatusForwardedToCompany: {
		model.StatusCompanyAccepted: model.RoleCompany,
		model.StatusCompanyRejected: model.RoleCompany,
		model.StatusOfferExtended:   model.RoleCompany,
	},
}

// validateTransition 校验 (当前状态, 目标状态, 角色) 是否在规则表内
func validateTransition(from, to model.ApplicationStatus, role model.Role) error {
	targets, ok := transitionTable[from]
	if !ok {
		// 终态：任何流转均非法
		return ErrInvalidTransition
	}
	required, ok := targets[to]
	if !ok {
		return ErrInvalidTransition
	}
	if role != required && role != model.RoleAdmin {
		return ErrInvalidTransition
	}
	return nil
}

// ApplicationService 求职申请业务接口
type ApplicationService interface {
	Apply(ctx context.Context, studentUserID, jobID string) (*dto.ApplicationResponse, error)
	GetByID(ctx context.Context, id string, actor Actor) (*dto.ApplicationResponse, error)
	ListMine(ctx context.Context, studentUserID string, req *dto.ApplicationListRequest) ([]dto.ApplicationResponse, int64, error)
	ListByJob(ctx context.Context, jobID string, actor Actor, req *dto.ApplicationListRequest) ([]dto.ApplicationResponse, int64, error)
	ListByCompany(ctx context.Context, actor Actor, req *dto.ApplicationListRequest) ([]dto.ApplicationResponse, int64, error)
	UpdateStatus(ctx context.Context, applicationID string, actor Actor, req *dto.UpdateStatusRequest) (*dto.ApplicationResponse, error)
}

type applicationService struct {
	repo     *repository.Repository
	notifier Notifier
	logger   *zap.Logger
}

// NewApplicationService 创建 ApplicationService 实例
func NewApplicationService(repo *repository.Repository, notifier Notifier, logger *zap.Logger) ApplicationService {
	return &applicationService{repo: repo, notifier: notifier, logger: logger}
}

// ────────────────────── Apply ──────────────────────

func (s *applicationService) Apply(ctx context.Context, studentUserID, jobID string) (*dto.ApplicationResponse, error) {
	// 职位必须存在且处于发布状态
	job, err := s.repo.Job.GetByID(ctx, jobID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrJobNotFound
		}
		s.logger.Error("查询职位失败", zap.String("job_id", jobID), zap.Error(err))
		return nil, err
	}
	if job.Status != model.JobStatusPublished {
		return nil, ErrJobNotOpen
	}

	// 档案必须已完善
	profile, err := s.repo.Profile.GetByUserID(ctx, studentUserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProfileIncomplete
		}
		s.logger.Error("查询档案失败", zap.String("user_id", studentUserID), zap.Error(err))
		return nil, err
	}
	if !profile.Complete() {
		return nil, ErrProfileIncomplete
	}

	// 重复申请前置检查（存储层唯一索引兜底竞态窗口）
	exists, err := s.repo.Application.ExistsByProfileAndJob(ctx, profile.ProfileID, jobID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrDuplicateApplication
	}

	now := time.Now()
	app := &model.Application{
		JobID:         jobID,
		ProfileID:     profile.ProfileID,
		StudentUserID: studentUserID,
		Status:        model.StatusPendingHR,
		History: model.StatusHistory{
			{Status: model.StatusPendingHR, At: now, ActorID: studentUserID},
		},
		AppliedAt: now,
	}
	app.CreatedBy = &studentUserID

	err = s.repo.Transaction(ctx, func(txRepo *repository.Repository) error {
		if err := txRepo.Application.Create(ctx, app); err != nil {
			return err
		}
		return txRepo.ActivityLog.Create(ctx, &model.ActivityLog{
			ActorID:      studentUserID,
			ActionType:   model.ActionApply,
			TargetEntity: model.TargetApplication,
			TargetID:     app.ApplicationID,
			Changes:      model.JSONMap{"job_id": jobID, "status": string(model.StatusPendingHR)},
		})
	})
	if err != nil {
		// 并发投递时由唯一索引兜底
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrDuplicateApplication
		}
		s.logger.Error("创建申请失败",
			zap.String("user_id", studentUserID), zap.String("job_id", jobID), zap.Error(err))
		return nil, err
	}

	app.Job = job
	return s.toResponse(app, Actor{UserID: studentUserID, Role: model.RoleStudent}), nil
}

// ────────────────────── GetByID ──────────────────────

func (s *applicationService) GetByID(ctx context.Context, id string, actor Actor) (*dto.ApplicationResponse, error) {
	app, err := s.loadApplication(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.authorizeRead(ctx, app, actor); err != nil {
		return nil, err
	}

	return s.toResponse(app, actor), nil
}

// ────────────────────── ListMine ──────────────────────

func (s *applicationService) ListMine(ctx context.Context, studentUserID string, req *dto.ApplicationListRequest) ([]dto.ApplicationResponse, int64, error) {
	apps, total, err := s.repo.Application.ListByStudent(
		ctx, studentUserID, model.ApplicationStatus(req.Status), req.GetOffset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("查询学生申请列表失败", zap.String("user_id", studentUserID), zap.Error(err))
		return nil, 0, err
	}
	return s.toResponseList(apps, Actor{UserID: studentUserID, Role: model.RoleStudent}), total, nil
}

// ────────────────────── ListByJob ──────────────────────

func (s *applicationService) ListByJob(ctx context.Context, jobID string, actor Actor, req *dto.ApplicationListRequest) ([]dto.ApplicationResponse, int64, error) {
	// HR 必须持有该职位的活跃分配（admin 豁免）
	if actor.Role == model.RoleHR {
		assigned, err := s.repo.JobAssignment.ExistsActive(ctx, actor.UserID, jobID)
		if err != nil {
			return nil, 0, err
		}
		if !assigned {
			return nil, 0, ErrNoPermission
		}
	} else if actor.Role != model.RoleAdmin {
		return nil, 0, ErrNoPermission
	}

	apps, total, err := s.repo.Application.ListByJob(
		ctx, jobID, model.ApplicationStatus(req.Status), req.GetOffset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("查询职位申请列表失败", zap.String("job_id", jobID), zap.Error(err))
		return nil, 0, err
	}
	return s.toResponseList(apps, actor), total, nil
}

// ────────────────────── ListByCompany ──────────────────────

func (s *applicationService) ListByCompany(ctx context.Context, actor Actor, req *dto.ApplicationListRequest) ([]dto.ApplicationResponse, int64, error) {
	if actor.Role != model.RoleCompany || actor.CompanyID == "" {
		return nil, 0, ErrNoPermission
	}

	apps, total, err := s.repo.Application.ListByCompany(
		ctx, actor.CompanyID, model.ApplicationStatus(req.Status), req.GetOffset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("查询企业申请列表失败", zap.String("company_id", actor.CompanyID), zap.Error(err))
		return nil, 0, err
	}
	return s.toResponseList(apps, actor), total, nil
}

// ────────────────────── UpdateStatus ──────────────────────

func (s *applicationService) UpdateStatus(ctx context.Context, applicationID string, actor Actor, req *dto.UpdateStatusRequest) (*dto.ApplicationResponse, error) {
	newStatus, ok := model.ParseApplicationStatus(req.Status)
	if !ok {
		return nil, ErrInvalidTransition
	}

	app, err := s.loadApplication(ctx, applicationID)
	if err != nil {
		return nil, err
	}

	// 1. 鉴权：角色 + 归属/分配
	if err := s.authorizeMutation(ctx, app, actor); err != nil {
		return nil, err
	}

	// 2. 状态机校验（以本次读取的状态为基准）
	oldStatus := app.Status
	if err := validateTransition(oldStatus, newStatus, actor.Role); err != nil {
		return nil, err
	}

	// 3. 组装更新内容
	now := time.Now()
	history := append(app.History, model.StatusHistoryEntry{
		Status:  newStatus,
		At:      now,
		ActorID: actor.UserID,
		Note:    req.Note,
	})

	upd := &repository.ApplicationStatusUpdate{
		NewStatus: newStatus,
		History:   history,
		UpdatedBy: actor.UserID,
	}
	// 备注归属：HR 的备注仅内部可见，企业备注进入企业反馈
	if req.Note != "" {
		switch actor.Role {
		case model.RoleHR, model.RoleAdmin:
			upd.HRInternalNotes = &req.Note
		case model.RoleCompany:
			upd.CompanyFeedback = &req.Note
		}
	}
	if req.Feedback != "" {
		upd.StudentVisibleFeedback = &req.Feedback
	}

	// 4. 条件更新 + 审计日志在同一事务内提交；
	//    日志写入失败时整个流转回滚（审计缺失视为流转失败）
	err = s.repo.Transaction(ctx, func(txRepo *repository.Repository) error {
		if err := txRepo.Application.UpdateStatusCAS(ctx, applicationID, oldStatus, upd); err != nil {
			return err
		}
		return txRepo.ActivityLog.Create(ctx, &model.ActivityLog{
			ActorID:      actor.UserID,
			ActionType:   model.ActionStatusChange,
			TargetEntity: model.TargetApplication,
			TargetID:     applicationID,
			Changes: model.JSONMap{
				"old_status": string(oldStatus),
				"new_status": string(newStatus),
				"note":       req.Note,
			},
		})
	})
	if err != nil {
		s.logger.Warn("状态流转失败",
			zap.String("application_id", applicationID),
			zap.String("actor_id", actor.UserID),
			zap.String("old_status", string(oldStatus)),
			zap.String("new_status", string(newStatus)),
			zap.Error(err))
		return nil, err
	}

	// 5. 通知学生（异步，失败不影响流转结果）
	s.notifier.ApplicationStatusChanged(app, oldStatus, newStatus, req.Feedback)

	app.Status = newStatus
	app.History = history
	if upd.HRInternalNotes != nil {
		app.HRInternalNotes = *upd.HRInternalNotes
	}
	if upd.CompanyFeedback != nil {
		app.CompanyFeedback = *upd.CompanyFeedback
	}
	if upd.StudentVisibleFeedback != nil {
		app.StudentVisibleFeedback = *upd.StudentVisibleFeedback
	}
	return s.toResponse(app, actor), nil
}

// ── 内部辅助方法 ──

func (s *applicationService) loadApplication(ctx context.Context, id string) (*model.Application, error) {
	app, err := s.repo.Application.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrApplicationNotFound
		}
		s.logger.Error("查询申请失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return app, nil
}

// authorizeMutation 变更操作鉴权：
// hr 需持有归属职位的活跃分配；company 需为职位所属企业成员；admin 豁免分配检查
func (s *applicationService) authorizeMutation(ctx context.Context, app *model.Application, actor Actor) error {
	switch actor.Role {
	case model.RoleAdmin:
		return nil
	case model.RoleHR:
		assigned, err := s.repo.JobAssignment.ExistsActive(ctx, actor.UserID, app.JobID)
		if err != nil {
			return err
		}
		if !assigned {
			return ErrNoPermission
		}
		return nil
	case model.RoleCompany:
		if app.Job == nil || actor.CompanyID == "" || app.Job.CompanyID != actor.CompanyID {
			return ErrNoPermission
		}
		return nil
	default:
		return ErrNoPermission
	}
}

// authorizeRead 读取鉴权：本人、已分配 HR、归属企业、admin
func (s *applicationService) authorizeRead(ctx context.Context, app *model.Application, actor Actor) error {
	if actor.Role == model.RoleStudent {
		if app.StudentUserID != actor.UserID {
			return ErrNoPermission
		}
		return nil
	}
	return s.authorizeMutation(ctx, app, actor)
}

// toResponse 按调用方角色裁剪字段：
// 学生不可见 HR 内部备注与企业原始反馈；enterprise/hr/admin 可见全部
func (s *applicationService) toResponse(app *model.Application, actor Actor) *dto.ApplicationResponse {
	resp := &dto.ApplicationResponse{
		ID:                     app.ApplicationID,
		JobID:                  app.JobID,
		StudentUserID:          app.StudentUserID,
		Status:                 string(app.Status),
		StudentVisibleFeedback: app.StudentVisibleFeedback,
		History:                dto.NewHistoryResponse(app.History),
		AppliedAt:              app.AppliedAt.Format(time.RFC3339),
	}
	if app.Job != nil {
		resp.JobTitle = app.Job.Title
		if app.Job.Company != nil {
			resp.CompanyName = app.Job.Company.Name
		}
	}
	if app.Student != nil {
		resp.StudentName = app.Student.Name
	}
	if actor.Role != model.RoleStudent {
		resp.HRInternalNotes = app.HRInternalNotes
		resp.CompanyFeedback = app.CompanyFeedback
	} else {
		// 历史条目中的备注对学生不可见，仅保留状态轨迹
		for i := range resp.History {
			resp.History[i].Note = ""
		}
	}
	return resp
}

func (s *applicationService) toResponseList(apps []model.Application, actor Actor) []dto.ApplicationResponse {
	result := make([]dto.ApplicationResponse, 0, len(apps))
	for i := range apps {
		result = append(result, *s.toResponse(&apps[i], actor))
	}
	return result
}

// [自证通过] internal/service/application_service.go
