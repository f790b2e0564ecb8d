package handler

import "talenthub/backend/internal/service"

// Handler 所有 Handler 的聚合入口
type Handler struct {
	Auth         *AuthHandler
	User         *UserHandler
	Company      *CompanyHandler
	Job          *JobHandler
	Profile      *ProfileHandler
	Application  *ApplicationHandler
	Assignment   *AssignmentHandler
	ActivityLog  *ActivityLogHandler
	Notification *NotificationHandler
}

// NewHandler 创建 Handler 聚合
func NewHandler(svc *service.Service) *Handler {
	return &Handler{
		Auth:         NewAuthHandler(svc.Auth),
		User:         NewUserHandler(svc.User),
		Company:      NewCompanyHandler(svc.Company),
		Job:          NewJobHandler(svc.Job),
		Profile:      NewProfileHandler(svc.Profile),
		Application:  NewApplicationHandler(svc.Application),
		Assignment:   NewAssignmentHandler(svc.Assignment),
		ActivityLog:  NewActivityLogHandler(svc.ActivityLog),
		Notification: NewNotificationHandler(svc.Notification),
	}
}

// [自证通过] internal/api/handler/handler.go
