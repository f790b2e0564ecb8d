package dto

import "talenthub/backend/internal/model"

// ── 申请模块 DTO ──

// UpdateStatusRequest 状态流转请求
// HR 端目标限定为 forwarded_to_company | hr_rejected；
// 企业端目标限定为 company_accepted | company_rejected | offer_extended；
// 完整的状态机校验在 Service 层执行，此处仅做枚举收敛
type UpdateStatusRequest struct {
	Status   string `json:"status"   binding:"required,oneof=pending_hr forwarded_to_company hr_rejected company_accepted company_rejected offer_extended"`
	Note     string `json:"note"     binding:"omitempty,max=1000"`
	Feedback string `json:"feedback" binding:"omitempty,max=2000"` // 对学生可见的反馈
}

// ApplicationListRequest 申请列表查询参数
type ApplicationListRequest struct {
	PaginationRequest
	Status string `form:"status" binding:"omitempty,oneof=pending_hr forwarded_to_company hr_rejected company_accepted company_rejected offer_extended"`
}

// HistoryEntryResponse 状态流转历史单条响应
type HistoryEntryResponse struct {
	Status  string `json:"status"`
	At      string `json:"at"`
	ActorID string `json:"actor_id"`
	Note    string `json:"note,omitempty"`
}

// ApplicationResponse 申请详情响应
// HR 内部备注与企业反馈按调用方角色裁剪（见 Service 层）
type ApplicationResponse struct {
	ID                     string                 `json:"id"`
	JobID                  string                 `json:"job_id"`
	JobTitle               string                 `json:"job_title,omitempty"`
	CompanyName            string                 `json:"company_name,omitempty"`
	StudentUserID          string                 `json:"student_user_id"`
	StudentName            string                 `json:"student_name,omitempty"`
	Status                 string                 `json:"status"`
	HRInternalNotes        string                 `json:"hr_internal_notes,omitempty"`
	CompanyFeedback        string                 `json:"company_feedback,omitempty"`
	StudentVisibleFeedback string                 `json:"student_visible_feedback,omitempty"`
	History                []HistoryEntryResponse `json:"history,omitempty"`
	AppliedAt              string                 `json:"applied_at"`
}

// NewHistoryResponse 将模型层历史转换为响应
func NewHistoryResponse(h model.StatusHistory) []HistoryEntryResponse {
	result := make([]HistoryEntryResponse, 0, len(h))
	for _, e := range h {
		result = append(result, HistoryEntryResponse{
			Status:  string(e.Status),
			At:      e.At.Format("2006-01-02T15:04:05Z07:00"),
			ActorID: e.ActorID,
			Note:    e.Note,
		})
	}
	return result
}

// [自证通过] internal/dto/application.go
