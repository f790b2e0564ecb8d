package dto

// ── 认证模块 DTO ──

// LoginRequest 登录请求
type LoginRequest struct {
	Email    string `json:"email"    binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// RegisterRequest 注册请求
// 学生自助注册；HR / 企业账号必须携带管理员签发的邀请码
type RegisterRequest struct {
	Name       string `json:"name"        binding:"required,min=2,max=50"`
	Email      string `json:"email"       binding:"required,email"`
	Password   string `json:"password"    binding:"required,min=8,max=64"`
	InviteCode string `json:"invite_code" binding:"omitempty,max=64"`
}

// RefreshTokenRequest 刷新 Token 请求
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// ChangePasswordRequest 修改密码请求
type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,min=8,max=64"`
}

// GenerateInviteRequest 签发邀请码请求（管理员）
type GenerateInviteRequest struct {
	Role      string  `json:"role"       binding:"required,oneof=hr company"`
	CompanyID *string `json:"company_id" binding:"omitempty,uuid"` // company 角色必填
}

// InviteResponse 邀请码响应
type InviteResponse struct {
	InviteCode string `json:"invite_code"`
	ExpiresAt  string `json:"expires_at"`
}

// [自证通过] internal/dto/auth.go
