package dto

// ── 档案模块 DTO ──

// UpdateProfileRequest 更新简历档案请求（学生）
type UpdateProfileRequest struct {
	FullName   *string `json:"full_name"  binding:"omitempty,min=2,max=100"`
	Phone      *string `json:"phone"      binding:"omitempty,max=30"`
	Education  *string `json:"education"  binding:"omitempty,max=5000"`
	Experience *string `json:"experience" binding:"omitempty,max=5000"`
	Skills     *string `json:"skills"     binding:"omitempty,max=2000"`
	ResumeURL  *string `json:"resume_url" binding:"omitempty,url,max=500"`
}

// ProfileResponse 档案响应
type ProfileResponse struct {
	ID         string `json:"id"`
	UserID     string `json:"user_id"`
	FullName   string `json:"full_name"`
	Phone      string `json:"phone,omitempty"`
	Education  string `json:"education,omitempty"`
	Experience string `json:"experience,omitempty"`
	Skills     string `json:"skills,omitempty"`
	ResumeURL  string `json:"resume_url,omitempty"`
	Complete   bool   `json:"complete"`
}

// [自证通过] internal/dto/profile.go
