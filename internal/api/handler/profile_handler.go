package handler

import (
	"github.com/gin-gonic/gin"

	"talenthub/backend/internal/dto"
	"talenthub/backend/internal/service"
	"talenthub/backend/pkg/response"
)

// ProfileHandler 简历档案模块 HTTP 处理器
type ProfileHandler struct {
	profileSvc service.ProfileService
}

// NewProfileHandler 创建 ProfileHandler
func NewProfileHandler(profileSvc service.ProfileService) *ProfileHandler {
	return &ProfileHandler{profileSvc: profileSvc}
}

// GetMine 获取我的档案
// GET /api/v1/profiles/me
func (h *ProfileHandler) GetMine(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	profile, err := h.profileSvc.GetMine(c.Request.Context(), userID)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, profile)
}

// UpdateMine 更新我的档案
// PUT /api/v1/profiles/me
func (h *ProfileHandler) UpdateMine(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	profile, err := h.profileSvc.UpdateMine(c.Request.Context(), userID, &req)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, profile)
}

// [自证通过] internal/api/handler/profile_handler.go
