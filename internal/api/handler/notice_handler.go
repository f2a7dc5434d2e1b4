package handler

import (
	"noticeboard/internal/constants"
	"noticeboard/internal/middleware"
	"noticeboard/internal/service"
	"noticeboard/internal/types"
	"noticeboard/pkg/logger"

	"github.com/gin-gonic/gin"
)

// NoticeHandler 通知处理器
type NoticeHandler struct {
	noticeService *service.NoticeService
	logger        *logger.Logger
}

// NewNoticeHandler 创建通知处理器实例
func NewNoticeHandler(noticeService *service.NoticeService, logger *logger.Logger) *NoticeHandler {
	return &NoticeHandler{
		noticeService: noticeService,
		logger:        logger,
	}
}

// ListNotices 分页获取本楼宇的通知
// @Summary 获取通知列表
// @Tags 通知
// @Produce json
// @Param page query int false "页码，默认1"
// @Param limit query int false "每页条数，默认20"
// @Success 200 {object} map[string]interface{} "成功"
// @Router /api/v1/notices [get]
func (h *NoticeHandler) ListNotices(c *gin.Context) {
	var page types.PageQuery
	if err := c.ShouldBindQuery(&page); err != nil {
		badRequest(c, err)
		return
	}

	result, err := h.noticeService.List(c.Request.Context(), middleware.CurrentTenant(c), page)
	if err != nil {
		respondError(c, h.logger, "获取通知列表", err)
		return
	}
	success(c, constants.SuccessGet, result)
}

// GetNotice 获取单条通知
func (h *NoticeHandler) GetNotice(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}

	notice, err := h.noticeService.Get(c.Request.Context(), middleware.CurrentTenant(c), id)
	if err != nil {
		respondError(c, h.logger, "获取通知", err)
		return
	}
	success(c, constants.SuccessGet, notice)
}

// CreateNotice 创建通知
func (h *NoticeHandler) CreateNotice(c *gin.Context) {
	var req types.NoticeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	notice, err := h.noticeService.Create(c.Request.Context(), middleware.CurrentTenant(c), &req)
	if err != nil {
		respondError(c, h.logger, "创建通知", err)
		return
	}
	success(c, constants.SuccessCreate, notice)
}

// UpdateNotice 更新通知
func (h *NoticeHandler) UpdateNotice(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	var req types.NoticeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	notice, err := h.noticeService.Update(c.Request.Context(), middleware.CurrentTenant(c), id, &req)
	if err != nil {
		respondError(c, h.logger, "更新通知", err)
		return
	}
	success(c, constants.SuccessUpdate, notice)
}

// DeleteNotice 删除通知
func (h *NoticeHandler) DeleteNotice(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}

	if err := h.noticeService.Delete(c.Request.Context(), middleware.CurrentTenant(c), id); err != nil {
		respondError(c, h.logger, "删除通知", err)
		return
	}
	success(c, constants.SuccessDelete, nil)
}
