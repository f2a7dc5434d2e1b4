package handler

import (
	"noticeboard/internal/constants"
	"noticeboard/internal/middleware"
	"noticeboard/internal/service"
	"noticeboard/internal/types"
	"noticeboard/pkg/logger"

	"github.com/gin-gonic/gin"
)

// StyleHandler 展示样式处理器
type StyleHandler struct {
	styleService *service.StyleService
	logger       *logger.Logger
}

// NewStyleHandler 创建展示样式处理器实例
func NewStyleHandler(styleService *service.StyleService, logger *logger.Logger) *StyleHandler {
	return &StyleHandler{
		styleService: styleService,
		logger:       logger,
	}
}

// GetStyle 获取展示样式，未设置时返回默认样式
func (h *StyleHandler) GetStyle(c *gin.Context) {
	style, err := h.styleService.Get(c.Request.Context(), middleware.CurrentTenant(c))
	if err != nil {
		respondError(c, h.logger, "获取展示样式", err)
		return
	}
	success(c, constants.SuccessGet, style)
}

// UpdateStyle 更新展示样式
func (h *StyleHandler) UpdateStyle(c *gin.Context) {
	var req types.StyleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	style, err := h.styleService.Update(c.Request.Context(), middleware.CurrentTenant(c), &req)
	if err != nil {
		respondError(c, h.logger, "更新展示样式", err)
		return
	}
	success(c, constants.SuccessUpdate, style)
}
