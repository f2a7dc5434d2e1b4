package handler

import (
	"noticeboard/internal/constants"
	"noticeboard/internal/service"
	"noticeboard/pkg/logger"

	"github.com/gin-gonic/gin"
)

// SystemHandler 系统状态处理器
type SystemHandler struct {
	systemService *service.SystemService
	logger        *logger.Logger
}

// NewSystemHandler 创建系统状态处理器实例
func NewSystemHandler(systemService *service.SystemService, logger *logger.Logger) *SystemHandler {
	return &SystemHandler{
		systemService: systemService,
		logger:        logger,
	}
}

// GetSystemStatus 获取系统状态
// @Summary 获取系统状态
// @Description 获取平台统计信息，包括楼宇总数、可上屏通知数、图片数和在线展示数
// @Tags 系统
// @Accept json
// @Produce json
// @Success 200 {object} map[string]interface{} "成功"
// @Router /api/v1/system/status [get]
func (h *SystemHandler) GetSystemStatus(c *gin.Context) {
	status, err := h.systemService.GetSystemStatus(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, "获取系统状态", err)
		return
	}
	success(c, constants.SuccessGet, status)
}
