package handler

import (
	"time"

	"noticeboard/internal/constants"
	"noticeboard/internal/display"
	"noticeboard/pkg/logger"

	"github.com/gin-gonic/gin"
)

// DisplayHandler 公开展示页处理器
type DisplayHandler struct {
	manager *display.Manager
	logger  *logger.Logger
}

// NewDisplayHandler 创建展示页处理器实例
func NewDisplayHandler(manager *display.Manager, logger *logger.Logger) *DisplayHandler {
	return &DisplayHandler{
		manager: manager,
		logger:  logger,
	}
}

// session 打开或复用路径中楼宇的展示会话
func (h *DisplayHandler) session(c *gin.Context) (*display.Session, bool) {
	s, err := h.manager.Open(c.Request.Context(), c.Param("slug"))
	if err != nil {
		respondError(c, h.logger, "打开展示会话", err)
		return nil, false
	}
	return s, true
}

// Show 获取展示页当前状态
// @Summary 获取展示页状态
// @Description 返回当前图片、通知、新闻、天气与日历，页面按该状态渲染
// @Tags 展示
// @Produce json
// @Param slug path string true "楼宇标识"
// @Success 200 {object} map[string]interface{} "成功"
// @Router /api/v1/display/{slug} [get]
func (h *DisplayHandler) Show(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	success(c, constants.SuccessGet, s.View(c.Request.Context()))
}

// ToggleNotice 暂停或恢复通知轮播
func (h *DisplayHandler) ToggleNotice(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	success(c, constants.SuccessUpdate, gin.H{"notice_paused": s.ToggleNoticePause()})
}

// Tap 记录一次隐藏手势点击
func (h *DisplayHandler) Tap(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	count, triggered, err := s.Tap(ctx, time.Now())
	if err != nil {
		respondError(c, h.logger, "设置跳转标志", err)
		return
	}
	success(c, constants.SuccessUpdate, gin.H{
		"count":              count,
		"triggered":          triggered,
		"skip_auto_redirect": s.SkipAutoRedirect(ctx),
	})
}

// Reload 重新加载楼宇数据
func (h *DisplayHandler) Reload(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	s.Reload()
	success(c, constants.SuccessUpdate, nil)
}
