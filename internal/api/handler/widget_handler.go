package handler

import (
	"noticeboard/internal/constants"
	"noticeboard/internal/service"
	"noticeboard/internal/types"
	"noticeboard/pkg/logger"

	"github.com/gin-gonic/gin"
)

// WidgetHandler 天气、日历与新闻处理器
type WidgetHandler struct {
	widgetService *service.WidgetService
	newsService   *service.NewsService
	logger        *logger.Logger
}

// NewWidgetHandler 创建小组件处理器实例
func NewWidgetHandler(widgetService *service.WidgetService, newsService *service.NewsService, logger *logger.Logger) *WidgetHandler {
	return &WidgetHandler{
		widgetService: widgetService,
		newsService:   newsService,
		logger:        logger,
	}
}

// Weather 获取当前天气
// @Summary 获取天气
// @Tags 小组件
// @Produce json
// @Param lat query number true "纬度"
// @Param lon query number true "经度"
// @Success 200 {object} map[string]interface{} "成功"
// @Router /api/v1/widgets/weather [get]
func (h *WidgetHandler) Weather(c *gin.Context) {
	var q types.LocationQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondError(c, h.logger, "获取天气", service.ErrLocationMissing)
		return
	}

	report, err := h.widgetService.Weather(c.Request.Context(), *q.Latitude, *q.Longitude)
	if err != nil {
		respondError(c, h.logger, "获取天气", err)
		return
	}
	success(c, constants.SuccessGet, report)
}

// Calendar 获取日历事件
func (h *WidgetHandler) Calendar(c *gin.Context) {
	var q types.LocationQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondError(c, h.logger, "获取日历", service.ErrLocationMissing)
		return
	}

	events, err := h.widgetService.Calendar(c.Request.Context(), *q.Latitude, *q.Longitude)
	if err != nil {
		respondError(c, h.logger, "获取日历", err)
		return
	}
	success(c, constants.SuccessGet, events)
}

// News 获取聚合新闻
func (h *WidgetHandler) News(c *gin.Context) {
	items, err := h.newsService.Items(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, "获取新闻", err)
		return
	}
	success(c, constants.SuccessGet, gin.H{
		"sources": h.newsService.Sources(),
		"items":   items,
	})
}
