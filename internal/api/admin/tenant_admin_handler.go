package admin

import (
	"errors"
	"net/http"
	"strconv"

	"noticeboard/internal/constants"
	"noticeboard/internal/service"
	"noticeboard/internal/types"
	"noticeboard/pkg/logger"

	"github.com/gin-gonic/gin"
)

// TenantAdminHandler 楼宇管理处理器
type TenantAdminHandler struct {
	tenantService service.TenantService
	logger        *logger.Logger
}

// NewTenantAdminHandler 创建楼宇管理处理器实例
func NewTenantAdminHandler(tenantService service.TenantService, logger *logger.Logger) *TenantAdminHandler {
	return &TenantAdminHandler{
		tenantService: tenantService,
		logger:        logger,
	}
}

// ListTenants 分页获取楼宇列表
// @Summary 获取楼宇列表
// @Tags 管理员
// @Produce json
// @Param page query int false "页码，默认1"
// @Param limit query int false "每页条数，默认20"
// @Success 200 {object} map[string]interface{} "成功"
// @Router /api/v1/admin/tenants [get]
func (h *TenantAdminHandler) ListTenants(c *gin.Context) {
	var page types.PageQuery
	if err := c.ShouldBindQuery(&page); err != nil {
		c.JSON(http.StatusOK, gin.H{"code": constants.CodeBadRequest, "msg": constants.ErrInvalidParams})
		return
	}

	result, err := h.tenantService.List(c.Request.Context(), page)
	if err != nil {
		h.logger.Error("获取楼宇列表失败", "error", err)
		c.JSON(http.StatusOK, gin.H{"code": constants.CodeInternal, "msg": constants.ErrInternalServer})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code": constants.CodeSuccess,
		"msg":  constants.SuccessGet,
		"data": result,
	})
}

// SetTenantActive 启用或停用楼宇，停用后展示页随即下线
// @Summary 启用/停用楼宇
// @Tags 管理员
// @Accept json
// @Produce json
// @Param id path int true "楼宇ID"
// @Param request body types.SetActiveRequest true "状态"
// @Success 200 {object} map[string]interface{} "成功"
// @Router /api/v1/admin/tenants/{id}/active [post]
func (h *TenantAdminHandler) SetTenantActive(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusOK, gin.H{"code": constants.CodeBadRequest, "msg": constants.ErrInvalidParams})
		return
	}

	var req types.SetActiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusOK, gin.H{"code": constants.CodeBadRequest, "msg": constants.ErrInvalidParams})
		return
	}

	if err := h.tenantService.SetActive(c.Request.Context(), id, *req.IsActive); err != nil {
		if errors.Is(err, service.ErrTenantNotFound) {
			c.JSON(http.StatusOK, gin.H{"code": constants.CodeNotFound, "msg": constants.ErrTenantNotFound})
			return
		}
		h.logger.Error("更新楼宇状态失败", "tenant_id", id, "error", err)
		c.JSON(http.StatusOK, gin.H{"code": constants.CodeInternal, "msg": constants.ErrInternalServer})
		return
	}

	h.logger.Info("管理员更新楼宇状态", "tenant_id", id, "is_active", *req.IsActive)
	c.JSON(http.StatusOK, gin.H{
		"code": constants.CodeSuccess,
		"msg":  constants.SuccessUpdate,
	})
}
