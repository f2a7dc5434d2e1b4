package handler

import (
	"noticeboard/internal/constants"
	"noticeboard/internal/middleware"
	"noticeboard/internal/service"
	"noticeboard/internal/types"
	"noticeboard/pkg/logger"

	"github.com/gin-gonic/gin"
)

// TenantHandler 楼宇账号处理器
type TenantHandler struct {
	tenantService service.TenantService
	logger        *logger.Logger
}

// NewTenantHandler 创建楼宇账号处理器实例
func NewTenantHandler(tenantService service.TenantService, logger *logger.Logger) *TenantHandler {
	return &TenantHandler{
		tenantService: tenantService,
		logger:        logger,
	}
}

// Register 注册楼宇
// @Summary 注册楼宇
// @Tags 楼宇
// @Accept json
// @Produce json
// @Param request body types.RegisterRequest true "注册信息"
// @Success 200 {object} map[string]interface{} "成功"
// @Router /api/v1/tenants/register [post]
func (h *TenantHandler) Register(c *gin.Context) {
	var req types.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	tenant, err := h.tenantService.Register(c.Request.Context(), &req)
	if err != nil {
		respondError(c, h.logger, "注册楼宇", err)
		return
	}

	success(c, constants.SuccessRegister, gin.H{
		"tenant": tenant,
		"token":  tenant.Token,
	})
}

// Login 楼宇登录
// @Summary 楼宇登录
// @Tags 楼宇
// @Accept json
// @Produce json
// @Param request body types.LoginRequest true "登录信息"
// @Success 200 {object} map[string]interface{} "成功"
// @Router /api/v1/tenants/login [post]
func (h *TenantHandler) Login(c *gin.Context) {
	var req types.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	tenant, err := h.tenantService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, h.logger, "登录", err)
		return
	}

	success(c, constants.SuccessLogin, gin.H{
		"tenant": tenant,
		"token":  tenant.Token,
	})
}

// ResetToken 重置登录令牌
func (h *TenantHandler) ResetToken(c *gin.Context) {
	var req types.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	tenant, err := h.tenantService.ResetToken(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, h.logger, "重置令牌", err)
		return
	}

	success(c, constants.SuccessReset, gin.H{"token": tenant.Token})
}

// GetProfile 获取当前楼宇资料
func (h *TenantHandler) GetProfile(c *gin.Context) {
	success(c, constants.SuccessGet, middleware.CurrentTenant(c))
}

// UpdateProfile 更新当前楼宇资料
func (h *TenantHandler) UpdateProfile(c *gin.Context) {
	var req types.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	tenant := middleware.CurrentTenant(c)
	if err := h.tenantService.UpdateProfile(c.Request.Context(), tenant, &req); err != nil {
		respondError(c, h.logger, "更新楼宇资料", err)
		return
	}

	success(c, constants.SuccessUpdate, tenant)
}
