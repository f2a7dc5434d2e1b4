package admin

import (
	"github.com/gin-gonic/gin"
)

// RegisterAdminRoutes 注册管理员API路由，调用方负责挂载 AdminAuth
func RegisterAdminRoutes(router *gin.RouterGroup, tenantAdminHandler *TenantAdminHandler) {
	// 楼宇管理路由
	tenants := router.Group("/tenants")
	{
		tenants.GET("", tenantAdminHandler.ListTenants)
		tenants.POST("/:id/active", tenantAdminHandler.SetTenantActive)
	}
}
