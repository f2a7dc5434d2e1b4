package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"noticeboard/internal/constants"
	"noticeboard/internal/model"
	"noticeboard/internal/service"

	"github.com/gin-gonic/gin"
)

const tenantKey = "tenant"

// TenantLookup 通过令牌查找楼宇
type TenantLookup interface {
	GetByToken(ctx context.Context, token string) (*model.Tenant, error)
}

func bearerToken(c *gin.Context) string {
	token := strings.TrimSpace(c.GetHeader("Authorization"))
	if len(token) > 7 && strings.EqualFold(token[:7], "bearer ") {
		token = strings.TrimSpace(token[7:])
	}
	return token
}

// authenticate 校验令牌，失败时已写入响应
func authenticate(c *gin.Context, tenants TenantLookup) (*model.Tenant, bool) {
	token := bearerToken(c)
	if token == "" {
		c.JSON(http.StatusOK, gin.H{"code": constants.CodeUnauthorized, "msg": constants.ErrUnauthorized})
		c.Abort()
		return nil, false
	}

	tenant, err := tenants.GetByToken(c.Request.Context(), token)
	if errors.Is(err, service.ErrTenantNotFound) {
		c.JSON(http.StatusOK, gin.H{"code": constants.CodeUnauthorized, "msg": constants.ErrInvalidToken})
		c.Abort()
		return nil, false
	}
	if err != nil {
		c.JSON(http.StatusOK, gin.H{"code": constants.CodeInternal, "msg": constants.ErrInternalServer})
		c.Abort()
		return nil, false
	}

	if !tenant.IsActive {
		c.JSON(http.StatusOK, gin.H{"code": constants.CodeForbidden, "msg": constants.ErrAccountDisabled})
		c.Abort()
		return nil, false
	}
	return tenant, true
}

// TenantAuth 楼宇认证中间件
func TenantAuth(tenants TenantLookup) gin.HandlerFunc {
	return func(c *gin.Context) {
		tenant, ok := authenticate(c, tenants)
		if !ok {
			return
		}

		// 将楼宇存储到上下文中，供后续处理使用
		c.Set(tenantKey, tenant)
		c.Next()
	}
}

// AdminAuth 管理员认证中间件，角色由服务端的 is_admin 字段决定
func AdminAuth(tenants TenantLookup) gin.HandlerFunc {
	return func(c *gin.Context) {
		tenant, ok := authenticate(c, tenants)
		if !ok {
			return
		}

		if !tenant.IsAdmin {
			c.JSON(http.StatusOK, gin.H{"code": constants.CodeForbidden, "msg": constants.ErrInsufficientPermission})
			c.Abort()
			return
		}

		c.Set(tenantKey, tenant)
		c.Next()
	}
}

// CurrentTenant 获取已认证的楼宇
func CurrentTenant(c *gin.Context) *model.Tenant {
	v, ok := c.Get(tenantKey)
	if !ok {
		return nil
	}
	tenant, _ := v.(*model.Tenant)
	return tenant
}
