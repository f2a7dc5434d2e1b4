package apis

import (
	"noticeboard/internal/api/handler"

	"github.com/gin-gonic/gin"
)

// Handlers 路由需要的全部处理器
type Handlers struct {
	Tenant  *handler.TenantHandler
	Notice  *handler.NoticeHandler
	Image   *handler.ImageHandler
	Style   *handler.StyleHandler
	Display *handler.DisplayHandler
	Widget  *handler.WidgetHandler
	System  *handler.SystemHandler
}

// RegisterPublicRoutes 注册不需要认证的路由
func RegisterPublicRoutes(v1 *gin.RouterGroup, h Handlers, weatherLimit gin.HandlerFunc) {
	tenants := v1.Group("/tenants")
	{
		tenants.POST("/register", h.Tenant.Register)
		tenants.POST("/login", h.Tenant.Login)
		tenants.POST("/reset-token", h.Tenant.ResetToken)
	}

	v1.GET("/system/status", h.System.GetSystemStatus)

	display := v1.Group("/display/:slug")
	{
		display.GET("", h.Display.Show)
		display.POST("/notice/toggle", h.Display.ToggleNotice)
		display.POST("/tap", h.Display.Tap)
		display.POST("/reload", h.Display.Reload)
	}

	widgets := v1.Group("/widgets")
	{
		widgets.GET("/weather", weatherLimit, h.Widget.Weather)
		widgets.GET("/calendar", h.Widget.Calendar)
		widgets.GET("/news", h.Widget.News)
	}
}

// RegisterAuthRoutes 注册需要楼宇认证的路由
func RegisterAuthRoutes(auth *gin.RouterGroup, h Handlers) {
	auth.GET("/profile", h.Tenant.GetProfile)
	auth.POST("/profile", h.Tenant.UpdateProfile)

	notices := auth.Group("/notices")
	{
		notices.GET("", h.Notice.ListNotices)
		notices.POST("", h.Notice.CreateNotice)
		notices.GET("/:id", h.Notice.GetNotice)
		notices.POST("/:id", h.Notice.UpdateNotice)
		notices.DELETE("/:id", h.Notice.DeleteNotice)
	}

	images := auth.Group("/images")
	{
		images.GET("", h.Image.ListImages)
		images.POST("", h.Image.UploadImage)
		images.POST("/:id/toggle", h.Image.ToggleImage)
		images.DELETE("/:id", h.Image.DeleteImage)
	}

	auth.GET("/style", h.Style.GetStyle)
	auth.POST("/style", h.Style.UpdateStyle)
}
