package api

import (
	"context"
	"net/http"
	"time"

	"noticeboard/config"
	"noticeboard/internal/api/admin"
	"noticeboard/internal/api/apis"
	"noticeboard/internal/api/handler"
	"noticeboard/internal/display"
	"noticeboard/internal/middleware"
	"noticeboard/internal/repository"
	"noticeboard/internal/scheduler"
	"noticeboard/internal/service"
	"noticeboard/internal/utils"
	"noticeboard/pkg/async"
	"noticeboard/pkg/email"
	"noticeboard/pkg/logger"
	"noticeboard/pkg/ratelimit"
	"noticeboard/pkg/storage"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
)

const (
	sessionSweepInterval = time.Minute
	limiterIdleTTL       = 10 * time.Minute
	externalHTTPTimeout  = 20 * time.Second
)

// SetupRouter 设置API路由，返回的清理函数停止后台任务与展示会话
func SetupRouter(cfg *config.Config, logger *logger.Logger, db *sqlx.DB, redisClient *redis.Client) (*gin.Engine, func(), error) {
	// 创建Gin引擎
	if cfg.LogLevel != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	// 使用中间件
	router.Use(middleware.Logger(logger))
	router.Use(middleware.Recovery(logger))
	router.Use(middleware.CORS())

	newsSources, err := utils.ParseNewsSources(cfg.News.Sources)
	if err != nil {
		return nil, nil, err
	}

	fileStorage, err := storage.NewFileStorage(cfg.Upload.Dir)
	if err != nil {
		return nil, nil, err
	}

	// 创建异步工作器
	worker := async.NewWorker(200, logger)
	worker.Start(8)

	// 初始化存储库
	tenantRepo := repository.NewTenantRepository(db)
	noticeRepo := repository.NewNoticeRepository(db)
	imageRepo := repository.NewImageRepository(db)
	styleRepo := repository.NewStyleRepository(db)
	systemRepo := repository.NewSystemRepository(db)

	// 初始化邮件服务
	emailService := email.NewService(email.Config{
		Host:     cfg.Email.Host,
		Port:     cfg.Email.Port,
		Username: cfg.Email.Username,
		Password: cfg.Email.Password,
		From:     cfg.Email.From,
		FromName: cfg.Email.FromName,
	}, logger)

	httpClient := &http.Client{Timeout: externalHTTPTimeout}

	// 初始化服务
	displayService := service.NewDisplayService(tenantRepo, noticeRepo, imageRepo, styleRepo, redisClient, logger)
	tenantService := service.NewTenantService(tenantRepo, displayService, emailService, worker, logger)
	noticeService := service.NewNoticeService(noticeRepo, displayService, logger)
	imageService := service.NewImageService(imageRepo, fileStorage, displayService, cfg.Upload.MaxBytes, logger)
	styleService := service.NewStyleService(styleRepo, displayService, logger)
	newsService := service.NewNewsService(newsSources, cfg.News.ItemsPerSource, httpClient, redisClient, logger)
	widgetService := service.NewWidgetService(cfg.Widgets.WeatherAPIURL, cfg.Widgets.CalendarAPIURL, cfg.Widgets.CalendarTZID, httpClient, redisClient, logger)

	// 初始化展示会话管理器
	var overrides display.OverrideStore
	var memoryOverrides *display.MemoryOverrideStore
	if cfg.Display.OverrideStore == "memory" {
		memoryOverrides = display.NewMemoryOverrideStore()
		overrides = memoryOverrides
	} else {
		overrides = display.NewRedisOverrideStore(redisClient)
	}
	manager := display.NewManager(display.Deps{
		Bundles:   displayService,
		News:      newsService,
		Widgets:   widgetService,
		Worker:    worker,
		Overrides: overrides,
		Logger:    logger,
	}, display.Config{SessionTTL: cfg.Display.SessionTTL})
	// 控制台的每次修改都刷新在线展示页
	displayService.OnChange(manager.Reload)

	systemService := service.NewSystemService(systemRepo, redisClient, logger, manager.Len)

	limiter := ratelimit.New(cfg.Widgets.RateLimitRPS, cfg.Widgets.RateLimitBurst, limiterIdleTTL)

	// 初始化调度器
	sessionScheduler := scheduler.NewSessionScheduler(manager, limiter, sessionSweepInterval, logger)
	sessionScheduler.Start()
	newsScheduler := scheduler.NewNewsScheduler(newsService, displayService, manager, display.DefaultNewsRefresh, logger)
	newsScheduler.Start()

	// 初始化处理器
	handlers := apis.Handlers{
		Tenant:  handler.NewTenantHandler(tenantService, logger),
		Notice:  handler.NewNoticeHandler(noticeService, logger),
		Image:   handler.NewImageHandler(imageService, logger),
		Style:   handler.NewStyleHandler(styleService, logger),
		Display: handler.NewDisplayHandler(manager, logger),
		Widget:  handler.NewWidgetHandler(widgetService, newsService, logger),
		System:  handler.NewSystemHandler(systemService, logger),
	}
	tenantAdminHandler := admin.NewTenantAdminHandler(tenantService, logger)

	// 健康检查
	router.GET("/health", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := db.PingContext(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "db_unavailable"})
			return
		}
		if err := redisClient.Ping(ctx).Err(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "redis_unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// 图片文件
	router.StaticFS("/uploads", gin.Dir(fileStorage.Root(), false))

	// API版本v1
	v1 := router.Group("/api/v1")

	// 注册不需要认证的路由（注册、登录、展示页、小组件）
	apis.RegisterPublicRoutes(v1, handlers, middleware.RateLimit(limiter))

	// 注册需要认证的API路由
	authRouter := v1.Group("")
	authRouter.Use(middleware.TenantAuth(tenantService))
	apis.RegisterAuthRoutes(authRouter, handlers)

	// 注册管理员API路由
	adminRouter := v1.Group("/admin")
	adminRouter.Use(middleware.AdminAuth(tenantService))
	admin.RegisterAdminRoutes(adminRouter, tenantAdminHandler)

	cleanup := func() {
		newsScheduler.Stop()
		sessionScheduler.Stop()
		manager.CloseAll()
		worker.Stop()
		if memoryOverrides != nil {
			memoryOverrides.Close()
		}
	}
	return router, cleanup, nil
}
