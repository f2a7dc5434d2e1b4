package service

import (
	"context"
	"time"

	"noticeboard/internal/model"
	"noticeboard/internal/repository"
	"noticeboard/pkg/logger"

	"github.com/redis/go-redis/v9"
)

// SystemService 平台状态服务
type SystemService struct {
	systemRepo  *repository.SystemRepository
	redisClient *redis.Client
	logger      *logger.Logger
	liveCount   func() int
}

// NewSystemService 创建平台状态服务实例，liveCount 返回当前在线展示会话数
func NewSystemService(systemRepo *repository.SystemRepository, redisClient *redis.Client, logger *logger.Logger, liveCount func() int) *SystemService {
	return &SystemService{
		systemRepo:  systemRepo,
		redisClient: redisClient,
		logger:      logger,
		liveCount:   liveCount,
	}
}

// GetSystemStatus 获取平台状态
func (s *SystemService) GetSystemStatus(ctx context.Context) (*model.SystemStatus, error) {
	// 尝试从缓存获取
	cacheKey := "system:status"
	var status model.SystemStatus
	if !getCached(ctx, s.redisClient, cacheKey, &status) {
		// 缓存未命中，从数据库获取
		fresh, err := s.systemRepo.GetSystemStatus(ctx, time.Now())
		if err != nil {
			s.logger.Error("获取系统状态失败", "error", err)
			return nil, err
		}
		status = *fresh
		setCached(ctx, s.redisClient, s.logger, cacheKey, status, 5*time.Minute)
	}

	// 在线会话数是本进程的实时状态，不缓存
	if s.liveCount != nil {
		status.LiveDisplays = s.liveCount()
	}
	return &status, nil
}
