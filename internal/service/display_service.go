package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"noticeboard/internal/model"
	"noticeboard/internal/repository"
	"noticeboard/pkg/logger"

	"github.com/redis/go-redis/v9"
)

const bundleCacheTTL = 5 * time.Minute

func bundleCacheKey(slug string) string {
	return "display:bundle:" + slug
}

// DisplayService 组装展示页所需的楼宇数据，并在内容变化时通知订阅者
type DisplayService struct {
	tenantRepo  repository.TenantRepository
	noticeRepo  repository.NoticeRepository
	imageRepo   repository.ImageRepository
	styleRepo   repository.StyleRepository
	redisClient *redis.Client
	logger      *logger.Logger
	now         func() time.Time

	mu       sync.RWMutex
	onChange []func(slug string)
}

// NewDisplayService 创建展示数据服务实例
func NewDisplayService(
	tenantRepo repository.TenantRepository,
	noticeRepo repository.NoticeRepository,
	imageRepo repository.ImageRepository,
	styleRepo repository.StyleRepository,
	redisClient *redis.Client,
	logger *logger.Logger,
) *DisplayService {
	return &DisplayService{
		tenantRepo:  tenantRepo,
		noticeRepo:  noticeRepo,
		imageRepo:   imageRepo,
		styleRepo:   styleRepo,
		redisClient: redisClient,
		logger:      logger,
		now:         time.Now,
	}
}

// OnChange 注册楼宇内容变化的回调，用于重新加载在线的展示会话
func (s *DisplayService) OnChange(fn func(slug string)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onChange = append(s.onChange, fn)
}

// Bundle 获取楼宇展示数据（楼宇信息、可上屏通知、图片、样式）
func (s *DisplayService) Bundle(ctx context.Context, slug string) (*model.DisplayBundle, error) {
	cacheKey := bundleCacheKey(slug)
	var cached model.DisplayBundle
	if getCached(ctx, s.redisClient, cacheKey, &cached) {
		return &cached, nil
	}

	tenant, err := s.tenantRepo.GetBySlug(ctx, slug)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrTenantNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get tenant: %w", err)
	}
	if !tenant.IsActive {
		return nil, ErrTenantNotFound
	}

	notices, err := s.noticeRepo.ListDisplayable(ctx, tenant.ID, s.now())
	if err != nil {
		s.logger.Error("获取通知失败", "tenant_id", tenant.ID, "error", err)
		return nil, fmt.Errorf("list notices: %w", err)
	}

	images, err := s.imageRepo.ListActive(ctx, tenant.ID)
	if err != nil {
		s.logger.Error("获取图片失败", "tenant_id", tenant.ID, "error", err)
		return nil, fmt.Errorf("list images: %w", err)
	}

	style, err := s.styleRepo.Get(ctx, tenant.ID)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		s.logger.Error("获取样式失败", "tenant_id", tenant.ID, "error", err)
		return nil, fmt.Errorf("get style: %w", err)
	}
	resolved := style.WithDefaults()
	resolved.TenantID = tenant.ID

	bundle := &model.DisplayBundle{
		Tenant:  tenant.Profile(),
		Notices: notices,
		Images:  images,
		Style:   resolved,
	}

	ttl := bundleCacheTTL
	// 缓存不能跨过最早的通知过期时间
	for _, n := range notices {
		if n.ExpiresAt != nil {
			if until := n.ExpiresAt.Sub(s.now()); until > 0 && until < ttl {
				ttl = until
			}
		}
	}
	setCached(ctx, s.redisClient, s.logger, cacheKey, bundle, ttl)

	return bundle, nil
}

// Invalidate 清除楼宇展示缓存并通知订阅者
func (s *DisplayService) Invalidate(ctx context.Context, slug string) {
	if err := s.redisClient.Del(ctx, bundleCacheKey(slug)).Err(); err != nil {
		s.logger.Error("删除展示缓存失败", "slug", slug, "error", err)
	}

	s.mu.RLock()
	hooks := append([]func(string){}, s.onChange...)
	s.mu.RUnlock()
	for _, fn := range hooks {
		fn(slug)
	}
}

// InvalidateAll 清除全部展示缓存
func (s *DisplayService) InvalidateAll(ctx context.Context) error {
	return deletePattern(ctx, s.redisClient, s.logger, "display:bundle:*")
}
