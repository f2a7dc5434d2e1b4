package service

import (
	"context"
	"errors"
	"strings"

	"noticeboard/internal/model"
	"noticeboard/internal/repository"
	"noticeboard/internal/types"
	"noticeboard/internal/utils"
	"noticeboard/pkg/logger"
)

const (
	MinSlideDuration = 1000
	MaxSlideDuration = 120000
)

// StyleService 展示样式服务
type StyleService struct {
	styleRepo  repository.StyleRepository
	displaySvc *DisplayService
	logger     *logger.Logger
}

// NewStyleService 创建样式服务实例
func NewStyleService(styleRepo repository.StyleRepository, displaySvc *DisplayService, logger *logger.Logger) *StyleService {
	return &StyleService{
		styleRepo:  styleRepo,
		displaySvc: displaySvc,
		logger:     logger,
	}
}

// Get 获取楼宇样式，未配置时返回默认值
func (s *StyleService) Get(ctx context.Context, tenant *model.Tenant) (model.StyleConfig, error) {
	style, err := s.styleRepo.Get(ctx, tenant.ID)
	if errors.Is(err, repository.ErrNotFound) {
		return model.DefaultStyle(tenant.ID), nil
	}
	if err != nil {
		return model.StyleConfig{}, err
	}
	return style.WithDefaults(), nil
}

// Update 更新楼宇样式
func (s *StyleService) Update(ctx context.Context, tenant *model.Tenant, req *types.StyleRequest) (model.StyleConfig, error) {
	bg := strings.ToLower(strings.TrimSpace(req.BackgroundColor))
	fg := strings.ToLower(strings.TrimSpace(req.TextColor))
	if !utils.IsHexColor(bg) {
		return model.StyleConfig{}, invalid("background_color", "颜色格式应为 #rrggbb")
	}
	if !utils.IsHexColor(fg) {
		return model.StyleConfig{}, invalid("text_color", "颜色格式应为 #rrggbb")
	}
	if req.SlideDuration < MinSlideDuration || req.SlideDuration > MaxSlideDuration {
		return model.StyleConfig{}, invalid("slide_duration", "轮播时长需在 1000 到 120000 毫秒之间")
	}

	style := model.StyleConfig{
		TenantID:        tenant.ID,
		BackgroundColor: bg,
		TextColor:       fg,
		SlideDuration:   req.SlideDuration,
	}
	if err := s.styleRepo.Upsert(ctx, &style); err != nil {
		s.logger.Error("更新样式失败", "tenant_id", tenant.ID, "error", err)
		return model.StyleConfig{}, err
	}
	s.displaySvc.Invalidate(ctx, tenant.Slug)
	return style, nil
}
