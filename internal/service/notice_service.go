package service

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"noticeboard/internal/model"
	"noticeboard/internal/repository"
	"noticeboard/internal/types"
	"noticeboard/pkg/logger"
)

const (
	maxNoticeTitle   = 200
	maxNoticeContent = 5000
)

// NoticeService 通知服务
type NoticeService struct {
	noticeRepo repository.NoticeRepository
	displaySvc *DisplayService
	logger     *logger.Logger
	now        func() time.Time
}

// NewNoticeService 创建通知服务实例
func NewNoticeService(noticeRepo repository.NoticeRepository, displaySvc *DisplayService, logger *logger.Logger) *NoticeService {
	return &NoticeService{
		noticeRepo: noticeRepo,
		displaySvc: displaySvc,
		logger:     logger,
		now:        time.Now,
	}
}

// validate 校验并规范化通知请求
func (s *NoticeService) validate(req *types.NoticeRequest) (*model.Notice, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, invalid("title", "标题不能为空")
	}
	if utf8.RuneCountInString(title) > maxNoticeTitle {
		return nil, invalid("title", "标题过长")
	}
	content := strings.TrimSpace(req.Content)
	if utf8.RuneCountInString(content) > maxNoticeContent {
		return nil, invalid("content", "内容过长")
	}

	priority := model.Priority(strings.ToLower(strings.TrimSpace(req.Priority)))
	if priority == "" {
		priority = model.PriorityMedium
	}
	if !priority.Valid() {
		return nil, invalid("priority", "优先级只能是 low、medium 或 high")
	}

	if req.ExpiresAt != nil && !req.ExpiresAt.After(s.now()) {
		return nil, invalid("expires_at", "过期时间必须晚于当前时间")
	}

	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}

	return &model.Notice{
		Title:     title,
		Content:   content,
		Priority:  priority,
		IsActive:  active,
		ExpiresAt: req.ExpiresAt,
	}, nil
}

// Create 创建通知
func (s *NoticeService) Create(ctx context.Context, tenant *model.Tenant, req *types.NoticeRequest) (*model.Notice, error) {
	notice, err := s.validate(req)
	if err != nil {
		return nil, err
	}
	notice.TenantID = tenant.ID

	if err := s.noticeRepo.Create(ctx, notice); err != nil {
		s.logger.Error("创建通知失败", "tenant_id", tenant.ID, "error", err)
		return nil, err
	}
	s.displaySvc.Invalidate(ctx, tenant.Slug)
	return notice, nil
}

// Get 获取单条通知
func (s *NoticeService) Get(ctx context.Context, tenant *model.Tenant, id int64) (*model.Notice, error) {
	notice, err := s.noticeRepo.GetByID(ctx, tenant.ID, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrNoticeNotFound
	}
	return notice, err
}

// Update 更新通知
func (s *NoticeService) Update(ctx context.Context, tenant *model.Tenant, id int64, req *types.NoticeRequest) (*model.Notice, error) {
	existing, err := s.Get(ctx, tenant, id)
	if err != nil {
		return nil, err
	}

	notice, err := s.validate(req)
	if err != nil {
		return nil, err
	}
	notice.ID = existing.ID
	notice.TenantID = tenant.ID
	notice.CreatedAt = existing.CreatedAt

	if err := s.noticeRepo.Update(ctx, notice); err != nil {
		s.logger.Error("更新通知失败", "notice_id", id, "error", err)
		return nil, err
	}
	s.displaySvc.Invalidate(ctx, tenant.Slug)
	return notice, nil
}

// Delete 删除通知
func (s *NoticeService) Delete(ctx context.Context, tenant *model.Tenant, id int64) error {
	err := s.noticeRepo.Delete(ctx, tenant.ID, id)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrNoticeNotFound
	}
	if err != nil {
		s.logger.Error("删除通知失败", "notice_id", id, "error", err)
		return err
	}
	s.displaySvc.Invalidate(ctx, tenant.Slug)
	return nil
}

// List 分页获取楼宇的全部通知
func (s *NoticeService) List(ctx context.Context, tenant *model.Tenant, page types.PageQuery) (*model.PaginatedNotices, error) {
	total, err := s.noticeRepo.Count(ctx, tenant.ID)
	if err != nil {
		s.logger.Error("获取通知总数失败", "tenant_id", tenant.ID, "error", err)
		return nil, err
	}
	notices, err := s.noticeRepo.List(ctx, tenant.ID, page.Offset(), page.Limit)
	if err != nil {
		s.logger.Error("获取通知列表失败", "tenant_id", tenant.ID, "error", err)
		return nil, err
	}
	return &model.PaginatedNotices{Total: total, Items: notices}, nil
}
