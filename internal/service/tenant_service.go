package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"noticeboard/internal/model"
	"noticeboard/internal/repository"
	"noticeboard/internal/types"
	"noticeboard/internal/utils"
	"noticeboard/pkg/async"
	"noticeboard/pkg/email"
	"noticeboard/pkg/logger"

	"golang.org/x/crypto/bcrypt"
	"k8s.io/apimachinery/pkg/util/rand"
)

const (
	tokenLength     = 32
	slugSuffixLen   = 5
	maxSlugAttempts = 5
	emailTimeout    = 30 * time.Second
)

// TenantService 楼宇服务接口
type TenantService interface {
	Register(ctx context.Context, req *types.RegisterRequest) (*model.Tenant, error)
	Login(ctx context.Context, emailAddr, password string) (*model.Tenant, error)
	ResetToken(ctx context.Context, emailAddr, password string) (*model.Tenant, error)
	GetByID(ctx context.Context, id int64) (*model.Tenant, error)
	GetByToken(ctx context.Context, token string) (*model.Tenant, error)
	UpdateProfile(ctx context.Context, tenant *model.Tenant, req *types.UpdateProfileRequest) error
	List(ctx context.Context, page types.PageQuery) (*model.PaginatedTenants, error)
	SetActive(ctx context.Context, id int64, active bool) error
}

// tenantService 楼宇服务实现
type tenantService struct {
	tenantRepo repository.TransactionalTenantRepository
	displaySvc *DisplayService
	emailSvc   email.Sender
	worker     *async.Worker
	logger     *logger.Logger
}

// NewTenantService 创建楼宇服务实例
func NewTenantService(
	tenantRepo repository.TransactionalTenantRepository,
	displaySvc *DisplayService,
	emailSvc email.Sender,
	worker *async.Worker,
	logger *logger.Logger,
) TenantService {
	return &tenantService{
		tenantRepo: tenantRepo,
		displaySvc: displaySvc,
		emailSvc:   emailSvc,
		worker:     worker,
		logger:     logger,
	}
}

// Register 注册楼宇
func (s *tenantService) Register(ctx context.Context, req *types.RegisterRequest) (*model.Tenant, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, invalid("name", "楼宇名称不能为空")
	}
	if (req.Latitude == nil) != (req.Longitude == nil) {
		return nil, invalid("latitude", "经纬度必须同时填写")
	}

	emailAddr := strings.ToLower(strings.TrimSpace(req.Email))
	if _, err := s.tenantRepo.GetByEmail(ctx, emailAddr); err == nil {
		return nil, ErrEmailExists
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	tenant := &model.Tenant{
		Name:      name,
		Email:     emailAddr,
		Password:  string(hash),
		Token:     rand.String(tokenLength),
		Address:   strings.TrimSpace(req.Address),
		City:      strings.TrimSpace(req.City),
		Latitude:  req.Latitude,
		Longitude: req.Longitude,
		IsActive:  true,
	}

	// 在事务中分配唯一标识并写入
	tx, err := s.tenantRepo.BeginTx(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	txRepo := s.tenantRepo.WithTx(tx)
	slug, err := s.uniqueSlug(ctx, txRepo, name)
	if err != nil {
		return nil, err
	}
	tenant.Slug = slug

	if err := txRepo.Create(ctx, tenant); err != nil {
		return nil, fmt.Errorf("create tenant: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}

	s.logger.Info("楼宇注册成功", "tenant_id", tenant.ID, "slug", tenant.Slug)

	to, building, path := tenant.Email, tenant.Name, "/display/"+tenant.Slug
	if err := s.worker.AddTask("welcome_email", emailTimeout, func(ctx context.Context) error {
		return s.emailSvc.SendWelcomeEmail(to, building, path)
	}); err != nil {
		s.logger.Warn("欢迎邮件任务提交失败", "tenant_id", tenant.ID, "error", err)
	}

	return tenant, nil
}

func (s *tenantService) uniqueSlug(ctx context.Context, repo repository.TenantRepository, name string) (string, error) {
	base := utils.Slugify(name)
	slug := base
	for i := 0; i < maxSlugAttempts; i++ {
		exists, err := repo.SlugExists(ctx, slug)
		if err != nil {
			return "", err
		}
		if !exists {
			return slug, nil
		}
		slug = base + "-" + rand.String(slugSuffixLen)
	}
	return "", fmt.Errorf("no free slug for %q", base)
}

// authenticate 校验邮箱和密码
func (s *tenantService) authenticate(ctx context.Context, emailAddr, password string) (*model.Tenant, error) {
	tenant, err := s.tenantRepo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(emailAddr)))
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(tenant.Password), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	if !tenant.IsActive {
		return nil, ErrTenantDisabled
	}
	return tenant, nil
}

// Login 楼宇登录，令牌为空时生成新的令牌
func (s *tenantService) Login(ctx context.Context, emailAddr, password string) (*model.Tenant, error) {
	tenant, err := s.authenticate(ctx, emailAddr, password)
	if err != nil {
		return nil, err
	}

	if tenant.Token == "" {
		tenant.Token = rand.String(tokenLength)
		if err := s.tenantRepo.UpdateToken(ctx, tenant.ID, tenant.Token); err != nil {
			return nil, err
		}
	}
	return tenant, nil
}

// ResetToken 重置登录令牌，旧令牌立即失效
func (s *tenantService) ResetToken(ctx context.Context, emailAddr, password string) (*model.Tenant, error) {
	tenant, err := s.authenticate(ctx, emailAddr, password)
	if err != nil {
		return nil, err
	}

	tenant.Token = rand.String(tokenLength)
	if err := s.tenantRepo.UpdateToken(ctx, tenant.ID, tenant.Token); err != nil {
		return nil, err
	}

	to, building := tenant.Email, tenant.Name
	if err := s.worker.AddTask("token_reset_email", emailTimeout, func(ctx context.Context) error {
		return s.emailSvc.SendTokenResetEmail(to, building)
	}); err != nil {
		s.logger.Warn("令牌重置邮件任务提交失败", "tenant_id", tenant.ID, "error", err)
	}
	return tenant, nil
}

// GetByID 根据ID获取楼宇
func (s *tenantService) GetByID(ctx context.Context, id int64) (*model.Tenant, error) {
	tenant, err := s.tenantRepo.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrTenantNotFound
	}
	return tenant, err
}

// GetByToken 根据令牌获取楼宇
func (s *tenantService) GetByToken(ctx context.Context, token string) (*model.Tenant, error) {
	if token == "" {
		return nil, ErrTenantNotFound
	}
	tenant, err := s.tenantRepo.GetByToken(ctx, token)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrTenantNotFound
	}
	return tenant, err
}

// UpdateProfile 更新楼宇资料
func (s *tenantService) UpdateProfile(ctx context.Context, tenant *model.Tenant, req *types.UpdateProfileRequest) error {
	updated := *tenant
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return invalid("name", "楼宇名称不能为空")
		}
		updated.Name = name
	}
	if req.Address != nil {
		updated.Address = strings.TrimSpace(*req.Address)
	}
	if req.City != nil {
		updated.City = strings.TrimSpace(*req.City)
	}
	if req.Latitude != nil || req.Longitude != nil {
		if req.Latitude == nil || req.Longitude == nil {
			return invalid("latitude", "经纬度必须同时填写")
		}
		updated.Latitude, updated.Longitude = req.Latitude, req.Longitude
	}
	if req.Password != nil {
		hash, err := bcrypt.GenerateFromPassword([]byte(*req.Password), bcrypt.DefaultCost)
		if err != nil {
			return fmt.Errorf("hash password: %w", err)
		}
		updated.Password = string(hash)
	}

	if err := s.tenantRepo.Update(ctx, &updated); err != nil {
		s.logger.Error("更新楼宇资料失败", "tenant_id", tenant.ID, "error", err)
		return err
	}
	*tenant = updated
	s.displaySvc.Invalidate(ctx, tenant.Slug)
	return nil
}

// List 分页获取楼宇列表
func (s *tenantService) List(ctx context.Context, page types.PageQuery) (*model.PaginatedTenants, error) {
	total, err := s.tenantRepo.Count(ctx)
	if err != nil {
		s.logger.Error("获取楼宇总数失败", "error", err)
		return nil, err
	}
	tenants, err := s.tenantRepo.List(ctx, page.Offset(), page.Limit)
	if err != nil {
		s.logger.Error("获取楼宇列表失败", "error", err)
		return nil, err
	}
	return &model.PaginatedTenants{Total: total, Items: tenants}, nil
}

// SetActive 启用或停用楼宇，停用后展示页不可访问
func (s *tenantService) SetActive(ctx context.Context, id int64, active bool) error {
	tenant, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.tenantRepo.SetActive(ctx, id, active); err != nil {
		return err
	}
	s.logger.Info("楼宇状态已更新", "tenant_id", id, "active", active)
	s.displaySvc.Invalidate(ctx, tenant.Slug)
	return nil
}
