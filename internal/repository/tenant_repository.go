package repository

import (
	"context"

	"noticeboard/internal/model"

	"github.com/jmoiron/sqlx"
)

const tenantColumns = `id, name, slug, email, password, token, address, city, latitude, longitude, is_admin, is_active, created_at, updated_at`

// TenantRepository 楼宇仓库接口
type TenantRepository interface {
	Create(ctx context.Context, tenant *model.Tenant) error
	GetByID(ctx context.Context, id int64) (*model.Tenant, error)
	GetBySlug(ctx context.Context, slug string) (*model.Tenant, error)
	GetByEmail(ctx context.Context, email string) (*model.Tenant, error)
	GetByToken(ctx context.Context, token string) (*model.Tenant, error)
	SlugExists(ctx context.Context, slug string) (bool, error)
	Update(ctx context.Context, tenant *model.Tenant) error
	UpdateToken(ctx context.Context, id int64, token string) error
	SetActive(ctx context.Context, id int64, active bool) error
	List(ctx context.Context, offset, limit int) ([]*model.Tenant, error)
	Count(ctx context.Context) (int64, error)
}

// TransactionalTenantRepository 支持事务的楼宇仓库
type TransactionalTenantRepository interface {
	TenantRepository
	BeginTx(ctx context.Context) (*sqlx.Tx, error)
	WithTx(tx *sqlx.Tx) TenantRepository
}

// tenantRepository 楼宇仓库实现
type tenantRepository struct {
	db *sqlx.DB
	q  sqlx.ExtContext // 直接连接或事务
}

// NewTenantRepository 创建楼宇仓库实例
func NewTenantRepository(db *sqlx.DB) TransactionalTenantRepository {
	return &tenantRepository{db: db, q: db}
}

// BeginTx 开始一个新的事务
func (r *tenantRepository) BeginTx(ctx context.Context) (*sqlx.Tx, error) {
	return r.db.BeginTxx(ctx, nil)
}

// WithTx 返回在事务中操作的仓库
func (r *tenantRepository) WithTx(tx *sqlx.Tx) TenantRepository {
	return &tenantRepository{db: r.db, q: tx}
}

// Create 创建楼宇
func (r *tenantRepository) Create(ctx context.Context, t *model.Tenant) error {
	query := `INSERT INTO tenants (name, slug, email, password, token, address, city, latitude, longitude, is_admin, is_active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)`
	res, err := r.q.ExecContext(ctx, query,
		t.Name, t.Slug, t.Email, t.Password, t.Token, t.Address, t.City,
		t.Latitude, t.Longitude, t.IsAdmin, t.IsActive)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	t.ID = id
	return nil
}

func (r *tenantRepository) getOne(ctx context.Context, where string, arg interface{}) (*model.Tenant, error) {
	t := &model.Tenant{}
	query := `SELECT ` + tenantColumns + ` FROM tenants WHERE ` + where + ` LIMIT 1`
	if err := sqlx.GetContext(ctx, r.q, t, query, arg); err != nil {
		return nil, notFound(err)
	}
	return t, nil
}

// GetByID 根据ID获取楼宇
func (r *tenantRepository) GetByID(ctx context.Context, id int64) (*model.Tenant, error) {
	return r.getOne(ctx, "id = ?", id)
}

// GetBySlug 根据展示页标识获取楼宇
func (r *tenantRepository) GetBySlug(ctx context.Context, slug string) (*model.Tenant, error) {
	return r.getOne(ctx, "slug = ?", slug)
}

// GetByEmail 根据邮箱获取楼宇
func (r *tenantRepository) GetByEmail(ctx context.Context, email string) (*model.Tenant, error) {
	return r.getOne(ctx, "email = ?", email)
}

// GetByToken 根据登录令牌获取楼宇
func (r *tenantRepository) GetByToken(ctx context.Context, token string) (*model.Tenant, error) {
	return r.getOne(ctx, "token = ?", token)
}

// SlugExists 展示页标识是否已被占用
func (r *tenantRepository) SlugExists(ctx context.Context, slug string) (bool, error) {
	var n int
	err := sqlx.GetContext(ctx, r.q, &n, `SELECT COUNT(*) FROM tenants WHERE slug = ?`, slug)
	return n > 0, err
}

// Update 更新楼宇资料
func (r *tenantRepository) Update(ctx context.Context, t *model.Tenant) error {
	query := `UPDATE tenants SET name = ?, email = ?, password = ?, address = ?, city = ?,
		latitude = ?, longitude = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`
	_, err := r.q.ExecContext(ctx, query,
		t.Name, t.Email, t.Password, t.Address, t.City, t.Latitude, t.Longitude, t.ID)
	return err
}

// UpdateToken 更新登录令牌
func (r *tenantRepository) UpdateToken(ctx context.Context, id int64, token string) error {
	return affected(r.q.ExecContext(ctx,
		`UPDATE tenants SET token = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`, token, id))
}

// SetActive 启用或停用楼宇
func (r *tenantRepository) SetActive(ctx context.Context, id int64, active bool) error {
	return affected(r.q.ExecContext(ctx,
		`UPDATE tenants SET is_active = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`, active, id))
}

// List 分页获取楼宇
func (r *tenantRepository) List(ctx context.Context, offset, limit int) ([]*model.Tenant, error) {
	tenants := []*model.Tenant{}
	query := `SELECT ` + tenantColumns + ` FROM tenants ORDER BY id DESC LIMIT ? OFFSET ?`
	if err := sqlx.SelectContext(ctx, r.q, &tenants, query, limit, offset); err != nil {
		return nil, err
	}
	return tenants, nil
}

// Count 楼宇总数
func (r *tenantRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := sqlx.GetContext(ctx, r.q, &count, `SELECT COUNT(*) FROM tenants`)
	return count, err
}
