package repository

import (
	"context"
	"time"

	"noticeboard/internal/model"

	"github.com/jmoiron/sqlx"
)

const noticeColumns = `id, tenant_id, title, content, priority, is_active, expires_at, created_at, updated_at`

// NoticeRepository 通知仓库接口
type NoticeRepository interface {
	Create(ctx context.Context, notice *model.Notice) error
	GetByID(ctx context.Context, tenantID, id int64) (*model.Notice, error)
	Update(ctx context.Context, notice *model.Notice) error
	Delete(ctx context.Context, tenantID, id int64) error
	List(ctx context.Context, tenantID int64, offset, limit int) ([]model.Notice, error)
	Count(ctx context.Context, tenantID int64) (int64, error)
	ListDisplayable(ctx context.Context, tenantID int64, now time.Time) ([]model.Notice, error)
}

type noticeRepository struct {
	db *sqlx.DB
}

// NewNoticeRepository 创建通知仓库实例
func NewNoticeRepository(db *sqlx.DB) NoticeRepository {
	return &noticeRepository{db: db}
}

// Create 创建通知
func (r *noticeRepository) Create(ctx context.Context, n *model.Notice) error {
	query := `INSERT INTO notices (tenant_id, title, content, priority, is_active, expires_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)`
	res, err := r.db.ExecContext(ctx, query, n.TenantID, n.Title, n.Content, n.Priority, n.IsActive, n.ExpiresAt)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	n.ID = id
	return nil
}

// GetByID 获取楼宇下的某条通知
func (r *noticeRepository) GetByID(ctx context.Context, tenantID, id int64) (*model.Notice, error) {
	var n model.Notice
	query := `SELECT ` + noticeColumns + ` FROM notices WHERE id = ? AND tenant_id = ?`
	if err := r.db.GetContext(ctx, &n, query, id, tenantID); err != nil {
		return nil, notFound(err)
	}
	return &n, nil
}

// Update 更新通知
func (r *noticeRepository) Update(ctx context.Context, n *model.Notice) error {
	query := `UPDATE notices SET title = ?, content = ?, priority = ?, is_active = ?, expires_at = ?,
		updated_at = CURRENT_TIMESTAMP WHERE id = ? AND tenant_id = ?`
	_, err := r.db.ExecContext(ctx, query, n.Title, n.Content, n.Priority, n.IsActive, n.ExpiresAt, n.ID, n.TenantID)
	return err
}

// Delete 删除通知
func (r *noticeRepository) Delete(ctx context.Context, tenantID, id int64) error {
	return affected(r.db.ExecContext(ctx, `DELETE FROM notices WHERE id = ? AND tenant_id = ?`, id, tenantID))
}

// List 分页获取楼宇的全部通知（含停用、过期）
func (r *noticeRepository) List(ctx context.Context, tenantID int64, offset, limit int) ([]model.Notice, error) {
	notices := []model.Notice{}
	query := `SELECT ` + noticeColumns + ` FROM notices WHERE tenant_id = ?
		ORDER BY created_at DESC LIMIT ? OFFSET ?`
	if err := r.db.SelectContext(ctx, &notices, query, tenantID, limit, offset); err != nil {
		return nil, err
	}
	return notices, nil
}

// Count 楼宇通知总数
func (r *noticeRepository) Count(ctx context.Context, tenantID int64) (int64, error) {
	var count int64
	err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM notices WHERE tenant_id = ?`, tenantID)
	return count, err
}

// ListDisplayable 获取可上屏的通知：启用且未过期，高优先级在前，同级新发布在前
func (r *noticeRepository) ListDisplayable(ctx context.Context, tenantID int64, now time.Time) ([]model.Notice, error) {
	notices := []model.Notice{}
	query := `SELECT ` + noticeColumns + ` FROM notices
		WHERE tenant_id = ? AND is_active = true AND (expires_at IS NULL OR expires_at > ?)
		ORDER BY FIELD(priority, 'high', 'medium', 'low'), created_at DESC`
	if err := r.db.SelectContext(ctx, &notices, query, tenantID, now); err != nil {
		return nil, err
	}
	return notices, nil
}
