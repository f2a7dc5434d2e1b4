package repository

import (
	"context"

	"noticeboard/internal/model"

	"github.com/jmoiron/sqlx"
)

const imageColumns = `id, tenant_id, filename, thumbnail, original_name, is_active, created_at`

// ImageRepository 图片仓库接口
type ImageRepository interface {
	Create(ctx context.Context, image *model.Image) error
	GetByID(ctx context.Context, tenantID, id int64) (*model.Image, error)
	SetActive(ctx context.Context, tenantID, id int64, active bool) error
	Delete(ctx context.Context, tenantID, id int64) error
	List(ctx context.Context, tenantID int64) ([]model.Image, error)
	ListActive(ctx context.Context, tenantID int64) ([]model.Image, error)
}

type imageRepository struct {
	db *sqlx.DB
}

// NewImageRepository 创建图片仓库实例
func NewImageRepository(db *sqlx.DB) ImageRepository {
	return &imageRepository{db: db}
}

// Create 保存图片记录
func (r *imageRepository) Create(ctx context.Context, img *model.Image) error {
	query := `INSERT INTO images (tenant_id, filename, thumbnail, original_name, is_active, created_at)
		VALUES (?, ?, ?, ?, ?, CURRENT_TIMESTAMP)`
	res, err := r.db.ExecContext(ctx, query, img.TenantID, img.Filename, img.Thumbnail, img.OriginalName, img.IsActive)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	img.ID = id
	return nil
}

// GetByID 获取楼宇下的某张图片
func (r *imageRepository) GetByID(ctx context.Context, tenantID, id int64) (*model.Image, error) {
	var img model.Image
	query := `SELECT ` + imageColumns + ` FROM images WHERE id = ? AND tenant_id = ?`
	if err := r.db.GetContext(ctx, &img, query, id, tenantID); err != nil {
		return nil, notFound(err)
	}
	return &img, nil
}

// SetActive 启用或停用图片
func (r *imageRepository) SetActive(ctx context.Context, tenantID, id int64, active bool) error {
	return affected(r.db.ExecContext(ctx,
		`UPDATE images SET is_active = ? WHERE id = ? AND tenant_id = ?`, active, id, tenantID))
}

// Delete 删除图片记录
func (r *imageRepository) Delete(ctx context.Context, tenantID, id int64) error {
	return affected(r.db.ExecContext(ctx, `DELETE FROM images WHERE id = ? AND tenant_id = ?`, id, tenantID))
}

// List 楼宇的全部图片，最早上传的在前
func (r *imageRepository) List(ctx context.Context, tenantID int64) ([]model.Image, error) {
	images := []model.Image{}
	query := `SELECT ` + imageColumns + ` FROM images WHERE tenant_id = ? ORDER BY created_at ASC, id ASC`
	if err := r.db.SelectContext(ctx, &images, query, tenantID); err != nil {
		return nil, err
	}
	return images, nil
}

// ListActive 可上屏的图片，按上传顺序
func (r *imageRepository) ListActive(ctx context.Context, tenantID int64) ([]model.Image, error) {
	images := []model.Image{}
	query := `SELECT ` + imageColumns + ` FROM images WHERE tenant_id = ? AND is_active = true
		ORDER BY created_at ASC, id ASC`
	if err := r.db.SelectContext(ctx, &images, query, tenantID); err != nil {
		return nil, err
	}
	return images, nil
}
