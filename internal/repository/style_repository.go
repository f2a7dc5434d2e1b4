package repository

import (
	"context"

	"noticeboard/internal/model"

	"github.com/jmoiron/sqlx"
)

// StyleRepository 展示样式仓库接口
type StyleRepository interface {
	Get(ctx context.Context, tenantID int64) (*model.StyleConfig, error)
	Upsert(ctx context.Context, style *model.StyleConfig) error
}

type styleRepository struct {
	db *sqlx.DB
}

// NewStyleRepository 创建样式仓库实例
func NewStyleRepository(db *sqlx.DB) StyleRepository {
	return &styleRepository{db: db}
}

// Get 获取楼宇样式，未配置时返回 ErrNotFound
func (r *styleRepository) Get(ctx context.Context, tenantID int64) (*model.StyleConfig, error) {
	var s model.StyleConfig
	query := `SELECT tenant_id, background_color, text_color, slide_duration, updated_at
		FROM style_configs WHERE tenant_id = ?`
	if err := r.db.GetContext(ctx, &s, query, tenantID); err != nil {
		return nil, notFound(err)
	}
	return &s, nil
}

// Upsert 写入或覆盖楼宇样式
func (r *styleRepository) Upsert(ctx context.Context, s *model.StyleConfig) error {
	query := `INSERT INTO style_configs (tenant_id, background_color, text_color, slide_duration, updated_at)
		VALUES (?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON DUPLICATE KEY UPDATE background_color = VALUES(background_color),
			text_color = VALUES(text_color), slide_duration = VALUES(slide_duration),
			updated_at = CURRENT_TIMESTAMP`
	_, err := r.db.ExecContext(ctx, query, s.TenantID, s.BackgroundColor, s.TextColor, s.SlideDuration)
	return err
}
