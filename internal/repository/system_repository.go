package repository

import (
	"context"
	"time"

	"noticeboard/internal/model"

	"github.com/jmoiron/sqlx"
)

// SystemRepository 平台统计存储库
type SystemRepository struct {
	db *sqlx.DB
}

// NewSystemRepository 创建平台统计存储库实例
func NewSystemRepository(db *sqlx.DB) *SystemRepository {
	return &SystemRepository{db: db}
}

// GetSystemStatus 统计楼宇数、可上屏通知数与图片数
func (r *SystemRepository) GetSystemStatus(ctx context.Context, now time.Time) (*model.SystemStatus, error) {
	var status model.SystemStatus

	if err := r.db.GetContext(ctx, &status.TotalTenants, "SELECT COUNT(*) FROM tenants WHERE is_active = true"); err != nil {
		return nil, err
	}

	err := r.db.GetContext(ctx, &status.ActiveNotices,
		"SELECT COUNT(*) FROM notices WHERE is_active = true AND (expires_at IS NULL OR expires_at > ?)", now)
	if err != nil {
		return nil, err
	}

	if err := r.db.GetContext(ctx, &status.ActiveImages, "SELECT COUNT(*) FROM images WHERE is_active = true"); err != nil {
		return nil, err
	}

	return &status, nil
}
