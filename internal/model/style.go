package model

import "time"

const (
	DefaultBackgroundColor = "#ffffff"
	DefaultTextColor       = "#000000"
	DefaultSlideDuration   = 5000
)

// StyleConfig 展示页样式与图片轮播时长（毫秒）
type StyleConfig struct {
	TenantID        int64     `db:"tenant_id" json:"tenant_id"`
	BackgroundColor string    `db:"background_color" json:"background_color"`
	TextColor       string    `db:"text_color" json:"text_color"`
	SlideDuration   int       `db:"slide_duration" json:"slide_duration"`
	UpdatedAt       time.Time `db:"updated_at" json:"-"`
}

// DefaultStyle 未配置样式时使用的默认值
func DefaultStyle(tenantID int64) StyleConfig {
	return StyleConfig{
		TenantID:        tenantID,
		BackgroundColor: DefaultBackgroundColor,
		TextColor:       DefaultTextColor,
		SlideDuration:   DefaultSlideDuration,
	}
}

// WithDefaults 用默认值补齐缺失字段
func (s *StyleConfig) WithDefaults() StyleConfig {
	if s == nil {
		return DefaultStyle(0)
	}
	out := *s
	if out.BackgroundColor == "" {
		out.BackgroundColor = DefaultBackgroundColor
	}
	if out.TextColor == "" {
		out.TextColor = DefaultTextColor
	}
	if out.SlideDuration <= 0 {
		out.SlideDuration = DefaultSlideDuration
	}
	return out
}
