package model

import "time"

// Image 展示页背景图片
type Image struct {
	ID           int64     `db:"id" json:"id"`
	TenantID     int64     `db:"tenant_id" json:"tenant_id"`
	Filename     string    `db:"filename" json:"filename"`
	Thumbnail    string    `db:"thumbnail" json:"thumbnail"`
	OriginalName string    `db:"original_name" json:"original_name"`
	IsActive     bool      `db:"is_active" json:"is_active"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}
