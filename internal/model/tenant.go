package model

import "time"

// Tenant 楼宇（租户）模型，一栋楼对应一行
type Tenant struct {
	ID        int64     `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Slug      string    `db:"slug" json:"slug"`
	Email     string    `db:"email" json:"email"`
	Password  string    `db:"password" json:"-"`
	Token     string    `db:"token" json:"-"`
	Address   string    `db:"address" json:"address"`
	City      string    `db:"city" json:"city"`
	Latitude  *float64  `db:"latitude" json:"latitude,omitempty"`
	Longitude *float64  `db:"longitude" json:"longitude,omitempty"`
	IsAdmin   bool      `db:"is_admin" json:"is_admin"`
	IsActive  bool      `db:"is_active" json:"is_active"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// HasLocation 是否配置了经纬度
func (t *Tenant) HasLocation() bool {
	return t.Latitude != nil && t.Longitude != nil
}

// TenantProfile 展示页可公开的楼宇信息
type TenantProfile struct {
	ID        int64    `json:"id"`
	Name      string   `json:"name"`
	Slug      string   `json:"slug"`
	Address   string   `json:"address"`
	City      string   `json:"city"`
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`
}

// HasLocation 是否可以查询天气与日历
func (p *TenantProfile) HasLocation() bool {
	return p.Latitude != nil && p.Longitude != nil
}

// Profile 转换为公开信息
func (t *Tenant) Profile() TenantProfile {
	return TenantProfile{
		ID:        t.ID,
		Name:      t.Name,
		Slug:      t.Slug,
		Address:   t.Address,
		City:      t.City,
		Latitude:  t.Latitude,
		Longitude: t.Longitude,
	}
}

// PaginatedTenants 分页楼宇结果
type PaginatedTenants struct {
	Total int64     `json:"total"`
	Items []*Tenant `json:"items"`
}
