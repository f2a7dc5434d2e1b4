package model

// SystemStatus 平台统计信息
type SystemStatus struct {
	TotalTenants  int64 `json:"total_tenants" db:"total_tenants"`
	ActiveNotices int64 `json:"active_notices" db:"active_notices"`
	ActiveImages  int64 `json:"active_images" db:"active_images"`
	LiveDisplays  int   `json:"live_displays" db:"-"`
}
