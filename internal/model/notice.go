package model

import "time"

// Priority 通知优先级
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Valid 是否为合法优先级
func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// Notice 委员会通知
type Notice struct {
	ID        int64      `db:"id" json:"id"`
	TenantID  int64      `db:"tenant_id" json:"tenant_id"`
	Title     string     `db:"title" json:"title"`
	Content   string     `db:"content" json:"content"`
	Priority  Priority   `db:"priority" json:"priority"`
	IsActive  bool       `db:"is_active" json:"is_active"`
	ExpiresAt *time.Time `db:"expires_at" json:"expires_at,omitempty"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt time.Time  `db:"updated_at" json:"-"`
}

// Displayable 在 now 时刻是否可以上屏
func (n *Notice) Displayable(now time.Time) bool {
	return n.IsActive && (n.ExpiresAt == nil || n.ExpiresAt.After(now))
}

// PaginatedNotices 分页通知结果
type PaginatedNotices struct {
	Total int64    `json:"total"`
	Items []Notice `json:"items"`
}
