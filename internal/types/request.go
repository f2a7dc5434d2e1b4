package types

import "time"

// RegisterRequest 楼宇注册请求
type RegisterRequest struct {
	Name      string   `json:"name" binding:"required"`
	Email     string   `json:"email" binding:"required,email"`
	Password  string   `json:"password" binding:"required,min=8"`
	Address   string   `json:"address"`
	City      string   `json:"city"`
	Latitude  *float64 `json:"latitude" binding:"omitempty,min=-90,max=90"`
	Longitude *float64 `json:"longitude" binding:"omitempty,min=-180,max=180"`
}

// LoginRequest 登录请求，重置令牌也使用同样的凭据
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// UpdateProfileRequest 更新楼宇资料请求，空字段保持不变
type UpdateProfileRequest struct {
	Name      *string  `json:"name"`
	Address   *string  `json:"address"`
	City      *string  `json:"city"`
	Latitude  *float64 `json:"latitude" binding:"omitempty,min=-90,max=90"`
	Longitude *float64 `json:"longitude" binding:"omitempty,min=-180,max=180"`
	Password  *string  `json:"password" binding:"omitempty,min=8"`
}

// NoticeRequest 创建或更新通知请求
type NoticeRequest struct {
	Title     string     `json:"title" binding:"required"`
	Content   string     `json:"content"`
	Priority  string     `json:"priority"`
	IsActive  *bool      `json:"is_active"`
	ExpiresAt *time.Time `json:"expires_at"`
}

// StyleRequest 更新展示样式请求
type StyleRequest struct {
	BackgroundColor string `json:"background_color" binding:"required"`
	TextColor       string `json:"text_color" binding:"required"`
	SlideDuration   int    `json:"slide_duration" binding:"required"`
}

// SetActiveRequest 启用/停用请求
type SetActiveRequest struct {
	IsActive *bool `json:"is_active" binding:"required"`
}

// PageQuery 分页参数
type PageQuery struct {
	Page  int `form:"page,default=1" binding:"min=1"`
	Limit int `form:"limit,default=20" binding:"min=1,max=100"`
}

// Offset 当前页的偏移量
func (q PageQuery) Offset() int {
	return (q.Page - 1) * q.Limit
}

// LocationQuery 天气、日历接口的经纬度参数
type LocationQuery struct {
	Latitude  *float64 `form:"lat" binding:"required,min=-90,max=90"`
	Longitude *float64 `form:"lon" binding:"required,min=-180,max=180"`
}
