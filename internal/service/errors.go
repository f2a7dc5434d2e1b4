package service

import "errors"

var (
	ErrTenantNotFound     = errors.New("tenant not found")
	ErrTenantDisabled     = errors.New("tenant disabled")
	ErrEmailExists        = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrNoticeNotFound     = errors.New("notice not found")
	ErrImageNotFound      = errors.New("image not found")
	ErrUnsupportedImage   = errors.New("unsupported image type")
	ErrImageTooLarge      = errors.New("image too large")
	ErrLocationMissing    = errors.New("tenant has no location")
	ErrUpstream           = errors.New("upstream request failed")
)

// ValidationError 请求参数校验失败，Message 可直接返回给前端
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}

func invalid(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// IsValidationError 是否为参数校验错误
func IsValidationError(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}
