package constants

// 通用错误消息
const (
	// 认证相关错误
	ErrUnauthorized           = "未授权，请先登录"
	ErrInvalidToken           = "无效的Token"
	ErrInsufficientPermission = "权限不足"
	ErrAccountDisabled        = "账号已被禁用"

	// 楼宇相关错误
	ErrTenantNotFound  = "楼宇不存在"
	ErrAuthFailed      = "邮箱或密码错误"
	ErrEmailExists     = "该邮箱已被注册"
	ErrDisplayNotFound = "展示页不存在"
	ErrLocationMissing = "楼宇未设置经纬度"

	// 内容相关错误
	ErrNoticeNotFound = "通知不存在"
	ErrImageNotFound  = "图片不存在"
	ErrImageInvalid   = "仅支持 JPEG、PNG、GIF、WebP 图片"
	ErrImageTooLarge  = "图片过大"
	ErrImageMissing   = "请选择要上传的图片"

	// 参数相关错误
	ErrInvalidParams  = "参数错误"
	ErrInvalidFormat  = "格式错误"
	ErrInvalidRequest = "无效请求格式"

	// 系统错误
	ErrInternalServer       = "服务器内部错误"
	ErrOperationTooFrequent = "请求过于频繁，请稍后重试"
	ErrUpstreamFailed       = "外部数据获取失败"
)

// 业务状态码
const (
	CodeSuccess      = 200
	CodeBadRequest   = 400
	CodeUnauthorized = 401
	CodeForbidden    = 403
	CodeNotFound     = 404
	CodeConflict     = 409
	CodeTooLarge     = 413
	CodeTooMany      = 429
	CodeInternal     = 500
	CodeUpstream     = 502
)

// 成功消息
const (
	SuccessLogin    = "登录成功"
	SuccessRegister = "注册成功"
	SuccessCreate   = "创建成功"
	SuccessUpdate   = "更新成功"
	SuccessDelete   = "删除成功"
	SuccessGet      = "获取成功"
	SuccessUpload   = "上传成功"
	SuccessReset    = "令牌已重置"
)
