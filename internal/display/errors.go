package display

import "errors"

// ErrManagerClosed 服务关闭后不再创建会话
var ErrManagerClosed = errors.New("display: manager closed")
