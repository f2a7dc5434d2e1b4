package handler

import (
	"errors"
	"net/http"
	"strconv"

	"noticeboard/internal/constants"
	"noticeboard/internal/display"
	"noticeboard/internal/service"
	"noticeboard/pkg/logger"

	"github.com/gin-gonic/gin"
)

// respondError 将服务层错误转换为统一的响应格式
func respondError(c *gin.Context, log *logger.Logger, action string, err error) {
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusOK, gin.H{"code": constants.CodeBadRequest, "msg": verr.Message, "field": verr.Field})
	case errors.Is(err, service.ErrTenantNotFound):
		c.JSON(http.StatusOK, gin.H{"code": constants.CodeNotFound, "msg": constants.ErrTenantNotFound})
	case errors.Is(err, service.ErrNoticeNotFound):
		c.JSON(http.StatusOK, gin.H{"code": constants.CodeNotFound, "msg": constants.ErrNoticeNotFound})
	case errors.Is(err, service.ErrImageNotFound):
		c.JSON(http.StatusOK, gin.H{"code": constants.CodeNotFound, "msg": constants.ErrImageNotFound})
	case errors.Is(err, service.ErrUnsupportedImage):
		c.JSON(http.StatusOK, gin.H{"code": constants.CodeBadRequest, "msg": constants.ErrImageInvalid})
	case errors.Is(err, service.ErrImageTooLarge):
		c.JSON(http.StatusOK, gin.H{"code": constants.CodeTooLarge, "msg": constants.ErrImageTooLarge})
	case errors.Is(err, service.ErrEmailExists):
		c.JSON(http.StatusOK, gin.H{"code": constants.CodeConflict, "msg": constants.ErrEmailExists})
	case errors.Is(err, service.ErrInvalidCredentials):
		c.JSON(http.StatusOK, gin.H{"code": constants.CodeUnauthorized, "msg": constants.ErrAuthFailed})
	case errors.Is(err, service.ErrTenantDisabled):
		c.JSON(http.StatusOK, gin.H{"code": constants.CodeForbidden, "msg": constants.ErrAccountDisabled})
	case errors.Is(err, service.ErrLocationMissing):
		c.JSON(http.StatusOK, gin.H{"code": constants.CodeBadRequest, "msg": constants.ErrLocationMissing})
	case errors.Is(err, service.ErrUpstream):
		log.Warn(action+"失败", "error", err)
		c.JSON(http.StatusOK, gin.H{"code": constants.CodeUpstream, "msg": constants.ErrUpstreamFailed})
	case errors.Is(err, display.ErrManagerClosed):
		c.JSON(http.StatusServiceUnavailable, gin.H{"code": constants.CodeInternal, "msg": constants.ErrInternalServer})
	default:
		log.Error(action+"失败", "error", err)
		c.JSON(http.StatusOK, gin.H{"code": constants.CodeInternal, "msg": constants.ErrInternalServer})
	}
}

// badRequest 请求参数错误
func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusOK, gin.H{"code": constants.CodeBadRequest, "msg": constants.ErrInvalidParams, "error": err.Error()})
}

// success 成功响应
func success(c *gin.Context, msg string, data interface{}) {
	c.JSON(http.StatusOK, gin.H{"code": constants.CodeSuccess, "msg": msg, "data": data})
}

// paramID 解析路径中的ID
func paramID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusOK, gin.H{"code": constants.CodeBadRequest, "msg": constants.ErrInvalidParams})
		return 0, false
	}
	return id, true
}
