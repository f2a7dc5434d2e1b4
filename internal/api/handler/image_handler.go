package handler

import (
	"net/http"

	"noticeboard/internal/constants"
	"noticeboard/internal/middleware"
	"noticeboard/internal/service"
	"noticeboard/pkg/logger"

	"github.com/gin-gonic/gin"
)

// ImageHandler 图片处理器
type ImageHandler struct {
	imageService *service.ImageService
	logger       *logger.Logger
}

// NewImageHandler 创建图片处理器实例
func NewImageHandler(imageService *service.ImageService, logger *logger.Logger) *ImageHandler {
	return &ImageHandler{
		imageService: imageService,
		logger:       logger,
	}
}

// ListImages 获取本楼宇的图片
func (h *ImageHandler) ListImages(c *gin.Context) {
	images, err := h.imageService.List(c.Request.Context(), middleware.CurrentTenant(c))
	if err != nil {
		respondError(c, h.logger, "获取图片列表", err)
		return
	}
	success(c, constants.SuccessGet, images)
}

// UploadImage 上传图片
// @Summary 上传图片
// @Tags 图片
// @Accept multipart/form-data
// @Produce json
// @Param image formData file true "图片文件"
// @Success 200 {object} map[string]interface{} "成功"
// @Router /api/v1/images [post]
func (h *ImageHandler) UploadImage(c *gin.Context) {
	header, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusOK, gin.H{"code": constants.CodeBadRequest, "msg": constants.ErrImageMissing})
		return
	}

	file, err := header.Open()
	if err != nil {
		respondError(c, h.logger, "读取上传文件", err)
		return
	}
	defer file.Close()

	image, err := h.imageService.Upload(c.Request.Context(), middleware.CurrentTenant(c), header.Filename, file)
	if err != nil {
		respondError(c, h.logger, "上传图片", err)
		return
	}
	success(c, constants.SuccessUpload, image)
}

// ToggleImage 切换图片的启用状态
func (h *ImageHandler) ToggleImage(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}

	image, err := h.imageService.Toggle(c.Request.Context(), middleware.CurrentTenant(c), id)
	if err != nil {
		respondError(c, h.logger, "切换图片状态", err)
		return
	}
	success(c, constants.SuccessUpdate, image)
}

// DeleteImage 删除图片及其文件
func (h *ImageHandler) DeleteImage(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}

	if err := h.imageService.Delete(c.Request.Context(), middleware.CurrentTenant(c), id); err != nil {
		respondError(c, h.logger, "删除图片", err)
		return
	}
	success(c, constants.SuccessDelete, nil)
}
