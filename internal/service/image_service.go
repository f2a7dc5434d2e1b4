package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path"
	"strconv"

	"noticeboard/internal/model"
	"noticeboard/internal/repository"
	"noticeboard/pkg/logger"
	"noticeboard/pkg/storage"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
)

const (
	thumbnailWidth  = 320
	thumbnailHeight = 180
)

// 允许的图片类型及扩展名，按内容嗅探判断
var imageExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// ImageService 背景图片服务
type ImageService struct {
	imageRepo  repository.ImageRepository
	storage    storage.FileStorage
	displaySvc *DisplayService
	maxBytes   int64
	logger     *logger.Logger
}

// NewImageService 创建图片服务实例
func NewImageService(
	imageRepo repository.ImageRepository,
	fileStorage storage.FileStorage,
	displaySvc *DisplayService,
	maxBytes int64,
	logger *logger.Logger,
) *ImageService {
	return &ImageService{
		imageRepo:  imageRepo,
		storage:    fileStorage,
		displaySvc: displaySvc,
		maxBytes:   maxBytes,
		logger:     logger,
	}
}

// Upload 保存上传的图片并生成缩略图
func (s *ImageService) Upload(ctx context.Context, tenant *model.Tenant, originalName string, r io.Reader) (*model.Image, error) {
	data, err := io.ReadAll(io.LimitReader(r, s.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	if int64(len(data)) > s.maxBytes {
		return nil, ErrImageTooLarge
	}

	ext, ok := imageExtensions[http.DetectContentType(data)]
	if !ok {
		return nil, ErrUnsupportedImage
	}

	dir := strconv.FormatInt(tenant.ID, 10)
	id := uuid.NewString()
	filename := path.Join(dir, id+ext)
	thumbnail := path.Join(dir, "thumb_"+id+".jpg")

	if err := s.storage.Save(filename, bytes.NewReader(data)); err != nil {
		s.logger.Error("保存图片失败", "tenant_id", tenant.ID, "error", err)
		return nil, err
	}

	if err := s.saveThumbnail(thumbnail, data); err != nil {
		// 解码失败（如 WebP）时直接使用原图
		s.logger.Warn("生成缩略图失败，使用原图", "file", filename, "error", err)
		thumbnail = filename
	}

	image := &model.Image{
		TenantID:     tenant.ID,
		Filename:     filename,
		Thumbnail:    thumbnail,
		OriginalName: path.Base(originalName),
		IsActive:     true,
	}
	if err := s.imageRepo.Create(ctx, image); err != nil {
		s.logger.Error("保存图片记录失败", "tenant_id", tenant.ID, "error", err)
		s.removeFiles(image)
		return nil, err
	}

	s.logger.Info("图片上传成功", "tenant_id", tenant.ID, "image_id", image.ID, "size", len(data))
	s.displaySvc.Invalidate(ctx, tenant.Slug)
	return image, nil
}

func (s *ImageService) saveThumbnail(name string, data []byte) error {
	src, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return err
	}
	thumb := imaging.Fit(src, thumbnailWidth, thumbnailHeight, imaging.Lanczos)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, thumb, imaging.JPEG, imaging.JPEGQuality(80)); err != nil {
		return err
	}
	return s.storage.Save(name, &buf)
}

func (s *ImageService) removeFiles(image *model.Image) {
	for _, name := range []string{image.Filename, image.Thumbnail} {
		if err := s.storage.Delete(name); err != nil {
			s.logger.Warn("删除图片文件失败", "file", name, "error", err)
		}
	}
}

// List 楼宇全部图片
func (s *ImageService) List(ctx context.Context, tenant *model.Tenant) ([]model.Image, error) {
	return s.imageRepo.List(ctx, tenant.ID)
}

// Toggle 切换图片启用状态
func (s *ImageService) Toggle(ctx context.Context, tenant *model.Tenant, id int64) (*model.Image, error) {
	image, err := s.imageRepo.GetByID(ctx, tenant.ID, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrImageNotFound
	}
	if err != nil {
		return nil, err
	}

	image.IsActive = !image.IsActive
	if err := s.imageRepo.SetActive(ctx, tenant.ID, id, image.IsActive); err != nil {
		return nil, err
	}
	s.displaySvc.Invalidate(ctx, tenant.Slug)
	return image, nil
}

// Delete 删除图片记录及文件
func (s *ImageService) Delete(ctx context.Context, tenant *model.Tenant, id int64) error {
	image, err := s.imageRepo.GetByID(ctx, tenant.ID, id)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrImageNotFound
	}
	if err != nil {
		return err
	}

	if err := s.imageRepo.Delete(ctx, tenant.ID, id); err != nil {
		return err
	}
	s.removeFiles(image)
	s.displaySvc.Invalidate(ctx, tenant.Slug)
	return nil
}
