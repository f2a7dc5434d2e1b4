package service

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"
	"time"

	"noticeboard/internal/model"
	"noticeboard/internal/types"
	"noticeboard/pkg/logger"
	"noticeboard/pkg/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNoticeValidation(t *testing.T) {
	env := newTestEnv(t)
	svc := NewNoticeService(env.notices, env.display, logger.NewNop())
	tenant := env.tenants.add(&model.Tenant{Name: "Oak", Slug: "oak", IsActive: true})

	past := time.Now().Add(-time.Hour)
	future := time.Now().Add(time.Hour)

	tests := []struct {
		name    string
		req     types.NoticeRequest
		wantErr bool
	}{
		{"valid default priority", types.NoticeRequest{Title: "Elevator service"}, false},
		{"valid with expiry", types.NoticeRequest{Title: "Vote", Priority: "HIGH", ExpiresAt: &future}, false},
		{"blank title", types.NoticeRequest{Title: "   "}, true},
		{"unknown priority", types.NoticeRequest{Title: "x", Priority: "urgent"}, true},
		{"expired", types.NoticeRequest{Title: "x", ExpiresAt: &past}, true},
		{"title too long", types.NoticeRequest{Title: strings.Repeat("א", maxNoticeTitle+1)}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			notice, err := svc.Create(context.Background(), tenant, &tt.req)
			if tt.wantErr {
				assert.True(t, IsValidationError(err), "got %v", err)
				return
			}
			require.NoError(t, err)
			assert.True(t, notice.Priority.Valid())
			assert.True(t, notice.IsActive)
		})
	}
}

func TestNoticeUpdateAndDeleteScopedToTenant(t *testing.T) {
	env := newTestEnv(t)
	svc := NewNoticeService(env.notices, env.display, logger.NewNop())
	owner := env.tenants.add(&model.Tenant{Name: "Oak", Slug: "oak", IsActive: true})
	other := env.tenants.add(&model.Tenant{Name: "Elm", Slug: "elm", IsActive: true})

	notice, err := svc.Create(context.Background(), owner, &types.NoticeRequest{Title: "Bins"})
	require.NoError(t, err)

	_, err = svc.Update(context.Background(), other, notice.ID, &types.NoticeRequest{Title: "Hijack"})
	assert.ErrorIs(t, err, ErrNoticeNotFound)
	assert.ErrorIs(t, svc.Delete(context.Background(), other, notice.ID), ErrNoticeNotFound)

	inactive := false
	updated, err := svc.Update(context.Background(), owner, notice.ID, &types.NoticeRequest{Title: "Bins moved", Priority: "low", IsActive: &inactive})
	require.NoError(t, err)
	assert.False(t, updated.IsActive)

	page, err := svc.List(context.Background(), owner, types.PageQuery{Page: 1, Limit: 20})
	require.NoError(t, err)
	assert.Equal(t, int64(1), page.Total)

	require.NoError(t, svc.Delete(context.Background(), owner, notice.ID))
}

func TestStyleUpdateValidation(t *testing.T) {
	env := newTestEnv(t)
	svc := NewStyleService(env.styles, env.display, logger.NewNop())
	tenant := env.tenants.add(&model.Tenant{Name: "Oak", Slug: "oak", IsActive: true})

	style, err := svc.Get(context.Background(), tenant)
	require.NoError(t, err)
	assert.Equal(t, model.DefaultStyle(tenant.ID), style)

	_, err = svc.Update(context.Background(), tenant, &types.StyleRequest{BackgroundColor: "white", TextColor: "#000000", SlideDuration: 5000})
	assert.True(t, IsValidationError(err))
	_, err = svc.Update(context.Background(), tenant, &types.StyleRequest{BackgroundColor: "#ffffff", TextColor: "#000000", SlideDuration: 500})
	assert.True(t, IsValidationError(err))

	style, err = svc.Update(context.Background(), tenant, &types.StyleRequest{BackgroundColor: "#ABCDEF", TextColor: "#000000", SlideDuration: 8000})
	require.NoError(t, err)
	assert.Equal(t, "#abcdef", style.BackgroundColor)

	bundle, err := env.display.Bundle(context.Background(), "oak")
	require.NoError(t, err)
	assert.Equal(t, 8000, bundle.Style.SlideDuration)
}

func testPNG(t *testing.T) []byte {
	img := image.NewRGBA(image.Rect(0, 0, 640, 480))
	for x := 0; x < 640; x++ {
		img.Set(x, x%480, color.RGBA{R: 200, A: 255})
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func newImageService(t *testing.T, env *testEnv, maxBytes int64) (*ImageService, storage.FileStorage) {
	fs, err := storage.NewFileStorage(t.TempDir())
	require.NoError(t, err)
	return NewImageService(env.images, fs, env.display, maxBytes, logger.NewNop()), fs
}

func TestImageUploadCreatesThumbnail(t *testing.T) {
	env := newTestEnv(t)
	svc, fs := newImageService(t, env, 10<<20)
	tenant := env.tenants.add(&model.Tenant{Name: "Oak", Slug: "oak", IsActive: true})

	img, err := svc.Upload(context.Background(), tenant, "../lobby.png", bytes.NewReader(testPNG(t)))
	require.NoError(t, err)

	assert.Equal(t, "lobby.png", img.OriginalName)
	assert.True(t, strings.HasSuffix(img.Filename, ".png"))
	assert.NotEqual(t, img.Filename, img.Thumbnail)
	assert.True(t, fs.Exists(img.Filename))
	assert.True(t, fs.Exists(img.Thumbnail))

	toggled, err := svc.Toggle(context.Background(), tenant, img.ID)
	require.NoError(t, err)
	assert.False(t, toggled.IsActive)

	require.NoError(t, svc.Delete(context.Background(), tenant, img.ID))
	assert.False(t, fs.Exists(img.Filename))
	assert.False(t, fs.Exists(img.Thumbnail))
}

func TestImageUploadRejects(t *testing.T) {
	env := newTestEnv(t)
	svc, _ := newImageService(t, env, 64)
	tenant := env.tenants.add(&model.Tenant{Name: "Oak", Slug: "oak", IsActive: true})

	_, err := svc.Upload(context.Background(), tenant, "notes.txt", strings.NewReader("plain text, not an image"))
	assert.ErrorIs(t, err, ErrUnsupportedImage)

	_, err = svc.Upload(context.Background(), tenant, "big.png", bytes.NewReader(testPNG(t)))
	assert.ErrorIs(t, err, ErrImageTooLarge)

	assert.ErrorIs(t, svc.Delete(context.Background(), tenant, 99), ErrImageNotFound)
}
