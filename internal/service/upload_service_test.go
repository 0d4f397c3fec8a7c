package service

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"candle-labels/internal/asset"
	"candle-labels/internal/model"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestUploadService(t *testing.T) (*uploadService, string) {
	t.Helper()
	dir := t.TempDir()
	s := NewUploadService(asset.NewFileStore(dir, zerolog.Nop()), zerolog.Nop()).(*uploadService)
	s.now = func() time.Time { return time.Date(2025, 3, 4, 5, 6, 7, 0, time.UTC) }
	return s, dir
}

func TestUploadService_Upload(t *testing.T) {
	ctx := context.Background()
	service, dir := newTestUploadService(t)

	result, err := service.Upload(ctx, asset.KindLogo, "my logo.png", strings.NewReader("png-bytes"))
	require.NoError(t, err)

	assert.Equal(t, "logo_20250304050607_my_logo.png", result.Filename)
	assert.Equal(t, "/uploads/logos/logo_20250304050607_my_logo.png", result.URL)

	data, err := os.ReadFile(filepath.Join(dir, "logos", result.Filename))
	require.NoError(t, err)
	assert.Equal(t, "png-bytes", string(data))
}

func TestUploadService_Upload_Rejected(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name     string
		kind     string
		filename string
		wantCode string
	}{
		{"Unknown kind", "avatar", "a.png", model.ErrCodeNotFound},
		{"Empty filename", asset.KindQR, "", model.ErrCodeInvalidFile},
		{"Not an image", asset.KindQR, "notes.txt", model.ErrCodeUnsupportedFile},
		{"Gif", asset.KindLogo, "anim.gif", model.ErrCodeUnsupportedFile},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, _ := newTestUploadService(t)

			result, err := service.Upload(ctx, tt.kind, tt.filename, strings.NewReader("x"))
			assert.Nil(t, result)

			var domainErr *model.DomainError
			require.ErrorAs(t, err, &domainErr)
			assert.Equal(t, tt.wantCode, domainErr.Code)
		})
	}
}

func TestUploadService_Open(t *testing.T) {
	ctx := context.Background()
	service, _ := newTestUploadService(t)

	uploaded, err := service.Upload(ctx, asset.KindQR, "code.jpg", strings.NewReader("jpeg"))
	require.NoError(t, err)

	t.Run("Stored file", func(t *testing.T) {
		rc, err := service.Open(ctx, "qr", uploaded.Filename)
		require.NoError(t, err)
		defer rc.Close()

		data, err := io.ReadAll(rc)
		require.NoError(t, err)
		assert.Equal(t, "jpeg", string(data))
	})

	tests := []struct {
		name     string
		dir      string
		filename string
		wantCode string
	}{
		{"Missing file", "qr", "absent.png", model.ErrCodeNotFound},
		{"Traversal", "qr", "../../etc/passwd", model.ErrCodeForbidden},
		{"Unknown directory", "secrets", "a.png", model.ErrCodeForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rc, err := service.Open(ctx, tt.dir, tt.filename)
			assert.Nil(t, rc)

			var domainErr *model.DomainError
			require.ErrorAs(t, err, &domainErr)
			assert.Equal(t, tt.wantCode, domainErr.Code)
		})
	}
}
