package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"candle-labels/internal/asset"
	"candle-labels/internal/model"

	"github.com/rs/zerolog"
)

var (
	errUnsupportedImage = model.NewDomainError(model.ErrCodeUnsupportedFile, "Only PNG and JPEG files are allowed")
	errInvalidFilename  = model.NewDomainError(model.ErrCodeInvalidFile, "Invalid filename")
	errUnknownKind      = model.NewDomainError(model.ErrCodeNotFound, "Unknown upload type")
	errForbiddenPath    = model.NewDomainError(model.ErrCodeForbidden, "Access denied")
	errAssetNotFound    = model.NewDomainError(model.ErrCodeNotFound, "File not found")
)

// uploadService implements UploadService.
type uploadService struct {
	store  asset.Store
	now    func() time.Time
	logger zerolog.Logger
}

// NewUploadService creates a new upload service on top of store.
func NewUploadService(store asset.Store, logger zerolog.Logger) UploadService {
	return &uploadService{
		store:  store,
		now:    time.Now,
		logger: logger.With().Str("service", "upload").Logger(),
	}
}

// Upload stores an image as "<kind>_<timestamp>_<basename>" under the kind's directory.
func (s *uploadService) Upload(ctx context.Context, kind, filename string, r io.Reader) (*model.UploadResult, error) {
	dir, ok := asset.Dir(kind)
	if !ok {
		return nil, errUnknownKind
	}
	if filename == "" {
		return nil, errInvalidFilename
	}
	if !asset.AllowedImage(filename) {
		return nil, errUnsupportedImage
	}

	stored := asset.StoredName(kind, filename, s.now())
	key, err := asset.Key(dir, stored)
	if err != nil {
		s.logger.Warn().Err(err).Str("filename", filename).Msg("rejected upload filename")
		return nil, errInvalidFilename
	}

	if err := s.store.Save(ctx, key, r, asset.ContentType(stored)); err != nil {
		s.logger.Error().Err(err).Str("key", key).Msg("failed to store upload")
		return nil, fmt.Errorf("failed to store upload: %w", err)
	}

	s.logger.Info().Str("kind", kind).Str("key", key).Msg("file uploaded")

	return &model.UploadResult{
		Filename: stored,
		URL:      asset.URL(key),
	}, nil
}

// Open returns a stored asset. Paths outside the served directories are forbidden.
func (s *uploadService) Open(ctx context.Context, dir, filename string) (io.ReadCloser, error) {
	key, err := asset.Key(dir, filename)
	if err != nil {
		s.logger.Warn().Str("dir", dir).Str("filename", filename).Msg("rejected asset path")
		return nil, errForbiddenPath
	}

	rc, err := s.store.Open(ctx, key)
	if err != nil {
		if errors.Is(err, asset.ErrNotFound) {
			return nil, errAssetNotFound
		}
		s.logger.Error().Err(err).Str("key", key).Msg("failed to open asset")
		return nil, fmt.Errorf("failed to open asset: %w", err)
	}

	return rc, nil
}
