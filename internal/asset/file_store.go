package asset

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
)

// fileStore implements Store on the local file system.
type fileStore struct {
	root   string
	logger zerolog.Logger
}

// NewFileStore creates a store rooted at dir.
func NewFileStore(dir string, logger zerolog.Logger) Store {
	return &fileStore{
		root:   dir,
		logger: logger.With().Str("component", "file-asset-store").Logger(),
	}
}

func (s *fileStore) path(key string) string {
	return filepath.Join(s.root, filepath.FromSlash(key))
}

// Save writes the content to <root>/<key>, creating the directory if needed.
func (s *fileStore) Save(ctx context.Context, key string, r io.Reader, _ string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	p := s.path(key)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		s.logger.Error().Err(err).Str("key", key).Msg("failed to create asset directory")
		return fmt.Errorf("failed to create asset directory: %w", err)
	}

	file, err := os.Create(p)
	if err != nil {
		s.logger.Error().Err(err).Str("key", key).Msg("failed to create asset file")
		return fmt.Errorf("failed to create asset file %s: %w", key, err)
	}
	defer file.Close()

	n, err := io.Copy(file, r)
	if err != nil {
		s.logger.Error().Err(err).Str("key", key).Msg("failed to write asset file")
		return fmt.Errorf("failed to write asset file %s: %w", key, err)
	}

	s.logger.Info().
		Str("key", key).
		Int64("bytes", n).
		Msg("asset saved")

	return nil
}

// Open opens <root>/<key> for reading.
func (s *fileStore) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	file, err := os.Open(s.path(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
		}
		s.logger.Error().Err(err).Str("key", key).Msg("failed to open asset file")
		return nil, fmt.Errorf("failed to open asset file %s: %w", key, err)
	}
	return file, nil
}
