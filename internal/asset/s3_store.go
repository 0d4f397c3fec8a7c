package asset

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/rs/zerolog"
)

// objectAPI is the subset of the S3 client used by s3Store.
type objectAPI interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// s3Store implements Store on an AWS S3 bucket.
type s3Store struct {
	client objectAPI
	bucket string
	prefix string
	logger zerolog.Logger
}

// NewS3Store creates an S3-backed store. Keys are written under prefix.
func NewS3Store(ctx context.Context, bucket, region, prefix string, logger zerolog.Logger) (Store, error) {
	logger = logger.With().Str("component", "s3-asset-store").Logger()

	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		logger.Error().Err(err).Msg("failed to load AWS configuration")
		return nil, fmt.Errorf("failed to load AWS configuration: %w", err)
	}

	logger.Info().
		Str("bucket", bucket).
		Str("region", region).
		Msg("S3 asset store initialised")

	return newS3Store(s3.NewFromConfig(cfg), bucket, prefix, logger), nil
}

func newS3Store(client objectAPI, bucket, prefix string, logger zerolog.Logger) *s3Store {
	return &s3Store{
		client: client,
		bucket: bucket,
		prefix: prefix,
		logger: logger,
	}
}

// Save uploads the content to <prefix><key>.
func (s *s3Store) Save(ctx context.Context, key string, r io.Reader, contentType string) error {
	objectKey := s.prefix + key

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(objectKey),
		Body:        r,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("bucket", s.bucket).
			Str("key", objectKey).
			Msg("failed to put object to S3")
		return fmt.Errorf("failed to put object to S3 (bucket=%s, key=%s): %w", s.bucket, objectKey, err)
	}

	s.logger.Info().
		Str("bucket", s.bucket).
		Str("key", objectKey).
		Msg("asset uploaded to S3")

	return nil
}

// Open downloads <prefix><key>.
func (s *s3Store) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	objectKey := s.prefix + key

	result, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(objectKey),
	})
	if err != nil {
		var noKey *types.NoSuchKey
		if errors.As(err, &noKey) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
		}
		s.logger.Error().
			Err(err).
			Str("bucket", s.bucket).
			Str("key", objectKey).
			Msg("failed to get object from S3")
		return nil, fmt.Errorf("failed to get object from S3 (bucket=%s, key=%s): %w", s.bucket, objectKey, err)
	}

	return result.Body, nil
}

// fallbackStore tries S3 first, then the local file system.
type fallbackStore struct {
	remote    Store
	local     Store
	s3Enabled bool
	logger    zerolog.Logger
}

// NewFallbackStore creates a store that prefers remote and falls back to local.
// If remote is nil or S3 is disabled, only local is used.
func NewFallbackStore(remote, local Store, s3Enabled bool, logger zerolog.Logger) Store {
	return &fallbackStore{
		remote:    remote,
		local:     local,
		s3Enabled: s3Enabled,
		logger:    logger.With().Str("component", "fallback-asset-store").Logger(),
	}
}

func (s *fallbackStore) useRemote() bool {
	return s.s3Enabled && s.remote != nil
}

// Save writes to S3 and falls back to disk on failure. Content is buffered so
// the fallback can replay it.
func (s *fallbackStore) Save(ctx context.Context, key string, r io.Reader, contentType string) error {
	if !s.useRemote() {
		return s.local.Save(ctx, key, r, contentType)
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("failed to read asset content: %w", err)
	}

	err = s.remote.Save(ctx, key, bytes.NewReader(data), contentType)
	if err == nil {
		return nil
	}

	s.logger.Warn().
		Err(err).
		Str("key", key).
		Msg("failed to save to S3, falling back to local file system")

	return s.local.Save(ctx, key, bytes.NewReader(data), contentType)
}

// Open reads from S3 and falls back to disk on any failure.
func (s *fallbackStore) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	if s.useRemote() {
		rc, err := s.remote.Open(ctx, key)
		if err == nil {
			return rc, nil
		}
		s.logger.Debug().
			Err(err).
			Str("key", key).
			Msg("asset not available from S3, falling back to local file system")
	}

	return s.local.Open(ctx, key)
}
