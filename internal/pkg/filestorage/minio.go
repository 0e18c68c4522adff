package filestorage

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/yigit/campusfound/internal/pkg/logger"
)

// MinioConfig holds the S3-compatible endpoint settings
type MinioConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
	// PublicURL is the prefix objects are reachable under, e.g. https://cdn.example.edu
	PublicURL string
}

// MinioStorage stores files in an S3-compatible bucket
type MinioStorage struct {
	client    *minio.Client
	bucket    string
	publicURL string
}

// NewMinioStorage connects to the endpoint and makes sure the bucket exists
func NewMinioStorage(ctx context.Context, cfg MinioConfig) (*MinioStorage, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket %s: %w", cfg.Bucket, err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("failed to create bucket %s: %w", cfg.Bucket, err)
		}
		logger.Info().Str("bucket", cfg.Bucket).Msg("Created storage bucket")
	}

	publicURL := strings.TrimRight(cfg.PublicURL, "/")
	if publicURL == "" {
		scheme := "http"
		if cfg.UseSSL {
			scheme = "https"
		}
		publicURL = scheme + "://" + cfg.Endpoint
	}

	return &MinioStorage{client: client, bucket: cfg.Bucket, publicURL: publicURL}, nil
}

func (s *MinioStorage) urlPrefix() string {
	return s.publicURL + "/" + s.bucket + "/"
}

// Save uploads the file as <category>/<principalID>/<uuid><ext>
func (s *MinioStorage) Save(ctx context.Context, principalID uuid.UUID, category string, upload *Upload) (string, error) {
	key := objectKey(principalID, category, upload)

	_, err := s.client.PutObject(ctx, s.bucket, key, upload.Reader(), upload.Size(), minio.PutObjectOptions{
		ContentType: upload.ContentType,
	})
	if err != nil {
		logger.Error().Err(err).Str("key", key).Msg("Failed to upload object")
		return "", fmt.Errorf("failed to upload object: %w", err)
	}
	return s.urlPrefix() + key, nil
}

// Delete removes an object previously returned by Save
func (s *MinioStorage) Delete(ctx context.Context, fileURL string) error {
	key := strings.TrimPrefix(fileURL, s.urlPrefix())
	if key == fileURL || key == "" {
		return fmt.Errorf("file %s is not served by this storage", fileURL)
	}
	if err := s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		logger.Error().Err(err).Str("key", key).Msg("Failed to remove object")
		return fmt.Errorf("failed to remove object: %w", err)
	}
	return nil
}
