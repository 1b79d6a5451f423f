// Package storage provides the MinIO-backed object store for evidence
// documents. Keys are namespaced per organization and submission so no
// key is reachable across organizations.
package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/url"
	"time"

	"github.com/clematis-labs/justify-server/internal/application/port"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"
)

// Config holds MinIO connection configuration
type Config struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// MinioStorage implements port.ObjectStorage on a MinIO bucket
type MinioStorage struct {
	client *minio.Client
	bucket string
	logger *zap.Logger
}

// NewMinioStorage creates the client and ensures the bucket exists
func NewMinioStorage(ctx context.Context, cfg Config, logger *zap.Logger) (*MinioStorage, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket existence: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("failed to create bucket: %w", err)
		}
		logger.Info("Bucket created", zap.String("bucket", cfg.Bucket))
	}

	return &MinioStorage{
		client: client,
		bucket: cfg.Bucket,
		logger: logger,
	}, nil
}

// Put writes an object under the given key
func (s *MinioStorage) Put(ctx context.Context, key string, content []byte, contentType string) error {
	_, err := s.client.PutObject(ctx, s.bucket, key,
		bytes.NewReader(content), int64(len(content)),
		minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		s.logger.Error("Failed to put object",
			zap.String("key", key),
			zap.Error(err))
		return fmt.Errorf("failed to put object: %w", err)
	}

	s.logger.Debug("Object stored",
		zap.String("key", key),
		zap.Int("size", len(content)))

	return nil
}

// Get reads an object's full content
func (s *MinioStorage) Get(ctx context.Context, key string) ([]byte, error) {
	object, err := s.client.GetObject(ctx, s.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		s.logger.Error("Failed to get object", zap.String("key", key), zap.Error(err))
		return nil, fmt.Errorf("failed to get object: %w", err)
	}
	defer object.Close()

	content, err := io.ReadAll(object)
	if err != nil {
		s.logger.Error("Failed to read object", zap.String("key", key), zap.Error(err))
		return nil, fmt.Errorf("failed to read object: %w", err)
	}

	return content, nil
}

// Delete removes an object. Deleting an absent key is not an error.
func (s *MinioStorage) Delete(ctx context.Context, key string) error {
	err := s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{})
	if err != nil {
		s.logger.Error("Failed to delete object", zap.String("key", key), zap.Error(err))
		return fmt.Errorf("failed to delete object: %w", err)
	}
	return nil
}

// PresignedGetURL issues a time-limited download URL for the object
func (s *MinioStorage) PresignedGetURL(ctx context.Context, key string, expiry time.Duration) (string, error) {
	presigned, err := s.client.PresignedGetObject(ctx, s.bucket, key, expiry, url.Values{})
	if err != nil {
		s.logger.Error("Failed to presign object URL", zap.String("key", key), zap.Error(err))
		return "", fmt.Errorf("failed to presign object URL: %w", err)
	}
	return presigned.String(), nil
}

// Verify interface compliance
var _ port.ObjectStorage = (*MinioStorage)(nil)
