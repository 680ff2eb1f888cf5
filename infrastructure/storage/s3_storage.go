package storage

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"task-api/domain/ports"
	"task-api/pkg/logger"
)

// S3Storage implements StoragePort for S3-compatible storage (MinIO, Cloudflare R2).
type S3Storage struct {
	client    *minio.Client
	bucket    string
	publicURL string
	endpoint  string
	useSSL    bool
}

type S3StorageConfig struct {
	Endpoint  string // minio:9000 or xxx.r2.cloudflarestorage.com
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
	Region    string
	PublicURL string // optional CDN/public bucket URL
}

var _ ports.StoragePort = (*S3Storage)(nil)

// NewS3Storage connects and creates the bucket when it does not exist yet.
func NewS3Storage(ctx context.Context, config S3StorageConfig) (*S3Storage, error) {
	client, err := minio.New(config.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(config.AccessKey, config.SecretKey, ""),
		Secure: config.UseSSL,
		Region: config.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create S3 client: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	exists, err := client.BucketExists(ctx, config.Bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, config.Bucket, minio.MakeBucketOptions{Region: config.Region}); err != nil {
			return nil, fmt.Errorf("failed to create bucket: %w", err)
		}
		logger.Info("S3 bucket created", "bucket", config.Bucket)
	}

	logger.Info("S3 storage initialized",
		"endpoint", config.Endpoint,
		"bucket", config.Bucket,
		"ssl", config.UseSSL,
	)

	return &S3Storage{
		client:    client,
		bucket:    config.Bucket,
		publicURL: strings.TrimSuffix(config.PublicURL, "/"),
		endpoint:  config.Endpoint,
		useSSL:    config.UseSSL,
	}, nil
}

func (s *S3Storage) UploadFile(ctx context.Context, file io.Reader, size int64, path, contentType string) (string, error) {
	key, err := cleanKey(path)
	if err != nil {
		return "", err
	}

	_, err = s.client.PutObject(ctx, s.bucket, key, file, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload file: %w", err)
	}

	logger.DebugContext(ctx, "File uploaded to S3", "path", key, "content_type", contentType)
	return s.GetFileURL(key), nil
}

func (s *S3Storage) DeleteFile(ctx context.Context, path string) error {
	key, err := cleanKey(path)
	if err != nil {
		return err
	}

	if err := s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("failed to delete file: %w", err)
	}

	logger.DebugContext(ctx, "File deleted from S3", "path", key)
	return nil
}

func (s *S3Storage) DeleteFolder(ctx context.Context, prefix string) error {
	prefix, err := cleanPrefix(prefix)
	if err != nil {
		return err
	}

	objectsCh := s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{
		Prefix:    prefix,
		Recursive: true,
	})

	deleted := 0
	for obj := range objectsCh {
		if obj.Err != nil {
			return fmt.Errorf("failed to list objects: %w", obj.Err)
		}
		if err := s.client.RemoveObject(ctx, s.bucket, obj.Key, minio.RemoveObjectOptions{}); err != nil {
			logger.WarnContext(ctx, "Failed to delete object", "key", obj.Key, "error", err)
			continue
		}
		deleted++
	}

	logger.DebugContext(ctx, "Folder deleted from S3", "prefix", prefix, "deleted", deleted)
	return nil
}

func (s *S3Storage) baseURL() string {
	if s.publicURL != "" {
		return s.publicURL
	}

	scheme := "http"
	if s.useSSL {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s/%s", scheme, s.endpoint, s.bucket)
}

func (s *S3Storage) GetFileURL(path string) string {
	return s.baseURL() + "/" + strings.TrimPrefix(strings.ReplaceAll(path, "\\", "/"), "/")
}

func (s *S3Storage) PathFromURL(url string) (string, bool) {
	return trimBase(s.baseURL(), url)
}

func (s *S3Storage) GetProviderName() string {
	return "s3"
}
