package storage

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// DefaultViewTTL bounds how long a presigned gallery URL stays valid.
const DefaultViewTTL = 15 * time.Minute

// Generated images are PNG unless the data URL says otherwise.
const defaultImageType = "image/png"

// ObjectStore persists generated images and hands out short-lived view
// URLs for the creation gallery.
type ObjectStore interface {
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	PresignGet(ctx context.Context, key string, expiry time.Duration) (string, error)
	Delete(ctx context.Context, key string) error
}

// MinioConfig configures the S3-compatible image bucket.
type MinioConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// MinioStore keeps creation images in a MinIO/S3 bucket.
type MinioStore struct {
	client *minio.Client
	bucket string
}

// NewMinioStore connects to the image bucket, creating it when absent.
func NewMinioStore(cfg MinioConfig) (*MinioStore, error) {
	if strings.TrimSpace(cfg.Bucket) == "" {
		return nil, fmt.Errorf("image bucket name required")
	}
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("init minio client: %w", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("check image bucket: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("create image bucket: %w", err)
		}
	}
	return &MinioStore{client: client, bucket: cfg.Bucket}, nil
}

// Put uploads an image. An empty content type falls back to PNG, the
// format the generator emits.
func (m *MinioStore) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error {
	opts := minio.PutObjectOptions{
		ContentType:  imageContentType(contentType),
		CacheControl: "private, max-age=86400",
	}
	if _, err := m.client.PutObject(ctx, m.bucket, key, r, size, opts); err != nil {
		return fmt.Errorf("put image %s: %w", key, err)
	}
	return nil
}

// PresignGet returns a time-limited view URL for a stored image. A
// non-positive expiry uses DefaultViewTTL.
func (m *MinioStore) PresignGet(ctx context.Context, key string, expiry time.Duration) (string, error) {
	url, err := m.client.PresignedGetObject(ctx, m.bucket, key, viewExpiry(expiry), nil)
	if err != nil {
		return "", fmt.Errorf("presign image %s: %w", key, err)
	}
	return url.String(), nil
}

// imageContentType falls back to PNG, the format the generator emits.
func imageContentType(contentType string) string {
	if strings.TrimSpace(contentType) == "" {
		return defaultImageType
	}
	return contentType
}

// viewExpiry clamps non-positive presign expiries to DefaultViewTTL.
func viewExpiry(expiry time.Duration) time.Duration {
	if expiry <= 0 {
		return DefaultViewTTL
	}
	return expiry
}

// Delete removes a stored image.
func (m *MinioStore) Delete(ctx context.Context, key string) error {
	if err := m.client.RemoveObject(ctx, m.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("delete image %s: %w", key, err)
	}
	return nil
}
