package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"surya-backend/internal/config"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"
)

const minioKeyPrefix = "reports/"

// MinioStore keeps documents as objects in a single bucket.
type MinioStore struct {
	client *minio.Client
	bucket string
}

// NewMinio connects to the configured endpoint and makes sure the bucket exists.
func NewMinio(ctx context.Context, cfg config.MinioConfig, log *zap.Logger) (*MinioStore, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("init minio client: %w", err)
	}

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket %s: %w", cfg.Bucket, err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("create bucket %s: %w", cfg.Bucket, err)
		}
		log.Info("created bucket", zap.String("bucket", cfg.Bucket))
	}

	log.Info("connected to minio", zap.String("endpoint", cfg.Endpoint), zap.String("bucket", cfg.Bucket))
	return &MinioStore{client: client, bucket: cfg.Bucket}, nil
}

// objectKey maps a store key to the object name inside the bucket.
func objectKey(key string) string {
	return minioKeyPrefix + KeyForOrder(strings.TrimSuffix(key, ".pdf"))
}

// Put uploads data, replacing any object with the same key.
func (m *MinioStore) Put(ctx context.Context, key string, data []byte) (string, error) {
	name := objectKey(key)
	_, err := m.client.PutObject(ctx, m.bucket, name, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: ContentTypePDF,
	})
	if err != nil {
		return "", fmt.Errorf("put object %s/%s: %w", m.bucket, name, err)
	}
	return name, nil
}

// Open fetches an object written by Put.
func (m *MinioStore) Open(ctx context.Context, path string) (io.ReadCloser, int64, error) {
	if !strings.HasPrefix(path, minioKeyPrefix) {
		return nil, 0, ErrNotFound
	}

	obj, err := m.client.GetObject(ctx, m.bucket, path, minio.GetObjectOptions{})
	if err != nil {
		return nil, 0, fmt.Errorf("get object %s/%s: %w", m.bucket, path, err)
	}
	info, err := obj.Stat()
	if err != nil {
		obj.Close()
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return nil, 0, ErrNotFound
		}
		return nil, 0, fmt.Errorf("stat object %s/%s: %w", m.bucket, path, err)
	}
	return obj, info.Size, nil
}
