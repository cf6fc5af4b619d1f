package storage

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"path"
	"strings"

	"github.com/andresuchdata/pnl-dashboard/backend-go/internal/config"
	"github.com/andresuchdata/pnl-dashboard/backend-go/internal/domain"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// MinioClient implements ObjectStorage for S3-compatible services.
type MinioClient struct {
	client   *minio.Client
	maxBytes int64
}

// NewMinioClient builds a client from the object store config. The endpoint
// may carry an http:// or https:// scheme, which overrides UseSSL.
func NewMinioClient(cfg config.ObjectStoreConfig) (*MinioClient, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("object store endpoint must be provided")
	}
	if cfg.AccessKey == "" || cfg.SecretKey == "" {
		return nil, fmt.Errorf("object store credentials must be provided")
	}

	endpoint, secure, err := splitEndpoint(cfg.Endpoint, cfg.UseSSL)
	if err != nil {
		return nil, err
	}

	region := strings.TrimSpace(cfg.Region)
	if region == "" {
		region = "us-east-1"
	}

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: secure,
		Region: region,
	})
	if err != nil {
		return nil, fmt.Errorf("create object store client: %w", err)
	}

	return &MinioClient{client: client, maxBytes: cfg.MaxObjectBytes}, nil
}

func splitEndpoint(raw string, useSSL bool) (string, bool, error) {
	if !strings.HasPrefix(raw, "http://") && !strings.HasPrefix(raw, "https://") {
		return strings.TrimSuffix(strings.TrimPrefix(raw, "//"), "/"), useSSL, nil
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", false, fmt.Errorf("invalid object store endpoint: %w", err)
	}
	return u.Host, u.Scheme == "https", nil
}

// ListObjects lists all objects for a given prefix.
func (c *MinioClient) ListObjects(ctx context.Context, bucket, prefix string) ([]ObjectInfo, error) {
	results := make([]ObjectInfo, 0)
	for object := range c.client.ListObjects(ctx, bucket, minio.ListObjectsOptions{Prefix: prefix, Recursive: true}) {
		if object.Err != nil {
			return nil, fmt.Errorf("object store list failed: %w", object.Err)
		}
		results = append(results, ObjectInfo{Key: object.Key, Size: object.Size})
	}
	return results, nil
}

// GetObject reads a whole object into memory.
func (c *MinioClient) GetObject(ctx context.Context, bucket, key string) (*domain.Blob, error) {
	obj, err := c.client.GetObject(ctx, bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("object store get %s/%s: %w", bucket, key, err)
	}
	defer obj.Close()

	info, err := obj.Stat()
	if err != nil {
		return nil, fmt.Errorf("object store stat %s/%s: %w", bucket, key, err)
	}
	if c.maxBytes > 0 && info.Size > c.maxBytes {
		return nil, fmt.Errorf("object %s/%s is %d bytes, limit is %d", bucket, key, info.Size, c.maxBytes)
	}

	data, err := io.ReadAll(obj)
	if err != nil {
		return nil, fmt.Errorf("object store read %s/%s: %w", bucket, key, err)
	}
	return &domain.Blob{Name: path.Base(key), ContentType: info.ContentType, Data: data}, nil
}

var _ ObjectStorage = (*MinioClient)(nil)
