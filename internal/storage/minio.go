package storage

import (
	"bytes"
	"context"
	"fmt"

	"slotvote/internal/config"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// MinioStore implements ObjectStore on an S3-compatible endpoint.
type MinioStore struct {
	client *minio.Client
	bucket string
}

// NewMinioStore connects to the object storage endpoint configured for the
// federated deployment.
func NewMinioStore(cfg *config.Config) (*MinioStore, error) {
	client, err := minio.New(cfg.StorageEndpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.StorageAccessKey, cfg.StorageSecretKey, ""),
		Secure: cfg.StorageUseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create object storage client: %w", err)
	}
	return &MinioStore{client: client, bucket: cfg.StorageBucket}, nil
}

// Put implements ObjectStore. The existence probe keeps uploads from
// silently replacing an object at the same path.
func (s *MinioStore) Put(ctx context.Context, name string, content []byte, contentType string) error {
	_, err := s.client.StatObject(ctx, s.bucket, name, minio.StatObjectOptions{})
	if err == nil {
		return ErrObjectExists
	}
	if resp := minio.ToErrorResponse(err); resp.Code != "NoSuchKey" {
		return fmt.Errorf("failed to probe object %q: %w", name, err)
	}

	_, err = s.client.PutObject(ctx, s.bucket, name,
		bytes.NewReader(content), int64(len(content)),
		minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return fmt.Errorf("failed to upload object %q: %w", name, err)
	}
	return nil
}

// Remove implements ObjectStore.
func (s *MinioStore) Remove(ctx context.Context, name string) error {
	return s.client.RemoveObject(ctx, s.bucket, name, minio.RemoveObjectOptions{})
}

// PublicURL implements ObjectStore.
func (s *MinioStore) PublicURL(name string) string {
	return fmt.Sprintf("%s/%s/%s", s.client.EndpointURL(), s.bucket, name)
}
