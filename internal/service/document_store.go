package service

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/fadilmartias/plan-analyzer/internal/config"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

const referenceScheme = "s3://"

// DocumentStoreInterface keeps uploaded documents. Objects are addressed by
// references of the form s3://bucket/key.
type DocumentStoreInterface interface {
	Upload(ctx context.Context, key string, data []byte, contentType string) (string, error)
	Download(ctx context.Context, reference string) ([]byte, error)
	Delete(ctx context.Context, reference string) error
}

type DocumentStore struct {
	client *minio.Client
	bucket string
}

func NewDocumentStore(ctx context.Context, cfg *config.StorageConfig) (*DocumentStore, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket existence: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("failed to create bucket: %w", err)
		}
	}

	return &DocumentStore{client: client, bucket: cfg.Bucket}, nil
}

func (s *DocumentStore) Upload(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	_, err := s.client.PutObject(
		ctx,
		s.bucket,
		key,
		bytes.NewReader(data),
		int64(len(data)),
		minio.PutObjectOptions{ContentType: contentType},
	)
	if err != nil {
		return "", fmt.Errorf("failed to upload document: %w", err)
	}
	return Reference(s.bucket, key), nil
}

func (s *DocumentStore) Download(ctx context.Context, reference string) ([]byte, error) {
	bucket, key, err := ParseReference(reference)
	if err != nil {
		return nil, err
	}

	object, err := s.client.GetObject(ctx, bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to get document: %w", err)
	}
	defer object.Close()

	buf := new(bytes.Buffer)
	if _, err := buf.ReadFrom(object); err != nil {
		return nil, fmt.Errorf("failed to read document: %w", err)
	}
	return buf.Bytes(), nil
}

func (s *DocumentStore) Delete(ctx context.Context, reference string) error {
	bucket, key, err := ParseReference(reference)
	if err != nil {
		return err
	}
	if err := s.client.RemoveObject(ctx, bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}
	return nil
}

func Reference(bucket, key string) string {
	return referenceScheme + bucket + "/" + key
}

func IsReference(s string) bool {
	return strings.HasPrefix(s, referenceScheme)
}

func ParseReference(reference string) (bucket, key string, err error) {
	if !IsReference(reference) {
		return "", "", fmt.Errorf("not a storage reference: %q", reference)
	}
	bucket, key, ok := strings.Cut(strings.TrimPrefix(reference, referenceScheme), "/")
	if !ok || bucket == "" || key == "" {
		return "", "", fmt.Errorf("malformed storage reference: %q", reference)
	}
	return bucket, key, nil
}
