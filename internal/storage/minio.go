package storage

import (
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// MinioConfig holds the settings needed to reach an S3-compatible bucket.
type MinioConfig struct {
	Endpoint  string `json:"endpoint"`
	AccessKey string `json:"access_key"`
	SecretKey string `json:"secret_key"`
	Secure    bool   `json:"secure"`
	Bucket    string `json:"bucket"`
	Prefix    string `json:"prefix"`
}

// MinioStore implements Store for MinIO and other S3-compatible storage.
// Directories are key prefixes.
type MinioStore struct {
	client *minio.Client
	bucket string
	prefix string
}

// NewMinioStore creates a MinioStore. prefix is prepended to every name
// (e.g. "datasets/coco").
func NewMinioStore(client *minio.Client, bucket, prefix string) *MinioStore {
	return &MinioStore{
		client: client,
		bucket: bucket,
		prefix: prefix,
	}
}

// DialMinio creates a client from cfg and a MinioStore on top of it.
func DialMinio(cfg MinioConfig) (*MinioStore, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.Secure,
	})
	if err != nil {
		return nil, fmt.Errorf("could not create minio client for %q: %w", cfg.Endpoint, err)
	}
	return NewMinioStore(client, cfg.Bucket, cfg.Prefix), nil
}

func (s *MinioStore) key(name string) string {
	return path.Join(s.prefix, name)
}

func (s *MinioStore) Open(ctx context.Context, name string) (Blob, error) {
	key := s.key(name)
	obj, err := s.client.GetObject(ctx, s.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, s.translate(key, err)
	}
	// GetObject is lazy; Stat performs the request and surfaces missing keys.
	oi, err := obj.Stat()
	if err != nil {
		_ = obj.Close()
		return nil, s.translate(key, err)
	}
	return &minioBlob{Object: obj, info: Info{
		Name:    path.Base(name),
		Size:    oi.Size,
		ModTime: oi.LastModified,
	}}, nil
}

func (s *MinioStore) List(ctx context.Context, dir string) ([]string, error) {
	prefix := s.key(dir) + "/"
	var names []string
	for obj := range s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{
		Prefix: prefix,
	}) {
		if obj.Err != nil {
			return nil, s.translate(prefix, obj.Err)
		}
		name := strings.TrimSuffix(strings.TrimPrefix(obj.Key, prefix), "/")
		if name != "" {
			names = append(names, name)
		}
	}
	if len(names) == 0 {
		return nil, fmt.Errorf("%s/%s: %w", s.bucket, prefix, ErrNotFound)
	}
	return names, nil
}

func (s *MinioStore) translate(key string, err error) error {
	switch minio.ToErrorResponse(err).Code {
	case "NoSuchKey", "NotFound", "NoSuchBucket":
		return fmt.Errorf("%s/%s: %w", s.bucket, key, ErrNotFound)
	}
	return fmt.Errorf("%s/%s: %w", s.bucket, key, err)
}

type minioBlob struct {
	*minio.Object
	info Info
}

func (b *minioBlob) Stat() (Info, error) {
	return b.info, nil
}
