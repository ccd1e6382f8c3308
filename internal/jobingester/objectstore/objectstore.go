package objectstore

import (
	"context"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/pkg/errors"

	"github.com/mak8427/Benchmarking-suite-backend/internal/jobingester/configuration"
)

// ObjectStore is the narrow read contract the pipeline has on the external
// object store: list keys under a prefix and fetch one object to a local file.
type ObjectStore interface {
	List(ctx context.Context, prefix string) ([]string, error)
	Download(ctx context.Context, key, destPath string) error
}

// MinioStore reads from a MinIO (or any S3 compatible) bucket.
type MinioStore struct {
	client *minio.Client
	bucket string
}

func NewMinioStore(config configuration.ObjectStoreConfig) (*MinioStore, error) {
	client, err := minio.New(config.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(config.AccessKeyID, config.SecretAccessKey, ""),
		Secure: config.Secure,
	})
	if err != nil {
		return nil, errors.WithMessagef(err, "connecting to object store at %s", config.Endpoint)
	}
	return &MinioStore{client: client, bucket: config.Bucket}, nil
}

func (s *MinioStore) List(ctx context.Context, prefix string) ([]string, error) {
	var keys []string
	for object := range s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{
		Prefix:    prefix,
		Recursive: true,
	}) {
		if object.Err != nil {
			return nil, errors.WithMessagef(object.Err, "listing bucket %s under %s", s.bucket, prefix)
		}
		keys = append(keys, object.Key)
	}
	return keys, nil
}

func (s *MinioStore) Download(ctx context.Context, key, destPath string) error {
	if err := s.client.FGetObject(ctx, s.bucket, key, destPath, minio.GetObjectOptions{}); err != nil {
		return errors.WithMessagef(err, "downloading %s from bucket %s", key, s.bucket)
	}
	return nil
}
