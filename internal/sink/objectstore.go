// Package sink publishes run artifacts beyond the local run directory: an
// S3-compatible object store for the raw files, and a Postgres inventory
// for the workspace and dataset tables. Both are optional; failures here
// are recorded as run errors and never discard local output.
package sink

import (
	"context"
	"fmt"
	"net/url"
	"path/filepath"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// ObjectStoreConfig locates the bucket run artifacts are published to.
type ObjectStoreConfig struct {
	EndpointURL     string
	AccessKeyID     string
	SecretAccessKey string
	Bucket          string
	BasePrefix      string
	UseSSL          bool
}

// ObjectStore uploads run artifacts to an S3-compatible bucket.
type ObjectStore struct {
	client *minio.Client
	config *ObjectStoreConfig
}

// NewObjectStore creates an object store sink from config.
func NewObjectStore(config *ObjectStoreConfig) (*ObjectStore, error) {
	if config == nil || config.EndpointURL == "" {
		return nil, fmt.Errorf("object store: endpoint URL is required")
	}
	if config.AccessKeyID == "" || config.SecretAccessKey == "" {
		return nil, fmt.Errorf("object store: credentials are required")
	}
	if config.Bucket == "" {
		return nil, fmt.Errorf("object store: bucket is required")
	}

	u, err := url.Parse(config.EndpointURL)
	if err != nil {
		return nil, fmt.Errorf("object store: invalid endpoint URL: %w", err)
	}
	endpoint := u.Host
	if endpoint == "" {
		endpoint = config.EndpointURL
	}

	useSSL := config.UseSSL
	if u.Scheme == "https" {
		useSSL = true
	}

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(config.AccessKeyID, config.SecretAccessKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("object store: create client: %w", err)
	}

	return &ObjectStore{client: client, config: config}, nil
}

// Publish uploads every path under <basePrefix>/<runID>/<filename> and
// returns the object URLs. The bucket must already exist; publishing never
// creates infrastructure.
func (s *ObjectStore) Publish(ctx context.Context, runID string, paths []string) ([]string, error) {
	exists, err := s.client.BucketExists(ctx, s.config.Bucket)
	if err != nil {
		return nil, fmt.Errorf("object store: check bucket %s: %w", s.config.Bucket, err)
	}
	if !exists {
		return nil, fmt.Errorf("object store: bucket %s not found", s.config.Bucket)
	}

	var uploaded []string
	for _, path := range paths {
		key := joinKey(s.config.BasePrefix, runID, filepath.Base(path))

		if _, err := s.client.FPutObject(ctx, s.config.Bucket, key, path, minio.PutObjectOptions{}); err != nil {
			return uploaded, fmt.Errorf("object store: upload %s: %w", key, err)
		}
		uploaded = append(uploaded, fmt.Sprintf("s3://%s/%s", s.config.Bucket, key))
	}

	return uploaded, nil
}

func joinKey(parts ...string) string {
	key := ""
	for _, p := range parts {
		if p == "" {
			continue
		}
		if key == "" {
			key = p
			continue
		}
		key += "/" + p
	}
	return key
}
