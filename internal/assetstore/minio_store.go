package assetstore

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/pkg/errors"

	"scene-service/internal/metrics"
)

// assetPrefix namespaces all scene model files inside the bucket.
const assetPrefix = "models/"

// MinioStore implements Store on top of a MinIO (S3-compatible) backend.
type MinioStore struct {
	client    *minio.Client
	bucket    string
	publicURL string
	metrics   *metrics.Metrics
}

// NewMinioStore creates a MinioStore publishing into the given bucket.
// publicURL is the externally resolvable base for asset links; when empty the
// client's endpoint URL is used.
func NewMinioStore(client *minio.Client, bucket, publicURL string, m *metrics.Metrics) *MinioStore {
	if publicURL == "" {
		publicURL = client.EndpointURL().String()
	}
	return &MinioStore{
		client:    client,
		bucket:    bucket,
		publicURL: strings.TrimRight(publicURL, "/"),
		metrics:   m,
	}
}

// Publish uploads the staged file under a fresh object key and returns the
// resolvable URL plus the key as the deletion handle.
func (s *MinioStore) Publish(ctx context.Context, localPath, filename, contentType string) (*PublishedAsset, error) {
	file, err := os.Open(localPath)
	if err != nil {
		return nil, errors.Wrap(err, "could not open staged file")
	}
	defer file.Close()
	stat, err := file.Stat()
	if err != nil {
		return nil, errors.Wrap(err, "could not stat staged file")
	}

	assetID := assetPrefix + uuid.New().String() + strings.ToLower(filepath.Ext(filename))

	start := time.Now()
	_, err = s.client.PutObject(ctx, s.bucket, assetID, file, stat.Size(), minio.PutObjectOptions{
		ContentType: contentType,
	})
	s.metrics.ObserveAssetStoreLatency("publish", time.Since(start).Milliseconds())
	if err != nil {
		return nil, errors.Wrap(err, "asset upload failed")
	}

	return &PublishedAsset{
		URL:     s.publicURL + "/" + s.bucket + "/" + assetID,
		AssetID: assetID,
		Size:    stat.Size(),
	}, nil
}

// Retract deletes a previously published asset by its handle.
func (s *MinioStore) Retract(ctx context.Context, assetID string) error {
	start := time.Now()
	err := s.client.RemoveObject(ctx, s.bucket, assetID, minio.RemoveObjectOptions{})
	s.metrics.ObserveAssetStoreLatency("retract", time.Since(start).Milliseconds())
	if err != nil {
		return errors.Wrap(err, "asset delete failed")
	}
	return nil
}

// Fetch opens the stored asset for streaming. The Stat call forces the lazy
// GetObject to surface missing-object errors here rather than on first read.
func (s *MinioStore) Fetch(ctx context.Context, assetID string) (io.ReadCloser, error) {
	obj, err := s.client.GetObject(ctx, s.bucket, assetID, minio.GetObjectOptions{})
	if err != nil {
		return nil, errors.Wrap(err, "asset fetch failed")
	}
	if _, err := obj.Stat(); err != nil {
		obj.Close()
		return nil, errors.Wrap(err, "asset fetch failed")
	}
	return obj, nil
}
