package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	gcs "cloud.google.com/go/storage"
	"google.golang.org/api/googleapi"
)

// GCSStore is the Cloud Storage implementation of ObjectStore.
type GCSStore struct {
	client *gcs.Client
	logger *slog.Logger
}

func NewGCSStore(ctx context.Context, logger *slog.Logger) (*GCSStore, error) {
	if logger == nil {
		logger = slog.Default()
	}
	client, err := gcs.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("create storage client: %w", err)
	}
	return &GCSStore{client: client, logger: logger}, nil
}

func (s *GCSStore) Fetch(ctx context.Context, bucket, key string) (Object, error) {
	obj := s.client.Bucket(bucket).Object(key)

	attrs, err := obj.Attrs(ctx)
	if err != nil {
		return Object{}, fmt.Errorf("stat gs://%s/%s: %w", bucket, key, err)
	}

	r, err := obj.NewReader(ctx)
	if err != nil {
		return Object{}, fmt.Errorf("open gs://%s/%s: %w", bucket, key, err)
	}
	defer r.Close()

	data, err := io.ReadAll(r)
	if err != nil {
		return Object{}, fmt.Errorf("read gs://%s/%s: %w", bucket, key, err)
	}

	return Object{Bytes: data, Metadata: attrs.Metadata, Size: attrs.Size}, nil
}

// Put writes the object only if it does not already exist. A precondition
// failure means another upload of the same content already landed, which is
// a clean no-op in an idempotent workflow.
func (s *GCSStore) Put(ctx context.Context, bucket, key string, data []byte, metadata map[string]string) error {
	w := s.client.Bucket(bucket).Object(key).If(gcs.Conditions{DoesNotExist: true}).NewWriter(ctx)
	w.Metadata = metadata

	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return fmt.Errorf("write gs://%s/%s: %w", bucket, key, err)
	}
	if err := w.Close(); err != nil {
		var gerr *googleapi.Error
		if errors.As(err, &gerr) && gerr.Code == 412 {
			s.logger.Info("object already exists, skipping", "bucket", bucket, "key", key)
			return nil
		}
		return fmt.Errorf("finalize gs://%s/%s: %w", bucket, key, err)
	}
	return nil
}

func (s *GCSStore) Close() error {
	return s.client.Close()
}
