package storage

import "context"

// Object is one fetched upload: its bytes plus the upload-time metadata.
type Object struct {
	Bytes    []byte
	Metadata map[string]string
	Size     int64
}

// ObjectStore is the narrow slice of an object store the pipeline needs:
// fetch one object with its metadata, and (for the local-mode uploader)
// put one object idempotently.
type ObjectStore interface {
	Fetch(ctx context.Context, bucket, key string) (Object, error)
	Put(ctx context.Context, bucket, key string, data []byte, metadata map[string]string) error
}
