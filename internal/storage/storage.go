package storage

import (
	"context"
	"io"
	"time"
)

// UploadOptions conveys upload destination metadata.
type UploadOptions struct {
	Bucket      string
	Key         string
	ContentType string
}

// Service stores uploaded photos in remote object storage.
type Service interface {
	UploadObject(ctx context.Context, body io.Reader, opts UploadOptions) error
	DeleteObject(ctx context.Context, bucket, key string) error
	ObjectURL(ctx context.Context, bucket, key string, expires time.Duration) (string, error)
}
