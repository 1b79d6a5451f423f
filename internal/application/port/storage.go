package port

import (
	"context"
	"time"
)

// ObjectStorage defines blob storage operations for evidence documents.
// Keys are namespaced per organization and submission; a put is
// immediately visible to a subsequent get.
type ObjectStorage interface {
	Put(ctx context.Context, key string, content []byte, contentType string) error
	Get(ctx context.Context, key string) ([]byte, error)
	Delete(ctx context.Context, key string) error

	// PresignedGetURL issues a time-limited download URL for the object.
	PresignedGetURL(ctx context.Context, key string, expiry time.Duration) (string, error)
}
