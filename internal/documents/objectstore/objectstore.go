// Package objectstore writes generated documents and uploads to blob storage.
// Refs returned by Put are opaque to callers and only fed back into SignedURL.
package objectstore

import (
	"context"
	"time"
)

type Store interface {
	Put(ctx context.Context, path string, body []byte, contentType string) (string, error)
	SignedURL(ctx context.Context, ref string, ttl time.Duration) (string, error)
}
