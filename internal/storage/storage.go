// Package storage provides the durable key/value store the cart and the
// nutrition cache persist into, plus the S3-backed object storage used for
// product images.
package storage

import (
	"context"
	"errors"
)

var (
	// ErrNotFound is returned by Get when a key has never been written or
	// has been deleted.
	ErrNotFound = errors.New("storage: key not found")

	// ErrQuotaExceeded is returned by Set when the value does not fit within
	// the configured storage budget. Callers decide whether to prune and
	// retry or to carry on with in-memory state only.
	ErrQuotaExceeded = errors.New("storage: quota exceeded")
)

// Store is a durable key/value store for small JSON blobs.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}
