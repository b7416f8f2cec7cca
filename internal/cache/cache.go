// Package cache is the local key-value mirror of the application
// document. It is the only state that survives a remote store outage.
package cache

import (
	"context"
	"errors"
)

// Keys used by the document store.
const (
	KeyDocument = "morfi-data"
	KeyBinID    = "morfi-bin-id"
)

// ErrMiss is returned by Get when the key holds no value.
var ErrMiss = errors.New("cache miss")

// Cache is a small persistent key-value store.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}
