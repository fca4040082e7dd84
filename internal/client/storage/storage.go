// Package storage provides the key-value persistence the account cache is
// written to. Values are opaque strings; the caller owns the format.
//
// Implementations:
//   - MemoryStorage: process-local map, used in tests and as the session-only
//     fallback when nothing persistent is available.
//   - SQLiteStorage: a kv table in a local SQLite file (modernc.org/sqlite),
//     schema managed by goose.
//   - RedisStorage: keys under a namespace in Redis.
package storage

import (
	"context"
	"errors"
)

// ErrClosed is returned by storages used after Close.
var ErrClosed = errors.New("storage closed")

// Storage is the persistent key-value contract.
type Storage interface {
	// GetItem returns the value stored under key. ok is false when the key
	// does not exist; that is not an error.
	GetItem(ctx context.Context, key string) (value string, ok bool, err error)

	// SetItem stores value under key, replacing any previous value.
	SetItem(ctx context.Context, key string, value string) error

	// RemoveItem deletes key. Removing a missing key is not an error.
	RemoveItem(ctx context.Context, key string) error

	// Close releases underlying resources.
	Close() error
}
