// Package store holds the dashboard's local key-value storage and the
// TTL-bound weather cache built on top of it.
package store

import "errors"

var (
	// ErrNotFound is returned when a key has no value.
	ErrNotFound = errors.New("key not found")
)

// KV is a single-origin key-value store, the dashboard's equivalent of
// browser local storage. Implementations must be safe for concurrent use.
type KV interface {
	Get(key string) ([]byte, error)
	Put(key string, value []byte) error
	Delete(key string) error
	// Keys lists the keys starting with prefix.
	Keys(prefix string) ([]string, error)
}
