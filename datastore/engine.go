// Package datastore implements the per-datastore execution layer: the
// Engine contract a storage backend must satisfy, and the Executor that
// dispatches incoming bulk messages against one.
package datastore

import "context"

// ScanDirection selects which way a Scan walks the ordered key space.
type ScanDirection int

const (
	ScanAscending ScanDirection = iota
	ScanDescending
)

// KV is one key/value pair yielded by Scan.
type KV struct {
	Key   []byte
	Value []byte
}

// Engine is the narrow contract a storage backend must satisfy: arbitrary
// byte-string keys and values, an ordered scan. datastore/memengine and
// datastore/lmdbengine are the two reference implementations; production
// engines are an external collaborator choice.
type Engine interface {
	Put(ctx context.Context, key, value []byte) error
	Get(ctx context.Context, key []byte) ([]byte, bool, error)
	Delete(ctx context.Context, key []byte) error
	// Scan walks from key (inclusive) in direction, yielding up to n
	// pairs via yield. Stops early if yield returns false.
	Scan(ctx context.Context, key []byte, direction ScanDirection, n int, yield func(KV) bool) error
	Sync(ctx context.Context) error
	Close() error
}
