// Package store caches exercise fragments keyed by sheet and exercise.
//
// A fragment is generated once, when an exam first needs it, and reused by
// every later exam. Nothing is ever invalidated: delete the stored fragments
// of a sheet to force it to be cut again.
//
// # Backends
//
//   - FileStore: one PNG per fragment under <root>/<sheet>/<exercise>.png
//   - BoltStore: PNG bytes in a bbolt database file
//   - PostgresStore: PNG bytes in a fragments table
//   - MemoryStore: in-process map, mainly for tests
//
// # Concurrency
//
// Stores assume a single writing process. Two processes that both find a
// sheet missing will both regenerate it and the last write wins.
package store

import (
	"context"
	"errors"
	"fmt"
	"image"
)

// ErrNotFound is returned by Read when no fragment is stored for a key.
var ErrNotFound = errors.New("fragment not found")

// Key identifies a fragment. Both fields are 1-based.
type Key struct {
	Sheet    int `json:"sheet"`
	Exercise int `json:"exercise"`
}

// String renders the key as used in exam artifact names, e.g. "S01E2".
func (k Key) String() string {
	return fmt.Sprintf("S%02dE%d", k.Sheet, k.Exercise)
}

// Store is a generate-once fragment cache.
type Store interface {
	Exists(ctx context.Context, key Key) (bool, error)
	Read(ctx context.Context, key Key) (image.Image, error)
	Write(ctx context.Context, key Key, img image.Image) error
}
