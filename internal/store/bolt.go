package store

import (
	"context"
	"fmt"
	"image"
	"os"
	"path/filepath"

	"go.etcd.io/bbolt"

	"github.com/ironsheep/exam-builder/internal/imaging"
)

var fragmentsBucket = []byte("fragments")

// BoltStore keeps PNG-encoded fragments in a bbolt database file.
type BoltStore struct {
	db *bbolt.DB
}

// OpenBolt opens (or creates) the database at path.
func OpenBolt(path string) (*BoltStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, err
	}

	db, err := bbolt.Open(path, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open fragment db: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(fragmentsBucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create bucket: %w", err)
	}

	return &BoltStore{db: db}, nil
}

// Close releases the database file lock.
func (b *BoltStore) Close() error {
	return b.db.Close()
}

// Exists reports whether a fragment is stored for key.
func (b *BoltStore) Exists(_ context.Context, key Key) (bool, error) {
	found := false
	err := b.db.View(func(tx *bbolt.Tx) error {
		found = tx.Bucket(fragmentsBucket).Get([]byte(key.String())) != nil
		return nil
	})
	return found, err
}

// Read decodes the fragment stored for key.
func (b *BoltStore) Read(_ context.Context, key Key) (image.Image, error) {
	var data []byte
	err := b.db.View(func(tx *bbolt.Tx) error {
		v := tx.Bucket(fragmentsBucket).Get([]byte(key.String()))
		if v == nil {
			return fmt.Errorf("%s: %w", key, ErrNotFound)
		}
		// v is only valid inside the transaction
		data = append([]byte(nil), v...)
		return nil
	})
	if err != nil {
		return nil, err
	}

	img, err := imaging.DecodePNG(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", key, err)
	}
	return img, nil
}

// Write stores img under key, replacing any previous fragment.
func (b *BoltStore) Write(_ context.Context, key Key, img image.Image) error {
	data, err := imaging.EncodePNG(img)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	return b.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(fragmentsBucket).Put([]byte(key.String()), data)
	})
}
