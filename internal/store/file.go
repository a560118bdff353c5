package store

import (
	"context"
	"errors"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strconv"

	"github.com/ironsheep/exam-builder/internal/imaging"
)

// FileStore keeps one PNG file per fragment under Root, laid out as
// <Root>/<sheet, two digits>/<exercise>.png.
type FileStore struct {
	Root string
}

// NewFileStore returns a FileStore rooted at root.
func NewFileStore(root string) *FileStore {
	return &FileStore{Root: root}
}

// Path returns the file path of a fragment.
func (f *FileStore) Path(key Key) string {
	return filepath.Join(f.Root, fmt.Sprintf("%02d", key.Sheet), strconv.Itoa(key.Exercise)+".png")
}

// Exists reports whether the fragment file is present.
func (f *FileStore) Exists(_ context.Context, key Key) (bool, error) {
	_, err := os.Stat(f.Path(key))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	return false, fmt.Errorf("%s: %w", key, err)
}

// Read decodes the fragment file.
func (f *FileStore) Read(_ context.Context, key Key) (image.Image, error) {
	path := f.Path(key)
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%s: %w", key, ErrNotFound)
	}
	img, err := imaging.Load(path)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", key, err)
	}
	return img, nil
}

// Write saves img as PNG, creating the sheet directory if needed.
func (f *FileStore) Write(_ context.Context, key Key, img image.Image) error {
	if err := imaging.Save(f.Path(key), img); err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	return nil
}
