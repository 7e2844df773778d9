package storage

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
)

var (
	ErrCreateStorageDir = errors.New("failed to create or access storage directory")
	ErrReadValue        = errors.New("failed to read stored value")
	ErrWriteValue       = errors.New("failed to write stored value")
	ErrRemoveValue      = errors.New("failed to remove stored value")
)

var _ Store = (*File)(nil)

// File keeps one file per key under dir. Keys containing "/" become nested directories.
type File struct {
	dir string
	mu  sync.Mutex
}

// NewFile creates dir if it does not exist.
func NewFile(dir string) (*File, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Join(ErrCreateStorageDir, err)
	}
	return &File{dir: dir}, nil
}

func (f *File) path(key string) (string, error) {
	if key == "" || !filepath.IsLocal(key) {
		return "", errors.Join(ErrInvalidKey, errors.New(key))
	}
	return filepath.Join(f.dir, key), nil
}

func (f *File) Get(_ context.Context, key string) (string, bool, error) {
	name, err := f.path(key)
	if err != nil {
		return "", false, err
	}
	data, err := os.ReadFile(name)
	if errors.Is(err, fs.ErrNotExist) {
		return "", false, nil
	}
	if err != nil {
		return "", false, errors.Join(ErrReadValue, err)
	}
	return string(data), true, nil
}

// Set replaces the value atomically through a temporary file.
func (f *File) Set(_ context.Context, key, value string) error {
	name, err := f.path(key)
	if err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(name), 0o755); err != nil {
		return errors.Join(ErrWriteValue, err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(name), ".tmp-*")
	if err != nil {
		return errors.Join(ErrWriteValue, err)
	}
	defer os.Remove(tmp.Name()) //nolint:errcheck

	if _, err := tmp.WriteString(value); err != nil {
		tmp.Close() //nolint:errcheck
		return errors.Join(ErrWriteValue, err)
	}
	if err := tmp.Close(); err != nil {
		return errors.Join(ErrWriteValue, err)
	}
	if err := os.Rename(tmp.Name(), name); err != nil {
		return errors.Join(ErrWriteValue, err)
	}
	return nil
}

func (f *File) Remove(_ context.Context, key string) error {
	name, err := f.path(key)
	if err != nil {
		return err
	}
	if err := os.Remove(name); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return errors.Join(ErrRemoveValue, err)
	}
	return nil
}
