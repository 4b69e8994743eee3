package storefs

import (
	"bytes"
	"fmt"
	"os"

	"github.com/natefinch/atomic"
)

// Real implements [FS] against the real filesystem. Update uses
// [atomic.WriteFile], which writes to a temp file in the same directory and
// renames it over the target, so a concurrent reader never observes a
// partially written file.
type Real struct{}

// NewReal returns a new [Real] filesystem.
func NewReal() *Real {
	return &Real{}
}

// Create writes a new file at path, failing if one already exists.
func (r *Real) Create(path string, data []byte) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, defaultFilePerm)
	if err != nil {
		return fmt.Errorf("create %q: %w", path, err)
	}

	_, writeErr := f.Write(data)
	closeErr := f.Close()

	if writeErr != nil {
		return fmt.Errorf("write %q: %w", path, writeErr)
	}

	if closeErr != nil {
		return fmt.Errorf("close %q: %w", path, closeErr)
	}

	return nil
}

// Read returns the contents of the file at path.
func (r *Real) Read(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %q: %w", path, err)
	}

	return data, nil
}

// Update overwrites the file at path atomically. It fails if the file does
// not already exist.
func (r *Real) Update(path string, data []byte) error {
	exists, err := r.Exists(path)
	if err != nil {
		return err
	}

	if !exists {
		return fmt.Errorf("update %q: %w", path, os.ErrNotExist)
	}

	if err := atomic.WriteFile(path, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("update %q: %w", path, err)
	}

	return os.Chmod(path, defaultFilePerm)
}

// Delete removes the file at path.
func (r *Real) Delete(path string) error {
	if err := os.Remove(path); err != nil {
		return fmt.Errorf("delete %q: %w", path, err)
	}

	return nil
}

// Exists reports whether a file exists at path.
func (r *Real) Exists(path string) (bool, error) {
	_, err := os.Stat(path)
	if err == nil {
		return true, nil
	}

	if os.IsNotExist(err) {
		return false, nil
	}

	return false, fmt.Errorf("stat %q: %w", path, err)
}

// MkdirAll creates a directory and all necessary parents at path.
func (r *Real) MkdirAll(path string) error {
	if err := os.MkdirAll(path, defaultDirPerm); err != nil {
		return fmt.Errorf("mkdir %q: %w", path, err)
	}

	return nil
}

// RemoveAll recursively deletes path and everything under it.
func (r *Real) RemoveAll(path string) error {
	if err := os.RemoveAll(path); err != nil {
		return fmt.Errorf("remove all %q: %w", path, err)
	}

	return nil
}

// ListDir returns the names of regular files directly inside path.
func (r *Real) ListDir(path string) ([]string, error) {
	entries, err := os.ReadDir(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}

		return nil, fmt.Errorf("list dir %q: %w", path, err)
	}

	names := make([]string, 0, len(entries))

	for _, e := range entries {
		if e.Type().IsRegular() {
			names = append(names, e.Name())
		}
	}

	return names, nil
}
