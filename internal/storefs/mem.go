package storefs

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"
)

// Mem is an in-memory [FS] used by tests that need a filesystem double
// without touching disk.
type Mem struct {
	mu    sync.Mutex
	files map[string][]byte
	dirs  map[string]bool
}

// NewMem returns an empty in-memory filesystem.
func NewMem() *Mem {
	return &Mem{
		files: make(map[string][]byte),
		dirs:  make(map[string]bool),
	}
}

// Create writes a new file at path, failing if one already exists.
func (m *Mem) Create(path string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.files[path]; ok {
		return fmt.Errorf("create %q: %w", path, os.ErrExist)
	}

	m.files[path] = append([]byte(nil), data...)

	return nil
}

// Read returns the contents of the file at path.
func (m *Mem) Read(path string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	data, ok := m.files[path]
	if !ok {
		return nil, fmt.Errorf("read %q: %w", path, os.ErrNotExist)
	}

	return append([]byte(nil), data...), nil
}

// Update overwrites the file at path, failing if it does not already exist.
func (m *Mem) Update(path string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.files[path]; !ok {
		return fmt.Errorf("update %q: %w", path, os.ErrNotExist)
	}

	m.files[path] = append([]byte(nil), data...)

	return nil
}

// Delete removes the file at path.
func (m *Mem) Delete(path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.files[path]; !ok {
		return fmt.Errorf("delete %q: %w", path, os.ErrNotExist)
	}

	delete(m.files, path)

	return nil
}

// Exists reports whether a file or directory exists at path.
func (m *Mem) Exists(path string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	_, ok := m.files[path]

	return ok || m.dirs[path], nil
}

// MkdirAll records path as an existing directory.
func (m *Mem) MkdirAll(path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.dirs[path] = true

	return nil
}

// RemoveAll deletes path and every file stored under it.
func (m *Mem) RemoveAll(path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	prefix := path + "/"
	for p := range m.files {
		if p == path || strings.HasPrefix(p, prefix) {
			delete(m.files, p)
		}
	}

	for d := range m.dirs {
		if d == path || strings.HasPrefix(d, prefix) {
			delete(m.dirs, d)
		}
	}

	return nil
}

// ListDir returns the base names of files stored directly inside path.
func (m *Mem) ListDir(dir string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	prefix := dir + "/"

	var names []string

	for p := range m.files {
		if !strings.HasPrefix(p, prefix) {
			continue
		}

		rest := strings.TrimPrefix(p, prefix)
		if strings.Contains(rest, "/") {
			continue
		}

		names = append(names, rest)
	}

	sort.Strings(names)

	return names, nil
}

// ListPrefix returns every file path stored under prefix, sorted.
// Test helper; not part of [FS].
func (m *Mem) ListPrefix(prefix string) []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []string

	for p := range m.files {
		if strings.HasPrefix(p, prefix) {
			out = append(out, p)
		}
	}

	sort.Strings(out)

	return out
}

var _ FS = (*Mem)(nil)
