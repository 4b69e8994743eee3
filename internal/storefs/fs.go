// Package storefs provides the narrow filesystem abstraction that document
// and metadata persistence is built on: create, read, update and delete of a
// single file addressed by its full pathname.
package storefs

import "os"

// FS is the persistence boundary used by the collection store. Every method
// addresses a file by its complete pathname; there is no notion of a current
// directory or relative lookup.
//
// Implementations must be safe for concurrent use by multiple goroutines.
type FS interface {
	// Create writes a new file at path. It fails if a file already exists
	// at path.
	Create(path string, data []byte) error

	// Read returns the full contents of the file at path.
	// Returns os.ErrNotExist (wrapped) if the file does not exist.
	Read(path string) ([]byte, error)

	// Update overwrites the file at path with data. It fails if the file
	// does not already exist. Implementations must make the update atomic
	// enough that a concurrent reader observes either the old bytes or the
	// new bytes in full, never a partial write.
	Update(path string, data []byte) error

	// Delete removes the file at path. Returns os.ErrNotExist (wrapped) if
	// the file does not exist.
	Delete(path string) error

	// Exists reports whether a file or directory exists at path.
	Exists(path string) (bool, error)

	// MkdirAll creates a directory and all necessary parents at path.
	MkdirAll(path string) error

	// RemoveAll recursively deletes path and everything under it. No error
	// if path does not exist.
	RemoveAll(path string) error

	// ListDir returns the names of regular files directly inside path.
	// Returns an empty slice, not an error, if path does not exist.
	ListDir(path string) ([]string, error)
}

// Compile-time interface check.
var _ FS = (*Real)(nil)

// defaultFilePerm is the permission new document and metadata files are
// created with, before umask.
const defaultFilePerm = os.FileMode(0o644)

// defaultDirPerm is the permission new collection directories are created
// with, before umask.
const defaultDirPerm = os.FileMode(0o755)
