// Package collection implements the on-disk document store: one directory
// per collection holding a data/ and metadata/ subdirectory, plus an
// in-memory index of each document id's current fingerprint pair.
package collection

import (
	"fmt"
	"path"
	"sync"
	"time"

	"github.com/autumndb/autumndb/internal/dberrors"
	"github.com/autumndb/autumndb/internal/fingerprint"
	"github.com/autumndb/autumndb/internal/storefs"
)

const (
	dataDir     = "data"
	metadataDir = "metadata"
)

// Collection is a named bag of documents backed by a directory tree, with an
// in-memory doc_id -> (SBF, PH2) snapshot index. All operations serialize
// on a single mutex, matching the reference's per-collection lock.
type Collection struct {
	name string
	root string
	fs   storefs.FS

	mu        sync.Mutex
	snapshots map[string]fingerprint.Pair
	onDisk    bool
}

// Open returns a handle to the collection named name, rooted under dir, and
// seeds its snapshot index by scanning data/ if the collection already
// exists on disk. It does not create the collection; call Create for that.
func Open(fs storefs.FS, dir, name string) (*Collection, error) {
	c := &Collection{
		name:      name,
		root:      path.Join(dir, name),
		fs:        fs,
		snapshots: make(map[string]fingerprint.Pair),
	}

	exists, err := fs.Exists(path.Join(c.root, dataDir))
	if err != nil {
		return nil, dberrors.Wrap(err, dberrors.WithCollection(name))
	}

	if !exists {
		return c, nil
	}

	c.onDisk = true

	if err := c.seedSnapshots(); err != nil {
		return nil, err
	}

	return c, nil
}

// ExistsOnDisk reports whether this collection's directory tree already
// existed at Open time.
func (c *Collection) ExistsOnDisk() bool { return c.onDisk }

// seedSnapshots scans data/ and eagerly computes a real fingerprint pair for
// every file found, rather than leaving a placeholder entry to be
// recomputed lazily on first mutation.
func (c *Collection) seedSnapshots() error {
	entries, err := c.fs.ListDir(path.Join(c.root, dataDir))
	if err != nil {
		return dberrors.Wrap(err, dberrors.WithCollection(c.name))
	}

	for _, id := range entries {
		data, err := c.fs.Read(path.Join(c.root, dataDir, id))
		if err != nil {
			return dberrors.Wrap(err, dberrors.WithCollection(c.name), dberrors.WithDocumentID(id))
		}

		pair, err := fingerprint.Compute(data)
		if err != nil {
			return dberrors.Wrap(err, dberrors.WithCollection(c.name), dberrors.WithDocumentID(id))
		}

		c.snapshots[id] = pair
	}

	return nil
}

// Name returns the collection's name.
func (c *Collection) Name() string { return c.name }

// Create creates the collection's directory tree. It fails if the
// collection already exists.
func (c *Collection) Create() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	exists, err := c.fs.Exists(path.Join(c.root, dataDir))
	if err != nil {
		return dberrors.Wrap(err, dberrors.WithCollection(c.name))
	}

	if exists {
		return dberrors.Wrap(dberrors.ErrCollectionExists, dberrors.WithCollection(c.name))
	}

	if err := c.fs.MkdirAll(path.Join(c.root, dataDir)); err != nil {
		return dberrors.Wrap(err, dberrors.WithCollection(c.name))
	}

	if err := c.fs.MkdirAll(path.Join(c.root, metadataDir)); err != nil {
		return dberrors.Wrap(err, dberrors.WithCollection(c.name))
	}

	c.onDisk = true

	return nil
}

// Delete removes the collection directory tree recursively and drops the
// snapshot index.
func (c *Collection) Delete() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.fs.RemoveAll(c.root); err != nil {
		return dberrors.Wrap(err, dberrors.WithCollection(c.name))
	}

	c.snapshots = make(map[string]fingerprint.Pair)
	c.onDisk = false

	return nil
}

// CreateDocument writes data/<id> then metadata/<id>, canonicalises data,
// computes its fingerprint pair, and inserts it into the snapshot index. It
// fails if id already exists.
func (c *Collection) CreateDocument(id fingerprint.DocumentID, data []byte, updatedAt time.Time) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	docID := id.String()

	pair, err := fingerprint.Compute(data)
	if err != nil {
		return dberrors.Wrap(err, dberrors.WithCollection(c.name), dberrors.WithDocumentID(docID))
	}

	if err := c.fs.Create(path.Join(c.root, dataDir, docID), data); err != nil {
		return dberrors.Wrap(withExistsKind(err), dberrors.WithCollection(c.name), dberrors.WithDocumentID(docID))
	}

	meta := newMetadata(fingerprint.FromTime(updatedAt))

	metaBytes, err := encodeMetadata(meta)
	if err != nil {
		return dberrors.Wrap(err, dberrors.WithCollection(c.name), dberrors.WithDocumentID(docID))
	}

	if err := c.fs.Create(path.Join(c.root, metadataDir, docID), metaBytes); err != nil {
		return dberrors.Wrap(err, dberrors.WithCollection(c.name), dberrors.WithDocumentID(docID))
	}

	c.snapshots[docID] = pair

	return nil
}

// UpdateDocument rewrites data/<id> and the updated_at field in
// metadata/<id>, and recomputes the index entry. It fails if id does not
// already exist.
func (c *Collection) UpdateDocument(id fingerprint.DocumentID, data []byte, updatedAt time.Time) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	docID := id.String()

	pair, err := fingerprint.Compute(data)
	if err != nil {
		return dberrors.Wrap(err, dberrors.WithCollection(c.name), dberrors.WithDocumentID(docID))
	}

	if err := c.fs.Update(path.Join(c.root, dataDir, docID), data); err != nil {
		return dberrors.Wrap(withMissingKind(err), dberrors.WithCollection(c.name), dberrors.WithDocumentID(docID))
	}

	if err := c.setUpdatedAtLocked(docID, updatedAt); err != nil {
		return err
	}

	c.snapshots[docID] = pair

	return nil
}

// DeleteDocument removes both the data and metadata files for id, and drops
// its index entry.
func (c *Collection) DeleteDocument(id fingerprint.DocumentID) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	docID := id.String()

	if err := c.fs.Delete(path.Join(c.root, dataDir, docID)); err != nil {
		return dberrors.Wrap(withMissingKind(err), dberrors.WithCollection(c.name), dberrors.WithDocumentID(docID))
	}

	if err := c.fs.Delete(path.Join(c.root, metadataDir, docID)); err != nil {
		return dberrors.Wrap(withMissingKind(err), dberrors.WithCollection(c.name), dberrors.WithDocumentID(docID))
	}

	delete(c.snapshots, docID)

	return nil
}

// DocumentExists reports whether id has a data file in this collection.
func (c *Collection) DocumentExists(id fingerprint.DocumentID) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	exists, err := c.fs.Exists(path.Join(c.root, dataDir, id.String()))
	if err != nil {
		return false, dberrors.Wrap(err, dberrors.WithCollection(c.name), dberrors.WithDocumentID(id.String()))
	}

	return exists, nil
}

// ReadDocument returns the raw bytes stored for id.
func (c *Collection) ReadDocument(id fingerprint.DocumentID) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.readDocumentLocked(id)
}

func (c *Collection) readDocumentLocked(id fingerprint.DocumentID) ([]byte, error) {
	data, err := c.fs.Read(path.Join(c.root, dataDir, id.String()))
	if err != nil {
		return nil, dberrors.Wrap(withMissingKind(err), dberrors.WithCollection(c.name), dberrors.WithDocumentID(id.String()))
	}

	return data, nil
}

// ReadDocumentWithUpdatedAt returns id's bytes together with its parsed
// metadata timestamp, read under a single lock acquisition for a consistent
// pair.
func (c *Collection) ReadDocumentWithUpdatedAt(id fingerprint.DocumentID) ([]byte, time.Time, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	data, err := c.readDocumentLocked(id)
	if err != nil {
		return nil, time.Time{}, err
	}

	updatedAt, err := c.getUpdatedAtLocked(id.String())
	if err != nil {
		return nil, time.Time{}, err
	}

	return data, updatedAt, nil
}

// DocIDs returns a snapshot of the index's key set.
func (c *Collection) DocIDs() []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	ids := make([]string, 0, len(c.snapshots))
	for id := range c.snapshots {
		ids = append(ids, id)
	}

	return ids
}

// GetSnapshot returns the fingerprint pair for id and whether it was found.
func (c *Collection) GetSnapshot(id fingerprint.DocumentID) (fingerprint.Pair, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	pair, ok := c.snapshots[id.String()]

	return pair, ok
}

// GetUpdatedAt returns id's metadata updated_at timestamp.
func (c *Collection) GetUpdatedAt(id fingerprint.DocumentID) (time.Time, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.getUpdatedAtLocked(id.String())
}

func (c *Collection) getUpdatedAtLocked(docID string) (time.Time, error) {
	raw, err := c.fs.Read(path.Join(c.root, metadataDir, docID))
	if err != nil {
		return time.Time{}, dberrors.Wrap(withMissingKind(err), dberrors.WithCollection(c.name), dberrors.WithDocumentID(docID))
	}

	m, err := decodeMetadata(raw)
	if err != nil {
		return time.Time{}, dberrors.Wrap(err, dberrors.WithCollection(c.name), dberrors.WithDocumentID(docID))
	}

	id, err := fingerprint.ParseDocumentID(m.UpdatedAt)
	if err != nil {
		return time.Time{}, dberrors.Wrap(err, dberrors.WithCollection(c.name), dberrors.WithDocumentID(docID))
	}

	return id.Time()
}

// SetUpdatedAt overwrites id's metadata updated_at timestamp directly.
func (c *Collection) SetUpdatedAt(id fingerprint.DocumentID, updatedAt time.Time) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.setUpdatedAtLocked(id.String(), updatedAt)
}

func (c *Collection) setUpdatedAtLocked(docID string, updatedAt time.Time) error {
	raw, err := c.fs.Read(path.Join(c.root, metadataDir, docID))
	if err != nil {
		return dberrors.Wrap(withMissingKind(err), dberrors.WithCollection(c.name), dberrors.WithDocumentID(docID))
	}

	m, err := decodeMetadata(raw)
	if err != nil {
		return dberrors.Wrap(err, dberrors.WithCollection(c.name), dberrors.WithDocumentID(docID))
	}

	m.UpdatedAt = fingerprint.FromTime(updatedAt).String()

	newRaw, err := encodeMetadata(m)
	if err != nil {
		return dberrors.Wrap(err, dberrors.WithCollection(c.name), dberrors.WithDocumentID(docID))
	}

	if err := c.fs.Update(path.Join(c.root, metadataDir, docID), newRaw); err != nil {
		return dberrors.Wrap(withMissingKind(err), dberrors.WithCollection(c.name), dberrors.WithDocumentID(docID))
	}

	return nil
}

func withExistsKind(err error) error {
	return fmt.Errorf("%w: %w", dberrors.ErrDocumentExists, err)
}

func withMissingKind(err error) error {
	return fmt.Errorf("%w: %w", dberrors.ErrDocumentMissing, err)
}
