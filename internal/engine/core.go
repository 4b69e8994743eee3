// Package engine implements the single-worker operation pipeline: a core
// that owns collections lazily by name, and a four-queue scheduler that
// drains create/read/update/delete work against it in a fixed order.
package engine

import (
	"fmt"
	"sync"

	"github.com/autumndb/autumndb/internal/collection"
	"github.com/autumndb/autumndb/internal/dberrors"
	"github.com/autumndb/autumndb/internal/storefs"
)

// Core owns the set of open collections for one node, keyed by name, and
// creates them lazily on first reference.
type Core struct {
	fs  storefs.FS
	dir string

	mu          sync.Mutex
	collections map[string]*collection.Collection
}

// NewCore returns a Core rooted at dir, creating dir if needed. It does not
// scan dir: a collection already on disk is opened, and its snapshot index
// seeded, on its first GetOrCreateCollection call, and Collections lists
// only the collections opened so far.
func NewCore(fs storefs.FS, dir string) (*Core, error) {
	if err := fs.MkdirAll(dir); err != nil {
		return nil, dberrors.Wrap(fmt.Errorf("create db root: %w", err))
	}

	c := &Core{fs: fs, dir: dir, collections: make(map[string]*collection.Collection)}

	return c, nil
}

// CreateCollection creates a new collection named name. It fails if one
// already exists by that name.
func (c *Core) CreateCollection(name string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.collections[name]; ok {
		return dberrors.Wrap(dberrors.ErrCollectionExists, dberrors.WithCollection(name))
	}

	coll, err := collection.Open(c.fs, c.dir, name)
	if err != nil {
		return err
	}

	if err := coll.Create(); err != nil {
		return err
	}

	c.collections[name] = coll

	return nil
}

// DeleteCollection removes the collection named name, including its
// directory tree, and stops tracking it.
func (c *Core) DeleteCollection(name string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	coll, ok := c.collections[name]
	if !ok {
		return dberrors.Wrap(dberrors.ErrCollectionGone, dberrors.WithCollection(name))
	}

	if err := coll.Delete(); err != nil {
		return err
	}

	delete(c.collections, name)

	return nil
}

// GetOrCreateCollection returns the collection named name, creating it on
// disk first if this is the first reference to it — the lazy creation spec.md
// describes for collections referenced by the engine.
func (c *Core) GetOrCreateCollection(name string) (*collection.Collection, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if coll, ok := c.collections[name]; ok {
		return coll, nil
	}

	coll, err := collection.Open(c.fs, c.dir, name)
	if err != nil {
		return nil, err
	}

	if !coll.ExistsOnDisk() {
		if err := coll.Create(); err != nil {
			return nil, err
		}
	}

	c.collections[name] = coll

	return coll, nil
}

// Collections returns the names of every collection currently open.
func (c *Core) Collections() []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	names := make([]string, 0, len(c.collections))
	for name := range c.collections {
		names = append(names, name)
	}

	return names
}
