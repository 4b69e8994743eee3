package engine

import (
	"time"

	"github.com/autumndb/autumndb/internal/fingerprint"
)

// createOp creates a new document in Collection with a freshly generated id.
type createOp struct {
	Collection string
	Data       []byte
	ID         fingerprint.DocumentID
	Result     chan error
}

// updateOp overwrites an existing document's bytes and updated_at.
type updateOp struct {
	Collection string
	ID         fingerprint.DocumentID
	Data       []byte
	UpdatedAt  time.Time
	Result     chan error
}

// deleteOp removes an existing document.
type deleteOp struct {
	Collection string
	ID         fingerprint.DocumentID
	Result     chan error
}

// readResult carries a read operation's outcome back to its caller.
type readResult struct {
	Data []byte
	Err  error
}

// readOp fetches a document's bytes. Result is a one-shot, buffer-1
// channel: the engine sends exactly once and the caller receives exactly
// once, replacing the busy-waited completion flag spec.md's reference
// implementation uses.
type readOp struct {
	Collection string
	ID         fingerprint.DocumentID
	Result     chan readResult
}
