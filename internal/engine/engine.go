package engine

import (
	"sync/atomic"
	"time"

	"github.com/autumndb/autumndb/internal/dberrors"
	"github.com/autumndb/autumndb/internal/eventbus"
	"github.com/autumndb/autumndb/internal/fingerprint"
)

const queueCapacity = 4096

// idlePoll is how long the worker sleeps when all four queues are empty.
// The queues are drained with a non-blocking length check each iteration
// (mirroring the reference's Queue.qsize() > 0 pattern) rather than a
// blocking dequeue, so the worker needs a short sleep to avoid spinning.
const idlePoll = time.Millisecond

// Engine is the single-worker operation pipeline described in spec.md
// §4.4: one goroutine drains four FIFO queues in a fixed order every
// iteration, with delete-dominates-within-iteration semantics and
// unbounded update retry.
type Engine struct {
	core    *Core
	bus     *eventbus.Bus
	stopped atomic.Bool

	createQ chan *createOp
	readQ   chan *readOp
	updateQ chan *updateOp
	deleteQ chan *deleteOp
}

// New returns an Engine operating on core, publishing mutations to bus.
func New(core *Core, bus *eventbus.Bus) *Engine {
	return &Engine{
		core:    core,
		bus:     bus,
		createQ: make(chan *createOp, queueCapacity),
		readQ:   make(chan *readOp, queueCapacity),
		updateQ: make(chan *updateOp, queueCapacity),
		deleteQ: make(chan *deleteOp, queueCapacity),
	}
}

// EventBus returns the engine's event bus, for AAE and other subscribers.
func (e *Engine) EventBus() *eventbus.Bus { return e.bus }

// Core returns the engine's collection core, for callers (AAE, server)
// that need direct collection access outside the queued operation path.
func (e *Engine) Core() *Core { return e.core }

// SubmitCreate enqueues a create and returns the generated id immediately;
// the create itself completes asynchronously. err receives the outcome.
func (e *Engine) SubmitCreate(collectionName string, data []byte) (fingerprint.DocumentID, <-chan error) {
	result := make(chan error, 1)
	op := &createOp{
		Collection: collectionName,
		Data:       data,
		ID:         fingerprint.NewDocumentID(),
		Result:     result,
	}

	e.createQ <- op

	return op.ID, result
}

// SubmitUpdate enqueues an update for id in collectionName.
func (e *Engine) SubmitUpdate(collectionName string, id fingerprint.DocumentID, data []byte) <-chan error {
	result := make(chan error, 1)
	e.updateQ <- &updateOp{
		Collection: collectionName,
		ID:         id,
		Data:       data,
		UpdatedAt:  time.Now().UTC(),
		Result:     result,
	}

	return result
}

// SubmitDelete enqueues a delete for id in collectionName.
func (e *Engine) SubmitDelete(collectionName string, id fingerprint.DocumentID) <-chan error {
	result := make(chan error, 1)
	e.deleteQ <- &deleteOp{Collection: collectionName, ID: id, Result: result}

	return result
}

// SubmitRead enqueues a read for id in collectionName. The returned channel
// receives exactly one [readResult].
func (e *Engine) SubmitRead(collectionName string, id fingerprint.DocumentID) <-chan readResult {
	result := make(chan readResult, 1)
	e.readQ <- &readOp{Collection: collectionName, ID: id, Result: result}

	return result
}

// Run drains the four queues in a fixed order until Stop is called. It
// blocks the calling goroutine; callers should run it in its own
// goroutine.
func (e *Engine) Run() {
	for !e.stopped.Load() {
		deletedThisRound := make(map[string]bool)
		did := false

		if len(e.deleteQ) > 0 {
			did = true
			op := <-e.deleteQ
			e.handleDelete(op)
			deletedThisRound[op.ID.String()] = true
		}

		if len(e.readQ) > 0 {
			did = true
			op := <-e.readQ

			if deletedThisRound[op.ID.String()] {
				op.Result <- readResult{Err: dberrors.Wrap(dberrors.ErrDocumentMissing,
					dberrors.WithCollection(op.Collection), dberrors.WithDocumentID(op.ID.String()))}
			} else {
				e.handleRead(op)
			}
		}

		if len(e.createQ) > 0 {
			did = true
			op := <-e.createQ
			e.handleCreate(op)
		}

		if len(e.updateQ) > 0 {
			did = true
			op := <-e.updateQ

			if deletedThisRound[op.ID.String()] {
				// Dropped, not retried: the id was deleted earlier in this
				// same iteration, so retrying would resurrect it.
			} else if err := e.applyUpdate(op); err != nil {
				e.updateQ <- op
			}
		}

		if !did {
			time.Sleep(idlePoll)
		}
	}
}

// Stop requests the worker loop to exit at the top of its next iteration.
// Queued work that has not yet been dequeued is lost.
func (e *Engine) Stop() {
	e.stopped.Store(true)
}

func (e *Engine) handleDelete(op *deleteOp) {
	coll, err := e.core.GetOrCreateCollection(op.Collection)
	if err != nil {
		op.Result <- err
		return
	}

	err = coll.DeleteDocument(op.ID)
	op.Result <- err

	if err == nil {
		e.bus.Publish(eventbus.NewDocumentEvent(eventbus.OpDeleteDoc, op.Collection, op.ID.String()))
	}
}

func (e *Engine) handleRead(op *readOp) {
	coll, err := e.core.GetOrCreateCollection(op.Collection)
	if err != nil {
		op.Result <- readResult{Err: err}
		return
	}

	data, err := coll.ReadDocument(op.ID)
	op.Result <- readResult{Data: data, Err: err}
}

func (e *Engine) handleCreate(op *createOp) {
	coll, err := e.core.GetOrCreateCollection(op.Collection)
	if err != nil {
		op.Result <- err
		return
	}

	err = coll.CreateDocument(op.ID, op.Data, time.Now().UTC())
	op.Result <- err

	if err == nil {
		e.bus.Publish(eventbus.NewDocumentEvent(eventbus.OpCreateDoc, op.Collection, op.ID.String()))
	}
}

// applyUpdate performs the update without sending op.Result on failure, so
// Run can decide whether to retry.
func (e *Engine) applyUpdate(op *updateOp) error {
	coll, err := e.core.GetOrCreateCollection(op.Collection)
	if err != nil {
		return err
	}

	if err := coll.UpdateDocument(op.ID, op.Data, op.UpdatedAt); err != nil {
		return err
	}

	op.Result <- nil
	e.bus.Publish(eventbus.NewDocumentEvent(eventbus.OpUpdateDoc, op.Collection, op.ID.String()))

	return nil
}
