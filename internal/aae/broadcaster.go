package aae

import (
	"net"
	"time"

	"github.com/autumndb/autumndb/internal/collection"
	"github.com/autumndb/autumndb/internal/engine"
	"github.com/autumndb/autumndb/internal/eventbus"
	"github.com/autumndb/autumndb/internal/fingerprint"
	"github.com/autumndb/autumndb/internal/obslog"
	"github.com/autumndb/autumndb/internal/wire"
)

const eventQueueCapacity = 4096

// sweepIdleDelay keeps an empty sweep (no collections or no neighbors) from
// spinning the broadcaster goroutine at full CPU.
const sweepIdleDelay = 50 * time.Millisecond

// Broadcaster is the AAE event-driven-plus-sweeper worker of spec.md
// §4.6(c). It subscribes to the engine's CREATE_DOC/UPDATE_DOC events,
// coalesces them by document id, and pushes documents straight to every
// neighbor's document receiver; when idle it sweeps every known (doc,
// neighbor) pair via the snapshot-check handshake.
type Broadcaster struct {
	eng       *engine.Engine
	neighbors []NodeConfig
	events    chan eventbus.DocumentEvent
	stop      chan struct{}
}

// NewBroadcaster returns a Broadcaster driven by eng's event bus and
// reconciling against neighbors.
func NewBroadcaster(eng *engine.Engine, neighbors []NodeConfig) *Broadcaster {
	b := &Broadcaster{
		eng:       eng,
		neighbors: neighbors,
		events:    make(chan eventbus.DocumentEvent, eventQueueCapacity),
		stop:      make(chan struct{}),
	}

	eng.EventBus().Subscribe(eventbus.OpCreateDoc, b.onEvent)
	eng.EventBus().Subscribe(eventbus.OpUpdateDoc, b.onEvent)

	return b
}

// Stop requests the broadcaster loop to exit at its next iteration.
func (b *Broadcaster) Stop() { close(b.stop) }

func (b *Broadcaster) onEvent(e eventbus.Event) {
	docEvent, ok := e.(eventbus.DocumentEvent)
	if !ok {
		return
	}

	select {
	case b.events <- docEvent:
	default:
		obslog.WithComponent("aae.broadcaster").Warn().Msg("event queue full, dropping event")
	}
}

// Run drives the event-driven-plus-sweep loop until Stop is called. Each
// iteration-level error is logged and the loop retries, matching spec.md
// §4.6's "broadcaster catches and logs any iteration-level exception then
// retries".
func (b *Broadcaster) Run() {
	logger := obslog.WithComponent("aae.broadcaster")

	for {
		select {
		case <-b.stop:
			return
		default:
		}

		func() {
			defer func() {
				if r := recover(); r != nil {
					logger.Warn().Interface("panic", r).Msg("broadcaster iteration panicked")
				}
			}()

			b.iteration()
		}()
	}
}

func (b *Broadcaster) iteration() {
	if b.drainQueue() {
		return
	}

	names := b.eng.Core().Collections()
	if len(names) == 0 || len(b.neighbors) == 0 {
		time.Sleep(sweepIdleDelay)
		return
	}

	for _, name := range names {
		coll, err := b.eng.Core().GetOrCreateCollection(name)
		if err != nil {
			continue
		}

		for _, docID := range coll.DocIDs() {
			if len(b.events) > 0 {
				return
			}

			id, err := fingerprint.ParseDocumentID(docID)
			if err != nil {
				continue
			}

			b.sweepOne(coll, id)
		}
	}
}

// drainQueue empties the event queue, keeping only the latest event per
// document id, and pushes each coalesced document. Returns true if it
// processed at least one event.
func (b *Broadcaster) drainQueue() bool {
	latest := make(map[string]eventbus.DocumentEvent)

loop:
	for {
		select {
		case ev := <-b.events:
			latest[ev.DocumentID()] = ev
		default:
			break loop
		}
	}

	if len(latest) == 0 {
		return false
	}

	for _, ev := range latest {
		coll, err := b.eng.Core().GetOrCreateCollection(ev.Collection())
		if err != nil {
			continue
		}

		id, err := fingerprint.ParseDocumentID(ev.DocumentID())
		if err != nil {
			continue
		}

		b.pushDocument(coll, id)
	}

	return true
}

// pushDocument reads id's document and metadata under the collection lock
// and pushes it to every neighbor's document receiver, bypassing the
// fingerprint handshake since the caller just wrote this document locally.
func (b *Broadcaster) pushDocument(coll *collection.Collection, id fingerprint.DocumentID) {
	data, updatedAt, err := coll.ReadDocumentWithUpdatedAt(id)
	if err != nil {
		return
	}

	for _, neighbor := range b.neighbors {
		b.sendDocument(neighbor.DocumentReceiver, coll.Name(), id, updatedAt, data)
	}
}

func (b *Broadcaster) sendDocument(ep Endpoint, collectionName string, id fingerprint.DocumentID, updatedAt time.Time, data []byte) {
	frame, err := wire.EncodeDocumentPush(collectionName, id, updatedAt, data)
	if err != nil {
		return
	}

	conn, err := net.DialTimeout("tcp", ep.String(), recvTimeout)
	if err != nil {
		return
	}
	defer conn.Close()

	_, _ = conn.Write(frame)
}

// sweepOne runs one independent (doc, neighbor) reconciliation attempt
// against every neighbor: Idle -> SentCheck -> {TimestampReceived |
// Terminated | Timeout}.
func (b *Broadcaster) sweepOne(coll *collection.Collection, id fingerprint.DocumentID) {
	snapshot, ok := coll.GetSnapshot(id)
	if !ok {
		return
	}

	for _, neighbor := range b.neighbors {
		b.reconcile(neighbor, coll, id, snapshot)
	}
}

func (b *Broadcaster) reconcile(neighbor NodeConfig, coll *collection.Collection, id fingerprint.DocumentID, snapshot fingerprint.Pair) {
	frame, err := wire.EncodeCheckSnapshot(coll.Name(), id, snapshot)
	if err != nil {
		return
	}

	conn, err := net.DialTimeout("udp", neighbor.SnapshotReceiver.String(), recvTimeout)
	if err != nil {
		return
	}
	defer conn.Close()

	if _, err := conn.Write(frame); err != nil {
		return
	}

	if err := conn.SetReadDeadline(time.Now().Add(recvTimeout)); err != nil {
		return
	}

	buf := make([]byte, wire.SnapshotReplyBufferSize)

	n, err := conn.Read(buf)
	if err != nil {
		return // Timeout: skip this neighbor for this round.
	}

	op, peerUpdatedAt, err := wire.DecodeSnapshotReply(buf[:n])
	if err != nil {
		return
	}

	if op == wire.AAETerminateSession {
		return
	}

	localUpdatedAt, err := coll.GetUpdatedAt(id)
	if err != nil {
		return
	}

	if !localUpdatedAt.After(peerUpdatedAt) {
		return
	}

	data, updatedAt, err := coll.ReadDocumentWithUpdatedAt(id)
	if err != nil {
		return
	}

	b.sendDocument(neighbor.DocumentReceiver, coll.Name(), id, updatedAt, data)
}
