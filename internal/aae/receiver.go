package aae

import (
	"errors"
	"io"
	"net"
	"time"

	"github.com/autumndb/autumndb/internal/engine"
	"github.com/autumndb/autumndb/internal/obslog"
	"github.com/autumndb/autumndb/internal/wire"
)

// Receiver accepts pushed documents from neighbors over TCP, one document
// per connection, EOF-terminated — spec.md §4.6(b).
type Receiver struct {
	listener *net.TCPListener
	core     *engine.Core
	stop     chan struct{}
}

// NewReceiver binds a TCP listener at ep and returns a Receiver applying
// pushed documents to core.
func NewReceiver(ep Endpoint, core *engine.Core) (*Receiver, error) {
	addr := &net.TCPAddr{IP: net.ParseIP(ep.Addr), Port: ep.Port}
	if addr.IP == nil {
		addr.IP = net.IPv4zero
	}

	listener, err := net.ListenTCP("tcp", addr)
	if err != nil {
		return nil, err
	}

	return &Receiver{listener: listener, core: core, stop: make(chan struct{})}, nil
}

// Close releases the receiver's listener.
func (r *Receiver) Close() error { return r.listener.Close() }

// Stop requests the receiver loop to exit at its next accept timeout.
func (r *Receiver) Stop() { close(r.stop) }

// Run accepts connections until Stop is called, applying each pushed
// document sequentially, matching spec.md's single document-receiver loop.
func (r *Receiver) Run() {
	logger := obslog.WithComponent("aae.receiver")

	for {
		select {
		case <-r.stop:
			return
		default:
		}

		if err := r.listener.SetDeadline(time.Now().Add(recvTimeout)); err != nil {
			logger.Warn().Err(err).Msg("set accept deadline")
			continue
		}

		conn, err := r.listener.Accept()
		if err != nil {
			var netErr net.Error
			if errors.As(err, &netErr) && netErr.Timeout() {
				continue
			}

			logger.Warn().Err(err).Msg("accept")
			continue
		}

		if err := r.handle(conn); err != nil {
			logger.Warn().Err(err).Msg("handle pushed document")
		}
	}
}

func (r *Receiver) handle(conn net.Conn) error {
	defer conn.Close()

	data, err := io.ReadAll(conn)
	if err != nil {
		return err
	}

	push, err := wire.DecodeDocumentPush(data)
	if err != nil {
		return err
	}

	return r.applyPush(push)
}

// applyPush implements the reference's on_received_doc: create if absent,
// otherwise update only if the pushed timestamp is strictly newer.
func (r *Receiver) applyPush(push wire.DocumentPush) error {
	coll, err := r.core.GetOrCreateCollection(push.Collection)
	if err != nil {
		return err
	}

	exists, err := coll.DocumentExists(push.DocumentID)
	if err != nil {
		return err
	}

	if !exists {
		return coll.CreateDocument(push.DocumentID, push.Data, push.UpdatedAt)
	}

	localUpdatedAt, err := coll.GetUpdatedAt(push.DocumentID)
	if err != nil {
		return err
	}

	if !push.UpdatedAt.After(localUpdatedAt) {
		return nil
	}

	return coll.UpdateDocument(push.DocumentID, push.Data, push.UpdatedAt)
}
