package aae

import (
	"bytes"
	"errors"
	"net"
	"time"

	"github.com/autumndb/autumndb/internal/engine"
	"github.com/autumndb/autumndb/internal/obslog"
	"github.com/autumndb/autumndb/internal/wire"
)

// recvTimeout bounds every blocking socket read so both the responder and
// the document receiver can observe a stop request between datagrams or
// connections.
const recvTimeout = 200 * time.Millisecond

// Responder answers SENDING_SNAPSHOT checks from neighbors over UDP,
// spec.md §4.6(a).
type Responder struct {
	conn *net.UDPConn
	core *engine.Core
	stop chan struct{}
}

// NewResponder binds a UDP socket at ep and returns a Responder serving
// snapshot checks against core.
func NewResponder(ep Endpoint, core *engine.Core) (*Responder, error) {
	addr := &net.UDPAddr{IP: net.ParseIP(ep.Addr), Port: ep.Port}
	if addr.IP == nil {
		addr.IP = net.IPv4zero
	}

	conn, err := net.ListenUDP("udp", addr)
	if err != nil {
		return nil, err
	}

	return &Responder{conn: conn, core: core, stop: make(chan struct{})}, nil
}

// Close releases the responder's socket.
func (r *Responder) Close() error { return r.conn.Close() }

// Stop requests the responder loop to exit at its next timeout tick.
func (r *Responder) Stop() { close(r.stop) }

// Run services inbound snapshot checks until Stop is called. Any error
// processing one datagram is logged and the loop continues, matching
// spec.md §4.6's "responder's thread catches and logs any exception then
// resumes".
func (r *Responder) Run() {
	logger := obslog.WithComponent("aae.responder")
	buf := make([]byte, wire.SnapshotCheckBufferSize)

	for {
		select {
		case <-r.stop:
			return
		default:
		}

		if err := r.conn.SetReadDeadline(time.Now().Add(recvTimeout)); err != nil {
			logger.Warn().Err(err).Msg("set read deadline")
			continue
		}

		n, peer, err := r.conn.ReadFromUDP(buf)
		if err != nil {
			var netErr net.Error
			if errors.As(err, &netErr) && netErr.Timeout() {
				continue
			}

			logger.Warn().Err(err).Msg("read snapshot check")
			continue
		}

		if err := r.handle(buf[:n], peer); err != nil {
			logger.Warn().Err(err).Msg("handle snapshot check")
		}
	}
}

func (r *Responder) handle(payload []byte, peer *net.UDPAddr) error {
	check, err := wire.DecodeCheckSnapshot(payload)
	if err != nil {
		return err
	}

	coll, err := r.core.GetOrCreateCollection(check.Collection)
	if err != nil {
		return err
	}

	pair, ok := coll.GetSnapshot(check.DocumentID)
	if !ok {
		_, err := r.conn.WriteToUDP(wire.EncodeSendingTimestamp(wire.EpochSentinel), peer)
		return err
	}

	if bytes.Equal(pair.Bytes(), check.Snapshot.Bytes()) {
		_, err := r.conn.WriteToUDP(wire.EncodeTerminateSession(), peer)
		return err
	}

	localUpdatedAt, err := coll.GetUpdatedAt(check.DocumentID)
	if err != nil {
		return err
	}

	_, err = r.conn.WriteToUDP(wire.EncodeSendingTimestamp(localUpdatedAt), peer)

	return err
}
