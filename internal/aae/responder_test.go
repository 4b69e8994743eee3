package aae

import (
	"net"
	"testing"
	"time"

	"github.com/autumndb/autumndb/internal/engine"
	"github.com/autumndb/autumndb/internal/eventbus"
	"github.com/autumndb/autumndb/internal/fingerprint"
	"github.com/autumndb/autumndb/internal/storefs"
	"github.com/autumndb/autumndb/internal/wire"
)

func newTestCore(t *testing.T) *engine.Core {
	t.Helper()

	core, err := engine.NewCore(storefs.NewMem(), "/db")
	if err != nil {
		t.Fatalf("new core: %v", err)
	}

	return core
}

func udpEndpointOf(t *testing.T, conn *net.UDPConn) Endpoint {
	t.Helper()

	addr := conn.LocalAddr().(*net.UDPAddr)

	return Endpoint{Addr: "127.0.0.1", Port: addr.Port}
}

func Test_Responder_Replies_EpochSentinel_When_Document_Unknown(t *testing.T) {
	core := newTestCore(t)

	responder, err := NewResponder(Endpoint{Addr: "127.0.0.1", Port: 0}, core)
	if err != nil {
		t.Fatalf("new responder: %v", err)
	}
	defer responder.Close()

	go responder.Run()
	defer responder.Stop()

	ep := udpEndpointOf(t, responder.conn)

	client, err := net.DialUDP("udp", nil, &net.UDPAddr{IP: net.ParseIP("127.0.0.1"), Port: ep.Port})
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer client.Close()

	id := fingerprint.NewDocumentID()

	pair, err := fingerprint.Compute([]byte(`{}`))
	if err != nil {
		t.Fatalf("compute: %v", err)
	}

	frame, err := wire.EncodeCheckSnapshot("people", id, pair)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	if _, err := client.Write(frame); err != nil {
		t.Fatalf("write: %v", err)
	}

	client.SetReadDeadline(time.Now().Add(2 * time.Second))

	buf := make([]byte, wire.SnapshotReplyBufferSize)

	n, err := client.Read(buf)
	if err != nil {
		t.Fatalf("read: %v", err)
	}

	op, ts, err := wire.DecodeSnapshotReply(buf[:n])
	if err != nil {
		t.Fatalf("decode reply: %v", err)
	}

	if op != wire.AAESendingTimestamp || !ts.Equal(wire.EpochSentinel) {
		t.Fatalf("op=%d ts=%v", op, ts)
	}
}

func Test_Responder_Replies_Terminate_When_Snapshot_Matches(t *testing.T) {
	core := newTestCore(t)

	eng := engine.New(core, eventbus.New())
	go eng.Run()
	defer eng.Stop()

	id, errCh := eng.SubmitCreate("people", []byte(`{"v":1}`))
	if err := <-errCh; err != nil {
		t.Fatalf("create: %v", err)
	}

	time.Sleep(20 * time.Millisecond)

	coll, err := core.GetOrCreateCollection("people")
	if err != nil {
		t.Fatalf("get collection: %v", err)
	}

	pair, ok := coll.GetSnapshot(id)
	if !ok {
		t.Fatalf("snapshot missing")
	}

	responder, err := NewResponder(Endpoint{Addr: "127.0.0.1", Port: 0}, core)
	if err != nil {
		t.Fatalf("new responder: %v", err)
	}
	defer responder.Close()

	go responder.Run()
	defer responder.Stop()

	ep := udpEndpointOf(t, responder.conn)

	client, err := net.DialUDP("udp", nil, &net.UDPAddr{IP: net.ParseIP("127.0.0.1"), Port: ep.Port})
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer client.Close()

	frame, err := wire.EncodeCheckSnapshot("people", id, pair)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	if _, err := client.Write(frame); err != nil {
		t.Fatalf("write: %v", err)
	}

	client.SetReadDeadline(time.Now().Add(2 * time.Second))

	buf := make([]byte, wire.SnapshotReplyBufferSize)

	n, err := client.Read(buf)
	if err != nil {
		t.Fatalf("read: %v", err)
	}

	if buf[0] != wire.AAETerminateSession || n != 1 {
		t.Fatalf("reply=%v", buf[:n])
	}
}
