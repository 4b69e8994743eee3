// Package server implements the client-facing TCP endpoint: one
// connection, one request, framed per internal/wire.
package server

import (
	"bytes"
	"errors"
	"io"
	"net"

	"github.com/autumndb/autumndb/internal/dberrors"
	"github.com/autumndb/autumndb/internal/engine"
	"github.com/autumndb/autumndb/internal/obslog"
	"github.com/autumndb/autumndb/internal/wire"
)

// readChunkSize matches the reference's one-byte-at-a-time recv loop
// closely enough to keep the zero-terminator framing convention legible,
// without actually paying for a syscall per byte.
const readChunkSize = 4096

// terminator ends every client request frame.
const terminator = 0x00

// Server is the single-threaded-per-connection TCP acceptor serving one
// client request per connection, spec.md §4.7.
type Server struct {
	listener *net.TCPListener
	engine   *engine.Engine
	core     *engine.Core
}

// New returns a Server bound to addr, dispatching requests onto eng and
// direct collection-lifecycle calls onto core.
func New(addr string, eng *engine.Engine, core *engine.Core) (*Server, error) {
	tcpAddr, err := net.ResolveTCPAddr("tcp", addr)
	if err != nil {
		return nil, err
	}

	listener, err := net.ListenTCP("tcp", tcpAddr)
	if err != nil {
		return nil, err
	}

	return &Server{listener: listener, engine: eng, core: core}, nil
}

// Addr returns the server's bound address.
func (s *Server) Addr() net.Addr { return s.listener.Addr() }

// Close releases the server's listener.
func (s *Server) Close() error { return s.listener.Close() }

// Run accepts connections forever, spawning one goroutine per connection —
// "one request per connection", not one goroutine-per-iteration on a
// shared socket.
func (s *Server) Run() error {
	logger := obslog.WithComponent("server")

	for {
		conn, err := s.listener.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return nil
			}

			logger.Warn().Err(err).Msg("accept")

			continue
		}

		go s.handle(conn)
	}
}

func (s *Server) handle(conn net.Conn) {
	defer conn.Close()

	logger := obslog.WithComponent("server")

	frame, err := readUntilTerminator(conn)
	if err != nil {
		logger.Warn().Err(err).Msg("read request")
		return
	}

	req, err := wire.DecodeClientRequest(frame)
	if err != nil {
		logger.Warn().Err(err).Msg("decode request")
		return
	}

	switch req.Op {
	case wire.OpCreateDoc:
		s.handleCreate(conn, req)
	case wire.OpReadDoc:
		s.handleRead(conn, req)
	case wire.OpUpdateDoc:
		s.handleUpdate(req)
	case wire.OpDeleteDoc:
		s.handleDelete(req)
	case wire.OpDeleteCollection:
		s.handleDeleteCollection(req)
	default:
		// Unknown opcodes were already rejected by DecodeClientRequest.
	}
}

func (s *Server) handleCreate(conn net.Conn, req wire.ClientRequest) {
	id, result := s.engine.SubmitCreate(req.Collection, req.Data)
	if err := <-result; err != nil {
		obslog.WithComponent("server").Warn().Err(err).Msg("create failed")
		return
	}

	_, _ = conn.Write([]byte(id.String()))
}

func (s *Server) handleRead(conn net.Conn, req wire.ClientRequest) {
	res := <-s.engine.SubmitRead(req.Collection, req.DocumentID)

	body := res.Data
	if res.Err != nil {
		if !errors.Is(res.Err, dberrors.ErrDocumentMissing) {
			obslog.WithComponent("server").Warn().Err(res.Err).Msg("read failed")
		}

		body = nil
	}

	_, _ = conn.Write(append(append([]byte(nil), body...), terminator))
}

func (s *Server) handleUpdate(req wire.ClientRequest) {
	// One-way: the client does not wait for a response body.
	<-s.engine.SubmitUpdate(req.Collection, req.DocumentID, req.Data)
}

func (s *Server) handleDelete(req wire.ClientRequest) {
	<-s.engine.SubmitDelete(req.Collection, req.DocumentID)
}

func (s *Server) handleDeleteCollection(req wire.ClientRequest) {
	if err := s.core.DeleteCollection(req.Collection); err != nil {
		obslog.WithComponent("server").Warn().Err(err).Msg("delete collection failed")
	}
}

// readUntilTerminator reads from conn until a 0x00 byte or EOF, returning
// everything read before the terminator.
func readUntilTerminator(conn net.Conn) ([]byte, error) {
	var buf bytes.Buffer

	chunk := make([]byte, readChunkSize)

	for {
		n, err := conn.Read(chunk)
		if n > 0 {
			if idx := bytes.IndexByte(chunk[:n], terminator); idx >= 0 {
				buf.Write(chunk[:idx])
				return buf.Bytes(), nil
			}

			buf.Write(chunk[:n])
		}

		if err != nil {
			if errors.Is(err, io.EOF) {
				return buf.Bytes(), nil
			}

			return nil, err
		}
	}
}
