// Package driver is a thin TCP client for autumndb's client protocol
// (internal/wire), one connection per request, matching the server's
// "one request per connection" framing.
package driver

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net"
	"time"

	"github.com/autumndb/autumndb/internal/dberrors"
	"github.com/autumndb/autumndb/internal/fingerprint"
	"github.com/autumndb/autumndb/internal/wire"
)

// terminator ends every request frame, matching internal/server's framing.
const terminator = 0x00

// DefaultTimeout bounds both the dial and the round trip of one request.
const DefaultTimeout = 5 * time.Second

// Client talks to one autumndb node's client endpoint.
type Client struct {
	addr    string
	timeout time.Duration
}

// New returns a Client targeting addr (host:port), using DefaultTimeout.
func New(addr string) *Client {
	return &Client{addr: addr, timeout: DefaultTimeout}
}

// WithTimeout returns a copy of the client using the given per-request
// timeout instead of DefaultTimeout.
func (c *Client) WithTimeout(d time.Duration) *Client {
	return &Client{addr: c.addr, timeout: d}
}

// CreateDocument creates a new document in collection and returns its
// generated id.
func (c *Client) CreateDocument(collection string, data []byte) (fingerprint.DocumentID, error) {
	frame, err := wire.EncodeCreateDoc(collection, data)
	if err != nil {
		return "", err
	}

	reply, err := c.roundTrip(frame)
	if err != nil {
		return "", err
	}

	if !fingerprint.IsValid(string(reply)) {
		return "", fmt.Errorf("%w: create reply is not a document id: %q", dberrors.ErrProtocol, reply)
	}

	return fingerprint.DocumentID(reply), nil
}

// ReadDocument returns the current bytes of id in collection. A zero-length
// server reply is translated into dberrors.ErrDocumentMissing, since the
// wire protocol carries no other signal for "not found".
func (c *Client) ReadDocument(collection string, id fingerprint.DocumentID) ([]byte, error) {
	frame, err := wire.EncodeReadDoc(collection, id)
	if err != nil {
		return nil, err
	}

	reply, err := c.roundTrip(frame)
	if err != nil {
		return nil, err
	}

	body := stripTerminator(reply)

	if len(body) == 0 {
		return nil, dberrors.Wrap(dberrors.ErrDocumentMissing,
			dberrors.WithCollection(collection), dberrors.WithDocumentID(id.String()))
	}

	return body, nil
}

// stripTerminator removes the single trailing 0x00 byte internal/server
// always appends to a read reply, even when the body itself is empty, so
// the caller sees exactly the document bytes (or none).
func stripTerminator(reply []byte) []byte {
	if len(reply) == 0 || reply[len(reply)-1] != terminator {
		return reply
	}

	return reply[:len(reply)-1]
}

// UpdateDocument overwrites id's bytes in collection. The protocol is
// one-way: a nil error only means the request was sent and the connection
// closed cleanly, not that the update has been applied yet.
func (c *Client) UpdateDocument(collection string, id fingerprint.DocumentID, data []byte) error {
	frame, err := wire.EncodeUpdateDoc(collection, id, data)
	if err != nil {
		return err
	}

	_, err = c.roundTrip(frame)

	return err
}

// DeleteDocument removes id from collection. One-way, like UpdateDocument.
func (c *Client) DeleteDocument(collection string, id fingerprint.DocumentID) error {
	frame, err := wire.EncodeDeleteDoc(collection, id)
	if err != nil {
		return err
	}

	_, err = c.roundTrip(frame)

	return err
}

// DeleteCollection removes collection and all of its documents. One-way.
func (c *Client) DeleteCollection(collection string) error {
	frame, err := wire.EncodeDeleteCollection(collection)
	if err != nil {
		return err
	}

	_, err = c.roundTrip(frame)

	return err
}

// roundTrip dials, writes frame terminated by a 0x00 byte, and reads the
// response up to EOF.
func (c *Client) roundTrip(frame []byte) ([]byte, error) {
	conn, err := net.DialTimeout("tcp", c.addr, c.timeout)
	if err != nil {
		return nil, fmt.Errorf("%w: dial %s: %w", dberrors.ErrNetworkTimeout, c.addr, err)
	}
	defer conn.Close()

	deadline := time.Now().Add(c.timeout)
	if err := conn.SetDeadline(deadline); err != nil {
		return nil, err
	}

	if _, err := conn.Write(append(append([]byte(nil), frame...), terminator)); err != nil {
		return nil, fmt.Errorf("%w: write request: %w", dberrors.ErrProtocol, err)
	}

	var buf bytes.Buffer

	if _, err := io.Copy(&buf, conn); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: read reply: %w", dberrors.ErrProtocol, err)
	}

	return buf.Bytes(), nil
}
