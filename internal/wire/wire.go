// Package wire implements the byte-level framing shared by the client
// endpoint and Active Anti-Entropy: big-endian length-prefixed collection
// names, fixed-width document ids and timestamps, and the small set of
// opcodes both protocols switch on.
package wire

import (
	"fmt"

	"github.com/autumndb/autumndb/internal/dberrors"
	"github.com/autumndb/autumndb/internal/fingerprint"
)

// Client protocol opcodes. Values match the document/collection operation
// codes the event bus publishes under, so a received opcode can be used
// directly as an eventbus.Op.
const (
	OpCreateDoc        byte = 1
	OpUpdateDoc        byte = 2
	OpDeleteDoc        byte = 3
	OpReadDoc          byte = 4
	OpCreateCollection byte = 11
	OpDeleteCollection byte = 12
)

// AAE opcodes.
const (
	AAETerminateSession byte = 0
	AAESendingSnapshot  byte = 1
	AAESendingTimestamp byte = 2
)

const (
	// CollectionNameLenBytes is the width of a collection name's length
	// prefix; a name may be 1-255 UTF-8 bytes.
	CollectionNameLenBytes = 1
	// DocumentIDLen is the fixed width of an encoded document id.
	DocumentIDLen = fingerprint.Length
	// SnapshotLen is the fixed width of a serialized fingerprint pair.
	SnapshotLen = fingerprint.PairSize
	// SnapshotCheckBufferSize is the receive buffer size for an
	// AAESendingSnapshot datagram: opcode + 1-byte len + up to 255-byte name
	// + 26-byte doc id + 14-byte snapshot, so a check for any valid
	// collection name fits without truncation.
	SnapshotCheckBufferSize = 1 + CollectionNameLenBytes + 255 + DocumentIDLen + SnapshotLen
	// SnapshotReplyBufferSize is the receive buffer for the responder's
	// reply: opcode + up to a 26-byte timestamp.
	SnapshotReplyBufferSize = 48
)

// EncodeCollectionName returns the length-prefixed wire form of name.
// Fails if name is empty or longer than 255 UTF-8 bytes.
func EncodeCollectionName(name string) ([]byte, error) {
	b := []byte(name)
	if len(b) == 0 || len(b) > 255 {
		return nil, dberrors.Wrap(fmt.Errorf("collection name length %d out of range 1-255", len(b)))
	}

	out := make([]byte, 0, CollectionNameLenBytes+len(b))
	out = append(out, byte(len(b)))
	out = append(out, b...)

	return out, nil
}

// DecodeCollectionName reads a length-prefixed collection name from the
// front of buf, returning the name and the number of bytes consumed.
func DecodeCollectionName(buf []byte) (string, int, error) {
	if len(buf) < CollectionNameLenBytes {
		return "", 0, dberrors.Wrap(fmt.Errorf("%w: truncated collection name length", dberrors.ErrProtocol))
	}

	n := int(buf[0])
	total := CollectionNameLenBytes + n

	if len(buf) < total {
		return "", 0, dberrors.Wrap(fmt.Errorf("%w: truncated collection name", dberrors.ErrProtocol))
	}

	return string(buf[CollectionNameLenBytes:total]), total, nil
}

// DecodeDocumentID reads a fixed-width document id from the front of buf.
func DecodeDocumentID(buf []byte) (fingerprint.DocumentID, int, error) {
	if len(buf) < DocumentIDLen {
		return "", 0, dberrors.Wrap(fmt.Errorf("%w: truncated document id", dberrors.ErrProtocol))
	}

	id, err := fingerprint.ParseDocumentID(string(buf[:DocumentIDLen]))
	if err != nil {
		return "", 0, dberrors.Wrap(fmt.Errorf("%w: %w", dberrors.ErrProtocol, err))
	}

	return id, DocumentIDLen, nil
}
