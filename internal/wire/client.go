package wire

import (
	"fmt"

	"github.com/autumndb/autumndb/internal/dberrors"
	"github.com/autumndb/autumndb/internal/fingerprint"
)

// EncodeCreateDoc builds the client wire frame for a create request:
// |opcode|name-len|name|data|.
func EncodeCreateDoc(collection string, data []byte) ([]byte, error) {
	name, err := EncodeCollectionName(collection)
	if err != nil {
		return nil, err
	}

	out := make([]byte, 0, 1+len(name)+len(data))
	out = append(out, OpCreateDoc)
	out = append(out, name...)
	out = append(out, data...)

	return out, nil
}

// EncodeReadDoc builds the client wire frame for a read request:
// |opcode|name-len|name|doc-id|.
func EncodeReadDoc(collection string, id fingerprint.DocumentID) ([]byte, error) {
	name, err := EncodeCollectionName(collection)
	if err != nil {
		return nil, err
	}

	out := make([]byte, 0, 1+len(name)+DocumentIDLen)
	out = append(out, OpReadDoc)
	out = append(out, name...)
	out = append(out, []byte(id.String())...)

	return out, nil
}

// EncodeUpdateDoc builds the client wire frame for an update request:
// |opcode|name-len|name|doc-id|data|.
func EncodeUpdateDoc(collection string, id fingerprint.DocumentID, data []byte) ([]byte, error) {
	name, err := EncodeCollectionName(collection)
	if err != nil {
		return nil, err
	}

	out := make([]byte, 0, 1+len(name)+DocumentIDLen+len(data))
	out = append(out, OpUpdateDoc)
	out = append(out, name...)
	out = append(out, []byte(id.String())...)
	out = append(out, data...)

	return out, nil
}

// EncodeDeleteDoc builds the client wire frame for a delete request:
// |opcode|name-len|name|doc-id|.
func EncodeDeleteDoc(collection string, id fingerprint.DocumentID) ([]byte, error) {
	name, err := EncodeCollectionName(collection)
	if err != nil {
		return nil, err
	}

	out := make([]byte, 0, 1+len(name)+DocumentIDLen)
	out = append(out, OpDeleteDoc)
	out = append(out, name...)
	out = append(out, []byte(id.String())...)

	return out, nil
}

// EncodeDeleteCollection builds the client wire frame for a collection
// delete request: |opcode|name-len|name|.
func EncodeDeleteCollection(collection string) ([]byte, error) {
	name, err := EncodeCollectionName(collection)
	if err != nil {
		return nil, err
	}

	out := make([]byte, 0, 1+len(name))
	out = append(out, OpDeleteCollection)
	out = append(out, name...)

	return out, nil
}

// ClientRequest is a parsed, opcode-dispatched client frame, with fields
// populated according to which opcode it carries.
type ClientRequest struct {
	Op         byte
	Collection string
	DocumentID fingerprint.DocumentID
	Data       []byte
}

// DecodeClientRequest parses a full client frame (opcode already stripped
// of its trailing 0x00 terminator by the caller's framing loop). The opcode
// is read into a local byte once, then dispatched through a single switch —
// there is no cascading if-chain that could rebind which branch runs.
func DecodeClientRequest(buf []byte) (ClientRequest, error) {
	if len(buf) < 1 {
		return ClientRequest{}, dberrors.Wrap(fmt.Errorf("%w: empty frame", dberrors.ErrProtocol))
	}

	op := buf[0]
	rest := buf[1:]

	switch op {
	case OpCreateDoc:
		name, n, err := DecodeCollectionName(rest)
		if err != nil {
			return ClientRequest{}, err
		}

		return ClientRequest{Op: op, Collection: name, Data: rest[n:]}, nil

	case OpReadDoc, OpDeleteDoc:
		name, n, err := DecodeCollectionName(rest)
		if err != nil {
			return ClientRequest{}, err
		}

		rest = rest[n:]

		id, _, err := DecodeDocumentID(rest)
		if err != nil {
			return ClientRequest{}, err
		}

		return ClientRequest{Op: op, Collection: name, DocumentID: id}, nil

	case OpUpdateDoc:
		name, n, err := DecodeCollectionName(rest)
		if err != nil {
			return ClientRequest{}, err
		}

		rest = rest[n:]

		id, n, err := DecodeDocumentID(rest)
		if err != nil {
			return ClientRequest{}, err
		}

		return ClientRequest{Op: op, Collection: name, DocumentID: id, Data: rest[n:]}, nil

	case OpDeleteCollection:
		name, _, err := DecodeCollectionName(rest)
		if err != nil {
			return ClientRequest{}, err
		}

		return ClientRequest{Op: op, Collection: name}, nil

	default:
		return ClientRequest{}, dberrors.Wrap(fmt.Errorf("%w: unknown opcode %d", dberrors.ErrProtocol, op))
	}
}
