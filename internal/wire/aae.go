package wire

import (
	"fmt"
	"time"

	"github.com/autumndb/autumndb/internal/dberrors"
	"github.com/autumndb/autumndb/internal/fingerprint"
)

// EpochSentinel is the local time.Time value sent back by the snapshot
// responder when it has no copy of a requested document, forcing the peer
// to consider its own copy newer.
var EpochSentinel = time.Unix(0, 0).UTC()

// EncodeCheckSnapshot builds an AAESendingSnapshot datagram:
// |opcode|name-len|name|doc-id|snapshot(14)|.
func EncodeCheckSnapshot(collection string, id fingerprint.DocumentID, snapshot fingerprint.Pair) ([]byte, error) {
	name, err := EncodeCollectionName(collection)
	if err != nil {
		return nil, err
	}

	out := make([]byte, 0, 1+len(name)+DocumentIDLen+SnapshotLen)
	out = append(out, AAESendingSnapshot)
	out = append(out, name...)
	out = append(out, []byte(id.String())...)
	out = append(out, snapshot.Bytes()...)

	return out, nil
}

// CheckSnapshot is a parsed AAESendingSnapshot datagram.
type CheckSnapshot struct {
	Collection string
	DocumentID fingerprint.DocumentID
	Snapshot   fingerprint.Pair
}

// DecodeCheckSnapshot parses a full AAESendingSnapshot datagram, including
// its leading opcode byte.
func DecodeCheckSnapshot(buf []byte) (CheckSnapshot, error) {
	if len(buf) < 1 || buf[0] != AAESendingSnapshot {
		return CheckSnapshot{}, dberrors.Wrap(fmt.Errorf("%w: not a snapshot check", dberrors.ErrProtocol))
	}

	rest := buf[1:]

	name, n, err := DecodeCollectionName(rest)
	if err != nil {
		return CheckSnapshot{}, err
	}

	rest = rest[n:]

	id, n, err := DecodeDocumentID(rest)
	if err != nil {
		return CheckSnapshot{}, err
	}

	rest = rest[n:]

	pair, err := fingerprint.ParsePair(rest)
	if err != nil {
		return CheckSnapshot{}, dberrors.Wrap(fmt.Errorf("%w: %w", dberrors.ErrProtocol, err))
	}

	return CheckSnapshot{Collection: name, DocumentID: id, Snapshot: pair}, nil
}

// EncodeTerminateSession builds the responder's "in sync" reply: the bare
// opcode, no payload.
func EncodeTerminateSession() []byte {
	return []byte{AAETerminateSession}
}

// EncodeSendingTimestamp builds the responder's "here is my updated_at"
// reply: |opcode|timestamp(26)|.
func EncodeSendingTimestamp(t time.Time) []byte {
	out := make([]byte, 0, 1+DocumentIDLen)
	out = append(out, AAESendingTimestamp)
	out = append(out, []byte(fingerprint.FromTime(t).String())...)

	return out
}

// DecodeSnapshotReply parses the responder's reply to a check-snapshot
// request: either a bare terminate opcode or an opcode plus timestamp.
func DecodeSnapshotReply(buf []byte) (op byte, timestamp time.Time, err error) {
	if len(buf) < 1 {
		return 0, time.Time{}, dberrors.Wrap(fmt.Errorf("%w: empty snapshot reply", dberrors.ErrProtocol))
	}

	op = buf[0]

	switch op {
	case AAETerminateSession:
		return op, time.Time{}, nil

	case AAESendingTimestamp:
		id, _, err := DecodeDocumentID(buf[1:])
		if err != nil {
			return 0, time.Time{}, err
		}

		t, err := id.Time()
		if err != nil {
			return 0, time.Time{}, dberrors.Wrap(fmt.Errorf("%w: %w", dberrors.ErrProtocol, err))
		}

		return op, t, nil

	default:
		return 0, time.Time{}, dberrors.Wrap(fmt.Errorf("%w: unknown snapshot reply opcode %d", dberrors.ErrProtocol, op))
	}
}

// EncodeDocumentPush builds a document-receiver push frame:
// |name-len|name|doc-id(26)|updated-at(26)|document-bytes|.
func EncodeDocumentPush(collection string, id fingerprint.DocumentID, updatedAt time.Time, data []byte) ([]byte, error) {
	name, err := EncodeCollectionName(collection)
	if err != nil {
		return nil, err
	}

	out := make([]byte, 0, len(name)+DocumentIDLen+DocumentIDLen+len(data))
	out = append(out, name...)
	out = append(out, []byte(id.String())...)
	out = append(out, []byte(fingerprint.FromTime(updatedAt).String())...)
	out = append(out, data...)

	return out, nil
}

// DocumentPush is a parsed document-receiver push frame.
type DocumentPush struct {
	Collection string
	DocumentID fingerprint.DocumentID
	UpdatedAt  time.Time
	Data       []byte
}

// DecodeDocumentPush parses a full document-receiver push frame.
func DecodeDocumentPush(buf []byte) (DocumentPush, error) {
	name, n, err := DecodeCollectionName(buf)
	if err != nil {
		return DocumentPush{}, err
	}

	rest := buf[n:]

	id, n, err := DecodeDocumentID(rest)
	if err != nil {
		return DocumentPush{}, err
	}

	rest = rest[n:]

	updatedAtID, n, err := DecodeDocumentID(rest)
	if err != nil {
		return DocumentPush{}, err
	}

	updatedAt, err := updatedAtID.Time()
	if err != nil {
		return DocumentPush{}, dberrors.Wrap(fmt.Errorf("%w: %w", dberrors.ErrProtocol, err))
	}

	data := rest[n:]

	return DocumentPush{Collection: name, DocumentID: id, UpdatedAt: updatedAt, Data: data}, nil
}
