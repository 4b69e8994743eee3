package wire

import (
	"testing"
	"time"

	"github.com/autumndb/autumndb/internal/fingerprint"
)

func Test_EncodeDecode_CheckSnapshot_RoundTrips(t *testing.T) {
	id := fingerprint.NewDocumentID()

	pair, err := fingerprint.Compute([]byte(`{"x":1}`))
	if err != nil {
		t.Fatalf("compute: %v", err)
	}

	frame, err := EncodeCheckSnapshot("people", id, pair)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	got, err := DecodeCheckSnapshot(frame)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}

	if got.Collection != "people" || got.DocumentID != id || !got.Snapshot.Equal(pair) {
		t.Fatalf("got=%+v", got)
	}
}

func Test_DecodeSnapshotReply_Terminate(t *testing.T) {
	op, _, err := DecodeSnapshotReply(EncodeTerminateSession())
	if err != nil {
		t.Fatalf("decode: %v", err)
	}

	if op != AAETerminateSession {
		t.Fatalf("op=%d", op)
	}
}

func Test_DecodeSnapshotReply_Timestamp_RoundTrips(t *testing.T) {
	want := time.Date(2024, 5, 1, 10, 30, 0, 0, time.UTC)

	op, got, err := DecodeSnapshotReply(EncodeSendingTimestamp(want))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}

	if op != AAESendingTimestamp {
		t.Fatalf("op=%d", op)
	}

	if !got.Equal(want) {
		t.Fatalf("got=%v, want=%v", got, want)
	}
}

func Test_EncodeDecode_DocumentPush_RoundTrips(t *testing.T) {
	id := fingerprint.NewDocumentID()
	updatedAt := time.Date(2024, 5, 1, 10, 30, 0, 0, time.UTC)

	frame, err := EncodeDocumentPush("people", id, updatedAt, []byte(`{"x":1}`))
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	got, err := DecodeDocumentPush(frame)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}

	if got.Collection != "people" || got.DocumentID != id || !got.UpdatedAt.Equal(updatedAt) || string(got.Data) != `{"x":1}` {
		t.Fatalf("got=%+v", got)
	}
}

func Test_EpochSentinel_Matches_DocumentID_Sentinel(t *testing.T) {
	if fingerprint.FromTime(EpochSentinel).String() != string(fingerprint.EpochSentinel) {
		t.Fatalf("EpochSentinel does not match fingerprint.EpochSentinel")
	}
}
