package wire

import (
	"testing"

	"github.com/autumndb/autumndb/internal/fingerprint"
)

func Test_EncodeDecode_CreateDoc_RoundTrips(t *testing.T) {
	frame, err := EncodeCreateDoc("people", []byte(`{"name":"ada"}`))
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	req, err := DecodeClientRequest(frame)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}

	if req.Op != OpCreateDoc || req.Collection != "people" || string(req.Data) != `{"name":"ada"}` {
		t.Fatalf("req=%+v", req)
	}
}

func Test_EncodeDecode_UpdateDoc_RoundTrips(t *testing.T) {
	id := fingerprint.NewDocumentID()

	frame, err := EncodeUpdateDoc("people", id, []byte(`{"v":2}`))
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	req, err := DecodeClientRequest(frame)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}

	if req.Op != OpUpdateDoc || req.Collection != "people" || req.DocumentID != id || string(req.Data) != `{"v":2}` {
		t.Fatalf("req=%+v", req)
	}
}

func Test_EncodeDecode_ReadDoc_And_DeleteDoc(t *testing.T) {
	id := fingerprint.NewDocumentID()

	readFrame, err := EncodeReadDoc("people", id)
	if err != nil {
		t.Fatalf("encode read: %v", err)
	}

	req, err := DecodeClientRequest(readFrame)
	if err != nil {
		t.Fatalf("decode read: %v", err)
	}

	if req.Op != OpReadDoc || req.DocumentID != id {
		t.Fatalf("req=%+v", req)
	}

	deleteFrame, err := EncodeDeleteDoc("people", id)
	if err != nil {
		t.Fatalf("encode delete: %v", err)
	}

	req, err = DecodeClientRequest(deleteFrame)
	if err != nil {
		t.Fatalf("decode delete: %v", err)
	}

	if req.Op != OpDeleteDoc || req.DocumentID != id {
		t.Fatalf("req=%+v", req)
	}
}

func Test_DecodeClientRequest_RejectsUnknownOpcode(t *testing.T) {
	_, err := DecodeClientRequest([]byte{99, 1, 'a'})
	if err == nil {
		t.Fatalf("expected error for unknown opcode")
	}
}

func Test_EncodeCollectionName_RejectsEmptyAndOversized(t *testing.T) {
	if _, err := EncodeCollectionName(""); err == nil {
		t.Fatalf("expected error for empty name")
	}

	oversized := make([]byte, 256)
	for i := range oversized {
		oversized[i] = 'a'
	}

	if _, err := EncodeCollectionName(string(oversized)); err == nil {
		t.Fatalf("expected error for oversized name")
	}
}
