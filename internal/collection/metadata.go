package collection

import (
	"encoding/json"
	"fmt"

	"github.com/autumndb/autumndb/internal/dberrors"
	"github.com/autumndb/autumndb/internal/fingerprint"
)

// metadata is the small JSON record stored alongside every document.
type metadata struct {
	UpdatedAt string `json:"updated_at"`
	IsFrozen  bool   `json:"is_frozen"`
}

func newMetadata(id fingerprint.DocumentID) metadata {
	return metadata{UpdatedAt: id.String(), IsFrozen: false}
}

func encodeMetadata(m metadata) ([]byte, error) {
	b, err := json.Marshal(m)
	if err != nil {
		return nil, dberrors.Wrap(fmt.Errorf("encode metadata: %w", err))
	}

	return b, nil
}

func decodeMetadata(b []byte) (metadata, error) {
	var m metadata

	if err := json.Unmarshal(b, &m); err != nil {
		return metadata{}, dberrors.Wrap(fmt.Errorf("decode metadata: %w: %w", dberrors.ErrInvalidDocument, err))
	}

	return m, nil
}
