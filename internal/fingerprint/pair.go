package fingerprint

import "github.com/autumndb/autumndb/internal/dberrors"

// PairSize is the combined length, in bytes, of an SBF digest and a PH2
// digest: the 14-byte summary AAE compares between replicas.
const PairSize = 8 + 6

// Pair is the (SBF, PH2) fingerprint AAE uses to decide whether two
// replicas of a document are likely identical.
type Pair struct {
	SBF [8]byte
	PH2 [6]byte
}

// Compute canonicalizes doc and returns its fingerprint pair.
func Compute(doc []byte) (Pair, error) {
	canon, err := Canonicalize(doc)
	if err != nil {
		return Pair{}, err
	}

	sbf := NewSBF()
	if _, err := sbf.Write(canon); err != nil {
		return Pair{}, err
	}

	ph2 := NewPH2()
	if _, err := ph2.Write(canon); err != nil {
		return Pair{}, err
	}

	return Pair{SBF: sbf.Digest(), PH2: ph2.Digest()}, nil
}

// Bytes renders the pair as the 14-byte wire form: SBF followed by PH2.
func (p Pair) Bytes() []byte {
	out := make([]byte, 0, PairSize)
	out = append(out, p.SBF[:]...)
	out = append(out, p.PH2[:]...)

	return out
}

// Equal reports whether two pairs are byte-identical.
func (p Pair) Equal(other Pair) bool {
	return p.SBF == other.SBF && p.PH2 == other.PH2
}

// ParsePair decodes the 14-byte wire form produced by Bytes.
func ParsePair(b []byte) (Pair, error) {
	if len(b) != PairSize {
		return Pair{}, dberrors.ErrProtocol
	}

	var p Pair

	copy(p.SBF[:], b[:8])
	copy(p.PH2[:], b[8:])

	return p, nil
}
