// Package fingerprint implements the two pure fingerprint algorithms used by
// Active Anti-Entropy (SBF and PH2), the canonical byte form they both
// consume, and the 26-character document-id/timestamp type shared by the
// storage layer and the wire protocol.
package fingerprint

import (
	"regexp"
	"strings"
	"time"

	"github.com/autumndb/autumndb/internal/dberrors"
)

// Length is the fixed length, in bytes, of a DocumentID's string form.
const Length = 26

// layout is the Go reference-time layout for a DocumentID, using a literal
// dot where the wire format uses an underscore; Go's layout syntax has no
// way to place an underscore directly in front of a fractional-second
// field, so Format/Parse swap the single dot for an underscore themselves.
const layout = "2006_01_02_15_04_05.000000"

var idPattern = regexp.MustCompile(`^\d{4}(_\d{2}){5}_\d{6}$`)

// DocumentID is the 26-character UTC timestamp string described by the
// specification: both a document's primary key and, reused verbatim, the
// format of a metadata record's updated_at field.
type DocumentID string

// NewDocumentID returns the DocumentID for the current instant, truncated
// to microsecond precision. Two calls landing in the same microsecond
// produce equal ids; the specification treats that collision as a create
// failure rather than something this constructor should paper over.
func NewDocumentID() DocumentID {
	return FromTime(time.Now().UTC())
}

// FromTime renders t (converted to UTC) as a DocumentID.
func FromTime(t time.Time) DocumentID {
	s := t.UTC().Format(layout)

	return DocumentID(strings.Replace(s, ".", "_", 1))
}

// ParseDocumentID validates s against the id pattern and returns it typed.
func ParseDocumentID(s string) (DocumentID, error) {
	if !IsValid(s) {
		return "", dberrors.Wrap(dberrors.ErrInvalidID, dberrors.WithDocumentID(s))
	}

	return DocumentID(s), nil
}

// IsValid reports whether s has the DocumentID shape and parses as a time.
func IsValid(s string) bool {
	if !idPattern.MatchString(s) {
		return false
	}

	_, err := parseTime(s)

	return err == nil
}

// Time parses the DocumentID back into a time.Time (UTC).
func (id DocumentID) Time() (time.Time, error) {
	return parseTime(string(id))
}

func parseTime(s string) (time.Time, error) {
	if len(s) != Length {
		return time.Time{}, dberrors.Wrap(dberrors.ErrInvalidID, dberrors.WithDocumentID(s))
	}

	withDot := s[:19] + "." + s[20:]

	t, err := time.Parse(layout, withDot)
	if err != nil {
		return time.Time{}, dberrors.Wrap(dberrors.ErrInvalidID, dberrors.WithDocumentID(s))
	}

	return t, nil
}

func (id DocumentID) String() string {
	return string(id)
}

// Before reports whether id represents an earlier instant than other.
// Both ids compare correctly as plain strings because the format is
// fixed-width and zero-padded, but Before is explicit about intent at
// call sites that implement last-writer-wins.
func (id DocumentID) Before(other DocumentID) bool {
	return string(id) < string(other)
}

// After reports whether id represents a later instant than other.
func (id DocumentID) After(other DocumentID) bool {
	return string(id) > string(other)
}

// EpochSentinel is the fake "oldest possible" timestamp the AAE snapshot
// responder sends back when it has never heard of a document, forcing the
// peer to consider its own copy newer.
const EpochSentinel DocumentID = "1970_01_01_00_00_00_000000"
