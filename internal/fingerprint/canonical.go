package fingerprint

import (
	"bytes"
	"encoding/json"
	"math/big"
	"strconv"

	"github.com/autumndb/autumndb/internal/dberrors"
)

// Canonicalize renders a document's JSON leaf values, in document order,
// as a single byte sequence: the input both SBF and PH2 digest.
//
// Rules (spec §4.1, with the gaps the spec leaves open resolved as
// documented in SPEC_FULL.md §4.1 and DESIGN.md):
//   - strings contribute their UTF-8 bytes
//   - integral numbers contribute the minimal big-endian magnitude of their
//     absolute value (zero contributes no bytes; sign is dropped, matching
//     the "two's-complement-free" instruction at the cost of not
//     distinguishing a value from its negation - acceptable for a
//     probabilistic divergence filter)
//   - non-integral numbers contribute their raw decimal text
//   - arrays contribute the text Python's str() renders for the equivalent
//     parsed list (the "printed form"): every element rendered with
//     Python's repr() rules and joined with ", ", recursing into nested
//     arrays/objects rather than copying the source text verbatim - so the
//     result is insensitive to the source JSON's own whitespace/quoting
//   - booleans and null contribute their literal JSON text ("true",
//     "false", "null") as direct leaf values, but render as Python's
//     True/False/None when they appear inside an array, per the printed
//     form above
//   - objects are flattened by recursing into their values in document
//     order; keys are never hashed
func Canonicalize(doc []byte) ([]byte, error) {
	if !json.Valid(doc) {
		return nil, dberrors.ErrInvalidDocument
	}

	s := &scanner{data: doc}

	var buf bytes.Buffer

	s.skipSpace()

	if err := s.value(&buf); err != nil {
		return nil, dberrors.Wrap(dberrors.ErrInvalidDocument, withCause(err))
	}

	s.skipSpace()

	if s.pos != len(s.data) {
		return nil, dberrors.ErrInvalidDocument
	}

	return buf.Bytes(), nil
}

// withCause sets e.Err to err only when e.Err is still nil. Wrap has
// already set Err to ErrInvalidDocument by the time Canonicalize's option
// runs, so the scanner error is not recorded; every scanner error is
// ErrInvalidDocument itself.
func withCause(err error) func(*dberrors.Error) {
	return func(e *dberrors.Error) {
		if e.Err == nil {
			e.Err = err
		}
	}
}

type scanner struct {
	data []byte
	pos  int
}

var errUnexpectedEnd = dberrors.ErrInvalidDocument

func (s *scanner) peek() byte {
	if s.pos >= len(s.data) {
		return 0
	}

	return s.data[s.pos]
}

func (s *scanner) skipSpace() {
	for s.pos < len(s.data) {
		switch s.data[s.pos] {
		case ' ', '\t', '\n', '\r':
			s.pos++
		default:
			return
		}
	}
}

func (s *scanner) value(buf *bytes.Buffer) error {
	s.skipSpace()

	if s.pos >= len(s.data) {
		return errUnexpectedEnd
	}

	switch c := s.data[s.pos]; {
	case c == '{':
		return s.object(buf)
	case c == '[':
		return s.array(buf)
	case c == '"':
		str, err := s.string()
		if err != nil {
			return err
		}

		buf.WriteString(str)

		return nil
	case c == 't' || c == 'f' || c == 'n':
		return s.literal(buf)
	case c == '-' || (c >= '0' && c <= '9'):
		return s.number(buf)
	default:
		return errUnexpectedEnd
	}
}

func (s *scanner) object(buf *bytes.Buffer) error {
	s.pos++ // consume '{'
	s.skipSpace()

	if s.peek() == '}' {
		s.pos++
		return nil
	}

	for {
		s.skipSpace()

		if s.peek() != '"' {
			return errUnexpectedEnd
		}

		if _, err := s.string(); err != nil { // key, discarded: keys are never hashed
			return err
		}

		s.skipSpace()

		if s.peek() != ':' {
			return errUnexpectedEnd
		}

		s.pos++

		if err := s.value(buf); err != nil {
			return err
		}

		s.skipSpace()

		switch s.peek() {
		case ',':
			s.pos++
		case '}':
			s.pos++
			return nil
		default:
			return errUnexpectedEnd
		}
	}
}

// array parses the list structurally and writes the bytes Python's str()
// would produce for the equivalent parsed list, so source-text quirks
// (whitespace, quote style) never affect the digest.
func (s *scanner) array(buf *bytes.Buffer) error {
	v, err := s.parseArray()
	if err != nil {
		return err
	}

	buf.WriteString(pyRepr(v))

	return nil
}

// parseValue parses one JSON value into a pyValue tree, for use inside an
// array or object where elements need Python repr() rendering rather than
// the flat canonical form top-level/object values get from value().
func (s *scanner) parseValue() (pyValue, error) {
	s.skipSpace()

	if s.pos >= len(s.data) {
		return pyValue{}, errUnexpectedEnd
	}

	switch c := s.data[s.pos]; {
	case c == '{':
		return s.parseObject()
	case c == '[':
		return s.parseArray()
	case c == '"':
		str, err := s.string()
		if err != nil {
			return pyValue{}, err
		}

		return pyValue{kind: pyString, str: str}, nil
	case c == 't' || c == 'f' || c == 'n':
		return s.parseLiteral()
	case c == '-' || (c >= '0' && c <= '9'):
		return s.parseNumber()
	default:
		return pyValue{}, errUnexpectedEnd
	}
}

func (s *scanner) parseArray() (pyValue, error) {
	s.pos++ // consume '['
	s.skipSpace()

	var elems []pyValue

	if s.peek() == ']' {
		s.pos++
		return pyValue{kind: pyArray, arr: elems}, nil
	}

	for {
		v, err := s.parseValue()
		if err != nil {
			return pyValue{}, err
		}

		elems = append(elems, v)

		s.skipSpace()

		switch s.peek() {
		case ',':
			s.pos++
		case ']':
			s.pos++
			return pyValue{kind: pyArray, arr: elems}, nil
		default:
			return pyValue{}, errUnexpectedEnd
		}
	}
}

func (s *scanner) parseObject() (pyValue, error) {
	s.pos++ // consume '{'
	s.skipSpace()

	var entries []pyObjEntry

	if s.peek() == '}' {
		s.pos++
		return pyValue{kind: pyObject, obj: entries}, nil
	}

	for {
		s.skipSpace()

		if s.peek() != '"' {
			return pyValue{}, errUnexpectedEnd
		}

		key, err := s.string()
		if err != nil {
			return pyValue{}, err
		}

		s.skipSpace()

		if s.peek() != ':' {
			return pyValue{}, errUnexpectedEnd
		}

		s.pos++

		val, err := s.parseValue()
		if err != nil {
			return pyValue{}, err
		}

		entries = append(entries, pyObjEntry{key: key, val: val})

		s.skipSpace()

		switch s.peek() {
		case ',':
			s.pos++
		case '}':
			s.pos++
			return pyValue{kind: pyObject, obj: entries}, nil
		default:
			return pyValue{}, errUnexpectedEnd
		}
	}
}

func (s *scanner) parseLiteral() (pyValue, error) {
	word := literals[s.data[s.pos]]
	if s.pos+len(word) > len(s.data) || string(s.data[s.pos:s.pos+len(word)]) != word {
		return pyValue{}, errUnexpectedEnd
	}

	s.pos += len(word)

	switch word {
	case "true":
		return pyValue{kind: pyBool, bl: true}, nil
	case "false":
		return pyValue{kind: pyBool, bl: false}, nil
	default:
		return pyValue{kind: pyNull}, nil
	}
}

func (s *scanner) parseNumber() (pyValue, error) {
	start := s.pos

	if s.peek() == '-' {
		s.pos++
	}

	integral := true

	for s.pos < len(s.data) {
		switch c := s.data[s.pos]; {
		case c >= '0' && c <= '9':
			s.pos++
		case c == '.' || c == 'e' || c == 'E' || c == '+' || c == '-':
			integral = false

			s.pos++
		default:
			goto done
		}
	}

done:
	raw := s.data[start:s.pos]
	if len(raw) == 0 {
		return pyValue{}, errUnexpectedEnd
	}

	if integral {
		n := new(big.Int)
		if _, ok := n.SetString(string(raw), 10); !ok {
			return pyValue{}, errUnexpectedEnd
		}

		return pyValue{kind: pyInt, num: n}, nil
	}

	f, err := strconv.ParseFloat(string(raw), 64)
	if err != nil {
		return pyValue{}, errUnexpectedEnd
	}

	return pyValue{kind: pyFloat, flt: f}, nil
}

func (s *scanner) string() (string, error) {
	start := s.pos

	if s.peek() != '"' {
		return "", errUnexpectedEnd
	}

	s.pos++

	for s.pos < len(s.data) {
		switch s.data[s.pos] {
		case '\\':
			s.pos += 2
		case '"':
			s.pos++

			var decoded string

			if err := json.Unmarshal(s.data[start:s.pos], &decoded); err != nil {
				return "", dberrors.ErrInvalidDocument
			}

			return decoded, nil
		default:
			s.pos++
		}
	}

	return "", errUnexpectedEnd
}

var literals = map[byte]string{'t': "true", 'f': "false", 'n': "null"}

func (s *scanner) literal(buf *bytes.Buffer) error {
	word := literals[s.data[s.pos]]
	if s.pos+len(word) > len(s.data) || string(s.data[s.pos:s.pos+len(word)]) != word {
		return errUnexpectedEnd
	}

	s.pos += len(word)

	buf.WriteString(word)

	return nil
}

func (s *scanner) number(buf *bytes.Buffer) error {
	start := s.pos

	if s.peek() == '-' {
		s.pos++
	}

	integral := true

	for s.pos < len(s.data) {
		switch c := s.data[s.pos]; {
		case c >= '0' && c <= '9':
			s.pos++
		case c == '.' || c == 'e' || c == 'E' || c == '+' || c == '-':
			integral = integral && false

			s.pos++
		default:
			goto done
		}
	}

done:
	raw := s.data[start:s.pos]
	if len(raw) == 0 {
		return errUnexpectedEnd
	}

	if !integral {
		buf.Write(raw)
		return nil
	}

	n := new(big.Int)
	if _, ok := n.SetString(string(raw), 10); !ok {
		return errUnexpectedEnd
	}

	if n.Sign() == 0 {
		return nil
	}

	n.Abs(n)
	buf.Write(n.Bytes())

	return nil
}
