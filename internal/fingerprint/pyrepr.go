package fingerprint

import (
	"math/big"
	"strconv"
	"strings"
)

// pyKind tags which branch of a parsed JSON value a pyValue holds.
type pyKind int

const (
	pyString pyKind = iota
	pyInt
	pyFloat
	pyBool
	pyNull
	pyArray
	pyObject
)

// pyValue is a JSON value parsed structurally rather than flattened, so it
// can be rendered the way Python's str()/repr() renders the equivalent
// parsed object - the "printed form" an array (or a dict nested inside one)
// contributes to the canonical byte form.
type pyValue struct {
	kind pyKind
	str  string
	num  *big.Int
	flt  float64
	bl   bool
	arr  []pyValue
	obj  []pyObjEntry
}

type pyObjEntry struct {
	key string
	val pyValue
}

// pyRepr renders v the way CPython's repr() would render the equivalent
// parsed value: single-quoted strings, True/False/None, plain decimal ints,
// and comma-space-joined lists/dicts.
func pyRepr(v pyValue) string {
	switch v.kind {
	case pyString:
		return pyReprString(v.str)
	case pyInt:
		return v.num.String()
	case pyFloat:
		return pyReprFloat(v.flt)
	case pyBool:
		if v.bl {
			return "True"
		}

		return "False"
	case pyNull:
		return "None"
	case pyArray:
		parts := make([]string, len(v.arr))
		for i, e := range v.arr {
			parts[i] = pyRepr(e)
		}

		return "[" + strings.Join(parts, ", ") + "]"
	case pyObject:
		parts := make([]string, len(v.obj))
		for i, e := range v.obj {
			parts[i] = pyReprString(e.key) + ": " + pyRepr(e.val)
		}

		return "{" + strings.Join(parts, ", ") + "}"
	default:
		return ""
	}
}

// pyReprString follows CPython's unicode_repr quoting: single-quoted
// unless the string holds a single quote and no double quote, with
// backslash/quote/control-character escaping. Printable non-ASCII runes
// are left as literal UTF-8, same as CPython does for ordinary text.
func pyReprString(s string) string {
	quote := byte('\'')
	if strings.ContainsRune(s, '\'') && !strings.ContainsRune(s, '"') {
		quote = '"'
	}

	var b strings.Builder

	b.WriteByte(quote)

	for _, r := range s {
		switch {
		case r == '\\':
			b.WriteString(`\\`)
		case byte(r) == quote && r < 0x80:
			b.WriteByte('\\')
			b.WriteByte(quote)
		case r == '\n':
			b.WriteString(`\n`)
		case r == '\r':
			b.WriteString(`\r`)
		case r == '\t':
			b.WriteString(`\t`)
		case r < 0x20 || r == 0x7f:
			b.WriteString("\\x")
			b.WriteString(hexByte(byte(r)))
		default:
			b.WriteRune(r)
		}
	}

	b.WriteByte(quote)

	return b.String()
}

func hexByte(b byte) string {
	const hex = "0123456789abcdef"
	return string([]byte{hex[b>>4], hex[b&0xf]})
}

// pyReprFloat approximates CPython's float repr: shortest round-tripping
// decimal, always carrying a fractional part or exponent so it reads as a
// float rather than an int.
func pyReprFloat(f float64) string {
	s := strconv.FormatFloat(f, 'g', -1, 64)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}

	return s
}
