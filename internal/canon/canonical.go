package canon

import (
	"bytes"
	"fmt"
	"strconv"

	"golang.org/x/text/unicode/norm"
)

// MarshalCanonical produces canonical JSON bytes for hashing.
// CRITICAL: This is the ONLY serialization that may feed content-addressed
// identity computation. Standard json.Marshal output differs (HTML escaping,
// unsorted map iteration, float formatting) and must never be hashed.
func MarshalCanonical(v Value) ([]byte, error) {
	var buf bytes.Buffer
	if err := marshalCanonical(&buf, v, "root"); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func marshalCanonical(buf *bytes.Buffer, v Value, path string) error {
	switch val := v.(type) {
	case nil, Null:
		buf.WriteString("null")
		return nil
	case Bool:
		if val {
			buf.WriteString("true")
		} else {
			buf.WriteString("false")
		}
		return nil
	case Int:
		buf.WriteString(strconv.FormatInt(int64(val), 10))
		return nil
	case Float:
		s, err := formatFloat(float64(val), path)
		if err != nil {
			return err
		}
		buf.WriteString(s)
		return nil
	case String:
		writeCanonicalString(buf, string(val))
		return nil
	case Array:
		return marshalCanonicalArray(buf, val, path)
	case Object:
		return marshalCanonicalObject(buf, val, path)
	default:
		return &CanonicalizationError{Path: path, Reason: fmt.Sprintf("unsupported value type %T", v)}
	}
}

func marshalCanonicalArray(buf *bytes.Buffer, arr Array, path string) error {
	buf.WriteByte('[')
	for i, elem := range arr {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := marshalCanonical(buf, elem, fmt.Sprintf("%s[%d]", path, i)); err != nil {
			return err
		}
	}
	buf.WriteByte(']')
	return nil
}

func marshalCanonicalObject(buf *bytes.Buffer, obj Object, path string) error {
	buf.WriteByte('{')
	for i, k := range obj.SortedKeys() {
		if i > 0 {
			buf.WriteByte(',')
		}
		writeCanonicalString(buf, k)
		buf.WriteByte(':')
		if err := marshalCanonical(buf, obj[k], fmt.Sprintf("%s.%s", path, k)); err != nil {
			return err
		}
	}
	buf.WriteByte('}')
	return nil
}

// writeCanonicalString emits a minimally escaped JSON string.
// Strings are NFC-normalized at the serialization boundary. Only the quote,
// backslash and control characters are escaped; everything else, including
// non-ASCII and the characters <, >, &, U+2028 and U+2029, passes through
// as literal UTF-8.
func writeCanonicalString(buf *bytes.Buffer, s string) {
	normalized := norm.NFC.String(s)

	buf.WriteByte('"')
	for _, r := range normalized {
		switch r {
		case '"':
			buf.WriteString(`\"`)
		case '\\':
			buf.WriteString(`\\`)
		case '\b':
			buf.WriteString(`\b`)
		case '\f':
			buf.WriteString(`\f`)
		case '\n':
			buf.WriteString(`\n`)
		case '\r':
			buf.WriteString(`\r`)
		case '\t':
			buf.WriteString(`\t`)
		default:
			if r < 0x20 {
				fmt.Fprintf(buf, `\u%04x`, r)
			} else {
				buf.WriteRune(r)
			}
		}
	}
	buf.WriteByte('"')
}
