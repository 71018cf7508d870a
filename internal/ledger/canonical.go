package ledger

import (
	"bytes"
	"fmt"
	"sort"
	"unicode/utf16"

	"golang.org/x/text/unicode/norm"
)

// MarshalCanonical produces RFC 8785 canonical JSON. This is the only
// serialization used for entry identity and golden snapshots.
//
// Differences from encoding/json:
//   - object keys sorted by UTF-16 code units, not UTF-8 bytes
//   - no HTML escaping (< > & stay literal)
//   - strings NFC normalized
//   - floats rejected unless integral (sequence numbers and counts are
//     the only numbers this system carries)
//   - null rejected (omit the field instead)
func MarshalCanonical(v any) ([]byte, error) {
	var buf bytes.Buffer
	if err := appendCanonical(&buf, v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func appendCanonical(buf *bytes.Buffer, v any) error {
	switch val := v.(type) {
	case nil:
		return fmt.Errorf("null is forbidden in canonical JSON")
	case string:
		appendCanonicalString(buf, val)
		return nil
	case int:
		fmt.Fprintf(buf, "%d", val)
		return nil
	case int64:
		fmt.Fprintf(buf, "%d", val)
		return nil
	case bool:
		if val {
			buf.WriteString("true")
		} else {
			buf.WriteString("false")
		}
		return nil
	case float64:
		if val == float64(int64(val)) {
			fmt.Fprintf(buf, "%d", int64(val))
			return nil
		}
		return fmt.Errorf("non-integral floats are forbidden in canonical JSON: %v", val)
	case []any:
		buf.WriteByte('[')
		for i, elem := range val {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := appendCanonical(buf, elem); err != nil {
				return fmt.Errorf("array[%d]: %w", i, err)
			}
		}
		buf.WriteByte(']')
		return nil
	case map[string]any:
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Slice(keys, func(i, j int) bool { return lessUTF16(keys[i], keys[j]) })
		buf.WriteByte('{')
		for i, k := range keys {
			if i > 0 {
				buf.WriteByte(',')
			}
			appendCanonicalString(buf, k)
			buf.WriteByte(':')
			if err := appendCanonical(buf, val[k]); err != nil {
				return fmt.Errorf("object[%q]: %w", k, err)
			}
		}
		buf.WriteByte('}')
		return nil
	default:
		return fmt.Errorf("unsupported type for canonical JSON: %T", v)
	}
}

// appendCanonicalString writes an NFC-normalized JSON string without HTML
// escaping. Per RFC 8785 only control characters, backslash, and quote
// are escaped; U+2028/U+2029 stay literal.
func appendCanonicalString(buf *bytes.Buffer, s string) {
	buf.WriteByte('"')
	for _, r := range norm.NFC.String(s) {
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

// lessUTF16 compares strings by UTF-16 code units (RFC 8785 key order).
func lessUTF16(a, b string) bool {
	ua := utf16.Encode([]rune(a))
	ub := utf16.Encode([]rune(b))
	for i := 0; i < len(ua) && i < len(ub); i++ {
		if ua[i] != ub[i] {
			return ua[i] < ub[i]
		}
	}
	return len(ua) < len(ub)
}
