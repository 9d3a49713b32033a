package trailproof

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// canonicalBytes produces the deterministic UTF-8 encoding of ev used for
// hashing and signing, per §4.1:
//
//  1. hash and signature are always omitted.
//  2. Any absent optional field is omitted entirely — no JSON nulls.
//  3. Object keys are emitted in lexicographic order, recursively.
//  4. Arrays preserve element order; elements are canonicalized in turn.
//  5. Output is compact JSON: no extraneous whitespace, shortest round-trip
//     numbers, standard string escaping.
//  6. Non-ASCII code points are preserved literally, not \u-escaped.
func canonicalBytes(ev Event) []byte {
	obj := map[string]any{
		"event_id":   ev.EventID,
		"event_type": ev.EventType,
		"timestamp":  ev.Timestamp,
		"actor_id":   ev.ActorID,
		"tenant_id":  ev.TenantID,
		"payload":    ev.Payload,
		"prev_hash":  ev.PrevHash,
	}
	if ev.TraceID != "" {
		obj["trace_id"] = ev.TraceID
	}
	if ev.SessionID != "" {
		obj["session_id"] = ev.SessionID
	}

	var buf strings.Builder
	encodeCanonical(&buf, obj)
	return []byte(buf.String())
}

// encodeCanonical writes v to buf as compact, key-sorted JSON. It supports
// the value shapes Trailproof ever needs to canonicalize: maps, slices,
// strings, bools, nil, and JSON-numeric types (float64/int/int64/etc, as
// produced either by construction or by decoding payloads with
// json.Unmarshal).
func encodeCanonical(buf *strings.Builder, v any) {
	switch val := v.(type) {
	case nil:
		buf.WriteString("null")
	case map[string]any:
		encodeCanonicalObject(buf, val)
	case []any:
		buf.WriteByte('[')
		for i, elem := range val {
			if i > 0 {
				buf.WriteByte(',')
			}
			encodeCanonical(buf, elem)
		}
		buf.WriteByte(']')
	case string:
		encodeCanonicalString(buf, val)
	case bool:
		if val {
			buf.WriteString("true")
		} else {
			buf.WriteString("false")
		}
	case float64:
		buf.WriteString(formatCanonicalFloat(val))
	case float32:
		buf.WriteString(formatCanonicalFloat(float64(val)))
	case int:
		buf.WriteString(strconv.Itoa(val))
	case int64:
		buf.WriteString(strconv.FormatInt(val, 10))
	case uint64:
		buf.WriteString(strconv.FormatUint(val, 10))
	default:
		// Opaque payload values that arrive as some other concrete
		// numeric/custom type (e.g. json.Number) are rare; fall back to
		// their default string form rather than silently drop data.
		encodeCanonicalString(buf, fmt.Sprintf("%v", val))
	}
}

func encodeCanonicalObject(buf *strings.Builder, m map[string]any) {
	keys := make([]string, 0, len(m))
	for k, v := range m {
		if v == nil {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	buf.WriteByte('{')
	for i, k := range keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		encodeCanonicalString(buf, k)
		buf.WriteByte(':')
		encodeCanonical(buf, m[k])
	}
	buf.WriteByte('}')
}

func encodeCanonicalString(buf *strings.Builder, s string) {
	buf.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			buf.WriteString(`\"`)
		case '\\':
			buf.WriteString(`\\`)
		case '\n':
			buf.WriteString(`\n`)
		case '\r':
			buf.WriteString(`\r`)
		case '\t':
			buf.WriteString(`\t`)
		default:
			if r < 0x20 {
				buf.WriteString(`\u`)
				hex := strconv.FormatInt(int64(r), 16)
				for len(hex) < 4 {
					hex = "0" + hex
				}
				buf.WriteString(hex)
			} else {
				buf.WriteRune(r)
			}
		}
	}
	buf.WriteByte('"')
}

// formatCanonicalFloat renders a float64 in shortest round-trip form: no
// trailing zeros, no '+' on the exponent, integral values written without a
// decimal point.
func formatCanonicalFloat(f float64) string {
	if f == float64(int64(f)) && f < 1e15 && f > -1e15 {
		return strconv.FormatInt(int64(f), 10)
	}
	s := strconv.FormatFloat(f, 'g', -1, 64)
	s = strings.Replace(s, "e+", "e", 1)
	return s
}

