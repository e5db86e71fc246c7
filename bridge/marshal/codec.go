package marshal

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Encode converts a host value into a JSON payload. A nil value encodes as the JSON literal
// null, which is distinct from an absent payload.
func Encode(v any) (Payload, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	// markup inside wrapped HTML must reach the guest unescaped
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		// json reports funcs, channels, NaN and cycles as unsupported types or values
		return Absent(), fmt.Errorf("%w: %w", ErrNotSerializable, err)
	}
	return Raw(strings.TrimSuffix(buf.String(), "\n")), nil
}

// EncodeAs encodes v according to the declared shape. ShapeRaw requires a string and passes
// it through unchanged; ShapeNone always yields an absent payload.
func EncodeAs(shape Shape, v any) (Payload, error) {
	switch shape {
	case ShapeNone:
		return Absent(), nil
	case ShapeRaw:
		s, ok := v.(string)
		if !ok {
			return Absent(), fmt.Errorf("%w: raw payload needs a string, got %T", ErrShapeMismatch, v)
		}
		return Raw(s), nil
	case ShapeJSON:
		return Encode(v)
	default:
		return Absent(), fmt.Errorf("unknown shape %s", shape)
	}
}

// Decode parses a JSON payload. It returns present=false for an absent payload. The JSON
// literal null decodes to (nil, true, nil); callers that do not distinguish the two treat
// both as "no value".
func Decode(p Payload) (any, bool, error) {
	if p.IsAbsent() {
		return nil, false, nil
	}

	d := json.NewDecoder(strings.NewReader(p.data))
	d.UseNumber()

	var out any
	if err := d.Decode(&out); err != nil {
		return nil, true, fmt.Errorf("%w: %w", ErrMalformedPayload, err)
	}
	if d.More() {
		return nil, true, fmt.Errorf("%w: trailing data after JSON document", ErrMalformedPayload)
	}
	out, err := normalizeNumbers(out)
	if err != nil {
		return nil, true, err
	}
	return out, true, nil
}

// DecodeObject decodes a payload that must hold a JSON object. Absent payloads and null
// both return a nil map.
func DecodeObject(p Payload) (map[string]any, error) {
	v, _, err := Decode(p)
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, nil
	}
	obj, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: expected a JSON object, got %s", ErrShapeMismatch, kindName(v))
	}
	return obj, nil
}

// DecodeString returns the wire string of a raw payload.
func DecodeString(p Payload) (string, bool) {
	return p.data, p.present
}

// Compact re-encodes a JSON payload without insignificant whitespace. It is mainly used to
// compare payloads in tests and logs.
func Compact(p Payload) (Payload, error) {
	if p.IsAbsent() {
		return p, nil
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, []byte(p.data)); err != nil {
		return Absent(), fmt.Errorf("%w: %w", ErrMalformedPayload, err)
	}
	return Raw(buf.String()), nil
}

func kindName(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case bool:
		return "boolean"
	case int64, float64:
		return "number"
	case string:
		return "string"
	case []any:
		return "array"
	case map[string]any:
		return "object"
	default:
		return fmt.Sprintf("%T", v)
	}
}
