package marshal

import "fmt"

// Shape declares how an argument or result of a bridged operation is represented on the wire.
type Shape int

const (
	// ShapeNone marks an operation that produces no result.
	ShapeNone Shape = iota
	// ShapeRaw values are strings and cross the boundary unencoded.
	ShapeRaw
	// ShapeJSON values are JSON documents.
	ShapeJSON
)

func (s Shape) String() string {
	switch s {
	case ShapeNone:
		return "none"
	case ShapeRaw:
		return "raw"
	case ShapeJSON:
		return "json"
	default:
		return fmt.Sprintf("Shape(%d)", int(s))
	}
}

// Payload is the flat representation of one argument or result. The zero value is absent.
type Payload struct {
	data    string
	present bool
}

// Absent returns the payload used when a guest passes nothing (or None) for an argument,
// and for operations that produce no result.
func Absent() Payload {
	return Payload{}
}

// Raw wraps a string that already is in wire form.
func Raw(s string) Payload {
	return Payload{data: s, present: true}
}

// IsAbsent reports whether no payload was provided.
func (p Payload) IsAbsent() bool {
	return !p.present
}

// String returns the wire string. Absent payloads return "".
func (p Payload) String() string {
	return p.data
}

// GoString keeps payload contents out of %#v output; payloads may carry secrets.
func (p Payload) GoString() string {
	if !p.present {
		return "marshal.Absent()"
	}
	return fmt.Sprintf("marshal.Raw(<%d bytes>)", len(p.data))
}
