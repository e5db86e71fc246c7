package marshal

import "errors"

var (
	// ErrMalformedPayload is returned when a payload does not hold the JSON document its
	// operation declares.
	ErrMalformedPayload = errors.New("malformed payload")

	// ErrNotSerializable is returned when a value has no JSON representation, such as a
	// function, a channel or a cyclic structure.
	ErrNotSerializable = errors.New("value is not serializable")

	// ErrShapeMismatch is returned when a decoded JSON document has the wrong top-level type.
	ErrShapeMismatch = errors.New("payload shape mismatch")
)
