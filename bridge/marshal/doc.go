// Package marshal converts values to and from the flat string representation that crosses
// the guest isolation boundary.
//
// A Payload is either absent or a single string. Values whose natural shape is text travel
// unencoded; everything structured travels as a JSON document. The package keeps no state:
// every function is a pure function of its input.
package marshal
