package bridge

import (
	"errors"
	"fmt"
)

// Configuration errors. These are returned while building a Bridge or a Registry and abort
// guest context creation.
var (
	ErrUnknownRole          = errors.New("unknown role")
	ErrUnknownOperation     = errors.New("unknown operation")
	ErrDuplicateOperation   = errors.New("operation listed twice for a role")
	ErrCapabilityNotGranted = errors.New("capability not granted to role")
	ErrMissingCapability    = errors.New("host adapter does not implement a required capability")
	ErrNilAdapter           = errors.New("host adapter is nil")
)

// Call errors. Every failed guest-to-host call returns a *CallError that wraps one of these.
var (
	ErrMarshal     = errors.New("marshalling error")
	ErrHostFailure = errors.New("host operation failed")
)

// CallError reports a failed guest-to-host call. Its message names the operation and the
// failure class. For host failures the cause is only reachable through Unwrap, so the text
// handed to the guest never carries adapter internals.
type CallError struct {
	Op    string
	Class error
	Err   error
}

func (e *CallError) Error() string {
	if errors.Is(e.Class, ErrMarshal) && e.Err != nil {
		return fmt.Sprintf("%s: %s: %s", e.Op, e.Class, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Class)
}

func (e *CallError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Class}
	}
	return []error{e.Class, e.Err}
}

func marshalError(op string, err error) error {
	return &CallError{Op: op, Class: ErrMarshal, Err: err}
}

func hostError(op string, err error) error {
	return &CallError{Op: op, Class: ErrHostFailure, Err: err}
}
