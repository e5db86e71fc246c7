package compiler

import "errors"

var (
	ErrCompileFailed    = errors.New("failed to compile wasm module")
	ErrContentNil       = errors.New("wasm content is nil")
	ErrValidationFailed = errors.New("wasm script validation error")
)
