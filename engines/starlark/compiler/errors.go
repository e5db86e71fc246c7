package compiler

import "errors"

var (
	ErrCompileFailed = errors.New("failed to compile starlark script")
	ErrContentNil    = errors.New("starlark content is nil")
	ErrPrelude       = errors.New("failed to compile guest prelude")
)
