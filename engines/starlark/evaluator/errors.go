package evaluator

import "errors"

var (
	ErrExecution  = errors.New("starlark execution error")
	ErrPrelude    = errors.New("guest prelude failed")
	ErrResult     = errors.New("script result cannot be returned to the host")
	ErrExecutable = errors.New("executable is nil")
)
